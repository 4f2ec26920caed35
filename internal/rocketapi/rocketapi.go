package rocketapi

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"

	"ranktrack/internal/common"
	"ranktrack/internal/tracking"
)

const RAPIDAPI_HOST = "rocket-league1.p.rapidapi.com"
const ROUTE_RANKS = "/ranks/%s"

type Config struct {
	ApiKey       string
	Restrictions []common.Restriction
	Timeout      time.Duration
}

type RocketApi struct {
	proxy  *common.Proxy
	schema string
}

func New(config Config) *RocketApi {
	header := map[string]string{
		"x-rapidapi-key":  config.ApiKey,
		"x-rapidapi-host": RAPIDAPI_HOST,
		"Accept-Encoding": "identity",
	}
	return &RocketApi{
		proxy:  common.NewProxy("rapidapi", header, config.Restrictions, config.Timeout),
		schema: "https://" + RAPIDAPI_HOST,
	}
}

func DecodeRanks(data []byte) (tracking.PlaylistRanks, error) {

	var raw struct {
		Ranks []struct {
			Playlist string            `json:"playlist"`
			Rank     string            `json:"rank"`
			Division common.FlexString `json:"division"`
			Mmr      common.FlexInt    `json:"mmr"`
			Streak   common.FlexString `json:"streak"`
		} `json:"ranks"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	ranks := make(tracking.PlaylistRanks, 0, len(raw.Ranks))
	for _, entry := range raw.Ranks {
		ranks = append(ranks, tracking.PlaylistRank{
			Playlist: entry.Playlist,
			Rank:     entry.Rank,
			Division: string(entry.Division),
			Mmr:      entry.Mmr.Ptr(),
			Streak:   string(entry.Streak),
		})
	}
	return ranks, nil
}

func (rocketapi *RocketApi) GetRanks(ctx context.Context, epicId string) (tracking.PlaylistRanks, error) {

	requestUrl := rocketapi.schema + fmt.Sprintf(ROUTE_RANKS, url.PathEscape(epicId))
	data := rocketapi.proxy.Request(ctx, requestUrl, true)
	if data == nil {
		return nil, fmt.Errorf("no rocket league ranks for %s", epicId)
	}

	return DecodeRanks(data)
}

// Fetch reads every playlist at once, the queue is not used
func (rocketapi *RocketApi) Fetch(ctx context.Context, account tracking.Account, _ string) (tracking.PlaylistRanks, bool) {

	ranks, err := rocketapi.GetRanks(ctx, account.ExternalId)
	if err != nil {
		log.Warn().Err(err).Int64("account", account.Id).Msg("Could not get rocket league ranks")
		return nil, false
	}
	if len(ranks) == 0 {
		return nil, false
	}
	return ranks, true
}

func (rocketapi *RocketApi) Resolve(ctx context.Context, input string) (tracking.Account, error) {

	epicId := strings.TrimSpace(input)
	if epicId == "" {
		return tracking.Account{}, fmt.Errorf("no epic id provided")
	}
	if _, err := rocketapi.GetRanks(ctx, epicId); err != nil {
		return tracking.Account{}, err
	}
	return tracking.Account{Game: tracking.GameRocketLeague, ExternalId: epicId, DisplayName: epicId}, nil
}
