package apexapi

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

const MOZAMBIQUE_SCHEMA = "https://api.mozambiquehe.re"
const ROUTE_BRIDGE = "/bridge?player=%s&platform=%s"

const QUEUE_RANKED_BR = "RANKED_BR"

var platforms = map[string]string{
	"pc":     "PC",
	"origin": "PC",
	"steam":  "PC",
	"ps":     "PS4",
	"ps4":    "PS4",
	"ps5":    "PS4",
	"xbox":   "X1",
	"x1":     "X1",
	"switch": "SWITCH",
}

type Config struct {
	ApiKey       string
	Platform     string
	Restrictions []common.Restriction
	Timeout      time.Duration
}

type ApexApi struct {
	proxy    *common.Proxy
	platform string
	schema   string
}

type Player struct {
	Name     string
	Platform string
	Rank     tracking.LadderRank
}

func New(config Config) *ApexApi {
	platform := config.Platform
	if platform == "" {
		platform = "PC"
	}
	return &ApexApi{
		proxy:    common.NewProxy("mozambique", map[string]string{"Authorization": config.ApiKey}, config.Restrictions, config.Timeout),
		platform: platform,
		schema:   MOZAMBIQUE_SCHEMA,
	}
}

// NormalizePlatform maps what users type to the platform names of the API
func NormalizePlatform(input string) (string, bool) {
	platform, ok := platforms[strings.ToLower(strings.TrimSpace(input))]
	return platform, ok
}

func DecodePlayer(data []byte) (Player, error) {

	var raw struct {
		Global struct {
			Name     string
			Platform string
			Rank     struct {
				RankName          string            `json:"rankName"`
				RankDiv           common.FlexInt    `json:"rankDiv"`
				RankScore         common.FlexInt    `json:"rankScore"`
				LadderPosPlatform common.FlexInt    `json:"ladderPosPlatform"`
				RankedSeason      common.FlexString `json:"rankedSeason"`
			}
		}
		Error string
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return Player{}, err
	}
	if raw.Error != "" {
		return Player{}, fmt.Errorf("apex api: %s", raw.Error)
	}

	rank := raw.Global.Rank
	player := Player{
		Name:     raw.Global.Name,
		Platform: raw.Global.Platform,
		Rank: tracking.LadderRank{
			Name:     rank.RankName,
			Division: rank.RankDiv.Ptr(),
			Score:    rank.RankScore.Ptr(),
			Position: rank.LadderPosPlatform.Ptr(),
			Season:   string(rank.RankedSeason),
		},
	}
	// The API answers -1 for players outside the ladder
	if player.Rank.Position != nil && *player.Rank.Position < 0 {
		player.Rank.Position = nil
	}
	return player, nil
}

func (apexapi *ApexApi) GetPlayer(ctx context.Context, name string, platform string) (Player, error) {

	if platform == "" {
		platform = apexapi.platform
	}

	requestUrl := apexapi.schema + fmt.Sprintf(ROUTE_BRIDGE, url.QueryEscape(name), url.QueryEscape(platform))
	log.Debug().Msg(fmt.Sprintf("Requesting apex player %s on %s", name, platform))
	data := apexapi.proxy.Request(ctx, requestUrl, true)
	if data == nil {
		return Player{}, fmt.Errorf("no apex data for player %s on %s", name, platform)
	}

	return DecodePlayer(data)
}

// Fetch reads the ranked battle royale standing of the account.
// The API only knows one ranked queue
func (apexapi *ApexApi) Fetch(ctx context.Context, account tracking.Account, queue string) (tracking.LadderRank, bool) {

	player, err := apexapi.GetPlayer(ctx, account.ExternalId, account.Region)
	if err != nil {
		log.Warn().Err(err).Int64("account", account.Id).Str("queue", queue).Msg("Could not get apex rank")
		return tracking.LadderRank{}, false
	}
	return player.Rank, true
}

// Resolve accepts "name" or "name platform"
func (apexapi *ApexApi) Resolve(ctx context.Context, input string) (tracking.Account, error) {

	name := strings.TrimSpace(input)
	platform := apexapi.platform
	if fields := strings.Fields(name); len(fields) > 1 {
		if normalized, ok := NormalizePlatform(fields[len(fields)-1]); ok {
			platform = normalized
			name = strings.Join(fields[:len(fields)-1], " ")
		}
	}
	if name == "" {
		return tracking.Account{}, fmt.Errorf("no apex player name provided")
	}

	player, err := apexapi.GetPlayer(ctx, name, platform)
	if err != nil {
		return tracking.Account{}, err
	}

	displayName := player.Name
	if displayName == "" {
		displayName = name
	}
	return tracking.Account{
		Game:        tracking.GameApex,
		ExternalId:  name,
		DisplayName: displayName,
		Region:      platform,
	}, nil
}
