package riotapi

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/rs/zerolog/log"

	"ranktrack/internal/common"
	"ranktrack/internal/metrics"
	"ranktrack/internal/tracking"
)

// Riot schema
const RIOT_SCHEMA = "https://%s.api.riotgames.com"

// Routes inside the riot API
const ROUTE_ACCOUNT_PUUID = "/riot/account/v1/accounts/by-riot-id/%s/%s"
const ROUTE_ACCOUNT_RIOT_ID = "/riot/account/v1/accounts/by-puuid/%s"
const ROUTE_LEAGUE = "/lol/league/v4/entries/by-puuid/%s"

const QUEUE_SOLO = "RANKED_SOLO_5x5"

// Riot ids rarely change, keep them around for a day
const identityTtl = 24 * time.Hour

type RiotApiConfig struct {
	ApiKey       string
	Region       string // routing value for account-v1, e.g. europe
	Platform     string // platform for league-v4, e.g. euw1
	Restrictions []common.Restriction
	Timeout      time.Duration
}

type RiotApi struct {
	proxy    *common.Proxy
	cache    common.Cache
	metrics  metrics.Metrics
	region   string
	platform string
	// Builds the base url of a routing value
	host func(routing string) string
}

func NewRiotApi(config RiotApiConfig, cache common.Cache, m metrics.Metrics) *RiotApi {
	return &RiotApi{
		proxy:    common.NewProxy("riot", map[string]string{"X-Riot-Token": config.ApiKey}, config.Restrictions, config.Timeout),
		cache:    cache,
		metrics:  m,
		region:   config.Region,
		platform: config.Platform,
		host:     func(routing string) string { return fmt.Sprintf(RIOT_SCHEMA, routing) },
	}
}

func (riotapi *RiotApi) GetRiotId(ctx context.Context, puuid Puuid) (RiotId, error) {

	// Check cache
	if data, ok := riotapi.cache.Get("riotid:" + string(puuid)); ok {
		if riotid, err := DecodeRiotId(data); err == nil {
			riotapi.metrics.IncCacheHits()
			return riotid, nil
		}
	}
	riotapi.metrics.IncCacheMisses()
	log.Debug().Msg(fmt.Sprintf("Riot id for puuid %s is not in the cache", puuid))

	// Request
	url := riotapi.host(riotapi.region) + fmt.Sprintf(ROUTE_ACCOUNT_RIOT_ID, puuid)
	data := riotapi.proxy.Request(ctx, url, true)
	if data == nil {
		return RiotId{}, fmt.Errorf("could not find riot id for puuid %s", puuid)
	}

	// Decode
	riotid, err := DecodeRiotId(data)
	if err != nil {
		return RiotId{}, err
	}
	log.Debug().Msg(fmt.Sprintf("Found riot id %s for puuid %s", &riotid, puuid))

	// Update cache
	riotapi.cache.Set("riotid:"+string(puuid), data, identityTtl)
	return riotid, nil
}

func (riotapi *RiotApi) GetPuuid(ctx context.Context, riotid RiotId) (Puuid, error) {

	key := "puuid:" + riotid.String()

	// Check cache
	if data, ok := riotapi.cache.Get(key); ok {
		riotapi.metrics.IncCacheHits()
		return Puuid(data), nil
	}
	riotapi.metrics.IncCacheMisses()

	// Request
	requestUrl := riotapi.host(riotapi.region) + fmt.Sprintf(ROUTE_ACCOUNT_PUUID, url.PathEscape(riotid.GameName), url.PathEscape(riotid.TagLine))
	data := riotapi.proxy.Request(ctx, requestUrl, true)
	if data == nil {
		return "", fmt.Errorf("could not find puuid for riot id %s", &riotid)
	}

	// Decode
	puuid, err := DecodePuuid(data)
	if err != nil {
		return "", err
	}
	if puuid == "" {
		return "", fmt.Errorf("no puuid in the answer for riot id %s", &riotid)
	}
	log.Debug().Msg(fmt.Sprintf("Found puuid %s for riot id %s", puuid, &riotid))

	// Update cache
	riotapi.cache.Set(key, []byte(puuid), identityTtl)
	return puuid, nil
}

func (riotapi *RiotApi) GetLeagues(ctx context.Context, puuid Puuid, platform string) ([]League, error) {

	if platform == "" {
		platform = riotapi.platform
	}

	// Request
	url := riotapi.host(platform) + fmt.Sprintf(ROUTE_LEAGUE, puuid)
	data := riotapi.proxy.Request(ctx, url, true)
	if data == nil {
		return nil, fmt.Errorf("no leagues found for puuid %s", puuid)
	}

	return DecodeLeagues(data)
}

// Fetch reads the League rank of the account in the queue.
// An unranked queue is no data
func (riotapi *RiotApi) Fetch(ctx context.Context, account tracking.Account, queue string) (tracking.TieredRank, bool) {

	leagues, err := riotapi.GetLeagues(ctx, Puuid(account.ExternalId), account.Region)
	if err != nil {
		log.Warn().Err(err).Int64("account", account.Id).Msg("Could not get leagues")
		return tracking.TieredRank{}, false
	}

	for _, league := range leagues {
		if league.QueueType != queue {
			continue
		}
		points, wins, losses := league.Lps, league.Wins, league.Losses
		return tracking.TieredRank{
			Tier:     league.Tier,
			Division: league.Rank,
			Points:   &points,
			Wins:     &wins,
			Losses:   &losses,
		}, true
	}

	log.Debug().Msg(fmt.Sprintf("Account %d is not ranked in queue %s", account.Id, queue))
	return tracking.TieredRank{}, false
}

// Resolve turns a "name#tag" riot id into a League account
func (riotapi *RiotApi) Resolve(ctx context.Context, input string) (tracking.Account, error) {

	riotid, err := ParseRiotId(input)
	if err != nil {
		return tracking.Account{}, err
	}
	puuid, err := riotapi.GetPuuid(ctx, riotid)
	if err != nil {
		return tracking.Account{}, err
	}
	// Prefer the capitalisation Riot knows the player by
	if canonical, err := riotapi.GetRiotId(ctx, puuid); err == nil && canonical.GameName != "" {
		riotid = canonical
	}
	return tracking.Account{
		Game:        tracking.GameLeague,
		ExternalId:  string(puuid),
		DisplayName: riotid.GameName,
		TagLine:     riotid.TagLine,
		Region:      riotapi.platform,
	}, nil
}
