package riotapi

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/rs/zerolog/log"

	"ranktrack/internal/common"
	"ranktrack/internal/tracking"
)

// Valorant ranks come from the HenrikDev community API, Riot does not
// expose them to personal keys
const HENRIK_SCHEMA = "https://api.henrikdev.xyz"

const ROUTE_VALORANT_ACCOUNT = "/valorant/v1/account/%s/%s"
const ROUTE_VALORANT_MMR = "/valorant/v2/by-puuid/mmr/%s/%s"

const QUEUE_COMPETITIVE = "COMPETITIVE"

type ValorantApiConfig struct {
	ApiKey       string
	Region       string // default shard, e.g. eu
	Restrictions []common.Restriction
	Timeout      time.Duration
}

type ValorantApi struct {
	proxy  *common.Proxy
	region string
	schema string
}

func NewValorantApi(config ValorantApiConfig) *ValorantApi {
	return &ValorantApi{
		proxy:  common.NewProxy("henrikdev", map[string]string{"Authorization": config.ApiKey}, config.Restrictions, config.Timeout),
		region: config.Region,
		schema: HENRIK_SCHEMA,
	}
}

func (valorantapi *ValorantApi) GetMmr(ctx context.Context, puuid Puuid, region string) (Mmr, error) {

	if region == "" {
		region = valorantapi.region
	}

	requestUrl := valorantapi.schema + fmt.Sprintf(ROUTE_VALORANT_MMR, region, puuid)
	data := valorantapi.proxy.Request(ctx, requestUrl, true)
	if data == nil {
		return Mmr{}, fmt.Errorf("no mmr found for puuid %s", puuid)
	}

	return DecodeMmr(data)
}

// Only the competitive queue is ranked in Valorant, so the queue
// is not part of the request
func (valorantapi *ValorantApi) Fetch(ctx context.Context, account tracking.Account, queue string) (tracking.TieredRank, bool) {

	mmr, err := valorantapi.GetMmr(ctx, Puuid(account.ExternalId), account.Region)
	if err != nil {
		log.Warn().Err(err).Int64("account", account.Id).Msg("Could not get valorant mmr")
		return tracking.TieredRank{}, false
	}
	if mmr.Tier == "" {
		log.Debug().Msg(fmt.Sprintf("Account %d is unrated in %s", account.Id, queue))
		return tracking.TieredRank{}, false
	}

	return tracking.TieredRank{Tier: mmr.Tier, Division: mmr.Division, Points: mmr.RankingInTier}, true
}

func (valorantapi *ValorantApi) Resolve(ctx context.Context, input string) (tracking.Account, error) {

	riotid, err := ParseRiotId(input)
	if err != nil {
		return tracking.Account{}, err
	}

	requestUrl := valorantapi.schema + fmt.Sprintf(ROUTE_VALORANT_ACCOUNT, url.PathEscape(riotid.GameName), url.PathEscape(riotid.TagLine))
	data := valorantapi.proxy.Request(ctx, requestUrl, true)
	if data == nil {
		return tracking.Account{}, fmt.Errorf("could not find valorant account for riot id %s", &riotid)
	}
	account, err := DecodeHenrikAccount(data)
	if err != nil {
		return tracking.Account{}, err
	}
	if account.Puuid == "" {
		return tracking.Account{}, fmt.Errorf("no puuid in the answer for riot id %s", &riotid)
	}

	region := account.Region
	if region == "" {
		region = valorantapi.region
	}
	name, tag := account.Name, account.Tag
	if name == "" {
		name, tag = riotid.GameName, riotid.TagLine
	}
	return tracking.Account{
		Game:        tracking.GameValorant,
		ExternalId:  account.Puuid,
		DisplayName: name,
		TagLine:     tag,
		Region:      region,
	}, nil
}
