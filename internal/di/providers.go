package di

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog/log"

	"ranktrack/internal/apexapi"
	"ranktrack/internal/bot"
	"ranktrack/internal/common"
	"ranktrack/internal/config"
	"ranktrack/internal/metrics"
	"ranktrack/internal/riotapi"
	"ranktrack/internal/rocketapi"
	"ranktrack/internal/schedule"
	"ranktrack/internal/tracking"
)

func ProvideDatabase(conf *config.Config) (*common.Database, func(), error) {
	database, err := common.OpenDatabase(conf.Database.Path)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if err := database.Close(); err != nil {
			log.Error().Err(err).Msg("Could not close database")
		}
	}
	return database, cleanup, nil
}

func ProvidePrometheusRegistry() *prometheus.Registry {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	return registry
}

func ProvideMetrics(conf *config.Config, registry *prometheus.Registry) metrics.Metrics {
	if !conf.Metrics.Enabled {
		return metrics.NewNoop()
	}
	return metrics.New(registry)
}

func ProvideCache(conf *config.Config) common.Cache {
	return common.NewCache(conf.Cache.Size)
}

// ProvideTrackers registers a tracker for every game with an api key
func ProvideTrackers(conf *config.Config, database *common.Database, cache common.Cache, m metrics.Metrics) (*tracking.Registry, error) {

	stores, err := tracking.NewDatabaseTracking(database)
	if err != nil {
		return nil, err
	}
	registry := tracking.NewRegistry()
	timeout := conf.Tracking.ProviderTimeout

	if conf.Riot.Enabled() {
		league := riotapi.NewRiotApi(riotapi.RiotApiConfig{
			ApiKey:       conf.Riot.ApiKey,
			Region:       conf.Riot.Region,
			Platform:     conf.Riot.Platform,
			Restrictions: conf.Riot.Restrictions,
			Timeout:      conf.Riot.Timeout,
		}, cache, m)
		registry.Register(tracking.NewTracker[tracking.TieredRank, tracking.TieredDiff](
			tracking.GameLeague, riotapi.QUEUE_SOLO, tracking.NewLeagueModel(), league, stores.LeagueStore(), timeout, m))
	}
	if conf.Valorant.Enabled() {
		valorant := riotapi.NewValorantApi(riotapi.ValorantApiConfig{
			ApiKey:       conf.Valorant.ApiKey,
			Region:       conf.Valorant.Region,
			Restrictions: conf.Valorant.Restrictions,
			Timeout:      conf.Valorant.Timeout,
		})
		registry.Register(tracking.NewTracker[tracking.TieredRank, tracking.TieredDiff](
			tracking.GameValorant, riotapi.QUEUE_COMPETITIVE, tracking.NewValorantModel(), valorant, stores.ValorantStore(), timeout, m))
	}
	if conf.Apex.Enabled() {
		apex := apexapi.New(apexapi.Config{
			ApiKey:       conf.Apex.ApiKey,
			Platform:     conf.Apex.Platform,
			Restrictions: conf.Apex.Restrictions,
			Timeout:      conf.Apex.Timeout,
		})
		registry.Register(tracking.NewTracker[tracking.LadderRank, tracking.LadderDiff](
			tracking.GameApex, apexapi.QUEUE_RANKED_BR, tracking.NewApexModel(), apex, stores.ApexStore(), timeout, m))
	}
	if conf.RocketLeague.Enabled() {
		rocket := rocketapi.New(rocketapi.Config{
			ApiKey:       conf.RocketLeague.ApiKey,
			Restrictions: conf.RocketLeague.Restrictions,
			Timeout:      conf.RocketLeague.Timeout,
		})
		registry.Register(tracking.NewTracker[tracking.PlaylistRanks, tracking.PlaylistDiffs](
			tracking.GameRocketLeague, tracking.QueueAllPlaylists, tracking.NewRocketLeagueModel(), rocket, stores.RocketLeagueStore(), timeout, m))
	}

	if len(registry.All()) == 0 {
		log.Warn().Msg("No game has an api key, every report will be refused")
	}
	return registry, nil
}

func ProvideBot(conf *config.Config, database *bot.DatabaseBot, registry *tracking.Registry, gate *schedule.Gate) *bot.Bot {
	return bot.NewBot(conf.Discord.Token, database, registry, gate, conf.Schedule.SlotsPerMinute, conf.Discord.CommandTimeout)
}

func ProvideTrigger(conf *config.Config, gate *schedule.Gate, b *bot.Bot, m metrics.Metrics) *schedule.Trigger {
	return schedule.NewTrigger(gate, b, conf.Schedule.DeliveriesPerMinute, conf.Schedule.Parallelism, m)
}
