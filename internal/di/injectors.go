//go:build wireinject
// +build wireinject

package di

import (
	wire "github.com/google/wire"

	"ranktrack/internal"
	"ranktrack/internal/bot"
	"ranktrack/internal/config"
	"ranktrack/internal/schedule"
)

func InitApp(conf *config.Config) (*internal.App, func(), error) {

	wire.Build(
		ProvideDatabase,
		ProvidePrometheusRegistry,
		ProvideMetrics,
		ProvideCache,
		ProvideTrackers,

		bot.NewDatabaseBot,
		schedule.NewDatabaseSchedule,
		wire.Bind(new(schedule.Store), new(*schedule.DatabaseSchedule)),
		schedule.NewGate,
		ProvideBot,
		ProvideTrigger,
		internal.NewApp,
	)

	return nil, nil, nil
}
