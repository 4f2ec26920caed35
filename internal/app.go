package internal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"ranktrack/internal/bot"
	"ranktrack/internal/config"
	"ranktrack/internal/schedule"
	"ranktrack/internal/tracking"
)

type App struct {
	conf     *config.Config
	bot      *bot.Bot
	trigger  *schedule.Trigger
	registry *tracking.Registry
	accounts *bot.DatabaseBot
	gatherer prometheus.Gatherer
}

func NewApp(conf *config.Config, b *bot.Bot, trigger *schedule.Trigger, registry *tracking.Registry, accounts *bot.DatabaseBot, gatherer *prometheus.Registry) *App {
	return &App{
		conf:     conf,
		bot:      b,
		trigger:  trigger,
		registry: registry,
		accounts: accounts,
		gatherer: gatherer,
	}
}

// Run serves discord, the schedule trigger and, when enabled, the metrics
// endpoint until the context is done
func (app *App) Run(ctx context.Context) error {

	games := []string{}
	for _, reporter := range app.registry.All() {
		games = append(games, string(reporter.Game()))
	}
	log.Info().Strs("games", games).Msg("Starting ranktrack")

	var server *http.Server
	if app.conf.Metrics.Enabled {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(app.gatherer, promhttp.HandlerOpts{}))
		server = &http.Server{
			Addr:         app.conf.Metrics.Address,
			Handler:      mux,
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		}
		go func() {
			log.Info().Str("address", server.Addr).Msg("Serving metrics")
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error().Err(err).Msg("Metrics server stopped")
			}
		}()
	}

	err := app.bot.Run(ctx, app.trigger)

	if server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Metrics server shutdown")
		}
	}
	return err
}

// Report prints today's report of a stored account, without discord
func (app *App) Report(ctx context.Context, accountId int64, queue string, out io.Writer) error {

	account, err := app.accounts.Account(ctx, accountId)
	if err != nil {
		return fmt.Errorf("account %d: %w", accountId, err)
	}
	reporter, err := app.registry.Get(account.Game)
	if err != nil {
		return err
	}
	if queue == "" {
		queue = reporter.DefaultQueue()
	}
	result := reporter.DailyReport(ctx, account, queue, time.Now())
	_, err = io.WriteString(out, bot.ReportText(result))
	return err
}
