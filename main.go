package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"ranktrack/internal"
	"ranktrack/internal/common"
	"ranktrack/internal/config"
	"ranktrack/internal/di"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "ranktrack",
	Short: "Discord bot reporting daily ranked progress",
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Connect to discord and deliver scheduled reports",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(ctx context.Context, app *internal.App) error {
			return app.Run(ctx)
		})
	},
}

var reportCmd = &cobra.Command{
	Use:   "report <account_id> [queue]",
	Short: "Print today's report of a stored account",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		accountId, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("account id %q is not a number", args[0])
		}
		queue := ""
		if len(args) == 2 {
			queue = args[1]
		}
		return withApp(func(ctx context.Context, app *internal.App) error {
			return app.Report(ctx, accountId, queue, cmd.OutOrStdout())
		})
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config.yaml", "optional yaml configuration file")
	rootCmd.AddCommand(runCmd, reportCmd)
}

// withApp loads the configuration, sets up logging and builds the app,
// cancelling its context on SIGINT or SIGTERM
func withApp(fn func(ctx context.Context, app *internal.App) error) error {

	conf, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if err := common.SetupLogger(conf.Logger.Level, conf.Logger.Pretty); err != nil {
		return err
	}

	app, cleanup, err := di.InitApp(conf)
	if err != nil {
		return fmt.Errorf("could not build app: %w", err)
	}
	defer cleanup()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return fn(ctx, app)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("ranktrack stopped")
		os.Exit(1)
	}
}
