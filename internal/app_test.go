package internal

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ranktrack/internal/bot"
	"ranktrack/internal/common"
	"ranktrack/internal/config"
	"ranktrack/internal/tracking"
)

type staticReporter struct{}

func (staticReporter) Game() tracking.Game {
	return tracking.GameApex
}

func (staticReporter) DefaultQueue() string {
	return "RANKED_BR"
}

func (staticReporter) ResolveAccount(_ context.Context, input string) (tracking.Account, error) {
	return tracking.Account{Game: tracking.GameApex, ExternalId: input}, nil
}

func (staticReporter) DailyReport(_ context.Context, account tracking.Account, queue string, today time.Time) tracking.Result {
	return tracking.LadderReport{Game: tracking.GameApex, Account: account, Queue: queue, Day: tracking.Day(today)}
}

func TestApp_Report(t *testing.T) {
	database, err := common.OpenDatabase(filepath.Join(t.TempDir(), "app.db"))
	require.NoError(t, err)
	defer database.Close()
	accounts, err := bot.NewDatabaseBot(database)
	require.NoError(t, err)

	ctx := context.Background()
	account, err := accounts.UpsertAccount(ctx, tracking.Account{Game: tracking.GameApex, ExternalId: "Wraith", DisplayName: "Wraith"})
	require.NoError(t, err)

	app := NewApp(&config.Config{}, nil, nil, tracking.NewRegistry(staticReporter{}), accounts, prometheus.NewRegistry())

	var out bytes.Buffer
	require.NoError(t, app.Report(ctx, account.Id, "", &out))
	assert.Contains(t, out.String(), "Daily report of Wraith")
	assert.Contains(t, out.String(), "Apex Legends, RANKED_BR")
	assert.Contains(t, out.String(), "Not available")

	assert.ErrorIs(t, app.Report(ctx, 999, "", &out), bot.ErrAccountNotFound)
}
