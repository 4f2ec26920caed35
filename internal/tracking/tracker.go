package tracking

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"ranktrack/internal/metrics"
)

// Provider reads live ranks from the API of one game. Every failure is
// reported as false, never as an error
type Provider[R any] interface {
	Fetch(ctx context.Context, account Account, queue string) (R, bool)
	Resolve(ctx context.Context, input string) (Account, error)
}

// Result is what every daily report offers to code that does not care
// about the rank shape
type Result interface {
	GameOf() Game
	AccountOf() Account
	Outcome() string
}

func (report Report[R, D]) GameOf() Game {
	return report.Game
}

func (report Report[R, D]) AccountOf() Account {
	return report.Account
}

func (report Report[R, D]) Outcome() string {
	switch {
	case report.Baseline == nil && report.Current == nil:
		return metrics.OutcomeUnavailable
	case report.Baseline == nil:
		return metrics.OutcomeNoBaseline
	case report.Current == nil:
		return metrics.OutcomeNoCurrent
	default:
		return metrics.OutcomeComplete
	}
}

type Tracker[R, D any] struct {
	game         Game
	defaultQueue string
	model        Model[R, D]
	provider     Provider[R]
	baselines    *Baselines[R]
	timeout      time.Duration
	metrics      metrics.Metrics
}

func NewTracker[R, D any](game Game, defaultQueue string, model Model[R, D], provider Provider[R], store Store[R], timeout time.Duration, m metrics.Metrics) *Tracker[R, D] {
	return &Tracker[R, D]{
		game:         game,
		defaultQueue: defaultQueue,
		model:        model,
		provider:     provider,
		baselines:    NewBaselines(game, store, m),
		timeout:      timeout,
		metrics:      m,
	}
}

func (tracker *Tracker[R, D]) Game() Game {
	return tracker.game
}

func (tracker *Tracker[R, D]) DefaultQueue() string {
	return tracker.defaultQueue
}

func (tracker *Tracker[R, D]) ResolveAccount(ctx context.Context, input string) (Account, error) {
	ctx, cancel := context.WithTimeout(ctx, tracker.timeout)
	defer cancel()
	account, err := tracker.provider.Resolve(ctx, input)
	if err != nil {
		return Account{}, err
	}
	account.Game = tracker.game
	return account, nil
}

// GenerateDailyReport compares today's baseline against a fresh reading.
// The two provider reads are independent, so the baseline may be present
// while the current reading is not, or the other way round
func (tracker *Tracker[R, D]) GenerateDailyReport(ctx context.Context, account Account, queue string, today time.Time) Report[R, D] {

	if queue == "" || tracker.defaultQueue == QueueAllPlaylists {
		queue = tracker.defaultQueue
	}

	baseline := tracker.baselines.GetOrCreate(ctx, account, queue, today, tracker.fetch)

	var current *R
	if rank, ok := tracker.fetch(ctx, account, queue); ok {
		current = &rank
	}

	var baselineRank *R
	if baseline != nil {
		baselineRank = &baseline.Rank
	}

	report := Report[R, D]{
		Game:     tracker.game,
		Account:  account,
		Queue:    queue,
		Day:      Day(today),
		Baseline: baseline,
		Current:  current,
		Diff:     tracker.model.Compare(baselineRank, current),
	}
	tracker.metrics.IncReports(string(tracker.game), report.Outcome())
	log.Debug().Str("game", string(tracker.game)).Int64("account", account.Id).Str("queue", queue).Str("outcome", report.Outcome()).Msg("Daily report generated")
	return report
}

// DailyReport is GenerateDailyReport behind the shape-agnostic Result
func (tracker *Tracker[R, D]) DailyReport(ctx context.Context, account Account, queue string, today time.Time) Result {
	return tracker.GenerateDailyReport(ctx, account, queue, today)
}

func (tracker *Tracker[R, D]) fetch(ctx context.Context, account Account, queue string) (R, bool) {

	ctx, cancel := context.WithTimeout(ctx, tracker.timeout)
	defer cancel()

	var zero R
	rank, ok := tracker.provider.Fetch(ctx, account, queue)
	if !ok {
		tracker.metrics.IncProviderFailures(string(tracker.game))
		return zero, false
	}
	rank, ok = tracker.model.Normalize(rank)
	if !ok {
		log.Debug().Str("game", string(tracker.game)).Int64("account", account.Id).Str("queue", queue).Msg("Reading carries no rank")
		return zero, false
	}
	return rank, true
}
