package tracking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"ranktrack/internal/metrics"
)

var ErrDuplicateSnapshot = errors.New("snapshot already exists")

// Store persists snapshots of one rank shape. Snapshots are only ever
// inserted, filed under the given UTC day; Earliest returns the first one
// filed under a day, ordered by capture time and then by id
type Store[R any] interface {
	Earliest(ctx context.Context, accountId int64, queue string, day string) (Snapshot[R], bool, error)
	Insert(ctx context.Context, day string, snapshot Snapshot[R]) (int64, error)
}

type FetchFunc[R any] func(ctx context.Context, account Account, queue string) (R, bool)

// Baselines hands out the first snapshot of the day, creating it from a
// live reading when none exists yet
type Baselines[R any] struct {
	game    Game
	store   Store[R]
	group   singleflight.Group
	metrics metrics.Metrics
	now     func() time.Time
}

func NewBaselines[R any](game Game, store Store[R], m metrics.Metrics) *Baselines[R] {
	return &Baselines[R]{game: game, store: store, metrics: m, now: time.Now}
}

// GetOrCreate returns today's baseline for the account and queue, or nil
// when there is none and the provider has no data to create it from.
// Concurrent callers for the same key share one lookup, which outlives the
// caller that started it; each caller only waits as long as its own ctx
func (baselines *Baselines[R]) GetOrCreate(ctx context.Context, account Account, queue string, today time.Time, fetch FetchFunc[R]) *Snapshot[R] {

	day := Day(today)
	key := fmt.Sprintf("%d|%s|%s", account.Id, queue, day)
	shared := context.WithoutCancel(ctx)
	results := baselines.group.DoChan(key, func() (interface{}, error) {
		return baselines.getOrCreate(shared, account, queue, day, fetch), nil
	})

	var value interface{}
	select {
	case result := <-results:
		value = result.Val
	case <-ctx.Done():
		log.Debug().Str("game", string(baselines.game)).Int64("account", account.Id).Str("queue", queue).Err(ctx.Err()).Msg("Gave up waiting for baseline")
		return nil
	}

	snapshot, _ := value.(*Snapshot[R])
	if snapshot == nil {
		return nil
	}
	result := *snapshot
	return &result
}

func (baselines *Baselines[R]) getOrCreate(ctx context.Context, account Account, queue string, day string, fetch FetchFunc[R]) *Snapshot[R] {

	logger := log.With().Str("game", string(baselines.game)).Int64("account", account.Id).Str("queue", queue).Str("day", day).Logger()

	existing, found, err := baselines.store.Earliest(ctx, account.Id, queue, day)
	if err != nil {
		logger.Error().Err(err).Msg("Could not read baseline")
		return nil
	}
	if found {
		return &existing
	}

	rank, ok := fetch(ctx, account, queue)
	if !ok {
		logger.Debug().Msg("No data to create a baseline from")
		return nil
	}

	snapshot := Snapshot[R]{
		AccountId:  account.Id,
		Queue:      queue,
		Rank:       rank,
		CapturedAt: baselines.now().UTC(),
	}
	// Filed under the requested day even when the clock has moved past it
	id, err := baselines.store.Insert(ctx, day, snapshot)
	if errors.Is(err, ErrDuplicateSnapshot) {
		// Somebody else got there first, theirs is the baseline now
		logger.Debug().Msg("Baseline created concurrently, reading it back")
		existing, found, err = baselines.store.Earliest(ctx, account.Id, queue, day)
		if err != nil || !found {
			logger.Error().Err(err).Msg("Could not read back concurrent baseline")
			return nil
		}
		return &existing
	}
	if err != nil {
		logger.Error().Err(err).Msg("Could not store baseline")
		return nil
	}

	snapshot.Id = id
	baselines.metrics.IncBaselinesCreated(string(baselines.game))
	logger.Info().Int64("snapshot", id).Msg("Baseline created")

	// Another process may have inserted an earlier one in the meantime
	if existing, found, err := baselines.store.Earliest(ctx, account.Id, queue, day); err == nil && found {
		return &existing
	}
	return &snapshot
}
