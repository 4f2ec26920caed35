package schedule

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"ranktrack/internal/common"
	"ranktrack/internal/metrics"
)

// Deliverers wrap these to tell why a delivery could not even be attempted
var (
	ErrNoAccount   = errors.New("account no longer exists")
	ErrUnsupported = errors.New("game not supported")
)

// Deliverer produces and sends the report a preference asks for
type Deliverer interface {
	Deliver(ctx context.Context, preference Preference, at time.Time) error
}

// Trigger wakes up at every minute boundary and delivers the reports
// scheduled for that minute
type Trigger struct {
	gate        *Gate
	deliverer   Deliverer
	limiter     *common.RateLimiter
	parallelism int
	metrics     metrics.Metrics

	running  sync.Mutex
	lastSlot string
	now      func() time.Time
}

// NewTrigger caps deliveries to deliveriesPerMinute (unlimited when not
// positive) and runs at most parallelism of them at once
func NewTrigger(gate *Gate, deliverer Deliverer, deliveriesPerMinute int, parallelism int, m metrics.Metrics) *Trigger {
	if parallelism <= 0 {
		parallelism = 1
	}
	return &Trigger{
		gate:        gate,
		deliverer:   deliverer,
		limiter:     common.NewRateLimiter([]common.Restriction{{Requests: deliveriesPerMinute, Duration: time.Minute}}),
		parallelism: parallelism,
		metrics:     m,
		now:         time.Now,
	}
}

// Run blocks until the context is done and every tick it started has
// finished
func (trigger *Trigger) Run(ctx context.Context) error {

	log.Info().Msg("Starting schedule trigger")
	var ticks sync.WaitGroup
	for {
		current := trigger.now()
		next := current.Truncate(time.Minute).Add(time.Minute)
		timer := time.NewTimer(next.Sub(current))
		select {
		case <-ctx.Done():
			timer.Stop()
			ticks.Wait()
			log.Info().Msg("Schedule trigger stopped")
			return ctx.Err()
		case <-timer.C:
		}
		// A slow tick must not delay the next one
		ticks.Add(1)
		go func() {
			defer ticks.Done()
			trigger.Tick(ctx, next)
		}()
	}
}

// Tick delivers the reports of the minute containing at. It returns false
// when the tick was skipped, either because another one is still running
// or because that minute was already processed
func (trigger *Trigger) Tick(ctx context.Context, at time.Time) bool {

	if !trigger.running.TryLock() {
		log.Warn().Str("slot", Slot(at)).Msg("Previous tick still running, skipping")
		return false
	}
	defer trigger.running.Unlock()

	slot := Slot(at)
	// Fixed width, so it sorts chronologically
	slotKey := at.UTC().Format("2006-01-02 15:04")
	if slotKey <= trigger.lastSlot {
		log.Debug().Str("slot", slotKey).Msg("Slot already processed")
		return false
	}
	trigger.lastSlot = slotKey

	start := trigger.now()
	defer func() { trigger.metrics.ObserveTickDuration(trigger.now().Sub(start)) }()

	logger := log.With().Str("run", uuid.NewString()).Str("slot", slot).Logger()

	preferences, err := trigger.gate.ListEnabledPreferences(ctx, slot)
	if err != nil {
		logger.Error().Err(err).Msg("Could not list preferences")
		return true
	}
	if len(preferences) == 0 {
		return true
	}
	logger.Info().Int("preferences", len(preferences)).Msg("Delivering scheduled reports")

	var group errgroup.Group
	group.SetLimit(trigger.parallelism)
	for _, preference := range preferences {
		if !trigger.limiter.Allowed(ctx, false) {
			logger.Warn().Int64("preference", preference.Id).Msg("Delivery cap reached, skipping")
			trigger.metrics.IncDeliveries(metrics.DeliverySkippedCap)
			continue
		}
		group.Go(func() error {
			if err := trigger.deliverer.Deliver(ctx, preference, at); err != nil {
				// Not retried, the next chance is tomorrow
				logger.Error().Err(err).Int64("preference", preference.Id).Str("user", preference.UserId).Msg("Delivery failed")
				trigger.metrics.IncDeliveries(deliveryStatus(err))
				return nil
			}
			trigger.metrics.IncDeliveries(metrics.DeliverySent)
			return nil
		})
	}
	group.Wait()
	return true
}

func deliveryStatus(err error) string {
	switch {
	case errors.Is(err, ErrNoAccount):
		return metrics.DeliveryNoAccount
	case errors.Is(err, ErrUnsupported):
		return metrics.DeliveryUnsupported
	default:
		return metrics.DeliveryFailed
	}
}
