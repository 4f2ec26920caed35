package schedule

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ranktrack/internal/metrics"
)

type memoryStore struct {
	mu          sync.Mutex
	preferences []Preference
}

func (store *memoryStore) UpsertWithinCapacity(_ context.Context, preference Preference, _ int) (bool, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	preference.Id = int64(len(store.preferences) + 1)
	preference.Enabled = true
	store.preferences = append(store.preferences, preference)
	return true, nil
}

func (store *memoryStore) Disable(_ context.Context, _ Key) (bool, error) {
	return false, nil
}

func (store *memoryStore) ListEnabled(_ context.Context, schedule string) ([]Preference, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	var result []Preference
	for _, preference := range store.preferences {
		if preference.Enabled && (schedule == "" || preference.Schedule == schedule) {
			result = append(result, preference)
		}
	}
	return result, nil
}

func (store *memoryStore) ListForUser(_ context.Context, _ string, _ string) ([]Preference, error) {
	return nil, nil
}

type recordingDeliverer struct {
	mu        sync.Mutex
	delivered []int64
	fail      map[int64]bool
	started   chan struct{}
	block     chan struct{}
}

func (deliverer *recordingDeliverer) Deliver(_ context.Context, preference Preference, _ time.Time) error {
	if deliverer.started != nil {
		deliverer.started <- struct{}{}
	}
	if deliverer.block != nil {
		<-deliverer.block
	}
	deliverer.mu.Lock()
	defer deliverer.mu.Unlock()
	if deliverer.fail[preference.Id] {
		return errors.New("discord is down")
	}
	deliverer.delivered = append(deliverer.delivered, preference.Id)
	return nil
}

func (deliverer *recordingDeliverer) count() int {
	deliverer.mu.Lock()
	defer deliverer.mu.Unlock()
	return len(deliverer.delivered)
}

func newTestTrigger(t *testing.T, deliverer Deliverer, deliveryCap int, schedules ...string) *Trigger {
	t.Helper()
	store := &memoryStore{}
	gate := NewGate(store)
	for i, schedule := range schedules {
		_, err := gate.UpsertPreference(context.Background(), Preference{GuildId: "g", UserId: "u", AccountId: int64(i), Queue: "Q", Schedule: schedule}, DefaultCapacity)
		require.NoError(t, err)
	}
	return NewTrigger(gate, deliverer, deliveryCap, 4, metrics.NewNoop())
}

var nineAm = time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

func TestTrigger_DeliversOnlyMatchingSlot(t *testing.T) {
	deliverer := &recordingDeliverer{}
	trigger := newTestTrigger(t, deliverer, 0, "09:00", "09:00", "10:00")

	assert.True(t, trigger.Tick(context.Background(), nineAm.Add(20*time.Second)))
	assert.Equal(t, 2, deliverer.count())
}

func TestTrigger_SameSlotNeverTwice(t *testing.T) {
	deliverer := &recordingDeliverer{}
	trigger := newTestTrigger(t, deliverer, 0, "09:00")

	assert.True(t, trigger.Tick(context.Background(), nineAm))
	assert.False(t, trigger.Tick(context.Background(), nineAm.Add(30*time.Second)))
	assert.Equal(t, 1, deliverer.count())

	// Same minute of the next day is a different slot
	assert.True(t, trigger.Tick(context.Background(), nineAm.Add(24*time.Hour)))
	assert.Equal(t, 2, deliverer.count())
}

func TestTrigger_OverlappingTickIsSkipped(t *testing.T) {
	deliverer := &recordingDeliverer{started: make(chan struct{}, 1), block: make(chan struct{})}
	trigger := newTestTrigger(t, deliverer, 0, "09:00", "09:01")

	done := make(chan bool)
	go func() { done <- trigger.Tick(context.Background(), nineAm) }()

	// The first tick is now stuck delivering
	<-deliverer.started

	assert.False(t, trigger.Tick(context.Background(), nineAm.Add(time.Minute)))
	close(deliverer.block)
	assert.True(t, <-done)
	assert.Equal(t, 1, deliverer.count())
}

func TestTrigger_DeliveryCap(t *testing.T) {
	deliverer := &recordingDeliverer{}
	trigger := newTestTrigger(t, deliverer, 2, "09:00", "09:00", "09:00", "09:00")

	trigger.Tick(context.Background(), nineAm)
	assert.Equal(t, 2, deliverer.count())
}

func TestTrigger_FailuresAreNotRetried(t *testing.T) {
	deliverer := &recordingDeliverer{fail: map[int64]bool{1: true}}
	trigger := newTestTrigger(t, deliverer, 0, "09:00", "09:00")

	assert.True(t, trigger.Tick(context.Background(), nineAm))
	assert.Equal(t, []int64{2}, deliverer.delivered)
	assert.False(t, trigger.Tick(context.Background(), nineAm))
	assert.Equal(t, []int64{2}, deliverer.delivered)
}

func TestTrigger_RunStopsWithContext(t *testing.T) {
	trigger := newTestTrigger(t, &recordingDeliverer{}, 0)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, trigger.Run(ctx), context.Canceled)
}

func TestTrigger_RunWaitsForRunningTick(t *testing.T) {
	deliverer := &recordingDeliverer{started: make(chan struct{}, 1), block: make(chan struct{})}
	trigger := newTestTrigger(t, deliverer, 0, "09:00")
	begin := time.Now()
	trigger.now = func() time.Time { return nineAm.Add(-time.Millisecond).Add(time.Since(begin)) }

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- trigger.Run(ctx) }()

	<-deliverer.started
	cancel()
	select {
	case <-done:
		t.Fatal("Run returned while a delivery was in flight")
	case <-time.After(50 * time.Millisecond):
	}

	close(deliverer.block)
	assert.ErrorIs(t, <-done, context.Canceled)
	assert.Equal(t, 1, deliverer.count())
}

func TestTrigger_DeliveryStatus(t *testing.T) {
	assert.Equal(t, metrics.DeliveryNoAccount, deliveryStatus(fmt.Errorf("preference 3: %w", ErrNoAccount)))
	assert.Equal(t, metrics.DeliveryUnsupported, deliveryStatus(fmt.Errorf("game X: %w", ErrUnsupported)))
	assert.Equal(t, metrics.DeliveryFailed, deliveryStatus(errors.New("discord down")))
}
