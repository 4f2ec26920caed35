package tracking

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

type memoryStore[R any] struct {
	mu        sync.Mutex
	snapshots []Snapshot[R]
	// Day each inserted snapshot was filed under, by id. Seeded snapshots
	// fall back to the day of their capture time
	days      map[int64]string
	inserts   int
	insertErr error
	// Runs before every insert, while no lock is held
	beforeInsert func()
}

func (store *memoryStore[R]) Earliest(_ context.Context, accountId int64, queue string, day string) (Snapshot[R], bool, error) {
	store.mu.Lock()
	defer store.mu.Unlock()

	var matches []Snapshot[R]
	for _, snapshot := range store.snapshots {
		if snapshot.AccountId == accountId && snapshot.Queue == queue && store.dayOf(snapshot) == day {
			matches = append(matches, snapshot)
		}
	}
	if len(matches) == 0 {
		return Snapshot[R]{}, false, nil
	}
	sort.Slice(matches, func(i, j int) bool {
		if !matches[i].CapturedAt.Equal(matches[j].CapturedAt) {
			return matches[i].CapturedAt.Before(matches[j].CapturedAt)
		}
		return matches[i].Id < matches[j].Id
	})
	return matches[0], true, nil
}

func (store *memoryStore[R]) dayOf(snapshot Snapshot[R]) string {
	if day, ok := store.days[snapshot.Id]; ok {
		return day
	}
	return Day(snapshot.CapturedAt)
}

func (store *memoryStore[R]) Insert(_ context.Context, day string, snapshot Snapshot[R]) (int64, error) {
	if store.beforeInsert != nil {
		store.beforeInsert()
	}
	store.mu.Lock()
	defer store.mu.Unlock()

	if store.insertErr != nil {
		return 0, store.insertErr
	}
	store.inserts++
	snapshot.Id = int64(len(store.snapshots) + 1)
	if store.days == nil {
		store.days = make(map[int64]string)
	}
	store.days[snapshot.Id] = day
	store.snapshots = append(store.snapshots, snapshot)
	return snapshot.Id, nil
}

func (store *memoryStore[R]) count() int {
	store.mu.Lock()
	defer store.mu.Unlock()
	return len(store.snapshots)
}

// fakeProvider answers with the queued readings in order, repeating the
// last one. A nil reading means no data
type fakeProvider[R any] struct {
	mu       sync.Mutex
	readings []*R
	calls    atomic.Int32
	delay    time.Duration
}

func (provider *fakeProvider[R]) Fetch(ctx context.Context, _ Account, _ string) (R, bool) {
	provider.calls.Add(1)
	var zero R
	if provider.delay > 0 {
		select {
		case <-time.After(provider.delay):
		case <-ctx.Done():
			return zero, false
		}
	}

	provider.mu.Lock()
	defer provider.mu.Unlock()
	if len(provider.readings) == 0 {
		return zero, false
	}
	reading := provider.readings[0]
	if len(provider.readings) > 1 {
		provider.readings = provider.readings[1:]
	}
	if reading == nil {
		return zero, false
	}
	return *reading, true
}

func (provider *fakeProvider[R]) Resolve(_ context.Context, input string) (Account, error) {
	return Account{ExternalId: input, DisplayName: input}, nil
}
