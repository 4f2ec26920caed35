package tracking

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// DailyReporter is a tracker seen without its rank shape
type DailyReporter interface {
	Game() Game
	DefaultQueue() string
	ResolveAccount(ctx context.Context, input string) (Account, error)
	DailyReport(ctx context.Context, account Account, queue string, today time.Time) Result
}

type Registry struct {
	mu        sync.RWMutex
	reporters map[Game]DailyReporter
}

func NewRegistry(reporters ...DailyReporter) *Registry {
	registry := &Registry{reporters: make(map[Game]DailyReporter)}
	for _, reporter := range reporters {
		registry.Register(reporter)
	}
	return registry
}

func (registry *Registry) Register(reporter DailyReporter) {
	registry.mu.Lock()
	defer registry.mu.Unlock()
	registry.reporters[reporter.Game()] = reporter
}

func (registry *Registry) Get(game Game) (DailyReporter, error) {
	registry.mu.RLock()
	defer registry.mu.RUnlock()

	reporter, ok := registry.reporters[game]
	if !ok {
		return nil, fmt.Errorf("unknown game: %s", game)
	}
	return reporter, nil
}

// All returns the registered reporters in the canonical game order
func (registry *Registry) All() []DailyReporter {
	registry.mu.RLock()
	defer registry.mu.RUnlock()

	reporters := make([]DailyReporter, 0, len(registry.reporters))
	for _, game := range Games {
		if reporter, ok := registry.reporters[game]; ok {
			reporters = append(reporters, reporter)
		}
	}
	return reporters
}
