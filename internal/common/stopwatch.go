package common

import (
	"sync"
	"time"
)

// This stopwatch keeps track of time. You can set a timeout for it,
// make it start counting time, and ask it if the timeout has been reached
type Stopwatch struct {
	mu        sync.Mutex
	timeout   time.Duration
	startTime time.Time
	running   bool
	now       func() time.Time
}

func NewStopwatch(timeout time.Duration) *Stopwatch {
	return &Stopwatch{timeout: timeout, now: time.Now}
}

func (s *Stopwatch) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.running = true
	s.startTime = s.now()
}

func (s *Stopwatch) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.running = false
}

// Stopped reports whether the timeout has been reached (or the stopwatch
// is not running at all). When it has not, the remaining time is returned
func (s *Stopwatch) Stopped() (bool, time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return true, 0
	}
	remaining := s.startTime.Add(s.timeout).Sub(s.now())
	if remaining <= 0 {
		s.running = false
		return true, 0
	}
	return false, remaining
}
