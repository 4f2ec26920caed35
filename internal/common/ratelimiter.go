package common

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type Analysis struct {
	allowed bool          // If the request is allowed
	wait    time.Duration // The minimal time to wait before the request is allowed
}

type RateLimiter struct {
	mu                   sync.Mutex
	restrictions         []Restriction          // Restrictions to consider
	history              []time.Time            // History of requests
	duration             time.Duration          // Min duration to wait for all restrictions to be lifted
	pendingVitalRequests map[uuid.UUID]struct{} // Set of pending vital requests
	cooldown             *Stopwatch             // Started when the remote side answers with a rate limit
	now                  func() time.Time
}

func NewRateLimiter(restrictions []Restriction) *RateLimiter {
	rl := &RateLimiter{
		restrictions:         append([]Restriction(nil), restrictions...),
		pendingVitalRequests: make(map[uuid.UUID]struct{}),
		now:                  time.Now,
	}
	for _, restriction := range restrictions {
		if restriction.Duration > rl.duration {
			rl.duration = restriction.Duration
		}
	}
	rl.cooldown = NewStopwatch(rl.duration)
	return rl
}

// Decide if a request is allowed.
// Non vital requests are answered straight away. A vital request that
// is not allowed yet blocks until it is, or until the context is done
func (rl *RateLimiter) Allowed(ctx context.Context, vital bool) bool {

	// Give this request a unique identifier
	thisuuid := uuid.New()
	defer func() {
		rl.mu.Lock()
		delete(rl.pendingVitalRequests, thisuuid)
		rl.mu.Unlock()
	}()

	for {
		rl.mu.Lock()
		currentTime := rl.now()
		rl.trim(currentTime)
		analysis := rl.analyse(currentTime)

		if analysis.allowed {
			// Other vital requests waiting have priority over non vital ones
			if !vital && len(rl.pendingVitalRequests) > 0 {
				rl.mu.Unlock()
				log.Warn().Msg("Rejecting non vital request because restrictions allow it but vital queue is not empty")
				return false
			}
			rl.history = append(rl.history, currentTime)
			rl.mu.Unlock()
			log.Debug().Msg("Allowing request")
			return true
		}

		if !vital {
			rl.mu.Unlock()
			log.Warn().Msg("Rejecting a non vital request because restrictions do not allow it")
			return false
		}

		// Vital and not allowed: queue it and wait
		rl.pendingVitalRequests[thisuuid] = struct{}{}
		rl.mu.Unlock()
		log.Warn().Str("request", thisuuid.String()).Dur("wait", analysis.wait).Msg("Vital request delayed")

		timer := time.NewTimer(analysis.wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return false
		case <-timer.C:
		}
	}
}

// ReceivedRateLimit blocks every request until the longest restriction
// window has passed
func (rl *RateLimiter) ReceivedRateLimit() {
	rl.cooldown.Start()
}

// Trim the current history, leaving only the requests
// that are young enough to be affected by at least one restriction.
// Times are stored in chronological order
func (rl *RateLimiter) trim(currentTime time.Time) {
	index := 0
	for i := len(rl.history) - 1; i >= 0; i-- {
		if currentTime.Sub(rl.history[i]) >= rl.duration {
			index = i + 1
			break
		}
	}
	rl.history = rl.history[index:]
}

func (rl *RateLimiter) analyse(currentTime time.Time) Analysis {

	if stopped, remaining := rl.cooldown.Stopped(); !stopped {
		return Analysis{allowed: false, wait: remaining}
	}

	// Merge the analyses of every restriction
	result := Analysis{allowed: true}
	for i := range rl.restrictions {
		analysis := rl.restrictions[i].Analyse(rl.history, currentTime)
		result.allowed = result.allowed && analysis.allowed
		if analysis.wait > result.wait {
			result.wait = analysis.wait
		}
	}
	return result
}
