package common

import "time"

// A restriction means that only the specified number of requests
// are allowed for a specific time duration
type Restriction struct {
	Requests int           `mapstructure:"requests"`
	Duration time.Duration `mapstructure:"duration"`
}

// Analyse the recent history of requests and find out
// if a new request at the given time should be allowed or not
func (rest *Restriction) Analyse(history []time.Time, currentTime time.Time) Analysis {

	if rest.Requests <= 0 {
		return Analysis{allowed: true}
	}

	// Count the requests served inside my duration, starting from the end.
	// If one request is too old, the rest will be too
	count := 0
	for i := len(history) - 1; i >= 0; i-- {
		if currentTime.Sub(history[i]) >= rest.Duration {
			break
		}
		count++
	}

	if count < rest.Requests {
		return Analysis{allowed: true}
	}

	// The oldest request inside the window decides when a slot frees up
	oldestRequestTime := history[len(history)-count]
	return Analysis{allowed: false, wait: oldestRequestTime.Add(rest.Duration).Sub(currentTime)}
}
