package realtime

import (
	"math/rand/v2"
	"time"

	"github.com/agentstation/tasksync/pkg/constants"
)

// Backoff is the reconnection delay policy:
//
//	delay(attempt) = min(Base * 2^(attempt-1) + rand[0, Jitter), Max)
type Backoff struct {
	Base   time.Duration
	Jitter time.Duration
	Max    time.Duration
}

// DefaultBackoff waits 1s, 2s, 4s, ... plus up to 1s of jitter, never more than 30s.
var DefaultBackoff = Backoff{
	Base:   constants.ReconnectBaseDelay,
	Jitter: constants.ReconnectJitterMax,
	Max:    constants.ReconnectMaxDelay,
}

// JitterFunc returns a random duration in [0, limit).
type JitterFunc func(limit time.Duration) time.Duration

// RandomJitter draws uniformly from [0, limit).
func RandomJitter(limit time.Duration) time.Duration {
	if limit <= 0 {
		return 0
	}
	return rand.N(limit)
}

// maxShift keeps Base<<shift from overflowing for any sane Base.
const maxShift = 30

// BaseDelay is the delay for attempt ignoring jitter, capped at Max.
// Attempts below 1 are treated as 1.
func (b Backoff) BaseDelay(attempt int) time.Duration {
	shift := max(attempt, 1) - 1
	if shift > maxShift {
		return b.Max
	}
	d := b.Base << shift
	if d <= 0 || d > b.Max {
		return b.Max
	}
	return d
}

// Delay is the jittered delay for attempt, capped at Max.
func (b Backoff) Delay(attempt int, jitter JitterFunc) time.Duration {
	var j time.Duration
	if jitter != nil {
		j = jitter(b.Jitter)
	}
	return min(b.BaseDelay(attempt)+j, b.Max)
}
