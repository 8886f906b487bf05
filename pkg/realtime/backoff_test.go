package realtime_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/agentstation/tasksync/pkg/realtime"
)

func TestBaseDelay(t *testing.T) {
	b := realtime.DefaultBackoff

	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{-3, time.Second},
		{0, time.Second},
		{1, time.Second},
		{2, 2 * time.Second},
		{3, 4 * time.Second},
		{5, 16 * time.Second},
		{6, 30 * time.Second},
		{64, 30 * time.Second},
		{1 << 20, 30 * time.Second},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, b.BaseDelay(tt.attempt), "attempt %d", tt.attempt)
	}
}

func TestDelayMonotonicAndCapped(t *testing.T) {
	b := realtime.DefaultBackoff
	noJitter := func(time.Duration) time.Duration { return 0 }

	prev := time.Duration(0)
	for attempt := 1; attempt <= 100; attempt++ {
		d := b.Delay(attempt, noJitter)
		assert.GreaterOrEqual(t, d, prev, "attempt %d", attempt)
		assert.LessOrEqual(t, d, b.Max)
		prev = d
	}
	assert.Equal(t, b.Max, prev)
}

func TestDelayFirstAttemptWindow(t *testing.T) {
	b := realtime.DefaultBackoff
	for range 1000 {
		d := b.Delay(1, realtime.RandomJitter)
		assert.GreaterOrEqual(t, d, 1000*time.Millisecond)
		assert.Less(t, d, 2000*time.Millisecond)
	}
}

func TestDelayJitterNeverExceedsCap(t *testing.T) {
	b := realtime.DefaultBackoff
	maxJitter := func(limit time.Duration) time.Duration { return limit - 1 }
	assert.Equal(t, 17*time.Second-1, b.Delay(5, maxJitter))
	assert.Equal(t, b.Max, b.Delay(6, maxJitter))
	assert.Equal(t, b.Max, b.Delay(1000, realtime.RandomJitter))
	assert.Equal(t, time.Second, b.Delay(1, nil))
}

func TestRandomJitter(t *testing.T) {
	assert.Zero(t, realtime.RandomJitter(0))
	assert.Zero(t, realtime.RandomJitter(-time.Second))
	for range 1000 {
		j := realtime.RandomJitter(time.Second)
		assert.GreaterOrEqual(t, j, time.Duration(0))
		assert.Less(t, j, time.Second)
	}
}
