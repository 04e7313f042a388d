package monitoring

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func newTestMonitor(threshold int, counts ...int) *GoroutineMonitor {
	gm := NewGoroutineMonitor(time.Hour, threshold, zerolog.Nop())
	gm.baseline, gm.current, gm.peak = 10, 10, 10
	next := 0
	gm.numGoroutine = func() int {
		n := counts[next]
		if next < len(counts)-1 {
			next++
		}
		return n
	}
	return gm
}

func TestGoroutineMonitor_TracksPeakAndGrowth(t *testing.T) {
	gm := newTestMonitor(1000, 15, 30, 12)

	for i := 0; i < 3; i++ {
		gm.checkGoroutines()
	}

	m := gm.GetMetrics()
	assert.Equal(t, 12, m.Current)
	assert.Equal(t, 10, m.Baseline)
	assert.Equal(t, 30, m.Peak)
	assert.Equal(t, 2, m.Growth)
}

func TestGoroutineMonitor_AlertCooldown(t *testing.T) {
	gm := newTestMonitor(20, 25, 26, 5)

	assert.True(t, gm.checkGoroutines(), "first sample over the threshold alerts")
	assert.False(t, gm.checkGoroutines(), "second alert is inside the cooldown")
	assert.False(t, gm.checkGoroutines(), "under the threshold")

	gm.lastAlert = time.Now().Add(-time.Hour)
	gm.numGoroutine = func() int { return 40 }
	assert.True(t, gm.checkGoroutines())
}

func TestGoroutineMonitor_ComponentCountsAreCopied(t *testing.T) {
	gm := newTestMonitor(1000, 10)
	gm.RegisterComponent("game_session", 4)

	m := gm.GetMetrics()
	m.ComponentCounts["game_session"] = 99
	assert.Equal(t, map[string]int{"game_session": 4}, gm.GetMetrics().ComponentCounts)
}

func TestGoroutineMonitor_StartStop(t *testing.T) {
	gm := NewGoroutineMonitor(time.Millisecond, 1<<20, zerolog.Nop())
	gm.Start()

	assert.Eventually(t, func() bool {
		return gm.GetMetrics().Current > 0
	}, time.Second, 5*time.Millisecond)

	gm.Stop()
	gm.Stop()
}
