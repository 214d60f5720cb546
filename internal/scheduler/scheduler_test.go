package scheduler

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestScheduler(t *testing.T) *Scheduler {
	t.Helper()
	s, err := New(zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Stop() })
	return s
}

func TestSchedule_RunsOnce(t *testing.T) {
	s := newTestScheduler(t)

	var runs atomic.Int32
	require.NoError(t, s.Schedule("chat:1", 20*time.Millisecond, func() { runs.Add(1) }))
	assert.Equal(t, 1, s.Pending())

	assert.Eventually(t, func() bool { return runs.Load() == 1 }, 2*time.Second, 10*time.Millisecond)
	assert.Eventually(t, func() bool { return s.Pending() == 0 }, time.Second, 10*time.Millisecond)

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(1), runs.Load())
}

func TestSchedule_ZeroDelayRunsImmediately(t *testing.T) {
	s := newTestScheduler(t)

	done := make(chan struct{})
	require.NoError(t, s.Schedule("now", 0, func() { close(done) }))

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("task did not run")
	}
}

func TestCancel(t *testing.T) {
	s := newTestScheduler(t)

	var runs atomic.Int32
	require.NoError(t, s.Schedule("chat:2", 100*time.Millisecond, func() { runs.Add(1) }))

	assert.True(t, s.Cancel("chat:2"))
	assert.False(t, s.Cancel("chat:2"))
	assert.Equal(t, 0, s.Pending())

	time.Sleep(250 * time.Millisecond)
	assert.Equal(t, int32(0), runs.Load())
}

func TestSchedule_ReplacesSameKey(t *testing.T) {
	s := newTestScheduler(t)

	var first, second atomic.Int32
	require.NoError(t, s.Schedule("chat:3", 100*time.Millisecond, func() { first.Add(1) }))
	require.NoError(t, s.Schedule("chat:3", 30*time.Millisecond, func() { second.Add(1) }))
	assert.Equal(t, 1, s.Pending())

	assert.Eventually(t, func() bool { return second.Load() == 1 }, 2*time.Second, 10*time.Millisecond)
	time.Sleep(200 * time.Millisecond)
	assert.Equal(t, int32(0), first.Load())
}

func TestStop_DropsPending(t *testing.T) {
	s, err := New(zap.NewNop())
	require.NoError(t, err)

	var runs atomic.Int32
	require.NoError(t, s.Schedule("later", 100*time.Millisecond, func() { runs.Add(1) }))
	require.NoError(t, s.Stop())

	assert.Equal(t, 0, s.Pending())
	time.Sleep(200 * time.Millisecond)
	assert.Equal(t, int32(0), runs.Load())
}
