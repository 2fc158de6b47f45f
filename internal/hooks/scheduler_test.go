package hooks

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTickerSchedulerEveryAndClear(t *testing.T) {
	s := NewTickerScheduler(0)
	defer s.Close()

	var ticks atomic.Int32
	id, err := s.Every(time.Millisecond, func() { ticks.Add(1) })
	require.NoError(t, err)
	assert.Equal(t, 1, s.Live())

	require.Eventually(t, func() bool { return ticks.Load() >= 3 }, 2*time.Second, time.Millisecond)
	assert.True(t, s.Clear(id))
	assert.False(t, s.Clear(id))
	assert.Equal(t, 0, s.Live())
}

func TestTickerSchedulerAfterFiresOnce(t *testing.T) {
	s := NewTickerScheduler(0)
	defer s.Close()

	fired := make(chan struct{}, 2)
	_, err := s.After(time.Millisecond, func() { fired <- struct{}{} })
	require.NoError(t, err)

	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Fatal("timeout never fired")
	}
	require.Eventually(t, func() bool { return s.Live() == 0 }, time.Second, time.Millisecond)
}

func TestTickerSchedulerCapAndClose(t *testing.T) {
	s := NewTickerScheduler(2)
	for range 2 {
		_, err := s.Every(time.Hour, func() {})
		require.NoError(t, err)
	}
	_, err := s.Every(time.Hour, func() {})
	assert.ErrorIs(t, err, ErrTooManyTimers)

	s.Close()
	assert.Equal(t, 0, s.Live())
	_, err = s.After(time.Hour, func() {})
	assert.ErrorIs(t, err, ErrSchedulerClosed)
}

func TestManualSchedulerOrdering(t *testing.T) {
	s := NewManualScheduler(0)
	var got []string
	_, err := s.Every(2*time.Second, func() { got = append(got, "every") })
	require.NoError(t, err)
	once, err := s.After(3*time.Second, func() { got = append(got, "after") })
	require.NoError(t, err)
	cleared, err := s.After(time.Second, func() { got = append(got, "cleared") })
	require.NoError(t, err)
	assert.True(t, s.Clear(cleared))

	s.Advance(5 * time.Second)
	assert.Equal(t, []string{"every", "after", "every"}, got)
	assert.Equal(t, 5*time.Second, s.Now())
	assert.False(t, s.Clear(once))
	assert.Equal(t, 1, s.Live())
}
