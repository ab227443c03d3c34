package circuit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"consentd/pkg/platform/sentinel"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func TestBreaker_OpensAfterThreshold(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
	b := New("geoip", WithFailureThreshold(3), WithOpenTimeout(time.Minute), WithClock(clock.Now))

	assert.False(t, b.RecordFailure().Opened)
	assert.False(t, b.RecordFailure().Opened)
	assert.True(t, b.Allow())

	change := b.RecordFailure()
	assert.True(t, change.Opened)
	assert.Equal(t, StateOpen, b.State())
	assert.False(t, b.Allow(), "open breaker rejects calls inside the timeout")

	clock.Advance(time.Minute)
	assert.True(t, b.Allow(), "open breaker lets a probe through after the timeout")
}

func TestBreaker_ClosesAfterSuccessfulProbes(t *testing.T) {
	b := New("geoip", WithFailureThreshold(1), WithSuccessThreshold(2))
	b.RecordFailure()
	assert.Equal(t, StateOpen, b.State())

	assert.False(t, b.RecordSuccess().Closed)
	assert.True(t, b.RecordSuccess().Closed)
	assert.Equal(t, StateClosed, b.State())
}

func TestBreaker_FailureDuringProbeKeepsItOpen(t *testing.T) {
	b := New("geoip", WithFailureThreshold(1), WithSuccessThreshold(2))
	b.RecordFailure()
	b.RecordSuccess()
	b.RecordFailure()
	b.RecordSuccess()
	assert.Equal(t, StateOpen, b.State(), "success streak restarts after a failed probe")
}

func TestBreaker_SuccessResetsFailureCountWhileClosed(t *testing.T) {
	b := New("geoip", WithFailureThreshold(2))
	b.RecordFailure()
	b.RecordSuccess()
	assert.False(t, b.RecordFailure().Opened)
	assert.Equal(t, "closed", b.State().String())

	b.Reset()
	assert.True(t, b.Allow())
}

func TestBreaker_DoFailsFastWhileOpen(t *testing.T) {
	b := New("geoip", WithFailureThreshold(1), WithOpenTimeout(time.Hour))
	boom := errors.New("boom")

	err := b.Do(context.Background(), func(context.Context) error { return boom })
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, StateOpen, b.State())

	called := false
	err = b.Do(context.Background(), func(context.Context) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, sentinel.ErrCircuitOpen)
	assert.False(t, called)
}

func TestBreaker_DoIgnoresCallerCancellation(t *testing.T) {
	b := New("geoip", WithFailureThreshold(1))
	err := b.Do(context.Background(), func(context.Context) error { return context.Canceled })
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, StateClosed, b.State())
}

func TestBreaker_SingleProbeWhileOpen(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
	b := New("geoip", WithFailureThreshold(1), WithOpenTimeout(time.Minute), WithClock(clock.Now))
	b.RecordFailure()
	clock.Advance(time.Minute)

	release := make(chan struct{})
	started := make(chan struct{})
	go func() {
		_ = b.Do(context.Background(), func(context.Context) error {
			close(started)
			<-release
			return nil
		})
	}()
	<-started

	err := b.Do(context.Background(), func(context.Context) error { return nil })
	assert.ErrorIs(t, err, sentinel.ErrCircuitOpen, "second caller waits for the probe")
	assert.False(t, b.Allow())
	close(release)

	require.Eventually(t, b.Allow, time.Second, time.Millisecond)
}

func TestBreaker_OnStateChange(t *testing.T) {
	b := New("geoip", WithFailureThreshold(1), WithSuccessThreshold(1))
	var seen []State
	b.OnStateChange(func(s State) { seen = append(seen, s) })

	b.RecordFailure()
	b.RecordFailure()
	b.RecordSuccess()
	b.Reset()

	assert.Equal(t, []State{StateOpen, StateClosed}, seen)
}
