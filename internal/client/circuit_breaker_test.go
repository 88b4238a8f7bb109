package client

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func TestCircuitBreaker(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	cb := NewCircuitBreaker(3, 100*time.Millisecond)
	cb.now = clock.now

	assert.Equal(t, StateClosed, cb.State())
	assert.True(t, cb.Allow(), "closed breaker must allow calls")

	cb.Failure()
	cb.Failure()
	assert.Equal(t, StateClosed, cb.State(), "two failures stay below the threshold")

	cb.Failure()
	assert.Equal(t, StateOpen, cb.State())
	assert.False(t, cb.Allow())

	clock.advance(150 * time.Millisecond)
	assert.True(t, cb.Allow(), "probe allowed after cooldown")
	assert.Equal(t, StateHalfOpen, cb.State())
	assert.False(t, cb.Allow(), "only one probe while half-open")

	// failed probe reopens
	cb.Failure()
	assert.Equal(t, StateOpen, cb.State())

	clock.advance(150 * time.Millisecond)
	require.True(t, cb.Allow())
	cb.Success()
	assert.Equal(t, StateClosed, cb.State())
	assert.Equal(t, 0, cb.failures)
}

func TestCircuitBreaker_Guard(t *testing.T) {
	cb := NewCircuitBreaker(1, time.Hour)
	boom := errors.New("boom")

	require.NoError(t, cb.Guard(func() error { return nil }))

	err := cb.Guard(func() error { return boom })
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, StateOpen, cb.State())

	called := false
	err = cb.Guard(func() error { called = true; return nil })
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.False(t, called)
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "closed", StateClosed.String())
	assert.Equal(t, "open", StateOpen.String())
	assert.Equal(t, "half-open", StateHalfOpen.String())
	assert.Equal(t, "unknown", State(9).String())
}
