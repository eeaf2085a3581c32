package circuitbreaker

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errBoom = errors.New("boom")

func fail() (interface{}, error) { return nil, errBoom }
func ok() (interface{}, error)   { return "ok", nil }

func TestBreaker_TripsAfterThreshold(t *testing.T) {
	var transitions []string
	cb := New(Settings{
		Name:             "upstream",
		FailureThreshold: 2,
		SuccessThreshold: 1,
		Timeout:          time.Hour,
		OnStateChange: func(_ string, from, to State) {
			transitions = append(transitions, from.String()+"->"+to.String())
		},
	})

	_, err := cb.Execute(fail)
	assert.ErrorIs(t, err, errBoom)
	assert.Equal(t, Closed, cb.State())

	_, err = cb.Execute(fail)
	assert.ErrorIs(t, err, errBoom)
	assert.Equal(t, Open, cb.State())

	called := false
	_, err = cb.Execute(func() (interface{}, error) {
		called = true
		return nil, nil
	})
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.False(t, called)
	assert.Equal(t, []string{"Closed->Open"}, transitions)
}

func TestBreaker_RecoversThroughHalfOpen(t *testing.T) {
	cb := New(Settings{FailureThreshold: 1, SuccessThreshold: 1, Timeout: 20 * time.Millisecond})

	_, _ = cb.Execute(fail)
	require.Equal(t, Open, cb.State())

	time.Sleep(40 * time.Millisecond)
	assert.Equal(t, HalfOpen, cb.State())

	res, err := cb.Execute(ok)
	require.NoError(t, err)
	assert.Equal(t, "ok", res)
	assert.Equal(t, Closed, cb.State())
}

func TestBreaker_SuccessResetsFailures(t *testing.T) {
	cb := New(Settings{FailureThreshold: 2, Timeout: time.Hour})

	_, _ = cb.Execute(fail)
	_, _ = cb.Execute(ok)
	_, _ = cb.Execute(fail)
	assert.Equal(t, Closed, cb.State())
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "Half-Open", HalfOpen.String())
	assert.Equal(t, "Unknown", State(42).String())
}
