package customers

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func newBareSubscription(emitEmpty func()) *Subscription {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Subscription{id: "test", scope: "test", ctx: ctx, cancel: cancel, emitEmpty: emitEmpty}
	s.coalescer = newCoalescer(0, s.startRebuild)
	return s
}

func emitting(got *[]string, value string, err error) rebuildFunc {
	return func(ctx context.Context) (func(), error) {
		if err != nil {
			return nil, err
		}
		return func() { *got = append(*got, value) }, nil
	}
}

func TestRunDropsStaleGeneration(t *testing.T) {
	var got []string
	s := newBareSubscription(func() { got = append(got, "empty") })

	s.rebuild = emitting(&got, "newer", nil)
	s.run(2)
	s.rebuild = emitting(&got, "older", nil)
	s.run(1)

	assert.Equal(t, []string{"newer"}, got)
}

func TestRunFailureRedeliversLastGood(t *testing.T) {
	var got []string
	s := newBareSubscription(func() { got = append(got, "empty") })

	s.rebuild = emitting(&got, "v1", nil)
	s.run(1)
	s.rebuild = emitting(&got, "", errors.New("source down"))
	s.run(2)

	assert.Equal(t, []string{"v1", "v1"}, got)
}

func TestRunFailureBeforeFirstValueDeliversEmpty(t *testing.T) {
	var got []string
	s := newBareSubscription(func() { got = append(got, "empty") })

	s.rebuild = emitting(&got, "", errors.New("source down"))
	s.run(1)

	assert.Equal(t, []string{"empty"}, got)
}

func TestRunIgnoresCancellation(t *testing.T) {
	var got []string
	s := newBareSubscription(func() { got = append(got, "empty") })

	s.rebuild = emitting(&got, "", context.Canceled)
	s.run(1)

	assert.Empty(t, got)
}

func TestRunAfterCloseDeliversNothing(t *testing.T) {
	var got []string
	s := newBareSubscription(func() { got = append(got, "empty") })
	s.deliverMu.Lock()
	s.closed = true
	s.deliverMu.Unlock()

	s.rebuild = emitting(&got, "late", nil)
	s.run(1)

	assert.Empty(t, got)
}

func TestSubscriptionStateNames(t *testing.T) {
	assert.Equal(t, "idle", StateIdle.String())
	assert.Equal(t, "tearing_down", StateTearingDown.String())
	assert.Equal(t, "closed", StateClosed.String())
}
