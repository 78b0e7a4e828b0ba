package customers

import (
	"context"
	"errors"
	"log"
	"sync"
	"sync/atomic"

	"github.com/robfig/cron/v3"
)

// SubscriptionState is the lifecycle position of a Subscription.
type SubscriptionState int32

const (
	StateIdle SubscriptionState = iota
	StateSubscribing
	StateActive
	StateTearingDown
	StateClosed
)

func (s SubscriptionState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSubscribing:
		return "subscribing"
	case StateActive:
		return "active"
	case StateTearingDown:
		return "tearing_down"
	case StateClosed:
		return "closed"
	}
	return "unknown"
}

// rebuildFunc recomputes a subscription's value from the sources and returns
// a closure delivering it to the subscriber.
type rebuildFunc func(ctx context.Context) (emit func(), err error)

// Subscription keeps one subscriber's view live. Every change notification
// from either listener, and every scheduled refresh, starts a full rebuild;
// rebuilds may overlap and only the newest finished one is delivered.
//
// Close is the only cleanup path.
type Subscription struct {
	id     string
	scope  string
	engine *Engine

	ctx       context.Context
	cancel    context.CancelFunc
	rebuild   rebuildFunc
	emitEmpty func()
	coalescer *coalescer

	listeners []CancelFunc
	cronEntry cron.EntryID
	scheduled bool

	state      atomic.Int32
	closing    atomic.Bool
	generation atomic.Uint64
	closeOnce  sync.Once

	// deliverMu serializes callbacks with each other and with Close.
	deliverMu sync.Mutex
	closed    bool
	delivered uint64
	lastGood  func()
}

// ID identifies the subscription in logs.
func (s *Subscription) ID() string {
	return s.id
}

func (s *Subscription) State() SubscriptionState {
	return SubscriptionState(s.state.Load())
}

func (s *Subscription) setState(state SubscriptionState) {
	s.state.Store(int32(state))
}

// Refresh requests a rebuild as if a source had changed.
func (s *Subscription) Refresh() {
	if s.closing.Load() {
		return
	}
	s.coalescer.Trigger()
}

// Close cancels both listeners and any in-flight rebuild. Once it returns the
// callback is never invoked again. Close must not be called from inside the
// subscription's own callback.
func (s *Subscription) Close() {
	s.closeOnce.Do(func() {
		s.setState(StateTearingDown)
		s.closing.Store(true)

		s.deliverMu.Lock()
		s.closed = true
		s.lastGood = nil
		s.deliverMu.Unlock()

		s.cancel()
		s.coalescer.Stop()
		for _, stop := range s.listeners {
			stop()
		}
		s.engine.release(s)

		s.setState(StateClosed)
		log.Printf("[CUSTOMERS] [INFO] subscription %s (%s) closed", s.id, s.scope)
	})
}

func (s *Subscription) startRebuild() {
	gen := s.generation.Add(1)
	go s.run(gen)
}

func (s *Subscription) run(gen uint64) {
	emit, err := s.rebuild(s.ctx)

	s.deliverMu.Lock()
	defer s.deliverMu.Unlock()

	if s.closed {
		return
	}
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		log.Printf("[CUSTOMERS] [ERROR] subscription %s (%s) rebuild %d failed: %v", s.id, s.scope, gen, err)
		emit = s.lastGood
		if emit == nil {
			emit = s.emitEmpty
		}
	}
	if gen <= s.delivered {
		return
	}
	s.delivered = gen
	if err == nil {
		s.lastGood = emit
	}
	emit()
}
