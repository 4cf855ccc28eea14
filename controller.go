package authcore

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
)

// Controller owns the in-memory session state and mediates between the
// session [Store] and the Auth [Service] collaborator. It is the single
// writer of session state; consumers read it through [Controller.State] or
// [Controller.Watch] and must treat it as the sole source of truth for
// role-based gating.
//
// A Controller is built through [Builder.Build], activated once with
// [Controller.Init], and torn down with [Controller.Close]. Methods are safe
// to call from multiple goroutines after Build.
type Controller struct {
	config  Config
	store   Store
	service Service
	audit   *auditDispatcher
	metrics *Metrics

	// mu guards state transitions and orders the store write-through ahead
	// of the in-memory commit.
	mu    sync.Mutex
	state State

	watchMu  sync.Mutex
	watchers map[int]chan State
	watchSeq int

	initOnce sync.Once
	ready    atomic.Bool

	lifeCtx    context.Context
	lifeCancel context.CancelFunc
	waiters    sync.WaitGroup
	closed     atomic.Bool
	closeOnce  sync.Once
}

// Init performs the startup transition: it consults the session store once
// and resolves Loading into Authenticated (valid persisted record) or
// Unauthenticated (absent, corrupt, or unreadable). The transition fires
// exactly once per controller lifetime; later calls are no-ops returning
// nil.
//
// A store backend failure still resolves the state machine (to
// Unauthenticated) so the shell never wedges on the spinner; the failure is
// reported to the caller.
func (c *Controller) Init(ctx context.Context) error {
	if c.closed.Load() {
		return ErrControllerClosed
	}

	var initErr error
	c.initOnce.Do(func() {
		id, err := c.store.Load(ctx)
		switch {
		case errors.Is(err, ErrCorruptedSession):
			c.metricInc(MetricStartupHealed)
			c.setState(State{Phase: PhaseUnauthenticated})
			c.emitAudit(ctx, auditEventStartupHealed, true, nil, nil, nil)
		case err != nil:
			initErr = err
			c.metricInc(MetricStartupEmpty)
			c.setState(State{Phase: PhaseUnauthenticated})
			c.emitAudit(ctx, auditEventStartupEmpty, false, nil, err, nil)
		case id == nil:
			c.metricInc(MetricStartupEmpty)
			c.setState(State{Phase: PhaseUnauthenticated})
			c.emitAudit(ctx, auditEventStartupEmpty, true, nil, nil, nil)
		default:
			c.metricInc(MetricStartupRestored)
			c.setState(State{Phase: PhaseAuthenticated, Identity: id})
			c.emitAudit(ctx, auditEventStartupRestored, true, id, nil, nil)
		}
		c.ready.Store(true)
	})
	return initErr
}

// State returns a snapshot of the current session state. The identity is a
// deep copy; mutating it does not affect the controller.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return State{Phase: c.state.Phase, Identity: c.state.Identity.Clone()}
}

// Watch subscribes to committed state transitions. Each subscriber gets a
// buffered channel receiving a snapshot per transition; a subscriber that
// falls behind misses intermediate states rather than blocking the
// controller. The returned stop function removes the subscription and
// closes the channel. Watch on a closed controller returns an
// already-closed channel.
func (c *Controller) Watch() (<-chan State, func()) {
	ch := make(chan State, 8)

	c.watchMu.Lock()
	// The closed flag is set before Close drains watchers under watchMu,
	// so checking it here means a late subscriber never registers a
	// channel that nothing will ever close.
	if c.closed.Load() {
		c.watchMu.Unlock()
		close(ch)
		return ch, func() {}
	}
	c.watchSeq++
	key := c.watchSeq
	if c.watchers == nil {
		c.watchers = make(map[int]chan State)
	}
	c.watchers[key] = ch
	c.watchMu.Unlock()

	stop := func() {
		c.watchMu.Lock()
		if got, ok := c.watchers[key]; ok {
			delete(c.watchers, key)
			close(got)
		}
		c.watchMu.Unlock()
	}
	return ch, stop
}

// Close cancels outstanding verification waiters, waits for them to drain,
// closes watch subscriptions, and flushes the audit dispatcher. A closed
// controller rejects every operation with [ErrControllerClosed]. Idempotent.
func (c *Controller) Close() {
	if c == nil {
		return
	}
	c.closeOnce.Do(func() {
		c.closed.Store(true)
		c.lifeCancel()
		c.waiters.Wait()

		c.watchMu.Lock()
		for key, ch := range c.watchers {
			delete(c.watchers, key)
			close(ch)
		}
		c.watchMu.Unlock()

		c.audit.Close()
	})
}

// AuditDropped reports how many audit events the dispatcher discarded.
func (c *Controller) AuditDropped() uint64 {
	if c == nil {
		return 0
	}
	return c.audit.Dropped()
}

// MetricsSnapshot returns a point-in-time copy of the controller's
// counters.
func (c *Controller) MetricsSnapshot() MetricsSnapshot {
	if c == nil || c.metrics == nil {
		return MetricsSnapshot{Counters: map[MetricID]uint64{}}
	}
	return c.metrics.Snapshot()
}

func (c *Controller) metricInc(id MetricID) {
	if c == nil || c.metrics == nil {
		return
	}
	c.metrics.Inc(id)
}

// opGuard gates user-initiated operations: the controller must be open and
// the startup transition resolved.
func (c *Controller) opGuard() error {
	if c.closed.Load() {
		return ErrControllerClosed
	}
	if !c.ready.Load() {
		return ErrControllerNotReady
	}
	return nil
}

// setState commits a transition and notifies watchers. Callers that need
// write-through ordering hold c.mu and use setStateLocked directly.
func (c *Controller) setState(s State) {
	c.mu.Lock()
	c.setStateLocked(s)
	c.mu.Unlock()
}

func (c *Controller) setStateLocked(s State) {
	c.state = s

	snapshot := State{Phase: s.Phase, Identity: s.Identity.Clone()}
	c.watchMu.Lock()
	for _, ch := range c.watchers {
		select {
		case ch <- snapshot:
		default:
		}
	}
	c.watchMu.Unlock()
}

// serviceCtx bounds a collaborator call with the configured timeout.
func (c *Controller) serviceCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, c.config.Service.Timeout)
}

// mapServiceError normalizes collaborator failures into the controller's
// error taxonomy. Domain sentinels pass through; deadline expiry becomes
// ErrTimeout; anything else is a service availability problem.
func mapServiceError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, context.Canceled):
		return err
	case errors.Is(err, context.DeadlineExceeded):
		return ErrTimeout
	case errors.Is(err, ErrInvalidCredentials),
		errors.Is(err, ErrAccountExists),
		errors.Is(err, ErrVerificationInvalid),
		errors.Is(err, ErrResetInvalid),
		errors.Is(err, ErrRoleUnknown),
		errors.Is(err, ErrIdentityInvalid),
		errors.Is(err, ErrTimeout),
		errors.Is(err, ErrServiceUnavailable):
		return err
	default:
		return errors.Join(ErrServiceUnavailable, err)
	}
}
