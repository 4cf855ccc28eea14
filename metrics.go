package authcore

import "sync/atomic"

// MetricID identifies one counter in the in-process metrics system.
type MetricID uint16

const (
	// MetricStartupRestored counts startups that restored a persisted session.
	MetricStartupRestored MetricID = iota
	// MetricStartupEmpty counts startups with no persisted session.
	MetricStartupEmpty
	// MetricStartupHealed counts startups that cleared a corrupt record.
	MetricStartupHealed
	// MetricLoginSuccess counts successful logins.
	MetricLoginSuccess
	// MetricLoginFailure counts failed logins, whatever the cause.
	MetricLoginFailure
	// MetricSignupCompleted counts signups that scheduled deferred verification.
	MetricSignupCompleted
	// MetricSignupPending counts workshop signups left pending approval.
	MetricSignupPending
	// MetricSignupRejected counts signups rejected by local validation or the
	// collaborator.
	MetricSignupRejected
	// MetricVerificationCompleted counts deferred verifications that resolved
	// and authenticated the session.
	MetricVerificationCompleted
	// MetricVerificationAbandoned counts verification waiters cancelled by
	// controller teardown or superseded by a state change.
	MetricVerificationAbandoned
	// MetricLogout counts logouts, including already-unauthenticated ones.
	MetricLogout
	// MetricEmailConfirm counts VerifyEmail delegations.
	MetricEmailConfirm
	// MetricPasswordResetRequest counts ForgotPassword delegations.
	MetricPasswordResetRequest
	// MetricPasswordResetConfirm counts ResetPassword delegations.
	MetricPasswordResetConfirm

	metricIDCount
)

const cacheLineSize = 64

type paddedCounter struct {
	value uint64
	_     [cacheLineSize - 8]byte
}

// Metrics holds the controller's atomic counters. All operations are no-ops
// when disabled.
type Metrics struct {
	enabled  bool
	counters [metricIDCount]paddedCounter
}

// MetricsSnapshot is a point-in-time copy of all counters.
type MetricsSnapshot struct {
	Counters map[MetricID]uint64
}

// NewMetrics creates a [Metrics] instance configured by the given
// [MetricsConfig].
func NewMetrics(cfg MetricsConfig) *Metrics {
	return &Metrics{enabled: cfg.Enabled}
}

// Enabled reports whether counters are active.
func (m *Metrics) Enabled() bool {
	return m != nil && m.enabled
}

// Inc increments one counter.
func (m *Metrics) Inc(id MetricID) {
	if m == nil || !m.enabled || id >= metricIDCount {
		return
	}
	atomic.AddUint64(&m.counters[id].value, 1)
}

// Value reads one counter.
func (m *Metrics) Value(id MetricID) uint64 {
	if m == nil || id >= metricIDCount {
		return 0
	}
	return atomic.LoadUint64(&m.counters[id].value)
}

// Snapshot copies all counters.
func (m *Metrics) Snapshot() MetricsSnapshot {
	if m == nil || !m.enabled {
		return MetricsSnapshot{Counters: map[MetricID]uint64{}}
	}

	s := MetricsSnapshot{
		Counters: make(map[MetricID]uint64, int(metricIDCount)),
	}
	for id := MetricID(0); id < metricIDCount; id++ {
		s.Counters[id] = atomic.LoadUint64(&m.counters[id].value)
	}
	return s
}
