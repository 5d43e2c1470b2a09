package accountd

import "sync/atomic"

// MetricID identifies a counter in the in-process metrics system.
type MetricID uint8

const (
	// MetricRegisterSuccess counts completed registrations.
	MetricRegisterSuccess MetricID = iota
	// MetricRegisterDuplicate counts registrations rejected for a taken
	// username or email.
	MetricRegisterDuplicate
	// MetricRegisterDeliveryFailure counts registrations rolled back after
	// a failed OTP delivery.
	MetricRegisterDeliveryFailure
	// MetricOTPIssued counts challenges issued, both registration and reset.
	MetricOTPIssued
	// MetricOTPVerified counts successful verify-OTP completions.
	MetricOTPVerified
	// MetricOTPFailure counts rejected codes (missing, mismatch, expired).
	MetricOTPFailure
	// MetricLoginSuccess counts successful logins.
	MetricLoginSuccess
	// MetricLoginFailure counts credential failures, unknown email included.
	MetricLoginFailure
	// MetricLoginUnverified counts logins refused for pending verification.
	MetricLoginUnverified
	// MetricResetRequest counts forgot-password challenges issued.
	MetricResetRequest
	// MetricResetSuccess counts completed password resets.
	MetricResetSuccess
	// MetricResetFailure counts rejected password resets.
	MetricResetFailure
	// MetricAvatarUpload counts stored avatars.
	MetricAvatarUpload
	// MetricAccountDisabled counts administrative soft deletes.
	MetricAccountDisabled
	// MetricAccountDeleted counts permanent self-service removals.
	MetricAccountDeleted

	metricIDCount
)

// Metrics holds atomic counters. All operations on a disabled instance
// are no-ops.
type Metrics struct {
	enabled  bool
	counters [metricIDCount]atomic.Uint64
}

// MetricsSnapshot is a point-in-time copy of all counters.
type MetricsSnapshot struct {
	Counters map[MetricID]uint64
}

// NewMetrics creates a [Metrics] instance configured by cfg.
func NewMetrics(cfg MetricsConfig) *Metrics {
	return &Metrics{enabled: cfg.Enabled}
}

// Inc increments the counter for id.
func (m *Metrics) Inc(id MetricID) {
	if m == nil || !m.enabled || id >= metricIDCount {
		return
	}
	m.counters[id].Add(1)
}

// Get returns the current value of the counter for id.
func (m *Metrics) Get(id MetricID) uint64 {
	if m == nil || !m.enabled || id >= metricIDCount {
		return 0
	}
	return m.counters[id].Load()
}

// Snapshot deep-copies all counters.
func (m *Metrics) Snapshot() MetricsSnapshot {
	snap := MetricsSnapshot{Counters: make(map[MetricID]uint64, metricIDCount)}
	if m == nil || !m.enabled {
		return snap
	}
	for id := MetricID(0); id < metricIDCount; id++ {
		snap.Counters[id] = m.counters[id].Load()
	}
	return snap
}
