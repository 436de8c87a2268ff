// Package metrics provides lock-free counters for engine observability.
//
// Counters live in cache-line-padded uint64 slots and are incremented
// atomically. The write path is allocation-free. Export to an external
// system is the host's job, via [Metrics.Snapshot].
package metrics

import "sync/atomic"

// MetricID identifies a counter.
type MetricID uint16

const (
	MetricSignInSuccess MetricID = iota
	MetricSignInFailure
	MetricOTPSent
	MetricOTPSendFailure
	MetricOTPVerifySuccess
	MetricOTPVerifyFailure
	MetricUserProvisioned
	MetricPasswordResetRequest
	MetricPasswordResetSuccess
	MetricPasswordResetFailure
	MetricSessionCreated

	metricIDCount
)

const cacheLineSize = 64

type paddedCounter struct {
	value uint64
	_     [cacheLineSize - 8]byte
}

// Config controls whether counters record at all.
type Config struct {
	Enabled bool
}

// Metrics is the counter set. A nil *Metrics is valid and records nothing.
type Metrics struct {
	enabled  bool
	counters [metricIDCount]paddedCounter
}

func New(cfg Config) *Metrics {
	return &Metrics{
		enabled: cfg.Enabled,
	}
}

func (m *Metrics) Enabled() bool {
	return m != nil && m.enabled
}

func (m *Metrics) Inc(id MetricID) {
	if m == nil || !m.enabled || id >= metricIDCount {
		return
	}
	atomic.AddUint64(&m.counters[id].value, 1)
}

func (m *Metrics) Value(id MetricID) uint64 {
	if m == nil || id >= metricIDCount {
		return 0
	}
	return atomic.LoadUint64(&m.counters[id].value)
}

// Snapshot returns a point-in-time copy of every counter.
func (m *Metrics) Snapshot() Snapshot {
	if m == nil || !m.enabled {
		return Snapshot{Counters: map[MetricID]uint64{}}
	}

	s := Snapshot{
		Counters: make(map[MetricID]uint64, int(metricIDCount)),
	}
	for id := MetricID(0); id < metricIDCount; id++ {
		s.Counters[id] = atomic.LoadUint64(&m.counters[id].value)
	}
	return s
}

// Snapshot is a consistent-enough copy of the counters. Individual loads
// are atomic; the set as a whole is not taken under a lock.
type Snapshot struct {
	Counters map[MetricID]uint64
}
