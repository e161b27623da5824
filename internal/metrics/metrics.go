// Package metrics provides dispatcher metrics collection.
// Counters are plain atomics so they are cheap to record from any goroutine;
// the same values are exported to Prometheus through a custom collector.
package metrics

import (
	"sync/atomic"
	"time"
)

// Transfer outcome labels.
const (
	OutcomeConfirmed = "confirmed"
	OutcomeReverted  = "reverted"
	OutcomePending   = "pending"
	OutcomeSkipped   = "skipped"
	OutcomeFailed    = "failed"
)

// Metrics holds dispatcher metrics using atomic counters for thread safety.
type Metrics struct {
	// RPC metrics
	rpcCallsTotal   atomic.Int64
	rpcErrorsTotal  atomic.Int64
	rpcLatencyNanos atomic.Int64
	retriesTotal    atomic.Int64

	// Transfer outcomes
	confirmed atomic.Int64
	reverted  atomic.Int64
	pending   atomic.Int64
	skipped   atomic.Int64
	failed    atomic.Int64

	// Cycle metrics
	cyclesTotal     atomic.Int64
	cyclesCritical  atomic.Int64
	lastCycleUnixNs atomic.Int64
}

// Global is the global metrics instance.
// Use this for recording metrics throughout the application.
//
//nolint:gochecknoglobals // Intentional global for metrics access
var Global = &Metrics{}

// RecordRPCCall records an RPC call with its duration and success status.
func (m *Metrics) RecordRPCCall(duration time.Duration, err error) {
	m.rpcCallsTotal.Add(1)
	m.rpcLatencyNanos.Add(duration.Nanoseconds())

	if err != nil {
		m.rpcErrorsTotal.Add(1)
	}
}

// RecordRetry records one failed attempt that is about to be retried.
func (m *Metrics) RecordRetry() {
	m.retriesTotal.Add(1)
}

// RecordOutcome records the final outcome of one transfer attempt.
// Unknown labels are ignored.
func (m *Metrics) RecordOutcome(outcome string) {
	switch outcome {
	case OutcomeConfirmed:
		m.confirmed.Add(1)
	case OutcomeReverted:
		m.reverted.Add(1)
	case OutcomePending:
		m.pending.Add(1)
	case OutcomeSkipped:
		m.skipped.Add(1)
	case OutcomeFailed:
		m.failed.Add(1)
	}
}

// RecordCycle records a finished scheduler pass.
func (m *Metrics) RecordCycle(at time.Time, critical bool) {
	m.cyclesTotal.Add(1)
	if critical {
		m.cyclesCritical.Add(1)
	}
	m.lastCycleUnixNs.Store(at.UnixNano())
}

// Snapshot is a point-in-time copy of all metrics.
type Snapshot struct {
	RPCCallsTotal   int64
	RPCErrorsTotal  int64
	RPCLatencyNanos int64
	RetriesTotal    int64
	Confirmed       int64
	Reverted        int64
	Pending         int64
	Skipped         int64
	Failed          int64
	CyclesTotal     int64
	CyclesCritical  int64
	LastCycle       time.Time
}

// Snapshot returns a point-in-time copy of all metrics.
func (m *Metrics) Snapshot() Snapshot {
	s := Snapshot{
		RPCCallsTotal:   m.rpcCallsTotal.Load(),
		RPCErrorsTotal:  m.rpcErrorsTotal.Load(),
		RPCLatencyNanos: m.rpcLatencyNanos.Load(),
		RetriesTotal:    m.retriesTotal.Load(),
		Confirmed:       m.confirmed.Load(),
		Reverted:        m.reverted.Load(),
		Pending:         m.pending.Load(),
		Skipped:         m.skipped.Load(),
		Failed:          m.failed.Load(),
		CyclesTotal:     m.cyclesTotal.Load(),
		CyclesCritical:  m.cyclesCritical.Load(),
	}
	if ns := m.lastCycleUnixNs.Load(); ns != 0 {
		s.LastCycle = time.Unix(0, ns)
	}
	return s
}

// RPCLatencyAvgMs returns the average RPC latency in milliseconds.
// Returns 0 if no calls have been made.
func (m *Metrics) RPCLatencyAvgMs() float64 {
	calls := m.rpcCallsTotal.Load()
	if calls == 0 {
		return 0
	}
	nanos := m.rpcLatencyNanos.Load()
	return float64(nanos) / float64(calls) / 1e6
}

// SuccessRate returns confirmed transfers as a percentage (0-100) of all
// transfers that reached the network. Returns 0 before the first one.
func (m *Metrics) SuccessRate() float64 {
	confirmed := m.confirmed.Load()
	total := confirmed + m.reverted.Load() + m.pending.Load() + m.failed.Load()
	if total == 0 {
		return 0
	}
	return float64(confirmed) / float64(total) * 100
}

// Reset resets all metrics to zero.
// Useful for testing.
func (m *Metrics) Reset() {
	for _, c := range []*atomic.Int64{
		&m.rpcCallsTotal, &m.rpcErrorsTotal, &m.rpcLatencyNanos, &m.retriesTotal,
		&m.confirmed, &m.reverted, &m.pending, &m.skipped, &m.failed,
		&m.cyclesTotal, &m.cyclesCritical, &m.lastCycleUnixNs,
	} {
		c.Store(0)
	}
}
