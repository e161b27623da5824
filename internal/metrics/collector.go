package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "trickle"

//nolint:gochecknoglobals // Prometheus descriptors are immutable
var (
	descRPCCalls = prometheus.NewDesc(
		prometheus.BuildFQName(namespace, "rpc", "calls_total"),
		"Total number of JSON-RPC calls made.", nil, nil)
	descRPCErrors = prometheus.NewDesc(
		prometheus.BuildFQName(namespace, "rpc", "errors_total"),
		"Total number of failed JSON-RPC calls.", nil, nil)
	descRPCLatency = prometheus.NewDesc(
		prometheus.BuildFQName(namespace, "rpc", "latency_seconds_total"),
		"Cumulative JSON-RPC latency.", nil, nil)
	descRetries = prometheus.NewDesc(
		prometheus.BuildFQName(namespace, "rpc", "retries_total"),
		"Failed attempts that were retried.", nil, nil)
	descTransfers = prometheus.NewDesc(
		prometheus.BuildFQName(namespace, "transfers", "total"),
		"Transfers by final outcome.", []string{"outcome"}, nil)
	descCycles = prometheus.NewDesc(
		prometheus.BuildFQName(namespace, "cycles", "total"),
		"Scheduler passes run.", nil, nil)
	descCyclesCritical = prometheus.NewDesc(
		prometheus.BuildFQName(namespace, "cycles", "critical_total"),
		"Scheduler passes that aborted with a critical error.", nil, nil)
	descLastCycle = prometheus.NewDesc(
		prometheus.BuildFQName(namespace, "cycles", "last_timestamp_seconds"),
		"Unix time the last pass finished.", nil, nil)
)

// Collector exports a Metrics instance to Prometheus.
type Collector struct {
	m *Metrics
}

var _ prometheus.Collector = (*Collector)(nil)

// NewCollector wraps m as a prometheus.Collector.
func NewCollector(m *Metrics) *Collector {
	return &Collector{m: m}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	for _, d := range []*prometheus.Desc{
		descRPCCalls, descRPCErrors, descRPCLatency, descRetries,
		descTransfers, descCycles, descCyclesCritical, descLastCycle,
	} {
		ch <- d
	}
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	s := c.m.Snapshot()

	ch <- prometheus.MustNewConstMetric(descRPCCalls, prometheus.CounterValue, float64(s.RPCCallsTotal))
	ch <- prometheus.MustNewConstMetric(descRPCErrors, prometheus.CounterValue, float64(s.RPCErrorsTotal))
	ch <- prometheus.MustNewConstMetric(descRPCLatency, prometheus.CounterValue, float64(s.RPCLatencyNanos)/1e9)
	ch <- prometheus.MustNewConstMetric(descRetries, prometheus.CounterValue, float64(s.RetriesTotal))

	for outcome, v := range map[string]int64{
		OutcomeConfirmed: s.Confirmed,
		OutcomeReverted:  s.Reverted,
		OutcomePending:   s.Pending,
		OutcomeSkipped:   s.Skipped,
		OutcomeFailed:    s.Failed,
	} {
		ch <- prometheus.MustNewConstMetric(descTransfers, prometheus.CounterValue, float64(v), outcome)
	}

	ch <- prometheus.MustNewConstMetric(descCycles, prometheus.CounterValue, float64(s.CyclesTotal))
	ch <- prometheus.MustNewConstMetric(descCyclesCritical, prometheus.CounterValue, float64(s.CyclesCritical))

	var last float64
	if !s.LastCycle.IsZero() {
		last = float64(s.LastCycle.UnixNano()) / 1e9
	}
	ch <- prometheus.MustNewConstMetric(descLastCycle, prometheus.GaugeValue, last)
}
