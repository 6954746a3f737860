// Package metrics provides internal metrics utilities for ha-table.
package metrics

import "github.com/arloliu/ha-table/types"

// NopMetrics is a no-op metrics collector that discards all metrics.
//
// This is used as the default metrics collector when no collector is
// configured, avoiding nil checks throughout the codebase.
type NopMetrics struct{}

// Compile-time assertion that NopMetrics implements types.MetricsCollector.
var _ types.MetricsCollector = (*NopMetrics)(nil)

// NewNopMetrics creates a new no-op metrics collector.
//
// Returns:
//   - *NopMetrics: A collector that discards all metrics
func NewNopMetrics() *NopMetrics {
	return &NopMetrics{}
}

// IncReadTotal discards the metric.
func (m *NopMetrics) IncReadTotal(_ types.ReplicaIndex) {}

// IncReadError discards the metric.
func (m *NopMetrics) IncReadError(_ types.ReplicaIndex) {}

// ObserveReadDuration discards the metric.
func (m *NopMetrics) ObserveReadDuration(_ types.ReplicaIndex, _ float64) {}

// IncWriteTotal discards the metric.
func (m *NopMetrics) IncWriteTotal(_ types.ReplicaIndex) {}

// IncWriteError discards the metric.
func (m *NopMetrics) IncWriteError(_ types.ReplicaIndex) {}

// ObserveWriteDuration discards the metric.
func (m *NopMetrics) ObserveWriteDuration(_ types.ReplicaIndex, _ float64) {}

// IncFanoutSuccess discards the metric.
func (m *NopMetrics) IncFanoutSuccess() {}

// IncFanoutFailure discards the metric.
func (m *NopMetrics) IncFanoutFailure() {}

// IncDDLFailFastAbort discards the metric.
func (m *NopMetrics) IncDDLFailFastAbort(_ types.ReplicaIndex) {}

// IncLGetCollapsed discards the metric.
func (m *NopMetrics) IncLGetCollapsed(_ types.ReplicaIndex) {}

// ObserveLGetCells discards the metric.
func (m *NopMetrics) ObserveLGetCells(_ int) {}
