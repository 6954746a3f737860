// Package vm adapts github.com/VictoriaMetrics/metrics to the
// types.MetricsCollector interface.
package vm

import (
	"fmt"
	"io"
	"net/http"

	"github.com/VictoriaMetrics/metrics"

	"github.com/arloliu/ha-table/types"
)

// Option configures a Collector.
type Option func(*Collector)

// WithPrefix sets the metric name prefix.
//
// Default: "ha_table"
func WithPrefix(prefix string) Option {
	return func(c *Collector) {
		c.prefix = prefix
	}
}

// WithReplicaNames sets custom display names for replicas in metric labels.
//
// Default: numeric replica index ("0", "1", ...)
func WithReplicaNames(names types.ReplicaNames) Option {
	return func(c *Collector) {
		c.replicaNames = names
	}
}

// WithReplicaCount sets how many per-replica metric families to pre-create.
//
// Must be called (or inferred from WithReplicaNames) before New returns,
// since VictoriaMetrics metrics are pre-created rather than created
// on-demand per label value.
//
// Default: 2
func WithReplicaCount(n int) Option {
	return func(c *Collector) {
		c.replicaCount = n
	}
}

// WithMetricsSet sets the metrics set to use.
//
// If provided, the collector will register metrics with this set instead of
// creating a new one. The caller is responsible for exposing this set
// (e.g., via metrics.WritePrometheus or a custom handler).
func WithMetricsSet(set *metrics.Set) Option {
	return func(c *Collector) {
		c.set = set
	}
}

// Collector implements types.MetricsCollector using VictoriaMetrics.
//
// All metrics are pre-created at initialization time for optimal
// performance. Thread-safe for concurrent use.
type Collector struct {
	set          *metrics.Set
	prefix       string
	replicaNames types.ReplicaNames
	replicaCount int

	readTotal    []*metrics.Counter
	readErrors   []*metrics.Counter
	readDuration []*metrics.Histogram

	writeTotal    []*metrics.Counter
	writeErrors   []*metrics.Counter
	writeDuration []*metrics.Histogram

	fanoutSuccess *metrics.Counter
	fanoutFailure *metrics.Counter

	ddlFailFastAbort []*metrics.Counter

	lgetCollapsed []*metrics.Counter
	lgetCells     *metrics.Histogram
}

// Compile-time assertion that Collector implements types.MetricsCollector.
var _ types.MetricsCollector = (*Collector)(nil)

// New creates a new VictoriaMetrics-based metrics collector.
//
// The collector creates its own metrics.Set and registers it globally
// unless WithMetricsSet is used. All metrics are pre-created at
// initialization for optimal performance.
func New(opts ...Option) *Collector {
	c := &Collector{
		prefix:       "ha_table",
		replicaCount: 2,
	}

	for _, opt := range opts {
		opt(c)
	}

	if len(c.replicaNames) > c.replicaCount {
		c.replicaCount = len(c.replicaNames)
	}

	if c.set == nil {
		c.set = metrics.NewSet()
		metrics.RegisterSet(c.set)
	}

	c.initMetrics()

	return c
}

func (c *Collector) name(i types.ReplicaIndex) string {
	return c.replicaNames.Name(i)
}

// initMetrics pre-creates all per-replica metrics with the configured prefix.
func (c *Collector) initMetrics() {
	p := c.prefix
	n := c.replicaCount

	c.readTotal = make([]*metrics.Counter, n)
	c.readErrors = make([]*metrics.Counter, n)
	c.readDuration = make([]*metrics.Histogram, n)
	c.writeTotal = make([]*metrics.Counter, n)
	c.writeErrors = make([]*metrics.Counter, n)
	c.writeDuration = make([]*metrics.Histogram, n)
	c.ddlFailFastAbort = make([]*metrics.Counter, n)
	c.lgetCollapsed = make([]*metrics.Counter, n)

	for i := 0; i < n; i++ {
		label := c.name(types.ReplicaIndex(i))
		c.readTotal[i] = c.set.NewCounter(fmt.Sprintf(`%s_read_total{replica="%s"}`, p, label))
		c.readErrors[i] = c.set.NewCounter(fmt.Sprintf(`%s_read_errors_total{replica="%s"}`, p, label))
		c.readDuration[i] = c.set.NewHistogram(fmt.Sprintf(`%s_read_duration_seconds{replica="%s"}`, p, label))

		c.writeTotal[i] = c.set.NewCounter(fmt.Sprintf(`%s_write_total{replica="%s"}`, p, label))
		c.writeErrors[i] = c.set.NewCounter(fmt.Sprintf(`%s_write_errors_total{replica="%s"}`, p, label))
		c.writeDuration[i] = c.set.NewHistogram(fmt.Sprintf(`%s_write_duration_seconds{replica="%s"}`, p, label))

		c.ddlFailFastAbort[i] = c.set.NewCounter(fmt.Sprintf(`%s_ddl_failfast_aborts_total{replica="%s"}`, p, label))
		c.lgetCollapsed[i] = c.set.NewCounter(fmt.Sprintf(`%s_lget_collapsed_total{replica="%s"}`, p, label))
	}

	c.fanoutSuccess = c.set.NewCounter(fmt.Sprintf(`%s_fanout_success_total`, p))
	c.fanoutFailure = c.set.NewCounter(fmt.Sprintf(`%s_fanout_failure_total`, p))
	c.lgetCells = c.set.NewHistogram(fmt.Sprintf(`%s_lget_cells`, p))
}

// Set returns the underlying VictoriaMetrics set.
func (c *Collector) Set() *metrics.Set {
	return c.set
}

// Handler returns an HTTP handler that exposes metrics in Prometheus format.
func (c *Collector) Handler(w http.ResponseWriter, _ *http.Request) {
	c.set.WritePrometheus(w)
}

// WritePrometheus writes all metrics in Prometheus format to the given writer.
func (c *Collector) WritePrometheus(w io.Writer) {
	c.set.WritePrometheus(w)
}

func (c *Collector) idx(replica types.ReplicaIndex) int {
	i := int(replica)
	if i < 0 || i >= len(c.readTotal) {
		return -1
	}
	return i
}

// IncReadTotal increments the total read operations counter for a replica.
func (c *Collector) IncReadTotal(replica types.ReplicaIndex) {
	if i := c.idx(replica); i >= 0 {
		c.readTotal[i].Inc()
	}
}

// IncReadError increments the read error counter for a replica.
func (c *Collector) IncReadError(replica types.ReplicaIndex) {
	if i := c.idx(replica); i >= 0 {
		c.readErrors[i].Inc()
	}
}

// ObserveReadDuration records a read operation duration in seconds.
func (c *Collector) ObserveReadDuration(replica types.ReplicaIndex, seconds float64) {
	if i := c.idx(replica); i >= 0 {
		c.readDuration[i].Update(seconds)
	}
}

// IncWriteTotal increments the total write operations counter for a replica.
func (c *Collector) IncWriteTotal(replica types.ReplicaIndex) {
	if i := c.idx(replica); i >= 0 {
		c.writeTotal[i].Inc()
	}
}

// IncWriteError increments the write error counter for a replica.
func (c *Collector) IncWriteError(replica types.ReplicaIndex) {
	if i := c.idx(replica); i >= 0 {
		c.writeErrors[i].Inc()
	}
}

// ObserveWriteDuration records a write operation duration in seconds.
func (c *Collector) ObserveWriteDuration(replica types.ReplicaIndex, seconds float64) {
	if i := c.idx(replica); i >= 0 {
		c.writeDuration[i].Update(seconds)
	}
}

// IncFanoutSuccess increments the counter for an overall-successful fan-out.
func (c *Collector) IncFanoutSuccess() {
	c.fanoutSuccess.Inc()
}

// IncFanoutFailure increments the counter for an overall-failed fan-out.
func (c *Collector) IncFanoutFailure() {
	c.fanoutFailure.Inc()
}

// IncDDLFailFastAbort increments the counter when fail-fast DDL aborts at a replica.
func (c *Collector) IncDDLFailFastAbort(replica types.ReplicaIndex) {
	if i := c.idx(replica); i >= 0 {
		c.ddlFailFastAbort[i].Inc()
	}
}

// IncLGetCollapsed increments the counter when LGet collapses a duplicate from a replica.
func (c *Collector) IncLGetCollapsed(replica types.ReplicaIndex) {
	if i := c.idx(replica); i >= 0 {
		c.lgetCollapsed[i].Inc()
	}
}

// ObserveLGetCells records how many cells a single LGet call emitted.
func (c *Collector) ObserveLGetCells(count int) {
	c.lgetCells.Update(float64(count))
}
