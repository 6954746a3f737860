package types

// MetricsCollector defines methods for collecting operational metrics about
// replica-set fan-out.
//
// All replica-scoped methods accept a ReplicaIndex parameter for labeling.
// Implementations should be thread-safe as methods may be called
// concurrently from fan-out goroutines and completion callbacks.
//
// Example usage with VictoriaMetrics (via contrib/metrics/vm):
//
//	import vmmetrics "github.com/arloliu/ha-table/contrib/metrics/vm"
//
//	collector := vmmetrics.New(vmmetrics.WithPrefix("myapp"), vmmetrics.WithReplicaCount(3))
//	client, _ := replicaset.NewClient(ctx, addrs, paths, driver.Dial, replicaset.WithMetrics(collector))
//	table, _ := client.OpenTable(ctx, "users")
//
//	// Expose metrics via HTTP
//	http.HandleFunc("/metrics", collector.Handler)
type MetricsCollector interface {
	// ----------------------
	// Read Operations
	// ----------------------

	// IncReadTotal increments the total read operations counter for a replica.
	IncReadTotal(replica ReplicaIndex)

	// IncReadError increments the read error counter for a replica.
	IncReadError(replica ReplicaIndex)

	// ObserveReadDuration records a read operation duration in seconds.
	ObserveReadDuration(replica ReplicaIndex, seconds float64)

	// ----------------------
	// Write Operations
	// ----------------------

	// IncWriteTotal increments the total write operations counter for a replica.
	IncWriteTotal(replica ReplicaIndex)

	// IncWriteError increments the write error counter for a replica.
	IncWriteError(replica ReplicaIndex)

	// ObserveWriteDuration records a write operation duration in seconds.
	ObserveWriteDuration(replica ReplicaIndex, seconds float64)

	// ----------------------
	// Fan-out Outcomes
	// ----------------------

	// IncFanoutSuccess increments the counter when a fan-out operation
	// reports overall success (at least one replica succeeded).
	IncFanoutSuccess()

	// IncFanoutFailure increments the counter when every replica failed.
	IncFanoutFailure()

	// ----------------------
	// DDL
	// ----------------------

	// IncDDLFailFastAbort increments the counter when a fail-fast DDL
	// fan-out aborted after a replica failure.
	IncDDLFailFastAbort(replica ReplicaIndex)

	// ----------------------
	// LGet merge
	// ----------------------

	// IncLGetCollapsed increments the counter each time the LGet merge
	// collapses a near-duplicate cell from another replica within the
	// timestamp-skew window.
	IncLGetCollapsed(replica ReplicaIndex)

	// ObserveLGetCells records how many cells a single LGet call emitted.
	ObserveLGetCells(count int)
}
