// Package vm provides a VictoriaMetrics-based implementation of the
// types.MetricsCollector interface.
//
// This package uses github.com/VictoriaMetrics/metrics for lightweight,
// high-performance Prometheus-compatible metrics collection.
//
// # Basic Usage
//
// Create a collector with default prefix "ha_table":
//
//	collector := vm.New(vm.WithReplicaCount(len(replicaAddrs)))
//	client, _ := replicaset.NewClient(ctx, discoveryAddrs, logicalPaths, driver.Dial,
//	    replicaset.WithMetrics(collector),
//	)
//
// # Custom Prefix and Names
//
//	collector := vm.New(
//	    vm.WithPrefix("myapp"),
//	    vm.WithReplicaNames(types.ReplicaNames{"us_east", "us_west"}),
//	)
//
// This produces metrics like:
//   - myapp_read_total{replica="us_east"}
//   - myapp_write_duration_seconds{replica="us_west"}
//
// # Exposing Metrics
//
//	http.HandleFunc("/metrics", collector.Handler)
//	http.ListenAndServe(":8080", nil)
//
// # Metrics Provided
//
// Read/write operations, per replica:
//   - {prefix}_read_total{replica}
//   - {prefix}_read_errors_total{replica}
//   - {prefix}_read_duration_seconds{replica}
//   - {prefix}_write_total{replica}
//   - {prefix}_write_errors_total{replica}
//   - {prefix}_write_duration_seconds{replica}
//
// Fan-out outcomes (unlabeled, aggregate):
//   - {prefix}_fanout_success_total
//   - {prefix}_fanout_failure_total
//
// DDL and LGet:
//   - {prefix}_ddl_failfast_aborts_total{replica}
//   - {prefix}_lget_collapsed_total{replica}
//   - {prefix}_lget_cells
//
// # Performance Notes
//
// This implementation pre-creates all metrics at initialization time
// using the NewXXX pattern (instead of GetOrCreateXXX) for optimal
// performance in hot paths, as recommended by the VictoriaMetrics
// documentation. Because per-replica metrics are pre-created, the
// collector's replica count must be known up front via WithReplicaCount
// or WithReplicaNames.
package vm
