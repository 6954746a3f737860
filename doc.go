// Package replicaset provides a high-availability client façade in front of
// N independent, functionally identical replicas of a wide-column table
// store.
//
// Application code holds a single Table or Client handle; the façade fans
// writes across every replica and reads from whichever replica responds
// first, with at-least-one-success semantics for mutations and
// first-success semantics for lookups. A specialised "latest" read mode
// (LGet) harvests results from every replica and merges them by timestamp,
// masking per-replica staleness.
//
// # Key Features
//
//   - N-ary write fan-out: every mutation is applied to every replica,
//     synchronously in replica order or asynchronously via a strictly
//     sequential fallback chain
//   - First-success reads, with an optional randomised replica order
//   - Timestamped multi-version merge across replicas (LGet)
//   - DDL fan-out with a configurable fail-fast switch
//   - Exactly-once async completion callbacks via single-use call-checkers
//
// # Basic Usage
//
//	client, err := replicaset.NewClient(
//	    ctx,
//	    []string{"dc1-cass:9042", "dc2-cass:9042"},
//	    []string{"users", "users"},
//	    driver.Dial,
//	    replicaset.WithDDLFailFast(true),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	table, err := client.OpenTable(ctx, "users")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	err = table.Put(ctx, "row1", "cf", "name", []byte("alice"))
//
// # Error Handling
//
// Write operations (ApplyMutation, Put, Add, ...) report success iff at
// least one replica succeeded; on success the error slot reads nil, on
// failure it carries the last observed per-replica failure, wrapped in a
// *types.ReplicaError so callers can recover the failing replica's index
// with errors.As.
//
// Read operations (Get) report the first successful replica's result; LGet
// reports success iff at least one replica succeeded and silently merges
// partial results.
package replicaset
