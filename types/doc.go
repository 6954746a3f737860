// Package types provides shared types and error definitions for the
// ha-table library.
//
// This is a leaf package with zero ha-table imports to prevent import
// cycles. All packages in ha-table can safely import this package.
//
// # Types
//
// ReplicaIndex identifies a replica's position in the ordered replica list:
//
//	type ReplicaIndex int
//
// Cell is a single versioned column value:
//
//	type Cell struct {
//	    Family    string
//	    Qualifier string
//	    Timestamp int64
//	    Value     []byte
//	}
//
// # Errors
//
// Sentinel errors are provided for common failure scenarios:
//
//   - ErrAllReplicasFailed: every replica failed during a fan-out
//   - ErrNotImplemented: the operation is deliberately unsupported
//   - ErrNoReplicas: the façade has zero usable replicas
//   - ErrInFlight: a row object already has a request in flight
package types
