// Package types provides shared types and errors for the ha-table library.
//
// This is a "leaf" package with no imports from other ha-table packages,
// allowing it to be imported by any package without causing import cycles.
package types

import (
	"errors"
	"fmt"
	"regexp"
)

// ReplicaIndex identifies one replica's position in the ordered replica
// list. Replica 0 is the primary target for async writes and the
// default-first target for reads.
type ReplicaIndex int

// String returns the string representation of the ReplicaIndex.
func (r ReplicaIndex) String() string {
	return fmt.Sprintf("%d", int(r))
}

// replicaNameRegex validates replica display names for use in metrics labels.
// Must be Prometheus-compatible: [a-zA-Z_][a-zA-Z0-9_]*
var replicaNameRegex = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// ReplicaNames holds custom display names for replicas, used in metrics
// labels and log messages instead of the default numeric index.
//
// Names must be:
//   - 1-32 characters long
//   - Prometheus-compatible: start with letter or underscore, contain only
//     alphanumeric characters and underscores
//   - Unique across the set
//
// Example names: "us_east", "us_west", "primary", "secondary", "dc1", "dc2"
type ReplicaNames []string

// Validate checks that every configured name is valid for use in metrics,
// and that names are unique.
func (n ReplicaNames) Validate() error {
	seen := make(map[string]bool, len(n))
	for i, name := range n {
		if err := validateReplicaName(name, i); err != nil {
			return err
		}
		if seen[name] {
			return errors.New("ha-table: replica names must be unique")
		}
		seen[name] = true
	}

	return nil
}

// Name returns the display name for the given replica index, falling back
// to the numeric index when no custom name was configured.
func (n ReplicaNames) Name(i ReplicaIndex) string {
	if int(i) >= 0 && int(i) < len(n) && n[i] != "" {
		return n[i]
	}

	return i.String()
}

// ReplicaNamer is an optional interface for components that can use custom
// replica names.
//
// Components implementing this interface will have their replica names set
// by the client after construction. This allows centralized configuration
// of display names at the client level, propagated to the configured
// metrics collector. Loggers are not passed the names.
type ReplicaNamer interface {
	// SetReplicaNames sets the display names for replicas.
	SetReplicaNames(names ReplicaNames)
}

func validateReplicaName(name string, index int) error {
	if len(name) == 0 {
		return fmt.Errorf("ha-table: replica %d name cannot be empty", index)
	}
	if len(name) > 32 {
		return fmt.Errorf("ha-table: replica %d name cannot exceed 32 characters", index)
	}
	if !replicaNameRegex.MatchString(name) {
		return fmt.Errorf("ha-table: replica %d name must be alphanumeric with underscores, starting with letter or underscore", index)
	}

	return nil
}

// Cell is a single (family, qualifier, timestamp, value) tuple read from or
// written to a row. Larger Timestamp means newer.
type Cell struct {
	Family    string
	Qualifier string
	Timestamp int64
	Value     []byte
}

// Sentinel errors for common failure scenarios.
var (
	// ErrAllReplicasFailed indicates that an operation failed on every
	// configured replica.
	ErrAllReplicasFailed = errors.New("ha-table: operation failed on all replicas")

	// ErrNotImplemented indicates the operation is deliberately unsupported
	// by the façade because it would require a cross-cluster semantic the
	// façade does not define.
	ErrNotImplemented = errors.New("ha-table: operation not implemented")

	// ErrNoReplicas indicates the façade was constructed with, or ended up
	// with, zero usable replicas.
	ErrNoReplicas = errors.New("ha-table: no replicas available")

	// ErrInFlight indicates a row mutation/reader already has an in-flight
	// call-checker attached and cannot be dispatched again until it
	// completes.
	ErrInFlight = errors.New("ha-table: row object already has an in-flight request")

	// ErrTableNotFound indicates the named table does not exist on the
	// replica that was asked about it.
	ErrTableNotFound = errors.New("ha-table: table not found")
)

// ReplicaError wraps an error observed from a specific replica.
type ReplicaError struct {
	// Replica identifies which replica the error came from.
	Replica ReplicaIndex

	// Operation describes what operation failed.
	Operation string

	// Cause is the underlying error.
	Cause error
}

// Error implements the error interface.
func (e *ReplicaError) Error() string {
	return fmt.Sprintf("ha-table: replica %d %s failed: %v", e.Replica, e.Operation, e.Cause)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *ReplicaError) Unwrap() error {
	return e.Cause
}
