package replicaset

import (
	"context"
	"time"
)

// ReplicaTable is the data-plane interface consumed from each underlying
// per-cluster table client. A concrete implementation is provided by
// adapter/driver; tests substitute hand-written mocks.
//
// Implementations are NOT required to be safe for concurrent use by the
// façade itself: the façade guarantees at most one in-flight call per
// row mutation/reader object, and synchronous fan-out calls replicas
// sequentially on the caller's goroutine.
type ReplicaTable interface {
	// ApplyMutation applies a single row mutation. For a synchronous
	// mutation this blocks until the underlying cluster responds. For an
	// asynchronous mutation (m.IsAsync() == true) this returns promptly
	// and the implementation must invoke m.CallChecker().OnComplete(err)
	// exactly once, from whatever goroutine completes the request, once
	// the result is known.
	ApplyMutation(ctx context.Context, m RowMutation) error

	// ApplyMutationBatch applies a batch of row mutations against this
	// replica. Per-row errors are reported through each RowMutation's
	// GetError(); the returned error is non-nil only for a batch-wide
	// failure (e.g. the replica being unreachable).
	ApplyMutationBatch(ctx context.Context, batch []RowMutation) error

	// Put writes a single cell.
	Put(ctx context.Context, row, family, qualifier string, value []byte) error
	// Add performs a counter increment on a single cell.
	Add(ctx context.Context, row, family, qualifier string, delta int64) error
	// AddInt64 is the 64-bit counter variant of Add.
	AddInt64(ctx context.Context, row, family, qualifier string, delta int64) error
	// PutIfAbsent writes a cell only if it does not already exist,
	// reporting whether the write was applied.
	PutIfAbsent(ctx context.Context, row, family, qualifier string, value []byte) (bool, error)
	// Append appends bytes to an existing cell value.
	Append(ctx context.Context, row, family, qualifier string, value []byte) error

	// Get populates r's result buffer with this replica's view of the
	// requested row. For an asynchronous reader this returns promptly
	// and the implementation invokes r.CallChecker().OnComplete(err)
	// exactly once on completion.
	Get(ctx context.Context, r RowReader) error
	// GetBatch resolves a batch of readers against this replica.
	GetBatch(ctx context.Context, batch []RowReader) error
	// GetCell reads a single cell's current value.
	GetCell(ctx context.Context, row, family, qualifier string) ([]byte, error)

	// Scan opens a streaming scan over this replica.
	Scan(ctx context.Context, desc *ScanDescriptor) (RowScanner, error)

	// GetName returns this replica's logical table name.
	GetName() string
	// IsPutFinished reports whether all outstanding async puts on this
	// replica have completed.
	IsPutFinished() bool
	// IsGetFinished reports whether all outstanding async gets on this
	// replica have completed.
	IsGetFinished() bool

	// SetWriteTimeout configures this replica's write deadline.
	SetWriteTimeout(d time.Duration)
	// SetReadTimeout configures this replica's read deadline.
	SetReadTimeout(d time.Duration)
	// SetMaxMutationPendingNum bounds this replica's async mutation queue depth.
	SetMaxMutationPendingNum(n int)
	// SetMaxReaderPendingNum bounds this replica's async reader queue depth.
	SetMaxReaderPendingNum(n int)
}

// RowScanner streams rows from a single replica's Scan call.
type RowScanner interface {
	// Next advances to the next row, returning false when exhausted or
	// on error (check Err after Next returns false).
	Next(ctx context.Context) bool
	// Row returns the current row's cells.
	Row() []Cell
	// Err returns the first error encountered during iteration, if any.
	Err() error
	// Close releases resources held by the scan.
	Close() error
}

// ScanDescriptor configures a replica Scan call.
type ScanDescriptor struct {
	StartRow    string
	StopRow     string
	Families    []string
	MaxVersions int
}

// ReplicaClient is the control-plane interface consumed from each
// underlying per-cluster client. A concrete implementation is provided
// by adapter/driver; tests substitute hand-written mocks.
type ReplicaClient interface {
	// GetName returns a human-readable identifier for this replica
	// (e.g. its discovery address), used in logging.
	GetName() string

	// CreateTable, UpdateTable, DeleteTable, EnableTable, DisableTable
	// are DDL operations fanned out per the Config.DDLFailFast policy.
	CreateTable(ctx context.Context, desc *TableDescriptor) error
	UpdateTable(ctx context.Context, desc *TableDescriptor) error
	DeleteTable(ctx context.Context, name string) error
	EnableTable(ctx context.Context, name string) error
	DisableTable(ctx context.Context, name string) error

	// User management, also fanned out per the DDL policy.
	CreateUser(ctx context.Context, user, pwd string) error
	DeleteUser(ctx context.Context, user string) error
	ChangePwd(ctx context.Context, user, pwd string) error
	AddUserToGroup(ctx context.Context, user, group string) error
	DeleteUserFromGroup(ctx context.Context, user, group string) error

	// Snapshot and rename operations, also fanned out per the DDL policy.
	DelSnapshot(ctx context.Context, table, snapshot string) error
	Rollback(ctx context.Context, table, snapshot string) error
	Rename(ctx context.Context, oldName, newName string) error

	// Read/admin operations, resolved first-success.
	ShowUser(ctx context.Context, user string) (*UserInfo, error)
	List(ctx context.Context) ([]string, error)
	IsTableExist(ctx context.Context, name string) (bool, error)
	IsTableEnabled(ctx context.Context, name string) (bool, error)
	IsTableEmpty(ctx context.Context, name string) (bool, error)
	GetSnapshot(ctx context.Context, table string) ([]string, error)
	GetTableDescriptor(ctx context.Context, name string) (*TableDescriptor, error)
	GetTabletLocation(ctx context.Context, name string) ([]TabletLocation, error)

	// CmdCtrl passes an administrative command straight through to the
	// underlying cluster (safemode, tablet ops, meta backup, config
	// reload, ...).
	CmdCtrl(ctx context.Context, cmd string, args ...string) (string, error)

	// OpenTable opens a table by logical name, returning a ReplicaTable
	// on success.
	OpenTable(ctx context.Context, name string) (ReplicaTable, error)
}

// TableDescriptor describes a table's schema for CreateTable/UpdateTable
// and is returned by GetTableDescriptor.
type TableDescriptor struct {
	Name     string
	Families []string
}

// TabletLocation identifies the tablet server hosting a key range.
type TabletLocation struct {
	StartKey string
	EndKey   string
	Server   string
}

// UserInfo describes a user account, as returned by ShowUser.
type UserInfo struct {
	Name   string
	Groups []string
}
