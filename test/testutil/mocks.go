// Package testutil provides hand-written mocks of the replicaset
// external interfaces for use outside the core package, in place of a
// real driver. The core package's own tests use an equivalent set of
// mocks defined in its mocks_test.go.
package testutil

import (
	"context"
	"sync"
	"time"

	replicaset "github.com/arloliu/ha-table"
)

// MockRowMutation is a mock implementation of replicaset.RowMutation.
type MockRowMutation struct {
	mu     sync.Mutex
	async  bool
	err    error
	cc     replicaset.CallChecker
	Resets int

	// OnApply is not consulted by MockReplicaTable; ApplyMutation always
	// responds with the table's ApplyErr.
	OnApply func(replica int) error
	// Callback records every call to FireCallback.
	Callback func(err error)
}

var _ replicaset.RowMutation = (*MockRowMutation)(nil)

// NewMockRowMutation creates a mock mutation; async selects sequential
// fallback dispatch instead of synchronous in-order fan-out.
func NewMockRowMutation(async bool) *MockRowMutation {
	return &MockRowMutation{async: async}
}

// IsAsync implements replicaset.RowMutation.
func (m *MockRowMutation) IsAsync() bool { return m.async }

// GetError implements replicaset.RowMutation.
func (m *MockRowMutation) GetError() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.err
}

// SetError records an error, used by tests driving a mock replica directly.
func (m *MockRowMutation) SetError(err error) {
	m.mu.Lock()
	m.err = err
	m.mu.Unlock()
}

// Reset implements replicaset.RowMutation.
func (m *MockRowMutation) Reset() {
	m.mu.Lock()
	m.err = nil
	m.Resets++
	m.mu.Unlock()
}

// SetCallChecker implements replicaset.RowMutation.
func (m *MockRowMutation) SetCallChecker(cc replicaset.CallChecker) {
	m.mu.Lock()
	m.cc = cc
	m.mu.Unlock()
}

// CallChecker implements replicaset.RowMutation.
func (m *MockRowMutation) CallChecker() replicaset.CallChecker {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.cc
}

// FireCallback implements replicaset.RowMutation.
func (m *MockRowMutation) FireCallback(err error) {
	m.SetError(err)
	if m.Callback != nil {
		m.Callback(err)
	}
}

// MockRowReader is a mock implementation of replicaset.RowReader.
type MockRowReader struct {
	mu          sync.Mutex
	async       bool
	err         error
	cc          replicaset.CallChecker
	result      replicaset.RowResult
	maxVersions int
	Resets      int

	Callback func(err error)
}

var _ replicaset.RowReader = (*MockRowReader)(nil)

// NewMockRowReader creates a mock reader capped at maxVersions cell versions.
func NewMockRowReader(async bool, maxVersions int) *MockRowReader {
	return &MockRowReader{async: async, maxVersions: maxVersions}
}

// IsAsync implements replicaset.RowReader.
func (r *MockRowReader) IsAsync() bool { return r.async }

// GetError implements replicaset.RowReader.
func (r *MockRowReader) GetError() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.err
}

// SetError records an error, used by tests driving a mock replica directly.
func (r *MockRowReader) SetError(err error) {
	r.mu.Lock()
	r.err = err
	r.mu.Unlock()
}

// Reset implements replicaset.RowReader.
func (r *MockRowReader) Reset() {
	r.mu.Lock()
	r.err = nil
	r.result = replicaset.RowResult{}
	r.Resets++
	r.mu.Unlock()
}

// SetCallChecker implements replicaset.RowReader.
func (r *MockRowReader) SetCallChecker(cc replicaset.CallChecker) {
	r.mu.Lock()
	r.cc = cc
	r.mu.Unlock()
}

// CallChecker implements replicaset.RowReader.
func (r *MockRowReader) CallChecker() replicaset.CallChecker {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.cc
}

// FireCallback implements replicaset.RowReader.
func (r *MockRowReader) FireCallback(err error) {
	r.SetError(err)
	if r.Callback != nil {
		r.Callback(err)
	}
}

// GetResult implements replicaset.RowReader.
func (r *MockRowReader) GetResult() replicaset.RowResult {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.result
}

// SetResult implements replicaset.RowReader.
func (r *MockRowReader) SetResult(res replicaset.RowResult) {
	r.mu.Lock()
	r.result = res
	r.mu.Unlock()
}

// GetMaxVersions implements replicaset.RowReader.
func (r *MockRowReader) GetMaxVersions() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.maxVersions <= 0 {
		return 1
	}

	return r.maxVersions
}

// MockReplicaTable is a mock implementation of replicaset.ReplicaTable.
//
// Cells holds the canned result a mock Get returns; ApplyErr and GetErr
// inject failures.
type MockReplicaTable struct {
	mu   sync.Mutex
	name string

	// Cells, if set, is copied into the reader's result on a successful Get.
	Cells []replicaset.Cell

	// ApplyErr, if non-nil, is returned by ApplyMutation/Put/Add/...
	ApplyErr error
	// GetErr, if non-nil, is returned by Get.
	GetErr error
	// Async, if true, completes ApplyMutation/Get on a goroutine instead
	// of inline, exercising the call-checker dispatch path.
	Async bool

	putFinished bool
	getFinished bool

	Calls []string
}

var _ replicaset.ReplicaTable = (*MockReplicaTable)(nil)

// NewMockReplicaTable creates a mock replica table named name.
func NewMockReplicaTable(name string) *MockReplicaTable {
	return &MockReplicaTable{name: name, putFinished: true, getFinished: true}
}

func (t *MockReplicaTable) record(call string) {
	t.mu.Lock()
	t.Calls = append(t.Calls, call)
	t.mu.Unlock()
}

func (t *MockReplicaTable) complete(cc replicaset.CallChecker, err error) {
	if !t.Async {
		if cc != nil {
			cc.OnComplete(err)
		}

		return
	}

	go func() {
		if cc != nil {
			cc.OnComplete(err)
		}
	}()
}

// ApplyMutation implements replicaset.ReplicaTable.
func (t *MockReplicaTable) ApplyMutation(ctx context.Context, m replicaset.RowMutation) error {
	t.record("ApplyMutation")
	if !m.IsAsync() {
		return t.ApplyErr
	}

	t.complete(m.CallChecker(), t.ApplyErr)

	return nil
}

// ApplyMutationBatch implements replicaset.ReplicaTable.
func (t *MockReplicaTable) ApplyMutationBatch(ctx context.Context, batch []replicaset.RowMutation) error {
	t.record("ApplyMutationBatch")
	for _, m := range batch {
		if mm, ok := m.(*MockRowMutation); ok {
			mm.SetError(t.ApplyErr)
		}
	}

	return t.ApplyErr
}

// Put implements replicaset.ReplicaTable.
func (t *MockReplicaTable) Put(ctx context.Context, row, family, qualifier string, value []byte) error {
	t.record("Put")

	return t.ApplyErr
}

// Add implements replicaset.ReplicaTable.
func (t *MockReplicaTable) Add(ctx context.Context, row, family, qualifier string, delta int64) error {
	t.record("Add")

	return t.ApplyErr
}

// AddInt64 implements replicaset.ReplicaTable.
func (t *MockReplicaTable) AddInt64(ctx context.Context, row, family, qualifier string, delta int64) error {
	t.record("AddInt64")

	return t.ApplyErr
}

// PutIfAbsent implements replicaset.ReplicaTable.
func (t *MockReplicaTable) PutIfAbsent(ctx context.Context, row, family, qualifier string, value []byte) (bool, error) {
	t.record("PutIfAbsent")

	return t.ApplyErr == nil, t.ApplyErr
}

// Append implements replicaset.ReplicaTable.
func (t *MockReplicaTable) Append(ctx context.Context, row, family, qualifier string, value []byte) error {
	t.record("Append")

	return t.ApplyErr
}

// Get implements replicaset.ReplicaTable.
func (t *MockReplicaTable) Get(ctx context.Context, r replicaset.RowReader) error {
	t.record("Get")

	run := func() error {
		if t.GetErr == nil {
			r.SetResult(replicaset.RowResult{Cells: append([]replicaset.Cell(nil), t.Cells...)})
		}

		return t.GetErr
	}

	if !r.IsAsync() {
		return run()
	}

	err := run()
	t.complete(r.CallChecker(), err)

	return nil
}

// GetBatch implements replicaset.ReplicaTable.
func (t *MockReplicaTable) GetBatch(ctx context.Context, batch []replicaset.RowReader) error {
	t.record("GetBatch")
	for _, r := range batch {
		_ = t.Get(ctx, r)
	}

	return nil
}

// GetCell implements replicaset.ReplicaTable.
func (t *MockReplicaTable) GetCell(ctx context.Context, row, family, qualifier string) ([]byte, error) {
	t.record("GetCell")
	if len(t.Cells) > 0 {
		return t.Cells[0].Value, t.GetErr
	}

	return nil, t.GetErr
}

// Scan implements replicaset.ReplicaTable.
func (t *MockReplicaTable) Scan(ctx context.Context, desc *replicaset.ScanDescriptor) (replicaset.RowScanner, error) {
	t.record("Scan")

	return nil, t.GetErr
}

// GetName implements replicaset.ReplicaTable.
func (t *MockReplicaTable) GetName() string { return t.name }

// IsPutFinished implements replicaset.ReplicaTable.
func (t *MockReplicaTable) IsPutFinished() bool { return t.putFinished }

// IsGetFinished implements replicaset.ReplicaTable.
func (t *MockReplicaTable) IsGetFinished() bool { return t.getFinished }

// SetWriteTimeout implements replicaset.ReplicaTable.
func (t *MockReplicaTable) SetWriteTimeout(d time.Duration) { t.record("SetWriteTimeout") }

// SetReadTimeout implements replicaset.ReplicaTable.
func (t *MockReplicaTable) SetReadTimeout(d time.Duration) { t.record("SetReadTimeout") }

// SetMaxMutationPendingNum implements replicaset.ReplicaTable.
func (t *MockReplicaTable) SetMaxMutationPendingNum(n int) { t.record("SetMaxMutationPendingNum") }

// SetMaxReaderPendingNum implements replicaset.ReplicaTable.
func (t *MockReplicaTable) SetMaxReaderPendingNum(n int) { t.record("SetMaxReaderPendingNum") }

// MockReplicaClient is a mock implementation of replicaset.ReplicaClient.
type MockReplicaClient struct {
	mu   sync.Mutex
	name string

	// DDLErr, if non-nil, is returned by every DDL/admin method.
	DDLErr error
	// OpenErr, if non-nil, is returned by OpenTable.
	OpenErr error
	// Table is returned by OpenTable on success.
	Table replicaset.ReplicaTable

	Calls []string
}

var _ replicaset.ReplicaClient = (*MockReplicaClient)(nil)

// NewMockReplicaClient creates a mock replica client named name.
func NewMockReplicaClient(name string) *MockReplicaClient {
	return &MockReplicaClient{name: name}
}

func (c *MockReplicaClient) record(call string) {
	c.mu.Lock()
	c.Calls = append(c.Calls, call)
	c.mu.Unlock()
}

// GetName implements replicaset.ReplicaClient.
func (c *MockReplicaClient) GetName() string { return c.name }

// CreateTable implements replicaset.ReplicaClient.
func (c *MockReplicaClient) CreateTable(ctx context.Context, desc *replicaset.TableDescriptor) error {
	c.record("CreateTable")

	return c.DDLErr
}

// UpdateTable implements replicaset.ReplicaClient.
func (c *MockReplicaClient) UpdateTable(ctx context.Context, desc *replicaset.TableDescriptor) error {
	c.record("UpdateTable")

	return c.DDLErr
}

// DeleteTable implements replicaset.ReplicaClient.
func (c *MockReplicaClient) DeleteTable(ctx context.Context, name string) error {
	c.record("DeleteTable")

	return c.DDLErr
}

// EnableTable implements replicaset.ReplicaClient.
func (c *MockReplicaClient) EnableTable(ctx context.Context, name string) error {
	c.record("EnableTable")

	return c.DDLErr
}

// DisableTable implements replicaset.ReplicaClient.
func (c *MockReplicaClient) DisableTable(ctx context.Context, name string) error {
	c.record("DisableTable")

	return c.DDLErr
}

// CreateUser implements replicaset.ReplicaClient.
func (c *MockReplicaClient) CreateUser(ctx context.Context, user, pwd string) error {
	c.record("CreateUser")

	return c.DDLErr
}

// DeleteUser implements replicaset.ReplicaClient.
func (c *MockReplicaClient) DeleteUser(ctx context.Context, user string) error {
	c.record("DeleteUser")

	return c.DDLErr
}

// ChangePwd implements replicaset.ReplicaClient.
func (c *MockReplicaClient) ChangePwd(ctx context.Context, user, pwd string) error {
	c.record("ChangePwd")

	return c.DDLErr
}

// AddUserToGroup implements replicaset.ReplicaClient.
func (c *MockReplicaClient) AddUserToGroup(ctx context.Context, user, group string) error {
	c.record("AddUserToGroup")

	return c.DDLErr
}

// DeleteUserFromGroup implements replicaset.ReplicaClient.
func (c *MockReplicaClient) DeleteUserFromGroup(ctx context.Context, user, group string) error {
	c.record("DeleteUserFromGroup")

	return c.DDLErr
}

// DelSnapshot implements replicaset.ReplicaClient.
func (c *MockReplicaClient) DelSnapshot(ctx context.Context, table, snapshot string) error {
	c.record("DelSnapshot")

	return c.DDLErr
}

// Rollback implements replicaset.ReplicaClient.
func (c *MockReplicaClient) Rollback(ctx context.Context, table, snapshot string) error {
	c.record("Rollback")

	return c.DDLErr
}

// Rename implements replicaset.ReplicaClient.
func (c *MockReplicaClient) Rename(ctx context.Context, oldName, newName string) error {
	c.record("Rename")

	return c.DDLErr
}

// ShowUser implements replicaset.ReplicaClient.
func (c *MockReplicaClient) ShowUser(ctx context.Context, user string) (*replicaset.UserInfo, error) {
	c.record("ShowUser")
	if c.DDLErr != nil {
		return nil, c.DDLErr
	}

	return &replicaset.UserInfo{Name: user}, nil
}

// List implements replicaset.ReplicaClient.
func (c *MockReplicaClient) List(ctx context.Context) ([]string, error) {
	c.record("List")

	return nil, c.DDLErr
}

// IsTableExist implements replicaset.ReplicaClient.
func (c *MockReplicaClient) IsTableExist(ctx context.Context, name string) (bool, error) {
	c.record("IsTableExist")

	return c.DDLErr == nil, c.DDLErr
}

// IsTableEnabled implements replicaset.ReplicaClient.
func (c *MockReplicaClient) IsTableEnabled(ctx context.Context, name string) (bool, error) {
	c.record("IsTableEnabled")

	return c.DDLErr == nil, c.DDLErr
}

// IsTableEmpty implements replicaset.ReplicaClient.
func (c *MockReplicaClient) IsTableEmpty(ctx context.Context, name string) (bool, error) {
	c.record("IsTableEmpty")

	return c.DDLErr == nil, c.DDLErr
}

// GetSnapshot implements replicaset.ReplicaClient.
func (c *MockReplicaClient) GetSnapshot(ctx context.Context, table string) ([]string, error) {
	c.record("GetSnapshot")

	return nil, c.DDLErr
}

// GetTableDescriptor implements replicaset.ReplicaClient.
func (c *MockReplicaClient) GetTableDescriptor(ctx context.Context, name string) (*replicaset.TableDescriptor, error) {
	c.record("GetTableDescriptor")
	if c.DDLErr != nil {
		return nil, c.DDLErr
	}

	return &replicaset.TableDescriptor{Name: name}, nil
}

// GetTabletLocation implements replicaset.ReplicaClient.
func (c *MockReplicaClient) GetTabletLocation(ctx context.Context, name string) ([]replicaset.TabletLocation, error) {
	c.record("GetTabletLocation")

	return nil, c.DDLErr
}

// CmdCtrl implements replicaset.ReplicaClient.
func (c *MockReplicaClient) CmdCtrl(ctx context.Context, cmd string, args ...string) (string, error) {
	c.record("CmdCtrl")
	if c.DDLErr != nil {
		return "", c.DDLErr
	}

	return "OK", nil
}

// OpenTable implements replicaset.ReplicaClient.
func (c *MockReplicaClient) OpenTable(ctx context.Context, name string) (replicaset.ReplicaTable, error) {
	c.record("OpenTable")
	if c.OpenErr != nil {
		return nil, c.OpenErr
	}
	if c.Table != nil {
		return c.Table, nil
	}

	return NewMockReplicaTable(name), nil
}
