package driver

import (
	"sync"

	replicaset "github.com/arloliu/ha-table"
)

// Mutation is a concrete replicaset.RowMutation backed by a single cell
// edit. Construct with NewMutation/NewAsyncMutation; Row, Family,
// Qualifier and Value are read by Table when building the CQL statement.
type Mutation struct {
	Row       string
	Family    string
	Qualifier string
	Value     []byte
	Delta     int64 // carried only; Table.Add/AddInt64 take delta as a parameter

	async  bool
	onDone func(error)

	mu  sync.Mutex
	err error
	cc  replicaset.CallChecker
}

var _ replicaset.RowMutation = (*Mutation)(nil)

// NewMutation creates a synchronous single-cell mutation.
func NewMutation(row, family, qualifier string, value []byte) *Mutation {
	return &Mutation{Row: row, Family: family, Qualifier: qualifier, Value: value}
}

// NewAsyncMutation creates an asynchronous single-cell mutation. onDone,
// if non-nil, is invoked exactly once with the final error once the
// replicaset fallback chain completes.
func NewAsyncMutation(row, family, qualifier string, value []byte, onDone func(error)) *Mutation {
	return &Mutation{Row: row, Family: family, Qualifier: qualifier, Value: value, async: true, onDone: onDone}
}

// IsAsync implements replicaset.RowMutation.
func (m *Mutation) IsAsync() bool { return m.async }

// GetError implements replicaset.RowMutation.
func (m *Mutation) GetError() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.err
}

// setError is called by Table after each per-replica attempt.
func (m *Mutation) setError(err error) {
	m.mu.Lock()
	m.err = err
	m.mu.Unlock()
}

// Reset implements replicaset.RowMutation: it clears the observed error
// but preserves Row/Family/Qualifier/Value/Delta and the callback.
func (m *Mutation) Reset() {
	m.mu.Lock()
	m.err = nil
	m.mu.Unlock()
}

// SetCallChecker implements replicaset.RowMutation.
func (m *Mutation) SetCallChecker(cc replicaset.CallChecker) {
	m.mu.Lock()
	m.cc = cc
	m.mu.Unlock()
}

// CallChecker implements replicaset.RowMutation.
func (m *Mutation) CallChecker() replicaset.CallChecker {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.cc
}

// FireCallback implements replicaset.RowMutation.
func (m *Mutation) FireCallback(err error) {
	m.setError(err)
	if m.onDone != nil {
		m.onDone(err)
	}
}

// Reader is a concrete replicaset.RowReader backed by a single row/
// family/qualifier lookup. Construct with NewReader/NewAsyncReader.
type Reader struct {
	Row         string
	Family      string
	Qualifier   string
	MaxVersions int

	async  bool
	onDone func(error)

	mu     sync.Mutex
	err    error
	result replicaset.RowResult
	cc     replicaset.CallChecker
}

var _ replicaset.RowReader = (*Reader)(nil)

// NewReader creates a synchronous row reader capped at maxVersions cell
// versions.
func NewReader(row, family, qualifier string, maxVersions int) *Reader {
	return &Reader{Row: row, Family: family, Qualifier: qualifier, MaxVersions: maxVersions}
}

// NewAsyncReader creates an asynchronous row reader. onDone, if non-nil,
// is invoked exactly once once the replicaset fallback/merge completes.
func NewAsyncReader(row, family, qualifier string, maxVersions int, onDone func(error)) *Reader {
	return &Reader{Row: row, Family: family, Qualifier: qualifier, MaxVersions: maxVersions, async: true, onDone: onDone}
}

// IsAsync implements replicaset.RowReader.
func (r *Reader) IsAsync() bool { return r.async }

// GetError implements replicaset.RowReader.
func (r *Reader) GetError() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.err
}

func (r *Reader) setError(err error) {
	r.mu.Lock()
	r.err = err
	r.mu.Unlock()
}

// Reset implements replicaset.RowReader: it clears the observed error
// and result buffer but preserves Row/Family/Qualifier/MaxVersions and
// the callback.
func (r *Reader) Reset() {
	r.mu.Lock()
	r.err = nil
	r.result = replicaset.RowResult{}
	r.mu.Unlock()
}

// SetCallChecker implements replicaset.RowReader.
func (r *Reader) SetCallChecker(cc replicaset.CallChecker) {
	r.mu.Lock()
	r.cc = cc
	r.mu.Unlock()
}

// CallChecker implements replicaset.RowReader.
func (r *Reader) CallChecker() replicaset.CallChecker {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.cc
}

// FireCallback implements replicaset.RowReader.
func (r *Reader) FireCallback(err error) {
	r.setError(err)
	if r.onDone != nil {
		r.onDone(err)
	}
}

// GetResult implements replicaset.RowReader.
func (r *Reader) GetResult() replicaset.RowResult {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.result
}

// SetResult implements replicaset.RowReader.
func (r *Reader) SetResult(res replicaset.RowResult) {
	r.mu.Lock()
	r.result = res
	r.mu.Unlock()
}

// GetMaxVersions implements replicaset.RowReader.
func (r *Reader) GetMaxVersions() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.MaxVersions <= 0 {
		return 1
	}

	return r.MaxVersions
}
