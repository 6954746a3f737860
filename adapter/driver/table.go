package driver

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gocql/gocql"

	replicaset "github.com/arloliu/ha-table"
)

// Table implements replicaset.ReplicaTable against a single gocql
// session, against the wide-column schema described in doc.go.
type Table struct {
	session *gocql.Session
	table   string // fully-qualified "<keyspace>.<name>"
	name    string

	writeTimeout time.Duration
	readTimeout  time.Duration

	pendingMu   sync.Mutex
	pendingPuts int
	pendingGets int
}

var _ replicaset.ReplicaTable = (*Table)(nil)

// NewTable wraps session for the table identified by keyspace.name.
func NewTable(session *gocql.Session, keyspace, name string) *Table {
	return &Table{session: session, table: fmt.Sprintf("%s.%s", keyspace, name), name: name}
}

// queryCtx returns a context bounded by deadline (if positive) along
// with the cancel function the caller must invoke once the query
// finishes.
func (t *Table) queryCtx(ctx context.Context, deadline time.Duration) (context.Context, context.CancelFunc) {
	if deadline <= 0 {
		return ctx, func() {}
	}

	return context.WithTimeout(ctx, deadline)
}

func (t *Table) incPending(put bool, delta int) {
	t.pendingMu.Lock()
	if put {
		t.pendingPuts += delta
	} else {
		t.pendingGets += delta
	}
	t.pendingMu.Unlock()
}

// ApplyMutation implements replicaset.ReplicaTable.
func (t *Table) ApplyMutation(ctx context.Context, m replicaset.RowMutation) error {
	dm, ok := m.(*Mutation)
	if !ok {
		return fmt.Errorf("driver: ApplyMutation requires a *driver.Mutation, got %T", m)
	}

	run := func() error {
		qctx, cancel := t.queryCtx(ctx, t.writeTimeout)
		defer cancel()
		stmt := fmt.Sprintf(
			"INSERT INTO %s (row_key, family, qualifier, ts, value) VALUES (?, ?, ?, ?, ?)",
			t.table,
		)

		return t.session.Query(stmt, dm.Row, dm.Family, dm.Qualifier, time.Now().UnixMicro(), dm.Value).WithContext(qctx).Exec()
	}

	if !dm.IsAsync() {
		return run()
	}

	t.incPending(true, 1)
	go func() {
		err := run()
		t.incPending(true, -1)
		if cc := dm.CallChecker(); cc != nil {
			cc.OnComplete(err)
		}
	}()

	return nil
}

// ApplyMutationBatch implements replicaset.ReplicaTable.
func (t *Table) ApplyMutationBatch(ctx context.Context, batch []replicaset.RowMutation) error {
	b := t.session.NewBatch(gocql.LoggedBatch)

	for _, m := range batch {
		dm, ok := m.(*Mutation)
		if !ok {
			return fmt.Errorf("driver: ApplyMutationBatch requires *driver.Mutation, got %T", m)
		}
		stmt := fmt.Sprintf(
			"INSERT INTO %s (row_key, family, qualifier, ts, value) VALUES (?, ?, ?, ?, ?)",
			t.table,
		)
		b.Query(stmt, dm.Row, dm.Family, dm.Qualifier, time.Now().UnixMicro(), dm.Value)
	}

	qctx, cancel := t.queryCtx(ctx, t.writeTimeout)
	defer cancel()
	err := t.session.ExecuteBatch(b.WithContext(qctx))

	for _, m := range batch {
		m.(*Mutation).setError(err)
	}

	return err
}

// Put implements replicaset.ReplicaTable.
func (t *Table) Put(ctx context.Context, row, family, qualifier string, value []byte) error {
	return t.ApplyMutation(ctx, NewMutation(row, family, qualifier, value))
}

// Add implements replicaset.ReplicaTable as a CQL counter increment.
func (t *Table) Add(ctx context.Context, row, family, qualifier string, delta int64) error {
	qctx, cancel := t.queryCtx(ctx, t.writeTimeout)
	defer cancel()
	stmt := fmt.Sprintf("UPDATE %s_counters SET value = value + ? WHERE row_key = ? AND family = ? AND qualifier = ?", t.table)

	return t.session.Query(stmt, delta, row, family, qualifier).WithContext(qctx).Exec()
}

// AddInt64 implements replicaset.ReplicaTable; identical to Add, CQL
// counters are always 64-bit.
func (t *Table) AddInt64(ctx context.Context, row, family, qualifier string, delta int64) error {
	return t.Add(ctx, row, family, qualifier, delta)
}

// PutIfAbsent implements replicaset.ReplicaTable as a CQL lightweight
// transaction (IF NOT EXISTS).
func (t *Table) PutIfAbsent(ctx context.Context, row, family, qualifier string, value []byte) (bool, error) {
	qctx, cancel := t.queryCtx(ctx, t.writeTimeout)
	defer cancel()
	stmt := fmt.Sprintf(
		"INSERT INTO %s (row_key, family, qualifier, ts, value) VALUES (?, ?, ?, ?, ?) IF NOT EXISTS",
		t.table,
	)
	applied, err := t.session.Query(stmt, row, family, qualifier, time.Now().UnixMicro(), value).WithContext(qctx).ScanCAS()

	return applied, err
}

// Append implements replicaset.ReplicaTable by reading the current value
// and writing back the concatenation; gocql has no native blob append.
func (t *Table) Append(ctx context.Context, row, family, qualifier string, value []byte) error {
	cur, err := t.GetCell(ctx, row, family, qualifier)
	if err != nil && err != gocql.ErrNotFound {
		return err
	}

	return t.Put(ctx, row, family, qualifier, append(cur, value...))
}

// Get implements replicaset.ReplicaTable.
func (t *Table) Get(ctx context.Context, r replicaset.RowReader) error {
	dr, ok := r.(*Reader)
	if !ok {
		return fmt.Errorf("driver: Get requires a *driver.Reader, got %T", r)
	}

	run := func() error {
		qctx, cancel := t.queryCtx(ctx, t.readTimeout)
		defer cancel()
		stmt := fmt.Sprintf(
			"SELECT ts, value FROM %s WHERE row_key = ? AND family = ? AND qualifier = ? LIMIT ?",
			t.table,
		)
		iter := t.session.Query(stmt, dr.Row, dr.Family, dr.Qualifier, dr.GetMaxVersions()).WithContext(qctx).Iter()

		var cells []replicaset.Cell
		var ts int64
		var value []byte
		for iter.Scan(&ts, &value) {
			cells = append(cells, replicaset.Cell{Family: dr.Family, Qualifier: dr.Qualifier, Timestamp: ts, Value: append([]byte(nil), value...)})
		}

		if err := iter.Close(); err != nil {
			return err
		}

		dr.SetResult(replicaset.RowResult{Cells: cells})

		return nil
	}

	if !dr.IsAsync() {
		return run()
	}

	t.incPending(false, 1)
	go func() {
		err := run()
		t.incPending(false, -1)
		if cc := dr.CallChecker(); cc != nil {
			cc.OnComplete(err)
		}
	}()

	return nil
}

// GetBatch implements replicaset.ReplicaTable by issuing one Get per
// reader; gocql has no native batched-read primitive.
func (t *Table) GetBatch(ctx context.Context, batch []replicaset.RowReader) error {
	for _, r := range batch {
		if err := t.Get(ctx, r); err != nil {
			r.(*Reader).setError(err)
		}
	}

	return nil
}

// GetCell implements replicaset.ReplicaTable: the latest version only.
func (t *Table) GetCell(ctx context.Context, row, family, qualifier string) ([]byte, error) {
	qctx, cancel := t.queryCtx(ctx, t.readTimeout)
	defer cancel()
	stmt := fmt.Sprintf(
		"SELECT value FROM %s WHERE row_key = ? AND family = ? AND qualifier = ? LIMIT 1",
		t.table,
	)

	var value []byte
	err := t.session.Query(stmt, row, family, qualifier).WithContext(qctx).Scan(&value)

	return value, err
}

// Scan implements replicaset.ReplicaTable. The returned RowScanner owns
// the query's context deadline; Close cancels it.
func (t *Table) Scan(ctx context.Context, desc *replicaset.ScanDescriptor) (replicaset.RowScanner, error) {
	stmt := fmt.Sprintf("SELECT row_key, family, qualifier, ts, value FROM %s", t.table)
	qctx, cancel := t.queryCtx(ctx, t.readTimeout)
	iter := t.session.Query(stmt).WithContext(qctx).Iter()

	return &rowScanner{iter: iter, cancel: cancel}, nil
}

// GetName implements replicaset.ReplicaTable.
func (t *Table) GetName() string { return t.name }

// IsPutFinished implements replicaset.ReplicaTable.
func (t *Table) IsPutFinished() bool {
	t.pendingMu.Lock()
	defer t.pendingMu.Unlock()

	return t.pendingPuts == 0
}

// IsGetFinished implements replicaset.ReplicaTable.
func (t *Table) IsGetFinished() bool {
	t.pendingMu.Lock()
	defer t.pendingMu.Unlock()

	return t.pendingGets == 0
}

// SetWriteTimeout implements replicaset.ReplicaTable.
func (t *Table) SetWriteTimeout(d time.Duration) { t.writeTimeout = d }

// SetReadTimeout implements replicaset.ReplicaTable.
func (t *Table) SetReadTimeout(d time.Duration) { t.readTimeout = d }

// SetMaxMutationPendingNum is a no-op: gocql's session pool already
// bounds in-flight requests per connection.
func (t *Table) SetMaxMutationPendingNum(n int) {}

// SetMaxReaderPendingNum is a no-op; see SetMaxMutationPendingNum.
func (t *Table) SetMaxReaderPendingNum(n int) {}

type rowScanner struct {
	iter   *gocql.Iter
	cancel context.CancelFunc
	row    string
	cur    []replicaset.Cell
	peek   *replicaset.Cell
	err    error
}

func (s *rowScanner) Next(ctx context.Context) bool {
	var rowKey, family, qualifier string
	var ts int64
	var value []byte

	s.cur = nil
	if s.peek != nil {
		s.cur = append(s.cur, *s.peek)
		s.peek = nil
	}

	for {
		if !s.iter.Scan(&rowKey, &family, &qualifier, &ts, &value) {
			if s.err == nil {
				s.err = s.iter.Close()
			}

			return len(s.cur) > 0
		}

		cell := replicaset.Cell{Family: family, Qualifier: qualifier, Timestamp: ts, Value: append([]byte(nil), value...)}
		if len(s.cur) > 0 && rowKey != s.row {
			// gocql.Iter cannot unread, so hold the next row's first cell
			// for the following Next call.
			s.row = rowKey
			s.peek = &cell

			return true
		}

		s.row = rowKey
		s.cur = append(s.cur, cell)
	}
}

func (s *rowScanner) Row() []replicaset.Cell { return s.cur }
func (s *rowScanner) Err() error             { return s.err }
func (s *rowScanner) Close() error {
	defer s.cancel()

	return s.iter.Close()
}
