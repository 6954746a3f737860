package replicaset

import (
	"context"
	"time"

	"github.com/arloliu/ha-table/internal/idgen"
)

// PutCallChecker drives the strictly sequential async mutation fallback
// chain: dispatch to replica 0, and on each completion either advance to
// the next replica or fire the user callback exactly once.
//
// PutCallChecker is exported so tests can observe its cursor and failure
// count directly.
type PutCallChecker struct {
	ctx       context.Context
	table     *Table
	mutation  RowMutation
	op        string
	requestID string

	dispatchStart time.Time

	// Cursor is the index of the replica currently (or most recently)
	// dispatched to.
	Cursor int
	// Failures is the number of per-replica completions observed with a
	// non-nil error so far.
	Failures int
}

// Compile-time assertion that PutCallChecker implements CallChecker.
var _ CallChecker = (*PutCallChecker)(nil)

func newPutCallChecker(ctx context.Context, t *Table, m RowMutation, op string) *PutCallChecker {
	return &PutCallChecker{ctx: ctx, table: t, mutation: m, op: op, requestID: idgen.New()}
}

// dispatch attaches this checker to the mutation and sends it to the
// replica at Cursor.
func (c *PutCallChecker) dispatch() {
	c.mutation.SetCallChecker(c)
	c.dispatchStart = time.Now()
	c.table.cfg.Metrics.IncWriteTotal(ReplicaIndex(c.Cursor))
	replica := c.table.replicas[c.Cursor]
	if err := replica.ApplyMutation(c.ctx, c.mutation); err != nil {
		// A synchronous dispatch error (e.g. the replica rejected the
		// call before even attempting it asynchronously) completes the
		// chain itself, matching how an async failure would.
		c.OnComplete(err)
	}
}

// OnComplete implements CallChecker.
func (c *PutCallChecker) OnComplete(err error) {
	c.table.cfg.Metrics.ObserveWriteDuration(ReplicaIndex(c.Cursor), time.Since(c.dispatchStart).Seconds())

	if err != nil {
		c.Failures++
		c.table.logFailureReq(c.op, c.requestID, ReplicaIndex(c.Cursor), err)
		c.table.cfg.Metrics.IncWriteError(ReplicaIndex(c.Cursor))
	}

	if c.Cursor < len(c.table.replicas)-1 {
		c.Cursor++
		c.mutation.Reset()
		c.dispatch()

		return
	}

	if c.Failures < len(c.table.replicas) {
		c.mutation.Reset()
		c.table.cfg.Metrics.IncFanoutSuccess()
		c.mutation.FireCallback(nil)

		return
	}

	c.table.cfg.Metrics.IncFanoutFailure()
	c.mutation.FireCallback(&ReplicaError{Replica: ReplicaIndex(c.Cursor), Operation: c.op, Cause: err})
}

// GetCallChecker drives async first-success Get fallback.
//
// GetCallChecker is exported so tests can observe its cursor directly.
type GetCallChecker struct {
	ctx       context.Context
	table     *Table
	reader    RowReader
	replicas  []ReplicaTable
	requestID string

	dispatchStart time.Time

	// Cursor is the index, into replicas, currently (or most recently)
	// dispatched to.
	Cursor int
}

var _ CallChecker = (*GetCallChecker)(nil)

func newGetCallChecker(ctx context.Context, t *Table, r RowReader, order []ReplicaTable) *GetCallChecker {
	return &GetCallChecker{ctx: ctx, table: t, reader: r, replicas: order, requestID: idgen.New()}
}

func (c *GetCallChecker) dispatch() {
	c.reader.SetCallChecker(c)
	c.dispatchStart = time.Now()
	c.table.cfg.Metrics.IncReadTotal(ReplicaIndex(c.Cursor))
	if err := c.replicas[c.Cursor].Get(c.ctx, c.reader); err != nil {
		c.OnComplete(err)
	}
}

// OnComplete implements CallChecker.
func (c *GetCallChecker) OnComplete(err error) {
	c.table.cfg.Metrics.ObserveReadDuration(ReplicaIndex(c.Cursor), time.Since(c.dispatchStart).Seconds())

	if err == nil {
		c.table.cfg.Metrics.IncFanoutSuccess()
		c.reader.FireCallback(nil)

		return
	}

	c.table.logFailureReq("Get", c.requestID, ReplicaIndex(c.Cursor), err)
	c.table.cfg.Metrics.IncReadError(ReplicaIndex(c.Cursor))

	if c.Cursor < len(c.replicas)-1 {
		c.Cursor++
		c.reader.Reset()
		c.dispatch()

		return
	}

	c.table.cfg.Metrics.IncFanoutFailure()
	c.reader.FireCallback(&ReplicaError{Replica: ReplicaIndex(c.Cursor), Operation: "Get", Cause: err})
}

// LGetCallChecker drives async LGet: every replica is visited exactly
// once, strictly sequentially through the single shared reader object
// (preserving the at-most-one-in-flight invariant), and the final
// completion performs the timestamp merge.
//
// LGetCallChecker is exported so tests can observe its per-replica
// result capture.
type LGetCallChecker struct {
	ctx       context.Context
	table     *Table
	reader    RowReader
	replicas  []ReplicaTable
	requestID string

	dispatchStart time.Time

	// Cursor is the replica currently (or most recently) dispatched to.
	Cursor int
	// Failures counts per-replica completions observed with a non-nil
	// error.
	Failures int

	perReplica [][]Cell
}

var _ CallChecker = (*LGetCallChecker)(nil)

func newLGetCallChecker(ctx context.Context, t *Table, r RowReader) *LGetCallChecker {
	return &LGetCallChecker{
		ctx:        ctx,
		table:      t,
		reader:     r,
		replicas:   t.replicas,
		perReplica: make([][]Cell, len(t.replicas)),
		requestID:  idgen.New(),
	}
}

func (c *LGetCallChecker) dispatch() {
	c.reader.SetCallChecker(c)
	c.dispatchStart = time.Now()
	c.table.cfg.Metrics.IncReadTotal(ReplicaIndex(c.Cursor))
	if err := c.replicas[c.Cursor].Get(c.ctx, c.reader); err != nil {
		c.OnComplete(err)
	}
}

// OnComplete implements CallChecker.
func (c *LGetCallChecker) OnComplete(err error) {
	idx := c.Cursor

	c.table.cfg.Metrics.ObserveReadDuration(ReplicaIndex(idx), time.Since(c.dispatchStart).Seconds())

	if err != nil {
		c.Failures++
		c.table.logFailureReq("LGet", c.requestID, ReplicaIndex(idx), err)
		c.table.cfg.Metrics.IncReadError(ReplicaIndex(idx))
	} else {
		c.perReplica[idx] = append([]Cell(nil), c.reader.GetResult().Cells...)
	}

	if c.Cursor < len(c.replicas)-1 {
		c.Cursor++
		c.reader.Reset()
		c.dispatch()

		return
	}

	c.finish()
}

func (c *LGetCallChecker) finish() {
	merged := mergeLatest(c.perReplica, c.reader.GetMaxVersions(), c.table.cfg.TimestampDiffMicros, func(replica int) {
		c.table.cfg.Metrics.IncLGetCollapsed(ReplicaIndex(replica))
	})
	c.table.cfg.Metrics.ObserveLGetCells(len(merged))

	c.reader.Reset()
	c.reader.SetResult(RowResult{Cells: merged})

	if c.Failures >= len(c.replicas) {
		c.table.cfg.Metrics.IncFanoutFailure()
		c.reader.FireCallback(ErrAllReplicasFailed)

		return
	}

	c.table.cfg.Metrics.IncFanoutSuccess()
	c.reader.FireCallback(nil)
}
