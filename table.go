package replicaset

import (
	"context"
	"math/rand"
	"time"
)

// Table is the ReplicaSet Table façade: it fans data-plane operations
// across an ordered, immutable list of ReplicaTable handles, owns the
// async call-checkers, and runs the LGet timestamp merge.
//
// A Table is safe for concurrent use by multiple goroutines as long as
// no single RowMutation or RowReader is submitted to more than one
// in-flight request at a time. Table does not detect a second submission
// of the same object; it never returns ErrInFlight.
type Table struct {
	name     string
	replicas []ReplicaTable
	cfg      *Config
}

// newTable assembles a Table from the replicas that opened successfully.
// It does not check for an empty replica list; OpenTable never passes
// one, reporting ErrAllReplicasFailed instead.
func newTable(name string, replicas []ReplicaTable, cfg *Config) *Table {
	return &Table{name: name, replicas: replicas, cfg: cfg}
}

func (t *Table) logFailure(op string, replica ReplicaIndex, err error) {
	t.cfg.Logger.Warn("replica op failed", "op", op, "replica", t.cfg.name(replica), "err", err)
}

func (t *Table) logFailureReq(op, requestID string, replica ReplicaIndex, err error) {
	t.cfg.Logger.Warn("replica op failed", "op", op, "request_id", requestID, "replica", t.cfg.name(replica), "err", err)
}

// ApplyMutation applies m to every replica, synchronously in fan-out
// order or asynchronously via sequential fallback, per m.IsAsync().
func (t *Table) ApplyMutation(ctx context.Context, m RowMutation) error {
	if m.IsAsync() {
		return t.applyMutationAsync(ctx, m)
	}

	return t.applyMutationSync(ctx, m)
}

// applyMutationSync applies the mutation to every replica in order;
// success iff at least one replica reported OK.
func (t *Table) applyMutationSync(ctx context.Context, m RowMutation) error {
	failures := 0
	var last error

	for i, replica := range t.replicas {
		start := time.Now()
		err := replica.ApplyMutation(ctx, m)
		elapsed := time.Since(start).Seconds()

		t.cfg.Metrics.IncWriteTotal(ReplicaIndex(i))
		t.cfg.Metrics.ObserveWriteDuration(ReplicaIndex(i), elapsed)

		if err != nil {
			failures++
			last = err
			t.logFailure("ApplyMutation", ReplicaIndex(i), err)
			t.cfg.Metrics.IncWriteError(ReplicaIndex(i))
		}

		if failures < len(t.replicas) {
			m.Reset()
		}
	}

	if failures < len(t.replicas) {
		t.cfg.Metrics.IncFanoutSuccess()

		return nil
	}

	t.cfg.Metrics.IncFanoutFailure()

	return &ReplicaError{Replica: ReplicaIndex(len(t.replicas) - 1), Operation: "ApplyMutation", Cause: last}
}

// applyMutationAsync hands the mutation to a fresh PutCallChecker, which
// drives strictly sequential fallback starting at replica 0.
func (t *Table) applyMutationAsync(ctx context.Context, m RowMutation) error {
	if len(t.replicas) == 0 {
		return ErrNoReplicas
	}

	c := newPutCallChecker(ctx, t, m, "ApplyMutation")
	c.dispatch()

	return nil
}

// ApplyMutationBatch dispatches any async mutations in the batch
// individually first; the sync subset is then fanned out per-row, with a
// per-row failure counter governing Reset().
func (t *Table) ApplyMutationBatch(ctx context.Context, batch []RowMutation) error {
	var sync []RowMutation

	for _, m := range batch {
		if m.IsAsync() {
			if err := t.applyMutationAsync(ctx, m); err != nil {
				return err
			}

			continue
		}

		sync = append(sync, m)
	}

	if len(sync) == 0 {
		return nil
	}

	failures := make([]int, len(sync))
	anyFailed := false

	for i, replica := range t.replicas {
		start := time.Now()
		err := replica.ApplyMutationBatch(ctx, sync)
		elapsed := time.Since(start).Seconds()

		for range sync {
			t.cfg.Metrics.IncWriteTotal(ReplicaIndex(i))
			t.cfg.Metrics.ObserveWriteDuration(ReplicaIndex(i), elapsed)
		}

		if err != nil {
			t.logFailure("ApplyMutationBatch", ReplicaIndex(i), err)
		}

		for row, m := range sync {
			if err := m.GetError(); err != nil {
				failures[row]++
				t.cfg.Metrics.IncWriteError(ReplicaIndex(i))
				if failures[row] < len(t.replicas) {
					m.Reset()
				}
			}
		}
	}

	for row := range sync {
		if failures[row] >= len(t.replicas) {
			anyFailed = true
			t.cfg.Metrics.IncFanoutFailure()
		} else {
			t.cfg.Metrics.IncFanoutSuccess()
		}
	}

	if anyFailed {
		return ErrAllReplicasFailed
	}

	return nil
}

func (t *Table) scalarFanout(op string, fn func(ReplicaTable) error) error {
	failures := 0
	var last error

	for i, replica := range t.replicas {
		start := time.Now()
		err := fn(replica)
		elapsed := time.Since(start).Seconds()

		t.cfg.Metrics.IncWriteTotal(ReplicaIndex(i))
		t.cfg.Metrics.ObserveWriteDuration(ReplicaIndex(i), elapsed)

		if err != nil {
			failures++
			last = err
			t.logFailure(op, ReplicaIndex(i), err)
			t.cfg.Metrics.IncWriteError(ReplicaIndex(i))
		}
	}

	if failures < len(t.replicas) {
		t.cfg.Metrics.IncFanoutSuccess()

		return nil
	}

	t.cfg.Metrics.IncFanoutFailure()

	return &ReplicaError{Replica: ReplicaIndex(len(t.replicas) - 1), Operation: op, Cause: last}
}

// Put fans a single-cell write to every replica.
func (t *Table) Put(ctx context.Context, row, family, qualifier string, value []byte) error {
	return t.scalarFanout("Put", func(r ReplicaTable) error { return r.Put(ctx, row, family, qualifier, value) })
}

// Add fans a counter increment to every replica.
func (t *Table) Add(ctx context.Context, row, family, qualifier string, delta int64) error {
	return t.scalarFanout("Add", func(r ReplicaTable) error { return r.Add(ctx, row, family, qualifier, delta) })
}

// AddInt64 fans a 64-bit counter increment to every replica.
func (t *Table) AddInt64(ctx context.Context, row, family, qualifier string, delta int64) error {
	return t.scalarFanout("AddInt64", func(r ReplicaTable) error { return r.AddInt64(ctx, row, family, qualifier, delta) })
}

// PutIfAbsent fans a conditional write to every replica, reporting
// success iff at least one replica applied it.
func (t *Table) PutIfAbsent(ctx context.Context, row, family, qualifier string, value []byte) (bool, error) {
	applied := false
	err := t.scalarFanout("PutIfAbsent", func(r ReplicaTable) error {
		ok, err := r.PutIfAbsent(ctx, row, family, qualifier, value)
		if ok {
			applied = true
		}

		return err
	})

	return applied, err
}

// Append fans a cell-append operation to every replica.
func (t *Table) Append(ctx context.Context, row, family, qualifier string, value []byte) error {
	return t.scalarFanout("Append", func(r ReplicaTable) error { return r.Append(ctx, row, family, qualifier, value) })
}

// replicaOrder returns the replica list in the order Get should try it:
// construction order by default, Fisher-Yates-shuffled when
// GetRandomMode is set.
func (t *Table) replicaOrder() []ReplicaTable {
	if !t.cfg.GetRandomMode {
		return t.replicas
	}

	order := append([]ReplicaTable(nil), t.replicas...)
	rng := rand.New(rand.NewSource(time.Now().UnixMicro())) //nolint:gosec // load-spreading only, not security-sensitive
	rng.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })

	return order
}

// Get fans a read out to replicas in turn and reports the first success.
func (t *Table) Get(ctx context.Context, r RowReader) error {
	order := t.replicaOrder()

	if r.IsAsync() {
		if len(order) == 0 {
			return ErrNoReplicas
		}

		c := newGetCallChecker(ctx, t, r, order)
		c.dispatch()

		return nil
	}

	failures := 0
	var last error

	for i, replica := range order {
		start := time.Now()
		err := replica.Get(ctx, r)
		elapsed := time.Since(start).Seconds()

		t.cfg.Metrics.IncReadTotal(ReplicaIndex(i))
		t.cfg.Metrics.ObserveReadDuration(ReplicaIndex(i), elapsed)

		if err == nil {
			t.cfg.Metrics.IncFanoutSuccess()

			return nil
		}

		failures++
		last = err
		t.logFailure("Get", ReplicaIndex(i), err)
		t.cfg.Metrics.IncReadError(ReplicaIndex(i))

		if failures < len(order) {
			r.Reset()
		}
	}

	t.cfg.Metrics.IncFanoutFailure()

	return &ReplicaError{Replica: ReplicaIndex(len(order) - 1), Operation: "Get", Cause: last}
}

// GetBatch resolves a batch of reads with residual-set shrinkage: async
// readers dispatch individually, and the sync subset is resolved against
// a shrinking residual set, replica by replica, dropping a reader out of
// the residual set as soon as it succeeds or exhausts every replica.
func (t *Table) GetBatch(ctx context.Context, batch []RowReader) error {
	var residual []RowReader

	for _, r := range batch {
		if r.IsAsync() {
			if err := t.Get(ctx, r); err != nil {
				return err
			}

			continue
		}

		residual = append(residual, r)
	}

	failCount := make(map[RowReader]int, len(residual))

	for i, replica := range t.replicas {
		if len(residual) == 0 {
			break
		}

		start := time.Now()
		err := replica.GetBatch(ctx, residual)
		elapsed := time.Since(start).Seconds()

		for range residual {
			t.cfg.Metrics.IncReadTotal(ReplicaIndex(i))
			t.cfg.Metrics.ObserveReadDuration(ReplicaIndex(i), elapsed)
		}

		if err != nil {
			t.logFailure("GetBatch", ReplicaIndex(i), err)
		}

		next := residual[:0]
		for _, r := range residual {
			if r.GetError() == nil {
				t.cfg.Metrics.IncFanoutSuccess()

				continue
			}

			failCount[r]++
			t.cfg.Metrics.IncReadError(ReplicaIndex(i))

			if failCount[r] < len(t.replicas) {
				r.Reset()
				next = append(next, r)
			} else {
				t.cfg.Metrics.IncFanoutFailure()
			}
		}
		residual = next
	}

	return nil
}

// LGet collects a result from every replica and merges them by
// timestamp into at most r.GetMaxVersions() cells, newest first, with
// near-simultaneous cells from different replicas collapsed into one.
func (t *Table) LGet(ctx context.Context, r RowReader) error {
	if len(t.replicas) == 0 {
		return ErrNoReplicas
	}

	if r.IsAsync() {
		c := newLGetCallChecker(ctx, t, r)
		c.dispatch()

		return nil
	}

	perReplica := make([][]Cell, len(t.replicas))
	failures := 0

	for i, replica := range t.replicas {
		start := time.Now()
		err := replica.Get(ctx, r)
		elapsed := time.Since(start).Seconds()

		t.cfg.Metrics.IncReadTotal(ReplicaIndex(i))
		t.cfg.Metrics.ObserveReadDuration(ReplicaIndex(i), elapsed)

		if err != nil {
			failures++
			t.logFailure("LGet", ReplicaIndex(i), err)
			t.cfg.Metrics.IncReadError(ReplicaIndex(i))
		} else {
			perReplica[i] = append([]Cell(nil), r.GetResult().Cells...)
		}

		if i < len(t.replicas)-1 {
			r.Reset()
		}
	}

	merged := mergeLatest(perReplica, r.GetMaxVersions(), t.cfg.TimestampDiffMicros, func(replica int) {
		t.cfg.Metrics.IncLGetCollapsed(ReplicaIndex(replica))
	})
	t.cfg.Metrics.ObserveLGetCells(len(merged))
	r.Reset()
	r.SetResult(RowResult{Cells: merged})

	if failures >= len(t.replicas) {
		t.cfg.Metrics.IncFanoutFailure()

		return ErrAllReplicasFailed
	}

	t.cfg.Metrics.IncFanoutSuccess()

	return nil
}

// Scan returns the first non-nil stream among the replicas, in
// construction order. Cross-replica scan coherence is not defined: a
// caller that retries a failed Scan may land on a different replica and
// see a different row order.
func (t *Table) Scan(ctx context.Context, desc *ScanDescriptor) (RowScanner, error) {
	var last error

	for i, replica := range t.replicas {
		s, err := replica.Scan(ctx, desc)
		if err != nil {
			last = err
			t.logFailure("Scan", ReplicaIndex(i), err)

			continue
		}

		if s != nil {
			return s, nil
		}
	}

	return nil, &ReplicaError{Replica: ReplicaIndex(len(t.replicas) - 1), Operation: "Scan", Cause: last}
}

// GetName returns replica 0's table name.
func (t *Table) GetName() string {
	return t.replicas[0].GetName()
}

// IsPutFinished reports whether every replica has finished its pending
// async puts.
func (t *Table) IsPutFinished() bool {
	for _, r := range t.replicas {
		if !r.IsPutFinished() {
			return false
		}
	}

	return true
}

// IsGetFinished reports whether every replica has finished its pending
// async gets.
func (t *Table) IsGetFinished() bool {
	for _, r := range t.replicas {
		if !r.IsGetFinished() {
			return false
		}
	}

	return true
}

// SetWriteTimeout broadcasts a write deadline to every replica.
func (t *Table) SetWriteTimeout(d time.Duration) {
	for _, r := range t.replicas {
		r.SetWriteTimeout(d)
	}
}

// SetReadTimeout broadcasts a read deadline to every replica.
func (t *Table) SetReadTimeout(d time.Duration) {
	for _, r := range t.replicas {
		r.SetReadTimeout(d)
	}
}

// SetMaxMutationPendingNum broadcasts an async mutation queue-depth
// bound to every replica.
func (t *Table) SetMaxMutationPendingNum(n int) {
	for _, r := range t.replicas {
		r.SetMaxMutationPendingNum(n)
	}
}

// SetMaxReaderPendingNum broadcasts an async reader queue-depth bound
// to every replica.
func (t *Table) SetMaxReaderPendingNum(n int) {
	for _, r := range t.replicas {
		r.SetMaxReaderPendingNum(n)
	}
}

// Flush is deliberately unsupported: it would require a cross-replica
// flush semantic the façade does not define.
func (t *Table) Flush(ctx context.Context) error { return ErrNotImplemented }

// CheckAndApply is deliberately unsupported.
func (t *Table) CheckAndApply(ctx context.Context, m RowMutation) error { return ErrNotImplemented }

// IncrementColumnValue is deliberately unsupported.
func (t *Table) IncrementColumnValue(ctx context.Context, row, family, qualifier string, delta int64) error {
	return ErrNotImplemented
}

// LockRow is deliberately unsupported.
func (t *Table) LockRow(ctx context.Context, row string) error { return ErrNotImplemented }

// GetStartEndKeys is deliberately unsupported.
func (t *Table) GetStartEndKeys(ctx context.Context) ([]string, []string, error) {
	return nil, nil, ErrNotImplemented
}

// GetTabletLocation is deliberately unsupported at the table level; the
// client-level GetTabletLocation is supported.
func (t *Table) GetTabletLocation(ctx context.Context) ([]TabletLocation, error) {
	return nil, ErrNotImplemented
}

// GetDescriptor is deliberately unsupported.
func (t *Table) GetDescriptor(ctx context.Context) (*TableDescriptor, error) {
	return nil, ErrNotImplemented
}
