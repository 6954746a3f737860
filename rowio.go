package replicaset

// RowResult is the result buffer carried by a RowReader: the cells
// observed for the requested row, newest-first.
type RowResult struct {
	Cells []Cell
}

// RowMutation is the interface the façade consumes from a user-supplied
// row mutation object: a row key, an ordered list of cell edits, an
// optional async-completion hook and a mutable error slot, all opaque to
// the façade except for the dispatch-control operations below.
//
// A RowMutation carrying a callback is dispatched to at most one replica
// at a time; the façade never calls two of its methods concurrently.
type RowMutation interface {
	// IsAsync reports whether this mutation should be dispatched
	// asynchronously (sequential fallback) rather than synchronously
	// (fan-out to every replica in order on the caller's goroutine).
	IsAsync() bool

	// GetError returns the mutation's current error slot.
	GetError() error

	// Reset clears internal dispatch state (including any previously
	// observed error) while preserving the user payload and any
	// attached callback.
	Reset()

	// SetCallChecker attaches the single-use completion gate that
	// decides, on each per-replica completion, whether to re-dispatch
	// or fire the user callback.
	SetCallChecker(cc CallChecker)

	// CallChecker returns the currently attached completion gate, or
	// nil if none is attached.
	CallChecker() CallChecker

	// FireCallback invokes the user's completion hook exactly once with
	// the final error. It is called by the attached CallChecker, never
	// by the façade directly.
	FireCallback(err error)
}

// RowReader is the interface the façade consumes from a user-supplied
// row reader object: a row key with filters, an optional async
// completion hook, a mutable error slot, a result buffer and a
// max-versions cap.
type RowReader interface {
	IsAsync() bool
	GetError() error
	Reset()
	SetCallChecker(cc CallChecker)
	CallChecker() CallChecker
	FireCallback(err error)

	// GetResult returns the cells collected so far.
	GetResult() RowResult
	// SetResult overwrites the result buffer, used by the façade to
	// write back an LGet merge.
	SetResult(r RowResult)
	// GetMaxVersions returns the cap on the number of cell versions to
	// retain, used by LGet's merge.
	GetMaxVersions() int
}

// CallChecker is the single-use completion gate attached to an
// asynchronous row mutation or reader. The replica layer invokes
// OnComplete exactly once per per-replica completion, from whatever
// goroutine completed the request; OnComplete is never invoked
// concurrently with itself for the same checker.
//
// OnComplete decides, on each call, whether to re-dispatch to the next
// replica or to fire the user callback via the attached RowMutation's
// or RowReader's FireCallback. It fires the user callback at most once
// over its lifetime.
type CallChecker interface {
	// OnComplete is invoked with the error (nil on success) observed
	// from the replica that was just dispatched to.
	OnComplete(err error)
}
