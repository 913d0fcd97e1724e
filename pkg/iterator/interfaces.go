// Package iterator defines the cursor contract operators use to walk
// tuples, and that HeapFile satisfies to expose its rows (§6 Operator
// contract).
package iterator

import "heapcore/pkg/tuple"

// TupleIterator is the minimal read cursor shared by DbIterator and
// DbFileIterator.
type TupleIterator interface {
	// HasNext reports whether Next would return a tuple. It may return
	// TransactionAborted if the underlying scan's transaction was killed
	// by deadlock detection.
	HasNext() (bool, error)

	// Next returns the next tuple, or TransactionAborted under the same
	// condition as HasNext. Callers must propagate TransactionAborted
	// rather than catching it (§6, §7).
	Next() (*tuple.Tuple, error)
}

// DbIterator is the operator-facing cursor: open-before-iterate,
// close-after, with schema exposed for planning.
type DbIterator interface {
	TupleIterator
	Open() error
	Rewind() error
	Close() error
	GetTupleDesc() *tuple.TupleDescription
}

// DbFileIterator is the lower-level cursor a storage file exposes; it
// omits schema access, which callers already have from the file itself.
type DbFileIterator interface {
	TupleIterator
	Open() error
	Rewind() error
	Close() error
}
