// Package transaction defines the opaque transaction identity the rest of
// the engine threads through every buffer-pool and lock call. A
// transaction carries no state of its own here — the pages it holds, the
// locks it owns, and the dependency edges it is waiting on all live in the
// buffer pool and lock manager, keyed by TxID (§3 Transaction).
package transaction

import (
	"strconv"
	"sync/atomic"
)

var counter int64

// TxID is a transaction's identity. Two TxIDs are the same transaction iff
// they compare equal; there is no other state to compare.
type TxID int64

// New allocates a fresh TxID. A transaction is considered born the moment
// its TxID is created; the buffer pool only starts tracking it on the
// first GetPage call (§3).
func New() TxID {
	return TxID(atomic.AddInt64(&counter, 1))
}

func (t TxID) String() string {
	return "tx#" + strconv.FormatInt(int64(t), 10)
}
