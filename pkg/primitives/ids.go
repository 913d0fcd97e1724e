// Package primitives defines the identifiers and small value types shared
// across the storage engine: table/page/slot numbers, the stable hash used
// to derive a table's identity from its file path, and the comparison
// predicates fields are evaluated against.
package primitives

import (
	"fmt"

	"github.com/cespare/xxhash/v2"
)

// TableID identifies a table's backing heap file. It is derived once, at
// open time, from the absolute path of the file (§3 HeapFile).
type TableID uint64

// PageNumber is a page's position within its table's heap file, starting
// at zero.
type PageNumber uint32

// SlotNumber is a tuple's position within a page's slot array.
type SlotNumber uint32

// StableHash computes the deterministic identifier used as a TableID.
// The same absolute path always yields the same ID, which is what lets the
// buffer pool and catalog key pages by (TableID, PageNumber) across
// process restarts.
func StableHash(absolutePath string) TableID {
	return TableID(xxhash.Sum64String(absolutePath))
}

func (t TableID) String() string {
	return fmt.Sprintf("table#%d", uint64(t))
}
