package tuple

import (
	"fmt"

	"heapcore/pkg/primitives"
)

// RecordID locates a tuple at a specific slot on a specific page (§3
// RecordId).
type RecordID struct {
	PageID     primitives.PageID
	TupleIndex primitives.SlotNumber
}

func NewRecordID(pid primitives.PageID, slot primitives.SlotNumber) RecordID {
	return RecordID{PageID: pid, TupleIndex: slot}
}

func (r RecordID) Equals(other RecordID) bool {
	return r.PageID.Equals(other.PageID) && r.TupleIndex == other.TupleIndex
}

func (r RecordID) String() string {
	return fmt.Sprintf("record(%s,slot=%d)", r.PageID, r.TupleIndex)
}
