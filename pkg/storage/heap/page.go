// Package heap implements the heap-file storage engine: fixed-size pages
// laid out as a slot-occupancy bitmap plus packed fixed-width tuple slots,
// and the file abstraction that manages a table's pages on disk.
package heap

import (
	"bytes"
	"sync"

	"heapcore/pkg/concurrency/transaction"
	"heapcore/pkg/dberrors"
	"heapcore/pkg/primitives"
	"heapcore/pkg/storage/page"
	"heapcore/pkg/tuple"
	"heapcore/pkg/types"
)

// HeapPage is a single page of a heap file. Its on-disk layout is a
// bitmap header (one bit per slot, LSB-first within each byte) followed
// by numSlots fixed-width tuple slots, in slot order. The bitmap is the
// sole source of truth for occupancy; bytes in an unoccupied slot are
// meaningless and ignored on read.
type HeapPage struct {
	id        primitives.PageID
	desc      *tuple.TupleDescription
	numSlots  int
	tupleSize int

	mu      sync.RWMutex
	tuples  []*tuple.Tuple
	dirtier *transaction.TxID
	before  []byte
}

// NewEmptyHeapPage allocates a page with every slot unoccupied.
func NewEmptyHeapPage(id primitives.PageID, desc *tuple.TupleDescription) *HeapPage {
	hp, _ := NewHeapPage(id, emptyPageData(), desc)
	return hp
}

// NewHeapPage parses exactly-PageSize bytes into a HeapPage.
func NewHeapPage(id primitives.PageID, data []byte, desc *tuple.TupleDescription) (*HeapPage, error) {
	if len(data) != primitives.PageSize {
		return nil, dberrors.NewDbError(dberrors.PageOutOfRange,
			"page data must be exactly PageSize bytes")
	}

	numSlots := NumSlots(desc)
	hp := &HeapPage{
		id:        id,
		desc:      desc,
		numSlots:  numSlots,
		tupleSize: desc.TupleSize(),
		tuples:    make([]*tuple.Tuple, numSlots),
		before:    append([]byte(nil), data...),
	}

	headerSize := headerBytes(numSlots)
	body := data[headerSize:]
	for slot := 0; slot < numSlots; slot++ {
		if !bitSet(data, slot) {
			continue
		}
		start := slot * hp.tupleSize
		t, err := readTuple(body[start:start+hp.tupleSize], desc)
		if err != nil {
			return nil, err
		}
		rid := tuple.NewRecordID(id, primitives.SlotNumber(slot))
		t.RecordID = &rid
		hp.tuples[slot] = t
	}
	return hp, nil
}

// NumSlots computes floor((PageSize*8) / (tupleSize*8 + 1)).
func NumSlots(desc *tuple.TupleDescription) int {
	tupleSize := desc.TupleSize()
	return (primitives.PageSize * 8) / (tupleSize*8 + 1)
}

func headerBytes(numSlots int) int {
	return (numSlots + 7) / 8
}

func bitSet(data []byte, slot int) bool {
	return data[slot/8]&(1<<uint(slot%8)) != 0
}

func setBit(data []byte, slot int) {
	data[slot/8] |= 1 << uint(slot%8)
}

// emptyPageData returns a PageSize-byte buffer of a page with every slot
// unoccupied: an all-zero bitmap header and an all-zero body.
func emptyPageData() []byte {
	return make([]byte, primitives.PageSize)
}

func readTuple(data []byte, desc *tuple.TupleDescription) (*tuple.Tuple, error) {
	t := tuple.NewTuple(desc)
	r := bytes.NewReader(data)
	for i := 0; i < desc.NumFields(); i++ {
		ft, err := desc.TypeAt(i)
		if err != nil {
			return nil, err
		}
		f, err := types.DeserializeField(r, ft)
		if err != nil {
			return nil, err
		}
		if err := t.SetField(i, f); err != nil {
			return nil, err
		}
	}
	return t, nil
}

func (hp *HeapPage) ID() primitives.PageID { return hp.id }

func (hp *HeapPage) IsDirty() *transaction.TxID {
	hp.mu.RLock()
	defer hp.mu.RUnlock()
	return hp.dirtier
}

func (hp *HeapPage) MarkDirty(tid *transaction.TxID) {
	hp.mu.Lock()
	defer hp.mu.Unlock()
	hp.dirtier = tid
}

// IterateTuples returns every occupied slot's tuple in slot order.
func (hp *HeapPage) IterateTuples() []*tuple.Tuple {
	hp.mu.RLock()
	defer hp.mu.RUnlock()

	out := make([]*tuple.Tuple, 0, hp.numSlots)
	for _, t := range hp.tuples {
		if t != nil {
			out = append(out, t)
		}
	}
	return out
}

// InsertTuple rejects a tuple whose schema disagrees with the page's, and
// otherwise writes it into the lowest unoccupied slot, assigning its
// RecordID.
func (hp *HeapPage) InsertTuple(t *tuple.Tuple) error {
	hp.mu.Lock()
	defer hp.mu.Unlock()

	if !t.Desc.Equals(hp.desc) {
		return dberrors.NewDbError(dberrors.NotMatchingSchema,
			"tuple schema does not match page schema")
	}

	slot := -1
	for i := 0; i < hp.numSlots; i++ {
		if hp.tuples[i] == nil {
			slot = i
			break
		}
	}
	if slot == -1 {
		return dberrors.NewDbError(dberrors.PageFull, "no empty slot on page")
	}

	hp.tuples[slot] = t
	rid := tuple.NewRecordID(hp.id, primitives.SlotNumber(slot))
	t.RecordID = &rid
	return nil
}

// DeleteTuple requires t to carry a RecordID pointing at this page and an
// occupied slot, and clears that slot.
func (hp *HeapPage) DeleteTuple(t *tuple.Tuple) error {
	hp.mu.Lock()
	defer hp.mu.Unlock()

	if t.RecordID == nil || !t.RecordID.PageID.Equals(hp.id) {
		return dberrors.NewDbError(dberrors.TupleNotOnPage, "tuple recordId does not reference this page")
	}
	slot := int(t.RecordID.TupleIndex)
	if slot < 0 || slot >= hp.numSlots || hp.tuples[slot] == nil {
		return dberrors.NewDbError(dberrors.TupleNotOnPage, "slot is not occupied")
	}

	hp.tuples[slot] = nil
	t.RecordID = nil
	return nil
}

// Serialize is bit-exact with the page's layout: bitmap header then
// packed slots, with unoccupied slot bytes zero-filled.
func (hp *HeapPage) Serialize() []byte {
	hp.mu.RLock()
	defer hp.mu.RUnlock()

	buf := make([]byte, primitives.PageSize)
	headerSize := headerBytes(hp.numSlots)
	body := buf[headerSize:]

	for slot, t := range hp.tuples {
		if t == nil {
			continue
		}
		setBit(buf, slot)
		var b bytes.Buffer
		for i := 0; i < hp.desc.NumFields(); i++ {
			f, err := t.GetField(i)
			if err != nil || f == nil {
				continue
			}
			_ = f.Serialize(&b)
		}
		start := slot * hp.tupleSize
		copy(body[start:start+hp.tupleSize], b.Bytes())
	}
	return buf
}

func (hp *HeapPage) BeforeImage() page.Page {
	hp.mu.RLock()
	defer hp.mu.RUnlock()
	before, _ := NewHeapPage(hp.id, hp.before, hp.desc)
	return before
}

func (hp *HeapPage) SetBeforeImage() {
	snapshot := hp.Serialize()
	hp.mu.Lock()
	defer hp.mu.Unlock()
	hp.before = snapshot
}
