package primitives

import (
	"encoding/binary"
	"fmt"
)

// PageSize is the fixed size in bytes of every page (§3, §6). It defaults
// to 4096 and is a package variable rather than a constant so tests can
// shrink it to exercise slot-count edge cases without a 4KB fixture.
var PageSize = 4096

// PageID identifies a page by (tableID, pageNumber); both fields
// participate in equality and hashing (§3 PageId). PageID is a plain
// comparable struct, so it can be used directly as a map key.
type PageID struct {
	TableID    TableID
	PageNumber PageNumber
}

func NewPageID(tableID TableID, pageNumber PageNumber) PageID {
	return PageID{TableID: tableID, PageNumber: pageNumber}
}

func (p PageID) Equals(other PageID) bool {
	return p.TableID == other.TableID && p.PageNumber == other.PageNumber
}

// Serialize returns this PageID as two little-endian integers, per §3.
func (p PageID) Serialize() []byte {
	buf := make([]byte, 12)
	binary.LittleEndian.PutUint64(buf[0:8], uint64(p.TableID))
	binary.LittleEndian.PutUint32(buf[8:12], uint32(p.PageNumber))
	return buf
}

func (p PageID) String() string {
	return fmt.Sprintf("page(table=%d,no=%d)", p.TableID, p.PageNumber)
}
