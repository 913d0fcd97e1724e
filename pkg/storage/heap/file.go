package heap

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"heapcore/pkg/concurrency/transaction"
	"heapcore/pkg/dberrors"
	"heapcore/pkg/logging"
	"heapcore/pkg/primitives"
	"heapcore/pkg/storage/page"
	"heapcore/pkg/tuple"
)

// File is an on-disk heap file: an unordered, append-only sequence of
// PageSize pages. Its tableId is a stable hash of the file's absolute
// path, so the same file always maps to the same tableId across process
// restarts (§3 HeapFile).
type File struct {
	mu      sync.Mutex
	osFile  *os.File
	path    string
	tableID primitives.TableID
	desc    *tuple.TupleDescription
}

// Open creates or opens the heap file backing a table at path.
func Open(path string, desc *tuple.TupleDescription) (*File, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, dberrors.WrapIoError("resolve path", err)
	}
	f, err := os.OpenFile(abs, os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		return nil, dberrors.WrapIoError("open", err)
	}
	return &File{
		osFile:  f,
		path:    abs,
		tableID: primitives.StableHash(abs),
		desc:    desc,
	}, nil
}

func (hf *File) TableID() primitives.TableID       { return hf.tableID }
func (hf *File) TupleDesc() *tuple.TupleDescription { return hf.desc }

// NumPages returns the current page count, derived from file length.
func (hf *File) NumPages() (int, error) {
	hf.mu.Lock()
	defer hf.mu.Unlock()
	return hf.numPagesLocked()
}

func (hf *File) numPagesLocked() (int, error) {
	info, err := hf.osFile.Stat()
	if err != nil {
		return 0, dberrors.WrapIoError("stat", err)
	}
	return int(info.Size() / int64(primitives.PageSize)), nil
}

// ReadPage seeks to pid.pageNumber*PageSize and reads exactly PageSize
// bytes. A read beyond the current end of file fails with PageOutOfRange.
func (hf *File) ReadPage(pid primitives.PageID) (page.Page, error) {
	hf.mu.Lock()
	defer hf.mu.Unlock()

	numPages, err := hf.numPagesLocked()
	if err != nil {
		return nil, err
	}
	if int(pid.PageNumber) >= numPages {
		return nil, dberrors.NewDbError(dberrors.PageOutOfRange,
			fmt.Sprintf("page %d does not exist (file has %d pages)", pid.PageNumber, numPages))
	}

	buf := make([]byte, primitives.PageSize)
	offset := int64(pid.PageNumber) * int64(primitives.PageSize)
	if _, err := hf.osFile.ReadAt(buf, offset); err != nil && err != io.EOF {
		logging.WithPage(pid).Error("read failed: ", err)
		return nil, dberrors.WrapIoError("read", err)
	}
	return NewHeapPage(pid, buf, hf.desc)
}

// WritePage writes p's serialized bytes at its page number's offset.
func (hf *File) WritePage(p page.Page) error {
	hf.mu.Lock()
	defer hf.mu.Unlock()

	data := p.Serialize()
	offset := int64(p.ID().PageNumber) * int64(primitives.PageSize)
	if _, err := hf.osFile.WriteAt(data, offset); err != nil {
		logging.WithPage(p.ID()).Error("write failed: ", err)
		return dberrors.WrapIoError("write", err)
	}
	return hf.osFile.Sync()
}

// appendBlankPage extends the file by one empty page and returns its
// page number.
func (hf *File) appendBlankPage() (primitives.PageNumber, error) {
	hf.mu.Lock()
	defer hf.mu.Unlock()

	numPages, err := hf.numPagesLocked()
	if err != nil {
		return 0, err
	}
	pageNo := primitives.PageNumber(numPages)
	offset := int64(pageNo) * int64(primitives.PageSize)
	if _, err := hf.osFile.WriteAt(emptyPageData(), offset); err != nil {
		return 0, dberrors.WrapIoError("append page", err)
	}
	if err := hf.osFile.Sync(); err != nil {
		return 0, dberrors.WrapIoError("sync", err)
	}
	return pageNo, nil
}

func (hf *File) Close() error {
	hf.mu.Lock()
	defer hf.mu.Unlock()
	return hf.osFile.Close()
}

// pageGetter is the slice of BufferPool's contract that HeapFile
// operations need: acquire a page under a lock, on behalf of a
// transaction.
type pageGetter interface {
	GetPage(tid transaction.TxID, pid primitives.PageID, perm primitives.Permission) (page.Page, error)
}

// InsertTuple scans existing pages for room, acquiring each READ_WRITE
// through the buffer pool, and appends a fresh page if none has space
// (§4.2).
func (hf *File) InsertTuple(tid transaction.TxID, bp pageGetter, t *tuple.Tuple) ([]page.Page, error) {
	numPages, err := hf.NumPages()
	if err != nil {
		return nil, err
	}

	for pageNo := 0; pageNo < numPages; pageNo++ {
		pid := primitives.NewPageID(hf.tableID, primitives.PageNumber(pageNo))
		p, err := bp.GetPage(tid, pid, primitives.ReadWrite)
		if err != nil {
			return nil, err
		}
		hp := p.(*HeapPage)
		if err := hp.InsertTuple(t); err != nil {
			if dberrors.IsReason(err, dberrors.PageFull) {
				continue
			}
			return nil, err
		}
		return []page.Page{p}, nil
	}

	if _, err := hf.appendBlankPage(); err != nil {
		return nil, err
	}
	logging.WithTable(hf.tableID).Debug("no room on existing pages, appended a new one")
	pid := primitives.NewPageID(hf.tableID, primitives.PageNumber(numPages))
	p, err := bp.GetPage(tid, pid, primitives.ReadWrite)
	if err != nil {
		return nil, err
	}
	hp := p.(*HeapPage)
	if err := hp.InsertTuple(t); err != nil {
		return nil, err
	}
	return []page.Page{p}, nil
}

// DeleteTuple fetches the tuple's page READ_WRITE and deletes it in
// place.
func (hf *File) DeleteTuple(tid transaction.TxID, bp pageGetter, t *tuple.Tuple) ([]page.Page, error) {
	if t.RecordID == nil {
		return nil, dberrors.NewDbError(dberrors.TupleNotOnPage, "tuple has no recordId")
	}
	p, err := bp.GetPage(tid, t.RecordID.PageID, primitives.ReadWrite)
	if err != nil {
		return nil, err
	}
	hp := p.(*HeapPage)
	if err := hp.DeleteTuple(t); err != nil {
		return nil, err
	}
	return []page.Page{p}, nil
}
