package heap

import (
	"fmt"

	"heapcore/pkg/concurrency/transaction"
	"heapcore/pkg/primitives"
	"heapcore/pkg/tuple"
)

// FileIterator walks every tuple of a heap file in page order, fetching
// each page READ_ONLY through the buffer pool and skipping empty pages
// (§4.2 HeapFile.iterator).
type FileIterator struct {
	file *File
	tid  transaction.TxID
	bp   pageGetter

	open        bool
	currentPage int
	tuples      []*tuple.Tuple
	pos         int
}

// NewFileIterator constructs a cursor bound to tid; the cursor's Open
// method performs the first page fetch.
func NewFileIterator(file *File, tid transaction.TxID, bp pageGetter) *FileIterator {
	return &FileIterator{file: file, tid: tid, bp: bp}
}

func (it *FileIterator) Open() error {
	it.currentPage = -1
	it.tuples = nil
	it.pos = 0
	it.open = true
	return it.advanceToNonEmptyPage()
}

func (it *FileIterator) Rewind() error {
	return it.Open()
}

func (it *FileIterator) Close() error {
	it.open = false
	it.tuples = nil
	return nil
}

func (it *FileIterator) HasNext() (bool, error) {
	if !it.open {
		return false, fmt.Errorf("heap file iterator is not open")
	}
	if it.pos < len(it.tuples) {
		return true, nil
	}
	if err := it.advanceToNonEmptyPage(); err != nil {
		return false, err
	}
	return it.pos < len(it.tuples), nil
}

func (it *FileIterator) Next() (*tuple.Tuple, error) {
	hasNext, err := it.HasNext()
	if err != nil {
		return nil, err
	}
	if !hasNext {
		return nil, fmt.Errorf("no more tuples")
	}
	t := it.tuples[it.pos]
	it.pos++
	return t, nil
}

// advanceToNonEmptyPage moves forward from the current page, fetching
// each candidate page READ_ONLY, until it finds one with at least one
// tuple or runs out of pages.
func (it *FileIterator) advanceToNonEmptyPage() error {
	numPages, err := it.file.NumPages()
	if err != nil {
		return err
	}

	for it.pos >= len(it.tuples) {
		it.currentPage++
		if it.currentPage >= numPages {
			it.tuples = nil
			it.pos = 0
			return nil
		}

		pid := primitives.NewPageID(it.file.TableID(), primitives.PageNumber(it.currentPage))
		p, err := it.bp.GetPage(it.tid, pid, primitives.ReadOnly)
		if err != nil {
			return err
		}
		hp := p.(*HeapPage)
		it.tuples = hp.IterateTuples()
		it.pos = 0
	}
	return nil
}
