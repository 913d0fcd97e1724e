package memory

import (
	"sync"

	"heapcore/pkg/concurrency/lock"
	"heapcore/pkg/concurrency/transaction"
	"heapcore/pkg/dberrors"
	"heapcore/pkg/logging"
	"heapcore/pkg/primitives"
	"heapcore/pkg/storage/heap"
	"heapcore/pkg/storage/page"
	"heapcore/pkg/tuple"
)

// FileTable resolves a tableId to its backing DbFile. The buffer pool
// never owns files itself — the catalog does — so it is handed this
// narrow lookup instead of a direct dependency on the catalog package,
// per the cyclic-reference design note: tableId is the index, the
// catalog owns HeapFiles, the pool holds only tableIds (§9).
type FileTable interface {
	FileForTable(tableID primitives.TableID) (page.DbFile, error)
}

// BufferPool is the page cache that mediates every operator access to
// disk: lock acquisition with deadlock detection, LRU admission with
// NO-STEAL eviction, and FORCE-at-commit / UNDO-at-abort transaction
// completion (§4.4).
type BufferPool struct {
	mu          sync.Mutex
	maxFrames   int
	cache       PageCache
	locks       *lock.Manager
	files       FileTable
	pagesHeldBy map[transaction.TxID]map[primitives.PageID]bool
}

func NewBufferPool(maxFrames int, files FileTable) *BufferPool {
	return &BufferPool{
		maxFrames:   maxFrames,
		cache:       NewLRUPageCache(maxFrames),
		locks:       lock.NewManager(),
		files:       files,
		pagesHeldBy: make(map[transaction.TxID]map[primitives.PageID]bool),
	}
}

// GetPage acquires pid under mode for tx, fetching it from disk on a
// cache miss and evicting a clean page if the cache is full.
func (bp *BufferPool) GetPage(tx transaction.TxID, pid primitives.PageID, mode primitives.Permission) (page.Page, error) {
	if err := bp.locks.Acquire(tx, pid, mode); err != nil {
		return nil, err
	}
	bp.recordHeld(tx, pid)

	bp.mu.Lock()
	defer bp.mu.Unlock()

	if p, ok := bp.cache.Get(pid); ok {
		return p, nil
	}

	logging.WithTx(tx).WithField("page", pid.String()).Debug("page fault fetching from disk")

	if bp.cache.Size() >= bp.maxFrames {
		if err := bp.evictLocked(); err != nil {
			logging.WithTx(tx).Warn("eviction failed: ", err)
			return nil, err
		}
	}

	dbFile, err := bp.files.FileForTable(pid.TableID)
	if err != nil {
		return nil, err
	}
	p, err := dbFile.ReadPage(pid)
	if err != nil {
		logging.WithPage(pid).Error("read failed: ", err)
		return nil, err
	}
	p.SetBeforeImage()
	if err := bp.cache.Put(pid, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (bp *BufferPool) recordHeld(tx transaction.TxID, pid primitives.PageID) {
	bp.mu.Lock()
	defer bp.mu.Unlock()
	if bp.pagesHeldBy[tx] == nil {
		bp.pagesHeldBy[tx] = make(map[primitives.PageID]bool)
	}
	bp.pagesHeldBy[tx][pid] = true
}

// evictLocked selects the least-recently-used clean page and drops it
// from the cache. Caller holds bp.mu.
func (bp *BufferPool) evictLocked() error {
	for _, pid := range bp.cache.LeastRecentlyUsed() {
		p, ok := bp.cache.Get(pid)
		if !ok {
			continue
		}
		if p.IsDirty() != nil {
			continue
		}
		logging.WithPage(pid).Debug("evicting clean page")
		bp.cache.Remove(pid)
		return nil
	}
	logging.GetLogger().Warn("no clean page available to evict")
	return dberrors.NewDbError(dberrors.AllPagesDirty, "every cached page is dirty; cannot evict under NO STEAL")
}

// InsertTuple delegates to tableId's HeapFile, then dirties every
// returned page under tx.
func (bp *BufferPool) InsertTuple(tx transaction.TxID, tableID primitives.TableID, t *tuple.Tuple) error {
	dbFile, err := bp.files.FileForTable(tableID)
	if err != nil {
		return err
	}
	hf, ok := dbFile.(*heap.File)
	if !ok {
		return dberrors.NewDbError(dberrors.NotMatchingSchema, "table is not backed by a heap file")
	}
	pages, err := hf.InsertTuple(tx, bp, t)
	if err != nil {
		return err
	}
	bp.dirty(tx, pages)
	return nil
}

// DeleteTuple delegates to the tuple's page's HeapFile, then dirties the
// returned page under tx.
func (bp *BufferPool) DeleteTuple(tx transaction.TxID, t *tuple.Tuple) error {
	if t.RecordID == nil {
		return dberrors.NewDbError(dberrors.TupleNotOnPage, "tuple has no recordId")
	}
	dbFile, err := bp.files.FileForTable(t.RecordID.PageID.TableID)
	if err != nil {
		return err
	}
	hf, ok := dbFile.(*heap.File)
	if !ok {
		return dberrors.NewDbError(dberrors.NotMatchingSchema, "table is not backed by a heap file")
	}
	pages, err := hf.DeleteTuple(tx, bp, t)
	if err != nil {
		return err
	}
	bp.dirty(tx, pages)
	return nil
}

func (bp *BufferPool) dirty(tx transaction.TxID, pages []page.Page) {
	bp.mu.Lock()
	defer bp.mu.Unlock()

	for _, p := range pages {
		tid := tx
		p.MarkDirty(&tid)
		bp.cache.Put(p.ID(), p)
		if bp.pagesHeldBy[tx] == nil {
			bp.pagesHeldBy[tx] = make(map[primitives.PageID]bool)
		}
		bp.pagesHeldBy[tx][p.ID()] = true
	}
}

// ReleasePage is an unsafe manual unlock: it drops tx's lock on pid and
// removes pid from tx's held pages, without flushing or restoring the page.
func (bp *BufferPool) ReleasePage(tx transaction.TxID, pid primitives.PageID) {
	bp.locks.Release(tx, pid)
	bp.mu.Lock()
	defer bp.mu.Unlock()
	delete(bp.pagesHeldBy[tx], pid)
}

func (bp *BufferPool) HoldsLock(tx transaction.TxID, pid primitives.PageID) bool {
	return bp.locks.Holds(tx, pid)
}

// TransactionComplete finalizes tx: commit FORCEs its dirty pages to
// disk and releases locks; abort restores before-images and releases
// locks. Both are idempotent after the first call (§4.4).
func (bp *BufferPool) TransactionComplete(tx transaction.TxID, commit bool) error {
	bp.mu.Lock()
	pages := bp.pagesHeldBy[tx]
	delete(bp.pagesHeldBy, tx)
	bp.mu.Unlock()

	if pages == nil {
		return nil
	}

	if commit {
		logging.WithTx(tx).Debug("committing, flushing dirty pages")
	} else {
		logging.WithTx(tx).Debug("aborting, restoring before-images")
	}

	for pid := range pages {
		if commit {
			if err := bp.commitPage(tx, pid); err != nil {
				logging.WithTx(tx).WithField("page", pid.String()).Error("commit flush failed: ", err)
				return err
			}
		} else {
			bp.abortPage(tx, pid)
		}
		bp.locks.Release(tx, pid)
	}
	return nil
}

func (bp *BufferPool) commitPage(tx transaction.TxID, pid primitives.PageID) error {
	bp.mu.Lock()
	p, ok := bp.cache.Get(pid)
	bp.mu.Unlock()
	if !ok {
		return nil
	}
	dirtyBy := p.IsDirty()
	if dirtyBy == nil || *dirtyBy != tx || !bp.locks.Holds(tx, pid) {
		return nil
	}

	dbFile, err := bp.files.FileForTable(pid.TableID)
	if err != nil {
		return err
	}
	if err := dbFile.WritePage(p); err != nil {
		return err
	}
	p.MarkDirty(nil)
	p.SetBeforeImage()
	return nil
}

func (bp *BufferPool) abortPage(tx transaction.TxID, pid primitives.PageID) {
	bp.mu.Lock()
	defer bp.mu.Unlock()

	p, ok := bp.cache.Get(pid)
	if !ok {
		return
	}
	dirtyBy := p.IsDirty()
	if dirtyBy == nil || *dirtyBy != tx {
		return
	}
	before := p.BeforeImage()
	before.MarkDirty(nil)
	bp.cache.Put(pid, before)
}

// FlushAllPages writes every dirty cached page to disk, regardless of
// owning transaction.
func (bp *BufferPool) FlushAllPages() error {
	bp.mu.Lock()
	pids := bp.cache.LeastRecentlyUsed()
	bp.mu.Unlock()

	for _, pid := range pids {
		if err := bp.FlushPage(pid); err != nil {
			return err
		}
	}
	return nil
}

// FlushPage writes pid to disk if dirty, then marks it clean.
func (bp *BufferPool) FlushPage(pid primitives.PageID) error {
	bp.mu.Lock()
	p, ok := bp.cache.Get(pid)
	bp.mu.Unlock()
	if !ok || p.IsDirty() == nil {
		return nil
	}

	dbFile, err := bp.files.FileForTable(pid.TableID)
	if err != nil {
		return err
	}
	if err := dbFile.WritePage(p); err != nil {
		return err
	}
	p.MarkDirty(nil)
	p.SetBeforeImage()
	return nil
}

// DiscardPage drops pid from the cache without writing it, freeing its
// frame. The spec's design notes flag the source's discardPage as
// buggy (it marked the slot used); this implementation frees it, per
// the documented intended behavior.
func (bp *BufferPool) DiscardPage(pid primitives.PageID) {
	bp.mu.Lock()
	defer bp.mu.Unlock()
	bp.cache.Remove(pid)
}
