package lock

import (
	"runtime"
	"sync"

	"heapcore/pkg/concurrency/transaction"
	"heapcore/pkg/dberrors"
	"heapcore/pkg/logging"
	"heapcore/pkg/primitives"
)

// Manager owns one PageLock per page ever touched, plus the wait-for
// graph deadlock detector that guards getPage's retry loop (§4.4).
//
// waitsFor is recomputed on every failed acquisition attempt from each
// PageLock's current holders; no edge survives a granted lock (§9).
type Manager struct {
	mu       sync.Mutex
	locks    map[primitives.PageID]*PageLock
	waitsFor map[transaction.TxID]map[transaction.TxID]bool
}

func NewManager() *Manager {
	return &Manager{
		locks:    make(map[primitives.PageID]*PageLock),
		waitsFor: make(map[transaction.TxID]map[transaction.TxID]bool),
	}
}

func (m *Manager) lockFor(pid primitives.PageID) *PageLock {
	m.mu.Lock()
	defer m.mu.Unlock()

	pl, ok := m.locks[pid]
	if !ok {
		pl = newPageLock()
		m.locks[pid] = pl
	}
	return pl
}

// Acquire blocks (via a spin-yield loop) until tx is granted mode on
// pid, or until deadlock detection kills tx with TransactionAborted.
func (m *Manager) Acquire(tx transaction.TxID, pid primitives.PageID, mode primitives.Permission) error {
	pl := m.lockFor(pid)

	for {
		if pl.addLock(mode, tx) {
			m.clearWaitsFor(tx)
			return nil
		}

		waiting := pl.relatedTxs()
		logging.WithTx(tx).WithField("page", pid.String()).Debug("waiting for lock")
		if m.recordWaitAndCheckDeadlock(tx, waiting) {
			m.clearWaitsFor(tx)
			logging.WithTx(tx).WithField("page", pid.String()).Warn("deadlock detected, aborting")
			return dberrors.NewTransactionAborted("deadlock detected")
		}
		runtime.Gosched()
	}
}

// recordWaitAndCheckDeadlock stores tx's current wait-for edges and runs
// DFS from tx over the whole graph, reporting whether tx is on a cycle.
func (m *Manager) recordWaitAndCheckDeadlock(tx transaction.TxID, waiting []transaction.TxID) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	edges := make(map[transaction.TxID]bool, len(waiting))
	for _, other := range waiting {
		if other != tx {
			edges[other] = true
		}
	}
	m.waitsFor[tx] = edges

	visited := make(map[transaction.TxID]bool)
	return m.hasCycleLocked(tx, tx, visited)
}

func (m *Manager) hasCycleLocked(start, node transaction.TxID, visited map[transaction.TxID]bool) bool {
	for next := range m.waitsFor[node] {
		if next == start {
			return true
		}
		if visited[next] {
			continue
		}
		visited[next] = true
		if m.hasCycleLocked(start, next, visited) {
			return true
		}
	}
	return false
}

func (m *Manager) clearWaitsFor(tx transaction.TxID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.waitsFor, tx)
}

// Release drops tx's hold on pid, if any.
func (m *Manager) Release(tx transaction.TxID, pid primitives.PageID) {
	m.mu.Lock()
	pl, ok := m.locks[pid]
	m.mu.Unlock()
	if ok {
		pl.releaseLock(tx)
	}
}

// Holds reports whether tx currently holds a lock (of either mode) on
// pid.
func (m *Manager) Holds(tx transaction.TxID, pid primitives.PageID) bool {
	m.mu.Lock()
	pl, ok := m.locks[pid]
	m.mu.Unlock()
	if !ok {
		return false
	}
	return pl.isHolding(tx)
}
