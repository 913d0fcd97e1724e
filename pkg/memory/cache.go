// Package memory implements the buffer pool: the fixed-capacity page
// cache, LRU eviction, lock-mediated page access, and commit/abort
// (§4.4 BufferPool).
package memory

import (
	"fmt"
	"sync"

	"heapcore/pkg/primitives"
	"heapcore/pkg/storage/page"
)

// PageCache stores and retrieves resident pages. It knows nothing about
// transactions, locks, or durability — only occupancy and recency.
type PageCache interface {
	Get(pid primitives.PageID) (page.Page, bool)
	Put(pid primitives.PageID, p page.Page) error
	Remove(pid primitives.PageID)
	Size() int
	// LeastRecentlyUsed returns cached PageIds oldest-first.
	LeastRecentlyUsed() []primitives.PageID
}

type node struct {
	pid  primitives.PageID
	page page.Page
	prev *node
	next *node
}

// LRUPageCache is a fixed-capacity cache with O(1) get/put/remove via a
// map plus a doubly linked list (MRU at the head, LRU at the tail).
// Admission past capacity is the caller's problem — Put never evicts; it
// fails so the buffer pool can run its own NO-STEAL eviction policy.
type LRUPageCache struct {
	maxSize int
	cache   map[primitives.PageID]*node
	head    *node
	tail    *node
	mu      sync.RWMutex
}

func NewLRUPageCache(maxSize int) *LRUPageCache {
	head := &node{}
	tail := &node{}
	head.next = tail
	tail.prev = head

	return &LRUPageCache{
		maxSize: maxSize,
		cache:   make(map[primitives.PageID]*node),
		head:    head,
		tail:    tail,
	}
}

func (c *LRUPageCache) addToFront(n *node) {
	n.prev = c.head
	n.next = c.head.next
	c.head.next.prev = n
	c.head.next = n
}

func (c *LRUPageCache) removeNode(n *node) {
	n.prev.next = n.next
	n.next.prev = n.prev
}

func (c *LRUPageCache) moveToFront(n *node) {
	c.removeNode(n)
	c.addToFront(n)
}

func (c *LRUPageCache) Get(pid primitives.PageID) (page.Page, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if n, exists := c.cache[pid]; exists {
		c.moveToFront(n)
		return n.page, true
	}
	return nil, false
}

func (c *LRUPageCache) Put(pid primitives.PageID, p page.Page) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if n, exists := c.cache[pid]; exists {
		n.page = p
		c.moveToFront(n)
		return nil
	}

	if len(c.cache) >= c.maxSize {
		return fmt.Errorf("page cache is at capacity (%d)", c.maxSize)
	}

	n := &node{pid: pid, page: p}
	c.cache[pid] = n
	c.addToFront(n)
	return nil
}

func (c *LRUPageCache) Remove(pid primitives.PageID) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if n, exists := c.cache[pid]; exists {
		delete(c.cache, pid)
		c.removeNode(n)
	}
}

func (c *LRUPageCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.cache)
}

// LeastRecentlyUsed returns cached PageIds ordered from least to most
// recently used.
func (c *LRUPageCache) LeastRecentlyUsed() []primitives.PageID {
	c.mu.RLock()
	defer c.mu.RUnlock()

	pids := make([]primitives.PageID, 0, len(c.cache))
	for n := c.tail.prev; n != c.head; n = n.prev {
		pids = append(pids, n.pid)
	}
	return pids
}
