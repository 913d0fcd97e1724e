package memory

import (
	"testing"

	"heapcore/pkg/primitives"
	"heapcore/pkg/storage/heap"
	"heapcore/pkg/tuple"
	"heapcore/pkg/types"
)

func testPage(t *testing.T, pageNo primitives.PageNumber) *heap.HeapPage {
	t.Helper()
	desc, err := tuple.NewTupleDesc([]types.FieldType{types.IntFieldType}, []string{"id"})
	if err != nil {
		t.Fatalf("NewTupleDesc: %v", err)
	}
	pid := primitives.NewPageID(1, pageNo)
	return heap.NewEmptyHeapPage(pid, desc)
}

func TestLRUPageCacheOrdersLeastRecentlyUsedFirst(t *testing.T) {
	c := NewLRUPageCache(2)

	p0 := testPage(t, 0)
	p1 := testPage(t, 1)
	if err := c.Put(p0.ID(), p0); err != nil {
		t.Fatalf("Put p0: %v", err)
	}
	if err := c.Put(p1.ID(), p1); err != nil {
		t.Fatalf("Put p1: %v", err)
	}

	// Touch p0 so p1 becomes the LRU candidate.
	if _, ok := c.Get(p0.ID()); !ok {
		t.Fatal("expected p0 to be cached")
	}

	lru := c.LeastRecentlyUsed()
	if len(lru) != 2 || !lru[0].Equals(p1.ID()) {
		t.Fatalf("expected p1 to be least recently used, got %v", lru)
	}
}

func TestLRUPageCachePutFailsAtCapacity(t *testing.T) {
	c := NewLRUPageCache(1)
	p0 := testPage(t, 0)
	p1 := testPage(t, 1)

	if err := c.Put(p0.ID(), p0); err != nil {
		t.Fatalf("Put p0: %v", err)
	}
	if err := c.Put(p1.ID(), p1); err == nil {
		t.Fatal("expected Put to fail once the cache is at capacity")
	}
}

func TestLRUPageCacheRemove(t *testing.T) {
	c := NewLRUPageCache(2)
	p0 := testPage(t, 0)
	_ = c.Put(p0.ID(), p0)

	c.Remove(p0.ID())
	if _, ok := c.Get(p0.ID()); ok {
		t.Fatal("expected page to be gone after Remove")
	}
	if c.Size() != 0 {
		t.Fatalf("expected empty cache, size=%d", c.Size())
	}
}
