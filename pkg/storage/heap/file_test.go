package heap

import (
	"path/filepath"
	"testing"

	"heapcore/pkg/primitives"
)

func openTestFile(t *testing.T) *File {
	t.Helper()
	desc := testDesc(t)
	path := filepath.Join(t.TempDir(), "table.heap")
	f, err := Open(path, desc)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = f.Close() })
	return f
}

func TestFileNumPagesGrowsOnAppend(t *testing.T) {
	f := openTestFile(t)

	n, err := f.NumPages()
	if err != nil {
		t.Fatalf("NumPages: %v", err)
	}
	if n != 0 {
		t.Fatalf("expected a fresh file to have 0 pages, got %d", n)
	}

	if _, err := f.appendBlankPage(); err != nil {
		t.Fatalf("appendBlankPage: %v", err)
	}

	n, err = f.NumPages()
	if err != nil {
		t.Fatalf("NumPages: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 page after append, got %d", n)
	}
}

func TestFileReadPageOutOfRange(t *testing.T) {
	f := openTestFile(t)
	_, err := f.ReadPage(primitives.NewPageID(f.TableID(), 0))
	if err == nil {
		t.Fatal("expected PageOutOfRange reading a page beyond the file's end")
	}
}

func TestFileWriteThenReadRoundTrips(t *testing.T) {
	f := openTestFile(t)
	if _, err := f.appendBlankPage(); err != nil {
		t.Fatalf("appendBlankPage: %v", err)
	}

	pid := primitives.NewPageID(f.TableID(), 0)
	hp := NewEmptyHeapPage(pid, f.TupleDesc())
	if err := hp.InsertTuple(newTestTuple(f.TupleDesc(), 42, "hello")); err != nil {
		t.Fatalf("InsertTuple: %v", err)
	}

	if err := f.WritePage(hp); err != nil {
		t.Fatalf("WritePage: %v", err)
	}

	back, err := f.ReadPage(pid)
	if err != nil {
		t.Fatalf("ReadPage: %v", err)
	}
	got := back.(*HeapPage).IterateTuples()
	if len(got) != 1 {
		t.Fatalf("expected 1 tuple after round trip, got %d", len(got))
	}
}
