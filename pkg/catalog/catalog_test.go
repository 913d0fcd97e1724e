package catalog

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadCatalogFileParsesColumnsAndOpensFiles(t *testing.T) {
	dir := t.TempDir()
	catalogPath := filepath.Join(dir, "catalog.txt")
	contents := "# a comment\nstudents.dat (id int pk, name string(32), gpa int)\n"
	if err := os.WriteFile(catalogPath, []byte(contents), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cat, err := LoadCatalogFile(catalogPath, dir)
	if err != nil {
		t.Fatalf("LoadCatalogFile: %v", err)
	}

	entry, err := cat.EntryForName("students")
	if err != nil {
		t.Fatalf("EntryForName: %v", err)
	}
	if entry.PrimaryKey != "id" {
		t.Fatalf("expected primary key %q, got %q", "id", entry.PrimaryKey)
	}
	if entry.Desc.NumFields() != 3 {
		t.Fatalf("expected 3 fields, got %d", entry.Desc.NumFields())
	}

	byID, err := cat.EntryForID(entry.File.TableID())
	if err != nil {
		t.Fatalf("EntryForID: %v", err)
	}
	if byID != entry {
		t.Fatal("EntryForID and EntryForName must return the same TableEntry")
	}
}

func TestLoadCatalogFileRejectsMalformedLine(t *testing.T) {
	dir := t.TempDir()
	catalogPath := filepath.Join(dir, "catalog.txt")
	if err := os.WriteFile(catalogPath, []byte("this is not valid\n"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	if _, err := LoadCatalogFile(catalogPath, dir); err == nil {
		t.Fatal("expected a malformed catalog line to error")
	}
}

func TestUnknownTableLookupsFail(t *testing.T) {
	c := New()
	if _, err := c.EntryForName("ghost"); err == nil {
		t.Fatal("expected lookup of an unregistered table to fail")
	}
	if _, err := c.FileForTable(12345); err == nil {
		t.Fatal("expected FileForTable for an unregistered id to fail")
	}
}
