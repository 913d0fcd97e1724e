// Package catalog implements the process-wide table registry: tableId →
// (name, primaryKey, HeapFile, TupleDesc). Per the design note on
// process-wide singletons, Catalog is not accessed through a global; it
// is constructed once and passed explicitly into the components that
// need it (§6 Catalog/Database singleton, §9).
package catalog

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/pkg/errors"

	"heapcore/pkg/primitives"
	"heapcore/pkg/storage/heap"
	"heapcore/pkg/storage/page"
	"heapcore/pkg/tuple"
	"heapcore/pkg/types"
)

// TableEntry is everything the catalog knows about one table.
type TableEntry struct {
	Name       string
	PrimaryKey string
	File       *heap.File
	Desc       *tuple.TupleDescription
}

// Catalog maps tableId to its TableEntry. It is safe to share across
// goroutines: after LoadCatalogFile returns, it is read-only.
type Catalog struct {
	byID   map[primitives.TableID]*TableEntry
	byName map[string]*TableEntry
}

func New() *Catalog {
	return &Catalog{
		byID:   make(map[primitives.TableID]*TableEntry),
		byName: make(map[string]*TableEntry),
	}
}

// FileForTable implements memory.FileTable.
func (c *Catalog) FileForTable(tableID primitives.TableID) (page.DbFile, error) {
	e, ok := c.byID[tableID]
	if !ok {
		return nil, errors.Errorf("no table registered with id %s", tableID)
	}
	return e.File, nil
}

// EntryForName returns the table registered under name.
func (c *Catalog) EntryForName(name string) (*TableEntry, error) {
	e, ok := c.byName[name]
	if !ok {
		return nil, errors.Errorf("no table named %q", name)
	}
	return e, nil
}

// EntryForID returns the table registered under tableID.
func (c *Catalog) EntryForID(tableID primitives.TableID) (*TableEntry, error) {
	e, ok := c.byID[tableID]
	if !ok {
		return nil, errors.Errorf("no table registered with id %s", tableID)
	}
	return e, nil
}

func (c *Catalog) register(name string, e *TableEntry) {
	c.byID[e.File.TableID()] = e
	c.byName[name] = e
}

// lineRE parses a catalog file line of the form:
//
//	filename (colName colType, colName colType, ...)
//
// colType is "int" or "string(N)"; a column may be suffixed with
// "pk" to mark it the primary key.
var lineRE = regexp.MustCompile(`^\s*([^\s(]+)\s*\((.+)\)\s*$`)
var colRE = regexp.MustCompile(`^\s*(\w+)\s+(\w+)(\((\d+)\))?\s*(pk)?\s*$`)

// LoadCatalogFile parses a catalog description file and opens every
// table's heap file relative to baseDir (§6 Catalog/Database singleton).
func LoadCatalogFile(path, baseDir string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "opening catalog file")
	}
	defer f.Close()

	cat := New()
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if err := cat.loadLine(line, baseDir); err != nil {
			return nil, errors.Wrap(err, "catalog file")
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "reading catalog file")
	}
	return cat, nil
}

func (c *Catalog) loadLine(line, baseDir string) error {
	m := lineRE.FindStringSubmatch(line)
	if m == nil {
		return errors.Errorf("malformed line %q", line)
	}
	filename := m[1]
	columns := strings.Split(m[2], ",")

	var fieldTypes []types.FieldType
	var fieldNames []string
	primaryKey := ""

	for _, col := range columns {
		cm := colRE.FindStringSubmatch(col)
		if cm == nil {
			return errors.Errorf("malformed column %q", col)
		}
		name, kind := cm[1], strings.ToLower(cm[2])
		fieldNames = append(fieldNames, name)

		switch kind {
		case "int":
			fieldTypes = append(fieldTypes, types.IntFieldType)
		case "string":
			n := 128
			if cm[4] != "" {
				fmt.Sscanf(cm[4], "%d", &n)
			}
			fieldTypes = append(fieldTypes, types.NewStringFieldType(n))
		default:
			return errors.Errorf("unknown column type %q", kind)
		}
		if cm[5] == "pk" {
			primaryKey = name
		}
	}

	desc, err := tuple.NewTupleDesc(fieldTypes, fieldNames)
	if err != nil {
		return err
	}

	hf, err := heap.Open(filepath.Join(baseDir, filename), desc)
	if err != nil {
		return errors.Wrapf(err, "opening heap file for %s", filename)
	}

	tableName := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	c.register(tableName, &TableEntry{
		Name:       tableName,
		PrimaryKey: primaryKey,
		File:       hf,
		Desc:       desc,
	})
	return nil
}
