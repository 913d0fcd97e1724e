// Package tuple implements the schema and row model storage operates on:
// TupleDescription (§3 TupleDesc), Tuple, and RecordID.
package tuple

import (
	"fmt"
	"strings"

	"heapcore/pkg/types"
)

// TupleDescription is an ordered sequence of (type, optional name) pairs.
// Two descriptions are Equals only if their types line up; names are not
// compared (§3).
type TupleDescription struct {
	fieldTypes []types.FieldType
	fieldNames []string // may be nil; entries may be ""
}

// NewTupleDesc builds a TupleDescription. fieldNames may be nil (no
// names) or must be the same length as fieldTypes.
func NewTupleDesc(fieldTypes []types.FieldType, fieldNames []string) (*TupleDescription, error) {
	if len(fieldTypes) == 0 {
		return nil, fmt.Errorf("tuple description must have at least one field")
	}
	if fieldNames != nil && len(fieldNames) != len(fieldTypes) {
		return nil, fmt.Errorf("field names length (%d) must match field types length (%d)",
			len(fieldNames), len(fieldTypes))
	}

	ft := make([]types.FieldType, len(fieldTypes))
	copy(ft, fieldTypes)

	var fn []string
	if fieldNames != nil {
		fn = make([]string, len(fieldNames))
		copy(fn, fieldNames)
	}

	return &TupleDescription{fieldTypes: ft, fieldNames: fn}, nil
}

func (td *TupleDescription) NumFields() int { return len(td.fieldTypes) }

func (td *TupleDescription) TypeAt(i int) (types.FieldType, error) {
	if i < 0 || i >= len(td.fieldTypes) {
		return types.FieldType{}, fmt.Errorf("field index %d out of bounds [0, %d)", i, len(td.fieldTypes))
	}
	return td.fieldTypes[i], nil
}

func (td *TupleDescription) NameAt(i int) (string, error) {
	if i < 0 || i >= len(td.fieldTypes) {
		return "", fmt.Errorf("field index %d out of bounds [0, %d)", i, len(td.fieldTypes))
	}
	if td.fieldNames == nil {
		return "", nil
	}
	return td.fieldNames[i], nil
}

// FindFieldIndex does a case-sensitive linear search by name.
func (td *TupleDescription) FindFieldIndex(name string) (int, error) {
	if td.fieldNames == nil {
		return -1, fmt.Errorf("field %q not found", name)
	}
	for i, n := range td.fieldNames {
		if n == name {
			return i, nil
		}
	}
	return -1, fmt.Errorf("field %q not found", name)
}

// TupleSize is the sum of all field sizes: Σ size(type_i) (§3 HeapPage).
func (td *TupleDescription) TupleSize() int {
	size := 0
	for _, ft := range td.fieldTypes {
		size += ft.Size()
	}
	return size
}

// Equals compares types only, per §3.
func (td *TupleDescription) Equals(other *TupleDescription) bool {
	if other == nil || len(td.fieldTypes) != len(other.fieldTypes) {
		return false
	}
	for i, ft := range td.fieldTypes {
		if ft != other.fieldTypes[i] {
			return false
		}
	}
	return true
}

func (td *TupleDescription) String() string {
	parts := make([]string, len(td.fieldTypes))
	for i, ft := range td.fieldTypes {
		name := "null"
		if td.fieldNames != nil && td.fieldNames[i] != "" {
			name = td.fieldNames[i]
		}
		parts[i] = fmt.Sprintf("%s(%s)", ft, name)
	}
	return strings.Join(parts, ",")
}

// Merge concatenates a and b's fields, in order (§3 TupleDesc.merge).
func Merge(a, b *TupleDescription) *TupleDescription {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}

	ft := append(append([]types.FieldType{}, a.fieldTypes...), b.fieldTypes...)

	var fn []string
	if a.fieldNames != nil || b.fieldNames != nil {
		fn = make([]string, 0, len(ft))
		fn = append(fn, namesOrBlank(a)...)
		fn = append(fn, namesOrBlank(b)...)
	}

	merged, _ := NewTupleDesc(ft, fn)
	return merged
}

func namesOrBlank(td *TupleDescription) []string {
	if td.fieldNames != nil {
		return td.fieldNames
	}
	return make([]string, len(td.fieldTypes))
}
