package tuple

import (
	"fmt"
	"strings"

	"heapcore/pkg/types"
)

// Tuple is a row: a fixed schema, a slice of field values, and an
// optional RecordID recording where it lives once inserted (§3 Tuple).
// Fields are mutable; the schema is not.
type Tuple struct {
	Desc     *TupleDescription
	fields   []types.Field
	RecordID *RecordID
}

func NewTuple(desc *TupleDescription) *Tuple {
	return &Tuple{Desc: desc, fields: make([]types.Field, desc.NumFields())}
}

func (t *Tuple) SetField(i int, f types.Field) error {
	if i < 0 || i >= len(t.fields) {
		return fmt.Errorf("field index %d out of bounds [0, %d)", i, len(t.fields))
	}
	want, _ := t.Desc.TypeAt(i)
	if f.Type() != want {
		return fmt.Errorf("field %d type mismatch: expected %s, got %s", i, want, f.Type())
	}
	t.fields[i] = f
	return nil
}

func (t *Tuple) GetField(i int) (types.Field, error) {
	if i < 0 || i >= len(t.fields) {
		return nil, fmt.Errorf("field index %d out of bounds [0, %d)", i, len(t.fields))
	}
	return t.fields[i], nil
}

func (t *Tuple) String() string {
	parts := make([]string, len(t.fields))
	for i, f := range t.fields {
		if f == nil {
			parts[i] = "null"
			continue
		}
		parts[i] = f.String()
	}
	return strings.Join(parts, "\t")
}

// Clone deep-copies the tuple's field slice; field values themselves are
// treated as immutable and shared.
func (t *Tuple) Clone() *Tuple {
	clone := NewTuple(t.Desc)
	copy(clone.fields, t.fields)
	if t.RecordID != nil {
		rid := *t.RecordID
		clone.RecordID = &rid
	}
	return clone
}

// Combine concatenates two tuples' fields under their merged schema,
// matching TupleDescription.Merge's field order.
func Combine(a, b *Tuple) (*Tuple, error) {
	if a == nil || b == nil {
		return nil, fmt.Errorf("cannot combine nil tuples")
	}
	merged := NewTuple(Merge(a.Desc, b.Desc))
	for i := 0; i < a.Desc.NumFields(); i++ {
		f, err := a.GetField(i)
		if err != nil {
			return nil, err
		}
		if f != nil {
			if err := merged.SetField(i, f); err != nil {
				return nil, err
			}
		}
	}
	offset := a.Desc.NumFields()
	for i := 0; i < b.Desc.NumFields(); i++ {
		f, err := b.GetField(i)
		if err != nil {
			return nil, err
		}
		if f != nil {
			if err := merged.SetField(offset+i, f); err != nil {
				return nil, err
			}
		}
	}
	return merged, nil
}
