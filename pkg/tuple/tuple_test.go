package tuple

import (
	"testing"

	"heapcore/pkg/types"
)

func newDesc(t *testing.T) *TupleDescription {
	t.Helper()
	desc, err := NewTupleDesc(
		[]types.FieldType{types.IntFieldType, types.NewStringFieldType(8)},
		[]string{"id", "name"},
	)
	if err != nil {
		t.Fatalf("NewTupleDesc: %v", err)
	}
	return desc
}

func TestTupleSetGetField(t *testing.T) {
	desc := newDesc(t)
	tup := NewTuple(desc)

	if err := tup.SetField(0, types.NewIntField(5)); err != nil {
		t.Fatalf("SetField(0): %v", err)
	}
	got, err := tup.GetField(0)
	if err != nil {
		t.Fatalf("GetField(0): %v", err)
	}
	if got.(*types.IntField).Value != 5 {
		t.Fatalf("expected 5, got %v", got)
	}
}

func TestTupleSetFieldRejectsTypeMismatch(t *testing.T) {
	desc := newDesc(t)
	tup := NewTuple(desc)
	if err := tup.SetField(0, types.NewStringField("oops", 8)); err == nil {
		t.Fatal("expected a type mismatch error setting a string into an int field")
	}
}

func TestTupleCloneIsIndependent(t *testing.T) {
	desc := newDesc(t)
	tup := NewTuple(desc)
	_ = tup.SetField(0, types.NewIntField(1))

	clone := tup.Clone()
	_ = clone.SetField(0, types.NewIntField(2))

	got, _ := tup.GetField(0)
	if got.(*types.IntField).Value != 1 {
		t.Fatal("mutating the clone must not affect the original tuple")
	}
}

func TestCombineConcatenatesFields(t *testing.T) {
	desc := newDesc(t)
	a := NewTuple(desc)
	_ = a.SetField(0, types.NewIntField(1))
	_ = a.SetField(1, types.NewStringField("a", 8))

	b := NewTuple(desc)
	_ = b.SetField(0, types.NewIntField(2))
	_ = b.SetField(1, types.NewStringField("b", 8))

	merged, err := Combine(a, b)
	if err != nil {
		t.Fatalf("Combine: %v", err)
	}
	if merged.Desc.NumFields() != 4 {
		t.Fatalf("expected 4 merged fields, got %d", merged.Desc.NumFields())
	}
	f2, _ := merged.GetField(2)
	if f2.(*types.IntField).Value != 2 {
		t.Fatalf("expected b's fields to start at offset 2, got %v", f2)
	}
}
