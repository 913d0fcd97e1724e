package types

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"hash/fnv"
	"io"
	"strings"

	"heapcore/pkg/primitives"
)

// Field is a single tagged value: an IntField or a StringField. Every
// field implementation can serialize itself, compare itself against a
// field of the same kind under a predicate, and hash itself (used by the
// hash-equijoin operator this core exposes storage to, but does not
// implement).
type Field interface {
	Type() FieldType
	Serialize(w io.Writer) error
	Compare(op primitives.Predicate, other Field) (bool, error)
	Equals(other Field) bool
	Hash() uint32
	String() string
}

// IntField is a 32-bit signed integer value.
type IntField struct {
	Value int32
}

func NewIntField(v int32) *IntField { return &IntField{Value: v} }

func (f *IntField) Type() FieldType { return IntFieldType }

func (f *IntField) Serialize(w io.Writer) error {
	return binary.Write(w, binary.LittleEndian, f.Value)
}

func (f *IntField) Compare(op primitives.Predicate, other Field) (bool, error) {
	o, ok := other.(*IntField)
	if !ok {
		return false, fmt.Errorf("cannot compare IntField with %T", other)
	}
	switch op {
	case primitives.Equals:
		return f.Value == o.Value, nil
	case primitives.NotEquals:
		return f.Value != o.Value, nil
	case primitives.LessThan:
		return f.Value < o.Value, nil
	case primitives.LessThanOrEqual:
		return f.Value <= o.Value, nil
	case primitives.GreaterThan:
		return f.Value > o.Value, nil
	case primitives.GreaterThanOrEqual:
		return f.Value >= o.Value, nil
	default:
		return false, fmt.Errorf("predicate %s not supported on INT fields", op)
	}
}

func (f *IntField) Equals(other Field) bool {
	o, ok := other.(*IntField)
	return ok && f.Value == o.Value
}

func (f *IntField) Hash() uint32 {
	return uint32(f.Value) ^ uint32(uint32(f.Value)>>16) // #nosec G115
}

func (f *IntField) String() string { return fmt.Sprintf("%d", f.Value) }

// StringField is a bounded UTF-8 string value. MaxLen is the field's
// declared fixed length (its schema's StringLen); Value's encoded length
// must not exceed it.
type StringField struct {
	Value  string
	MaxLen int
}

// NewStringField truncates value to maxLen bytes if necessary.
func NewStringField(value string, maxLen int) *StringField {
	if len(value) > maxLen {
		value = value[:maxLen]
	}
	return &StringField{Value: value, MaxLen: maxLen}
}

func (f *StringField) Type() FieldType { return NewStringFieldType(f.MaxLen) }

func (f *StringField) Serialize(w io.Writer) error {
	payload := make([]byte, f.MaxLen)
	copy(payload, f.Value)
	if err := binary.Write(w, binary.LittleEndian, uint32(len(f.Value))); err != nil { // #nosec G115
		return err
	}
	_, err := w.Write(payload)
	return err
}

func (f *StringField) Compare(op primitives.Predicate, other Field) (bool, error) {
	o, ok := other.(*StringField)
	if !ok {
		return false, fmt.Errorf("cannot compare StringField with %T", other)
	}
	cmp := strings.Compare(f.Value, o.Value)
	switch op {
	case primitives.Equals:
		return cmp == 0, nil
	case primitives.NotEquals:
		return cmp != 0, nil
	case primitives.LessThan:
		return cmp < 0, nil
	case primitives.LessThanOrEqual:
		return cmp <= 0, nil
	case primitives.GreaterThan:
		return cmp > 0, nil
	case primitives.GreaterThanOrEqual:
		return cmp >= 0, nil
	case primitives.Like:
		return strings.Contains(f.Value, o.Value), nil
	default:
		return false, fmt.Errorf("unsupported predicate %s", op)
	}
}

func (f *StringField) Equals(other Field) bool {
	o, ok := other.(*StringField)
	return ok && f.Value == o.Value
}

func (f *StringField) Hash() uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(f.Value))
	return h.Sum32()
}

func (f *StringField) String() string { return f.Value }

// DeserializeField reads one field of the given type from r, mirroring
// the layout Serialize writes.
func DeserializeField(r io.Reader, ft FieldType) (Field, error) {
	switch ft.Kind {
	case KindInt:
		var v int32
		if err := binary.Read(r, binary.LittleEndian, &v); err != nil {
			return nil, err
		}
		return NewIntField(v), nil
	case KindString:
		var n uint32
		if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
			return nil, err
		}
		payload := make([]byte, ft.StringLen)
		if _, err := io.ReadFull(r, payload); err != nil {
			return nil, err
		}
		if int(n) > len(payload) {
			n = uint32(len(payload)) // #nosec G115
		}
		value := string(bytes.TrimRight(payload[:n], "\x00"))
		return NewStringField(value, ft.StringLen), nil
	default:
		return nil, fmt.Errorf("unknown field kind %v", ft.Kind)
	}
}
