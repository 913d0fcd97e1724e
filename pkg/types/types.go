// Package types implements the tagged field-value model (§3 Field value):
// IntField and StringField, their binary layout, and the comparison
// operators a predicate can apply to them.
package types

import "fmt"

// Kind distinguishes the two field types a schema can declare.
type Kind int

const (
	KindInt Kind = iota
	KindString
)

func (k Kind) String() string {
	switch k {
	case KindInt:
		return "INT"
	case KindString:
		return "STRING"
	default:
		return "UNKNOWN"
	}
}

// FieldType is a schema column's declared type: INT, or STRING with a
// fixed per-field length (§3 TupleDesc — "STRING(fixedLen)"). Two
// FieldTypes compare equal only if both Kind and StringLen match, which
// is what TupleDescription.Equals uses.
type FieldType struct {
	Kind      Kind
	StringLen int // meaningful only when Kind == KindString
}

// IntFieldType is the FieldType for a 4-byte signed integer column.
var IntFieldType = FieldType{Kind: KindInt}

// NewStringFieldType builds the FieldType for a fixed-length string
// column of n bytes.
func NewStringFieldType(n int) FieldType {
	return FieldType{Kind: KindString, StringLen: n}
}

// Size returns the on-disk size in bytes of one field of this type:
// size(INT) = 4, size(STRING(n)) = 4 + n (a leading length prefix plus n
// bytes of payload), per §3 HeapPage.
func (t FieldType) Size() int {
	switch t.Kind {
	case KindInt:
		return 4
	case KindString:
		return 4 + t.StringLen
	default:
		return 0
	}
}

func (t FieldType) String() string {
	if t.Kind == KindString {
		return fmt.Sprintf("STRING(%d)", t.StringLen)
	}
	return "INT"
}
