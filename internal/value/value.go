// Package value implements the typed answer model: canonical field kinds, a
// tagged-union value shape covering scalar and per-category breakdown answers,
// and the casting layer that converts external input into canonical values.
package value

import (
	"sort"

	"github.com/shopspring/decimal"
)

// Kind is the canonical declared type of a field.
type Kind uint8

const (
	// KindString is free text.
	KindString Kind = iota
	// KindBoolean is a two-valued field whose raw literals come from the schema.
	KindBoolean
	// KindInteger is a whole number.
	KindInteger
	// KindMonetary is an exact decimal amount in the reporting currency.
	KindMonetary
	// KindDecimal is an exact decimal number.
	KindDecimal
	// KindPercentage is an exact decimal ratio, conventionally 0-100.
	KindPercentage
	// KindEnum is one of a declared set of literals.
	KindEnum
	// KindDate is a calendar date literal.
	KindDate
)

// String returns the canonical lowercase name of the kind.
func (k Kind) String() string {
	switch k {
	case KindBoolean:
		return "boolean"
	case KindInteger:
		return "integer"
	case KindMonetary:
		return "monetary"
	case KindDecimal:
		return "decimal"
	case KindPercentage:
		return "percentage"
	case KindEnum:
		return "enum"
	case KindDate:
		return "date"
	default:
		return "string"
	}
}

// Numeric reports whether values of this kind carry a unit and decimals
// attribute in generated output.
func (k Kind) Numeric() bool {
	switch k {
	case KindInteger, KindMonetary, KindDecimal, KindPercentage:
		return true
	default:
		return false
	}
}

// Decimals returns the decimals precision emitted for this kind, or -1 when
// the kind carries no precision attribute.
func (k Kind) Decimals() int {
	switch k {
	case KindInteger:
		return 0
	case KindMonetary, KindDecimal, KindPercentage:
		return 2
	default:
		return -1
	}
}

// Scalar is one typed answer for a single field or category.
type Scalar struct {
	kind Kind
	text string
	num  decimal.Decimal
}

// NewText builds a textual scalar (boolean, enum, string, date literals).
func NewText(kind Kind, text string) Scalar {
	return Scalar{kind: kind, text: text}
}

// NewNumber builds a numeric scalar (integer, monetary, decimal, percentage).
func NewNumber(kind Kind, num decimal.Decimal) Scalar {
	return Scalar{kind: kind, num: num}
}

// Kind returns the scalar's declared kind.
func (s Scalar) Kind() Kind {
	return s.kind
}

// Number returns the numeric value; zero for textual kinds.
func (s Scalar) Number() decimal.Decimal {
	return s.num
}

// Format renders the scalar in its wire form: two exact decimal places for
// monetary/decimal/percentage, plain digits for integers, verbatim text
// otherwise.
func (s Scalar) Format() string {
	switch s.kind {
	case KindInteger:
		return s.num.StringFixed(0)
	case KindMonetary, KindDecimal, KindPercentage:
		return s.num.StringFixed(2)
	default:
		return s.text
	}
}

// Equal reports whether two scalars are the same kind and value. Numeric
// comparison ignores exponent representation (1234.5 equals 1234.50).
func (s Scalar) Equal(o Scalar) bool {
	if s.kind != o.kind {
		return false
	}
	if s.kind.Numeric() {
		return s.num.Equal(o.num)
	}
	return s.text == o.text
}

// Value is an answer: absent, a single scalar, or a per-category breakdown.
// The zero Value is absent.
type Value struct {
	scalar     *Scalar
	categories map[string]Scalar
}

// Absent is the empty answer.
var Absent = Value{}

// FromScalar wraps a scalar into a Value.
func FromScalar(s Scalar) Value {
	return Value{scalar: &s}
}

// FromCategories wraps a category breakdown into a Value. Keys are assumed
// already normalized to upper case.
func FromCategories(m map[string]Scalar) Value {
	return Value{categories: m}
}

// IsAbsent reports whether the value carries no data. An empty breakdown map
// counts as absent.
func (v Value) IsAbsent() bool {
	return v.scalar == nil && len(v.categories) == 0
}

// IsDimensional reports whether the value is a category breakdown.
func (v Value) IsDimensional() bool {
	return v.categories != nil
}

// Scalar returns the scalar answer and whether one is present.
func (v Value) Scalar() (Scalar, bool) {
	if v.scalar == nil {
		return Scalar{}, false
	}
	return *v.scalar, true
}

// Categories returns the breakdown keyed by normalized category code.
func (v Value) Categories() map[string]Scalar {
	if v.categories == nil {
		return nil
	}
	out := make(map[string]Scalar, len(v.categories))
	for k, s := range v.categories {
		out[k] = s
	}
	return out
}

// CategoryCodes returns the breakdown's category codes in sorted order, so
// iteration over a breakdown is deterministic.
func (v Value) CategoryCodes() []string {
	codes := make([]string, 0, len(v.categories))
	for k := range v.categories {
		codes = append(codes, k)
	}
	sort.Strings(codes)
	return codes
}
