package taxform

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"

	"github.com/regkit/taxform/internal/value"
)

// Kind is the canonical declared type of a field.
type Kind = value.Kind

// Canonical field kinds.
const (
	KindString     = value.KindString
	KindBoolean    = value.KindBoolean
	KindInteger    = value.KindInteger
	KindMonetary   = value.KindMonetary
	KindDecimal    = value.KindDecimal
	KindPercentage = value.KindPercentage
	KindEnum       = value.KindEnum
	KindDate       = value.KindDate
)

// Value is a typed answer: absent, scalar, or a per-category breakdown.
type Value = value.Value

// Field is one taxonomy-declared field. Fields are built once by the loader
// and immutable afterwards.
type Field struct {
	id          string
	wireID      string
	kind        Kind
	wireType    string
	labels      LocalizedText
	extended    LocalizedText
	validValues []string
	min         *decimal.Decimal
	max         *decimal.Decimal
	dimensional bool
	gate        bool
	deps        map[string]string
}

// ID returns the canonical lowercase field id used for all lookups.
func (f *Field) ID() string {
	return f.id
}

// WireID returns the field id exactly as it appears in generated output.
func (f *Field) WireID() string {
	return f.wireID
}

// Kind returns the canonical declared type.
func (f *Field) Kind() Kind {
	return f.kind
}

// WireType returns the schema's type reference, carried through unchanged.
func (f *Field) WireType() string {
	return f.wireType
}

// Label resolves the human label for the requested locale, falling back to
// the canonical id when the taxonomy carries no label for this field.
func (f *Field) Label(requested, fallback language.Tag) string {
	if s := f.labels.Resolve(requested, fallback); s != "" {
		return s
	}
	return f.id
}

// ExtendedLabel resolves the extended help text, empty when absent.
func (f *Field) ExtendedLabel(requested, fallback language.Tag) string {
	return f.extended.Resolve(requested, fallback)
}

// ValidValues returns the declared enumeration literals, verbatim.
func (f *Field) ValidValues() []string {
	out := make([]string, len(f.validValues))
	copy(out, f.validValues)
	return out
}

// Range returns the declared inclusive bounds, when the schema declares any.
func (f *Field) Range() (min, max decimal.Decimal, ok bool) {
	if f.min == nil || f.max == nil {
		return decimal.Decimal{}, decimal.Decimal{}, false
	}
	return *f.min, *f.max, true
}

// Dimensional reports whether answers are per-category breakdowns.
func (f *Field) Dimensional() bool {
	return f.dimensional
}

// Gate reports whether this field controls the visibility of other fields.
func (f *Field) Gate() bool {
	return f.gate
}

// Dependencies returns the gate predicates that must all hold for this field
// to be visible: canonical gate field id to required literal.
func (f *Field) Dependencies() map[string]string {
	out := make(map[string]string, len(f.deps))
	for k, v := range f.deps {
		out[k] = v
	}
	return out
}

// Visible reports whether the field is currently visible and required, given
// answers keyed by canonical field id. A field with no dependencies is always
// visible. A missing or absent gate answer never satisfies a predicate, even
// against an empty-string literal.
func (f *Field) Visible(answers map[string]Value) bool {
	for gateID, literal := range f.deps {
		answer, ok := answers[gateID]
		if !ok || answer.IsAbsent() {
			return false
		}
		scalar, ok := answer.Scalar()
		if !ok || scalar.Format() != literal {
			return false
		}
	}
	return true
}
