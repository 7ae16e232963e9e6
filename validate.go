package taxform

import (
	"fmt"
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/regkit/taxform/internal/value"
)

// Severity grades a validation finding.
type Severity string

// Finding severities.
const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Check kinds reported by the validator.
const (
	CheckPresence = "presence"
	CheckEnum     = "enum"
	CheckRange    = "range"
)

// ValidationError is one validation finding. Findings are data, never Go
// errors: absent answers are an expected business state.
type ValidationError struct {
	Field    string
	Check    string
	Message  string
	Severity Severity
	Context  map[string]any
}

// ValidationResult is the frozen outcome of validating a submission.
type ValidationResult struct {
	errors   []ValidationError
	warnings []ValidationError
}

// Errors returns error-severity findings.
func (r *ValidationResult) Errors() []ValidationError {
	return slices.Clone(r.errors)
}

// Warnings returns warning-severity findings.
func (r *ValidationResult) Warnings() []ValidationError {
	return slices.Clone(r.warnings)
}

// Valid reports whether there are no error-severity findings.
func (r *ValidationResult) Valid() bool {
	return len(r.errors) == 0
}

// Complete reports whether there are no presence findings: every visible
// field carries an answer.
func (r *ValidationResult) Complete() bool {
	for _, e := range r.errors {
		if e.Check == CheckPresence {
			return false
		}
	}
	return true
}

// Validate runs presence, enum, and range checks over every currently-visible
// field of the submission. The three checks run unconditionally and
// independently; one field can accumulate several findings. The submission is
// never mutated.
func Validate(s *Submission) (*ValidationResult, error) {
	q, err := s.Questionnaire()
	if err != nil {
		return nil, err
	}

	answers := canonicalAnswers(s.answers)
	result := &ValidationResult{}
	for _, f := range q.Fields() {
		if !f.Visible(answers) {
			continue
		}
		v := answers[f.id]
		result.add(checkPresence(f, v))
		result.add(checkEnum(f, v))
		result.add(checkRange(f, v))
	}
	return result, nil
}

func (r *ValidationResult) add(findings []ValidationError) {
	for _, f := range findings {
		if f.Severity == SeverityWarning {
			r.warnings = append(r.warnings, f)
		} else {
			r.errors = append(r.errors, f)
		}
	}
}

func checkPresence(f *Field, v Value) []ValidationError {
	if !v.IsAbsent() {
		return nil
	}
	return []ValidationError{{
		Field:    f.id,
		Check:    CheckPresence,
		Message:  fmt.Sprintf("field %q requires an answer", f.wireID),
		Severity: SeverityError,
	}}
}

func checkEnum(f *Field, v Value) []ValidationError {
	if len(f.validValues) == 0 {
		return nil
	}
	var findings []ValidationError
	for _, scalar := range presentScalars(v) {
		if slices.Contains(f.validValues, scalar.Format()) {
			continue
		}
		findings = append(findings, ValidationError{
			Field:    f.id,
			Check:    CheckEnum,
			Message:  fmt.Sprintf("value %q is not an accepted value for %q", scalar.Format(), f.wireID),
			Severity: SeverityError,
			Context: map[string]any{
				"value":    scalar.Format(),
				"accepted": f.ValidValues(),
			},
		})
	}
	return findings
}

// checkRange validates numeric answers against the declared [min,max], or a
// [0,100] heuristic applied only to fields whose id or label suggests a
// percentage. Explicit bounds always win; heuristic findings are warnings.
func checkRange(f *Field, v Value) []ValidationError {
	min, max, explicit := f.Range()
	severity := SeverityError
	if !explicit {
		if !suggestsPercentage(f) {
			return nil
		}
		min, max = decimal.Zero, decimal.NewFromInt(100)
		severity = SeverityWarning
	}

	var findings []ValidationError
	for _, scalar := range presentScalars(v) {
		if !scalar.Kind().Numeric() {
			continue
		}
		n := scalar.Number()
		if n.GreaterThanOrEqual(min) && n.LessThanOrEqual(max) {
			continue
		}
		findings = append(findings, ValidationError{
			Field:    f.id,
			Check:    CheckRange,
			Message:  fmt.Sprintf("value %s for %q is outside [%s, %s]", scalar.Format(), f.wireID, min, max),
			Severity: severity,
			Context: map[string]any{
				"value": scalar.Format(),
				"min":   min.String(),
				"max":   max.String(),
			},
		})
	}
	return findings
}

func presentScalars(v Value) []value.Scalar {
	if v.IsAbsent() {
		return nil
	}
	if v.IsDimensional() {
		cats := v.Categories()
		out := make([]value.Scalar, 0, len(cats))
		for _, code := range v.CategoryCodes() {
			out = append(out, cats[code])
		}
		return out
	}
	scalar, _ := v.Scalar()
	return []value.Scalar{scalar}
}

// suggestsPercentage reports whether the field reads like a percentage, in
// either observed language.
func suggestsPercentage(f *Field) bool {
	if f.kind == KindPercentage {
		return true
	}
	probe := strings.ToLower(f.id)
	for _, label := range f.labels {
		probe += " " + strings.ToLower(label)
	}
	return strings.Contains(probe, "percent") ||
		strings.Contains(probe, "pourcentage") ||
		strings.Contains(probe, "pct") ||
		strings.Contains(probe, "%")
}
