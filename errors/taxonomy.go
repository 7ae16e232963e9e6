package errors

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorCode classifies taxonomy loading, submission, and generation failures.
type ErrorCode string

const (
	// ErrMissingFile indicates a required taxonomy file is absent.
	ErrMissingFile ErrorCode = "taxonomy-missing-file"
	// ErrMalformedFile indicates a taxonomy file could not be parsed.
	ErrMalformedFile ErrorCode = "taxonomy-malformed-file"
	// ErrTooManyFields indicates the schema declares more fields than allowed.
	ErrTooManyFields ErrorCode = "taxonomy-too-many-fields"
	// ErrUnknownFieldRef indicates the structure references a field the schema does not declare.
	ErrUnknownFieldRef ErrorCode = "taxonomy-unknown-field"
	// ErrDuplicateFieldRef indicates the structure references the same field twice.
	ErrDuplicateFieldRef ErrorCode = "taxonomy-duplicate-field"
	// ErrDuplicateFieldID indicates two schema fields share a canonical id.
	ErrDuplicateFieldID ErrorCode = "taxonomy-duplicate-field-id"

	// ErrUnknownField indicates a submission read or write named an undeclared field.
	ErrUnknownField ErrorCode = "submission-unknown-field"
	// ErrDimensionalValue indicates a non-map value was supplied for a dimensional field.
	ErrDimensionalValue ErrorCode = "submission-dimensional-value"
	// ErrCategoryCollision indicates two category keys normalize to the same code.
	ErrCategoryCollision ErrorCode = "cast-category-collision"

	// ErrGenerateSubmission indicates generation was attempted without a submission.
	ErrGenerateSubmission ErrorCode = "generate-no-submission"
	// ErrGeneratePeriod indicates the submission period is not a calendar date.
	ErrGeneratePeriod ErrorCode = "generate-bad-period"
	// ErrGenerateQuestionnaire indicates the questionnaire could not be resolved.
	ErrGenerateQuestionnaire ErrorCode = "generate-no-questionnaire"
	// ErrGenerateDimensional indicates a dimensional field carried an unusable value.
	ErrGenerateDimensional ErrorCode = "generate-bad-dimensional"

	// ErrUnknownIndustry indicates the registry does not know the industry.
	ErrUnknownIndustry ErrorCode = "registry-unknown-industry"
	// ErrUnknownYear indicates the registry does not know the year for an industry.
	ErrUnknownYear ErrorCode = "registry-unknown-year"
)

// Taxonomy describes a structured failure with a code and optional file or
// structure location context.
//
//nolint:errname // public API name uses the domain term.
type Taxonomy struct {
	Code     string
	Message  string
	Path     string
	Location string
	Err      error
}

// Error formats the failure for display, including code and location context.
func (t *Taxonomy) Error() string {
	if t == nil {
		return "taxonomy <nil>"
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("[%s] %s", t.Code, t.Message))
	if t.Path != "" {
		b.WriteString(fmt.Sprintf(" in %s", t.Path))
	}
	if t.Location != "" {
		b.WriteString(fmt.Sprintf(" at %s", t.Location))
	}
	if t.Err != nil {
		b.WriteString(fmt.Sprintf(": %v", t.Err))
	}
	return b.String()
}

// Unwrap exposes the nested cause for errors.Is/As chains.
func (t *Taxonomy) Unwrap() error {
	if t == nil {
		return nil
	}
	return t.Err
}

// New builds a Taxonomy error with a code, message, and optional file path.
func New(code ErrorCode, msg, path string) *Taxonomy {
	return &Taxonomy{Code: string(code), Message: msg, Path: path}
}

// Newf formats a message and builds a Taxonomy error.
func Newf(code ErrorCode, path, format string, args ...any) *Taxonomy {
	return New(code, fmt.Sprintf(format, args...), path)
}

// Wrap builds a Taxonomy error around a nested cause.
func Wrap(code ErrorCode, msg, path string, err error) *Taxonomy {
	return &Taxonomy{Code: string(code), Message: msg, Path: path, Err: err}
}

// AsTaxonomy extracts a Taxonomy error from an error chain.
func AsTaxonomy(err error) (*Taxonomy, bool) {
	if err == nil {
		return nil, false
	}
	var t *Taxonomy
	if errors.As(err, &t) && t != nil {
		return t, true
	}
	return nil, false
}

// HasCode reports whether err carries the given taxonomy error code.
func HasCode(err error, code ErrorCode) bool {
	t, ok := AsTaxonomy(err)
	return ok && t.Code == string(code)
}
