package taxform

import (
	"time"

	"github.com/google/uuid"

	taxerrors "github.com/regkit/taxform/errors"
	"github.com/regkit/taxform/internal/value"
)

// Resolver resolves the questionnaire for an industry and year. The registry
// package provides the standard caching implementation.
type Resolver interface {
	Resolve(industry string, year int) (*Questionnaire, error)
}

// ResolverFunc adapts a function to the Resolver interface.
type ResolverFunc func(industry string, year int) (*Questionnaire, error)

// Resolve calls f.
func (f ResolverFunc) Resolve(industry string, year int) (*Questionnaire, error) {
	return f(industry, year)
}

// Submission collects answers against one questionnaire. Writes cast values
// through the field's declared kind; only declared fields may be written or
// read. A Submission is not safe for concurrent mutation.
type Submission struct {
	id            uuid.UUID
	entity        string
	period        time.Time
	industry      string
	year          int
	resolver      Resolver
	questionnaire *Questionnaire
	answers       map[string]Value
}

// NewSubmission creates an empty submission for the given entity and
// reporting period. The questionnaire is resolved lazily on first use and
// cached for the submission's lifetime.
func NewSubmission(entity string, period time.Time, industry string, year int, resolver Resolver) *Submission {
	return &Submission{
		id:       uuid.New(),
		entity:   entity,
		period:   period,
		industry: industry,
		year:     year,
		resolver: resolver,
		answers:  make(map[string]Value),
	}
}

// ID returns the submission's correlation id.
func (s *Submission) ID() uuid.UUID { return s.id }

// Entity returns the reporting entity identifier.
func (s *Submission) Entity() string { return s.entity }

// Period returns the reporting period date.
func (s *Submission) Period() time.Time { return s.period }

// Industry returns the industry key used to resolve the questionnaire.
func (s *Submission) Industry() string { return s.industry }

// Year returns the taxonomy year.
func (s *Submission) Year() int { return s.year }

// Questionnaire resolves and caches the questionnaire for this submission.
func (s *Submission) Questionnaire() (*Questionnaire, error) {
	if s.questionnaire != nil {
		return s.questionnaire, nil
	}
	if s.resolver == nil {
		return nil, taxerrors.Newf(taxerrors.ErrGenerateQuestionnaire, "",
			"submission %s has no questionnaire resolver", s.id)
	}
	q, err := s.resolver.Resolve(s.industry, s.year)
	if err != nil {
		return nil, err
	}
	s.questionnaire = q
	return q, nil
}

// Set writes an answer. The raw value is cast through the field's declared
// kind; nil or empty input clears the answer. Dimensional fields accept a
// category map; any other non-nil value for them is a contract violation.
// Writing an unknown field id fails without touching submission state.
func (s *Submission) Set(fieldID string, raw any) error {
	q, err := s.Questionnaire()
	if err != nil {
		return err
	}
	field, ok := q.Field(fieldID)
	if !ok {
		return taxerrors.Newf(taxerrors.ErrUnknownField, "", "unknown field %q", fieldID)
	}

	if raw == nil {
		delete(s.answers, field.wireID)
		return nil
	}

	if field.dimensional {
		m, ok := normalizeCategoryMap(raw)
		if !ok {
			return taxerrors.Newf(taxerrors.ErrDimensionalValue, "",
				"field %q is dimensional and requires a category map, got %T", field.wireID, raw)
		}
		v, err := value.CastBreakdown(field.kind, m)
		if err != nil {
			return err
		}
		s.answers[field.wireID] = v
		return nil
	}

	v := value.Cast(field.kind, raw)
	if v.IsAbsent() {
		delete(s.answers, field.wireID)
		return nil
	}
	s.answers[field.wireID] = v
	return nil
}

// Get reads an answer by field id, case-insensitively. Absent answers return
// the zero Value.
func (s *Submission) Get(fieldID string) (Value, error) {
	q, err := s.Questionnaire()
	if err != nil {
		return value.Absent, err
	}
	field, ok := q.Field(fieldID)
	if !ok {
		return value.Absent, taxerrors.Newf(taxerrors.ErrUnknownField, "", "unknown field %q", fieldID)
	}
	return s.answers[field.wireID], nil
}

// Answers returns a copy of the answer map keyed by wire field id.
func (s *Submission) Answers() map[string]Value {
	out := make(map[string]Value, len(s.answers))
	for k, v := range s.answers {
		out[k] = v
	}
	return out
}

// Progress reports how many currently-visible fields carry an answer, out of
// all currently-visible fields. Empty dimensional breakdowns count as
// unanswered.
func (s *Submission) Progress() (answered, visible int, err error) {
	q, err := s.Questionnaire()
	if err != nil {
		return 0, 0, err
	}
	canonical := canonicalAnswers(s.answers)
	for _, f := range q.Fields() {
		if !f.Visible(canonical) {
			continue
		}
		visible++
		if v, ok := canonical[f.id]; ok && !v.IsAbsent() {
			answered++
		}
	}
	return answered, visible, nil
}

// normalizeCategoryMap converts supported raw map shapes into map[string]any.
func normalizeCategoryMap(raw any) (map[string]any, bool) {
	switch m := raw.(type) {
	case map[string]any:
		return m, true
	case map[string]string:
		out := make(map[string]any, len(m))
		for k, v := range m {
			out[k] = v
		}
		return out, true
	case map[string]float64:
		out := make(map[string]any, len(m))
		for k, v := range m {
			out[k] = v
		}
		return out, true
	case map[string]int:
		out := make(map[string]any, len(m))
		for k, v := range m {
			out[k] = v
		}
		return out, true
	default:
		return nil, false
	}
}
