package taxform

import (
	"strings"

	"golang.org/x/text/language"

	taxerrors "github.com/regkit/taxform/errors"
)

// Question wraps a Field with presentation metadata: the display number and
// optional per-locale instructions. Taxonomy attributes live on the Field.
type Question struct {
	field        *Field
	number       string
	instructions LocalizedText
}

// Field returns the underlying taxonomy field.
func (q *Question) Field() *Field {
	return q.field
}

// Number returns the display number, explicit or positionally assigned.
func (q *Question) Number() string {
	return q.number
}

// Instructions resolves the question's instructions text, empty when absent.
func (q *Question) Instructions(requested, fallback language.Tag) string {
	return q.instructions.Resolve(requested, fallback)
}

// Visible reports whether the question's field is currently visible.
func (q *Question) Visible(answers map[string]Value) bool {
	return q.field.Visible(answers)
}

// Subsection is the innermost grouping; it exclusively owns its questions.
type Subsection struct {
	title     string
	number    int
	questions []*Question
}

// Title returns the subsection title.
func (s *Subsection) Title() string { return s.title }

// Number returns the subsection number, scoped to its section.
func (s *Subsection) Number() int { return s.number }

// Questions returns the subsection's questions in declared order.
func (s *Subsection) Questions() []*Question {
	out := make([]*Question, len(s.questions))
	copy(out, s.questions)
	return out
}

// Count returns the number of questions.
func (s *Subsection) Count() int { return len(s.questions) }

// Empty reports whether the subsection has no questions.
func (s *Subsection) Empty() bool { return len(s.questions) == 0 }

// AnyVisible reports whether any question is visible given the answers.
func (s *Subsection) AnyVisible(answers map[string]Value) bool {
	for _, q := range s.questions {
		if q.Visible(answers) {
			return true
		}
	}
	return false
}

// Section groups subsections; section numbers are global across the
// questionnaire.
type Section struct {
	title       string
	number      int
	subsections []*Subsection
}

// Title returns the section title.
func (s *Section) Title() string { return s.title }

// Number returns the global section number.
func (s *Section) Number() int { return s.number }

// Subsections returns the section's subsections in declared order.
func (s *Section) Subsections() []*Subsection {
	out := make([]*Subsection, len(s.subsections))
	copy(out, s.subsections)
	return out
}

// Questions returns all questions beneath this section in declared order.
func (s *Section) Questions() []*Question {
	var out []*Question
	for _, ss := range s.subsections {
		out = append(out, ss.questions...)
	}
	return out
}

// Count returns the number of questions beneath this section.
func (s *Section) Count() int {
	n := 0
	for _, ss := range s.subsections {
		n += len(ss.questions)
	}
	return n
}

// Empty reports whether the section has no questions.
func (s *Section) Empty() bool { return s.Count() == 0 }

// AnyVisible reports whether any question beneath is visible.
func (s *Section) AnyVisible(answers map[string]Value) bool {
	for _, ss := range s.subsections {
		if ss.AnyVisible(answers) {
			return true
		}
	}
	return false
}

// Part is the top-level grouping. Question numbering restarts at 1 at each
// part boundary.
type Part struct {
	title    string
	number   int
	sections []*Section
}

// Title returns the part title.
func (p *Part) Title() string { return p.title }

// Number returns the part's position, starting at 1.
func (p *Part) Number() int { return p.number }

// Sections returns the part's sections in declared order.
func (p *Part) Sections() []*Section {
	out := make([]*Section, len(p.sections))
	copy(out, p.sections)
	return out
}

// Questions returns all questions beneath this part in declared order.
func (p *Part) Questions() []*Question {
	var out []*Question
	for _, s := range p.sections {
		out = append(out, s.Questions()...)
	}
	return out
}

// Count returns the number of questions beneath this part.
func (p *Part) Count() int {
	n := 0
	for _, s := range p.sections {
		n += s.Count()
	}
	return n
}

// Empty reports whether the part has no questions.
func (p *Part) Empty() bool { return p.Count() == 0 }

// AnyVisible reports whether any question beneath is visible.
func (p *Part) AnyVisible(answers map[string]Value) bool {
	for _, s := range p.sections {
		if s.AnyVisible(answers) {
			return true
		}
	}
	return false
}

// Questionnaire is the fully loaded taxonomy for one industry and year.
// Immutable after construction; safe for concurrent reads.
type Questionnaire struct {
	industry  string
	year      int
	namespace string
	schemaRef string
	parts     []*Part
	fields    []*Field
	index     map[string]*Field
}

func newQuestionnaire(industry string, year int, namespace, schemaRef string, parts []*Part, fields []*Field) (*Questionnaire, error) {
	index := make(map[string]*Field, len(fields))
	for _, f := range fields {
		if _, exists := index[f.id]; exists {
			return nil, taxerrors.Newf(taxerrors.ErrDuplicateFieldID, "",
				"field id %q declared more than once", f.id)
		}
		index[f.id] = f
	}
	return &Questionnaire{
		industry:  industry,
		year:      year,
		namespace: namespace,
		schemaRef: schemaRef,
		parts:     parts,
		fields:    fields,
		index:     index,
	}, nil
}

// Industry returns the industry identifier this questionnaire belongs to.
func (q *Questionnaire) Industry() string { return q.industry }

// Year returns the taxonomy year.
func (q *Questionnaire) Year() int { return q.year }

// Namespace returns the schema's target namespace, used by the generator.
func (q *Questionnaire) Namespace() string { return q.namespace }

// SchemaRef returns the explicit schema reference override, empty when the
// generator should derive one from the namespace.
func (q *Questionnaire) SchemaRef() string { return q.schemaRef }

// Parts returns the ordered part list.
func (q *Questionnaire) Parts() []*Part {
	out := make([]*Part, len(q.parts))
	copy(out, q.parts)
	return out
}

// Field looks up a field by id, case-insensitively.
func (q *Questionnaire) Field(id string) (*Field, bool) {
	f, ok := q.index[strings.ToLower(strings.TrimSpace(id))]
	return f, ok
}

// Fields returns every declared field in schema declaration order, including
// fields the display structure does not reference.
func (q *Questionnaire) Fields() []*Field {
	out := make([]*Field, len(q.fields))
	copy(out, q.fields)
	return out
}

// Questions returns every question across all parts in display order.
func (q *Questionnaire) Questions() []*Question {
	var out []*Question
	for _, p := range q.parts {
		out = append(out, p.Questions()...)
	}
	return out
}

// Count returns the total number of questions.
func (q *Questionnaire) Count() int {
	n := 0
	for _, p := range q.parts {
		n += p.Count()
	}
	return n
}
