package taxform

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	taxerrors "github.com/regkit/taxform/errors"
	"github.com/regkit/taxform/internal/labelparse"
	"github.com/regkit/taxform/internal/ruleparse"
	"github.com/regkit/taxform/internal/schemaparse"
	"github.com/regkit/taxform/internal/structureparse"
	"github.com/regkit/taxform/internal/value"
)

// LoadOption configures taxonomy loading.
type LoadOption func(*loadOptions)

type loadOptions struct {
	logger    *slog.Logger
	maxFields int
	schemaRef string
}

// WithLogger sets the logger used for loading diagnostics.
func WithLogger(logger *slog.Logger) LoadOption {
	return func(cfg *loadOptions) {
		cfg.logger = logger
	}
}

// WithMaxFields overrides the schema field cap.
func WithMaxFields(n int) LoadOption {
	return func(cfg *loadOptions) {
		cfg.maxFields = n
	}
}

// WithSchemaRef sets an explicit schema reference filename for generated
// documents, overriding derivation from the taxonomy namespace.
func WithSchemaRef(ref string) LoadOption {
	return func(cfg *loadOptions) {
		cfg.schemaRef = ref
	}
}

// Load reads the taxonomy file set rooted at fsys and builds the
// questionnaire for one industry and year. The schema file is required;
// label, structure, and rule files are optional and default to empty results.
// Loading is all-or-nothing: any malformed file fails the whole load.
func Load(fsys fs.FS, industry string, year int, opts ...LoadOption) (*Questionnaire, error) {
	cfg := loadOptions{logger: slog.Default()}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	files, err := discoverFiles(fsys, cfg.logger)
	if err != nil {
		return nil, err
	}

	schemaDoc, err := parseSchemaFile(fsys, files.schema, cfg.maxFields)
	if err != nil {
		return nil, err
	}
	labels, err := parseLabelFile(fsys, files.labels)
	if err != nil {
		return nil, err
	}
	rules, err := parseRuleFile(fsys, files.rules, cfg.logger)
	if err != nil {
		return nil, err
	}
	structureDoc, err := parseStructureFile(fsys, files.structure)
	if err != nil {
		return nil, err
	}

	fields, index, err := buildFields(schemaDoc, labels, rules, cfg.logger)
	if err != nil {
		return nil, err
	}

	parts, err := assembleParts(structureDoc, index, files.structure)
	if err != nil {
		return nil, err
	}

	return newQuestionnaire(industry, year, schemaDoc.TargetNamespace, cfg.schemaRef, parts, fields)
}

// LoadDir loads a taxonomy from a directory on disk.
func LoadDir(dir, industry string, year int, opts ...LoadOption) (*Questionnaire, error) {
	if _, err := os.Stat(dir); err != nil {
		return nil, fmt.Errorf("load taxonomy %s: %w", dir, err)
	}
	return Load(os.DirFS(dir), industry, year, opts...)
}

type taxonomyFiles struct {
	schema    string
	labels    string
	structure string
	rules     string
}

func discoverFiles(fsys fs.FS, logger *slog.Logger) (taxonomyFiles, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return taxonomyFiles{}, fmt.Errorf("read taxonomy directory: %w", err)
	}

	var files taxonomyFiles
	var schemas []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		lower := strings.ToLower(name)
		switch {
		case strings.HasSuffix(lower, ".xsd"):
			schemas = append(schemas, name)
		case strings.Contains(lower, "label") && strings.HasSuffix(lower, ".xml"):
			files.labels = name
		case strings.Contains(lower, "structure") && strings.HasSuffix(lower, ".xml"):
			files.structure = name
		case strings.Contains(lower, "rule") || strings.HasSuffix(lower, ".rul"):
			files.rules = name
		}
	}

	if len(schemas) == 0 {
		return taxonomyFiles{}, taxerrors.New(taxerrors.ErrMissingFile, "no schema (.xsd) file found", "")
	}
	sort.Strings(schemas)
	files.schema = schemas[0]
	if len(schemas) > 1 {
		logger.Warn("multiple schema files found, using first",
			slog.String("using", files.schema),
			slog.String("ignored", strings.Join(schemas[1:], ", ")))
	}
	return files, nil
}

func parseSchemaFile(fsys fs.FS, name string, maxFields int) (*schemaparse.Document, error) {
	f, err := fsys.Open(name)
	if err != nil {
		return nil, taxerrors.Wrap(taxerrors.ErrMissingFile, "open schema", name, err)
	}
	defer f.Close()

	doc, err := schemaparse.Parse(f, maxFields)
	if err != nil {
		if _, ok := taxerrors.AsTaxonomy(err); ok {
			return nil, err
		}
		return nil, taxerrors.Wrap(taxerrors.ErrMalformedFile, "parse schema", name, err)
	}
	return doc, nil
}

func parseLabelFile(fsys fs.FS, name string) (map[string]labelparse.Entry, error) {
	if name == "" {
		return map[string]labelparse.Entry{}, nil
	}
	f, err := fsys.Open(name)
	if err != nil {
		return nil, taxerrors.Wrap(taxerrors.ErrMalformedFile, "open labels", name, err)
	}
	defer f.Close()

	entries, err := labelparse.Parse(f)
	if err != nil {
		return nil, taxerrors.Wrap(taxerrors.ErrMalformedFile, "parse labels", name, err)
	}
	return entries, nil
}

func parseRuleFile(fsys fs.FS, name string, logger *slog.Logger) ([]ruleparse.Rule, error) {
	if name == "" {
		return nil, nil
	}
	f, err := fsys.Open(name)
	if err != nil {
		return nil, taxerrors.Wrap(taxerrors.ErrMalformedFile, "open rules", name, err)
	}
	defer f.Close()

	rules, err := ruleparse.Parse(f, logger)
	if err != nil {
		return nil, taxerrors.Wrap(taxerrors.ErrMalformedFile, "parse rules", name, err)
	}
	return rules, nil
}

func parseStructureFile(fsys fs.FS, name string) (*structureparse.Document, error) {
	if name == "" {
		return &structureparse.Document{}, nil
	}
	f, err := fsys.Open(name)
	if err != nil {
		return nil, taxerrors.Wrap(taxerrors.ErrMalformedFile, "open structure", name, err)
	}
	defer f.Close()

	doc, err := structureparse.Parse(f)
	if err != nil {
		return nil, taxerrors.Wrap(taxerrors.ErrMalformedFile, "parse structure", name, err)
	}
	return doc, nil
}

// buildFields merges schema declarations with labels and rule-derived gate
// information into immutable Field objects.
func buildFields(schemaDoc *schemaparse.Document, labels map[string]labelparse.Entry, rules []ruleparse.Rule, logger *slog.Logger) ([]*Field, map[string]*Field, error) {
	gates := ruleparse.Gates(rules)
	depsByField := make(map[string]map[string]string)

	fields := make([]*Field, 0, len(schemaDoc.Fields))
	index := make(map[string]*Field, len(schemaDoc.Fields))
	for _, sf := range schemaDoc.Fields {
		id := strings.ToLower(sf.Name)
		field := &Field{
			id:          id,
			wireID:      sf.Name,
			kind:        sf.Kind,
			wireType:    sf.WireType,
			validValues: sf.ValidValues,
			dimensional: sf.Dimensional,
			gate:        gates[id],
		}
		if entry, ok := labels[id]; ok {
			field.labels = LocalizedText(entry.Labels).clone()
			field.extended = LocalizedText(entry.Extended).clone()
		}
		if sf.Min != "" {
			if n, err := decimal.NewFromString(sf.Min); err == nil {
				field.min = &n
			}
		}
		if sf.Max != "" {
			if n, err := decimal.NewFromString(sf.Max); err == nil {
				field.max = &n
			}
		}
		fields = append(fields, field)
		index[id] = field
	}

	for _, rule := range rules {
		controlled, ok := index[rule.Controlled]
		if !ok {
			logger.Warn("rule controls unknown field, skipping",
				slog.String("rule", rule.Name), slog.String("field", rule.Controlled))
			continue
		}
		gateField, ok := index[rule.Gate]
		if !ok {
			logger.Warn("rule references unknown gate field, skipping",
				slog.String("rule", rule.Name), slog.String("gate", rule.Gate))
			continue
		}
		if depsByField[controlled.id] == nil {
			depsByField[controlled.id] = make(map[string]string)
		}
		depsByField[controlled.id][gateField.id] = translateLiteral(rule.Literal, gateField)
	}
	for id, deps := range depsByField {
		index[id].deps = deps
	}
	return fields, index, nil
}

// Affirmative and negative literal synonyms used to translate rule-language
// tokens onto a gate field's own two declared values. Only English and
// French spellings were observed in published taxonomies; extend here, not
// inline.
var (
	affirmativeSynonyms = map[string]bool{"true": true, "yes": true, "oui": true, "vrai": true, "1": true}
	negativeSynonyms    = map[string]bool{"false": true, "no": true, "non": true, "faux": true, "0": true}
)

// translateLiteral maps a generic affirmative/negative rule literal onto the
// gate field's own accepted value pair. Literals outside the synonym sets, or
// gate fields without exactly two declared values, pass through unchanged.
func translateLiteral(literal string, gateField *Field) string {
	if len(gateField.validValues) != 2 {
		return literal
	}
	lower := strings.ToLower(strings.TrimSpace(literal))

	var want map[string]bool
	switch {
	case affirmativeSynonyms[lower]:
		want = affirmativeSynonyms
	case negativeSynonyms[lower]:
		want = negativeSynonyms
	default:
		return literal
	}
	for _, v := range gateField.validValues {
		if want[strings.ToLower(v)] {
			return v
		}
	}
	return literal
}

// assembleParts walks the structure skeleton, resolves field references, and
// assigns display numbers: section numbers are global, subsection numbers are
// scoped to their section, question numbers restart at each part.
func assembleParts(doc *structureparse.Document, index map[string]*Field, path string) ([]*Part, error) {
	seen := make(map[string]string)
	var parts []*Part
	sectionNumber := 0

	for pi, p := range doc.Parts {
		part := &Part{title: p.Title, number: pi + 1}
		questionNumber := 0
		for _, s := range p.Sections {
			sectionNumber++
			section := &Section{title: s.Title, number: sectionNumber}
			for ssi, ss := range s.Subsections {
				subsection := &Subsection{title: ss.Title, number: ssi + 1}
				for _, q := range ss.Questions {
					location := fmt.Sprintf("part %q, section %q, subsection %q", p.Title, s.Title, ss.Title)
					field, ok := index[q.Field]
					if !ok {
						err := taxerrors.Newf(taxerrors.ErrUnknownFieldRef, path,
							"structure references unknown field %q", q.Ref)
						err.Location = location
						return nil, err
					}
					if first, dup := seen[q.Field]; dup {
						err := taxerrors.Newf(taxerrors.ErrDuplicateFieldRef, path,
							"field %q referenced at both %s and %s", q.Ref, first, location)
						return nil, err
					}
					seen[q.Field] = location

					questionNumber++
					number := q.Number
					if number == "" {
						number = strconv.Itoa(questionNumber)
					}
					subsection.questions = append(subsection.questions, &Question{
						field:        field,
						number:       number,
						instructions: LocalizedText(q.Instructions).clone(),
					})
				}
				section.subsections = append(section.subsections, subsection)
			}
			part.sections = append(part.sections, section)
		}
		parts = append(parts, part)
	}
	return parts, nil
}

// canonicalAnswers normalizes a wire-id keyed answer map onto canonical ids
// for gate evaluation.
func canonicalAnswers(answers map[string]value.Value) map[string]value.Value {
	out := make(map[string]value.Value, len(answers))
	for k, v := range answers {
		out[strings.ToLower(k)] = v
	}
	return out
}
