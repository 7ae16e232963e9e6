package taxform

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"net/url"
	"path"
	"strconv"
	"strings"

	taxerrors "github.com/regkit/taxform/errors"
	"github.com/regkit/taxform/internal/value"
)

// Namespaces declared on every generated instance document.
const (
	nsInstance = "http://www.xbrl.org/2003/instance"
	nsLinkbase = "http://www.xbrl.org/2003/linkbase"
	nsXLink    = "http://www.w3.org/1999/xlink"
	nsXSI      = "http://www.w3.org/2001/XMLSchema-instance"
	nsISO4217  = "http://www.xbrl.org/2003/iso4217"
)

const (
	baseContextID  = "c0"
	pureUnitID     = "u-pure"
	currencyUnitID = "u-currency"

	// fallbackSchemaRef is used when the taxonomy namespace yields no usable
	// filename.
	fallbackSchemaRef = "taxonomy.xsd"

	defaultCurrency     = "CAD"
	defaultEntityScheme = "urn:regulator:entity"
)

// GenerateOption configures instance document generation.
type GenerateOption func(*generateOptions)

type generateOptions struct {
	omitEmpty    bool
	currency     string
	entityScheme string
}

// WithOmitEmptyFacts drops facts for unanswered fields instead of emitting
// them with an explicit nil marker.
func WithOmitEmptyFacts() GenerateOption {
	return func(cfg *generateOptions) {
		cfg.omitEmpty = true
	}
}

// WithCurrency sets the ISO 4217 code for the monetary unit declaration.
func WithCurrency(code string) GenerateOption {
	return func(cfg *generateOptions) {
		cfg.currency = code
	}
}

// WithEntityScheme sets the scheme attribute on the entity identifier.
func WithEntityScheme(scheme string) GenerateOption {
	return func(cfg *generateOptions) {
		cfg.entityScheme = scheme
	}
}

// Generate renders a submission into the namespaced instance document. It
// fails before emitting anything when the submission is absent, the period is
// not a calendar date, or the questionnaire cannot be resolved; a partial
// document is never returned.
func Generate(s *Submission, opts ...GenerateOption) ([]byte, error) {
	cfg := generateOptions{currency: defaultCurrency, entityScheme: defaultEntityScheme}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	if s == nil {
		return nil, taxerrors.New(taxerrors.ErrGenerateSubmission, "no submission to generate", "")
	}
	if s.period.IsZero() {
		return nil, taxerrors.Newf(taxerrors.ErrGeneratePeriod,
			"", "submission %s has no reporting period date", s.id)
	}
	q, err := s.Questionnaire()
	if err != nil {
		return nil, taxerrors.Wrap(taxerrors.ErrGenerateQuestionnaire,
			fmt.Sprintf("submission %s has no questionnaire", s.id), "", err)
	}

	g := &generator{
		sub:        s,
		q:          q,
		cfg:        cfg,
		prefix:     factPrefix(q.industry),
		categories: make(map[string]string),
	}
	return g.run()
}

// generator walks the document states in order: root and namespaces, schema
// reference, base context, units, facts, serialize.
type generator struct {
	sub        *Submission
	q          *Questionnaire
	cfg        generateOptions
	buf        bytes.Buffer
	enc        *xml.Encoder
	prefix     string
	categories map[string]string
}

func (g *generator) run() ([]byte, error) {
	g.buf.WriteString(xml.Header)
	g.enc = xml.NewEncoder(&g.buf)
	g.enc.Indent("", "  ")

	root := xml.StartElement{
		Name: xml.Name{Local: "xbrl"},
		Attr: []xml.Attr{
			{Name: xml.Name{Local: "xmlns"}, Value: nsInstance},
			{Name: xml.Name{Local: "xmlns:link"}, Value: nsLinkbase},
			{Name: xml.Name{Local: "xmlns:xlink"}, Value: nsXLink},
			{Name: xml.Name{Local: "xmlns:xsi"}, Value: nsXSI},
			{Name: xml.Name{Local: "xmlns:iso4217"}, Value: nsISO4217},
		},
	}
	if g.q.namespace != "" {
		root.Attr = append(root.Attr, xml.Attr{
			Name:  xml.Name{Local: "xmlns:" + g.prefix},
			Value: g.q.namespace,
		})
	}
	if err := g.enc.EncodeToken(root); err != nil {
		return nil, fmt.Errorf("encode root: %w", err)
	}

	if err := g.writeSchemaRef(); err != nil {
		return nil, err
	}
	if err := g.writeContext(baseContextID, ""); err != nil {
		return nil, err
	}
	if err := g.writeUnits(); err != nil {
		return nil, err
	}
	if err := g.writeFacts(); err != nil {
		return nil, err
	}

	if err := g.enc.EncodeToken(root.End()); err != nil {
		return nil, fmt.Errorf("encode root end: %w", err)
	}
	if err := g.enc.Flush(); err != nil {
		return nil, fmt.Errorf("flush document: %w", err)
	}
	g.buf.WriteByte('\n')
	return g.buf.Bytes(), nil
}

func (g *generator) writeSchemaRef() error {
	ref := xml.StartElement{
		Name: xml.Name{Local: "link:schemaRef"},
		Attr: []xml.Attr{
			{Name: xml.Name{Local: "xlink:type"}, Value: "simple"},
			{Name: xml.Name{Local: "xlink:href"}, Value: resolveSchemaRef(g.q)},
		},
	}
	if err := g.enc.EncodeToken(ref); err != nil {
		return fmt.Errorf("encode schemaRef: %w", err)
	}
	if err := g.enc.EncodeToken(ref.End()); err != nil {
		return fmt.Errorf("encode schemaRef: %w", err)
	}
	return nil
}

// writeContext emits one context element. A non-empty category adds a
// segment member identifying the breakdown category.
func (g *generator) writeContext(id, category string) error {
	ctx := element("context", xml.Attr{Name: xml.Name{Local: "id"}, Value: id})
	entity := element("entity")
	identifier := element("identifier", xml.Attr{Name: xml.Name{Local: "scheme"}, Value: g.cfg.entityScheme})

	if err := encodeAll(g.enc, ctx, entity, identifier); err != nil {
		return err
	}
	if err := g.enc.EncodeToken(xml.CharData(g.sub.entity)); err != nil {
		return fmt.Errorf("encode entity identifier: %w", err)
	}
	if err := encodeAll(g.enc, identifier.End()); err != nil {
		return err
	}

	if category != "" {
		segment := element("segment")
		member := element(g.factName("category"))
		if err := encodeAll(g.enc, segment, member); err != nil {
			return err
		}
		if err := g.enc.EncodeToken(xml.CharData(category)); err != nil {
			return fmt.Errorf("encode category member: %w", err)
		}
		if err := encodeAll(g.enc, member.End(), segment.End()); err != nil {
			return err
		}
	}
	if err := encodeAll(g.enc, entity.End()); err != nil {
		return err
	}

	period := element("period")
	instant := element("instant")
	if err := encodeAll(g.enc, period, instant); err != nil {
		return err
	}
	if err := g.enc.EncodeToken(xml.CharData(g.sub.period.Format("2006-01-02"))); err != nil {
		return fmt.Errorf("encode period: %w", err)
	}
	return encodeAll(g.enc, instant.End(), period.End(), ctx.End())
}

func (g *generator) writeUnits() error {
	if err := g.writeUnit(pureUnitID, "pure"); err != nil {
		return err
	}
	return g.writeUnit(currencyUnitID, "iso4217:"+g.cfg.currency)
}

func (g *generator) writeUnit(id, measure string) error {
	unit := element("unit", xml.Attr{Name: xml.Name{Local: "id"}, Value: id})
	m := element("measure")
	if err := encodeAll(g.enc, unit, m); err != nil {
		return err
	}
	if err := g.enc.EncodeToken(xml.CharData(measure)); err != nil {
		return fmt.Errorf("encode unit measure: %w", err)
	}
	return encodeAll(g.enc, m.End(), unit.End())
}

func (g *generator) writeFacts() error {
	answers := canonicalAnswers(g.sub.answers)
	for _, f := range g.q.Fields() {
		if !f.Visible(answers) {
			continue
		}
		v := answers[f.id]
		if f.dimensional {
			if err := g.writeDimensionalFacts(f, v); err != nil {
				return err
			}
			continue
		}
		if err := g.writeScalarFact(f, v); err != nil {
			return err
		}
	}
	return nil
}

func (g *generator) writeScalarFact(f *Field, v Value) error {
	scalar, present := v.Scalar()
	if !present {
		if g.cfg.omitEmpty {
			return nil
		}
		fact := element(g.factName(f.wireID),
			xml.Attr{Name: xml.Name{Local: "contextRef"}, Value: baseContextID},
			xml.Attr{Name: xml.Name{Local: "xsi:nil"}, Value: "true"},
		)
		return encodeAll(g.enc, fact, fact.End())
	}
	return g.writeFactValue(f, scalar, baseContextID)
}

// writeDimensionalFacts emits one fact per category, lazily creating and
// caching a secondary context per category. A visible dimensional field with
// no usable breakdown is a caller contract violation.
func (g *generator) writeDimensionalFacts(f *Field, v Value) error {
	if _, scalar := v.Scalar(); scalar {
		return taxerrors.Newf(taxerrors.ErrGenerateDimensional, "",
			"dimensional field %q carries a scalar value", f.wireID)
	}
	if v.IsAbsent() {
		if g.cfg.omitEmpty {
			return nil
		}
		return taxerrors.Newf(taxerrors.ErrGenerateDimensional, "",
			"dimensional field %q has no category breakdown", f.wireID)
	}
	for _, code := range v.CategoryCodes() {
		ctxID, err := g.categoryContext(code)
		if err != nil {
			return err
		}
		scalar := v.Categories()[code]
		if err := g.writeFactValue(f, scalar, ctxID); err != nil {
			return err
		}
	}
	return nil
}

// categoryContext returns the context id for a category, emitting the context
// element at most once per document.
func (g *generator) categoryContext(code string) (string, error) {
	if id, ok := g.categories[code]; ok {
		return id, nil
	}
	id := baseContextID + "-" + code
	if err := g.writeContext(id, code); err != nil {
		return "", err
	}
	g.categories[code] = id
	return id, nil
}

func (g *generator) writeFactValue(f *Field, scalar value.Scalar, contextID string) error {
	attrs := []xml.Attr{{Name: xml.Name{Local: "contextRef"}, Value: contextID}}
	if f.kind.Numeric() {
		unitID := pureUnitID
		if f.kind == KindMonetary {
			unitID = currencyUnitID
		}
		attrs = append(attrs,
			xml.Attr{Name: xml.Name{Local: "unitRef"}, Value: unitID},
			xml.Attr{Name: xml.Name{Local: "decimals"}, Value: strconv.Itoa(f.kind.Decimals())},
		)
	}
	fact := element(g.factName(f.wireID), attrs...)
	if err := g.enc.EncodeToken(fact); err != nil {
		return fmt.Errorf("encode fact %s: %w", f.wireID, err)
	}
	if err := g.enc.EncodeToken(xml.CharData(scalar.Format())); err != nil {
		return fmt.Errorf("encode fact %s value: %w", f.wireID, err)
	}
	return encodeAll(g.enc, fact.End())
}

func (g *generator) factName(local string) string {
	if g.prefix == "" {
		return local
	}
	return g.prefix + ":" + local
}

// resolveSchemaRef picks the schema reference filename: the questionnaire's
// explicit override, else the last path segment of the taxonomy namespace,
// else a fixed fallback.
func resolveSchemaRef(q *Questionnaire) string {
	if q.schemaRef != "" {
		return q.schemaRef
	}
	ns := strings.TrimSpace(q.namespace)
	if ns == "" {
		return fallbackSchemaRef
	}
	u, err := url.Parse(ns)
	if err != nil {
		return fallbackSchemaRef
	}
	segment := path.Base(u.Path)
	if segment == "" || segment == "." || segment == "/" {
		return fallbackSchemaRef
	}
	if !strings.Contains(segment, ".") {
		segment += ".xsd"
	}
	return segment
}

// factPrefix derives a namespace prefix from the industry key; facts fall
// back to the "tx" prefix when the key yields nothing usable.
func factPrefix(industry string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(industry) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9' && b.Len() > 0) {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "tx"
	}
	return b.String()
}

func element(name string, attrs ...xml.Attr) xml.StartElement {
	return xml.StartElement{Name: xml.Name{Local: name}, Attr: attrs}
}

func encodeAll(enc *xml.Encoder, tokens ...xml.Token) error {
	for _, tok := range tokens {
		if err := enc.EncodeToken(tok); err != nil {
			return fmt.Errorf("encode token: %w", err)
		}
	}
	return nil
}
