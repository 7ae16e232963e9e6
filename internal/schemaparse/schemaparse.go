// Package schemaparse reads the taxonomy schema file and extracts field
// declarations: wire id, canonical kind, enumerated literals, and numeric
// bounds. It has no knowledge of labels, structure, or rules.
package schemaparse

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	taxerrors "github.com/regkit/taxform/errors"
	"github.com/regkit/taxform/internal/value"
)

// DefaultMaxFields bounds how many field declarations a schema may carry
// before parsing fails with a structural error.
const DefaultMaxFields = 10000

// Field is one schema-declared field, before labels and rules are merged in.
type Field struct {
	// Name is the declared element name, casing preserved for wire output.
	Name string
	// WireType is the schema's type reference carried through unchanged.
	WireType string
	// Kind is the canonical type mapped from the schema base type.
	Kind value.Kind
	// ValidValues are enumerated literals, verbatim, in declaration order.
	ValidValues []string
	// Min and Max are inclusive bounds as declared, empty when absent.
	Min string
	Max string
	// Dimensional marks fields answered as a per-category breakdown.
	Dimensional bool
}

// Document is the parsed schema: declared fields in declaration order plus
// the schema's target namespace.
type Document struct {
	TargetNamespace string
	Fields          []Field
}

type schemaFile struct {
	TargetNamespace string            `xml:"targetNamespace,attr"`
	Elements        []elementDecl     `xml:"element"`
	SimpleTypes     []simpleTypeDecl  `xml:"simpleType"`
	ComplexTypes    []complexTypeDecl `xml:"complexType"`
}

type elementDecl struct {
	Name        string          `xml:"name,attr"`
	Type        string          `xml:"type,attr"`
	Abstract    string          `xml:"abstract,attr"`
	Dimensional string          `xml:"dimensional,attr"`
	SimpleType  *simpleTypeDecl `xml:"simpleType"`
	Complex     *struct{}       `xml:"complexType"`
}

type simpleTypeDecl struct {
	Name        string           `xml:"name,attr"`
	Restriction *restrictionDecl `xml:"restriction"`
}

type complexTypeDecl struct {
	Name string `xml:"name,attr"`
}

type restrictionDecl struct {
	Base         string      `xml:"base,attr"`
	Enumerations []valueAttr `xml:"enumeration"`
	MinInclusive *valueAttr  `xml:"minInclusive"`
	MaxInclusive *valueAttr  `xml:"maxInclusive"`
}

type valueAttr struct {
	Value string `xml:"value,attr"`
}

// Parse reads one schema file. maxFields <= 0 applies DefaultMaxFields.
func Parse(r io.Reader, maxFields int) (*Document, error) {
	if maxFields <= 0 {
		maxFields = DefaultMaxFields
	}

	var file schemaFile
	dec := xml.NewDecoder(r)
	if err := dec.Decode(&file); err != nil {
		return nil, fmt.Errorf("decode schema: %w", err)
	}

	named := make(map[string]*simpleTypeDecl, len(file.SimpleTypes))
	for i := range file.SimpleTypes {
		if file.SimpleTypes[i].Name != "" {
			named[file.SimpleTypes[i].Name] = &file.SimpleTypes[i]
		}
	}
	complexNames := make(map[string]bool, len(file.ComplexTypes))
	for _, ct := range file.ComplexTypes {
		if ct.Name != "" {
			complexNames[ct.Name] = true
		}
	}

	doc := &Document{TargetNamespace: file.TargetNamespace}
	for _, el := range file.Elements {
		field, ok := buildField(el, named, complexNames)
		if !ok {
			continue
		}
		doc.Fields = append(doc.Fields, field)
		if len(doc.Fields) > maxFields {
			return nil, taxerrors.Newf(taxerrors.ErrTooManyFields, "",
				"schema declares more than %d fields", maxFields)
		}
	}
	return doc, nil
}

func buildField(el elementDecl, named map[string]*simpleTypeDecl, complexNames map[string]bool) (Field, bool) {
	if el.Name == "" || isTrue(el.Abstract) || el.Complex != nil {
		return Field{}, false
	}
	if complexNames[localName(el.Type)] || strings.HasSuffix(localName(el.Type), "Group") {
		return Field{}, false
	}

	field := Field{Name: el.Name, WireType: el.Type, Dimensional: isTrue(el.Dimensional)}

	restriction := restrictionFor(el, named)
	if restriction == nil {
		field.Kind = mapBaseType(localName(el.Type))
		return field, true
	}

	field.Kind = mapBaseType(localName(restriction.Base))
	if restriction.MinInclusive != nil {
		field.Min = restriction.MinInclusive.Value
	}
	if restriction.MaxInclusive != nil {
		field.Max = restriction.MaxInclusive.Value
	}
	if len(restriction.Enumerations) == 0 {
		return field, true
	}

	for _, e := range restriction.Enumerations {
		field.ValidValues = append(field.ValidValues, e.Value)
	}
	if isBooleanPair(field.ValidValues) {
		field.Kind = value.KindBoolean
	} else {
		field.Kind = value.KindEnum
	}
	return field, true
}

func restrictionFor(el elementDecl, named map[string]*simpleTypeDecl) *restrictionDecl {
	if el.SimpleType != nil {
		return el.SimpleType.Restriction
	}
	if st, ok := named[localName(el.Type)]; ok {
		return st.Restriction
	}
	return nil
}

// isBooleanPair recognizes a two-valued enumeration spelling yes/no in
// English or French, case-insensitively, in either order.
func isBooleanPair(values []string) bool {
	if len(values) != 2 {
		return false
	}
	return (affirmativeLiteral(values[0]) && negativeLiteral(values[1])) ||
		(negativeLiteral(values[0]) && affirmativeLiteral(values[1]))
}

func affirmativeLiteral(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yes", "oui":
		return true
	default:
		return false
	}
}

func negativeLiteral(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "no", "non":
		return true
	default:
		return false
	}
}

func mapBaseType(base string) value.Kind {
	switch base {
	case "boolean", "booleanItemType":
		return value.KindBoolean
	case "int", "long", "short", "integer", "nonNegativeInteger", "positiveInteger", "integerItemType":
		return value.KindInteger
	case "monetary", "monetaryItemType":
		return value.KindMonetary
	case "decimal", "decimalItemType", "float", "double":
		return value.KindDecimal
	case "percent", "percentItemType", "pureItemType":
		return value.KindPercentage
	case "date", "dateItemType":
		return value.KindDate
	default:
		return value.KindString
	}
}

func localName(qname string) string {
	if i := strings.LastIndex(qname, ":"); i >= 0 {
		return qname[i+1:]
	}
	return qname
}

func isTrue(s string) bool {
	return s == "true" || s == "1"
}
