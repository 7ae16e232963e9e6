// Package structureparse reads the taxonomy structure file: the declarative
// Part > Section > Subsection > Question hierarchy with field references,
// optional explicit display numbers, and per-language instructions.
package structureparse

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// Document is the parsed structure skeleton. Field references are normalized
// to canonical lowercase; resolution against the schema happens later.
type Document struct {
	Parts []Part
}

// Part is a top-level grouping of sections.
type Part struct {
	Title    string
	Sections []Section
}

// Section groups subsections; numbering is global across the questionnaire.
type Section struct {
	Title       string
	Subsections []Subsection
}

// Subsection groups questions; numbering is scoped to the parent section.
type Subsection struct {
	Title     string
	Questions []Question
}

// Question references one schema field by canonical id.
type Question struct {
	// Field is the canonical (lowercase) field id.
	Field string
	// Ref is the reference exactly as written, for error reporting.
	Ref string
	// Number is the explicit display number, empty for positional assignment.
	Number string
	// Instructions holds free-text guidance keyed by language tag.
	Instructions map[string]string
}

type structureFile struct {
	Parts []partDecl `xml:"part"`
}

type partDecl struct {
	Title    string        `xml:"title,attr"`
	Sections []sectionDecl `xml:"section"`
}

type sectionDecl struct {
	Title       string           `xml:"title,attr"`
	Subsections []subsectionDecl `xml:"subsection"`
}

type subsectionDecl struct {
	Title     string         `xml:"title,attr"`
	Questions []questionDecl `xml:"question"`
}

type questionDecl struct {
	Field        string            `xml:"field,attr"`
	Number       string            `xml:"number,attr"`
	Instructions []instructionDecl `xml:"instructions"`
}

type instructionDecl struct {
	Lang string `xml:"lang,attr"`
	Text string `xml:",chardata"`
}

// Parse reads one structure file.
func Parse(r io.Reader) (*Document, error) {
	var file structureFile
	if err := xml.NewDecoder(r).Decode(&file); err != nil {
		return nil, fmt.Errorf("decode structure: %w", err)
	}

	doc := &Document{}
	for _, p := range file.Parts {
		part := Part{Title: strings.TrimSpace(p.Title)}
		for _, s := range p.Sections {
			section := Section{Title: strings.TrimSpace(s.Title)}
			for _, ss := range s.Subsections {
				subsection := Subsection{Title: strings.TrimSpace(ss.Title)}
				for _, q := range ss.Questions {
					subsection.Questions = append(subsection.Questions, buildQuestion(q))
				}
				section.Subsections = append(section.Subsections, subsection)
			}
			part.Sections = append(part.Sections, section)
		}
		doc.Parts = append(doc.Parts, part)
	}
	return doc, nil
}

func buildQuestion(q questionDecl) Question {
	ref := strings.TrimSpace(q.Field)
	question := Question{
		Field:  strings.ToLower(ref),
		Ref:    ref,
		Number: strings.TrimSpace(q.Number),
	}
	for _, ins := range q.Instructions {
		text := strings.TrimSpace(ins.Text)
		if text == "" {
			continue
		}
		lang := ins.Lang
		if lang == "" {
			lang = "en"
		}
		if question.Instructions == nil {
			question.Instructions = make(map[string]string)
		}
		question.Instructions[lang] = text
	}
	return question
}
