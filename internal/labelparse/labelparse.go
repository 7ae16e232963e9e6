// Package labelparse reads the taxonomy label file and maps field ids to
// human labels and extended help text, per language, with markup stripped.
package labelparse

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
)

// Entry holds the label texts for one field, keyed by language tag.
type Entry struct {
	Labels   map[string]string
	Extended map[string]string
}

type labelFile struct {
	Labels []labelDecl `xml:"labelLink>label"`
}

type labelDecl struct {
	Ref  string `xml:"label,attr"`
	Role string `xml:"role,attr"`
	Lang string `xml:"lang,attr"`
	Text string `xml:",chardata"`
}

// Parse reads a label file and returns entries keyed by canonical (lowercase)
// field id. Fields absent from the file simply have no entry.
func Parse(r io.Reader) (map[string]Entry, error) {
	var file labelFile
	if err := xml.NewDecoder(r).Decode(&file); err != nil {
		return nil, fmt.Errorf("decode labels: %w", err)
	}

	out := make(map[string]Entry)
	for _, l := range file.Labels {
		field := fieldID(l.Ref)
		if field == "" {
			continue
		}
		text := strings.TrimSpace(StripMarkup(l.Text))
		if text == "" {
			continue
		}
		lang := l.Lang
		if lang == "" {
			lang = "en"
		}

		entry := out[field]
		if isExtendedRole(l.Role) {
			if entry.Extended == nil {
				entry.Extended = make(map[string]string)
			}
			entry.Extended[lang] = text
		} else {
			if entry.Labels == nil {
				entry.Labels = make(map[string]string)
			}
			entry.Labels[lang] = text
		}
		out[field] = entry
	}
	return out, nil
}

// fieldID derives the canonical field id from an xlink label reference of the
// form "lab_<FieldID>" or "label_<FieldID>"; a bare id is accepted as-is.
func fieldID(ref string) string {
	ref = strings.TrimSpace(ref)
	if i := strings.Index(ref, "_"); i >= 0 {
		ref = ref[i+1:]
	}
	return strings.ToLower(ref)
}

func isExtendedRole(role string) bool {
	return strings.HasSuffix(role, "verboseLabel") || strings.HasSuffix(role, "documentation")
}

// StripMarkup removes HTML tags from label text, keeping the text content.
func StripMarkup(s string) string {
	if !strings.ContainsAny(s, "<>") {
		return s
	}
	var b strings.Builder
	tz := html.NewTokenizer(strings.NewReader(s))
	for {
		switch tz.Next() {
		case html.ErrorToken:
			return b.String()
		case html.TextToken:
			b.Write(tz.Text())
		}
	}
}
