package taxform

import (
	"sort"

	"golang.org/x/text/language"
)

// LocalizedText holds translations of one text keyed by BCP-47 language tag.
type LocalizedText map[string]string

// Resolve picks the best translation for the requested locale, then the
// fallback locale, then the first available translation in sorted-tag order.
// Locale selection is always explicit; there is no process-wide locale state.
func (t LocalizedText) Resolve(requested, fallback language.Tag) string {
	if len(t) == 0 {
		return ""
	}

	keys := make([]string, 0, len(t))
	for k := range t {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	available := make([]language.Tag, 0, len(keys))
	tagged := make([]string, 0, len(keys))
	for _, k := range keys {
		tag, err := language.Parse(k)
		if err != nil {
			continue
		}
		available = append(available, tag)
		tagged = append(tagged, k)
	}
	if len(available) == 0 {
		return t[keys[0]]
	}

	matcher := language.NewMatcher(available)
	_, index, _ := matcher.Match(requested, fallback)
	return t[tagged[index]]
}

// clone returns an independent copy so loaded questionnaires stay immutable.
func (t LocalizedText) clone() LocalizedText {
	if t == nil {
		return nil
	}
	out := make(LocalizedText, len(t))
	for k, v := range t {
		out[k] = v
	}
	return out
}
