package structureparse

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleStructure = `<?xml version="1.0" encoding="UTF-8"?>
<questionnaire>
  <part title="Company Information">
    <section title="Identification">
      <subsection title="Activities">
        <question field="A1" number="1">
          <instructions lang="en">Answer yes if any resale occurred.   </instructions>
          <instructions lang="fr">Répondez oui si une revente a eu lieu.</instructions>
        </question>
        <question field="A2"/>
      </subsection>
    </section>
  </part>
  <part title="Financials">
    <section title="Revenue">
      <subsection title="Totals">
        <question field="A3">
          <instructions lang="en">   </instructions>
        </question>
      </subsection>
    </section>
  </part>
</questionnaire>`

func TestParse(t *testing.T) {
	doc, err := Parse(strings.NewReader(sampleStructure))
	require.NoError(t, err)
	require.Len(t, doc.Parts, 2)

	t.Run("hierarchy and titles", func(t *testing.T) {
		assert.Equal(t, "Company Information", doc.Parts[0].Title)
		require.Len(t, doc.Parts[0].Sections, 1)
		assert.Equal(t, "Identification", doc.Parts[0].Sections[0].Title)
		require.Len(t, doc.Parts[0].Sections[0].Subsections, 1)
		assert.Equal(t, "Activities", doc.Parts[0].Sections[0].Subsections[0].Title)
	})

	t.Run("field refs normalized, original preserved", func(t *testing.T) {
		q := doc.Parts[0].Sections[0].Subsections[0].Questions[0]
		assert.Equal(t, "a1", q.Field)
		assert.Equal(t, "A1", q.Ref)
		assert.Equal(t, "1", q.Number)
	})

	t.Run("instructions trimmed per language", func(t *testing.T) {
		q := doc.Parts[0].Sections[0].Subsections[0].Questions[0]
		assert.Equal(t, "Answer yes if any resale occurred.", q.Instructions["en"])
		assert.Equal(t, "Répondez oui si une revente a eu lieu.", q.Instructions["fr"])
	})

	t.Run("missing number and instructions are absent", func(t *testing.T) {
		q := doc.Parts[0].Sections[0].Subsections[0].Questions[1]
		assert.Empty(t, q.Number)
		assert.Nil(t, q.Instructions)
	})

	t.Run("whitespace-only instructions normalized to absent", func(t *testing.T) {
		q := doc.Parts[1].Sections[0].Subsections[0].Questions[0]
		assert.Nil(t, q.Instructions)
	})
}

func TestParseMalformed(t *testing.T) {
	_, err := Parse(strings.NewReader("<questionnaire><part></questionnaire>"))
	assert.Error(t, err)
}
