package taxform

import (
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	taxerrors "github.com/regkit/taxform/errors"
)

func generateString(t *testing.T, s *Submission, opts ...GenerateOption) string {
	t.Helper()
	out, err := Generate(s, opts...)
	require.NoError(t, err)
	return string(out)
}

func TestGenerateEnvelope(t *testing.T) {
	s := testSubmission(t)
	doc := generateString(t, s, WithOmitEmptyFacts())

	t.Run("namespaces on root", func(t *testing.T) {
		assert.Contains(t, doc, `xmlns="http://www.xbrl.org/2003/instance"`)
		assert.Contains(t, doc, `xmlns:link="http://www.xbrl.org/2003/linkbase"`)
		assert.Contains(t, doc, `xmlns:xlink="http://www.w3.org/1999/xlink"`)
		assert.Contains(t, doc, `xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance"`)
		assert.Contains(t, doc, `xmlns:iso4217="http://www.xbrl.org/2003/iso4217"`)
		assert.Contains(t, doc, `xmlns:tele="http://regulator.example/taxonomy/tele-2014"`)
	})

	t.Run("schema reference derived from namespace", func(t *testing.T) {
		assert.Equal(t, 1, strings.Count(doc, "<link:schemaRef"))
		assert.Contains(t, doc, `xlink:href="tele-2014.xsd"`)
	})

	t.Run("base context with entity and instant period", func(t *testing.T) {
		assert.Equal(t, 1, strings.Count(doc, `<context id="c0">`))
		assert.Contains(t, doc, `scheme="urn:regulator:entity"`)
		assert.Contains(t, doc, ">CA1234567<")
		assert.Contains(t, doc, "<instant>2014-12-31</instant>")
	})

	t.Run("both units declared", func(t *testing.T) {
		assert.Contains(t, doc, `<unit id="u-pure">`)
		assert.Contains(t, doc, "<measure>pure</measure>")
		assert.Contains(t, doc, `<unit id="u-currency">`)
		assert.Contains(t, doc, "<measure>iso4217:CAD</measure>")
	})

	t.Run("zero answers still yields a well-formed envelope", func(t *testing.T) {
		assert.NotContains(t, doc, "<tele:A1")
	})
}

func TestGenerateScalarFacts(t *testing.T) {
	s := testSubmission(t)
	require.NoError(t, s.Set("A1", "Oui"))
	require.NoError(t, s.Set("A2", "1234.5"))
	require.NoError(t, s.Set("A3", 42))
	require.NoError(t, s.Set("B2", "10"))

	doc := generateString(t, s, WithOmitEmptyFacts())

	t.Run("boolean fact has no unit or decimals", func(t *testing.T) {
		assert.Equal(t, 1, strings.Count(doc, "<tele:A1"))
		assert.Contains(t, doc, `<tele:A1 contextRef="c0">Oui</tele:A1>`)
	})

	t.Run("monetary fact has currency unit and two exact decimals", func(t *testing.T) {
		assert.Contains(t, doc, `<tele:A2 contextRef="c0" unitRef="u-currency" decimals="2">1234.50</tele:A2>`)
	})

	t.Run("integer fact has pure unit and zero decimals", func(t *testing.T) {
		assert.Contains(t, doc, `<tele:A3 contextRef="c0" unitRef="u-pure" decimals="0">42</tele:A3>`)
	})

	t.Run("gated fact emitted once gate satisfied", func(t *testing.T) {
		assert.Contains(t, doc, `<tele:B2 contextRef="c0" unitRef="u-currency" decimals="2">10.00</tele:B2>`)
	})
}

func TestGenerateGatedFactHidden(t *testing.T) {
	s := testSubmission(t)
	require.NoError(t, s.Set("A1", "Non"))
	require.NoError(t, s.Set("B2", "10"))

	doc := generateString(t, s, WithOmitEmptyFacts())
	assert.NotContains(t, doc, "<tele:B2", "facts for invisible fields are never emitted")
}

func TestGenerateNilFacts(t *testing.T) {
	s := testSubmission(t)
	require.NoError(t, s.Set("A5", map[string]any{"fr": 100.0}))

	t.Run("unanswered visible field emits explicit nil by default", func(t *testing.T) {
		doc := generateString(t, s)
		assert.Contains(t, doc, `<tele:A3 contextRef="c0" xsi:nil="true">`)
	})

	t.Run("omission drops the fact entirely", func(t *testing.T) {
		doc := generateString(t, s, WithOmitEmptyFacts())
		assert.NotContains(t, doc, "<tele:A3")
	})
}

func TestGenerateDimensionalFacts(t *testing.T) {
	s := testSubmission(t)
	require.NoError(t, s.Set("A5", map[string]any{"fr": 40.0, "en": "60"}))

	doc := generateString(t, s, WithOmitEmptyFacts())

	t.Run("one fact per category against distinct contexts", func(t *testing.T) {
		assert.Contains(t, doc, `<tele:A5 contextRef="c0-EN" unitRef="u-pure" decimals="2">60.00</tele:A5>`)
		assert.Contains(t, doc, `<tele:A5 contextRef="c0-FR" unitRef="u-pure" decimals="2">40.00</tele:A5>`)
	})

	t.Run("secondary contexts created once with category member", func(t *testing.T) {
		assert.Equal(t, 1, strings.Count(doc, `<context id="c0-FR">`))
		assert.Equal(t, 1, strings.Count(doc, `<context id="c0-EN">`))
		assert.Contains(t, doc, "<tele:category>FR</tele:category>")
		assert.Contains(t, doc, "<segment>")
	})

	t.Run("base context remains", func(t *testing.T) {
		assert.Equal(t, 1, strings.Count(doc, `<context id="c0">`))
	})
}

func TestGenerateErrors(t *testing.T) {
	t.Run("nil submission", func(t *testing.T) {
		_, err := Generate(nil)
		assert.True(t, taxerrors.HasCode(err, taxerrors.ErrGenerateSubmission))
	})

	t.Run("zero period", func(t *testing.T) {
		q := loadTestQuestionnaire(t)
		s := NewSubmission("CA1", time.Time{}, "tele", 2014, fixedResolver(q))
		_, err := Generate(s)
		assert.True(t, taxerrors.HasCode(err, taxerrors.ErrGeneratePeriod))
	})

	t.Run("unresolved questionnaire", func(t *testing.T) {
		s := NewSubmission("CA1", time.Date(2014, 12, 31, 0, 0, 0, 0, time.UTC), "tele", 2014, nil)
		_, err := Generate(s)
		assert.True(t, taxerrors.HasCode(err, taxerrors.ErrGenerateQuestionnaire))
	})

	t.Run("absent dimensional value raises without omission", func(t *testing.T) {
		s := testSubmission(t)
		_, err := Generate(s)
		require.Error(t, err)
		assert.True(t, taxerrors.HasCode(err, taxerrors.ErrGenerateDimensional))
	})
}

func TestGenerateEscaping(t *testing.T) {
	q := loadTestQuestionnaire(t)
	s := NewSubmission("A&B <Co>", time.Date(2014, 12, 31, 0, 0, 0, 0, time.UTC), "tele", 2014, fixedResolver(q))
	doc := generateString(t, s, WithOmitEmptyFacts())
	assert.Contains(t, doc, "A&amp;B &lt;Co&gt;")
	assert.NotContains(t, doc, "<Co>")
}

func TestGenerateSchemaRefResolution(t *testing.T) {
	period := time.Date(2014, 12, 31, 0, 0, 0, 0, time.UTC)

	t.Run("explicit override wins", func(t *testing.T) {
		q, err := Load(testTaxonomyFS(), "tele", 2014,
			WithLogger(testLogger()), WithSchemaRef("override.xsd"))
		require.NoError(t, err)
		s := NewSubmission("CA1", period, "tele", 2014, fixedResolver(q))
		doc := generateString(t, s, WithOmitEmptyFacts())
		assert.Contains(t, doc, `xlink:href="override.xsd"`)
	})

	t.Run("fallback when namespace absent", func(t *testing.T) {
		fsys := fstest.MapFS{"bare.xsd": {Data: []byte(`<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema">
  <xs:element name="F1" type="xs:string"/>
</xs:schema>`)}}
		q, err := Load(fsys, "tele", 2014, WithLogger(testLogger()))
		require.NoError(t, err)
		s := NewSubmission("CA1", period, "tele", 2014, fixedResolver(q))
		doc := generateString(t, s, WithOmitEmptyFacts())
		assert.Contains(t, doc, `xlink:href="taxonomy.xsd"`)
	})
}

func TestGenerateOptions(t *testing.T) {
	s := testSubmission(t)
	require.NoError(t, s.Set("A5", map[string]any{"fr": 100.0}))

	doc := generateString(t, s, WithCurrency("EUR"), WithEntityScheme("urn:lei"))
	assert.Contains(t, doc, "<measure>iso4217:EUR</measure>")
	assert.Contains(t, doc, `scheme="urn:lei"`)
}
