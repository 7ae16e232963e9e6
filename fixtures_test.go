package taxform

import (
	"io"
	"log/slog"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/require"
)

const testSchema = `<?xml version="1.0" encoding="UTF-8"?>
<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema"
           xmlns:xbrli="http://www.xbrl.org/2003/instance"
           targetNamespace="http://regulator.example/taxonomy/tele-2014">
  <xs:element name="A1">
    <xs:simpleType>
      <xs:restriction base="xs:string">
        <xs:enumeration value="Oui"/>
        <xs:enumeration value="Non"/>
      </xs:restriction>
    </xs:simpleType>
  </xs:element>
  <xs:element name="A2" type="xbrli:monetaryItemType"/>
  <xs:element name="A3" type="xbrli:integerItemType"/>
  <xs:element name="A4">
    <xs:simpleType>
      <xs:restriction base="xs:string">
        <xs:enumeration value="cable"/>
        <xs:enumeration value="dsl"/>
        <xs:enumeration value="fibre"/>
      </xs:restriction>
    </xs:simpleType>
  </xs:element>
  <xs:element name="A5" dimensional="true">
    <xs:simpleType>
      <xs:restriction base="xbrli:percentItemType">
        <xs:minInclusive value="0"/>
        <xs:maxInclusive value="100"/>
      </xs:restriction>
    </xs:simpleType>
  </xs:element>
  <xs:element name="B2" type="xbrli:monetaryItemType"/>
</xs:schema>`

const testLabels = `<?xml version="1.0" encoding="UTF-8"?>
<linkbase xmlns="http://www.xbrl.org/2003/linkbase" xmlns:xlink="http://www.w3.org/1999/xlink">
  <labelLink>
    <label xlink:label="lab_A1" xlink:role="http://www.xbrl.org/2003/role/label" xml:lang="en">Does the company resell services?</label>
    <label xlink:label="lab_A1" xlink:role="http://www.xbrl.org/2003/role/label" xml:lang="fr">L'entreprise revend-elle des services?</label>
    <label xlink:label="lab_A2" xlink:role="http://www.xbrl.org/2003/role/label" xml:lang="en">Total revenue</label>
    <label xlink:label="lab_A5" xlink:role="http://www.xbrl.org/2003/role/label" xml:lang="en">Revenue percentage by language</label>
    <label xlink:label="lab_B2" xlink:role="http://www.xbrl.org/2003/role/label" xml:lang="en">Resale revenue</label>
    <label xlink:label="lab_B2" xlink:role="http://www.xbrl.org/2003/role/verboseLabel" xml:lang="en">Report revenue from &lt;i&gt;resold&lt;/i&gt; services only.</label>
  </labelLink>
</linkbase>`

const testStructure = `<?xml version="1.0" encoding="UTF-8"?>
<questionnaire>
  <part title="Company Information">
    <section title="Activities">
      <subsection title="Resale">
        <question field="A1">
          <instructions lang="en">Answer yes if any resale occurred.</instructions>
          <instructions lang="fr">Répondez oui si une revente a eu lieu.</instructions>
        </question>
        <question field="B2"/>
      </subsection>
    </section>
  </part>
  <part title="Financials">
    <section title="Revenue">
      <subsection title="Totals">
        <question field="A2" number="2.1"/>
        <question field="A3"/>
      </subsection>
      <subsection title="Breakdown">
        <question field="A4"/>
        <question field="A5"/>
      </subsection>
    </section>
  </part>
</questionnaire>`

const testRules = `output A1-B2
$A1 == true and $B2 > 0
message "Resale revenue is required when the company resells services"

output totals-sum
$A2 + $B2 == $A3
message "totals must agree"
`

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testTaxonomyFS() fstest.MapFS {
	return fstest.MapFS{
		"tele-2014.xsd":       {Data: []byte(testSchema)},
		"tele-2014-label.xml": {Data: []byte(testLabels)},
		"tele-structure.xml":  {Data: []byte(testStructure)},
		"tele-rules.rul":      {Data: []byte(testRules)},
	}
}

func loadTestQuestionnaire(t *testing.T) *Questionnaire {
	t.Helper()
	q, err := Load(testTaxonomyFS(), "tele", 2014, WithLogger(testLogger()))
	require.NoError(t, err)
	return q
}

// fixedResolver resolves every industry/year to the same questionnaire.
func fixedResolver(q *Questionnaire) Resolver {
	return ResolverFunc(func(string, int) (*Questionnaire, error) {
		return q, nil
	})
}

func testSubmission(t *testing.T) *Submission {
	t.Helper()
	q := loadTestQuestionnaire(t)
	period := time.Date(2014, 12, 31, 0, 0, 0, 0, time.UTC)
	return NewSubmission("CA1234567", period, "tele", 2014, fixedResolver(q))
}
