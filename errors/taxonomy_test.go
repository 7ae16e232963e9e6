package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaxonomyError(t *testing.T) {
	t.Run("code and message", func(t *testing.T) {
		err := New(ErrMissingFile, "no schema file", "taxonomies/tele/2014")
		assert.Equal(t, "[taxonomy-missing-file] no schema file in taxonomies/tele/2014", err.Error())
	})

	t.Run("location context", func(t *testing.T) {
		err := Newf(ErrUnknownFieldRef, "structure.xml", "unknown field %q", "a9")
		err.Location = "section 2, subsection 1"
		assert.Contains(t, err.Error(), `unknown field "a9"`)
		assert.Contains(t, err.Error(), "at section 2, subsection 1")
	})

	t.Run("nested cause", func(t *testing.T) {
		cause := fmt.Errorf("unexpected EOF")
		err := Wrap(ErrMalformedFile, "parse schema", "schema.xsd", cause)
		assert.ErrorContains(t, err, "unexpected EOF")
		assert.Equal(t, cause, err.Unwrap())
	})

	t.Run("nil receiver", func(t *testing.T) {
		var err *Taxonomy
		assert.Equal(t, "taxonomy <nil>", err.Error())
		assert.Nil(t, err.Unwrap())
	})
}

func TestAsTaxonomy(t *testing.T) {
	t.Run("direct", func(t *testing.T) {
		err := New(ErrDuplicateFieldRef, "field referenced twice", "")
		got, ok := AsTaxonomy(err)
		require.True(t, ok)
		assert.Equal(t, string(ErrDuplicateFieldRef), got.Code)
	})

	t.Run("wrapped", func(t *testing.T) {
		err := fmt.Errorf("load taxonomy: %w", New(ErrTooManyFields, "11000 fields", "schema.xsd"))
		got, ok := AsTaxonomy(err)
		require.True(t, ok)
		assert.Equal(t, string(ErrTooManyFields), got.Code)
	})

	t.Run("not taxonomy", func(t *testing.T) {
		_, ok := AsTaxonomy(fmt.Errorf("plain"))
		assert.False(t, ok)
	})

	t.Run("nil", func(t *testing.T) {
		_, ok := AsTaxonomy(nil)
		assert.False(t, ok)
	})
}

func TestHasCode(t *testing.T) {
	err := fmt.Errorf("outer: %w", New(ErrUnknownYear, "no 2015", ""))
	assert.True(t, HasCode(err, ErrUnknownYear))
	assert.False(t, HasCode(err, ErrUnknownIndustry))
}
