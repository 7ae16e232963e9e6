package taxform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/text/language"
)

func TestLocalizedTextResolve(t *testing.T) {
	text := LocalizedText{
		"en": "Total revenue",
		"fr": "Revenu total",
	}

	t.Run("exact match", func(t *testing.T) {
		assert.Equal(t, "Revenu total", text.Resolve(language.French, language.English))
	})

	t.Run("regional variant matches base language", func(t *testing.T) {
		assert.Equal(t, "Revenu total", text.Resolve(language.CanadianFrench, language.English))
		assert.Equal(t, "Total revenue", text.Resolve(language.AmericanEnglish, language.French))
	})

	t.Run("unknown locale falls back", func(t *testing.T) {
		assert.Equal(t, "Total revenue", text.Resolve(language.German, language.English))
	})

	t.Run("both locales unknown picks first available", func(t *testing.T) {
		only := LocalizedText{"fr": "Revenu total"}
		assert.Equal(t, "Revenu total", only.Resolve(language.German, language.Japanese))
	})

	t.Run("empty map resolves to empty string", func(t *testing.T) {
		assert.Equal(t, "", LocalizedText{}.Resolve(language.English, language.English))
		assert.Equal(t, "", LocalizedText(nil).Resolve(language.English, language.English))
	})

	t.Run("unparseable tags are skipped", func(t *testing.T) {
		text := LocalizedText{"!!": "garbage", "en": "Total revenue"}
		assert.Equal(t, "Total revenue", text.Resolve(language.English, language.French))
	})
}

func TestLocalizedTextClone(t *testing.T) {
	orig := LocalizedText{"en": "Total revenue"}
	cp := orig.clone()
	cp["en"] = "changed"
	assert.Equal(t, "Total revenue", orig["en"])

	assert.Nil(t, LocalizedText(nil).clone())
}
