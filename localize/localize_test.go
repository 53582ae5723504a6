package localize_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nielsvanzon/SCIM-SDK/localize"
)

func TestTranslateReturnsLocalizedMessageForKnownKey(t *testing.T) {
	bundle, err := localize.NewBundle()
	require.NoError(t, err)

	en := localize.New(bundle, "en")
	assert.Equal(t, "Resource not found.", en.Translate("notFound", "fallback"))

	fr := localize.New(bundle, "fr")
	assert.Equal(t, "Ressource introuvable.", fr.Translate("notFound", "fallback"))
}

func TestTranslateFallsBackForUnknownKey(t *testing.T) {
	bundle, err := localize.NewBundle()
	require.NoError(t, err)

	en := localize.New(bundle, "en")
	assert.Equal(t, "fallback detail", en.Translate("notARealScimType", "fallback detail"))
}

func TestTranslateOnNilLocalizerReturnsFallback(t *testing.T) {
	var l *localize.Localizer
	assert.Equal(t, "fallback", l.Translate("notFound", "fallback"))
}
