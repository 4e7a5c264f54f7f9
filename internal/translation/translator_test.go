package translation

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adverse-event-server/internal/domain"
	"github.com/adverse-event-server/internal/logging"
)

func TestNewTranslator(t *testing.T) {
	ctx := context.Background()
	logger := logging.Discard()

	t.Run("glossary without cache", func(t *testing.T) {
		tr, err := NewTranslator(ctx, domain.TranslationConfig{Provider: domain.ProviderGlossary}, logger)
		require.NoError(t, err)
		assert.IsType(t, &GlossaryTranslator{}, tr)
	})

	t.Run("glossary with cache", func(t *testing.T) {
		tr, err := NewTranslator(ctx, domain.TranslationConfig{
			Provider: domain.ProviderGlossary,
			Cache:    domain.TranslationCache{Enabled: true, MaxItems: 5, TTL: time.Minute},
		}, logger)
		require.NoError(t, err)
		cached, ok := tr.(*CachedTranslator)
		require.True(t, ok)
		assert.Equal(t, "glossary", cached.Name())

		got, err := tr.Translate(ctx, "fever", "en", "fr")
		require.NoError(t, err)
		assert.Equal(t, "fièvre", got)
	})

	t.Run("http", func(t *testing.T) {
		tr, err := NewTranslator(ctx, domain.TranslationConfig{
			Provider: domain.ProviderHTTP,
			HTTP:     domain.HTTPTranslationConfig{BaseURL: "http://localhost:5000"},
		}, logger)
		require.NoError(t, err)
		assert.Equal(t, "http", tr.Name())
	})

	t.Run("unknown provider", func(t *testing.T) {
		_, err := NewTranslator(ctx, domain.TranslationConfig{Provider: "carrier-pigeon"}, logger)
		assert.Error(t, err)
	})
}
