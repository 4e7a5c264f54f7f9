package translation

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/adverse-event-server/internal/domain"
)

// NewTranslator builds the configured backend, wrapped in a cache when enabled.
// Callers should Close the result when it implements io.Closer.
func NewTranslator(ctx context.Context, config domain.TranslationConfig, logger *logrus.Logger) (domain.Translator, error) {
	var backend domain.Translator
	switch config.Provider {
	case domain.ProviderGlossary, "":
		backend = NewGlossaryTranslator()
	case domain.ProviderHTTP:
		backend = NewHTTPTranslator(config.HTTP, logger)
	case domain.ProviderLLM:
		llm, err := NewLLMTranslator(ctx, config.LLM)
		if err != nil {
			return nil, err
		}
		backend = llm
	default:
		return nil, fmt.Errorf("unknown translation provider: %s", config.Provider)
	}

	if !config.Cache.Enabled {
		return backend, nil
	}

	cached := NewCachedTranslator(backend, config.Cache.MaxItems, config.Cache.TTL, logger)
	if config.Cache.RedisURL != "" {
		if err := cached.WithRedis(ctx, config.Cache.RedisURL); err != nil {
			return nil, err
		}
	}

	logger.WithFields(logrus.Fields{
		"provider":   backend.Name(),
		"max_items":  config.Cache.MaxItems,
		"ttl":        config.Cache.TTL,
		"redis_tier": config.Cache.RedisURL != "",
	}).Info("Translation cache enabled")

	return cached, nil
}
