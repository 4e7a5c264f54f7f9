package translation

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/adverse-event-server/internal/domain"
)

const redisKeyPrefix = "ae:translation:"

// CachedTranslator memoizes another Translator. Lookups go to an in-process
// LRU first, then to Redis when configured. Cache failures never fail a
// translation.
type CachedTranslator struct {
	next   domain.Translator
	memory *expirable.LRU[string, string]
	redis  *redis.Client
	ttl    time.Duration
	logger *logrus.Logger
}

// NewCachedTranslator wraps next with an LRU of maxItems entries
func NewCachedTranslator(next domain.Translator, maxItems int, ttl time.Duration, logger *logrus.Logger) *CachedTranslator {
	if maxItems <= 0 {
		maxItems = 1000
	}
	return &CachedTranslator{
		next:   next,
		memory: expirable.NewLRU[string, string](maxItems, nil, ttl),
		ttl:    ttl,
		logger: logger,
	}
}

// WithRedis connects the second cache tier
func (c *CachedTranslator) WithRedis(ctx context.Context, redisURL string) error {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return fmt.Errorf("failed to parse Redis URL: %w", err)
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}

	c.redis = client
	return nil
}

// Name reports the wrapped backend
func (c *CachedTranslator) Name() string {
	return c.next.Name()
}

// Translate returns a cached translation or delegates to the wrapped backend
func (c *CachedTranslator) Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	key := cacheKey(c.next.Name(), sourceLang, targetLang, text)

	if v, ok := c.memory.Get(key); ok {
		return v, nil
	}

	if c.redis != nil {
		v, err := c.redis.Get(ctx, redisKeyPrefix+key).Result()
		switch {
		case err == nil:
			c.memory.Add(key, v)
			return v, nil
		case !errors.Is(err, redis.Nil):
			c.logger.WithError(err).Warn("Redis translation cache lookup failed")
		}
	}

	translated, err := c.next.Translate(ctx, text, sourceLang, targetLang)
	if err != nil {
		return "", err
	}

	c.memory.Add(key, translated)
	if c.redis != nil {
		if err := c.redis.Set(ctx, redisKeyPrefix+key, translated, c.ttl).Err(); err != nil {
			c.logger.WithError(err).Warn("Redis translation cache write failed")
		}
	}
	return translated, nil
}

// Len returns the number of entries in the in-process tier
func (c *CachedTranslator) Len() int {
	return c.memory.Len()
}

// Close releases the Redis connection, if any
func (c *CachedTranslator) Close() error {
	if c.redis == nil {
		return nil
	}
	return c.redis.Close()
}

func cacheKey(provider, source, target, text string) string {
	h := sha256.New()
	for _, part := range []string{provider, strings.ToLower(source), strings.ToLower(target), text} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}
