package classify

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/lukasbauer/echojournal/internal/mood"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// CacheConfig configures the Redis score cache.
type CacheConfig struct {
	Prefix string        // key prefix, default "moods"
	TTL    time.Duration // 0 = no expiry
}

// Cache is a read-through Redis cache in front of a Model. Keys are
// "{prefix}:{xxhash64(text)}". Redis errors are logged and the request falls
// through to the wrapped model.
type Cache struct {
	next   Model
	rdb    redis.Cmdable
	prefix string
	ttl    time.Duration
	logger logrus.FieldLogger
}

// NewCache wraps next with a Redis cache.
func NewCache(next Model, rdb redis.Cmdable, cfg CacheConfig, logger logrus.FieldLogger) *Cache {
	if cfg.Prefix == "" {
		cfg.Prefix = "moods"
	}
	return &Cache{
		next:   next,
		rdb:    rdb,
		prefix: cfg.Prefix,
		ttl:    cfg.TTL,
		logger: logger.WithField("component", "classify_cache"),
	}
}

func (c *Cache) key(text string) string {
	return c.prefix + ":" + strconv.FormatUint(xxhash.Sum64String(text), 16)
}

// Classify returns cached scores for text or asks the wrapped model.
func (c *Cache) Classify(ctx context.Context, text string) ([]mood.Mood, error) {
	key := c.key(text)

	raw, err := c.rdb.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var scores []mood.Mood
		if jerr := json.Unmarshal(raw, &scores); jerr == nil {
			return scores, nil
		}
		c.logger.WithField("key", key).Warn("discarding undecodable cache entry")
	case errors.Is(err, redis.Nil):
	default:
		c.logger.WithError(err).Warn("cache read failed")
	}

	scores, err := c.next.Classify(ctx, text)
	if err != nil {
		return nil, err
	}

	if b, jerr := json.Marshal(scores); jerr == nil {
		if serr := c.rdb.Set(ctx, key, b, c.ttl).Err(); serr != nil {
			c.logger.WithError(serr).Warn("cache write failed")
		}
	}
	return scores, nil
}
