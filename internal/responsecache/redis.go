package responsecache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	apperrors "partyplnr/internal/common/errors"
	"partyplnr/internal/common/logger"
	"partyplnr/internal/common/metrics"
)

// RedisCache stores replies as JSON with the TTL as key expiry, so every
// replica shares one cache. Backend failures are logged and the reply is
// computed uncached.
type RedisCache struct {
	client redis.Cmdable
	prefix string
	ttl    time.Duration
	logger logger.Logger
	group  singleflight.Group
}

func NewRedisCache(client redis.Cmdable, prefix string, ttl time.Duration, log logger.Logger) *RedisCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisCache{
		client: client,
		prefix: prefix,
		ttl:    ttl,
		logger: log.WithFields(map[string]interface{}{"component": "responsecache", "backend": "redis"}),
	}
}

func (c *RedisCache) GetOrCompute(ctx context.Context, key string, build Builder) (Value, error) {
	if v, ok := c.get(ctx, key); ok {
		metrics.CacheLookups.WithLabelValues("redis", "hit").Inc()
		return v, nil
	}

	res, err, _ := c.group.Do(key, func() (interface{}, error) {
		if v, ok := c.get(ctx, key); ok {
			return v, nil
		}
		metrics.CacheLookups.WithLabelValues("redis", "miss").Inc()
		v, err := build(ctx)
		if err != nil {
			return Value{}, err
		}
		v.CreatedAt = time.Now()
		if !v.Degraded {
			c.set(ctx, key, v)
		}
		return v, nil
	})
	if err != nil {
		return Value{}, err
	}
	return res.(Value), nil
}

func (c *RedisCache) get(ctx context.Context, key string) (Value, bool) {
	raw, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return Value{}, false
	}
	if err != nil {
		c.degrade("get", err)
		return Value{}, false
	}

	var v Value
	if err := json.Unmarshal(raw, &v); err != nil {
		c.degrade("decode", err)
		return Value{}, false
	}
	if !fresh(v, time.Now(), c.ttl) {
		return Value{}, false
	}
	return v, true
}

func (c *RedisCache) set(ctx context.Context, key string, v Value) {
	raw, err := json.Marshal(v)
	if err != nil {
		c.degrade("encode", err)
		return
	}
	if err := c.client.Set(ctx, c.prefix+key, raw, c.ttl).Err(); err != nil {
		c.degrade("set", err)
	}
}

func (c *RedisCache) degrade(op string, err error) {
	stdErr := apperrors.NewCacheBackendFailedError(op, err)
	metrics.CacheLookups.WithLabelValues("redis", "error").Inc()
	c.logger.Warn("response cache degraded", map[string]interface{}{
		"errorCode": string(stdErr.Code),
		"details":   stdErr.Details,
	})
}
