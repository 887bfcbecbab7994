// Package cache 基于 Redis 的读穿缓存；Redis 故障时直接回源，不影响读接口
package cache

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

var lookups = prometheus.NewCounterVec(prometheus.CounterOpts{
	Namespace: "orientation",
	Subsystem: "cache",
	Name:      "lookups_total",
	Help:      "Cache lookups by key and result (hit, miss, error)",
}, []string{"key", "result"})

func init() { prometheus.MustRegister(lookups) }

type Cache struct {
	RDB    *redis.Client
	Prefix string
	sf     singleflight.Group
}

func New(addr, pass string, db int) *Cache {
	return &Cache{
		RDB: redis.NewClient(&redis.Options{
			Addr:         addr,
			Password:     pass,
			DB:           db,
			DialTimeout:  2 * time.Second,
			ReadTimeout:  500 * time.Millisecond,
			WriteTimeout: 500 * time.Millisecond,
			MaxRetries:   1,
		}),
		Prefix: "orientation:",
	}
}

func (c *Cache) Ping(ctx context.Context) error { return c.RDB.Ping(ctx).Err() }

func (c *Cache) key(k string) string { return c.Prefix + k }

// GetOrLoad 未命中时同 key 只回源一次；回源不受单个调用方取消影响
func (c *Cache) GetOrLoad(ctx context.Context, key string, ttl time.Duration, load func(context.Context) ([]byte, error)) ([]byte, error) {
	full := c.key(key)
	b, err := c.RDB.Get(ctx, full).Bytes()
	switch {
	case err == nil:
		lookups.WithLabelValues(key, "hit").Inc()
		return b, nil
	case errors.Is(err, redis.Nil):
		lookups.WithLabelValues(key, "miss").Inc()
	default:
		lookups.WithLabelValues(key, "error").Inc()
	}

	ch := c.sf.DoChan(full, func() (any, error) {
		bg := context.WithoutCancel(ctx)
		b, e := load(bg)
		if e != nil {
			return nil, e
		}
		// 写缓存失败只影响下一次命中率
		_ = c.RDB.Set(bg, full, b, ttl).Err()
		return b, nil
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-ch:
		if r.Err != nil {
			return nil, r.Err
		}
		return r.Val.([]byte), nil
	}
}

func (c *Cache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = c.key(k)
	}
	return c.RDB.Del(ctx, full...).Err()
}

func (c *Cache) Close() error { return c.RDB.Close() }
