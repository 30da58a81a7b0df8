// Package cache holds the Redis-backed preview result cache. The cache is a
// transparent optimization: preview results are deterministic for a given
// request and state version, so serving a cached body never changes what the
// caller sees.
package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/planforge/planforge-backend/internal/platform/envutil"
	"github.com/planforge/planforge-backend/internal/platform/logger"
)

type PreviewCache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, body []byte, ttl time.Duration) error
	Close() error
}

type previewCache struct {
	log    *logger.Logger
	rdb    *goredis.Client
	prefix string
}

// NewPreviewCache connects to REDIS_ADDR. A missing address is not an error
// for the caller to handle specially; it returns (nil, error) and the preview
// service simply runs uncached.
func NewPreviewCache(log *logger.Logger) (PreviewCache, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	addr := strings.TrimSpace(envutil.Get("REDIS_ADDR", "", log))
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &previewCache{
		log:    log.With("service", "PreviewCache"),
		rdb:    rdb,
		prefix: "reschedule:preview:",
	}, nil
}

func (c *previewCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	body, err := c.rdb.Get(ctx, c.prefix+key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("preview cache get: %w", err)
	}
	return body, true, nil
}

func (c *previewCache) Set(ctx context.Context, key string, body []byte, ttl time.Duration) error {
	if err := c.rdb.Set(ctx, c.prefix+key, body, ttl).Err(); err != nil {
		return fmt.Errorf("preview cache set: %w", err)
	}
	return nil
}

func (c *previewCache) Close() error {
	return c.rdb.Close()
}
