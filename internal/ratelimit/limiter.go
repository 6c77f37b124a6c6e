package ratelimit

import (
	"context"
	"fmt"
	"strings"
	"time"

	"permasnap/internal/config"
)

// KeyPrefix namespaces every counter this package creates.
const KeyPrefix = "permasnap:ratelimit:"

// Decision reports the outcome of one Allow call.
type Decision struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// Limiter counts requests per key in fixed windows.
type Limiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (Decision, error)
}

// NewFromConfig returns a redis-backed limiter when a redis address is
// configured and an in-process limiter otherwise.
func NewFromConfig(cfg *config.Config) (Limiter, error) {
	if cfg == nil {
		return nil, fmt.Errorf("ratelimit: config required")
	}
	if addr := strings.TrimSpace(cfg.Server.RedisAddr); addr != "" {
		return NewRedisLimiter(RedisConfig{
			Addr:     addr,
			Password: cfg.Server.RedisPassword,
			DB:       cfg.Server.RedisDB,
		})
	}
	return NewMemoryLimiter(MemoryConfig{}), nil
}

func unlimited(limit int) Decision {
	return Decision{Allowed: true, Limit: limit, Remaining: limit}
}
