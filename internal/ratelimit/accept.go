package ratelimit

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/heirloomlabs/heirloom/internal/config"
	redis "github.com/redis/go-redis/v9"
)

const keyInvitationAccept = "invitation:accept:user:%s"

// AcceptLimiter throttles invitation accept attempts per caller. Accept is
// the only endpoint worth brute-forcing, since tokens arrive out of band.
// With redis configured the token bucket is shared across instances;
// without it each instance falls back to an in-process fixed window.
type AcceptLimiter struct {
	enabled bool

	bucket   *TokenBucket
	fallback *FixedWindow

	rate  float64
	burst int
}

func NewAcceptLimiter(cfg config.Config) *AcceptLimiter {
	limiter := &AcceptLimiter{
		enabled: true,
		rate:    cfg.AcceptRatePerSecond,
		burst:   cfg.AcceptBurst,
	}

	addr := strings.TrimSpace(cfg.RedisAddr)
	if addr == "" {
		limiter.fallback = NewFixedWindow(windowFor(cfg.AcceptRatePerSecond, cfg.AcceptBurst), cfg.AcceptBurst)
		return limiter
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: strings.TrimSpace(cfg.RedisPassword),
	})
	limiter.bucket = NewTokenBucket(client)

	return limiter
}

func (l *AcceptLimiter) Enabled() bool {
	return l != nil && l.enabled
}

// Allow fails open on redis errors so a cache outage never blocks accepts.
func (l *AcceptLimiter) Allow(ctx context.Context, userID snowflake.ID) (bool, error) {
	if !l.Enabled() {
		return true, nil
	}

	key := fmt.Sprintf(keyInvitationAccept, userID.String())
	if l.bucket != nil {
		return l.bucket.Allow(ctx, key, l.rate, l.burst)
	}
	return l.fallback.Allow(key), nil
}

// windowFor sizes the fixed window so burst attempts are allowed over the
// span the token bucket would need to refill them.
func windowFor(rate float64, burst int) time.Duration {
	if rate <= 0 || burst <= 0 {
		return time.Second
	}
	return time.Duration(float64(burst) / rate * float64(time.Second))
}
