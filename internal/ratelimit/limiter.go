package ratelimit

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	ErrRateLimitExceeded = errors.New("rate limit exceeded")
	ErrRedisUnavailable  = errors.New("redis unavailable")
)

type LimitConfig struct {
	Rate   int           `yaml:"rate"`
	Window time.Duration `yaml:"window"`
}

type Decision struct {
	Limit      int
	Remaining  int
	RetryAfter int // Seconds
	Allowed    bool
}

type Limiter struct {
	client *redis.Client
	salt   string // For IP hashing stability
}

func NewLimiter(client *redis.Client, salt string) *Limiter {
	if salt == "" {
		salt = "default-salt-change-me"
	}
	return &Limiter{client: client, salt: salt}
}

// HashIP creates a privacy-safe hash of the IP
func (l *Limiter) HashIP(ip string) string {
	hash := sha256.Sum256([]byte(ip + l.salt))
	return hex.EncodeToString(hash[:])
}

// Check applies a fixed window counter to the key. Redis being down
// fails closed for login: the caller decides.
func (l *Limiter) Check(ctx context.Context, key string, config LimitConfig) (*Decision, error) {
	if config.Rate <= 0 {
		return &Decision{Allowed: true, Limit: config.Rate, Remaining: 1}, nil
	}

	redisKey := fmt.Sprintf("ratelimit:%s", key)

	count, err := l.client.Incr(ctx, redisKey).Result()
	if err != nil {
		return nil, ErrRedisUnavailable
	}
	if count == 1 {
		l.client.Expire(ctx, redisKey, config.Window)
	}

	d := &Decision{
		Limit:   config.Rate,
		Allowed: count <= int64(config.Rate),
	}
	if remaining := config.Rate - int(count); remaining > 0 {
		d.Remaining = remaining
	}
	if !d.Allowed {
		ttl, err := l.client.TTL(ctx, redisKey).Result()
		if err == nil && ttl > 0 {
			d.RetryAfter = int(ttl.Seconds())
		} else {
			d.RetryAfter = int(config.Window.Seconds())
		}
	}
	return d, nil
}
