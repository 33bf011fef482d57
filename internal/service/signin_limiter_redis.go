package service

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisSignInFailureScript = `
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("EXPIRE", KEYS[1], ARGV[1])
end
return current
`

type redisSignInLimiter struct {
	client redisLimiterClient
	window time.Duration
	max    int
	prefix string
}

type redisLimiterClient interface {
	Eval(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd
	Get(ctx context.Context, key string) *redis.StringCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// NewRedisSignInLimiter comparte el conteo de fallos entre instancias.
// Ante errores de Redis el limitador no bloquea.
func NewRedisSignInLimiter(client *redis.Client, window time.Duration, max int) SignInLimiter {
	if client == nil {
		return nil
	}
	if window <= 0 {
		window = time.Minute
	}
	if max <= 0 {
		max = 1
	}
	return &redisSignInLimiter{
		client: client,
		window: window,
		max:    max,
		prefix: "ai3d:signin:fail:",
	}
}

func (l *redisSignInLimiter) Blocked(key string) bool {
	if l == nil || l.client == nil {
		return false
	}
	normalizedKey := normalizeLimiterKey(key)
	if normalizedKey == "" {
		return false
	}
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	// Una clave inexistente (redis.Nil) o un error de Redis no bloquean.
	count, err := l.client.Get(ctx, l.prefix+normalizedKey).Int()
	if err != nil {
		return false
	}
	return count >= l.max
}

func (l *redisSignInLimiter) RecordFailure(key string) {
	if l == nil || l.client == nil {
		return
	}
	normalizedKey := normalizeLimiterKey(key)
	if normalizedKey == "" {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	seconds := int(l.window.Seconds())
	if seconds <= 0 {
		seconds = 60
	}
	_ = l.client.Eval(ctx, redisSignInFailureScript, []string{l.prefix + normalizedKey}, seconds).Err()
}

func (l *redisSignInLimiter) Reset(key string) {
	if l == nil || l.client == nil {
		return
	}
	normalizedKey := normalizeLimiterKey(key)
	if normalizedKey == "" {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	_ = l.client.Del(ctx, l.prefix+normalizedKey).Err()
}
