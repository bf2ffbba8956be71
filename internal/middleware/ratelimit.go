package middleware

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Counter increments a per-window counter and returns the new count.
type Counter interface {
	Incr(ctx context.Context, key string, window time.Duration) (int, error)
}

// RedisCounter counts requests in Redis so limits hold across API replicas.
type RedisCounter struct {
	client *redis.Client
}

func NewRedisCounter(client *redis.Client) *RedisCounter {
	return &RedisCounter{client: client}
}

func (c *RedisCounter) Incr(ctx context.Context, key string, window time.Duration) (int, error) {
	pipe := c.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}
	return int(incr.Val()), nil
}

type bucket struct {
	count int
	until time.Time
}

// MemoryCounter is the single-process fallback when Redis is not configured.
type MemoryCounter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
}

func NewMemoryCounter() *MemoryCounter {
	return &MemoryCounter{buckets: make(map[string]*bucket)}
}

func (c *MemoryCounter) Incr(ctx context.Context, key string, window time.Duration) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := time.Now()
	b, ok := c.buckets[key]
	if !ok || now.After(b.until) {
		b = &bucket{until: now.Add(window)}
		c.buckets[key] = b
	}
	b.count++
	return b.count, nil
}

// RateLimit rejects clients exceeding limit requests per window. A counter
// error fails open.
func RateLimit(counter Counter, limit int, window time.Duration, log zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := "ratelimit:" + clientIPForRateLimit(r)
			count, err := counter.Incr(r.Context(), key, window)
			if err != nil {
				log.Warn().Err(err).Msg("rate limit counter unavailable")
				next.ServeHTTP(w, r)
				return
			}
			if count > limit {
				w.Header().Set("Retry-After", strconv.Itoa(int(window.Seconds())))
				w.WriteHeader(http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func clientIPForRateLimit(r *http.Request) string {
	if xf := r.Header.Get("X-Forwarded-For"); xf != "" {
		for _, part := range strings.Split(xf, ",") {
			ip := strings.TrimSpace(part)
			if ip == "" {
				continue
			}
			if net.ParseIP(ip) != nil {
				return ip
			}
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil {
		if net.ParseIP(host) != nil {
			return host
		}
	} else if net.ParseIP(r.RemoteAddr) != nil {
		return r.RemoteAddr
	}

	return r.RemoteAddr
}
