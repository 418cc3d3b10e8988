package middlewares

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/geocoder89/jobboard/internal/observability"
	"github.com/gin-gonic/gin"
)

// Counter counts hits per key inside a fixed window. It returns the count
// including this hit and the time left in the window.
type Counter interface {
	Incr(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error)
}

type RateLimiter struct {
	counter Counter
	window  time.Duration
	limit   int
	prom    *observability.Prom
}

func NewRateLimiter(counter Counter, limit int, window time.Duration, prom *observability.Prom) *RateLimiter {
	if counter == nil {
		counter = NewMemoryCounter()
	}
	if window <= 0 {
		window = time.Minute
	}

	return &RateLimiter{
		counter: counter,
		limit:   limit,
		window:  window,
		prom:    prom,
	}
}

// Middleware returns a gin.HandlerFunc that enforces rate limit for a derived key.
// When the counter backend fails the request is let through.
func (rl *RateLimiter) RateLimiterMiddleware(keyFn func(*gin.Context) string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if rl.limit <= 0 {
			c.Next()
			return
		}

		key := keyFn(c)

		if key == "" {
			// fallback to IP if key cannot be derived
			key = clientIP(c)
		}

		route := c.FullPath()
		count, ttl, err := rl.counter.Incr(c.Request.Context(), "rl:"+route+":"+key, rl.window)
		if err != nil {
			slog.Default().WarnContext(c.Request.Context(), "rate limiter unavailable", "err", err, "route", route)
			c.Next()
			return
		}

		if count > int64(rl.limit) {
			retryAfter := int(ttl.Round(time.Second).Seconds())
			if retryAfter < 1 {
				retryAfter = 1
			}

			rl.prom.ObserveRateLimited(route)

			c.Header("Retry-After", strconv.Itoa(retryAfter))
			abortError(c, http.StatusTooManyRequests, "rate_limited", "Too many requests. Please try again shortly.")
			return
		}

		c.Next()
	}
}

// MemoryCounter keeps windows in process memory. It only limits a single
// instance of the api; use the redis counter when running replicas.
// Expired buckets are swept on Incr once the map grows past sweepAt.
type MemoryCounter struct {
	mu      sync.Mutex
	clients map[string]*clientBucket
	now     func() time.Time
	sweepAt int
}

const defaultSweepAt = 1024

type clientBucket struct {
	count     int64
	windowEnd time.Time
}

func NewMemoryCounter() *MemoryCounter {
	return &MemoryCounter{
		clients: make(map[string]*clientBucket),
		now:     time.Now,
		sweepAt: defaultSweepAt,
	}
}

func (m *MemoryCounter) Incr(_ context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()

	b, ok := m.clients[key]

	if !ok || now.After(b.windowEnd) {
		if len(m.clients) >= m.sweepAt {
			for k, cb := range m.clients {
				if now.After(cb.windowEnd) {
					delete(m.clients, k)
				}
			}
		}

		m.clients[key] = &clientBucket{
			count:     1,
			windowEnd: now.Add(window),
		}
		return 1, window, nil
	}

	b.count++

	return b.count, b.windowEnd.Sub(now), nil
}

// helper functions

// for unauthenticated endpoints: rate limit by IP
func KeyByIP(c *gin.Context) string {
	return clientIP(c)
}

// For authenticated endpoints: rate limit by userID if available
func KeyByUserOrIP(c *gin.Context) string {
	id, ok := UserIDFromContext(c)

	if ok && id != "" {
		return "user:" + id
	}

	return clientIP(c)
}

func clientIP(c *gin.Context) string {
	// Gin's ClientIP respects X-Forwarded-For / X-Real-IP if configured.
	ip := c.ClientIP()

	host, _, err := net.SplitHostPort(ip)

	if err == nil && host != "" {
		return host
	}

	return ip
}
