package access

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/umakantv/go-utils/errs"
	"github.com/umakantv/go-utils/httpserver"
	"github.com/umakantv/go-utils/logger"
	"go.uber.org/zap"
)

// Result describes the state of a client's current window after a hit.
type Result struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetIn   time.Duration
}

// Limiter counts hits per key over fixed windows.
type Limiter interface {
	Allow(ctx context.Context, key string) (Result, error)
}

// MemoryLimiter is a fixed-window limiter for a single process.
type MemoryLimiter struct {
	max    int
	window time.Duration
	now    func() time.Time

	mu      sync.Mutex
	windows map[string]*fixedWindow
}

type fixedWindow struct {
	count int
	reset time.Time
}

func NewMemoryLimiter(max int, window time.Duration) *MemoryLimiter {
	return &MemoryLimiter{max: max, window: window, now: time.Now, windows: map[string]*fixedWindow{}}
}

func (l *MemoryLimiter) Allow(_ context.Context, key string) (Result, error) {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	w, ok := l.windows[key]
	if !ok || !now.Before(w.reset) {
		if len(l.windows) > 10000 {
			l.sweep(now)
		}
		w = &fixedWindow{reset: now.Add(l.window)}
		l.windows[key] = w
	}
	w.count++

	return result(w.count, l.max, w.reset.Sub(now)), nil
}

// sweep drops finished windows. Callers hold mu.
func (l *MemoryLimiter) sweep(now time.Time) {
	for k, w := range l.windows {
		if !now.Before(w.reset) {
			delete(l.windows, k)
		}
	}
}

// RateLimitKeyPrefix namespaces limiter counters in Redis.
const RateLimitKeyPrefix = "ratelimit:"

// RedisLimiter is a fixed-window limiter shared by every instance using the same Redis.
type RedisLimiter struct {
	client *redis.Client
	max    int
	window time.Duration
}

func NewRedisLimiter(client *redis.Client, max int, window time.Duration) *RedisLimiter {
	return &RedisLimiter{client: client, max: max, window: window}
}

// fixedWindowScript increments the counter and starts the window on the first hit only.
var fixedWindowScript = redis.NewScript(`
local count = redis.call('INCR', KEYS[1])
if count == 1 then
	redis.call('PEXPIRE', KEYS[1], ARGV[1])
end
return {count, redis.call('PTTL', KEYS[1])}
`)

func (l *RedisLimiter) Allow(ctx context.Context, key string) (Result, error) {
	raw, err := fixedWindowScript.Run(ctx, l.client, []string{RateLimitKeyPrefix + key}, l.window.Milliseconds()).Result()
	if err != nil {
		return Result{}, fmt.Errorf("rate limit counter: %w", err)
	}

	vals, ok := raw.([]interface{})
	if !ok || len(vals) != 2 {
		return Result{}, fmt.Errorf("rate limit counter: unexpected reply %v", raw)
	}
	count, _ := vals[0].(int64)
	ttl, _ := vals[1].(int64)

	resetIn := time.Duration(ttl) * time.Millisecond
	if resetIn <= 0 {
		resetIn = l.window
	}
	return result(int(count), l.max, resetIn), nil
}

func result(count, max int, resetIn time.Duration) Result {
	remaining := max - count
	if remaining < 0 {
		remaining = 0
	}
	return Result{Allowed: count <= max, Limit: max, Remaining: remaining, ResetIn: resetIn}
}

// ClientAddr returns the address requests are counted against. With trustProxy
// the first X-Forwarded-For entry wins.
func ClientAddr(r *http.Request, trustProxy bool) string {
	if trustProxy {
		if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
			return strings.TrimSpace(strings.Split(fwd, ",")[0])
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// RateLimit wraps next with per-client-address limiting.
func RateLimit(l Limiter, trustProxy bool, next httpserver.HandlerFunc) httpserver.HandlerFunc {
	return httpserver.HandlerFunc(func(ctx context.Context, w http.ResponseWriter, r *http.Request) {
		res, err := l.Allow(ctx, ClientAddr(r, trustProxy))
		if err != nil {
			logger.Error("Rate limiter unavailable", zap.Error(err))
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(errs.NewInternalServerError("Server error"))
			return
		}

		resetSecs := strconv.Itoa(int(math.Ceil(res.ResetIn.Seconds())))
		w.Header().Set("RateLimit-Limit", strconv.Itoa(res.Limit))
		w.Header().Set("RateLimit-Remaining", strconv.Itoa(res.Remaining))
		w.Header().Set("RateLimit-Reset", resetSecs)

		if !res.Allowed {
			w.Header().Set("Retry-After", resetSecs)
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			json.NewEncoder(w).Encode(map[string]string{"message": "Too many requests, please try again later."})
			return
		}
		next(ctx, w, r)
	})
}
