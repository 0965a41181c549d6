package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"

	"interview-coach-backend/config"
	"interview-coach-backend/internal/delivery/http/response"
	"interview-coach-backend/pkg/redis"
	"interview-coach-backend/pkg/security"
)

type RateLimitConfig struct {
	Limit  int
	Window time.Duration
	// KeyFunc defaults to the client IP
	KeyFunc   func(*gin.Context) string
	KeyPrefix string
	// FailClosed answers 503 on Redis errors instead of counting in memory
	FailClosed bool
	Message    string
}

// fixedWindow counts hits per key within a window that starts at the first hit.
type fixedWindow interface {
	Hit(ctx context.Context, key string, window time.Duration) (count int, resetAt time.Time, err error)
}

// Lua keeps INCR and the first EXPIRE atomic. Returns {count, ttl}.
var incrWindowScript = goredis.NewScript(`
local count = redis.call('INCR', KEYS[1])
if count == 1 then
    redis.call('EXPIRE', KEYS[1], ARGV[1])
end
return {count, redis.call('TTL', KEYS[1])}
`)

type redisWindow struct {
	client *goredis.Client
}

func (w redisWindow) Hit(ctx context.Context, key string, window time.Duration) (int, time.Time, error) {
	res, err := incrWindowScript.Run(ctx, w.client, []string{key}, int(window.Seconds())).Int64Slice()
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("rate limit counter: %w", err)
	}
	if len(res) != 2 {
		return 0, time.Time{}, fmt.Errorf("rate limit counter: unexpected reply %v", res)
	}
	return int(res[0]), time.Now().Add(time.Duration(res[1]) * time.Second), nil
}

type memoryWindow struct {
	mu       sync.Mutex
	counters map[string]*windowCounter
	lastGC   time.Time
	now      func() time.Time
}

type windowCounter struct {
	count   int
	resetAt time.Time
}

// processWindows backs every limiter when Redis is absent or failing open.
var processWindows = newMemoryWindow()

func newMemoryWindow() *memoryWindow {
	return &memoryWindow{counters: make(map[string]*windowCounter), now: time.Now}
}

func (w *memoryWindow) Hit(_ context.Context, key string, window time.Duration) (int, time.Time, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	now := w.now()
	if now.Sub(w.lastGC) > memoryGCInterval {
		for k, ctr := range w.counters {
			if !now.Before(ctr.resetAt) {
				delete(w.counters, k)
			}
		}
		w.lastGC = now
	}

	ctr, ok := w.counters[key]
	if !ok || !now.Before(ctr.resetAt) {
		ctr = &windowCounter{resetAt: now.Add(window)}
		w.counters[key] = ctr
	}
	ctr.count++
	return ctr.count, ctr.resetAt, nil
}

const (
	// maxKeyBodyBytes bounds how much of a request body is read to find the email key.
	maxKeyBodyBytes  = 64 << 10
	memoryGCInterval = 5 * time.Minute
)

func clientIPKey(c *gin.Context) string {
	return c.ClientIP()
}

// peekJSONEmail returns the lowercased "email" field of a JSON body without
// consuming it.
func peekJSONEmail(c *gin.Context) string {
	if c.Request.Body == nil {
		return ""
	}
	data, err := io.ReadAll(io.LimitReader(c.Request.Body, maxKeyBodyBytes))
	c.Request.Body = io.NopCloser(io.MultiReader(bytes.NewReader(data), c.Request.Body))
	if err != nil {
		return ""
	}

	var body struct {
		Email string `json:"email"`
	}
	if json.Unmarshal(data, &body) != nil {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(body.Email))
}

// emailOrIPKey keys on the request email, falling back to the client IP.
func emailOrIPKey(c *gin.Context) string {
	if email := peekJSONEmail(c); email != "" {
		return email
	}
	return c.ClientIP()
}

// GlobalRateLimitConfig applies to every route, per client IP.
func GlobalRateLimitConfig(cfg *config.Config) RateLimitConfig {
	return RateLimitConfig{
		Limit:     cfg.RateLimitGlobalThreshold,
		Window:    time.Duration(cfg.RateLimitWindowSeconds) * time.Second,
		KeyPrefix: "rl:ip:",
		KeyFunc:   clientIPKey,
		Message:   "Rate limit exceeded. Please try again later.",
	}
}

// LoginRateLimitConfig limits login attempts per email (or IP without one).
func LoginRateLimitConfig(cfg *config.Config) RateLimitConfig {
	return RateLimitConfig{
		Limit:      cfg.RateLimitLoginThreshold,
		Window:     time.Duration(cfg.RateLimitLoginWindowMinutes) * time.Minute,
		KeyPrefix:  "rl:login:",
		FailClosed: true,
		KeyFunc:    emailOrIPKey,
		Message:    fmt.Sprintf("Too many login attempts. Please try again after %d minutes.", cfg.RateLimitLoginWindowMinutes),
	}
}

// VerificationRateLimitConfig limits verification code requests per email.
func VerificationRateLimitConfig(cfg *config.Config) RateLimitConfig {
	return RateLimitConfig{
		Limit:      cfg.RateLimitVerifyThreshold,
		Window:     time.Duration(cfg.RateLimitVerifyWindowMinutes) * time.Minute,
		KeyPrefix:  "rl:verify:",
		FailClosed: true,
		KeyFunc:    emailOrIPKey,
		Message:    "Too many verification requests. Please try again later.",
	}
}

// VerificationConfirmRateLimitConfig limits code confirmations per email in a
// bucket separate from logins.
func VerificationConfirmRateLimitConfig(cfg *config.Config) RateLimitConfig {
	return RateLimitConfig{
		Limit:      cfg.RateLimitLoginThreshold,
		Window:     time.Duration(cfg.RateLimitLoginWindowMinutes) * time.Minute,
		KeyPrefix:  "rl:confirm:",
		FailClosed: true,
		KeyFunc:    emailOrIPKey,
		Message:    fmt.Sprintf("Too many verification attempts. Please try again after %d minutes.", cfg.RateLimitLoginWindowMinutes),
	}
}

// ScoringRateLimitConfig limits the scoring endpoints per client IP.
func ScoringRateLimitConfig(cfg *config.Config) RateLimitConfig {
	return RateLimitConfig{
		Limit:     cfg.RateLimitScoringThreshold,
		Window:    time.Minute,
		KeyPrefix: "rl:scoring:",
		KeyFunc:   clientIPKey,
		Message:   "Too many scoring requests. Please slow down.",
	}
}

// RateLimitMiddleware enforces config against Redis when it is connected and
// against process memory otherwise.
func RateLimitMiddleware(config RateLimitConfig) gin.HandlerFunc {
	if config.KeyFunc == nil {
		config.KeyFunc = clientIPKey
	}
	if config.Message == "" {
		config.Message = "Rate limit exceeded. Please try again later."
	}

	return func(c *gin.Context) {
		ctx := c.Request.Context()
		key := config.KeyPrefix + config.KeyFunc(c)

		var counter fixedWindow = processWindows
		if client := redis.Client(); client != nil {
			counter = redisWindow{client: client}
		}

		count, resetAt, err := counter.Hit(ctx, key, config.Window)
		if err != nil {
			if config.FailClosed {
				logRateLimitError(c, "redis_error", err)
				response.Error(c, http.StatusServiceUnavailable, "Service temporarily unavailable. Please try again.", nil)
				c.Abort()
				return
			}
			count, resetAt, _ = processWindows.Hit(ctx, key, config.Window)
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(config.Limit))
		c.Header("X-RateLimit-Reset", resetAt.Format(time.RFC3339))

		if count > config.Limit {
			retryAfter := int(time.Until(resetAt).Seconds())
			if retryAfter < 1 {
				retryAfter = 1
			}
			c.Header("X-RateLimit-Remaining", "0")
			c.Header("Retry-After", strconv.Itoa(retryAfter))

			logRateLimitTriggered(c)

			response.Error(c, http.StatusTooManyRequests, config.Message, gin.H{"retry_after": retryAfter})
			c.Abort()
			return
		}

		remaining := config.Limit - count
		if remaining < 0 {
			remaining = 0
		}
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))

		c.Next()
	}
}

func logRateLimitTriggered(c *gin.Context) {
	if logger := security.DefaultLogger(); logger != nil {
		logger.LogRateLimitTriggered(
			c.Request.Context(),
			c.ClientIP(),
			c.GetHeader("User-Agent"),
			c.GetString(RequestIDKey),
			c.FullPath(),
		)
	}
}

func logRateLimitError(c *gin.Context, errorType string, err error) {
	if logger := security.DefaultLogger(); logger != nil {
		logger.Log(c.Request.Context(), security.SecurityEvent{
			Event:       security.EventRateLimitTriggered,
			SubjectType: "system",
			IP:          c.ClientIP(),
			Details: map[string]interface{}{
				"error_type": errorType,
				"error":      err.Error(),
			},
		})
	}
}
