package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/pronoelite/pronoelite-api/internal/config"
	"github.com/pronoelite/pronoelite-api/internal/metrics"
)

// bucketScript keeps {tokens, stamp} in a hash. Whole refill intervals
// elapsed since stamp are credited before one token is taken.
// KEYS[1] bucket; ARGV now_ms, capacity, refill, interval_ms, ttl_s.
// Returns {allowed, remaining, wait_ms}.
var bucketScript = redis.NewScript(`
local now, cap, refill, every, ttl =
  tonumber(ARGV[1]), tonumber(ARGV[2]), tonumber(ARGV[3]), tonumber(ARGV[4]), tonumber(ARGV[5])
local st = redis.call('HMGET', KEYS[1], 'tokens', 'stamp')
local tokens, stamp = tonumber(st[1]) or cap, tonumber(st[2]) or now
local n = math.floor(math.max(0, now - stamp) / every)
if n > 0 then
  tokens = math.min(cap, tokens + n * refill)
  stamp = stamp + n * every
end
local ok, wait = 0, 0
if tokens >= 1 then
  ok, tokens = 1, tokens - 1
else
  wait = math.max(0, every - (now - stamp))
end
redis.call('HSET', KEYS[1], 'tokens', tokens, 'stamp', stamp)
redis.call('EXPIRE', KEYS[1], ttl)
return {ok, tokens, wait}
`)

// NewTokenBucket limits requests per key with a Redis-backed token bucket.
// It is a pass-through when disabled or without Redis, and fails open on
// Redis errors.
func NewTokenBucket(cfg config.RateLimitConfig, rdb *redis.Client, log *zap.Logger) echo.MiddlewareFunc {
	if !cfg.Enabled || rdb == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	if log == nil {
		log = zap.NewNop()
	}
	limit := strconv.Itoa(cfg.Capacity)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := buildRateKey(cfg, c)
			res, err := bucketScript.Run(c.Request().Context(), rdb, []string{key},
				time.Now().UnixMilli(), cfg.Capacity, cfg.RefillTokens,
				cfg.RefillInterval.Milliseconds(), int64(cfg.TTL.Seconds()),
			).Int64Slice()
			if err != nil || len(res) != 3 {
				if cfg.Debug {
					log.Warn("rate limiter unavailable", zap.String("key", key), zap.Error(err))
				}
				return next(c)
			}

			h := c.Response().Header()
			h.Set("X-RateLimit-Limit", limit)
			h.Set("X-RateLimit-Remaining", strconv.FormatInt(res[1], 10))
			if res[0] == 1 {
				return next(c)
			}

			wait := time.Duration(res[2]) * time.Millisecond
			h.Set("Retry-After", strconv.Itoa(int((wait+time.Second-1)/time.Second)))
			metrics.RateLimited.Inc()
			if cfg.Debug {
				log.Info("rate limited", zap.String("key", key), zap.Duration("retry_in", wait))
			}
			return c.JSON(http.StatusTooManyRequests, echo.Map{"error": "rate limit exceeded"})
		}
	}
}

// keyParts lists the components each strategy combines, in key order.
var keyParts = map[string][]string{
	"ip":         {"ip"},
	"user":       {"user"},
	"route":      {"route"},
	"ip_user":    {"ip", "user"},
	"ip_route":   {"ip", "route"},
	"user_route": {"user", "route"},
}

// buildRateKey renders "<prefix>:<part>:<value>..." for the configured
// strategy. Unknown strategies key on ip, user and route together.
func buildRateKey(cfg config.RateLimitConfig, c echo.Context) string {
	parts, ok := keyParts[strings.ToLower(cfg.KeyStrategy)]
	if !ok {
		parts = []string{"ip", "user", "route"}
	}
	var b strings.Builder
	b.WriteString(cfg.Prefix)
	for _, p := range parts {
		var v string
		switch p {
		case "ip":
			if v = c.RealIP(); v == "" {
				v = "unknown"
			}
		case "user":
			v = userID(c)
		case "route":
			v = c.Request().Method + " " + c.Path()
		}
		b.WriteString(":" + p + ":" + v)
	}
	return b.String()
}
