package security

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// ErrLimiterUnavailable is returned alongside an allow decision when Redis is not connected.
var ErrLimiterUnavailable = errors.New("rate limiter unavailable - Redis not connected")

// UploadLimiter enforces registration upload limits using a Redis sliding window:
// per client IP per minute and per applicant email per day.
type UploadLimiter struct {
	client       *goredis.Client
	maxPerMinute int
	maxPerDay    int
	now          func() time.Time
}

// Lua script for sliding window rate limiting
// KEYS[1] = rate limit key
// ARGV[1] = max count allowed
// ARGV[2] = window size in seconds
// ARGV[3] = current timestamp in milliseconds
// Returns: 1 if allowed, 0 if rate limited
const uploadRateLimitScript = `
local key = KEYS[1]
local limit = tonumber(ARGV[1])
local window = tonumber(ARGV[2]) * 1000
local now = tonumber(ARGV[3])

redis.call('ZREMRANGEBYSCORE', key, 0, now - window)

local count = redis.call('ZCARD', key)
if count >= limit then
    return 0
end

redis.call('ZADD', key, now, now .. '-' .. math.random(1000000))
redis.call('PEXPIRE', key, window)
return 1
`

// NewUploadLimiter creates an upload rate limiter. A nil client disables limiting.
// Defaults: 10 uploads/min per IP, 50 uploads/day per email.
func NewUploadLimiter(client *goredis.Client, perMin, perDay int) *UploadLimiter {
	if perMin <= 0 {
		perMin = 10
	}
	if perDay <= 0 {
		perDay = 50
	}
	return &UploadLimiter{
		client:       client,
		maxPerMinute: perMin,
		maxPerDay:    perDay,
		now:          time.Now,
	}
}

// AllowUpload returns (allowed, retryAfterSeconds, error).
// Without Redis it fails open and reports ErrLimiterUnavailable.
// Redis errors fail closed.
func (ul *UploadLimiter) AllowUpload(ctx context.Context, ip, email string) (bool, int, error) {
	if ul == nil || ul.client == nil {
		return true, 0, ErrLimiterUnavailable
	}

	now := ul.now().UnixMilli()

	allowed, err := ul.checkLimit(ctx, ipKey(ip), ul.maxPerMinute, 60, now)
	if err != nil {
		return false, 60, fmt.Errorf("rate limit check failed: %w", err)
	}
	if !allowed {
		return false, 60, nil
	}

	if email != "" {
		allowed, err = ul.checkLimit(ctx, emailKey(email), ul.maxPerDay, 86400, now)
		if err != nil {
			return false, 3600, fmt.Errorf("rate limit check failed: %w", err)
		}
		if !allowed {
			return false, 3600, nil
		}
	}

	return true, 0, nil
}

func (ul *UploadLimiter) checkLimit(ctx context.Context, key string, limit, window int, now int64) (bool, error) {
	result, err := ul.client.Eval(ctx, uploadRateLimitScript, []string{key}, limit, window, now).Result()
	if err != nil {
		return false, err
	}
	allowed, ok := result.(int64)
	if !ok {
		return false, fmt.Errorf("unexpected result type from rate limit script")
	}
	return allowed == 1, nil
}

func ipKey(ip string) string {
	return "hrtracker:upload:ip:" + ip
}

// Emails are hashed so Redis never holds applicant PII.
func emailKey(email string) string {
	return "hrtracker:upload:email:" + HashValue(strings.ToLower(strings.TrimSpace(email)))
}
