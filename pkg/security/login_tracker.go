package security

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// LoginTrackerConfig holds configuration for admin login lockout
type LoginTrackerConfig struct {
	MaxAttempts   int           // failed attempts before block (default: 5)
	AttemptWindow time.Duration // window for counting attempts (default: 15min)
	BlockDuration time.Duration // block length once MaxAttempts is reached (default: 15min)
}

// DefaultLoginTrackerConfig returns sensible defaults
func DefaultLoginTrackerConfig() LoginTrackerConfig {
	return LoginTrackerConfig{
		MaxAttempts:   5,
		AttemptWindow: 15 * time.Minute,
		BlockDuration: 15 * time.Minute,
	}
}

// LoginTracker counts failed admin logins per username in Redis and blocks the
// account temporarily. Without Redis every method is a no-op.
type LoginTracker struct {
	client *goredis.Client
	config LoginTrackerConfig
	audit  *AuditLogger
}

func NewLoginTracker(client *goredis.Client, config LoginTrackerConfig, audit *AuditLogger) *LoginTracker {
	def := DefaultLoginTrackerConfig()
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = def.MaxAttempts
	}
	if config.AttemptWindow <= 0 {
		config.AttemptWindow = def.AttemptWindow
	}
	if config.BlockDuration <= 0 {
		config.BlockDuration = def.BlockDuration
	}
	return &LoginTracker{client: client, config: config, audit: audit}
}

// Redis key patterns. Usernames are hashed.
const (
	failLoginPrefix    = "hrtracker:fail:login:"
	blockedLoginPrefix = "hrtracker:blocked:login:"
)

// KEYS[1] = counter key
// ARGV[1] = TTL in seconds
// Returns: current count after increment
const incrWithTTLScript = `
local count = redis.call('INCR', KEYS[1])
if count == 1 then
    redis.call('EXPIRE', KEYS[1], ARGV[1])
end
return count
`

func userKey(prefix, username string) string {
	return prefix + HashValue(strings.ToLower(strings.TrimSpace(username)))
}

// IsBlocked reports whether username is currently locked out.
func (lt *LoginTracker) IsBlocked(ctx context.Context, username string) (bool, error) {
	if lt == nil || lt.client == nil {
		return false, nil
	}
	exists, err := lt.client.Exists(ctx, userKey(blockedLoginPrefix, username)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check login block: %w", err)
	}
	return exists > 0, nil
}

// RecordFailedAttempt counts a failed login and blocks the username once the
// limit is reached. Returns (blocked, attempts, error).
func (lt *LoginTracker) RecordFailedAttempt(ctx context.Context, username, ip, requestID string) (bool, int, error) {
	if lt == nil || lt.client == nil {
		return false, 0, nil
	}

	result, err := lt.client.Eval(ctx, incrWithTTLScript,
		[]string{userKey(failLoginPrefix, username)}, int(lt.config.AttemptWindow.Seconds())).Result()
	if err != nil {
		return false, 0, fmt.Errorf("failed to increment login counter: %w", err)
	}
	count, ok := result.(int64)
	if !ok {
		return false, 0, errors.New("unexpected result type from Lua script")
	}

	if int(count) < lt.config.MaxAttempts {
		return false, int(count), nil
	}
	if err := lt.client.Set(ctx, userKey(blockedLoginPrefix, username), "1", lt.config.BlockDuration).Err(); err != nil {
		return true, int(count), fmt.Errorf("failed to set login block: %w", err)
	}
	lt.audit.LogLoginBlocked(ctx, username, ip, requestID, int(lt.config.BlockDuration.Minutes()))
	return true, int(count), nil
}

// ClearAttempts resets the failure counter after a successful login.
func (lt *LoginTracker) ClearAttempts(ctx context.Context, username string) error {
	if lt == nil || lt.client == nil {
		return nil
	}
	if err := lt.client.Del(ctx, userKey(failLoginPrefix, username)).Err(); err != nil {
		return fmt.Errorf("failed to clear login attempts: %w", err)
	}
	return nil
}

// BlockDuration is the lockout length, used for Retry-After.
func (lt *LoginTracker) BlockDuration() time.Duration {
	if lt == nil {
		return DefaultLoginTrackerConfig().BlockDuration
	}
	return lt.config.BlockDuration
}
