package sessions

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// package-level Redis client used for the token blacklist (optional)
var blacklistClient *redis.Client

// SetBlacklistClient configures the Redis client used for blacklist
// operations. Safe to call with nil to disable blacklist features.
func SetBlacklistClient(c *redis.Client) {
	blacklistClient = c
}

// BlacklistToken stores the given bearer token in the Redis blacklist
// with a TTL covering its remaining lifetime. Tokens land here on
// logout; the auth middleware rejects them afterwards. If no Redis
// client is configured, this is a no-op and returns nil.
func BlacklistToken(ctx context.Context, token string, ttl time.Duration) error {
	if blacklistClient == nil {
		return nil
	}
	return blacklistClient.Set(ctx, "blacklist:token:"+token, "1", ttl).Err()
}

// IsTokenBlacklisted returns true when the token exists in the
// blacklist. If no Redis client is configured, returns (false, nil).
func IsTokenBlacklisted(ctx context.Context, token string) (bool, error) {
	if blacklistClient == nil {
		return false, nil
	}
	exists, err := blacklistClient.Exists(ctx, "blacklist:token:"+token).Result()
	if err != nil {
		return false, err
	}
	return exists > 0, nil
}
