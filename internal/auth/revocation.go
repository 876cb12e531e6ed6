package auth

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const revokedKeyPrefix = "crew:revoked:"

// RevocationList records signed-out assertions until they would have expired anyway.
type RevocationList interface {
	Revoke(ctx context.Context, tokenID string, until time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// RedisRevocationList stores revoked token IDs in Redis with a TTL matching the token.
type RedisRevocationList struct {
	client *redis.Client
	now    func() time.Time
}

var _ RevocationList = (*RedisRevocationList)(nil)

// NewRedisRevocationList wraps a go-redis client.
func NewRedisRevocationList(client *redis.Client) *RedisRevocationList {
	return &RedisRevocationList{client: client, now: time.Now}
}

// Revoke marks tokenID revoked until the given expiry.
func (r *RedisRevocationList) Revoke(ctx context.Context, tokenID string, until time.Time) error {
	if r == nil || r.client == nil {
		return errors.New("redis client not configured")
	}
	ttl := until.Sub(r.now())
	if ttl <= 0 {
		return nil
	}
	return r.client.Set(ctx, revokedKeyPrefix+tokenID, "1", ttl).Err()
}

// IsRevoked reports whether tokenID was revoked. Redis failures are returned so callers fail closed.
func (r *RedisRevocationList) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	if r == nil || r.client == nil {
		return false, errors.New("redis client not configured")
	}
	n, err := r.client.Exists(ctx, revokedKeyPrefix+tokenID).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
