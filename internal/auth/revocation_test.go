package auth

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

func unreachableRedis() *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 200 * time.Millisecond,
		MaxRetries:  -1,
	})
}

func TestRedisRevocationList_FailsClosed(t *testing.T) {
	client := unreachableRedis()
	defer client.Close()
	list := NewRedisRevocationList(client)

	_, err := list.IsRevoked(context.Background(), "jti")
	assert.Error(t, err)
	assert.Error(t, list.Revoke(context.Background(), "jti", time.Now().Add(time.Hour)))
}

func TestRedisRevocationList_ExpiredTokenNeedsNoEntry(t *testing.T) {
	client := unreachableRedis()
	defer client.Close()

	err := NewRedisRevocationList(client).Revoke(context.Background(), "jti", time.Now().Add(-time.Minute))
	assert.NoError(t, err)
}

func TestRedisRevocationList_Unconfigured(t *testing.T) {
	var list *RedisRevocationList
	_, err := list.IsRevoked(context.Background(), "jti")
	assert.Error(t, err)
}
