package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func getRedisClient(t *testing.T) *redis.Client {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}

	client, err := NewRedisClient(context.Background(), addr, "", 0)
	if err != nil {
		t.Skipf("Redis not available: %v", err)
	}
	return client
}

func TestRedisSequence_Next(t *testing.T) {
	client := getRedisClient(t)
	defer client.Close()

	ctx := context.Background()
	day := "19990101"
	client.Del(ctx, sequenceKeyPrefix+day)
	defer client.Del(ctx, sequenceKeyPrefix+day)

	seq := NewRedisSequence(client)

	for want := int64(1); want <= 3; want++ {
		got, err := seq.Next(ctx, day)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	ttl, err := client.TTL(ctx, sequenceKeyPrefix+day).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, 47*time.Hour)
}

func TestRedisSequence_DaysAreIndependent(t *testing.T) {
	client := getRedisClient(t)
	defer client.Close()

	ctx := context.Background()
	days := []string{"19990102", "19990103"}
	for _, d := range days {
		client.Del(ctx, sequenceKeyPrefix+d)
		defer client.Del(ctx, sequenceKeyPrefix+d)
	}

	seq := NewRedisSequence(client)

	_, err := seq.Next(ctx, days[0])
	require.NoError(t, err)
	_, err = seq.Next(ctx, days[0])
	require.NoError(t, err)

	got, err := seq.Next(ctx, days[1])
	require.NoError(t, err)
	assert.Equal(t, int64(1), got)
}
