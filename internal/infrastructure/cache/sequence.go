package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	domainRepo "github.com/sangkips/shopdesk-api/internal/domain/repository"
)

const (
	sequenceKeyPrefix = "sale:seq:"
	sequenceKeyTTL    = 48 * time.Hour
)

// INCR and the first EXPIRE run as one step so a key never outlives its day by more than the TTL.
var nextSequenceScript = redis.NewScript(`
local value = redis.call('INCR', KEYS[1])
if value == 1 then
	redis.call('EXPIRE', KEYS[1], ARGV[1])
end
return value
`)

// RedisSequence hands out transaction sequence numbers from one Redis key
// per day, shared by every API instance.
type RedisSequence struct {
	client *redis.Client
}

// NewRedisSequence creates a per-day counter backed by Redis.
// Numbers taken by a rolled back sale are not reused.
func NewRedisSequence(client *redis.Client) domainRepo.SequenceGenerator {
	return &RedisSequence{client: client}
}

func (r *RedisSequence) Next(ctx context.Context, day string) (int64, error) {
	return nextSequenceScript.Run(ctx, r.client,
		[]string{sequenceKeyPrefix + day},
		int(sequenceKeyTTL.Seconds()),
	).Int64()
}

// NewRedisClient connects to Redis and verifies the connection
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, err
	}
	return client, nil
}
