package store

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// redisKeyPrefix namespaces mark hashes.
const redisKeyPrefix = "nocdesk:marks:"

// RedisStore keeps each bucket as a Redis hash. HSET on a single field is
// the per-key atomic upsert; several fields go through MULTI/EXEC.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore connects to redisURL and verifies the connection.
func NewRedisStore(redisURL string) (*RedisStore, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid Redis URL: %w", err)
	}

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connecting to Redis: %w", err)
	}

	return &RedisStore{client: client}, nil
}

func redisKey(bucket string) string {
	return redisKeyPrefix + bucket
}

// LoadMarks returns every mark in bucket. Fields that do not parse as
// integers are skipped.
func (r *RedisStore) LoadMarks(ctx context.Context, bucket string) (map[string]int64, error) {
	raw, err := r.client.HGetAll(ctx, redisKey(bucket)).Result()
	if err != nil {
		return nil, fmt.Errorf("loading marks %s: %w", bucket, err)
	}

	marks := make(map[string]int64, len(raw))
	for id, v := range raw {
		at, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			continue
		}
		marks[id] = at
	}
	return marks, nil
}

// UpsertMark sets one hash field.
func (r *RedisStore) UpsertMark(ctx context.Context, bucket, itemID string, atMs int64) error {
	if err := r.client.HSet(ctx, redisKey(bucket), itemID, atMs).Err(); err != nil {
		return fmt.Errorf("upserting mark %s/%s: %w", bucket, itemID, err)
	}
	return nil
}

// UpsertMarks sets several hash fields in one transaction.
func (r *RedisStore) UpsertMarks(ctx context.Context, bucket string, marks map[string]int64) error {
	if len(marks) == 0 {
		return nil
	}

	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for id, at := range marks {
			pipe.HSet(ctx, redisKey(bucket), id, at)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("upserting %d marks in %s: %w", len(marks), bucket, err)
	}
	return nil
}

// ResetMarks deletes the whole hash.
func (r *RedisStore) ResetMarks(ctx context.Context, bucket string) error {
	if err := r.client.Del(ctx, redisKey(bucket)).Err(); err != nil {
		return fmt.Errorf("resetting marks %s: %w", bucket, err)
	}
	return nil
}

// Close closes the Redis client.
func (r *RedisStore) Close() error {
	return r.client.Close()
}

var _ MarkStore = (*RedisStore)(nil)
