package storage

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/neexbeast/climascope/internal/domain"
)

const (
	redisKeySeq   = "climascope:city:seq"
	redisKeyNames = "climascope:city:names"
	redisKeyOrder = "climascope:city:order"
)

// ConnectRedis parses redisURL, creates a client, and verifies connectivity with a ping.
func ConnectRedis(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parsing redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("pinging redis: %w", err)
	}

	return client, nil
}

// RedisBackend keeps cities in Redis: a counter for IDs, a hash of id -> name and a
// sorted set scored by id for ordering.
type RedisBackend struct {
	client *redis.Client
}

// NewRedisBackend constructs a RedisBackend over client.
func NewRedisBackend(client *redis.Client) *RedisBackend {
	return &RedisBackend{client: client}
}

// Insert allocates an ID and stores the city atomically.
func (b *RedisBackend) Insert(ctx context.Context, name string) (int64, error) {
	id, err := b.client.Incr(ctx, redisKeySeq).Result()
	if err != nil {
		return 0, fmt.Errorf("allocating id for city %s: %w", name, err)
	}
	member := strconv.FormatInt(id, 10)

	_, err = b.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, redisKeyNames, member, name)
		pipe.ZAdd(ctx, redisKeyOrder, redis.Z{Score: float64(id), Member: member})
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("storing city %s: %w", name, err)
	}
	return id, nil
}

// List returns all cities ordered by ID.
func (b *RedisBackend) List(ctx context.Context) ([]domain.City, error) {
	ids, err := b.client.ZRange(ctx, redisKeyOrder, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("listing city ids: %w", err)
	}
	if len(ids) == 0 {
		return []domain.City{}, nil
	}

	names, err := b.client.HMGet(ctx, redisKeyNames, ids...).Result()
	if err != nil {
		return nil, fmt.Errorf("reading city names: %w", err)
	}

	cities := make([]domain.City, 0, len(ids))
	for i, raw := range ids {
		name, ok := names[i].(string)
		if !ok {
			continue
		}
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parsing city id %q: %w", raw, err)
		}
		cities = append(cities, domain.City{ID: id, Name: name})
	}
	return cities, nil
}

// Delete removes the city with id.
func (b *RedisBackend) Delete(ctx context.Context, id int64) (int64, error) {
	member := strconv.FormatInt(id, 10)

	var removed *redis.IntCmd
	_, err := b.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		removed = pipe.HDel(ctx, redisKeyNames, member)
		pipe.ZRem(ctx, redisKeyOrder, member)
		return nil
	})
	if err != nil && !errors.Is(err, redis.Nil) {
		return 0, fmt.Errorf("deleting city %d: %w", id, err)
	}
	return removed.Val(), nil
}

func (b *RedisBackend) Ping(ctx context.Context) error {
	return b.client.Ping(ctx).Err()
}

func (b *RedisBackend) Close() error {
	return b.client.Close()
}
