package syncbridge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"creatorhub/models"

	"github.com/redis/go-redis/v9"
)

// RedisRemote stores each profile as one JSON string under prefix+username.
type RedisRemote struct {
	client *redis.Client
	prefix string
}

// NewRedisRemote wraps an existing client.
func NewRedisRemote(client *redis.Client, prefix string) *RedisRemote {
	return &RedisRemote{client: client, prefix: strings.TrimSpace(prefix)}
}

// DialRedis builds a client from connection settings. It does not connect until first use.
func DialRedis(addr, password string, db int, prefix string) *RedisRemote {
	if db < 0 {
		db = 0
	}
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return NewRedisRemote(client, prefix)
}

func (r *RedisRemote) key(username string) string {
	return r.prefix + normalizeUsername(username)
}

func (r *RedisRemote) Get(ctx context.Context, username string) (models.SyncPayload, error) {
	raw, err := r.client.Get(ctx, r.key(username)).Bytes()
	if errors.Is(err, redis.Nil) {
		return models.SyncPayload{}, ErrNotFound
	}
	if err != nil {
		return models.SyncPayload{}, fmt.Errorf("%w: redis get: %v", ErrSyncUnavailable, err)
	}

	var payload models.SyncPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return models.SyncPayload{}, fmt.Errorf("%w: decode redis record: %v", ErrSyncUnavailable, err)
	}
	return payload, nil
}

func (r *RedisRemote) Put(ctx context.Context, username string, payload models.SyncPayload) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode sync payload: %w", err)
	}
	if err := r.client.Set(ctx, r.key(username), data, 0).Err(); err != nil {
		return fmt.Errorf("%w: redis set: %v", ErrSyncUnavailable, err)
	}
	return nil
}

func (r *RedisRemote) Exists(ctx context.Context, username string) (bool, error) {
	n, err := r.client.Exists(ctx, r.key(username)).Result()
	if err != nil {
		return false, fmt.Errorf("%w: redis exists: %v", ErrSyncUnavailable, err)
	}
	return n > 0, nil
}

func (r *RedisRemote) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("%w: redis ping: %v", ErrSyncUnavailable, err)
	}
	return nil
}

// Close releases the underlying client.
func (r *RedisRemote) Close() error {
	return r.client.Close()
}
