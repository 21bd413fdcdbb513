package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-redis/redis/v8"
	"loam.dev/pkg/store/storedefs"
)

// RedisStore is a Store backed by a Redis server. Keys are namespaced with a
// prefix so that several applications can share a server.
type RedisStore struct {
	client *redis.Client
	prefix string
}

var _ storedefs.Store = (*RedisStore)(nil)

// RedisOptions configures NewRedisStore.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
}

// NewRedisStore connects to a Redis server and checks that it responds.
func NewRedisStore(ctx context.Context, opts RedisOptions) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connect to redis at %s: %w", opts.Addr, err)
	}
	logger.Info().Str("addr", opts.Addr).Int("db", opts.DB).Msg("connected to redis store")
	return &RedisStore{client, opts.Prefix}, nil
}

func (s *RedisStore) GetItem(ctx context.Context, key string) (string, bool, error) {
	v, err := s.client.Get(ctx, s.prefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, redisErr(err)
	}
	return v, true, nil
}

func (s *RedisStore) SetItem(ctx context.Context, key, value string) error {
	return redisErr(s.client.Set(ctx, s.prefix+key, value, 0).Err())
}

func (s *RedisStore) DelItem(ctx context.Context, key string) error {
	return redisErr(s.client.Del(ctx, s.prefix+key).Err())
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

func redisErr(err error) error {
	if errors.Is(err, redis.ErrClosed) {
		return storedefs.ErrClosed
	}
	return err
}
