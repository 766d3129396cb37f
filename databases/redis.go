package databases

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// RedisOptions configures the redis backed store
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
}

type redisStore struct {
	rdb *goredis.Client
}

// NewRedisStore connects to redis, runs a ping health check and returns a
// KeyValueStore. Compare-and-swap uses WATCH/MULTI optimistic transactions.
func NewRedisStore(ctx context.Context, opts RedisOptions) (KeyValueStore, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", opts.Addr, err)
	}
	return &redisStore{rdb: rdb}, nil
}

func redisKey(namespace, key string) string {
	return "court:" + namespace + "|" + key
}

func (s *redisStore) Get(ctx context.Context, namespace, key string) ([]byte, error) {
	b, err := s.rdb.Get(ctx, redisKey(namespace, key)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, ErrKeyNotFound
	}
	return b, err
}

func (s *redisStore) Set(ctx context.Context, namespace, key string, value []byte) error {
	return s.rdb.Set(ctx, redisKey(namespace, key), value, 0).Err()
}

func (s *redisStore) Delete(ctx context.Context, namespace, key string) error {
	return s.rdb.Del(ctx, redisKey(namespace, key)).Err()
}

func (s *redisStore) Keys(ctx context.Context, namespace, prefix string) ([]string, error) {
	scope := redisKey(namespace, "")
	iter := s.rdb.Scan(ctx, 0, globEscape(scope+prefix)+"*", 200).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, strings.TrimPrefix(iter.Val(), scope))
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	return keys, nil
}

func (s *redisStore) CompareAndSwap(ctx context.Context, namespace, key string, prev, next []byte) (bool, error) {
	k := redisKey(namespace, key)
	swapped := false
	err := s.rdb.Watch(ctx, func(tx *goredis.Tx) error {
		cur, err := tx.Get(ctx, k).Bytes()
		switch {
		case errors.Is(err, goredis.Nil):
			if prev != nil {
				return nil
			}
		case err != nil:
			return err
		default:
			if prev == nil || !bytes.Equal(cur, prev) {
				return nil
			}
		}
		_, err = tx.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
			pipe.Set(ctx, k, next, 0)
			return nil
		})
		if err == nil {
			swapped = true
		}
		return err
	}, k)
	if errors.Is(err, goredis.TxFailedErr) {
		return false, nil
	}
	return swapped, err
}

func (s *redisStore) Close() error {
	return s.rdb.Close()
}
