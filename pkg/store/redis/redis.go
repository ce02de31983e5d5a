// Package redisstore implements the store contract on a Redis server.
//
// This is the cross-process backend: every participant connects to the same
// Redis instance, whose sets, hashes, and lists carry all channel state.
// The blocking multi-queue pop maps directly onto BLPOP, which already
// provides the exactly-once, any-of-N semantics the contract requires.
package redisstore

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rzbill/crosstalk/pkg/store"
)

// Options configures the Redis connection.
type Options struct {
	// Addr is the host:port of the Redis server. Defaults to localhost:6379.
	Addr string
	// DB selects the Redis logical database.
	DB int
	// Password, if the server requires AUTH.
	Password string
}

// Store implements store.Store on Redis.
type Store struct {
	client *redis.Client
}

var _ store.Store = (*Store)(nil)

// Open creates a client for the given server. The connection pool is lazy;
// no I/O happens until the first operation.
func Open(opts Options) *Store {
	addr := opts.Addr
	if addr == "" {
		addr = "localhost:6379"
	}
	return &Store{client: redis.NewClient(&redis.Options{
		Addr:     addr,
		DB:       opts.DB,
		Password: opts.Password,
	})}
}

func (s *Store) SetAdd(ctx context.Context, set, member string) error {
	return s.client.SAdd(ctx, set, member).Err()
}

func (s *Store) SetRemove(ctx context.Context, set, member string) error {
	return s.client.SRem(ctx, set, member).Err()
}

func (s *Store) SetContains(ctx context.Context, set, member string) (bool, error) {
	return s.client.SIsMember(ctx, set, member).Result()
}

func (s *Store) SetMembers(ctx context.Context, set string) ([]string, error) {
	return s.client.SMembers(ctx, set).Result()
}

func (s *Store) MapSet(ctx context.Context, m, field, value string) error {
	return s.client.HSet(ctx, m, field, value).Err()
}

func (s *Store) MapGet(ctx context.Context, m, field string) (string, bool, error) {
	v, err := s.client.HGet(ctx, m, field).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, err
	}
	return v, true, nil
}

func (s *Store) MapDelete(ctx context.Context, m, field string) error {
	return s.client.HDel(ctx, m, field).Err()
}

func (s *Store) MapEntries(ctx context.Context, m string) (map[string]string, error) {
	return s.client.HGetAll(ctx, m).Result()
}

func (s *Store) QueuePush(ctx context.Context, queue string, value []byte) error {
	return s.client.RPush(ctx, queue, value).Err()
}

func (s *Store) QueuePopAny(ctx context.Context, queues []string, timeout time.Duration) (store.Popped, error) {
	if timeout < 0 {
		timeout = 0 // BLPOP treats 0 as wait-indefinitely
	}
	res, err := s.client.BLPop(ctx, timeout, queues...).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return store.Popped{}, store.ErrTimeout
		}
		return store.Popped{}, err
	}
	// BLPOP replies [key, value].
	if len(res) != 2 {
		return store.Popped{}, errors.New("redisstore: malformed BLPOP reply")
	}
	return store.Popped{Queue: res[0], Value: []byte(res[1])}, nil
}

func (s *Store) Exists(ctx context.Context, keys ...string) (bool, error) {
	if len(keys) == 0 {
		return false, nil
	}
	n, err := s.client.Exists(ctx, keys...).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *Store) Flush(ctx context.Context) error {
	return s.client.FlushAll(ctx).Err()
}

// Close releases the connection pool.
func (s *Store) Close() error { return s.client.Close() }
