// Package redis implements the credential store on top of a redis hash per
// record. Per-record TTL maps onto key expiry, and the two single-use
// primitives (create-if-absent, get-and-delete) run as server-side scripts
// so concurrent callers cannot interleave inside them.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/parenthub/authcore/internal/idp/store"
)

// createScript writes a hash plus its TTL only if the key is absent.
// ARGV: field1, value1, ..., fieldN, valueN, ttl-millis.
var createScript = redis.NewScript(`
if redis.call("EXISTS", KEYS[1]) == 1 then
	return 0
end
for i = 1, #ARGV - 1, 2 do
	redis.call("HSET", KEYS[1], ARGV[i], ARGV[i + 1])
end
redis.call("PEXPIRE", KEYS[1], ARGV[#ARGV])
return 1
`)

// consumeScript reads every field of a hash and deletes the key in the same
// step. Returns an empty table if the key is absent.
var consumeScript = redis.NewScript(`
local fields = redis.call("HGETALL", KEYS[1])
if #fields == 0 then
	return fields
end
redis.call("DEL", KEYS[1])
return fields
`)

// setFieldScript overwrites one field only when the record exists, so a
// stray write can never recreate a record without an expiry.
var setFieldScript = redis.NewScript(`
if redis.call("EXISTS", KEYS[1]) == 0 then
	return 0
end
redis.call("HSET", KEYS[1], ARGV[1], ARGV[2])
return 1
`)

// Store implements store.Store on a redis client.
type Store struct {
	client redis.UniversalClient
}

var _ store.Store = (*Store)(nil)

// New wraps an existing redis client. The caller owns connection options;
// Close tears the client down.
func New(client redis.UniversalClient) *Store {
	return &Store{client: client}
}

// Connect dials a single redis node and verifies it responds.
func Connect(ctx context.Context, addr string) (*Store, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis: failed to connect to %s: %w", addr, err)
	}
	return &Store{client: client}, nil
}

func (s *Store) Create(ctx context.Context, key string, fields map[string]string, ttl time.Duration) error {
	if len(fields) == 0 {
		return fmt.Errorf("redis: create %q: no fields", key)
	}

	argv := make([]any, 0, len(fields)*2+1)
	for field, value := range fields {
		argv = append(argv, field, value)
	}
	argv = append(argv, ttl.Milliseconds())

	created, err := createScript.Run(ctx, s.client, []string{key}, argv...).Int()
	if err != nil {
		return fmt.Errorf("redis: create %q: %w", key, err)
	}
	if created == 0 {
		return store.ErrAlreadyExists
	}
	return nil
}

func (s *Store) Get(ctx context.Context, key, field string) (string, error) {
	value, err := s.client.HGet(ctx, key, field).Result()
	if errors.Is(err, redis.Nil) {
		return "", store.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("redis: get %q.%s: %w", key, field, err)
	}
	return value, nil
}

func (s *Store) GetAll(ctx context.Context, key string) (map[string]string, error) {
	fields, err := s.client.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("redis: getall %q: %w", key, err)
	}
	// HGETALL reports an absent key as an empty map, not redis.Nil.
	if len(fields) == 0 {
		return nil, store.ErrNotFound
	}
	return fields, nil
}

func (s *Store) SetField(ctx context.Context, key, field, value string) error {
	set, err := setFieldScript.Run(ctx, s.client, []string{key}, field, value).Int()
	if err != nil {
		return fmt.Errorf("redis: setfield %q.%s: %w", key, field, err)
	}
	if set == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	deleted, err := s.client.Del(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("redis: delete %q: %w", key, err)
	}
	if deleted == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) Consume(ctx context.Context, key string) (map[string]string, error) {
	raw, err := consumeScript.Run(ctx, s.client, []string{key}).StringSlice()
	if err != nil {
		return nil, fmt.Errorf("redis: consume %q: %w", key, err)
	}
	if len(raw) == 0 {
		return nil, store.ErrNotFound
	}

	// Lua returns HGETALL as a flat [field, value, ...] array.
	fields := make(map[string]string, len(raw)/2)
	for i := 0; i+1 < len(raw); i += 2 {
		fields[raw[i]] = raw[i+1]
	}
	return fields, nil
}

func (s *Store) Record(key string) store.RecordBuilder {
	return &recordBuilder{store: s, key: key}
}

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *Store) Close() error {
	return s.client.Close()
}

type recordBuilder struct {
	store  *Store
	key    string
	fields []string // flat field, value pairs in write order
}

func (b *recordBuilder) Set(field, value string) store.RecordBuilder {
	b.fields = append(b.fields, field, value)
	return b
}

// Commit applies every queued field write plus the TTL in one transaction.
// The pipeline is wrapped in MULTI/EXEC, so readers see either the old
// record or the fully written one, never a half-updated hash with a stale
// expiry.
func (b *recordBuilder) Commit(ctx context.Context, ttl time.Duration) error {
	if len(b.fields) == 0 {
		return fmt.Errorf("redis: commit %q: no fields", b.key)
	}

	pipe := b.store.client.TxPipeline()
	for i := 0; i+1 < len(b.fields); i += 2 {
		pipe.HSet(ctx, b.key, b.fields[i], b.fields[i+1])
	}
	pipe.Expire(ctx, b.key, ttl)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis: commit %q: %w", b.key, err)
	}
	return nil
}
