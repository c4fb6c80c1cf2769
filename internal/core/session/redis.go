package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/duynhne/profile-web/internal/core/domain"
)

// releaseLock deletes the lock key only if it still holds our token.
var releaseLock = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisStore keeps session state in Redis with a sliding TTL.
type RedisStore struct {
	client    redis.UniversalClient
	namespace string
	ttl       time.Duration
	lockTTL   time.Duration
}

// Connect creates a Redis-backed store and verifies the server is reachable.
func Connect(ctx context.Context, opts Options) (*RedisStore, error) {
	if opts.Addr == "" {
		return nil, errors.New("redis address is required")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return NewRedisStore(client, opts), nil
}

// NewRedisStore wraps an existing client.
func NewRedisStore(client redis.UniversalClient, opts Options) *RedisStore {
	if opts.Namespace == "" {
		opts.Namespace = "profile-web"
	}
	if opts.TTL <= 0 {
		opts.TTL = 30 * time.Minute
	}
	if opts.LockTTL <= 0 {
		opts.LockTTL = 30 * time.Second
	}
	return &RedisStore{
		client:    client,
		namespace: opts.Namespace,
		ttl:       opts.TTL,
		lockTTL:   opts.LockTTL,
	}
}

func (s *RedisStore) stateKey(id string) string { return s.namespace + ":state:" + id }
func (s *RedisStore) lockKey(id string) string  { return s.namespace + ":lock:" + id }

// Get returns the stored state and refreshes its TTL.
func (s *RedisStore) Get(ctx context.Context, id string) ([]byte, error) {
	data, err := s.client.GetEx(ctx, s.stateKey(id), s.ttl).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get session state: %w", err)
	}
	return data, nil
}

func (s *RedisStore) Set(ctx context.Context, id string, data []byte) error {
	if err := s.client.Set(ctx, s.stateKey(id), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("set session state: %w", err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, s.stateKey(id)).Err(); err != nil {
		return fmt.Errorf("delete session state: %w", err)
	}
	return nil
}

// Lock takes a short-lived lock with SET NX PX. The lock expires on its own
// if the holder dies before unlocking.
func (s *RedisStore) Lock(ctx context.Context, id string) (func(), error) {
	token := uuid.NewString()
	key := s.lockKey(id)

	ok, err := s.client.SetNX(ctx, key, token, s.lockTTL).Result()
	if err != nil {
		return nil, fmt.Errorf("lock session: %w", err)
	}
	if !ok {
		return nil, domain.ErrBusy
	}

	return func() {
		// Detached from the request context so a cancelled request still releases.
		releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
		defer cancel()
		_ = releaseLock.Run(releaseCtx, s.client, []string{key}, token).Err()
	}, nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
