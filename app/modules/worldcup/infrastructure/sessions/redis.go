package worldcupsessions

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	worldcupdomain "github.com/Black-And-White-Club/topbun-worldcup/app/modules/worldcup/domain"
	"github.com/redis/go-redis/v9"
)

// RedisStore keeps sessions as JSON values with a sliding TTL.
type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisStore connects to redisURL (redis:// or rediss://) and verifies the connection.
func NewRedisStore(ctx context.Context, redisURL string, ttl time.Duration) (*RedisStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return NewRedisStoreFromClient(rdb, ttl), nil
}

// NewRedisStoreFromClient wraps an existing client.
func NewRedisStoreFromClient(rdb *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{rdb: rdb, ttl: ttl}
}

func (s *RedisStore) Save(ctx context.Context, key string, state *worldcupdomain.TournamentState) error {
	payload, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshal session %s: %w", key, err)
	}
	if err := s.rdb.Set(ctx, storageKey(key), payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("save session %s: %w", key, err)
	}
	return nil
}

func (s *RedisStore) CompareAndSave(ctx context.Context, key string, expectedVersion int64, state *worldcupdomain.TournamentState) error {
	payload, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshal session %s: %w", key, err)
	}

	skey := storageKey(key)
	err = s.rdb.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, skey).Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				return ErrSessionNotFound
			}
			return fmt.Errorf("load session %s: %w", key, err)
		}
		stored, err := decodeState(key, current)
		if err != nil {
			return err
		}
		if stored.Version != expectedVersion {
			return fmt.Errorf("%w: session %s at version %d, expected %d", ErrSessionConflict, key, stored.Version, expectedVersion)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, skey, payload, s.ttl)
			return nil
		})
		return err
	}, skey)

	switch {
	case err == nil:
		return nil
	case errors.Is(err, redis.TxFailedErr):
		return fmt.Errorf("%w: session %s", ErrSessionConflict, key)
	case errors.Is(err, ErrSessionNotFound), errors.Is(err, ErrSessionConflict):
		return err
	}
	return fmt.Errorf("save session %s: %w", key, err)
}

func (s *RedisStore) Load(ctx context.Context, key string) (*worldcupdomain.TournamentState, error) {
	payload, err := s.rdb.Get(ctx, storageKey(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("load session %s: %w", key, err)
	}
	return decodeState(key, payload)
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := s.rdb.Del(ctx, storageKey(key)).Err(); err != nil {
		return fmt.Errorf("delete session %s: %w", key, err)
	}
	return nil
}

// Close releases the underlying client.
func (s *RedisStore) Close() error {
	return s.rdb.Close()
}

func decodeState(key string, payload []byte) (*worldcupdomain.TournamentState, error) {
	var state worldcupdomain.TournamentState
	if err := json.Unmarshal(payload, &state); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", key, err)
	}
	if err := state.Validate(); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", key, err)
	}
	return &state, nil
}

var _ Store = (*RedisStore)(nil)
