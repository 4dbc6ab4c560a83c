// Package redisstore keeps the server-side session hashes and the
// short-lived OAuth state nonces in Redis.
package redisstore

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

func sessionKey(sid string) string { return "session:" + sid }
func stateKey(state string) string { return "oauth:state:" + state }

type Store struct {
	rdb *redis.Client
}

func New(rdb *redis.Client) *Store {
	return &Store{rdb: rdb}
}

func (s *Store) SaveSession(ctx context.Context, sid string, fields map[string]string, ttl time.Duration) error {
	key := sessionKey(sid)
	vals := make(map[string]any, len(fields))
	for k, v := range fields {
		vals[k] = v
	}
	pipe := s.rdb.Pipeline()
	pipe.HSet(ctx, key, vals)
	pipe.Expire(ctx, key, ttl)
	_, err := pipe.Exec(ctx)
	return err
}

// GetSession returns nil without error when the session does not exist
// (expired or ended).
func (s *Store) GetSession(ctx context.Context, sid string) (map[string]string, error) {
	data, err := s.rdb.HGetAll(ctx, sessionKey(sid)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	if len(data) == 0 {
		return nil, nil
	}
	return data, nil
}

func (s *Store) DeleteSession(ctx context.Context, sid string) error {
	return s.rdb.Del(ctx, sessionKey(sid)).Err()
}

func (s *Store) PutState(ctx context.Context, state string, ttl time.Duration) error {
	return s.rdb.Set(ctx, stateKey(state), "1", ttl).Err()
}

// TakeState consumes the nonce: a state can be redeemed at most once.
func (s *Store) TakeState(ctx context.Context, state string) (bool, error) {
	n, err := s.rdb.Del(ctx, stateKey(state)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
