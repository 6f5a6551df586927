package auth

// This file stores sessions in Redis so that several server instances can
// share them.  Each session is a JSON value under "<prefix>:<id>" whose TTL
// is the idle timeout; reads push the TTL forward.

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisSessionStore keeps sessions in Redis.
type RedisSessionStore struct {
	rdb    *redis.Client
	idle   time.Duration
	prefix string
}

// NewRedisSessionStore returns a Redis backed store.  prefix namespaces the
// keys (default "session").
func NewRedisSessionStore(rdb *redis.Client, idle time.Duration, prefix string) *RedisSessionStore {
	if prefix == "" {
		prefix = "session"
	}
	return &RedisSessionStore{rdb: rdb, idle: idle, prefix: prefix}
}

func (r *RedisSessionStore) key(id string) string { return r.prefix + ":" + id }

func (r *RedisSessionStore) Create(ctx context.Context, s Session) (string, error) {
	body, err := json.Marshal(s)
	if err != nil {
		return "", err
	}
	id := NewSessionID()
	if err := r.rdb.Set(ctx, r.key(id), body, r.idle).Err(); err != nil {
		return "", err
	}
	return id, nil
}

func (r *RedisSessionStore) Get(ctx context.Context, id string) (Session, error) {
	// GETEX reads the value and slides the idle timeout in one round trip.
	body, err := r.rdb.GetEx(ctx, r.key(id), r.idle).Bytes()
	if errors.Is(err, redis.Nil) {
		return Session{}, ErrNoSession
	}
	if err != nil {
		return Session{}, err
	}
	var s Session
	if err := json.Unmarshal(body, &s); err != nil {
		return Session{}, err
	}
	return s, nil
}

func (r *RedisSessionStore) Delete(ctx context.Context, id string) error {
	return r.rdb.Del(ctx, r.key(id)).Err()
}
