package session

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultRedisPrefix = "venuehub:session:"

// RedisStore keeps sessions as JSON values with a TTL matching ExpiresAt.
type RedisStore struct {
	client redis.UniversalClient
	prefix string
}

func NewRedisStore(client redis.UniversalClient) *RedisStore {
	return &RedisStore{client: client, prefix: defaultRedisPrefix}
}

func (s *RedisStore) key(token string) string {
	return s.prefix + token
}

func (s *RedisStore) Create(ctx context.Context, session *Session) error {
	ttl, err := storeTTL(session)
	if err != nil {
		return err
	}
	data, err := json.Marshal(session)
	if err != nil {
		return err
	}
	ok, err := s.client.SetNX(ctx, s.key(session.Token), data, ttl).Result()
	if err != nil {
		return errors.Join(ErrStoreUnavailable, err)
	}
	if !ok {
		return ErrInvalidSession
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, token string) (*Session, error) {
	data, err := s.client.Get(ctx, s.key(token)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, errors.Join(ErrStoreUnavailable, err)
	}
	var session Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, errors.Join(ErrInvalidSession, err)
	}
	if session.IsExpired() {
		return nil, ErrSessionNotFound
	}
	return &session, nil
}

func (s *RedisStore) Update(ctx context.Context, session *Session) error {
	ttl, err := storeTTL(session)
	if err != nil {
		return err
	}
	data, err := json.Marshal(session)
	if err != nil {
		return err
	}
	ok, err := s.client.SetXX(ctx, s.key(session.Token), data, ttl).Result()
	if err != nil {
		return errors.Join(ErrStoreUnavailable, err)
	}
	if !ok {
		return ErrSessionNotFound
	}
	return nil
}

func (s *RedisStore) UpdateActivity(ctx context.Context, token string, lastActivity, expiresAt time.Time) error {
	session, err := s.Get(ctx, token)
	if err != nil {
		return err
	}
	session.LastActivityAt = lastActivity
	session.ExpiresAt = expiresAt
	return s.Update(ctx, session)
}

func (s *RedisStore) Delete(ctx context.Context, token string) error {
	if err := s.client.Del(ctx, s.key(token)).Err(); err != nil {
		return errors.Join(ErrStoreUnavailable, err)
	}
	return nil
}
