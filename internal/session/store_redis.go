package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"ownidp/pkg/sentinel"
)

const redisKeyPrefix = "ownidp:session:"

// RedisStore keeps sessions in Redis with a TTL matching the session expiry,
// for deployments running more than one process behind a balancer.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Save(ctx context.Context, sess Session) error {
	ttl := time.Until(sess.ExpiresAt)
	if ttl <= 0 {
		return fmt.Errorf("session: expiry %v not in the future", sess.ExpiresAt)
	}

	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("session: marshal: %w", err)
	}
	if err := s.client.Set(ctx, redisKeyPrefix+sess.ID, data, ttl).Err(); err != nil {
		return fmt.Errorf("session: save: %w", err)
	}
	return nil
}

func (s *RedisStore) Find(ctx context.Context, id string) (Session, error) {
	raw, err := s.client.Get(ctx, redisKeyPrefix+id).Result()
	if errors.Is(err, redis.Nil) {
		return Session{}, fmt.Errorf("session %q: %w", id, sentinel.ErrNotFound)
	}
	if err != nil {
		return Session{}, fmt.Errorf("session: find: %w", err)
	}

	var sess Session
	if err := json.Unmarshal([]byte(raw), &sess); err != nil {
		return Session{}, fmt.Errorf("session: unmarshal: %w", err)
	}
	return sess, nil
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, redisKeyPrefix+id).Err(); err != nil {
		return fmt.Errorf("session: delete: %w", err)
	}
	return nil
}
