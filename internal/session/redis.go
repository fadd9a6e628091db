package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore хранит сессии в Redis с TTL — сессии переживают рестарт процесса
// и автоматически вытесняются по истечении срока.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func sessionKey(tgID int64) string {
	return fmt.Sprintf("order_session:%d", tgID)
}

func (r *RedisStore) Get(ctx context.Context, tgID int64) (*Session, error) {
	raw, err := r.client.Get(ctx, sessionKey(tgID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("чтение сессии: %w", err)
	}

	var s Session
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("декодирование сессии: %w", err)
	}
	return &s, nil
}

func (r *RedisStore) Put(ctx context.Context, tgID int64, s *Session) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("кодирование сессии: %w", err)
	}
	if err := r.client.Set(ctx, sessionKey(tgID), raw, r.ttl).Err(); err != nil {
		return fmt.Errorf("сохранение сессии: %w", err)
	}
	return nil
}

func (r *RedisStore) Delete(ctx context.Context, tgID int64) error {
	if err := r.client.Del(ctx, sessionKey(tgID)).Err(); err != nil {
		return fmt.Errorf("удаление сессии: %w", err)
	}
	return nil
}
