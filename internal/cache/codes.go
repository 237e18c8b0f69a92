// Package cache holds short-lived state in Redis: password reset codes
// expire on their own instead of needing a cleanup job.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const codeTTL = 10 * time.Minute

// RedisCodeStore implements staff.CodeStore.
type RedisCodeStore struct {
	client *redis.Client
}

func NewRedisCodeStore(client *redis.Client) *RedisCodeStore {
	return &RedisCodeStore{client: client}
}

// ConnectRedis opens a client and verifies the connection.
func ConnectRedis(ctx context.Context, addr, password string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return client, nil
}

func codeKey(email string) string {
	return "reset_code:" + email
}

func (s *RedisCodeStore) SaveCode(ctx context.Context, email, code string) error {
	if err := s.client.Set(ctx, codeKey(email), code, codeTTL).Err(); err != nil {
		return fmt.Errorf("failed to save reset code: %w", err)
	}
	return nil
}

// ConsumeCode checks the code and deletes it on match, so each code is
// usable exactly once.
func (s *RedisCodeStore) ConsumeCode(ctx context.Context, email, code string) (bool, error) {
	key := codeKey(email)
	stored, err := s.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read reset code: %w", err)
	}
	if stored != code {
		return false, nil
	}
	if err := s.client.Del(ctx, key).Err(); err != nil {
		return false, fmt.Errorf("failed to delete reset code: %w", err)
	}
	return true, nil
}
