// internal/store/redis.go
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"query-orchestrator/internal/common/database"
	"query-orchestrator/internal/models"
)

const redisKeyPrefix = "orchestration:result:"

// RedisStore shares results between replicas behind one front door.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedis(client *database.RedisClient, ttl time.Duration) *RedisStore {
	return &RedisStore{
		client: client.GetClient(),
		ttl:    ttl,
	}
}

func (s *RedisStore) Save(ctx context.Context, id string, result *models.OrchestrationResult) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("store: encode result: %w", err)
	}
	if err := s.client.Set(ctx, redisKeyPrefix+id, payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("store: save result: %w", err)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, id string) (*models.OrchestrationResult, error) {
	payload, err := s.client.Get(ctx, redisKeyPrefix+id).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: fetch result: %w", err)
	}

	var result models.OrchestrationResult
	if err := json.Unmarshal([]byte(payload), &result); err != nil {
		return nil, fmt.Errorf("store: decode result: %w", err)
	}
	return &result, nil
}
