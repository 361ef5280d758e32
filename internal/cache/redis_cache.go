package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/weiawesome/offershare/internal/config"
	"github.com/weiawesome/offershare/internal/domain"
)

type RedisParticipantCache struct {
	client *redis.Client
	prefix string
}

func NewRedisParticipantCache(cfg config.RedisConfig, prefix string) (*RedisParticipantCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return NewRedisParticipantCacheFromClient(client, prefix), nil
}

func NewRedisParticipantCacheFromClient(client *redis.Client, prefix string) *RedisParticipantCache {
	return &RedisParticipantCache{
		client: client,
		prefix: prefix,
	}
}

func (c *RedisParticipantCache) key(chatID string) string {
	return fmt.Sprintf("%s:%s", c.prefix, chatID)
}

func (c *RedisParticipantCache) Get(ctx context.Context, chatID string) (*domain.Participants, error) {
	data, err := c.client.Get(ctx, c.key(chatID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, fmt.Errorf("failed to get from redis: %w", err)
	}

	var p domain.Participants
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cache data: %w", err)
	}

	return &p, nil
}

func (c *RedisParticipantCache) Set(ctx context.Context, p *domain.Participants, ttl time.Duration) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to marshal cache data: %w", err)
	}

	if err := c.client.Set(ctx, c.key(p.ChatID), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set in redis: %w", err)
	}

	return nil
}

func (c *RedisParticipantCache) Close() error {
	return c.client.Close()
}
