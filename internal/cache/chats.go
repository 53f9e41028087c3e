package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"ngmc-chatbot-backend/internal/models"

	"github.com/redis/go-redis/v9"
)

var ErrCacheMiss = errors.New("cache miss")

// ChatListCache caches the full chat listing served by the getchat
// endpoint. Writes to the chat store must invalidate it.
type ChatListCache interface {
	Get(ctx context.Context) ([]models.Chat, error)
	Set(ctx context.Context, chats []models.Chat, ttl time.Duration) error
	Invalidate(ctx context.Context) error
	Close() error
}

type RedisChatCache struct {
	client *redis.Client
	key    string
}

func NewRedisChatCache(addr, password string, db int) (*RedisChatCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisChatCache{
		client: client,
		key:    "ngmc:chats:all",
	}, nil
}

func (c *RedisChatCache) Get(ctx context.Context) ([]models.Chat, error) {
	data, err := c.client.Get(ctx, c.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, fmt.Errorf("failed to get from redis: %w", err)
	}

	var chats []models.Chat
	if err := json.Unmarshal(data, &chats); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cache data: %w", err)
	}
	return chats, nil
}

func (c *RedisChatCache) Set(ctx context.Context, chats []models.Chat, ttl time.Duration) error {
	data, err := json.Marshal(chats)
	if err != nil {
		return fmt.Errorf("failed to marshal cache data: %w", err)
	}

	if err := c.client.Set(ctx, c.key, data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set in redis: %w", err)
	}
	return nil
}

func (c *RedisChatCache) Invalidate(ctx context.Context) error {
	if err := c.client.Del(ctx, c.key).Err(); err != nil {
		return fmt.Errorf("failed to delete from redis: %w", err)
	}
	return nil
}

func (c *RedisChatCache) Close() error {
	return c.client.Close()
}
