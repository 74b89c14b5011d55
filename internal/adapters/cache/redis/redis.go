// Package redis は評価済み通知の Redis キャッシュを提供します。
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/dgonzaleztagle-hub/cloud-contador-pro-sub001/internal/core/compliance"
)

const (
	keyPrefix     = "contador:notifications:"
	generationKey = keyPrefix + "generation"
)

// NotificationsKey は世代と評価日のキャッシュキーを返します。
func NotificationsKey(generation int64, day string) string {
	return fmt.Sprintf("%sv%d:%s", keyPrefix, generation, day)
}

// Options は接続設定です。
type Options struct {
	Addr     string
	Password string
	DB       int
}

// Cache は compliance.Cache の Redis 実装です。
type Cache struct {
	client *redis.Client
	logger *zap.Logger
}

// New は Redis クライアントを生成し疎通確認を行います。
func New(ctx context.Context, opts Options, logger *zap.Logger) (*Cache, error) {
	c := newCache(opts, logger)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := c.Ping(pingCtx); err != nil {
		_ = c.client.Close()
		return nil, fmt.Errorf("redis: connect %s: %w", opts.Addr, err)
	}

	c.logger.Info("redis cache ready", zap.String("addr", opts.Addr), zap.Int("db", opts.DB))
	return c, nil
}

func newCache(opts Options, logger *zap.Logger) *Cache {
	if logger == nil {
		logger = zap.NewNop()
	}
	client := redis.NewClient(&redis.Options{
		Addr:         opts.Addr,
		Password:     opts.Password,
		DB:           opts.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 2,
	})
	return &Cache{client: client, logger: logger}
}

// Close は接続を閉じます。
func (c *Cache) Close() error {
	return c.client.Close()
}

// Ping は疎通確認を行います。
func (c *Cache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Generation は現在のキャッシュ世代を返します。一度も無効化されていなければ 0 です。
func (c *Cache) Generation(ctx context.Context) (int64, error) {
	generation, err := c.client.Get(ctx, generationKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		c.logger.Error("failed to get cache generation", zap.Error(err))
		return 0, fmt.Errorf("redis: get %s: %w", generationKey, err)
	}
	return generation, nil
}

// GetNotifications はキャッシュ済みの通知を返します。キーが存在しない場合 ok は false です。
func (c *Cache) GetNotifications(ctx context.Context, generation int64, day string) ([]compliance.Notification, bool, error) {
	key := NotificationsKey(generation, day)
	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		c.logger.Error("failed to get notifications", zap.String("key", key), zap.Error(err))
		return nil, false, fmt.Errorf("redis: get %s: %w", key, err)
	}

	notifications, err := decodeNotifications(data)
	if err != nil {
		return nil, false, fmt.Errorf("redis: decode %s: %w", key, err)
	}
	return notifications, true, nil
}

// SetNotifications は通知を TTL 付きで保存します。
func (c *Cache) SetNotifications(ctx context.Context, generation int64, day string, notifications []compliance.Notification, ttl time.Duration) error {
	key := NotificationsKey(generation, day)
	data, err := json.Marshal(notifications)
	if err != nil {
		return fmt.Errorf("redis: encode %s: %w", key, err)
	}
	if err := c.client.Set(ctx, key, data, ttl).Err(); err != nil {
		c.logger.Error("failed to set notifications", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("redis: set %s: %w", key, err)
	}
	return nil
}

// Invalidate は世代を進めます。古い世代のキーは参照されなくなり TTL で消えます。
func (c *Cache) Invalidate(ctx context.Context) error {
	generation, err := c.client.Incr(ctx, generationKey).Result()
	if err != nil {
		c.logger.Error("failed to invalidate notifications", zap.Error(err))
		return fmt.Errorf("redis: incr %s: %w", generationKey, err)
	}
	c.logger.Debug("notifications cache invalidated", zap.Int64("generation", generation))
	return nil
}

func decodeNotifications(data []byte) ([]compliance.Notification, error) {
	var notifications []compliance.Notification
	if err := json.Unmarshal(data, &notifications); err != nil {
		return nil, err
	}
	for _, n := range notifications {
		if !n.Kind.Valid() {
			return nil, fmt.Errorf("unknown kind %q", n.Kind)
		}
	}
	return notifications, nil
}
