package infra

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gateway/internal/config"
	"gateway/internal/logger"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Cache Redis 客户端包装，读写失败只记录日志并返回零值
type Cache struct {
	client redis.UniversalClient
}

// NewCache 按 REDIS_URL 创建 Redis 客户端
func NewCache(cfg *config.RedisConfig) (*Cache, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("解析 Redis URL 失败: %w", err)
	}
	return &Cache{client: redis.NewClient(opts)}, nil
}

// Connect 测试 Redis 连接，失败只记录日志，后续命令由客户端按需重连
func (c *Cache) Connect(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := c.Ping(ctx); err != nil {
		logger.Warn("Redis 连接失败，将在使用时重试", zap.Error(err))
		return false
	}
	logger.Info("Redis 连接成功")
	return true
}

// Ping Redis 健康检查
func (c *Cache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Set 写入键值，ttl<=0 表示不过期
func (c *Cache) Set(ctx context.Context, key, value string, ttl time.Duration) bool {
	if ttl < 0 {
		ttl = 0
	}
	if err := c.client.Set(ctx, key, value, ttl).Err(); err != nil {
		logger.Error("Redis set 失败", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

// Get 读取键值，键不存在或出错时返回 ok=false
func (c *Cache) Get(ctx context.Context, key string) (string, bool) {
	val, err := c.client.Get(ctx, key).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logger.Error("Redis get 失败", zap.String("key", key), zap.Error(err))
		}
		return "", false
	}
	return val, true
}

// Close 关闭 Redis 连接
func (c *Cache) Close() error {
	return c.client.Close()
}
