package redis

import (
	"context"

	goredis "github.com/redis/go-redis/v9"

	"github.com/contractlens/ragcheck/internal/redis"
)

type RedisStreamConfig struct {
	RedisAddr     string
	RedisPassword string
	Stream        string
	Group         string
	ConsumerName  string
	// ResultsStream receives one message per scored request. Empty
	// disables result publishing.
	ResultsStream string
}

func NewRedisStreamConfig(redisAddr string, redisPassword string, stream string, group string, consumerName string, resultsStream string) *RedisStreamConfig {
	return &RedisStreamConfig{
		RedisAddr:     redisAddr,
		RedisPassword: redisPassword,
		Stream:        stream,
		Group:         group,
		ConsumerName:  consumerName,
		ResultsStream: resultsStream,
	}
}

func Connect(ctx context.Context, cfg *RedisStreamConfig) (*goredis.Client, error) {
	return redis.ConnectRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, 5)
}
