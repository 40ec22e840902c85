package bootstrap

import (
	"fmt"

	"zuhaoku/pkg/config"
	"zuhaoku/pkg/logger"
	"zuhaoku/pkg/redis"
)

// SetupRedis 配置了 redis.host 才连接 Redis，否则限流和对账队列使用进程内实现
func SetupRedis() error {
	host := config.GetString("redis.host")
	if host == "" {
		logger.InfoString("Redis", "Setup", "未配置 REDIS_HOST，使用进程内限流和队列")
		return nil
	}
	return redis.InitRedis(
		fmt.Sprintf("%v:%v", host, config.GetString("redis.port")),
		config.GetString("redis.username"),
		config.GetString("redis.password"),
		config.GetInt("redis.database"),
		config.GetInt("redis.queue_database"),
	)
}
