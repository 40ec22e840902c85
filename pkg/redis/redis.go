// Package redis Redis 连接管理，主实例用于限流，队列实例用于对账任务
package redis

import (
	"context"
	"sync"
	"time"

	redis "github.com/redis/go-redis/v9"

	"zuhaoku/pkg/logger"
)

const (
	// DefaultPoolSize Redis 连接池大小
	DefaultPoolSize = 50
	// DefaultTimeout 默认操作超时时间
	DefaultTimeout = 5 * time.Second
	// DefaultMinIdleConns 最小空闲连接数
	DefaultMinIdleConns = 5
	// DefaultMaxRetries 最大重试次数
	DefaultMaxRetries = 3
	// DefaultIdleTimeout 空闲超时
	DefaultIdleTimeout = 5 * time.Minute
)

// RedisInstance Redis 实例类型
type RedisInstance string

const (
	MainDB  RedisInstance = "main"  // 主数据库实例（用于限流）
	QueueDB RedisInstance = "queue" // 队列数据库实例
)

// RedisClient Redis 客户端封装
type RedisClient struct {
	Client  *redis.Client
	Context context.Context
}

// RedisConfig Redis 配置结构
type RedisConfig struct {
	Address      string
	Username     string
	Password     string
	DB           int
	PoolSize     int
	MinIdleConns int
	Timeout      time.Duration
}

// RedisManager 多实例管理
type RedisManager struct {
	instances map[RedisInstance]*RedisClient
	mutex     sync.RWMutex
}

var (
	// Manager 未配置 redis 时为 nil
	Manager *RedisManager
	// Redis 主实例
	Redis *RedisClient
)

// NewClient 创建新的 Redis 客户端并测试连接
func NewClient(config RedisConfig) (*RedisClient, error) {
	rds := &RedisClient{
		Context: context.Background(),
	}

	rds.Client = redis.NewClient(&redis.Options{
		Addr:         config.Address,
		Username:     config.Username,
		Password:     config.Password,
		DB:           config.DB,
		PoolSize:     config.PoolSize,
		MinIdleConns: config.MinIdleConns,

		PoolTimeout:     config.Timeout,
		ConnMaxIdleTime: DefaultIdleTimeout,
		ConnMaxLifetime: 24 * time.Hour,

		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,

		MaxRetries:      DefaultMaxRetries,
		MinRetryBackoff: 8 * time.Millisecond,
		MaxRetryBackoff: 512 * time.Millisecond,
	})

	if err := rds.Ping(); err != nil {
		_ = rds.Client.Close()
		return nil, err
	}
	return rds, nil
}

// Ping 测试 Redis 连接
func (rds *RedisClient) Ping() error {
	ctx, cancel := context.WithTimeout(rds.Context, DefaultTimeout)
	defer cancel()

	return rds.Client.Ping(ctx).Err()
}

// SetNX 键不存在时写入，返回是否写入成功
func (rds *RedisClient) SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) (bool, error) {
	return rds.Client.SetNX(ctx, key, value, expiration).Result()
}

// Del 删除键
func (rds *RedisClient) Del(ctx context.Context, keys ...string) error {
	return rds.Client.Del(ctx, keys...).Err()
}

// InitRedis 初始化 Redis 管理器
func InitRedis(address, username, password string, mainDB, queueDB int) error {
	base := RedisConfig{
		Address:      address,
		Username:     username,
		Password:     password,
		PoolSize:     DefaultPoolSize,
		MinIdleConns: DefaultMinIdleConns,
		Timeout:      DefaultTimeout,
	}

	mainConfig := base
	mainConfig.DB = mainDB
	mainClient, err := NewClient(mainConfig)
	if err != nil {
		return err
	}

	queueConfig := base
	queueConfig.DB = queueDB
	queueClient, err := NewClient(queueConfig)
	if err != nil {
		_ = mainClient.Client.Close()
		return err
	}

	Manager = &RedisManager{
		instances: map[RedisInstance]*RedisClient{
			MainDB:  mainClient,
			QueueDB: queueClient,
		},
	}
	Redis = mainClient
	logger.InfoString("Redis", "Init", "Redis 连接成功: "+address)
	return nil
}

// Enabled 是否已初始化
func Enabled() bool {
	return Manager != nil
}

// GetRedis 获取指定的 Redis 实例
func GetRedis(instance RedisInstance) *RedisClient {
	if Manager == nil {
		return nil
	}
	Manager.mutex.RLock()
	defer Manager.mutex.RUnlock()

	if client, ok := Manager.instances[instance]; ok {
		return client
	}
	return Redis
}

// Close 关闭所有连接
func Close() {
	if Manager == nil {
		return
	}
	Manager.mutex.Lock()
	defer Manager.mutex.Unlock()

	for name, client := range Manager.instances {
		if err := client.Client.Close(); err != nil {
			logger.ErrorString("Redis", "Close", string(name)+": "+err.Error())
		}
	}
}
