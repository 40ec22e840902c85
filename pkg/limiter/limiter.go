// Package limiter 处理限流逻辑
package limiter

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	limiterlib "github.com/ulule/limiter/v3"
	sredis "github.com/ulule/limiter/v3/drivers/store/redis"

	"zuhaoku/pkg/config"
	"zuhaoku/pkg/logger"
	"zuhaoku/pkg/redis"
)

var (
	storeOnce   sync.Once
	sharedStore limiterlib.Store
	storeErr    error
)

// Rate 定义限流速率
type Rate struct {
	Rate float64
}

// ParseLimit 解析限流配置字符串
// 支持的格式: "5-S"、"10-M"、"1000-H"、"2000-D"
func ParseLimit(limit string) (*Rate, error) {
	// 先交给 limiterlib 校验格式，"5-S" 对应它的 "5-S" 写法
	if _, err := limiterlib.NewRateFromFormatted(limit); err != nil {
		return nil, fmt.Errorf("invalid limit format: %w", err)
	}

	parts := strings.Split(limit, "-")
	if len(parts) != 2 {
		return nil, fmt.Errorf("invalid limit format: %s", limit)
	}

	value, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return nil, fmt.Errorf("invalid rate value: %s", parts[0])
	}

	// 根据时间单位转换为每秒的速率
	var ratePerSecond float64
	switch strings.ToUpper(parts[1]) {
	case "S":
		ratePerSecond = value
	case "M":
		ratePerSecond = value / 60.0
	case "H":
		ratePerSecond = value / 3600.0
	case "D":
		ratePerSecond = value / 86400.0
	default:
		return nil, fmt.Errorf("invalid time unit: %s", parts[1])
	}

	return &Rate{Rate: ratePerSecond}, nil
}

// GetKeyIP 获取 Limitor 的 Key，IP
func GetKeyIP(c *gin.Context) string {
	return c.ClientIP()
}

// GetKeyRouteWithIP Limitor 的 Key，路由+IP，针对单个路由做限流
func GetKeyRouteWithIP(c *gin.Context) string {
	return routeToKeyString(c.FullPath()) + c.ClientIP()
}

// Shared 多实例部署时是否使用 Redis 共享计数
func Shared() bool {
	return redis.Enabled()
}

// CheckRate 使用 Redis 存储检测请求是否超额，多个实例共享计数
func CheckRate(c *gin.Context, key string, formatted string) (limiterlib.Context, error) {
	store, err := redisStore()
	if err != nil {
		return limiterlib.Context{}, err
	}
	return CheckRateWithStore(c, store, key, formatted)
}

// CheckRateWithStore 使用指定存储检测请求是否超额
func CheckRateWithStore(c *gin.Context, store limiterlib.Store, key string, formatted string) (limiterlib.Context, error) {
	rate, err := limiterlib.NewRateFromFormatted(formatted)
	if err != nil {
		logger.LogIf(err)
		return limiterlib.Context{}, err
	}

	limiterObj := limiterlib.New(store, rate)

	// 同一请求经过多个路由组的 LimitIP 时，只增加一次访问次数
	onceKey := "limiter-once:" + key
	if c.GetBool(onceKey) {
		// Peek() 取结果，不增加访问次数
		return limiterObj.Peek(c, key)
	}
	c.Set(onceKey, true)

	// Get() 取结果且增加访问次数
	return limiterObj.Get(c, key)
}

// redisStore 初始化一次，使用主 Redis 实例
func redisStore() (limiterlib.Store, error) {
	storeOnce.Do(func() {
		client := redis.GetRedis(redis.MainDB)
		if client == nil {
			storeErr = fmt.Errorf("redis is not initialized")
			return
		}
		sharedStore, storeErr = sredis.NewStoreWithOptions(client.Client, limiterlib.StoreOptions{
			// 为 limiter 设置前缀，保持 redis 里数据的整洁
			Prefix: config.GetString("app.name", "zuhaoku") + ":limiter",
		})
		logger.LogIf(storeErr)
	})
	return sharedStore, storeErr
}

// routeToKeyString 辅助方法，将 URL 中的 / 格式为 -
func routeToKeyString(routeName string) string {
	routeName = strings.ReplaceAll(routeName, "/", "-")
	routeName = strings.ReplaceAll(routeName, ":", "_")
	return routeName
}
