package middlewares

import (
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cast"
	"golang.org/x/time/rate"

	"zuhaoku/pkg/app"
	"zuhaoku/pkg/limiter"
	"zuhaoku/pkg/logger"
	"zuhaoku/pkg/response"
)

const (
	// DefaultBurst 默认突发请求数量
	DefaultBurst = 100
	// limiterIdleTTL 本地限流器闲置多久后清理
	limiterIdleTTL = 24 * time.Hour
)

var (
	// 本地限流器缓存，key 为限流键
	limiters sync.Map
	// 限流器最后一次使用时间
	lastAccess sync.Map

	cleanupOnce sync.Once
)

// RateLimitConfig 限流配置
type RateLimitConfig struct {
	Limit string
	Burst int
}

// LimitIP 全局限流中间件，针对 IP 进行限流
//
// 支持的限流格式:
// - 5 reqs/second:   "5-S"
// - 10 reqs/minute:  "10-M"
// - 1000 reqs/hour:  "1000-H"
// - 2000 reqs/day:   "2000-D"
//
// 配置了 Redis 时多个实例共享计数，否则退化为进程内令牌桶
func LimitIP(limit string) gin.HandlerFunc {
	return createLimiterHandler(limiter.GetKeyIP, newRateLimitConfig(limit))
}

// LimitPerRoute 针对单个路由的限流中间件，基于 IP + 路由路径
func LimitPerRoute(limit string) gin.HandlerFunc {
	return createLimiterHandler(limiter.GetKeyRouteWithIP, newRateLimitConfig(limit))
}

func newRateLimitConfig(limit string) RateLimitConfig {
	// 测试环境使用较大限制
	if app.IsTesting() {
		limit = "1000000-H"
	}
	return RateLimitConfig{Limit: limit, Burst: DefaultBurst}
}

// createLimiterHandler 创建限流处理器
func createLimiterHandler(keyFunc func(*gin.Context) string, config RateLimitConfig) gin.HandlerFunc {
	cleanupOnce.Do(func() { go cleanupLimiters() })

	return func(c *gin.Context) {
		key := keyFunc(c)

		if limiter.Shared() {
			if !allowShared(c, key, config) {
				return
			}
			c.Next()
			return
		}

		lim, err := getLimiter(key, config)
		if err != nil {
			logger.ErrorString("限流器", "创建失败", err.Error())
			// 降级处理：允许请求通过
			c.Next()
			return
		}

		if !lim.Allow() {
			response.Abort429(c)
			return
		}

		setRateLimitHeaders(c, lim)
		c.Next()
	}
}

// allowShared Redis 计数，Redis 出错时放行
func allowShared(c *gin.Context, key string, config RateLimitConfig) bool {
	res, err := limiter.CheckRate(c, key, config.Limit)
	if err != nil {
		logger.LogIf(err)
		return true
	}

	c.Header("X-RateLimit-Limit", cast.ToString(res.Limit))
	c.Header("X-RateLimit-Remaining", cast.ToString(res.Remaining))
	c.Header("X-RateLimit-Reset", cast.ToString(res.Reset))

	if res.Reached {
		response.Abort429(c)
		return false
	}
	return true
}

// getLimiter 获取或创建限流器
func getLimiter(key string, config RateLimitConfig) (*rate.Limiter, error) {
	lastAccess.Store(key, time.Now())

	if lim, exists := limiters.Load(key); exists {
		return lim.(*rate.Limiter), nil
	}

	r, err := limiter.ParseLimit(config.Limit)
	if err != nil {
		return nil, err
	}

	lim := rate.NewLimiter(rate.Limit(r.Rate), config.Burst)

	// 并发安全地存储限流器
	actual, _ := limiters.LoadOrStore(key, lim)
	return actual.(*rate.Limiter), nil
}

// setRateLimitHeaders 设置限流相关的响应头
func setRateLimitHeaders(c *gin.Context, lim *rate.Limiter) {
	c.Header("X-RateLimit-Limit", cast.ToString(float64(lim.Limit())))
	c.Header("X-RateLimit-Remaining", cast.ToString(int(lim.Tokens())))
	c.Header("X-RateLimit-Reset", cast.ToString(time.Now().Add(time.Second).Unix()))
}

// cleanupLimiters 定期清理闲置的限流器
func cleanupLimiters() {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()
	for range ticker.C {
		now := time.Now()
		lastAccess.Range(func(key, value interface{}) bool {
			if now.Sub(value.(time.Time)) > limiterIdleTTL {
				limiters.Delete(key)
				lastAccess.Delete(key)
			}
			return true
		})
	}
}
