// Package config 站点配置信息
package config

import "zuhaoku/pkg/config"

func init() {
	config.Add("app", func() map[string]interface{} {
		return map[string]interface{}{

			// 应用名称
			"name": config.Env("APP_NAME", "zuhaoku"),

			// 当前环境，用以区分多环境，一般为 local, stage, production, testing
			"env": config.Env("APP_ENV", "production"),

			// 是否进入调试模式
			"debug": config.Env("APP_DEBUG", false),

			// 应用服务端口
			"port": config.Env("APP_PORT", "3000"),

			// 后端站点地址，用于拼接支付回调地址
			"url": config.Env("APP_URL", "http://localhost:3000"),

			// 前端站点地址，支付完成后跳转
			"frontend_url": config.Env("FRONTEND_URL", "http://localhost:5173"),

			// 加密账号凭据使用的密钥
			"key": config.Env("APP_KEY", ""),

			// 设置时区，日志记录里会使用到
			"timezone": config.Env("TIMEZONE", "Asia/Shanghai"),

			// 限流，格式见 pkg/limiter
			"api_rate_limit":    config.Env("API_RATE_LIMIT", "30000-H"),
			"order_rate_limit":  config.Env("ORDER_RATE_LIMIT", "60-M"),
			"notify_rate_limit": config.Env("NOTIFY_RATE_LIMIT", "600-M"),
		}
	})
}
