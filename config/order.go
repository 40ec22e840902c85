package config

import "zuhaoku/pkg/config"

func init() {
	config.Add("order", func() map[string]interface{} {
		return map[string]interface{}{
			// 包夜折算的小时数，仅用于由小时价生成包夜价
			"overnight_hours": config.Env("ORDER_OVERNIGHT_HOURS", 8),

			// 单次下单或续租允许的最大时长（按单位计）
			"max_duration": config.Env("ORDER_MAX_DURATION", 720),

			// 轮询订单状态时查询网关的超时时间，单位秒
			"poll_timeout": config.Env("ORDER_POLL_TIMEOUT", 8),
		}
	})
}
