package config

import "zuhaoku/pkg/config"

func init() {
	config.Add("queue", func() map[string]interface{} {
		return map[string]interface{}{
			// 对账任务入队限流，每秒任务数
			"rate_limit": config.Env("QUEUE_RATE_LIMIT", 50),
			"rate_burst": config.Env("QUEUE_RATE_BURST", 100),

			// 未启用 Redis 时进程内队列的容量
			"memory_size": config.Env("QUEUE_MEMORY_SIZE", 1024),

			// 对账工作协程数
			"worker_count": config.Env("QUEUE_WORKER_COUNT", 4),

			// 单个任务失败后的重试次数和间隔（秒）
			"retry_times": config.Env("QUEUE_RETRY_TIMES", 3),
			"retry_delay": config.Env("QUEUE_RETRY_DELAY", 5),

			// 对账扫描周期，cron 表达式，支持 @every
			"sweep_spec": config.Env("RECONCILE_SWEEP_SPEC", "@every 1m"),

			// 待支付记录创建多久之后才主动查询，单位秒
			"pending_grace": config.Env("RECONCILE_PENDING_GRACE", 60),

			// 单次扫描的最大记录数
			"sweep_limit": config.Env("RECONCILE_SWEEP_LIMIT", 200),
		}
	})
}
