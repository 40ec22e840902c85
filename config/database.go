package config

import (
	"zuhaoku/pkg/config"
)

func init() {
	config.Add("database", func() map[string]interface{} {
		return map[string]interface{}{
			// 线上使用 PostgreSQL，支付确认依赖 SELECT ... FOR UPDATE 行锁
			"connection": config.Env("DB_CONNECTION", "postgresql"),

			"postgresql": map[string]interface{}{
				"host":     config.Env("DB_HOST", "127.0.0.1"),
				"port":     config.Env("DB_PORT", "5432"),
				"database": config.Env("DB_DATABASE", "zuhaoku"),
				"username": config.Env("DB_USERNAME", "zuhaoku"),
				"password": config.Env("DB_PASSWORD", ""),
				"sslmode":  config.Env("DB_SSLMODE", "disable"),

				// 通知、轮询、对账争抢同一笔订单时最多等锁的毫秒数，超时后事务回滚，交给网关重发或下一轮对账
				"lock_timeout": config.Env("DB_LOCK_TIMEOUT_MS", 5000),

				// 回调和对账 worker 同时持有事务，空闲连接不超过最大连接数
				"max_idle_connections": config.Env("DB_MAX_IDLE_CONNECTIONS", 10),
				"max_open_connections": config.Env("DB_MAX_OPEN_CONNECTIONS", 25),
				"max_life_seconds":     config.Env("DB_MAX_LIFE_SECONDS", 5*60),
			},

			// 本地开发用，单连接，没有行锁
			"sqlite": map[string]interface{}{
				"database": config.Env("DB_SQL_FILE", "storage/zuhaoku.db"),
			},
		}
	})
}
