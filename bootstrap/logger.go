package bootstrap

import (
	"zuhaoku/pkg/config"
	"zuhaoku/pkg/logger"
)

// SetupLogger 按 log.* 配置初始化 zap 日志，滚动策略由 lumberjack 负责
func SetupLogger() {
	logger.InitLogger(
		config.GetString("log.filename"),
		config.GetInt("log.max_size"),
		config.GetInt("log.max_backup"),
		config.GetInt("log.max_age"),
		config.GetBool("log.compress"),
		config.GetString("log.type"),
		config.GetString("log.level"),
	)
}
