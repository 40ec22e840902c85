// Package bootstrap 程序启动时各组件的初始化
package bootstrap

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"zuhaoku/pkg/config"
	"zuhaoku/pkg/database"
	"zuhaoku/pkg/database/migrations"
	"zuhaoku/pkg/logger"
)

// SetupDB 初始化数据库和 ORM，并迁移账号、订单、支付三张表
func SetupDB() error {
	var dialector gorm.Dialector
	connection := config.Get("database.connection")
	switch connection {
	case "postgresql":
		dialector = setupPostgreSQL()
	case "sqlite":
		file := config.Get("database.sqlite.database")
		if err := os.MkdirAll(filepath.Dir(file), 0o755); err != nil {
			return fmt.Errorf("创建 sqlite 目录失败: %w", err)
		}
		dialector = sqlite.Open(file)
	default:
		return fmt.Errorf("暂不支持该数据库类型: %s", connection)
	}

	if err := database.Connect(dialector, logger.NewGormLogger()); err != nil {
		return err
	}
	setupDBPool(connection)

	if err := database.AutoMigrate(migrations.RegisterTables()); err != nil {
		return fmt.Errorf("数据表结构迁移失败: %w", err)
	}
	logger.InfoString("数据库", "自动迁移", "数据表结构迁移成功")
	return nil
}

func setupPostgreSQL() gorm.Dialector {
	return postgres.New(postgres.Config{DSN: postgresDSN()})
}

// postgresDSN lock_timeout 由 pgx 作为会话参数下发
func postgresDSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s TimeZone=%s lock_timeout=%d",
		config.Get("database.postgresql.host"),
		config.Get("database.postgresql.port"),
		config.Get("database.postgresql.username"),
		config.Get("database.postgresql.password"),
		config.Get("database.postgresql.database"),
		config.Get("database.postgresql.sslmode", "disable"),
		config.Get("app.timezone", "Asia/Shanghai"),
		config.GetInt("database.postgresql.lock_timeout", 5000),
	)
}

// setupDBPool sqlite 只允许单连接写入，连接池参数只对 PostgreSQL 生效
func setupDBPool(connection string) {
	if connection == "sqlite" {
		database.SQLDB.SetMaxOpenConns(1)
		return
	}
	database.SQLDB.SetMaxOpenConns(config.GetInt("database.postgresql.max_open_connections"))
	database.SQLDB.SetMaxIdleConns(config.GetInt("database.postgresql.max_idle_connections"))
	database.SQLDB.SetConnMaxLifetime(time.Duration(config.GetInt("database.postgresql.max_life_seconds")) * time.Second)
}
