// Package repositories 数据访问层，所有方法都接收 ctx，事务内通过 WithTx 复用
package repositories

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

// forUpdate 行锁，SQLite 驱动会忽略该子句
var forUpdate = clause.Locking{Strength: "UPDATE"}

// paginate 分页 scope
func paginate(page, pageSize int) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if page <= 0 {
			page = 1
		}
		switch {
		case pageSize <= 0:
			pageSize = defaultPageSize
		case pageSize > maxPageSize:
			pageSize = maxPageSize
		}
		return db.Offset((page - 1) * pageSize).Limit(pageSize)
	}
}
