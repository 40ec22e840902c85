// Package migrations 需要自动迁移的模型
package migrations

import (
	"zuhaoku/app/models/account"
	"zuhaoku/app/models/order"
	"zuhaoku/app/models/payment"
)

// RegisterTables 返回需要迁移的表的模型列表
func RegisterTables() []interface{} {
	return []interface{}{
		&account.Account{},
		&order.Order{},
		&payment.Payment{},
	}
}
