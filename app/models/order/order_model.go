// Package order 租号订单
package order

import (
	"time"

	"github.com/shopspring/decimal"

	"zuhaoku/app/models"
)

// Order 租号订单，金额在续租时累加
type Order struct {
	models.BaseModel

	AccountID     uint64          `gorm:"index;not null" json:"account_id"`
	TenantID      uint64          `gorm:"index;not null" json:"tenant_id"`
	StartTime     time.Time       `gorm:"not null" json:"start_time"`
	EndTime       time.Time       `gorm:"not null" json:"end_time"`
	ActualEndTime *time.Time      `json:"actual_end_time,omitempty"`
	Amount        decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"amount"`
	Status        Status          `gorm:"type:varchar(20);index;not null" json:"status"`

	models.CommonTimestampsField
}

// TableName 指定表名
func (Order) TableName() string {
	return "lease_orders"
}
