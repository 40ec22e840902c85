// Package payment 支付记录
package payment

import (
	"time"

	"github.com/shopspring/decimal"

	"zuhaoku/app/models"
)

// Payment 支付记录，一个订单同一时间只有一条待支付记录
type Payment struct {
	models.BaseModel

	OrderID       uint64          `gorm:"index;not null" json:"order_id"`
	Provider      string          `gorm:"column:payment_method;type:varchar(20);not null" json:"payment_method"`
	TransactionID string          `gorm:"type:varchar(64);uniqueIndex;not null" json:"transaction_id"`
	TradeNo       string          `gorm:"type:varchar(64)" json:"trade_no,omitempty"`
	Amount        decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"amount"`
	Status        Status          `gorm:"type:varchar(20);index;not null" json:"status"`
	PaidAt        *time.Time      `json:"paid_at,omitempty"`
	ExtraData     JSON            `gorm:"type:json" json:"extra_data,omitempty"`

	models.CommonTimestampsField
}

// TableName 指定表名
func (Payment) TableName() string {
	return "payment_records"
}
