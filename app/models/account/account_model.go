// Package account 出租的游戏账号
package account

import (
	"github.com/shopspring/decimal"

	"zuhaoku/app/models"
)

// Account 游戏账号，登录凭据加密保存
type Account struct {
	models.BaseModel

	OwnerID     uint64 `gorm:"index;not null" json:"owner_id"`
	GameID      uint64 `gorm:"index;not null" json:"game_id"`
	Title       string `gorm:"type:varchar(100);not null" json:"title"`
	Description string `gorm:"type:text" json:"description"`

	// 密文和随机数均为 base64
	CredentialCipher string `gorm:"type:text;not null" json:"-"`
	CredentialNonce  string `gorm:"type:varchar(64);not null" json:"-"`

	Price30Min     decimal.Decimal `gorm:"column:price_30min;type:decimal(10,2);not null" json:"price_30min"`
	Price1H        decimal.Decimal `gorm:"column:price_1h;type:decimal(10,2);not null" json:"price_1h"`
	PriceOvernight decimal.Decimal `gorm:"column:price_overnight;type:decimal(10,2);not null" json:"price_overnight"`

	Status Status `gorm:"type:varchar(20);index;not null" json:"status"`

	models.CommonTimestampsField
}

// TableName 指定表名
func (Account) TableName() string {
	return "accounts"
}
