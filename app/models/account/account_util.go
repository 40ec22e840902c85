package account

import (
	"zuhaoku/pkg/pricing"
)

// Status 账号状态
type Status string

const (
	StatusListed   Status = "listed"   // 上架中，可下单
	StatusDelisted Status = "delisted" // 已下架
	StatusLeased   Status = "leased"   // 出租中
)

// Credentials 账号登录凭据
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// PriceTable 价格表
func (a *Account) PriceTable() pricing.Table {
	return pricing.Table{
		PerHalfHour:  a.Price30Min,
		PerHour:      a.Price1H,
		PerOvernight: a.PriceOvernight,
	}
}

// SetPriceTable 写入价格表
func (a *Account) SetPriceTable(t pricing.Table) {
	a.Price30Min = t.PerHalfHour
	a.Price1H = t.PerHour
	a.PriceOvernight = t.PerOvernight
}

// IsListed 是否上架
func (a *Account) IsListed() bool {
	return a.Status == StatusListed
}

// IsLeased 是否出租中
func (a *Account) IsLeased() bool {
	return a.Status == StatusLeased
}
