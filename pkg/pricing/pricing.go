// Package pricing 租期计费
package pricing

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"zuhaoku/pkg/errs"
)

// Unit 租期单位
type Unit string

const (
	UnitMinute    Unit = "MINUTE"
	UnitHour      Unit = "HOUR"
	UnitOvernight Unit = "OVERNIGHT"
)

// DefaultOvernightHours 包夜折算的小时数
const DefaultOvernightHours = 8

// Table 账号价格表
type Table struct {
	PerHalfHour  decimal.Decimal `json:"price_30min"`
	PerHour      decimal.Decimal `json:"price_1h"`
	PerOvernight decimal.Decimal `json:"price_overnight"`
}

var (
	thirty  = decimal.NewFromInt(30)
	two     = decimal.NewFromInt(2)
	zeroAmt = decimal.Zero
)

// ParseUnit 解析租期单位，不区分大小写
func ParseUnit(s string) (Unit, error) {
	switch u := Unit(strings.ToUpper(strings.TrimSpace(s))); u {
	case UnitMinute, UnitHour, UnitOvernight:
		return u, nil
	}
	return "", errs.Validation("INVALID_DURATION_UNIT", "租期单位必须是 MINUTE、HOUR 或 OVERNIGHT")
}

// Validate 校验租期
func Validate(duration int, unit Unit) error {
	if duration <= 0 {
		return errs.Validation("INVALID_DURATION", "租期必须为正整数")
	}
	if _, err := ParseUnit(string(unit)); err != nil {
		return err
	}
	return nil
}

// Calculate 计算租金，保留两位小数，四舍五入
func Calculate(t Table, duration int, unit Unit) (decimal.Decimal, error) {
	if err := Validate(duration, unit); err != nil {
		return zeroAmt, err
	}
	if t.PerHalfHour.IsNegative() || t.PerHour.IsNegative() || t.PerOvernight.IsNegative() {
		return zeroAmt, errs.Validation("INVALID_PRICE_TABLE", "账号价格不能为负数")
	}

	d := decimal.NewFromInt(int64(duration))
	var amount decimal.Decimal
	switch unit {
	case UnitMinute:
		amount = t.PerHalfHour.Mul(d).Div(thirty)
	case UnitHour:
		amount = t.PerHour.Mul(d)
	case UnitOvernight:
		amount = t.PerOvernight.Mul(d)
	}
	return amount.Round(2), nil
}

// EndTime 计算到期时间。续租时 from 为当前到期时间，下单时为创建时间
func EndTime(from time.Time, duration int, unit Unit) (time.Time, error) {
	if err := Validate(duration, unit); err != nil {
		return from, err
	}
	switch unit {
	case UnitMinute:
		return from.Add(time.Duration(duration) * time.Minute), nil
	case UnitHour:
		return from.Add(time.Duration(duration) * time.Hour), nil
	default:
		return from.AddDate(0, 0, duration), nil
	}
}

// TableFromHourly 由小时价生成价格表：半小时为小时价的一半，包夜为小时价乘以包夜小时数
func TableFromHourly(perHour decimal.Decimal, overnightHours int) Table {
	if overnightHours <= 0 {
		overnightHours = DefaultOvernightHours
	}
	return Table{
		PerHalfHour:  perHour.Div(two).Round(2),
		PerHour:      perHour.Round(2),
		PerOvernight: perHour.Mul(decimal.NewFromInt(int64(overnightHours))).Round(2),
	}
}
