package order

import (
	"fmt"
	"strconv"
	"strings"

	"zuhaoku/pkg/errs"
)

// Status 订单状态
type Status string

const (
	StatusPaying    Status = "paying"    // 待支付
	StatusLeasing   Status = "leasing"   // 租赁中
	StatusClosed    Status = "closed"    // 已归还
	StatusCancelled Status = "cancelled" // 已取消
	StatusAppeal    Status = "appeal"    // 申诉中，由申诉流程写入
)

// NoPrefix 订单编号前缀
const NoPrefix = "ORD"

// FormatNo 订单编号，如 ORD0000000020
func FormatNo(id uint64) string {
	return fmt.Sprintf("%s%010d", NoPrefix, id)
}

// ParseNo 解析订单编号，兼容纯数字 ID
func ParseNo(no string) (uint64, error) {
	s := strings.TrimSpace(no)
	if len(s) > len(NoPrefix) && strings.EqualFold(s[:len(NoPrefix)], NoPrefix) {
		s = s[len(NoPrefix):]
	}
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil || id == 0 {
		return 0, errs.Validation("INVALID_ORDER_NO", "订单编号格式错误")
	}
	return id, nil
}

// No 订单编号
func (o *Order) No() string {
	return FormatNo(o.ID)
}

// IsPaying 是否待支付
func (o *Order) IsPaying() bool {
	return o.Status == StatusPaying
}

// IsLeasing 是否租赁中
func (o *Order) IsLeasing() bool {
	return o.Status == StatusLeasing
}

// IsFinished 已归还或已取消的订单不会再流转
func (o *Order) IsFinished() bool {
	return o.Status == StatusClosed || o.Status == StatusCancelled
}

// BelongsTo 是否属于该租客
func (o *Order) BelongsTo(tenantID uint64) bool {
	return o.TenantID == tenantID
}
