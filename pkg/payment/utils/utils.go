package utils

import (
	"fmt"
	"strings"
	"time"

	"zuhaoku/pkg/payment/types"
)

// GenerateTransactionID 生成商户订单号（out_trade_no）：渠道前缀 + 毫秒时间戳 + 订单 ID
func GenerateTransactionID(provider types.Provider, orderID uint64, now time.Time) string {
	return fmt.Sprintf("%s%d%d", strings.ToUpper(string(provider)), now.UnixMilli(), orderID)
}
