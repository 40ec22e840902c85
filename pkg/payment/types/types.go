package types

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Provider 支付渠道
type Provider string

const (
	ProviderWechat Provider = "wechat"
	ProviderAlipay Provider = "alipay"
)

// ParseProvider 解析支付渠道
func ParseProvider(s string) (Provider, bool) {
	switch p := Provider(strings.ToLower(strings.TrimSpace(s))); p {
	case ProviderWechat, ProviderAlipay:
		return p, true
	}
	return "", false
}

// TradeStatus 网关交易状态，各渠道的原始状态统一映射到这里
type TradeStatus string

const (
	TradePending TradeStatus = "PENDING"
	TradeSuccess TradeStatus = "SUCCESS"
	TradeClosed  TradeStatus = "CLOSED"
	TradeUnknown TradeStatus = "UNKNOWN"
)

// Request 发起支付的参数
type Request struct {
	OrderID       uint64          `json:"order_id"`
	TransactionID string          `json:"transaction_id"`
	Amount        decimal.Decimal `json:"amount"`
	Description   string          `json:"description"`
	ReturnURL     string          `json:"return_url,omitempty"`
	NotifyURL     string          `json:"notify_url,omitempty"`
	ClientIP      string          `json:"client_ip,omitempty"`
}

// Result 发起支付的结果。支付宝返回自动提交的表单，微信 Native 返回二维码链接
type Result struct {
	Provider      Provider  `json:"provider"`
	TransactionID string    `json:"transaction_id"`
	PaymentURL    string    `json:"payment_url,omitempty"`
	Form          string    `json:"form,omitempty"`
	CodeURL       string    `json:"code_url,omitempty"`
	ExpireAt      time.Time `json:"expire_at"`
}

// TradeQuery 主动查询得到的交易信息
type TradeQuery struct {
	Status      TradeStatus
	RawStatus   string
	TradeNo     string
	TotalAmount decimal.Decimal
}

// Notification 验签通过的异步通知
type Notification struct {
	Provider      Provider
	TransactionID string
	TradeNo       string
	Status        TradeStatus
	RawStatus     string
	TotalAmount   decimal.NullDecimal
	Payload       map[string]interface{}
}

// Gateway 支付网关。QueryStatus 在网关报告交易不存在时返回 nil, nil，只有传输失败才返回错误
type Gateway interface {
	Provider() Provider
	CreatePayment(ctx context.Context, req *Request) (*Result, error)
	QueryStatus(ctx context.Context, transactionID string) (*TradeQuery, error)
}
