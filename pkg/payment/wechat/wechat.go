package wechat

import (
	"context"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
	"github.com/wechatpay-apiv3/wechatpay-go/core"
	"github.com/wechatpay-apiv3/wechatpay-go/core/auth/verifiers"
	"github.com/wechatpay-apiv3/wechatpay-go/core/downloader"
	"github.com/wechatpay-apiv3/wechatpay-go/core/notify"
	"github.com/wechatpay-apiv3/wechatpay-go/core/option"
	"github.com/wechatpay-apiv3/wechatpay-go/services/payments"
	"github.com/wechatpay-apiv3/wechatpay-go/services/payments/native"
	"github.com/wechatpay-apiv3/wechatpay-go/utils"

	"zuhaoku/config"
	"zuhaoku/pkg/errs"
	"zuhaoku/pkg/payment/sign"
	"zuhaoku/pkg/payment/types"
)

const (
	defaultTimeout = 10 * time.Second
	defaultExpire  = 30 * time.Minute

	codeOrderNotExist = "ORDER_NOT_EXIST"
)

// 微信支付交易状态
const (
	StateSuccess    = "SUCCESS"
	StateRefund     = "REFUND"
	StateNotPay     = "NOTPAY"
	StateClosed     = "CLOSED"
	StateRevoked    = "REVOKED"
	StateUserPaying = "USERPAYING"
	StatePayError   = "PAYERROR"
)

var hundred = decimal.NewFromInt(100)

// WechatPayService 微信 Native 支付
type WechatPayService struct {
	client        *core.Client
	notifyHandler *notify.Handler
	appID         string
	mchID         string
	notifyURL     string
	timeout       time.Duration
}

// NewWechatPayService 创建微信支付服务，平台证书由 SDK 自动下载和更新
func NewWechatPayService(ctx context.Context, cfg config.WechatConfig) (*WechatPayService, error) {
	if cfg.MchID == "" || cfg.AppID == "" || cfg.SerialNo == "" || cfg.APIv3Key == "" {
		return nil, errs.Configuration("WECHAT_NOT_CONFIGURED", "微信支付商户信息未配置完整", nil)
	}

	// 1. 加载商户私钥
	privatePEM, err := sign.NormalizePrivateKey(cfg.PrivateKey)
	if err != nil {
		return nil, errs.Configuration("WECHAT_PRIVATE_KEY_INVALID", "微信支付商户私钥格式错误", err)
	}
	mchPrivateKey, err := utils.LoadPrivateKey(privatePEM)
	if err != nil {
		return nil, errs.Configuration("WECHAT_PRIVATE_KEY_INVALID", "微信支付商户私钥格式错误", err)
	}

	// 2. 创建客户端，同时注册平台证书下载器
	client, err := core.NewClient(ctx, option.WithWechatPayAutoAuthCipher(cfg.MchID, cfg.SerialNo, mchPrivateKey, cfg.APIv3Key))
	if err != nil {
		return nil, errs.Configuration("WECHAT_CLIENT_INVALID", "微信支付客户端初始化失败", err)
	}

	// 3. 回调验签使用下载器维护的平台证书
	visitor := downloader.MgrInstance().GetCertificateVisitor(cfg.MchID)
	handler, err := notify.NewRSANotifyHandler(cfg.APIv3Key, verifiers.NewSHA256WithRSAVerifier(visitor))
	if err != nil {
		return nil, errs.Configuration("WECHAT_NOTIFY_INVALID", "微信支付回调处理器初始化失败", err)
	}

	timeout := cfg.QueryTimeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &WechatPayService{
		client:        client,
		notifyHandler: handler,
		appID:         cfg.AppID,
		mchID:         cfg.MchID,
		notifyURL:     cfg.NotifyURL,
		timeout:       timeout,
	}, nil
}

// Provider 支付渠道
func (s *WechatPayService) Provider() types.Provider {
	return types.ProviderWechat
}

// CreatePayment Native 下单，返回二维码链接
func (s *WechatPayService) CreatePayment(ctx context.Context, req *types.Request) (*types.Result, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	expireAt := time.Now().Add(defaultExpire)
	notifyURL := s.notifyURL
	if req.NotifyURL != "" {
		notifyURL = req.NotifyURL
	}

	svc := native.NativeApiService{Client: s.client}
	resp, result, err := svc.Prepay(ctx, native.PrepayRequest{
		Appid:       core.String(s.appID),
		Mchid:       core.String(s.mchID),
		Description: core.String(req.Description),
		OutTradeNo:  core.String(req.TransactionID),
		TimeExpire:  core.Time(expireAt),
		NotifyUrl:   core.String(notifyURL),
		Amount: &native.Amount{
			Total:    core.Int64(ToFen(req.Amount)),
			Currency: core.String("CNY"),
		},
	})
	if err != nil {
		return nil, errs.Gateway("WECHAT_REQUEST_FAILED", "微信支付下单失败", err)
	}
	if result != nil && result.Response != nil && result.Response.StatusCode != http.StatusOK {
		return nil, errs.Gateway("WECHAT_REQUEST_FAILED", "微信支付下单失败", nil)
	}
	if resp == nil || resp.CodeUrl == nil {
		return nil, errs.Gateway("WECHAT_REQUEST_FAILED", "微信支付未返回二维码链接", nil)
	}

	return &types.Result{
		Provider:      types.ProviderWechat,
		TransactionID: req.TransactionID,
		CodeURL:       *resp.CodeUrl,
		ExpireAt:      expireAt,
	}, nil
}

// QueryStatus 按商户订单号查询，订单不存在时返回 nil
func (s *WechatPayService) QueryStatus(ctx context.Context, transactionID string) (*types.TradeQuery, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	svc := native.NativeApiService{Client: s.client}
	tx, _, err := svc.QueryOrderByOutTradeNo(ctx, native.QueryOrderByOutTradeNoRequest{
		OutTradeNo: core.String(transactionID),
		Mchid:      core.String(s.mchID),
	})
	if err != nil {
		if core.IsAPIError(err, codeOrderNotExist) {
			return nil, nil
		}
		return nil, errs.Gateway("WECHAT_QUERY_FAILED", "查询微信支付订单失败", err)
	}
	if tx == nil || tx.TradeState == nil {
		return nil, nil
	}

	return &types.TradeQuery{
		Status:      MapTradeState(*tx.TradeState),
		RawStatus:   *tx.TradeState,
		TradeNo:     stringValue(tx.TransactionId),
		TotalAmount: transactionAmount(tx),
	}, nil
}

// ParseNotification 校验回调签名并解密通知内容
func (s *WechatPayService) ParseNotification(ctx context.Context, req *http.Request) (*types.Notification, error) {
	tx := new(payments.Transaction)
	if _, err := s.notifyHandler.ParseNotifyRequest(ctx, req, tx); err != nil {
		return nil, errs.Signature("SIGNATURE_INVALID", "微信支付回调验签失败", err)
	}

	transactionID := stringValue(tx.OutTradeNo)
	if transactionID == "" {
		return nil, errs.Validation("OUT_TRADE_NO_MISSING", "通知缺少 out_trade_no")
	}

	state := stringValue(tx.TradeState)
	var amount decimal.NullDecimal
	if tx.Amount != nil && tx.Amount.Total != nil {
		amount = decimal.NewNullDecimal(FromFen(*tx.Amount.Total))
	}

	return &types.Notification{
		Provider:      types.ProviderWechat,
		TransactionID: transactionID,
		TradeNo:       stringValue(tx.TransactionId),
		Status:        MapTradeState(state),
		RawStatus:     state,
		TotalAmount:   amount,
		Payload: map[string]interface{}{
			"out_trade_no":   transactionID,
			"transaction_id": stringValue(tx.TransactionId),
			"trade_state":    state,
			"success_time":   stringValue(tx.SuccessTime),
		},
	}, nil
}

// MapTradeState 微信交易状态映射。退款和支付失败不触发订单流转
func MapTradeState(state string) types.TradeStatus {
	switch state {
	case StateNotPay, StateUserPaying:
		return types.TradePending
	case StateSuccess:
		return types.TradeSuccess
	case StateClosed, StateRevoked:
		return types.TradeClosed
	}
	return types.TradeUnknown
}

// ToFen 元转分
func ToFen(amount decimal.Decimal) int64 {
	return amount.Mul(hundred).Round(0).IntPart()
}

// FromFen 分转元
func FromFen(fen int64) decimal.Decimal {
	return decimal.New(fen, -2)
}

func transactionAmount(tx *payments.Transaction) decimal.Decimal {
	if tx.Amount == nil || tx.Amount.Total == nil {
		return decimal.Zero
	}
	return FromFen(*tx.Amount.Total)
}

func stringValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
