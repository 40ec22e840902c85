package alipay

import (
	"bytes"
	"context"
	"html/template"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/smartwalle/alipay/v3"

	"zuhaoku/config"
	"zuhaoku/pkg/errs"
	"zuhaoku/pkg/payment/sign"
	"zuhaoku/pkg/payment/types"
)

const (
	productCode    = "FAST_INSTANT_TRADE_PAY"
	defaultTimeout = 10 * time.Second
	defaultExpire  = 30 * time.Minute

	subCodeTradeNotExist = "ACQ.TRADE_NOT_EXIST"
)

// 支付宝交易状态
const (
	WaitBuyerPay  = "WAIT_BUYER_PAY"
	TradeSuccess  = "TRADE_SUCCESS"
	TradeFinished = "TRADE_FINISHED"
	TradeClosed   = "TRADE_CLOSED"
)

var formTemplate = template.Must(template.New("alipay").Parse(
	`<form id="alipaysubmit" name="alipaysubmit" action="{{.Action}}" method="POST">` +
		`<input type="hidden" name="biz_content" value="{{.BizContent}}">` +
		`<input type="submit" value="ok" style="display:none;">` +
		`</form><script>document.forms['alipaysubmit'].submit();</script>`))

// AlipayService 支付宝电脑网站支付
type AlipayService struct {
	client    *alipay.Client
	appID     string
	notifyURL string
	returnURL string
	timeout   time.Duration
}

// NewAlipayService 创建支付宝支付服务，密钥在这里一次性校验
func NewAlipayService(cfg config.AlipayConfig) (*AlipayService, error) {
	if cfg.AppID == "" {
		return nil, errs.Configuration("ALIPAY_NOT_CONFIGURED", "支付宝 AppID 未配置", nil)
	}

	privateBody, err := sign.KeyBody(cfg.PrivateKey)
	if err != nil {
		return nil, errs.Configuration("ALIPAY_PRIVATE_KEY_INVALID", "支付宝应用私钥格式错误", err)
	}
	if _, err := sign.ParsePrivateKey(cfg.PrivateKey); err != nil {
		return nil, errs.Configuration("ALIPAY_PRIVATE_KEY_INVALID", "支付宝应用私钥格式错误", err)
	}
	if _, err := sign.ParsePublicKey(cfg.PublicKey); err != nil {
		return nil, errs.Configuration("ALIPAY_PUBLIC_KEY_INVALID", "支付宝公钥格式错误", err)
	}
	publicBody, _ := sign.KeyBody(cfg.PublicKey)

	client, err := alipay.New(cfg.AppID, privateBody, cfg.IsProduction)
	if err != nil {
		return nil, errs.Configuration("ALIPAY_CLIENT_INVALID", "支付宝客户端初始化失败", err)
	}
	if err := client.LoadAliPayPublicKey(publicBody); err != nil {
		return nil, errs.Configuration("ALIPAY_PUBLIC_KEY_INVALID", "支付宝公钥加载失败", err)
	}

	timeout := cfg.QueryTimeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &AlipayService{
		client:    client,
		appID:     cfg.AppID,
		notifyURL: cfg.NotifyURL,
		returnURL: cfg.ReturnURL,
		timeout:   timeout,
	}, nil
}

// Provider 支付渠道
func (s *AlipayService) Provider() types.Provider {
	return types.ProviderAlipay
}

// CreatePayment 生成电脑网站支付表单。
// 公共参数（charset、method、app_id、sign 等）放在 action 的 query 中，biz_content 放在 POST 表单里
func (s *AlipayService) CreatePayment(ctx context.Context, req *types.Request) (*types.Result, error) {
	trade := alipay.TradePagePay{}
	trade.NotifyURL = firstNonEmpty(req.NotifyURL, s.notifyURL)
	trade.ReturnURL = firstNonEmpty(req.ReturnURL, s.returnURL)
	trade.Subject = req.Description
	trade.OutTradeNo = req.TransactionID
	trade.TotalAmount = req.Amount.StringFixed(2)
	trade.ProductCode = productCode
	trade.TimeoutExpress = "30m"

	signed, err := s.client.TradePagePay(trade)
	if err != nil {
		return nil, errs.Gateway("ALIPAY_REQUEST_FAILED", "生成支付宝支付请求失败", err)
	}

	action, bizContent := SplitPagePayURL(signed)
	var buf bytes.Buffer
	if err := formTemplate.Execute(&buf, struct {
		Action     string
		BizContent string
	}{action, bizContent}); err != nil {
		return nil, errs.Gateway("ALIPAY_REQUEST_FAILED", "生成支付宝支付表单失败", err)
	}

	return &types.Result{
		Provider:      types.ProviderAlipay,
		TransactionID: req.TransactionID,
		PaymentURL:    action,
		Form:          buf.String(),
		ExpireAt:      time.Now().Add(defaultExpire),
	}, nil
}

// QueryStatus 主动查询交易状态，交易不存在或结果不明确时返回 nil
func (s *AlipayService) QueryStatus(ctx context.Context, transactionID string) (*types.TradeQuery, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	rsp, err := s.client.TradeQuery(ctx, alipay.TradeQuery{OutTradeNo: transactionID})
	if rsp != nil && rsp.SubCode == subCodeTradeNotExist {
		return nil, nil
	}
	if err != nil {
		return nil, errs.Gateway("ALIPAY_QUERY_FAILED", "查询支付宝交易失败", err)
	}
	if rsp == nil || rsp.Code != alipay.CodeSuccess {
		return nil, nil
	}

	amount, _ := decimal.NewFromString(rsp.TotalAmount)
	return &types.TradeQuery{
		Status:      MapTradeStatus(string(rsp.TradeStatus)),
		RawStatus:   string(rsp.TradeStatus),
		TradeNo:     rsp.TradeNo,
		TotalAmount: amount,
	}, nil
}

// ParseNotification 校验异步通知签名并解析。验签由 SDK 完成：去掉 sign、sign_type 和空值后排序拼接，RSA2 校验
func (s *AlipayService) ParseNotification(form url.Values) (*types.Notification, error) {
	if form.Get("sign") == "" {
		return nil, errs.Signature("SIGNATURE_MISSING", "缺少签名", nil)
	}
	if t := form.Get("sign_type"); t != "" && !strings.EqualFold(t, "RSA2") {
		return nil, errs.Signature("SIGNATURE_TYPE_UNSUPPORTED", "仅支持 RSA2 签名", nil)
	}
	if err := s.client.VerifySign(form); err != nil {
		return nil, errs.Signature("SIGNATURE_INVALID", "签名校验失败", err)
	}
	if appID := form.Get("app_id"); appID != "" && appID != s.appID {
		return nil, errs.Signature("APP_ID_MISMATCH", "通知的 app_id 与配置不一致", nil)
	}

	transactionID := form.Get("out_trade_no")
	if transactionID == "" {
		return nil, errs.Validation("OUT_TRADE_NO_MISSING", "通知缺少 out_trade_no")
	}

	var amount decimal.NullDecimal
	if raw := form.Get("total_amount"); raw != "" {
		d, err := decimal.NewFromString(raw)
		if err != nil {
			return nil, errs.Validation("TOTAL_AMOUNT_INVALID", "通知金额格式错误")
		}
		amount = decimal.NewNullDecimal(d)
	}

	payload := make(map[string]interface{}, len(form))
	for k := range form {
		if k == "sign" {
			continue
		}
		payload[k] = form.Get(k)
	}

	return &types.Notification{
		Provider:      types.ProviderAlipay,
		TransactionID: transactionID,
		TradeNo:       form.Get("trade_no"),
		Status:        MapTradeStatus(form.Get("trade_status")),
		RawStatus:     form.Get("trade_status"),
		TotalAmount:   amount,
		Payload:       payload,
	}, nil
}

// MapTradeStatus 支付宝交易状态映射
func MapTradeStatus(status string) types.TradeStatus {
	switch status {
	case WaitBuyerPay:
		return types.TradePending
	case TradeSuccess, TradeFinished:
		return types.TradeSuccess
	case TradeClosed:
		return types.TradeClosed
	}
	return types.TradeUnknown
}

// SplitPagePayURL 拆分 SDK 生成的 GET 链接：biz_content 之外的参数留在 action 的 query 中
func SplitPagePayURL(u *url.URL) (action, bizContent string) {
	query := u.Query()
	bizContent = query.Get("biz_content")
	query.Del("biz_content")

	base := *u
	base.RawQuery = query.Encode()
	return base.String(), bizContent
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
