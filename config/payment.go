package config

import (
	"time"

	"zuhaoku/pkg/config"
)

func init() {
	config.Add("payment", func() map[string]interface{} {
		return map[string]interface{}{
			// 网关查询超时时间，单位秒
			"query_timeout": config.Env("PAYMENT_QUERY_TIMEOUT", 10),

			"alipay": map[string]interface{}{
				"app_id":      config.Env("ALIPAY_APP_ID", ""),
				"private_key": config.Env("ALIPAY_PRIVATE_KEY", ""),
				"public_key":  config.Env("ALIPAY_PUBLIC_KEY", ""),
				"notify_url":  config.Env("ALIPAY_NOTIFY_URL", ""),
				"return_url":  config.Env("ALIPAY_RETURN_URL", ""),
				// 沙箱环境设置为 false
				"is_production": config.Env("ALIPAY_IS_PRODUCTION", false),
			},

			"wechat": map[string]interface{}{
				"app_id":      config.Env("WECHAT_APP_ID", ""),
				"mch_id":      config.Env("WECHAT_MCH_ID", ""),
				"serial_no":   config.Env("WECHAT_SERIAL_NO", ""),
				"private_key": config.Env("WECHAT_PRIVATE_KEY", ""),
				"api_v3_key":  config.Env("WECHAT_API_V3_KEY", ""),
				"notify_url":  config.Env("WECHAT_NOTIFY_URL", ""),
			},
		}
	})
}

// PaymentConfig 支付配置
type PaymentConfig struct {
	Wechat WechatConfig
	Alipay AlipayConfig
}

// WechatConfig 微信支付配置
type WechatConfig struct {
	AppID        string
	MchID        string
	SerialNo     string
	PrivateKey   string
	APIv3Key     string
	NotifyURL    string
	QueryTimeout time.Duration
}

// Enabled 商户号配置后才启用微信支付
func (c WechatConfig) Enabled() bool {
	return c.MchID != ""
}

// AlipayConfig 支付宝配置
type AlipayConfig struct {
	AppID        string
	PrivateKey   string
	PublicKey    string
	NotifyURL    string
	ReturnURL    string
	IsProduction bool
	QueryTimeout time.Duration
}

// Enabled AppID 配置后才启用支付宝
func (c AlipayConfig) Enabled() bool {
	return c.AppID != ""
}

// LoadPaymentConfig 读取支付配置，启动时构建一次后传给各网关
func LoadPaymentConfig(notifyBase func(path string) string) PaymentConfig {
	timeout := time.Duration(config.GetInt("payment.query_timeout", 10)) * time.Second

	alipayCfg := AlipayConfig{
		AppID:        config.GetString("payment.alipay.app_id"),
		PrivateKey:   config.GetString("payment.alipay.private_key"),
		PublicKey:    config.GetString("payment.alipay.public_key"),
		NotifyURL:    config.GetString("payment.alipay.notify_url"),
		ReturnURL:    config.GetString("payment.alipay.return_url"),
		IsProduction: config.GetBool("payment.alipay.is_production"),
		QueryTimeout: timeout,
	}
	if alipayCfg.NotifyURL == "" {
		alipayCfg.NotifyURL = notifyBase("api/v1/payments/alipay/notify")
	}
	if alipayCfg.ReturnURL == "" {
		alipayCfg.ReturnURL = notifyBase("api/v1/payments/alipay/return")
	}

	wechatCfg := WechatConfig{
		AppID:        config.GetString("payment.wechat.app_id"),
		MchID:        config.GetString("payment.wechat.mch_id"),
		SerialNo:     config.GetString("payment.wechat.serial_no"),
		PrivateKey:   config.GetString("payment.wechat.private_key"),
		APIv3Key:     config.GetString("payment.wechat.api_v3_key"),
		NotifyURL:    config.GetString("payment.wechat.notify_url"),
		QueryTimeout: timeout,
	}
	if wechatCfg.NotifyURL == "" {
		wechatCfg.NotifyURL = notifyBase("api/v1/payments/wechat/notify")
	}

	return PaymentConfig{Wechat: wechatCfg, Alipay: alipayCfg}
}
