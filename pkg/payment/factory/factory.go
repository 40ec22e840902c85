package factory

import (
	"context"

	"zuhaoku/config"
	"zuhaoku/pkg/errs"
	"zuhaoku/pkg/payment/alipay"
	"zuhaoku/pkg/payment/types"
	"zuhaoku/pkg/payment/wechat"
)

// NewGateway 根据渠道创建支付网关，cfg 必须是对应渠道的配置
func NewGateway(ctx context.Context, provider types.Provider, cfg interface{}) (types.Gateway, error) {
	switch provider {
	case types.ProviderWechat:
		wcfg, ok := cfg.(config.WechatConfig)
		if !ok {
			return nil, errs.Configuration("PAYMENT_CONFIG_INVALID", "微信支付配置类型错误", nil)
		}
		return wechat.NewWechatPayService(ctx, wcfg)

	case types.ProviderAlipay:
		acfg, ok := cfg.(config.AlipayConfig)
		if !ok {
			return nil, errs.Configuration("PAYMENT_CONFIG_INVALID", "支付宝配置类型错误", nil)
		}
		return alipay.NewAlipayService(acfg)

	default:
		return nil, errs.Configuration("PAYMENT_PROVIDER_UNSUPPORTED", "不支持的支付渠道: "+string(provider), nil)
	}
}
