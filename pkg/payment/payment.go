// Package payment 管理已启用的支付网关
package payment

import (
	"context"
	"sync"

	"zuhaoku/config"
	"zuhaoku/pkg/errs"
	"zuhaoku/pkg/payment/factory"
	"zuhaoku/pkg/payment/types"
)

// Registry 已启用的网关，启动时构建一次
type Registry struct {
	mu       sync.RWMutex
	gateways map[types.Provider]types.Gateway
}

// NewRegistry 创建空的网关注册表
func NewRegistry(gateways ...types.Gateway) *Registry {
	r := &Registry{gateways: make(map[types.Provider]types.Gateway)}
	for _, g := range gateways {
		r.Register(g)
	}
	return r
}

// NewRegistryFromConfig 按配置创建各渠道网关，未配置的渠道跳过，配置错误直接返回
func NewRegistryFromConfig(ctx context.Context, cfg config.PaymentConfig) (*Registry, error) {
	r := NewRegistry()
	if cfg.Alipay.Enabled() {
		g, err := factory.NewGateway(ctx, types.ProviderAlipay, cfg.Alipay)
		if err != nil {
			return nil, err
		}
		r.Register(g)
	}
	if cfg.Wechat.Enabled() {
		g, err := factory.NewGateway(ctx, types.ProviderWechat, cfg.Wechat)
		if err != nil {
			return nil, err
		}
		r.Register(g)
	}
	return r, nil
}

// Register 注册网关
func (r *Registry) Register(g types.Gateway) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.gateways[g.Provider()] = g
}

// Gateway 获取渠道对应的网关
func (r *Registry) Gateway(provider types.Provider) (types.Gateway, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if g, ok := r.gateways[provider]; ok {
		return g, nil
	}
	return nil, errs.Configuration("PAYMENT_PROVIDER_DISABLED", "支付渠道未启用: "+string(provider), nil)
}

// Providers 已启用的渠道
func (r *Registry) Providers() []types.Provider {
	r.mu.RLock()
	defer r.mu.RUnlock()
	providers := make([]types.Provider, 0, len(r.gateways))
	for p := range r.gateways {
		providers = append(providers, p)
	}
	return providers
}
