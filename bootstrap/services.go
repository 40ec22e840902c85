package bootstrap

import (
	"context"
	"errors"
	"time"

	"zuhaoku/app/services/lease"
	"zuhaoku/app/services/listing"
	btsConfig "zuhaoku/config"
	"zuhaoku/pkg/app"
	"zuhaoku/pkg/auth"
	"zuhaoku/pkg/config"
	"zuhaoku/pkg/database"
	"zuhaoku/pkg/logger"
	"zuhaoku/pkg/payment"
	"zuhaoku/pkg/vault"
	"zuhaoku/routes"
)

// SetupServices 构建支付网关、凭据加密、JWT 和两个业务服务
func SetupServices(ctx context.Context) (routes.Services, error) {
	if database.DB == nil {
		return routes.Services{}, errors.New("数据库未初始化")
	}

	registry, err := payment.NewRegistryFromConfig(ctx, btsConfig.LoadPaymentConfig(app.URL))
	if err != nil {
		return routes.Services{}, err
	}
	if len(registry.Providers()) == 0 {
		logger.WarnString("Payment", "Setup", "未配置任何支付渠道，下单后将无法发起支付")
	}

	v, err := vault.New(config.GetString("app.key"))
	if err != nil {
		return routes.Services{}, err
	}

	authenticator, err := auth.NewAuthenticator(
		config.GetString("jwt.secret"),
		time.Duration(config.GetInt("jwt.expire_time", 120))*time.Minute,
	)
	if err != nil {
		return routes.Services{}, err
	}

	return routes.Services{
		Lease:         lease.NewService(database.DB, registry, v, lease.LoadConfig()),
		Listing:       listing.NewService(database.DB, v, config.GetInt("order.overnight_hours", 8)),
		Gateways:      registry,
		Authenticator: authenticator,
	}, nil
}
