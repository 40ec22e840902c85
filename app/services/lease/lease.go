// Package lease 租号订单生命周期：下单、支付确认、续租、归还、取消和对账
package lease

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"zuhaoku/app/repositories"
	"zuhaoku/pkg/config"
	"zuhaoku/pkg/errs"
	"zuhaoku/pkg/payment/types"
)

// GatewayResolver 按渠道取支付网关，*payment.Registry 实现了该接口
type GatewayResolver interface {
	Gateway(provider types.Provider) (types.Gateway, error)
}

// CredentialOpener 解密账号凭据，*vault.Vault 实现了该接口
type CredentialOpener interface {
	Open(ciphertext, nonce string) ([]byte, error)
}

// Config 订单引擎配置
type Config struct {
	MaxDuration  int           // 单次下单或续租的最大时长
	PollTimeout  time.Duration // 主动查询网关的超时
	PendingGrace time.Duration // 待支付记录多久后进入对账
	SweepLimit   int           // 单次对账扫描的最大记录数
}

// LoadConfig 从配置中心读取
func LoadConfig() Config {
	return Config{
		MaxDuration:  config.GetInt("order.max_duration", 720),
		PollTimeout:  time.Duration(config.GetInt("order.poll_timeout", 8)) * time.Second,
		PendingGrace: time.Duration(config.GetInt("queue.pending_grace", 60)) * time.Second,
		SweepLimit:   config.GetInt("queue.sweep_limit", 200),
	}
}

// Service 订单引擎
type Service struct {
	db       *gorm.DB
	orders   *repositories.OrderRepository
	accounts *repositories.AccountRepository
	payments *repositories.PaymentRepository
	gateways GatewayResolver
	opener   CredentialOpener
	cfg      Config
	now      func() time.Time
}

// NewService 创建订单引擎
func NewService(db *gorm.DB, gateways GatewayResolver, opener CredentialOpener, cfg Config) *Service {
	if cfg.MaxDuration <= 0 {
		cfg.MaxDuration = 720
	}
	if cfg.PollTimeout <= 0 {
		cfg.PollTimeout = 8 * time.Second
	}
	if cfg.SweepLimit <= 0 {
		cfg.SweepLimit = 200
	}
	return &Service{
		db:       db,
		orders:   repositories.NewOrderRepository(db),
		accounts: repositories.NewAccountRepository(db),
		payments: repositories.NewPaymentRepository(db),
		gateways: gateways,
		opener:   opener,
		cfg:      cfg,
		now:      time.Now,
	}
}

// store 事务内使用的仓库
type store struct {
	orders   *repositories.OrderRepository
	accounts *repositories.AccountRepository
	payments *repositories.PaymentRepository
}

// transaction 在一个事务中执行 fn，fn 返回错误时整体回滚
func (s *Service) transaction(ctx context.Context, fn func(st store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(store{
			orders:   s.orders.WithTx(tx),
			accounts: s.accounts.WithTx(tx),
			payments: s.payments.WithTx(tx),
		})
	})
}

// notFound 把 gorm 的记录不存在转换为业务错误
func notFound(err error, nf *errs.Error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nf
	}
	return err
}

var (
	errOrderNotFound   = errs.NotFound("ORDER_NOT_FOUND", "订单不存在")
	errAccountNotFound = errs.NotFound("ACCOUNT_NOT_FOUND", "账号不存在")
	errPaymentNotFound = errs.NotFound("PAYMENT_NOT_FOUND", "支付记录不存在")
	errOrderNotPaying  = errs.InvalidState("ORDER_NOT_PAYING", "订单不是待支付状态")
	errOrderNotLeasing = errs.InvalidState("ORDER_NOT_LEASING", "订单不是租赁中状态")

	errOrderAlreadyPaid = errs.InvalidState("ORDER_ALREADY_PAID", "订单已支付，等待账号释放后生效")
)

// ensureUnpaid 订单已有成功的支付记录时拒绝，账号冲突的订单停在待支付，只能由对账修复推进
func ensureUnpaid(ctx context.Context, st store, orderID uint64) error {
	_, err := st.payments.SuccessByOrder(ctx, orderID)
	switch {
	case err == nil:
		return errOrderAlreadyPaid
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil
	default:
		return err
	}
}
