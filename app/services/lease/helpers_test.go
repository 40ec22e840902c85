package lease

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"zuhaoku/app/models/account"
	"zuhaoku/app/models/order"
	"zuhaoku/app/models/payment"
	"zuhaoku/pkg/database/migrations"
	pay "zuhaoku/pkg/payment"
	"zuhaoku/pkg/payment/types"
	"zuhaoku/pkg/pricing"
	"zuhaoku/pkg/vault"
)

const (
	ownerID  uint64 = 1
	tenantID uint64 = 2
	otherID  uint64 = 3
)

type fakeGateway struct {
	provider types.Provider

	mu       sync.Mutex
	query    *types.TradeQuery
	queryErr error
	queries  int
	requests []*types.Request
}

func (g *fakeGateway) Provider() types.Provider { return g.provider }

func (g *fakeGateway) CreatePayment(_ context.Context, req *types.Request) (*types.Result, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.requests = append(g.requests, req)
	return &types.Result{Provider: g.provider, TransactionID: req.TransactionID, PaymentURL: "https://gateway.example.com/pay"}, nil
}

func (g *fakeGateway) QueryStatus(_ context.Context, _ string) (*types.TradeQuery, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.queries++
	return g.query, g.queryErr
}

func (g *fakeGateway) setQuery(q *types.TradeQuery, err error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.query, g.queryErr = q, err
}

type fixture struct {
	svc    *Service
	db     *gorm.DB
	alipay *fakeGateway
	wechat *fakeGateway
	vault  *vault.Vault
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{Logger: gormlogger.Discard})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(migrations.RegisterTables()...))

	v, err := vault.New("lease-test-key")
	require.NoError(t, err)

	f := &fixture{
		db:     db,
		alipay: &fakeGateway{provider: types.ProviderAlipay},
		wechat: &fakeGateway{provider: types.ProviderWechat},
		vault:  v,
	}
	f.svc = NewService(db, pay.NewRegistry(f.alipay, f.wechat), v, Config{
		MaxDuration:  720,
		PollTimeout:  time.Second,
		PendingGrace: time.Minute,
		SweepLimit:   50,
	})
	return f
}

// listedAccount 创建上架账号，小时价 price1h
func (f *fixture) listedAccount(t *testing.T, price1h string) *account.Account {
	t.Helper()

	plain, err := json.Marshal(account.Credentials{Username: "player1", Password: "p@ss"})
	require.NoError(t, err)
	cipherText, nonce, err := f.vault.Seal(plain)
	require.NoError(t, err)

	acc := &account.Account{
		OwnerID:          ownerID,
		GameID:           1,
		Title:            "王者荣耀 星耀账号",
		CredentialCipher: cipherText,
		CredentialNonce:  nonce,
		Status:           account.StatusListed,
	}
	acc.SetPriceTable(pricing.TableFromHourly(decimal.RequireFromString(price1h), 8))
	require.NoError(t, f.db.Create(acc).Error)
	return acc
}

// checkoutOrder 下单并发起支付宝支付，返回订单和交易号
func (f *fixture) checkoutOrder(t *testing.T, tenant uint64, acc *account.Account, duration int, unit string) (*order.Order, string) {
	t.Helper()
	ctx := context.Background()

	o, err := f.svc.Create(ctx, tenant, CreateInput{AccountID: acc.ID, Duration: duration, Unit: unit})
	require.NoError(t, err)
	result, err := f.svc.Checkout(ctx, tenant, CheckoutInput{OrderID: o.ID, Provider: types.ProviderAlipay})
	require.NoError(t, err)
	return o, result.TransactionID
}

func (f *fixture) order(t *testing.T, id uint64) *order.Order {
	t.Helper()
	var o order.Order
	require.NoError(t, f.db.First(&o, id).Error)
	return &o
}

func (f *fixture) account(t *testing.T, id uint64) *account.Account {
	t.Helper()
	var a account.Account
	require.NoError(t, f.db.First(&a, id).Error)
	return &a
}

func (f *fixture) payment(t *testing.T, transactionID string) *payment.Payment {
	t.Helper()
	var p payment.Payment
	require.NoError(t, f.db.Where("transaction_id = ?", transactionID).First(&p).Error)
	return &p
}

func successSignal(transactionID, amount string) Signal {
	return Signal{
		Provider:      types.ProviderAlipay,
		TransactionID: transactionID,
		Status:        types.TradeSuccess,
		RawStatus:     "TRADE_SUCCESS",
		TradeNo:       "2024010122001400000000000001",
		TotalAmount:   decimal.NewNullDecimal(decimal.RequireFromString(amount)),
		Payload:       map[string]interface{}{"trade_status": "TRADE_SUCCESS"},
		Trust:         TrustVerified,
		Source:        SourceNotify,
	}
}
