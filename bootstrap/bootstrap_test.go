package bootstrap

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"zuhaoku/app/models/account"
	"zuhaoku/app/models/order"
	"zuhaoku/app/models/payment"
	"zuhaoku/app/services/lease"
	_ "zuhaoku/config"
	"zuhaoku/pkg/config"
	"zuhaoku/pkg/database/migrations"
	pay "zuhaoku/pkg/payment"
	"zuhaoku/pkg/pricing"
	"zuhaoku/routes"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{Logger: gormlogger.Discard})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(migrations.RegisterTables()...))
	return db
}

func TestReconcileOnceRepairsPaidOrders(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	acc := &account.Account{
		OwnerID:          1,
		GameID:           1,
		Title:            "和平精英 战神账号",
		CredentialCipher: "c2VhbGVk",
		CredentialNonce:  "bm9uY2U=",
		Status:           account.StatusListed,
	}
	acc.SetPriceTable(pricing.TableFromHourly(decimal.RequireFromString("10.00"), 8))
	require.NoError(t, db.Create(acc).Error)

	now := time.Now()
	o := &order.Order{
		AccountID: acc.ID,
		TenantID:  2,
		StartTime: now,
		EndTime:   now.Add(time.Hour),
		Amount:    decimal.RequireFromString("10.00"),
		Status:    order.StatusPaying,
	}
	require.NoError(t, db.Create(o).Error)

	paidAt := now.Add(-time.Minute)
	require.NoError(t, db.Create(&payment.Payment{
		OrderID:       o.ID,
		Provider:      "alipay",
		TransactionID: "ALIPAY1700000000000" + order.FormatNo(o.ID),
		Amount:        decimal.RequireFromString("10.00"),
		Status:        payment.StatusSuccess,
		PaidAt:        &paidAt,
	}).Error)

	svc := lease.NewService(db, pay.NewRegistry(), nil, lease.Config{PendingGrace: time.Minute})
	report, err := ReconcileOnce(ctx, svc)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Repairs)
	assert.Equal(t, 0, report.Polls)

	var got order.Order
	require.NoError(t, db.First(&got, o.ID).Error)
	assert.Equal(t, order.StatusLeasing, got.Status)

	var gotAcc account.Account
	require.NoError(t, db.First(&gotAcc, acc.ID).Error)
	assert.Equal(t, account.StatusLeased, gotAcc.Status)

	// 再次执行不会产生新的任务
	report, err = ReconcileOnce(ctx, svc)
	require.NoError(t, err)
	assert.Zero(t, report.Repairs)
}

func TestSetupRouteNotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	SetupRoute(router, routes.Services{})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/nowhere", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "NOT_FOUND")

	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/nowhere", nil)
	req.Header.Set("Accept", "text/html")
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "页面返回 404", w.Body.String())
}

func TestDatabaseDefaults(t *testing.T) {
	config.InitConfig("")

	assert.Equal(t, "storage/zuhaoku.db", config.Get("database.sqlite.database"))
	assert.LessOrEqual(t, config.GetInt("database.postgresql.max_idle_connections"), config.GetInt("database.postgresql.max_open_connections"))

	dsn := postgresDSN()
	assert.Contains(t, dsn, "dbname=zuhaoku")
	assert.Contains(t, dsn, "user=zuhaoku")
	assert.Contains(t, dsn, "sslmode=disable")
	assert.Contains(t, dsn, "lock_timeout=5000")
}
