package lease

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"zuhaoku/app/models/order"
	pay "zuhaoku/pkg/payment"
)

func newMockService(t *testing.T) (*Service, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger:                 gormlogger.Discard,
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return NewService(db, pay.NewRegistry(), nil, Config{}), mock
}

func paymentRows(status string) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{"id", "order_id", "payment_method", "transaction_id", "amount", "status", "created_at", "updated_at"}).
		AddRow(1, 20, "alipay", "ALIPAY170000000000020", "20.00", status, now, now)
}

func orderRows(status string) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{"id", "account_id", "tenant_id", "start_time", "end_time", "amount", "status", "created_at", "updated_at"}).
		AddRow(20, 7, 2, now, now.Add(2*time.Hour), "20.00", status, now, now)
}

func TestConfirmLocksPaymentThenOrderBeforeWriting(t *testing.T) {
	svc, mock := newMockService(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "payment_records" WHERE transaction_id = \$1 ORDER BY .* FOR UPDATE`).
		WillReturnRows(paymentRows("pending"))
	mock.ExpectQuery(`SELECT \* FROM "lease_orders" WHERE id = \$1 ORDER BY .* FOR UPDATE`).
		WillReturnRows(orderRows("paying"))
	mock.ExpectExec(`UPDATE "accounts" SET .* WHERE id = \$\d+ AND status = \$\d+`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE "lease_orders" SET .* WHERE id = \$\d+ AND status = \$\d+`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE "payment_records" SET .* WHERE id = \$\d+ AND status = \$\d+`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	out, err := svc.ConfirmPayment(context.Background(), successSignal("ALIPAY170000000000020", "20.00"))
	require.NoError(t, err)
	assert.Equal(t, ResultApplied, out.Result)
	assert.Equal(t, order.StatusLeasing, out.OrderStatus)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDuplicateConfirmDoesNotWrite(t *testing.T) {
	svc, mock := newMockService(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "payment_records" .* FOR UPDATE`).
		WillReturnRows(paymentRows("success"))
	mock.ExpectQuery(`SELECT \* FROM "lease_orders" .* FOR UPDATE`).
		WillReturnRows(orderRows("leasing"))
	mock.ExpectCommit()

	out, err := svc.ConfirmPayment(context.Background(), successSignal("ALIPAY170000000000020", "20.00"))
	require.NoError(t, err)
	assert.Equal(t, ResultDuplicate, out.Result)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFailedWriteRollsBack(t *testing.T) {
	svc, mock := newMockService(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "payment_records" .* FOR UPDATE`).
		WillReturnRows(paymentRows("pending"))
	mock.ExpectQuery(`SELECT \* FROM "lease_orders" .* FOR UPDATE`).
		WillReturnRows(orderRows("paying"))
	mock.ExpectExec(`UPDATE "accounts"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE "lease_orders"`).
		WillReturnError(assert.AnError)
	mock.ExpectRollback()

	_, err := svc.ConfirmPayment(context.Background(), successSignal("ALIPAY170000000000020", "20.00"))
	assert.ErrorIs(t, err, assert.AnError)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSecondConfirmAfterCommitSeesLeasingAndDoesNotWrite(t *testing.T) {
	svc, mock := newMockService(t)
	ctx := context.Background()

	// 第一次确认持有两把行锁完成全部写入后提交
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "payment_records" .* FOR UPDATE`).
		WillReturnRows(paymentRows("pending"))
	mock.ExpectQuery(`SELECT \* FROM "lease_orders" .* FOR UPDATE`).
		WillReturnRows(orderRows("paying"))
	mock.ExpectExec(`UPDATE "accounts"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE "lease_orders"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE "payment_records"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	// 第二次确认拿到锁时读到的是已提交的结果，不再写任何一行
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "payment_records" .* FOR UPDATE`).
		WillReturnRows(paymentRows("success"))
	mock.ExpectQuery(`SELECT \* FROM "lease_orders" .* FOR UPDATE`).
		WillReturnRows(orderRows("leasing"))
	mock.ExpectCommit()

	first, err := svc.ConfirmPayment(ctx, successSignal("ALIPAY170000000000020", "20.00"))
	require.NoError(t, err)
	assert.Equal(t, ResultApplied, first.Result)

	second, err := svc.ConfirmPayment(ctx, successSignal("ALIPAY170000000000020", "20.00"))
	require.NoError(t, err)
	assert.Equal(t, ResultDuplicate, second.Result)
	assert.Equal(t, order.StatusLeasing, second.OrderStatus)
	assert.NoError(t, mock.ExpectationsWereMet())
}
