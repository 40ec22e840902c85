package lease

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"zuhaoku/app/models/account"
	"zuhaoku/app/models/order"
	"zuhaoku/app/models/payment"
	"zuhaoku/pkg/errs"
	"zuhaoku/pkg/payment/types"
	"zuhaoku/pkg/queue"
)

func TestLeaseLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	acc := f.listedAccount(t, "10.00")

	o, err := f.svc.Create(ctx, tenantID, CreateInput{AccountID: acc.ID, Duration: 2, Unit: "HOUR"})
	require.NoError(t, err)
	assert.Equal(t, "20.00", o.Amount.StringFixed(2))
	assert.Equal(t, order.StatusPaying, o.Status)
	assert.Equal(t, 2*time.Hour, o.EndTime.Sub(o.StartTime))

	result, err := f.svc.Checkout(ctx, tenantID, CheckoutInput{OrderID: o.ID, Provider: types.ProviderAlipay})
	require.NoError(t, err)
	require.Len(t, f.alipay.requests, 1)
	assert.Equal(t, "20.00", f.alipay.requests[0].Amount.StringFixed(2))
	assert.Equal(t, "租号订单 "+o.No(), f.alipay.requests[0].Description)

	out, err := f.svc.ConfirmPayment(ctx, successSignal(result.TransactionID, "20.00"))
	require.NoError(t, err)
	assert.Equal(t, ResultApplied, out.Result)
	assert.Equal(t, order.StatusLeasing, f.order(t, o.ID).Status)
	assert.Equal(t, account.StatusLeased, f.account(t, acc.ID).Status)

	p := f.payment(t, result.TransactionID)
	assert.Equal(t, payment.StatusSuccess, p.Status)
	assert.NotNil(t, p.PaidAt)
	assert.Equal(t, "2024010122001400000000000001", p.TradeNo)
	assert.Equal(t, "TRADE_SUCCESS", p.ExtraData["trade_status"])

	detail, err := f.svc.Get(ctx, tenantID, o.ID)
	require.NoError(t, err)
	require.NotNil(t, detail.Credentials)
	assert.Equal(t, "player1", detail.Credentials.Username)
	assert.Equal(t, payment.StatusSuccess, detail.Payment.Status)

	renewed, err := f.svc.Renew(ctx, tenantID, o.ID, 1, "HOUR")
	require.NoError(t, err)
	assert.Equal(t, "30.00", renewed.Amount.StringFixed(2))
	assert.Equal(t, 3*time.Hour, renewed.EndTime.Sub(renewed.StartTime))

	stored := f.order(t, o.ID)
	assert.Equal(t, "30.00", stored.Amount.StringFixed(2))
	assert.Equal(t, order.StatusLeasing, stored.Status)

	returned, err := f.svc.Return(ctx, tenantID, o.ID)
	require.NoError(t, err)
	assert.Equal(t, order.StatusClosed, returned.Status)

	stored = f.order(t, o.ID)
	assert.Equal(t, order.StatusClosed, stored.Status)
	require.NotNil(t, stored.ActualEndTime)
	assert.False(t, stored.ActualEndTime.Before(stored.StartTime))
	assert.Equal(t, account.StatusListed, f.account(t, acc.ID).Status)

	// 归还后不再返回凭据
	detail, err = f.svc.Get(ctx, tenantID, o.ID)
	require.NoError(t, err)
	assert.Nil(t, detail.Credentials)
}

func TestDuplicateNotificationIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	acc := f.listedAccount(t, "10.00")
	o, txID := f.checkoutOrder(t, tenantID, acc, 2, "HOUR")

	first, err := f.svc.ConfirmPayment(ctx, successSignal(txID, "20.00"))
	require.NoError(t, err)
	assert.Equal(t, ResultApplied, first.Result)
	paidAt := f.payment(t, txID).PaidAt

	second, err := f.svc.ConfirmPayment(ctx, successSignal(txID, "20.00"))
	require.NoError(t, err)
	assert.Equal(t, ResultDuplicate, second.Result)
	assert.Equal(t, order.StatusLeasing, second.OrderStatus)

	assert.Equal(t, order.StatusLeasing, f.order(t, o.ID).Status)
	require.NotNil(t, paidAt)
	assert.True(t, paidAt.Equal(*f.payment(t, txID).PaidAt))
}

func TestCancelledOrderIsNeverRevived(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	acc := f.listedAccount(t, "10.00")
	o, txID := f.checkoutOrder(t, tenantID, acc, 30, "MINUTE")

	cancelled, err := f.svc.Cancel(ctx, tenantID, o.ID)
	require.NoError(t, err)
	assert.Equal(t, order.StatusCancelled, cancelled.Status)

	out, err := f.svc.ConfirmPayment(ctx, successSignal(txID, "5.00"))
	require.NoError(t, err)
	assert.Equal(t, ResultIgnored, out.Result)

	assert.Equal(t, order.StatusCancelled, f.order(t, o.ID).Status)
	assert.Equal(t, account.StatusListed, f.account(t, acc.ID).Status)
	assert.Equal(t, payment.StatusPending, f.payment(t, txID).Status)
}

func TestClosedOrderIsNeverRevived(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	acc := f.listedAccount(t, "10.00")
	o, txID := f.checkoutOrder(t, tenantID, acc, 1, "HOUR")

	_, err := f.svc.ConfirmPayment(ctx, successSignal(txID, "10.00"))
	require.NoError(t, err)
	_, err = f.svc.Return(ctx, tenantID, o.ID)
	require.NoError(t, err)

	out, err := f.svc.ConfirmPayment(ctx, successSignal(txID, "10.00"))
	require.NoError(t, err)
	assert.Equal(t, ResultIgnored, out.Result)
	assert.Equal(t, order.StatusClosed, f.order(t, o.ID).Status)
	assert.Equal(t, account.StatusListed, f.account(t, acc.ID).Status)
}

func TestConcurrentNotifyAndPollApplyOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	acc := f.listedAccount(t, "10.00")
	o, txID := f.checkoutOrder(t, tenantID, acc, 2, "HOUR")
	f.alipay.setQuery(&types.TradeQuery{Status: types.TradeSuccess, RawStatus: "TRADE_SUCCESS", TotalAmount: decimal.RequireFromString("20.00")}, nil)

	// 按表统计真正写入的 UPDATE，账号和订单各只能被推进一次
	var mu sync.Mutex
	writes := map[string]int{}
	require.NoError(t, f.db.Callback().Update().After("gorm:update").Register("lease_test:count_writes", func(tx *gorm.DB) {
		if tx.Error == nil && tx.RowsAffected > 0 {
			mu.Lock()
			writes[tx.Statement.Table]++
			mu.Unlock()
		}
	}))

	const n = 8
	results := make(chan Result, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sig := successSignal(txID, "20.00")
			if i%2 == 1 {
				sig = Signal{TransactionID: txID, Trust: TrustUnverified, Source: SourcePoll}
			}
			out, err := f.svc.ConfirmPayment(ctx, sig)
			if assert.NoError(t, err) {
				results <- out.Result
			}
		}(i)
	}
	wg.Wait()
	close(results)

	counts := map[Result]int{}
	for r := range results {
		counts[r]++
	}
	assert.Equal(t, 1, counts[ResultApplied])
	assert.Equal(t, n-1, counts[ResultDuplicate])
	assert.Equal(t, 1, writes["accounts"])
	assert.Equal(t, 1, writes["lease_orders"])
	assert.Equal(t, 1, writes["payment_records"])
	assert.Equal(t, order.StatusLeasing, f.order(t, o.ID).Status)
	assert.Equal(t, account.StatusLeased, f.account(t, acc.ID).Status)
}

func TestRenewRequiresLeasing(t *testing.T) {
	f := newFixture(t)
	acc := f.listedAccount(t, "10.00")
	o, _ := f.checkoutOrder(t, tenantID, acc, 2, "HOUR")

	_, err := f.svc.Renew(context.Background(), tenantID, o.ID, 1, "HOUR")
	assert.True(t, errs.IsKind(err, errs.KindInvalidState))
	assert.Equal(t, "ORDER_NOT_LEASING", errs.CodeOf(err))
	assert.Equal(t, "20.00", f.order(t, o.ID).Amount.StringFixed(2))
}

func TestReturnAndCancelGuardState(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	acc := f.listedAccount(t, "10.00")
	o, txID := f.checkoutOrder(t, tenantID, acc, 1, "HOUR")

	_, err := f.svc.Return(ctx, tenantID, o.ID)
	assert.Equal(t, "ORDER_NOT_LEASING", errs.CodeOf(err))

	_, err = f.svc.ConfirmPayment(ctx, successSignal(txID, "10.00"))
	require.NoError(t, err)

	_, err = f.svc.Cancel(ctx, tenantID, o.ID)
	assert.Equal(t, "ORDER_NOT_PAYING", errs.CodeOf(err))

	_, err = f.svc.Return(ctx, tenantID, o.ID)
	require.NoError(t, err)
	_, err = f.svc.Return(ctx, tenantID, o.ID)
	assert.True(t, errs.IsKind(err, errs.KindInvalidState))
}

func TestTradeClosedCancelsPayingOrder(t *testing.T) {
	f := newFixture(t)
	acc := f.listedAccount(t, "10.00")
	o, txID := f.checkoutOrder(t, tenantID, acc, 1, "HOUR")

	out, err := f.svc.ConfirmPayment(context.Background(), Signal{
		Provider: types.ProviderAlipay, TransactionID: txID, Status: types.TradeClosed, Trust: TrustVerified,
	})
	require.NoError(t, err)
	assert.Equal(t, ResultCancelled, out.Result)
	assert.Equal(t, order.StatusCancelled, f.order(t, o.ID).Status)
	assert.Equal(t, payment.StatusPending, f.payment(t, txID).Status)
}

func TestAmountMismatchIsRejected(t *testing.T) {
	f := newFixture(t)
	acc := f.listedAccount(t, "10.00")
	o, txID := f.checkoutOrder(t, tenantID, acc, 2, "HOUR")

	_, err := f.svc.ConfirmPayment(context.Background(), successSignal(txID, "0.01"))
	assert.Equal(t, "AMOUNT_MISMATCH", errs.CodeOf(err))
	assert.Equal(t, order.StatusPaying, f.order(t, o.ID).Status)
	assert.Equal(t, payment.StatusPending, f.payment(t, txID).Status)
	assert.Equal(t, account.StatusListed, f.account(t, acc.ID).Status)
}

func TestUnknownTransaction(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.ConfirmPayment(context.Background(), successSignal("ALIPAY0000", "1.00"))
	assert.Equal(t, "PAYMENT_NOT_FOUND", errs.CodeOf(err))

	_, err = f.svc.ConfirmPayment(context.Background(), Signal{})
	assert.True(t, errs.IsKind(err, errs.KindValidation))
}

func TestUnverifiedSignalUsesGatewayAnswer(t *testing.T) {
	f := newFixture(t)
	acc := f.listedAccount(t, "10.00")
	o, txID := f.checkoutOrder(t, tenantID, acc, 1, "HOUR")
	f.alipay.setQuery(&types.TradeQuery{Status: types.TradePending, RawStatus: "WAIT_BUYER_PAY"}, nil)

	sig := successSignal(txID, "10.00")
	sig.Trust = TrustUnverified
	out, err := f.svc.ConfirmPayment(context.Background(), sig)
	require.NoError(t, err)
	assert.Equal(t, ResultNoop, out.Result)
	assert.Equal(t, 1, f.alipay.queries)
	assert.Equal(t, order.StatusPaying, f.order(t, o.ID).Status)
}

func TestPollStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	acc := f.listedAccount(t, "10.00")
	o, _ := f.checkoutOrder(t, tenantID, acc, 1, "HOUR")

	// 交易不存在
	res, err := f.svc.PollStatus(ctx, tenantID, o.ID)
	require.NoError(t, err)
	assert.Equal(t, order.StatusPaying, res.Status)
	assert.False(t, res.Degraded)

	// 网关故障时返回本地状态
	f.alipay.setQuery(nil, errs.Gateway("ALIPAY_QUERY_FAILED", "查询支付宝交易失败", context.DeadlineExceeded))
	res, err = f.svc.PollStatus(ctx, tenantID, o.ID)
	require.NoError(t, err)
	assert.Equal(t, order.StatusPaying, res.Status)
	assert.True(t, res.Degraded)

	f.alipay.setQuery(&types.TradeQuery{Status: types.TradeSuccess, RawStatus: "TRADE_SUCCESS", TradeNo: "2024", TotalAmount: decimal.RequireFromString("10")}, nil)
	res, err = f.svc.PollStatus(ctx, tenantID, o.ID)
	require.NoError(t, err)
	assert.Equal(t, order.StatusLeasing, res.Status)
	assert.Equal(t, o.No(), res.OrderNo)

	// 已进入租赁中后不再查询网关
	queries := f.alipay.queries
	res, err = f.svc.PollStatus(ctx, tenantID, o.ID)
	require.NoError(t, err)
	assert.Equal(t, order.StatusLeasing, res.Status)
	assert.Equal(t, queries, f.alipay.queries)

	_, err = f.svc.PollStatus(ctx, otherID, o.ID)
	assert.Equal(t, "ORDER_NOT_FOUND", errs.CodeOf(err))
}

func TestOwnershipMismatchIsNotFound(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	acc := f.listedAccount(t, "10.00")
	o, _ := f.checkoutOrder(t, tenantID, acc, 1, "HOUR")

	_, err := f.svc.Get(ctx, otherID, o.ID)
	assert.True(t, errs.IsKind(err, errs.KindNotFound))
	_, err = f.svc.Cancel(ctx, otherID, o.ID)
	assert.True(t, errs.IsKind(err, errs.KindNotFound))
	_, err = f.svc.Checkout(ctx, otherID, CheckoutInput{OrderID: o.ID, Provider: types.ProviderAlipay})
	assert.True(t, errs.IsKind(err, errs.KindNotFound))
	assert.Equal(t, order.StatusPaying, f.order(t, o.ID).Status)
}

func TestCreateValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	acc := f.listedAccount(t, "10.00")

	_, err := f.svc.Create(ctx, tenantID, CreateInput{AccountID: acc.ID, Duration: 1, Unit: "WEEK"})
	assert.Equal(t, "INVALID_DURATION_UNIT", errs.CodeOf(err))

	_, err = f.svc.Create(ctx, tenantID, CreateInput{AccountID: acc.ID, Duration: 0, Unit: "HOUR"})
	assert.Equal(t, "INVALID_DURATION", errs.CodeOf(err))

	_, err = f.svc.Create(ctx, tenantID, CreateInput{AccountID: acc.ID, Duration: 721, Unit: "HOUR"})
	assert.Equal(t, "DURATION_TOO_LONG", errs.CodeOf(err))

	_, err = f.svc.Create(ctx, ownerID, CreateInput{AccountID: acc.ID, Duration: 1, Unit: "HOUR"})
	assert.Equal(t, "CANNOT_RENT_OWN_ACCOUNT", errs.CodeOf(err))

	_, err = f.svc.Create(ctx, tenantID, CreateInput{AccountID: 999, Duration: 1, Unit: "HOUR"})
	assert.True(t, errs.IsKind(err, errs.KindNotFound))

	require.NoError(t, f.db.Model(acc).Update("status", account.StatusDelisted).Error)
	_, err = f.svc.Create(ctx, tenantID, CreateInput{AccountID: acc.ID, Duration: 1, Unit: "HOUR"})
	assert.Equal(t, "ACCOUNT_NOT_AVAILABLE", errs.CodeOf(err))

	var count int64
	require.NoError(t, f.db.Model(&order.Order{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestOvernightAndMinutePricing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	acc := f.listedAccount(t, "10.00")

	overnight, err := f.svc.Create(ctx, tenantID, CreateInput{AccountID: acc.ID, Duration: 1, Unit: "overnight"})
	require.NoError(t, err)
	assert.Equal(t, "80.00", overnight.Amount.StringFixed(2))
	assert.Equal(t, 24*time.Hour, overnight.EndTime.Sub(overnight.StartTime))

	minutes, err := f.svc.Create(ctx, tenantID, CreateInput{AccountID: acc.ID, Duration: 60, Unit: "MINUTE"})
	require.NoError(t, err)
	assert.Equal(t, "10.00", minutes.Amount.StringFixed(2))
}

func TestCheckoutReusesPendingRecord(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	acc := f.listedAccount(t, "10.00")
	o, txID := f.checkoutOrder(t, tenantID, acc, 1, "HOUR")

	again, err := f.svc.Checkout(ctx, tenantID, CheckoutInput{OrderID: o.ID, Provider: types.ProviderAlipay})
	require.NoError(t, err)
	assert.Equal(t, txID, again.TransactionID)

	_, err = f.svc.Checkout(ctx, tenantID, CheckoutInput{OrderID: o.ID, Provider: types.ProviderWechat})
	assert.Equal(t, "PAYMENT_CHANNEL_CONFLICT", errs.CodeOf(err))

	var count int64
	require.NoError(t, f.db.Model(&payment.Payment{}).Where("order_id = ?", o.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	_, err = f.svc.Cancel(ctx, tenantID, o.ID)
	require.NoError(t, err)
	_, err = f.svc.Checkout(ctx, tenantID, CheckoutInput{OrderID: o.ID, Provider: types.ProviderAlipay})
	assert.Equal(t, "ORDER_NOT_PAYING", errs.CodeOf(err))
}

func TestCheckoutDisabledProvider(t *testing.T) {
	f := newFixture(t)
	f.svc.gateways = emptyResolver{}
	acc := f.listedAccount(t, "10.00")
	o, err := f.svc.Create(context.Background(), tenantID, CreateInput{AccountID: acc.ID, Duration: 1, Unit: "HOUR"})
	require.NoError(t, err)

	_, err = f.svc.Checkout(context.Background(), tenantID, CheckoutInput{OrderID: o.ID, Provider: types.ProviderAlipay})
	assert.True(t, errs.IsKind(err, errs.KindConfiguration))
}

type emptyResolver struct{}

func (emptyResolver) Gateway(p types.Provider) (types.Gateway, error) {
	return nil, errs.Configuration("PAYMENT_PROVIDER_DISABLED", "支付渠道未启用: "+string(p), nil)
}

func TestAccountConflictIsRepairedBySweep(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	acc := f.listedAccount(t, "10.00")

	first, firstTx := f.checkoutOrder(t, tenantID, acc, 1, "HOUR")
	second, secondTx := f.checkoutOrder(t, otherID, acc, 1, "HOUR")

	out, err := f.svc.ConfirmPayment(ctx, successSignal(firstTx, "10.00"))
	require.NoError(t, err)
	assert.Equal(t, ResultApplied, out.Result)

	out, err = f.svc.ConfirmPayment(ctx, successSignal(secondTx, "10.00"))
	require.NoError(t, err)
	assert.Equal(t, ResultConflict, out.Result)
	assert.Equal(t, order.StatusPaying, f.order(t, second.ID).Status)
	assert.Equal(t, payment.StatusSuccess, f.payment(t, secondTx).Status)

	q := queue.NewMemoryQueue(16)
	report, err := f.svc.Sweep(ctx, q)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Repairs)

	// 账号仍被占用，修复任务不生效
	task, err := q.Pop(ctx, 10*time.Millisecond)
	require.NoError(t, err)
	require.NoError(t, f.svc.HandleTask(ctx, task))
	require.NoError(t, q.Done(ctx, task))
	assert.Equal(t, order.StatusPaying, f.order(t, second.ID).Status)

	_, err = f.svc.Return(ctx, tenantID, first.ID)
	require.NoError(t, err)

	_, err = f.svc.Sweep(ctx, q)
	require.NoError(t, err)
	task, err = q.Pop(ctx, 10*time.Millisecond)
	require.NoError(t, err)
	require.NotNil(t, task)
	assert.Equal(t, queue.KindRepair, task.Kind)

	// 账号释放后才生效，租期从生效时刻重新起算
	before := f.order(t, second.ID)
	later := time.Now().Add(3 * time.Hour)
	f.svc.now = func() time.Time { return later }
	require.NoError(t, f.svc.HandleTask(ctx, task))

	repaired := f.order(t, second.ID)
	assert.Equal(t, order.StatusLeasing, repaired.Status)
	assert.Equal(t, account.StatusLeased, f.account(t, acc.ID).Status)
	assert.WithinDuration(t, later, repaired.StartTime, time.Second)
	assert.WithinDuration(t, later.Add(before.EndTime.Sub(before.StartTime)), repaired.EndTime, time.Second)
}

func TestPaidConflictOrderCannotBeCheckedOutOrCancelled(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	acc := f.listedAccount(t, "10.00")

	_, firstTx := f.checkoutOrder(t, tenantID, acc, 1, "HOUR")
	second, secondTx := f.checkoutOrder(t, otherID, acc, 1, "HOUR")

	_, err := f.svc.ConfirmPayment(ctx, successSignal(firstTx, "10.00"))
	require.NoError(t, err)
	out, err := f.svc.ConfirmPayment(ctx, successSignal(secondTx, "10.00"))
	require.NoError(t, err)
	require.Equal(t, ResultConflict, out.Result)

	// 已付款的订单不能再生成第二笔支付
	_, err = f.svc.Checkout(ctx, otherID, CheckoutInput{OrderID: second.ID, Provider: types.ProviderAlipay})
	assert.Equal(t, "ORDER_ALREADY_PAID", errs.CodeOf(err))
	assert.True(t, errs.IsKind(err, errs.KindInvalidState))
	var records int64
	require.NoError(t, f.db.Model(&payment.Payment{}).Where("order_id = ?", second.ID).Count(&records).Error)
	assert.Equal(t, int64(1), records)

	// 也不能取消，否则修复任务无处落地
	_, err = f.svc.Cancel(ctx, otherID, second.ID)
	assert.Equal(t, "ORDER_ALREADY_PAID", errs.CodeOf(err))
	assert.Equal(t, order.StatusPaying, f.order(t, second.ID).Status)
	assert.Equal(t, payment.StatusSuccess, f.payment(t, secondTx).Status)
}

func TestRepairTaskRequiresRecordedSuccess(t *testing.T) {
	f := newFixture(t)
	acc := f.listedAccount(t, "10.00")
	o, txID := f.checkoutOrder(t, tenantID, acc, 1, "HOUR")

	require.NoError(t, f.svc.HandleTask(context.Background(), queue.NewTask(queue.KindRepair, txID)))
	assert.Equal(t, order.StatusPaying, f.order(t, o.ID).Status)
	assert.Equal(t, payment.StatusPending, f.payment(t, txID).Status)
}

func TestSweepPollsStalePendingRecords(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	acc := f.listedAccount(t, "10.00")
	o, txID := f.checkoutOrder(t, tenantID, acc, 1, "HOUR")

	q := queue.NewMemoryQueue(16)
	report, err := f.svc.Sweep(ctx, q)
	require.NoError(t, err)
	assert.Zero(t, report.Polls, "records inside the grace period are skipped")

	f.svc.now = func() time.Time { return time.Now().Add(time.Hour) }
	report, err = f.svc.Sweep(ctx, q)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Polls)

	f.alipay.setQuery(&types.TradeQuery{Status: types.TradeClosed, RawStatus: "TRADE_CLOSED"}, nil)
	task, err := q.Pop(ctx, 10*time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, txID, task.TransactionID)
	require.NoError(t, f.svc.HandleTask(ctx, task))
	assert.Equal(t, order.StatusCancelled, f.order(t, o.ID).Status)

	err = f.svc.HandleTask(ctx, &queue.Task{Kind: "bogus", TransactionID: txID})
	assert.True(t, errs.IsKind(err, errs.KindValidation))
}

func TestListMine(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	acc := f.listedAccount(t, "10.00")
	f.checkoutOrder(t, tenantID, acc, 1, "HOUR")
	o2, _ := f.checkoutOrder(t, tenantID, acc, 2, "HOUR")
	f.checkoutOrder(t, otherID, acc, 1, "HOUR")
	_, err := f.svc.Cancel(ctx, tenantID, o2.ID)
	require.NoError(t, err)

	orders, total, err := f.svc.ListMine(ctx, tenantID, "", 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, orders, 2)

	orders, total, err = f.svc.ListMine(ctx, tenantID, order.StatusCancelled, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, o2.ID, orders[0].ID)
}
