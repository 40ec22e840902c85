package lease

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"zuhaoku/app/models/account"
	"zuhaoku/app/models/order"
	"zuhaoku/app/models/payment"
	"zuhaoku/pkg/errs"
	"zuhaoku/pkg/logger"
	"zuhaoku/pkg/metrics"
	"zuhaoku/pkg/payment/types"
)

// Trust 支付信号的可信程度
type Trust int

const (
	// TrustUnverified 未经校验，必须先向网关查询
	TrustUnverified Trust = iota
	// TrustVerified 已验签的回调，或刚从网关查询得到的状态
	TrustVerified
	// TrustRecorded 以本地已成功的支付记录为准，仅用于修复
	TrustRecorded
)

// 信号来源
const (
	SourceNotify = "notify"
	SourcePoll   = "poll"
	SourceSweep  = "sweep"
	SourceRepair = "repair"
)

// Signal 支付结果信号，回调和主动查询共用
type Signal struct {
	Provider      types.Provider
	TransactionID string
	Status        types.TradeStatus
	RawStatus     string
	TradeNo       string
	TotalAmount   decimal.NullDecimal
	Payload       map[string]interface{}
	Trust         Trust
	Source        string
}

// Result 确认结果
type Result string

const (
	ResultApplied   Result = "applied"   // 订单进入租赁中
	ResultDuplicate Result = "duplicate" // 重复信号，订单已在租赁中
	ResultIgnored   Result = "ignored"   // 订单已结束，忽略
	ResultConflict  Result = "conflict"  // 账号已被占用，支付记录已成功，订单保持待支付
	ResultCancelled Result = "cancelled" // 交易关闭，订单取消
	ResultNoop      Result = "noop"      // 交易未完成或状态不明
)

// Outcome 确认后的订单状态
type Outcome struct {
	OrderID     uint64
	OrderStatus order.Status
	Result      Result
}

// NotificationSignal 已验签的网关回调转换为信号
func NotificationSignal(n *types.Notification) Signal {
	return Signal{
		Provider:      n.Provider,
		TransactionID: n.TransactionID,
		Status:        n.Status,
		RawStatus:     n.RawStatus,
		TradeNo:       n.TradeNo,
		TotalAmount:   n.TotalAmount,
		Payload:       n.Payload,
		Trust:         TrustVerified,
		Source:        SourceNotify,
	}
}

// ConfirmPayment 回调和轮询共用的唯一入口，幂等。
// 同一事务内先锁支付记录再锁订单，两行都锁住后才写入
func (s *Service) ConfirmPayment(ctx context.Context, sig Signal) (*Outcome, error) {
	if sig.TransactionID == "" {
		return nil, errs.Validation("OUT_TRADE_NO_MISSING", "缺少交易号")
	}
	if sig.Source == "" {
		sig.Source = SourceNotify
	}

	if sig.Trust == TrustUnverified {
		queried, err := s.queryGateway(ctx, sig)
		if err != nil {
			metrics.ObserveConfirmation(sig.Source, "error")
			return nil, err
		}
		sig = queried
	}

	var out *Outcome
	err := s.transaction(ctx, func(st store) error {
		var err error
		out, err = s.confirmLocked(ctx, st, sig)
		return err
	})
	if err != nil {
		metrics.ObserveConfirmation(sig.Source, "error")
		logger.WarnString("Lease", "ConfirmPayment", fmt.Sprintf("交易 %s 确认失败(%s): %v", sig.TransactionID, sig.Source, err))
		return nil, err
	}

	metrics.ObserveConfirmation(sig.Source, string(out.Result))
	if out.Result != ResultNoop {
		logger.InfoString("Lease", "ConfirmPayment", fmt.Sprintf("交易 %s 确认结果 %s(%s)，订单 %s 状态 %s",
			sig.TransactionID, out.Result, sig.Source, order.FormatNo(out.OrderID), out.OrderStatus))
	}
	return out, nil
}

// queryGateway 向网关查询交易状态，用查询结果替换信号中的断言
func (s *Service) queryGateway(ctx context.Context, sig Signal) (Signal, error) {
	record, err := s.payments.GetByTransactionID(ctx, sig.TransactionID)
	if err != nil {
		return sig, notFound(err, errPaymentNotFound)
	}
	provider := types.Provider(record.Provider)
	gateway, err := s.gateways.Gateway(provider)
	if err != nil {
		return sig, err
	}

	qctx, cancel := context.WithTimeout(ctx, s.cfg.PollTimeout)
	defer cancel()

	q, err := gateway.QueryStatus(qctx, sig.TransactionID)
	if err != nil {
		metrics.ObserveGatewayQuery(string(provider), "error")
		if _, ok := errs.As(err); !ok {
			err = errs.Gateway("GATEWAY_QUERY_FAILED", "查询支付状态失败", err)
		}
		return sig, err
	}

	verified := Signal{
		Provider:      provider,
		TransactionID: sig.TransactionID,
		Status:        types.TradeUnknown,
		Trust:         TrustVerified,
		Source:        sig.Source,
	}
	if q == nil {
		metrics.ObserveGatewayQuery(string(provider), "absent")
		return verified, nil
	}

	metrics.ObserveGatewayQuery(string(provider), string(q.Status))
	verified.Status = q.Status
	verified.RawStatus = q.RawStatus
	verified.TradeNo = q.TradeNo
	if !q.TotalAmount.IsZero() {
		verified.TotalAmount = decimal.NewNullDecimal(q.TotalAmount)
	}
	verified.Payload = map[string]interface{}{
		"source":       "query",
		"trade_status": q.RawStatus,
		"trade_no":     q.TradeNo,
	}
	return verified, nil
}

// confirmLocked 在事务内执行状态流转
func (s *Service) confirmLocked(ctx context.Context, st store, sig Signal) (*Outcome, error) {
	record, err := st.payments.LockByTransactionID(ctx, sig.TransactionID)
	if err != nil {
		return nil, notFound(err, errPaymentNotFound)
	}
	o, err := st.orders.LockByID(ctx, record.OrderID)
	if err != nil {
		return nil, notFound(err, errOrderNotFound)
	}

	out := &Outcome{OrderID: o.ID, OrderStatus: o.Status, Result: ResultNoop}
	if sig.Provider != "" && string(sig.Provider) != record.Provider {
		return nil, errs.Validation("PROVIDER_MISMATCH", "支付渠道与记录不一致")
	}

	switch sig.Status {
	case types.TradeSuccess:
		if sig.Trust == TrustRecorded && !record.IsSuccess() {
			return out, nil
		}
		if sig.TotalAmount.Valid && !sig.TotalAmount.Decimal.Equal(record.Amount) {
			logger.WarnString("Lease", "ConfirmPayment", fmt.Sprintf("交易 %s 金额不一致，通知 %s，记录 %s",
				record.TransactionID, sig.TotalAmount.Decimal.StringFixed(2), record.Amount.StringFixed(2)))
			return nil, errs.Validation("AMOUNT_MISMATCH", "支付金额与订单金额不一致")
		}
		return out, s.applySuccess(ctx, st, record, o, sig, out)

	case types.TradeClosed:
		if !o.IsPaying() || record.IsSuccess() {
			return out, nil
		}
		ok, err := st.orders.TransitionStatus(ctx, o.ID, order.StatusPaying, order.StatusCancelled, nil)
		if err != nil {
			return nil, err
		}
		if ok {
			out.OrderStatus = order.StatusCancelled
			out.Result = ResultCancelled
		}
		return out, nil
	}

	return out, nil
}

func (s *Service) applySuccess(ctx context.Context, st store, record *payment.Payment, o *order.Order, sig Signal, out *Outcome) error {
	markPaid := func() error {
		if !record.IsPending() {
			return nil
		}
		_, err := st.payments.MarkSuccess(ctx, record.ID, sig.TradeNo, s.now(), payment.JSON(sig.Payload))
		return err
	}

	switch {
	case o.IsLeasing():
		out.Result = ResultDuplicate
		return markPaid()
	case !o.IsPaying():
		logger.WarnString("Lease", "ConfirmPayment", fmt.Sprintf("订单 %s 状态为 %s，忽略交易 %s 的支付确认", o.No(), o.Status, record.TransactionID))
		out.Result = ResultIgnored
		return nil
	}

	leased, err := st.accounts.TransitionStatus(ctx, o.AccountID, account.StatusListed, account.StatusLeased)
	if err != nil {
		return err
	}
	if !leased {
		logger.WarnString("Lease", "ConfirmPayment", fmt.Sprintf("订单 %s 已支付但账号 %d 不可出租，等待修复", o.No(), o.AccountID))
		out.Result = ResultConflict
		return markPaid()
	}

	// 修复生效时账号刚释放，租期从现在起算，时长不变
	var window map[string]interface{}
	if sig.Source == SourceRepair {
		start := s.now()
		end := start.Add(o.EndTime.Sub(o.StartTime))
		window = map[string]interface{}{"start_time": start, "end_time": end}
		o.StartTime, o.EndTime = start, end
	}

	ok, err := st.orders.TransitionStatus(ctx, o.ID, order.StatusPaying, order.StatusLeasing, window)
	if err != nil {
		return err
	}
	if !ok {
		return errs.Wrap(errs.KindInternal, "ORDER_STATE_CHANGED", "订单状态已变化", nil)
	}
	if err := markPaid(); err != nil {
		return err
	}

	out.OrderStatus = order.StatusLeasing
	out.Result = ResultApplied
	return nil
}

// PollResult 订单状态查询结果，Degraded 表示网关不可用时返回的本地状态
type PollResult struct {
	OrderID  uint64       `json:"order_id"`
	OrderNo  string       `json:"order_no"`
	Status   order.Status `json:"status"`
	Degraded bool         `json:"degraded,omitempty"`
}

// PollStatus 租客查询订单状态，待支付时主动向网关确认，网关暂时不可用时返回本地状态
func (s *Service) PollStatus(ctx context.Context, tenantID, orderID uint64) (*PollResult, error) {
	o, err := s.orders.GetByID(ctx, orderID)
	if o, err = checkOwner(o, err, tenantID); err != nil {
		return nil, err
	}
	result := &PollResult{OrderID: o.ID, OrderNo: o.No(), Status: o.Status}
	if !o.IsPaying() {
		return result, nil
	}

	record, err := s.payments.PendingByOrder(ctx, o.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return result, nil
		}
		return nil, err
	}

	out, err := s.ConfirmPayment(ctx, Signal{TransactionID: record.TransactionID, Trust: TrustUnverified, Source: SourcePoll})
	if err != nil {
		if errs.IsRetryable(err) {
			logger.WarnString("Lease", "PollStatus", fmt.Sprintf("订单 %s 查询网关失败，返回本地状态: %v", o.No(), err))
			result.Degraded = true
			return result, nil
		}
		return nil, err
	}
	result.Status = out.OrderStatus
	return result, nil
}
