package lease

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"zuhaoku/app/models/payment"
	"zuhaoku/pkg/errs"
	"zuhaoku/pkg/logger"
	"zuhaoku/pkg/payment/types"
	"zuhaoku/pkg/payment/utils"
)

// CheckoutInput 发起支付参数
type CheckoutInput struct {
	OrderID   uint64
	Provider  types.Provider
	ClientIP  string
	ReturnURL string
}

// Checkout 为待支付订单生成网关支付请求。
// 同渠道的待支付记录会被复用，其他渠道存在待支付记录时拒绝，保证每个订单只有一条活动记录
func (s *Service) Checkout(ctx context.Context, tenantID uint64, in CheckoutInput) (*types.Result, error) {
	gateway, err := s.gateways.Gateway(in.Provider)
	if err != nil {
		return nil, err
	}

	var record *payment.Payment
	var description string
	err = s.transaction(ctx, func(st store) error {
		o, err := st.orders.LockByID(ctx, in.OrderID)
		if o, err = checkOwner(o, err, tenantID); err != nil {
			return err
		}
		if !o.IsPaying() {
			return errOrderNotPaying
		}
		if err := ensureUnpaid(ctx, st, o.ID); err != nil {
			return err
		}
		description = "租号订单 " + o.No()

		pending, err := st.payments.PendingByOrder(ctx, o.ID)
		switch {
		case err == nil:
			if pending.Provider != string(in.Provider) {
				return errs.InvalidState("PAYMENT_CHANNEL_CONFLICT", "订单已有其他渠道的待支付记录")
			}
			record = pending
			return nil
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return err
		}

		record = &payment.Payment{
			OrderID:       o.ID,
			Provider:      string(in.Provider),
			TransactionID: utils.GenerateTransactionID(in.Provider, o.ID, s.now()),
			Amount:        o.Amount,
			Status:        payment.StatusPending,
		}
		return st.payments.Create(ctx, record)
	})
	if err != nil {
		return nil, err
	}

	result, err := gateway.CreatePayment(ctx, &types.Request{
		OrderID:       record.OrderID,
		TransactionID: record.TransactionID,
		Amount:        record.Amount,
		Description:   description,
		ReturnURL:     in.ReturnURL,
		ClientIP:      in.ClientIP,
	})
	if err != nil {
		logger.ErrorString("Lease", "Checkout", fmt.Sprintf("订单 %d 生成 %s 支付请求失败: %v", record.OrderID, in.Provider, err))
		return nil, err
	}

	logger.InfoString("Lease", "Checkout", fmt.Sprintf("订单 %d 发起 %s 支付，交易号 %s", record.OrderID, in.Provider, record.TransactionID))
	return result, nil
}
