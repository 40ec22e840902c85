package lease

import (
	"context"
	"fmt"

	"zuhaoku/app/models/order"
	"zuhaoku/app/models/payment"
	"zuhaoku/pkg/errs"
	"zuhaoku/pkg/logger"
)

// QueryPayment 按本地交易号查询支付记录。记录仍待支付时先向网关确认一次，
// 网关暂时不可用时返回本地记录
func (s *Service) QueryPayment(ctx context.Context, tenantID uint64, transactionID string) (*payment.Payment, error) {
	record, err := s.payments.GetByTransactionID(ctx, transactionID)
	if err != nil {
		return nil, notFound(err, errPaymentNotFound)
	}
	o, err := s.orders.GetByID(ctx, record.OrderID)
	if o, err = checkOwner(o, err, tenantID); err != nil {
		// 不暴露其他租客的交易是否存在
		if errs.IsKind(err, errs.KindNotFound) {
			return nil, errPaymentNotFound
		}
		return nil, err
	}
	if record.Status != payment.StatusPending || !o.IsPaying() {
		return record, nil
	}

	if _, err := s.ConfirmPayment(ctx, Signal{TransactionID: transactionID, Trust: TrustUnverified, Source: SourcePoll}); err != nil {
		if !errs.IsRetryable(err) {
			return nil, err
		}
		logger.WarnString("Lease", "QueryPayment", fmt.Sprintf("交易 %s 查询网关失败，返回本地记录: %v", transactionID, err))
		return record, nil
	}

	refreshed, err := s.payments.GetByTransactionID(ctx, transactionID)
	if err != nil {
		return nil, notFound(err, errPaymentNotFound)
	}
	return refreshed, nil
}

// OrderNoForTransaction 支付完成跳转时用交易号找到订单编号，只读，不触发任何状态变化
func (s *Service) OrderNoForTransaction(ctx context.Context, transactionID string) (string, error) {
	if transactionID == "" {
		return "", errPaymentNotFound
	}
	record, err := s.payments.GetByTransactionID(ctx, transactionID)
	if err != nil {
		return "", notFound(err, errPaymentNotFound)
	}
	return order.FormatNo(record.OrderID), nil
}
