package repositories

import (
	"context"
	"time"

	"gorm.io/gorm"

	"zuhaoku/app/models/order"
	"zuhaoku/app/models/payment"
)

// PaymentRepository 支付记录仓库
type PaymentRepository struct {
	db *gorm.DB
}

// NewPaymentRepository 创建仓库实例
func NewPaymentRepository(db *gorm.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

// WithTx 返回绑定到事务的仓库
func (r *PaymentRepository) WithTx(tx *gorm.DB) *PaymentRepository {
	return &PaymentRepository{db: tx}
}

// Create 创建支付记录
func (r *PaymentRepository) Create(ctx context.Context, p *payment.Payment) error {
	return r.db.WithContext(ctx).Create(p).Error
}

// GetByTransactionID 根据交易ID获取支付记录
func (r *PaymentRepository) GetByTransactionID(ctx context.Context, transactionID string) (*payment.Payment, error) {
	var p payment.Payment
	if err := r.db.WithContext(ctx).Where("transaction_id = ?", transactionID).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// LockByTransactionID 加行锁读取支付记录，必须在事务中调用
func (r *PaymentRepository) LockByTransactionID(ctx context.Context, transactionID string) (*payment.Payment, error) {
	var p payment.Payment
	if err := r.db.WithContext(ctx).Clauses(forUpdate).Where("transaction_id = ?", transactionID).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// LatestByOrder 订单最近一条支付记录
func (r *PaymentRepository) LatestByOrder(ctx context.Context, orderID uint64) (*payment.Payment, error) {
	var p payment.Payment
	err := r.db.WithContext(ctx).Where("order_id = ?", orderID).Order("id DESC").First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// PendingByOrder 订单待支付的记录
func (r *PaymentRepository) PendingByOrder(ctx context.Context, orderID uint64) (*payment.Payment, error) {
	var p payment.Payment
	err := r.db.WithContext(ctx).
		Where("order_id = ? AND status = ?", orderID, payment.StatusPending).
		Order("id DESC").
		First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// SuccessByOrder 订单已支付成功的记录
func (r *PaymentRepository) SuccessByOrder(ctx context.Context, orderID uint64) (*payment.Payment, error) {
	var p payment.Payment
	err := r.db.WithContext(ctx).
		Where("order_id = ? AND status = ?", orderID, payment.StatusSuccess).
		Order("id DESC").
		First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// MarkSuccess 待支付 -> 已支付，paid_at 只写一次
func (r *PaymentRepository) MarkSuccess(ctx context.Context, id uint64, tradeNo string, paidAt time.Time, extra payment.JSON) (bool, error) {
	values := map[string]interface{}{
		"status":  payment.StatusSuccess,
		"paid_at": paidAt,
	}
	if tradeNo != "" {
		values["trade_no"] = tradeNo
	}
	if len(extra) > 0 {
		values["extra_data"] = extra
	}
	return r.transition(ctx, id, values)
}

func (r *PaymentRepository) transition(ctx context.Context, id uint64, values map[string]interface{}) (bool, error) {
	result := r.db.WithContext(ctx).Model(&payment.Payment{}).
		Where("id = ? AND status = ?", id, payment.StatusPending).
		Updates(values)
	return result.RowsAffected == 1, result.Error
}

// ListStalePending 订单仍待支付、且支付记录创建早于 before 的待支付记录
func (r *PaymentRepository) ListStalePending(ctx context.Context, before time.Time, limit int) ([]payment.Payment, error) {
	var records []payment.Payment
	err := r.joinOrders(ctx).
		Where("payment_records.status = ? AND lease_orders.status = ?", payment.StatusPending, order.StatusPaying).
		Where("payment_records.created_at < ?", before).
		Order("payment_records.id").
		Limit(limit).
		Find(&records).Error
	return records, err
}

// ListPaidButPaying 支付已成功但订单仍停留在待支付的记录
func (r *PaymentRepository) ListPaidButPaying(ctx context.Context, limit int) ([]payment.Payment, error) {
	var records []payment.Payment
	err := r.joinOrders(ctx).
		Where("payment_records.status = ? AND lease_orders.status = ?", payment.StatusSuccess, order.StatusPaying).
		Order("payment_records.id").
		Limit(limit).
		Find(&records).Error
	return records, err
}

func (r *PaymentRepository) joinOrders(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(&payment.Payment{}).
		Joins("JOIN lease_orders ON lease_orders.id = payment_records.order_id")
}
