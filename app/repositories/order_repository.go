package repositories

import (
	"context"

	"gorm.io/gorm"

	"zuhaoku/app/models/order"
)

// OrderRepository 租号订单仓库
type OrderRepository struct {
	db *gorm.DB
}

// NewOrderRepository 创建仓库实例
func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// WithTx 返回绑定到事务的仓库
func (r *OrderRepository) WithTx(tx *gorm.DB) *OrderRepository {
	return &OrderRepository{db: tx}
}

// Create 创建订单
func (r *OrderRepository) Create(ctx context.Context, o *order.Order) error {
	return r.db.WithContext(ctx).Create(o).Error
}

// GetByID 根据 ID 获取订单
func (r *OrderRepository) GetByID(ctx context.Context, id uint64) (*order.Order, error) {
	var o order.Order
	if err := r.db.WithContext(ctx).First(&o, id).Error; err != nil {
		return nil, err
	}
	return &o, nil
}

// LockByID 加行锁读取订单，必须在事务中调用
func (r *OrderRepository) LockByID(ctx context.Context, id uint64) (*order.Order, error) {
	var o order.Order
	if err := r.db.WithContext(ctx).Clauses(forUpdate).Where("id = ?", id).First(&o).Error; err != nil {
		return nil, err
	}
	return &o, nil
}

// ListByTenant 租客的订单，按创建时间倒序
func (r *OrderRepository) ListByTenant(ctx context.Context, tenantID uint64, status order.Status, page, pageSize int) ([]order.Order, int64, error) {
	var (
		orders []order.Order
		total  int64
	)

	query := r.db.WithContext(ctx).Model(&order.Order{}).Where("tenant_id = ?", tenantID)
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Order("created_at DESC").Order("id DESC").
		Scopes(paginate(page, pageSize)).
		Find(&orders).Error
	return orders, total, err
}

// TransitionStatus 条件更新状态，只有当前状态为 from 时才写入，返回是否更新成功
func (r *OrderRepository) TransitionStatus(ctx context.Context, id uint64, from, to order.Status, fields map[string]interface{}) (bool, error) {
	values := map[string]interface{}{"status": to}
	for k, v := range fields {
		values[k] = v
	}
	result := r.db.WithContext(ctx).Model(&order.Order{}).
		Where("id = ? AND status = ?", id, from).
		Updates(values)
	return result.RowsAffected == 1, result.Error
}

// CountByAccount 统计账号下指定状态的订单数
func (r *OrderRepository) CountByAccount(ctx context.Context, accountID uint64, statuses ...order.Status) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&order.Order{}).
		Where("account_id = ? AND status IN ?", accountID, statuses).
		Count(&total).Error
	return total, err
}
