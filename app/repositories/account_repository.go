package repositories

import (
	"context"

	"gorm.io/gorm"

	"zuhaoku/app/models/account"
)

// AccountRepository 游戏账号仓库
type AccountRepository struct {
	db *gorm.DB
}

// NewAccountRepository 创建仓库实例
func NewAccountRepository(db *gorm.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

// WithTx 返回绑定到事务的仓库
func (r *AccountRepository) WithTx(tx *gorm.DB) *AccountRepository {
	return &AccountRepository{db: tx}
}

// Create 创建账号
func (r *AccountRepository) Create(ctx context.Context, a *account.Account) error {
	return r.db.WithContext(ctx).Create(a).Error
}

// GetByID 根据 ID 获取账号
func (r *AccountRepository) GetByID(ctx context.Context, id uint64) (*account.Account, error) {
	var a account.Account
	if err := r.db.WithContext(ctx).First(&a, id).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

// LockByID 加行锁读取账号，必须在事务中调用
func (r *AccountRepository) LockByID(ctx context.Context, id uint64) (*account.Account, error) {
	var a account.Account
	if err := r.db.WithContext(ctx).Clauses(forUpdate).Where("id = ?", id).First(&a).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

// ListListed 上架中的账号，gameID 为 0 时不过滤游戏
func (r *AccountRepository) ListListed(ctx context.Context, gameID uint64, page, pageSize int) ([]account.Account, int64, error) {
	var (
		accounts []account.Account
		total    int64
	)

	query := r.db.WithContext(ctx).Model(&account.Account{}).Where("status = ?", account.StatusListed)
	if gameID != 0 {
		query = query.Where("game_id = ?", gameID)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Order("id DESC").Scopes(paginate(page, pageSize)).Find(&accounts).Error
	return accounts, total, err
}

// ListByOwner 号主的账号
func (r *AccountRepository) ListByOwner(ctx context.Context, ownerID uint64, page, pageSize int) ([]account.Account, int64, error) {
	var (
		accounts []account.Account
		total    int64
	)

	query := r.db.WithContext(ctx).Model(&account.Account{}).Where("owner_id = ?", ownerID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Order("id DESC").Scopes(paginate(page, pageSize)).Find(&accounts).Error
	return accounts, total, err
}

// TransitionStatus 条件更新状态，只有当前状态为 from 时才写入，返回是否更新成功
func (r *AccountRepository) TransitionStatus(ctx context.Context, id uint64, from, to account.Status) (bool, error) {
	result := r.db.WithContext(ctx).Model(&account.Account{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	return result.RowsAffected == 1, result.Error
}
