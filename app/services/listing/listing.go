// Package listing 号主的账号上架管理
package listing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"zuhaoku/app/models/account"
	"zuhaoku/app/models/order"
	"zuhaoku/app/repositories"
	"zuhaoku/pkg/errs"
	"zuhaoku/pkg/logger"
	"zuhaoku/pkg/pricing"
)

// Sealer 加密账号凭据，*vault.Vault 实现了该接口
type Sealer interface {
	Seal(plain []byte) (ciphertext, nonce string, err error)
}

// CreateInput 发布账号参数
type CreateInput struct {
	GameID       uint64
	Title        string
	Description  string
	Username     string
	Password     string
	PricePerHour decimal.Decimal
}

// Service 账号上架服务
type Service struct {
	db             *gorm.DB
	accounts       *repositories.AccountRepository
	orders         *repositories.OrderRepository
	sealer         Sealer
	overnightHours int
}

// NewService 创建服务，overnightHours 为包夜折算的小时数
func NewService(db *gorm.DB, sealer Sealer, overnightHours int) *Service {
	return &Service{
		db:             db,
		accounts:       repositories.NewAccountRepository(db),
		orders:         repositories.NewOrderRepository(db),
		sealer:         sealer,
		overnightHours: overnightHours,
	}
}

// Create 发布账号，凭据加密保存，价格表由小时价生成
func (s *Service) Create(ctx context.Context, ownerID uint64, in CreateInput) (*account.Account, error) {
	if strings.TrimSpace(in.Title) == "" || in.Username == "" || in.Password == "" {
		return nil, errs.Validation("ACCOUNT_FIELDS_REQUIRED", "标题、账号和密码不能为空")
	}
	if !in.PricePerHour.IsPositive() {
		return nil, errs.Validation("INVALID_PRICE", "小时价必须大于 0")
	}

	plain, err := json.Marshal(account.Credentials{Username: in.Username, Password: in.Password})
	if err != nil {
		return nil, err
	}
	cipherText, nonce, err := s.sealer.Seal(plain)
	if err != nil {
		return nil, err
	}

	acc := &account.Account{
		OwnerID:          ownerID,
		GameID:           in.GameID,
		Title:            strings.TrimSpace(in.Title),
		Description:      in.Description,
		CredentialCipher: cipherText,
		CredentialNonce:  nonce,
		Status:           account.StatusListed,
	}
	acc.SetPriceTable(pricing.TableFromHourly(in.PricePerHour, s.overnightHours))

	if err := s.accounts.Create(ctx, acc); err != nil {
		return nil, err
	}
	logger.InfoString("Listing", "Create", fmt.Sprintf("号主 %d 发布账号 %d", ownerID, acc.ID))
	return acc, nil
}

// ListListed 可租用的账号
func (s *Service) ListListed(ctx context.Context, gameID uint64, page, pageSize int) ([]account.Account, int64, error) {
	return s.accounts.ListListed(ctx, gameID, page, pageSize)
}

// ListMine 号主自己的账号
func (s *Service) ListMine(ctx context.Context, ownerID uint64, page, pageSize int) ([]account.Account, int64, error) {
	return s.accounts.ListByOwner(ctx, ownerID, page, pageSize)
}

// SetListing 上架或下架。出租中或有待支付订单的账号不能下架
func (s *Service) SetListing(ctx context.Context, ownerID, accountID uint64, listed bool) (*account.Account, error) {
	var result *account.Account
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		accounts := s.accounts.WithTx(tx)
		orders := s.orders.WithTx(tx)

		acc, err := accounts.LockByID(ctx, accountID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errs.NotFound("ACCOUNT_NOT_FOUND", "账号不存在")
			}
			return err
		}
		if acc.OwnerID != ownerID {
			return errs.NotFound("ACCOUNT_NOT_FOUND", "账号不存在")
		}
		if acc.IsLeased() {
			return errs.InvalidState("ACCOUNT_LEASED", "账号出租中，不能修改上架状态")
		}

		from, to := account.StatusDelisted, account.StatusListed
		if !listed {
			from, to = account.StatusListed, account.StatusDelisted
			paying, err := orders.CountByAccount(ctx, acc.ID, order.StatusPaying)
			if err != nil {
				return err
			}
			if paying > 0 {
				return errs.InvalidState("ACCOUNT_HAS_PENDING_ORDER", "账号有待支付订单，暂不能下架")
			}
		}

		result = acc
		if acc.Status == to {
			return nil
		}
		ok, err := accounts.TransitionStatus(ctx, acc.ID, from, to)
		if err != nil {
			return err
		}
		if !ok {
			return errs.InvalidState("ACCOUNT_STATE_CHANGED", "账号状态已变化，请刷新后重试")
		}
		acc.Status = to
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
