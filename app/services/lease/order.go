package lease

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"zuhaoku/app/models/account"
	"zuhaoku/app/models/order"
	"zuhaoku/app/models/payment"
	"zuhaoku/pkg/errs"
	"zuhaoku/pkg/logger"
	"zuhaoku/pkg/pricing"
)

// CreateInput 下单参数
type CreateInput struct {
	AccountID uint64
	Duration  int
	Unit      string
}

// Detail 订单详情，租赁中才带账号凭据
type Detail struct {
	Order       *order.Order
	Account     *account.Account
	Payment     *payment.Payment
	Credentials *account.Credentials
}

// parseDuration 校验时长和单位
func (s *Service) parseDuration(duration int, unitStr string) (pricing.Unit, error) {
	unit, err := pricing.ParseUnit(unitStr)
	if err != nil {
		return "", err
	}
	if err := pricing.Validate(duration, unit); err != nil {
		return "", err
	}
	if duration > s.cfg.MaxDuration {
		return "", errs.Validation("DURATION_TOO_LONG", fmt.Sprintf("单次租用时长不能超过 %d", s.cfg.MaxDuration))
	}
	return unit, nil
}

// Create 创建待支付订单，账号必须处于上架状态
func (s *Service) Create(ctx context.Context, tenantID uint64, in CreateInput) (*order.Order, error) {
	unit, err := s.parseDuration(in.Duration, in.Unit)
	if err != nil {
		return nil, err
	}

	var created *order.Order
	err = s.transaction(ctx, func(st store) error {
		acc, err := st.accounts.LockByID(ctx, in.AccountID)
		if err != nil {
			return notFound(err, errAccountNotFound)
		}
		if !acc.IsListed() {
			return errs.NotFound("ACCOUNT_NOT_AVAILABLE", "账号不存在或不可租用")
		}
		if acc.OwnerID == tenantID {
			return errs.Validation("CANNOT_RENT_OWN_ACCOUNT", "不能租用自己的账号")
		}

		amount, err := pricing.Calculate(acc.PriceTable(), in.Duration, unit)
		if err != nil {
			return err
		}
		start := s.now()
		end, err := pricing.EndTime(start, in.Duration, unit)
		if err != nil {
			return err
		}

		created = &order.Order{
			AccountID: acc.ID,
			TenantID:  tenantID,
			StartTime: start,
			EndTime:   end,
			Amount:    amount,
			Status:    order.StatusPaying,
		}
		return st.orders.Create(ctx, created)
	})
	if err != nil {
		return nil, err
	}

	logger.InfoString("Lease", "Create", fmt.Sprintf("订单 %s 已创建，账号 %d，金额 %s", created.No(), created.AccountID, created.Amount.StringFixed(2)))
	return created, nil
}

// checkOwner 不属于该租客的订单按不存在处理
func checkOwner(o *order.Order, err error, tenantID uint64) (*order.Order, error) {
	if err != nil {
		return nil, notFound(err, errOrderNotFound)
	}
	if !o.BelongsTo(tenantID) {
		return nil, errOrderNotFound
	}
	return o, nil
}

// Get 订单详情
func (s *Service) Get(ctx context.Context, tenantID, orderID uint64) (*Detail, error) {
	o, err := s.orders.GetByID(ctx, orderID)
	if o, err = checkOwner(o, err, tenantID); err != nil {
		return nil, err
	}

	detail := &Detail{Order: o}
	if acc, err := s.accounts.GetByID(ctx, o.AccountID); err == nil {
		detail.Account = acc
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if p, err := s.payments.LatestByOrder(ctx, o.ID); err == nil {
		detail.Payment = p
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if o.IsLeasing() && detail.Account != nil && s.opener != nil {
		creds, err := s.openCredentials(detail.Account)
		if err != nil {
			return nil, err
		}
		detail.Credentials = creds
	}
	return detail, nil
}

func (s *Service) openCredentials(acc *account.Account) (*account.Credentials, error) {
	plain, err := s.opener.Open(acc.CredentialCipher, acc.CredentialNonce)
	if err != nil {
		logger.ErrorString("Lease", "OpenCredentials", fmt.Sprintf("账号 %d 凭据解密失败: %v", acc.ID, err))
		return nil, err
	}
	creds := new(account.Credentials)
	if err := json.Unmarshal(plain, creds); err != nil {
		return nil, errs.Wrap(errs.KindInternal, "CREDENTIAL_CORRUPTED", "账号凭据格式错误", err)
	}
	return creds, nil
}

// ListMine 租客自己的订单
func (s *Service) ListMine(ctx context.Context, tenantID uint64, status order.Status, page, pageSize int) ([]order.Order, int64, error) {
	return s.orders.ListByTenant(ctx, tenantID, status, page, pageSize)
}

// Cancel 取消待支付订单，支付记录不做改动。已支付成功的订单不可取消
func (s *Service) Cancel(ctx context.Context, tenantID, orderID uint64) (*order.Order, error) {
	var result *order.Order
	err := s.transaction(ctx, func(st store) error {
		o, err := st.orders.LockByID(ctx, orderID)
		if o, err = checkOwner(o, err, tenantID); err != nil {
			return err
		}
		if !o.IsPaying() {
			return errOrderNotPaying
		}
		if err := ensureUnpaid(ctx, st, o.ID); err != nil {
			return err
		}

		ok, err := st.orders.TransitionStatus(ctx, o.ID, order.StatusPaying, order.StatusCancelled, nil)
		if err != nil {
			return err
		}
		if !ok {
			return errOrderNotPaying
		}
		o.Status = order.StatusCancelled
		result = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.InfoString("Lease", "Cancel", fmt.Sprintf("订单 %s 已取消", result.No()))
	return result, nil
}

// Renew 续租：按账号当前价格计算新增金额，从当前结束时间顺延，状态不变
func (s *Service) Renew(ctx context.Context, tenantID, orderID uint64, duration int, unitStr string) (*order.Order, error) {
	unit, err := s.parseDuration(duration, unitStr)
	if err != nil {
		return nil, err
	}

	var result *order.Order
	err = s.transaction(ctx, func(st store) error {
		o, err := st.orders.LockByID(ctx, orderID)
		if o, err = checkOwner(o, err, tenantID); err != nil {
			return err
		}
		if !o.IsLeasing() {
			return errOrderNotLeasing
		}

		acc, err := st.accounts.GetByID(ctx, o.AccountID)
		if err != nil {
			return notFound(err, errAccountNotFound)
		}
		added, err := pricing.Calculate(acc.PriceTable(), duration, unit)
		if err != nil {
			return err
		}
		end, err := pricing.EndTime(o.EndTime, duration, unit)
		if err != nil {
			return err
		}

		o.Amount = o.Amount.Add(added)
		o.EndTime = end
		ok, err := st.orders.TransitionStatus(ctx, o.ID, order.StatusLeasing, order.StatusLeasing, map[string]interface{}{
			"end_time": o.EndTime,
			"amount":   o.Amount,
		})
		if err != nil {
			return err
		}
		if !ok {
			return errOrderNotLeasing
		}
		result = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.InfoString("Lease", "Renew", fmt.Sprintf("订单 %s 已续租至 %s，累计金额 %s", result.No(), result.EndTime.Format("2006-01-02 15:04:05"), result.Amount.StringFixed(2)))
	return result, nil
}

// Return 归还：订单关闭并记录实际结束时间，账号重新上架
func (s *Service) Return(ctx context.Context, tenantID, orderID uint64) (*order.Order, error) {
	var result *order.Order
	err := s.transaction(ctx, func(st store) error {
		o, err := st.orders.LockByID(ctx, orderID)
		if o, err = checkOwner(o, err, tenantID); err != nil {
			return err
		}
		if !o.IsLeasing() {
			return errOrderNotLeasing
		}

		now := s.now()
		if now.Before(o.StartTime) {
			now = o.StartTime
		}
		ok, err := st.orders.TransitionStatus(ctx, o.ID, order.StatusLeasing, order.StatusClosed, map[string]interface{}{
			"actual_end_time": now,
		})
		if err != nil {
			return err
		}
		if !ok {
			return errOrderNotLeasing
		}

		released, err := st.accounts.TransitionStatus(ctx, o.AccountID, account.StatusLeased, account.StatusListed)
		if err != nil {
			return err
		}
		if !released {
			logger.WarnString("Lease", "Return", fmt.Sprintf("订单 %s 归还时账号 %d 不在出租状态", o.No(), o.AccountID))
		}

		o.Status = order.StatusClosed
		o.ActualEndTime = &now
		result = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.InfoString("Lease", "Return", fmt.Sprintf("订单 %s 已归还", result.No()))
	return result, nil
}
