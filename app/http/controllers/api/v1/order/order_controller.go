// Package order 租客订单接口
package order

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	v1 "zuhaoku/app/http/controllers/api/v1"
	"zuhaoku/app/models/account"
	"zuhaoku/app/models/order"
	"zuhaoku/app/models/payment"
	"zuhaoku/app/requests"
	"zuhaoku/app/services/lease"
	"zuhaoku/pkg/response"
)

// OrdersController 订单控制器
type OrdersController struct {
	v1.BaseAPIController
	service *lease.Service
}

// NewOrdersController 创建订单控制器
func NewOrdersController(service *lease.Service) *OrdersController {
	return &OrdersController{service: service}
}

// Resource 订单响应
type Resource struct {
	ID            uint64          `json:"id"`
	OrderNo       string          `json:"order_no"`
	AccountID     uint64          `json:"account_id"`
	TenantID      uint64          `json:"tenant_id"`
	StartTime     time.Time       `json:"start_time"`
	EndTime       time.Time       `json:"end_time"`
	ActualEndTime *time.Time      `json:"actual_end_time,omitempty"`
	Amount        decimal.Decimal `json:"amount"`
	Status        order.Status    `json:"status"`
	CreatedAt     time.Time       `json:"created_at"`
}

// DetailResource 订单详情响应，凭据只在租赁中返回
type DetailResource struct {
	Order       Resource             `json:"order"`
	Account     *account.Account     `json:"account,omitempty"`
	Payment     *payment.Payment     `json:"payment,omitempty"`
	Credentials *account.Credentials `json:"credentials,omitempty"`
}

// NewResource 转换订单
func NewResource(o *order.Order) Resource {
	return Resource{
		ID:            o.ID,
		OrderNo:       o.No(),
		AccountID:     o.AccountID,
		TenantID:      o.TenantID,
		StartTime:     o.StartTime,
		EndTime:       o.EndTime,
		ActualEndTime: o.ActualEndTime,
		Amount:        o.Amount,
		Status:        o.Status,
		CreatedAt:     o.CreatedAt,
	}
}

// Store 下单
// POST /api/v1/orders
func (ctrl *OrdersController) Store(c *gin.Context) {
	identity, ok := ctrl.Identity(c)
	if !ok {
		return
	}
	req, err := requests.ValidateOrderCreate(c)
	if err != nil {
		ctrl.AbortRequest(c, err)
		return
	}

	o, err := ctrl.service.Create(c.Request.Context(), identity.ID, lease.CreateInput{
		AccountID: req.AccountID,
		Duration:  req.Duration,
		Unit:      req.Unit,
	})
	if err != nil {
		response.Abort(c, err)
		return
	}
	response.Created(c, NewResource(o), "下单成功，请尽快完成支付")
}

// Index 我的订单
// GET /api/v1/orders/my?status=&page=&page_size=
func (ctrl *OrdersController) Index(c *gin.Context) {
	identity, ok := ctrl.Identity(c)
	if !ok {
		return
	}
	page, pageSize := ctrl.Paginate(c)

	orders, total, err := ctrl.service.ListMine(c.Request.Context(), identity.ID, order.Status(c.Query("status")), page, pageSize)
	if err != nil {
		response.Abort(c, err)
		return
	}

	items := make([]Resource, 0, len(orders))
	for i := range orders {
		items = append(items, NewResource(&orders[i]))
	}
	response.Data(c, v1.Paging{Items: items, Total: total, Page: page, PageSize: pageSize})
}

// Show 订单详情
// GET /api/v1/orders/:id
func (ctrl *OrdersController) Show(c *gin.Context) {
	identity, ok := ctrl.Identity(c)
	if !ok {
		return
	}
	id, ok := ctrl.ParamID(c, "id")
	if !ok {
		return
	}

	detail, err := ctrl.service.Get(c.Request.Context(), identity.ID, id)
	if err != nil {
		response.Abort(c, err)
		return
	}
	response.Data(c, DetailResource{
		Order:       NewResource(detail.Order),
		Account:     detail.Account,
		Payment:     detail.Payment,
		Credentials: detail.Credentials,
	})
}

// Cancel 取消待支付订单
// POST /api/v1/orders/:id/cancel
func (ctrl *OrdersController) Cancel(c *gin.Context) {
	ctrl.transition(c, "订单已取消", ctrl.service.Cancel)
}

// Return 归还账号
// POST /api/v1/orders/:id/return
func (ctrl *OrdersController) Return(c *gin.Context) {
	ctrl.transition(c, "账号已归还", ctrl.service.Return)
}

// Renew 续租
// POST /api/v1/orders/:id/renew
func (ctrl *OrdersController) Renew(c *gin.Context) {
	identity, ok := ctrl.Identity(c)
	if !ok {
		return
	}
	id, ok := ctrl.ParamID(c, "id")
	if !ok {
		return
	}
	req, err := requests.ValidateOrderRenew(c)
	if err != nil {
		ctrl.AbortRequest(c, err)
		return
	}

	o, err := ctrl.service.Renew(c.Request.Context(), identity.ID, id, req.Duration, req.Unit)
	if err != nil {
		response.Abort(c, err)
		return
	}
	response.OK(c, NewResource(o), "续租成功")
}

// Status 查询订单状态，待支付时会主动向网关确认
// GET /api/v1/orders/status/:orderNo
func (ctrl *OrdersController) Status(c *gin.Context) {
	identity, ok := ctrl.Identity(c)
	if !ok {
		return
	}
	id, err := order.ParseNo(c.Param("orderNo"))
	if err != nil {
		response.Abort(c, err)
		return
	}

	result, err := ctrl.service.PollStatus(c.Request.Context(), identity.ID, id)
	if err != nil {
		response.Abort(c, err)
		return
	}
	response.Data(c, result)
}

type transitionFunc func(ctx context.Context, tenantID, orderID uint64) (*order.Order, error)

func (ctrl *OrdersController) transition(c *gin.Context, msg string, fn transitionFunc) {
	identity, ok := ctrl.Identity(c)
	if !ok {
		return
	}
	id, ok := ctrl.ParamID(c, "id")
	if !ok {
		return
	}

	o, err := fn(c.Request.Context(), identity.ID, id)
	if err != nil {
		response.Abort(c, err)
		return
	}
	response.OK(c, NewResource(o), msg)
}
