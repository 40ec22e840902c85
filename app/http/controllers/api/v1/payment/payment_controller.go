// Package payment 支付接口：发起支付、网关回调、支付完成跳转
package payment

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	v1 "zuhaoku/app/http/controllers/api/v1"
	"zuhaoku/app/requests"
	"zuhaoku/app/services/lease"
	"zuhaoku/pkg/app"
	"zuhaoku/pkg/errs"
	"zuhaoku/pkg/logger"
	"zuhaoku/pkg/payment/types"
	"zuhaoku/pkg/response"
)

// 支付宝异步通知应答
const (
	alipayAckSuccess = "success"
	alipayAckFail    = "fail"
)

// formNotifier 表单回调验签，支付宝
type formNotifier interface {
	ParseNotification(form url.Values) (*types.Notification, error)
}

// requestNotifier 整个请求验签解密，微信支付
type requestNotifier interface {
	ParseNotification(ctx context.Context, req *http.Request) (*types.Notification, error)
}

// PaymentController 支付控制器
type PaymentController struct {
	v1.BaseAPIController
	service  *lease.Service
	gateways lease.GatewayResolver
}

// NewPaymentController 创建支付控制器
func NewPaymentController(service *lease.Service, gateways lease.GatewayResolver) *PaymentController {
	return &PaymentController{
		service:  service,
		gateways: gateways,
	}
}

// CreatePayment 为待支付订单发起支付
// POST /api/v1/payments/:provider/create
func (pc *PaymentController) CreatePayment(c *gin.Context) {
	identity, ok := pc.Identity(c)
	if !ok {
		return
	}
	provider, ok := types.ParseProvider(c.Param("provider"))
	if !ok {
		response.Abort(c, errs.Validation("PAYMENT_PROVIDER_INVALID", "不支持的支付渠道"))
		return
	}
	req, err := requests.ValidatePaymentCreate(c)
	if err != nil {
		pc.AbortRequest(c, err)
		return
	}

	result, err := pc.service.Checkout(c.Request.Context(), identity.ID, lease.CheckoutInput{
		OrderID:   req.OrderID,
		Provider:  provider,
		ClientIP:  c.ClientIP(),
		ReturnURL: req.ReturnURL,
	})
	if err != nil {
		response.Abort(c, err)
		return
	}
	response.Data(c, result)
}

// Show 按本地交易号查询支付结果
// GET /api/v1/payments/transactions/:transactionId
func (pc *PaymentController) Show(c *gin.Context) {
	identity, ok := pc.Identity(c)
	if !ok {
		return
	}

	record, err := pc.service.QueryPayment(c.Request.Context(), identity.ID, c.Param("transactionId"))
	if err != nil {
		response.Abort(c, err)
		return
	}
	response.Data(c, record)
}

// AlipayNotify 支付宝异步通知。验签失败、金额不符或处理失败应答 fail，支付宝会按策略重发；
// 已处理过的通知同样应答 success
// POST /api/v1/payments/alipay/notify
func (pc *PaymentController) AlipayNotify(c *gin.Context) {
	if err := c.Request.ParseForm(); err != nil {
		logger.WarnString("Payment", "AlipayNotify", "解析通知表单失败: "+err.Error())
		c.String(http.StatusOK, alipayAckFail)
		return
	}

	gateway, err := pc.gateways.Gateway(types.ProviderAlipay)
	if err != nil {
		logger.ErrorString("Payment", "AlipayNotify", err.Error())
		c.String(http.StatusOK, alipayAckFail)
		return
	}
	notifier, ok := gateway.(formNotifier)
	if !ok {
		logger.ErrorString("Payment", "AlipayNotify", "支付宝网关不支持异步通知")
		c.String(http.StatusOK, alipayAckFail)
		return
	}

	n, err := notifier.ParseNotification(c.Request.PostForm)
	if err != nil {
		logger.WarnString("Payment", "AlipayNotify", fmt.Sprintf("通知校验失败 out_trade_no=%s: %v", c.Request.PostForm.Get("out_trade_no"), err))
		c.String(http.StatusOK, alipayAckFail)
		return
	}

	if _, err := pc.service.ConfirmPayment(c.Request.Context(), lease.NotificationSignal(n)); err != nil {
		c.String(http.StatusOK, alipayAckFail)
		return
	}
	c.String(http.StatusOK, alipayAckSuccess)
}

// WechatNotify 微信支付回调，成功返回 200，失败返回 FAIL 让微信重发
// POST /api/v1/payments/wechat/notify
func (pc *PaymentController) WechatNotify(c *gin.Context) {
	gateway, err := pc.gateways.Gateway(types.ProviderWechat)
	if err != nil {
		logger.ErrorString("Payment", "WechatNotify", err.Error())
		wechatFail(c, http.StatusServiceUnavailable, "支付渠道未启用")
		return
	}
	notifier, ok := gateway.(requestNotifier)
	if !ok {
		wechatFail(c, http.StatusServiceUnavailable, "支付渠道不支持回调")
		return
	}

	n, err := notifier.ParseNotification(c.Request.Context(), c.Request)
	if err != nil {
		logger.WarnString("Payment", "WechatNotify", "通知校验失败: "+err.Error())
		wechatFail(c, http.StatusBadRequest, "验签失败")
		return
	}

	if _, err := pc.service.ConfirmPayment(c.Request.Context(), lease.NotificationSignal(n)); err != nil {
		wechatFail(c, errs.HTTPStatus(errs.KindOf(err)), errs.CodeOf(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": "SUCCESS", "message": "成功"})
}

func wechatFail(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"code": "FAIL", "message": msg})
}

// AlipayReturn 支付完成后跳回前端订单页。同步跳转不作为支付成功的依据
// GET /api/v1/payments/alipay/return
func (pc *PaymentController) AlipayReturn(c *gin.Context) {
	target := app.FrontendURL("tenant/orders")

	orderNo, err := pc.service.OrderNoForTransaction(c.Request.Context(), c.Query("out_trade_no"))
	if err == nil {
		target += "?orderNo=" + url.QueryEscape(orderNo)
	} else {
		logger.WarnString("Payment", "AlipayReturn", fmt.Sprintf("跳转参数无效 out_trade_no=%s: %v", c.Query("out_trade_no"), err))
	}
	c.Redirect(http.StatusFound, target)
}
