// Package routes 注册路由
package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"zuhaoku/app/http/controllers/api/v1/account"
	"zuhaoku/app/http/controllers/api/v1/order"
	"zuhaoku/app/http/controllers/api/v1/payment"
	"zuhaoku/app/http/middlewares"
	"zuhaoku/app/services/lease"
	"zuhaoku/app/services/listing"
	"zuhaoku/pkg/auth"
	"zuhaoku/pkg/config"
	"zuhaoku/pkg/metrics"
)

// Services 路由依赖的业务服务，由 bootstrap 构建
type Services struct {
	Lease         *lease.Service
	Listing       *listing.Service
	Gateways      lease.GatewayResolver
	Authenticator *auth.Authenticator
}

// RegisterAPIRoutes 注册所有 API 路由
func RegisterAPIRoutes(r *gin.Engine, svc Services) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	v1 := r.Group("/api/v1")
	v1.Use(
		middlewares.SecurityHeaders(),
		middlewares.Cors(),
		// 全局限流：每小时每 IP
		middlewares.LimitIP(config.GetString("app.api_rate_limit", "30000-H")),
	)

	authJWT := middlewares.AuthJWT(svc.Authenticator)
	tenantOnly := middlewares.RequireRole(auth.RoleTenant)
	ownerOnly := middlewares.RequireRole(auth.RoleOwner)
	orderLimit := middlewares.LimitPerRoute(config.GetString("app.order_rate_limit", "60-M"))

	// 订单，仅租客
	orderRoutes := v1.Group("/orders", authJWT, tenantOnly)
	{
		oc := order.NewOrdersController(svc.Lease)
		orderRoutes.POST("", orderLimit, oc.Store)
		orderRoutes.GET("/my", oc.Index)
		orderRoutes.GET("/status/:orderNo", oc.Status)
		orderRoutes.GET("/:id", oc.Show)
		orderRoutes.POST("/:id/cancel", orderLimit, oc.Cancel)
		orderRoutes.POST("/:id/renew", orderLimit, oc.Renew)
		orderRoutes.POST("/:id/return", orderLimit, oc.Return)
	}

	// 支付
	paymentRoutes := v1.Group("/payments")
	{
		pc := payment.NewPaymentController(svc.Lease, svc.Gateways)
		notifyLimit := middlewares.LimitPerRoute(config.GetString("app.notify_rate_limit", "600-M"))

		// 网关回调和同步跳转不带登录态，回调依靠验签
		paymentRoutes.POST("/alipay/notify", notifyLimit, pc.AlipayNotify)
		paymentRoutes.POST("/wechat/notify", notifyLimit, pc.WechatNotify)
		paymentRoutes.GET("/alipay/return", pc.AlipayReturn)

		paymentRoutes.POST("/:provider/create", authJWT, tenantOnly, orderLimit, pc.CreatePayment)
		paymentRoutes.GET("/transactions/:transactionId", authJWT, tenantOnly, pc.Show)
	}

	// 账号
	accountRoutes := v1.Group("/accounts")
	{
		ac := account.NewAccountsController(svc.Listing)
		accountRoutes.GET("", ac.Index)
		accountRoutes.GET("/mine", authJWT, ownerOnly, ac.Mine)
		accountRoutes.POST("", authJWT, ownerOnly, ac.Store)
		accountRoutes.PATCH("/:id/listing", authJWT, ownerOnly, ac.Listing)
	}
}
