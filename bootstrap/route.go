package bootstrap

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"zuhaoku/app/http/middlewares"
	"zuhaoku/pkg/metrics"
	"zuhaoku/pkg/response"
	"zuhaoku/routes"
)

// SetupRoute 注册全局中间件、API 路由和 404 处理
func SetupRoute(router *gin.Engine, svc routes.Services) {
	registerGlobalMiddleWare(router)
	routes.RegisterAPIRoutes(router, svc)
	setup404Handler(router)
}

func registerGlobalMiddleWare(router *gin.Engine) {
	router.Use(
		middlewares.Logger(),
		middlewares.Recovery(),
		metrics.GinMiddleware(),
	)
}

// setup404Handler 浏览器访问返回文本，其余返回统一的 JSON 错误
func setup404Handler(router *gin.Engine) {
	router.NoRoute(func(c *gin.Context) {
		if strings.Contains(c.Request.Header.Get("Accept"), "text/html") {
			c.String(http.StatusNotFound, "页面返回 404")
			return
		}
		response.Abort404(c, "路由未定义，请确认 url 和请求方法是否正确")
	})
}
