// Package app 应用信息
package app

import (
	"strings"

	"zuhaoku/pkg/config"
)

// IsLocal 本地开发环境
func IsLocal() bool {
	return config.Get("app.env") == "local"
}

// IsProduction 生产环境
func IsProduction() bool {
	return config.Get("app.env") == "production"
}

// IsTesting 测试环境
func IsTesting() bool {
	return config.Get("app.env") == "testing"
}

// URL 传参 path 拼接站点的 URL，支付回调地址默认值由此生成
func URL(path string) string {
	return strings.TrimRight(config.Get("app.url"), "/") + "/" + strings.TrimLeft(path, "/")
}

// FrontendURL 拼接前端站点地址，支付完成后的跳转使用
func FrontendURL(path string) string {
	return strings.TrimRight(config.Get("app.frontend_url"), "/") + "/" + strings.TrimLeft(path, "/")
}
