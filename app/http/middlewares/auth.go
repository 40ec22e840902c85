package middlewares

import (
	"github.com/gin-gonic/gin"

	"zuhaoku/pkg/auth"
	"zuhaoku/pkg/errs"
	"zuhaoku/pkg/response"
)

// AuthJWT 校验 Authorization 头中的令牌，身份写入上下文
func AuthJWT(authenticator *auth.Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, err := authenticator.Authenticate(c.GetHeader("Authorization"))
		if err != nil {
			response.Abort(c, err)
			return
		}
		c.Set(auth.ContextKey, identity)
		c.Next()
	}
}

// RequireRole 只允许指定角色访问，需放在 AuthJWT 之后
func RequireRole(roles ...auth.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := auth.CurrentIdentity(c)
		if !ok {
			response.Abort(c, errs.Unauthorized("TOKEN_MISSING", "请先登录"))
			return
		}
		for _, r := range roles {
			if identity.Role == r {
				c.Next()
				return
			}
		}
		response.Abort(c, errs.Forbidden("ROLE_FORBIDDEN", "当前角色无权执行该操作"))
	}
}
