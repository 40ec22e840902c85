// Package auth JWT 签发与校验，角色在这里统一规范化
package auth

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"zuhaoku/pkg/errs"
)

// Role 用户角色
type Role string

const (
	RoleTenant   Role = "TENANT"   // 租客
	RoleOwner    Role = "OWNER"    // 号主
	RoleOperator Role = "OPERATOR" // 运营
)

// ContextKey gin 上下文中保存身份的键
const ContextKey = "auth.identity"

// ParseRole 不区分大小写解析角色
func ParseRole(s string) (Role, error) {
	switch r := Role(strings.ToUpper(strings.TrimSpace(s))); r {
	case RoleTenant, RoleOwner, RoleOperator:
		return r, nil
	}
	return "", errs.Unauthorized("ROLE_INVALID", "未知的用户角色")
}

// Identity 已认证的调用方
type Identity struct {
	ID   uint64
	Role Role
}

// Claims 令牌载荷
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Authenticator HS256 令牌签发和校验
type Authenticator struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewAuthenticator 创建认证器
func NewAuthenticator(secret string, ttl time.Duration) (*Authenticator, error) {
	if secret == "" {
		return nil, errs.Configuration("JWT_SECRET_MISSING", "JWT 密钥未配置", nil)
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Authenticator{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

// Issue 签发令牌
func (a *Authenticator) Issue(id Identity) (string, error) {
	now := a.now()
	claims := Claims{
		Role: string(id.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(id.ID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
}

// Authenticate 校验令牌，支持带 Bearer 前缀
func (a *Authenticator) Authenticate(token string) (Identity, error) {
	token = strings.TrimSpace(token)
	if len(token) > 7 && strings.EqualFold(token[:7], "bearer ") {
		token = strings.TrimSpace(token[7:])
	}
	if token == "" {
		return Identity{}, errs.Unauthorized("TOKEN_MISSING", "缺少访问令牌")
	}

	claims := new(Claims)
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return a.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(a.now))
	if err != nil || !parsed.Valid {
		return Identity{}, errs.Unauthorized("TOKEN_INVALID", "访问令牌无效或已过期")
	}

	id, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil || id == 0 {
		return Identity{}, errs.Unauthorized("TOKEN_INVALID", "访问令牌无效或已过期")
	}
	role, err := ParseRole(claims.Role)
	if err != nil {
		return Identity{}, err
	}
	return Identity{ID: id, Role: role}, nil
}

// CurrentIdentity 从 gin 上下文读取当前身份
func CurrentIdentity(c *gin.Context) (Identity, bool) {
	v, ok := c.Get(ContextKey)
	if !ok {
		return Identity{}, false
	}
	id, ok := v.(Identity)
	return id, ok
}
