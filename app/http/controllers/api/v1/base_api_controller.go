// Package v1 处理业务逻辑, 控制器公共方法
package v1

import (
	"github.com/gin-gonic/gin"
	"github.com/spf13/cast"

	"zuhaoku/app/requests"
	"zuhaoku/pkg/auth"
	"zuhaoku/pkg/errs"
	"zuhaoku/pkg/response"
)

// 分页默认值
const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// BaseAPIController 基础控制器
type BaseAPIController struct {
}

// Identity 当前登录用户，路由必须挂载 AuthJWT
func (ctrl *BaseAPIController) Identity(c *gin.Context) (auth.Identity, bool) {
	identity, ok := auth.CurrentIdentity(c)
	if !ok {
		response.Abort(c, errs.Unauthorized("TOKEN_MISSING", "请先登录"))
	}
	return identity, ok
}

// AbortRequest 请求体解析或表单验证失败
func (ctrl *BaseAPIController) AbortRequest(c *gin.Context, err error) {
	if ve, ok := requests.AsValidationError(err); ok {
		response.ValidationError(c, ve.Errors)
		return
	}
	response.BadRequest(c, err)
}

// ParamID 解析路径中的数字 ID
func (ctrl *BaseAPIController) ParamID(c *gin.Context, name string) (uint64, bool) {
	id := cast.ToUint64(c.Param(name))
	if id == 0 {
		response.Abort(c, errs.Validation("INVALID_ID", "ID 格式错误"))
		return 0, false
	}
	return id, true
}

// Paginate 读取分页参数
func (ctrl *BaseAPIController) Paginate(c *gin.Context) (page, pageSize int) {
	page = cast.ToInt(c.DefaultQuery("page", "1"))
	pageSize = cast.ToInt(c.DefaultQuery("page_size", cast.ToString(DefaultPageSize)))
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	return page, pageSize
}

// Paging 列表响应
type Paging struct {
	Items    interface{} `json:"items"`
	Total    int64       `json:"total"`
	Page     int         `json:"page"`
	PageSize int         `json:"page_size"`
}
