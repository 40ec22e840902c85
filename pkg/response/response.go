// Package response 提供统一的 HTTP 响应处理
package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"zuhaoku/pkg/errs"
	"zuhaoku/pkg/logger"
)

// 预定义响应状态
const (
	Success = "success" // 成功状态
	Error   = "error"   // 错误状态
)

/* 标准响应结构
{
    "status": "success",
    "code": "",     // 错误码，失败时返回，如 ORDER_NOT_PAYING
    "message": "",  // 提示信息
    "data": {},     // 成功时返回的数据
    "error": "",    // 额外的错误说明
}
*/

// Response 统一响应结构体
type Response struct {
	Status  string      `json:"status"`
	Code    string      `json:"code,omitempty"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// ------------------ 成功响应系列 ------------------

// Data 响应 200 和数据
func Data(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Status: Success,
		Data:   data,
	})
}

// OK 响应 200 和提示信息
func OK(c *gin.Context, data interface{}, msg string) {
	c.JSON(http.StatusOK, Response{
		Status:  Success,
		Message: msg,
		Data:    data,
	})
}

// Created 成功创建的响应
func Created(c *gin.Context, data interface{}, msg ...string) {
	c.JSON(http.StatusCreated, Response{
		Status:  Success,
		Message: getMsg("创建成功", msg...),
		Data:    data,
	})
}

// ------------------ 错误响应系列 ------------------

// Abort 按业务错误类别响应。业务错误返回错误码和提示，底层原因只写日志；
// 非业务错误一律按 500 INTERNAL_ERROR 处理
func Abort(c *gin.Context, err error) {
	e, ok := errs.As(err)
	if !ok {
		logger.ErrorString("Response", c.FullPath(), err.Error())
		Abort500(c)
		return
	}

	status := errs.HTTPStatus(e.Kind)
	if status >= http.StatusInternalServerError {
		logger.ErrorString("Response", c.FullPath(), err.Error())
	} else if e.Err != nil {
		logger.WarnString("Response", c.FullPath(), err.Error())
	}

	c.AbortWithStatusJSON(status, Response{
		Status:  Error,
		Code:    e.Code,
		Message: e.Message,
	})
}

// Abort404 响应 404 错误
func Abort404(c *gin.Context, msg ...string) {
	c.AbortWithStatusJSON(http.StatusNotFound, Response{
		Status:  Error,
		Code:    "NOT_FOUND",
		Message: getMsg("资源不存在", msg...),
	})
}

// Abort429 响应 429 错误
func Abort429(c *gin.Context, msg ...string) {
	c.AbortWithStatusJSON(http.StatusTooManyRequests, Response{
		Status:  Error,
		Code:    "TOO_MANY_REQUESTS",
		Message: getMsg("请求太频繁，请稍后再试", msg...),
	})
}

// Abort500 响应 500 错误
func Abort500(c *gin.Context, msg ...string) {
	c.AbortWithStatusJSON(http.StatusInternalServerError, Response{
		Status:  Error,
		Code:    "INTERNAL_ERROR",
		Message: getMsg("服务器内部错误", msg...),
	})
}

// BadRequest 响应 400 错误（请求体无法解析）
func BadRequest(c *gin.Context, err error, msg ...string) {
	logger.LogIf(err)
	c.AbortWithStatusJSON(http.StatusBadRequest, Response{
		Status:  Error,
		Code:    "BAD_REQUEST",
		Message: getMsg("请求格式错误", msg...),
		Error:   err.Error(),
	})
}

// ValidationError 响应 422 表单验证错误
func ValidationError(c *gin.Context, errors map[string][]string) {
	c.AbortWithStatusJSON(http.StatusUnprocessableEntity, Response{
		Status:  Error,
		Code:    "VALIDATION_FAILED",
		Message: "表单验证失败",
		Data:    errors,
	})
}

// getMsg 获取消息内容
func getMsg(defaultMsg string, msg ...string) string {
	if len(msg) > 0 {
		return msg[0]
	}
	return defaultMsg
}
