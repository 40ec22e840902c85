package requests

import (
	"github.com/gin-gonic/gin"
	"github.com/thedevsaddam/govalidator"
)

// PaymentCreateRequest 发起支付
type PaymentCreateRequest struct {
	OrderID   uint64 `json:"order_id"`
	ReturnURL string `json:"return_url"`
}

// ValidatePaymentCreate 校验发起支付参数
func ValidatePaymentCreate(c *gin.Context) (*PaymentCreateRequest, error) {
	rules := govalidator.MapData{
		"order_id":   []string{"required"},
		"return_url": []string{"url"},
	}
	messages := govalidator.MapData{
		"order_id":   []string{"required:订单 ID 不能为空"},
		"return_url": []string{"url:跳转地址格式错误"},
	}
	return ValidateRequest[PaymentCreateRequest](c, rules, messages)
}
