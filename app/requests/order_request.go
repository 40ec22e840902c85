package requests

import (
	"github.com/gin-gonic/gin"
	"github.com/thedevsaddam/govalidator"
)

// OrderCreateRequest 下单
type OrderCreateRequest struct {
	AccountID uint64 `json:"account_id"`
	Duration  int    `json:"duration"`
	Unit      string `json:"unit"`
}

// OrderRenewRequest 续租
type OrderRenewRequest struct {
	Duration int    `json:"duration"`
	Unit     string `json:"unit"`
}

var durationMessages = govalidator.MapData{
	"duration": []string{
		"required:租用时长不能为空",
		"min:租用时长必须大于 0",
	},
	"unit": []string{
		"required:租期单位不能为空",
	},
}

// ValidateOrderCreate 校验下单参数，单位和时长上限由订单服务校验
func ValidateOrderCreate(c *gin.Context) (*OrderCreateRequest, error) {
	rules := govalidator.MapData{
		"account_id": []string{"required"},
		"duration":   []string{"required", "min:1"},
		"unit":       []string{"required"},
	}
	messages := govalidator.MapData{
		"account_id": []string{"required:请选择要租用的账号"},
	}
	for k, v := range durationMessages {
		messages[k] = v
	}
	return ValidateRequest[OrderCreateRequest](c, rules, messages)
}

// ValidateOrderRenew 校验续租参数
func ValidateOrderRenew(c *gin.Context) (*OrderRenewRequest, error) {
	rules := govalidator.MapData{
		"duration": []string{"required", "min:1"},
		"unit":     []string{"required"},
	}
	return ValidateRequest[OrderRenewRequest](c, rules, durationMessages)
}
