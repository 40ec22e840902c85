package requests

import (
	"github.com/gin-gonic/gin"
	"github.com/thedevsaddam/govalidator"
)

// AccountCreateRequest 号主发布账号
type AccountCreateRequest struct {
	GameID       uint64 `json:"game_id"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	Username     string `json:"username"`
	Password     string `json:"password"`
	PricePerHour string `json:"price_per_hour"`
}

// AccountListingRequest 上架或下架
type AccountListingRequest struct {
	Listed *bool `json:"listed" binding:"required"`
}

// ValidateAccountCreate 校验发布账号参数
func ValidateAccountCreate(c *gin.Context) (*AccountCreateRequest, error) {
	rules := govalidator.MapData{
		"game_id":        []string{"required"},
		"title":          []string{"required", "max:100"},
		"description":    []string{"max:2000"},
		"username":       []string{"required", "max:100"},
		"password":       []string{"required", "max:200"},
		"price_per_hour": []string{"required", "float"},
	}
	messages := govalidator.MapData{
		"game_id":        []string{"required:请选择游戏"},
		"title":          []string{"required:标题不能为空", "max:标题长度不能超过 100 个字符"},
		"description":    []string{"max:描述长度不能超过 2000 个字符"},
		"username":       []string{"required:游戏账号不能为空", "max:游戏账号过长"},
		"password":       []string{"required:游戏密码不能为空", "max:游戏密码过长"},
		"price_per_hour": []string{"required:小时价不能为空", "float:小时价格式错误"},
	}
	return ValidateRequest[AccountCreateRequest](c, rules, messages)
}
