// Package account 账号上架接口
package account

import (
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/spf13/cast"

	v1 "zuhaoku/app/http/controllers/api/v1"
	"zuhaoku/app/models/account"
	"zuhaoku/app/requests"
	"zuhaoku/app/services/listing"
	"zuhaoku/pkg/errs"
	"zuhaoku/pkg/response"
)

// AccountsController 账号控制器
type AccountsController struct {
	v1.BaseAPIController
	service *listing.Service
}

// NewAccountsController 创建账号控制器
func NewAccountsController(service *listing.Service) *AccountsController {
	return &AccountsController{service: service}
}

// Index 上架中的账号，公开
// GET /api/v1/accounts?game_id=&page=&page_size=
func (ctrl *AccountsController) Index(c *gin.Context) {
	page, pageSize := ctrl.Paginate(c)
	accounts, total, err := ctrl.service.ListListed(c.Request.Context(), cast.ToUint64(c.Query("game_id")), page, pageSize)
	if err != nil {
		response.Abort(c, err)
		return
	}
	response.Data(c, v1.Paging{Items: nonNil(accounts), Total: total, Page: page, PageSize: pageSize})
}

// Mine 号主自己的账号
// GET /api/v1/accounts/mine
func (ctrl *AccountsController) Mine(c *gin.Context) {
	identity, ok := ctrl.Identity(c)
	if !ok {
		return
	}
	page, pageSize := ctrl.Paginate(c)
	accounts, total, err := ctrl.service.ListMine(c.Request.Context(), identity.ID, page, pageSize)
	if err != nil {
		response.Abort(c, err)
		return
	}
	response.Data(c, v1.Paging{Items: nonNil(accounts), Total: total, Page: page, PageSize: pageSize})
}

// Store 发布账号
// POST /api/v1/accounts
func (ctrl *AccountsController) Store(c *gin.Context) {
	identity, ok := ctrl.Identity(c)
	if !ok {
		return
	}
	req, err := requests.ValidateAccountCreate(c)
	if err != nil {
		ctrl.AbortRequest(c, err)
		return
	}
	price, err := decimal.NewFromString(req.PricePerHour)
	if err != nil {
		response.Abort(c, errs.Validation("INVALID_PRICE", "小时价格式错误"))
		return
	}

	acc, err := ctrl.service.Create(c.Request.Context(), identity.ID, listing.CreateInput{
		GameID:       req.GameID,
		Title:        req.Title,
		Description:  req.Description,
		Username:     req.Username,
		Password:     req.Password,
		PricePerHour: price,
	})
	if err != nil {
		response.Abort(c, err)
		return
	}
	response.Created(c, acc, "账号已发布")
}

// Listing 上架或下架
// PATCH /api/v1/accounts/:id/listing
func (ctrl *AccountsController) Listing(c *gin.Context) {
	identity, ok := ctrl.Identity(c)
	if !ok {
		return
	}
	id, ok := ctrl.ParamID(c, "id")
	if !ok {
		return
	}
	var req requests.AccountListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err)
		return
	}

	acc, err := ctrl.service.SetListing(c.Request.Context(), identity.ID, id, *req.Listed)
	if err != nil {
		response.Abort(c, err)
		return
	}
	response.Data(c, acc)
}

func nonNil(accounts []account.Account) []account.Account {
	if accounts == nil {
		return []account.Account{}
	}
	return accounts
}
