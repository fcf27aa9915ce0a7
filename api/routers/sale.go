package routers

import (
	"time"

	"nft-marketplace/internal/sale"
	"nft-marketplace/pkg/httputil"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// SaleHandler 挂单处理器
type SaleHandler struct {
	service sale.Service
}

// NewSaleHandler 创建挂单处理器
func NewSaleHandler(service sale.Service) *SaleHandler {
	return &SaleHandler{service: service}
}

// Register 注册路由
func (h *SaleHandler) Register(r *gin.RouterGroup) {
	r.POST("/sales", h.List)
	r.PUT("/sales", h.Update)
	r.DELETE("/sales/:collection/:token_id", h.Cancel)
	r.POST("/sales/buy", h.Buy)
}

// FundsRequest 款项参数
type FundsRequest struct {
	Denom string `json:"denom" binding:"required"`
	Value string `json:"value" binding:"required"`
}

func (f *FundsRequest) parse() (sale.Funds, error) {
	value, err := decimal.NewFromString(f.Value)
	if err != nil {
		return sale.Funds{}, err
	}
	return sale.Funds{Denom: f.Denom, Value: value}, nil
}

// ListSaleRequest 挂单请求
type ListSaleRequest struct {
	Collection string       `json:"collection" binding:"required"`
	TokenID    string       `json:"token_id" binding:"required"`
	Price      FundsRequest `json:"price" binding:"required"`
	Expiration time.Time    `json:"expiration" binding:"required"`
	FeeFunds   FundsRequest `json:"fee_funds" binding:"required"`
}

// List 挂单
func (h *SaleHandler) List(c *gin.Context) {
	var req ListSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.BadRequest(c, err.Error())
		return
	}

	price, err := req.Price.parse()
	if err != nil {
		httputil.BadRequest(c, "invalid price value")
		return
	}
	feeFunds, err := req.FeeFunds.parse()
	if err != nil {
		httputil.BadRequest(c, "invalid fee funds value")
		return
	}

	s, err := h.service.List(&sale.ListRequest{
		Collection: req.Collection,
		TokenID:    req.TokenID,
		Seller:     GetAddress(c),
		Price:      price,
		Expiration: req.Expiration,
		FeeFunds:   feeFunds,
	})
	if err != nil {
		httputil.HandleError(c, err)
		return
	}
	httputil.Success(c, s)
}

// UpdateSaleRequest 改价请求
type UpdateSaleRequest struct {
	Collection string       `json:"collection" binding:"required"`
	TokenID    string       `json:"token_id" binding:"required"`
	Price      FundsRequest `json:"price" binding:"required"`
	Expiration time.Time    `json:"expiration" binding:"required"`
}

// Update 改价
func (h *SaleHandler) Update(c *gin.Context) {
	var req UpdateSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.BadRequest(c, err.Error())
		return
	}

	price, err := req.Price.parse()
	if err != nil {
		httputil.BadRequest(c, "invalid price value")
		return
	}

	s, err := h.service.Update(&sale.UpdateRequest{
		Collection: req.Collection,
		TokenID:    req.TokenID,
		Seller:     GetAddress(c),
		Price:      price,
		Expiration: req.Expiration,
	})
	if err != nil {
		httputil.HandleError(c, err)
		return
	}
	httputil.Success(c, s)
}

// Cancel 撤单。运营方可通过on_behalf_of代卖家撤单。
func (h *SaleHandler) Cancel(c *gin.Context) {
	err := h.service.Cancel(GetActor(c), c.Param("collection"), c.Param("token_id"))
	if err != nil {
		httputil.HandleError(c, err)
		return
	}
	httputil.Success(c, nil)
}

// BuySaleRequest 购买请求
type BuySaleRequest struct {
	Collection string       `json:"collection" binding:"required"`
	TokenID    string       `json:"token_id" binding:"required"`
	Funds      FundsRequest `json:"funds" binding:"required"`
}

// Buy 购买
func (h *SaleHandler) Buy(c *gin.Context) {
	var req BuySaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.BadRequest(c, err.Error())
		return
	}

	funds, err := req.Funds.parse()
	if err != nil {
		httputil.BadRequest(c, "invalid funds value")
		return
	}

	err = h.service.Buy(&sale.BuyRequest{
		Collection: req.Collection,
		TokenID:    req.TokenID,
		Buyer:      GetAddress(c),
		Funds:      funds,
	})
	if err != nil {
		httputil.HandleError(c, err)
		return
	}
	httputil.Success(c, nil)
}
