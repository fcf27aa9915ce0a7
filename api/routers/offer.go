package routers

import (
	"time"

	"nft-marketplace/internal/offer"
	"nft-marketplace/internal/sale"
	"nft-marketplace/pkg/httputil"

	"github.com/gin-gonic/gin"
)

// OfferHandler 报价处理器
type OfferHandler struct {
	service offer.Service
}

// NewOfferHandler 创建报价处理器
func NewOfferHandler(service offer.Service) *OfferHandler {
	return &OfferHandler{service: service}
}

// Register 注册路由
func (h *OfferHandler) Register(r *gin.RouterGroup) {
	r.POST("/offers", h.Make)
	r.DELETE("/offers/:collection/:token_id", h.Cancel)
	r.POST("/offers/answer", h.Answer)
}

// MakeOfferRequest 报价请求
type MakeOfferRequest struct {
	Collection string       `json:"collection" binding:"required"`
	TokenID    string       `json:"token_id" binding:"required"`
	Price      FundsRequest `json:"price" binding:"required"`
	Expiration time.Time    `json:"expiration" binding:"required"`
}

// Make 报价
func (h *OfferHandler) Make(c *gin.Context) {
	var req MakeOfferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.BadRequest(c, err.Error())
		return
	}

	price, err := req.Price.parse()
	if err != nil {
		httputil.BadRequest(c, "invalid price value")
		return
	}

	o, err := h.service.Make(&offer.MakeRequest{
		Collection: req.Collection,
		TokenID:    req.TokenID,
		Offerer:    GetAddress(c),
		Price:      sale.Funds{Denom: price.Denom, Value: price.Value},
		Expiration: req.Expiration,
	})
	if err != nil {
		httputil.HandleError(c, err)
		return
	}
	httputil.Success(c, o)
}

// Cancel 撤回报价。运营方可通过on_behalf_of代报价人撤回。
func (h *OfferHandler) Cancel(c *gin.Context) {
	err := h.service.Cancel(GetActor(c), c.Param("collection"), c.Param("token_id"))
	if err != nil {
		httputil.HandleError(c, err)
		return
	}
	httputil.Success(c, nil)
}

// AnswerOfferRequest 应答报价请求
type AnswerOfferRequest struct {
	Collection string `json:"collection" binding:"required"`
	TokenID    string `json:"token_id" binding:"required"`
	Offerer    string `json:"offerer" binding:"required"`
	Accept     bool   `json:"accept"`
}

// Answer 应答报价（接受或拒绝）
func (h *OfferHandler) Answer(c *gin.Context) {
	var req AnswerOfferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.BadRequest(c, err.Error())
		return
	}

	err := h.service.Answer(GetAddress(c), req.Collection, req.TokenID, req.Offerer, req.Accept)
	if err != nil {
		httputil.HandleError(c, err)
		return
	}
	httputil.Success(c, nil)
}

// ListByToken 列出token的全部在册报价
func (h *OfferHandler) ListByToken(c *gin.Context) {
	offers, err := h.service.ListByToken(c.Param("address"), c.Param("token_id"))
	if err != nil {
		httputil.HandleError(c, err)
		return
	}
	httputil.Success(c, offers)
}
