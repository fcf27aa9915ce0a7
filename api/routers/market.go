package routers

import (
	"nft-marketplace/internal/market"
	"nft-marketplace/pkg/httputil"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// MarketHandler 市场配置处理器
type MarketHandler struct {
	service market.Service
}

// NewMarketHandler 创建市场配置处理器
func NewMarketHandler(service market.Service) *MarketHandler {
	return &MarketHandler{service: service}
}

// Register 注册路由
func (h *MarketHandler) Register(r *gin.RouterGroup) {
	r.PUT("/market/config", h.UpdateConfig)
	r.POST("/market/denoms", h.AddDenom)
	r.DELETE("/market/denoms/:denom", h.RemoveDenom)
	r.PUT("/market/contract-types", h.SetContractTypes)
	r.POST("/market/fees/claim", h.ClaimFees)
}

// GetConfig 查询市场配置
func (h *MarketHandler) GetConfig(c *gin.Context) {
	cfg, err := h.service.GetConfig()
	if err != nil {
		httputil.HandleError(c, err)
		return
	}
	httputil.Success(c, cfg)
}

// UpdateConfigRequest 配置变更请求，缺省字段不变
type UpdateConfigRequest struct {
	Enabled         *bool   `json:"enabled"`
	Owner           *string `json:"owner"`
	FeePct          *string `json:"fee_pct"`
	ListingFeeValue *string `json:"listing_fee_value"`
	ListingFeeDenom *string `json:"listing_fee_denom"`
}

// UpdateConfig 变更市场配置（仅owner）
func (h *MarketHandler) UpdateConfig(c *gin.Context) {
	var req UpdateConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.BadRequest(c, err.Error())
		return
	}

	upd := &market.ConfigUpdate{
		Enabled:         req.Enabled,
		Owner:           req.Owner,
		ListingFeeDenom: req.ListingFeeDenom,
	}
	if req.FeePct != nil {
		feePct, err := decimal.NewFromString(*req.FeePct)
		if err != nil {
			httputil.BadRequest(c, "invalid fee_pct")
			return
		}
		upd.FeePct = &feePct
	}
	if req.ListingFeeValue != nil {
		fee, err := decimal.NewFromString(*req.ListingFeeValue)
		if err != nil {
			httputil.BadRequest(c, "invalid listing_fee_value")
			return
		}
		upd.ListingFeeValue = &fee
	}

	cfg, err := h.service.UpdateConfig(GetAddress(c), upd)
	if err != nil {
		httputil.HandleError(c, err)
		return
	}
	httputil.Success(c, cfg)
}

// AddDenomRequest 准入计价单位请求
type AddDenomRequest struct {
	Denom string `json:"denom" binding:"required"`
}

// AddDenom 准入新的计价单位（仅owner）
func (h *MarketHandler) AddDenom(c *gin.Context) {
	var req AddDenomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.BadRequest(c, err.Error())
		return
	}

	if err := h.service.AddDenom(GetAddress(c), req.Denom); err != nil {
		httputil.HandleError(c, err)
		return
	}
	httputil.Success(c, nil)
}

// RemoveDenom 移除计价单位（仅owner）
func (h *MarketHandler) RemoveDenom(c *gin.Context) {
	if err := h.service.RemoveDenom(GetAddress(c), c.Param("denom")); err != nil {
		httputil.HandleError(c, err)
		return
	}
	httputil.Success(c, nil)
}

// SetContractTypesRequest 合约类型白名单请求
type SetContractTypesRequest struct {
	Types []market.ContractType `json:"types" binding:"required"`
}

// SetContractTypes 替换NFT合约类型白名单（仅owner）
func (h *MarketHandler) SetContractTypes(c *gin.Context) {
	var req SetContractTypesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.BadRequest(c, err.Error())
		return
	}

	if err := h.service.SetContractTypes(GetAddress(c), req.Types); err != nil {
		httputil.HandleError(c, err)
		return
	}
	httputil.Success(c, nil)
}

// ClaimFees 领取全部非零可领取手续费（仅owner）
func (h *MarketHandler) ClaimFees(c *gin.Context) {
	claims, err := h.service.ClaimFees(GetAddress(c))
	if err != nil {
		httputil.HandleError(c, err)
		return
	}
	httputil.Success(c, claims)
}
