package routers

import (
	"nft-marketplace/internal/reward"
	"nft-marketplace/pkg/httputil"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// RewardHandler 奖励与VIP处理器
type RewardHandler struct {
	service reward.Service
}

// NewRewardHandler 创建奖励处理器
func NewRewardHandler(service reward.Service) *RewardHandler {
	return &RewardHandler{service: service}
}

// Register 注册路由
func (h *RewardHandler) Register(r *gin.RouterGroup) {
	r.PUT("/reward/system", h.ReplaceSystem)
	r.POST("/reward/level-up", h.LevelUp)
}

// GetSystem 查询奖励系统
func (h *RewardHandler) GetSystem(c *gin.Context) {
	sys, err := h.service.GetSystem()
	if err != nil {
		httputil.HandleError(c, err)
		return
	}
	httputil.Success(c, sys)
}

// ListPerks 列出VIP权益配置
func (h *RewardHandler) ListPerks(c *gin.Context) {
	perks, err := h.service.ListPerks()
	if err != nil {
		httputil.HandleError(c, err)
		return
	}
	httputil.Success(c, perks)
}

// VipPerkRequest 单个VIP权益配置
type VipPerkRequest struct {
	Level          int    `json:"level" binding:"required"`
	Price          string `json:"price" binding:"required"`
	FeeDiscountBps int    `json:"fee_discount_bps"`
}

// ReplaceSystemRequest 奖励系统替换请求
type ReplaceSystemRequest struct {
	RewardToken   string           `json:"reward_token" binding:"required"`
	TokensPerUsdc string           `json:"tokens_per_usdc" binding:"required"`
	Perks         []VipPerkRequest `json:"perks" binding:"required"`
}

// ReplaceSystem 整体替换奖励系统（仅owner）
func (h *RewardHandler) ReplaceSystem(c *gin.Context) {
	var req ReplaceSystemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.BadRequest(c, err.Error())
		return
	}

	perks := make([]*reward.VipPerk, 0, len(req.Perks))
	for _, p := range req.Perks {
		perks = append(perks, &reward.VipPerk{
			Level:          p.Level,
			Price:          p.Price,
			FeeDiscountBps: p.FeeDiscountBps,
		})
	}
	sys := &reward.RewardSystem{
		RewardToken:   req.RewardToken,
		TokensPerUsdc: req.TokensPerUsdc,
	}

	if err := h.service.Replace(GetAddress(c), sys, perks); err != nil {
		httputil.HandleError(c, err)
		return
	}
	httputil.Success(c, nil)
}

// LevelUpRequest VIP升级请求
type LevelUpRequest struct {
	TokensPaid string `json:"tokens_paid" binding:"required"`
}

// LevelUp 花费奖励代币升级VIP
func (h *RewardHandler) LevelUp(c *gin.Context) {
	var req LevelUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.BadRequest(c, err.Error())
		return
	}

	paid, err := decimal.NewFromString(req.TokensPaid)
	if err != nil {
		httputil.BadRequest(c, "invalid tokens_paid value")
		return
	}

	level, err := h.service.LevelUp(GetAddress(c), paid)
	if err != nil {
		httputil.HandleError(c, err)
		return
	}
	httputil.Success(c, gin.H{"vip_level": level})
}
