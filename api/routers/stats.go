package routers

import (
	"time"

	"nft-marketplace/internal/stats"
	"nft-marketplace/pkg/cache"
	"nft-marketplace/pkg/httputil"

	"github.com/gin-gonic/gin"
)

const generalStatsCacheKey = "stats:general"

// StatsHandler 统计查询处理器
type StatsHandler struct {
	service stats.Service
}

// NewStatsHandler 创建统计查询处理器
func NewStatsHandler(service stats.Service) *StatsHandler {
	return &StatsHandler{service: service}
}

// GetGeneralStats 查询全局统计，带短时Redis缓存
func (h *StatsHandler) GetGeneralStats(c *gin.Context) {
	var cached stats.GeneralStats
	if err := cache.Get(c.Request.Context(), generalStatsCacheKey, &cached); err == nil {
		httputil.Success(c, &cached)
		return
	}

	gs, err := h.service.GetGeneralStats()
	if err != nil {
		httputil.HandleError(c, err)
		return
	}
	_ = cache.Set(c.Request.Context(), generalStatsCacheKey, gs, 10*time.Second)
	httputil.Success(c, gs)
}

// ListDenomStats 列出全部计价单位统计
func (h *StatsHandler) ListDenomStats(c *gin.Context) {
	list, err := h.service.ListDenomStats()
	if err != nil {
		httputil.HandleError(c, err)
		return
	}
	httputil.Success(c, list)
}

// GetDenomStats 查询单个计价单位统计
func (h *StatsHandler) GetDenomStats(c *gin.Context) {
	ds, err := h.service.GetDenomStats(c.Param("denom"))
	if err != nil {
		httputil.HandleError(c, err)
		return
	}
	httputil.Success(c, ds)
}
