package routers

import (
	"strconv"

	"nft-marketplace/internal/collection"
	"nft-marketplace/internal/sale"
	"nft-marketplace/pkg/httputil"

	"github.com/gin-gonic/gin"
)

// CollectionHandler 集合处理器
type CollectionHandler struct {
	service collection.Service
	saleSvc sale.Service
}

// NewCollectionHandler 创建集合处理器
func NewCollectionHandler(service collection.Service, saleSvc sale.Service) *CollectionHandler {
	return &CollectionHandler{service: service, saleSvc: saleSvc}
}

// RegisterCollectionRequest 集合注册请求
type RegisterCollectionRequest struct {
	Address      string `json:"address" binding:"required"`
	CodeID       uint64 `json:"code_id" binding:"required"`
	ContractType string `json:"contract_type" binding:"required"`
}

// RegisterCollection 注册集合
func (h *CollectionHandler) RegisterCollection(c *gin.Context) {
	var req RegisterCollectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.BadRequest(c, err.Error())
		return
	}

	info, err := h.service.Register(GetAddress(c), req.Address, req.CodeID, req.ContractType)
	if err != nil {
		httputil.HandleError(c, err)
		return
	}
	httputil.Success(c, info)
}

// ListCollections 列出全部集合
func (h *CollectionHandler) ListCollections(c *gin.Context) {
	list, err := h.service.ListCollections()
	if err != nil {
		httputil.HandleError(c, err)
		return
	}
	httputil.Success(c, list)
}

// ListDenomStats 列出集合的全部计价单位统计
func (h *CollectionHandler) ListDenomStats(c *gin.Context) {
	list, err := h.service.ListDenomStats(c.Param("address"))
	if err != nil {
		httputil.HandleError(c, err)
		return
	}
	httputil.Success(c, list)
}

// GetDenomStats 查询集合的单个计价单位统计
func (h *CollectionHandler) GetDenomStats(c *gin.Context) {
	cds, err := h.service.GetDenomStats(c.Param("address"), c.Param("denom"))
	if err != nil {
		httputil.HandleError(c, err)
		return
	}
	httputil.Success(c, cds)
}

// ListSales 分页列出集合的在售挂单
func (h *CollectionHandler) ListSales(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", "20"))

	sales, total, err := h.saleSvc.ListByCollection(c.Param("address"), page, size)
	if err != nil {
		httputil.HandleError(c, err)
		return
	}
	httputil.SuccessWithPage(c, total, page, size, sales)
}

// GetSale 查询单个在售挂单
func (h *CollectionHandler) GetSale(c *gin.Context) {
	s, err := h.saleSvc.Get(c.Param("address"), c.Param("token_id"))
	if err != nil {
		httputil.HandleError(c, err)
		return
	}
	httputil.Success(c, s)
}
