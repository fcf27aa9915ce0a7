package routers

import (
	"strconv"

	"nft-marketplace/internal/activity"
	"nft-marketplace/internal/bank"
	"nft-marketplace/internal/offer"
	"nft-marketplace/internal/profile"
	"nft-marketplace/pkg/httputil"

	"github.com/gin-gonic/gin"
)

// AccountHandler 账户侧查询处理器：档案、余额、报价、事件历史
type AccountHandler struct {
	profileSvc   profile.Service
	bankRepo     bank.Repository
	activityRepo activity.Repository
	offerSvc     offer.Service
}

// NewAccountHandler 创建账户处理器
func NewAccountHandler(
	profileSvc profile.Service,
	bankRepo bank.Repository,
	activityRepo activity.Repository,
	offerSvc offer.Service,
) *AccountHandler {
	return &AccountHandler{
		profileSvc:   profileSvc,
		bankRepo:     bankRepo,
		activityRepo: activityRepo,
		offerSvc:     offerSvc,
	}
}

// Register 注册路由
func (h *AccountHandler) Register(r *gin.RouterGroup) {
	r.GET("/profile", h.GetProfile)
	r.GET("/balances", h.ListBalances)
	r.GET("/my/offers", h.ListMyOffers)
}

// GetProfile 查询当前地址的档案
func (h *AccountHandler) GetProfile(c *gin.Context) {
	p, err := h.profileSvc.Get(GetAddress(c))
	if err != nil {
		httputil.HandleError(c, err)
		return
	}
	httputil.Success(c, p)
}

// ListBalances 列出当前地址的应收余额
func (h *AccountHandler) ListBalances(c *gin.Context) {
	balances, err := h.bankRepo.ListBalances(GetAddress(c))
	if err != nil {
		httputil.HandleError(c, err)
		return
	}
	httputil.Success(c, balances)
}

// ListMyOffers 分页列出当前地址发出的报价
func (h *AccountHandler) ListMyOffers(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", "20"))

	offers, total, err := h.offerSvc.ListByOfferer(GetAddress(c), page, size)
	if err != nil {
		httputil.HandleError(c, err)
		return
	}
	httputil.SuccessWithPage(c, total, page, size, offers)
}

// ListActivities 按条件分页查询市场事件历史
func (h *AccountHandler) ListActivities(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", "20"))

	filter := &activity.ListFilter{
		Collection: c.Query("collection"),
		TokenID:    c.Query("token_id"),
		Address:    c.Query("address"),
		Type:       c.Query("type"),
		Page:       page,
		PageSize:   size,
	}
	activities, total, err := h.activityRepo.List(filter)
	if err != nil {
		httputil.HandleError(c, err)
		return
	}
	httputil.SuccessWithPage(c, total, page, size, activities)
}
