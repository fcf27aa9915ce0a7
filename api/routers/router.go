package routers

import (
	"net/http"
	"time"

	"nft-marketplace/internal/activity"
	"nft-marketplace/internal/bank"
	"nft-marketplace/internal/collection"
	"nft-marketplace/internal/market"
	"nft-marketplace/internal/offer"
	"nft-marketplace/internal/profile"
	"nft-marketplace/internal/reward"
	"nft-marketplace/internal/sale"
	"nft-marketplace/internal/stats"

	"github.com/gin-gonic/gin"
)

// Services 服务集合
type Services struct {
	Market     market.Service
	Collection collection.Service
	Sale       sale.Service
	Offer      offer.Service
	Reward     reward.Service
	Stats      stats.Service
	Profile    profile.Service
	Bank       bank.Repository
	Activity   activity.Repository
}

// SetupRouter 设置路由
func SetupRouter(svc *Services) *gin.Engine {
	router := gin.New()
	router.Use(LoggerMiddleware())
	router.Use(RecoveryMiddleware())
	router.Use(CORSMiddleware())

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	// API v1
	apiV1 := router.Group("/api/v1")
	{
		// Public queries
		marketHandler := NewMarketHandler(svc.Market)
		statsHandler := NewStatsHandler(svc.Stats)
		collectionHandler := NewCollectionHandler(svc.Collection, svc.Sale)
		offerHandler := NewOfferHandler(svc.Offer)
		rewardHandler := NewRewardHandler(svc.Reward)
		accountHandler := NewAccountHandler(svc.Profile, svc.Bank, svc.Activity, svc.Offer)

		apiV1.GET("/market/config", marketHandler.GetConfig)
		apiV1.GET("/stats/general", statsHandler.GetGeneralStats)
		apiV1.GET("/stats/denoms", statsHandler.ListDenomStats)
		apiV1.GET("/stats/denoms/:denom", statsHandler.GetDenomStats)
		apiV1.GET("/collections", collectionHandler.ListCollections)
		apiV1.GET("/collections/:address/stats", collectionHandler.ListDenomStats)
		apiV1.GET("/collections/:address/stats/:denom", collectionHandler.GetDenomStats)
		apiV1.GET("/collections/:address/sales", collectionHandler.ListSales)
		apiV1.GET("/collections/:address/sales/:token_id", collectionHandler.GetSale)
		apiV1.GET("/collections/:address/offers/:token_id", offerHandler.ListByToken)
		apiV1.GET("/reward/system", rewardHandler.GetSystem)
		apiV1.GET("/reward/perks", rewardHandler.ListPerks)
		apiV1.GET("/activities", accountHandler.ListActivities)

		// Protected routes
		protected := apiV1.Group("")
		protected.Use(AuthMiddleware())
		{
			marketHandler.Register(protected)

			protected.POST("/collections", collectionHandler.RegisterCollection)

			saleHandler := NewSaleHandler(svc.Sale)
			saleHandler.Register(protected)

			offerHandler.Register(protected)
			rewardHandler.Register(protected)
			accountHandler.Register(protected)
		}
	}

	return router
}
