package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"nft-marketplace/api/routers"
	"nft-marketplace/internal/activity"
	"nft-marketplace/internal/bank"
	"nft-marketplace/internal/collection"
	"nft-marketplace/internal/market"
	"nft-marketplace/internal/offer"
	"nft-marketplace/internal/oracle/evm"
	"nft-marketplace/internal/oracle/priceapi"
	"nft-marketplace/internal/profile"
	"nft-marketplace/internal/reward"
	"nft-marketplace/internal/sale"
	"nft-marketplace/internal/stats"
	"nft-marketplace/pkg/cache"
	"nft-marketplace/pkg/config"
	"nft-marketplace/pkg/database"
	"nft-marketplace/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

func main() {
	// 加载配置
	cfg := config.Load()

	// 初始化日志
	logger.Init(cfg.App.Env)
	defer logger.Sync()

	logger.Infof("Starting %s v%s", cfg.App.Name, cfg.App.Version)

	// 初始化数据库
	if err := database.Init(cfg.Database); err != nil {
		logger.Fatalf("Failed to initialize database: %v", err)
	}
	defer database.Close()

	// 自动迁移
	if err := autoMigrate(); err != nil {
		logger.Fatalf("Failed to migrate database: %v", err)
	}

	// 初始化Redis
	if err := cache.Init(cfg.Redis); err != nil {
		logger.Fatalf("Failed to initialize Redis: %v", err)
	}
	defer cache.Close()

	// 初始化服务
	services, err := initServices(cfg)
	if err != nil {
		logger.Fatalf("Failed to initialize services: %v", err)
	}

	// 首次启动写入市场配置与奖励系统
	if err := bootstrap(cfg, services); err != nil {
		logger.Fatalf("Failed to bootstrap marketplace: %v", err)
	}

	// 设置JWT密钥
	routers.SetJWTSecret(cfg.JWT.Secret)

	// 初始化Gin
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	httpRouter := routers.SetupRouter(&routers.Services{
		Market:     services.market,
		Collection: services.collection,
		Sale:       services.sale,
		Offer:      services.offer,
		Reward:     services.reward,
		Stats:      services.stats,
		Profile:    services.profile,
		Bank:       services.bank,
		Activity:   services.activity,
	})
	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      httpRouter,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	// 启动HTTP服务器
	go func() {
		logger.Infof("HTTP server listening on port %d", cfg.App.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Failed to start HTTP server: %v", err)
		}
	}()

	// 优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Errorf("HTTP server forced to shutdown: %v", err)
	}

	logger.Info("Server exited")
}

func autoMigrate() error {
	return database.AutoMigrate(
		// Market
		&market.Config{},
		// Collection
		&collection.CollectionInfo{},
		&collection.CollectionDenomStats{},
		// Sale / Offer
		&sale.Sale{},
		&offer.Offer{},
		// Stats
		&stats.DenomStats{},
		&stats.GeneralStats{},
		// Reward
		&reward.RewardSystem{},
		&reward.VipPerk{},
		&reward.Payout{},
		// Profile / Bank / Activity
		&profile.Profile{},
		&bank.Balance{},
		&activity.Activity{},
	)
}

type services struct {
	market     market.Service
	collection collection.Service
	sale       sale.Service
	offer      offer.Service
	reward     reward.Service
	stats      stats.Service
	profile    profile.Service
	bank       bank.Repository
	activity   activity.Repository
}

func initServices(cfg *config.Config) (*services, error) {
	db := database.GetDB()
	txm := database.NewTransactor(db)

	// 外部协作方
	nftClient, err := evm.NewClient(cfg.Chain.RPCURL, cfg.Chain.ChainID)
	if err != nil {
		return nil, err
	}
	priceClient := priceapi.NewClient(cfg.Market.PriceOracleURL)

	// Repositories
	marketRepo := market.NewRepository(db)
	collectionRepo := collection.NewRepository(db)
	saleRepo := sale.NewRepository(db)
	offerRepo := offer.NewRepository(db)
	statsRepo := stats.NewRepository(db)
	rewardRepo := reward.NewRepository(db)
	profileRepo := profile.NewRepository(db)
	bankRepo := bank.NewRepository(db)
	activityRepo := activity.NewRepository(db)

	// Services
	statsSvc := stats.NewService(statsRepo)
	profileSvc := profile.NewService(profileRepo)
	marketSvc := market.NewService(marketRepo, statsSvc, bankRepo, priceClient, txm)
	collectionSvc := collection.NewService(collectionRepo, marketSvc, statsSvc, nftClient, txm)
	rewardSvc := reward.NewService(rewardRepo, marketSvc, profileSvc, activityRepo, txm)
	saleSvc := sale.NewService(saleRepo, marketSvc, collectionSvc, statsSvc, bankRepo,
		rewardSvc, profileSvc, activityRepo, nftClient, priceClient, txm)
	offerSvc := offer.NewService(offerRepo, marketSvc, collectionSvc, saleSvc, activityRepo, nftClient, txm)

	return &services{
		market:     marketSvc,
		collection: collectionSvc,
		sale:       saleSvc,
		offer:      offerSvc,
		reward:     rewardSvc,
		stats:      statsSvc,
		profile:    profileSvc,
		bank:       bankRepo,
		activity:   activityRepo,
	}, nil
}

// bootstrap 幂等写入市场配置与奖励系统，已初始化时不做任何事
func bootstrap(cfg *config.Config, svc *services) error {
	feePct, err := decimal.NewFromString(cfg.Market.FeePct)
	if err != nil {
		return fmt.Errorf("invalid MARKET_FEE_PCT: %w", err)
	}
	listingFee, err := decimal.NewFromString(cfg.Market.ListingFeeValue)
	if err != nil {
		return fmt.Errorf("invalid MARKET_LISTING_FEE_VALUE: %w", err)
	}
	types, err := parseContractTypes(cfg.Market.AcceptedContractTypes)
	if err != nil {
		return err
	}

	if err := svc.market.Bootstrap(&market.BootstrapParams{
		Owner:                 cfg.Market.Owner,
		Operator:              cfg.Market.Operator,
		FeePct:                feePct,
		AcceptedDenoms:        cfg.Market.AcceptedDenoms,
		ListingFeeValue:       listingFee,
		ListingFeeDenom:       cfg.Market.ListingFeeDenom,
		PriceOracleAddress:    cfg.Market.PriceOracleURL,
		AcceptedContractTypes: types,
	}); err != nil {
		return err
	}

	return svc.reward.Bootstrap(
		&reward.RewardSystem{
			RewardToken:   cfg.Reward.TokenAddress,
			TokensPerUsdc: cfg.Reward.TokensPerUSDC,
		},
		[]*reward.VipPerk{
			{Level: 1, Price: cfg.Reward.Level1Price},
			{Level: 2, Price: cfg.Reward.Level2Price},
			{Level: 3, Price: cfg.Reward.Level3Price},
		},
	)
}

// parseContractTypes 解析形如 "1:erc721" 的合约类型配置项
func parseContractTypes(raw []string) ([]market.ContractType, error) {
	types := make([]market.ContractType, 0, len(raw))
	for _, item := range raw {
		parts := strings.SplitN(item, ":", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid contract type entry %q, want code_id:type", item)
		}
		codeID, err := strconv.ParseUint(parts[0], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid code id in contract type entry %q", item)
		}
		types = append(types, market.ContractType{CodeID: codeID, ContractType: parts[1]})
	}
	return types, nil
}
