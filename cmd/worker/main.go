package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"nft-marketplace/internal/activity"
	"nft-marketplace/internal/bank"
	"nft-marketplace/internal/collection"
	"nft-marketplace/internal/market"
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
)

const payoutBatchSize = 100

func main() {
	// 加载配置
	cfg := config.Load()

	// 初始化日志
	logger.Init(cfg.App.Env)
	defer logger.Sync()

	logger.Info("Starting worker...")

	// 初始化数据库
	if err := database.Init(cfg.Database); err != nil {
		logger.Fatalf("Failed to initialize database: %v", err)
	}
	defer database.Close()

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

	// 创建上下文
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 启动后台任务
	go runExpirySweeper(ctx, cfg, services.market, services.sale)
	go runPayoutDispatcher(ctx, cfg, services.reward)

	// 等待信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down worker...")
	cancel()

	// 等待任务完成
	time.Sleep(5 * time.Second)
	logger.Info("Worker exited")
}

type workerServices struct {
	market market.Service
	sale   sale.Service
	reward reward.Service
}

func initServices(cfg *config.Config) (*workerServices, error) {
	db := database.GetDB()
	txm := database.NewTransactor(db)

	nftClient, err := evm.NewClient(cfg.Chain.RPCURL, cfg.Chain.ChainID)
	if err != nil {
		return nil, err
	}
	priceClient := priceapi.NewClient(cfg.Market.PriceOracleURL)

	marketRepo := market.NewRepository(db)
	collectionRepo := collection.NewRepository(db)
	saleRepo := sale.NewRepository(db)
	statsRepo := stats.NewRepository(db)
	rewardRepo := reward.NewRepository(db)
	profileRepo := profile.NewRepository(db)
	bankRepo := bank.NewRepository(db)
	activityRepo := activity.NewRepository(db)

	statsSvc := stats.NewService(statsRepo)
	profileSvc := profile.NewService(profileRepo)
	marketSvc := market.NewService(marketRepo, statsSvc, bankRepo, priceClient, txm)
	collectionSvc := collection.NewService(collectionRepo, marketSvc, statsSvc, nftClient, txm)
	rewardSvc := reward.NewService(rewardRepo, marketSvc, profileSvc, activityRepo, txm)
	saleSvc := sale.NewService(saleRepo, marketSvc, collectionSvc, statsSvc, bankRepo,
		rewardSvc, profileSvc, activityRepo, nftClient, priceClient, txm)

	return &workerServices{
		market: marketSvc,
		sale:   saleSvc,
		reward: rewardSvc,
	}, nil
}

// runExpirySweeper 周期性清理过期挂单。Redis锁保证多实例互斥，
// 每个tick对每个准入计价单位清理一批。
func runExpirySweeper(ctx context.Context, cfg *config.Config, marketSvc market.Service, saleSvc sale.Service) {
	ticker := time.NewTicker(cfg.Worker.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			lock := cache.NewLock("expiry-sweep", cfg.Worker.SweepInterval)
			acquired, err := lock.Acquire(ctx)
			if err != nil {
				logger.Errorf("Failed to acquire sweep lock: %v", err)
				continue
			}
			if !acquired {
				continue
			}

			sweepOnce(marketSvc, saleSvc)

			if err := lock.Release(ctx); err != nil {
				logger.Errorf("Failed to release sweep lock: %v", err)
			}
		}
	}
}

func sweepOnce(marketSvc market.Service, saleSvc sale.Service) {
	marketCfg, err := marketSvc.GetConfig()
	if err != nil {
		logger.Errorf("Failed to load market config: %v", err)
		return
	}
	denoms, err := marketCfg.DenomList()
	if err != nil {
		logger.Errorf("Failed to parse accepted denoms: %v", err)
		return
	}

	for _, denom := range denoms {
		if _, err := saleSvc.SweepExpired(denom); err != nil {
			logger.Errorf("Failed to sweep expired sales for %s: %v", denom, err)
		}
	}
}

// runPayoutDispatcher 周期性派发待处理的奖励代币转账指令
func runPayoutDispatcher(ctx context.Context, cfg *config.Config, rewardSvc reward.Service) {
	ticker := time.NewTicker(cfg.Worker.PayoutInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			lock := cache.NewLock("reward-payouts", cfg.Worker.PayoutInterval)
			acquired, err := lock.Acquire(ctx)
			if err != nil {
				logger.Errorf("Failed to acquire payout lock: %v", err)
				continue
			}
			if !acquired {
				continue
			}

			if _, err := rewardSvc.DispatchPayouts(payoutBatchSize); err != nil {
				logger.Errorf("Failed to dispatch reward payouts: %v", err)
			}

			if err := lock.Release(ctx); err != nil {
				logger.Errorf("Failed to release payout lock: %v", err)
			}
		}
	}
}
