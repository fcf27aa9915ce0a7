package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config 应用配置
type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Chain    ChainConfig
	Market   MarketConfig
	Reward   RewardConfig
	Worker   WorkerConfig
}

// AppConfig 应用配置
type AppConfig struct {
	Name    string
	Version string
	Port    int
	Env     string // development, staging, production
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	DBName       string
	SSLMode      string
	MaxIdleConns int
	MaxOpenConns int
}

// RedisConfig Redis配置
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// JWTConfig JWT配置
type JWTConfig struct {
	Secret     string
	ExpireTime time.Duration
}

// ChainConfig NFT所有权预言机所在链配置
type ChainConfig struct {
	RPCURL  string
	ChainID int64
}

// MarketConfig 市场账本初始化参数（仅首次启动写入，之后以数据库为准）
type MarketConfig struct {
	Owner                 string
	Operator              string
	FeePct                string
	AcceptedDenoms        []string
	ListingFeeDenom       string
	ListingFeeValue       string
	AcceptedContractTypes []string // 形如 "1:erc721"
	PriceOracleURL        string
}

// RewardConfig 奖励系统初始化参数
type RewardConfig struct {
	TokenAddress  string
	TokensPerUSDC string
	Level1Price   string
	Level2Price   string
	Level3Price   string
}

// WorkerConfig 后台任务配置
type WorkerConfig struct {
	SweepInterval  time.Duration
	PayoutInterval time.Duration
}

// Load 加载配置
func Load() *Config {
	return &Config{
		App: AppConfig{
			Name:    getEnv("APP_NAME", "nft-marketplace"),
			Version: getEnv("APP_VERSION", "1.0.0"),
			Port:    getEnvInt("APP_PORT", 8080),
			Env:     getEnv("APP_ENV", "development"),
		},
		Database: DatabaseConfig{
			Host:         getEnv("DB_HOST", "localhost"),
			Port:         getEnvInt("DB_PORT", 5432),
			User:         getEnv("DB_USER", "postgres"),
			Password:     getEnv("DB_PASSWORD", "postgres"),
			DBName:       getEnv("DB_NAME", "nft_marketplace"),
			SSLMode:      getEnv("DB_SSL_MODE", "disable"),
			MaxIdleConns: getEnvInt("DB_MAX_IDLE_CONNS", 10),
			MaxOpenConns: getEnvInt("DB_MAX_OPEN_CONNS", 100),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnvInt("REDIS_PORT", 6379),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		JWT: JWTConfig{
			Secret:     getEnv("JWT_SECRET", "your-secret-key-change-in-production"),
			ExpireTime: time.Duration(getEnvInt("JWT_EXPIRE_HOURS", 24)) * time.Hour,
		},
		Chain: ChainConfig{
			RPCURL:  getEnv("CHAIN_RPC_URL", "http://localhost:8545"),
			ChainID: int64(getEnvInt("CHAIN_ID", 1)),
		},
		Market: MarketConfig{
			Owner:                 getEnv("MARKET_OWNER", ""),
			Operator:              getEnv("MARKET_OPERATOR", ""),
			FeePct:                getEnv("MARKET_FEE_PCT", "0.02"),
			AcceptedDenoms:        getEnvList("MARKET_ACCEPTED_DENOMS", "usdc"),
			ListingFeeDenom:       getEnv("MARKET_LISTING_FEE_DENOM", "usdc"),
			ListingFeeValue:       getEnv("MARKET_LISTING_FEE_VALUE", "10000"),
			AcceptedContractTypes: getEnvList("MARKET_ACCEPTED_CONTRACT_TYPES", "1:erc721"),
			PriceOracleURL:        getEnv("PRICE_ORACLE_URL", "http://localhost:9090"),
		},
		Reward: RewardConfig{
			TokenAddress:  getEnv("REWARD_TOKEN_ADDRESS", ""),
			TokensPerUSDC: getEnv("REWARD_TOKENS_PER_USDC", "1"),
			Level1Price:   getEnv("REWARD_LEVEL1_PRICE", "1000"),
			Level2Price:   getEnv("REWARD_LEVEL2_PRICE", "10000"),
			Level3Price:   getEnv("REWARD_LEVEL3_PRICE", "100000"),
		},
		Worker: WorkerConfig{
			SweepInterval:  time.Duration(getEnvInt("WORKER_SWEEP_INTERVAL_SECONDS", 30)) * time.Second,
			PayoutInterval: time.Duration(getEnvInt("WORKER_PAYOUT_INTERVAL_SECONDS", 60)) * time.Second,
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvList(key, defaultValue string) []string {
	raw := getEnv(key, defaultValue)
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
