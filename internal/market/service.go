package market

import (
	"encoding/json"

	"nft-marketplace/internal/bank"
	"nft-marketplace/internal/oracle"
	"nft-marketplace/internal/stats"
	"nft-marketplace/pkg/apperr"
	"nft-marketplace/pkg/database"
	"nft-marketplace/pkg/logger"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// 手续费率的开区间边界。等于边界值本身也被拒绝，
// 即接受的范围是 1% < fee_pct < 10%。
var (
	feePctLowerBound = decimal.RequireFromString("0.01")
	feePctUpperBound = decimal.RequireFromString("0.1")
)

// Service 市场配置与管理服务接口
type Service interface {
	Bootstrap(p *BootstrapParams) error
	GetConfig() (*Config, error)
	RequireEnabled() (*Config, error)
	ResolveActor(a Actor) (string, error)

	UpdateConfig(caller string, upd *ConfigUpdate) (*Config, error)
	AddDenom(caller, denom string) error
	RemoveDenom(caller, denom string) error
	SetContractTypes(caller string, types []ContractType) error
	ClaimFees(caller string) ([]*FeeClaim, error)
}

// BootstrapParams 实例化参数
type BootstrapParams struct {
	Owner                 string
	Operator              string
	FeePct                decimal.Decimal
	AcceptedDenoms        []string
	ListingFeeValue       decimal.Decimal
	ListingFeeDenom       string
	PriceOracleAddress    string
	AcceptedContractTypes []ContractType
}

// ConfigUpdate 配置变更，nil字段表示不变
type ConfigUpdate struct {
	Enabled         *bool
	Owner           *string
	FeePct          *decimal.Decimal
	ListingFeeValue *decimal.Decimal
	ListingFeeDenom *string
}

// FeeClaim 单个计价单位的手续费领取结果
type FeeClaim struct {
	Denom  string          `json:"denom"`
	Amount decimal.Decimal `json:"amount"`
}

type service struct {
	repo     Repository
	statsSvc stats.Service
	bankRepo bank.Repository
	price    oracle.PriceSource
	txm      database.Transactor
}

// NewService 创建市场服务
func NewService(
	repo Repository,
	statsSvc stats.Service,
	bankRepo bank.Repository,
	price oracle.PriceSource,
	txm database.Transactor,
) Service {
	return &service{
		repo:     repo,
		statsSvc: statsSvc,
		bankRepo: bankRepo,
		price:    price,
		txm:      txm,
	}
}

// ValidateFeePct 校验手续费率落在开区间(1%, 10%)内
func ValidateFeePct(p decimal.Decimal) error {
	if p.LessThanOrEqual(feePctLowerBound) || p.GreaterThanOrEqual(feePctUpperBound) {
		return apperr.Invalid("fee_pct_out_of_bounds", "fee_pct must satisfy 0.01 < fee_pct < 0.1")
	}
	return nil
}

// Bootstrap 首次启动写入配置与各统计单行；已初始化则不做任何事
func (s *service) Bootstrap(p *BootstrapParams) error {
	existing, err := s.repo.Get()
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}

	if p.Owner == "" || p.Operator == "" {
		return apperr.Invalid("missing_address", "owner and operator addresses are required")
	}
	if len(p.AcceptedDenoms) == 0 {
		return apperr.Invalid("no_accepted_denoms", "at least one accepted denom is required")
	}
	if err := ValidateFeePct(p.FeePct); err != nil {
		return err
	}

	feeDenomAccepted := false
	for _, d := range p.AcceptedDenoms {
		if d == p.ListingFeeDenom {
			feeDenomAccepted = true
			break
		}
	}
	if !feeDenomAccepted {
		return apperr.Invalid("listing_fee_denom_not_accepted", "listing fee denom must be an accepted denom")
	}

	// 实例化时用价格预言机对挂单费计价做一次合理性检查
	usdc, err := s.price.UsdcValue(p.ListingFeeValue, p.ListingFeeDenom)
	if err != nil {
		return apperr.External(err, "price_oracle_failed", "price oracle query failed")
	}
	if !usdc.IsPositive() {
		return apperr.External(nil, "listing_fee_unpriceable", "price oracle returned no value for the listing fee denom")
	}

	denoms, err := json.Marshal(p.AcceptedDenoms)
	if err != nil {
		return err
	}
	types, err := json.Marshal(p.AcceptedContractTypes)
	if err != nil {
		return err
	}

	return s.txm.Transaction(func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).Create(&Config{
			Enabled:               true,
			Owner:                 p.Owner,
			Operator:              p.Operator,
			FeePct:                p.FeePct.String(),
			AcceptedDenoms:        string(denoms),
			ListingFeeValue:       p.ListingFeeValue.String(),
			ListingFeeDenom:       p.ListingFeeDenom,
			PriceOracleAddress:    p.PriceOracleAddress,
			AcceptedContractTypes: string(types),
		}); err != nil {
			return err
		}
		for _, d := range p.AcceptedDenoms {
			if err := s.statsSvc.EnsureDenom(tx, d); err != nil {
				return err
			}
		}
		return s.statsSvc.EnsureGeneralStats(tx)
	})
}

// GetConfig 读取配置
func (s *service) GetConfig() (*Config, error) {
	cfg, err := s.repo.Get()
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		return nil, apperr.NotFound("config_not_found", "marketplace is not initialized")
	}
	return cfg, nil
}

// RequireEnabled 读取配置并要求市场处于启用状态
func (s *service) RequireEnabled() (*Config, error) {
	cfg, err := s.GetConfig()
	if err != nil {
		return nil, err
	}
	if !cfg.Enabled {
		return nil, apperr.Conflict("marketplace_disabled", "marketplace is disabled")
	}
	return cfg, nil
}

// ResolveActor 解析实际当事人地址
func (s *service) ResolveActor(a Actor) (string, error) {
	cfg, err := s.GetConfig()
	if err != nil {
		return "", err
	}
	return resolveActor(a, cfg.Operator)
}

func (s *service) requireOwner(caller string) (*Config, error) {
	cfg, err := s.GetConfig()
	if err != nil {
		return nil, err
	}
	if caller != cfg.Owner {
		return nil, apperr.Unauthorized("not_owner", "only the marketplace owner may perform this action")
	}
	return cfg, nil
}

// UpdateConfig 变更配置（仅owner）
func (s *service) UpdateConfig(caller string, upd *ConfigUpdate) (*Config, error) {
	cfg, err := s.requireOwner(caller)
	if err != nil {
		return nil, err
	}

	if upd.Enabled != nil {
		cfg.Enabled = *upd.Enabled
	}
	if upd.Owner != nil {
		if *upd.Owner == "" {
			return nil, apperr.Invalid("missing_address", "new owner address must not be empty")
		}
		cfg.Owner = *upd.Owner
	}
	if upd.FeePct != nil {
		if err := ValidateFeePct(*upd.FeePct); err != nil {
			return nil, err
		}
		cfg.FeePct = upd.FeePct.String()
	}
	if upd.ListingFeeValue != nil {
		cfg.ListingFeeValue = upd.ListingFeeValue.String()
	}
	if upd.ListingFeeDenom != nil {
		if !cfg.DenomAccepted(*upd.ListingFeeDenom) {
			return nil, apperr.Invalid("listing_fee_denom_not_accepted", "listing fee denom must be an accepted denom")
		}
		cfg.ListingFeeDenom = *upd.ListingFeeDenom
	}

	if err := s.repo.Save(cfg); err != nil {
		return nil, err
	}
	logger.Infow("market config updated", "owner", cfg.Owner, "enabled", cfg.Enabled, "fee_pct", cfg.FeePct)
	return cfg, nil
}

// AddDenom 准入新的计价单位并建零值统计
func (s *service) AddDenom(caller, denom string) error {
	cfg, err := s.requireOwner(caller)
	if err != nil {
		return err
	}
	if denom == "" {
		return apperr.Invalid("invalid_denom", "denom must not be empty")
	}
	if cfg.DenomAccepted(denom) {
		return apperr.Conflict("denom_already_accepted", "denom is already accepted")
	}

	denoms, err := cfg.DenomList()
	if err != nil {
		return err
	}
	raw, err := json.Marshal(append(denoms, denom))
	if err != nil {
		return err
	}
	cfg.AcceptedDenoms = string(raw)

	return s.txm.Transaction(func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).Save(cfg); err != nil {
			return err
		}
		return s.statsSvc.EnsureDenom(tx, denom)
	})
}

// RemoveDenom 移除计价单位。已有的在售挂单与报价不受影响，
// 仅阻止后续新活动。
func (s *service) RemoveDenom(caller, denom string) error {
	cfg, err := s.requireOwner(caller)
	if err != nil {
		return err
	}
	if !cfg.DenomAccepted(denom) {
		return apperr.NotFound("denom_not_accepted", "denom is not accepted")
	}
	if denom == cfg.ListingFeeDenom {
		return apperr.Invalid("listing_fee_denom_in_use", "cannot remove the listing fee denom")
	}

	denoms, err := cfg.DenomList()
	if err != nil {
		return err
	}
	if len(denoms) == 1 {
		return apperr.Invalid("no_accepted_denoms", "at least one accepted denom must remain")
	}

	remaining := make([]string, 0, len(denoms)-1)
	for _, d := range denoms {
		if d != denom {
			remaining = append(remaining, d)
		}
	}
	raw, err := json.Marshal(remaining)
	if err != nil {
		return err
	}
	cfg.AcceptedDenoms = string(raw)
	return s.repo.Save(cfg)
}

// SetContractTypes 替换准入的NFT合约类型白名单
func (s *service) SetContractTypes(caller string, types []ContractType) error {
	cfg, err := s.requireOwner(caller)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(types)
	if err != nil {
		return err
	}
	cfg.AcceptedContractTypes = string(raw)
	return s.repo.Save(cfg)
}

// ClaimFees 按计价单位聚合非零可领取手续费，计入owner余额并返回明细。
// 余额为零的计价单位跳过；紧接的二次领取得到空结果。
func (s *service) ClaimFees(caller string) ([]*FeeClaim, error) {
	cfg, err := s.requireOwner(caller)
	if err != nil {
		return nil, err
	}
	denoms, err := cfg.DenomList()
	if err != nil {
		return nil, err
	}

	var claims []*FeeClaim
	err = s.txm.Transaction(func(tx *gorm.DB) error {
		for _, denom := range denoms {
			amount, err := s.statsSvc.Claim(tx, denom)
			if err != nil {
				return err
			}
			if amount.IsZero() {
				continue
			}
			if err := s.bankRepo.WithTx(tx).Credit(cfg.Owner, denom, amount); err != nil {
				return err
			}
			claims = append(claims, &FeeClaim{Denom: denom, Amount: amount})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, c := range claims {
		logger.Infow("marketplace fees claimed", "denom", c.Denom, "amount", c.Amount.String())
	}
	return claims, nil
}
