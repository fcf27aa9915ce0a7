package reward

import (
	"nft-marketplace/internal/activity"
	"nft-marketplace/internal/market"
	"nft-marketplace/internal/profile"
	"nft-marketplace/pkg/apperr"
	"nft-marketplace/pkg/database"
	"nft-marketplace/pkg/logger"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Service 奖励与VIP引擎接口。成交量按USDC等值换算为奖励代币，
// 参与者花费奖励代币逐级解锁VIP权益。
type Service interface {
	Bootstrap(sys *RewardSystem, perks []*VipPerk) error
	Replace(caller string, sys *RewardSystem, perks []*VipPerk) error
	DistributeTrade(tx *gorm.DB, buyer, seller string, usdcVolume decimal.Decimal) error
	LevelUp(caller string, tokensPaid decimal.Decimal) (profile.VipLevel, error)
	DispatchPayouts(limit int) (int, error)

	GetSystem() (*RewardSystem, error)
	ListPerks() ([]*VipPerk, error)
}

type service struct {
	repo         Repository
	marketSvc    market.Service
	profileSvc   profile.Service
	activityRepo activity.Repository
	txm          database.Transactor
}

// NewService 创建奖励服务
func NewService(
	repo Repository,
	marketSvc market.Service,
	profileSvc profile.Service,
	activityRepo activity.Repository,
	txm database.Transactor,
) Service {
	return &service{
		repo:         repo,
		marketSvc:    marketSvc,
		profileSvc:   profileSvc,
		activityRepo: activityRepo,
		txm:          txm,
	}
}

// validatePerks 要求等级1..3各恰好一条且价格为正
func validatePerks(perks []*VipPerk) error {
	if len(perks) != 3 {
		return apperr.Invalid("incomplete_vip_perks", "exactly one perk per level 1..3 is required")
	}
	seen := make(map[int]bool, 3)
	for _, p := range perks {
		if p.Level < 1 || p.Level > 3 {
			return apperr.Invalid("invalid_vip_level", "perk levels must be 1..3")
		}
		if seen[p.Level] {
			return apperr.Invalid("duplicate_vip_level", "duplicate perk level")
		}
		seen[p.Level] = true

		price, err := decimal.NewFromString(p.Price)
		if err != nil || !price.IsPositive() {
			return apperr.Invalid("invalid_perk_price", "perk price must be a positive amount")
		}
	}
	return nil
}

// Bootstrap 首次启动写入奖励系统与权益配置；已初始化则不做任何事
func (s *service) Bootstrap(sys *RewardSystem, perks []*VipPerk) error {
	existing, err := s.repo.GetSystem()
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}
	if err := validatePerks(perks); err != nil {
		return err
	}

	sys.TotalDistributed = "0"
	return s.txm.Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.SaveSystem(sys); err != nil {
			return err
		}
		return repo.ReplacePerks(perks)
	})
}

// Replace 整体替换奖励系统（仅owner）。累计发放量保留。
func (s *service) Replace(caller string, sys *RewardSystem, perks []*VipPerk) error {
	cfg, err := s.marketSvc.GetConfig()
	if err != nil {
		return err
	}
	if caller != cfg.Owner {
		return apperr.Unauthorized("not_owner", "only the marketplace owner may replace the reward system")
	}
	if err := validatePerks(perks); err != nil {
		return err
	}

	current, err := s.repo.GetSystem()
	if err != nil {
		return err
	}
	if current != nil {
		sys.ID = current.ID
		sys.TotalDistributed = current.TotalDistributed
	} else {
		sys.TotalDistributed = "0"
	}

	return s.txm.Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.SaveSystem(sys); err != nil {
			return err
		}
		return repo.ReplacePerks(perks)
	})
}

// DistributeTrade 成交后给买卖双方各发放与USDC成交量成比例的奖励代币，
// 生成转账指令并累加总发放量。
func (s *service) DistributeTrade(tx *gorm.DB, buyer, seller string, usdcVolume decimal.Decimal) error {
	repo := s.repo.WithTx(tx)
	sys, err := repo.GetSystem()
	if err != nil {
		return err
	}
	if sys == nil {
		return apperr.NotFound("reward_system_not_found", "reward system is not initialized")
	}

	rate, err := decimal.NewFromString(sys.TokensPerUsdc)
	if err != nil {
		return err
	}
	tokens := usdcVolume.Mul(rate).Floor()
	if !tokens.IsPositive() {
		return nil
	}

	for _, recipient := range []string{buyer, seller} {
		if err := repo.CreatePayout(&Payout{
			Recipient:   recipient,
			RewardToken: sys.RewardToken,
			Amount:      tokens.String(),
		}); err != nil {
			return err
		}
	}

	total, err := decimal.NewFromString(sys.TotalDistributed)
	if err != nil {
		return err
	}
	sys.TotalDistributed = total.Add(tokens).Add(tokens).String()
	return repo.SaveSystem(sys)
}

// LevelUp 花费奖励代币升级VIP。严格逐级：不可跳级、不可降级，
// Level3为终态；支付额必须与下一级的定价完全一致。
func (s *service) LevelUp(caller string, tokensPaid decimal.Decimal) (profile.VipLevel, error) {
	if _, err := s.marketSvc.RequireEnabled(); err != nil {
		return 0, err
	}

	current, err := s.profileSvc.GetVipLevel(caller)
	if err != nil {
		return 0, err
	}
	if current == profile.VipLevel3 {
		return 0, apperr.Conflict("vip_level_terminal", "already at the maximum vip level")
	}

	next := current + 1
	perk, err := s.repo.GetPerk(int(next))
	if err != nil {
		return 0, err
	}
	if perk == nil {
		return 0, apperr.Newf(apperr.KindNotFound, "vip_perk_not_found", "no perk configured for level %d", next)
	}

	price, err := decimal.NewFromString(perk.Price)
	if err != nil {
		return 0, err
	}
	if !tokensPaid.Equal(price) {
		return 0, apperr.Newf(apperr.KindValidation, "wrong_level_price",
			"level %d costs exactly %s reward tokens", next, price.String())
	}

	err = s.txm.Transaction(func(tx *gorm.DB) error {
		if err := s.profileSvc.SetVipLevel(tx, caller, next); err != nil {
			return err
		}
		return s.activityRepo.WithTx(tx).Record(&activity.Activity{
			Type:        activity.TypeLevelUp,
			FromAddress: caller,
			PriceValue:  price.String(),
		})
	})
	if err != nil {
		return 0, err
	}

	logger.Infow("vip level up", "address", caller, "level", int(next))
	return next, nil
}

// DispatchPayouts 派发待处理的转账指令，返回派发数量
func (s *service) DispatchPayouts(limit int) (int, error) {
	payouts, err := s.repo.ListPendingPayouts(limit)
	if err != nil {
		return 0, err
	}

	dispatched := 0
	for _, p := range payouts {
		logger.Infow("reward transfer instruction emitted",
			"uuid", p.UUID, "recipient", p.Recipient, "token", p.RewardToken, "amount", p.Amount)
		if err := s.repo.MarkDispatched(p.ID); err != nil {
			return dispatched, err
		}
		dispatched++
	}
	return dispatched, nil
}

// GetSystem 查询奖励系统
func (s *service) GetSystem() (*RewardSystem, error) {
	sys, err := s.repo.GetSystem()
	if err != nil {
		return nil, err
	}
	if sys == nil {
		return nil, apperr.NotFound("reward_system_not_found", "reward system is not initialized")
	}
	return sys, nil
}

// ListPerks 列出权益配置
func (s *service) ListPerks() ([]*VipPerk, error) {
	return s.repo.ListPerks()
}
