package sale

import (
	"time"

	"nft-marketplace/internal/activity"
	"nft-marketplace/internal/bank"
	"nft-marketplace/internal/collection"
	"nft-marketplace/internal/market"
	"nft-marketplace/internal/oracle"
	"nft-marketplace/internal/profile"
	"nft-marketplace/internal/reward"
	"nft-marketplace/internal/stats"
	"nft-marketplace/pkg/apperr"
	"nft-marketplace/pkg/database"
	"nft-marketplace/pkg/logger"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Funds 附带的支付款项
type Funds struct {
	Denom string          `json:"denom"`
	Value decimal.Decimal `json:"value"`
}

// ListRequest 挂单请求
type ListRequest struct {
	Collection string
	TokenID    string
	Seller     string
	Price      Funds
	Expiration time.Time
	FeeFunds   Funds
}

// UpdateRequest 改价请求。定义为撤单加免挂单费重挂，单事务完成。
type UpdateRequest struct {
	Collection string
	TokenID    string
	Seller     string
	Price      Funds
	Expiration time.Time
}

// BuyRequest 购买请求
type BuyRequest struct {
	Collection string
	TokenID    string
	Buyer      string
	Funds      Funds
}

// Trade 成交记账参数，购买与报价应答共用同一条结算路径
type Trade struct {
	Collection string
	TokenID    string
	Seller     string
	Buyer      string
	Denom      string
	Price      decimal.Decimal
}

// Service 销售生命周期服务接口
type Service interface {
	List(req *ListRequest) (*Sale, error)
	Update(req *UpdateRequest) (*Sale, error)
	Cancel(actor market.Actor, collection, tokenID string) error
	Buy(req *BuyRequest) error
	SweepExpired(denom string) (int, error)

	// Settle 在调用方的事务内执行成交记账；报价应答复用此路径
	Settle(tx *gorm.DB, t *Trade) error
	// DropListing 在调用方的事务内移除在售挂单及其计数；无挂单时为空操作
	DropListing(tx *gorm.DB, collectionAddr, tokenID string) error

	Get(collection, tokenID string) (*Sale, error)
	ListByCollection(collection string, page, size int) ([]*Sale, int64, error)
}

type service struct {
	repo         Repository
	marketSvc    market.Service
	colSvc       collection.Service
	statsSvc     stats.Service
	bankRepo     bank.Repository
	rewardSvc    reward.Service
	profileSvc   profile.Service
	activityRepo activity.Repository
	nft          oracle.Ownership
	price        oracle.PriceSource
	txm          database.Transactor
}

// NewService 创建销售服务
func NewService(
	repo Repository,
	marketSvc market.Service,
	colSvc collection.Service,
	statsSvc stats.Service,
	bankRepo bank.Repository,
	rewardSvc reward.Service,
	profileSvc profile.Service,
	activityRepo activity.Repository,
	nft oracle.Ownership,
	price oracle.PriceSource,
	txm database.Transactor,
) Service {
	return &service{
		repo:         repo,
		marketSvc:    marketSvc,
		colSvc:       colSvc,
		statsSvc:     statsSvc,
		bankRepo:     bankRepo,
		rewardSvc:    rewardSvc,
		profileSvc:   profileSvc,
		activityRepo: activityRepo,
		nft:          nft,
		price:        price,
		txm:          txm,
	}
}

// validatePrice 校验价格边界与计价单位准入
func validatePrice(cfg *market.Config, price Funds) error {
	if !cfg.DenomAccepted(price.Denom) {
		return apperr.Newf(apperr.KindValidation, "denom_not_accepted", "denom %s is not accepted", price.Denom)
	}
	if price.Value.LessThan(MinPrice) || price.Value.GreaterThan(MaxPrice) {
		return apperr.Newf(apperr.KindValidation, "price_out_of_bounds",
			"price must satisfy %s <= value <= %s", MinPrice.String(), MaxPrice.String())
	}
	return nil
}

// validateExpiration 校验绝对有效期落在允许窗口内
func validateExpiration(expiration, now time.Time) error {
	min := now.Add(MinExpirationSeconds * time.Second)
	max := now.Add(MaxExpirationSeconds * time.Second)
	if expiration.Before(min) || expiration.After(max) {
		return apperr.Invalid("expiration_out_of_bounds",
			"expiration must lie between 1 day and 180 days from now")
	}
	return nil
}

func (s *service) requireTokenOwner(collectionAddr, tokenID, claimed string) error {
	owner, err := s.nft.OwnerOf(collectionAddr, tokenID)
	if err != nil {
		return apperr.External(err, "ownership_query_failed", "owner_of query failed")
	}
	if owner != claimed {
		return apperr.Unauthorized("not_token_owner", "caller does not own the token")
	}
	return nil
}

// List 挂单。校验集合已注册、价格与有效期边界、持有权与挂单费，
// 成功后创建Sale、两级在售计数+1、地板价取较小值、挂单费记给owner。
func (s *service) List(req *ListRequest) (*Sale, error) {
	cfg, err := s.marketSvc.RequireEnabled()
	if err != nil {
		return nil, err
	}
	if _, err := s.colSvc.RequireRegistered(req.Collection); err != nil {
		return nil, err
	}
	if err := validatePrice(cfg, req.Price); err != nil {
		return nil, err
	}
	if err := validateExpiration(req.Expiration, time.Now()); err != nil {
		return nil, err
	}
	if err := s.requireTokenOwner(req.Collection, req.TokenID, req.Seller); err != nil {
		return nil, err
	}

	listingFee, err := decimal.NewFromString(cfg.ListingFeeValue)
	if err != nil {
		return nil, err
	}
	if req.FeeFunds.Denom != cfg.ListingFeeDenom || req.FeeFunds.Value.LessThan(listingFee) {
		return nil, apperr.Newf(apperr.KindValidation, "listing_fee_required",
			"listing requires a fee of %s %s", cfg.ListingFeeValue, cfg.ListingFeeDenom)
	}

	existing, err := s.repo.Get(req.Collection, req.TokenID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperr.Conflict("sale_already_exists", "token already has an active sale")
	}

	record := &Sale{
		Collection: req.Collection,
		TokenID:    req.TokenID,
		Seller:     req.Seller,
		PriceValue: req.Price.Value.String(),
		PriceDenom: req.Price.Denom,
		Expiration: req.Expiration,
	}
	err = s.txm.Transaction(func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).Create(record); err != nil {
			return err
		}
		if err := s.statsSvc.ListingAdded(tx, req.Price.Denom); err != nil {
			return err
		}
		if err := s.colSvc.ListingAdded(tx, req.Collection, req.Price.Denom, req.Price.Value); err != nil {
			return err
		}
		if err := s.bankRepo.WithTx(tx).Credit(cfg.Owner, cfg.ListingFeeDenom, listingFee); err != nil {
			return err
		}
		return s.activityRepo.WithTx(tx).Record(&activity.Activity{
			Type:        activity.TypeList,
			Collection:  req.Collection,
			TokenID:     req.TokenID,
			FromAddress: req.Seller,
			PriceValue:  req.Price.Value.String(),
			PriceDenom:  req.Price.Denom,
		})
	})
	if err != nil {
		return nil, err
	}

	logger.Infow("nft listed", "collection", req.Collection, "token", req.TokenID,
		"price", req.Price.Value.String(), "denom", req.Price.Denom)
	return record, nil
}

// Update 改价。重新校验持有权与边界后，在单个事务内撤单并免费重挂。
func (s *service) Update(req *UpdateRequest) (*Sale, error) {
	cfg, err := s.marketSvc.RequireEnabled()
	if err != nil {
		return nil, err
	}
	if err := validatePrice(cfg, req.Price); err != nil {
		return nil, err
	}
	if err := validateExpiration(req.Expiration, time.Now()); err != nil {
		return nil, err
	}

	existing, err := s.repo.Get(req.Collection, req.TokenID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, apperr.NotFound("sale_not_found", "no active sale for token")
	}
	if existing.Seller != req.Seller {
		return nil, apperr.Unauthorized("not_seller", "only the seller may update the listing")
	}
	if err := s.requireTokenOwner(req.Collection, req.TokenID, req.Seller); err != nil {
		return nil, err
	}

	record := &Sale{
		Collection: req.Collection,
		TokenID:    req.TokenID,
		Seller:     req.Seller,
		PriceValue: req.Price.Value.String(),
		PriceDenom: req.Price.Denom,
		Expiration: req.Expiration,
	}
	err = s.txm.Transaction(func(tx *gorm.DB) error {
		if err := s.removeListing(tx, existing); err != nil {
			return err
		}
		if err := s.repo.WithTx(tx).Create(record); err != nil {
			return err
		}
		if err := s.statsSvc.ListingAdded(tx, req.Price.Denom); err != nil {
			return err
		}
		if err := s.colSvc.ListingAdded(tx, req.Collection, req.Price.Denom, req.Price.Value); err != nil {
			return err
		}
		return s.activityRepo.WithTx(tx).Record(&activity.Activity{
			Type:        activity.TypeUpdate,
			Collection:  req.Collection,
			TokenID:     req.TokenID,
			FromAddress: req.Seller,
			PriceValue:  req.Price.Value.String(),
			PriceDenom:  req.Price.Denom,
		})
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

// Cancel 撤单。仅卖家本人或运营方代当事人可撤。
func (s *service) Cancel(actor market.Actor, collectionAddr, tokenID string) error {
	if _, err := s.marketSvc.RequireEnabled(); err != nil {
		return err
	}
	acting, err := s.marketSvc.ResolveActor(actor)
	if err != nil {
		return err
	}

	existing, err := s.repo.Get(collectionAddr, tokenID)
	if err != nil {
		return err
	}
	if existing == nil {
		return apperr.NotFound("sale_not_found", "no active sale for token")
	}
	if existing.Seller != acting {
		return apperr.Unauthorized("not_seller", "only the seller may cancel the listing")
	}

	return s.txm.Transaction(func(tx *gorm.DB) error {
		if err := s.removeListing(tx, existing); err != nil {
			return err
		}
		return s.activityRepo.WithTx(tx).Record(&activity.Activity{
			Type:        activity.TypeCancel,
			Collection:  collectionAddr,
			TokenID:     tokenID,
			FromAddress: acting,
			PriceValue:  existing.PriceValue,
			PriceDenom:  existing.PriceDenom,
		})
	})
}

// Buy 购买。要求资金与标价在金额和计价单位上都完全一致；
// 过期挂单不可成交，须先清理。
func (s *service) Buy(req *BuyRequest) error {
	if _, err := s.marketSvc.RequireEnabled(); err != nil {
		return err
	}

	existing, err := s.repo.Get(req.Collection, req.TokenID)
	if err != nil {
		return err
	}
	if existing == nil {
		return apperr.NotFound("sale_not_found", "no active sale for token")
	}
	if existing.Expiration.Before(time.Now()) {
		return apperr.Invalid("sale_expired", "sale has expired and awaits sweeping")
	}
	if req.Buyer == existing.Seller {
		return apperr.Invalid("own_listing", "cannot buy your own listing")
	}

	price, err := decimal.NewFromString(existing.PriceValue)
	if err != nil {
		return err
	}
	if req.Funds.Denom != existing.PriceDenom || !req.Funds.Value.Equal(price) {
		return apperr.Newf(apperr.KindValidation, "funds_mismatch",
			"funds must be exactly %s %s", existing.PriceValue, existing.PriceDenom)
	}

	trade := &Trade{
		Collection: req.Collection,
		TokenID:    req.TokenID,
		Seller:     existing.Seller,
		Buyer:      req.Buyer,
		Denom:      existing.PriceDenom,
		Price:      price,
	}
	err = s.txm.Transaction(func(tx *gorm.DB) error {
		if err := s.removeListing(tx, existing); err != nil {
			return err
		}
		if err := s.Settle(tx, trade); err != nil {
			return err
		}
		return s.activityRepo.WithTx(tx).Record(&activity.Activity{
			Type:        activity.TypeBuy,
			Collection:  req.Collection,
			TokenID:     req.TokenID,
			FromAddress: existing.Seller,
			ToAddress:   req.Buyer,
			PriceValue:  existing.PriceValue,
			PriceDenom:  existing.PriceDenom,
		})
	})
	if err != nil {
		return err
	}

	logger.Infow("nft sold", "collection", req.Collection, "token", req.TokenID,
		"price", existing.PriceValue, "denom", existing.PriceDenom, "buyer", req.Buyer)
	return nil
}

// Settle 成交记账：手续费向零取整，卖家得净额，佣金进可领取池，
// 三级统计更新，买卖双方按USDC等值成交量获得奖励，买家无档案则自动建档。
func (s *service) Settle(tx *gorm.DB, t *Trade) error {
	cfg, err := s.marketSvc.GetConfig()
	if err != nil {
		return err
	}
	feePct, err := decimal.NewFromString(cfg.FeePct)
	if err != nil {
		return err
	}

	fee := t.Price.Mul(feePct).Floor()
	proceeds := t.Price.Sub(fee)

	if err := s.bankRepo.WithTx(tx).Credit(t.Seller, t.Denom, proceeds); err != nil {
		return err
	}
	if err := s.statsSvc.AccrueTrade(tx, t.Denom, t.Price, fee); err != nil {
		return err
	}
	if err := s.colSvc.AccrueTrade(tx, t.Collection, t.Denom, t.Price); err != nil {
		return err
	}

	usdcVolume, err := s.price.UsdcValue(t.Price, t.Denom)
	if err != nil {
		return apperr.External(err, "price_oracle_failed", "price oracle query failed")
	}
	if err := s.statsSvc.RecordTrade(tx, t.Collection, usdcVolume); err != nil {
		return err
	}
	if err := s.rewardSvc.DistributeTrade(tx, t.Buyer, t.Seller, usdcVolume); err != nil {
		return err
	}
	return s.profileSvc.Ensure(tx, t.Buyer)
}

// DropListing 移除token的在售挂单及其计数；没有挂单时为空操作
func (s *service) DropListing(tx *gorm.DB, collectionAddr, tokenID string) error {
	existing, err := s.repo.WithTx(tx).Get(collectionAddr, tokenID)
	if err != nil {
		return err
	}
	if existing == nil {
		return nil
	}
	return s.removeListing(tx, existing)
}

// removeListing 删除挂单、两级在售计数-1、扫描剩余挂单得出新地板价
func (s *service) removeListing(tx *gorm.DB, existing *Sale) error {
	repo := s.repo.WithTx(tx)
	if err := repo.Delete(existing.Collection, existing.TokenID); err != nil {
		return err
	}

	newFloor, found, err := repo.MinPrice(existing.Collection, existing.PriceDenom)
	if err != nil {
		return err
	}
	if !found {
		newFloor = decimal.Zero
	}

	if err := s.statsSvc.ListingRemoved(tx, existing.PriceDenom); err != nil {
		return err
	}
	return s.colSvc.ListingRemoved(tx, existing.Collection, existing.PriceDenom, newFloor)
}

// SweepExpired 按键升序清理至多SweepBatchSize条过期挂单。
// 只移除Sale本身，不回退在售计数，也不退挂单费。
func (s *service) SweepExpired(denom string) (int, error) {
	var swept int
	err := s.txm.Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		expired, err := repo.FindExpired(denom, time.Now(), SweepBatchSize)
		if err != nil {
			return err
		}
		if len(expired) == 0 {
			return nil
		}

		ids := make([]uint, 0, len(expired))
		for _, sl := range expired {
			ids = append(ids, sl.ID)
		}
		if err := repo.DeleteByIDs(ids); err != nil {
			return err
		}
		swept = len(expired)
		return nil
	})
	if err != nil {
		return 0, err
	}

	if swept > 0 {
		logger.Infow("expired sales swept", "denom", denom, "count", swept)
	}
	return swept, nil
}

// Get 查询挂单
func (s *service) Get(collection, tokenID string) (*Sale, error) {
	existing, err := s.repo.Get(collection, tokenID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, apperr.NotFound("sale_not_found", "no active sale for token")
	}
	return existing, nil
}

// ListByCollection 分页列出集合的在售挂单
func (s *service) ListByCollection(collection string, page, size int) ([]*Sale, int64, error) {
	return s.repo.ListByCollection(collection, page, size)
}
