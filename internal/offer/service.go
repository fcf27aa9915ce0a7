package offer

import (
	"time"

	"nft-marketplace/internal/activity"
	"nft-marketplace/internal/collection"
	"nft-marketplace/internal/market"
	"nft-marketplace/internal/oracle"
	"nft-marketplace/internal/sale"
	"nft-marketplace/pkg/apperr"
	"nft-marketplace/pkg/database"
	"nft-marketplace/pkg/logger"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// MakeRequest 报价请求
type MakeRequest struct {
	Collection string
	TokenID    string
	Offerer    string
	Price      sale.Funds
	Expiration time.Time
}

// Service 报价生命周期服务接口
type Service interface {
	Make(req *MakeRequest) (*Offer, error)
	Cancel(actor market.Actor, collection, tokenID string) error
	Answer(seller, collection, tokenID, offerer string, accept bool) error

	Get(collection, tokenID, offerer string) (*Offer, error)
	ListByToken(collection, tokenID string) ([]*Offer, error)
	ListByOfferer(offerer string, page, size int) ([]*Offer, int64, error)
}

type service struct {
	repo         Repository
	marketSvc    market.Service
	colSvc       collection.Service
	saleSvc      sale.Service
	activityRepo activity.Repository
	nft          oracle.Ownership
	txm          database.Transactor
}

// NewService 创建报价服务
func NewService(
	repo Repository,
	marketSvc market.Service,
	colSvc collection.Service,
	saleSvc sale.Service,
	activityRepo activity.Repository,
	nft oracle.Ownership,
	txm database.Transactor,
) Service {
	return &service{
		repo:         repo,
		marketSvc:    marketSvc,
		colSvc:       colSvc,
		saleSvc:      saleSvc,
		activityRepo: activityRepo,
		nft:          nft,
		txm:          txm,
	}
}

// Make 报价。报价金额记录在案，不预先扣款；当前持有人不能对自己
// 的token报价，同一报价人对同一token只能有一条在册报价。
func (s *service) Make(req *MakeRequest) (*Offer, error) {
	cfg, err := s.marketSvc.RequireEnabled()
	if err != nil {
		return nil, err
	}
	if _, err := s.colSvc.RequireRegistered(req.Collection); err != nil {
		return nil, err
	}
	if !cfg.DenomAccepted(req.Price.Denom) {
		return nil, apperr.Newf(apperr.KindValidation, "denom_not_accepted", "denom %s is not accepted", req.Price.Denom)
	}
	if req.Price.Value.LessThan(sale.MinPrice) || req.Price.Value.GreaterThan(sale.MaxPrice) {
		return nil, apperr.Newf(apperr.KindValidation, "price_out_of_bounds",
			"price must satisfy %s <= value <= %s", sale.MinPrice.String(), sale.MaxPrice.String())
	}

	now := time.Now()
	min := now.Add(sale.MinExpirationSeconds * time.Second)
	max := now.Add(sale.MaxExpirationSeconds * time.Second)
	if req.Expiration.Before(min) || req.Expiration.After(max) {
		return nil, apperr.Invalid("expiration_out_of_bounds",
			"expiration must lie between 1 day and 180 days from now")
	}

	owner, err := s.nft.OwnerOf(req.Collection, req.TokenID)
	if err != nil {
		return nil, apperr.External(err, "ownership_query_failed", "owner_of query failed")
	}
	if owner == req.Offerer {
		return nil, apperr.Invalid("own_token", "cannot make an offer on your own token")
	}

	existing, err := s.repo.Get(req.Collection, req.TokenID, req.Offerer)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperr.Conflict("offer_already_exists", "offerer already has an active offer on this token")
	}

	record := &Offer{
		Collection: req.Collection,
		TokenID:    req.TokenID,
		Offerer:    req.Offerer,
		PriceValue: req.Price.Value.String(),
		PriceDenom: req.Price.Denom,
		Expiration: req.Expiration,
	}
	err = s.txm.Transaction(func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).Create(record); err != nil {
			return err
		}
		return s.activityRepo.WithTx(tx).Record(&activity.Activity{
			Type:        activity.TypeMakeOffer,
			Collection:  req.Collection,
			TokenID:     req.TokenID,
			FromAddress: req.Offerer,
			PriceValue:  req.Price.Value.String(),
			PriceDenom:  req.Price.Denom,
		})
	})
	if err != nil {
		return nil, err
	}

	logger.Infow("offer made", "collection", req.Collection, "token", req.TokenID,
		"offerer", req.Offerer, "price", req.Price.Value.String(), "denom", req.Price.Denom)
	return record, nil
}

// Cancel 撤回报价。仅报价人本人或运营方代当事人可撤。
func (s *service) Cancel(actor market.Actor, collectionAddr, tokenID string) error {
	if _, err := s.marketSvc.RequireEnabled(); err != nil {
		return err
	}
	acting, err := s.marketSvc.ResolveActor(actor)
	if err != nil {
		return err
	}

	existing, err := s.repo.Get(collectionAddr, tokenID, acting)
	if err != nil {
		return err
	}
	if existing == nil {
		return apperr.NotFound("offer_not_found", "no active offer by this address for the token")
	}

	return s.txm.Transaction(func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).Delete(collectionAddr, tokenID, acting); err != nil {
			return err
		}
		return s.activityRepo.WithTx(tx).Record(&activity.Activity{
			Type:        activity.TypeCancelOffer,
			Collection:  collectionAddr,
			TokenID:     tokenID,
			FromAddress: acting,
			PriceValue:  existing.PriceValue,
			PriceDenom:  existing.PriceDenom,
		})
	})
}

// Answer 应答报价。应答者必须是token当前持有人。接受时走与购买
// 相同的结算路径，随后移除报价和该token可能存在的在售挂单；
// 拒绝时仅移除报价，无经济效果。
func (s *service) Answer(seller, collectionAddr, tokenID, offerer string, accept bool) error {
	if _, err := s.marketSvc.RequireEnabled(); err != nil {
		return err
	}

	existing, err := s.repo.Get(collectionAddr, tokenID, offerer)
	if err != nil {
		return err
	}
	if existing == nil {
		return apperr.NotFound("offer_not_found", "no active offer by this address for the token")
	}

	owner, err := s.nft.OwnerOf(collectionAddr, tokenID)
	if err != nil {
		return apperr.External(err, "ownership_query_failed", "owner_of query failed")
	}
	if owner != seller {
		return apperr.Unauthorized("not_token_owner", "only the current token owner may answer the offer")
	}

	if !accept {
		return s.txm.Transaction(func(tx *gorm.DB) error {
			if err := s.repo.WithTx(tx).Delete(collectionAddr, tokenID, offerer); err != nil {
				return err
			}
			return s.activityRepo.WithTx(tx).Record(&activity.Activity{
				Type:        activity.TypeRejectOffer,
				Collection:  collectionAddr,
				TokenID:     tokenID,
				FromAddress: seller,
				ToAddress:   offerer,
				PriceValue:  existing.PriceValue,
				PriceDenom:  existing.PriceDenom,
			})
		})
	}

	if existing.Expiration.Before(time.Now()) {
		return apperr.Invalid("offer_expired", "offer has expired")
	}

	price, err := decimal.NewFromString(existing.PriceValue)
	if err != nil {
		return err
	}
	trade := &sale.Trade{
		Collection: collectionAddr,
		TokenID:    tokenID,
		Seller:     seller,
		Buyer:      offerer,
		Denom:      existing.PriceDenom,
		Price:      price,
	}
	err = s.txm.Transaction(func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).Delete(collectionAddr, tokenID, offerer); err != nil {
			return err
		}
		if err := s.saleSvc.DropListing(tx, collectionAddr, tokenID); err != nil {
			return err
		}
		if err := s.saleSvc.Settle(tx, trade); err != nil {
			return err
		}
		return s.activityRepo.WithTx(tx).Record(&activity.Activity{
			Type:        activity.TypeAcceptOffer,
			Collection:  collectionAddr,
			TokenID:     tokenID,
			FromAddress: seller,
			ToAddress:   offerer,
			PriceValue:  existing.PriceValue,
			PriceDenom:  existing.PriceDenom,
		})
	})
	if err != nil {
		return err
	}

	logger.Infow("offer accepted", "collection", collectionAddr, "token", tokenID,
		"seller", seller, "offerer", offerer, "price", existing.PriceValue, "denom", existing.PriceDenom)
	return nil
}

// Get 查询报价
func (s *service) Get(collection, tokenID, offerer string) (*Offer, error) {
	existing, err := s.repo.Get(collection, tokenID, offerer)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, apperr.NotFound("offer_not_found", "no active offer by this address for the token")
	}
	return existing, nil
}

// ListByToken 列出token的全部在册报价
func (s *service) ListByToken(collection, tokenID string) ([]*Offer, error) {
	return s.repo.ListByToken(collection, tokenID)
}

// ListByOfferer 分页列出地址发出的报价
func (s *service) ListByOfferer(offerer string, page, size int) ([]*Offer, int64, error) {
	return s.repo.ListByOfferer(offerer, page, size)
}
