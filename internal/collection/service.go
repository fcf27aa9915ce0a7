package collection

import (
	"math"

	"nft-marketplace/internal/market"
	"nft-marketplace/internal/oracle"
	"nft-marketplace/internal/stats"
	"nft-marketplace/pkg/apperr"
	"nft-marketplace/pkg/database"
	"nft-marketplace/pkg/logger"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Service 集合注册与集合级统计服务接口
type Service interface {
	Register(caller, address string, codeID uint64, contractType string) (*CollectionInfo, error)
	RequireRegistered(address string) (*CollectionInfo, error)
	ListCollections() ([]*CollectionInfo, error)

	ListingAdded(tx *gorm.DB, collection, denom string, price decimal.Decimal) error
	ListingRemoved(tx *gorm.DB, collection, denom string, newFloor decimal.Decimal) error
	AccrueTrade(tx *gorm.DB, collection, denom string, price decimal.Decimal) error

	GetDenomStats(collection, denom string) (*CollectionDenomStats, error)
	ListDenomStats(collection string) ([]*CollectionDenomStats, error)
}

type service struct {
	repo      Repository
	marketSvc market.Service
	statsSvc  stats.Service
	nft       oracle.Ownership
	txm       database.Transactor
}

// NewService 创建集合服务
func NewService(
	repo Repository,
	marketSvc market.Service,
	statsSvc stats.Service,
	nft oracle.Ownership,
	txm database.Transactor,
) Service {
	return &service{
		repo:      repo,
		marketSvc: marketSvc,
		statsSvc:  statsSvc,
		nft:       nft,
		txm:       txm,
	}
}

// Register 注册集合。要求合约类型在白名单内、未注册过、且已铸造
// 至少一个token；成功后为每个准入计价单位建统计行并记为最近上架。
func (s *service) Register(caller, address string, codeID uint64, contractType string) (*CollectionInfo, error) {
	cfg, err := s.marketSvc.RequireEnabled()
	if err != nil {
		return nil, err
	}
	if !cfg.TypeAccepted(codeID, contractType) {
		return nil, apperr.Invalid("contract_type_not_accepted", "contract code id and type are not whitelisted")
	}

	existing, err := s.repo.GetInfo(address)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperr.Conflict("collection_already_registered", "collection is already registered")
	}

	supply, err := s.nft.NumTokens(address)
	if err != nil {
		return nil, apperr.External(err, "ownership_query_failed", "num_tokens query failed")
	}
	if supply == 0 {
		return nil, apperr.External(nil, "zero_supply_collection", "collection reports zero minted tokens")
	}

	info, err := s.nft.ContractInfo(address)
	if err != nil {
		return nil, apperr.External(err, "ownership_query_failed", "contract_info query failed")
	}

	denoms, err := cfg.DenomList()
	if err != nil {
		return nil, err
	}

	record := &CollectionInfo{
		Address:      address,
		CodeID:       codeID,
		ContractType: contractType,
	}
	err = s.txm.Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.CreateInfo(record); err != nil {
			return err
		}
		for _, denom := range denoms {
			if err := repo.CreateDenomStats(&CollectionDenomStats{
				Collection:   address,
				Denom:        denom,
				Name:         info.Name,
				TotalVolume:  "0",
				CurrentFloor: "0",
			}); err != nil {
				return err
			}
		}
		return s.statsSvc.SetLastCollectionAdded(tx, address)
	})
	if err != nil {
		return nil, err
	}

	logger.Infow("collection registered", "collection", address, "name", info.Name, "caller", caller)
	return record, nil
}

// RequireRegistered 要求集合已注册
func (s *service) RequireRegistered(address string) (*CollectionInfo, error) {
	info, err := s.repo.GetInfo(address)
	if err != nil {
		return nil, err
	}
	if info == nil {
		return nil, apperr.NotFound("collection_not_registered", "collection is not registered")
	}
	return info, nil
}

// ListCollections 列出全部集合
func (s *service) ListCollections() ([]*CollectionInfo, error) {
	return s.repo.ListInfo()
}

func (s *service) mustDenomStats(repo Repository, collection, denom string) (*CollectionDenomStats, error) {
	cds, err := repo.GetDenomStats(collection, denom)
	if err != nil {
		return nil, err
	}
	if cds == nil {
		return nil, apperr.Newf(apperr.KindNotFound, "collection_stats_not_found",
			"no stats for collection %s denom %s", collection, denom)
	}
	return cds, nil
}

// ListingAdded 在售计数+1，地板价与新挂单价取较小值
func (s *service) ListingAdded(tx *gorm.DB, collection, denom string, price decimal.Decimal) error {
	repo := s.repo.WithTx(tx)
	cds, err := s.mustDenomStats(repo, collection, denom)
	if err != nil {
		return err
	}
	if cds.NftsForSale == math.MaxUint64 {
		return apperr.Invalid("counter_overflow", "counter overflow")
	}
	cds.NftsForSale++

	floor, err := decimal.NewFromString(cds.CurrentFloor)
	if err != nil {
		return err
	}
	if floor.IsZero() || price.LessThan(floor) {
		cds.CurrentFloor = price.String()
	}
	return repo.SaveDenomStats(cds)
}

// ListingRemoved 在售计数-1。新地板价由调用方在同一事务内扫描
// 剩余在售挂单后提供。
func (s *service) ListingRemoved(tx *gorm.DB, collection, denom string, newFloor decimal.Decimal) error {
	repo := s.repo.WithTx(tx)
	cds, err := s.mustDenomStats(repo, collection, denom)
	if err != nil {
		return err
	}
	if cds.NftsForSale == 0 {
		return apperr.New(apperr.KindStateConflict, "counter_underflow", "nfts_for_sale already zero")
	}
	cds.NftsForSale--
	cds.CurrentFloor = newFloor.String()
	return repo.SaveDenomStats(cds)
}

// AccrueTrade 成交笔数+1，成交量累加
func (s *service) AccrueTrade(tx *gorm.DB, collection, denom string, price decimal.Decimal) error {
	repo := s.repo.WithTx(tx)
	cds, err := s.mustDenomStats(repo, collection, denom)
	if err != nil {
		return err
	}
	if cds.RealizedTrades == math.MaxUint64 {
		return apperr.Invalid("counter_overflow", "counter overflow")
	}
	cds.RealizedTrades++

	volume, err := decimal.NewFromString(cds.TotalVolume)
	if err != nil {
		return err
	}
	cds.TotalVolume = volume.Add(price).String()
	return repo.SaveDenomStats(cds)
}

// GetDenomStats 查询集合计价单位统计
func (s *service) GetDenomStats(collection, denom string) (*CollectionDenomStats, error) {
	return s.mustDenomStats(s.repo, collection, denom)
}

// ListDenomStats 列出集合的全部计价单位统计
func (s *service) ListDenomStats(collection string) ([]*CollectionDenomStats, error) {
	return s.repo.ListDenomStats(collection)
}
