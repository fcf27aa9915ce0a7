package stats

import (
	"encoding/json"

	"nft-marketplace/pkg/apperr"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Service 手续费与统计账本。纯记账，由销售/报价生命周期在各自的
// 事务内调用；tx为nil时直接落在主连接上。
type Service interface {
	EnsureDenom(tx *gorm.DB, denom string) error
	ListingAdded(tx *gorm.DB, denom string) error
	ListingRemoved(tx *gorm.DB, denom string) error
	AccrueTrade(tx *gorm.DB, denom string, price, fee decimal.Decimal) error
	Claim(tx *gorm.DB, denom string) (decimal.Decimal, error)
	RecordTrade(tx *gorm.DB, collection string, usdcVolume decimal.Decimal) error
	SetLastCollectionAdded(tx *gorm.DB, collection string) error
	EnsureGeneralStats(tx *gorm.DB) error

	GetDenomStats(denom string) (*DenomStats, error)
	ListDenomStats() ([]*DenomStats, error)
	GetGeneralStats() (*GeneralStats, error)
}

type service struct {
	repo Repository
}

// NewService 创建统计服务
func NewService(repo Repository) Service {
	return &service{repo: repo}
}

// EnsureDenom 确保计价单位统计存在，新增时建零值行
func (s *service) EnsureDenom(tx *gorm.DB, denom string) error {
	repo := s.repo.WithTx(tx)
	ds, err := repo.GetDenomStats(denom)
	if err != nil {
		return err
	}
	if ds != nil {
		return nil
	}
	return repo.CreateDenomStats(&DenomStats{
		Denom:       denom,
		TotalVolume: "0",
		TotalFees:   "0",
		FeesToClaim: "0",
	})
}

func (s *service) mustDenomStats(repo Repository, denom string) (*DenomStats, error) {
	ds, err := repo.GetDenomStats(denom)
	if err != nil {
		return nil, err
	}
	if ds == nil {
		return nil, apperr.Newf(apperr.KindNotFound, "denom_stats_not_found", "no stats for denom %s", denom)
	}
	return ds, nil
}

// ListingAdded 在售计数+1
func (s *service) ListingAdded(tx *gorm.DB, denom string) error {
	repo := s.repo.WithTx(tx)
	ds, err := s.mustDenomStats(repo, denom)
	if err != nil {
		return err
	}
	if ds.NftsForSale, err = addUint64(ds.NftsForSale, 1); err != nil {
		return err
	}
	return repo.SaveDenomStats(ds)
}

// ListingRemoved 在售计数-1
func (s *service) ListingRemoved(tx *gorm.DB, denom string) error {
	repo := s.repo.WithTx(tx)
	ds, err := s.mustDenomStats(repo, denom)
	if err != nil {
		return err
	}
	if ds.NftsForSale == 0 {
		return apperr.New(apperr.KindStateConflict, "counter_underflow", "nfts_for_sale already zero")
	}
	ds.NftsForSale--
	return repo.SaveDenomStats(ds)
}

// AccrueTrade 成交记账：笔数+1，成交量与手续费累加。溢出中止事务。
func (s *service) AccrueTrade(tx *gorm.DB, denom string, price, fee decimal.Decimal) error {
	repo := s.repo.WithTx(tx)
	ds, err := s.mustDenomStats(repo, denom)
	if err != nil {
		return err
	}

	if ds.RealizedSales, err = addUint64(ds.RealizedSales, 1); err != nil {
		return err
	}

	volume, err := decimal.NewFromString(ds.TotalVolume)
	if err != nil {
		return err
	}
	totalFees, err := decimal.NewFromString(ds.TotalFees)
	if err != nil {
		return err
	}
	toClaim, err := decimal.NewFromString(ds.FeesToClaim)
	if err != nil {
		return err
	}

	ds.TotalVolume = volume.Add(price).String()
	ds.TotalFees = totalFees.Add(fee).String()
	ds.FeesToClaim = toClaim.Add(fee).String()
	return repo.SaveDenomStats(ds)
}

// Claim 返回当前可领取手续费并清零（幂等排空）
func (s *service) Claim(tx *gorm.DB, denom string) (decimal.Decimal, error) {
	repo := s.repo.WithTx(tx)
	ds, err := repo.GetDenomStats(denom)
	if err != nil {
		return decimal.Zero, err
	}
	if ds == nil {
		return decimal.Zero, nil
	}

	amount, err := decimal.NewFromString(ds.FeesToClaim)
	if err != nil {
		return decimal.Zero, err
	}
	if amount.IsZero() {
		return decimal.Zero, nil
	}

	ds.FeesToClaim = "0"
	if err := repo.SaveDenomStats(ds); err != nil {
		return decimal.Zero, err
	}
	return amount, nil
}

// RecordTrade 成交后更新全局聚合：Top10榜单、最近成交列表、最低上榜量
func (s *service) RecordTrade(tx *gorm.DB, collection string, usdcVolume decimal.Decimal) error {
	repo := s.repo.WithTx(tx)
	gs, err := s.mustGeneralStats(repo)
	if err != nil {
		return err
	}

	var entries []VolumeEntry
	if gs.Top10VolumeUsdc != "" {
		if err := json.Unmarshal([]byte(gs.Top10VolumeUsdc), &entries); err != nil {
			return err
		}
	}
	entries, err = mergeTopVolume(entries, collection, usdcVolume)
	if err != nil {
		return err
	}

	var traded []string
	if gs.LastCollectionsTraded != "" {
		if err := json.Unmarshal([]byte(gs.LastCollectionsTraded), &traded); err != nil {
			return err
		}
	}
	traded = appendLastTraded(traded, collection)

	top, err := json.Marshal(entries)
	if err != nil {
		return err
	}
	last, err := json.Marshal(traded)
	if err != nil {
		return err
	}

	gs.Top10VolumeUsdc = string(top)
	gs.LastCollectionsTraded = string(last)
	gs.LowestVolumeUsdc = entries[0].VolumeUsdc
	return repo.SaveGeneralStats(gs)
}

// SetLastCollectionAdded 记录最近上架的集合
func (s *service) SetLastCollectionAdded(tx *gorm.DB, collection string) error {
	repo := s.repo.WithTx(tx)
	gs, err := s.mustGeneralStats(repo)
	if err != nil {
		return err
	}
	gs.LastCollectionAdded = collection
	return repo.SaveGeneralStats(gs)
}

// EnsureGeneralStats 确保全局统计单行存在
func (s *service) EnsureGeneralStats(tx *gorm.DB) error {
	repo := s.repo.WithTx(tx)
	gs, err := repo.GetGeneralStats()
	if err != nil {
		return err
	}
	if gs != nil {
		return nil
	}
	return repo.SaveGeneralStats(&GeneralStats{
		LastCollectionsTraded: "[]",
		Top10VolumeUsdc:       "[]",
		LowestVolumeUsdc:      "0",
	})
}

func (s *service) mustGeneralStats(repo Repository) (*GeneralStats, error) {
	gs, err := repo.GetGeneralStats()
	if err != nil {
		return nil, err
	}
	if gs == nil {
		return nil, apperr.New(apperr.KindNotFound, "general_stats_not_found", "general stats not initialized")
	}
	return gs, nil
}

// GetDenomStats 查询计价单位统计
func (s *service) GetDenomStats(denom string) (*DenomStats, error) {
	ds, err := s.repo.GetDenomStats(denom)
	if err != nil {
		return nil, err
	}
	if ds == nil {
		return nil, apperr.Newf(apperr.KindNotFound, "denom_stats_not_found", "no stats for denom %s", denom)
	}
	return ds, nil
}

// ListDenomStats 列出全部计价单位统计
func (s *service) ListDenomStats() ([]*DenomStats, error) {
	return s.repo.ListDenomStats()
}

// GetGeneralStats 查询全局统计
func (s *service) GetGeneralStats() (*GeneralStats, error) {
	return s.mustGeneralStats(s.repo)
}
