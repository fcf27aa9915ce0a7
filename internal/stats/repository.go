package stats

import (
	"errors"

	"gorm.io/gorm"
)

// Repository 统计仓储接口
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateDenomStats(ds *DenomStats) error
	GetDenomStats(denom string) (*DenomStats, error)
	SaveDenomStats(ds *DenomStats) error
	ListDenomStats() ([]*DenomStats, error)
	GetGeneralStats() (*GeneralStats, error)
	SaveGeneralStats(gs *GeneralStats) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository 创建统计仓储
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// WithTx 返回绑定到事务的仓储
func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

// CreateDenomStats 创建计价单位统计
func (r *repository) CreateDenomStats(ds *DenomStats) error {
	return r.db.Create(ds).Error
}

// GetDenomStats 获取计价单位统计
func (r *repository) GetDenomStats(denom string) (*DenomStats, error) {
	var ds DenomStats
	if err := r.db.Where("denom = ?", denom).First(&ds).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &ds, nil
}

// SaveDenomStats 保存计价单位统计
func (r *repository) SaveDenomStats(ds *DenomStats) error {
	return r.db.Save(ds).Error
}

// ListDenomStats 列出全部计价单位统计
func (r *repository) ListDenomStats() ([]*DenomStats, error) {
	var list []*DenomStats
	if err := r.db.Order("denom ASC").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

// GetGeneralStats 获取全局统计
func (r *repository) GetGeneralStats() (*GeneralStats, error) {
	var gs GeneralStats
	if err := r.db.First(&gs).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &gs, nil
}

// SaveGeneralStats 保存全局统计
func (r *repository) SaveGeneralStats(gs *GeneralStats) error {
	return r.db.Save(gs).Error
}
