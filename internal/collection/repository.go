package collection

import (
	"errors"

	"gorm.io/gorm"
)

// Repository 集合仓储接口
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateInfo(info *CollectionInfo) error
	GetInfo(address string) (*CollectionInfo, error)
	ListInfo() ([]*CollectionInfo, error)
	CreateDenomStats(cds *CollectionDenomStats) error
	GetDenomStats(collection, denom string) (*CollectionDenomStats, error)
	SaveDenomStats(cds *CollectionDenomStats) error
	ListDenomStats(collection string) ([]*CollectionDenomStats, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository 创建集合仓储
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

// CreateInfo 登记集合
func (r *repository) CreateInfo(info *CollectionInfo) error {
	return r.db.Create(info).Error
}

// GetInfo 获取集合
func (r *repository) GetInfo(address string) (*CollectionInfo, error) {
	var info CollectionInfo
	if err := r.db.Where("address = ?", address).First(&info).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &info, nil
}

// ListInfo 列出全部集合
func (r *repository) ListInfo() ([]*CollectionInfo, error) {
	var infos []*CollectionInfo
	if err := r.db.Order("id ASC").Find(&infos).Error; err != nil {
		return nil, err
	}
	return infos, nil
}

// CreateDenomStats 创建集合计价单位统计
func (r *repository) CreateDenomStats(cds *CollectionDenomStats) error {
	return r.db.Create(cds).Error
}

// GetDenomStats 获取集合计价单位统计
func (r *repository) GetDenomStats(collection, denom string) (*CollectionDenomStats, error) {
	var cds CollectionDenomStats
	if err := r.db.Where("collection = ? AND denom = ?", collection, denom).First(&cds).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &cds, nil
}

// SaveDenomStats 保存集合计价单位统计
func (r *repository) SaveDenomStats(cds *CollectionDenomStats) error {
	return r.db.Save(cds).Error
}

// ListDenomStats 列出集合的全部计价单位统计
func (r *repository) ListDenomStats(collection string) ([]*CollectionDenomStats, error) {
	var list []*CollectionDenomStats
	if err := r.db.Where("collection = ?", collection).Order("denom ASC").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}
