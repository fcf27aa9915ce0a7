package profile

import (
	"errors"

	"gorm.io/gorm"
)

// Repository 档案仓储接口
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(p *Profile) error
	Get(address string) (*Profile, error)
	SetVipLevel(address string, level VipLevel) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository 创建档案仓储
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

// Create 创建档案
func (r *repository) Create(p *Profile) error {
	return r.db.Create(p).Error
}

// Get 获取档案
func (r *repository) Get(address string) (*Profile, error) {
	var p Profile
	if err := r.db.Where("address = ?", address).First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

// SetVipLevel 更新VIP等级
func (r *repository) SetVipLevel(address string, level VipLevel) error {
	return r.db.Model(&Profile{}).
		Where("address = ?", address).
		Update("vip_level", level).Error
}
