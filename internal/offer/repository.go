package offer

import (
	"errors"

	"gorm.io/gorm"
)

// Repository 报价仓储接口
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(o *Offer) error
	Get(collection, tokenID, offerer string) (*Offer, error)
	Delete(collection, tokenID, offerer string) error
	ListByToken(collection, tokenID string) ([]*Offer, error)
	ListByOfferer(offerer string, page, size int) ([]*Offer, int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository 创建报价仓储
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

// Create 创建报价
func (r *repository) Create(o *Offer) error {
	return r.db.Create(o).Error
}

// Get 获取报价
func (r *repository) Get(collection, tokenID, offerer string) (*Offer, error) {
	var o Offer
	err := r.db.Where("collection = ? AND token_id = ? AND offerer = ?", collection, tokenID, offerer).
		First(&o).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &o, nil
}

// Delete 删除报价
func (r *repository) Delete(collection, tokenID, offerer string) error {
	return r.db.Where("collection = ? AND token_id = ? AND offerer = ?", collection, tokenID, offerer).
		Delete(&Offer{}).Error
}

// ListByToken 列出某token的全部在册报价
func (r *repository) ListByToken(collection, tokenID string) ([]*Offer, error) {
	var offers []*Offer
	err := r.db.Where("collection = ? AND token_id = ?", collection, tokenID).
		Order("created_at ASC").Find(&offers).Error
	if err != nil {
		return nil, err
	}
	return offers, nil
}

// ListByOfferer 分页列出某地址发出的报价
func (r *repository) ListByOfferer(offerer string, page, size int) ([]*Offer, int64, error) {
	var offers []*Offer
	var total int64

	query := r.db.Model(&Offer{}).Where("offerer = ?", offerer)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if page < 1 {
		page = 1
	}
	if size < 1 || size > 100 {
		size = 20
	}
	if err := query.Order("id DESC").Offset((page - 1) * size).Limit(size).Find(&offers).Error; err != nil {
		return nil, 0, err
	}
	return offers, total, nil
}
