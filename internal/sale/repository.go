package sale

import (
	"database/sql"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Repository 挂单仓储接口
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(s *Sale) error
	Get(collection, tokenID string) (*Sale, error)
	Delete(collection, tokenID string) error
	MinPrice(collection, denom string) (decimal.Decimal, bool, error)
	FindExpired(denom string, now time.Time, limit int) ([]*Sale, error)
	DeleteByIDs(ids []uint) error
	ListByCollection(collection string, page, size int) ([]*Sale, int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository 创建挂单仓储
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

// Create 创建挂单
func (r *repository) Create(s *Sale) error {
	return r.db.Create(s).Error
}

// Get 获取挂单
func (r *repository) Get(collection, tokenID string) (*Sale, error) {
	var s Sale
	if err := r.db.Where("collection = ? AND token_id = ?", collection, tokenID).First(&s).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

// Delete 删除挂单
func (r *repository) Delete(collection, tokenID string) error {
	return r.db.Where("collection = ? AND token_id = ?", collection, tokenID).Delete(&Sale{}).Error
}

// MinPrice 剩余在售挂单的最低价；没有挂单时第二个返回值为false
func (r *repository) MinPrice(collection, denom string) (decimal.Decimal, bool, error) {
	var min sql.NullString
	err := r.db.Model(&Sale{}).
		Where("collection = ? AND price_denom = ?", collection, denom).
		Select("MIN(price_value)").
		Scan(&min).Error
	if err != nil {
		return decimal.Zero, false, err
	}
	if !min.Valid {
		return decimal.Zero, false, nil
	}
	value, err := decimal.NewFromString(min.String)
	if err != nil {
		return decimal.Zero, false, err
	}
	return value, true, nil
}

// FindExpired 按键升序取出至多limit条已过期挂单
func (r *repository) FindExpired(denom string, now time.Time, limit int) ([]*Sale, error) {
	var sales []*Sale
	err := r.db.Where("price_denom = ? AND expiration < ?", denom, now).
		Order("collection ASC, token_id ASC").
		Limit(limit).
		Find(&sales).Error
	if err != nil {
		return nil, err
	}
	return sales, nil
}

// DeleteByIDs 按主键批量删除
func (r *repository) DeleteByIDs(ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.Where("id IN ?", ids).Delete(&Sale{}).Error
}

// ListByCollection 分页列出集合的在售挂单
func (r *repository) ListByCollection(collection string, page, size int) ([]*Sale, int64, error) {
	var sales []*Sale
	var total int64

	query := r.db.Model(&Sale{}).Where("collection = ?", collection)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if page < 1 {
		page = 1
	}
	if size < 1 || size > 100 {
		size = 20
	}
	if err := query.Order("token_id ASC").Offset((page - 1) * size).Limit(size).Find(&sales).Error; err != nil {
		return nil, 0, err
	}
	return sales, total, nil
}
