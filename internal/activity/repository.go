package activity

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository 事件仓储接口
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Record(a *Activity) error
	List(filter *ListFilter) ([]*Activity, int64, error)
}

// ListFilter 查询过滤条件
type ListFilter struct {
	Collection string
	TokenID    string
	Address    string
	Type       string
	Page       int
	PageSize   int
}

type repository struct {
	db *gorm.DB
}

// NewRepository 创建事件仓储
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

// Record 追加事件
func (r *repository) Record(a *Activity) error {
	if a.UUID == "" {
		a.UUID = uuid.New().String()
	}
	return r.db.Create(a).Error
}

// List 按条件分页查询事件
func (r *repository) List(filter *ListFilter) ([]*Activity, int64, error) {
	var activities []*Activity
	var total int64

	query := r.db.Model(&Activity{})
	if filter.Collection != "" {
		query = query.Where("collection = ?", filter.Collection)
	}
	if filter.TokenID != "" {
		query = query.Where("token_id = ?", filter.TokenID)
	}
	if filter.Address != "" {
		query = query.Where("from_address = ? OR to_address = ?", filter.Address, filter.Address)
	}
	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size < 1 || size > 100 {
		size = 20
	}

	if err := query.Order("id DESC").Offset((page - 1) * size).Limit(size).Find(&activities).Error; err != nil {
		return nil, 0, err
	}
	return activities, total, nil
}
