package market

import (
	"errors"

	"gorm.io/gorm"
)

// Repository 配置仓储接口
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(cfg *Config) error
	Get() (*Config, error)
	Save(cfg *Config) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository 创建配置仓储
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

// Create 写入配置
func (r *repository) Create(cfg *Config) error {
	return r.db.Create(cfg).Error
}

// Get 读取配置
func (r *repository) Get() (*Config, error) {
	var cfg Config
	if err := r.db.First(&cfg).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &cfg, nil
}

// Save 保存配置
func (r *repository) Save(cfg *Config) error {
	return r.db.Save(cfg).Error
}
