package bank

import (
	"errors"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Repository 余额仓储接口
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Credit(address, denom string, amount decimal.Decimal) error
	GetBalance(address, denom string) (decimal.Decimal, error)
	ListBalances(address string) ([]*Balance, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository 创建余额仓储
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

// Credit 增加余额，不存在则建行
func (r *repository) Credit(address, denom string, amount decimal.Decimal) error {
	var balance Balance
	err := r.db.Where("address = ? AND denom = ?", address, denom).First(&balance).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return r.db.Create(&Balance{
			Address:   address,
			Denom:     denom,
			Available: amount.String(),
		}).Error
	}
	if err != nil {
		return err
	}

	return r.db.Model(&Balance{}).
		Where("address = ? AND denom = ?", address, denom).
		Update("available", gorm.Expr("available + ?", amount.String())).Error
}

// GetBalance 查询余额
func (r *repository) GetBalance(address, denom string) (decimal.Decimal, error) {
	var balance Balance
	if err := r.db.Where("address = ? AND denom = ?", address, denom).First(&balance).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return decimal.Zero, nil
		}
		return decimal.Zero, err
	}
	return decimal.NewFromString(balance.Available)
}

// ListBalances 列出地址全部余额
func (r *repository) ListBalances(address string) ([]*Balance, error) {
	var balances []*Balance
	if err := r.db.Where("address = ?", address).Order("denom ASC").Find(&balances).Error; err != nil {
		return nil, err
	}
	return balances, nil
}
