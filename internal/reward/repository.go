package reward

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository 奖励仓储接口
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	GetSystem() (*RewardSystem, error)
	SaveSystem(sys *RewardSystem) error
	ReplacePerks(perks []*VipPerk) error
	GetPerk(level int) (*VipPerk, error)
	ListPerks() ([]*VipPerk, error)
	CreatePayout(p *Payout) error
	ListPendingPayouts(limit int) ([]*Payout, error)
	MarkDispatched(id uint) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository 创建奖励仓储
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

// GetSystem 获取奖励系统
func (r *repository) GetSystem() (*RewardSystem, error) {
	var sys RewardSystem
	if err := r.db.First(&sys).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &sys, nil
}

// SaveSystem 保存奖励系统
func (r *repository) SaveSystem(sys *RewardSystem) error {
	return r.db.Save(sys).Error
}

// ReplacePerks 整体替换权益配置
func (r *repository) ReplacePerks(perks []*VipPerk) error {
	if err := r.db.Where("1 = 1").Delete(&VipPerk{}).Error; err != nil {
		return err
	}
	return r.db.Create(perks).Error
}

// GetPerk 获取指定等级的权益
func (r *repository) GetPerk(level int) (*VipPerk, error) {
	var perk VipPerk
	if err := r.db.Where("level = ?", level).First(&perk).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &perk, nil
}

// ListPerks 列出全部权益
func (r *repository) ListPerks() ([]*VipPerk, error) {
	var perks []*VipPerk
	if err := r.db.Order("level ASC").Find(&perks).Error; err != nil {
		return nil, err
	}
	return perks, nil
}

// CreatePayout 创建转账指令
func (r *repository) CreatePayout(p *Payout) error {
	if p.UUID == "" {
		p.UUID = uuid.New().String()
	}
	return r.db.Create(p).Error
}

// ListPendingPayouts 列出待派发的转账指令
func (r *repository) ListPendingPayouts(limit int) ([]*Payout, error) {
	var payouts []*Payout
	if err := r.db.Where("status = ?", PayoutStatusPending).
		Order("id ASC").Limit(limit).Find(&payouts).Error; err != nil {
		return nil, err
	}
	return payouts, nil
}

// MarkDispatched 标记指令已派发
func (r *repository) MarkDispatched(id uint) error {
	now := time.Now()
	return r.db.Model(&Payout{}).Where("id = ?", id).Updates(map[string]interface{}{
		"status":        PayoutStatusDispatched,
		"dispatched_at": &now,
	}).Error
}
