package reward

import (
	"time"
)

// RewardSystem 奖励系统配置与累计发放量（单行）
type RewardSystem struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	RewardToken      string    `gorm:"type:varchar(255);not null" json:"reward_token_address"`
	TokensPerUsdc    string    `gorm:"type:decimal(36,18);not null" json:"reward_tokens_per_1_usdc_volume"`
	TotalDistributed string    `gorm:"type:decimal(36,18);default:0" json:"total_reward_tokens_distributed"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// VipPerk 单个VIP等级的权益配置。初始化要求等级1..3各一条。
type VipPerk struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	Level          int       `gorm:"uniqueIndex;not null" json:"level"`
	Price          string    `gorm:"type:decimal(36,18);not null" json:"price"`
	FeeDiscountBps int       `gorm:"default:0" json:"fee_discount_bps"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Payout 待发放的奖励代币转账指令。账本只记录欠付金额，
// 实际转账由worker派发给奖励代币合约。
type Payout struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	UUID         string     `gorm:"type:varchar(36);uniqueIndex;not null" json:"uuid"`
	Recipient    string     `gorm:"type:varchar(255);index;not null" json:"recipient"`
	RewardToken  string     `gorm:"type:varchar(255);not null" json:"reward_token"`
	Amount       string     `gorm:"type:decimal(36,18);not null" json:"amount"`
	Status       int        `gorm:"type:smallint;default:0;index" json:"status"` // 0=pending, 1=dispatched
	CreatedAt    time.Time  `json:"created_at"`
	DispatchedAt *time.Time `json:"dispatched_at"`
}

// Payout状态
const (
	PayoutStatusPending    = 0
	PayoutStatusDispatched = 1
)

// TableName 表名
func (RewardSystem) TableName() string {
	return "reward_system"
}

func (VipPerk) TableName() string {
	return "vip_perks"
}

func (Payout) TableName() string {
	return "reward_payouts"
}
