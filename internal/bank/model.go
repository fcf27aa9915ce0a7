package bank

import (
	"time"
)

// Balance 内部余额账本。记录账本欠付各地址的金额（卖家所得、
// 平台方挂单费与已领取的佣金），实际转账由外部结算完成。
type Balance struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Address   string    `gorm:"type:varchar(255);uniqueIndex:idx_balance_addr_denom;not null" json:"address"`
	Denom     string    `gorm:"type:varchar(20);uniqueIndex:idx_balance_addr_denom;not null" json:"denom"`
	Available string    `gorm:"type:decimal(36,18);default:0" json:"available"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName 表名
func (Balance) TableName() string {
	return "balances"
}
