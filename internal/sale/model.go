package sale

import (
	"time"

	"github.com/shopspring/decimal"
)

// Sale 在售挂单。每个token同一时刻至多一条。
type Sale struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Collection string    `gorm:"type:varchar(255);uniqueIndex:idx_sale_collection_token;not null" json:"collection"`
	TokenID    string    `gorm:"type:varchar(100);uniqueIndex:idx_sale_collection_token;not null" json:"token_id"`
	Seller     string    `gorm:"type:varchar(255);index;not null" json:"seller"`
	PriceValue string    `gorm:"type:decimal(36,18);not null" json:"price_value"`
	PriceDenom string    `gorm:"type:varchar(20);index;not null" json:"price_denom"`
	Expiration time.Time `gorm:"index;not null" json:"expiration"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// 价格与有效期边界
var (
	MinPrice = decimal.NewFromInt(10000)
	MaxPrice = decimal.New(1, 15)
)

const (
	MinExpirationSeconds = 86400    // 1天
	MaxExpirationSeconds = 15552000 // 180天

	// SweepBatchSize 单次清理的过期挂单上限，保证调用成本与积压量无关
	SweepBatchSize = 25
)

// TableName 表名
func (Sale) TableName() string {
	return "sales"
}
