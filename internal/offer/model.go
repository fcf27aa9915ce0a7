package offer

import (
	"time"
)

// Offer 在册报价。每个token每个报价人同一时刻至多一条。
type Offer struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Collection string    `gorm:"type:varchar(255);uniqueIndex:idx_offer_collection_token_offerer;not null" json:"collection"`
	TokenID    string    `gorm:"type:varchar(100);uniqueIndex:idx_offer_collection_token_offerer;not null" json:"token_id"`
	Offerer    string    `gorm:"type:varchar(255);uniqueIndex:idx_offer_collection_token_offerer;not null" json:"offerer"`
	PriceValue string    `gorm:"type:decimal(36,18);not null" json:"price_value"`
	PriceDenom string    `gorm:"type:varchar(20);index;not null" json:"price_denom"`
	Expiration time.Time `gorm:"index;not null" json:"expiration"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// TableName 表名
func (Offer) TableName() string {
	return "offers"
}
