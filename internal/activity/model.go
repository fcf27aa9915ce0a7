package activity

import (
	"time"
)

// Activity 市场事件记录，每个成功的状态迁移追加一条
type Activity struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UUID        string    `gorm:"type:varchar(36);uniqueIndex;not null" json:"uuid"`
	Type        string    `gorm:"type:varchar(30);index;not null" json:"type"`
	Collection  string    `gorm:"type:varchar(255);index" json:"collection"`
	TokenID     string    `gorm:"type:varchar(100);index" json:"token_id"`
	FromAddress string    `gorm:"type:varchar(255);index" json:"from_address"`
	ToAddress   string    `gorm:"type:varchar(255)" json:"to_address"`
	PriceValue  string    `gorm:"type:decimal(36,18)" json:"price_value"`
	PriceDenom  string    `gorm:"type:varchar(20)" json:"price_denom"`
	CreatedAt   time.Time `gorm:"index" json:"created_at"`
}

// 事件类型常量
const (
	TypeList        = "list"
	TypeUpdate      = "update_listing"
	TypeCancel      = "cancel_listing"
	TypeBuy         = "buy"
	TypeMakeOffer   = "make_offer"
	TypeCancelOffer = "cancel_offer"
	TypeAcceptOffer = "accept_offer"
	TypeRejectOffer = "reject_offer"
	TypeLevelUp     = "level_up"
)

// TableName 表名
func (Activity) TableName() string {
	return "activities"
}
