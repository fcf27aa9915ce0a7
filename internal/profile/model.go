package profile

import (
	"time"
)

// Profile 参与者档案。账本只引用其中的VIP等级；档案的其余部分
// （用户名、私信等）属于外部子系统。
type Profile struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Address   string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"address"`
	VipLevel  VipLevel  `gorm:"type:smallint;default:0" json:"vip_level"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// VipLevel VIP等级。档案不存在视为None；已建档从Level0起，
// 逐级升至终态Level3。
type VipLevel int

const (
	VipLevel0 VipLevel = 0
	VipLevel1 VipLevel = 1
	VipLevel2 VipLevel = 2
	VipLevel3 VipLevel = 3 // 终态
)

// TableName 表名
func (Profile) TableName() string {
	return "profiles"
}
