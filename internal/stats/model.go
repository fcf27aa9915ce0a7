package stats

import (
	"time"
)

// DenomStats 单一计价单位的全局计数器
type DenomStats struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	Denom         string    `gorm:"type:varchar(20);uniqueIndex;not null" json:"denom"`
	NftsForSale   uint64    `gorm:"default:0" json:"nfts_for_sale"`
	RealizedSales uint64    `gorm:"default:0" json:"realized_sales_counter"`
	TotalVolume   string    `gorm:"type:decimal(36,18);default:0" json:"total_realized_sales_volume"`
	TotalFees     string    `gorm:"type:decimal(36,18);default:0" json:"total_marketplace_fees"`
	FeesToClaim   string    `gorm:"type:decimal(36,18);default:0" json:"marketplace_fees_to_claim"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// GeneralStats 全局聚合统计（单行）。榜单与环形列表以JSON列持久化。
type GeneralStats struct {
	ID                    uint      `gorm:"primaryKey" json:"id"`
	LastCollectionAdded   string    `gorm:"type:varchar(255)" json:"last_collection_added"`
	LastCollectionsTraded string    `gorm:"type:text" json:"last_collections_traded"`
	Top10VolumeUsdc       string    `gorm:"type:text" json:"top_10_volume_usdc"`
	LowestVolumeUsdc      string    `gorm:"type:decimal(36,18);default:0" json:"lowest_volume_usdc"`
	UpdatedAt             time.Time `json:"updated_at"`
}

// VolumeEntry 榜单条目
type VolumeEntry struct {
	Collection string `json:"collection"`
	VolumeUsdc string `json:"volume_usdc"`
}

// TableName 表名
func (DenomStats) TableName() string {
	return "denom_stats"
}

func (GeneralStats) TableName() string {
	return "general_stats"
}
