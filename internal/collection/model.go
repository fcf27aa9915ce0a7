package collection

import (
	"time"
)

// CollectionInfo 已准入上架的NFT集合。注册后不再删除。
type CollectionInfo struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Address      string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"address"`
	CodeID       uint64    `gorm:"not null" json:"code_id"`
	ContractType string    `gorm:"type:varchar(50);not null" json:"contract_type"`
	CreatedAt    time.Time `json:"created_at"`
}

// CollectionDenomStats 集合在单一计价单位下的交易聚合。
// 注册集合时为每个准入计价单位各建一行。
type CollectionDenomStats struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	Collection     string    `gorm:"type:varchar(255);uniqueIndex:idx_collection_denom;not null" json:"collection"`
	Denom          string    `gorm:"type:varchar(20);uniqueIndex:idx_collection_denom;not null" json:"denom"`
	Name           string    `gorm:"type:varchar(255)" json:"name"`
	NftsForSale    uint64    `gorm:"default:0" json:"nfts_for_sale"`
	RealizedTrades uint64    `gorm:"default:0" json:"realized_trades"`
	TotalVolume    string    `gorm:"type:decimal(36,18);default:0" json:"total_volume"`
	CurrentFloor   string    `gorm:"type:decimal(36,18);default:0" json:"current_floor"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// TableName 表名
func (CollectionInfo) TableName() string {
	return "collection_info"
}

func (CollectionDenomStats) TableName() string {
	return "collection_denom_stats"
}
