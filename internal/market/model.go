package market

import (
	"encoding/json"
	"time"
)

// Config 市场配置（单行）。实例化时写入一次，之后仅owner可变更。
type Config struct {
	ID                    uint      `gorm:"primaryKey" json:"id"`
	Enabled               bool      `gorm:"default:true" json:"enabled"`
	Owner                 string    `gorm:"type:varchar(255);not null" json:"owner"`
	Operator              string    `gorm:"type:varchar(255);not null" json:"operator"`
	FeePct                string    `gorm:"type:decimal(10,4);not null" json:"fee_pct"`
	AcceptedDenoms        string    `gorm:"type:text;not null" json:"accepted_denoms"`
	ListingFeeValue       string    `gorm:"type:decimal(36,18);not null" json:"listing_fee_value"`
	ListingFeeDenom       string    `gorm:"type:varchar(20);not null" json:"listing_fee_denom"`
	PriceOracleAddress    string    `gorm:"type:varchar(500)" json:"price_oracle_address"`
	AcceptedContractTypes string    `gorm:"type:text" json:"accepted_nft_contract_types"`
	UpdatedAt             time.Time `json:"updated_at"`
}

// ContractType 准入的NFT合约类型
type ContractType struct {
	CodeID       uint64 `json:"code_id"`
	ContractType string `json:"contract_type"`
}

// TableName 表名
func (Config) TableName() string {
	return "market_config"
}

// DenomList 解析已准入的计价单位列表
func (c *Config) DenomList() ([]string, error) {
	var denoms []string
	if err := json.Unmarshal([]byte(c.AcceptedDenoms), &denoms); err != nil {
		return nil, err
	}
	return denoms, nil
}

// DenomAccepted 计价单位是否准入
func (c *Config) DenomAccepted(denom string) bool {
	denoms, err := c.DenomList()
	if err != nil {
		return false
	}
	for _, d := range denoms {
		if d == denom {
			return true
		}
	}
	return false
}

// ContractTypes 解析准入的合约类型列表
func (c *Config) ContractTypes() ([]ContractType, error) {
	var types []ContractType
	if c.AcceptedContractTypes == "" {
		return types, nil
	}
	if err := json.Unmarshal([]byte(c.AcceptedContractTypes), &types); err != nil {
		return nil, err
	}
	return types, nil
}

// TypeAccepted 合约code id与类型是否在白名单内
func (c *Config) TypeAccepted(codeID uint64, contractType string) bool {
	types, err := c.ContractTypes()
	if err != nil {
		return false
	}
	for _, t := range types {
		if t.CodeID == codeID && t.ContractType == contractType {
			return true
		}
	}
	return false
}
