package oracle

import "github.com/shopspring/decimal"

// ContractInfo NFT合约元信息
type ContractInfo struct {
	Name string `json:"name"`
}

// Ownership NFT所有权预言机。账本不持有NFT，所有权与供应量
// 都通过底层NFT合约查询。
type Ownership interface {
	// OwnerOf 查询token当前持有人
	OwnerOf(collection, tokenID string) (string, error)

	// ContractInfo 查询合约元信息
	ContractInfo(collection string) (*ContractInfo, error)

	// NumTokens 查询已铸造token数量
	NumTokens(collection string) (uint64, error)
}

// PriceSource 价格预言机，换算任意计价单位到USDC等值
type PriceSource interface {
	UsdcValue(amount decimal.Decimal, denom string) (decimal.Decimal, error)
}
