package evm

import (
	"context"
	"math/big"
	"time"

	"nft-marketplace/internal/oracle"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/pkg/errors"
)

// ERC721方法选择器
const (
	selectorOwnerOf     = "6352211e" // ownerOf(uint256)
	selectorName        = "06fdde03" // name()
	selectorTotalSupply = "18160ddd" // totalSupply()
)

// Client EVM链上NFT合约的只读客户端
type Client struct {
	client  *ethclient.Client
	chainID *big.Int
	timeout time.Duration
}

// NewClient 创建EVM客户端
func NewClient(rpcURL string, chainID int64) (*Client, error) {
	client, err := ethclient.Dial(rpcURL)
	if err != nil {
		return nil, errors.Wrap(err, "dial evm rpc")
	}

	return &Client{
		client:  client,
		chainID: big.NewInt(chainID),
		timeout: 10 * time.Second,
	}, nil
}

func (c *Client) call(contract string, data []byte) ([]byte, error) {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	addr := common.HexToAddress(contract)
	msg := ethereum.CallMsg{
		To:   &addr,
		Data: data,
	}
	return c.client.CallContract(ctx, msg, nil)
}

// OwnerOf 查询token持有人
func (c *Client) OwnerOf(collection, tokenID string) (string, error) {
	id, ok := new(big.Int).SetString(tokenID, 10)
	if !ok {
		return "", errors.Errorf("invalid token id: %s", tokenID)
	}

	data := append(common.Hex2Bytes(selectorOwnerOf), common.LeftPadBytes(id.Bytes(), 32)...)
	result, err := c.call(collection, data)
	if err != nil {
		return "", errors.Wrap(err, "call ownerOf")
	}
	if len(result) < 32 {
		return "", errors.Errorf("short ownerOf response: %d bytes", len(result))
	}

	return common.BytesToAddress(result[12:32]).Hex(), nil
}

// ContractInfo 查询合约元信息
func (c *Client) ContractInfo(collection string) (*oracle.ContractInfo, error) {
	result, err := c.call(collection, common.Hex2Bytes(selectorName))
	if err != nil {
		return nil, errors.Wrap(err, "call name")
	}

	name, err := decodeString(result)
	if err != nil {
		return nil, err
	}
	return &oracle.ContractInfo{Name: name}, nil
}

// NumTokens 查询已铸造token数量
func (c *Client) NumTokens(collection string) (uint64, error) {
	result, err := c.call(collection, common.Hex2Bytes(selectorTotalSupply))
	if err != nil {
		return 0, errors.Wrap(err, "call totalSupply")
	}
	if len(result) < 32 {
		return 0, errors.Errorf("short totalSupply response: %d bytes", len(result))
	}

	return new(big.Int).SetBytes(result[:32]).Uint64(), nil
}

// decodeString 解码ABI编码的动态string返回值（offset + length + data）
func decodeString(result []byte) (string, error) {
	if len(result) < 64 {
		return "", errors.Errorf("short string response: %d bytes", len(result))
	}
	offset := new(big.Int).SetBytes(result[:32]).Uint64()
	if offset+32 > uint64(len(result)) {
		return "", errors.New("string offset out of range")
	}
	length := new(big.Int).SetBytes(result[offset : offset+32]).Uint64()
	if offset+32+length > uint64(len(result)) {
		return "", errors.New("string length out of range")
	}
	return string(result[offset+32 : offset+32+length]), nil
}
