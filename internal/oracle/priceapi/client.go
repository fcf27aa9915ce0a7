package priceapi

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// Client 价格预言机HTTP客户端
type Client struct {
	url        string
	httpClient *http.Client
}

// NewClient 创建价格预言机客户端
func NewClient(baseURL string) *Client {
	return &Client{
		url:        strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

type priceResponse struct {
	UsdcValue string `json:"usdc_value"`
}

// UsdcValue 查询USDC等值价格
func (c *Client) UsdcValue(amount decimal.Decimal, denom string) (decimal.Decimal, error) {
	path := fmt.Sprintf("/v1/price?amount=%s&denom=%s", amount.String(), url.QueryEscape(denom))

	resp, err := c.httpClient.Get(c.url + path)
	if err != nil {
		return decimal.Zero, errors.Wrap(err, "query price oracle")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decimal.Zero, errors.Errorf("price oracle returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return decimal.Zero, errors.Wrap(err, "read price oracle response")
	}

	var pr priceResponse
	if err := json.Unmarshal(body, &pr); err != nil {
		return decimal.Zero, errors.Wrap(err, "decode price oracle response")
	}

	value, err := decimal.NewFromString(pr.UsdcValue)
	if err != nil {
		return decimal.Zero, errors.Wrapf(err, "invalid usdc value %q", pr.UsdcValue)
	}
	return value, nil
}
