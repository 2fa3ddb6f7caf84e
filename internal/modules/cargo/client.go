package cargo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// DefaultTimeout bounds a single gateway call.
const DefaultTimeout = 30 * time.Second

var _ Gateway = (*Client)(nil)

// Client implements Gateway using JSON-RPC 2.0 over HTTP. Calls are never
// retried; a failed call fails the caller.
type Client struct {
	endpoint  string
	client    *http.Client
	requestID atomic.Uint64
}

// ClientOption configures Client.
type ClientOption func(*Client)

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.client.Timeout = d
	}
}

// WithHTTPClient sets a custom http.Client.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) {
		c.client = client
	}
}

// NewClient creates a gateway client for the given endpoint.
func NewClient(endpoint string, opts ...ClientOption) *Client {
	c := &Client{
		endpoint: endpoint,
		client:   &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type rpcRequest struct {
	JSONRPC string        `json:"jsonrpc"`
	ID      uint64        `json:"id"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params,omitempty"`
}

type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      uint64          `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *RPCError       `json:"error,omitempty"`
}

// RPCError is an error reported by the gateway itself.
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("cargo rpc error %d: %s", e.Code, e.Message)
}

func (c *Client) call(ctx context.Context, method string, params []interface{}, result interface{}) error {
	body, err := json.Marshal(rpcRequest{
		JSONRPC: "2.0",
		ID:      c.requestID.Add(1),
		Method:  method,
		Params:  params,
	})
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s: http request: %w", method, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%s: read response: %w", method, err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s: unexpected status %d: %s", method, resp.StatusCode, string(respBody))
	}

	var rpcResp rpcResponse
	if err := json.Unmarshal(respBody, &rpcResp); err != nil {
		return fmt.Errorf("%s: unmarshal response: %w", method, err)
	}
	if rpcResp.Error != nil {
		return rpcResp.Error
	}
	if result != nil && rpcResp.Result != nil {
		if err := json.Unmarshal(rpcResp.Result, result); err != nil {
			return fmt.Errorf("%s: unmarshal result: %w", method, err)
		}
	}
	return nil
}

func (c *Client) Init(ctx context.Context, cfg InitConfig) error {
	return c.call(ctx, "init", []interface{}{cfg}, nil)
}

func (c *Client) Enable(ctx context.Context) (bool, error) {
	var enabled bool
	if err := c.call(ctx, "enable", nil, &enabled); err != nil {
		return false, err
	}
	return enabled, nil
}

func (c *Client) CrateVendors(ctx context.Context, crateID string) (*VendorsResult, error) {
	var res VendorsResult
	if err := c.call(ctx, "getCrateVendors", []interface{}{crateID}, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) VendorTokenContracts(ctx context.Context, vendorID string) (*TokenContractsResult, error) {
	var res TokenContractsResult
	if err := c.call(ctx, "getVendorTokenContracts", []interface{}{vendorID}, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) ContractResaleItems(ctx context.Context, contractIDs []string) (*ResaleItemsResult, error) {
	var res ResaleItemsResult
	if err := c.call(ctx, "getContractResaleItems", []interface{}{contractIDs}, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) OwnedTokenContractIDs(ctx context.Context, owner common.Address) ([]string, error) {
	var ids []string
	if err := c.call(ctx, "getOwnedCargoTokenContractIds", []interface{}{owner.Hex()}, &ids); err != nil {
		return nil, err
	}
	return ids, nil
}

func (c *Client) OwnedTokenIDs(ctx context.Context, owner common.Address, contractID string) ([]string, error) {
	var ids []string
	params := []interface{}{contractID, owner.Hex()}
	if err := c.call(ctx, "getOwnedTokenIdsByCargoTokenContractId", params, &ids); err != nil {
		return nil, err
	}
	return ids, nil
}

func (c *Client) TokenContract(ctx context.Context, contractID string) (*TokenContractResult, error) {
	var res TokenContractResult
	if err := c.call(ctx, "getTokenContractById", []interface{}{contractID}, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) TokenMetadata(ctx context.Context, tokenAddress common.Address, tokenID string) (*MetadataResult, error) {
	var res MetadataResult
	params := []interface{}{tokenAddress.Hex(), tokenID}
	if err := c.call(ctx, "getTokenMetadata", params, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) PurchaseResaleToken(ctx context.Context, resaleItemID string, price Wei) (string, error) {
	var txHash string
	params := []interface{}{resaleItemID, string(price)}
	if err := c.call(ctx, "purchaseResaleToken", params, &txHash); err != nil {
		return "", err
	}
	return txHash, nil
}
