package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"
	"time"

	"launchpool/internal/domain"
)

// Default configuration values.
const (
	DefaultTimeout     = 30 * time.Second
	DefaultMaxRetries  = 3
	DefaultRetryDelay  = 1 * time.Second
	DefaultMaxDelay    = 10 * time.Second
	DefaultBackoffMult = 2.0
)

// RPCClient implements TokenLedger against the token ledger service's
// HTTP JSON-RPC 2.0 endpoint. Balance reads are retried with exponential
// backoff; transfers are submitted exactly once, because a transfer that
// timed out may still have landed and a retry would double-spend.
type RPCClient struct {
	endpoint    string
	authority   string // pool custody account the service debits on transfer
	client      *http.Client
	maxRetries  int
	retryDelay  time.Duration
	maxDelay    time.Duration
	backoffMult float64
	requestID   atomic.Uint64
}

// ClientOption configures RPCClient.
type ClientOption func(*RPCClient)

// WithTimeout sets HTTP client timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *RPCClient) {
		c.client.Timeout = d
	}
}

// WithMaxRetries sets maximum retry attempts for balance reads.
func WithMaxRetries(n int) ClientOption {
	return func(c *RPCClient) {
		c.maxRetries = n
	}
}

// WithRetryDelay sets initial retry delay.
func WithRetryDelay(d time.Duration) ClientOption {
	return func(c *RPCClient) {
		c.retryDelay = d
	}
}

// WithHTTPClient sets custom http.Client.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *RPCClient) {
		c.client = client
	}
}

// NewRPCClient creates a ledger client debiting the given custody account.
func NewRPCClient(endpoint string, custody domain.Address, opts ...ClientOption) *RPCClient {
	c := &RPCClient{
		endpoint:    endpoint,
		authority:   custody.String(),
		client:      &http.Client{Timeout: DefaultTimeout},
		maxRetries:  DefaultMaxRetries,
		retryDelay:  DefaultRetryDelay,
		maxDelay:    DefaultMaxDelay,
		backoffMult: DefaultBackoffMult,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Compile-time interface check.
var _ TokenLedger = (*RPCClient)(nil)

// rpcRequest represents a JSON-RPC 2.0 request.
type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      uint64 `json:"id"`
	Method  string `json:"method"`
	Params  any    `json:"params,omitempty"`
}

// rpcResponse represents a JSON-RPC 2.0 response.
type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      uint64          `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *rpcError       `json:"error,omitempty"`
}

// rpcError represents a JSON-RPC 2.0 error.
type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *rpcError) Error() string {
	return fmt.Sprintf("RPC error %d: %s", e.Code, e.Message)
}

// balanceOfParams is the wire shape of the balanceOf call.
type balanceOfParams struct {
	Asset  string `json:"asset"`
	Holder string `json:"holder"`
}

// transferParams is the wire shape of the transfer call.
type transferParams struct {
	Asset  string `json:"asset"`
	From   string `json:"from"`
	To     string `json:"to"`
	Amount uint64 `json:"amount"`
}

// BalanceOf implements TokenLedger.
func (c *RPCClient) BalanceOf(ctx context.Context, asset domain.Asset, holder domain.Address) (uint64, error) {
	var result struct {
		Amount uint64 `json:"amount"`
	}
	params := balanceOfParams{Asset: asset.String(), Holder: holder.String()}
	if err := c.call(ctx, "balanceOf", params, &result, true); err != nil {
		return 0, fmt.Errorf("balanceOf: %w", err)
	}
	return result.Amount, nil
}

// Transfer implements TokenLedger. Submitted exactly once; any error is
// surfaced as ErrTransferRejected and the enclosing operation aborts.
func (c *RPCClient) Transfer(ctx context.Context, asset domain.Asset, to domain.Address, amount uint64) error {
	params := transferParams{Asset: asset.String(), From: c.authority, To: to.String(), Amount: amount}
	if err := c.call(ctx, "transfer", params, nil, false); err != nil {
		return fmt.Errorf("%w: %v", ErrTransferRejected, err)
	}
	return nil
}

// call performs a JSON-RPC call, with exponential-backoff retries when
// retry is true.
func (c *RPCClient) call(ctx context.Context, method string, params, result any, retry bool) error {
	reqID := c.requestID.Add(1)
	body, err := json.Marshal(rpcRequest{
		JSONRPC: "2.0",
		ID:      reqID,
		Method:  method,
		Params:  params,
	})
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	attempts := 1
	if retry {
		attempts = c.maxRetries + 1
	}
	delay := c.retryDelay
	var lastErr error

	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
			delay = time.Duration(float64(delay) * c.backoffMult)
			if delay > c.maxDelay {
				delay = c.maxDelay
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.client.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("http request: %w", err)
			continue
		}

		respBody, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("read response: %w", err)
			continue
		}

		if resp.StatusCode != http.StatusOK {
			lastErr = fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(respBody))
			continue
		}

		var rpcResp rpcResponse
		if err := json.Unmarshal(respBody, &rpcResp); err != nil {
			lastErr = fmt.Errorf("unmarshal response: %w", err)
			continue
		}

		if rpcResp.Error != nil {
			// RPC errors are not retried
			return rpcResp.Error
		}

		if result != nil && rpcResp.Result != nil {
			if err := json.Unmarshal(rpcResp.Result, result); err != nil {
				return fmt.Errorf("unmarshal result: %w", err)
			}
		}

		return nil
	}

	return fmt.Errorf("max retries exceeded: %w", lastErr)
}
