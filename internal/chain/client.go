// Package chain talks to an Ethereum-compatible JSON-RPC endpoint for the
// custody agent. When no endpoint is reachable the Simulator stands in with
// deterministic values.
package chain

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

// Balance is a wallet balance snapshot.
type Balance struct {
	Address    string    `json:"address"`
	BalanceWei string    `json:"balance_wei"`
	BalanceETH float64   `json:"balance_eth"`
	Simulated  bool      `json:"simulated,omitempty"`
	CheckedAt  time.Time `json:"checked_at"`
}

// GasPrices is a three-tier gas price estimate in gwei.
type GasPrices struct {
	Slow      float64   `json:"slow"`
	Average   float64   `json:"average"`
	Fast      float64   `json:"fast"`
	Unit      string    `json:"unit"`
	Simulated bool      `json:"simulated,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TxSubmission is the result of relaying a signed transaction.
type TxSubmission struct {
	Hash        string    `json:"tx_hash"`
	Simulated   bool      `json:"simulated,omitempty"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// Client reads chain state and relays signed transactions.
type Client interface {
	Balance(ctx context.Context, address string) (Balance, error)
	GasPrices(ctx context.Context) (GasPrices, error)
	SendRaw(ctx context.Context, rawTx string) (TxSubmission, error)
}

// RPCClient is a Client backed by a JSON-RPC endpoint.
type RPCClient struct {
	endpoint string
	http     *http.Client
}

var _ Client = (*RPCClient)(nil)

// NewRPC creates a client for the given JSON-RPC endpoint.
func NewRPC(endpoint string) *RPCClient {
	return &RPCClient{
		endpoint: endpoint,
		http:     &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *RPCClient) call(ctx context.Context, method string, params ...any) (gjson.Result, error) {
	body, err := json.Marshal(map[string]any{
		"jsonrpc": "2.0",
		"id":      1,
		"method":  method,
		"params":  params,
	})
	if err != nil {
		return gjson.Result{}, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return gjson.Result{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return gjson.Result{}, fmt.Errorf("execute %s: %w", method, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return gjson.Result{}, fmt.Errorf("read response: %w", err)
	}
	if errMsg := gjson.GetBytes(raw, "error.message"); errMsg.Exists() {
		return gjson.Result{}, fmt.Errorf("rpc %s: %s", method, errMsg.String())
	}
	return gjson.GetBytes(raw, "result"), nil
}

// Balance returns the ETH balance of address via eth_getBalance.
func (c *RPCClient) Balance(ctx context.Context, address string) (Balance, error) {
	result, err := c.call(ctx, "eth_getBalance", address, "latest")
	if err != nil {
		return Balance{}, err
	}

	wei, ok := parseHexBig(result.String())
	if !ok {
		return Balance{}, fmt.Errorf("unexpected balance result %q", result.String())
	}
	return Balance{
		Address:    address,
		BalanceWei: wei.String(),
		BalanceETH: weiToETH(wei),
		CheckedAt:  time.Now().UTC(),
	}, nil
}

// GasPrices derives slow/average/fast tiers from the latest block base fee.
func (c *RPCClient) GasPrices(ctx context.Context) (GasPrices, error) {
	result, err := c.call(ctx, "eth_getBlockByNumber", "latest", false)
	if err != nil {
		return GasPrices{}, err
	}

	baseFee, ok := parseHexBig(result.Get("baseFeePerGas").String())
	if !ok {
		return GasPrices{}, fmt.Errorf("block has no baseFeePerGas")
	}

	gwei := weiToGwei(baseFee)
	return GasPrices{
		Slow:      gwei,
		Average:   gwei * 1.5,
		Fast:      gwei * 2.0,
		Unit:      "gwei",
		UpdatedAt: time.Now().UTC(),
	}, nil
}

// SendRaw relays a signed transaction via eth_sendRawTransaction.
func (c *RPCClient) SendRaw(ctx context.Context, rawTx string) (TxSubmission, error) {
	result, err := c.call(ctx, "eth_sendRawTransaction", rawTx)
	if err != nil {
		return TxSubmission{}, err
	}

	hash := result.String()
	if !strings.HasPrefix(hash, "0x") {
		return TxSubmission{}, fmt.Errorf("unexpected send result %q", hash)
	}
	return TxSubmission{
		Hash:        hash,
		SubmittedAt: time.Now().UTC(),
	}, nil
}

func parseHexBig(s string) (*big.Int, bool) {
	s = strings.TrimPrefix(s, "0x")
	if s == "" {
		return nil, false
	}
	return new(big.Int).SetString(s, 16)
}

func weiToETH(wei *big.Int) float64 {
	f, _ := new(big.Float).Quo(new(big.Float).SetInt(wei), big.NewFloat(1e18)).Float64()
	return f
}

func weiToGwei(wei *big.Int) float64 {
	f, _ := new(big.Float).Quo(new(big.Float).SetInt(wei), big.NewFloat(1e9)).Float64()
	return f
}

// Simulator is a Client returning fixed values, used when no endpoint is
// configured.
type Simulator struct{}

var _ Client = (*Simulator)(nil)

// Balance reports one ETH for any address.
func (Simulator) Balance(_ context.Context, address string) (Balance, error) {
	return Balance{
		Address:    address,
		BalanceWei: "1000000000000000000",
		BalanceETH: 1.0,
		Simulated:  true,
		CheckedAt:  time.Now().UTC(),
	}, nil
}

// SendRaw accepts any payload and returns a hash derived from it, so
// repeated submissions of the same transaction agree.
func (Simulator) SendRaw(_ context.Context, rawTx string) (TxSubmission, error) {
	sum := sha256.Sum256([]byte(rawTx))
	return TxSubmission{
		Hash:        "0x" + hex.EncodeToString(sum[:]),
		Simulated:   true,
		SubmittedAt: time.Now().UTC(),
	}, nil
}

// GasPrices reports fixed 20/30/50 gwei tiers.
func (Simulator) GasPrices(_ context.Context) (GasPrices, error) {
	return GasPrices{
		Slow:      20,
		Average:   30,
		Fast:      50,
		Unit:      "gwei",
		Simulated: true,
		UpdatedAt: time.Now().UTC(),
	}, nil
}
