package chain

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"strings"
	"time"
)

// Node is a single read-only endpoint. The pool rotates across nodes; each
// node keeps one long-lived HTTP client rather than dialing per call.
type Node interface {
	URL() string
	BlockNumber(ctx context.Context) (uint64, error)
	// Slot0Price returns the pool price at the given block (0 = latest),
	// decoded from the Uniswap V3 slot0 sqrtPriceX96.
	Slot0Price(ctx context.Context, pool string, block uint64) (float64, error)
	BlockTime(ctx context.Context, block uint64) (int64, error)
	GasPriceGwei(ctx context.Context) (float64, error)
	EthBalance(ctx context.Context, owner string) (float64, error)
	TokenBalance(ctx context.Context, token, owner string) (float64, error)
}

const (
	selBalanceOf = "0x70a08231" // balanceOf(address)
	selSlot0     = "0x3850c7bd" // slot0()
)

type rpcNode struct {
	url    string
	client *http.Client
	nextID uint64
}

// NewRPCNode builds a JSON-RPC node with a single reusable HTTP client.
func NewRPCNode(url string, timeout time.Duration) Node {
	return &rpcNode{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

func (n *rpcNode) URL() string { return n.url }

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
	ID      uint64 `json:"id"`
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *rpcError) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

func (n *rpcNode) call(ctx context.Context, method string, params ...any) (json.RawMessage, error) {
	n.nextID++
	if params == nil {
		params = []any{}
	}
	body, err := json.Marshal(rpcRequest{JSONRPC: "2.0", Method: method, Params: params, ID: n.nextID})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s request to %s failed: %w", method, n.url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s returned HTTP %d from %s", method, resp.StatusCode, n.url)
	}

	var out rpcResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decoding %s response: %w", method, err)
	}
	if out.Error != nil {
		return nil, out.Error
	}
	return out.Result, nil
}

func (n *rpcNode) callHexWord(ctx context.Context, method string, params ...any) (*big.Int, error) {
	raw, err := n.call(ctx, method, params...)
	if err != nil {
		return nil, err
	}
	var hex string
	if err := json.Unmarshal(raw, &hex); err != nil {
		return nil, err
	}
	return parseHexBig(hex)
}

func parseHexBig(hex string) (*big.Int, error) {
	s := strings.TrimPrefix(hex, "0x")
	if s == "" {
		return big.NewInt(0), nil
	}
	v, ok := new(big.Int).SetString(s, 16)
	if !ok {
		return nil, fmt.Errorf("malformed hex quantity %q", hex)
	}
	return v, nil
}

func blockTag(block uint64) string {
	if block == 0 {
		return "latest"
	}
	return fmt.Sprintf("0x%x", block)
}

func padAddress(addr string) string {
	a := strings.ToLower(strings.TrimPrefix(addr, "0x"))
	return strings.Repeat("0", 64-len(a)) + a
}

func (n *rpcNode) BlockNumber(ctx context.Context) (uint64, error) {
	v, err := n.callHexWord(ctx, "eth_blockNumber")
	if err != nil {
		return 0, err
	}
	return v.Uint64(), nil
}

func (n *rpcNode) GasPriceGwei(ctx context.Context) (float64, error) {
	wei, err := n.callHexWord(ctx, "eth_gasPrice")
	if err != nil {
		return 0, err
	}
	gwei, _ := new(big.Float).Quo(new(big.Float).SetInt(wei), big.NewFloat(1e9)).Float64()
	return gwei, nil
}

func (n *rpcNode) EthBalance(ctx context.Context, owner string) (float64, error) {
	wei, err := n.callHexWord(ctx, "eth_getBalance", owner, "latest")
	if err != nil {
		return 0, err
	}
	return weiToUnit(wei), nil
}

func (n *rpcNode) TokenBalance(ctx context.Context, token, owner string) (float64, error) {
	data := selBalanceOf + padAddress(owner)
	wei, err := n.callHexWord(ctx, "eth_call", map[string]string{"to": token, "data": data}, "latest")
	if err != nil {
		return 0, err
	}
	// Assumes 18 decimals, which holds for the WETH and PEPE contracts.
	return weiToUnit(wei), nil
}

func (n *rpcNode) Slot0Price(ctx context.Context, pool string, block uint64) (float64, error) {
	raw, err := n.call(ctx, "eth_call", map[string]string{"to": pool, "data": selSlot0}, blockTag(block))
	if err != nil {
		return 0, err
	}
	var hex string
	if err := json.Unmarshal(raw, &hex); err != nil {
		return 0, err
	}
	return decodeSlot0Price(hex)
}

func (n *rpcNode) BlockTime(ctx context.Context, block uint64) (int64, error) {
	raw, err := n.call(ctx, "eth_getBlockByNumber", blockTag(block), false)
	if err != nil {
		return 0, err
	}
	var blk struct {
		Timestamp string `json:"timestamp"`
	}
	if err := json.Unmarshal(raw, &blk); err != nil {
		return 0, err
	}
	ts, err := parseHexBig(blk.Timestamp)
	if err != nil {
		return 0, err
	}
	return ts.Int64(), nil
}

// decodeSlot0Price extracts sqrtPriceX96 (the first 32-byte word of the
// slot0 return data) and squares it out of Q64.96 fixed point:
// price = (sqrtPriceX96 / 2^96)^2, quoted as token1 per token0.
func decodeSlot0Price(hex string) (float64, error) {
	s := strings.TrimPrefix(hex, "0x")
	if len(s) < 64 {
		return 0, fmt.Errorf("slot0 return data too short: %d hex chars", len(s))
	}
	sqrtPriceX96, ok := new(big.Int).SetString(s[:64], 16)
	if !ok {
		return 0, fmt.Errorf("malformed sqrtPriceX96 word")
	}
	q96 := new(big.Float).SetInt(new(big.Int).Lsh(big.NewInt(1), 96))
	ratio := new(big.Float).Quo(new(big.Float).SetInt(sqrtPriceX96), q96)
	price, _ := new(big.Float).Mul(ratio, ratio).Float64()
	return price, nil
}

func weiToUnit(wei *big.Int) float64 {
	v, _ := new(big.Float).Quo(new(big.Float).SetInt(wei), big.NewFloat(1e18)).Float64()
	return v
}
