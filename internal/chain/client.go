package chain

import (
	"context"

	"github.com/oadtz/eth-pepe-bot/internal/interfaces"
)

// Client is the resilient Chain implementation: every read goes through the
// pool's rotation and retry loop.
type Client struct {
	pool     *Pool
	pairPool string
}

var _ interfaces.Chain = (*Client)(nil)

func NewClient(pool *Pool, pairPoolAddress string) *Client {
	return &Client{pool: pool, pairPool: pairPoolAddress}
}

// Pool exposes the underlying endpoint pool for bootstrap wiring.
func (c *Client) Pool() *Pool { return c.pool }

func (c *Client) BlockNumber(ctx context.Context) (uint64, error) {
	var out uint64
	err := c.pool.Call(ctx, "eth_blockNumber", func(ctx context.Context, n Node) error {
		v, err := n.BlockNumber(ctx)
		if err != nil {
			return err
		}
		out = v
		return nil
	})
	return out, err
}

func (c *Client) PoolPrice(ctx context.Context, block uint64) (float64, error) {
	var out float64
	err := c.pool.Call(ctx, "slot0", func(ctx context.Context, n Node) error {
		v, err := n.Slot0Price(ctx, c.pairPool, block)
		if err != nil {
			return err
		}
		out = v
		return nil
	})
	return out, err
}

func (c *Client) BlockTime(ctx context.Context, block uint64) (int64, error) {
	var out int64
	err := c.pool.Call(ctx, "eth_getBlockByNumber", func(ctx context.Context, n Node) error {
		v, err := n.BlockTime(ctx, block)
		if err != nil {
			return err
		}
		out = v
		return nil
	})
	return out, err
}

func (c *Client) GasPriceGwei(ctx context.Context) (float64, error) {
	var out float64
	err := c.pool.Call(ctx, "eth_gasPrice", func(ctx context.Context, n Node) error {
		v, err := n.GasPriceGwei(ctx)
		if err != nil {
			return err
		}
		out = v
		return nil
	})
	return out, err
}

func (c *Client) BaseBalance(ctx context.Context, owner string) (float64, error) {
	var out float64
	err := c.pool.Call(ctx, "eth_getBalance", func(ctx context.Context, n Node) error {
		v, err := n.EthBalance(ctx, owner)
		if err != nil {
			return err
		}
		out = v
		return nil
	})
	return out, err
}

func (c *Client) TokenBalance(ctx context.Context, token, owner string) (float64, error) {
	var out float64
	err := c.pool.Call(ctx, "balanceOf", func(ctx context.Context, n Node) error {
		v, err := n.TokenBalance(ctx, token, owner)
		if err != nil {
			return err
		}
		out = v
		return nil
	})
	return out, err
}

func (c *Client) ResetFailed() {
	c.pool.ResetFailed()
}
