package history

import (
	"context"
	"math/rand"
	"sort"
	"time"

	"github.com/oadtz/eth-pepe-bot/internal/interfaces"
	"github.com/oadtz/eth-pepe-bot/internal/logger"
	"github.com/oadtz/eth-pepe-bot/internal/types"
)

// Config bounds the cached window.
type Config struct {
	Hours          int
	BlocksPerHour  int
	MinRealSamples int
	BaselineVolume float64
}

// Cache maintains the bounded, time-ordered price window for the pair.
// Cold start bootstraps from a bulk backward scan (or synthetic generation),
// after which every cycle appends exactly one freshly priced sample and
// prunes past the retention horizon.
type Cache struct {
	chain        interfaces.Chain
	cfg          Config
	samples      []types.PriceSample
	bootstrapped bool
}

func New(chain interfaces.Chain, cfg Config) *Cache {
	if cfg.Hours <= 0 {
		cfg.Hours = 24
	}
	if cfg.BlocksPerHour <= 0 {
		cfg.BlocksPerHour = 240
	}
	if cfg.MinRealSamples <= 0 {
		cfg.MinRealSamples = 5
	}
	if cfg.BaselineVolume <= 0 {
		cfg.BaselineVolume = 500000
	}
	return &Cache{chain: chain, cfg: cfg}
}

// Window returns the current price series ending at a sample priced at
// currentPrice. The caller must pass a freshly fetched price; stale prices
// are never reused.
func (c *Cache) Window(ctx context.Context, currentPrice float64) ([]types.PriceSample, error) {
	if !c.bootstrapped {
		c.bootstrap(ctx, currentPrice)
		c.bootstrapped = true
	} else {
		c.appendFresh(currentPrice)
	}
	c.prune(time.Now().Unix())

	out := make([]types.PriceSample, len(c.samples))
	copy(out, c.samples)
	return out, nil
}

// Len returns the number of cached samples.
func (c *Cache) Len() int { return len(c.samples) }

func (c *Cache) bootstrap(ctx context.Context, currentPrice float64) {
	op := logger.StartOperation(ctx, "history.bootstrap", "hours", c.cfg.Hours)
	ctx = op.GetContext()

	samples := c.bulkFetch(ctx)
	if len(samples) < c.cfg.MinRealSamples {
		logger.Warn(ctx, "Not enough on-chain history, generating synthetic data",
			"fetched", len(samples), "required", c.cfg.MinRealSamples)
		samples = c.Synthesize(currentPrice, time.Now().Unix())
	}
	c.samples = samples
	op.End("samples", len(samples))
}

// bulkFetch scans backwards one sample per approximate hour. Individual
// block failures are skipped; the series may legitimately contain gaps.
func (c *Cache) bulkFetch(ctx context.Context) []types.PriceSample {
	head, err := c.chain.BlockNumber(ctx)
	if err != nil {
		logger.ErrorWithErr(ctx, "Cannot determine head block for history scan", err)
		return nil
	}

	samples := make([]types.PriceSample, 0, c.cfg.Hours)
	for i := 0; i < c.cfg.Hours; i++ {
		offset := uint64(i * c.cfg.BlocksPerHour)
		if offset >= head {
			logger.Info(ctx, "Reached genesis block, stopping historical scan", "fetched", len(samples))
			break
		}
		block := head - offset

		price, err := c.chain.PoolPrice(ctx, block)
		if err != nil {
			logger.Warn(ctx, "Skipping historical block", "block", block, "error", err)
			continue
		}
		ts, err := c.chain.BlockTime(ctx, block)
		if err != nil {
			logger.Warn(ctx, "Skipping block with unknown timestamp", "block", block, "error", err)
			continue
		}
		samples = append(samples, types.PriceSample{
			Ts:    ts,
			Close: price,
			Vol:   plausibleVolume(c.cfg.BaselineVolume),
		})
	}

	sort.Slice(samples, func(i, j int) bool { return samples[i].Ts < samples[j].Ts })
	return dedupe(samples)
}

// Synthesize produces Hours samples at 1-hour spacing, each within +/-1% of
// currentPrice, ending at now. Used when on-chain history is unavailable so
// the engine never blocks on data.
func (c *Cache) Synthesize(currentPrice float64, now int64) []types.PriceSample {
	samples := make([]types.PriceSample, 0, c.cfg.Hours)
	for i := 0; i < c.cfg.Hours; i++ {
		samples = append(samples, types.PriceSample{
			Ts:    now - int64(c.cfg.Hours-1-i)*3600,
			Close: currentPrice * (1 + (rand.Float64()-0.5)*0.02),
			Vol:   plausibleVolume(c.cfg.BaselineVolume),
		})
	}
	return samples
}

// appendFresh adds one sample at the current instant. Volume is synthetic,
// varied between 50% and 200% of the baseline.
func (c *Cache) appendFresh(price float64) {
	ts := time.Now().Unix()
	if n := len(c.samples); n > 0 && ts <= c.samples[n-1].Ts {
		ts = c.samples[n-1].Ts + 1
	}
	c.samples = append(c.samples, types.PriceSample{
		Ts:    ts,
		Close: price,
		Vol:   c.cfg.BaselineVolume * (0.5 + rand.Float64()*1.5),
	})
}

func (c *Cache) prune(now int64) {
	cutoff := now - int64(c.cfg.Hours)*3600
	i := sort.Search(len(c.samples), func(i int) bool { return c.samples[i].Ts >= cutoff })
	if i > 0 {
		c.samples = append(c.samples[:0], c.samples[i:]...)
	}
}

func dedupe(sorted []types.PriceSample) []types.PriceSample {
	out := sorted[:0]
	for i, s := range sorted {
		if i > 0 && s.Ts == sorted[i-1].Ts {
			continue
		}
		out = append(out, s)
	}
	return out
}

func plausibleVolume(baseline float64) float64 {
	return baseline * (0.5 + rand.Float64())
}
