package history

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"
)

// scanChain serves a deterministic backward scan: every block resolves to a
// price derived from its number and a timestamp one hour apart per step.
type scanChain struct {
	head      uint64
	failEvery int
	headErr   error
}

func (s *scanChain) BlockNumber(ctx context.Context) (uint64, error) { return s.head, s.headErr }
func (s *scanChain) PoolPrice(ctx context.Context, block uint64) (float64, error) {
	if s.failEvery > 0 && block%uint64(s.failEvery) == 0 {
		return 0, errors.New("missing block")
	}
	return 100 + float64(block%7), nil
}
func (s *scanChain) BlockTime(ctx context.Context, block uint64) (int64, error) {
	// 15 seconds per block, anchored at now for the head.
	return time.Now().Unix() - int64(s.head-block)*15, nil
}
func (s *scanChain) GasPriceGwei(ctx context.Context) (float64, error)          { return 20, nil }
func (s *scanChain) BaseBalance(ctx context.Context, owner string) (float64, error) { return 1, nil }
func (s *scanChain) TokenBalance(ctx context.Context, token, owner string) (float64, error) {
	return 0, nil
}
func (s *scanChain) ResetFailed() {}

func TestSynthesizeShapesWindow(t *testing.T) {
	c := New(&scanChain{}, Config{Hours: 24})
	now := time.Now().Unix()
	samples := c.Synthesize(0.000000005, now)

	if len(samples) != 24 {
		t.Fatalf("len = %d, want exactly 24 synthetic samples", len(samples))
	}
	if samples[len(samples)-1].Ts != now {
		t.Errorf("last ts = %d, want window to end at now (%d)", samples[len(samples)-1].Ts, now)
	}
	for i, s := range samples {
		if i > 0 {
			if gap := s.Ts - samples[i-1].Ts; gap != 3600 {
				t.Errorf("gap at %d = %ds, want 1h spacing", i, gap)
			}
		}
		if dev := math.Abs(s.Close-0.000000005) / 0.000000005; dev > 0.01+1e-12 {
			t.Errorf("sample %d deviates %.4f from the current price, cap is 1%%", i, dev)
		}
		if s.Vol <= 0 {
			t.Errorf("sample %d has non-positive volume", i)
		}
	}
}

func TestWindowFallsBackToSyntheticData(t *testing.T) {
	ch := &scanChain{headErr: errors.New("rpc down")}
	c := New(ch, Config{Hours: 24, MinRealSamples: 5})

	samples, err := c.Window(context.Background(), 0.000000005)
	if err != nil {
		t.Fatalf("Window: %v", err)
	}
	if len(samples) != 24 {
		t.Fatalf("len = %d, want 24 synthetic samples when the scan yields nothing", len(samples))
	}
}

func TestWindowBootstrapsFromChain(t *testing.T) {
	ch := &scanChain{head: 100_000}
	c := New(ch, Config{Hours: 24, BlocksPerHour: 240, MinRealSamples: 5})

	samples, err := c.Window(context.Background(), 100)
	if err != nil {
		t.Fatalf("Window: %v", err)
	}
	if len(samples) == 0 {
		t.Fatal("bootstrap returned no samples")
	}
	for i := 1; i < len(samples); i++ {
		if samples[i].Ts <= samples[i-1].Ts {
			t.Fatalf("timestamps not strictly increasing at %d", i)
		}
	}
}

func TestWindowSkipsFailingBlocks(t *testing.T) {
	// Every other hourly step fails; the scan keeps the survivors.
	ch := &scanChain{head: 100_800, failEvery: 480}
	c := New(ch, Config{Hours: 24, BlocksPerHour: 240, MinRealSamples: 5})

	samples, err := c.Window(context.Background(), 100)
	if err != nil {
		t.Fatalf("Window: %v", err)
	}
	if len(samples) < 5 || len(samples) >= 24 {
		t.Fatalf("len = %d, want a gappy but usable real series", len(samples))
	}
}

func TestWindowAppendsFreshSampleEachCycle(t *testing.T) {
	ch := &scanChain{head: 100_000}
	c := New(ch, Config{Hours: 24, BlocksPerHour: 240, MinRealSamples: 5})
	ctx := context.Background()

	first, err := c.Window(ctx, 100)
	if err != nil {
		t.Fatalf("Window: %v", err)
	}
	second, err := c.Window(ctx, 101)
	if err != nil {
		t.Fatalf("Window: %v", err)
	}
	if len(second) != len(first)+1 {
		t.Fatalf("second window len = %d, want %d", len(second), len(first)+1)
	}
	last := second[len(second)-1]
	if last.Close != 101 {
		t.Errorf("fresh sample price = %v, want the passed-in 101", last.Close)
	}
	if last.Ts <= second[len(second)-2].Ts {
		t.Error("fresh sample timestamp did not advance past the previous one")
	}
}

func TestPruneDropsSamplesPastHorizon(t *testing.T) {
	ch := &scanChain{headErr: errors.New("rpc down")}
	c := New(ch, Config{Hours: 2, MinRealSamples: 5})

	now := time.Now().Unix()
	c.samples = c.Synthesize(100, now-10*3600)
	c.bootstrapped = true

	samples, err := c.Window(context.Background(), 100)
	if err != nil {
		t.Fatalf("Window: %v", err)
	}
	cutoff := now - 2*3600
	for i, s := range samples {
		if s.Ts < cutoff {
			t.Errorf("sample %d at ts %d survived past the retention horizon %d", i, s.Ts, cutoff)
		}
	}
	if len(samples) == 0 {
		t.Fatal("prune removed the fresh sample too")
	}
}
