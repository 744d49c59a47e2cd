package chain

import (
	"context"
	"math/rand"
	"time"
)

// Sim is a synthetic node for DRY_RUN mode: prices follow a random walk
// around a base level and every read succeeds without touching the network.
type Sim struct {
	base      float64
	price     float64
	headBlock uint64
	start     time.Time
}

const simBlockSeconds = 15

func NewSim(basePrice float64) *Sim {
	if basePrice <= 0 {
		basePrice = 0.000000005
	}
	return &Sim{
		base:      basePrice,
		price:     basePrice,
		headBlock: 20_000_000,
		start:     time.Now(),
	}
}

func (s *Sim) URL() string { return "sim://local" }

func (s *Sim) BlockNumber(ctx context.Context) (uint64, error) {
	elapsed := time.Since(s.start) / (simBlockSeconds * time.Second)
	return s.headBlock + uint64(elapsed), nil
}

func (s *Sim) Slot0Price(ctx context.Context, pool string, block uint64) (float64, error) {
	if block != 0 {
		// Historical reads drift around the base level.
		return s.base * (1 + (rand.Float64()-0.5)*0.04), nil
	}
	// Latest reads walk from the previous price so consecutive cycles see
	// continuous movement.
	s.price *= 1 + (rand.Float64()-0.5)*0.01
	if s.price <= 0 {
		s.price = s.base
	}
	return s.price, nil
}

func (s *Sim) BlockTime(ctx context.Context, block uint64) (int64, error) {
	head, _ := s.BlockNumber(ctx)
	if block == 0 || block >= head {
		return time.Now().Unix(), nil
	}
	return time.Now().Unix() - int64(head-block)*simBlockSeconds, nil
}

func (s *Sim) GasPriceGwei(ctx context.Context) (float64, error) {
	return 10 + rand.Float64()*50, nil
}

func (s *Sim) EthBalance(ctx context.Context, owner string) (float64, error) {
	return 1.0, nil
}

func (s *Sim) TokenBalance(ctx context.Context, token, owner string) (float64, error) {
	return 0.0, nil
}
