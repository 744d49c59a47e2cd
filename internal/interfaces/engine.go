package interfaces

import (
	"context"

	"github.com/oadtz/eth-pepe-bot/internal/types"
)

type Engine interface {
	Cycle(ctx context.Context) (*types.CycleResult, error)
}
