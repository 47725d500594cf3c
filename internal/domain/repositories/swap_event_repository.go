package repositories

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"nft-swapper.backend/internal/domain/entities"
)

// SwapEventRepository is an append-only log of SwapStateChanged events.
type SwapEventRepository interface {
	Append(ctx context.Context, event *entities.SwapEvent) error
	NextLogIndex(ctx context.Context, registry common.Address) (uint64, error)
	ListByRegistry(ctx context.Context, registry common.Address, fromLogIndex uint64, limit int) ([]*entities.SwapEvent, error)
}
