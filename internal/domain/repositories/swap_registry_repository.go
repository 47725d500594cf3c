package repositories

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"nft-swapper.backend/internal/domain/entities"
)

// SwapRegistryRepository persists swapper instances.
type SwapRegistryRepository interface {
	Create(ctx context.Context, registry *entities.SwapRegistry) error
	GetByAddress(ctx context.Context, address common.Address) (*entities.SwapRegistry, error)
	// AllocateOfferID returns the next offer id and advances the counter.
	AllocateOfferID(ctx context.Context, address common.Address) (uint64, error)
	SetExpiry(ctx context.Context, address common.Address, expiry *time.Time) error
}
