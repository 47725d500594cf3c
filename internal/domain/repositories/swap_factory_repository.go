package repositories

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"nft-swapper.backend/internal/domain/entities"
)

// SwapFactoryRepository persists factory state.
type SwapFactoryRepository interface {
	Create(ctx context.Context, factory *entities.SwapFactory) error
	GetByAddress(ctx context.Context, address common.Address) (*entities.SwapFactory, error)
	// RecordDeployment bumps the nonce and points CurrentInstance at instance.
	RecordDeployment(ctx context.Context, factory common.Address, nonce uint64, instance common.Address) error
	UpdateOwner(ctx context.Context, factory common.Address, owner common.Address) error
}
