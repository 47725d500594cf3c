package repositories

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"nft-swapper.backend/internal/domain/entities"
)

// SwapOfferTransition describes a single Created -> terminal state change.
type SwapOfferTransition struct {
	Registry     common.Address
	OfferID      uint64
	To           entities.SwapState
	SettledBy    common.Address
	TakerAddress *common.Address
	At           time.Time
}

// SwapOfferFilter narrows ListByRegistry.
type SwapOfferFilter struct {
	State *entities.SwapState
	Maker *common.Address
}

// SwapOfferRepository persists offers. Offers are never deleted.
type SwapOfferRepository interface {
	Create(ctx context.Context, offer *entities.SwapOffer) error
	GetByID(ctx context.Context, registry common.Address, id uint64) (*entities.SwapOffer, error)
	ListByRegistry(ctx context.Context, registry common.Address, filter SwapOfferFilter, limit, offset int) ([]*entities.SwapOffer, int64, error)
	// Transition moves an offer out of Created. It returns ErrStateConflict
	// when the stored state is no longer Created.
	Transition(ctx context.Context, t SwapOfferTransition) error
	CountOpen(ctx context.Context) (int64, error)
	CountOpenExpired(ctx context.Context, now time.Time) (int64, error)
}
