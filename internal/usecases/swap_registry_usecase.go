package usecases

import (
	"context"
	"errors"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/volatiletech/null/v8"
	"go.uber.org/zap"
	"nft-swapper.backend/internal/domain/entities"
	domainerrors "nft-swapper.backend/internal/domain/errors"
	"nft-swapper.backend/internal/domain/ledger"
	"nft-swapper.backend/internal/domain/repositories"
	"nft-swapper.backend/pkg/logger"
)

const (
	OperationCreateOffer = "createOffer"
	OperationMakeSwap    = "makeSwap"
	OperationCancelSwap  = "cancelSwap"
	OperationSetExpiry   = "setExpiry"
	OperationCreate      = "create"
	OperationTransfer    = "transferOwnership"

	maxEventPage = 500
)

// CreateOfferInput carries the parameters of createOffer.
type CreateOfferInput struct {
	MakerAsset    entities.AssetRef
	TakerAsset    entities.AssetRef
	MakerAddress  common.Address
	PaymentAmount *big.Int
}

// SwapRegistryDeps groups the collaborators of SwapRegistryUsecase.
type SwapRegistryDeps struct {
	Registries repositories.SwapRegistryRepository
	Offers     repositories.SwapOfferRepository
	Events     repositories.SwapEventRepository
	UnitOfWork repositories.UnitOfWork
	Ledgers    ledger.Directory
	Locker     Locker
	Publisher  EventPublisher
	Observer   SwapObserver
	Clock      Clock
}

// SwapRegistryUsecase implements the offer lifecycle of a swapper instance.
type SwapRegistryUsecase struct {
	registries repositories.SwapRegistryRepository
	offers     repositories.SwapOfferRepository
	events     repositories.SwapEventRepository
	uow        repositories.UnitOfWork
	ledgers    ledger.Directory
	locker     Locker
	publisher  EventPublisher
	observer   SwapObserver
	now        Clock
}

// NewSwapRegistryUsecase creates a new swap registry usecase
func NewSwapRegistryUsecase(deps SwapRegistryDeps) *SwapRegistryUsecase {
	u := &SwapRegistryUsecase{
		registries: deps.Registries,
		offers:     deps.Offers,
		events:     deps.Events,
		uow:        deps.UnitOfWork,
		ledgers:    deps.Ledgers,
		locker:     deps.Locker,
		publisher:  deps.Publisher,
		observer:   deps.Observer,
		now:        deps.Clock,
	}
	if u.publisher == nil {
		u.publisher = noopPublisher{}
	}
	if u.observer == nil {
		u.observer = noopObserver{}
	}
	if u.now == nil {
		u.now = time.Now
	}
	return u
}

// DeployRegistry creates the registry row if it does not exist yet.
func (u *SwapRegistryUsecase) DeployRegistry(ctx context.Context, address, paymentToken, owner common.Address) (*entities.SwapRegistry, error) {
	existing, err := u.registries.GetByAddress(ctx, address)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, domainerrors.ErrNotFound) {
		return nil, err
	}

	registry := &entities.SwapRegistry{
		Address:      address,
		Owner:        owner,
		PaymentToken: paymentToken,
	}
	if err := u.registries.Create(ctx, registry); err != nil {
		return nil, err
	}
	logger.Info(ctx, "Swap registry deployed", zap.String("registry", address.Hex()), zap.String("owner", owner.Hex()))
	return registry, nil
}

// GetRegistry returns the registry at address.
func (u *SwapRegistryUsecase) GetRegistry(ctx context.Context, address common.Address) (*entities.SwapRegistry, error) {
	registry, err := u.registries.GetByAddress(ctx, address)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return nil, domainerrors.RegistryNotFound()
		}
		return nil, err
	}
	return registry, nil
}

// GetOffer returns a single offer.
func (u *SwapRegistryUsecase) GetOffer(ctx context.Context, registry common.Address, id uint64) (*entities.SwapOffer, error) {
	if _, err := u.GetRegistry(ctx, registry); err != nil {
		return nil, err
	}
	offer, err := u.offers.GetByID(ctx, registry, id)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return nil, domainerrors.OfferNotFound()
		}
		return nil, err
	}
	return offer, nil
}

// ListOffers pages through a registry's offers in id order.
func (u *SwapRegistryUsecase) ListOffers(ctx context.Context, registry common.Address, filter repositories.SwapOfferFilter, limit, offset int) ([]*entities.SwapOffer, int64, error) {
	if _, err := u.GetRegistry(ctx, registry); err != nil {
		return nil, 0, err
	}
	return u.offers.ListByRegistry(ctx, registry, filter, limit, offset)
}

// ListEvents returns SwapStateChanged logs starting at fromLogIndex.
func (u *SwapRegistryUsecase) ListEvents(ctx context.Context, registry common.Address, fromLogIndex uint64, limit int) ([]*entities.SwapEvent, error) {
	if _, err := u.GetRegistry(ctx, registry); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > maxEventPage {
		limit = maxEventPage
	}
	return u.events.ListByRegistry(ctx, registry, fromLogIndex, limit)
}

// SetExpiry changes the instant after which makeSwap is refused. A nil
// expiry removes the limit. Only the registry owner may call it.
func (u *SwapRegistryUsecase) SetExpiry(ctx context.Context, registry, caller common.Address, expiry *time.Time) (*entities.SwapRegistry, error) {
	unlock, err := u.locker.Lock(ctx, registryLockKey(registry.Hex()))
	if err != nil {
		return nil, err
	}
	defer unlock()

	var updated *entities.SwapRegistry
	err = u.uow.Do(ctx, func(txCtx context.Context) error {
		reg, err := u.GetRegistry(txCtx, registry)
		if err != nil {
			return err
		}
		if reg.Owner != caller {
			return domainerrors.NotOwner()
		}
		if err := u.registries.SetExpiry(txCtx, registry, expiry); err != nil {
			return err
		}
		reg.Expiry = null.TimeFromPtr(expiry)
		updated = reg
		return nil
	})
	if err != nil {
		u.reject(ctx, OperationSetExpiry, err)
		return nil, err
	}
	return updated, nil
}

// CreateOffer records a new offer in the Created state and returns its id.
// Ownership of either asset is not checked here.
func (u *SwapRegistryUsecase) CreateOffer(ctx context.Context, registry, caller common.Address, input CreateOfferInput) (*entities.SwapOffer, error) {
	if err := validateCreateOffer(input); err != nil {
		u.reject(ctx, OperationCreateOffer, err)
		return nil, err
	}

	unlock, err := u.locker.Lock(ctx, registryLockKey(registry.Hex()))
	if err != nil {
		return nil, err
	}
	defer unlock()

	var (
		offer *entities.SwapOffer
		event *entities.SwapEvent
	)
	err = u.uow.Do(ctx, func(txCtx context.Context) error {
		if _, err := u.GetRegistry(txCtx, registry); err != nil {
			return err
		}
		var err error
		offer, event, err = u.createOfferTx(txCtx, registry, input)
		return err
	})
	if err != nil {
		u.reject(ctx, OperationCreateOffer, err)
		return nil, err
	}

	u.committed(ctx, event)
	logger.Info(ctx, "Swap offer created",
		zap.String("registry", registry.Hex()),
		zap.Uint64("offer_id", offer.ID),
		zap.String("caller", caller.Hex()),
		zap.String("maker", offer.MakerAddress.Hex()),
	)
	return offer, nil
}

// createOfferTx must run inside a unit of work on an existing registry.
func (u *SwapRegistryUsecase) createOfferTx(ctx context.Context, registry common.Address, input CreateOfferInput) (*entities.SwapOffer, *entities.SwapEvent, error) {
	id, err := u.registries.AllocateOfferID(ctx, registry)
	if err != nil {
		return nil, nil, err
	}

	offer := &entities.SwapOffer{
		RegistryAddress: registry,
		ID:              id,
		MakerAsset:      input.MakerAsset,
		TakerAsset:      input.TakerAsset,
		MakerAddress:    input.MakerAddress,
		PaymentAmount:   new(big.Int).Set(input.PaymentAmount),
		State:           entities.SwapStateCreated,
	}
	if err := u.offers.Create(ctx, offer); err != nil {
		return nil, nil, err
	}

	event, err := u.appendEvent(ctx, registry, id, entities.SwapStateCreated)
	if err != nil {
		return nil, nil, err
	}
	return offer, event, nil
}

// MakeSwap executes an offer. The caller must be the maker or the current
// owner of the taker asset; that owner receives the maker asset and payment.
func (u *SwapRegistryUsecase) MakeSwap(ctx context.Context, registry, caller common.Address, id uint64) (*entities.SwapOffer, error) {
	unlock, err := u.locker.Lock(ctx, registryLockKey(registry.Hex()))
	if err != nil {
		return nil, err
	}
	defer unlock()

	// Held from the first check until the outcome is committed or compensated,
	// so no other registry or devnet call moves the same assets in between.
	unlockLedgers, err := u.locker.Lock(ctx, LedgerLockKey)
	if err != nil {
		return nil, err
	}
	defer unlockLedgers()

	var (
		offer   *entities.SwapOffer
		event   *entities.SwapEvent
		applied []settlementLeg
	)
	err = u.uow.Do(ctx, func(txCtx context.Context) error {
		reg, current, err := u.loadOpenOffer(txCtx, registry, id)
		if err != nil {
			return err
		}
		if reg.IsExpired(u.now()) {
			return domainerrors.Expired()
		}

		legs, taker, err := u.buildLegs(txCtx, reg, current, caller)
		if err != nil {
			return err
		}

		applied, err = settle(txCtx, legs)
		if err != nil {
			return domainerrors.TransferFailed(err)
		}

		settledAt := u.now()
		if err := u.offers.Transition(txCtx, repositories.SwapOfferTransition{
			Registry:     registry,
			OfferID:      id,
			To:           entities.SwapStateCompleted,
			SettledBy:    caller,
			TakerAddress: &taker,
			At:           settledAt,
		}); err != nil {
			return err
		}

		event, err = u.appendEvent(txCtx, registry, id, entities.SwapStateCompleted)
		if err != nil {
			return err
		}

		current.State = entities.SwapStateCompleted
		current.TakerAddress = null.StringFrom(taker.Hex())
		current.SettledBy = null.StringFrom(caller.Hex())
		current.SettledAt = null.TimeFrom(settledAt)
		offer = current
		return nil
	})
	if err != nil {
		if len(applied) > 0 {
			// the ledgers moved but the record did not commit
			if revertErr := compensate(ctx, applied); revertErr != nil {
				logger.Error(ctx, "Failed to compensate swap legs",
					zap.String("registry", registry.Hex()),
					zap.Uint64("offer_id", id),
					zap.Error(revertErr),
				)
				err = errors.Join(err, revertErr)
			}
		}
		u.reject(ctx, OperationMakeSwap, err)
		return nil, err
	}

	if err := finalize(ctx, applied); err != nil {
		logger.Warn(ctx, "Failed to finalize swap legs",
			zap.String("registry", registry.Hex()),
			zap.Uint64("offer_id", id),
			zap.Error(err),
		)
	}
	u.committed(ctx, event)
	logger.Info(ctx, "Swap executed",
		zap.String("registry", registry.Hex()),
		zap.Uint64("offer_id", id),
		zap.String("caller", caller.Hex()),
		zap.String("taker", offer.TakerAddress.String),
	)
	return offer, nil
}

// CancelSwap moves an open offer to Cancelled. Only the maker may cancel and
// cancelling is allowed after expiry.
func (u *SwapRegistryUsecase) CancelSwap(ctx context.Context, registry, caller common.Address, id uint64) (*entities.SwapOffer, error) {
	unlock, err := u.locker.Lock(ctx, registryLockKey(registry.Hex()))
	if err != nil {
		return nil, err
	}
	defer unlock()

	var (
		offer *entities.SwapOffer
		event *entities.SwapEvent
	)
	err = u.uow.Do(ctx, func(txCtx context.Context) error {
		_, current, err := u.loadOpenOffer(txCtx, registry, id)
		if err != nil {
			return err
		}
		if current.MakerAddress != caller {
			return domainerrors.OnlyMaker()
		}

		settledAt := u.now()
		if err := u.offers.Transition(txCtx, repositories.SwapOfferTransition{
			Registry:  registry,
			OfferID:   id,
			To:        entities.SwapStateCancelled,
			SettledBy: caller,
			At:        settledAt,
		}); err != nil {
			return err
		}

		event, err = u.appendEvent(txCtx, registry, id, entities.SwapStateCancelled)
		if err != nil {
			return err
		}

		current.State = entities.SwapStateCancelled
		current.SettledBy = null.StringFrom(caller.Hex())
		current.SettledAt = null.TimeFrom(settledAt)
		offer = current
		return nil
	})
	if err != nil {
		u.reject(ctx, OperationCancelSwap, err)
		return nil, err
	}

	u.committed(ctx, event)
	logger.Info(ctx, "Swap cancelled",
		zap.String("registry", registry.Hex()),
		zap.Uint64("offer_id", id),
	)
	return offer, nil
}

// loadOpenOffer resolves the registry and offer and rejects terminal offers.
func (u *SwapRegistryUsecase) loadOpenOffer(ctx context.Context, registry common.Address, id uint64) (*entities.SwapRegistry, *entities.SwapOffer, error) {
	reg, err := u.GetRegistry(ctx, registry)
	if err != nil {
		return nil, nil, err
	}
	offer, err := u.offers.GetByID(ctx, registry, id)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return nil, nil, domainerrors.OfferNotFound()
		}
		return nil, nil, err
	}
	switch offer.State {
	case entities.SwapStateCompleted:
		return nil, nil, domainerrors.OfferCompleted()
	case entities.SwapStateCancelled:
		return nil, nil, domainerrors.OfferCancelled()
	}
	return reg, offer, nil
}

// buildLegs authorizes caller and lays out the transfers. The registry
// address is the spender on every leg.
func (u *SwapRegistryUsecase) buildLegs(ctx context.Context, reg *entities.SwapRegistry, offer *entities.SwapOffer, caller common.Address) ([]settlementLeg, common.Address, error) {
	makerCollection, err := u.ledgers.Collection(offer.MakerAsset.Registry)
	if err != nil {
		return nil, common.Address{}, domainerrors.TransferFailed(err)
	}
	takerCollection, err := u.ledgers.Collection(offer.TakerAsset.Registry)
	if err != nil {
		return nil, common.Address{}, domainerrors.TransferFailed(err)
	}

	taker, err := takerCollection.OwnerOf(ctx, offer.TakerAsset.TokenID)
	if err != nil {
		if caller != offer.MakerAddress {
			return nil, common.Address{}, domainerrors.NotMakerOrTaker()
		}
		return nil, common.Address{}, domainerrors.TransferFailed(err)
	}
	if caller != offer.MakerAddress && caller != taker {
		return nil, common.Address{}, domainerrors.NotMakerOrTaker()
	}

	legs := []settlementLeg{
		nftLeg{collection: makerCollection, spender: reg.Address, from: offer.MakerAddress, to: taker, tokenID: offer.MakerAsset.TokenID},
		nftLeg{collection: takerCollection, spender: reg.Address, from: taker, to: offer.MakerAddress, tokenID: offer.TakerAsset.TokenID},
	}
	if offer.HasPayment() {
		token, err := u.ledgers.Token(reg.PaymentToken)
		if err != nil {
			return nil, common.Address{}, domainerrors.TransferFailed(err)
		}
		legs = append(legs, paymentLeg{token: token, spender: reg.Address, from: offer.MakerAddress, to: taker, amount: offer.PaymentAmount})
	}
	return legs, taker, nil
}

func (u *SwapRegistryUsecase) appendEvent(ctx context.Context, registry common.Address, id uint64, state entities.SwapState) (*entities.SwapEvent, error) {
	logIndex, err := u.events.NextLogIndex(ctx, registry)
	if err != nil {
		return nil, err
	}
	event, err := newSwapEvent(registry, id, state, logIndex)
	if err != nil {
		return nil, err
	}
	if err := u.events.Append(ctx, event); err != nil {
		return nil, err
	}
	return event, nil
}

// committed runs after a transition is durable. Publishing is best effort:
// the persisted log stays the source of truth.
func (u *SwapRegistryUsecase) committed(ctx context.Context, event *entities.SwapEvent) {
	if event == nil {
		return
	}
	u.observer.OfferTransitioned(event.State)
	if err := u.publisher.Publish(ctx, event); err != nil {
		logger.Warn(ctx, "Failed to publish swap event",
			zap.String("registry", event.RegistryAddress.Hex()),
			zap.Uint64("offer_id", event.OfferID),
			zap.Error(err),
		)
	}
}

func (u *SwapRegistryUsecase) reject(ctx context.Context, operation string, err error) {
	code := domainerrors.CodeOf(err)
	u.observer.OperationRejected(operation, code)
	if code == domainerrors.CodeInternal {
		logger.Error(ctx, "Swap operation failed", zap.String("operation", operation), zap.Error(err))
		return
	}
	logger.Debug(ctx, "Swap operation rejected", zap.String("operation", operation), zap.String("code", code), zap.Error(err))
}

func validateCreateOffer(input CreateOfferInput) error {
	zero := common.Address{}
	switch {
	case input.MakerAsset.Registry == zero || input.TakerAsset.Registry == zero:
		return domainerrors.BadRequest("asset registry address is required")
	case input.MakerAddress == zero:
		return domainerrors.BadRequest("maker address is required")
	case !validTokenID(input.MakerAsset.TokenID) || !validTokenID(input.TakerAsset.TokenID):
		return domainerrors.BadRequest("token id must be a non-negative uint256")
	case input.PaymentAmount == nil || input.PaymentAmount.Sign() < 0 || input.PaymentAmount.BitLen() > 256:
		return domainerrors.BadRequest("payment amount must be a non-negative uint256")
	case input.MakerAsset.SameAs(input.TakerAsset):
		return domainerrors.BadRequest("maker and taker asset must differ")
	}
	return nil
}

func validTokenID(id *big.Int) bool {
	return id != nil && id.Sign() >= 0 && id.BitLen() <= 256
}
