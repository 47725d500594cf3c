package usecases

import (
	"context"
	"errors"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/volatiletech/null/v8"
	"go.uber.org/zap"
	"nft-swapper.backend/internal/domain/entities"
	domainerrors "nft-swapper.backend/internal/domain/errors"
	"nft-swapper.backend/internal/domain/repositories"
	"nft-swapper.backend/pkg/logger"
)

// CreateRegistryInput carries the parameters of the factory create call. The
// seed offer is only recorded when both assets are present.
type CreateRegistryInput struct {
	MakerAsset *entities.AssetRef
	TakerAsset *entities.AssetRef
	Expiry     *time.Time
}

// SwapFactoryUsecase deploys swapper instances.
type SwapFactoryUsecase struct {
	address    common.Address
	factories  repositories.SwapFactoryRepository
	registries repositories.SwapRegistryRepository
	uow        repositories.UnitOfWork
	swaps      *SwapRegistryUsecase
	locker     Locker
	observer   SwapObserver
}

// NewSwapFactoryUsecase creates a usecase bound to the factory at address
func NewSwapFactoryUsecase(
	address common.Address,
	factories repositories.SwapFactoryRepository,
	registries repositories.SwapRegistryRepository,
	uow repositories.UnitOfWork,
	swaps *SwapRegistryUsecase,
	locker Locker,
	observer SwapObserver,
) *SwapFactoryUsecase {
	if observer == nil {
		observer = noopObserver{}
	}
	return &SwapFactoryUsecase{
		address:    address,
		factories:  factories,
		registries: registries,
		uow:        uow,
		swaps:      swaps,
		locker:     locker,
		observer:   observer,
	}
}

// Address returns the factory address this usecase serves.
func (u *SwapFactoryUsecase) Address() common.Address {
	return u.address
}

// Bootstrap creates the factory row on first start.
func (u *SwapFactoryUsecase) Bootstrap(ctx context.Context, owner, template, paymentToken common.Address) (*entities.SwapFactory, error) {
	existing, err := u.factories.GetByAddress(ctx, u.address)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, domainerrors.ErrNotFound) {
		return nil, err
	}

	factory := &entities.SwapFactory{
		Address:      u.address,
		Owner:        owner,
		Template:     template,
		PaymentToken: paymentToken,
	}
	if err := u.factories.Create(ctx, factory); err != nil {
		return nil, err
	}
	logger.Info(ctx, "Swap factory bootstrapped", zap.String("factory", u.address.Hex()), zap.String("owner", owner.Hex()))
	return factory, nil
}

// Get returns the factory state.
func (u *SwapFactoryUsecase) Get(ctx context.Context) (*entities.SwapFactory, error) {
	factory, err := u.factories.GetByAddress(ctx, u.address)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return nil, domainerrors.FactoryNotFound()
		}
		return nil, err
	}
	return factory, nil
}

// Owner returns the account allowed to transfer factory ownership.
func (u *SwapFactoryUsecase) Owner(ctx context.Context) (common.Address, error) {
	factory, err := u.Get(ctx)
	if err != nil {
		return common.Address{}, err
	}
	return factory.Owner, nil
}

// CurrentSwapperInstance returns the most recently created registry, or nil
// before the first create.
func (u *SwapFactoryUsecase) CurrentSwapperInstance(ctx context.Context) (*common.Address, error) {
	factory, err := u.Get(ctx)
	if err != nil {
		return nil, err
	}
	if !factory.CurrentInstance.Valid {
		return nil, nil
	}
	addr := common.HexToAddress(factory.CurrentInstance.String)
	return &addr, nil
}

// Create deploys a registry owned by caller at CREATE(factory, nonce) and
// optionally seeds it with an unpaid offer made by caller.
func (u *SwapFactoryUsecase) Create(ctx context.Context, caller common.Address, input CreateRegistryInput) (*entities.SwapRegistry, *entities.SwapOffer, error) {
	if (input.MakerAsset == nil) != (input.TakerAsset == nil) {
		err := domainerrors.BadRequest("maker and taker asset must be given together")
		u.observer.OperationRejected(OperationCreate, domainerrors.CodeOf(err))
		return nil, nil, err
	}
	var seed *CreateOfferInput
	if input.MakerAsset != nil {
		seed = &CreateOfferInput{
			MakerAsset:    *input.MakerAsset,
			TakerAsset:    *input.TakerAsset,
			MakerAddress:  caller,
			PaymentAmount: new(big.Int),
		}
		if err := validateCreateOffer(*seed); err != nil {
			u.observer.OperationRejected(OperationCreate, domainerrors.CodeOf(err))
			return nil, nil, err
		}
	}

	unlock, err := u.locker.Lock(ctx, factoryLockKey(u.address.Hex()))
	if err != nil {
		return nil, nil, err
	}
	defer unlock()

	var (
		registry *entities.SwapRegistry
		offer    *entities.SwapOffer
		event    *entities.SwapEvent
	)
	err = u.uow.Do(ctx, func(txCtx context.Context) error {
		factory, err := u.Get(txCtx)
		if err != nil {
			return err
		}

		registry = &entities.SwapRegistry{
			Address:      crypto.CreateAddress(factory.Address, factory.Nonce),
			Owner:        caller,
			PaymentToken: factory.PaymentToken,
			Factory:      null.StringFrom(factory.Address.Hex()),
			Template:     null.StringFrom(factory.Template.Hex()),
			Expiry:       null.TimeFromPtr(input.Expiry),
		}
		if err := u.registries.Create(txCtx, registry); err != nil {
			return err
		}

		if seed != nil {
			offer, event, err = u.swaps.createOfferTx(txCtx, registry.Address, *seed)
			if err != nil {
				return err
			}
			registry.NextOfferID = offer.ID + 1
		}

		return u.factories.RecordDeployment(txCtx, factory.Address, factory.Nonce, registry.Address)
	})
	if err != nil {
		u.observer.OperationRejected(OperationCreate, domainerrors.CodeOf(err))
		logger.Error(ctx, "Swap registry deployment failed", zap.String("factory", u.address.Hex()), zap.Error(err))
		return nil, nil, err
	}

	u.swaps.committed(ctx, event)
	logger.Info(ctx, "Swap registry created",
		zap.String("factory", u.address.Hex()),
		zap.String("registry", registry.Address.Hex()),
		zap.String("owner", caller.Hex()),
		zap.Bool("seeded", offer != nil),
	)
	return registry, offer, nil
}

// TransferOwnership hands the factory to newOwner. Only the current owner may
// call it and the zero address is refused.
func (u *SwapFactoryUsecase) TransferOwnership(ctx context.Context, caller, newOwner common.Address) (*entities.SwapFactory, error) {
	if newOwner == (common.Address{}) {
		err := domainerrors.BadRequest("new owner is the zero address")
		u.observer.OperationRejected(OperationTransfer, domainerrors.CodeOf(err))
		return nil, err
	}

	unlock, err := u.locker.Lock(ctx, factoryLockKey(u.address.Hex()))
	if err != nil {
		return nil, err
	}
	defer unlock()

	var factory *entities.SwapFactory
	err = u.uow.Do(ctx, func(txCtx context.Context) error {
		current, err := u.Get(txCtx)
		if err != nil {
			return err
		}
		if current.Owner != caller {
			return domainerrors.NotOwner()
		}
		if err := u.factories.UpdateOwner(txCtx, u.address, newOwner); err != nil {
			return err
		}
		current.Owner = newOwner
		factory = current
		return nil
	})
	if err != nil {
		u.observer.OperationRejected(OperationTransfer, domainerrors.CodeOf(err))
		return nil, err
	}

	logger.Info(ctx, "Swap factory ownership transferred",
		zap.String("factory", u.address.Hex()),
		zap.String("previous_owner", caller.Hex()),
		zap.String("new_owner", newOwner.Hex()),
	)
	return factory, nil
}
