package usecases_test

import (
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"nft-swapper.backend/internal/domain/entities"
	domainerrors "nft-swapper.backend/internal/domain/errors"
	"nft-swapper.backend/internal/usecases"
)

func TestSwapFactory_CurrentInstanceBeforeCreate(t *testing.T) {
	f := newSwapFixture(t)

	current, err := f.factory.CurrentSwapperInstance(f.ctx)
	require.NoError(t, err)
	assert.Nil(t, current)

	owner, err := f.factory.Owner(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, deployer, owner)
	assert.Equal(t, factoryAddress, f.factory.Address())
}

func TestSwapFactory_CreateDeterministicAddresses(t *testing.T) {
	f := newSwapFixture(t)

	first, seed, err := f.factory.Create(f.ctx, maker, usecases.CreateRegistryInput{})
	require.NoError(t, err)
	assert.Nil(t, seed)
	assert.Equal(t, crypto.CreateAddress(factoryAddress, 0), first.Address)
	assert.Equal(t, maker, first.Owner)
	assert.Equal(t, wethAddress, first.PaymentToken)
	assert.Equal(t, templateAddr.Hex(), first.Template.String)

	second, _, err := f.factory.Create(f.ctx, taker, usecases.CreateRegistryInput{})
	require.NoError(t, err)
	assert.Equal(t, crypto.CreateAddress(factoryAddress, 1), second.Address)

	current, err := f.factory.CurrentSwapperInstance(f.ctx)
	require.NoError(t, err)
	require.NotNil(t, current)
	assert.Equal(t, second.Address, *current)

	factory, err := f.factory.Get(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), factory.Nonce)

	// created instances are independent registries
	stored, err := f.swaps.GetRegistry(f.ctx, first.Address)
	require.NoError(t, err)
	assert.Equal(t, maker, stored.Owner)
}

func TestSwapFactory_CreateWithSeedOffer(t *testing.T) {
	f := newSwapFixture(t)
	expiry := f.now.Add(time.Hour)

	registry, seed, err := f.factory.Create(f.ctx, maker, usecases.CreateRegistryInput{
		MakerAsset: &entities.AssetRef{Registry: f.nftA.Address(), TokenID: big.NewInt(1)},
		TakerAsset: &entities.AssetRef{Registry: f.nftB.Address(), TokenID: big.NewInt(5)},
		Expiry:     &expiry,
	})
	require.NoError(t, err)
	require.NotNil(t, seed)
	assert.Equal(t, uint64(0), seed.ID)
	assert.Equal(t, maker, seed.MakerAddress)
	assert.Zero(t, seed.PaymentAmount.Sign())
	assert.True(t, registry.Expiry.Valid)

	events, err := f.swaps.ListEvents(f.ctx, registry.Address, 0, 0)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, entities.SwapStateCreated, events[0].State)
	assert.Len(t, f.publisher.events, 1)

	// the seeded instance settles like any other
	f.mint(f.nftA, maker, 1)
	f.mint(f.nftB, taker, 5)
	f.approve(f.nftA, maker, registry.Address, 1)
	f.approve(f.nftB, taker, registry.Address, 5)
	_, err = f.swaps.MakeSwap(f.ctx, registry.Address, taker, seed.ID)
	require.NoError(t, err)
	assert.Equal(t, taker, f.ownerOf(f.nftA, 1))

	next := f.createOffer(registry.Address, asset(f.nftA, 2), asset(f.nftB, 6), big.NewInt(0))
	assert.Equal(t, uint64(1), next.ID)
}

func TestSwapFactory_CreateRejectsHalfSeed(t *testing.T) {
	f := newSwapFixture(t)

	_, _, err := f.factory.Create(f.ctx, maker, usecases.CreateRegistryInput{
		MakerAsset: &entities.AssetRef{Registry: f.nftA.Address(), TokenID: big.NewInt(1)},
	})
	require.ErrorIs(t, err, domainerrors.ErrInvalidInput)

	same := &entities.AssetRef{Registry: f.nftA.Address(), TokenID: big.NewInt(1)}
	_, _, err = f.factory.Create(f.ctx, maker, usecases.CreateRegistryInput{MakerAsset: same, TakerAsset: same})
	require.ErrorIs(t, err, domainerrors.ErrInvalidInput)

	current, err := f.factory.CurrentSwapperInstance(f.ctx)
	require.NoError(t, err)
	assert.Nil(t, current)
	assert.Contains(t, f.observer.rejections, "create:InvalidInput")
}

func TestSwapFactory_TransferOwnership(t *testing.T) {
	f := newSwapFixture(t)

	_, err := f.factory.TransferOwnership(f.ctx, maker, maker)
	require.ErrorIs(t, err, domainerrors.ErrNotOwner)

	_, err = f.factory.TransferOwnership(f.ctx, deployer, common.Address{})
	require.ErrorIs(t, err, domainerrors.ErrInvalidInput)

	updated, err := f.factory.TransferOwnership(f.ctx, deployer, maker)
	require.NoError(t, err)
	assert.Equal(t, maker, updated.Owner)

	owner, err := f.factory.Owner(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, maker, owner)

	// the previous owner lost control
	_, err = f.factory.TransferOwnership(f.ctx, deployer, deployer)
	require.ErrorIs(t, err, domainerrors.ErrNotOwner)

	// anyone may still create instances
	_, _, err = f.factory.Create(f.ctx, stranger, usecases.CreateRegistryInput{})
	require.NoError(t, err)
}
