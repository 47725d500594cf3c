package usecases_test

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"nft-swapper.backend/internal/domain/entities"
	domainRepos "nft-swapper.backend/internal/domain/repositories"
	"nft-swapper.backend/internal/infrastructure/devnet"
	"nft-swapper.backend/internal/infrastructure/locker"
	"nft-swapper.backend/internal/infrastructure/models"
	"nft-swapper.backend/internal/infrastructure/repositories"
	"nft-swapper.backend/internal/usecases"
)

var (
	deployer       = common.HexToAddress("0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266")
	maker          = common.HexToAddress("0x70997970C51812dc3A010C7d01b50e0d17dc79C8")
	taker          = common.HexToAddress("0x3C44CdDdB6a900fa2b585dd299e03d12FA4293BC")
	stranger       = common.HexToAddress("0x90F79bf6EB2c4f870365E785982E1f101E93b906")
	wethAddress    = common.HexToAddress("0x5FbDB2315678afecb367f032d93F642f64180aa3")
	sharedRegistry = common.HexToAddress("0x9A676e781A523b5d0C0e43731313A708CB607508")
	factoryAddress = common.HexToAddress("0x5FC8d32690cc91D4c39d9d3abcBD16989F875707")
	templateAddr   = common.HexToAddress("0xDc64a140Aa3E981100a9becA4E685f962f0cF6C9")

	tenthEther = big.NewInt(100000000000000000)
)

type swapFixture struct {
	t         *testing.T
	ctx       context.Context
	db        *gorm.DB
	network   *devnet.Network
	nftA      *devnet.Collection
	nftB      *devnet.Collection
	weth      *devnet.WrappedNative
	offers    *repositories.SwapOfferRepository
	events    domainRepos.SwapEventRepository
	swaps     *usecases.SwapRegistryUsecase
	factory   *usecases.SwapFactoryUsecase
	observer  *recordingObserver
	publisher *recordingPublisher
	lock      *locker.KeyedLocker
	now       time.Time
}

type fixtureOption func(*swapFixture)

// withEventRepo lets a test wrap the event repository, e.g. to inject failures.
func withEventRepo(wrap func(domainRepos.SwapEventRepository) domainRepos.SwapEventRepository) fixtureOption {
	return func(f *swapFixture) { f.events = wrap(f.events) }
}

func newSwapFixture(t *testing.T, opts ...fixtureOption) *swapFixture {
	t.Helper()
	name := strings.ReplaceAll(t.Name(), "/", "_")
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, repositories.AutoMigrate(db, models.All()...))

	network := devnet.NewNetwork(wethAddress)
	weth, err := network.WrappedNativeAt(wethAddress)
	require.NoError(t, err)

	f := &swapFixture{
		t:         t,
		ctx:       context.Background(),
		db:        db,
		network:   network,
		nftA:      network.DeployCollection(deployer, "NftA", "NFTA"),
		nftB:      network.DeployCollection(deployer, "NftB", "NFTB"),
		weth:      weth,
		offers:    repositories.NewSwapOfferRepository(db),
		events:    repositories.NewSwapEventRepository(db),
		observer:  &recordingObserver{},
		publisher: &recordingPublisher{},
		now:       time.Unix(1700000000, 0).UTC(),
	}
	for _, opt := range opts {
		opt(f)
	}

	registries := repositories.NewSwapRegistryRepository(db)
	uow := repositories.NewUnitOfWork(db)
	lock := locker.New(false, time.Second)
	f.lock = lock
	f.swaps = usecases.NewSwapRegistryUsecase(usecases.SwapRegistryDeps{
		Registries: registries,
		Offers:     f.offers,
		Events:     f.events,
		UnitOfWork: uow,
		Ledgers:    network,
		Locker:     lock,
		Publisher:  f.publisher,
		Observer:   f.observer,
		Clock:      func() time.Time { return f.now },
	})
	f.factory = usecases.NewSwapFactoryUsecase(factoryAddress, repositories.NewSwapFactoryRepository(db), registries, uow, f.swaps, lock, f.observer)

	_, err = f.swaps.DeployRegistry(f.ctx, sharedRegistry, wethAddress, deployer)
	require.NoError(t, err)
	_, err = f.factory.Bootstrap(f.ctx, deployer, templateAddr, wethAddress)
	require.NoError(t, err)
	return f
}

func (f *swapFixture) mint(c *devnet.Collection, to common.Address, id int64) {
	f.t.Helper()
	require.NoError(f.t, c.Mint(f.ctx, deployer, to, big.NewInt(id)))
}

// approve lets registry move the holder's token.
func (f *swapFixture) approve(c *devnet.Collection, holder, registry common.Address, id int64) {
	f.t.Helper()
	require.NoError(f.t, c.Approve(f.ctx, holder, registry, big.NewInt(id)))
}

func (f *swapFixture) fund(owner, registry common.Address, deposit, allowance *big.Int) {
	f.t.Helper()
	require.NoError(f.t, f.weth.Deposit(f.ctx, owner, deposit))
	require.NoError(f.t, f.weth.Approve(f.ctx, owner, registry, allowance))
}

func (f *swapFixture) ownerOf(c *devnet.Collection, id int64) common.Address {
	f.t.Helper()
	owner, err := c.OwnerOf(f.ctx, big.NewInt(id))
	require.NoError(f.t, err)
	return owner
}

func (f *swapFixture) balance(owner common.Address) *big.Int {
	f.t.Helper()
	bal, err := f.weth.BalanceOf(f.ctx, owner)
	require.NoError(f.t, err)
	return bal
}

func (f *swapFixture) createOffer(registry common.Address, makerAsset, takerAsset entities.AssetRef, payment *big.Int) *entities.SwapOffer {
	f.t.Helper()
	offer, err := f.swaps.CreateOffer(f.ctx, registry, maker, usecases.CreateOfferInput{
		MakerAsset:    makerAsset,
		TakerAsset:    takerAsset,
		MakerAddress:  maker,
		PaymentAmount: payment,
	})
	require.NoError(f.t, err)
	return offer
}

func (f *swapFixture) state(registry common.Address, id uint64) entities.SwapState {
	f.t.Helper()
	offer, err := f.swaps.GetOffer(f.ctx, registry, id)
	require.NoError(f.t, err)
	return offer.State
}

func asset(c *devnet.Collection, id int64) entities.AssetRef {
	return entities.AssetRef{Registry: c.Address(), TokenID: big.NewInt(id)}
}
