package usecases

import (
	"context"
	"errors"
	"math/big"
	"net/http"
	"sort"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
	domainerrors "nft-swapper.backend/internal/domain/errors"
	"nft-swapper.backend/internal/domain/ledger"
	"nft-swapper.backend/internal/infrastructure/devnet"
	"nft-swapper.backend/pkg/logger"
	"nft-swapper.backend/pkg/utils"
)

const maxBatchMint = 100

// CollectionInfo describes a devnet ERC-721 collection.
type CollectionInfo struct {
	Address string `json:"address"`
	Name    string `json:"name"`
	Symbol  string `json:"symbol"`
	Owner   string `json:"owner"`
}

// TokenInfo is the ownership view of one ERC-721 token.
type TokenInfo struct {
	Collection string `json:"collection"`
	TokenID    string `json:"tokenId"`
	Owner      string `json:"owner"`
	Approved   string `json:"approved"`
}

// WrappedBalance is a WETH balance in wei and in whole units.
type WrappedBalance struct {
	Token     string `json:"token"`
	Owner     string `json:"owner"`
	Wei       string `json:"wei"`
	Formatted string `json:"formatted"`
}

// DevnetUsecase drives the in-memory ledgers used for local testing.
// Mutations take LedgerLockKey so they never interleave with a settlement.
type DevnetUsecase struct {
	network *devnet.Network
	weth    common.Address
	locker  Locker
}

// NewDevnetUsecase creates a new devnet usecase. locker may be nil when
// nothing else touches the network.
func NewDevnetUsecase(network *devnet.Network, weth common.Address, locker Locker) *DevnetUsecase {
	return &DevnetUsecase{network: network, weth: weth, locker: locker}
}

func (u *DevnetUsecase) lockLedgers(ctx context.Context) (func(), error) {
	if u.locker == nil {
		return func() {}, nil
	}
	return u.locker.Lock(ctx, LedgerLockKey)
}

// ListCollections returns every deployed collection ordered by address.
func (u *DevnetUsecase) ListCollections(_ context.Context) []CollectionInfo {
	collections := u.network.Collections()
	out := make([]CollectionInfo, 0, len(collections))
	for _, c := range collections {
		out = append(out, collectionInfo(c))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Address < out[j].Address })
	return out
}

// DeployCollection deploys a collection owned by caller.
func (u *DevnetUsecase) DeployCollection(ctx context.Context, caller common.Address, name, symbol string) (CollectionInfo, error) {
	if name == "" || symbol == "" {
		return CollectionInfo{}, domainerrors.BadRequest("name and symbol are required")
	}
	c := u.network.DeployCollection(caller, name, symbol)
	logger.Info(ctx, "Devnet collection deployed", zap.String("collection", c.Address().Hex()), zap.String("owner", caller.Hex()))
	return collectionInfo(c), nil
}

// Mint mints tokenID, or count sequential ids when tokenID is nil.
func (u *DevnetUsecase) Mint(ctx context.Context, caller, collection, to common.Address, tokenID *big.Int, count int) ([]string, error) {
	c, err := u.collection(collection)
	if err != nil {
		return nil, err
	}
	unlock, err := u.lockLedgers(ctx)
	if err != nil {
		return nil, err
	}
	defer unlock()

	if tokenID != nil {
		if err := c.Mint(ctx, caller, to, tokenID); err != nil {
			return nil, ledgerError(err)
		}
		return []string{tokenID.String()}, nil
	}
	if count <= 0 || count > maxBatchMint {
		return nil, domainerrors.BadRequest("count must be between 1 and 100")
	}
	ids, err := c.BatchMint(ctx, caller, to, count)
	if err != nil {
		return nil, ledgerError(err)
	}
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out, nil
}

// Approve sets a single-token approval, or operator approval when tokenID is nil.
func (u *DevnetUsecase) Approve(ctx context.Context, caller, collection, spender common.Address, tokenID *big.Int, approved bool) error {
	c, err := u.collection(collection)
	if err != nil {
		return err
	}
	unlock, err := u.lockLedgers(ctx)
	if err != nil {
		return err
	}
	defer unlock()

	if tokenID == nil {
		err = c.SetApprovalForAll(ctx, caller, spender, approved)
	} else {
		err = c.Approve(ctx, caller, spender, tokenID)
	}
	return ledgerError(err)
}

// Token returns the owner and approval of one token.
func (u *DevnetUsecase) Token(ctx context.Context, collection common.Address, tokenID *big.Int) (TokenInfo, error) {
	c, err := u.collection(collection)
	if err != nil {
		return TokenInfo{}, err
	}
	owner, err := c.OwnerOf(ctx, tokenID)
	if err != nil {
		return TokenInfo{}, ledgerError(err)
	}
	approved, err := c.GetApproved(ctx, tokenID)
	if err != nil {
		return TokenInfo{}, ledgerError(err)
	}
	return TokenInfo{
		Collection: collection.Hex(),
		TokenID:    tokenID.String(),
		Owner:      owner.Hex(),
		Approved:   approved.Hex(),
	}, nil
}

// Deposit wraps amount of native currency for caller.
func (u *DevnetUsecase) Deposit(ctx context.Context, caller common.Address, amount *big.Int) (WrappedBalance, error) {
	w, err := u.network.WrappedNativeAt(u.weth)
	if err != nil {
		return WrappedBalance{}, domainerrors.InternalError(err)
	}
	if amount == nil || amount.Sign() <= 0 {
		return WrappedBalance{}, domainerrors.BadRequest("amount must be positive")
	}
	if err := u.withLedgers(ctx, func() error { return w.Deposit(ctx, caller, amount) }); err != nil {
		return WrappedBalance{}, err
	}
	return u.Balance(ctx, caller)
}

// Withdraw unwraps amount of caller's WETH.
func (u *DevnetUsecase) Withdraw(ctx context.Context, caller common.Address, amount *big.Int) (WrappedBalance, error) {
	w, err := u.network.WrappedNativeAt(u.weth)
	if err != nil {
		return WrappedBalance{}, domainerrors.InternalError(err)
	}
	if amount == nil || amount.Sign() <= 0 {
		return WrappedBalance{}, domainerrors.BadRequest("amount must be positive")
	}
	if err := u.withLedgers(ctx, func() error { return w.Withdraw(ctx, caller, amount) }); err != nil {
		return WrappedBalance{}, err
	}
	return u.Balance(ctx, caller)
}

// Transfer sends amount of caller's WETH to to.
func (u *DevnetUsecase) Transfer(ctx context.Context, caller, to common.Address, amount *big.Int) (WrappedBalance, error) {
	w, err := u.network.WrappedNativeAt(u.weth)
	if err != nil {
		return WrappedBalance{}, domainerrors.InternalError(err)
	}
	if amount == nil || amount.Sign() <= 0 {
		return WrappedBalance{}, domainerrors.BadRequest("amount must be positive")
	}
	if err := u.withLedgers(ctx, func() error { return w.Transfer(ctx, caller, to, amount) }); err != nil {
		return WrappedBalance{}, err
	}
	return u.Balance(ctx, caller)
}

// TransferCollectionOwnership hands a collection's minting rights to newOwner.
func (u *DevnetUsecase) TransferCollectionOwnership(ctx context.Context, caller, collection, newOwner common.Address) (CollectionInfo, error) {
	c, err := u.collection(collection)
	if err != nil {
		return CollectionInfo{}, err
	}
	if err := u.withLedgers(ctx, func() error { return c.TransferOwnership(ctx, caller, newOwner) }); err != nil {
		return CollectionInfo{}, err
	}
	logger.Info(ctx, "Devnet collection ownership transferred",
		zap.String("collection", collection.Hex()),
		zap.String("owner", newOwner.Hex()),
	)
	return collectionInfo(c), nil
}

// ApproveWrapped sets caller's WETH allowance for spender. A nil amount
// grants the maximum allowance.
func (u *DevnetUsecase) ApproveWrapped(ctx context.Context, caller, spender common.Address, amount *big.Int) error {
	w, err := u.network.WrappedNativeAt(u.weth)
	if err != nil {
		return domainerrors.InternalError(err)
	}
	if amount == nil {
		amount = devnet.MaxAllowance
	}
	return u.withLedgers(ctx, func() error { return w.Approve(ctx, caller, spender, amount) })
}

// Balance returns owner's WETH balance.
func (u *DevnetUsecase) Balance(ctx context.Context, owner common.Address) (WrappedBalance, error) {
	w, err := u.network.WrappedNativeAt(u.weth)
	if err != nil {
		return WrappedBalance{}, domainerrors.InternalError(err)
	}
	bal, err := w.BalanceOf(ctx, owner)
	if err != nil {
		return WrappedBalance{}, err
	}
	return WrappedBalance{
		Token:     u.weth.Hex(),
		Owner:     owner.Hex(),
		Wei:       bal.String(),
		Formatted: utils.FormatUnits(bal, w.Decimals()),
	}, nil
}

// withLedgers runs fn under the ledger lock and maps its revert.
func (u *DevnetUsecase) withLedgers(ctx context.Context, fn func() error) error {
	unlock, err := u.lockLedgers(ctx)
	if err != nil {
		return err
	}
	defer unlock()
	return ledgerError(fn())
}

func (u *DevnetUsecase) collection(address common.Address) (*devnet.Collection, error) {
	c, err := u.network.CollectionAt(address)
	if err != nil {
		return nil, domainerrors.NewAppError(http.StatusNotFound, domainerrors.CodeNotFound, "collection not found", errors.Join(domainerrors.ErrNotFound, err))
	}
	return c, nil
}

func collectionInfo(c *devnet.Collection) CollectionInfo {
	return CollectionInfo{
		Address: c.Address().Hex(),
		Name:    c.Name(),
		Symbol:  c.Symbol(),
		Owner:   c.Owner().Hex(),
	}
}

// ledgerError turns a ledger revert into a client error.
func ledgerError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ledger.ErrNonexistentToken) {
		return domainerrors.NewAppError(http.StatusNotFound, domainerrors.CodeNotFound, err.Error(), errors.Join(domainerrors.ErrNotFound, err))
	}
	return domainerrors.NewAppError(http.StatusUnprocessableEntity, domainerrors.CodeInvalidInput, err.Error(), errors.Join(domainerrors.ErrInvalidInput, err))
}
