package devnet

import (
	"context"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"nft-swapper.backend/internal/domain/ledger"
)

// MaxAllowance is the "infinite" approval that transfers never decrement.
var MaxAllowance = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))

type paymentKey struct {
	spender common.Address
	from    common.Address
	to      common.Address
	amount  string
}

// WrappedNative is an in-memory WETH9: balances are minted by Deposit and
// moved with the usual ERC-20 allowance rules. An allowance of 2^256-1 is
// never decremented.
type WrappedNative struct {
	address  common.Address
	decimals int32

	mu         sync.RWMutex
	balances   map[common.Address]*big.Int
	allowances map[common.Address]map[common.Address]*big.Int
	// whether the latest transfer per key consumed allowance
	undo map[paymentKey]bool
}

func NewWrappedNative(address common.Address) *WrappedNative {
	return &WrappedNative{
		address:    address,
		decimals:   18,
		balances:   make(map[common.Address]*big.Int),
		allowances: make(map[common.Address]map[common.Address]*big.Int),
		undo:       make(map[paymentKey]bool),
	}
}

func (w *WrappedNative) Address() common.Address { return w.address }
func (w *WrappedNative) Decimals() int32         { return w.decimals }

func (w *WrappedNative) BalanceOf(_ context.Context, owner common.Address) (*big.Int, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return new(big.Int).Set(w.balanceLocked(owner)), nil
}

func (w *WrappedNative) Allowance(_ context.Context, owner, spender common.Address) (*big.Int, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return new(big.Int).Set(w.allowanceLocked(owner, spender)), nil
}

func (w *WrappedNative) balanceLocked(owner common.Address) *big.Int {
	if b, ok := w.balances[owner]; ok {
		return b
	}
	return new(big.Int)
}

func (w *WrappedNative) allowanceLocked(owner, spender common.Address) *big.Int {
	if a, ok := w.allowances[owner][spender]; ok {
		return a
	}
	return new(big.Int)
}

// Deposit credits owner with freshly wrapped balance.
func (w *WrappedNative) Deposit(_ context.Context, owner common.Address, amount *big.Int) error {
	if amount.Sign() < 0 {
		return ledger.ErrInsufficientBalance
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.balances[owner] = new(big.Int).Add(w.balanceLocked(owner), amount)
	return nil
}

func (w *WrappedNative) Withdraw(_ context.Context, owner common.Address, amount *big.Int) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	bal := w.balanceLocked(owner)
	if amount.Sign() < 0 || bal.Cmp(amount) < 0 {
		return ledger.ErrInsufficientBalance
	}
	w.balances[owner] = new(big.Int).Sub(bal, amount)
	return nil
}

func (w *WrappedNative) Approve(_ context.Context, owner, spender common.Address, amount *big.Int) error {
	if amount.Sign() < 0 {
		return ledger.ErrInsufficientAllowance
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.allowances[owner] == nil {
		w.allowances[owner] = make(map[common.Address]*big.Int)
	}
	w.allowances[owner][spender] = new(big.Int).Set(amount)
	return nil
}

// Transfer moves the caller's own balance. It leaves no undo record.
func (w *WrappedNative) Transfer(_ context.Context, from, to common.Address, amount *big.Int) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, err := w.checkLocked(from, from, to, amount); err != nil {
		return err
	}
	w.move(from, to, amount)
	return nil
}

func (w *WrappedNative) CheckTransfer(_ context.Context, spender, from, to common.Address, amount *big.Int) error {
	w.mu.RLock()
	defer w.mu.RUnlock()
	_, err := w.checkLocked(spender, from, to, amount)
	return err
}

// checkLocked returns whether the transfer consumes allowance.
func (w *WrappedNative) checkLocked(spender, from, to common.Address, amount *big.Int) (bool, error) {
	if to == (common.Address{}) {
		return false, ledger.ErrZeroAddress
	}
	if amount.Sign() < 0 || w.balanceLocked(from).Cmp(amount) < 0 {
		return false, ledger.ErrInsufficientBalance
	}
	if spender == from || amount.Sign() == 0 {
		return false, nil
	}
	allowance := w.allowanceLocked(from, spender)
	if allowance.Cmp(MaxAllowance) == 0 {
		return false, nil
	}
	if allowance.Cmp(amount) < 0 {
		return false, ledger.ErrInsufficientAllowance
	}
	return true, nil
}

func (w *WrappedNative) TransferFrom(_ context.Context, spender, from, to common.Address, amount *big.Int) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	consumes, err := w.checkLocked(spender, from, to, amount)
	if err != nil {
		return err
	}
	if consumes {
		w.allowances[from][spender] = new(big.Int).Sub(w.allowanceLocked(from, spender), amount)
	}
	w.move(from, to, amount)
	w.undo[paymentKey{spender: spender, from: from, to: to, amount: amount.String()}] = consumes
	return nil
}

func (w *WrappedNative) RevertTransfer(_ context.Context, spender, from, to common.Address, amount *big.Int) error {
	key := paymentKey{spender: spender, from: from, to: to, amount: amount.String()}

	w.mu.Lock()
	defer w.mu.Unlock()
	consumed, ok := w.undo[key]
	if !ok || w.balanceLocked(to).Cmp(amount) < 0 {
		return ledger.ErrNothingToRevert
	}
	delete(w.undo, key)

	w.move(to, from, amount)
	if consumed {
		if w.allowances[from] == nil {
			w.allowances[from] = make(map[common.Address]*big.Int)
		}
		w.allowances[from][spender] = new(big.Int).Add(w.allowanceLocked(from, spender), amount)
	}
	return nil
}

func (w *WrappedNative) FinalizeTransfer(_ context.Context, spender, from, to common.Address, amount *big.Int) error {
	key := paymentKey{spender: spender, from: from, to: to, amount: amount.String()}

	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.undo[key]; !ok {
		return ledger.ErrNothingToRevert
	}
	delete(w.undo, key)
	return nil
}

func (w *WrappedNative) move(from, to common.Address, amount *big.Int) {
	w.balances[from] = new(big.Int).Sub(w.balanceLocked(from), amount)
	w.balances[to] = new(big.Int).Add(w.balanceLocked(to), amount)
}
