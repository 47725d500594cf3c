package devnet

import (
	"context"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"nft-swapper.backend/internal/domain/ledger"
)

type transferKey struct {
	spender common.Address
	from    common.Address
	to      common.Address
	tokenID string
}

// Collection is an in-memory ERC-721 collection with Ownable minting.
type Collection struct {
	address common.Address
	name    string
	symbol  string

	mu        sync.RWMutex
	owner     common.Address
	owners    map[string]common.Address
	approvals map[string]common.Address
	operators map[common.Address]map[common.Address]bool
	balances  map[common.Address]uint64
	nextID    *big.Int
	// approval consumed by the latest transfer per key, kept so a settlement
	// can be unwound
	undo map[transferKey]common.Address
}

// NewCollection creates an empty collection owned by owner.
func NewCollection(address common.Address, name, symbol string, owner common.Address) *Collection {
	return &Collection{
		address:   address,
		name:      name,
		symbol:    symbol,
		owner:     owner,
		owners:    make(map[string]common.Address),
		approvals: make(map[string]common.Address),
		operators: make(map[common.Address]map[common.Address]bool),
		balances:  make(map[common.Address]uint64),
		nextID:    big.NewInt(1),
		undo:      make(map[transferKey]common.Address),
	}
}

func (c *Collection) Address() common.Address { return c.address }
func (c *Collection) Name() string            { return c.name }
func (c *Collection) Symbol() string          { return c.symbol }

func (c *Collection) Owner() common.Address {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.owner
}

// BatchMint mints count sequential tokens to to. Only the collection owner
// may mint. Ids continue from the highest id minted so far.
func (c *Collection) BatchMint(_ context.Context, caller, to common.Address, count int) ([]*big.Int, error) {
	if count <= 0 {
		return nil, fmt.Errorf("mint count must be positive")
	}
	if to == (common.Address{}) {
		return nil, ledger.ErrZeroAddress
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if caller != c.owner {
		return nil, fmt.Errorf("Ownable: caller is not the owner")
	}

	minted := make([]*big.Int, 0, count)
	for i := 0; i < count; i++ {
		// skip ids taken by explicit Mint calls
		for {
			if _, taken := c.owners[c.nextID.String()]; !taken {
				break
			}
			c.nextID.Add(c.nextID, big.NewInt(1))
		}
		id := new(big.Int).Set(c.nextID)
		c.owners[id.String()] = to
		c.balances[to]++
		minted = append(minted, id)
		c.nextID.Add(c.nextID, big.NewInt(1))
	}
	return minted, nil
}

// Mint mints a specific token id.
func (c *Collection) Mint(_ context.Context, caller, to common.Address, tokenID *big.Int) error {
	if to == (common.Address{}) {
		return ledger.ErrZeroAddress
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if caller != c.owner {
		return fmt.Errorf("Ownable: caller is not the owner")
	}
	key := tokenID.String()
	if _, exists := c.owners[key]; exists {
		return ledger.ErrTokenAlreadyMinted
	}
	c.owners[key] = to
	c.balances[to]++
	return nil
}

func (c *Collection) OwnerOf(_ context.Context, tokenID *big.Int) (common.Address, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	owner, ok := c.owners[tokenID.String()]
	if !ok {
		return common.Address{}, ledger.ErrNonexistentToken
	}
	return owner, nil
}

func (c *Collection) BalanceOf(_ context.Context, owner common.Address) uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.balances[owner]
}

func (c *Collection) GetApproved(_ context.Context, tokenID *big.Int) (common.Address, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if _, ok := c.owners[tokenID.String()]; !ok {
		return common.Address{}, ledger.ErrNonexistentToken
	}
	return c.approvals[tokenID.String()], nil
}

// Approve grants spender the right to transfer a single token.
func (c *Collection) Approve(_ context.Context, caller, spender common.Address, tokenID *big.Int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	key := tokenID.String()
	owner, ok := c.owners[key]
	if !ok {
		return ledger.ErrNonexistentToken
	}
	if caller != owner && !c.operators[owner][caller] {
		return fmt.Errorf("ERC721: approve caller is not token owner or approved for all")
	}
	c.approvals[key] = spender
	return nil
}

func (c *Collection) SetApprovalForAll(_ context.Context, caller, operator common.Address, approved bool) error {
	if caller == operator {
		return fmt.Errorf("ERC721: approve to caller")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.operators[caller] == nil {
		c.operators[caller] = make(map[common.Address]bool)
	}
	c.operators[caller][operator] = approved
	return nil
}

func (c *Collection) IsApprovedForAll(_ context.Context, owner, operator common.Address) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.operators[owner][operator]
}

func (c *Collection) CheckTransfer(_ context.Context, spender, from, to common.Address, tokenID *big.Int) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.checkTransferLocked(spender, from, to, tokenID.String())
}

func (c *Collection) checkTransferLocked(spender, from, to common.Address, key string) error {
	owner, ok := c.owners[key]
	if !ok {
		return ledger.ErrNonexistentToken
	}
	if owner != from {
		return ledger.ErrNotTokenOwner
	}
	if to == (common.Address{}) {
		return ledger.ErrZeroAddress
	}
	if spender != owner && c.approvals[key] != spender && !c.operators[owner][spender] {
		return ledger.ErrNotApproved
	}
	return nil
}

func (c *Collection) TransferFrom(_ context.Context, spender, from, to common.Address, tokenID *big.Int) error {
	key := tokenID.String()

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.checkTransferLocked(spender, from, to, key); err != nil {
		return err
	}

	uk := transferKey{spender: spender, from: from, to: to, tokenID: key}
	c.undo[uk] = c.approvals[key]

	delete(c.approvals, key)
	c.balances[from]--
	c.balances[to]++
	c.owners[key] = to
	return nil
}

func (c *Collection) RevertTransfer(_ context.Context, spender, from, to common.Address, tokenID *big.Int) error {
	key := tokenID.String()
	uk := transferKey{spender: spender, from: from, to: to, tokenID: key}

	c.mu.Lock()
	defer c.mu.Unlock()
	prevApproval, ok := c.undo[uk]
	if !ok || c.owners[key] != to {
		return ledger.ErrNothingToRevert
	}
	delete(c.undo, uk)

	c.balances[to]--
	c.balances[from]++
	c.owners[key] = from
	if prevApproval != (common.Address{}) {
		c.approvals[key] = prevApproval
	} else {
		delete(c.approvals, key)
	}
	return nil
}

func (c *Collection) FinalizeTransfer(_ context.Context, spender, from, to common.Address, tokenID *big.Int) error {
	uk := transferKey{spender: spender, from: from, to: to, tokenID: tokenID.String()}

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.undo[uk]; !ok {
		return ledger.ErrNothingToRevert
	}
	delete(c.undo, uk)
	return nil
}

// TransferOwnership hands minting rights to newOwner.
func (c *Collection) TransferOwnership(_ context.Context, caller, newOwner common.Address) error {
	if newOwner == (common.Address{}) {
		return ledger.ErrZeroAddress
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if caller != c.owner {
		return fmt.Errorf("Ownable: caller is not the owner")
	}
	c.owner = newOwner
	return nil
}
