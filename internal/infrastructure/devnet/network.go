// Package devnet provides in-process ERC-721 collections and a WETH9 ledger
// that stand in for on-chain contracts.
package devnet

import (
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"nft-swapper.backend/internal/domain/ledger"
)

// Network owns every devnet contract and resolves them by address.
type Network struct {
	mu          sync.RWMutex
	collections map[common.Address]*Collection
	tokens      map[common.Address]*WrappedNative
	nonces      map[common.Address]uint64
}

// NewNetwork creates a network with a single wrapped native token at weth.
func NewNetwork(weth common.Address) *Network {
	n := &Network{
		collections: make(map[common.Address]*Collection),
		tokens:      make(map[common.Address]*WrappedNative),
		nonces:      make(map[common.Address]uint64),
	}
	n.tokens[weth] = NewWrappedNative(weth)
	return n
}

// DeployCollection deploys a new collection at CREATE(deployer, nonce).
func (n *Network) DeployCollection(deployer common.Address, name, symbol string) *Collection {
	n.mu.Lock()
	defer n.mu.Unlock()
	nonce := n.nonces[deployer]
	n.nonces[deployer] = nonce + 1

	address := crypto.CreateAddress(deployer, nonce)
	c := NewCollection(address, name, symbol, deployer)
	n.collections[address] = c
	return c
}

func (n *Network) Collections() []*Collection {
	n.mu.RLock()
	defer n.mu.RUnlock()
	out := make([]*Collection, 0, len(n.collections))
	for _, c := range n.collections {
		out = append(out, c)
	}
	return out
}

func (n *Network) CollectionAt(address common.Address) (*Collection, error) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	c, ok := n.collections[address]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ledger.ErrUnknownCollection, address.Hex())
	}
	return c, nil
}

func (n *Network) WrappedNativeAt(address common.Address) (*WrappedNative, error) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	t, ok := n.tokens[address]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ledger.ErrUnknownToken, address.Hex())
	}
	return t, nil
}

// Collection implements ledger.Directory.
func (n *Network) Collection(address common.Address) (ledger.NonFungibleRegistry, error) {
	c, err := n.CollectionAt(address)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Token implements ledger.Directory.
func (n *Network) Token(address common.Address) (ledger.FungibleRegistry, error) {
	t, err := n.WrappedNativeAt(address)
	if err != nil {
		return nil, err
	}
	return t, nil
}
