// Package ledger declares the asset registries the swap core moves assets
// through. The core never tracks approvals itself; it asks the registry.
package ledger

import (
	"context"
	"errors"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

var (
	ErrUnknownCollection     = errors.New("unknown collection")
	ErrUnknownToken          = errors.New("unknown fungible token")
	ErrNonexistentToken      = errors.New("ERC721: invalid token ID")
	ErrTokenAlreadyMinted    = errors.New("ERC721: token already minted")
	ErrNotTokenOwner         = errors.New("ERC721: transfer from incorrect owner")
	ErrNotApproved           = errors.New("ERC721: caller is not token owner or approved")
	ErrZeroAddress           = errors.New("zero address")
	ErrInsufficientBalance   = errors.New("insufficient balance")
	ErrInsufficientAllowance = errors.New("insufficient allowance")
	ErrNothingToRevert       = errors.New("no matching transfer to revert")
)

// NonFungibleRegistry is an ERC-721 style collection.
type NonFungibleRegistry interface {
	Address() common.Address
	OwnerOf(ctx context.Context, tokenID *big.Int) (common.Address, error)
	// CheckTransfer reports whether TransferFrom would currently succeed
	// without changing any state.
	CheckTransfer(ctx context.Context, spender, from, to common.Address, tokenID *big.Int) error
	TransferFrom(ctx context.Context, spender, from, to common.Address, tokenID *big.Int) error
	// RevertTransfer undoes the most recent matching TransferFrom, restoring
	// ownership and whatever approval the transfer consumed.
	RevertTransfer(ctx context.Context, spender, from, to common.Address, tokenID *big.Int) error
	// FinalizeTransfer forgets the undo record of a matching TransferFrom
	// once it can no longer be reverted.
	FinalizeTransfer(ctx context.Context, spender, from, to common.Address, tokenID *big.Int) error
}

// FungibleRegistry is a WETH9 style balance ledger.
type FungibleRegistry interface {
	Address() common.Address
	BalanceOf(ctx context.Context, owner common.Address) (*big.Int, error)
	Allowance(ctx context.Context, owner, spender common.Address) (*big.Int, error)
	CheckTransfer(ctx context.Context, spender, from, to common.Address, amount *big.Int) error
	TransferFrom(ctx context.Context, spender, from, to common.Address, amount *big.Int) error
	RevertTransfer(ctx context.Context, spender, from, to common.Address, amount *big.Int) error
	FinalizeTransfer(ctx context.Context, spender, from, to common.Address, amount *big.Int) error
}

// Directory resolves registry addresses referenced by offers.
type Directory interface {
	Collection(address common.Address) (NonFungibleRegistry, error)
	Token(address common.Address) (FungibleRegistry, error)
}
