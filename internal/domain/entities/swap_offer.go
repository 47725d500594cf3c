package entities

import (
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/volatiletech/null/v8"
)

// SwapState is the lifecycle state of a swap offer. The numeric values are
// part of the emitted SwapStateChanged event and must not be reordered.
type SwapState uint8

const (
	SwapStateCreated SwapState = iota
	SwapStateCompleted
	SwapStateCancelled
)

func (s SwapState) String() string {
	switch s {
	case SwapStateCreated:
		return "created"
	case SwapStateCompleted:
		return "completed"
	case SwapStateCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// IsTerminal reports whether no further transition is possible.
func (s SwapState) IsTerminal() bool {
	return s == SwapStateCompleted || s == SwapStateCancelled
}

// ParseSwapState accepts either the numeric event value or the lowercase name.
func ParseSwapState(raw string) (SwapState, bool) {
	switch raw {
	case "0", "created":
		return SwapStateCreated, true
	case "1", "completed":
		return SwapStateCompleted, true
	case "2", "cancelled":
		return SwapStateCancelled, true
	}
	return 0, false
}

// AssetRef identifies one token inside a non-fungible collection.
type AssetRef struct {
	Registry common.Address
	TokenID  *big.Int
}

// SameAs reports whether both references point at the same token.
func (a AssetRef) SameAs(other AssetRef) bool {
	if a.Registry != other.Registry {
		return false
	}
	if a.TokenID == nil || other.TokenID == nil {
		return a.TokenID == other.TokenID
	}
	return a.TokenID.Cmp(other.TokenID) == 0
}

// SwapOffer is a proposed exchange of MakerAsset for TakerAsset, optionally
// sweetened by PaymentAmount of the registry's payment token.
//
// The taker is not stored: whoever owns TakerAsset when the swap executes is
// the taker. TakerAddress is only filled in once the offer completes.
type SwapOffer struct {
	RegistryAddress common.Address
	ID              uint64
	MakerAsset      AssetRef
	TakerAsset      AssetRef
	MakerAddress    common.Address
	PaymentAmount   *big.Int
	State           SwapState
	TakerAddress    null.String
	SettledBy       null.String
	SettledAt       null.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// HasPayment reports whether execution includes a fungible payment leg.
func (o *SwapOffer) HasPayment() bool {
	return o.PaymentAmount != nil && o.PaymentAmount.Sign() > 0
}
