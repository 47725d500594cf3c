package usecases

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"nft-swapper.backend/internal/domain/ledger"
)

// settlementLeg is one asset movement of a swap.
type settlementLeg interface {
	check(ctx context.Context) error
	apply(ctx context.Context) error
	revert(ctx context.Context) error
	finalize(ctx context.Context) error
	String() string
}

type nftLeg struct {
	collection ledger.NonFungibleRegistry
	spender    common.Address
	from       common.Address
	to         common.Address
	tokenID    *big.Int
}

func (l nftLeg) check(ctx context.Context) error {
	return l.collection.CheckTransfer(ctx, l.spender, l.from, l.to, l.tokenID)
}

func (l nftLeg) apply(ctx context.Context) error {
	return l.collection.TransferFrom(ctx, l.spender, l.from, l.to, l.tokenID)
}

func (l nftLeg) revert(ctx context.Context) error {
	return l.collection.RevertTransfer(ctx, l.spender, l.from, l.to, l.tokenID)
}

func (l nftLeg) finalize(ctx context.Context) error {
	return l.collection.FinalizeTransfer(ctx, l.spender, l.from, l.to, l.tokenID)
}

func (l nftLeg) String() string {
	return fmt.Sprintf("erc721 %s#%s %s->%s", l.collection.Address().Hex(), l.tokenID, l.from.Hex(), l.to.Hex())
}

type paymentLeg struct {
	token   ledger.FungibleRegistry
	spender common.Address
	from    common.Address
	to      common.Address
	amount  *big.Int
}

func (l paymentLeg) check(ctx context.Context) error {
	return l.token.CheckTransfer(ctx, l.spender, l.from, l.to, l.amount)
}

func (l paymentLeg) apply(ctx context.Context) error {
	return l.token.TransferFrom(ctx, l.spender, l.from, l.to, l.amount)
}

func (l paymentLeg) revert(ctx context.Context) error {
	return l.token.RevertTransfer(ctx, l.spender, l.from, l.to, l.amount)
}

func (l paymentLeg) finalize(ctx context.Context) error {
	return l.token.FinalizeTransfer(ctx, l.spender, l.from, l.to, l.amount)
}

func (l paymentLeg) String() string {
	return fmt.Sprintf("erc20 %s %s %s->%s", l.token.Address().Hex(), l.amount, l.from.Hex(), l.to.Hex())
}

// settle runs every check before the first transfer, then applies the legs in
// order. If a leg fails the legs already applied are reverted newest first and
// nothing is returned as applied.
func settle(ctx context.Context, legs []settlementLeg) ([]settlementLeg, error) {
	for _, leg := range legs {
		if err := leg.check(ctx); err != nil {
			return nil, fmt.Errorf("%s: %w", leg, err)
		}
	}

	applied := make([]settlementLeg, 0, len(legs))
	for _, leg := range legs {
		if err := leg.apply(ctx); err != nil {
			failure := fmt.Errorf("%s: %w", leg, err)
			if revertErr := compensate(ctx, applied); revertErr != nil {
				return nil, errors.Join(failure, revertErr)
			}
			return nil, failure
		}
		applied = append(applied, leg)
	}
	return applied, nil
}

// compensate reverts applied legs newest first, continuing past failures.
func compensate(ctx context.Context, applied []settlementLeg) error {
	var errs []error
	for i := len(applied) - 1; i >= 0; i-- {
		if err := applied[i].revert(ctx); err != nil {
			errs = append(errs, fmt.Errorf("revert %s: %w", applied[i], err))
		}
	}
	return errors.Join(errs...)
}

// finalize drops the undo records of committed legs.
func finalize(ctx context.Context, applied []settlementLeg) error {
	var errs []error
	for _, leg := range applied {
		if err := leg.finalize(ctx); err != nil {
			errs = append(errs, fmt.Errorf("finalize %s: %w", leg, err))
		}
	}
	return errors.Join(errs...)
}
