package usecases

import (
	"context"
	"errors"
	"math/big"
	"net/http"

	"github.com/ethereum/go-ethereum/common"
	domainerrors "nft-swapper.backend/internal/domain/errors"
	"nft-swapper.backend/internal/infrastructure/blockchain"
	"nft-swapper.backend/pkg/utils"
)

const defaultTokenDecimals = 18

// OnchainOwner is the live ownerOf answer for a token.
type OnchainOwner struct {
	ChainID    string `json:"chainId"`
	Collection string `json:"collection"`
	TokenID    string `json:"tokenId"`
	Owner      string `json:"owner"`
}

// OnchainBalance is the live balanceOf answer for a fungible token.
type OnchainBalance struct {
	ChainID   string `json:"chainId"`
	Token     string `json:"token"`
	Owner     string `json:"owner"`
	Wei       string `json:"wei"`
	Formatted string `json:"formatted"`
	Allowance string `json:"allowance,omitempty"`
}

// OnchainOperatorApproval is the live isApprovedForAll answer.
type OnchainOperatorApproval struct {
	ChainID    string `json:"chainId"`
	Collection string `json:"collection"`
	Owner      string `json:"owner"`
	Operator   string `json:"operator"`
	Approved   bool   `json:"approved"`
}

// OnchainReaderUsecase inspects deployed ERC-721 / ERC-20 contracts.
type OnchainReaderUsecase struct {
	clients *blockchain.ClientFactory
	rpcURL  string
}

// NewOnchainReaderUsecase creates a reader for the configured RPC endpoint
func NewOnchainReaderUsecase(clients *blockchain.ClientFactory, rpcURL string) *OnchainReaderUsecase {
	return &OnchainReaderUsecase{clients: clients, rpcURL: rpcURL}
}

// OwnerOf reads ownerOf(tokenID) on collection.
func (u *OnchainReaderUsecase) OwnerOf(ctx context.Context, collection common.Address, tokenID *big.Int) (*OnchainOwner, error) {
	client, err := u.client()
	if err != nil {
		return nil, err
	}
	owner, err := client.OwnerOf(ctx, collection, tokenID)
	if err != nil {
		return nil, readError(err)
	}
	return &OnchainOwner{
		ChainID:    client.ChainID().String(),
		Collection: collection.Hex(),
		TokenID:    tokenID.String(),
		Owner:      owner.Hex(),
	}, nil
}

// OperatorApproval reads isApprovedForAll(owner, operator) on collection,
// i.e. whether a swapper instance may move every token of owner.
func (u *OnchainReaderUsecase) OperatorApproval(ctx context.Context, collection, owner, operator common.Address) (*OnchainOperatorApproval, error) {
	client, err := u.client()
	if err != nil {
		return nil, err
	}
	approved, err := client.IsApprovedForAll(ctx, collection, owner, operator)
	if err != nil {
		return nil, readError(err)
	}
	return &OnchainOperatorApproval{
		ChainID:    client.ChainID().String(),
		Collection: collection.Hex(),
		Owner:      owner.Hex(),
		Operator:   operator.Hex(),
		Approved:   approved,
	}, nil
}

// Balance reads balanceOf(owner), and allowance(owner, spender) when a
// spender is given.
func (u *OnchainReaderUsecase) Balance(ctx context.Context, token, owner common.Address, spender *common.Address) (*OnchainBalance, error) {
	client, err := u.client()
	if err != nil {
		return nil, err
	}
	bal, err := client.TokenBalance(ctx, token, owner)
	if err != nil {
		return nil, readError(err)
	}
	out := &OnchainBalance{
		ChainID:   client.ChainID().String(),
		Token:     token.Hex(),
		Owner:     owner.Hex(),
		Wei:       bal.String(),
		Formatted: utils.FormatUnits(bal, defaultTokenDecimals),
	}
	if spender != nil {
		allowance, err := client.TokenAllowance(ctx, token, owner, *spender)
		if err != nil {
			return nil, readError(err)
		}
		out.Allowance = allowance.String()
	}
	return out, nil
}

func (u *OnchainReaderUsecase) client() (*blockchain.EVMClient, error) {
	client, err := u.clients.GetEVMClient(u.rpcURL)
	if err != nil {
		return nil, domainerrors.Upstream(err)
	}
	return client, nil
}

func readError(err error) error {
	if errors.Is(err, blockchain.ErrEmptyResult) {
		return domainerrors.NewAppError(http.StatusNotFound, domainerrors.CodeNotFound, "contract returned no data", errors.Join(domainerrors.ErrNotFound, err))
	}
	return domainerrors.Upstream(err)
}
