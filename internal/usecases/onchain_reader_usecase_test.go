package usecases_test

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	domainerrors "nft-swapper.backend/internal/domain/errors"
	"nft-swapper.backend/internal/infrastructure/blockchain"
	"nft-swapper.backend/internal/usecases"
)

const readerRPC = "http://reader.test"

func word(v *big.Int) []byte {
	return common.LeftPadBytes(v.Bytes(), 32)
}

func newReader(t *testing.T, call func(ctx context.Context, to string, data []byte) ([]byte, error)) *usecases.OnchainReaderUsecase {
	t.Helper()
	factory := blockchain.NewClientFactory()
	factory.RegisterEVMClient(readerRPC, blockchain.NewEVMClientWithCallView(big.NewInt(31337), call))
	t.Cleanup(factory.Close)
	return usecases.NewOnchainReaderUsecase(factory, readerRPC)
}

func TestOnchainReader_OwnerOf(t *testing.T) {
	reader := newReader(t, func(_ context.Context, to string, data []byte) ([]byte, error) {
		assert.Equal(t, "6352211e", common.Bytes2Hex(data[:4]))
		return common.LeftPadBytes(maker.Bytes(), 32), nil
	})

	owner, err := reader.OwnerOf(context.Background(), sharedRegistry, big.NewInt(7))
	require.NoError(t, err)
	assert.Equal(t, "31337", owner.ChainID)
	assert.Equal(t, maker.Hex(), owner.Owner)
	assert.Equal(t, "7", owner.TokenID)
}

func TestOnchainReader_BalanceWithAllowance(t *testing.T) {
	reader := newReader(t, func(_ context.Context, _ string, data []byte) ([]byte, error) {
		switch common.Bytes2Hex(data[:4]) {
		case "70a08231":
			return word(tenthEther), nil
		case "dd62ed3e":
			return word(big.NewInt(42)), nil
		}
		return nil, errors.New("unexpected selector")
	})

	spender := sharedRegistry
	bal, err := reader.Balance(context.Background(), wethAddress, maker, &spender)
	require.NoError(t, err)
	assert.Equal(t, tenthEther.String(), bal.Wei)
	assert.Equal(t, "0.1", bal.Formatted)
	assert.Equal(t, "42", bal.Allowance)

	bal, err = reader.Balance(context.Background(), wethAddress, maker, nil)
	require.NoError(t, err)
	assert.Empty(t, bal.Allowance)
}

func TestOnchainReader_Errors(t *testing.T) {
	empty := newReader(t, func(context.Context, string, []byte) ([]byte, error) {
		return nil, nil
	})
	_, err := empty.OwnerOf(context.Background(), sharedRegistry, big.NewInt(1))
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)

	failing := newReader(t, func(context.Context, string, []byte) ([]byte, error) {
		return nil, errors.New("connection refused")
	})
	_, err = failing.Balance(context.Background(), wethAddress, maker, nil)
	assert.ErrorIs(t, err, domainerrors.ErrUpstream)
	assert.Equal(t, domainerrors.CodeUpstream, domainerrors.CodeOf(err))
}
