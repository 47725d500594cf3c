package usecases_test

import (
	"testing"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"nft-swapper.backend/internal/domain/entities"
	"nft-swapper.backend/internal/usecases"
)

func TestSwapStateChangedTopic(t *testing.T) {
	assert.Equal(t, crypto.Keccak256Hash([]byte("SwapStateChanged(uint256,uint8)")), usecases.SwapStateChangedTopic)
}

func TestEncodeSwapStateChanged(t *testing.T) {
	data, err := usecases.EncodeSwapStateChanged(3, entities.SwapStateCancelled)
	require.NoError(t, err)
	assert.Equal(t,
		"0x"+
			"0000000000000000000000000000000000000000000000000000000000000003"+
			"0000000000000000000000000000000000000000000000000000000000000002",
		data)

	id, state, err := usecases.DecodeSwapStateChanged(data)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), id)
	assert.Equal(t, entities.SwapStateCancelled, state)
}

func TestDecodeSwapStateChanged_Invalid(t *testing.T) {
	_, _, err := usecases.DecodeSwapStateChanged("not-hex")
	assert.Error(t, err)

	_, _, err = usecases.DecodeSwapStateChanged("0x01")
	assert.Error(t, err)
}
