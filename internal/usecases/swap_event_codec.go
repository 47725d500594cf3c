package usecases

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"nft-swapper.backend/internal/domain/entities"
)

// SwapStateChangedTopic is topic0 of every SwapStateChanged log.
var SwapStateChangedTopic = crypto.Keccak256Hash([]byte(entities.SwapStateChangedSignature))

var swapStateChangedArgs = func() abi.Arguments {
	uint256Type, err := abi.NewType("uint256", "", nil)
	if err != nil {
		panic(err)
	}
	uint8Type, err := abi.NewType("uint8", "", nil)
	if err != nil {
		panic(err)
	}
	return abi.Arguments{
		{Name: "id", Type: uint256Type},
		{Name: "newState", Type: uint8Type},
	}
}()

// EncodeSwapStateChanged ABI encodes the non-indexed event data.
func EncodeSwapStateChanged(offerID uint64, state entities.SwapState) (string, error) {
	data, err := swapStateChangedArgs.Pack(new(big.Int).SetUint64(offerID), uint8(state))
	if err != nil {
		return "", err
	}
	return hexutil.Encode(data), nil
}

// DecodeSwapStateChanged parses event data produced by EncodeSwapStateChanged.
func DecodeSwapStateChanged(data string) (uint64, entities.SwapState, error) {
	raw, err := hexutil.Decode(data)
	if err != nil {
		return 0, 0, err
	}
	values, err := swapStateChangedArgs.Unpack(raw)
	if err != nil {
		return 0, 0, err
	}
	id, ok := values[0].(*big.Int)
	if !ok || !id.IsUint64() {
		return 0, 0, fmt.Errorf("unexpected offer id %v", values[0])
	}
	state, ok := values[1].(uint8)
	if !ok {
		return 0, 0, fmt.Errorf("unexpected state %v", values[1])
	}
	return id.Uint64(), entities.SwapState(state), nil
}

func newSwapEvent(registry common.Address, offerID uint64, state entities.SwapState, logIndex uint64) (*entities.SwapEvent, error) {
	data, err := EncodeSwapStateChanged(offerID, state)
	if err != nil {
		return nil, err
	}
	return &entities.SwapEvent{
		RegistryAddress: registry,
		OfferID:         offerID,
		State:           state,
		LogIndex:        logIndex,
		Topic:           SwapStateChangedTopic,
		Data:            data,
	}, nil
}
