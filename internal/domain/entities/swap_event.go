package entities

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
)

// SwapStateChangedSignature is the canonical event signature used for topic0.
const SwapStateChangedSignature = "SwapStateChanged(uint256,uint8)"

// SwapEvent is a persisted SwapStateChanged log entry.
type SwapEvent struct {
	ID              uuid.UUID      `json:"id"`
	RegistryAddress common.Address `json:"registryAddress"`
	OfferID         uint64         `json:"offerId"`
	State           SwapState      `json:"state"`
	LogIndex        uint64         `json:"logIndex"`
	Topic           common.Hash    `json:"topic"`
	Data            string         `json:"data"`
	CreatedAt       time.Time      `json:"createdAt"`
}
