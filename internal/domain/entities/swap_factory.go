package entities

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/volatiletech/null/v8"
)

// SwapFactory deploys SwapRegistry instances and remembers the latest one.
type SwapFactory struct {
	Address         common.Address
	Owner           common.Address
	Template        common.Address
	PaymentToken    common.Address
	Nonce           uint64
	CurrentInstance null.String
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
