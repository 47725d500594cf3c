package entities

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/volatiletech/null/v8"
)

// SwapRegistry is one deployed swapper instance. Expiry applies to every
// offer the instance holds.
type SwapRegistry struct {
	Address      common.Address
	Owner        common.Address
	PaymentToken common.Address
	Factory      null.String
	Template     null.String
	Expiry       null.Time
	NextOfferID  uint64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsExpired reports whether execution is refused at now. The expiry instant
// itself is still executable.
func (r *SwapRegistry) IsExpired(now time.Time) bool {
	return r.Expiry.Valid && now.After(r.Expiry.Time)
}
