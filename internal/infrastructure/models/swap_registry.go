package models

import "time"

type SwapRegistry struct {
	Address      string  `gorm:"type:varchar(42);primaryKey"`
	Owner        string  `gorm:"type:varchar(42);not null;index"`
	PaymentToken string  `gorm:"type:varchar(42);not null"`
	Factory      *string `gorm:"type:varchar(42);index"`
	Template     *string `gorm:"type:varchar(42)"`
	ExpiresAt    *time.Time
	NextOfferID  uint64 `gorm:"not null;default:0"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (SwapRegistry) TableName() string {
	return "swap_registries"
}
