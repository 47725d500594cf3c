package models

import "time"

type SwapFactory struct {
	Address         string  `gorm:"type:varchar(42);primaryKey"`
	Owner           string  `gorm:"type:varchar(42);not null"`
	Template        string  `gorm:"type:varchar(42);not null"`
	PaymentToken    string  `gorm:"type:varchar(42);not null"`
	Nonce           uint64  `gorm:"not null;default:0"`
	CurrentInstance *string `gorm:"type:varchar(42)"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (SwapFactory) TableName() string {
	return "swap_factories"
}
