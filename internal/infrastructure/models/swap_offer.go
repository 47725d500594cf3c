package models

import "time"

type SwapOffer struct {
	RegistryAddress    string  `gorm:"type:varchar(42);primaryKey"`
	OfferID            uint64  `gorm:"primaryKey;autoIncrement:false"`
	MakerAssetRegistry string  `gorm:"type:varchar(42);not null"`
	MakerAssetID       string  `gorm:"type:varchar(78);not null"`
	TakerAssetRegistry string  `gorm:"type:varchar(42);not null"`
	TakerAssetID       string  `gorm:"type:varchar(78);not null"`
	MakerAddress       string  `gorm:"type:varchar(42);not null;index"`
	PaymentAmount      string  `gorm:"type:varchar(78);not null"`
	State              uint8   `gorm:"not null;index"`
	TakerAddress       *string `gorm:"type:varchar(42)"`
	SettledBy          *string `gorm:"type:varchar(42)"`
	SettledAt          *time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

func (SwapOffer) TableName() string {
	return "swap_offers"
}
