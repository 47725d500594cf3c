package models

import (
	"time"

	"github.com/google/uuid"
)

type SwapEvent struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey"`
	RegistryAddress string    `gorm:"type:varchar(42);not null;uniqueIndex:idx_swap_events_registry_log"`
	LogIndex        uint64    `gorm:"not null;uniqueIndex:idx_swap_events_registry_log"`
	OfferID         uint64    `gorm:"not null;index"`
	State           uint8     `gorm:"not null"`
	Topic           string    `gorm:"type:varchar(66);not null"`
	Data            string    `gorm:"type:text;not null"`
	CreatedAt       time.Time
}

func (SwapEvent) TableName() string {
	return "swap_events"
}
