package usecases

import (
	"context"
	"time"

	"nft-swapper.backend/internal/domain/entities"
)

// Locker serializes mutating operations that share a key.
type Locker interface {
	Lock(ctx context.Context, key string) (unlock func(), err error)
}

// EventPublisher fans committed SwapStateChanged events out to subscribers.
type EventPublisher interface {
	Publish(ctx context.Context, event *entities.SwapEvent) error
}

// SwapObserver receives outcome notifications, typically for metrics.
type SwapObserver interface {
	OfferTransitioned(state entities.SwapState)
	OperationRejected(operation, code string)
}

// Clock returns the current time. Expiry checks never read time.Now directly.
type Clock func() time.Time

type noopObserver struct{}

func (noopObserver) OfferTransitioned(entities.SwapState) {}
func (noopObserver) OperationRejected(string, string)     {}

type noopPublisher struct{}

func (noopPublisher) Publish(context.Context, *entities.SwapEvent) error { return nil }

// LedgerLockKey guards the asset ledgers shared by every registry.
const LedgerLockKey = "swap:lock:ledgers"

func registryLockKey(address string) string { return "swap:lock:" + address }

func factoryLockKey(address string) string { return "swap:lock:factory:" + address }
