package usecases_test

import (
	"context"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/mock"
	"nft-swapper.backend/internal/domain/entities"
)

// Mock UnitOfWork
type MockUnitOfWork struct {
	mock.Mock
}

func (m *MockUnitOfWork) Do(ctx context.Context, f func(context.Context) error) error {
	m.Called(ctx, f)
	return f(ctx)
}

// Mock SwapRegistryRepository
type MockSwapRegistryRepository struct {
	mock.Mock
}

func (m *MockSwapRegistryRepository) Create(ctx context.Context, registry *entities.SwapRegistry) error {
	args := m.Called(ctx, registry)
	return args.Error(0)
}

func (m *MockSwapRegistryRepository) GetByAddress(ctx context.Context, address common.Address) (*entities.SwapRegistry, error) {
	args := m.Called(ctx, address)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.SwapRegistry), args.Error(1)
}

func (m *MockSwapRegistryRepository) AllocateOfferID(ctx context.Context, address common.Address) (uint64, error) {
	args := m.Called(ctx, address)
	return args.Get(0).(uint64), args.Error(1)
}

func (m *MockSwapRegistryRepository) SetExpiry(ctx context.Context, address common.Address, expiry *time.Time) error {
	args := m.Called(ctx, address, expiry)
	return args.Error(0)
}

// Mock ChallengeStore
type MockChallengeStore struct {
	mock.Mock
}

func (m *MockChallengeStore) Put(ctx context.Context, address, message string) error {
	args := m.Called(ctx, address, message)
	return args.Error(0)
}

func (m *MockChallengeStore) Take(ctx context.Context, address string) (string, error) {
	args := m.Called(ctx, address)
	return args.String(0), args.Error(1)
}

// Mock Locker
type MockLocker struct {
	mock.Mock
}

func (m *MockLocker) Lock(ctx context.Context, key string) (func(), error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(func()), args.Error(1)
}

// recordingObserver captures SwapObserver callbacks.
type recordingObserver struct {
	mu          sync.Mutex
	transitions []entities.SwapState
	rejections  []string
}

func (o *recordingObserver) OfferTransitioned(state entities.SwapState) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.transitions = append(o.transitions, state)
}

func (o *recordingObserver) OperationRejected(operation, code string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.rejections = append(o.rejections, operation+":"+code)
}

// recordingPublisher captures published events and can be told to fail.
type recordingPublisher struct {
	mu     sync.Mutex
	events []*entities.SwapEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, event *entities.SwapEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return p.err
}
