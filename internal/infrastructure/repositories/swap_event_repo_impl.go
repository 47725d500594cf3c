package repositories

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"nft-swapper.backend/internal/domain/entities"
	"nft-swapper.backend/internal/infrastructure/models"
	"nft-swapper.backend/pkg/utils"
)

// SwapEventRepository implements repositories.SwapEventRepository
type SwapEventRepository struct {
	db *gorm.DB
}

func NewSwapEventRepository(db *gorm.DB) *SwapEventRepository {
	return &SwapEventRepository{db: db}
}

func (r *SwapEventRepository) Append(ctx context.Context, event *entities.SwapEvent) error {
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}
	if event.ID == uuid.Nil {
		event.ID = utils.GenerateUUIDv7()
	}
	m := &models.SwapEvent{
		ID:              event.ID,
		RegistryAddress: event.RegistryAddress.Hex(),
		LogIndex:        event.LogIndex,
		OfferID:         event.OfferID,
		State:           uint8(event.State),
		Topic:           event.Topic.Hex(),
		Data:            event.Data,
		CreatedAt:       event.CreatedAt,
	}
	return GetDB(ctx, r.db).WithContext(ctx).Create(m).Error
}

func (r *SwapEventRepository) NextLogIndex(ctx context.Context, registry common.Address) (uint64, error) {
	var total int64
	if err := GetDB(ctx, r.db).WithContext(ctx).Model(&models.SwapEvent{}).
		Where("registry_address = ?", registry.Hex()).
		Count(&total).Error; err != nil {
		return 0, err
	}
	return uint64(total), nil
}

func (r *SwapEventRepository) ListByRegistry(ctx context.Context, registry common.Address, fromLogIndex uint64, limit int) ([]*entities.SwapEvent, error) {
	var ms []models.SwapEvent
	q := GetDB(ctx, r.db).WithContext(ctx).
		Where("registry_address = ? AND log_index >= ?", registry.Hex(), fromLogIndex).
		Order("log_index ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&ms).Error; err != nil {
		return nil, err
	}

	events := make([]*entities.SwapEvent, 0, len(ms))
	for i := range ms {
		m := ms[i]
		events = append(events, &entities.SwapEvent{
			ID:              m.ID,
			RegistryAddress: common.HexToAddress(m.RegistryAddress),
			OfferID:         m.OfferID,
			State:           entities.SwapState(m.State),
			LogIndex:        m.LogIndex,
			Topic:           common.HexToHash(m.Topic),
			Data:            m.Data,
			CreatedAt:       m.CreatedAt,
		})
	}
	return events, nil
}
