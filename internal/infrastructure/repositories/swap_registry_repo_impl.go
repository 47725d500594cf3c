package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/volatiletech/null/v8"
	"gorm.io/gorm"
	"nft-swapper.backend/internal/domain/entities"
	domainerrors "nft-swapper.backend/internal/domain/errors"
	"nft-swapper.backend/internal/infrastructure/models"
)

// SwapRegistryRepository implements repositories.SwapRegistryRepository
type SwapRegistryRepository struct {
	db *gorm.DB
}

func NewSwapRegistryRepository(db *gorm.DB) *SwapRegistryRepository {
	return &SwapRegistryRepository{db: db}
}

func (r *SwapRegistryRepository) Create(ctx context.Context, registry *entities.SwapRegistry) error {
	now := time.Now()
	m := &models.SwapRegistry{
		Address:      registry.Address.Hex(),
		Owner:        registry.Owner.Hex(),
		PaymentToken: registry.PaymentToken.Hex(),
		Factory:      nullStringToPtr(registry.Factory),
		Template:     nullStringToPtr(registry.Template),
		ExpiresAt:    nullTimeToPtr(registry.Expiry),
		NextOfferID:  registry.NextOfferID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := GetDB(ctx, r.db).WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	registry.CreatedAt = m.CreatedAt
	registry.UpdatedAt = m.UpdatedAt
	return nil
}

func (r *SwapRegistryRepository) GetByAddress(ctx context.Context, address common.Address) (*entities.SwapRegistry, error) {
	var m models.SwapRegistry
	if err := GetDB(ctx, r.db).WithContext(ctx).Where("address = ?", address.Hex()).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return r.toEntity(&m), nil
}

func (r *SwapRegistryRepository) AllocateOfferID(ctx context.Context, address common.Address) (uint64, error) {
	db := GetDB(ctx, r.db).WithContext(ctx)

	var m models.SwapRegistry
	if err := db.Select("next_offer_id").Where("address = ?", address.Hex()).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, domainerrors.ErrNotFound
		}
		return 0, err
	}

	res := db.Model(&models.SwapRegistry{}).
		Where("address = ? AND next_offer_id = ?", address.Hex(), m.NextOfferID).
		Updates(map[string]interface{}{
			"next_offer_id": gorm.Expr("next_offer_id + ?", 1),
			"updated_at":    time.Now(),
		})
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected == 0 {
		return 0, domainerrors.ErrStateConflict
	}
	return m.NextOfferID, nil
}

func (r *SwapRegistryRepository) SetExpiry(ctx context.Context, address common.Address, expiry *time.Time) error {
	res := GetDB(ctx, r.db).WithContext(ctx).Model(&models.SwapRegistry{}).
		Where("address = ?", address.Hex()).
		Updates(map[string]interface{}{
			"expires_at": expiry,
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

func (r *SwapRegistryRepository) toEntity(m *models.SwapRegistry) *entities.SwapRegistry {
	return &entities.SwapRegistry{
		Address:      common.HexToAddress(m.Address),
		Owner:        common.HexToAddress(m.Owner),
		PaymentToken: common.HexToAddress(m.PaymentToken),
		Factory:      null.StringFromPtr(m.Factory),
		Template:     null.StringFromPtr(m.Template),
		Expiry:       null.TimeFromPtr(m.ExpiresAt),
		NextOfferID:  m.NextOfferID,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}
