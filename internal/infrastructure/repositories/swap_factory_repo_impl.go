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

// SwapFactoryRepository implements repositories.SwapFactoryRepository
type SwapFactoryRepository struct {
	db *gorm.DB
}

func NewSwapFactoryRepository(db *gorm.DB) *SwapFactoryRepository {
	return &SwapFactoryRepository{db: db}
}

func (r *SwapFactoryRepository) Create(ctx context.Context, factory *entities.SwapFactory) error {
	now := time.Now()
	m := &models.SwapFactory{
		Address:         factory.Address.Hex(),
		Owner:           factory.Owner.Hex(),
		Template:        factory.Template.Hex(),
		PaymentToken:    factory.PaymentToken.Hex(),
		Nonce:           factory.Nonce,
		CurrentInstance: nullStringToPtr(factory.CurrentInstance),
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := GetDB(ctx, r.db).WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	factory.CreatedAt = m.CreatedAt
	factory.UpdatedAt = m.UpdatedAt
	return nil
}

func (r *SwapFactoryRepository) GetByAddress(ctx context.Context, address common.Address) (*entities.SwapFactory, error) {
	var m models.SwapFactory
	if err := GetDB(ctx, r.db).WithContext(ctx).Where("address = ?", address.Hex()).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return &entities.SwapFactory{
		Address:         common.HexToAddress(m.Address),
		Owner:           common.HexToAddress(m.Owner),
		Template:        common.HexToAddress(m.Template),
		PaymentToken:    common.HexToAddress(m.PaymentToken),
		Nonce:           m.Nonce,
		CurrentInstance: null.StringFromPtr(m.CurrentInstance),
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}, nil
}

func (r *SwapFactoryRepository) RecordDeployment(ctx context.Context, factory common.Address, nonce uint64, instance common.Address) error {
	res := GetDB(ctx, r.db).WithContext(ctx).Model(&models.SwapFactory{}).
		Where("address = ? AND nonce = ?", factory.Hex(), nonce).
		Updates(map[string]interface{}{
			"nonce":            nonce + 1,
			"current_instance": instance.Hex(),
			"updated_at":       time.Now(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domainerrors.ErrStateConflict
	}
	return nil
}

func (r *SwapFactoryRepository) UpdateOwner(ctx context.Context, factory common.Address, owner common.Address) error {
	res := GetDB(ctx, r.db).WithContext(ctx).Model(&models.SwapFactory{}).
		Where("address = ?", factory.Hex()).
		Updates(map[string]interface{}{
			"owner":      owner.Hex(),
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
