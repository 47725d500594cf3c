package repositories

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/volatiletech/null/v8"
	"gorm.io/gorm"
	"nft-swapper.backend/internal/domain/entities"
	domainerrors "nft-swapper.backend/internal/domain/errors"
	domainRepos "nft-swapper.backend/internal/domain/repositories"
	"nft-swapper.backend/internal/infrastructure/models"
)

// SwapOfferRepository implements repositories.SwapOfferRepository
type SwapOfferRepository struct {
	db *gorm.DB
}

func NewSwapOfferRepository(db *gorm.DB) *SwapOfferRepository {
	return &SwapOfferRepository{db: db}
}

func (r *SwapOfferRepository) Create(ctx context.Context, offer *entities.SwapOffer) error {
	now := time.Now()
	m := &models.SwapOffer{
		RegistryAddress:    offer.RegistryAddress.Hex(),
		OfferID:            offer.ID,
		MakerAssetRegistry: offer.MakerAsset.Registry.Hex(),
		MakerAssetID:       bigToString(offer.MakerAsset.TokenID),
		TakerAssetRegistry: offer.TakerAsset.Registry.Hex(),
		TakerAssetID:       bigToString(offer.TakerAsset.TokenID),
		MakerAddress:       offer.MakerAddress.Hex(),
		PaymentAmount:      bigToString(offer.PaymentAmount),
		State:              uint8(offer.State),
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if err := GetDB(ctx, r.db).WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	offer.CreatedAt = m.CreatedAt
	offer.UpdatedAt = m.UpdatedAt
	return nil
}

func (r *SwapOfferRepository) GetByID(ctx context.Context, registry common.Address, id uint64) (*entities.SwapOffer, error) {
	// offer_id is a signed bigint column; larger ids can never have been stored.
	if id > math.MaxInt64 {
		return nil, domainerrors.ErrNotFound
	}
	var m models.SwapOffer
	if err := GetDB(ctx, r.db).WithContext(ctx).
		Where("registry_address = ? AND offer_id = ?", registry.Hex(), id).
		First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return r.toEntity(&m), nil
}

func (r *SwapOfferRepository) ListByRegistry(ctx context.Context, registry common.Address, filter domainRepos.SwapOfferFilter, limit, offset int) ([]*entities.SwapOffer, int64, error) {
	query := GetDB(ctx, r.db).WithContext(ctx).Model(&models.SwapOffer{}).
		Where("registry_address = ?", registry.Hex())
	if filter.State != nil {
		query = query.Where("state = ?", uint8(*filter.State))
	}
	if filter.Maker != nil {
		query = query.Where("maker_address = ?", filter.Maker.Hex())
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var ms []models.SwapOffer
	q := query.Order("offer_id ASC")
	if limit > 0 {
		q = q.Limit(limit).Offset(offset)
	}
	if err := q.Find(&ms).Error; err != nil {
		return nil, 0, err
	}

	offers := make([]*entities.SwapOffer, 0, len(ms))
	for i := range ms {
		offers = append(offers, r.toEntity(&ms[i]))
	}
	return offers, total, nil
}

func (r *SwapOfferRepository) Transition(ctx context.Context, t domainRepos.SwapOfferTransition) error {
	if t.OfferID > math.MaxInt64 {
		return domainerrors.ErrStateConflict
	}
	res := GetDB(ctx, r.db).WithContext(ctx).Model(&models.SwapOffer{}).
		Where("registry_address = ? AND offer_id = ? AND state = ?", t.Registry.Hex(), t.OfferID, uint8(entities.SwapStateCreated)).
		Updates(map[string]interface{}{
			"state":         uint8(t.To),
			"settled_by":    t.SettledBy.Hex(),
			"settled_at":    t.At,
			"taker_address": addressPtr(t.TakerAddress),
			"updated_at":    time.Now(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domainerrors.ErrStateConflict
	}
	return nil
}

func (r *SwapOfferRepository) CountOpen(ctx context.Context) (int64, error) {
	var total int64
	err := GetDB(ctx, r.db).WithContext(ctx).Model(&models.SwapOffer{}).
		Where("state = ?", uint8(entities.SwapStateCreated)).
		Count(&total).Error
	return total, err
}

// CountOpenExpired counts Created offers whose registry expired before now.
func (r *SwapOfferRepository) CountOpenExpired(ctx context.Context, now time.Time) (int64, error) {
	var total int64
	err := GetDB(ctx, r.db).WithContext(ctx).Model(&models.SwapOffer{}).
		Joins("JOIN swap_registries ON swap_registries.address = swap_offers.registry_address").
		Where("swap_offers.state = ? AND swap_registries.expires_at IS NOT NULL AND swap_registries.expires_at < ?", uint8(entities.SwapStateCreated), now).
		Count(&total).Error
	return total, err
}

func (r *SwapOfferRepository) toEntity(m *models.SwapOffer) *entities.SwapOffer {
	return &entities.SwapOffer{
		RegistryAddress: common.HexToAddress(m.RegistryAddress),
		ID:              m.OfferID,
		MakerAsset: entities.AssetRef{
			Registry: common.HexToAddress(m.MakerAssetRegistry),
			TokenID:  bigFromString(m.MakerAssetID),
		},
		TakerAsset: entities.AssetRef{
			Registry: common.HexToAddress(m.TakerAssetRegistry),
			TokenID:  bigFromString(m.TakerAssetID),
		},
		MakerAddress:  common.HexToAddress(m.MakerAddress),
		PaymentAmount: bigFromString(m.PaymentAmount),
		State:         entities.SwapState(m.State),
		TakerAddress:  null.StringFromPtr(m.TakerAddress),
		SettledBy:     null.StringFromPtr(m.SettledBy),
		SettledAt:     null.TimeFromPtr(m.SettledAt),
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}
