package postgres

import (
	"context"
	"errors"
	"fmt"
	"promoMarket/domain"
	"promoMarket/pkg/logger"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PromotionRepository struct {
	DB *gorm.DB
}

func NewPromotionRepository(db *gorm.DB) *PromotionRepository {
	return &PromotionRepository{
		DB: db,
	}
}

// Create inserts one promotion row. A duplicate of an identical active deal
// is benign, the scrape simply listed the same product twice, so it is
// logged and swallowed.
func (r *PromotionRepository) Create(ctx context.Context, promo *domain.Promotion) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	if promo.PromoID == "" {
		promo.PromoID = uuid.New().String()
	}

	if err := r.DB.WithContext(ctx).Create(promo).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			logger.Warn("skipping duplicate promotion", "barcode", promo.Barcode, "store_id", promo.StoreID)
			return nil
		}
		return fmt.Errorf("failed to create promotion: %w", err)
	}

	return nil
}

// DeactivateAllActive retires the entire active set for one store. Runs
// before a new scrape batch is persisted.
func (r *PromotionRepository) DeactivateAllActive(ctx context.Context, storeID string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, fmt.Errorf("context error: %w", err)
	}

	result := r.DB.WithContext(ctx).
		Model(&domain.Promotion{}).
		Where("store_id = ? AND is_active = ?", storeID, true).
		Update("is_active", false)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to deactivate promotions: %w", result.Error)
	}

	return result.RowsAffected, nil
}

// DeactivateExpired retires active promotions whose validity window ended
// before now, across all stores or for one store by name.
func (r *PromotionRepository) DeactivateExpired(ctx context.Context, storeName string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, fmt.Errorf("context error: %w", err)
	}

	tx := r.DB.WithContext(ctx).
		Model(&domain.Promotion{}).
		Where("is_active = ? AND valid_until < ?", true, time.Now())
	if storeName != "" {
		tx = tx.Where("store_id IN (SELECT store_id FROM stores WHERE LOWER(store_name) = LOWER(?))", storeName)
	}

	result := tx.Update("is_active", false)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to deactivate expired promotions: %w", result.Error)
	}

	return result.RowsAffected, nil
}

func (r *PromotionRepository) FindActive(ctx context.Context) ([]domain.Promotion, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	var promotions []domain.Promotion

	err := r.DB.WithContext(ctx).
		Select("promotions.*, stores.store_name").
		Joins("JOIN stores ON stores.store_id = promotions.store_id").
		Where("promotions.is_active = ?", true).
		Order("promotions.valid_until ASC").
		Find(&promotions).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find active promotions: %w", err)
	}

	return promotions, nil
}

func (r *PromotionRepository) FindActiveByStoreName(ctx context.Context, storeName string) ([]domain.Promotion, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	var promotions []domain.Promotion

	err := r.DB.WithContext(ctx).
		Select("promotions.*, stores.store_name").
		Joins("JOIN stores ON stores.store_id = promotions.store_id").
		Where("promotions.is_active = ? AND LOWER(stores.store_name) = LOWER(?)", true, storeName).
		Order("promotions.valid_until ASC").
		Find(&promotions).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find active promotions for store: %w", err)
	}

	return promotions, nil
}
