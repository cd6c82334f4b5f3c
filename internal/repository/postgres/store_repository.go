package postgres

import (
	"context"
	"errors"
	"fmt"
	"promoMarket/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type StoreRepository struct {
	DB *gorm.DB
}

func NewStoreRepository(db *gorm.DB) *StoreRepository {
	return &StoreRepository{
		DB: db,
	}
}

// GetOrCreate resolves a store name to its id, inserting the row on first
// sight. A concurrent insert losing the unique-index race falls back to a
// refetch, so the call is idempotent.
func (r *StoreRepository) GetOrCreate(ctx context.Context, storeName string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("context error: %w", err)
	}

	var store domain.Store

	err := r.DB.WithContext(ctx).Where("store_name = ?", storeName).First(&store).Error
	if err == nil {
		return store.StoreID, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", fmt.Errorf("failed to find store: %w", err)
	}

	store = domain.Store{
		StoreID:   uuid.New().String(),
		StoreName: storeName,
	}

	if err := r.DB.WithContext(ctx).Create(&store).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			var existing domain.Store
			if ferr := r.DB.WithContext(ctx).Where("store_name = ?", storeName).First(&existing).Error; ferr != nil {
				return "", fmt.Errorf("failed to refetch store after duplicate insert: %w", ferr)
			}
			return existing.StoreID, nil
		}
		return "", fmt.Errorf("failed to create store: %w", err)
	}

	return store.StoreID, nil
}

func (r *StoreRepository) FindByName(ctx context.Context, storeName string) (*domain.Store, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	var store domain.Store

	err := r.DB.WithContext(ctx).Where("LOWER(store_name) = LOWER(?)", storeName).First(&store).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find store: %w", err)
	}

	return &store, nil
}

func (r *StoreRepository) FindAll(ctx context.Context) ([]domain.Store, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	var stores []domain.Store
	err := r.DB.WithContext(ctx).Order("store_name ASC").Find(&stores).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find stores: %w", err)
	}

	return stores, nil
}
