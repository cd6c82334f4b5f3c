package store

import (
	"context"
	"fmt"
	"promoMarket/domain"
	"promoMarket/pkg/logger"
)

type StoreRepository interface {
	FindAll(ctx context.Context) ([]domain.Store, error)
	FindByName(ctx context.Context, storeName string) (*domain.Store, error)
}

type storeService struct {
	storeRepository StoreRepository
}

func NewStoreService(storeRepository StoreRepository) *storeService {
	return &storeService{
		storeRepository: storeRepository,
	}
}

// GetAllStores lists every store the pipeline has seen a scrape for.
func (s *storeService) GetAllStores(ctx context.Context) ([]domain.Store, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	stores, err := s.storeRepository.FindAll(ctx)
	if err != nil {
		logger.Error("failed to fetch stores", err)
		return nil, err
	}

	if stores == nil {
		stores = []domain.Store{}
	}

	return stores, nil
}

// GetStoreByName resolves one store by case-insensitive name. Absence is
// (nil, nil); the handler decides how to report it.
func (s *storeService) GetStoreByName(ctx context.Context, storeName string) (*domain.Store, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	store, err := s.storeRepository.FindByName(ctx, storeName)
	if err != nil {
		logger.Error("failed to fetch store", "store", storeName, "error", err)
		return nil, err
	}

	return store, nil
}
