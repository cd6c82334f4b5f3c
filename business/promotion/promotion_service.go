package promotion

import (
	"context"
	"fmt"
	"promoMarket/domain"
	"promoMarket/pkg/logger"
)

type PromotionRepository interface {
	FindActive(ctx context.Context) ([]domain.Promotion, error)
	FindActiveByStoreName(ctx context.Context, storeName string) ([]domain.Promotion, error)
	DeactivateExpired(ctx context.Context, storeName string) (int64, error)
}

type promotionService struct {
	promotionRepository PromotionRepository
}

func NewPromotionService(promotionRepository PromotionRepository) *promotionService {
	return &promotionService{
		promotionRepository: promotionRepository,
	}
}

// GetActivePromotions returns the current active set, optionally narrowed to
// one store by name. An unknown store name yields an empty list, not an
// error.
func (s *promotionService) GetActivePromotions(ctx context.Context, storeName string) ([]domain.Promotion, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	var (
		promotions []domain.Promotion
		err        error
	)

	if storeName == "" {
		promotions, err = s.promotionRepository.FindActive(ctx)
	} else {
		promotions, err = s.promotionRepository.FindActiveByStoreName(ctx, storeName)
	}
	if err != nil {
		logger.Error("failed to fetch active promotions", "store", storeName, "error", err)
		return nil, err
	}

	if promotions == nil {
		promotions = []domain.Promotion{}
	}

	return promotions, nil
}

// DeactivateExpiredPromotions retires every active promotion whose validity
// window has passed and reports how many were touched. An empty store name
// sweeps all stores.
func (s *promotionService) DeactivateExpiredPromotions(ctx context.Context, storeName string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, fmt.Errorf("context error: %w", err)
	}

	count, err := s.promotionRepository.DeactivateExpired(ctx, storeName)
	if err != nil {
		logger.Error("failed to deactivate expired promotions", "store", storeName, "error", err)
		return 0, err
	}

	if count > 0 {
		logger.Info("deactivated expired promotions", "count", count, "store", storeName)
	}

	return count, nil
}
