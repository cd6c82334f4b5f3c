package postgres

import (
	"context"
	"errors"
	"fmt"
	"promoMarket/domain"
	"strings"

	"gorm.io/gorm"
)

type CatalogRepository struct {
	DB *gorm.DB
}

func NewCatalogRepository(db *gorm.DB) *CatalogRepository {
	return &CatalogRepository{
		DB: db,
	}
}

func (r *CatalogRepository) FindByBarcode(ctx context.Context, barcode string) (*domain.CatalogEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	var entry domain.CatalogEntry

	err := r.DB.WithContext(ctx).Where("barcode = ?", barcode).First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find catalog entry: %w", err)
	}

	return &entry, nil
}

// SearchCandidates pulls rows worth scoring for a fuzzy name search: exact
// name hits, substring hits, then rows containing every search word. The
// caller does the actual scoring and ranking.
func (r *CatalogRepository) SearchCandidates(ctx context.Context, query string, words []string, limit int) ([]domain.CatalogEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	if limit <= 0 {
		limit = 10
	}

	var candidates []domain.CatalogEntry

	err := r.DB.WithContext(ctx).
		Where("LOWER(product_name) = ?", query).
		Limit(limit).
		Find(&candidates).Error
	if err != nil {
		return nil, fmt.Errorf("failed to search catalog: %w", err)
	}
	if len(candidates) >= limit {
		return candidates, nil
	}

	var substringHits []domain.CatalogEntry
	err = r.DB.WithContext(ctx).
		Where("LOWER(product_name) LIKE ? AND LOWER(product_name) != ?", "%"+query+"%", query).
		Limit(limit - len(candidates)).
		Find(&substringHits).Error
	if err != nil {
		return nil, fmt.Errorf("failed to search catalog: %w", err)
	}
	candidates = append(candidates, substringHits...)
	if len(candidates) >= limit || len(words) < 2 {
		return candidates, nil
	}

	// All-words match for multi-word queries the substring pass missed
	tx := r.DB.WithContext(ctx).Where("LOWER(product_name) NOT LIKE ?", "%"+query+"%")
	for _, word := range words {
		tx = tx.Where("LOWER(product_name) LIKE ?", "%"+strings.ToLower(word)+"%")
	}

	var wordHits []domain.CatalogEntry
	if err := tx.Limit(limit - len(candidates)).Find(&wordHits).Error; err != nil {
		return nil, fmt.Errorf("failed to search catalog: %w", err)
	}

	return append(candidates, wordHits...), nil
}

func (r *CatalogRepository) Stats(ctx context.Context) (domain.CatalogStats, error) {
	if err := ctx.Err(); err != nil {
		return domain.CatalogStats{}, fmt.Errorf("context error: %w", err)
	}

	var stats domain.CatalogStats

	err := r.DB.WithContext(ctx).Model(&domain.CatalogEntry{}).Count(&stats.TotalEntries).Error
	if err != nil {
		return domain.CatalogStats{}, fmt.Errorf("failed to count catalog entries: %w", err)
	}

	err = r.DB.WithContext(ctx).
		Model(&domain.CatalogEntry{}).
		Where("energy_kcal_100g IS NOT NULL OR proteins_100g IS NOT NULL OR carbohydrates_100g IS NOT NULL OR fat_100g IS NOT NULL").
		Count(&stats.EntriesWithMacro).Error
	if err != nil {
		return domain.CatalogStats{}, fmt.Errorf("failed to count catalog entries with nutrition: %w", err)
	}

	return stats, nil
}
