package postgres

import (
	"context"
	"errors"
	"fmt"
	"promoMarket/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProductRepository struct {
	DB *gorm.DB
}

func NewProductRepository(db *gorm.DB) *ProductRepository {
	return &ProductRepository{
		DB: db,
	}
}

// Upsert inserts the product or updates the existing row for its barcode.
// Updates are coalescing: nil fields never overwrite previously stored
// values, so a later scrape without nutrition data can't wipe what an
// earlier catalog match filled in.
func (r *ProductRepository) Upsert(ctx context.Context, product *domain.Product) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("context error: %w", err)
	}

	var existing domain.Product

	err := r.DB.WithContext(ctx).Where("barcode = ?", product.Barcode).First(&existing).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return "", fmt.Errorf("failed to find product: %w", err)
		}

		product.ProductID = uuid.New().String()
		if cerr := r.DB.WithContext(ctx).Create(product).Error; cerr != nil {
			if errors.Is(cerr, gorm.ErrDuplicatedKey) {
				// Lost a concurrent insert race, the row exists now
				if ferr := r.DB.WithContext(ctx).Where("barcode = ?", product.Barcode).First(&existing).Error; ferr != nil {
					return "", fmt.Errorf("failed to refetch product after duplicate insert: %w", ferr)
				}
				return existing.ProductID, nil
			}
			return "", fmt.Errorf("failed to create product: %w", cerr)
		}

		return product.ProductID, nil
	}

	updateData := map[string]interface{}{}
	if product.ProductName != "" {
		updateData["product_name"] = product.ProductName
	}
	if product.Brand != nil {
		updateData["brand"] = *product.Brand
	}
	if product.EnergyKcal100g != nil {
		updateData["energy_kcal_100g"] = *product.EnergyKcal100g
	}
	if product.Proteins100g != nil {
		updateData["proteins_100g"] = *product.Proteins100g
	}
	if product.Carbohydrates100g != nil {
		updateData["carbohydrates_100g"] = *product.Carbohydrates100g
	}
	if product.Fat100g != nil {
		updateData["fat_100g"] = *product.Fat100g
	}
	if product.Sugars100g != nil {
		updateData["sugars_100g"] = *product.Sugars100g
	}
	if product.Fiber100g != nil {
		updateData["fiber_100g"] = *product.Fiber100g
	}
	if product.Salt100g != nil {
		updateData["salt_100g"] = *product.Salt100g
	}

	if len(updateData) > 0 {
		result := r.DB.WithContext(ctx).Model(&domain.Product{}).Where("product_id = ?", existing.ProductID).Updates(updateData)
		if result.Error != nil {
			return "", fmt.Errorf("failed to update product: %w", result.Error)
		}
	}

	return existing.ProductID, nil
}
