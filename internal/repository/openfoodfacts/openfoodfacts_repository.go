package openfoodfacts

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"promoMarket/domain"
	"time"
)

type Config struct {
	BaseURL string
}

type OpenFoodFactsRepository struct {
	config Config
	client *http.Client
}

func NewOpenFoodFactsRepository(cfg Config) *OpenFoodFactsRepository {
	return &OpenFoodFactsRepository{
		config: cfg,
		client: &http.Client{Timeout: 5 * time.Second},
	}
}

type productResponse struct {
	Status  int `json:"status"`
	Product struct {
		ProductName string `json:"product_name"`
		Brands      string `json:"brands"`
		Nutriments  struct {
			EnergyKcal100g    *float64 `json:"energy-kcal_100g"`
			Proteins100g      *float64 `json:"proteins_100g"`
			Carbohydrates100g *float64 `json:"carbohydrates_100g"`
			Fat100g           *float64 `json:"fat_100g"`
			Sugars100g        *float64 `json:"sugars_100g"`
			Fiber100g         *float64 `json:"fiber_100g"`
			Salt100g          *float64 `json:"salt_100g"`
		} `json:"nutriments"`
	} `json:"product"`
}

// FetchByBarcode looks a barcode up in the public OpenFoodFacts database.
// An unknown barcode is (nil, nil); only transport and decode problems are
// errors.
func (r *OpenFoodFactsRepository) FetchByBarcode(ctx context.Context, barcode string) (*domain.CatalogEntry, error) {
	url := fmt.Sprintf("%s/api/v2/product/%s.json", r.config.BaseURL, barcode)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Add("Accept", "application/json")

	res, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("openfoodfacts request failed: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("openfoodfacts returned status %v", res.StatusCode)
	}

	var body productResponse
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode openfoodfacts response: %w", err)
	}

	// status 0 means "barcode not in the database"
	if body.Status != 1 || body.Product.ProductName == "" {
		return nil, nil
	}

	entry := &domain.CatalogEntry{
		Barcode:           barcode,
		ProductName:       body.Product.ProductName,
		EnergyKcal100g:    body.Product.Nutriments.EnergyKcal100g,
		Proteins100g:      body.Product.Nutriments.Proteins100g,
		Carbohydrates100g: body.Product.Nutriments.Carbohydrates100g,
		Fat100g:           body.Product.Nutriments.Fat100g,
		Sugars100g:        body.Product.Nutriments.Sugars100g,
		Fiber100g:         body.Product.Nutriments.Fiber100g,
		Salt100g:          body.Product.Nutriments.Salt100g,
	}
	if body.Product.Brands != "" {
		brands := body.Product.Brands
		entry.Brands = &brands
	}

	return entry, nil
}
