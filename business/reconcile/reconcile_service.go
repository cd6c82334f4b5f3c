package reconcile

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"math"
	"promoMarket/business/discount"
	"promoMarket/domain"
	"promoMarket/pkg/logger"
	"promoMarket/pkg/metrics"
	"time"
)

// CatalogMatcher contract interface
type CatalogMatcher interface {
	MatchByBarcode(ctx context.Context, barcode string) (*domain.CatalogEntry, error)
}

// Enricher never fails: it degrades to defaults and always returns one
// result per input.
type Enricher interface {
	EnrichAll(ctx context.Context, inputs []domain.EnrichmentInput) []domain.EnrichmentResult
}

type StoreRepository interface {
	GetOrCreate(ctx context.Context, storeName string) (string, error)
}

type ProductRepository interface {
	Upsert(ctx context.Context, product *domain.Product) (string, error)
}

type PromotionRepository interface {
	DeactivateAllActive(ctx context.Context, storeID string) (int64, error)
	Create(ctx context.Context, promo *domain.Promotion) error
}

type reconcileService struct {
	matcher     CatalogMatcher
	enricher    Enricher
	storeRepo   StoreRepository
	productRepo ProductRepository
	promoRepo   PromotionRepository
}

func NewReconcileService(
	matcher CatalogMatcher,
	enricher Enricher,
	storeRepo StoreRepository,
	productRepo ProductRepository,
	promoRepo PromotionRepository,
) *reconcileService {
	return &reconcileService{
		matcher:     matcher,
		enricher:    enricher,
		storeRepo:   storeRepo,
		productRepo: productRepo,
		promoRepo:   promoRepo,
	}
}

// urlGroup is one physical product: every scrape row sharing a source URL,
// possibly carrying several packaging barcodes.
type urlGroup struct {
	url      string
	name     string
	discount string
	barcodes []string
	price    *float64
}

type resolvedGroup struct {
	group    *urlGroup
	entry    *domain.CatalogEntry
	status   domain.MatchStatus
	matchErr error
}

// Run executes one full reconciliation batch for a store. The returned
// summary is always populated when the pipeline itself could execute;
// per-group failures land in the summary's error list and never abort the
// run. Overlapping runs for the same store are an unsupported race.
func (s *reconcileService) Run(ctx context.Context, storeName string, items []domain.RawScrapeItem, validFrom, validUntil time.Time) (domain.ReconcileSummary, error) {
	start := time.Now()
	metrics.ReconcileRunsTotal.Inc()
	defer func() {
		metrics.ReconcileRunDuration.Observe(time.Since(start).Seconds())
	}()

	summary := domain.ReconcileSummary{
		Store:      storeName,
		ErrorList:  []domain.GroupError{},
		ValidFrom:  validFrom,
		ValidUntil: validUntil,
	}

	if storeName == "" {
		return summary, errors.New("store name is required")
	}

	if err := ctx.Err(); err != nil {
		return summary, fmt.Errorf("context error: %w", err)
	}

	groups := groupItems(items)
	if len(groups) == 0 {
		logger.Info("reconcile run received no usable items", "store", storeName)
		return summary, nil
	}

	storeID, err := s.storeRepo.GetOrCreate(ctx, storeName)
	if err != nil {
		return summary, fmt.Errorf("failed to resolve store %q: %w", storeName, err)
	}

	logger.Info("starting reconcile run",
		"store", storeName, "groups", len(groups),
		"valid_from", validFrom.Format("2006-01-02"), "valid_until", validUntil.Format("2006-01-02"))

	resolved := s.resolveGroups(ctx, groups)
	enrichments := s.enricher.EnrichAll(ctx, enrichmentInputs(resolved))

	// Barrier: the previous active set must be observably gone before any
	// insert, so the active set always reflects exactly the latest scrape.
	if _, err := s.promoRepo.DeactivateAllActive(ctx, storeID); err != nil {
		return summary, fmt.Errorf("failed to deactivate previous promotions: %w", err)
	}

	for i, rg := range resolved {
		if rg.matchErr != nil {
			s.recordGroupError(&summary, rg.group.url, rg.matchErr)
			continue
		}

		if err := s.persistGroup(ctx, storeID, rg, enrichments[i], validFrom, validUntil); err != nil {
			s.recordGroupError(&summary, rg.group.url, err)
			continue
		}

		metrics.GroupOutcomesTotal.WithLabelValues(rg.status.String()).Inc()
		switch rg.status {
		case domain.MatchStatusMatched:
			summary.Matched++
		case domain.MatchStatusNotFound:
			summary.NotFound++
		}
	}

	logger.Info("reconcile run finished",
		"store", storeName, "matched", summary.Matched,
		"not_found", summary.NotFound, "errors", summary.Failed)

	return summary, nil
}

// resolveGroups tries every barcode candidate in listed order; the first
// catalog hit wins. A matcher error marks the group failed without touching
// the others.
func (s *reconcileService) resolveGroups(ctx context.Context, groups []*urlGroup) []resolvedGroup {
	resolved := make([]resolvedGroup, 0, len(groups))

	for _, g := range groups {
		rg := resolvedGroup{group: g, status: domain.MatchStatusNotFound}

		for _, barcode := range g.barcodes {
			entry, err := s.matcher.MatchByBarcode(ctx, barcode)
			if err != nil {
				rg.status = domain.MatchStatusError
				rg.matchErr = err
				break
			}
			if entry != nil {
				rg.entry = entry
				rg.status = domain.MatchStatusMatched
				break
			}
		}

		resolved = append(resolved, rg)
	}

	return resolved
}

func enrichmentInputs(resolved []resolvedGroup) []domain.EnrichmentInput {
	inputs := make([]domain.EnrichmentInput, len(resolved))

	for i, rg := range resolved {
		name := rg.group.name
		if name == "" && rg.entry != nil {
			name = rg.entry.ProductName
		}
		inputs[i] = domain.EnrichmentInput{
			Name:          name,
			Discount:      rg.group.discount,
			OriginalPrice: rg.group.price,
		}
	}

	return inputs
}

func (s *reconcileService) persistGroup(ctx context.Context, storeID string, rg resolvedGroup, enr domain.EnrichmentResult, validFrom, validUntil time.Time) error {
	g := rg.group

	rule := discount.Parse(g.discount)
	// The oracle overrides the regex parser only when it opines on both
	// deal-shape fields.
	if enr.IsMeerdereArtikels != nil && enr.DealQuantity != nil {
		rule.IsMultiUnit = *enr.IsMeerdereArtikels
		rule.DealQuantity = *enr.DealQuantity
	}

	barcode := resolveBarcode(rg)
	displayName := resolveDisplayName(rg, enr, barcode)
	promoPrice := resolvePromoPrice(enr.PromoPrice, rule.EquivalentPercentage, g.price)

	product := &domain.Product{
		Barcode:     barcode,
		ProductName: displayName,
	}
	if rg.entry != nil {
		product.Brand = rg.entry.Brands
		product.EnergyKcal100g = rg.entry.EnergyKcal100g
		product.Proteins100g = rg.entry.Proteins100g
		product.Carbohydrates100g = rg.entry.Carbohydrates100g
		product.Fat100g = rg.entry.Fat100g
		product.Sugars100g = rg.entry.Sugars100g
		product.Fiber100g = rg.entry.Fiber100g
		product.Salt100g = rg.entry.Salt100g
	}

	productID, err := s.productRepo.Upsert(ctx, product)
	if err != nil {
		return fmt.Errorf("failed to upsert product %s: %w", barcode, err)
	}

	promo := &domain.Promotion{
		StoreID:              storeID,
		ProductID:            &productID,
		Barcode:              barcode,
		ProductName:          displayName,
		DiscountLabel:        g.discount,
		EquivalentPercentage: rule.EquivalentPercentage,
		OriginalPrice:        g.price,
		PromoPrice:           promoPrice,
		Category:             enr.Category,
		PrimaryMacro:         enr.PrimaryMacro,
		IsHealthy:            enr.IsHealthy,
		IsMeerdereArtikels:   rule.IsMultiUnit,
		DealQuantity:         rule.DealQuantity,
		ValidFrom:            validFrom,
		ValidUntil:           validUntil,
		IsActive:             true,
	}
	if promo.Category == "" {
		promo.Category = domain.CategoryOther
	}
	if promo.PrimaryMacro == "" {
		promo.PrimaryMacro = domain.MacroNone
	}

	if err := s.promoRepo.Create(ctx, promo); err != nil {
		return fmt.Errorf("failed to create promotion for %s: %w", barcode, err)
	}

	return nil
}

// resolveBarcode prefers the catalog's normalized barcode, then the first
// scraped candidate; a group without any candidate gets a deterministic
// placeholder derived from its URL.
func resolveBarcode(rg resolvedGroup) string {
	if rg.entry != nil {
		return rg.entry.Barcode
	}
	for _, b := range rg.group.barcodes {
		if b != "" {
			return b
		}
	}
	return placeholderBarcode(rg.group.url)
}

// Name priority: oracle clean name > scraped page title > catalog name >
// synthesized fallback.
func resolveDisplayName(rg resolvedGroup, enr domain.EnrichmentResult, barcode string) string {
	if enr.CleanName != nil && *enr.CleanName != "" {
		return *enr.CleanName
	}
	if rg.group.name != "" {
		return rg.group.name
	}
	if rg.entry != nil && rg.entry.ProductName != "" {
		return rg.entry.ProductName
	}
	return fmt.Sprintf("Unknown Product (%s)", barcode)
}

// resolvePromoPrice trusts the oracle when it computed a price, otherwise
// derives one from the parsed discount. Both inputs missing means no price.
func resolvePromoPrice(oraclePrice, equivalentPct, originalPrice *float64) float64 {
	if oraclePrice != nil {
		return round2(*oraclePrice)
	}
	if equivalentPct != nil && originalPrice != nil {
		return round2(*originalPrice * (1 - *equivalentPct/100))
	}
	return 0.0
}

func (s *reconcileService) recordGroupError(summary *domain.ReconcileSummary, url string, err error) {
	logger.Error("group processing failed", "url", url, "error", err)
	metrics.GroupOutcomesTotal.WithLabelValues(domain.MatchStatusError.String()).Inc()
	summary.Failed++
	summary.ErrorList = append(summary.ErrorList, domain.GroupError{
		URL:     url,
		Message: err.Error(),
	})
}

func groupItems(items []domain.RawScrapeItem) []*urlGroup {
	byURL := make(map[string]*urlGroup)
	ordered := make([]*urlGroup, 0, len(items))

	for _, item := range items {
		if item.URL == "" || item.Discount == "" {
			continue
		}

		g, ok := byURL[item.URL]
		if !ok {
			g = &urlGroup{url: item.URL}
			byURL[item.URL] = g
			ordered = append(ordered, g)
		}

		if g.name == "" {
			g.name = item.Name
		}
		if g.discount == "" {
			g.discount = item.Discount
		}
		if g.price == nil {
			g.price = item.Price
		}
		if item.Barcode != "" && !containsString(g.barcodes, item.Barcode) {
			g.barcodes = append(g.barcodes, item.Barcode)
		}
	}

	return ordered
}

func containsString(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

func placeholderBarcode(url string) string {
	h := fnv.New32a()
	h.Write([]byte(url))
	return fmt.Sprintf("URL-%08x", h.Sum32())
}

// round2 rounds half-up in decimal terms. The epsilon keeps amounts like
// 19.99 * 0.5 from landing a hair below the .xx5 boundary in binary and
// rounding to 9.99 instead of 10.00.
func round2(v float64) float64 {
	return math.Round(v*100+1e-9) / 100
}
