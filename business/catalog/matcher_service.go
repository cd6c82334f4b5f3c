package catalog

import (
	"context"
	"fmt"
	"promoMarket/domain"
	"promoMarket/pkg/logger"
	"promoMarket/pkg/metrics"
	"sort"
	"strings"
	"time"
)

const remoteLookupTimeout = 5 * time.Second

// CatalogRepository contract interface, read-only from this service
type CatalogRepository interface {
	FindByBarcode(ctx context.Context, barcode string) (*domain.CatalogEntry, error)
	SearchCandidates(ctx context.Context, query string, words []string, limit int) ([]domain.CatalogEntry, error)
	Stats(ctx context.Context) (domain.CatalogStats, error)
}

// RemoteCatalog is the fallback lookup against the public OpenFoodFacts API.
type RemoteCatalog interface {
	FetchByBarcode(ctx context.Context, barcode string) (*domain.CatalogEntry, error)
}

// LookupCache keeps remote hits around so repeated scraper runs don't hammer
// the public API.
type LookupCache interface {
	GetEntry(ctx context.Context, barcode string) (*domain.CatalogEntry, error)
	StoreEntry(ctx context.Context, barcode string, entry *domain.CatalogEntry) error
}

type matcherService struct {
	catalogRepo CatalogRepository
	remote      RemoteCatalog
	cache       LookupCache
}

func NewMatcherService(catalogRepo CatalogRepository, remote RemoteCatalog, cache LookupCache) *matcherService {
	return &matcherService{
		catalogRepo: catalogRepo,
		remote:      remote,
		cache:       cache,
	}
}

// MatchByBarcode resolves a retailer barcode to a catalog entry. Absence is
// a valid outcome (nil, nil), not an error: a miss everywhere triggers
// placeholder-product creation downstream.
func (s *matcherService) MatchByBarcode(ctx context.Context, barcode string) (*domain.CatalogEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	barcode = strings.TrimSpace(barcode)
	if barcode == "" {
		return nil, nil
	}

	for _, variant := range barcodeVariants(barcode) {
		entry, err := s.catalogRepo.FindByBarcode(ctx, variant)
		if err != nil {
			return nil, fmt.Errorf("failed to look up barcode %s: %w", variant, err)
		}
		if entry != nil {
			entry.MatchScore = 100.0
			return entry, nil
		}
	}

	if s.cache != nil {
		entry, err := s.cache.GetEntry(ctx, barcode)
		if err != nil {
			logger.Warn("catalog cache read failed", err)
		} else if entry != nil {
			return entry, nil
		}
	}

	return s.fetchRemote(ctx, barcode)
}

// fetchRemote degrades to "no match" on any remote failure; a flaky public
// API must never fail a group.
func (s *matcherService) fetchRemote(ctx context.Context, barcode string) (*domain.CatalogEntry, error) {
	rctx, cancel := context.WithTimeout(ctx, remoteLookupTimeout)
	defer cancel()

	entry, err := s.remote.FetchByBarcode(rctx, barcode)
	if err != nil {
		logger.Warn("remote catalog lookup failed", "barcode", barcode, "error", err)
		metrics.RemoteCatalogLookupsTotal.WithLabelValues("error").Inc()
		return nil, nil
	}

	if entry == nil {
		metrics.RemoteCatalogLookupsTotal.WithLabelValues("miss").Inc()
		return nil, nil
	}

	entry.MatchScore = 100.0
	metrics.RemoteCatalogLookupsTotal.WithLabelValues("hit").Inc()

	if s.cache != nil {
		if err := s.cache.StoreEntry(ctx, barcode, entry); err != nil {
			logger.Warn("failed to cache catalog entry", err)
		}
	}

	return entry, nil
}

// MatchByName searches the catalog with fuzzy scoring: exact match 100,
// substring 70-90, word overlap 0-70. Candidates below minScore are dropped;
// results are sorted descending with ties kept in catalog iteration order.
func (s *matcherService) MatchByName(ctx context.Context, name string, limit int, minScore float64) ([]domain.CatalogEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	search := strings.ToLower(strings.TrimSpace(name))
	if search == "" {
		return nil, nil
	}

	if limit <= 0 {
		limit = 5
	}

	words := strings.Fields(search)
	candidates, err := s.catalogRepo.SearchCandidates(ctx, search, words, limit*2)
	if err != nil {
		return nil, fmt.Errorf("failed to search catalog: %w", err)
	}

	// Best score per barcode, first-seen order preserved for stable ties
	index := make(map[string]int)
	matches := make([]domain.CatalogEntry, 0, len(candidates))

	for _, candidate := range candidates {
		score := calculateScore(search, candidate.ProductName)
		if score < minScore {
			continue
		}

		if i, ok := index[candidate.Barcode]; ok {
			if score > matches[i].MatchScore {
				matches[i].MatchScore = score
			}
			continue
		}

		candidate.MatchScore = score
		index[candidate.Barcode] = len(matches)
		matches = append(matches, candidate)
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].MatchScore > matches[j].MatchScore
	})

	if len(matches) > limit {
		matches = matches[:limit]
	}

	return matches, nil
}

func (s *matcherService) Stats(ctx context.Context) (domain.CatalogStats, error) {
	if err := ctx.Err(); err != nil {
		return domain.CatalogStats{}, fmt.Errorf("context error: %w", err)
	}

	stats, err := s.catalogRepo.Stats(ctx)
	if err != nil {
		logger.Error("failed to read catalog stats", err)
		return domain.CatalogStats{}, err
	}

	return stats, nil
}

// barcodeVariants generates the lookup order for UPC/EAN/GTIN
// normalization: the exact input, the leading-zeros-stripped form, then the
// stripped form zero-padded back out to every width up to GTIN-14. A
// 12-digit UPC-A and its 13-digit EAN form resolve to the same row either
// way around.
func barcodeVariants(barcode string) []string {
	variants := []string{barcode}

	stripped := strings.TrimLeft(barcode, "0")
	if stripped != "" {
		variants = append(variants, stripped)
		for width := len(stripped) + 1; width <= 14; width++ {
			variants = append(variants, strings.Repeat("0", width-len(stripped))+stripped)
		}
	}

	seen := make(map[string]bool, len(variants))
	unique := variants[:0]
	for _, v := range variants {
		if !seen[v] {
			seen[v] = true
			unique = append(unique, v)
		}
	}

	return unique
}

func calculateScore(search, productName string) float64 {
	if productName == "" {
		return 0.0
	}

	name := strings.ToLower(productName)

	if search == name {
		return 100.0
	}

	if strings.Contains(name, search) {
		// Shorter candidate relative to the search term = tighter match
		ratio := float64(len(search)) / float64(len(name))
		return 70.0 + ratio*20.0
	}

	searchWords := make(map[string]bool)
	for _, w := range strings.Fields(search) {
		searchWords[w] = true
	}
	if len(searchWords) == 0 {
		return 0.0
	}

	nameWords := make(map[string]bool)
	for _, w := range strings.Fields(name) {
		nameWords[w] = true
	}

	matching := 0
	for w := range searchWords {
		if nameWords[w] {
			matching++
		}
	}

	return float64(matching) / float64(len(searchWords)) * 70.0
}
