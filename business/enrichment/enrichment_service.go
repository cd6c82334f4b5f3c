package enrichment

import (
	"context"
	"promoMarket/domain"
	"promoMarket/pkg/logger"
	"promoMarket/pkg/metrics"
	"time"
)

const (
	defaultBatchSize  = 20
	defaultMaxRetries = 3
	defaultRetryDelay = 2 * time.Second
)

// Oracle is the external text-understanding service. A returned error covers
// transport failures and malformed responses alike; both go through the same
// retry path.
type Oracle interface {
	EnrichBatch(ctx context.Context, items []domain.EnrichmentInput) ([]domain.EnrichmentResult, error)
}

type enrichmentService struct {
	oracle     Oracle
	batchSize  int
	maxRetries int
	retryDelay time.Duration
}

func NewEnrichmentService(oracle Oracle, batchSize, maxRetries int, retryDelay time.Duration) *enrichmentService {
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}
	if retryDelay <= 0 {
		retryDelay = defaultRetryDelay
	}

	return &enrichmentService{
		oracle:     oracle,
		batchSize:  batchSize,
		maxRetries: maxRetries,
		retryDelay: retryDelay,
	}
}

// EnrichAll runs the oracle over the inputs in capped batches. The returned
// slice always has exactly len(inputs) elements in input order, whatever the
// oracle does: a failed batch degrades to neutral defaults instead of
// stalling the pipeline.
func (s *enrichmentService) EnrichAll(ctx context.Context, inputs []domain.EnrichmentInput) []domain.EnrichmentResult {
	results := make([]domain.EnrichmentResult, 0, len(inputs))

	for start := 0; start < len(inputs); start += s.batchSize {
		end := start + s.batchSize
		if end > len(inputs) {
			end = len(inputs)
		}

		batch := inputs[start:end]
		logger.Info("enriching batch", "batch", start/s.batchSize+1, "size", len(batch))
		results = append(results, s.enrichBatch(ctx, batch)...)
	}

	return results
}

func (s *enrichmentService) enrichBatch(ctx context.Context, batch []domain.EnrichmentInput) []domain.EnrichmentResult {
	for attempt := 1; attempt <= s.maxRetries; attempt++ {
		results, err := s.oracle.EnrichBatch(ctx, batch)
		if err == nil {
			return align(results, len(batch))
		}

		logger.Warn("enrichment batch failed", "attempt", attempt, "error", err)

		if attempt < s.maxRetries {
			// Linear backoff
			select {
			case <-ctx.Done():
				logger.Warn("enrichment cancelled, degrading batch")
				metrics.OracleBatchFailuresTotal.Inc()
				return defaults(len(batch))
			case <-time.After(s.retryDelay * time.Duration(attempt)):
			}
		}
	}

	logger.Error("enrichment batch exhausted retries, substituting defaults")
	metrics.OracleBatchFailuresTotal.Inc()

	return defaults(len(batch))
}

// align restores positional correspondence with the input when the oracle
// returns the wrong number of results, and scrubs out-of-set categorical
// values.
func align(results []domain.EnrichmentResult, want int) []domain.EnrichmentResult {
	if len(results) != want {
		logger.Warn("oracle returned misaligned result count", "got", len(results), "want", want)
	}

	if len(results) > want {
		results = results[:want]
	}
	for len(results) < want {
		results = append(results, domain.DefaultEnrichmentResult())
	}

	for i := range results {
		results[i].Category = domain.NormalizeCategory(results[i].Category)
		results[i].PrimaryMacro = domain.NormalizePrimaryMacro(results[i].PrimaryMacro)
	}

	return results
}

func defaults(n int) []domain.EnrichmentResult {
	results := make([]domain.EnrichmentResult, n)
	for i := range results {
		results[i] = domain.DefaultEnrichmentResult()
	}
	return results
}
