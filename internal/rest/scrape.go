package rest

import (
	"context"
	"net/http"
	"promoMarket/domain"
	"promoMarket/pkg/logger"
	"time"

	"github.com/AMFarhan21/fres"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type ReconcileService interface {
	Run(ctx context.Context, storeName string, items []domain.RawScrapeItem, validFrom, validUntil time.Time) (domain.ReconcileSummary, error)
}

type ScrapeHandler struct {
	reconcileService ReconcileService
	validator        *validator.Validate
	timeout          time.Duration
}

func NewScrapeHandler(reconcileService ReconcileService) *ScrapeHandler {
	return &ScrapeHandler{
		reconcileService: reconcileService,
		validator:        validator.New(),
		// A full scrape batch runs matching, enrichment and persistence
		timeout: 120 * time.Second,
	}
}

type ScrapeItemRequest struct {
	URL      string   `json:"url" validate:"required"`
	Name     string   `json:"name"`
	Discount string   `json:"discount" validate:"required"`
	Barcode  string   `json:"barcode"`
	Price    *float64 `json:"price"`
}

type ScrapeUploadRequest struct {
	PromotionFrom string              `json:"promotion_from"`
	PromotionTo   string              `json:"promotion_to"`
	Items         []ScrapeItemRequest `json:"items" validate:"required,min=1,dive"`
}

// UploadScrape ingests one scraper run for a store and reconciles it into
// the promotion database.
func (h *ScrapeHandler) UploadScrape(c echo.Context) error {
	storeName := c.Param("store")
	if storeName == "" {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "store name is required"})
	}

	var req ScrapeUploadRequest
	if err := c.Bind(&req); err != nil {
		logger.Error("Failed to bind scrape request", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	if err := h.validator.Struct(&req); err != nil {
		logger.Error("Failed to validate scrape request", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	validFrom, validUntil, err := parseValidityWindow(req.PromotionFrom, req.PromotionTo)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	items := make([]domain.RawScrapeItem, len(req.Items))
	for i, item := range req.Items {
		items[i] = domain.RawScrapeItem{
			URL:      item.URL,
			Name:     item.Name,
			Discount: item.Discount,
			Barcode:  item.Barcode,
			Price:    item.Price,
		}
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	summary, err := h.reconcileService.Run(ctx, storeName, items, validFrom, validUntil)
	if err != nil {
		logger.Error("Failed to reconcile scrape batch", "store", storeName, "error", err)
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(summary))
}

// parseValidityWindow accepts D/M/YYYY dates; missing values default to
// today and a week from today.
func parseValidityWindow(fromStr, untilStr string) (time.Time, time.Time, error) {
	now := time.Now().Truncate(24 * time.Hour)

	validFrom := now
	if fromStr != "" {
		parsed, err := time.Parse("2/1/2006", fromStr)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		validFrom = parsed
	}

	validUntil := validFrom.AddDate(0, 0, 7)
	if untilStr != "" {
		parsed, err := time.Parse("2/1/2006", untilStr)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		validUntil = parsed
	}

	return validFrom, validUntil, nil
}
