package rest

import (
	"context"
	"net/http"
	"promoMarket/domain"
	"promoMarket/pkg/logger"
	"strconv"
	"time"

	"github.com/AMFarhan21/fres"
	"github.com/labstack/echo/v4"
)

type MatcherService interface {
	MatchByBarcode(ctx context.Context, barcode string) (*domain.CatalogEntry, error)
	MatchByName(ctx context.Context, name string, limit int, minScore float64) ([]domain.CatalogEntry, error)
	Stats(ctx context.Context) (domain.CatalogStats, error)
}

type ProductHandler struct {
	matcherService MatcherService
	timeout        time.Duration
}

func NewProductHandler(matcherService MatcherService) *ProductHandler {
	return &ProductHandler{
		matcherService: matcherService,
		timeout:        15 * time.Second,
	}
}

func (h *ProductHandler) SearchByName(c echo.Context) error {
	query := c.QueryParam("q")
	if query == "" {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "query parameter q is required"})
	}

	limit := 5
	if limitStr := c.QueryParam("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed <= 0 {
			return c.JSON(http.StatusBadRequest, ResponseError{Message: "invalid limit"})
		}
		limit = parsed
	}

	minScore := 50.0
	if minScoreStr := c.QueryParam("min_score"); minScoreStr != "" {
		parsed, err := strconv.ParseFloat(minScoreStr, 64)
		if err != nil || parsed < 0 || parsed > 100 {
			return c.JSON(http.StatusBadRequest, ResponseError{Message: "invalid min_score"})
		}
		minScore = parsed
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	matches, err := h.matcherService.MatchByName(ctx, query, limit, minScore)
	if err != nil {
		logger.Error("Failed to search products by name", err)
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	if matches == nil {
		matches = []domain.CatalogEntry{}
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(matches))
}

func (h *ProductHandler) GetByBarcode(c echo.Context) error {
	barcode := c.Param("barcode")

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	entry, err := h.matcherService.MatchByBarcode(ctx, barcode)
	if err != nil {
		logger.Error("Failed to look up product by barcode", err)
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	if entry == nil {
		return c.JSON(http.StatusNotFound, ResponseError{Message: "product not found"})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(entry))
}

func (h *ProductHandler) CatalogStats(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	stats, err := h.matcherService.Stats(ctx)
	if err != nil {
		logger.Error("Failed to read catalog stats", err)
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(stats))
}
