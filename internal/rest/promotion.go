package rest

import (
	"context"
	"net/http"
	"promoMarket/domain"
	"promoMarket/pkg/logger"
	"time"

	"github.com/AMFarhan21/fres"
	"github.com/labstack/echo/v4"
)

type ResponseError struct {
	Message string `json:"message"`
}

type PromotionService interface {
	GetActivePromotions(ctx context.Context, storeName string) ([]domain.Promotion, error)
	DeactivateExpiredPromotions(ctx context.Context, storeName string) (int64, error)
}

type PromotionHandler struct {
	promotionService PromotionService
	timeout          time.Duration
}

func NewPromotionHandler(promotionService PromotionService) *PromotionHandler {
	return &PromotionHandler{
		promotionService: promotionService,
		timeout:          10 * time.Second,
	}
}

func (h *PromotionHandler) GetActivePromotions(c echo.Context) error {
	storeName := c.QueryParam("store")

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	promotions, err := h.promotionService.GetActivePromotions(ctx, storeName)
	if err != nil {
		logger.Error("Failed to get active promotions", err)
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(promotions))
}

func (h *PromotionHandler) DeactivateExpired(c echo.Context) error {
	storeName := c.QueryParam("store")

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	count, err := h.promotionService.DeactivateExpiredPromotions(ctx, storeName)
	if err != nil {
		logger.Error("Failed to deactivate expired promotions", err)
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(map[string]interface{}{
		"deactivated": count,
	}))
}
