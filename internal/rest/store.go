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

type StoreService interface {
	GetAllStores(ctx context.Context) ([]domain.Store, error)
	GetStoreByName(ctx context.Context, storeName string) (*domain.Store, error)
}

type StoreHandler struct {
	storeService StoreService
	timeout      time.Duration
}

func NewStoreHandler(storeService StoreService) *StoreHandler {
	return &StoreHandler{
		storeService: storeService,
		timeout:      10 * time.Second,
	}
}

func (h *StoreHandler) GetAllStores(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	stores, err := h.storeService.GetAllStores(ctx)
	if err != nil {
		logger.Error("Failed to get stores", err)
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(stores))
}

func (h *StoreHandler) GetStoreByName(c echo.Context) error {
	storeName := c.Param("name")

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	store, err := h.storeService.GetStoreByName(ctx, storeName)
	if err != nil {
		logger.Error("Failed to get store by name", err)
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	if store == nil {
		return c.JSON(http.StatusNotFound, ResponseError{Message: "store not found"})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(store))
}
