package router

import (
	"promoMarket/internal/rest"

	"github.com/labstack/echo/v4"
)

func SetupScrapeRoutes(api *echo.Group, handler *rest.ScrapeHandler, authRequired echo.MiddlewareFunc, adminOnly echo.MiddlewareFunc) {
	scrapes := api.Group("/scrapes")

	scrapes.POST("/:store", handler.UploadScrape, authRequired, adminOnly)
}

func SetupPromotionRoutes(api *echo.Group, handler *rest.PromotionHandler, authRequired echo.MiddlewareFunc, adminOnly echo.MiddlewareFunc) {
	promotions := api.Group("/promotions")

	promotions.GET("", handler.GetActivePromotions, authRequired)
	promotions.POST("/deactivate-expired", handler.DeactivateExpired, authRequired, adminOnly)
}

func SetupStoreRoutes(api *echo.Group, handler *rest.StoreHandler, authRequired echo.MiddlewareFunc) {
	stores := api.Group("/stores")

	stores.GET("", handler.GetAllStores, authRequired)
	stores.GET("/:name", handler.GetStoreByName, authRequired)
}

func SetupProductRoutes(api *echo.Group, handler *rest.ProductHandler, authRequired echo.MiddlewareFunc) {
	products := api.Group("/products")

	products.GET("/search", handler.SearchByName, authRequired)
	products.GET("/barcode/:barcode", handler.GetByBarcode, authRequired)

	catalog := api.Group("/catalog")
	catalog.GET("/stats", handler.CatalogStats, authRequired)
}
