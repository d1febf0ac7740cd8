// README: HTTP router registration.
package http

import (
	"net/http"
	"slices"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"dropee/internal/http/handlers"
	"dropee/internal/http/middleware"
	"dropee/internal/modules/delivery"
	"dropee/internal/modules/pricing"
)

// Headers the browser client sends on cross-origin fee requests.
var allowedHeaders = []string{"Authorization", "X-Client-Info", "Apikey", "Content-Type"}

func NewRouter(
	pricingService *pricing.Service,
	deliveryService *delivery.Service,
	allowedOrigins []string,
	logger *zap.Logger,
) *gin.Engine {
	r := gin.New()
	r.Use(middleware.Recovery(logger), middleware.Logging(logger))

	corsHandler := cors.New(corsConfig(allowedOrigins))
	r.Use(corsHandler)
	r.OPTIONS("/*any", corsHandler)

	pricingHandler := handlers.NewPricingHandler(pricingService, logger)
	r.POST("/api/delivery-fee", pricingHandler.Calculate)
	r.POST("/functions/v1/calculate-delivery-fee", pricingHandler.Calculate)

	deliveryHandler := handlers.NewDeliveryHandler(deliveryService)
	r.POST("/api/deliveries", deliveryHandler.Submit)
	r.GET("/api/deliveries/:id", deliveryHandler.Get)

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})

	return r
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.DefaultConfig()
	if len(origins) == 0 || slices.Contains(origins, "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	cfg.AllowMethods = []string{http.MethodGet, http.MethodPost, http.MethodOptions}
	cfg.AllowHeaders = allowedHeaders
	return cfg
}
