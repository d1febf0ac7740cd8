// README: Delivery fee calculation handler.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"dropee/internal/modules/pricing"
)

type PricingHandler struct {
	pricing *pricing.Service
	logger  *zap.Logger
}

func NewPricingHandler(svc *pricing.Service, logger *zap.Logger) *PricingHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PricingHandler{pricing: svc, logger: logger}
}

// deliveryFeeReq mirrors the public request body. Pointers distinguish absent
// fields from zero values.
type deliveryFeeReq struct {
	ServiceID        *string  `json:"service_id"`
	DistanceKm       *float64 `json:"distance_km"`
	WeightKg         *float64 `json:"weight_kg"`
	IsFragile        bool     `json:"is_fragile"`
	WeatherCondition string   `json:"weather_condition"`
	Urgency          string   `json:"urgency"`
}

func (r deliveryFeeReq) input() pricing.Input {
	return pricing.Input{
		ServiceID:        r.ServiceID,
		DistanceKm:       r.DistanceKm,
		WeightKg:         r.WeightKg,
		IsFragile:        r.IsFragile,
		WeatherCondition: r.WeatherCondition,
		Urgency:          r.Urgency,
	}
}

func (h *PricingHandler) Calculate(c *gin.Context) {
	var req deliveryFeeReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	feeReq, err := pricing.NewRequest(req.input())
	if err != nil {
		writePricingError(c, err)
		return
	}
	fee, err := h.pricing.Calculate(c.Request.Context(), feeReq)
	if err != nil {
		h.logger.Error("delivery fee calculation failed",
			zap.String("service_id", feeReq.ServiceID), zap.Error(err))
		writePricingError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, fee)
}
