// README: Delivery request handlers for submit/get.
package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"dropee/internal/modules/delivery"
	"dropee/internal/modules/pricing"
	"dropee/internal/types"
)

type DeliveryHandler struct {
	delivery *delivery.Service
}

func NewDeliveryHandler(svc *delivery.Service) *DeliveryHandler {
	return &DeliveryHandler{delivery: svc}
}

type stopReq struct {
	Address string  `json:"address"`
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
}

func (s stopReq) stop() delivery.Stop {
	return delivery.Stop{Address: s.Address, Position: types.Point{Lat: s.Lat, Lng: s.Lng}}
}

type submitDeliveryReq struct {
	deliveryFeeReq
	UserID  string  `json:"user_id"`
	Pickup  stopReq `json:"pickup"`
	Dropoff stopReq `json:"dropoff"`
	Notes   string  `json:"notes"`
}

type feesResp struct {
	BaseFee     float64 `json:"base_fee"`
	DistanceFee float64 `json:"distance_fee"`
	WeightFee   float64 `json:"weight_fee"`
	FragileFee  float64 `json:"fragile_fee"`
	WeatherFee  float64 `json:"weather_fee"`
	UrgencyFee  float64 `json:"urgency_fee"`
	TotalFee    float64 `json:"total_fee"`
}

type deliveryResp struct {
	ID               string             `json:"id"`
	UserID           string             `json:"user_id"`
	ServiceID        string             `json:"service_id,omitempty"`
	Status           string             `json:"status"`
	Pickup           stopReq            `json:"pickup"`
	Dropoff          stopReq            `json:"dropoff"`
	DistanceKm       float64            `json:"distance_km"`
	WeightKg         float64            `json:"weight_kg"`
	IsFragile        bool               `json:"is_fragile"`
	WeatherCondition string             `json:"weather_condition"`
	Urgency          string             `json:"urgency"`
	Notes            string             `json:"notes,omitempty"`
	FeeStatus        string             `json:"fee_status"`
	Fees             *feesResp          `json:"fees"`
	Breakdown        []pricing.LineItem `json:"breakdown,omitempty"`
	CreatedAt        time.Time          `json:"created_at"`
}

func toDeliveryResp(d *delivery.Delivery) deliveryResp {
	resp := deliveryResp{
		ID:               string(d.ID),
		UserID:           string(d.UserID),
		ServiceID:        d.ServiceID,
		Status:           string(d.Status),
		Pickup:           stopReq{Address: d.Pickup.Address, Lat: d.Pickup.Position.Lat, Lng: d.Pickup.Position.Lng},
		Dropoff:          stopReq{Address: d.Dropoff.Address, Lat: d.Dropoff.Position.Lat, Lng: d.Dropoff.Position.Lng},
		DistanceKm:       d.DistanceKm,
		WeightKg:         d.WeightKg,
		IsFragile:        d.IsFragile,
		WeatherCondition: string(d.Weather),
		Urgency:          string(d.Urgency),
		Notes:            d.Notes,
		FeeStatus:        string(d.FeeStatus),
		Breakdown:        d.Breakdown,
		CreatedAt:        d.CreatedAt,
	}
	if f := d.Fees; f != nil {
		resp.Fees = &feesResp{
			BaseFee:     f.BaseFee,
			DistanceFee: f.DistanceFee,
			WeightFee:   f.WeightFee,
			FragileFee:  f.FragileFee,
			WeatherFee:  f.WeatherFee,
			UrgencyFee:  f.UrgencyFee,
			TotalFee:    f.TotalFee,
		}
	}
	return resp
}

func (h *DeliveryHandler) Submit(c *gin.Context) {
	var req submitDeliveryReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	d, err := h.delivery.Submit(c.Request.Context(), delivery.SubmitCommand{
		UserID:  types.ID(req.UserID),
		Pickup:  req.Pickup.stop(),
		Dropoff: req.Dropoff.stop(),
		Notes:   req.Notes,
		Fee:     req.input(),
	})
	if err != nil {
		_ = c.Error(err)
		writeDeliveryError(c, err)
		return
	}
	writeJSON(c, http.StatusCreated, toDeliveryResp(d))
}

func (h *DeliveryHandler) Get(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		writeError(c, http.StatusBadRequest, "missing delivery id")
		return
	}
	d, err := h.delivery.Get(c.Request.Context(), types.ID(id))
	if err != nil {
		_ = c.Error(err)
		writeDeliveryError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, toDeliveryResp(d))
}
