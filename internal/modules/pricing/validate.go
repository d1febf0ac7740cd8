package pricing

import (
	"fmt"
	"math"
)

// Input is the loosely typed shape accepted at the boundary. Nil pointers mean
// the field was absent from the payload.
type Input struct {
	ServiceID        *string
	DistanceKm       *float64
	WeightKg         *float64
	IsFragile        bool
	WeatherCondition string
	Urgency          string
}

// NewRequest validates in and returns the closed Request the engine consumes.
func NewRequest(in Input) (Request, error) {
	if in.DistanceKm == nil {
		return Request{}, fmt.Errorf("%w: distance_km is required", ErrInvalidRequest)
	}
	if d := *in.DistanceKm; math.IsNaN(d) || math.IsInf(d, 0) || d < 0 {
		return Request{}, fmt.Errorf("%w: distance_km must be a non-negative number", ErrInvalidRequest)
	}
	if in.WeightKg == nil {
		return Request{}, fmt.Errorf("%w: weight_kg is required", ErrInvalidRequest)
	}
	if w := *in.WeightKg; math.IsNaN(w) || math.IsInf(w, 0) || w <= 0 {
		return Request{}, fmt.Errorf("%w: weight_kg must be a positive number", ErrInvalidRequest)
	}
	weather, err := ParseWeather(in.WeatherCondition)
	if err != nil {
		return Request{}, err
	}
	urgency, err := ParseUrgency(in.Urgency)
	if err != nil {
		return Request{}, err
	}

	req := Request{
		DistanceKm: *in.DistanceKm,
		WeightKg:   *in.WeightKg,
		IsFragile:  in.IsFragile,
		Weather:    weather,
		Urgency:    urgency,
	}
	if in.ServiceID != nil {
		req.ServiceID = *in.ServiceID
	}
	return req, nil
}
