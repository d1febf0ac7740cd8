// README: Fee computation engine. Pure and deterministic; safe for concurrent use.
package pricing

import (
	"fmt"
	"math"

	"dropee/internal/types"
)

const (
	// FreeWeightKg is carried at no charge; only the excess is billed.
	FreeWeightKg = 2.0
	// HeavyRainFactor scales the light-rain surcharge for heavy rain.
	HeavyRainFactor = 1.5
)

type components struct {
	base, distance, weight, fragile, weather, urgency float64
}

func (c components) sum() float64 {
	return c.base + c.distance + c.weight + c.fragile + c.weather + c.urgency
}

// Compute prices req against cfg. Surcharges are each derived from the base
// fee and added, never compounded. The total is clamped once to
// [cfg.MinFee, cfg.MaxFee]; rounding happens only on output.
func Compute(req Request, cfg Config) (FeeBreakdown, error) {
	if err := cfg.Validate(); err != nil {
		return FeeBreakdown{}, err
	}

	var c components
	c.base = cfg.BasePrice
	c.distance = req.DistanceKm * cfg.PricePerKm
	c.weight = math.Max(0, req.WeightKg-FreeWeightKg) * cfg.PricePerKg
	if req.IsFragile {
		c.fragile = c.base * (cfg.FragileMultiplier - 1)
	}
	switch req.Weather {
	case WeatherRain:
		c.weather = c.base * (cfg.RainMultiplier - 1)
	case WeatherHeavyRain:
		c.weather = c.base * (cfg.RainMultiplier - 1) * HeavyRainFactor
	}
	if req.Urgency == UrgencyUrgent {
		c.urgency = c.base * (cfg.UrgentMultiplier - 1)
	}

	if math.IsInf(c.distance, 0) || math.IsInf(c.weight, 0) {
		return FeeBreakdown{}, fmt.Errorf("%w: distance_km or weight_kg is too large to price", ErrInvalidRequest)
	}

	total := math.Min(math.Max(c.sum(), cfg.MinFee), cfg.MaxFee)

	out := FeeBreakdown{
		BaseFee:     types.RoundFee(c.base),
		DistanceFee: types.RoundFee(c.distance),
		WeightFee:   types.RoundFee(c.weight),
		FragileFee:  types.RoundFee(c.fragile),
		WeatherFee:  types.RoundFee(c.weather),
		UrgencyFee:  types.RoundFee(c.urgency),
		TotalFee:    types.RoundFee(total),
	}
	out.Breakdown = FormatBreakdown(out, req)
	return out, nil
}
