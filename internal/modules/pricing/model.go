// README: Delivery fee request, pricing configuration and breakdown definitions.
package pricing

import (
	"errors"
	"fmt"
	"math"
)

var (
	ErrInvalidRequest = errors.New("invalid delivery fee request")
	ErrInvalidConfig  = errors.New("invalid pricing configuration")
	ErrConfigNotFound = errors.New("pricing configuration not found")
)

type Weather string

const (
	WeatherClear     Weather = "clear"
	WeatherRain      Weather = "rain"
	WeatherHeavyRain Weather = "heavy_rain"
)

// ParseWeather maps an empty value to clear and rejects anything unlisted.
func ParseWeather(v string) (Weather, error) {
	switch w := Weather(v); w {
	case "":
		return WeatherClear, nil
	case WeatherClear, WeatherRain, WeatherHeavyRain:
		return w, nil
	default:
		return "", fmt.Errorf("%w: weather_condition must be one of clear, rain, heavy_rain", ErrInvalidRequest)
	}
}

type Urgency string

const (
	UrgencyNormal    Urgency = "normal"
	UrgencyUrgent    Urgency = "urgent"
	UrgencyScheduled Urgency = "scheduled"
)

// ParseUrgency maps an empty value to normal and rejects anything unlisted.
func ParseUrgency(v string) (Urgency, error) {
	switch u := Urgency(v); u {
	case "":
		return UrgencyNormal, nil
	case UrgencyNormal, UrgencyUrgent, UrgencyScheduled:
		return u, nil
	default:
		return "", fmt.Errorf("%w: urgency must be one of normal, urgent, scheduled", ErrInvalidRequest)
	}
}

type Request struct {
	ServiceID  string
	DistanceKm float64
	WeightKg   float64
	IsFragile  bool
	Weather    Weather
	Urgency    Urgency
}

// Config is a read-only pricing row. Multipliers are applied to the base fee only.
type Config struct {
	BasePrice         float64 `json:"base_price"`
	PricePerKm        float64 `json:"price_per_km"`
	PricePerKg        float64 `json:"price_per_kg"`
	FragileMultiplier float64 `json:"fragile_multiplier"`
	RainMultiplier    float64 `json:"rain_multiplier"`
	UrgentMultiplier  float64 `json:"urgent_multiplier"`
	MinFee            float64 `json:"min_fee"`
	MaxFee            float64 `json:"max_fee"`
}

// DefaultConfig is the system-wide fallback used when no service row applies.
func DefaultConfig() Config {
	return Config{
		BasePrice:         30,
		PricePerKm:        10,
		PricePerKg:        5,
		FragileMultiplier: 1.5,
		RainMultiplier:    1.3,
		UrgentMultiplier:  1.5,
		MinFee:            30,
		MaxFee:            500,
	}
}

func (c Config) Validate() error {
	fields := []struct {
		name string
		v    float64
	}{
		{"base_price", c.BasePrice},
		{"price_per_km", c.PricePerKm},
		{"price_per_kg", c.PricePerKg},
		{"fragile_multiplier", c.FragileMultiplier},
		{"rain_multiplier", c.RainMultiplier},
		{"urgent_multiplier", c.UrgentMultiplier},
		{"min_fee", c.MinFee},
		{"max_fee", c.MaxFee},
	}
	for _, f := range fields {
		if math.IsNaN(f.v) || math.IsInf(f.v, 0) || f.v < 0 {
			return fmt.Errorf("%w: %s = %v", ErrInvalidConfig, f.name, f.v)
		}
	}
	if c.FragileMultiplier < 1 || c.RainMultiplier < 1 || c.UrgentMultiplier < 1 {
		return fmt.Errorf("%w: multipliers must be >= 1", ErrInvalidConfig)
	}
	if c.MinFee > c.MaxFee {
		return fmt.Errorf("%w: min_fee %v > max_fee %v", ErrInvalidConfig, c.MinFee, c.MaxFee)
	}
	return nil
}

type LineItem struct {
	Label  string  `json:"label"`
	Amount float64 `json:"amount"`
}

type FeeBreakdown struct {
	BaseFee     float64    `json:"base_fee"`
	DistanceFee float64    `json:"distance_fee"`
	WeightFee   float64    `json:"weight_fee"`
	FragileFee  float64    `json:"fragile_fee"`
	WeatherFee  float64    `json:"weather_fee"`
	UrgencyFee  float64    `json:"urgency_fee"`
	TotalFee    float64    `json:"total_fee"`
	Breakdown   []LineItem `json:"breakdown"`
}
