package pricing

import "fmt"

// FormatBreakdown lists fee components in fixed order: base, distance, weight,
// fragile, weather, urgency. Base and distance are always present; the rest
// only when their amount is positive.
func FormatBreakdown(fees FeeBreakdown, req Request) []LineItem {
	items := []LineItem{
		{Label: "Base Fee", Amount: fees.BaseFee},
		{Label: fmt.Sprintf("Distance (%.1f km)", req.DistanceKm), Amount: fees.DistanceFee},
	}
	optional := []LineItem{
		{Label: fmt.Sprintf("Weight (%.1f kg)", req.WeightKg), Amount: fees.WeightFee},
		{Label: "Fragile Handling", Amount: fees.FragileFee},
		{Label: fmt.Sprintf("Weather (%s)", req.Weather), Amount: fees.WeatherFee},
		{Label: "Urgent Delivery", Amount: fees.UrgencyFee},
	}
	for _, it := range optional {
		if it.Amount > 0 {
			items = append(items, it)
		}
	}
	return items
}
