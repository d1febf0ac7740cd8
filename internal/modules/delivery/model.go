// README: Delivery request aggregate and fee snapshot.
package delivery

import (
	"time"

	"dropee/internal/modules/pricing"
	"dropee/internal/types"
)

type Status string

// Only the initial status is owned here; later transitions belong to the
// dispatch backend.
const StatusPending Status = "pending"

type FeeStatus string

const (
	FeeStatusEstimated   FeeStatus = "estimated"
	FeeStatusUnavailable FeeStatus = "unavailable"
)

type Stop struct {
	Address  string
	Position types.Point
}

// Fees is the fee snapshot taken at submission time.
type Fees struct {
	BaseFee     float64
	DistanceFee float64
	WeightFee   float64
	FragileFee  float64
	WeatherFee  float64
	UrgencyFee  float64
	TotalFee    float64
}

func feesFrom(b pricing.FeeBreakdown) *Fees {
	return &Fees{
		BaseFee:     b.BaseFee,
		DistanceFee: b.DistanceFee,
		WeightFee:   b.WeightFee,
		FragileFee:  b.FragileFee,
		WeatherFee:  b.WeatherFee,
		UrgencyFee:  b.UrgencyFee,
		TotalFee:    b.TotalFee,
	}
}

type Delivery struct {
	ID         types.ID
	UserID     types.ID
	ServiceID  string
	Status     Status
	Pickup     Stop
	Dropoff    Stop
	DistanceKm float64
	WeightKg   float64
	IsFragile  bool
	Weather    pricing.Weather
	Urgency    pricing.Urgency
	Notes      string
	FeeStatus  FeeStatus
	Fees       *Fees
	Breakdown  []pricing.LineItem
	CreatedAt  time.Time
}
