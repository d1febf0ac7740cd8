// README: Delivery service validates, prices and persists delivery requests.
package delivery

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"dropee/internal/modules/location"
	"dropee/internal/modules/pricing"
	"dropee/internal/types"
)

var (
	ErrNotFound   = errors.New("delivery not found")
	ErrBadRequest = errors.New("bad request")
)

type Pricing interface {
	Calculate(ctx context.Context, req pricing.Request) (pricing.FeeBreakdown, error)
}

type Distances interface {
	DistanceKm(ctx context.Context, from, to types.Point) float64
}

// Repository persists deliveries. *Store is the PostgreSQL implementation.
type Repository interface {
	Create(ctx context.Context, d *Delivery) error
	Get(ctx context.Context, id types.ID) (*Delivery, error)
}

type Service struct {
	store     Repository
	pricing   Pricing
	distances Distances
	logger    *zap.Logger
	now       func() time.Time
}

func NewService(store Repository, pricer Pricing, distances Distances, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:     store,
		pricing:   pricer,
		distances: distances,
		logger:    logger,
		now:       time.Now,
	}
}

type SubmitCommand struct {
	UserID  types.ID
	Pickup  Stop
	Dropoff Stop
	Notes   string
	// Fee carries the pricing fields. A nil DistanceKm is estimated from the stops.
	Fee pricing.Input
}

// Submit stores a new pending delivery. A failed fee estimate does not block
// submission; the delivery is stored with FeeStatusUnavailable instead.
func (s *Service) Submit(ctx context.Context, cmd SubmitCommand) (*Delivery, error) {
	if cmd.UserID == "" {
		return nil, fmt.Errorf("%w: user_id is required", ErrBadRequest)
	}
	if strings.TrimSpace(cmd.Pickup.Address) == "" || strings.TrimSpace(cmd.Dropoff.Address) == "" {
		return nil, fmt.Errorf("%w: pickup and dropoff addresses are required", ErrBadRequest)
	}
	if !location.ValidPoint(cmd.Pickup.Position) || !location.ValidPoint(cmd.Dropoff.Position) {
		return nil, fmt.Errorf("%w: pickup and dropoff coordinates are out of range", ErrBadRequest)
	}

	in := cmd.Fee
	if in.DistanceKm == nil && s.distances != nil {
		km := s.distances.DistanceKm(ctx, cmd.Pickup.Position, cmd.Dropoff.Position)
		in.DistanceKm = &km
	}
	req, err := pricing.NewRequest(in)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadRequest, err)
	}

	d := &Delivery{
		ID:         types.ID(uuid.NewString()),
		UserID:     cmd.UserID,
		ServiceID:  req.ServiceID,
		Status:     StatusPending,
		Pickup:     cmd.Pickup,
		Dropoff:    cmd.Dropoff,
		DistanceKm: req.DistanceKm,
		WeightKg:   req.WeightKg,
		IsFragile:  req.IsFragile,
		Weather:    req.Weather,
		Urgency:    req.Urgency,
		Notes:      cmd.Notes,
		FeeStatus:  FeeStatusUnavailable,
		CreatedAt:  s.now().UTC(),
	}

	if s.pricing != nil {
		fee, err := s.pricing.Calculate(ctx, req)
		if err != nil {
			s.logger.Warn("fee estimate unavailable, submitting without fee",
				zap.String("delivery_id", string(d.ID)), zap.Error(err))
		} else {
			d.Fees = feesFrom(fee)
			d.Breakdown = fee.Breakdown
			d.FeeStatus = FeeStatusEstimated
		}
	}

	if err := s.store.Create(ctx, d); err != nil {
		return nil, err
	}
	s.logger.Info("delivery submitted",
		zap.String("delivery_id", string(d.ID)),
		zap.String("user_id", string(d.UserID)),
		zap.String("fee_status", string(d.FeeStatus)))
	return d, nil
}

func (s *Service) Get(ctx context.Context, id types.ID) (*Delivery, error) {
	if id == "" {
		return nil, ErrBadRequest
	}
	return s.store.Get(ctx, id)
}
