// README: Distance estimation between pickup and dropoff points.
package location

import (
	"context"

	"go.uber.org/zap"

	"dropee/internal/types"
)

// RouteProvider returns a road distance between two points.
type RouteProvider interface {
	DrivingDistanceKm(ctx context.Context, from, to types.Point) (float64, error)
}

type Service struct {
	routes RouteProvider
	logger *zap.Logger
}

// NewService returns a distance estimator. routes may be nil, in which case
// every estimate is a straight-line distance.
func NewService(routes RouteProvider, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{routes: routes, logger: logger}
}

// DistanceKm prefers the routed distance and degrades to haversine.
func (s *Service) DistanceKm(ctx context.Context, from, to types.Point) float64 {
	if s.routes != nil {
		km, err := s.routes.DrivingDistanceKm(ctx, from, to)
		if err == nil && km >= 0 {
			return km
		}
		s.logger.Warn("route distance unavailable, using straight line", zap.Error(err))
	}
	return HaversineKm(from, to)
}
