// README: Pricing service computes delivery fee estimates.
package pricing

import "context"

type Service struct {
	resolver *Resolver
}

func NewService(resolver *Resolver) *Service {
	return &Service{resolver: resolver}
}

// Calculate resolves the configuration for req.ServiceID and prices req.
// req must come from NewRequest.
func (s *Service) Calculate(ctx context.Context, req Request) (FeeBreakdown, error) {
	cfg := s.resolver.Resolve(ctx, req.ServiceID)
	return Compute(req, cfg)
}
