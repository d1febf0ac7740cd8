// README: API gateway; wires module services into the HTTP router.
package http

import (
	"net/http"

	"go.uber.org/zap"

	"dropee/internal/modules/delivery"
	"dropee/internal/modules/pricing"
)

type ServerDeps struct {
	Pricing        *pricing.Service
	Delivery       *delivery.Service
	AllowedOrigins []string
	Logger         *zap.Logger
}

type Server struct {
	pricing        *pricing.Service
	delivery       *delivery.Service
	allowedOrigins []string
	logger         *zap.Logger
}

func NewServer(deps ServerDeps) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		pricing:        deps.Pricing,
		delivery:       deps.Delivery,
		allowedOrigins: deps.AllowedOrigins,
		logger:         logger,
	}
}

func (s *Server) Routes() http.Handler {
	return NewRouter(s.pricing, s.delivery, s.allowedOrigins, s.logger)
}
