// README: Resolves the pricing configuration for a service, degrading to a fallback.
package pricing

import (
	"context"
	"errors"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

type ResolverOptions struct {
	// LookupTimeout bounds a single source read. Zero means no extra bound.
	LookupTimeout time.Duration
	// CacheTTL controls per-process memoization of found rows. Zero disables it.
	CacheTTL time.Duration
}

type Resolver struct {
	source   ConfigSource
	fallback Config
	opts     ResolverOptions
	cache    *gocache.Cache
	group    singleflight.Group
	logger   *zap.Logger
}

// NewResolver returns a resolver reading from source. source may be nil, in
// which case every lookup yields fallback.
func NewResolver(source ConfigSource, fallback Config, opts ResolverOptions, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &Resolver{
		source:   source,
		fallback: fallback,
		opts:     opts,
		logger:   logger,
	}
	if opts.CacheTTL > 0 {
		r.cache = gocache.New(opts.CacheTTL, 2*opts.CacheTTL)
	}
	return r
}

// Resolve always returns exactly one configuration. A missing row, a store
// error or a timed out lookup all yield the fallback.
func (r *Resolver) Resolve(ctx context.Context, serviceID string) Config {
	if serviceID == "" || r.source == nil {
		return r.fallback
	}
	if r.cache != nil {
		if v, ok := r.cache.Get(serviceID); ok {
			return v.(Config)
		}
	}

	// The shared lookup outlives any single caller; each caller still waits
	// only as long as its own ctx allows.
	shared := context.WithoutCancel(ctx)
	ch := r.group.DoChan(serviceID, func() (any, error) {
		return r.lookup(shared, serviceID)
	})

	var v any
	var err error
	select {
	case res := <-ch:
		v, err = res.Val, res.Err
	case <-ctx.Done():
		err = ctx.Err()
	}
	if err != nil {
		if !errors.Is(err, ErrConfigNotFound) {
			r.logger.Warn("pricing lookup failed, using default configuration",
				zap.String("service_id", serviceID), zap.Error(err))
		}
		return r.fallback
	}

	cfg := v.(Config)
	if r.cache != nil {
		r.cache.SetDefault(serviceID, cfg)
	}
	return cfg
}

func (r *Resolver) lookup(ctx context.Context, serviceID string) (Config, error) {
	if r.opts.LookupTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.opts.LookupTimeout)
		defer cancel()
	}

	type result struct {
		cfg Config
		err error
	}
	ch := make(chan result, 1)
	go func() {
		cfg, err := r.source.GetConfig(ctx, serviceID)
		ch <- result{cfg: cfg, err: err}
	}()
	// The source may not honour ctx; never wait past it.
	select {
	case res := <-ch:
		return res.cfg, res.err
	case <-ctx.Done():
		return Config{}, ctx.Err()
	}
}
