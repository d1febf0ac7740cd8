// README: Pricing configuration store backed by PostgreSQL.
package pricing

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ConfigSource looks up the pricing row of a single service.
// Implementations return ErrConfigNotFound when no row exists.
type ConfigSource interface {
	GetConfig(ctx context.Context, serviceID string) (Config, error)
}

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

// GetConfig returns the most recently updated row for serviceID. The schema
// does not enforce one row per service, so ties are broken by updated_at then id.
func (s *Store) GetConfig(ctx context.Context, serviceID string) (Config, error) {
	row := s.db.QueryRow(ctx, `
		SELECT base_price, price_per_km, price_per_kg,
		       fragile_multiplier, rain_multiplier, urgent_multiplier,
		       min_fee, max_fee
		FROM delivery_pricing
		WHERE service_id = $1
		ORDER BY updated_at DESC, id DESC
		LIMIT 1`, serviceID,
	)

	var c Config
	err := row.Scan(
		&c.BasePrice, &c.PricePerKm, &c.PricePerKg,
		&c.FragileMultiplier, &c.RainMultiplier, &c.UrgentMultiplier,
		&c.MinFee, &c.MaxFee,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return Config{}, ErrConfigNotFound
	}
	if err != nil {
		return Config{}, err
	}
	return c, nil
}

// Upsert inserts a new pricing row for serviceID. Older rows are kept; reads
// always pick the newest.
func (s *Store) Upsert(ctx context.Context, serviceID string, c Config) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO delivery_pricing (
			service_id, base_price, price_per_km, price_per_kg,
			fragile_multiplier, rain_multiplier, urgent_multiplier,
			min_fee, max_fee, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW())`,
		serviceID, c.BasePrice, c.PricePerKm, c.PricePerKg,
		c.FragileMultiplier, c.RainMultiplier, c.UrgentMultiplier,
		c.MinFee, c.MaxFee,
	)
	return err
}
