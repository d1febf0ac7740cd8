// README: Delivery store backed by PostgreSQL.
package delivery

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"dropee/internal/types"
)

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

func (s *Store) Create(ctx context.Context, d *Delivery) error {
	var fees Fees
	if d.Fees != nil {
		fees = *d.Fees
	}
	var breakdown []byte
	if len(d.Breakdown) > 0 {
		raw, err := json.Marshal(d.Breakdown)
		if err != nil {
			return err
		}
		breakdown = raw
	}
	_, err := s.db.Exec(ctx, `
		INSERT INTO deliveries (
			id, user_id, service_id, status,
			pickup_address, pickup_lat, pickup_lng,
			dropoff_address, dropoff_lat, dropoff_lng,
			distance_km, weight_kg, is_fragile, weather_condition, urgency, notes,
			fee_status, base_fee, distance_fee, weight_fee, fragile_fee,
			weather_fee, urgency_fee, total_fee, fee_breakdown, created_at
		) VALUES (
			$1, $2, $3, $4,
			$5, $6, $7,
			$8, $9, $10,
			$11, $12, $13, $14, $15, $16,
			$17, $18, $19, $20, $21,
			$22, $23, $24, $25, $26
		)`,
		string(d.ID), string(d.UserID), nullString(d.ServiceID), string(d.Status),
		d.Pickup.Address, d.Pickup.Position.Lat, d.Pickup.Position.Lng,
		d.Dropoff.Address, d.Dropoff.Position.Lat, d.Dropoff.Position.Lng,
		d.DistanceKm, d.WeightKg, d.IsFragile, string(d.Weather), string(d.Urgency), nullString(d.Notes),
		string(d.FeeStatus),
		feeValue(d.Fees, fees.BaseFee), feeValue(d.Fees, fees.DistanceFee),
		feeValue(d.Fees, fees.WeightFee), feeValue(d.Fees, fees.FragileFee),
		feeValue(d.Fees, fees.WeatherFee), feeValue(d.Fees, fees.UrgencyFee),
		feeValue(d.Fees, fees.TotalFee), breakdown,
		d.CreatedAt,
	)
	return err
}

func (s *Store) Get(ctx context.Context, id types.ID) (*Delivery, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, user_id, service_id, status,
		       pickup_address, pickup_lat, pickup_lng,
		       dropoff_address, dropoff_lat, dropoff_lng,
		       distance_km, weight_kg, is_fragile, weather_condition, urgency, notes,
		       fee_status, base_fee, distance_fee, weight_fee, fragile_fee,
		       weather_fee, urgency_fee, total_fee, fee_breakdown, created_at
		FROM deliveries
		WHERE id = $1`, string(id),
	)

	var d Delivery
	var serviceID, notes sql.NullString
	var base, distance, weight, fragile, weather, urgency, total sql.NullFloat64
	var breakdown []byte

	err := row.Scan(
		&d.ID, &d.UserID, &serviceID, &d.Status,
		&d.Pickup.Address, &d.Pickup.Position.Lat, &d.Pickup.Position.Lng,
		&d.Dropoff.Address, &d.Dropoff.Position.Lat, &d.Dropoff.Position.Lng,
		&d.DistanceKm, &d.WeightKg, &d.IsFragile, &d.Weather, &d.Urgency, &notes,
		&d.FeeStatus, &base, &distance, &weight, &fragile,
		&weather, &urgency, &total, &breakdown, &d.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	d.ServiceID = serviceID.String
	d.Notes = notes.String
	if total.Valid {
		d.Fees = &Fees{
			BaseFee:     base.Float64,
			DistanceFee: distance.Float64,
			WeightFee:   weight.Float64,
			FragileFee:  fragile.Float64,
			WeatherFee:  weather.Float64,
			UrgencyFee:  urgency.Float64,
			TotalFee:    total.Float64,
		}
	}
	if len(breakdown) > 0 {
		if err := json.Unmarshal(breakdown, &d.Breakdown); err != nil {
			return nil, err
		}
	}
	return &d, nil
}

func nullString(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}

func feeValue(fees *Fees, v float64) *float64 {
	if fees == nil {
		return nil
	}
	return &v
}
