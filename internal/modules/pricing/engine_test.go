package pricing

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompute_DefaultConfig(t *testing.T) {
	tests := []struct {
		name      string
		req       Request
		want      FeeBreakdown
		wantItems []LineItem
	}{
		{
			name: "Base fee only sits on the min fee floor",
			req:  Request{DistanceKm: 0, WeightKg: 2, Weather: WeatherClear, Urgency: UrgencyNormal},
			want: FeeBreakdown{BaseFee: 30, TotalFee: 30},
			wantItems: []LineItem{
				{Label: "Base Fee", Amount: 30},
				{Label: "Distance (0.0 km)", Amount: 0},
			},
		},
		{
			name: "Distance 5km -> 50",
			req:  Request{DistanceKm: 5, WeightKg: 1, Weather: WeatherClear, Urgency: UrgencyNormal},
			want: FeeBreakdown{BaseFee: 30, DistanceFee: 50, TotalFee: 80},
			wantItems: []LineItem{
				{Label: "Base Fee", Amount: 30},
				{Label: "Distance (5.0 km)", Amount: 50},
			},
		},
		{
			name: "Weight 5kg -> (5-2)*5 = 15",
			req:  Request{DistanceKm: 0, WeightKg: 5, Weather: WeatherClear, Urgency: UrgencyNormal},
			want: FeeBreakdown{BaseFee: 30, WeightFee: 15, TotalFee: 45},
			wantItems: []LineItem{
				{Label: "Base Fee", Amount: 30},
				{Label: "Distance (0.0 km)", Amount: 0},
				{Label: "Weight (5.0 kg)", Amount: 15},
			},
		},
		{
			name: "Weight under threshold is free",
			req:  Request{DistanceKm: 1, WeightKg: 1.5, Weather: WeatherClear, Urgency: UrgencyNormal},
			want: FeeBreakdown{BaseFee: 30, DistanceFee: 10, TotalFee: 40},
			wantItems: []LineItem{
				{Label: "Base Fee", Amount: 30},
				{Label: "Distance (1.0 km)", Amount: 10},
			},
		},
		{
			name: "Fragile + rain + urgent are independent",
			req:  Request{DistanceKm: 0, WeightKg: 2, IsFragile: true, Weather: WeatherRain, Urgency: UrgencyUrgent},
			// Base: 30. Fragile: 30*0.5 = 15. Rain: 30*0.3 = 9. Urgent: 30*0.5 = 15.
			want: FeeBreakdown{BaseFee: 30, FragileFee: 15, WeatherFee: 9, UrgencyFee: 15, TotalFee: 69},
			wantItems: []LineItem{
				{Label: "Base Fee", Amount: 30},
				{Label: "Distance (0.0 km)", Amount: 0},
				{Label: "Fragile Handling", Amount: 15},
				{Label: "Weather (rain)", Amount: 9},
				{Label: "Urgent Delivery", Amount: 15},
			},
		},
		{
			name: "Scheduled is not surcharged",
			req:  Request{DistanceKm: 2, WeightKg: 2, Weather: WeatherClear, Urgency: UrgencyScheduled},
			want: FeeBreakdown{BaseFee: 30, DistanceFee: 20, TotalFee: 50},
			wantItems: []LineItem{
				{Label: "Base Fee", Amount: 30},
				{Label: "Distance (2.0 km)", Amount: 20},
			},
		},
		{
			name: "Complex combination",
			req:  Request{DistanceKm: 3.3, WeightKg: 4.2, IsFragile: true, Weather: WeatherHeavyRain, Urgency: UrgencyUrgent},
			// 30 + 33 + 11 + 15 + 13.5 + 15 = 117.5
			want: FeeBreakdown{
				BaseFee: 30, DistanceFee: 33, WeightFee: 11, FragileFee: 15,
				WeatherFee: 13.5, UrgencyFee: 15, TotalFee: 117.5,
			},
			wantItems: []LineItem{
				{Label: "Base Fee", Amount: 30},
				{Label: "Distance (3.3 km)", Amount: 33},
				{Label: "Weight (4.2 kg)", Amount: 11},
				{Label: "Fragile Handling", Amount: 15},
				{Label: "Weather (heavy_rain)", Amount: 13.5},
				{Label: "Urgent Delivery", Amount: 15},
			},
		},
		{
			name: "Large distance is clamped to max fee",
			req:  Request{DistanceKm: 100, WeightKg: 2, Weather: WeatherClear, Urgency: UrgencyNormal},
			want: FeeBreakdown{BaseFee: 30, DistanceFee: 1000, TotalFee: 500},
			wantItems: []LineItem{
				{Label: "Base Fee", Amount: 30},
				{Label: "Distance (100.0 km)", Amount: 1000},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Compute(tt.req, DefaultConfig())
			require.NoError(t, err)

			want := tt.want
			want.Breakdown = tt.wantItems
			assert.Equal(t, want, got)
		})
	}
}

func TestCompute_CustomConfig(t *testing.T) {
	cfg := Config{
		BasePrice:         50,
		PricePerKm:        12,
		PricePerKg:        8,
		FragileMultiplier: 1.2,
		RainMultiplier:    1.1,
		UrgentMultiplier:  2,
		MinFee:            40,
		MaxFee:            1000,
	}
	req := Request{DistanceKm: 2.5, WeightKg: 3, IsFragile: true, Weather: WeatherRain, Urgency: UrgencyUrgent}

	got, err := Compute(req, cfg)
	require.NoError(t, err)

	// Base 50, distance 30, weight 8, fragile 10, rain 5, urgent 50.
	assert.Equal(t, 50.0, got.BaseFee)
	assert.Equal(t, 30.0, got.DistanceFee)
	assert.Equal(t, 8.0, got.WeightFee)
	assert.Equal(t, 10.0, got.FragileFee)
	assert.Equal(t, 5.0, got.WeatherFee)
	assert.Equal(t, 50.0, got.UrgencyFee)
	assert.Equal(t, 153.0, got.TotalFee)
}

func TestCompute_MinFeeFloor(t *testing.T) {
	cfg := DefaultConfig()
	cfg.BasePrice = 5

	got, err := Compute(Request{DistanceKm: 0.5, WeightKg: 1, Weather: WeatherClear, Urgency: UrgencyNormal}, cfg)
	require.NoError(t, err)

	// 5 + 5 = 10, raised to the floor.
	assert.Equal(t, cfg.MinFee, got.TotalFee)
	assert.Equal(t, 5.0, got.BaseFee)
	assert.Equal(t, 5.0, got.DistanceFee)
}

func TestCompute_DistanceIsLinear(t *testing.T) {
	cfg := DefaultConfig()
	for _, km := range []float64{0, 0.5, 1, 2.25, 7, 12.5} {
		got, err := Compute(Request{DistanceKm: km, WeightKg: 1, Weather: WeatherClear, Urgency: UrgencyNormal}, cfg)
		require.NoError(t, err)
		assert.InDelta(t, km*cfg.PricePerKm, got.DistanceFee, 0.005, "distance %v", km)
	}
}

func TestCompute_HeavyRainIsOneAndAHalfRain(t *testing.T) {
	configs := []Config{DefaultConfig(), {
		BasePrice: 40, PricePerKm: 8, PricePerKg: 4,
		FragileMultiplier: 1.25, RainMultiplier: 1.2, UrgentMultiplier: 1.75,
		MinFee: 10, MaxFee: 900,
	}}
	for _, cfg := range configs {
		base := Request{DistanceKm: 4, WeightKg: 3, Urgency: UrgencyNormal}

		rain := base
		rain.Weather = WeatherRain
		heavy := base
		heavy.Weather = WeatherHeavyRain

		r, err := Compute(rain, cfg)
		require.NoError(t, err)
		h, err := Compute(heavy, cfg)
		require.NoError(t, err)

		assert.InDelta(t, r.WeatherFee*HeavyRainFactor, h.WeatherFee, 1e-9)
	}
}

func TestCompute_HugeInputs(t *testing.T) {
	cfg := DefaultConfig()

	got, err := Compute(Request{DistanceKm: 1e300, WeightKg: 1, Weather: WeatherClear, Urgency: UrgencyNormal}, cfg)
	require.NoError(t, err)
	assert.Equal(t, cfg.MaxFee, got.TotalFee)

	for _, req := range []Request{
		{DistanceKm: 1e308, WeightKg: 2},
		{DistanceKm: 1, WeightKg: 1e308},
	} {
		assert.NotPanics(t, func() {
			_, err := Compute(req, cfg)
			assert.ErrorIs(t, err, ErrInvalidRequest)
		})
	}
}

func TestCompute_InvalidConfig(t *testing.T) {
	bad := []Config{
		func() Config { c := DefaultConfig(); c.MinFee = 600; return c }(),
		func() Config { c := DefaultConfig(); c.RainMultiplier = 0.8; return c }(),
		func() Config { c := DefaultConfig(); c.PricePerKm = -1; return c }(),
	}
	for _, cfg := range bad {
		_, err := Compute(Request{DistanceKm: 1, WeightKg: 1, Weather: WeatherClear, Urgency: UrgencyNormal}, cfg)
		assert.True(t, errors.Is(err, ErrInvalidConfig), "got %v", err)
	}
}

func TestCompute_Idempotent(t *testing.T) {
	req := Request{DistanceKm: 7.7, WeightKg: 9.3, IsFragile: true, Weather: WeatherHeavyRain, Urgency: UrgencyUrgent}

	first, err := Compute(req, DefaultConfig())
	require.NoError(t, err)
	second, err := Compute(req, DefaultConfig())
	require.NoError(t, err)

	a, err := json.Marshal(first)
	require.NoError(t, err)
	b, err := json.Marshal(second)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestCompute_Concurrent(t *testing.T) {
	req := Request{DistanceKm: 3, WeightKg: 6, IsFragile: true, Weather: WeatherRain, Urgency: UrgencyUrgent}
	want, err := Compute(req, DefaultConfig())
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make(chan FeeBreakdown, 32)
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, _ := Compute(req, DefaultConfig())
			results <- got
		}()
	}
	wg.Wait()
	close(results)

	for got := range results {
		assert.Equal(t, want, got)
	}
}
