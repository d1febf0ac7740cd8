// README: End-to-end router tests for fee calculation, deliveries and CORS preflight.
package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httptransport "dropee/internal/http"
	"dropee/internal/modules/delivery"
	"dropee/internal/modules/pricing"
	"dropee/internal/types"
)

type stubSource map[string]pricing.Config

func (s stubSource) GetConfig(_ context.Context, serviceID string) (pricing.Config, error) {
	c, ok := s[serviceID]
	if !ok {
		return pricing.Config{}, pricing.ErrConfigNotFound
	}
	return c, nil
}

type memoryRepo struct {
	mu   sync.Mutex
	rows map[types.ID]*delivery.Delivery
}

func (m *memoryRepo) Create(_ context.Context, d *delivery.Delivery) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *d
	cp.Breakdown = append([]pricing.LineItem(nil), d.Breakdown...)
	m.rows[d.ID] = &cp
	return nil
}

func (m *memoryRepo) Get(_ context.Context, id types.ID) (*delivery.Delivery, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.rows[id]
	if !ok {
		return nil, delivery.ErrNotFound
	}
	return d, nil
}

func brokenConfig() pricing.Config {
	c := pricing.DefaultConfig()
	c.MinFee, c.MaxFee = 100, 10
	return c
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	gin.SetMode(gin.TestMode)

	express := pricing.DefaultConfig()
	express.BasePrice = 45
	source := stubSource{"express": express, "broken": brokenConfig()}

	pricingSvc := pricing.NewService(pricing.NewResolver(source, pricing.DefaultConfig(), pricing.ResolverOptions{}, nil))
	deliverySvc := delivery.NewService(&memoryRepo{rows: map[types.ID]*delivery.Delivery{}}, pricingSvc, nil, nil)

	return httptransport.NewServer(httptransport.ServerDeps{
		Pricing:  pricingSvc,
		Delivery: deliverySvc,
	}).Routes()
}

func doRequest(h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		_ = json.NewEncoder(&buf).Encode(b)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decodeFee(t *testing.T, w *httptest.ResponseRecorder) pricing.FeeBreakdown {
	t.Helper()
	var fee pricing.FeeBreakdown
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &fee))
	return fee
}

func TestDeliveryFee_DefaultConfig(t *testing.T) {
	h := newTestRouter(t)
	w := doRequest(h, http.MethodPost, "/api/delivery-fee", map[string]any{
		"distance_km":       0,
		"weight_kg":         2,
		"is_fragile":        false,
		"weather_condition": "clear",
		"urgency":           "normal",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	assert.JSONEq(t, `{
		"base_fee": 30, "distance_fee": 0, "weight_fee": 0,
		"fragile_fee": 0, "weather_fee": 0, "urgency_fee": 0,
		"total_fee": 30,
		"breakdown": [
			{"label": "Base Fee", "amount": 30},
			{"label": "Distance (0.0 km)", "amount": 0}
		]
	}`, w.Body.String())
}

func TestDeliveryFee_CompatibilityPath(t *testing.T) {
	h := newTestRouter(t)
	w := doRequest(h, http.MethodPost, "/functions/v1/calculate-delivery-fee", map[string]any{
		"distance_km": 5, "weight_kg": 5, "weather_condition": "heavy_rain", "urgency": "urgent",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	fee := decodeFee(t, w)
	// 30 + 50 + 15 + 13.5 + 15
	assert.Equal(t, 123.5, fee.TotalFee)
}

func TestDeliveryFee_ServiceOverrideAndFallback(t *testing.T) {
	h := newTestRouter(t)
	body := func(serviceID any) map[string]any {
		return map[string]any{"service_id": serviceID, "distance_km": 3, "weight_kg": 1, "urgency": "scheduled"}
	}

	express := decodeFee(t, doRequest(h, http.MethodPost, "/api/delivery-fee", body("express")))
	assert.Equal(t, 45.0, express.BaseFee)

	unknown := doRequest(h, http.MethodPost, "/api/delivery-fee", body("nope"))
	none := doRequest(h, http.MethodPost, "/api/delivery-fee", body(nil))
	require.Equal(t, http.StatusOK, unknown.Code)
	assert.Equal(t, none.Body.String(), unknown.Body.String())
}

func TestDeliveryFee_ValidationErrors(t *testing.T) {
	h := newTestRouter(t)
	tests := []struct {
		name string
		body any
	}{
		{"negative distance", map[string]any{"distance_km": -1, "weight_kg": 1}},
		{"missing distance", map[string]any{"weight_kg": 1}},
		{"unknown weather", map[string]any{"distance_km": 1, "weight_kg": 1, "weather_condition": "snow"}},
		{"malformed json", `{"distance_km": `},
		{"wrong type", `{"distance_km": "far", "weight_kg": 1}`},
		{"overflowing distance", map[string]any{"distance_km": 1e308, "weight_kg": 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(h, http.MethodPost, "/api/delivery-fee", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)

			var resp map[string]string
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.NotEmpty(t, resp["error"])
			assert.NotContains(t, w.Body.String(), "total_fee")
		})
	}
}

func TestDeliveryFee_InternalErrorIsGeneric(t *testing.T) {
	h := newTestRouter(t)
	w := doRequest(h, http.MethodPost, "/api/delivery-fee", map[string]any{
		"service_id": "broken", "distance_km": 1, "weight_kg": 1,
	})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"failed to calculate delivery fee"}`, w.Body.String())
}

func TestPreflight(t *testing.T) {
	h := newTestRouter(t)
	for _, path := range []string{"/api/delivery-fee", "/functions/v1/calculate-delivery-fee"} {
		req := httptest.NewRequest(http.MethodOptions, path, nil)
		req.Header.Set("Origin", "https://app.example.com")
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		req.Header.Set("Access-Control-Request-Headers", "content-type,apikey")
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Empty(t, w.Body.String())
		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	}
}

func TestDeliveries_SubmitAndGet(t *testing.T) {
	h := newTestRouter(t)
	w := doRequest(h, http.MethodPost, "/api/deliveries", map[string]any{
		"user_id":           "user_1",
		"pickup":            map[string]any{"address": "Ayala Triangle", "lat": 14.5567, "lng": 121.0232},
		"dropoff":           map[string]any{"address": "Rockwell", "lat": 14.5649, "lng": 121.0367},
		"distance_km":       2.5,
		"weight_kg":         3,
		"is_fragile":        true,
		"weather_condition": "rain",
		"urgency":           "normal",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created struct {
		ID        string `json:"id"`
		Status    string `json:"status"`
		FeeStatus string `json:"fee_status"`
		Fees      struct {
			TotalFee float64 `json:"total_fee"`
		} `json:"fees"`
		Breakdown []pricing.LineItem `json:"breakdown"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, "pending", created.Status)
	assert.Equal(t, "estimated", created.FeeStatus)
	// 30 + 25 + 5 + 15 + 9
	assert.Equal(t, 84.0, created.Fees.TotalFee)
	assert.Len(t, created.Breakdown, 5)

	got := doRequest(h, http.MethodGet, "/api/deliveries/"+created.ID, nil)
	require.Equal(t, http.StatusOK, got.Code)
	assert.Contains(t, got.Body.String(), `"total_fee":84`)

	var fetched struct {
		Breakdown []pricing.LineItem `json:"breakdown"`
	}
	require.NoError(t, json.Unmarshal(got.Body.Bytes(), &fetched))
	assert.Equal(t, created.Breakdown, fetched.Breakdown)

	missing := doRequest(h, http.MethodGet, "/api/deliveries/unknown", nil)
	assert.Equal(t, http.StatusNotFound, missing.Code)
}

func TestDeliveries_SubmitValidation(t *testing.T) {
	h := newTestRouter(t)
	w := doRequest(h, http.MethodPost, "/api/deliveries", map[string]any{
		"user_id":     "user_1",
		"pickup":      map[string]any{"address": "A", "lat": 14.5, "lng": 121.0},
		"dropoff":     map[string]any{"address": "B", "lat": 14.6, "lng": 121.1},
		"distance_km": -3,
		"weight_kg":   1,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHealth(t *testing.T) {
	w := doRequest(newTestRouter(t), http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "OK", w.Body.String())
}
