// README: Benchmark cases; HTTP fee properties, DB/Redis checks, and throughput.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"dropee/internal/infra"
	"dropee/internal/modules/pricing"
)

const benchServiceID = "bench-express"

type Runner struct {
	cfg   Config
	httpc *http.Client
	db    *pgxpool.Pool
	redis *redis.Client
}

type Result struct {
	Name    string
	Status  string
	Latency time.Duration
	Note    string
}

type TestCase struct {
	Name string
	Run  func(ctx context.Context, r *Runner) Result
}

func NewRunner(cfg Config) *Runner {
	return &Runner{
		cfg:   cfg,
		httpc: &http.Client{Timeout: 10 * time.Second},
	}
}

func (r *Runner) RunAll(ctx context.Context) []Result {
	if r.cfg.DSN != "" {
		if db, err := pgxpool.New(ctx, r.cfg.DSN); err == nil {
			r.db = db
		}
	}
	if r.cfg.RedisAddr != "" {
		r.redis = redis.NewClient(&redis.Options{Addr: r.cfg.RedisAddr})
	}

	tests := r.cases()
	results := make([]Result, 0, len(tests))

	for _, tc := range tests {
		res := tc.Run(ctx, r)
		res.Name = tc.Name
		results = append(results, res)
		fmt.Printf("%-5s %s", res.Status, tc.Name)
		if res.Latency > 0 {
			fmt.Printf(" (%s)", res.Latency)
		}
		if res.Note != "" {
			fmt.Printf(" - %s", res.Note)
		}
		fmt.Println()
	}

	if r.db != nil {
		r.db.Close()
	}
	if r.redis != nil {
		_ = r.redis.Close()
	}

	return results
}

func (r *Runner) cases() []TestCase {
	fee := r.cfg.BaseURL + "/api/delivery-fee"
	return []TestCase{
		{
			Name: "Env: Postgres connect",
			Run: func(ctx context.Context, r *Runner) Result {
				if r.db == nil {
					return Result{Status: "SKIP", Note: "db not configured"}
				}
				ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
				defer cancel()
				if err := r.db.Ping(ctx); err != nil {
					return Result{Status: "FAIL", Note: err.Error()}
				}
				return Result{Status: "PASS"}
			},
		},
		{
			Name: "Env: Redis connect",
			Run: func(ctx context.Context, r *Runner) Result {
				if r.redis == nil {
					return Result{Status: "SKIP", Note: "redis not configured"}
				}
				ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
				defer cancel()
				if err := r.redis.Ping(ctx).Err(); err != nil {
					return Result{Status: "FAIL", Note: err.Error()}
				}
				return Result{Status: "PASS"}
			},
		},
		{
			Name: "Migration: apply (optional)",
			Run: func(ctx context.Context, r *Runner) Result {
				if !r.cfg.ApplyMigration {
					return Result{Status: "SKIP", Note: "apply-migration=false"}
				}
				if r.db == nil {
					return Result{Status: "FAIL", Note: "db not configured"}
				}
				if err := infra.Migrate(ctx, r.db, r.cfg.MigrationDir); err != nil {
					return Result{Status: "FAIL", Note: err.Error()}
				}
				return Result{Status: "PASS"}
			},
		},
		{
			Name: "Migration: tables exist",
			Run: func(ctx context.Context, r *Runner) Result {
				if r.db == nil {
					return Result{Status: "SKIP", Note: "db not configured"}
				}
				tables, err := extractTables(r.cfg.MigrationDir)
				if err != nil {
					return Result{Status: "FAIL", Note: err.Error()}
				}
				for _, t := range tables {
					var exists bool
					err := r.db.QueryRow(ctx,
						"SELECT EXISTS (SELECT 1 FROM information_schema.tables WHERE table_name=$1)",
						t,
					).Scan(&exists)
					if err != nil {
						return Result{Status: "FAIL", Note: err.Error()}
					}
					if !exists {
						return Result{Status: "FAIL", Note: "missing table: " + t}
					}
				}
				return Result{Status: "PASS"}
			},
		},
		{
			Name: "API: health",
			Run: func(ctx context.Context, r *Runner) Result {
				start := time.Now()
				resp, err := r.httpc.Get(r.cfg.BaseURL + "/health")
				if err != nil {
					return Result{Status: "FAIL", Note: err.Error()}
				}
				_ = resp.Body.Close()
				if resp.StatusCode != http.StatusOK {
					return Result{Status: "FAIL", Note: fmt.Sprintf("status=%d", resp.StatusCode)}
				}
				return Result{Status: "PASS", Latency: time.Since(start)}
			},
		},

		feeCase("Fee: default floor (0 km, 2 kg)", fee, map[string]any{
			"distance_km": 0, "weight_kg": 2, "weather_condition": "clear", "urgency": "normal",
		}, 30),
		feeCase("Fee: distance 5 km", fee, map[string]any{
			"distance_km": 5, "weight_kg": 2,
		}, 80),
		feeCase("Fee: weight 5 kg", fee, map[string]any{
			"distance_km": 0, "weight_kg": 5,
		}, 45),
		feeCase("Fee: fragile + rain + urgent", fee, map[string]any{
			"distance_km": 0, "weight_kg": 2, "is_fragile": true, "weather_condition": "rain", "urgency": "urgent",
		}, 69),
		feeCase("Fee: heavy rain", fee, map[string]any{
			"distance_km": 0, "weight_kg": 2, "weather_condition": "heavy_rain",
		}, 43.5),
		feeCase("Fee: clamped to max", fee, map[string]any{
			"distance_km": 1000, "weight_kg": 2,
		}, 500),
		feeCase("Fee: unknown service falls back", fee, map[string]any{
			"service_id": "bench-does-not-exist", "distance_km": 5, "weight_kg": 2,
		}, 80),
		statusCase("Fee: negative distance -> 400", fee, map[string]any{
			"distance_km": -1, "weight_kg": 2,
		}, http.StatusBadRequest),
		statusCase("Fee: missing distance -> 400", fee, map[string]any{
			"weight_kg": 2,
		}, http.StatusBadRequest),
		{
			Name: "Fee: preflight",
			Run: func(ctx context.Context, r *Runner) Result {
				req, _ := http.NewRequestWithContext(ctx, http.MethodOptions, fee, nil)
				req.Header.Set("Origin", "https://bench.local")
				req.Header.Set("Access-Control-Request-Method", http.MethodPost)
				resp, err := r.httpc.Do(req)
				if err != nil {
					return Result{Status: "FAIL", Note: err.Error()}
				}
				_ = resp.Body.Close()
				if resp.StatusCode >= 300 || resp.Header.Get("Access-Control-Allow-Origin") == "" {
					return Result{Status: "FAIL", Note: fmt.Sprintf("status=%d", resp.StatusCode)}
				}
				return Result{Status: "PASS", Note: fmt.Sprintf("status=%d", resp.StatusCode)}
			},
		},
		{
			Name: "Fee: service override",
			Run: func(ctx context.Context, r *Runner) Result {
				if r.db == nil {
					return Result{Status: "SKIP", Note: "db not configured"}
				}
				cfg := pricing.DefaultConfig()
				cfg.BasePrice = 45
				if err := pricing.NewStore(r.db).Upsert(ctx, benchServiceID, cfg); err != nil {
					return Result{Status: "FAIL", Note: err.Error()}
				}
				if r.redis != nil {
					_ = pricing.NewRedisCache(r.redis, nil, 0).Invalidate(ctx, benchServiceID)
				}
				// 45 + 50
				return feeCase("", fee, map[string]any{
					"service_id": benchServiceID, "distance_km": 5, "weight_kg": 2,
				}, 95).Run(ctx, r)
			},
		},
		{
			Name: "Deliveries: submit",
			Run: func(ctx context.Context, r *Runner) Result {
				status, body, latency, err := r.post(ctx, r.cfg.BaseURL+"/api/deliveries", map[string]any{
					"user_id":     "bench_user",
					"pickup":      map[string]any{"address": "Pickup", "lat": 14.5567, "lng": 121.0232},
					"dropoff":     map[string]any{"address": "Dropoff", "lat": 14.5649, "lng": 121.0367},
					"distance_km": 2,
					"weight_kg":   1,
				})
				if err != nil {
					return Result{Status: "FAIL", Note: err.Error()}
				}
				if status != http.StatusCreated {
					return Result{Status: "FAIL", Latency: latency, Note: fmt.Sprintf("status=%d body=%s", status, body)}
				}
				return Result{Status: "PASS", Latency: latency}
			},
		},
		{
			Name: "Concurrency: identical requests give identical bodies",
			Run: func(ctx context.Context, r *Runner) Result {
				return concurrentIdentical(ctx, r, fee, map[string]any{
					"distance_km": 7.7, "weight_kg": 9.3, "is_fragile": true,
					"weather_condition": "heavy_rain", "urgency": "urgent",
				})
			},
		},
		{
			Name: "Perf: delivery fee load",
			Run: func(ctx context.Context, r *Runner) Result {
				return perfLoad(ctx, r, fee, map[string]any{
					"distance_km": 3.2, "weight_kg": 4, "weather_condition": "rain", "urgency": "normal",
				})
			},
		},
	}
}

func (r *Runner) post(ctx context.Context, url string, payload any) (int, []byte, time.Duration, error) {
	b, _ := json.Marshal(payload)
	req, _ := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	start := time.Now()
	resp, err := r.httpc.Do(req)
	if err != nil {
		return 0, nil, 0, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	return resp.StatusCode, body, time.Since(start), err
}

func feeCase(name, url string, payload any, wantTotal float64) TestCase {
	return TestCase{
		Name: name,
		Run: func(ctx context.Context, r *Runner) Result {
			status, body, latency, err := r.post(ctx, url, payload)
			if err != nil {
				return Result{Status: "FAIL", Note: err.Error()}
			}
			if status != http.StatusOK {
				return Result{Status: "FAIL", Latency: latency, Note: fmt.Sprintf("status=%d", status)}
			}
			var fee pricing.FeeBreakdown
			if err := json.Unmarshal(body, &fee); err != nil {
				return Result{Status: "FAIL", Latency: latency, Note: err.Error()}
			}
			if fee.TotalFee != wantTotal {
				return Result{Status: "FAIL", Latency: latency, Note: fmt.Sprintf("total_fee=%v want %v", fee.TotalFee, wantTotal)}
			}
			return Result{Status: "PASS", Latency: latency, Note: fmt.Sprintf("total_fee=%v", fee.TotalFee)}
		},
	}
}

func statusCase(name, url string, payload any, want int) TestCase {
	return TestCase{
		Name: name,
		Run: func(ctx context.Context, r *Runner) Result {
			status, _, latency, err := r.post(ctx, url, payload)
			if err != nil {
				return Result{Status: "FAIL", Note: err.Error()}
			}
			if status != want {
				return Result{Status: "FAIL", Latency: latency, Note: fmt.Sprintf("status=%d want %d", status, want)}
			}
			return Result{Status: "PASS", Latency: latency}
		},
	}
}

func concurrentIdentical(ctx context.Context, r *Runner, url string, payload any) Result {
	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		bodies = map[string]int{}
		errs   int
	)
	for i := 0; i < r.cfg.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			status, body, _, err := r.post(ctx, url, payload)
			mu.Lock()
			defer mu.Unlock()
			if err != nil || status != http.StatusOK {
				errs++
				return
			}
			bodies[string(body)]++
		}()
	}
	wg.Wait()

	if errs > 0 {
		return Result{Status: "FAIL", Note: fmt.Sprintf("errors=%d", errs)}
	}
	if len(bodies) != 1 {
		return Result{Status: "FAIL", Note: fmt.Sprintf("distinct bodies=%d", len(bodies))}
	}
	return Result{Status: "PASS", Note: fmt.Sprintf("requests=%d", r.cfg.Concurrency)}
}

func perfLoad(ctx context.Context, r *Runner, url string, payload any) Result {
	b, _ := json.Marshal(payload)
	end := time.Now().Add(r.cfg.Duration)
	var count, errCount int64
	var mu sync.Mutex
	wg := sync.WaitGroup{}

	for i := 0; i < r.cfg.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for time.Now().Before(end) && ctx.Err() == nil {
				req, _ := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
				req.Header.Set("Content-Type", "application/json")
				resp, err := r.httpc.Do(req)
				if err != nil {
					mu.Lock()
					errCount++
					mu.Unlock()
					continue
				}
				_, _ = io.Copy(io.Discard, resp.Body)
				_ = resp.Body.Close()
				mu.Lock()
				count++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if count == 0 {
		return Result{Status: "FAIL", Note: "no requests completed"}
	}
	rps := float64(count) / r.cfg.Duration.Seconds()
	return Result{Status: "PASS", Note: fmt.Sprintf("rps=%.1f errors=%d", rps, errCount)}
}

func extractTables(dir string) ([]string, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.sql"))
	if err != nil {
		return nil, err
	}
	re := regexp.MustCompile(`(?i)create\s+table\s+if\s+not\s+exists\s+([a-zA-Z0-9_]+)`)
	var tables []string
	for _, f := range files {
		b, err := os.ReadFile(f)
		if err != nil {
			return nil, err
		}
		for _, m := range re.FindAllStringSubmatch(string(b), -1) {
			tables = append(tables, m[1])
		}
	}
	return tables, nil
}
