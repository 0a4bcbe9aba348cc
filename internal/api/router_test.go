// ItemCF - Item-Based Collaborative Filtering Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/itemcf

package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/tomtom215/itemcf/internal/metrics"
	"github.com/tomtom215/itemcf/internal/recommend"
	"github.com/tomtom215/itemcf/internal/supervisor/services"
)

type fakeSource struct {
	report services.RunReport
	ok     bool
}

func (f fakeSource) Report() (services.RunReport, bool) {
	return f.report, f.ok
}

type envelope struct {
	Status string          `json:"status"`
	Data   json.RawMessage `json:"data"`
	Error  *Error          `json:"error"`
}

func serve(t *testing.T, h http.Handler, method, path string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var env envelope
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
			t.Fatalf("Failed to decode response %q: %v", rec.Body.String(), err)
		}
	}
	return rec, env
}

func successReport() services.RunReport {
	finished := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	return services.RunReport{
		RunID:      "run-1",
		Status:     services.StatusSuccess,
		StartedAt:  finished.Add(-time.Minute),
		FinishedAt: &finished,
		Users:      3,
		Items:      3,
		Evaluation: &recommend.Evaluation{HitRate: 0.5, Hits: 1, Users: 2},
	}
}

func TestHealth(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		source        ReportSource
		wantStatus    string
		wantRunStatus string
	}{
		{"no source", nil, "healthy", "pending"},
		{"not started", fakeSource{}, "healthy", "pending"},
		{"success", fakeSource{report: successReport(), ok: true}, "healthy", services.StatusSuccess},
		{
			name: "failed run",
			source: fakeSource{ok: true, report: services.RunReport{
				RunID: "run-2", Status: services.StatusFailure, ErrorKind: "data",
			}},
			wantStatus:    "degraded",
			wantRunStatus: services.StatusFailure,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			h := NewRouter(tt.source, RouterConfig{Version: "test"}).Handler()
			rec, env := serve(t, h, http.MethodGet, "/api/v1/health")

			if rec.Code != http.StatusOK {
				t.Fatalf("Expected status %d, got %d", http.StatusOK, rec.Code)
			}
			var health HealthStatus
			if err := json.Unmarshal(env.Data, &health); err != nil {
				t.Fatalf("Failed to decode health: %v", err)
			}
			if health.Status != tt.wantStatus {
				t.Errorf("status = %q, want %q", health.Status, tt.wantStatus)
			}
			if health.RunStatus != tt.wantRunStatus {
				t.Errorf("run_status = %q, want %q", health.RunStatus, tt.wantRunStatus)
			}
			if health.Version != "test" {
				t.Errorf("version = %q, want test", health.Version)
			}
			if rec.Header().Get("X-Correlation-ID") == "" {
				t.Error("missing X-Correlation-ID header")
			}
			if rec.Header().Get("X-Content-Type-Options") != "nosniff" {
				t.Error("missing security headers")
			}
		})
	}
}

func TestReport(t *testing.T) {
	t.Parallel()

	t.Run("before first run", func(t *testing.T) {
		t.Parallel()

		h := NewRouter(fakeSource{}, RouterConfig{}).Handler()
		rec, env := serve(t, h, http.MethodGet, "/api/v1/report")

		if rec.Code != http.StatusServiceUnavailable {
			t.Fatalf("Expected status %d, got %d", http.StatusServiceUnavailable, rec.Code)
		}
		if env.Status != "error" || env.Error == nil || env.Error.Code != "RUN_NOT_STARTED" {
			t.Errorf("unexpected envelope: %+v", env)
		}
		if rec.Header().Get("Retry-After") == "" {
			t.Error("missing Retry-After header")
		}
	})

	t.Run("finished run", func(t *testing.T) {
		t.Parallel()

		h := NewRouter(fakeSource{report: successReport(), ok: true}, RouterConfig{}).Handler()
		rec, env := serve(t, h, http.MethodGet, "/api/v1/report")

		if rec.Code != http.StatusOK {
			t.Fatalf("Expected status %d, got %d", http.StatusOK, rec.Code)
		}
		var got services.RunReport
		if err := json.Unmarshal(env.Data, &got); err != nil {
			t.Fatalf("Failed to decode report: %v", err)
		}
		if got.RunID != "run-1" || got.Status != services.StatusSuccess {
			t.Errorf("report = %+v", got)
		}
		if got.Evaluation == nil || got.Evaluation.HitRate != 0.5 {
			t.Errorf("evaluation = %+v", got.Evaluation)
		}
		if rec.Header().Get("Cache-Control") != "no-store" {
			t.Errorf("Cache-Control = %q", rec.Header().Get("Cache-Control"))
		}
	})
}

func TestRouter_NotFoundAndMethod(t *testing.T) {
	t.Parallel()

	h := NewRouter(nil, RouterConfig{}).Handler()

	tests := []struct {
		name     string
		method   string
		path     string
		wantCode int
		wantErr  string
	}{
		{"unknown path", http.MethodGet, "/api/v1/nope", http.StatusNotFound, "NOT_FOUND"},
		{"wrong method", http.MethodPost, "/api/v1/report", http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rec, env := serve(t, h, tt.method, tt.path)
			if rec.Code != tt.wantCode {
				t.Fatalf("Expected status %d, got %d", tt.wantCode, rec.Code)
			}
			if env.Error == nil || env.Error.Code != tt.wantErr {
				t.Errorf("error = %+v, want code %s", env.Error, tt.wantErr)
			}
		})
	}
}

func TestRouter_RateLimit(t *testing.T) {
	t.Parallel()

	h := NewRouter(nil, RouterConfig{RateLimitRequests: 1, RateLimitWindow: time.Hour}).Handler()

	rec, _ := serve(t, h, http.MethodGet, "/api/v1/health")
	if rec.Code != http.StatusOK {
		t.Fatalf("first request: status %d", rec.Code)
	}
	rec, env := serve(t, h, http.MethodGet, "/api/v1/health")
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("second request: Expected status %d, got %d", http.StatusTooManyRequests, rec.Code)
	}
	if env.Error == nil || env.Error.Code != "RATE_LIMITED" {
		t.Errorf("error = %+v", env.Error)
	}

	// metrics are outside the limited group
	rec, _ = serve(t, h, http.MethodGet, "/metrics")
	if rec.Code != http.StatusOK {
		t.Errorf("/metrics status = %d", rec.Code)
	}
}

func TestRateLimit_Disabled(t *testing.T) {
	t.Parallel()

	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusNoContent) })
	for _, tc := range []struct {
		requests int
		window   time.Duration
	}{{0, time.Minute}, {10, 0}, {-1, -1}} {
		h := RateLimit(tc.requests, tc.window)(next)
		for i := 0; i < 5; i++ {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
			if rec.Code != http.StatusNoContent {
				t.Fatalf("RateLimit(%d, %v) request %d: status %d", tc.requests, tc.window, i, rec.Code)
			}
		}
	}
}

func TestMetricsEndpoint(t *testing.T) {
	h := NewRouter(nil, RouterConfig{}).Handler()

	counter := metrics.APIRequestsTotal.WithLabelValues(http.MethodGet, "/api/v1/health", "200")
	before := testutil.ToFloat64(counter)

	serve(t, h, http.MethodGet, "/api/v1/health")

	if got := testutil.ToFloat64(counter) - before; got != 1 {
		t.Errorf("health requests recorded = %v, want 1", got)
	}

	rec, _ := serve(t, h, http.MethodGet, "/metrics")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status %d, got %d", http.StatusOK, rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "itemcf_http_requests_total") {
		t.Error("exposition does not contain itemcf_http_requests_total")
	}
}

func TestPrometheusMetrics_UnmatchedPath(t *testing.T) {
	counter := metrics.APIRequestsTotal.WithLabelValues(http.MethodGet, "unmatched", "418")
	before := testutil.ToFloat64(counter)

	h := PrometheusMetrics(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		w.WriteHeader(http.StatusOK)
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/anything", nil))

	if got := testutil.ToFloat64(counter) - before; got != 1 {
		t.Errorf("unmatched requests recorded = %v, want 1", got)
	}
}

func TestSanitizeLogValue(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"plain":         "plain",
		"line\nforged":  "line\\x0aforged",
		"tab\there":     "tab\\x09here",
		"del\x7f":       "del\\x7f",
		"unicode éè ok": "unicode éè ok",
	}
	for in, want := range tests {
		if got := sanitizeLogValue(in); got != want {
			t.Errorf("sanitizeLogValue(%q) = %q, want %q", in, got, want)
		}
	}
}
