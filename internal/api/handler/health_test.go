package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func TestHealth_Liveness(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/health", nil), rec)

	if err := NewHealthHandler(nil).Liveness(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestHealth_Readiness(t *testing.T) {
	ok := func(context.Context) error { return nil }
	down := func(context.Context) error { return errors.New("connection refused") }

	tests := []struct {
		name   string
		checks map[string]Check
		code   int
		status string
	}{
		{"all healthy", map[string]Check{"sqlite": ok, "redis": ok}, http.StatusOK, "ok"},
		{"no dependencies", map[string]Check{}, http.StatusOK, "ok"},
		{"one down", map[string]Check{"mongodb": ok, "redis": down}, http.StatusServiceUnavailable, "degraded"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			rec := httptest.NewRecorder()
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/health/ready", nil), rec)

			if err := NewHealthHandler(tt.checks).Readiness(c); err != nil {
				t.Fatalf("handler error: %v", err)
			}
			if rec.Code != tt.code {
				t.Fatalf("expected %d, got %d", tt.code, rec.Code)
			}
			var resp readinessResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("invalid json: %v", err)
			}
			if resp.Status != tt.status {
				t.Fatalf("expected status %q, got %q", tt.status, resp.Status)
			}
			if len(resp.Dependencies) != len(tt.checks) {
				t.Fatalf("expected %d dependencies, got %d", len(tt.checks), len(resp.Dependencies))
			}
		})
	}

	t.Run("reports the failing error", func(t *testing.T) {
		e := echo.New()
		rec := httptest.NewRecorder()
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/health/ready", nil), rec)
		_ = NewHealthHandler(map[string]Check{"redis": down}).Readiness(c)

		var resp readinessResponse
		_ = json.Unmarshal(rec.Body.Bytes(), &resp)
		if resp.Dependencies["redis"].Error != "connection refused" {
			t.Fatalf("unexpected dependency status: %+v", resp.Dependencies["redis"])
		}
	})
}
