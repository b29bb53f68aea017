package observability

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHealthChecker_Check(t *testing.T) {
	t.Run("no checks is healthy", func(t *testing.T) {
		checker := NewHealthChecker()
		status := checker.Check(context.Background())
		if status.Status != StatusHealthy {
			t.Errorf("Expected %s, got %s", StatusHealthy, status.Status)
		}
	})

	t.Run("all passing is healthy", func(t *testing.T) {
		checker := NewHealthChecker()
		checker.AddCheck("metadata", true, func(ctx context.Context) error { return nil })
		checker.AddCheck("storage", true, func(ctx context.Context) error { return nil })

		status := checker.Check(context.Background())
		if status.Status != StatusHealthy {
			t.Errorf("Expected %s, got %s", StatusHealthy, status.Status)
		}
		if len(status.Dependencies) != 2 {
			t.Errorf("Expected 2 dependencies, got %d", len(status.Dependencies))
		}
	})

	t.Run("failing required check is unhealthy", func(t *testing.T) {
		checker := NewHealthChecker()
		checker.AddCheck("metadata", true, func(ctx context.Context) error {
			return errors.New("connection refused")
		})

		status := checker.Check(context.Background())
		if status.Status != StatusUnhealthy {
			t.Errorf("Expected %s, got %s", StatusUnhealthy, status.Status)
		}
		dep := status.Dependencies["metadata"]
		if dep.Status != StatusUnhealthy {
			t.Errorf("Expected dependency %s, got %s", StatusUnhealthy, dep.Status)
		}
		if dep.Message != "connection refused" {
			t.Errorf("Expected message 'connection refused', got %q", dep.Message)
		}
	})

	t.Run("failing optional check is degraded", func(t *testing.T) {
		checker := NewHealthChecker()
		checker.AddCheck("metadata", true, func(ctx context.Context) error { return nil })
		checker.AddCheck("cache", false, func(ctx context.Context) error {
			return errors.New("redis down")
		})

		status := checker.Check(context.Background())
		if status.Status != StatusDegraded {
			t.Errorf("Expected %s, got %s", StatusDegraded, status.Status)
		}
	})

	t.Run("required failure wins over optional failure", func(t *testing.T) {
		checker := NewHealthChecker()
		checker.AddCheck("cache", false, func(ctx context.Context) error {
			return errors.New("redis down")
		})
		checker.AddCheck("metadata", true, func(ctx context.Context) error {
			return errors.New("db down")
		})

		status := checker.Check(context.Background())
		if status.Status != StatusUnhealthy {
			t.Errorf("Expected %s, got %s", StatusUnhealthy, status.Status)
		}
	})
}

func TestHealthChecker_Liveness(t *testing.T) {
	checker := NewHealthChecker()
	checker.AddCheck("metadata", true, func(ctx context.Context) error {
		return errors.New("db down")
	})

	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	rec := httptest.NewRecorder()
	checker.Liveness(rec, req)

	// Liveness ignores dependencies.
	if rec.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", rec.Code)
	}
}

func TestHealthChecker_Readiness(t *testing.T) {
	t.Run("healthy returns 200", func(t *testing.T) {
		checker := NewHealthChecker()
		checker.AddCheck("metadata", true, func(ctx context.Context) error { return nil })

		req := httptest.NewRequest(http.MethodGet, "/health/ready", nil)
		rec := httptest.NewRecorder()
		checker.Readiness(rec, req)

		if rec.Code != http.StatusOK {
			t.Errorf("Expected status 200, got %d", rec.Code)
		}

		var status HealthStatus
		if err := json.Unmarshal(rec.Body.Bytes(), &status); err != nil {
			t.Fatalf("Failed to unmarshal body: %v", err)
		}
		if status.Status != StatusHealthy {
			t.Errorf("Expected %s, got %s", StatusHealthy, status.Status)
		}
	})

	t.Run("unhealthy returns 503", func(t *testing.T) {
		checker := NewHealthChecker()
		checker.AddCheck("metadata", true, func(ctx context.Context) error {
			return errors.New("db down")
		})

		req := httptest.NewRequest(http.MethodGet, "/health/ready", nil)
		rec := httptest.NewRecorder()
		checker.Readiness(rec, req)

		if rec.Code != http.StatusServiceUnavailable {
			t.Errorf("Expected status 503, got %d", rec.Code)
		}
	})

	t.Run("degraded returns 200", func(t *testing.T) {
		checker := NewHealthChecker()
		checker.AddCheck("cache", false, func(ctx context.Context) error {
			return errors.New("redis down")
		})

		req := httptest.NewRequest(http.MethodGet, "/health/ready", nil)
		rec := httptest.NewRecorder()
		checker.Readiness(rec, req)

		if rec.Code != http.StatusOK {
			t.Errorf("Expected status 200, got %d", rec.Code)
		}
	})
}

func TestRegisterHealthRoutes(t *testing.T) {
	mux := http.NewServeMux()
	checker := NewHealthChecker()
	RegisterHealthRoutes(mux, checker)

	for _, path := range []string{"/health", "/health/live", "/health/ready"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Errorf("Expected status 200 for %s, got %d", path, rec.Code)
		}
	}
}
