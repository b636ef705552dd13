package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestIPRateLimiterAllowsWithinBudget(t *testing.T) {
	limiter := newIPRateLimiter(60)
	handler := limiter.middleware(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/last", nil)
	req.RemoteAddr = "203.0.113.5:1234"
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected first request to pass, got status %d", rec.Code)
	}
}

func TestIPRateLimiterRejectsOverBudget(t *testing.T) {
	limiter := newIPRateLimiter(1)
	handler := limiter.middleware(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/last", nil)
	req.RemoteAddr = "203.0.113.9:5555"

	first := httptest.NewRecorder()
	handler.ServeHTTP(first, req)
	if first.Code != http.StatusOK {
		t.Fatalf("expected first request to pass, got %d", first.Code)
	}

	second := httptest.NewRecorder()
	handler.ServeHTTP(second, req)
	if second.Code != http.StatusTooManyRequests {
		t.Fatalf("expected second immediate request to be rate-limited, got %d", second.Code)
	}
}

func TestIPRateLimiterTracksIndependentIPs(t *testing.T) {
	limiter := newIPRateLimiter(1)
	handler := limiter.middleware(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	for _, addr := range []string{"203.0.113.1:1", "203.0.113.2:1"} {
		req := httptest.NewRequest(http.MethodGet, "/api/last", nil)
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected request from a fresh IP %s to pass, got %d", addr, rec.Code)
		}
	}
}
