package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

type stubHealth struct{ stale bool }

func (s stubHealth) CacheStale() bool { return s.stale }

func TestHealthCheckStaysOKWhileStale(t *testing.T) {
	h := NewHealthHandler(stubHealth{stale: true})

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	h.HealthCheck(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 even with a stale cache", rec.Code)
	}

	var resp struct {
		Status     string `json:"status"`
		CacheStale bool   `json:"cacheStale"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if resp.Status != "ok" || !resp.CacheStale {
		t.Errorf("response = %+v", resp)
	}
}
