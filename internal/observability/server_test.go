package observability

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestRouterHealthIncludesStatus(t *testing.T) {
	r := NewRouter(zerolog.Nop(), func() map[string]any {
		return map[string]any{"frames": 12}
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rec.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode health: %v", err)
	}
	if body["status"] != "ok" {
		t.Fatalf("unexpected status field: %v", body["status"])
	}
	if body["frames"] != float64(12) {
		t.Fatalf("unexpected frames field: %v", body["frames"])
	}
}

func TestRouterServesMetrics(t *testing.T) {
	RecordFrame("#identity", 10)
	r := NewRouter(zerolog.Nop(), nil)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "skyframe_frame_decoded_total") {
		t.Fatalf("metrics output missing frame counter")
	}
}
