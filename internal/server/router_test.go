package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"engcalc/internal/calculator"
	"engcalc/internal/fan"
	"engcalc/internal/observability"
	"engcalc/internal/testutil"
	"engcalc/internal/tool"
	"engcalc/internal/web"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	observability.Logger = zap.NewNop()
	if err := calculator.InitMetrics(); err != nil {
		t.Fatalf("initializing calculator metrics: %v", err)
	}

	store, err := fan.Open(":memory:")
	if err != nil {
		t.Fatalf("opening fan store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	tools, err := tool.LoadEmbedded()
	if err != nil {
		t.Fatalf("loading tools: %v", err)
	}
	calculators := calculator.NewRegistry()
	pages, err := web.New(web.Deps{
		Tools:   tools,
		Backend: tool.LocalBackend{Registry: calculators},
		Fans:    store,
	})
	if err != nil {
		t.Fatalf("creating pages: %v", err)
	}

	return NewRouter(Deps{Calculators: calculators, Fans: store, Pages: pages})
}

func TestNewRouterHealthEndpoint(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, w.Code)
	}

	if body := w.Body.String(); body != "ok" {
		t.Fatalf("expected body %q, got %q", "ok", body)
	}
}

func TestNewRouterCalculateSetsHeaderAndOmitsRequestIDInBody(t *testing.T) {
	router := newTestRouter(t)

	req := testutil.NewJSONRequest(t, http.MethodPost, "/api/tools/angular-acceleration/calculate", calculator.Request{
		Scenario: "acceleration_time",
		Params:   calculator.Params{"t": 10.0, "A": 0.5},
	})
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, w.Code, w.Body.String())
	}

	requestID := w.Result().Header.Get("X-Request-ID")
	if requestID == "" {
		t.Fatal("expected X-Request-ID header to be set")
	}
	if _, err := uuid.Parse(requestID); err != nil {
		t.Fatalf("expected valid UUID in X-Request-ID, got %q: %v", requestID, err)
	}

	var payload map[string]any
	if err := json.NewDecoder(w.Result().Body).Decode(&payload); err != nil {
		t.Fatalf("decoding JSON response: %v", err)
	}

	if _, ok := payload["request_id"]; ok {
		t.Fatal("did not expect request_id field in success JSON body")
	}

	if got, ok := payload["result"].(float64); !ok || got != 5 {
		t.Fatalf("expected result 5, got %#v", payload["result"])
	}
}

func TestNewRouterErrorBodyCarriesDetailOnly(t *testing.T) {
	router := newTestRouter(t)

	req := testutil.NewJSONRequest(t, http.MethodPost, "/api/tools/angular-acceleration/calculate", calculator.Request{
		Scenario: "acceleration_time",
		Params:   calculator.Params{"t": 10.0, "A": 1.0},
	})
	w := testutil.ExecuteRequest(req, router)

	testutil.CheckResponseCode(t, http.StatusBadRequest, w.Code)

	var payload map[string]any
	testutil.DecodeJSONBody(t, w.Body, &payload)
	if len(payload) != 1 || payload["detail"] == "" {
		t.Fatalf("expected only a detail key, got %#v", payload)
	}
	if w.Header().Get("X-Request-ID") == "" {
		t.Fatal("expected X-Request-ID header on error response")
	}
}

func TestNewRouterMountsFansAndPages(t *testing.T) {
	router := newTestRouter(t)

	tests := []struct {
		target   string
		contains string
	}{
		{target: "/api/fans", contains: "4-68"},
		{target: "/", contains: "风机性能计算"},
		{target: "/tools/current-calc?tab=voltage-loss", contains: "电压损失"},
		{target: "/metrics", contains: "# HELP"},
	}

	for _, tc := range tests {
		w := testutil.ExecuteRequest(httptest.NewRequest(http.MethodGet, tc.target, nil), router)
		testutil.CheckResponseCode(t, http.StatusOK, w.Code)
		if !strings.Contains(w.Body.String(), tc.contains) {
			t.Fatalf("%s: expected body to contain %q", tc.target, tc.contains)
		}
	}
}
