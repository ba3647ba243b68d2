package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"syscall"
	"testing"

	"engcalc/internal/calculator"
	"engcalc/internal/observability"

	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	c := New(srv.URL + "/")
	t.Cleanup(func() {
		c.Close()
		srv.Close()
	})
	return c
}

func TestRequestSendsJSONAndRequestID(t *testing.T) {
	var (
		gotMethod, gotType, gotID string
		gotBody                   map[string]any
	)
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotType = r.Header.Get("Content-Type")
		gotID = r.Header.Get(observability.RequestIDHeader)
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"result":5}`)
	})

	ctx := observability.ContextWithRequestID(context.Background(), "req-9")
	raw, err := c.Request(ctx, http.MethodPost, "/api/tools/x/calculate", map[string]any{"t": 10})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if string(raw) != `{"result":5}` {
		t.Fatalf("unexpected body %s", raw)
	}
	if gotMethod != http.MethodPost || gotType != "application/json" {
		t.Fatalf("unexpected method/content type %q %q", gotMethod, gotType)
	}
	if gotID != "req-9" {
		t.Fatalf("expected request id to propagate, got %q", gotID)
	}
	if gotBody["t"] != 10.0 {
		t.Fatalf("expected t=10 in body, got %#v", gotBody)
	}
}

func TestRequestGETHasNoBody(t *testing.T) {
	var n int64 = -1
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		n = int64(len(b))
		_, _ = io.WriteString(w, `[]`)
	})

	if _, err := c.Request(context.Background(), http.MethodGet, "/api/fans", map[string]any{"ignored": true}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 0 {
		t.Fatalf("expected empty GET body, got %d bytes", n)
	}
}

func TestRequestNon2xxUsesDetail(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{name: "detail present", body: `{"detail":"电压不能为0"}`, want: "电压不能为0"},
		{name: "detail missing", body: `{"error":"x"}`, want: "请求失败"},
		{name: "detail not a string", body: `{"detail":[{"loc":"t"}]}`, want: "请求失败"},
		{name: "not json", body: `<html>bad gateway</html>`, want: "请求失败"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadRequest)
				_, _ = io.WriteString(w, tc.body)
			})

			_, err := c.Request(context.Background(), http.MethodPost, "/x", nil)

			var apiErr *APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("expected *APIError, got %v", err)
			}
			if apiErr.Status != http.StatusBadRequest {
				t.Fatalf("expected status 400, got %d", apiErr.Status)
			}
			if err.Error() != tc.want {
				t.Fatalf("expected message %q, got %q", tc.want, err.Error())
			}
		})
	}
}

func TestRequestNetworkErrorPropagates(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := New(url)
	defer c.Close()

	_, err := c.Request(context.Background(), http.MethodGet, "/health", nil)
	if err == nil {
		t.Fatal("expected a network error")
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		t.Fatalf("network failure must not be an APIError: %v", err)
	}
	if !errors.Is(err, syscall.ECONNREFUSED) {
		t.Fatalf("expected ECONNREFUSED in chain, got %v", err)
	}
}

func TestRequestHonoursCancellation(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{}`)
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Request(ctx, http.MethodGet, "/", nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestCalculateAgainstBackend(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/tools/angular-acceleration/calculate" {
			http.NotFound(w, r)
			return
		}
		var req calculator.Request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Scenario != "acceleration_time" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		_, _ = io.WriteString(w, `{"result":5,"unit":"s","formula":"t0","scenario_name":"加速时间计算","extra":{"t0":5}}`)
	})

	resp, err := c.Calculate(context.Background(), "angular-acceleration", calculator.Request{
		Scenario: "acceleration_time",
		Params:   calculator.Params{"t": 10.0, "A": 0.5},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp["result"] != 5.0 || resp["unit"] != "s" {
		t.Fatalf("unexpected response %#v", resp)
	}
}
