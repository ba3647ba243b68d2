// Package apiclient is the JSON-over-HTTP client the tool pages use to reach
// the calculation backend.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"engcalc/internal/calculator"
	"engcalc/internal/observability"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// fallbackMessage is reported when a failed response carries no detail.
const fallbackMessage = "请求失败"

// APIError is a non-2xx answer from the backend.
type APIError struct {
	Status int
	Detail string
}

func (e *APIError) Error() string {
	if e.Detail == "" {
		return fallbackMessage
	}
	return e.Detail
}

// Client issues single best-effort requests: no retries, no timeout and no
// caching. Cancellation comes only from the caller's context.
type Client struct {
	baseURL   string
	transport *http.Transport
	http      *http.Client
}

func New(baseURL string) *Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		transport: transport,
		http:      &http.Client{Transport: otelhttp.NewTransport(transport)},
	}
}

// BaseURL returns the backend root the client was built with.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Close drops idle keep-alive connections.
func (c *Client) Close() {
	c.transport.CloseIdleConnections()
}

// Request sends data as a JSON body (ignored for GET) and returns the raw JSON
// response. The body is parsed whatever the status; a non-2xx status yields
// an *APIError carrying the body's detail. Transport failures are returned
// wrapped, so errors.Is still matches them.
func (c *Client) Request(ctx context.Context, method, path string, data any) (json.RawMessage, error) {
	var body io.Reader
	if method != http.MethodGet && data != nil {
		buf, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("encoding request body: %w", err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if id := observability.RequestIDFromContext(ctx); id != "" {
		req.Header.Set(observability.RequestIDHeader, id)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	ok := resp.StatusCode >= 200 && resp.StatusCode < 300
	if !ok {
		return nil, &APIError{Status: resp.StatusCode, Detail: detailOf(raw)}
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, nil
	}
	if !json.Valid(raw) {
		return nil, errors.New("decoding response body: invalid JSON")
	}
	return json.RawMessage(raw), nil
}

// detailOf extracts a string "detail" field, or "" when the body is not a
// JSON object or carries none.
func detailOf(raw []byte) string {
	var body struct {
		Detail any `json:"detail"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return ""
	}
	s, _ := body.Detail.(string)
	return s
}

// Response is a calculation response as the renderer sees it: an untyped
// object addressed by dotted paths.
type Response map[string]any

// Calculate posts req to /api/tools/{tool}/calculate.
func (c *Client) Calculate(ctx context.Context, tool string, req calculator.Request) (Response, error) {
	raw, err := c.Request(ctx, http.MethodPost, "/api/tools/"+tool+"/calculate", req)
	if err != nil {
		return nil, err
	}

	var out Response
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decoding calculation response: %w", err)
	}
	return out, nil
}
