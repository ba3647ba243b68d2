package tool

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"engcalc/internal/apiclient"
	"engcalc/internal/calculator"
	"engcalc/internal/observability"
	"engcalc/internal/render"
	"engcalc/internal/validation"

	"go.uber.org/zap"
)

// Backend performs a calculation for a tool.
type Backend interface {
	Calculate(ctx context.Context, tool string, req calculator.Request) (map[string]any, error)
}

// BackendFunc adapts a function to Backend.
type BackendFunc func(ctx context.Context, tool string, req calculator.Request) (map[string]any, error)

func (f BackendFunc) Calculate(ctx context.Context, tool string, req calculator.Request) (map[string]any, error) {
	return f(ctx, tool, req)
}

// Remote sends calculations to the backend behind c.
func Remote(c *apiclient.Client) Backend {
	return BackendFunc(func(ctx context.Context, tool string, req calculator.Request) (map[string]any, error) {
		return c.Calculate(ctx, tool, req)
	})
}

// LocalBackend evaluates calculations without a network round trip.
type LocalBackend struct {
	Registry *calculator.Registry
}

func (l LocalBackend) Calculate(_ context.Context, tool string, req calculator.Request) (map[string]any, error) {
	calc, ok := l.Registry.Lookup(tool)
	if !ok {
		return nil, fmt.Errorf("unknown tool %q", tool)
	}
	resp, err := calc.Calculate(req.Scenario, req.Params)
	if err != nil {
		return nil, err
	}

	// Round-trip through JSON so local and remote responses look alike to
	// the renderer.
	data, err := json.Marshal(resp)
	if err != nil {
		return nil, fmt.Errorf("encoding local response: %w", err)
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("decoding local response: %w", err)
	}
	return out, nil
}

// ValidationError reports the first field that failed validation. Nothing
// was sent to the backend.
type ValidationError struct {
	Tool    string
	Tab     string
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// Submission is the outcome of one Submit.
type Submission struct {
	Tab      *Tab
	Seq      uint64
	Request  calculator.Request
	Response map[string]any
	Card     render.Card
	// Stale is set when a later submission on the same tab was already
	// rendered; the card was not stored.
	Stale bool
}

// Option configures a Driver.
type Option func(*Driver)

// WithLocal sets the backend used for tabs marked local.
func WithLocal(b Backend) Option {
	return func(d *Driver) { d.local = b }
}

// WithFormatters adds named formatters on top of the built-in ones.
func WithFormatters(f render.Formatters) Option {
	return func(d *Driver) {
		for name, fn := range f {
			d.formatters[name] = fn
		}
	}
}

// Driver runs the form pipeline of one tool: exactly one tab is active, and
// each tab keeps the card of its newest submission.
type Driver struct {
	cfg        *Config
	backend    Backend
	local      Backend
	formatters render.Formatters

	mu       sync.Mutex
	active   string
	issued   map[string]uint64
	rendered map[string]uint64
	latest   map[string]*Submission
}

// NewDriver returns a driver with the first tab active.
func NewDriver(cfg *Config, backend Backend, opts ...Option) *Driver {
	d := &Driver{
		cfg:        cfg,
		backend:    backend,
		formatters: render.BuiltinFormatters(),
		issued:     make(map[string]uint64),
		rendered:   make(map[string]uint64),
		latest:     make(map[string]*Submission),
	}
	if len(cfg.Tabs) > 0 {
		d.active = cfg.Tabs[0].ID
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *Driver) Config() *Config { return d.cfg }

// Activate makes id the only active tab.
func (d *Driver) Activate(id string) error {
	if _, ok := d.cfg.Tab(id); !ok {
		return fmt.Errorf("tool %s has no tab %q", d.cfg.ID, id)
	}
	d.mu.Lock()
	d.active = id
	d.mu.Unlock()
	return nil
}

func (d *Driver) Active() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.active
}

// Latest returns the newest rendered submission of a tab.
func (d *Driver) Latest(tabID string) (*Submission, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	s, ok := d.latest[tabID]
	return s, ok
}

// Submit runs the pipeline for tabID with the raw control values.
func (d *Driver) Submit(ctx context.Context, tabID string, raw map[string]string) (*Submission, error) {
	return d.SubmitParams(ctx, tabID, raw, nil)
}

// SubmitParams is Submit with additional request parameters that do not come
// from form controls, such as the fan performance point list.
func (d *Driver) SubmitParams(ctx context.Context, tabID string, raw map[string]string, extra calculator.Params) (*Submission, error) {
	logger := observability.LoggerWithTrace(ctx).With(
		zap.String("tool", d.cfg.ID),
		zap.String("tab", tabID),
	)

	tab, ok := d.cfg.Tab(tabID)
	if !ok {
		return nil, fmt.Errorf("tool %s has no tab %q", d.cfg.ID, tabID)
	}

	params, err := d.readFields(tab, raw)
	if err != nil {
		countSubmission(d.cfg.ID, tabID, outcomeInvalid)
		logger.Debug("submission rejected", zap.Error(err))
		return nil, err
	}
	for k, v := range extra {
		params[k] = v
	}

	d.mu.Lock()
	d.issued[tabID]++
	seq := d.issued[tabID]
	d.mu.Unlock()

	req := calculator.Request{Scenario: tab.Scenario, Params: params}
	backend := d.backend
	if tab.Local && d.local != nil {
		backend = d.local
	}

	resp, err := backend.Calculate(ctx, d.cfg.ID, req)
	if err != nil {
		countSubmission(d.cfg.ID, tabID, outcomeError)
		logger.Warn("calculation failed", zap.Uint64("seq", seq), zap.Error(err))
		return nil, err
	}

	sub := &Submission{
		Tab:      tab,
		Seq:      seq,
		Request:  req,
		Response: resp,
		Card:     render.RenderResultCard(tab.Result, resp, d.formatters),
	}

	d.mu.Lock()
	if seq > d.rendered[tabID] {
		d.rendered[tabID] = seq
		d.latest[tabID] = sub
	} else {
		sub.Stale = true
	}
	d.mu.Unlock()

	if sub.Stale {
		countSubmission(d.cfg.ID, tabID, outcomeStale)
		logger.Info("discarded stale response", zap.Uint64("seq", seq))
		return sub, nil
	}

	countSubmission(d.cfg.ID, tabID, outcomeOK)
	return sub, nil
}

// readFields turns raw control text into request parameters. Empty controls
// with a default take the default; other empty optional controls are left
// out of the request.
func (d *Driver) readFields(tab *Tab, raw map[string]string) (calculator.Params, error) {
	params := make(calculator.Params, len(tab.Fields))
	payload := make(map[string]any, len(tab.Fields))

	for _, f := range tab.Fields {
		text := raw[f.Name]
		if strings.TrimSpace(text) == "" && f.Default != nil {
			params[f.Name] = *f.Default
			payload[f.Name] = *f.Default
			continue
		}

		res := validation.ParseFieldValue(text, f)
		if !res.Valid {
			return nil, &ValidationError{Tool: d.cfg.ID, Tab: tab.ID, Field: f.Name, Message: res.Message}
		}
		if res.Value != nil {
			params[f.Name] = res.Value
			payload[f.Name] = res.Value
		}
	}

	if out := validation.Validate(tab.Fields, payload); !out.Valid {
		return nil, &ValidationError{Tool: d.cfg.ID, Tab: tab.ID, Message: out.Message}
	}
	return params, nil
}
