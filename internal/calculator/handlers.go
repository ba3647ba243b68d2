package calculator

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"engcalc/internal/handlers"
	"engcalc/internal/observability"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// tracer is the calculator's dedicated OpenTelemetry tracer.
var tracer = otel.Tracer("calculator")

// Handler serves the calculation endpoints of a Registry.
type Handler struct {
	registry *Registry
}

func NewHandler(registry *Registry) *Handler {
	return &Handler{registry: registry}
}

// ToolInfo describes one tool in the GET /api/tools listing.
type ToolInfo struct {
	ID        string   `json:"id"`
	Scenarios []string `json:"scenarios"`
}

// List handles GET /api/tools
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	tools := make([]ToolInfo, 0)
	for _, id := range h.registry.Tools() {
		c, _ := h.registry.Lookup(id)
		tools = append(tools, ToolInfo{ID: id, Scenarios: c.Scenarios()})
	}
	handlers.WriteJSON(w, http.StatusOK, tools)
}

// Calculate handles POST /api/tools/{tool}/calculate
//
// Every calculation gets its own child span carrying the tool and scenario,
// is timed into the duration histogram, and logs a trace-correlated summary.
// Business-rule failures answer 400 with the calculator's message as detail.
func (h *Handler) Calculate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := observability.LoggerWithTrace(ctx)
	requestID := observability.RequestIDFromContext(ctx)
	tool := chi.URLParam(r, "tool")

	ctx, span := tracer.Start(ctx, fmt.Sprintf("calculator.%s", tool),
		trace.WithAttributes(
			attribute.String("calculator.tool", tool),
			attribute.String("request.id", requestID),
		),
	)
	defer span.End()

	calc, ok := h.registry.Lookup(tool)
	if !ok {
		observability.RecordError(ctx, span, logger, errorCounter, tool, "未知的工具: "+tool, fmt.Errorf("unknown tool %q", tool), http.StatusNotFound, w)
		return
	}

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		observability.RecordError(ctx, span, logger, errorCounter, tool, "请求体格式错误", err, http.StatusBadRequest, w)
		return
	}
	if req.Scenario == "" {
		observability.RecordError(ctx, span, logger, errorCounter, tool, "计算场景不能为空", errors.New("missing scenario"), http.StatusBadRequest, w)
		return
	}
	span.SetAttributes(attribute.String("calculator.scenario", req.Scenario))

	start := time.Now()
	resp, err := calc.Calculate(req.Scenario, req.Params)
	elapsed := float64(time.Since(start).Microseconds()) / 1000.0 // ms

	if err != nil {
		var calcErr *Error
		if errors.As(err, &calcErr) {
			observability.RecordError(ctx, span, logger, errorCounter, tool, calcErr.Msg, err, http.StatusBadRequest, w)
			return
		}
		observability.RecordError(ctx, span, logger, errorCounter, tool, "计算错误: "+err.Error(), err, http.StatusInternalServerError, w)
		return
	}

	attrs := metric.WithAttributes(
		attribute.String("tool", tool),
		attribute.String("scenario", req.Scenario),
	)
	opsCounter.Add(ctx, 1, attrs)
	opsHistogram.Record(ctx, elapsed, attrs)
	if v, ok := resp.Result.(float64); ok {
		resultGauge.Record(ctx, v, attrs)
		span.SetAttributes(attribute.Float64("calculator.result", v))
	}

	span.AddEvent("computation.complete", trace.WithAttributes(
		attribute.String("scenario_name", resp.ScenarioName),
		attribute.Float64("duration_ms", elapsed),
	))
	span.SetStatus(codes.Ok, "")

	logger.Info("calculation completed",
		zap.String("tool", tool),
		zap.String("scenario", req.Scenario),
		zap.Any("result", resp.Result),
		zap.String("unit", resp.Unit),
		zap.String("request_id", requestID),
		zap.Float64("duration_ms", elapsed),
	)

	handlers.WriteJSON(w, http.StatusOK, resp)
}
