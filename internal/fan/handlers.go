package fan

import (
	"errors"
	"net/http"

	"engcalc/internal/handlers"
	"engcalc/internal/observability"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Handler serves the fan data endpoints.
type Handler struct {
	store *Store
}

func NewHandler(store *Store) *Handler {
	return &Handler{store: store}
}

// FanTypesResponse is the body of GET /api/fans.
type FanTypesResponse struct {
	FanTypes []string `json:"fan_types"`
}

// PointsResponse is the body of GET /api/fans/{type}/points.
type PointsResponse struct {
	FanType string             `json:"fan_type"`
	Points  []PerformancePoint `json:"points"`
}

// RegisterRoutes mounts the fan endpoints under /api/fans.
func RegisterRoutes(r chi.Router, h *Handler) {
	r.Route("/api/fans", func(r chi.Router) {
		r.Get("/", h.FanTypes)
		r.Get("/{type}/points", h.Points)
	})
}

// FanTypes handles GET /api/fans
func (h *Handler) FanTypes(w http.ResponseWriter, r *http.Request) {
	types, err := h.store.FanTypes(r.Context())
	if err != nil {
		observability.LoggerWithTrace(r.Context()).Error("listing fan types failed", zap.Error(err))
		handlers.WriteError(w, http.StatusInternalServerError, "获取风机型号失败")
		return
	}
	handlers.WriteJSON(w, http.StatusOK, FanTypesResponse{FanTypes: types})
}

// Points handles GET /api/fans/{type}/points
func (h *Handler) Points(w http.ResponseWriter, r *http.Request) {
	fanType := chi.URLParam(r, "type")

	points, err := h.store.Points(r.Context(), fanType)
	if errors.Is(err, ErrUnknownFanType) {
		handlers.WriteError(w, http.StatusNotFound, "未找到风机型号: "+fanType)
		return
	}
	if err != nil {
		observability.LoggerWithTrace(r.Context()).Error("loading fan points failed",
			zap.String("fan_type", fanType),
			zap.Error(err),
		)
		handlers.WriteError(w, http.StatusInternalServerError, "获取风机性能参数失败")
		return
	}
	handlers.WriteJSON(w, http.StatusOK, PointsResponse{FanType: fanType, Points: points})
}
