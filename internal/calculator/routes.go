package calculator

import "github.com/go-chi/chi/v5"

// RegisterRoutes mounts the calculation endpoints under /api/tools.
func RegisterRoutes(r chi.Router, h *Handler) {
	r.Route("/api/tools", func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/{tool}/calculate", h.Calculate)
	})
}
