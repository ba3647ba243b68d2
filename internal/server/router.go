package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"engcalc/internal/calculator"
	"engcalc/internal/fan"
	"engcalc/internal/handlers"
	"engcalc/internal/observability"
	"engcalc/internal/web"
)

// Deps are the parts mounted by NewRouter. Fans and Pages are optional.
type Deps struct {
	Calculators *calculator.Registry
	Fans        *fan.Store
	Pages       *web.Server
}

func NewRouter(deps Deps) http.Handler {

	r := chi.NewRouter()

	r.Use(observability.RequestIDMiddleware)
	r.Use(observability.TracingMiddleware)
	r.Use(observability.LoggingMiddleware)

	r.Get("/health", handlers.Health)

	r.Handle("/metrics", observability.PrometheusHandler())

	calculator.RegisterRoutes(r, calculator.NewHandler(deps.Calculators))

	if deps.Fans != nil {
		fan.RegisterRoutes(r, fan.NewHandler(deps.Fans))
	}

	if deps.Pages != nil {
		web.RegisterRoutes(r, deps.Pages)
	}

	return r
}
