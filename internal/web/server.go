// Package web serves the browser pages of the calculation tools: one page
// per tool with a tab per scenario, a result card and the error modal.
package web

import (
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"

	"engcalc/internal/apiclient"
	"engcalc/internal/calculator"
	"engcalc/internal/fan"
	"engcalc/internal/observability"
	"engcalc/internal/render"
	"engcalc/internal/tool"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Deps are the collaborators of the page server. Local and Fans are
// optional.
type Deps struct {
	Tools   *tool.Registry
	Backend tool.Backend
	Local   tool.Backend
	Fans    *fan.Store
}

// Server renders the tool pages.
type Server struct {
	tools     *tool.Registry
	backend   tool.Backend
	local     tool.Backend
	fans      *fan.Store
	static    fs.FS
	templates map[string]*template.Template
}

func New(deps Deps) (*Server, error) {
	if deps.Tools == nil || deps.Backend == nil {
		return nil, errors.New("web: tools and backend are required")
	}

	templates, err := parseTemplates("index", "tool")
	if err != nil {
		return nil, err
	}
	static, err := StaticFS()
	if err != nil {
		return nil, fmt.Errorf("opening static files: %w", err)
	}

	return &Server{
		tools:     deps.Tools,
		backend:   deps.Backend,
		local:     deps.Local,
		fans:      deps.Fans,
		static:    static,
		templates: templates,
	}, nil
}

// RegisterRoutes mounts the pages and their static assets.
func RegisterRoutes(r chi.Router, s *Server) {
	r.Get("/", s.Index)
	r.Get("/tools/{tool}", s.ToolPage)
	r.Post("/tools/{tool}/{tab}", s.Submit)
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(s.static))))
}

func (s *Server) driver(cfg *tool.Config) *tool.Driver {
	var opts []tool.Option
	if s.local != nil {
		opts = append(opts, tool.WithLocal(s.local))
	}
	return tool.NewDriver(cfg, s.backend, opts...)
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, page string, status int, data any) {
	tmpl, ok := s.templates[page]
	if !ok {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := tmpl.ExecuteTemplate(w, "base", data); err != nil {
		observability.LoggerWithTrace(r.Context()).Error("rendering page failed",
			zap.String("page", page),
			zap.Error(err),
		)
	}
}

// noticeFor turns a submission failure into the modal shown to the user and
// the status of the page carrying it.
func noticeFor(err error) (*render.ErrorNotice, int) {
	var validationErr *tool.ValidationError
	var apiErr *apiclient.APIError
	var calcErr *calculator.Error
	var pointsErr *pointsError

	switch {
	case errors.As(err, &validationErr):
		return render.NewErrorNotice(validationErr.Message), http.StatusUnprocessableEntity
	case errors.As(err, &pointsErr):
		return render.NewErrorNotice(pointsErr.Error()), http.StatusUnprocessableEntity
	case errors.As(err, &apiErr):
		if apiErr.Status >= 400 && apiErr.Status < 500 {
			return render.NewErrorNotice(apiErr.Error()), http.StatusUnprocessableEntity
		}
		return render.NewErrorNotice(apiErr.Error()), http.StatusBadGateway
	case errors.As(err, &calcErr):
		return render.NewErrorNotice(calcErr.Msg), http.StatusUnprocessableEntity
	}
	return render.NewErrorNotice("请求失败，请检查网络连接"), http.StatusBadGateway
}
