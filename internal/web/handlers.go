package web

import (
	"html/template"
	"net/http"
	"strconv"
	"strings"

	"engcalc/internal/calculator"
	"engcalc/internal/observability"
	"engcalc/internal/phasor"
	"engcalc/internal/render"
	"engcalc/internal/tool"
	"engcalc/internal/validation"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const (
	phasorWidth  = 600
	phasorHeight = 450
)

type fieldView struct {
	validation.FieldSpec
	ID      string
	Value   string
	MinText string
	MaxText string
}

type tabView struct {
	ID     string
	Title  string
	Active bool
	Fields []fieldView
}

type indexPage struct {
	Tools  []*tool.Config
	Notice *render.ErrorNotice
}

type toolPage struct {
	Tool       *tool.Config
	Tabs       []tabView
	Submission *tool.Submission
	Notice     *render.ErrorNotice
	Phasor     template.HTML
	Curves     []template.HTML
	Fan        *fanView
}

// Index handles GET /
func (s *Server) Index(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, "index", http.StatusOK, indexPage{Tools: s.tools.All()})
}

// ToolPage handles GET /tools/{tool}?tab=
func (s *Server) ToolPage(w http.ResponseWriter, r *http.Request) {
	cfg, ok := s.tools.Lookup(chi.URLParam(r, "tool"))
	if !ok {
		http.NotFound(w, r)
		return
	}

	d := s.driver(cfg)
	if tab := r.URL.Query().Get("tab"); tab != "" {
		if err := d.Activate(tab); err != nil {
			http.NotFound(w, r)
			return
		}
	}

	page := toolPage{Tool: cfg, Tabs: tabViews(cfg, d.Active(), nil)}
	if active, _ := cfg.Tab(d.Active()); active.Diagram == tool.DiagramCurves {
		page.Fan = s.defaultFanView(r)
	}
	s.render(w, r, "tool", http.StatusOK, page)
}

// Submit handles POST /tools/{tool}/{tab}
//
// The form is validated and sent to the backend; the page comes back with
// either the result card or the error modal, keeping what the user typed.
func (s *Server) Submit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := observability.LoggerWithTrace(ctx)

	cfg, ok := s.tools.Lookup(chi.URLParam(r, "tool"))
	if !ok {
		http.NotFound(w, r)
		return
	}
	tabID := chi.URLParam(r, "tab")
	d := s.driver(cfg)
	if err := d.Activate(tabID); err != nil {
		http.NotFound(w, r)
		return
	}
	tab, _ := cfg.Tab(tabID)

	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	raw := make(map[string]string, len(tab.Fields))
	for _, f := range tab.Fields {
		raw[f.Name] = r.PostForm.Get(f.Name)
	}

	page := toolPage{Tool: cfg, Tabs: tabViews(cfg, tabID, raw)}
	status := http.StatusOK

	var extra calculator.Params
	if tab.Diagram == tool.DiagramCurves {
		view, points, done, err := s.fanForm(r)
		page.Fan = view
		if done {
			s.render(w, r, "tool", status, page)
			return
		}
		if err == nil {
			err = points.Valid()
		}
		if err != nil {
			page.Notice, status = noticeFor(&pointsError{err: err})
			s.render(w, r, "tool", status, page)
			return
		}
		extra = calculator.Params{"performance_points": points.Params()}
	}

	sub, err := d.SubmitParams(ctx, tabID, raw, extra)
	if err != nil {
		page.Notice, status = noticeFor(err)
		if status >= http.StatusInternalServerError {
			logger.Warn("tool submission failed",
				zap.String("tool", cfg.ID),
				zap.String("tab", tabID),
				zap.Error(err),
			)
		}
		s.render(w, r, "tool", status, page)
		return
	}

	page.Submission = sub
	switch tab.Diagram {
	case tool.DiagramPhasor:
		if diagram, ok := phasor.Compute(phasor.InputFromParams(sub.Request.Params), phasor.DefaultOptions()); ok {
			page.Phasor = phasor.RenderSVG(diagram, phasorWidth, phasorHeight)
		}
	case tool.DiagramCurves:
		page.Curves = performanceCurves(sub.Response)
	}

	s.render(w, r, "tool", status, page)
}

// tabViews prepares every tab's controls. The active tab shows raw when
// given, the others their defaults.
func tabViews(cfg *tool.Config, active string, raw map[string]string) []tabView {
	views := make([]tabView, 0, len(cfg.Tabs))
	for _, tab := range cfg.Tabs {
		v := tabView{ID: tab.ID, Title: tab.Title, Active: tab.ID == active}
		for _, f := range tab.Fields {
			fv := fieldView{
				FieldSpec: f,
				ID:        tab.ID + "-" + f.Name,
				MinText:   boundText(f.Min),
				MaxText:   boundText(f.Max),
			}
			if v.Active && raw != nil {
				fv.Value = strings.TrimSpace(raw[f.Name])
			} else if f.Default != nil {
				fv.Value = strconv.FormatFloat(*f.Default, 'f', -1, 64)
			}
			v.Fields = append(v.Fields, fv)
		}
		views = append(views, v)
	}
	return views
}

func boundText(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
