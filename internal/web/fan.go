package web

import (
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strconv"
	"strings"

	"engcalc/internal/charts"
	"engcalc/internal/fan"
	"engcalc/internal/observability"

	"go.uber.org/zap"
)

const (
	curveWidth  = 480
	curveHeight = 300
)

// fanView is the performance point editor of the curves tab.
type fanView struct {
	FanTypes []string
	FanType  string
	Rows     []pointRow
}

// pointRow is one editor row. Index is the row's position in the rendered
// editor, which is also its position in the posted form.
type pointRow struct {
	Phi, PsiP, Eta string
	Filled         bool
	Index          int
}

// pointsError marks a problem with the edited point list.
type pointsError struct {
	err error
}

func (e *pointsError) Error() string { return e.err.Error() }
func (e *pointsError) Unwrap() error { return e.err }

func (s *Server) fanTypes(r *http.Request) []string {
	if s.fans == nil {
		return nil
	}
	types, err := s.fans.FanTypes(r.Context())
	if err != nil {
		observability.LoggerWithTrace(r.Context()).Warn("listing fan types failed", zap.Error(err))
		return nil
	}
	return types
}

// defaultFanView starts the editor with the built-in starting points.
func (s *Server) defaultFanView(r *http.Request) *fanView {
	v := &fanView{FanTypes: s.fanTypes(r)}
	if len(v.FanTypes) > 0 {
		v.FanType = v.FanTypes[0]
	}
	v.Rows = rowsFromPoints(fan.NewPoints(fan.DefaultPoints()...))
	return v
}

// fanForm reads the point editor of a curves submission. done is set when
// the request was an editor action (loading a preset or removing a row)
// rather than a calculation.
func (s *Server) fanForm(r *http.Request) (view *fanView, points *fan.Points, done bool, err error) {
	view = &fanView{FanTypes: s.fanTypes(r), FanType: r.PostForm.Get("fan_type")}
	action := r.PostForm.Get("action")

	phis, psis, etas := r.PostForm["phi"], r.PostForm["psi_p"], r.PostForm["eta"]

	if action == "load" {
		loaded, err := s.presetPoints(r, view.FanType)
		if err != nil {
			view.Rows = rawRows(phis, psis, etas)
			return view, nil, false, err
		}
		view.Rows = rowsFromPoints(loaded)
		return view, loaded, true, nil
	}

	points, positions, err := parseRows(phis, psis, etas)
	if err != nil {
		view.Rows = rawRows(phis, psis, etas)
		return view, nil, false, err
	}

	if index, ok := strings.CutPrefix(action, "remove:"); ok {
		i, convErr := strconv.Atoi(index)
		if convErr == nil {
			convErr = removeRow(points, positions, i, len(phis))
		}
		if convErr != nil {
			view.Rows = rowsFromPoints(points)
			return view, nil, false, fmt.Errorf("无法删除性能点: %s", index)
		}
		view.Rows = rowsFromPoints(points)
		return view, points, true, nil
	}

	view.Rows = rowsFromPoints(points)
	return view, points, false, nil
}

// removeRow drops the point parsed from posted row i. A blank row holds no
// point, so removing it changes nothing.
func removeRow(points *fan.Points, positions []int, i, rows int) error {
	if i < 0 || i >= rows {
		return fmt.Errorf("no editor row %d", i)
	}
	for j, pos := range positions {
		if pos == i {
			return points.Remove(j)
		}
	}
	return nil
}

func (s *Server) presetPoints(r *http.Request, fanType string) (*fan.Points, error) {
	if s.fans == nil {
		return fan.NewPoints(fan.DefaultPoints()...), nil
	}
	stored, err := s.fans.Points(r.Context(), fanType)
	if errors.Is(err, fan.ErrUnknownFanType) {
		return nil, fmt.Errorf("未找到风机型号: %s", fanType)
	}
	if err != nil {
		observability.LoggerWithTrace(r.Context()).Error("loading fan preset failed",
			zap.String("fan_type", fanType),
			zap.Error(err),
		)
		return nil, errors.New("载入风机预设失败")
	}
	return fan.NewPoints(stored...), nil
}

// parseRows builds the point list from the editor columns. Rows left
// completely blank are ignored. positions[j] is the posted row the j-th
// point came from.
func parseRows(phis, psis, etas []string) (*fan.Points, []int, error) {
	points := fan.NewPoints()
	var positions []int
	for i := range phis {
		phi, psi, eta := phis[i], column(psis, i), column(etas, i)
		if blank(phi, psi, eta) {
			continue
		}
		p, err := fan.ParsePoint(phi, psi, eta)
		if err != nil {
			return nil, nil, fmt.Errorf("第%d行: %w", i+1, err)
		}
		points.Add(p)
		positions = append(positions, i)
	}
	return points, positions, nil
}

func column(values []string, i int) string {
	if i < len(values) {
		return values[i]
	}
	return ""
}

func blank(values ...string) bool {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// rowsFromPoints lists the points followed by one empty row for adding.
func rowsFromPoints(points *fan.Points) []pointRow {
	all := points.All()
	rows := make([]pointRow, 0, len(all)+1)
	for i, p := range all {
		rows = append(rows, pointRow{
			Phi:    strconv.FormatFloat(p.Phi, 'f', -1, 64),
			PsiP:   strconv.FormatFloat(p.PsiP, 'f', -1, 64),
			Eta:    strconv.FormatFloat(p.Eta, 'f', -1, 64),
			Filled: true,
			Index:  i,
		})
	}
	return append(rows, pointRow{})
}

// rawRows echoes the editor as typed, for showing it again next to an error.
func rawRows(phis, psis, etas []string) []pointRow {
	rows := make([]pointRow, 0, len(phis)+1)
	for i := range phis {
		phi, psi, eta := phis[i], column(psis, i), column(etas, i)
		if blank(phi, psi, eta) {
			continue
		}
		rows = append(rows, pointRow{Phi: phi, PsiP: psi, Eta: eta})
	}
	return append(rows, pointRow{})
}

// performanceCurves plots the computed table of a fan performance response
// against flow rate.
func performanceCurves(response map[string]any) []template.HTML {
	rows, _ := response["result"].([]any)

	curves := []struct {
		key, title, label, color string
	}{
		{"pressure", "压力-流量曲线", "压力 (Pa)", "#3498db"},
		{"eta", "效率-流量曲线", "效率", "#27ae60"},
		{"internal_power", "内功率-流量曲线", "内功率 (kW)", "#e67e22"},
	}

	var out []template.HTML
	for _, c := range curves {
		data := charts.CurveChartData{
			Title:  c.title,
			XLabel: "流量 (m³/h)",
			YLabel: c.label,
			Color:  c.color,
		}
		for _, item := range rows {
			row, ok := item.(map[string]any)
			if !ok {
				continue
			}
			x, okX := row["flow_rate"].(float64)
			y, okY := row[c.key].(float64)
			if okX && okY {
				data.Points = append(data.Points, charts.XY{X: x, Y: y})
			}
		}
		if chart := charts.GenerateCurveChart(data, curveWidth, curveHeight); chart != "" {
			out = append(out, chart)
		}
	}
	return out
}
