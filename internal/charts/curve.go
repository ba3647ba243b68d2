// Package charts renders small server-side SVG charts.
package charts

import (
	"fmt"
	"html/template"
	"math"
	"sort"
	"strings"
)

// XY is one point of a curve.
type XY struct {
	X, Y float64
}

// CurveChartData describes a single curve plotted against a numeric X axis.
type CurveChartData struct {
	Title  string
	XLabel string
	YLabel string
	Color  string
	Points []XY
}

const (
	marginTop    = 36
	marginRight  = 24
	marginBottom = 48
	marginLeft   = 64
)

// GenerateCurveChart draws the points sorted by X as a polyline with point
// markers, a light grid and min/max tick labels. Fewer than two points
// render nothing.
func GenerateCurveChart(data CurveChartData, width, height int) template.HTML {
	if len(data.Points) < 2 {
		return template.HTML("")
	}

	points := make([]XY, len(data.Points))
	copy(points, data.Points)
	sort.Slice(points, func(i, j int) bool { return points[i].X < points[j].X })

	color := data.Color
	if color == "" {
		color = "#007bff"
	}

	plotW := float64(width - marginLeft - marginRight)
	plotH := float64(height - marginTop - marginBottom)

	minX, maxX := findRange(points, func(p XY) float64 { return p.X })
	minY, maxY := findRange(points, func(p XY) float64 { return p.Y })
	pad := (maxY - minY) * 0.1
	minY -= pad
	maxY += pad

	project := func(p XY) (float64, float64) {
		x := float64(marginLeft) + (p.X-minX)/(maxX-minX)*plotW
		y := float64(marginTop) + plotH - (p.Y-minY)/(maxY-minY)*plotH
		return x, y
	}

	var svg strings.Builder
	fmt.Fprintf(&svg, `<svg width="%d" height="%d" viewBox="0 0 %d %d" xmlns="http://www.w3.org/2000/svg">`, width, height, width, height)
	fmt.Fprintf(&svg, `<rect width="%d" height="%d" fill="#ffffff"/>`, width, height)
	fmt.Fprintf(&svg, `<text x="%d" y="22" text-anchor="middle" font-size="14" font-weight="bold" fill="#2d3748">%s</text>`,
		width/2, template.HTMLEscapeString(data.Title))

	svg.WriteString(generateGrid(plotW, plotH))

	var line strings.Builder
	for i, p := range points {
		x, y := project(p)
		if i > 0 {
			line.WriteString(" ")
		}
		fmt.Fprintf(&line, "%.2f,%.2f", x, y)
	}
	fmt.Fprintf(&svg, `<polyline fill="none" stroke="%s" stroke-width="2" points="%s"/>`, color, line.String())
	for _, p := range points {
		x, y := project(p)
		fmt.Fprintf(&svg, `<circle cx="%.2f" cy="%.2f" r="3" fill="%s"/>`, x, y, color)
	}

	// Tick labels
	bottom := marginTop + int(plotH)
	fmt.Fprintf(&svg, `<g font-size="11" fill="#6c757d">`)
	fmt.Fprintf(&svg, `<text x="%d" y="%d" text-anchor="end">%s</text>`, marginLeft-6, bottom, formatTick(minY))
	fmt.Fprintf(&svg, `<text x="%d" y="%d" text-anchor="end">%s</text>`, marginLeft-6, marginTop+4, formatTick(maxY))
	fmt.Fprintf(&svg, `<text x="%d" y="%d" text-anchor="middle">%s</text>`, marginLeft, bottom+16, formatTick(minX))
	fmt.Fprintf(&svg, `<text x="%d" y="%d" text-anchor="middle">%s</text>`, width-marginRight, bottom+16, formatTick(maxX))
	fmt.Fprintf(&svg, `<text x="%d" y="%d" text-anchor="middle">%s</text>`,
		marginLeft+int(plotW)/2, height-10, template.HTMLEscapeString(data.XLabel))
	fmt.Fprintf(&svg, `<text x="14" y="%d" text-anchor="middle" transform="rotate(-90 14 %d)">%s</text>`,
		marginTop+int(plotH)/2, marginTop+int(plotH)/2, template.HTMLEscapeString(data.YLabel))
	svg.WriteString(`</g>`)

	fmt.Fprintf(&svg, `<rect x="%d" y="%d" width="%.0f" height="%.0f" fill="none" stroke="#dee2e6" stroke-width="1"/>`,
		marginLeft, marginTop, plotW, plotH)
	svg.WriteString(`</svg>`)

	return template.HTML(svg.String())
}

func generateGrid(plotW, plotH float64) string {
	var svg strings.Builder
	svg.WriteString(`<g stroke="#f0f0f0" stroke-width="1">`)
	for i := 0; i <= 4; i++ {
		y := float64(marginTop) + plotH*float64(i)/4
		fmt.Fprintf(&svg, `<line x1="%d" y1="%.2f" x2="%.2f" y2="%.2f"/>`, marginLeft, y, float64(marginLeft)+plotW, y)
	}
	svg.WriteString(`</g>`)
	return svg.String()
}

// findRange returns the min and max of the selected coordinate, widened to a
// unit span when all values coincide.
func findRange(points []XY, coord func(XY) float64) (float64, float64) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, p := range points {
		v := coord(p)
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if lo == hi {
		hi = lo + 1
	}
	return lo, hi
}

func formatTick(v float64) string {
	switch a := math.Abs(v); {
	case a >= 1000:
		return fmt.Sprintf("%.0f", v)
	case a >= 10:
		return fmt.Sprintf("%.1f", v)
	}
	return fmt.Sprintf("%.3f", v)
}
