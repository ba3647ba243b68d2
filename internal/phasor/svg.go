package phasor

import (
	"fmt"
	"html/template"
	"math"
	"strings"
)

var labels = map[string]string{
	"U2": "U₂",
	"U1": "U₁",
	"I":  "I",
	"IR": "IR",
	"IX": "IX",
}

// RenderSVG draws the diagram as arrows with labels on dashed axes.
func RenderSVG(d Diagram, width, height int) template.HTML {
	if len(d.Vectors) == 0 {
		return template.HTML("")
	}
	o := d.Options.Origin

	var svg strings.Builder
	fmt.Fprintf(&svg, `<svg width="%d" height="%d" viewBox="0 0 %d %d" xmlns="http://www.w3.org/2000/svg" class="phasor-diagram">`,
		width, height, width, height)
	svg.WriteString(`<defs>`)
	for _, v := range d.Vectors {
		fmt.Fprintf(&svg, `<marker id="arrow-%s" markerWidth="10" markerHeight="7" refX="9" refY="3.5" orient="auto"><polygon points="0 0, 10 3.5, 0 7" fill="%s"/></marker>`,
			v.Name, v.Color)
	}
	svg.WriteString(`</defs>`)

	// Axes
	fmt.Fprintf(&svg, `<g stroke="#ccc" stroke-width="1" stroke-dasharray="3,3"><line x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f"/><line x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f"/></g>`,
		o.X-50, o.Y, o.X+d.Options.Budget+100, o.Y,
		o.X, o.Y-200, o.X, o.Y+50)

	// Projections of IR and IX
	svg.WriteString(`<g stroke-width="1.5" stroke-dasharray="5,5" opacity="0.6">`)
	for _, c := range d.Components {
		fmt.Fprintf(&svg, `<line x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f" stroke="%s"/>`,
			c.Start.X, c.Start.Y, c.End.X, c.End.Y, c.Color)
	}
	svg.WriteString(`</g>`)

	for _, v := range d.Vectors {
		fmt.Fprintf(&svg, `<line x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f" stroke="%s" stroke-width="2" marker-end="url(#arrow-%s)"/>`,
			v.Start.X, v.Start.Y, v.End.X, v.End.Y, v.Color, v.Name)
		lx, ly := labelPosition(v)
		fmt.Fprintf(&svg, `<text x="%.2f" y="%.2f" fill="%s" font-size="14" font-weight="bold" text-anchor="middle">%s</text>`,
			lx, ly, v.Color, template.HTMLEscapeString(labels[v.Name]))
	}

	fmt.Fprintf(&svg, `<text x="%.2f" y="%.2f" font-size="12" fill="#6c757d">φ = %.2f°</text>`,
		o.X+30, o.Y+20, d.Phi*180/math.Pi)
	svg.WriteString(`</svg>`)

	return template.HTML(svg.String())
}

// labelPosition puts rooted labels past the arrow tip and chained ones at
// the middle, offset along the normal.
func labelPosition(v Vector) (float64, float64) {
	dx, dy := v.End.X-v.Start.X, v.End.Y-v.Start.Y
	length := math.Hypot(dx, dy)
	if length == 0 {
		return v.End.X, v.End.Y - 8
	}
	nx, ny := -dy/length, dx/length

	switch v.Name {
	case "IR", "IX":
		return v.Start.X + dx/2 + nx*12, v.Start.Y + dy/2 + ny*12
	}
	return v.End.X + dx/length*14, v.End.Y + dy/length*14
}
