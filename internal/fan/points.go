// Package fan manages centrifugal fan performance points: the editable list
// a form works on and the preset points stored per fan type.
package fan

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// PerformancePoint is one dimensionless operating point of a fan curve.
type PerformancePoint struct {
	Phi  float64 `json:"phi"`
	PsiP float64 `json:"psi_p"`
	Eta  float64 `json:"eta"`
}

// Validate checks that the point is usable in a performance calculation.
func (p PerformancePoint) Validate() error {
	for _, v := range []float64{p.Phi, p.PsiP, p.Eta} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return errors.New("性能点参数必须是有效数字")
		}
	}
	if p.Eta <= 0 || p.Eta > 1 {
		return fmt.Errorf("效率η应在0-1之间，当前为 %g", p.Eta)
	}
	return nil
}

// ParsePoint reads a point from the text of its three controls. All three
// must be present.
func ParsePoint(phi, psiP, eta string) (PerformancePoint, error) {
	values := make([]float64, 3)
	for i, raw := range []string{phi, psiP, eta} {
		text := strings.TrimSpace(raw)
		if text == "" {
			return PerformancePoint{}, errors.New("性能点的φ、ψp和η都必须填写")
		}
		v, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return PerformancePoint{}, fmt.Errorf("性能点参数必须是数字: %q", text)
		}
		values[i] = v
	}
	p := PerformancePoint{Phi: values[0], PsiP: values[1], Eta: values[2]}
	return p, p.Validate()
}

// DefaultPoints is the starting list of a blank performance form.
func DefaultPoints() []PerformancePoint {
	return []PerformancePoint{
		{PsiP: 0.43, Phi: 0.2231, Eta: 0.88},
		{PsiP: 0.409, Phi: 0.238, Eta: 0.89},
		{PsiP: 0.386, Phi: 0.2545, Eta: 0.87},
		{PsiP: 0.3598, Phi: 0.271, Eta: 0.83},
	}
}

// Points is an ordered, editable list of performance points. Order is
// display order only.
type Points struct {
	items []PerformancePoint
}

func NewPoints(initial ...PerformancePoint) *Points {
	p := &Points{}
	p.items = append(p.items, initial...)
	return p
}

func (p *Points) Add(pt PerformancePoint) {
	p.items = append(p.items, pt)
}

// Remove deletes the point at index i.
func (p *Points) Remove(i int) error {
	if i < 0 || i >= len(p.items) {
		return fmt.Errorf("no performance point at index %d", i)
	}
	p.items = append(p.items[:i], p.items[i+1:]...)
	return nil
}

func (p *Points) Clear() {
	p.items = nil
}

func (p *Points) Len() int {
	return len(p.items)
}

// All returns a copy of the points.
func (p *Points) All() []PerformancePoint {
	out := make([]PerformancePoint, len(p.items))
	copy(out, p.items)
	return out
}

// Valid reports the first problem that keeps the list from being sent.
func (p *Points) Valid() error {
	if len(p.items) == 0 {
		return errors.New("请至少添加一个性能点")
	}
	for i, pt := range p.items {
		if err := pt.Validate(); err != nil {
			return fmt.Errorf("第%d个性能点: %w", i+1, err)
		}
	}
	return nil
}

// Params encodes the list the way the performance calculation expects its
// performance_points parameter.
func (p *Points) Params() []any {
	out := make([]any, 0, len(p.items))
	for _, pt := range p.items {
		out = append(out, map[string]any{"phi": pt.Phi, "psi_p": pt.PsiP, "eta": pt.Eta})
	}
	return out
}
