// Package phasor computes the voltage-drop phasor diagram of a single-phase
// line feeding an end load: receiving voltage U2, load current I, the
// resistive and reactive drops IR and IX, and the sending voltage U1.
package phasor

import (
	"math"

	"engcalc/internal/observability"

	"go.uber.org/zap"
)

// DefaultVoltage is the receiving-end voltage used when the current branch
// is given no voltage.
const DefaultVoltage = 220.0

// Input holds the circuit parameters. Nil means not provided. The power
// branch is used when power, voltage and either reactive power or cos φ are
// all set, matching the voltage-loss calculation; otherwise the current
// branch. Power is in kW and ReactivePower in kvar.
type Input struct {
	Current       *float64
	Power         *float64
	Resistance    *float64
	Reactance     *float64
	CosPhi        *float64
	ReactivePower *float64
	Voltage       *float64
}

// InputFromParams picks the diagram inputs out of a request's parameters.
func InputFromParams(p map[string]any) Input {
	return Input{
		Current:       number(p, "current"),
		Power:         number(p, "power"),
		Resistance:    number(p, "resistance"),
		Reactance:     number(p, "reactance"),
		CosPhi:        number(p, "cos_phi"),
		ReactivePower: number(p, "reactive_power"),
		Voltage:       number(p, "voltage"),
	}
}

func number(p map[string]any, key string) *float64 {
	switch v := p[key].(type) {
	case float64:
		return &v
	case int:
		f := float64(v)
		return &f
	}
	return nil
}

// Options controls the screen mapping.
type Options struct {
	// Origin is where all rooted vectors start, in SVG coordinates.
	Origin Point
	// Budget is the pixel length of the longest drawn vector.
	Budget float64
	// CurrentGain converts amperes to the volts-equivalent length the
	// current arrow is drawn at.
	CurrentGain float64
}

func DefaultOptions() Options {
	return Options{Origin: Point{X: 100, Y: 350}, Budget: 400, CurrentGain: 0.5}
}

// Point is an SVG coordinate; Y grows downwards.
type Point struct {
	X, Y float64
}

// Vector is one drawn arrow.
type Vector struct {
	Name      string
	Magnitude float64
	Start     Point
	End       Point
	Color     string
}

// Length is the on-screen length of the arrow.
func (v Vector) Length() float64 {
	return math.Hypot(v.End.X-v.Start.X, v.End.Y-v.Start.Y)
}

// Diagram is the computed phasor geometry.
type Diagram struct {
	U2, I, IR, IX, U1 float64
	CosPhi, SinPhi    float64
	// Phi is the lag of I behind U2, in radians.
	Phi      float64
	U1x, U1y float64
	Scale    float64

	// Vectors holds U2, I, IR, IX and U1 in drawing order.
	Vectors []Vector
	// Components are the dashed projections of IR and IX on the U2 axis
	// and its normal.
	Components []Vector

	Options Options
}

// Vector returns the arrow with the given name.
func (d Diagram) Vector(name string) (Vector, bool) {
	for _, v := range d.Vectors {
		if v.Name == name {
			return v, true
		}
	}
	return Vector{}, false
}

// Compute derives the diagram. It reports false, after a debug log, when a
// required quantity is missing or not a finite value in range; the diagram
// is decoration and never turns into a user-facing error.
func Compute(in Input, opts Options) (Diagram, bool) {
	logger := observability.Logger

	var (
		d              Diagram
		current, volts float64
		cosPhi         float64
	)

	powerComplete := in.Power != nil && in.Voltage != nil && (in.ReactivePower != nil || in.CosPhi != nil)

	if in.Current != nil && !powerComplete {
		current = *in.Current
		if in.CosPhi == nil {
			logger.Debug("phasor diagram skipped", zap.String("reason", "cos_phi missing"))
			return Diagram{}, false
		}
		cosPhi = *in.CosPhi
		volts = DefaultVoltage
		if in.Voltage != nil {
			volts = *in.Voltage
		}
	} else {
		if in.Power == nil || in.Voltage == nil {
			logger.Debug("phasor diagram skipped", zap.String("reason", "power or voltage missing"))
			return Diagram{}, false
		}
		p := *in.Power * 1000
		switch {
		case in.ReactivePower != nil:
			q := *in.ReactivePower * 1000
			cosPhi = p / math.Hypot(p, q)
		case in.CosPhi != nil:
			cosPhi = *in.CosPhi
		default:
			logger.Debug("phasor diagram skipped", zap.String("reason", "neither cos_phi nor reactive_power"))
			return Diagram{}, false
		}
		volts = *in.Voltage
		current = p / (volts * cosPhi)
	}

	if in.Resistance == nil || in.Reactance == nil {
		logger.Debug("phasor diagram skipped", zap.String("reason", "line impedance missing"))
		return Diagram{}, false
	}
	r, x := *in.Resistance, *in.Reactance

	if !finite(current, volts, cosPhi, r, x) || current <= 0 || volts <= 0 || cosPhi <= 0 || cosPhi > 1 || r < 0 {
		logger.Debug("phasor diagram skipped",
			zap.String("reason", "value out of range"),
			zap.Float64("current", current),
			zap.Float64("voltage", volts),
			zap.Float64("cos_phi", cosPhi),
			zap.Float64("resistance", r),
			zap.Float64("reactance", x),
		)
		return Diagram{}, false
	}

	d.U2 = volts
	d.I = current
	d.CosPhi = cosPhi
	d.SinPhi = math.Sqrt(1 - cosPhi*cosPhi)
	d.Phi = math.Acos(cosPhi)
	d.IR = current * r
	d.IX = current * x
	d.U1x = d.U2 + d.IR*d.CosPhi + d.IX*d.SinPhi
	d.U1y = d.IX*d.CosPhi - d.IR*d.SinPhi
	d.U1 = math.Hypot(d.U1x, d.U1y)
	d.Options = opts

	d.layout()
	return d, true
}

func finite(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// layout maps the magnitudes to screen vectors. I and IR point at angle φ
// below the U2 axis, IX is rotated a further −90°, and U1 closes the chain
// from the origin to the tip of IX.
func (d *Diagram) layout() {
	o := d.Options
	currentLen := d.I * o.CurrentGain

	longest := math.Max(math.Max(d.U2, d.U1), math.Max(math.Max(d.IR, math.Abs(d.IX)), currentLen))
	d.Scale = o.Budget / longest

	along := func(from Point, length, angle float64) Point {
		return Point{X: from.X + length*math.Cos(angle), Y: from.Y + length*math.Sin(angle)}
	}

	u2End := Point{X: o.Origin.X + d.U2*d.Scale, Y: o.Origin.Y}
	iEnd := along(o.Origin, currentLen*d.Scale, d.Phi)
	irEnd := along(u2End, d.IR*d.Scale, d.Phi)
	ixEnd := along(irEnd, d.IX*d.Scale, d.Phi-math.Pi/2)

	d.Vectors = []Vector{
		{Name: "U2", Magnitude: d.U2, Start: o.Origin, End: u2End, Color: "#3498db"},
		{Name: "I", Magnitude: d.I, Start: o.Origin, End: iEnd, Color: "#e74c3c"},
		{Name: "IR", Magnitude: d.IR, Start: u2End, End: irEnd, Color: "#27ae60"},
		{Name: "IX", Magnitude: d.IX, Start: irEnd, End: ixEnd, Color: "#f39c12"},
		{Name: "U1", Magnitude: d.U1, Start: o.Origin, End: ixEnd, Color: "#9b59b6"},
	}

	irCos := Point{X: u2End.X + d.IR*d.CosPhi*d.Scale, Y: u2End.Y}
	ixSin := Point{X: irCos.X + d.IX*d.SinPhi*d.Scale, Y: u2End.Y}
	d.Components = []Vector{
		{Name: "IRcosφ", Magnitude: d.IR * d.CosPhi, Start: u2End, End: irCos, Color: "#27ae60"},
		{Name: "IRsinφ", Magnitude: d.IR * d.SinPhi, Start: irCos, End: Point{X: irCos.X, Y: irCos.Y + d.IR*d.SinPhi*d.Scale}, Color: "#27ae60"},
		{Name: "IXsinφ", Magnitude: d.IX * d.SinPhi, Start: irCos, End: ixSin, Color: "#f39c12"},
		{Name: "IXcosφ", Magnitude: d.IX * d.CosPhi, Start: ixSin, End: Point{X: ixSin.X, Y: ixSin.Y - d.IX*d.CosPhi*d.Scale}, Color: "#f39c12"},
	}
}
