package calculator

import (
	"fmt"
	"math"
	"strings"
)

var fanScenarioNames = map[string]string{
	"fan_performance": "风机性能表计算",
	"air_density":     "空气密度计算",
	"pressure":        "压力计算",
	"flow_rate":       "流量计算",
	"internal_power":  "内功率计算",
}

// FanPerformanceExtra is the extra payload of fan_performance.
type FanPerformanceExtra struct {
	Rho    float64 `json:"rho"`
	U      float64 `json:"u"`
	D      float64 `json:"D"`
	N      float64 `json:"n"`
	T      float64 `json:"T"`
	PInlet float64 `json:"P_inlet"`
}

// PerformanceRow is one computed row of the fan performance table.
type PerformanceRow struct {
	PsiP          float64 `json:"psi_p"`
	Phi           float64 `json:"phi"`
	Eta           float64 `json:"eta"`
	Pressure      float64 `json:"pressure"`
	FlowRate      float64 `json:"flow_rate"`
	InternalPower float64 `json:"internal_power"`
}

// FanPerformance builds a centrifugal fan performance table from
// dimensionless operating points.
type FanPerformance struct{}

func (FanPerformance) Scenarios() []string { return scenarioKeys(fanScenarioNames) }

func (f FanPerformance) Calculate(scenario string, p Params) (*Response, error) {
	switch scenario {
	case "air_density":
		return f.airDensity(p)
	case "pressure":
		return f.pressure(p)
	case "flow_rate":
		return f.flowRate(p)
	case "internal_power":
		return f.internalPower(p)
	case "fan_performance":
		return f.table(p)
	}
	return nil, errorf("未知的计算场景: %s", scenario)
}

func airDensity(pInlet, temperature float64) float64 {
	return 1.2 * pInlet / 101325 * 293 / (273 + temperature)
}

func tipSpeed(d, n float64) float64 {
	return math.Pi * d * n / 60
}

func fanPressure(rho, u, psiP float64) float64 {
	return 101300 * (math.Pow(rho*u*u*psiP/354550+1, 3.5) - 1)
}

func fanFlow(d, u, phi float64) float64 {
	return 900 * math.Pi * d * d * u * phi
}

func fanInternalPower(pressure, flow, eta float64) float64 {
	return pressure * flow / 3600 / eta / 1000
}

func readImpeller(p Params) (d, n float64, err error) {
	if d, err = p.requirePositive("D", "叶轮直径D必须大于0"); err != nil {
		return 0, 0, err
	}
	if n, err = p.requirePositive("n", "主轴转速n必须大于0"); err != nil {
		return 0, 0, err
	}
	return d, n, nil
}

func (FanPerformance) airDensity(p Params) (*Response, error) {
	pInlet, err := p.requirePresent("P_inlet", "进口大气压P_inlet必须提供")
	if err != nil {
		return nil, err
	}
	T, err := p.requirePresent("T", "介质温度T必须提供")
	if err != nil {
		return nil, err
	}
	rho := airDensity(pInlet, T)

	formula := fmt.Sprintf("空气密度: ρ = 1.2 × P<sub>inlet</sub> / 101325 × 293 / (273 + T)<br>  = 1.2 × %g / 101325 × 293 / (273 + %g)<br>  = %.10f kg/m³",
		pInlet, T, rho)
	return &Response{
		Result:       round(rho, 10),
		Unit:         "kg/m³",
		Formula:      formula,
		ScenarioName: fanScenarioNames["air_density"],
	}, nil
}

func (FanPerformance) pressure(p Params) (*Response, error) {
	rho, err := p.requirePresent("rho", "空气密度rho必须提供")
	if err != nil {
		return nil, err
	}
	d, n, err := readImpeller(p)
	if err != nil {
		return nil, err
	}
	psiP, err := p.requirePresent("psi_p", "压力系数psi_p必须提供")
	if err != nil {
		return nil, err
	}
	u := tipSpeed(d, n)
	P := fanPressure(rho, u, psiP)

	var b strings.Builder
	b.WriteString("压力: P = 101300 × ((ρ × (π×D×n/60)² × ψ<sub>p</sub> / 354550 + 1)^3.5 - 1)<br>")
	fmt.Fprintf(&b, "  圆周速度: u = π×D×n/60 = π×%g×%g/60 = %.6f m/s<br>", d, n, u)
	fmt.Fprintf(&b, "  P = 101300 × ((%.6f × %.6f² × %g / 354550 + 1)^3.5 - 1)<br>  = %.2f Pa", rho, u, psiP, P)
	return &Response{
		Result:       round(P, 2),
		Unit:         "Pa",
		Formula:      b.String(),
		ScenarioName: fanScenarioNames["pressure"],
	}, nil
}

func (FanPerformance) flowRate(p Params) (*Response, error) {
	d, n, err := readImpeller(p)
	if err != nil {
		return nil, err
	}
	phi, err := p.requirePresent("phi", "流量系数phi必须提供")
	if err != nil {
		return nil, err
	}
	u := tipSpeed(d, n)
	Q := fanFlow(d, u, phi)

	var b strings.Builder
	b.WriteString("流量: Q = 900 × π × D² × (π×D×n/60) × φ<br>")
	fmt.Fprintf(&b, "  圆周速度: u = π×D×n/60 = π×%g×%g/60 = %.6f m/s<br>", d, n, u)
	fmt.Fprintf(&b, "  Q = 900 × π × %g² × %.6f × %g<br>  = %.2f m³/h", d, u, phi, Q)
	return &Response{
		Result:       round(Q, 2),
		Unit:         "m³/h",
		Formula:      b.String(),
		ScenarioName: fanScenarioNames["flow_rate"],
	}, nil
}

func (FanPerformance) internalPower(p Params) (*Response, error) {
	P, err := p.requirePresent("P", "压力P必须提供")
	if err != nil {
		return nil, err
	}
	Q, err := p.requirePresent("Q", "流量Q必须提供")
	if err != nil {
		return nil, err
	}
	eta, err := p.requireFraction("eta", "效率eta应在0-1之间")
	if err != nil {
		return nil, err
	}
	power := fanInternalPower(P, Q, eta)

	formula := fmt.Sprintf("内功率: P<sub>internal</sub> = P × Q / 3600 / η / 1000<br>  = %.2f × %.2f / 3600 / %g / 1000<br>  = %.2f kW",
		P, Q, eta, power)
	return &Response{
		Result:       round(power, 2),
		Unit:         "kW",
		Formula:      formula,
		ScenarioName: fanScenarioNames["internal_power"],
	}, nil
}

// table computes every supplied operating point. Points with a missing
// coefficient or an efficiency outside (0, 1] are skipped.
func (FanPerformance) table(p Params) (*Response, error) {
	d, n, err := readImpeller(p)
	if err != nil {
		return nil, err
	}
	T, err := p.requirePresent("T", "介质温度T必须提供")
	if err != nil {
		return nil, err
	}
	pInlet, err := p.requirePresent("P_inlet", "进口大气压P_inlet必须提供")
	if err != nil {
		return nil, err
	}
	raw, ok := p["performance_points"].([]any)
	if !ok || len(raw) == 0 {
		return nil, errorf("性能点列表performance_points必须提供且为列表")
	}

	rho := airDensity(pInlet, T)
	u := tipSpeed(d, n)

	rows := make([]PerformanceRow, 0, len(raw))
	for _, item := range raw {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		point := Params(m)
		psiP, okPsi := point.Float("psi_p")
		phi, okPhi := point.Float("phi")
		eta, okEta := point.Float("eta")
		if !okPsi || !okPhi || !okEta || eta <= 0 || eta > 1 {
			continue
		}

		pressure := fanPressure(rho, u, psiP)
		flow := fanFlow(d, u, phi)
		rows = append(rows, PerformanceRow{
			PsiP:          psiP,
			Phi:           phi,
			Eta:           eta,
			Pressure:      round(pressure, 2),
			FlowRate:      round(flow, 2),
			InternalPower: round(fanInternalPower(pressure, flow, eta), 2),
		})
	}

	var b strings.Builder
	b.WriteString("风机性能计算完成<br>")
	fmt.Fprintf(&b, "叶轮直径: D = %g m<br>主轴转速: n = %g rpm<br>介质温度: T = %g °C<br>", d, n, T)
	fmt.Fprintf(&b, "进口大气压: P<sub>inlet</sub> = %g Pa<br>空气密度: ρ = %.6f kg/m³<br>圆周速度: u = %.6f m/s<br>", pInlet, rho, u)
	fmt.Fprintf(&b, "<br>共计算 %d 个性能点", len(rows))

	return &Response{
		Result:       rows,
		Formula:      b.String(),
		ScenarioName: fanScenarioNames["fan_performance"],
		Extra:        FanPerformanceExtra{Rho: rho, U: u, D: d, N: n, T: T, PInlet: pInlet},
	}, nil
}
