package calculator

import (
	"fmt"
	"math"
)

var currentScenarioNames = map[string]string{
	"pure_resistor":              "纯电阻负荷",
	"inductive":                  "感性负荷",
	"single_phase_motor":         "单相电动机负荷",
	"three_phase_motor":          "三相电动机负荷",
	"residential":                "住宅总负荷",
	"refrigeration_unit_convert": "制冷量单位换算",
	"voltage_loss_end_load":      "负荷在末端的线路电压损失计算",
}

// ResidentialExtra is the extra payload of residential.
type ResidentialExtra struct {
	Pjs float64 `json:"pjs"`
}

// VoltageLossExtra is the extra payload of voltage_loss_end_load: the
// quantities a phasor diagram of the line is drawn from.
type VoltageLossExtra struct {
	Method        string  `json:"method"`
	CosPhi        float64 `json:"cos_phi"`
	SinPhi        float64 `json:"sin_phi"`
	ReactivePower float64 `json:"reactive_power,omitempty"`
}

// Current covers the common load-current formulas and the end-of-line
// voltage loss of a feeder.
type Current struct{}

func (Current) Scenarios() []string { return scenarioKeys(currentScenarioNames) }

func (c Current) Calculate(scenario string, p Params) (*Response, error) {
	switch scenario {
	case "pure_resistor":
		return c.pureResistor(p)
	case "inductive":
		return c.inductive(p)
	case "single_phase_motor":
		return c.motor(p, "single_phase_motor", 1, "I = P / (U × η × cosφ)", "单相电动机计算需要功率和电压参数")
	case "three_phase_motor":
		return c.motor(p, "three_phase_motor", math.Sqrt(3), "I = P / (√3 × U × η × cosφ)", "三相电动机计算需要功率和电压参数")
	case "residential":
		return c.residential(p)
	case "refrigeration_unit_convert":
		return c.refrigerationUnitConvert(p)
	case "voltage_loss_end_load":
		return c.voltageLossEndLoad(p)
	}
	return nil, errorf("未知的计算场景: %s", scenario)
}

func (Current) pureResistor(p Params) (*Response, error) {
	power, okP := p.Float("power")
	voltage, okU := p.Float("voltage")
	if !okP || !okU {
		return nil, errorf("纯电阻负荷计算需要功率和电压参数")
	}
	if voltage == 0 {
		return nil, errorf("电压不能为0")
	}

	return &Response{
		Result:       round(power/voltage, 4),
		Unit:         "A",
		Formula:      "I = P / U",
		ScenarioName: currentScenarioNames["pure_resistor"],
	}, nil
}

func (Current) inductive(p Params) (*Response, error) {
	power, okP := p.Float("power")
	voltage, okU := p.Float("voltage")
	if !okP || !okU {
		return nil, errorf("感性负荷计算需要功率和电压参数")
	}
	cosPhi := p.floatOr("cos_phi", 0.85)
	if voltage == 0 || cosPhi == 0 {
		return nil, errorf("电压和功率因数不能为0")
	}

	return &Response{
		Result:       round(power/(voltage*cosPhi), 4),
		Unit:         "A",
		Formula:      "I = P / (U × cosφ)",
		ScenarioName: currentScenarioNames["inductive"],
	}, nil
}

func (Current) motor(p Params, scenario string, phaseFactor float64, formula, missing string) (*Response, error) {
	power, okP := p.Float("power")
	voltage, okU := p.Float("voltage")
	if !okP || !okU {
		return nil, &Error{Msg: missing}
	}
	efficiency := p.floatOr("efficiency", 0.875)
	cosPhi := p.floatOr("cos_phi", 0.89)
	if voltage == 0 || efficiency == 0 || cosPhi == 0 {
		return nil, errorf("电压、效率和功率因数不能为0")
	}

	return &Response{
		Result:       round(power/(phaseFactor*voltage*efficiency*cosPhi), 4),
		Unit:         "A",
		Formula:      formula,
		ScenarioName: currentScenarioNames[scenario],
	}, nil
}

func (Current) residential(p Params) (*Response, error) {
	total, ok := p.Float("total_power")
	if !ok {
		return nil, errorf("住宅总负荷计算需要总功率参数")
	}
	kc := p.floatOr("kc", 0.5)
	voltage := p.floatOr("voltage", 220)
	cosPhi := p.floatOr("cos_phi", 0.8)
	if voltage == 0 || cosPhi == 0 {
		return nil, errorf("电压和功率因数不能为0")
	}

	pjs := kc * total
	result := pjs / (voltage * cosPhi)
	formula := fmt.Sprintf("第一步: Pjs = Kc × PΣ = %g × %g = %.2fW; 第二步: Ijs = Pjs / (U × cosφ) = %.2f / (%g × %g) = %.4fA",
		kc, total, pjs, pjs, voltage, cosPhi, result)

	return &Response{
		Result:       round(result, 4),
		Unit:         "A",
		Formula:      formula,
		ScenarioName: currentScenarioNames["residential"],
		Extra:        ResidentialExtra{Pjs: pjs},
	}, nil
}

func (Current) refrigerationUnitConvert(p Params) (*Response, error) {
	from, okFrom := p.String("from_unit")
	to, okTo := p.String("to_unit")
	value, okValue := p.Float("value")
	if !okFrom || !okTo || !okValue {
		return nil, errorf("需要提供：从单位、到单位和数值")
	}

	result, err := ConvertRefrigeration(value, from, to)
	if err != nil {
		return nil, err
	}

	return &Response{
		Result:       round(result, 4),
		Unit:         to,
		Formula:      RefrigerationFormula(value, from, to, result),
		ScenarioName: currentScenarioNames["refrigeration_unit_convert"],
	}, nil
}

// voltageLossEndLoad prefers the power method when all of its inputs are
// present and falls back to the current method.
func (Current) voltageLossEndLoad(p Params) (*Response, error) {
	var (
		loss    float64
		formula string
		extra   VoltageLossExtra
	)

	cosPhi, hasCos := p.Float("cos_phi")
	resistance, hasR := p.Float("resistance")
	reactance, hasX := p.Float("reactance")

	switch {
	case p.has("power") && hasR && hasX && p.has("voltage"):
		power, _ := p.Float("power")
		voltage, _ := p.Float("voltage")
		if power <= 0 {
			return nil, errorf("有功功率必须大于0")
		}
		reactive, hasQ := p.Float("reactive_power")
		if !hasQ {
			if !hasCos || cosPhi <= 0 || cosPhi > 1 {
				return nil, errorf("需要提供无功功率或功率因数")
			}
			reactive = power * math.Sqrt(1-cosPhi*cosPhi) / cosPhi
		} else {
			cosPhi = power / math.Hypot(power, reactive)
		}
		if voltage <= 0 {
			return nil, errorf("电压必须大于0")
		}

		loss = (power*1000*resistance + reactive*1000*reactance) / (math.Sqrt(3) * voltage)
		formula = fmt.Sprintf("ΔUx = (PR + QX) / (√3 × U) = (%g×%g + %.4f×%g) / (√3 × %g)",
			power, resistance, reactive, reactance, voltage)
		extra = VoltageLossExtra{Method: "power", CosPhi: cosPhi, SinPhi: math.Sqrt(1 - cosPhi*cosPhi), ReactivePower: reactive}

	case p.has("current") && hasR && hasX && hasCos:
		if cosPhi <= 0 || cosPhi > 1 {
			return nil, errorf("功率因数必须在0和1之间")
		}
		current, _ := p.Float("current")
		sinPhi := math.Sqrt(1 - cosPhi*cosPhi)

		loss = current * (resistance*cosPhi + reactance*sinPhi)
		formula = fmt.Sprintf("ΔUx = I (R cosφ + X sinφ) = %g × (%g×%g + %g×%.4f)",
			current, resistance, cosPhi, reactance, sinPhi)
		extra = VoltageLossExtra{Method: "current", CosPhi: cosPhi, SinPhi: sinPhi}

	default:
		return nil, errorf("需要提供：方法1[电流、电阻、电抗、功率因数] 或 方法2[有功功率、电阻、电抗、电压、无功功率或功率因数]")
	}

	return &Response{
		Result:       round(loss, 4),
		Unit:         "V",
		Formula:      formula,
		ScenarioName: currentScenarioNames["voltage_loss_end_load"],
		Extra:        extra,
	}, nil
}
