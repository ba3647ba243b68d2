package calculator

import (
	"errors"
	"math"
	"strings"
	"testing"
)

func calculate(t *testing.T, tool, scenario string, p Params) *Response {
	t.Helper()
	c, ok := NewRegistry().Lookup(tool)
	if !ok {
		t.Fatalf("tool %q not registered", tool)
	}
	resp, err := c.Calculate(scenario, p)
	if err != nil {
		t.Fatalf("%s/%s: unexpected error: %v", tool, scenario, err)
	}
	return resp
}

func resultFloat(t *testing.T, resp *Response) float64 {
	t.Helper()
	v, ok := resp.Result.(float64)
	if !ok {
		t.Fatalf("expected float64 result, got %T", resp.Result)
	}
	return v
}

func TestAccelerationTimeIsPositive(t *testing.T) {
	resp := calculate(t, "angular-acceleration", "acceleration_time", Params{"t": 10.0, "A": 0.5})

	if got := resultFloat(t, resp); got != 5 {
		t.Fatalf("expected t0=5, got %v", got)
	}
	if resp.Unit != "s" {
		t.Fatalf("expected unit s, got %q", resp.Unit)
	}
	extra, ok := resp.Extra.(AccelerationTimeExtra)
	if !ok || extra.T0 != 5 {
		t.Fatalf("unexpected extra %#v", resp.Extra)
	}
}

func TestMotorSpeed(t *testing.T) {
	resp := calculate(t, "angular-acceleration", "motor_speed", Params{"i": 10.0, "t": 1.0, "L": 90.0, "A": 0.25})

	if got := resultFloat(t, resp); math.Abs(got-200) > 1e-6 {
		t.Fatalf("expected 200 rpm, got %v", got)
	}
	extra := resp.Extra.(MotorSpeedExtra)
	if math.Abs(extra.Nmax-20) > 1e-9 {
		t.Fatalf("expected Nmax 20, got %v", extra.Nmax)
	}
}

func TestTorqueDoublesForStart(t *testing.T) {
	resp := calculate(t, "angular-acceleration", "torque", Params{"J": 0.5, "betaM": 4.0})
	if got := resultFloat(t, resp); got != 4 {
		t.Fatalf("expected Ts=4, got %v", got)
	}
	if got := resp.Extra.(TorqueExtra).T; got != 2 {
		t.Fatalf("expected T=2, got %v", got)
	}
}

func TestAngularRejectsRatioOutsideOpenInterval(t *testing.T) {
	c, _ := NewRegistry().Lookup("angular-acceleration")
	for _, A := range []float64{0, 1, 1.5, -0.1} {
		_, err := c.Calculate("acceleration_time", Params{"t": 10.0, "A": A})
		var calcErr *Error
		if !errors.As(err, &calcErr) {
			t.Fatalf("A=%v: expected *Error, got %v", A, err)
		}
		if calcErr.Msg != "加减速时间比A必须在0和1之间" {
			t.Fatalf("A=%v: unexpected message %q", A, calcErr.Msg)
		}
	}
}

func TestUnknownScenario(t *testing.T) {
	for _, tool := range NewRegistry().Tools() {
		c, _ := NewRegistry().Lookup(tool)
		_, err := c.Calculate("nope", Params{})
		if err == nil || err.Error() != "未知的计算场景: nope" {
			t.Fatalf("%s: expected unknown scenario error, got %v", tool, err)
		}
	}
}

func TestVoltageLossCurrentMethod(t *testing.T) {
	resp := calculate(t, "current-calc", "voltage_loss_end_load", Params{
		"current": 100.0, "resistance": 0.1, "reactance": 0.05, "cos_phi": 0.85,
	})

	if got := resultFloat(t, resp); got != 11.1339 {
		t.Fatalf("expected 11.1339 V, got %v", got)
	}
	extra := resp.Extra.(VoltageLossExtra)
	if extra.Method != "current" {
		t.Fatalf("expected current method, got %q", extra.Method)
	}
}

func TestVoltageLossPowerMethodAcceptsZeroReactance(t *testing.T) {
	resp := calculate(t, "current-calc", "voltage_loss_end_load", Params{
		"power": 10.0, "resistance": 0.1, "reactance": 0.0, "voltage": 380.0, "reactive_power": 0.0,
	})

	if got := resultFloat(t, resp); got != 1.5193 {
		t.Fatalf("expected 1.5193 V, got %v", got)
	}
	extra := resp.Extra.(VoltageLossExtra)
	if extra.Method != "power" || extra.CosPhi != 1 {
		t.Fatalf("unexpected extra %#v", extra)
	}
}

func TestVoltageLossPowerMethodNeedsCosOrReactive(t *testing.T) {
	c, _ := NewRegistry().Lookup("current-calc")
	_, err := c.Calculate("voltage_loss_end_load", Params{
		"power": 10.0, "resistance": 0.1, "reactance": 0.05, "voltage": 380.0,
	})
	if err == nil || err.Error() != "需要提供无功功率或功率因数" {
		t.Fatalf("expected missing cos/reactive error, got %v", err)
	}
}

func TestCurrentFormulas(t *testing.T) {
	tests := []struct {
		scenario string
		params   Params
		want     float64
	}{
		{scenario: "pure_resistor", params: Params{"power": 2200.0, "voltage": 220.0}, want: 10},
		{scenario: "inductive", params: Params{"power": 1870.0, "voltage": 220.0, "cos_phi": 0.85}, want: 10},
		{scenario: "single_phase_motor", params: Params{"power": 1000.0, "voltage": 200.0, "efficiency": 1.0, "cos_phi": 1.0}, want: 5},
		{scenario: "residential", params: Params{"total_power": 8800.0, "kc": 0.5, "voltage": 220.0, "cos_phi": 1.0}, want: 20},
	}

	for _, tc := range tests {
		t.Run(tc.scenario, func(t *testing.T) {
			resp := calculate(t, "current-calc", tc.scenario, tc.params)
			if got := resultFloat(t, resp); math.Abs(got-tc.want) > 1e-4 {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
			if resp.Unit != "A" {
				t.Fatalf("expected unit A, got %q", resp.Unit)
			}
		})
	}
}

func TestConvertRefrigeration(t *testing.T) {
	got, err := ConvertRefrigeration(1163, "W", "Kcal/h")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(got-1000) > 1e-9 {
		t.Fatalf("expected 1000 Kcal/h, got %v", got)
	}

	for _, tc := range []struct {
		value    float64
		from, to string
		msg      string
	}{
		{value: -1, from: "W", to: "BTU/h", msg: "数值不能为负数"},
		{value: 1, from: "W", to: "W", msg: "从单位和到单位不能相同"},
		{value: 1, from: "hp", to: "W", msg: "不支持的从单位: hp"},
		{value: 1, from: "W", to: "hp", msg: "不支持的目标单位: hp"},
	} {
		if _, err := ConvertRefrigeration(tc.value, tc.from, tc.to); err == nil || err.Error() != tc.msg {
			t.Fatalf("%v %s->%s: expected %q, got %v", tc.value, tc.from, tc.to, tc.msg, err)
		}
	}
}

func TestAirDensityAtReferenceConditions(t *testing.T) {
	resp := calculate(t, "fan-performance", "air_density", Params{"P_inlet": 101325.0, "T": 20.0})
	if got := resultFloat(t, resp); math.Abs(got-1.2) > 1e-9 {
		t.Fatalf("expected 1.2 kg/m³, got %v", got)
	}
	if !strings.Contains(resp.Formula, "<sub>inlet</sub>") {
		t.Fatalf("expected rich formula, got %q", resp.Formula)
	}
}

func TestFanPerformanceTableSkipsInvalidPoints(t *testing.T) {
	resp := calculate(t, "fan-performance", "fan_performance", Params{
		"D": 0.6, "n": 2900.0, "T": 20.0, "P_inlet": 101325.0,
		"performance_points": []any{
			map[string]any{"psi_p": 0.43, "phi": 0.2231, "eta": 0.88},
			map[string]any{"psi_p": 0.409, "phi": 0.238, "eta": 1.2},
			map[string]any{"psi_p": 0.386, "phi": 0.2545},
			"garbage",
			map[string]any{"psi_p": 0.3598, "phi": 0.271, "eta": 0.83},
		},
	})

	rows, ok := resp.Result.([]PerformanceRow)
	if !ok {
		t.Fatalf("expected []PerformanceRow, got %T", resp.Result)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 valid rows, got %d", len(rows))
	}
	for _, row := range rows {
		if row.Pressure <= 0 || row.FlowRate <= 0 || row.InternalPower <= 0 {
			t.Fatalf("expected positive quantities, got %#v", row)
		}
	}
	if rows[0].FlowRate >= rows[1].FlowRate {
		t.Fatalf("expected flow to grow with phi, got %v then %v", rows[0].FlowRate, rows[1].FlowRate)
	}
	extra := resp.Extra.(FanPerformanceExtra)
	if math.Abs(extra.Rho-1.2) > 1e-9 {
		t.Fatalf("expected rho 1.2, got %v", extra.Rho)
	}
}

func TestFanPerformanceRequiresPoints(t *testing.T) {
	c, _ := NewRegistry().Lookup("fan-performance")
	_, err := c.Calculate("fan_performance", Params{"D": 0.6, "n": 2900.0, "T": 20.0, "P_inlet": 101325.0})
	if err == nil || err.Error() != "性能点列表performance_points必须提供且为列表" {
		t.Fatalf("expected missing points error, got %v", err)
	}
}

func TestRequestJSONFlattensScenario(t *testing.T) {
	req := Request{Scenario: "acceleration_time", Params: Params{"t": 10.0}}
	data, err := req.MarshalJSON()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var back Request
	if err := back.UnmarshalJSON(data); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back.Scenario != "acceleration_time" {
		t.Fatalf("expected scenario, got %q", back.Scenario)
	}
	if _, ok := back.Params["scenario"]; ok {
		t.Fatal("scenario must not leak into params")
	}
	if back.Params["t"] != 10.0 {
		t.Fatalf("expected t=10, got %#v", back.Params["t"])
	}
}
