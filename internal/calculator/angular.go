package calculator

import (
	"fmt"
	"math"
	"strings"
)

var angularScenarioNames = map[string]string{
	"acceleration_time":    "加速时间计算",
	"motor_speed":          "电机转速计算",
	"torque":               "扭矩计算",
	"angular_acceleration": "角加速度计算",
}

// AccelerationTimeExtra is the extra payload of acceleration_time.
type AccelerationTimeExtra struct {
	T0 float64 `json:"t0"`
}

// MotorSpeedExtra is the extra payload of motor_speed.
type MotorSpeedExtra struct {
	T0    float64 `json:"t0"`
	Beta  float64 `json:"beta"`
	Nmax  float64 `json:"Nmax"`
	BetaM float64 `json:"betaM"`
}

// TorqueExtra is the extra payload of torque.
type TorqueExtra struct {
	T float64 `json:"T"`
}

// AngularAccelerationExtra is the extra payload of angular_acceleration.
type AngularAccelerationExtra struct {
	T0    float64 `json:"t0"`
	Beta  float64 `json:"beta"`
	Nmax  float64 `json:"Nmax"`
	BetaM float64 `json:"betaM"`
	NM    float64 `json:"NM"`
	T     float64 `json:"T"`
}

// AngularAcceleration sizes a positioning drive from its motion profile:
// acceleration time, reducer/motor angular acceleration and speed, torque.
type AngularAcceleration struct{}

func (AngularAcceleration) Scenarios() []string { return scenarioKeys(angularScenarioNames) }

func (a AngularAcceleration) Calculate(scenario string, p Params) (*Response, error) {
	switch scenario {
	case "acceleration_time":
		return a.accelerationTime(p)
	case "motor_speed":
		return a.motorSpeed(p)
	case "torque":
		return a.torque(p)
	case "angular_acceleration":
		return a.full(p)
	}
	return nil, errorf("未知的计算场景: %s", scenario)
}

type motionProfile struct {
	i, t, L, A float64
	t0         float64
	beta       float64
	nmax       float64
	betaM      float64
	nm         float64
}

func readTimeRatio(p Params) (t, A float64, err error) {
	if t, err = p.requirePositive("t", "每次定位时间t必须大于0"); err != nil {
		return 0, 0, err
	}
	if A, err = p.requireOpenUnit("A", "加减速时间比A必须在0和1之间"); err != nil {
		return 0, 0, err
	}
	return t, A, nil
}

func readMotionProfile(p Params) (*motionProfile, error) {
	i, err := p.requirePositive("i", "减速比i必须大于0")
	if err != nil {
		return nil, err
	}
	t, A, err := readTimeRatio(p)
	if err != nil {
		return nil, err
	}
	L, err := p.requirePositive("L", "每次运动角度L必须大于0")
	if err != nil {
		return nil, err
	}

	m := &motionProfile{i: i, t: t, L: L, A: A}
	m.t0 = t * A
	m.beta = (L * math.Pi) / (180 * (m.t0 * (t - m.t0)))
	m.nmax = (m.beta * m.t0 / (2 * math.Pi)) * 60
	m.betaM = i * m.beta
	m.nm = m.nmax * i
	return m, nil
}

func (m *motionProfile) writeFormula(b *strings.Builder) {
	fmt.Fprintf(b, "加速时间: t<sub>0</sub> = t × A<br>  = %g × %g<br>  = %.4f s<br>", m.t, m.A, m.t0)
	fmt.Fprintf(b, "减速机输出轴角加速度: β = (L×π)/(180×(t<sub>0</sub>×(t-t<sub>0</sub>)))<br>  = (%g×π)/(180×(%.4f×(%g-%.4f)))<br>  = %.6f rad/s²<br>",
		m.L, m.t0, m.t, m.t0, m.beta)
	fmt.Fprintf(b, "减速机输出轴转速: N<sub>max</sub> = (β×t<sub>0</sub>/(2×π))×60<br>  = (%.6f×%.4f/(2×π))×60<br>  = %.4f rpm<br>", m.beta, m.t0, m.nmax)
	fmt.Fprintf(b, "电机输出轴角加速度: β<sub>M</sub> = i × β<br>  = %g × %.6f<br>  = %.6f rad/s²<br>", m.i, m.beta, m.betaM)
	fmt.Fprintf(b, "电机输出轴转速: N<sub>M</sub> = N<sub>max</sub> × i<br>  = %.4f × %g<br>  = %.4f rpm", m.nmax, m.i, m.nm)
}

func (AngularAcceleration) accelerationTime(p Params) (*Response, error) {
	t, A, err := readTimeRatio(p)
	if err != nil {
		return nil, err
	}
	t0 := t * A

	formula := fmt.Sprintf("加速时间: t<sub>0</sub> = t × A<br>  = %g × %g<br>  = %.4f s", t, A, t0)
	return &Response{
		Result:       round(t0, 4),
		Unit:         "s",
		Formula:      formula,
		ScenarioName: angularScenarioNames["acceleration_time"],
		Extra:        AccelerationTimeExtra{T0: t0},
	}, nil
}

func (AngularAcceleration) motorSpeed(p Params) (*Response, error) {
	m, err := readMotionProfile(p)
	if err != nil {
		return nil, err
	}

	var b strings.Builder
	m.writeFormula(&b)
	return &Response{
		Result:       round(m.nm, 4),
		Unit:         "rpm",
		Formula:      b.String(),
		ScenarioName: angularScenarioNames["motor_speed"],
		Extra:        MotorSpeedExtra{T0: m.t0, Beta: m.beta, Nmax: m.nmax, BetaM: m.betaM},
	}, nil
}

func (AngularAcceleration) torque(p Params) (*Response, error) {
	J, err := p.requirePositive("J", "负载惯量J必须大于0")
	if err != nil {
		return nil, err
	}
	betaM, err := p.requirePositive("betaM", "电机输出轴角加速度βM必须大于0")
	if err != nil {
		return nil, err
	}
	T := J * betaM
	Ts := 2 * T

	var b strings.Builder
	writeTorqueFormula(&b, J, betaM, T, Ts)
	return &Response{
		Result:       round(Ts, 6),
		Unit:         "Nm",
		Formula:      b.String(),
		ScenarioName: angularScenarioNames["torque"],
		Extra:        TorqueExtra{T: T},
	}, nil
}

func writeTorqueFormula(b *strings.Builder, J, betaM, T, Ts float64) {
	fmt.Fprintf(b, "电机输出扭矩: T = J × β<sub>M</sub><br>  = %g × %.6f<br>  = %.6f Nm<br>", J, betaM, T)
	fmt.Fprintf(b, "启动扭矩: T<sub>s</sub> = 2 × T<br>  = 2 × %.6f<br>  = %.6f Nm", T, Ts)
}

func (AngularAcceleration) full(p Params) (*Response, error) {
	m, err := readMotionProfile(p)
	if err != nil {
		return nil, err
	}
	J, err := p.requirePositive("J", "负载惯量J必须大于0")
	if err != nil {
		return nil, err
	}
	T := J * m.betaM
	Ts := 2 * T

	var b strings.Builder
	m.writeFormula(&b)
	b.WriteString("<br>")
	writeTorqueFormula(&b, J, m.betaM, T, Ts)
	return &Response{
		Result:       round(Ts, 6),
		Unit:         "Nm",
		Formula:      b.String(),
		ScenarioName: angularScenarioNames["angular_acceleration"],
		Extra: AngularAccelerationExtra{
			T0: m.t0, Beta: m.beta, Nmax: m.nmax, BetaM: m.betaM, NM: m.nm, T: T,
		},
	}, nil
}
