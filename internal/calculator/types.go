package calculator

import (
	"encoding/json"
	"fmt"
	"math"
)

// Params is the flat field bag of a calculation request, minus the scenario.
type Params map[string]any

// Request is the JSON body for POST /api/tools/{tool}/calculate. On the wire
// the scenario sits next to the scenario-specific fields.
type Request struct {
	Scenario string
	Params   Params
}

func (r Request) MarshalJSON() ([]byte, error) {
	body := make(map[string]any, len(r.Params)+1)
	for k, v := range r.Params {
		body[k] = v
	}
	body["scenario"] = r.Scenario
	return json.Marshal(body)
}

func (r *Request) UnmarshalJSON(data []byte) error {
	var body map[string]any
	if err := json.Unmarshal(data, &body); err != nil {
		return err
	}
	if body == nil {
		return fmt.Errorf("request body must be a JSON object")
	}
	scenario, _ := body["scenario"].(string)
	delete(body, "scenario")
	r.Scenario = scenario
	r.Params = Params(body)
	return nil
}

// Response is the JSON response of every calculation endpoint. Result is a
// number for most scenarios and a list of rows for table-producing ones.
// Extra holds the scenario's typed intermediate quantities.
type Response struct {
	Result       any    `json:"result"`
	Unit         string `json:"unit"`
	Formula      string `json:"formula"`
	ScenarioName string `json:"scenario_name"`
	Extra        any    `json:"extra,omitempty"`
}

// Error is a business-rule failure of a calculation; it maps to HTTP 400.
type Error struct {
	Msg string
}

func (e *Error) Error() string { return e.Msg }

func errorf(format string, args ...any) *Error {
	return &Error{Msg: fmt.Sprintf(format, args...)}
}

// Float returns the numeric value stored under key.
func (p Params) Float(key string) (float64, bool) {
	switch v := p[key].(type) {
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, false
		}
		return v, true
	case int:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	}
	return 0, false
}

// String returns the string value stored under key.
func (p Params) String(key string) (string, bool) {
	s, ok := p[key].(string)
	return s, ok && s != ""
}

func (p Params) has(key string) bool {
	_, ok := p.Float(key)
	return ok
}

func (p Params) requirePositive(key, msg string) (float64, error) {
	v, ok := p.Float(key)
	if !ok || v <= 0 {
		return 0, &Error{Msg: msg}
	}
	return v, nil
}

func (p Params) requirePresent(key, msg string) (float64, error) {
	v, ok := p.Float(key)
	if !ok {
		return 0, &Error{Msg: msg}
	}
	return v, nil
}

// requireOpenUnit accepts values in the open interval (0, 1).
func (p Params) requireOpenUnit(key, msg string) (float64, error) {
	v, ok := p.Float(key)
	if !ok || v <= 0 || v >= 1 {
		return 0, &Error{Msg: msg}
	}
	return v, nil
}

// requireFraction accepts values in (0, 1].
func (p Params) requireFraction(key, msg string) (float64, error) {
	v, ok := p.Float(key)
	if !ok || v <= 0 || v > 1 {
		return 0, &Error{Msg: msg}
	}
	return v, nil
}

// floatOr returns the value under key or def when absent.
func (p Params) floatOr(key string, def float64) float64 {
	if v, ok := p.Float(key); ok {
		return v
	}
	return def
}

func round(v float64, places int) float64 {
	pow := math.Pow(10, float64(places))
	return math.Round(v*pow) / pow
}
