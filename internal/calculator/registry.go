package calculator

import "sort"

// Calculator evaluates the scenarios of one tool.
type Calculator interface {
	Calculate(scenario string, p Params) (*Response, error)
	Scenarios() []string
}

// Registry maps tool IDs (the <tool> path segment) to calculators.
type Registry struct {
	tools map[string]Calculator
}

// NewRegistry returns a registry holding every built-in tool.
func NewRegistry() *Registry {
	r := &Registry{tools: make(map[string]Calculator)}
	r.Register("angular-acceleration", AngularAcceleration{})
	r.Register("current-calc", Current{})
	r.Register("fan-performance", FanPerformance{})
	return r
}

func (r *Registry) Register(tool string, c Calculator) {
	r.tools[tool] = c
}

func (r *Registry) Lookup(tool string) (Calculator, bool) {
	c, ok := r.tools[tool]
	return c, ok
}

// Tools returns the registered tool IDs in sorted order.
func (r *Registry) Tools() []string {
	ids := make([]string, 0, len(r.tools))
	for id := range r.tools {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func scenarioKeys(names map[string]string) []string {
	keys := make([]string, 0, len(names))
	for k := range names {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
