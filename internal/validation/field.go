// Package validation checks raw tool inputs against declarative field
// definitions before anything is sent to the calculation backend.
package validation

// FieldType is the kind of input control a field is rendered as.
type FieldType string

const (
	FieldTypeNumber FieldType = "number"
	FieldTypeSelect FieldType = "select"
)

// FieldSpec describes one input control of a tool form.
type FieldSpec struct {
	Name     string    `yaml:"name" json:"name"`
	Label    string    `yaml:"label" json:"label"`
	Type     FieldType `yaml:"type" json:"type"`
	Required bool      `yaml:"required" json:"required"`
	Min      *float64  `yaml:"min,omitempty" json:"min,omitempty"`
	Max      *float64  `yaml:"max,omitempty" json:"max,omitempty"`
	Unit     string    `yaml:"unit,omitempty" json:"unit,omitempty"`
	Default  *float64  `yaml:"default,omitempty" json:"default,omitempty"`
	Options  []Option  `yaml:"options,omitempty" json:"options,omitempty"`
}

// Option is one choice of a select field.
type Option struct {
	Value string `yaml:"value" json:"value"`
	Label string `yaml:"label" json:"label"`
}

// Outcome is the verdict for a whole payload.
type Outcome struct {
	Valid   bool
	Message string
}

// Result is the verdict for a single raw control value. Value is nil when an
// optional field was left empty.
type Result struct {
	Valid   bool
	Value   any
	Message string
}

// Float returns a pointer to v, for populating Min/Max/Default in code.
func Float(v float64) *float64 {
	return &v
}
