package validation

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Validate checks every field of payload in declaration order and reports the
// first failure. An absent optional field is skipped, never coerced to zero.
func Validate(fields []FieldSpec, payload map[string]any) Outcome {
	for _, f := range fields {
		value, present := payload[f.Name]
		if !present || isEmpty(value) {
			if f.Required {
				return Outcome{Message: requiredMessage(f)}
			}
			continue
		}

		if f.Type == FieldTypeSelect {
			continue
		}

		n, ok := toNumber(value)
		if !ok {
			return Outcome{Message: fmt.Sprintf("%s 必须是数字", f.Label)}
		}
		if msg := checkRange(f, n); msg != "" {
			return Outcome{Message: msg}
		}
	}

	return Outcome{Valid: true}
}

// ParseFieldValue converts the raw text of one control into a typed value.
func ParseFieldValue(raw string, f FieldSpec) Result {
	text := strings.TrimSpace(raw)
	if text == "" {
		if f.Required {
			return Result{Message: "请输入" + f.Label}
		}
		return Result{Valid: true}
	}

	if f.Type == FieldTypeSelect {
		return Result{Valid: true, Value: text}
	}

	n, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return Result{Message: fmt.Sprintf("%s 必须是数字", f.Label)}
	}
	if msg := checkRange(f, n); msg != "" {
		return Result{Message: msg}
	}

	return Result{Valid: true, Value: n}
}

func requiredMessage(f FieldSpec) string {
	return fmt.Sprintf("%s 为必填项", f.Label)
}

func checkRange(f FieldSpec, n float64) string {
	if f.Min != nil && n < *f.Min {
		return fmt.Sprintf("%s 不能小于 %s", f.Label, formatBound(*f.Min))
	}
	if f.Max != nil && n > *f.Max {
		return fmt.Sprintf("%s 不能大于 %s", f.Label, formatBound(*f.Max))
	}
	return ""
}

func formatBound(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func isEmpty(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(t) == ""
	}
	return false
}

func toNumber(v any) (float64, bool) {
	var n float64
	switch t := v.(type) {
	case float64:
		n = t
	case float32:
		n = float64(t)
	case int:
		n = float64(t)
	case int64:
		n = float64(t)
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, false
		}
		n = parsed
	default:
		return 0, false
	}
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}
	return n, true
}
