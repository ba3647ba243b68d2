package render

import (
	"math"
	"strconv"
	"strings"
)

// FormatNumber renders v with a fixed number of decimals. Nil, NaN and
// non-numeric strings render as N/A; numeric strings are parsed first.
func FormatNumber(v any, decimals int) string {
	if decimals < 0 {
		decimals = DefaultDecimals
	}

	n, ok := asNumber(v)
	if !ok {
		s, isString := v.(string)
		if !isString {
			return NotAvailable
		}
		parsed, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return NotAvailable
		}
		n = parsed
	}
	if math.IsNaN(n) {
		return NotAvailable
	}
	return strconv.FormatFloat(n, 'f', decimals, 64)
}

// BuiltinFormatters are available to every tool definition.
func BuiltinFormatters() Formatters {
	return Formatters{
		"percent": func(value any, _ map[string]any, item Item) string {
			n, ok := asNumber(value)
			if !ok {
				return NotAvailable
			}
			return FormatNumber(n*100, decimalsOr(item, 2)) + "%"
		},
		"integer": func(value any, _ map[string]any, _ Item) string {
			return FormatNumber(value, 0)
		},
		"scientific": func(value any, _ map[string]any, item Item) string {
			n, ok := asNumber(value)
			if !ok || math.IsNaN(n) {
				return NotAvailable
			}
			return strconv.FormatFloat(n, 'e', decimalsOr(item, 3), 64)
		},
	}
}

func decimalsOr(item Item, def int) int {
	if item.Decimals == nil {
		return def
	}
	return *item.Decimals
}
