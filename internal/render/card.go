// Package render turns calculation responses into display-ready result
// cards: formatted values, the formula line, and warning banners.
package render

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// DefaultDecimals is used when an item does not set Decimals.
const DefaultDecimals = 4

// NotAvailable is shown for values that are missing or empty.
const NotAvailable = "N/A"

// Item declares one displayed value of a result card.
type Item struct {
	ID         string `yaml:"id" json:"id"`
	Label      string `yaml:"label" json:"label"`
	Source     string `yaml:"source" json:"source"`
	Formatter  string `yaml:"formatter,omitempty" json:"formatter,omitempty"`
	Decimals   *int   `yaml:"decimals,omitempty" json:"decimals,omitempty"`
	Unit       string `yaml:"unit,omitempty" json:"unit,omitempty"`
	UnitSource string `yaml:"unit_source,omitempty" json:"unit_source,omitempty"`
}

func (it Item) decimals() int {
	if it.Decimals == nil || *it.Decimals < 0 {
		return DefaultDecimals
	}
	return *it.Decimals
}

// ResultConfig declares how a response is laid out on a card.
type ResultConfig struct {
	Items         []Item        `yaml:"items" json:"items"`
	FormulaSource string        `yaml:"formula_source,omitempty" json:"formula_source,omitempty"`
	Warnings      []WarningRule `yaml:"warnings,omitempty" json:"warnings,omitempty"`
	Table         *TableSpec    `yaml:"table,omitempty" json:"table,omitempty"`
}

// TableSpec lays out a list-valued response field as rows. Column sources
// are resolved against each row.
type TableSpec struct {
	Source  string `yaml:"source" json:"source"`
	Columns []Item `yaml:"columns" json:"columns"`
}

// Table is a rendered TableSpec.
type Table struct {
	Headers []string
	Rows    [][]string
}

// Formatter renders one value. It receives the whole response so it can
// combine several fields.
type Formatter func(value any, response map[string]any, item Item) string

// Formatters maps formatter names used in Item.Formatter to functions.
type Formatters map[string]Formatter

// Value is one rendered line of a card.
type Value struct {
	ID    string
	Label string
	Text  string
	Unit  string
}

// Card is a fully rendered result. Visible is set once population finished.
type Card struct {
	Visible      bool
	ScenarioName string
	Values       []Value
	Formula      *Formula
	Banners      []Banner
	Table        *Table
}

// Value returns the rendered text of the item with the given ID.
func (c Card) Value(id string) (string, bool) {
	for _, v := range c.Values {
		if v.ID == id {
			return v.Text, true
		}
	}
	return "", false
}

// RenderResultCard resolves every item of cfg against response. Missing
// paths render as N/A; a panicking formatter does too.
func RenderResultCard(cfg ResultConfig, response map[string]any, formatters Formatters) Card {
	card := Card{Values: make([]Value, 0, len(cfg.Items))}

	for _, item := range cfg.Items {
		value, _ := Lookup(response, item.Source)
		v := Value{ID: item.ID, Label: item.Label, Text: formatValue(value, response, item, formatters), Unit: item.Unit}
		if item.UnitSource != "" {
			if u, ok := Lookup(response, item.UnitSource); ok {
				if s, ok := u.(string); ok && s != "" {
					v.Unit = s
				}
			}
		}
		card.Values = append(card.Values, v)
	}

	formulaSource := cfg.FormulaSource
	if formulaSource == "" {
		formulaSource = "formula"
	}
	if raw, ok := Lookup(response, formulaSource); ok {
		if text, ok := raw.(string); ok && strings.TrimSpace(text) != "" {
			f := RenderFormula(text)
			card.Formula = &f
		}
	}

	if name, ok := Lookup(response, "scenario_name"); ok {
		card.ScenarioName, _ = name.(string)
	}

	card.Banners = evaluateWarnings(cfg.Warnings, response)
	if cfg.Table != nil {
		card.Table = renderTable(*cfg.Table, response, formatters)
	}
	card.Visible = true
	return card
}

func renderTable(spec TableSpec, response map[string]any, formatters Formatters) *Table {
	t := &Table{Headers: make([]string, 0, len(spec.Columns))}
	for _, col := range spec.Columns {
		t.Headers = append(t.Headers, col.Label)
	}

	raw, _ := Lookup(response, spec.Source)
	rows, _ := raw.([]any)
	for _, r := range rows {
		row, _ := r.(map[string]any)
		cells := make([]string, 0, len(spec.Columns))
		for _, col := range spec.Columns {
			value, _ := Lookup(row, col.Source)
			cells = append(cells, formatValue(value, response, col, formatters))
		}
		t.Rows = append(t.Rows, cells)
	}
	return t
}

func formatValue(value any, response map[string]any, item Item, formatters Formatters) (text string) {
	if fn, ok := formatters[item.Formatter]; ok && item.Formatter != "" {
		defer func() {
			if recover() != nil {
				text = NotAvailable
			}
		}()
		return fn(value, response, item)
	}

	if n, ok := asNumber(value); ok {
		return strconv.FormatFloat(n, 'f', item.decimals(), 64)
	}

	switch v := value.(type) {
	case nil:
		return NotAvailable
	case string:
		if v == "" {
			return NotAvailable
		}
		return v
	}
	return fmt.Sprint(value)
}

// Lookup resolves a dotted path such as "extra.t0" or "result.0.pressure".
// List elements are addressed by index.
func Lookup(response map[string]any, path string) (any, bool) {
	if path == "" || response == nil {
		return nil, false
	}

	var cur any = response
	for _, part := range strings.Split(path, ".") {
		switch node := cur.(type) {
		case map[string]any:
			next, ok := node[part]
			if !ok {
				return nil, false
			}
			cur = next
		case []any:
			i, err := strconv.Atoi(part)
			if err != nil || i < 0 || i >= len(node) {
				return nil, false
			}
			cur = node[i]
		default:
			return nil, false
		}
	}
	return cur, true
}

func asNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}
