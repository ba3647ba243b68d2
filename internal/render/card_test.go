package render

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func intPtr(v int) *int { return &v }

var accelResponse = map[string]any{
	"result":        5.0,
	"unit":          "s",
	"formula":       "加速时间: t<sub>0</sub> = t × A",
	"scenario_name": "加速时间计算",
	"extra":         map[string]any{"t0": 5.0, "label": ""},
}

func TestRenderResultCard(t *testing.T) {
	cfg := ResultConfig{
		Items: []Item{
			{ID: "t0", Label: "加速时间", Source: "result", UnitSource: "unit"},
			{ID: "t0-short", Label: "t0", Source: "extra.t0", Decimals: intPtr(1), Unit: "s"},
			{ID: "missing", Label: "缺失", Source: "extra.nope"},
			{ID: "deep-missing", Label: "缺失", Source: "result.nope.deeper"},
			{ID: "empty", Label: "空", Source: "extra.label"},
			{ID: "name", Label: "场景", Source: "scenario_name"},
		},
	}

	card := RenderResultCard(cfg, accelResponse, nil)

	want := []Value{
		{ID: "t0", Label: "加速时间", Text: "5.0000", Unit: "s"},
		{ID: "t0-short", Label: "t0", Text: "5.0", Unit: "s"},
		{ID: "missing", Label: "缺失", Text: "N/A"},
		{ID: "deep-missing", Label: "缺失", Text: "N/A"},
		{ID: "empty", Label: "空", Text: "N/A"},
		{ID: "name", Label: "场景", Text: "加速时间计算"},
	}
	if diff := cmp.Diff(want, card.Values); diff != "" {
		t.Fatalf("values mismatch (-want +got):\n%s", diff)
	}

	if !card.Visible {
		t.Fatal("expected card to be visible after rendering")
	}
	if card.ScenarioName != "加速时间计算" {
		t.Fatalf("unexpected scenario name %q", card.ScenarioName)
	}
	if card.Formula == nil || !card.Formula.Rich || !strings.HasPrefix(card.Formula.Text, "公式: ") {
		t.Fatalf("unexpected formula %#v", card.Formula)
	}
}

func TestRenderResultCardNeverPanics(t *testing.T) {
	cfg := ResultConfig{Items: []Item{
		{ID: "a", Source: "result.0.x"},
		{ID: "b", Source: "", Formatter: "boom"},
		{ID: "c", Source: "extra"},
	}}
	formatters := Formatters{
		"boom": func(any, map[string]any, Item) string { panic("formatter bug") },
	}

	for _, resp := range []map[string]any{nil, {}, {"result": []any{}}, {"result": "x"}} {
		card := RenderResultCard(cfg, resp, formatters)
		if got, _ := card.Value("a"); got != NotAvailable {
			t.Fatalf("expected N/A for %#v, got %q", resp, got)
		}
		if got, _ := card.Value("b"); got != NotAvailable {
			t.Fatalf("expected N/A from panicking formatter, got %q", got)
		}
		if card.Formula != nil {
			t.Fatalf("expected no formula, got %#v", card.Formula)
		}
	}
}

func TestRenderResultCardFormatter(t *testing.T) {
	cfg := ResultConfig{Items: []Item{
		{ID: "ratio", Source: "extra.ratio", Formatter: "withResult"},
		{ID: "eta", Source: "extra.eta", Formatter: "percent"},
	}}
	formatters := BuiltinFormatters()
	formatters["withResult"] = func(value any, resp map[string]any, item Item) string {
		return FormatNumber(value, 2) + " / " + FormatNumber(resp["result"], 1)
	}

	resp := map[string]any{"result": 3.0, "extra": map[string]any{"ratio": 1.5, "eta": 0.88}}
	card := RenderResultCard(cfg, resp, formatters)

	if got, _ := card.Value("ratio"); got != "1.50 / 3.0" {
		t.Fatalf("unexpected formatter output %q", got)
	}
	if got, _ := card.Value("eta"); got != "88.00%" {
		t.Fatalf("unexpected percent output %q", got)
	}
}

func TestRenderResultCardListIndex(t *testing.T) {
	resp := map[string]any{"result": []any{map[string]any{"pressure": 1234.5}}}
	card := RenderResultCard(ResultConfig{Items: []Item{{ID: "p", Source: "result.0.pressure", Decimals: intPtr(2)}}}, resp, nil)
	if got, _ := card.Value("p"); got != "1234.50" {
		t.Fatalf("expected 1234.50, got %q", got)
	}
}

func TestWarningBanners(t *testing.T) {
	rules := []WarningRule{{
		Source:  "extra.inertia_ratio",
		Max:     5,
		Warning: "惯量比过大",
		Notice:  "惯量比合适",
	}}

	tests := []struct {
		name  string
		ratio any
		want  []Banner
	}{
		{name: "above", ratio: 6.0, want: []Banner{{Level: BannerWarning, Text: "惯量比过大"}}},
		{name: "at limit", ratio: 5.0, want: []Banner{{Level: BannerNotice, Text: "惯量比合适"}}},
		{name: "missing", ratio: nil, want: nil},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			extra := map[string]any{}
			if tc.ratio != nil {
				extra["inertia_ratio"] = tc.ratio
			}
			card := RenderResultCard(ResultConfig{Warnings: rules}, map[string]any{"extra": extra}, nil)
			if diff := cmp.Diff(tc.want, card.Banners); diff != "" {
				t.Fatalf("banners mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRenderTable(t *testing.T) {
	cfg := ResultConfig{Table: &TableSpec{
		Source: "result",
		Columns: []Item{
			{ID: "phi", Label: "φ", Source: "phi"},
			{ID: "p", Label: "压力", Source: "pressure", Decimals: intPtr(1)},
			{ID: "x", Label: "缺失", Source: "nope"},
		},
	}}
	resp := map[string]any{"result": []any{
		map[string]any{"phi": 0.2231, "pressure": 3012.44},
		"not a row",
	}}

	card := RenderResultCard(cfg, resp, nil)

	want := &Table{
		Headers: []string{"φ", "压力", "缺失"},
		Rows: [][]string{
			{"0.2231", "3012.4", "N/A"},
			{"N/A", "N/A", "N/A"},
		},
	}
	if diff := cmp.Diff(want, card.Table); diff != "" {
		t.Fatalf("table mismatch (-want +got):\n%s", diff)
	}
}
