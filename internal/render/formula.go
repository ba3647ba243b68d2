package render

import (
	"html/template"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// FormulaPrefix labels every displayed formula.
const FormulaPrefix = "公式: "

var richMarkers = []string{"<br>", "<sub>", "<sup>"}

// formulaPolicy keeps line breaks and sub/superscripts and strips the rest.
var formulaPolicy = func() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowElements("br", "sub", "sup")
	return p
}()

// Formula is a formula line ready for display. When Rich is set, Text holds
// markup and must be emitted through HTML.
type Formula struct {
	Text string
	Rich bool
}

// RenderFormula prefixes text with the formula label unless it already has
// one, so rendering twice yields the same result.
func RenderFormula(text string) Formula {
	if !strings.HasPrefix(text, strings.TrimSpace(FormulaPrefix)) {
		text = FormulaPrefix + text
	}
	return Formula{Text: text, Rich: hasMarkup(text)}
}

func hasMarkup(text string) bool {
	for _, m := range richMarkers {
		if strings.Contains(text, m) {
			return true
		}
	}
	return false
}

// HTML returns the formula for a template: sanitized markup when rich,
// escaped text otherwise.
func (f Formula) HTML() template.HTML {
	if !f.Rich {
		return template.HTML(template.HTMLEscapeString(f.Text))
	}
	return template.HTML(formulaPolicy.Sanitize(f.Text))
}

// Plain returns the formula with markup turned into plain text, for
// terminals.
func (f Formula) Plain() string {
	if !f.Rich {
		return f.Text
	}
	r := strings.NewReplacer("<br>", "\n", "<sub>", "_", "</sub>", "", "<sup>", "^", "</sup>", "")
	return r.Replace(f.Text)
}
