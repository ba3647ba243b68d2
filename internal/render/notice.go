package render

import (
	"strconv"
	"time"
)

// ErrorNotice is the blocking error modal shown for validation and request
// failures. It closes on the dismiss button, a backdrop click, or after
// AutoDismiss.
type ErrorNotice struct {
	Icon         string
	Message      string
	DismissLabel string
	AutoDismiss  time.Duration
}

func NewErrorNotice(message string) *ErrorNotice {
	return &ErrorNotice{
		Icon:         "⚠️",
		Message:      message,
		DismissLabel: "确定",
		AutoDismiss:  3 * time.Second,
	}
}

// AutoDismissMillis is the timeout in the form page scripts expect.
func (n *ErrorNotice) AutoDismissMillis() string {
	return strconv.FormatInt(n.AutoDismiss.Milliseconds(), 10)
}

// BannerLevel is the severity of a result banner.
type BannerLevel string

const (
	BannerWarning BannerLevel = "warning"
	BannerNotice  BannerLevel = "notice"
)

// Banner is a highlighted message under a result card.
type Banner struct {
	Level BannerLevel
	Text  string
}

// WarningRule compares the number at Source against Max: above it the
// Warning banner shows, otherwise the optional Notice.
type WarningRule struct {
	Source  string  `yaml:"source" json:"source"`
	Max     float64 `yaml:"max" json:"max"`
	Warning string  `yaml:"warning" json:"warning"`
	Notice  string  `yaml:"notice,omitempty" json:"notice,omitempty"`
}

func evaluateWarnings(rules []WarningRule, response map[string]any) []Banner {
	var banners []Banner
	for _, rule := range rules {
		raw, ok := Lookup(response, rule.Source)
		if !ok {
			continue
		}
		n, ok := asNumber(raw)
		if !ok {
			continue
		}
		switch {
		case n > rule.Max:
			banners = append(banners, Banner{Level: BannerWarning, Text: rule.Warning})
		case rule.Notice != "":
			banners = append(banners, Banner{Level: BannerNotice, Text: rule.Notice})
		}
	}
	return banners
}
