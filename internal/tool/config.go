// Package tool drives the tabbed calculator forms: each tool is a set of
// tabs, each tab a scenario with its own fields and result layout.
package tool

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"

	"engcalc/internal/render"
	"engcalc/internal/validation"

	"gopkg.in/yaml.v3"
)

//go:embed definitions/*.yaml
var definitions embed.FS

// Diagram kinds a tab can request next to its result card.
const (
	DiagramPhasor = "phasor"
	DiagramCurves = "curves"
)

// Config is one tool definition.
type Config struct {
	ID          string `yaml:"id" json:"id"`
	Name        string `yaml:"name" json:"name"`
	Description string `yaml:"description" json:"description"`
	Category    string `yaml:"category" json:"category"`
	Tabs        []Tab  `yaml:"tabs" json:"tabs"`
}

// Tab is one scenario of a tool. Local tabs are computed in-process instead
// of over HTTP.
type Tab struct {
	ID       string                 `yaml:"id" json:"id"`
	Title    string                 `yaml:"title" json:"title"`
	Scenario string                 `yaml:"scenario" json:"scenario"`
	Fields   []validation.FieldSpec `yaml:"fields" json:"fields"`
	Result   render.ResultConfig    `yaml:"result" json:"result"`
	Diagram  string                 `yaml:"diagram,omitempty" json:"diagram,omitempty"`
	Local    bool                   `yaml:"local,omitempty" json:"local,omitempty"`
}

// Tab returns the tab with the given ID.
func (c *Config) Tab(id string) (*Tab, bool) {
	for i := range c.Tabs {
		if c.Tabs[i].ID == id {
			return &c.Tabs[i], true
		}
	}
	return nil, false
}

func (c *Config) validate() error {
	if c.ID == "" {
		return errors.New("tool id is empty")
	}
	if len(c.Tabs) == 0 {
		return fmt.Errorf("tool %s: no tabs", c.ID)
	}

	seen := make(map[string]bool, len(c.Tabs))
	for _, tab := range c.Tabs {
		if tab.ID == "" || tab.Scenario == "" {
			return fmt.Errorf("tool %s: tab needs both id and scenario", c.ID)
		}
		if seen[tab.ID] {
			return fmt.Errorf("tool %s: duplicate tab %q", c.ID, tab.ID)
		}
		seen[tab.ID] = true

		switch tab.Diagram {
		case "", DiagramPhasor, DiagramCurves:
		default:
			return fmt.Errorf("tool %s tab %s: unknown diagram %q", c.ID, tab.ID, tab.Diagram)
		}

		fields := make(map[string]bool, len(tab.Fields))
		for _, f := range tab.Fields {
			if f.Name == "" {
				return fmt.Errorf("tool %s tab %s: field without name", c.ID, tab.ID)
			}
			if fields[f.Name] {
				return fmt.Errorf("tool %s tab %s: duplicate field %q", c.ID, tab.ID, f.Name)
			}
			fields[f.Name] = true

			switch f.Type {
			case validation.FieldTypeNumber, validation.FieldTypeSelect:
			default:
				return fmt.Errorf("tool %s tab %s field %s: unknown type %q", c.ID, tab.ID, f.Name, f.Type)
			}
		}
	}
	return nil
}

// Registry holds the loaded tool definitions.
type Registry struct {
	tools map[string]*Config
}

// LoadEmbedded loads the tool definitions compiled into the binary.
func LoadEmbedded() (*Registry, error) {
	return load(definitions, "definitions")
}

// LoadDir loads every *.yaml file of dir, replacing the built-in set.
func LoadDir(dir string) (*Registry, error) {
	return load(os.DirFS(dir), ".")
}

func load(fsys fs.FS, dir string) (*Registry, error) {
	files, err := fs.Glob(fsys, path.Join(dir, "*.yaml"))
	if err != nil {
		return nil, fmt.Errorf("listing tool definitions: %w", err)
	}
	if len(files) == 0 {
		return nil, errors.New("no tool definitions found")
	}

	r := &Registry{tools: make(map[string]*Config, len(files))}
	for _, name := range files {
		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", name, err)
		}
		cfg, err := Parse(data)
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", name, err)
		}
		if _, dup := r.tools[cfg.ID]; dup {
			return nil, fmt.Errorf("%s: tool %q defined twice", name, cfg.ID)
		}
		r.tools[cfg.ID] = cfg
	}
	return r, nil
}

// Parse decodes and checks a single YAML tool definition. Unknown keys are
// rejected.
func Parse(data []byte) (*Config, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var cfg Config
	if err := dec.Decode(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (r *Registry) Lookup(id string) (*Config, bool) {
	cfg, ok := r.tools[id]
	return cfg, ok
}

// All returns every tool ordered by category, then ID.
func (r *Registry) All() []*Config {
	out := make([]*Config, 0, len(r.tools))
	for _, cfg := range r.tools {
		out = append(out, cfg)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Category != out[j].Category {
			return out[i].Category < out[j].Category
		}
		return out[i].ID < out[j].ID
	})
	return out
}
