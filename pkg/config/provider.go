// Package config loads radsky run configuration from YAML files or SQLite
// databases through a common Provider interface.
package config

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Provider is the interface configuration backends implement.
type Provider interface {
	// LoadConfig loads the complete configuration.
	LoadConfig() (*Config, error)

	// IsReadOnly reports whether the backend can persist changes.
	IsReadOnly() bool

	Close() error
}

// Config is the complete run configuration.
type Config struct {
	Scenes    []SceneConfig    `json:"scenes" yaml:"scenes"`
	Materials []MaterialConfig `json:"materials,omitempty" yaml:"materials,omitempty"`
}

// SceneConfig describes one sun-matrix generation run.
type SceneConfig struct {
	Name      string  `json:"name" yaml:"name"`
	EPWFile   string  `json:"epw_file" yaml:"epw_file"`
	North     float64 `json:"north,omitempty" yaml:"north,omitempty"`
	Hours     string  `json:"hours,omitempty" yaml:"hours,omitempty"` // e.g. "0-8759" or "3000-4000,5000"
	OutputDir string  `json:"output_dir" yaml:"output_dir"`
	NoReuse   bool    `json:"no_reuse,omitempty" yaml:"no_reuse,omitempty"`
}

// MaterialConfig describes one Radiance material rendered alongside each
// scene's sky files.
type MaterialConfig struct {
	Type           string    `json:"type" yaml:"type"` // "glass" or "bsdf"
	Name           string    `json:"name" yaml:"name"`
	Modifier       string    `json:"modifier,omitempty" yaml:"modifier,omitempty"`
	RTransmittance float64   `json:"r_transmittance,omitempty" yaml:"r_transmittance,omitempty"`
	GTransmittance float64   `json:"g_transmittance,omitempty" yaml:"g_transmittance,omitempty"`
	BTransmittance float64   `json:"b_transmittance,omitempty" yaml:"b_transmittance,omitempty"`
	Refraction     float64   `json:"refraction,omitempty" yaml:"refraction,omitempty"`
	XMLFile        string    `json:"xml_file,omitempty" yaml:"xml_file,omitempty"`
	Thickness      float64   `json:"thickness,omitempty" yaml:"thickness,omitempty"`
	UpOrientation  []float64 `json:"up_orientation,omitempty" yaml:"up_orientation,omitempty"`
}

// Validate checks the structural requirements shared by all backends.
func (c *Config) Validate() error {
	if len(c.Scenes) == 0 {
		return fmt.Errorf("configuration has no scenes")
	}
	seen := map[string]bool{}
	for i, s := range c.Scenes {
		if s.Name == "" {
			return fmt.Errorf("scene %d has no name", i)
		}
		if seen[s.Name] {
			return fmt.Errorf("duplicate scene name %q", s.Name)
		}
		seen[s.Name] = true
		if s.EPWFile == "" {
			return fmt.Errorf("scene %q has no epw_file", s.Name)
		}
		if s.OutputDir == "" {
			return fmt.Errorf("scene %q has no output_dir", s.Name)
		}
		if _, err := ParseHours(s.Hours); err != nil {
			return fmt.Errorf("scene %q: %w", s.Name, err)
		}
	}
	for i, m := range c.Materials {
		switch m.Type {
		case "glass", "bsdf":
		default:
			return fmt.Errorf("material %d has unsupported type %q", i, m.Type)
		}
		if m.Type == "bsdf" && m.XMLFile == "" {
			return fmt.Errorf("bsdf material %q has no xml_file", m.Name)
		}
		if n := len(m.UpOrientation); n != 0 && n != 3 {
			return fmt.Errorf("material %q up_orientation has %d values, want 3", m.Name, n)
		}
	}
	return nil
}

// ParseHours expands an hours specification into a sorted, de-duplicated
// hour-of-year list. The specification is a comma-separated mix of single
// indices and inclusive "start-end" ranges; empty means the caller's default
// (all hours) and returns nil.
func ParseHours(spec string) ([]int, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return nil, nil
	}

	set := map[int]bool{}
	for _, token := range strings.Split(spec, ",") {
		token = strings.TrimSpace(token)
		start, end, isRange := strings.Cut(token, "-")
		lo, err := strconv.Atoi(strings.TrimSpace(start))
		if err != nil {
			return nil, fmt.Errorf("bad hour %q: %w", token, err)
		}
		hi := lo
		if isRange {
			hi, err = strconv.Atoi(strings.TrimSpace(end))
			if err != nil {
				return nil, fmt.Errorf("bad hour range %q: %w", token, err)
			}
		}
		if lo > hi {
			return nil, fmt.Errorf("hour range %q is reversed", token)
		}
		if lo < 0 || hi > 8759 {
			return nil, fmt.Errorf("hour range %q outside [0, 8759]", token)
		}
		for h := lo; h <= hi; h++ {
			set[h] = true
		}
	}

	hours := make([]int, 0, len(set))
	for h := range set {
		hours = append(hours, h)
	}
	sort.Ints(hours)
	return hours, nil
}
