package radiance

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// DefaultRefraction is the index of refraction for ordinary glass.
// Use 1.4 for ETFE.
const DefaultRefraction = 1.52

// Glass is the Radiance glass material.
// http://radsite.lbl.gov/radiance/refer/ray.html#Glass
type Glass struct {
	Primitive
	RTransmittance float64
	GTransmittance float64
	BTransmittance float64
	Refraction     float64
}

// NewGlass creates a glass material. Transmittance values must be in [0, 1].
// An empty modifier defaults to "void"; a zero refraction defaults to 1.52.
func NewGlass(name string, r, g, b, refraction float64, modifier string) (*Glass, error) {
	for channel, v := range map[string]float64{"red": r, "green": g, "blue": b} {
		if v < 0 || v > 1 {
			return nil, fmt.Errorf("%s transmittance %v out of range [0, 1]", channel, v)
		}
	}
	if refraction == 0 {
		refraction = DefaultRefraction
	}
	return &Glass{
		Primitive:      newPrimitive(name, "glass", modifier),
		RTransmittance: r,
		GTransmittance: g,
		BTransmittance: b,
		Refraction:     refraction,
	}, nil
}

// NewGlassSingleTrans creates a glass material with one transmittance value
// applied to all three channels.
func NewGlassSingleTrans(name string, transmittance float64) (*Glass, error) {
	return NewGlass(name, transmittance, transmittance, transmittance, DefaultRefraction, "")
}

// ParseGlass creates a glass material from a rad string with a 6-field body
// (no refraction, defaulting to 1.52) or a 7-field body.
func ParseGlass(s string) (*Glass, error) {
	modifier, name, body, err := splitRadString(s, "glass")
	if err != nil {
		return nil, err
	}
	if len(body) != 6 && len(body) != 7 {
		return nil, fmt.Errorf("glass body has %d fields, want 6 or 7", len(body))
	}
	if body[0] != "0" || body[1] != "0" {
		return nil, fmt.Errorf("glass does not take string or integer arguments")
	}

	vals := make([]float64, 0, 4)
	for _, tok := range body[3:] {
		v, err := strconv.ParseFloat(tok, 64)
		if err != nil {
			return nil, fmt.Errorf("bad glass value %q: %w", tok, err)
		}
		vals = append(vals, v)
	}
	refraction := DefaultRefraction
	if len(vals) == 4 {
		refraction = vals[3]
	}
	return NewGlass(name, vals[0], vals[1], vals[2], refraction, modifier)
}

// Transmissivity converts a measured transmittance to the transmissivity a
// rad string carries. Transmittance is the total light transmitted through
// the pane including multiple reflections; transmissivity is the amount not
// absorbed in one traversal.
func Transmissivity(transmittance float64) float64 {
	if transmittance == 0 {
		return 0
	}
	return (math.Sqrt(0.8402528435+0.0072522239*transmittance*transmittance) -
		0.9166530661) / 0.0036261119 / transmittance
}

// AverageTransmittance is the luminance-weighted mean of the three channels.
func (g *Glass) AverageTransmittance() float64 {
	return 0.265*g.RTransmittance + 0.670*g.GTransmittance + 0.065*g.BTransmittance
}

// RadString renders the full Radiance definition. Minimal folds the
// definition onto a single line.
func (g *Glass) RadString(minimal bool) string {
	s := g.HeadLine() + fmt.Sprintf("0\n0\n4 %.3f %.3f %.3f %.3f",
		Transmissivity(g.RTransmittance),
		Transmissivity(g.GTransmittance),
		Transmissivity(g.BTransmittance),
		g.Refraction)
	if minimal {
		return strings.ReplaceAll(s, "\n", " ")
	}
	return s
}

type glassJSON struct {
	Type           string  `json:"type"`
	Name           string  `json:"name"`
	RTransmittance float64 `json:"r_transmittance"`
	GTransmittance float64 `json:"g_transmittance"`
	BTransmittance float64 `json:"b_transmittance"`
	Refraction     float64 `json:"refraction"`
	Modifier       string  `json:"modifier"`
}

// MarshalJSON implements json.Marshaler.
func (g *Glass) MarshalJSON() ([]byte, error) {
	return json.Marshal(glassJSON{
		Type:           "glass",
		Name:           g.Name,
		RTransmittance: g.RTransmittance,
		GTransmittance: g.GTransmittance,
		BTransmittance: g.BTransmittance,
		Refraction:     g.Refraction,
		Modifier:       g.Modifier,
	})
}

// UnmarshalJSON implements json.Unmarshaler, applying the same validation as
// NewGlass.
func (g *Glass) UnmarshalJSON(data []byte) error {
	var j glassJSON
	if err := json.Unmarshal(data, &j); err != nil {
		return err
	}
	if j.Type != "" && j.Type != "glass" {
		return fmt.Errorf("material type %q is not glass", j.Type)
	}
	parsed, err := NewGlass(j.Name, j.RTransmittance, j.GTransmittance, j.BTransmittance,
		j.Refraction, j.Modifier)
	if err != nil {
		return err
	}
	*g = *parsed
	return nil
}
