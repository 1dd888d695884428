// Package radiance models Radiance scene-description primitives, currently
// the glass and BSDF materials, with validation, rad-string rendering and
// JSON forms.
package radiance

import (
	"fmt"
	"strings"
)

// DefaultModifier is the modifier applied when none is given.
const DefaultModifier = "void"

// Primitive carries the fields shared by every Radiance primitive.
type Primitive struct {
	Name     string
	Type     string
	Modifier string
}

func newPrimitive(name, typ, modifier string) Primitive {
	if modifier == "" {
		modifier = DefaultModifier
	}
	return Primitive{
		Name:     normalizeName(name),
		Type:     typ,
		Modifier: modifier,
	}
}

// normalizeName makes a name safe for a rad string. Radiance identifiers
// cannot contain whitespace.
func normalizeName(name string) string {
	return strings.ReplaceAll(strings.TrimSpace(name), " ", "_")
}

// HeadLine renders the "<modifier> <type> <name>" line that starts every
// primitive definition.
func (p Primitive) HeadLine() string {
	return fmt.Sprintf("%s %s %s\n", p.Modifier, p.Type, p.Name)
}

// splitRadString tokenizes a rad string and peels off the leading modifier,
// type and name, returning the remaining body tokens.
func splitRadString(s, wantType string) (modifier, name string, body []string, err error) {
	fields := strings.Fields(s)
	if len(fields) < 3 {
		return "", "", nil, fmt.Errorf("rad string too short: %q", s)
	}
	if !strings.EqualFold(fields[1], wantType) {
		return "", "", nil, fmt.Errorf("rad string is a %q primitive, want %q", fields[1], wantType)
	}
	return fields[0], fields[2], fields[3:], nil
}
