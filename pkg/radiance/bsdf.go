package radiance

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// DefaultUpOrientation is unlikely to be perpendicular to any surface the
// material is applied to, which is all the default needs to guarantee.
var DefaultUpOrientation = [3]float64{0.01, 0.01, 1.00}

// angleBasisScanLimit bounds how far into the XML the angle basis is looked
// for; it sits in the file header well inside the first 100 lines.
const angleBasisScanLimit = 100

// BSDF is the Radiance BSDF material. The XML data set is referenced by
// path, never cached in memory.
type BSDF struct {
	Primitive
	XMLFile       string
	UpOrientation [3]float64
	Thickness     float64
	angleBasis    string
}

// NewBSDF creates a BSDF material from an XML data file. up sets the
// hemisphere the material faces (nil selects DefaultUpOrientation); name
// defaults to the XML file's base name.
func NewBSDF(xmlfile string, up *[3]float64, thickness float64, modifier, name string) (*BSDF, error) {
	info, err := os.Stat(xmlfile)
	if err != nil || info.IsDir() {
		return nil, fmt.Errorf("invalid BSDF path %q", xmlfile)
	}
	if !strings.EqualFold(filepath.Ext(xmlfile), ".xml") {
		return nil, fmt.Errorf("BSDF file %q is not an xml file", xmlfile)
	}

	xmlfile = filepath.Clean(xmlfile)
	if name == "" {
		base := filepath.Base(xmlfile)
		name = strings.TrimSuffix(base, filepath.Ext(base))
	}

	orientation := DefaultUpOrientation
	if up != nil {
		orientation = *up
	}

	basis, err := readAngleBasis(xmlfile)
	if err != nil {
		return nil, err
	}

	return &BSDF{
		Primitive:     newPrimitive(name, "BSDF", modifier),
		XMLFile:       xmlfile,
		UpOrientation: orientation,
		Thickness:     thickness,
		angleBasis:    basis,
	}, nil
}

// ParseBSDF creates a BSDF material from a rad string. Function-file,
// transform and additional transmission/reflection variants are not
// supported.
func ParseBSDF(s string) (*BSDF, error) {
	modifier, name, body, err := splitRadString(s, "BSDF")
	if err != nil {
		return nil, err
	}
	if len(body) < 9 || body[0] != "6" || body[6] != "." {
		return nil, fmt.Errorf("BSDF with function file or transform is not supported")
	}
	if body[7] != "0" || body[8] != "0" {
		return nil, fmt.Errorf("BSDF with additional transmissions or reflections is not supported")
	}

	thickness, err := strconv.ParseFloat(body[1], 64)
	if err != nil {
		return nil, fmt.Errorf("bad BSDF thickness %q: %w", body[1], err)
	}
	var up [3]float64
	for i, tok := range body[3:6] {
		v, err := strconv.ParseFloat(tok, 64)
		if err != nil {
			return nil, fmt.Errorf("bad BSDF up-orientation value %q: %w", tok, err)
		}
		up[i] = v
	}

	return NewBSDF(body[2], &up, thickness, modifier, name)
}

// AngleBasis returns the XML data set's angle basis: Klems full, Klems half,
// Klems quarter or tensor tree.
func (b *BSDF) AngleBasis() string { return b.angleBasis }

// RadString renders the full Radiance definition. Minimal folds the
// definition onto a single line.
func (b *BSDF) RadString(minimal bool) string {
	s := b.HeadLine() + fmt.Sprintf("6 %.3f %s %.3f %.3f %.3f .\n0\n0\n",
		b.Thickness, b.XMLFile,
		b.UpOrientation[0], b.UpOrientation[1], b.UpOrientation[2])
	if minimal {
		return strings.TrimSpace(strings.ReplaceAll(s, "\n", " "))
	}
	return s
}

// readAngleBasis pulls AngleBasisName out of the XML header, stripping the
// LBNL/ prefix.
func readAngleBasis(xmlfile string) (string, error) {
	f, err := os.Open(xmlfile)
	if err != nil {
		return "", fmt.Errorf("opening BSDF xml: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for count := 0; scanner.Scan() && count < angleBasisScanLimit; count++ {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, "<AngleBasisName>") {
			continue
		}
		basis := strings.TrimPrefix(line, "<AngleBasisName>")
		basis = strings.TrimSuffix(basis, "</AngleBasisName>")
		basis = strings.TrimPrefix(basis, "LBNL/")
		return strings.TrimSpace(basis), nil
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("reading BSDF xml: %w", err)
	}
	return "", fmt.Errorf("AngleBasisName not found in the first %d lines of %s", angleBasisScanLimit, xmlfile)
}
