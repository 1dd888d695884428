package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestParseHours(t *testing.T) {
	tests := []struct {
		name    string
		spec    string
		want    []int
		wantErr bool
	}{
		{"empty means default", "", nil, false},
		{"single hour", "12", []int{12}, false},
		{"comma list", "2,5,9", []int{2, 5, 9}, false},
		{"range", "10-13", []int{10, 11, 12, 13}, false},
		{"mixed and deduplicated", "5, 3-6, 9", []int{3, 4, 5, 6, 9}, false},
		{"full year endpoints", "0,8759", []int{0, 8759}, false},
		{"reversed range", "9-3", nil, true},
		{"negative", "-4", nil, true},
		{"out of range", "8760", nil, true},
		{"garbage", "noon", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseHours(tt.spec)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseHours(%q) error = %v, wantErr %v", tt.spec, err, tt.wantErr)
			}
			if err == nil && !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseHours(%q) = %v, want %v", tt.spec, got, tt.want)
			}
		})
	}
}

func TestYAMLProvider(t *testing.T) {
	content := `
scenes:
  - name: sf_summer
    epw_file: testdata/sf.epw
    north: 20
    hours: "3000-3010"
    output_dir: /tmp/out
  - name: sf_full_year
    epw_file: testdata/sf.epw
    output_dir: /tmp/out
materials:
  - type: glass
    name: generic glass
    r_transmittance: 0.65
    g_transmittance: 0.65
    b_transmittance: 0.65
  - type: bsdf
    name: blinds
    xml_file: testdata/blinds.xml
    thickness: 0.05
    up_orientation: [0, 1, 0]
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	provider := NewYAMLProvider(path)
	defer provider.Close()

	if !provider.IsReadOnly() {
		t.Error("YAML provider should be read-only")
	}

	cfg, err := provider.LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if len(cfg.Scenes) != 2 {
		t.Fatalf("got %d scenes, want 2", len(cfg.Scenes))
	}
	s := cfg.Scenes[0]
	if s.Name != "sf_summer" || s.North != 20 || s.Hours != "3000-3010" {
		t.Errorf("scene 0 = %+v", s)
	}
	if cfg.Scenes[1].North != 0 || cfg.Scenes[1].Hours != "" {
		t.Errorf("scene 1 defaults not applied: %+v", cfg.Scenes[1])
	}

	if len(cfg.Materials) != 2 {
		t.Fatalf("got %d materials, want 2", len(cfg.Materials))
	}
	if cfg.Materials[1].UpOrientation[1] != 1 {
		t.Errorf("bsdf up_orientation = %v", cfg.Materials[1].UpOrientation)
	}
}

func TestYAMLProviderValidation(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"no scenes", "scenes: []\n"},
		{"missing epw", "scenes:\n  - name: a\n    output_dir: /tmp\n"},
		{"missing output dir", "scenes:\n  - name: a\n    epw_file: a.epw\n"},
		{"duplicate names", "scenes:\n  - name: a\n    epw_file: a.epw\n    output_dir: /tmp\n  - name: a\n    epw_file: b.epw\n    output_dir: /tmp\n"},
		{"bad hours", "scenes:\n  - name: a\n    epw_file: a.epw\n    output_dir: /tmp\n    hours: \"9-3\"\n"},
		{"bad material type", "scenes:\n  - name: a\n    epw_file: a.epw\n    output_dir: /tmp\nmaterials:\n  - type: plastic\n    name: p\n"},
		{"bsdf without xml", "scenes:\n  - name: a\n    epw_file: a.epw\n    output_dir: /tmp\nmaterials:\n  - type: bsdf\n    name: b\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(path, []byte(tt.content), 0o644); err != nil {
				t.Fatal(err)
			}
			if _, err := NewYAMLProvider(path).LoadConfig(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}
