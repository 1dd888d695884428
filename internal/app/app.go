// Package app wires configuration, weather data and the sky generators into
// a batch run.
package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/radsky/radsky/pkg/config"
	"github.com/radsky/radsky/pkg/radiance"
	"github.com/radsky/radsky/pkg/radiance/sky"
	"github.com/radsky/radsky/pkg/wea"
)

// App represents the main application
type App struct {
	configProvider config.Provider
	logger         *zap.SugaredLogger
}

// New creates a new application instance
func New(configProvider config.Provider, logger *zap.SugaredLogger) *App {
	return &App{
		configProvider: configProvider,
		logger:         logger,
	}
}

// Run generates every configured scene in order. Scenes are independent; a
// failing scene aborts the run so the failure is never buried in a long
// batch log.
func (a *App) Run(ctx context.Context) error {
	cfg, err := a.configProvider.LoadConfig()
	if err != nil {
		return err
	}

	materials, err := buildMaterials(cfg.Materials)
	if err != nil {
		return err
	}

	for _, scene := range cfg.Scenes {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if err := a.runScene(scene, materials); err != nil {
			return fmt.Errorf("scene %q: %w", scene.Name, err)
		}
	}
	return nil
}

func (a *App) runScene(scene config.SceneConfig, materials []string) error {
	logger := a.logger.With("scene", scene.Name, "run_id", uuid.NewString())

	weather, err := wea.Load(scene.EPWFile)
	if err != nil {
		return err
	}
	logger.Infow("loaded weather series",
		"station", weather.Location.StationID,
		"latitude", weather.Location.Latitude,
		"longitude", weather.Location.Longitude)

	hours, err := config.ParseHours(scene.Hours)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(scene.OutputDir, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	model := sky.NewSunpathModel(weather.Site(), scene.North)
	matrix := sky.NewSunMatrix(weather, model, scene.North, hours, logger)
	arts, err := matrix.Execute(scene.OutputDir, !scene.NoReuse)
	if err != nil {
		return err
	}
	logger.Infow("sun matrix ready",
		"analemma", arts.Analemma, "sun_list", arts.SunList, "matrix", arts.Matrix)

	if len(materials) > 0 {
		path := filepath.Join(scene.OutputDir, scene.Name+"_materials.rad")
		if err := writeMaterials(path, materials); err != nil {
			return err
		}
		logger.Infow("materials written", "file", path)
	}
	return nil
}

// buildMaterials renders the configured materials once; the same definitions
// apply to every scene.
func buildMaterials(configs []config.MaterialConfig) ([]string, error) {
	var rendered []string
	for _, mc := range configs {
		switch mc.Type {
		case "glass":
			g, err := radiance.NewGlass(mc.Name, mc.RTransmittance, mc.GTransmittance,
				mc.BTransmittance, mc.Refraction, mc.Modifier)
			if err != nil {
				return nil, fmt.Errorf("material %q: %w", mc.Name, err)
			}
			rendered = append(rendered, g.RadString(false))
		case "bsdf":
			var up *[3]float64
			if len(mc.UpOrientation) == 3 {
				up = &[3]float64{mc.UpOrientation[0], mc.UpOrientation[1], mc.UpOrientation[2]}
			}
			b, err := radiance.NewBSDF(mc.XMLFile, up, mc.Thickness, mc.Modifier, mc.Name)
			if err != nil {
				return nil, fmt.Errorf("material %q: %w", mc.Name, err)
			}
			rendered = append(rendered, b.RadString(false))
		default:
			return nil, fmt.Errorf("material %q has unsupported type %q", mc.Name, mc.Type)
		}
	}
	return rendered, nil
}

func writeMaterials(path string, rendered []string) error {
	var b strings.Builder
	for _, m := range rendered {
		b.WriteString(strings.TrimRight(m, "\n"))
		b.WriteString("\n\n")
	}
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("writing materials file: %w", err)
	}
	return nil
}
