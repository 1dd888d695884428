package config

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// SQLiteProvider implements Provider for SQLite database configuration.
type SQLiteProvider struct {
	db     *sql.DB
	dbPath string
}

// NewSQLiteProvider creates a new SQLite configuration provider.
func NewSQLiteProvider(dbPath string) (*SQLiteProvider, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping SQLite database: %w", err)
	}

	return &SQLiteProvider{
		db:     db,
		dbPath: dbPath,
	}, nil
}

// LoadConfig loads the complete configuration from the SQLite database.
func (s *SQLiteProvider) LoadConfig() (*Config, error) {
	scenes, err := s.getScenes()
	if err != nil {
		return nil, fmt.Errorf("failed to load scenes: %w", err)
	}
	materials, err := s.getMaterials()
	if err != nil {
		return nil, fmt.Errorf("failed to load materials: %w", err)
	}

	config := &Config{Scenes: scenes, Materials: materials}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func (s *SQLiteProvider) getScenes() ([]SceneConfig, error) {
	query := `
		SELECT name, epw_file, north, hours, output_dir, no_reuse
		FROM scenes
		ORDER BY name`

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query scenes: %w", err)
	}
	defer rows.Close()

	var scenes []SceneConfig
	for rows.Next() {
		var sc SceneConfig
		var hours sql.NullString
		if err := rows.Scan(&sc.Name, &sc.EPWFile, &sc.North, &hours, &sc.OutputDir, &sc.NoReuse); err != nil {
			return nil, fmt.Errorf("failed to scan scene row: %w", err)
		}
		sc.Hours = hours.String
		scenes = append(scenes, sc)
	}
	return scenes, rows.Err()
}

func (s *SQLiteProvider) getMaterials() ([]MaterialConfig, error) {
	query := `
		SELECT type, name, modifier,
		       r_transmittance, g_transmittance, b_transmittance, refraction,
		       xml_file, thickness, up_x, up_y, up_z
		FROM materials
		ORDER BY name`

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query materials: %w", err)
	}
	defer rows.Close()

	var materials []MaterialConfig
	for rows.Next() {
		var mc MaterialConfig
		var modifier, xmlFile sql.NullString
		var upX, upY, upZ sql.NullFloat64
		if err := rows.Scan(&mc.Type, &mc.Name, &modifier,
			&mc.RTransmittance, &mc.GTransmittance, &mc.BTransmittance, &mc.Refraction,
			&xmlFile, &mc.Thickness, &upX, &upY, &upZ); err != nil {
			return nil, fmt.Errorf("failed to scan material row: %w", err)
		}
		mc.Modifier = modifier.String
		mc.XMLFile = xmlFile.String
		if upX.Valid || upY.Valid || upZ.Valid {
			mc.UpOrientation = []float64{upX.Float64, upY.Float64, upZ.Float64}
		}
		materials = append(materials, mc)
	}
	return materials, rows.Err()
}

// IsReadOnly returns false; the SQLite backend can persist changes.
func (s *SQLiteProvider) IsReadOnly() bool { return false }

// Close closes the database connection.
func (s *SQLiteProvider) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}
