// Package config loads the world-generation configuration from YAML.
// Scalar tokens that need domain parsing (colors, ranges, vectors) are kept
// as strings in the YAML layer and converted by Build methods, which collect
// every malformed value as a named diagnostic instead of stopping at the
// first one.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// World holds all configuration for the world generator.
type World struct {
	LogLevel string `yaml:"log_level"`

	Buildings Buildings `yaml:"buildings"`
	Terrain   Terrain   `yaml:"terrain"`
	Lights    []Light   `yaml:"lights"`

	// Layout persistence (optional)
	PersistLayout bool           `yaml:"persist_layout"`
	Database      DatabaseConfig `yaml:"database"`
}

// Buildings configures the building generator.
type Buildings struct {
	Count       int     `yaml:"count"`
	PlaceRadius float32 `yaml:"place_radius"`
	MaxDeltaZ   float32 `yaml:"max_delta_z"`
	Conform     string  `yaml:"conform"`    // "none", "flatten", or "drop"
	SizeRange   string  `yaml:"size_range"` // "x1 x2 y1 y2 z1 z2"
	PosRange    string  `yaml:"pos_range"`  // "x1 x2 y1 y2 z1 z2"

	Materials []Material `yaml:"materials"`
}

// Material configures one building material.
type Material struct {
	SideTexture    string  `yaml:"side_tid"`
	SideNormalMap  string  `yaml:"side_nm_tid"`
	SideTScale     float32 `yaml:"side_tscale"`
	RoofTexture    string  `yaml:"roof_tid"`
	RoofNormalMap  string  `yaml:"roof_nm_tid"`
	RoofTScale     float32 `yaml:"roof_tscale"`
	SideColor      string  `yaml:"side_color"`     // exact color "r g b a"
	SideColorMin   string  `yaml:"side_color_min"` // range lower bound
	SideColorMax   string  `yaml:"side_color_max"`
	SideGrayscale  float32 `yaml:"side_color_grayscale_rand"`
	RoofColor      string  `yaml:"roof_color"`
	RoofColorMin   string  `yaml:"roof_color_min"`
	RoofColorMax   string  `yaml:"roof_color_max"`
	RoofGrayscale  float32 `yaml:"roof_color_grayscale_rand"`
}

// Terrain configures the analytic terrain used by the standalone generator.
type Terrain struct {
	Amplitude  float32 `yaml:"amplitude"`
	Frequency  float32 `yaml:"frequency"`
	WaterLevel float32 `yaml:"water_level"`
}

// Light configures one placed light source.
type Light struct {
	Kind    string  `yaml:"kind"` // "point", "spot", or "line"
	Pos     string  `yaml:"pos"`  // "x y z"
	Pos2    string  `yaml:"pos2"` // line lights only
	Dir     string  `yaml:"dir"`  // spot lights only
	Radius  float32 `yaml:"radius"`
	RInner  float32 `yaml:"r_inner"`
	BWidth  float32 `yaml:"bwidth"`
	Color   string  `yaml:"color"`
	Dynamic bool    `yaml:"dynamic"`

	// Optional trigger
	ActDist     float32 `yaml:"act_dist"`
	AutoOnTime  float32 `yaml:"auto_on_time"`  // seconds
	AutoOffTime float32 `yaml:"auto_off_time"` // seconds
	RequiresAct bool    `yaml:"requires_action"`

	// Optional binding to a static collision volume at pos
	BindToVolume bool `yaml:"bind_to_volume"`
}

// DatabaseConfig holds PostgreSQL connection parameters.
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

// DefaultWorld returns a World config with sensible defaults.
func DefaultWorld() World {
	return World{
		LogLevel: "info",
		Buildings: Buildings{
			Count:     100,
			Conform:   "drop",
			SizeRange: "1 4 1 4 2 8",
			PosRange:  "-100 100 -100 100 0 0",
		},
		Terrain: Terrain{
			Amplitude:  4.0,
			Frequency:  0.05,
			WaterLevel: -1.0,
		},
		Database: DatabaseConfig{
			Host:     "127.0.0.1",
			Port:     5432,
			User:     "cityscape",
			Password: "cityscape",
			DBName:   "cityscape",
			SSLMode:  "disable",
		},
	}
}

// LoadWorld loads the world config from a YAML file.
// If the file doesn't exist, returns defaults.
func LoadWorld(path string) (World, error) {
	cfg := DefaultWorld()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}

	return cfg, nil
}
