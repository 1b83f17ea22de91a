package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Style    string         `yaml:"style"`
	Camera   CameraConfig   `yaml:"camera"`
	Source   SourceConfig   `yaml:"source"`
	Layers   LayerConfig    `yaml:"layers"`
	Lighting LightingConfig `yaml:"lighting"`
	MeshPath string         `yaml:"mesh_path"`
	HTTP     HTTPConfig     `yaml:"http"`
	Cache    CacheConfig    `yaml:"cache"`
}

type CameraConfig struct {
	Center  [2]float64 `yaml:"center"`
	Zoom    float64    `yaml:"zoom"`
	Pitch   float64    `yaml:"pitch"`
	MinZoom float64    `yaml:"min_zoom"`
}

type SourceConfig struct {
	Path     string `yaml:"path"`
	MySQLDSN string `yaml:"mysql_dsn"`
	Table    string `yaml:"table"`
}

type LayerConfig struct {
	MinZoom    float64 `yaml:"min_zoom"`
	MaxZoom    float64 `yaml:"max_zoom"`
	TrunkColor string  `yaml:"trunk_color"`
	CrownColor string  `yaml:"crown_color"`
}

type LightingConfig struct {
	Ambient     float64           `yaml:"ambient"`
	Directional DirectionalConfig `yaml:"directional"`
}

type DirectionalConfig struct {
	Color     string     `yaml:"color"`
	Intensity float64    `yaml:"intensity"`
	Direction [3]float64 `yaml:"direction"`
}

type HTTPConfig struct {
	Listen string `yaml:"listen"`
}

type CacheConfig struct {
	// MaxEntries bounds the record cache; 0 keeps every record.
	MaxEntries int `yaml:"max_entries"`
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Camera.MinZoom <= 0 {
		c.Camera.MinZoom = 8
	}
	if c.Camera.Zoom < c.Camera.MinZoom {
		return fmt.Errorf("camera.zoom %.2f below camera.min_zoom %.2f", c.Camera.Zoom, c.Camera.MinZoom)
	}
	if c.Camera.Pitch < 0 || c.Camera.Pitch > 85 {
		return fmt.Errorf("camera.pitch must be within [0, 85]")
	}
	lon, lat := c.Camera.Center[0], c.Camera.Center[1]
	if lon < -180 || lon > 180 || lat < -85.05 || lat > 85.05 {
		return fmt.Errorf("camera.center [%v, %v] out of range", lon, lat)
	}
	if c.Source.MySQLDSN != "" && c.Source.Table == "" {
		c.Source.Table = "trees"
	}
	if c.Layers.MinZoom == 0 && c.Layers.MaxZoom == 0 {
		c.Layers.MinZoom, c.Layers.MaxZoom = 15, 22.1
	}
	if c.Layers.MinZoom > c.Layers.MaxZoom {
		return fmt.Errorf("layers.min_zoom cannot exceed layers.max_zoom")
	}
	for name, col := range map[string]string{
		"layers.trunk_color":         c.Layers.TrunkColor,
		"layers.crown_color":         c.Layers.CrownColor,
		"lighting.directional.color": c.Lighting.Directional.Color,
	} {
		if !isValidHexColor(col) {
			return fmt.Errorf("%s must be a hex RGB value", name)
		}
	}
	if c.Lighting.Ambient < 0 || c.Lighting.Directional.Intensity < 0 {
		return fmt.Errorf("lighting intensities cannot be negative")
	}
	if c.Lighting.Directional.Direction == ([3]float64{}) {
		return fmt.Errorf("lighting.directional.direction cannot be zero")
	}
	if c.HTTP.Listen == "" {
		c.HTTP.Listen = ":5000"
	}
	if c.Cache.MaxEntries < 0 {
		return fmt.Errorf("cache.max_entries cannot be negative")
	}
	return nil
}

func isValidHexColor(s string) bool {
	if len(s) != 7 || s[0] != '#' {
		return false
	}
	for _, ch := range s[1:] {
		switch {
		case ch >= '0' && ch <= '9':
		case ch >= 'a' && ch <= 'f':
		case ch >= 'A' && ch <= 'F':
		default:
			return false
		}
	}
	return true
}
