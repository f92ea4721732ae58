// Package config holds the simulation configuration: navmesh grid
// parameters, agent defaults and infrastructure settings. No parsing
// logic beyond plain yaml lives here.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Sim is the top-level configuration for the AI simulation runner.
type Sim struct {
	LogLevel string `yaml:"log_level"` // debug | info | warn | error

	// TickRate is the fixed simulation step frequency in Hz.
	TickRate int `yaml:"tick_rate"`

	Nav      NavConfig      `yaml:"nav"`
	Agents   AgentDefaults  `yaml:"agents"`
	Debug    DebugConfig    `yaml:"debug"`
	Database DatabaseConfig `yaml:"database"`
}

// NavConfig describes the uniform grid the navigation mesh covers.
type NavConfig struct {
	BoundsMin [3]float64 `yaml:"bounds_min"`
	BoundsMax [3]float64 `yaml:"bounds_max"`
	CellSize  float64    `yaml:"cell_size"`
}

// AgentDefaults are applied to every agent at creation; behaviors may
// override them per agent afterwards.
type AgentDefaults struct {
	MaxSpeed         float64 `yaml:"max_speed"`
	Acceleration     float64 `yaml:"acceleration"`
	StoppingDistance float64 `yaml:"stopping_distance"`
	VisionRange      float64 `yaml:"vision_range"`
	VisionAngle      float64 `yaml:"vision_angle"` // degrees, full cone
}

// DebugConfig controls the websocket debug visualization server.
type DebugConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

// DatabaseConfig holds PostgreSQL connection parameters for agent
// snapshot persistence. Persistence is optional; it is skipped entirely
// when Enabled is false.
type DatabaseConfig struct {
	Enabled  bool   `yaml:"enabled"`
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

// Default returns a Sim config with sensible defaults: a 40x40x2 world,
// the stock agent parameters and no external services.
func Default() Sim {
	return Sim{
		LogLevel: "info",
		TickRate: 30,
		Nav: NavConfig{
			BoundsMin: [3]float64{0, 0, 0},
			BoundsMax: [3]float64{40, 40, 2},
			CellSize:  2,
		},
		Agents: AgentDefaults{
			MaxSpeed:         5,
			Acceleration:     10,
			StoppingDistance: 0.5,
			VisionRange:      20,
			VisionAngle:      120,
		},
		Debug: DebugConfig{
			Enabled: false,
			Addr:    "127.0.0.1:8420",
		},
		Database: DatabaseConfig{
			Enabled: false,
			Host:    "127.0.0.1",
			Port:    5432,
			User:    "aicore",
			DBName:  "aicore",
			SSLMode: "disable",
		},
	}
}

// Load reads a yaml config file over the defaults: fields absent from the
// file keep their default values.
func Load(path string) (Sim, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if cfg.TickRate <= 0 {
		return cfg, fmt.Errorf("config %s: tick_rate must be positive", path)
	}
	if cfg.Nav.CellSize <= 0 {
		return cfg, fmt.Errorf("config %s: nav.cell_size must be positive", path)
	}
	return cfg, nil
}
