package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the full simulator configuration.
type Config struct {
	Run     RunConfig     `yaml:"run"`
	Engine  EngineConfig  `yaml:"engine"`
	Paper   PaperConfig   `yaml:"paper"`
	Storage StorageConfig `yaml:"storage"`
	Log     LogConfig     `yaml:"log"`
}

// RunConfig describes what to backtest.
type RunConfig struct {
	InitialCash float64 `yaml:"initial_cash"`
	Strategy    string  `yaml:"strategy"`
	DataDir     string  `yaml:"data_dir"` // directory of <symbol>.csv bar files
}

// EngineConfig controls the simulation kernel: tick synthesis, spread,
// latency, and matching assumptions. One immutable value per run.
type EngineConfig struct {
	TicksPerBar     int     `yaml:"ticks_per_bar"`
	Path            string  `yaml:"path"`         // ohlc | olhc
	SpreadModel     string  `yaml:"spread_model"` // fixed | relative
	SpreadValue     float64 `yaml:"spread_value"`
	OrderLatencyMs  int     `yaml:"order_latency_ms"`
	ReportLatencyMs int     `yaml:"report_latency_ms"`
	LiquidityCap    float64 `yaml:"liquidity_cap"` // max qty per tick, 0 = unlimited
	FeeRate         float64 `yaml:"fee_rate"`      // proportional fee on notional
}

// PaperConfig controls the paced replay mode.
type PaperConfig struct {
	TicksPerSecond float64 `yaml:"ticks_per_second"`
}

// StorageConfig controls where run results are persisted.
type StorageConfig struct {
	DSN string `yaml:"dsn"` // path to the SQLite file, or ":memory:"
}

// LogConfig controls logging format and level.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // text | json
}

// Load reads the configuration from the YAML file and the .env file if one
// exists. Env values override YAML for the keys they cover.
func Load(path string) (*Config, error) {
	// Load .env if present (missing file is fine).
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config.Load: read %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config.Load: parse YAML: %w", err)
	}

	applyEnvOverrides(&cfg)
	setDefaults(&cfg)

	return &cfg, nil
}

// OrderLatency returns the order transmission delay as a time.Duration.
func (c *Config) OrderLatency() time.Duration {
	return time.Duration(c.Engine.OrderLatencyMs) * time.Millisecond
}

// ReportLatency returns the fill report delay as a time.Duration.
func (c *Config) ReportLatency() time.Duration {
	return time.Duration(c.Engine.ReportLatencyMs) * time.Millisecond
}

// applyEnvOverrides overrides values from environment variables when set.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
	if v := os.Getenv("BOTSIM_DSN"); v != "" {
		cfg.Storage.DSN = v
	}
}

// setDefaults fills required values with sensible defaults.
func setDefaults(cfg *Config) {
	if cfg.Run.InitialCash <= 0 {
		cfg.Run.InitialCash = 10000
	}
	if cfg.Run.Strategy == "" {
		cfg.Run.Strategy = "buy-hold"
	}
	if cfg.Run.DataDir == "" {
		cfg.Run.DataDir = "data"
	}
	if cfg.Engine.TicksPerBar <= 0 {
		cfg.Engine.TicksPerBar = 4
	}
	if cfg.Engine.Path == "" {
		cfg.Engine.Path = "ohlc"
	}
	if cfg.Engine.SpreadModel == "" {
		cfg.Engine.SpreadModel = "fixed"
	}
	if cfg.Paper.TicksPerSecond <= 0 {
		cfg.Paper.TicksPerSecond = 2
	}
	if cfg.Storage.DSN == "" {
		cfg.Storage.DSN = "botsim.db"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
}
