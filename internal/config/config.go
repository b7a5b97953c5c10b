package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/MikeSquared-Agency/Pulse/internal/scoring"
)

type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Hermes  HermesConfig  `yaml:"hermes"`
	Input   InputConfig   `yaml:"input"`
	Scoring ScoringConfig `yaml:"scoring"`
	Logging LoggingConfig `yaml:"logging"`
}

type ServerConfig struct {
	Port              int   `yaml:"port"`
	MetricsPort       int   `yaml:"metrics_port"`
	MaxUploadBytes    int64 `yaml:"max_upload_bytes"`
	RequestsPerMinute int   `yaml:"requests_per_minute"`
}

type HermesConfig struct {
	URL string `yaml:"url"`
}

// InputConfig names the CSV columns holding the person id and the check-in date.
type InputConfig struct {
	PersonColumn string `yaml:"person_column"`
	DateColumn   string `yaml:"date_column"`
}

type ScoringConfig struct {
	TotalWindowDays  int            `yaml:"total_window_days"`
	RecentWindowDays int            `yaml:"recent_window_days"`
	Weights          ScoringWeights `yaml:"weights"`
}

type ScoringWeights struct {
	LowEngagement      int `yaml:"low_engagement"`
	RecentDrop         int `yaml:"recent_drop"`
	ConsecutiveAbsence int `yaml:"consecutive_absence"`
	Irregularity       int `yaml:"irregularity"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// ScoringOptions converts the scoring section into engine options.
func (c *Config) ScoringOptions() scoring.Options {
	return scoring.Options{
		TotalWindowDays:  c.Scoring.TotalWindowDays,
		RecentWindowDays: c.Scoring.RecentWindowDays,
		Weights: scoring.WeightSet{
			LowEngagement:      c.Scoring.Weights.LowEngagement,
			RecentDrop:         c.Scoring.Weights.RecentDrop,
			ConsecutiveAbsence: c.Scoring.Weights.ConsecutiveAbsence,
			Irregularity:       c.Scoring.Weights.Irregularity,
		},
	}
}

// Validate checks the settings that would otherwise fail later at run time.
func (c *Config) Validate() error {
	if c.Input.PersonColumn == "" || c.Input.DateColumn == "" {
		return fmt.Errorf("input columns must be set (person=%q, date=%q)", c.Input.PersonColumn, c.Input.DateColumn)
	}
	if c.Input.PersonColumn == c.Input.DateColumn {
		return fmt.Errorf("person and date columns must differ, both are %q", c.Input.PersonColumn)
	}
	if err := c.ScoringOptions().Validate(); err != nil {
		return fmt.Errorf("scoring: %w", err)
	}
	return nil
}

func Load(path string) (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:              8700,
			MetricsPort:       8701,
			MaxUploadBytes:    10 << 20,
			RequestsPerMinute: 120,
		},
		Input: InputConfig{
			PersonColumn: "aluno_id",
			DateColumn:   "data",
		},
		Scoring: ScoringConfig{
			TotalWindowDays:  28,
			RecentWindowDays: 14,
			Weights: ScoringWeights{
				LowEngagement:      30,
				RecentDrop:         30,
				ConsecutiveAbsence: 25,
				Irregularity:       15,
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnv(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("PULSE_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = n
		}
	}
	if v := os.Getenv("PULSE_METRICS_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Server.MetricsPort = n
		}
	}
	if v := os.Getenv("PULSE_MAX_UPLOAD_BYTES"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.Server.MaxUploadBytes = n
		}
	}
	if v := os.Getenv("PULSE_HERMES_URL"); v != "" {
		cfg.Hermes.URL = v
	}
	if v := os.Getenv("PULSE_PERSON_COLUMN"); v != "" {
		cfg.Input.PersonColumn = v
	}
	if v := os.Getenv("PULSE_DATE_COLUMN"); v != "" {
		cfg.Input.DateColumn = v
	}
	if v := os.Getenv("PULSE_TOTAL_WINDOW_DAYS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Scoring.TotalWindowDays = n
		}
	}
	if v := os.Getenv("PULSE_RECENT_WINDOW_DAYS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Scoring.RecentWindowDays = n
		}
	}
	if v := os.Getenv("PULSE_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("PULSE_LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
}
