// Package config loads pipeline configuration from a YAML file with
// environment overrides for secrets.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// envOddsAPIKey overrides the odds API key from the environment so the key
// never has to live in the config file.
const envOddsAPIKey = "ORACLE_ODDS_API_KEY"

// Duration wraps time.Duration so YAML can express values as "30m" or "10s".
type Duration time.Duration

// UnmarshalYAML decodes a duration string.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("parsing duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Config is the full pipeline configuration.
type Config struct {
	LogPath  string   `yaml:"log_path"`
	Profile  string   `yaml:"profile"` // "composite" or "legacy"
	HTTPAddr string   `yaml:"http_addr"`
	Interval Duration `yaml:"interval"` // daemon run cadence

	Stats StatsConfig `yaml:"stats"`
	Odds  OddsConfig  `yaml:"odds"`
}

// StatsConfig configures the stat provider client.
type StatsConfig struct {
	BaseURL string   `yaml:"base_url"`
	Timeout Duration `yaml:"timeout"`
	Retries int      `yaml:"retries"`
}

// OddsConfig configures the market line client.
type OddsConfig struct {
	APIKey   string `yaml:"api_key"`
	BaseURL  string `yaml:"base_url"`
	SportKey string `yaml:"sport_key"`
}

// Default returns the baseline configuration.
func Default() *Config {
	return &Config{
		LogPath:  "nba_predictions_log.json",
		Profile:  "composite",
		HTTPAddr: ":8090",
		Interval: Duration(time.Hour),
		Stats: StatsConfig{
			Timeout: Duration(10 * time.Second),
			Retries: 2,
		},
	}
}

// Load reads configuration from a YAML file, layered over defaults. An empty
// path returns defaults; a named file that is missing or malformed is an
// error. The odds API key environment variable wins over the file.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config %s: %w", path, err)
		}
	}

	if key := os.Getenv(envOddsAPIKey); key != "" {
		cfg.Odds.APIKey = key
	}
	cfg.fillDefaults()
	return cfg, nil
}

// fillDefaults restores baseline values the file zeroed out.
func (c *Config) fillDefaults() {
	base := Default()
	if c.LogPath == "" {
		c.LogPath = base.LogPath
	}
	if c.Profile == "" {
		c.Profile = base.Profile
	}
	if c.HTTPAddr == "" {
		c.HTTPAddr = base.HTTPAddr
	}
	if c.Interval <= 0 {
		c.Interval = base.Interval
	}
	if c.Stats.Timeout <= 0 {
		c.Stats.Timeout = base.Stats.Timeout
	}
	if c.Stats.Retries <= 0 {
		c.Stats.Retries = base.Stats.Retries
	}
}
