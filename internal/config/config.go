// Package config loads arv settings from file, environment and flags.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/evcraddock/arv/internal/comps"
	"github.com/evcraddock/arv/internal/provider"
)

// EnvPrefix prefixes every environment override, e.g. ARV_PROPWIRE_API_KEY.
const EnvPrefix = "ARV"

// Config holds the full application configuration.
type Config struct {
	Provider string         `yaml:"provider" json:"provider" mapstructure:"provider"`
	Propwire ProviderConfig `yaml:"propwire" json:"propwire" mapstructure:"propwire"`
	ATTOM    ProviderConfig `yaml:"attom" json:"attom" mapstructure:"attom"`
	Search   SearchConfig   `yaml:"search" json:"search" mapstructure:"search"`
	Store    StoreConfig    `yaml:"store" json:"store" mapstructure:"store"`
	Server   ServerConfig   `yaml:"server" json:"server" mapstructure:"server"`
	Log      LogConfig      `yaml:"log" json:"log" mapstructure:"log"`
}

// ProviderConfig holds credentials and limits for one comps provider.
type ProviderConfig struct {
	APIKey            string        `yaml:"api_key,omitempty" json:"api_key,omitempty" mapstructure:"api_key"`
	BaseURL           string        `yaml:"base_url,omitempty" json:"base_url,omitempty" mapstructure:"base_url"`
	RequestsPerSecond float64       `yaml:"requests_per_second" json:"requests_per_second" mapstructure:"requests_per_second"`
	Timeout           time.Duration `yaml:"timeout" json:"timeout" mapstructure:"timeout"`
}

// SearchConfig controls the comps search window and how many matches are averaged.
type SearchConfig struct {
	SqftTolerance float64 `yaml:"sqft_tolerance" json:"sqft_tolerance" mapstructure:"sqft_tolerance"`
	LotTolerance  float64 `yaml:"lot_tolerance" json:"lot_tolerance" mapstructure:"lot_tolerance"`
	RadiusMiles   float64 `yaml:"radius_miles" json:"radius_miles" mapstructure:"radius_miles"`
	LookbackDays  int     `yaml:"lookback_days" json:"lookback_days" mapstructure:"lookback_days"`
	Limit         int     `yaml:"limit" json:"limit" mapstructure:"limit"`
}

// StoreConfig configures the optional valuation history database.
type StoreConfig struct {
	Path string `yaml:"path,omitempty" json:"path,omitempty" mapstructure:"path"`
	Save bool   `yaml:"save" json:"save" mapstructure:"save"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port     int    `yaml:"port" json:"port" mapstructure:"port"`
	APIToken string `yaml:"api_token,omitempty" json:"api_token,omitempty" mapstructure:"api_token"`
}

// LogConfig configures structured logging.
type LogConfig struct {
	Level  string `yaml:"level" json:"level" mapstructure:"level"`
	Format string `yaml:"format" json:"format" mapstructure:"format"`
}

// MarshalJSON writes Timeout as a duration string, the same form the config file uses.
func (p ProviderConfig) MarshalJSON() ([]byte, error) {
	type plain ProviderConfig
	return json.Marshal(struct {
		plain
		Timeout string `json:"timeout"`
	}{plain(p), p.Timeout.String()})
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	d := comps.DefaultOptions()
	v.SetDefault("provider", string(comps.ProviderPropwire))
	for _, p := range []string{"propwire", "attom"} {
		v.SetDefault(p+".api_key", "")
		v.SetDefault(p+".base_url", "")
		v.SetDefault(p+".requests_per_second", 2.0)
		v.SetDefault(p+".timeout", "30s")
	}
	v.SetDefault("search.sqft_tolerance", d.SqftTolerance)
	v.SetDefault("search.lot_tolerance", d.LotTolerance)
	v.SetDefault("search.radius_miles", d.RadiusMiles)
	v.SetDefault("search.lookback_days", d.LookbackDays)
	v.SetDefault("search.limit", d.Limit)
	v.SetDefault("store.path", "")
	v.SetDefault("store.save", false)
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.api_token", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
}

// NewViper returns a viper instance with defaults and ARV_ environment overrides.
func NewViper() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads the config file (if any) into v and decodes it.
// An empty path searches ~/.config/arv and the working directory;
// a missing file there is not an error.
func Load(v *viper.Viper, path string) (*Config, error) {
	if path != "" {
		v.SetConfigFile(path)
	} else {
		if dir, err := defaultDir(); err == nil {
			v.AddConfigPath(dir)
		}
		v.AddConfigPath(".")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	return decode(v)
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks settings that would otherwise fail on every request.
func (c *Config) Validate() error {
	if _, ok := comps.ParseProvider(c.Provider); !ok {
		return fmt.Errorf("invalid provider %q (want propwire or attom)", c.Provider)
	}
	if math.IsNaN(c.Search.SqftTolerance) || c.Search.SqftTolerance < 0 || c.Search.SqftTolerance >= 1 {
		return fmt.Errorf("search.sqft_tolerance must be in [0, 1), got %g", c.Search.SqftTolerance)
	}
	if math.IsNaN(c.Search.LotTolerance) || c.Search.LotTolerance < 0 || c.Search.LotTolerance >= 1 {
		return fmt.Errorf("search.lot_tolerance must be in [0, 1), got %g", c.Search.LotTolerance)
	}
	if c.Search.Limit < 1 {
		return fmt.Errorf("search.limit must be at least 1, got %d", c.Search.Limit)
	}
	return nil
}

// ProviderName returns the configured provider.
func (c *Config) ProviderName() comps.Provider {
	p, _ := comps.ParseProvider(c.Provider)
	return p
}

// Options converts the search settings for the comps engine.
func (c *Config) Options() comps.Options {
	return comps.Options{
		SqftTolerance: c.Search.SqftTolerance,
		LotTolerance:  c.Search.LotTolerance,
		RadiusMiles:   c.Search.RadiusMiles,
		LookbackDays:  c.Search.LookbackDays,
		Limit:         c.Search.Limit,
	}
}

// ProviderConfig returns adapter settings for p.
func (c *Config) ProviderConfig(p comps.Provider) provider.Config {
	pc := c.Propwire
	if p == comps.ProviderATTOM {
		pc = c.ATTOM
	}
	return provider.Config{
		APIKey:            pc.APIKey,
		BaseURL:           pc.BaseURL,
		RequestsPerSecond: pc.RequestsPerSecond,
		Timeout:           pc.Timeout,
	}
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	cfg, err := decode(NewViper())
	if err != nil {
		panic(err) // defaults are static
	}
	return cfg
}

// DefaultPath returns ~/.config/arv/config.yaml.
func DefaultPath() (string, error) {
	dir, err := defaultDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

func defaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("finding home directory: %w", err)
	}
	return filepath.Join(home, ".config", "arv"), nil
}

// Save writes cfg as YAML, creating the directory if needed.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}
