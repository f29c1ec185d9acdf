// Package config loads service configuration from defaults, an optional YAML
// file named by STATEMENT_CONFIG, and environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"statement-pdf/internal/statement/layout"
	"statement-pdf/internal/statement/style"
)

// AssetsConfig selects the asset sources, consulted in the order
// directory, redis, postgres, letterhead.
type AssetsConfig struct {
	Dir         string        `yaml:"dir"`
	RedisURL    string        `yaml:"redis_url"`
	RedisPrefix string        `yaml:"redis_prefix"`
	RedisTTL    time.Duration `yaml:"redis_ttl"`
	DatabaseURL string        `yaml:"database_url"`
	Letterhead  bool          `yaml:"letterhead"`
	Cache       bool          `yaml:"cache"`
}

// HTTPConfig holds server settings.
type HTTPConfig struct {
	Addr              string        `yaml:"addr"`
	MaxBodyBytes      int64         `yaml:"max_body_bytes"`
	ReadHeaderTimeout time.Duration `yaml:"read_header_timeout"`
	ReadTimeout       time.Duration `yaml:"read_timeout"`
	WriteTimeout      time.Duration `yaml:"write_timeout"`
	RenderTimeout     time.Duration `yaml:"render_timeout"`
	JWTSecret         string        `yaml:"jwt_secret"`
}

// PageConfig overrides the document geometry.
type PageConfig struct {
	Size        string  `yaml:"size"`
	Orientation string  `yaml:"orientation"`
	Unit        string  `yaml:"unit"`
	Margin      float64 `yaml:"margin"`
}

// Config is the full service configuration.
type Config struct {
	HTTP   HTTPConfig                      `yaml:"http"`
	Assets AssetsConfig                    `yaml:"assets"`
	Page   PageConfig                      `yaml:"page"`
	Styles map[style.Role]style.Descriptor `yaml:"styles"`
	Log    LogConfig                       `yaml:"log"`
}

// LogConfig selects the zap preset.
type LogConfig struct {
	Development bool `yaml:"development"`
}

// Load builds and validates the configuration.
func Load() (Config, error) {
	cfg, err := Read()
	if err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		HTTP: HTTPConfig{
			Addr:              ":8080",
			MaxBodyBytes:      4 << 20,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      30 * time.Second,
			RenderTimeout:     20 * time.Second,
		},
		Assets: AssetsConfig{
			RedisTTL: 24 * time.Hour,
			Cache:    true,
		},
		Page: PageConfig{
			Size:        layout.DefaultGeometry.Size,
			Orientation: layout.DefaultGeometry.Orientation,
			Unit:        layout.DefaultGeometry.Unit,
			Margin:      layout.DefaultGeometry.Margins.Left,
		},
	}
}

// Read applies the YAML file named by STATEMENT_CONFIG and environment
// overrides to Defaults without validating the result.
func Read() (Config, error) {
	cfg := Defaults()
	if path := os.Getenv("STATEMENT_CONFIG"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, err
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	cfg.HTTP.Addr = getenvDefault("HTTP_ADDR", cfg.HTTP.Addr)
	cfg.HTTP.MaxBodyBytes = int64(getenvIntDefault("HTTP_MAX_BODY_BYTES", int(cfg.HTTP.MaxBodyBytes)))
	cfg.HTTP.ReadTimeout = getenvDuration("HTTP_READ_TIMEOUT", cfg.HTTP.ReadTimeout)
	cfg.HTTP.WriteTimeout = getenvDuration("HTTP_WRITE_TIMEOUT", cfg.HTTP.WriteTimeout)
	cfg.HTTP.RenderTimeout = getenvDuration("RENDER_TIMEOUT", cfg.HTTP.RenderTimeout)
	cfg.HTTP.JWTSecret = getenvDefault("AUTH_JWT_SECRET", getenvDefault("JWT_SECRET", cfg.HTTP.JWTSecret))

	cfg.Assets.Dir = getenvDefault("ASSETS_DIR", cfg.Assets.Dir)
	cfg.Assets.RedisURL = getenvDefault("REDIS_URL", cfg.Assets.RedisURL)
	cfg.Assets.RedisPrefix = getenvDefault("REDIS_ASSET_PREFIX", cfg.Assets.RedisPrefix)
	cfg.Assets.RedisTTL = getenvDuration("REDIS_ASSET_TTL", cfg.Assets.RedisTTL)
	cfg.Assets.DatabaseURL = getenvDefault("DATABASE_URL", getenvDefault("PG_DSN", cfg.Assets.DatabaseURL))
	cfg.Assets.Letterhead = getenvBool("ASSETS_LETTERHEAD", cfg.Assets.Letterhead)
	cfg.Assets.Cache = getenvBool("ASSETS_CACHE", cfg.Assets.Cache)

	cfg.Log.Development = getenvBool("LOG_DEVELOPMENT", cfg.Log.Development)

	return cfg, nil
}

// Validate checks settings that would make the service unusable.
func (c Config) Validate() error {
	if strings.TrimSpace(c.HTTP.Addr) == "" {
		return errors.New("config: http addr required")
	}
	if c.HTTP.MaxBodyBytes <= 0 {
		return errors.New("config: max body bytes must be positive")
	}
	if c.Assets.Dir == "" && c.Assets.RedisURL == "" && c.Assets.DatabaseURL == "" && !c.Assets.Letterhead {
		return errors.New("config: no asset source configured")
	}
	if c.Page.Orientation != "P" && c.Page.Orientation != "L" {
		return fmt.Errorf("config: page orientation %q must be P or L", c.Page.Orientation)
	}
	return c.StyleTable().Validate()
}

// Geometry returns the configured page setup.
func (c Config) Geometry() layout.Geometry {
	g := layout.DefaultGeometry
	if c.Page.Size != "" {
		g.Size = c.Page.Size
	}
	if c.Page.Orientation != "" {
		g.Orientation = c.Page.Orientation
	}
	if c.Page.Unit != "" {
		g.Unit = c.Page.Unit
	}
	if c.Page.Margin > 0 {
		m := c.Page.Margin
		g.Margins = layout.Margins{Left: m, Top: m, Right: m, Bottom: m}
	}
	return g
}

// StyleTable returns the default style table with YAML overrides applied.
func (c Config) StyleTable() style.Table {
	return style.DefaultTable().Merge(c.Styles)
}

func getenvDefault(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getenvIntDefault(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getenvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getenvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}
