// Package config loads dashboard settings from
// ~/.growth-dashboard/config.toml and GD_ prefixed environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bnema/growth-dashboard/internal/adapters/insight/gateway"
	"github.com/bnema/growth-dashboard/internal/history"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

const (
	EnvPrefix  = "GD"
	DirName    = ".growth-dashboard"
	FileName   = "config.toml"
	configType = "toml"

	BackendTOML   = "toml"
	BackendBadger = "badger"
)

const (
	KeyStoreBackend    = "store.backend"
	KeyStorePath       = "store.path"
	KeyHistoryCapacity = "history.capacity"
	KeyServerAddr      = "server.addr"
	KeyInsightsBaseURL = "insights.base_url"
	KeyInsightsModel   = "insights.model"
	KeyInsightsAPIKey  = "insights.api_key"
	KeyInsightsTimeout = "insights.timeout"
	KeyLogLevel        = "log.level"
	KeyLogFormat       = "log.format"
)

type Config struct {
	Store    StoreConfig    `mapstructure:"store"`
	History  HistoryConfig  `mapstructure:"history"`
	Server   ServerConfig   `mapstructure:"server"`
	Insights InsightsConfig `mapstructure:"insights"`
	Log      LogConfig      `mapstructure:"log"`
}

type StoreConfig struct {
	Backend string `mapstructure:"backend" validate:"oneof=toml badger"`
	// Path is the records file for toml and the database directory for
	// badger. Empty selects the backend default.
	Path string `mapstructure:"path"`
}

type HistoryConfig struct {
	Capacity int `mapstructure:"capacity" validate:"min=1"`
}

type ServerConfig struct {
	Addr string `mapstructure:"addr" validate:"required"`
}

type InsightsConfig struct {
	BaseURL string        `mapstructure:"base_url" validate:"required,url"`
	Model   string        `mapstructure:"model" validate:"required"`
	APIKey  string        `mapstructure:"api_key"`
	Timeout time.Duration `mapstructure:"timeout" validate:"gt=0"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"oneof=text json"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// DefaultDir is ~/.growth-dashboard.
func DefaultDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}

	return filepath.Join(homeDir, DirName), nil
}

// DefaultPath is ~/.growth-dashboard/config.toml.
func DefaultPath() (string, error) {
	dir, err := DefaultDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(dir, FileName), nil
}

// NewViper returns a viper instance with defaults and environment binding.
// When path is empty the default config file is used. A missing file is not
// an error.
func NewViper(path string) (*viper.Viper, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path == "" {
		defaultPath, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = defaultPath
	}

	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return v, nil
		}
		return nil, fmt.Errorf("stat config file: %w", err)
	}

	v.SetConfigFile(path)
	v.SetConfigType(configType)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config file %s: %w", path, err)
	}

	return v, nil
}

// Decode unmarshals and validates the settings held by v.
func Decode(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}

	cfg.Store.Backend = strings.ToLower(strings.TrimSpace(cfg.Store.Backend))
	cfg.Log.Level = strings.ToLower(strings.TrimSpace(cfg.Log.Level))
	cfg.Log.Format = strings.ToLower(strings.TrimSpace(cfg.Log.Format))

	if err := validate.Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Load is NewViper followed by Decode. The viper instance is returned too
// because the toml record store reads its path from it.
func Load(path string) (Config, *viper.Viper, error) {
	v, err := NewViper(path)
	if err != nil {
		return Config{}, nil, err
	}

	cfg, err := Decode(v)
	if err != nil {
		return Config{}, nil, err
	}

	return cfg, v, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(KeyStoreBackend, BackendTOML)
	v.SetDefault(KeyStorePath, "")
	v.SetDefault(KeyHistoryCapacity, history.DefaultCapacity)
	v.SetDefault(KeyServerAddr, "127.0.0.1:8080")
	v.SetDefault(KeyInsightsBaseURL, gateway.DefaultBaseURL)
	v.SetDefault(KeyInsightsModel, gateway.DefaultModel)
	v.SetDefault(KeyInsightsAPIKey, "")
	v.SetDefault(KeyInsightsTimeout, 60*time.Second)
	v.SetDefault(KeyLogLevel, "warn")
	v.SetDefault(KeyLogFormat, "text")
}
