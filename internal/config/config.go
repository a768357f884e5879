// Package config loads and validates artframed's configuration: a YAML
// file read through viper, overridable by ARTFRAMED_-prefixed
// environment variables, with fatal validation at boot and an optional
// reload-with-change-notification path for operators running without a
// restart.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Display describes the panel's physical characteristics.
type Display struct {
	Driver    string `mapstructure:"driver" yaml:"driver" json:"driver"`
	Width     int    `mapstructure:"width" yaml:"width" json:"width"`
	Height    int    `mapstructure:"height" yaml:"height" json:"height"`
	Rotation  int    `mapstructure:"rotation" yaml:"rotation" json:"rotation"`
	ColorMode string `mapstructure:"color_mode" yaml:"color_mode" json:"color_mode"`
}

// HTTP describes the API server's listener and optional response cache.
type HTTP struct {
	ListenAddr string `mapstructure:"listen_addr" yaml:"listen_addr" json:"listen_addr"`
	RedisAddr  string `mapstructure:"redis_addr" yaml:"redis_addr" json:"redis_addr"`
}

// Config is the fully resolved, validated configuration for one
// artframed instance.
type Config struct {
	Timezone   string  `mapstructure:"timezone" yaml:"timezone" json:"timezone"`
	DataDir    string  `mapstructure:"data_dir" yaml:"data_dir" json:"data_dir"`
	PluginsDir string  `mapstructure:"plugins_dir" yaml:"plugins_dir" json:"plugins_dir"`
	LogLevel   string  `mapstructure:"log_level" yaml:"log_level" json:"log_level"`
	Display    Display `mapstructure:"display" yaml:"display" json:"display"`
	HTTP       HTTP    `mapstructure:"http" yaml:"http" json:"http"`
}

// defaults mirrors what a fresh install should boot with, absent a
// config file at all.
func defaults(v *viper.Viper) {
	v.SetDefault("timezone", "UTC")
	v.SetDefault("data_dir", "./data")
	v.SetDefault("plugins_dir", "./plugins")
	v.SetDefault("log_level", "info")
	v.SetDefault("display.driver", "mock")
	v.SetDefault("display.width", 800)
	v.SetDefault("display.height", 480)
	v.SetDefault("display.rotation", 0)
	v.SetDefault("display.color_mode", "grayscale")
	v.SetDefault("http.listen_addr", ":8080")
}

// Load reads configuration from path (if it exists), layers
// ARTFRAMED_-prefixed environment variables on top, and validates the
// result. A missing config file is not an error: defaults plus
// environment overrides are a legitimate way to run the daemon.
func Load(path string) (*Config, error) {
	v := newViper(path)
	if err := v.ReadInConfig(); err != nil {
		_, notFound := err.(viper.ConfigFileNotFoundError)
		if !notFound && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("read config file %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func newViper(path string) *viper.Viper {
	v := viper.New()
	defaults(v)
	if path != "" {
		v.SetConfigFile(path)
	}
	v.SetEnvPrefix("ARTFRAMED")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Validate checks the invariants the daemon cannot safely boot without:
// a loadable IANA timezone and a usable data directory. These are the
// fatal-at-boot checks; everything else degrades gracefully.
func Validate(cfg *Config) error {
	if cfg.Timezone == "" {
		return fmt.Errorf("timezone must not be empty")
	}
	if _, err := time.LoadLocation(cfg.Timezone); err != nil {
		return fmt.Errorf("invalid timezone %q: %w", cfg.Timezone, err)
	}
	if cfg.DataDir == "" {
		return fmt.Errorf("data_dir must not be empty")
	}
	if cfg.Display.Width <= 0 || cfg.Display.Height <= 0 {
		return fmt.Errorf("display width/height must be positive, got %dx%d", cfg.Display.Width, cfg.Display.Height)
	}
	return nil
}
