package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

// Config 是服务的全部配置。
type Config struct {
	App     AppConfig     `mapstructure:"app"`
	Store   StoreConfig   `mapstructure:"store"`
	Journal JournalConfig `mapstructure:"journal"`
}

type AppConfig struct {
	Env      string `mapstructure:"env"`
	LogLevel string `mapstructure:"log_level"`
	LogPath  string `mapstructure:"log_path"`
	Listen   string `mapstructure:"listen"`
}

type StoreConfig struct {
	Path string `mapstructure:"path"`
}

type JournalConfig struct {
	ContractMultiplier int `mapstructure:"contract_multiplier"`
	ExpiryWarningDays  int `mapstructure:"expiry_warning_days"`
}

// Load reads the YAML config at path. A missing file is not an error: the
// service runs on defaults so a bare binary works out of the box.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	path = strings.TrimSpace(path)
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			v.SetConfigFile(path)
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("reading config file failed (%s): %w", path, err)
			}
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("stat config file failed (%s): %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, func(dc *mapstructure.DecoderConfig) {
		dc.WeaklyTypedInput = true
	}); err != nil {
		return nil, fmt.Errorf("parsing config failed: %w", err)
	}
	cfg.applyDefaults()
	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if strings.TrimSpace(c.App.Env) == "" {
		c.App.Env = "dev"
	}
	if strings.TrimSpace(c.App.LogLevel) == "" {
		c.App.LogLevel = "info"
	}
	if strings.TrimSpace(c.App.Listen) == "" {
		c.App.Listen = ":8977"
	}
	if strings.TrimSpace(c.Store.Path) == "" {
		c.Store.Path = "data/journal.db"
	}
	if c.Journal.ContractMultiplier == 0 {
		c.Journal.ContractMultiplier = 100
	}
	if c.Journal.ExpiryWarningDays == 0 {
		c.Journal.ExpiryWarningDays = 7
	}
}

func validate(c *Config) error {
	var errs []string
	if c.Journal.ContractMultiplier < 0 {
		errs = append(errs, "journal.contract_multiplier must be positive")
	}
	if c.Journal.ExpiryWarningDays < 0 {
		errs = append(errs, "journal.expiry_warning_days must be positive")
	}
	if !strings.Contains(c.App.Listen, ":") {
		errs = append(errs, fmt.Sprintf("app.listen is not a listen address: %q", c.App.Listen))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %s", strings.Join(errs, "; "))
	}
	return nil
}

// Watch re-reads the config file on change and invokes onChange with the
// fresh config. Invalid edits are reported to onError and otherwise
// ignored; the running config stays as-is.
func Watch(path string, onChange func(*Config), onError func(error)) error {
	path = strings.TrimSpace(path)
	if path == "" || onChange == nil {
		return nil
	}
	if _, err := os.Stat(path); err != nil {
		// Nothing to watch when running on pure defaults.
		return nil
	}
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return err
	}
	v.OnConfigChange(func(_ fsnotify.Event) {
		cfg, err := Load(path)
		if err != nil {
			if onError != nil {
				onError(err)
			}
			return
		}
		onChange(cfg)
	})
	v.WatchConfig()
	return nil
}
