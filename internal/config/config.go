// Package config resolves weekgrid's settings from defaults, an optional
// YAML file, a .env file and WEEKGRID_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"

	"github.com/julianstephens/weekgrid/internal/constants"
	"github.com/julianstephens/weekgrid/internal/geometry"
	"github.com/julianstephens/weekgrid/internal/keyring"
	"github.com/julianstephens/weekgrid/internal/logger"
)

const (
	EnvPrefix       = "WEEKGRID"
	EnvDBConnection = "WEEKGRID_DB_CONNECTION"
)

var keyringGet = keyring.Get

type CacheConfig struct {
	Backend string `mapstructure:"backend" validate:"oneof=sqlite diskv postgres"`
	Path    string `mapstructure:"path" validate:"required_unless=Backend postgres"`
}

type Config struct {
	StartHour       int           `mapstructure:"start_hour" validate:"gte=0,lt=24"`
	EndHour         int           `mapstructure:"end_hour" validate:"gt=0,lte=24,gtfield=StartHour"`
	SnapMinutes     int           `mapstructure:"snap_minutes" validate:"oneof=1 2 3 4 5 6 10 12 15 20 30 60"`
	DefaultDuration int           `mapstructure:"default_duration" validate:"gt=0,lte=1440"`
	Endpoint        string        `mapstructure:"endpoint" validate:"omitempty,url,startswith=http"`
	HTTPTimeout     time.Duration `mapstructure:"http_timeout" validate:"gt=0"`
	Cache           CacheConfig   `mapstructure:"cache"`
	Notifications   bool          `mapstructure:"notifications"`
	Debug           bool          `mapstructure:"debug"`

	// File is the config file that was read, empty when none existed.
	File string `mapstructure:"-"`
}

// Options locate the files Load reads. Empty fields fall back to the
// defaults under ~/.config/weekgrid.
type Options struct {
	File    string
	EnvFile string
}

// Load resolves the configuration. Missing files are not an error.
func Load(opts Options) (*Config, error) {
	file, err := expand(opts.File, constants.DefaultConfigFile)
	if err != nil {
		return nil, err
	}
	envFile, err := expand(opts.EnvFile, filepath.Join(filepath.Dir(file), ".env"))
	if err != nil {
		return nil, err
	}

	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to read %s: %w", envFile, err)
	}

	v := newViper()
	cfg := &Config{}
	if _, err := os.Stat(file); err == nil {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", file, err)
		}
		cfg.File = file
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if cfg.Cache.Backend != constants.CacheBackendPostgres {
		if cfg.Cache.Path, err = homedir.Expand(cfg.Cache.Path); err != nil {
			return nil, err
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logger.Debug("Config loaded", "file", cfg.File, "backend", cfg.Cache.Backend, "online", cfg.Endpoint != "")
	return cfg, nil
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault(constants.SettingStartHour, constants.DefaultStartHour)
	v.SetDefault(constants.SettingEndHour, constants.DefaultEndHour)
	v.SetDefault(constants.SettingSnapMinutes, constants.DefaultSnapMinutes)
	v.SetDefault(constants.SettingDefaultDuration, constants.DefaultDurationMinutes)
	v.SetDefault(constants.SettingEndpoint, "")
	v.SetDefault(constants.SettingHTTPTimeout, time.Duration(constants.DefaultHTTPTimeoutSec)*time.Second)
	v.SetDefault(constants.SettingCacheBackend, constants.CacheBackendSQLite)
	v.SetDefault(constants.SettingCachePath, constants.DefaultCachePath)
	v.SetDefault(constants.SettingNotifications, constants.DefaultNotifications)
	v.SetDefault(constants.SettingDebug, false)
	return v
}

// Validate checks every field and reports the first few failures by their
// config key.
func (c *Config) Validate() error {
	err := validator.New().Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s: failed %q (got %v)", fe.Namespace(), fe.Tag(), fe.Value()))
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}

// Grid returns the display window and snap unit.
func (c *Config) Grid() geometry.Grid {
	return geometry.Grid{
		StartHour:   c.StartHour,
		EndHour:     c.EndHour,
		SnapMinutes: c.SnapMinutes,
	}
}

// Dir is the directory that holds logs, backups and the default cache.
func (c *Config) Dir() string {
	if c.File != "" {
		return filepath.Dir(c.File)
	}
	dir, err := homedir.Expand(constants.DefaultConfigDir)
	if err != nil {
		return "."
	}
	return dir
}

// ResolveEndpoint returns the configured endpoint, falling back to the one
// stored in the OS keyring. An empty result means offline mode.
func (c *Config) ResolveEndpoint() string {
	if c.Endpoint != "" {
		return c.Endpoint
	}
	endpoint, err := keyringGet(keyring.Endpoint)
	if err != nil {
		if !errors.Is(err, keyring.ErrNotFound) {
			logger.Warn("Failed to read endpoint from keyring", "error", err)
		}
		return ""
	}
	return endpoint
}

// ResolveConnString returns the PostgreSQL connection string from the
// environment or the OS keyring.
func ResolveConnString() (string, error) {
	if s := os.Getenv(EnvDBConnection); s != "" {
		return s, nil
	}
	s, err := keyringGet(keyring.ConnectionString)
	if err != nil {
		return "", fmt.Errorf("no connection string in %s or keyring: %w", EnvDBConnection, err)
	}
	return s, nil
}

// WriteDefault writes a config file holding the default settings to path
// unless one exists.
func WriteDefault(path string) (bool, error) {
	path, err := expand(path, constants.DefaultConfigFile)
	if err != nil {
		return false, err
	}
	if _, err := os.Stat(path); err == nil {
		return false, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return false, fmt.Errorf("failed to create config directory: %w", err)
	}
	v := newViper()
	v.Set(constants.SettingHTTPTimeout, (time.Duration(constants.DefaultHTTPTimeoutSec) * time.Second).String())
	if err := v.WriteConfigAs(path); err != nil {
		return false, fmt.Errorf("failed to write config file: %w", err)
	}
	return true, nil
}

func expand(path, fallback string) (string, error) {
	if path == "" {
		path = fallback
	}
	return homedir.Expand(path)
}
