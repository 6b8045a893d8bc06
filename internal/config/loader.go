// Package config provides configuration loading and management for fondsnet-import.
package config

import (
	"fmt"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

const (
	// DefaultConfigPath is the default path to the config file relative to
	// the repository root.
	DefaultConfigPath = ".fondsnet/config.yaml"

	// EnvPrefix is the prefix for environment variable overrides.
	EnvPrefix = "FONDSNET"
)

// LoadError describes a failure to load the configuration file.
type LoadError struct {
	Path    string
	Message string
	Err     error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// Loader handles loading configuration from files and environment.
type Loader struct {
	v *viper.Viper
}

// NewLoader creates a new configuration loader.
func NewLoader() *Loader {
	v := viper.New()
	v.SetConfigType("yaml")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return &Loader{v: v}
}

// LoadConfig loads configuration from the specified path, applies defaults,
// merges environment variables, and validates the result.
//
// The pipeline usually runs in CI with no config file at all, so a missing
// file at the default path yields the built-in defaults. A missing file at
// an explicitly requested path is an error.
func (l *Loader) LoadConfig(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultConfigPath
	}

	cfg := NewConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		if explicit {
			return nil, &LoadError{Path: path, Message: "config file not found", Err: err}
		}
		l.applyEnvOverrides(cfg)
		if err := cfg.Validate(); err != nil {
			return nil, &LoadError{Path: path, Message: "configuration validation failed", Err: err}
		}
		return cfg, nil
	}

	l.v.SetConfigFile(path)
	if err := l.v.ReadInConfig(); err != nil {
		return nil, &LoadError{Path: path, Message: "failed to read config file", Err: err}
	}

	if err := l.v.Unmarshal(cfg, viperDecodeHook); err != nil {
		return nil, &LoadError{Path: path, Message: "failed to parse config file", Err: err}
	}

	l.applyEnvOverrides(cfg)
	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, &LoadError{Path: path, Message: "configuration validation failed", Err: err}
	}

	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides to the config.
// Only the settings that vary between environments are overridable.
func (l *Loader) applyEnvOverrides(cfg *Config) {
	if v := os.Getenv(EnvPrefix + "_SFTP_HOST"); v != "" {
		cfg.SFTP.Host = v
	}
	if v := os.Getenv(EnvPrefix + "_SFTP_USER"); v != "" {
		cfg.SFTP.User = v
	}
	if v := os.Getenv(EnvPrefix + "_SFTP_REMOTE_PATH"); v != "" {
		cfg.SFTP.RemotePath = v
	}
	if v := os.Getenv(EnvPrefix + "_SFTP_CONNECT_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.SFTP.ConnectTimeout = d
		}
	}

	if v := os.Getenv(EnvPrefix + "_S3_REGION"); v != "" {
		cfg.S3.Region = v
	}
	if v := os.Getenv(EnvPrefix + "_S3_BUCKET"); v != "" {
		cfg.S3.Bucket = v
	}

	if v := os.Getenv(EnvPrefix + "_GIT_BASE_BRANCH"); v != "" {
		cfg.Git.BaseBranch = v
	}
	if v := os.Getenv(EnvPrefix + "_GIT_FEATURE_BRANCH"); v != "" {
		cfg.Git.FeatureBranch = v
	}

	// The repository is taken from the standard Actions variable unless the
	// config file pins it.
	if cfg.GitHub.Repository == "" {
		cfg.GitHub.Repository = os.Getenv("GITHUB_REPOSITORY")
	}
}

// Load is a convenience wrapper around NewLoader().LoadConfig(path).
func Load(path string) (*Config, error) {
	return NewLoader().LoadConfig(path)
}

// viperDecodeHook configures mapstructure decoding for config values,
// in particular time.Duration fields from "30s"-style strings.
func viperDecodeHook(dc *mapstructure.DecoderConfig) {
	dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
		durationFromIntHook,
	)
}

// durationFromIntHook decodes bare integers as seconds for duration fields.
func durationFromIntHook(f reflect.Type, t reflect.Type, data interface{}) (interface{}, error) {
	if t != reflect.TypeOf(time.Duration(0)) {
		return data, nil
	}
	switch f.Kind() {
	case reflect.Int, reflect.Int64:
		return time.Duration(reflect.ValueOf(data).Int()) * time.Second, nil
	default:
		return data, nil
	}
}
