// Package config loads service configuration from config/config.yaml with
// environment-variable overrides. A missing file is not an error: the
// service runs on defaults so a bare checkout starts without ceremony.
package config

import (
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/YuminosukeSato/svrkit/pkg/errors"
)

// DefaultPath is where Load looks when no explicit path is given.
const DefaultPath = "config/config.yaml"

// DefaultMaxUploadBytes caps uploaded files at 50 MiB.
const DefaultMaxUploadBytes int64 = 50 << 20

type Config struct {
	Server ServerConfig `yaml:"server"`
	Upload UploadConfig `yaml:"upload"`
	Log    LogConfig    `yaml:"log"`
	CORS   CORSConfig   `yaml:"cors"`
}

type ServerConfig struct {
	Port int `yaml:"port"`
}

type UploadConfig struct {
	MaxBytes int64 `yaml:"max_bytes"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

type CORSConfig struct {
	AllowOrigins []string `yaml:"allow_origins"`
}

// Default returns the configuration used when no file or overrides exist.
func Default() *Config {
	return &Config{
		Server: ServerConfig{Port: 8080},
		Upload: UploadConfig{MaxBytes: DefaultMaxUploadBytes},
		Log:    LogConfig{Level: "info"},
		CORS:   CORSConfig{AllowOrigins: []string{"*"}},
	}
}

// Load reads the yaml file at path (DefaultPath when empty), then applies
// SVRKIT_* environment overrides on top.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath
	}

	cfg := Default()
	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// run on defaults
	case err != nil:
		return nil, errors.Wrapf(err, "read config file %s", path)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, errors.Wrapf(err, "unmarshal config file %s", path)
		}
	}

	cfg.applyEnv()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("SVRKIT_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Server.Port = port
		}
	}
	if v := os.Getenv("SVRKIT_MAX_UPLOAD_BYTES"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			c.Upload.MaxBytes = n
		}
	}
	if v := os.Getenv("SVRKIT_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
}

func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return errors.NewValidationError("server.port", "must be in (0, 65535]", c.Server.Port)
	}
	if c.Upload.MaxBytes <= 0 {
		return errors.NewValidationError("upload.max_bytes", "must be positive", c.Upload.MaxBytes)
	}
	return nil
}
