// Package config loads the server and client settings from a YAML file,
// an optional .env file and BILLED_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/subosito/gotenv"
)

// Storage drivers
const (
	StorageLocal = "local"
	StorageS3    = "s3"
)

// EnvPrefix prefixes every environment override
const EnvPrefix = "BILLED"

// Config holds all application configuration
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Client   ClientConfig   `mapstructure:"client"`
	Worker   WorkerConfig   `mapstructure:"worker"`
	Logger   LoggerConfig   `mapstructure:"logger"`
}

// ServerConfig holds HTTP API settings
type ServerConfig struct {
	Host           string        `mapstructure:"host"`
	Port           int           `mapstructure:"port"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	MaxUploadBytes int64         `mapstructure:"max_upload_bytes"`
	// PublicURL is the base of the receipt URLs handed back to clients
	PublicURL string `mapstructure:"public_url"`
}

// DatabaseConfig holds the bills database settings
type DatabaseConfig struct {
	Path            string        `mapstructure:"path"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// StorageConfig selects where receipts are kept
type StorageConfig struct {
	Driver   string   `mapstructure:"driver"`
	LocalDir string   `mapstructure:"local_dir"`
	S3       S3Config `mapstructure:"s3"`
}

// S3Config holds the bucket settings used by the s3 driver
type S3Config struct {
	Region    string `mapstructure:"region"`
	Bucket    string `mapstructure:"bucket"`
	Prefix    string `mapstructure:"prefix"`
	Endpoint  string `mapstructure:"endpoint"`
	PathStyle bool   `mapstructure:"path_style"`
}

// ClientConfig holds billctl settings
type ClientConfig struct {
	APIURL      string        `mapstructure:"api_url"`
	SessionPath string        `mapstructure:"session_path"`
	Offline     bool          `mapstructure:"offline"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

// WorkerConfig holds the orphan sweeper settings
type WorkerConfig struct {
	Enabled        bool          `mapstructure:"enabled"`
	SweepInterval  time.Duration `mapstructure:"sweep_interval"`
	OrphanMaxAge   time.Duration `mapstructure:"orphan_max_age"`
	SweepBatchSize int           `mapstructure:"sweep_batch_size"`
}

// LoggerConfig holds logger configuration
type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	OutputPath string `mapstructure:"output_path"`
	Format     string `mapstructure:"format"`
}

// Load reads configuration from configPath and the environment.
// An empty configPath uses defaults and environment only.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if err := bindEnvVars(v); err != nil {
		return nil, fmt.Errorf("failed to bind environment: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// LoadDotEnv exports the variables of each existing file into the process
// environment. Missing files are skipped and variables already set win.
func LoadDotEnv(paths ...string) error {
	for _, path := range paths {
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := gotenv.Load(path); err != nil {
			return fmt.Errorf("failed to load %s: %w", path, err)
		}
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.max_upload_bytes", 10<<20)
	v.SetDefault("server.public_url", "http://localhost:8080")

	v.SetDefault("database.path", "data/billed.db")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", 5*time.Minute)

	v.SetDefault("storage.driver", StorageLocal)
	v.SetDefault("storage.local_dir", "data/receipts")
	v.SetDefault("storage.s3.region", "eu-west-3")
	v.SetDefault("storage.s3.bucket", "")
	v.SetDefault("storage.s3.prefix", "receipts")
	v.SetDefault("storage.s3.endpoint", "")
	v.SetDefault("storage.s3.path_style", false)

	v.SetDefault("client.api_url", "http://localhost:8080")
	v.SetDefault("client.session_path", "data/session.db")
	v.SetDefault("client.offline", false)
	v.SetDefault("client.timeout", 30*time.Second)

	v.SetDefault("worker.enabled", true)
	v.SetDefault("worker.sweep_interval", 10*time.Minute)
	v.SetDefault("worker.orphan_max_age", 24*time.Hour)
	v.SetDefault("worker.sweep_batch_size", 50)

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.output_path", "stderr")
	v.SetDefault("logger.format", "json")
}

// bindEnvVars maps the conventional AWS variables onto the s3 settings
func bindEnvVars(v *viper.Viper) error {
	bindings := map[string][]string{
		"storage.s3.region":   {"BILLED_STORAGE_S3_REGION", "AWS_REGION"},
		"storage.s3.endpoint": {"BILLED_STORAGE_S3_ENDPOINT", "AWS_ENDPOINT_URL_S3"},
		"client.api_url":      {"BILLED_CLIENT_API_URL", "BILLED_API_URL"},
	}
	for key, envs := range bindings {
		if err := v.BindEnv(append([]string{key}, envs...)...); err != nil {
			return err
		}
	}
	return nil
}

// Validate checks the settings common to server and client
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535")
	}
	if c.Server.MaxUploadBytes <= 0 {
		return fmt.Errorf("server.max_upload_bytes must be positive")
	}

	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}

	switch c.Storage.Driver {
	case StorageLocal:
		if c.Storage.LocalDir == "" {
			return fmt.Errorf("storage.local_dir is required for the local driver")
		}
	case StorageS3:
		if c.Storage.S3.Bucket == "" {
			return fmt.Errorf("storage.s3.bucket is required for the s3 driver")
		}
	default:
		return fmt.Errorf("storage.driver must be %q or %q, got %q", StorageLocal, StorageS3, c.Storage.Driver)
	}

	if c.Client.SessionPath == "" {
		return fmt.Errorf("client.session_path is required")
	}
	if !c.Client.Offline && c.Client.APIURL == "" {
		return fmt.Errorf("client.api_url is required unless client.offline is set")
	}

	if c.Worker.Enabled {
		if c.Worker.SweepInterval <= 0 {
			return fmt.Errorf("worker.sweep_interval must be positive")
		}
		if c.Worker.OrphanMaxAge <= 0 {
			return fmt.Errorf("worker.orphan_max_age must be positive")
		}
	}

	switch c.Logger.Format {
	case "json", "console":
	default:
		return fmt.Errorf("logger.format must be json or console, got %q", c.Logger.Format)
	}

	return nil
}
