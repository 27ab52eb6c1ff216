package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration for the service
type Config struct {
	ListenAddr    string
	DataPath      string
	DBPath        string
	TickSeconds   int
	ScaleFactor   float64
	MaxVessels    int
	Seed          int64
	RandomCourse  bool
	RandomSpeed   bool
	SnapshotLimit int
	Log           LogConfig
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string
	Format string
}

// Load loads configuration from config file and environment variables
func Load() (*Config, error) {
	v := viper.New()

	// Set defaults
	v.SetDefault("listen_addr", ":8080")
	v.SetDefault("data_path", "trip9.csv")
	v.SetDefault("db_path", "shiptrack.db")
	v.SetDefault("tick_seconds", 3)
	v.SetDefault("scale_factor", 0.0002)
	v.SetDefault("max_vessels", 500)
	v.SetDefault("seed", 42)
	v.SetDefault("random_course", false)
	v.SetDefault("random_speed", false)
	v.SetDefault("snapshot_limit", 0)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.AddConfigPath("/etc/shiptrack")
	v.AddConfigPath(".")

	// Check for config file path from environment variable
	if configPath := os.Getenv("SHIPTRACK_CONFIG_PATH"); configPath != "" {
		v.SetConfigFile(configPath)
	}

	// Read config file (if it exists)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK - we'll use defaults + env vars
	}

	v.SetEnvPrefix("SHIPTRACK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		ListenAddr:    v.GetString("listen_addr"),
		DataPath:      v.GetString("data_path"),
		DBPath:        v.GetString("db_path"),
		TickSeconds:   v.GetInt("tick_seconds"),
		ScaleFactor:   v.GetFloat64("scale_factor"),
		MaxVessels:    v.GetInt("max_vessels"),
		Seed:          v.GetInt64("seed"),
		RandomCourse:  v.GetBool("random_course"),
		RandomSpeed:   v.GetBool("random_speed"),
		SnapshotLimit: v.GetInt("snapshot_limit"),
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
		},
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// validate validates the configuration values
func validate(cfg *Config) error {
	if cfg.ListenAddr == "" {
		return fmt.Errorf("listen_addr is required")
	}

	if cfg.DataPath == "" {
		return fmt.Errorf("data_path is required")
	}

	if cfg.TickSeconds <= 0 {
		return fmt.Errorf("tick_seconds must be greater than 0")
	}

	if cfg.ScaleFactor <= 0 {
		return fmt.Errorf("scale_factor must be greater than 0")
	}

	if cfg.MaxVessels < 0 {
		return fmt.Errorf("max_vessels must not be negative")
	}

	if cfg.SnapshotLimit < 0 {
		return fmt.Errorf("snapshot_limit must not be negative")
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[strings.ToLower(cfg.Log.Level)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", cfg.Log.Level)
	}

	validLogFormats := map[string]bool{
		"text": true,
		"json": true,
	}
	if !validLogFormats[strings.ToLower(cfg.Log.Format)] {
		return fmt.Errorf("invalid log format: %s (must be text or json)", cfg.Log.Format)
	}

	return nil
}
