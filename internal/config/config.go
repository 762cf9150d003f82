package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config represents the application configuration
type Config struct {
	Paths   PathsConfig   `mapstructure:"paths"`
	Apt     AptConfig     `mapstructure:"apt"`
	Resolve ResolveConfig `mapstructure:"resolve"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// PathsConfig contains path-related configuration
type PathsConfig struct {
	CacheDir string `mapstructure:"cache_dir"`
	DBFile   string `mapstructure:"db_file"`
	LogFile  string `mapstructure:"log_file"`
}

// AptConfig describes the package sources the contents index is built from.
type AptConfig struct {
	Sources []AptSource `mapstructure:"sources"`
}

// AptSource is one mirror/distribution/components triple.
type AptSource struct {
	MirrorURL    string   `mapstructure:"mirror_url"`
	Distribution string   `mapstructure:"distribution"`
	Components   []string `mapstructure:"components"`
}

// ResolveConfig contains candidate-resolution configuration
type ResolveConfig struct {
	MaxFixAttempts int  `mapstructure:"max_fix_attempts"`
	UsePopcon      bool `mapstructure:"use_popcon"`
	NoCache        bool `mapstructure:"no_cache"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level string `mapstructure:"level"`
	Color string `mapstructure:"color"`
}

// Load loads configuration from file and environment
func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("toml")

	homeDir, err := os.UserHomeDir()
	if err == nil {
		viper.AddConfigPath(filepath.Join(homeDir, ".config", "ognibuild"))
	}
	viper.AddConfigPath(".")

	setDefaults()

	viper.SetEnvPrefix("OGNIBUILD")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
		// Config file not found - use defaults
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.Paths.CacheDir = expandPath(cfg.Paths.CacheDir)
	cfg.Paths.DBFile = expandPath(cfg.Paths.DBFile)
	cfg.Paths.LogFile = expandPath(cfg.Paths.LogFile)

	return &cfg, nil
}

// setDefaults sets default configuration values
func setDefaults() {
	homeDir, err := os.UserHomeDir()
	if err != nil || homeDir == "" {
		homeDir = os.Getenv("HOME")
	}
	if homeDir == "" {
		homeDir = "."
	}

	viper.SetDefault("paths.cache_dir", filepath.Join(homeDir, ".cache", "ognibuild"))
	viper.SetDefault("paths.db_file", filepath.Join(homeDir, ".cache", "ognibuild", "resolutions.db"))
	viper.SetDefault("paths.log_file", filepath.Join(homeDir, ".local", "share", "ognibuild", "ognibuild.log"))

	viper.SetDefault("apt.sources", []map[string]interface{}{
		{
			"mirror_url":   "http://deb.debian.org/debian",
			"distribution": "sid",
			"components":   []string{"main"},
		},
	})

	viper.SetDefault("resolve.max_fix_attempts", 10)
	viper.SetDefault("resolve.use_popcon", false)
	viper.SetDefault("resolve.no_cache", false)

	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.color", "auto")
}

// expandPath expands ~ and environment variables in paths
func expandPath(path string) string {
	if path == "" {
		return path
	}

	if path[0] == '~' {
		homeDir, err := os.UserHomeDir()
		if err == nil {
			path = filepath.Join(homeDir, path[1:])
		}
	}

	return os.ExpandEnv(path)
}
