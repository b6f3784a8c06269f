// Package config provides Viper-based hierarchical configuration management
package config

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"fjacquet/sepa-export/internal/reference"
)

// Store backends.
const (
	StoreYAML   = "yaml"
	StoreSQLite = "sqlite"
)

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// SEPAConfig holds the export rules.
type SEPAConfig struct {
	// ShiftDays is added to the pay date before the banking-day search.
	ShiftDays int `mapstructure:"shift_days" yaml:"shift_days"`
	// BankHolidayKeyword is a SQL LIKE pattern over non-business day
	// names. Empty disables store holidays.
	BankHolidayKeyword string `mapstructure:"bank_holiday_keyword" yaml:"bank_holiday_keyword"`
	TargetHolidays     bool   `mapstructure:"target_holidays" yaml:"target_holidays"`
	RemittanceStyle    string `mapstructure:"remittance_style" yaml:"remittance_style"`
}

// StoreConfig selects the batch source.
type StoreConfig struct {
	Type string `mapstructure:"type" yaml:"type"`
	Path string `mapstructure:"path" yaml:"path"`
}

// OutputConfig controls where artifacts go.
type OutputConfig struct {
	Directory string `mapstructure:"directory" yaml:"directory"`
	Report    bool   `mapstructure:"report" yaml:"report"`
}

// MetricsConfig controls the Prometheus textfile.
type MetricsConfig struct {
	Textfile string `mapstructure:"textfile" yaml:"textfile"`
}

// Config represents the complete application configuration
type Config struct {
	Log     LogConfig     `mapstructure:"log" yaml:"log"`
	SEPA    SEPAConfig    `mapstructure:"sepa" yaml:"sepa"`
	Store   StoreConfig   `mapstructure:"store" yaml:"store"`
	Output  OutputConfig  `mapstructure:"output" yaml:"output"`
	Metrics MetricsConfig `mapstructure:"metrics" yaml:"metrics"`
}

// RemittanceStyle returns the validated remittance style.
func (c *Config) RemittanceStyle() reference.Style {
	style, err := reference.ParseStyle(c.SEPA.RemittanceStyle)
	if err != nil {
		return reference.StyleStructured
	}
	return style
}

// InitializeConfig initializes Viper configuration with hierarchical loading
func InitializeConfig() (*Config, error) {
	return LoadConfig("")
}

// LoadConfig loads configuration from defaults, configFile (or the
// standard locations when empty) and SEPA_ environment variables.
func LoadConfig(configFile string) (*Config, error) {
	v := viper.New()

	// 1. Set defaults
	setDefaults(v)

	// 2. Config file locations
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("$HOME/.sepa-export")
		v.AddConfigPath(".sepa-export")
		v.AddConfigPath(".")
	}

	// 3. Environment variables
	v.SetEnvPrefix("SEPA")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// 4. Read config file (optional unless given explicitly)
	if err := v.ReadInConfig(); err != nil {
		if configFile != "" {
			return nil, fmt.Errorf("error reading config file %s: %w", configFile, err)
		}
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			// Continue with defaults and env vars
			fmt.Printf("Warning: error reading config file %s: %v\n", v.ConfigFileUsed(), err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// 5. Validate configuration
	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("sepa.shift_days", 0)
	v.SetDefault("sepa.bank_holiday_keyword", "")
	v.SetDefault("sepa.target_holidays", false)
	v.SetDefault("sepa.remittance_style", string(reference.StyleStructured))

	v.SetDefault("store.type", StoreYAML)
	v.SetDefault("store.path", "")

	v.SetDefault("output.directory", ".")
	v.SetDefault("output.report", false)

	v.SetDefault("metrics.textfile", "")
}

// validateConfig validates the configuration values
func validateConfig(config *Config) error {
	if _, err := logrus.ParseLevel(config.Log.Level); err != nil {
		return fmt.Errorf("invalid log level: %s", config.Log.Level)
	}

	if config.Log.Format != "text" && config.Log.Format != "json" {
		return fmt.Errorf("invalid log format: %s (must be 'text' or 'json')", config.Log.Format)
	}

	if config.SEPA.ShiftDays < 0 || config.SEPA.ShiftDays > 365 {
		return fmt.Errorf("sepa.shift_days must be between 0 and 365, got: %d", config.SEPA.ShiftDays)
	}

	if _, err := reference.ParseStyle(config.SEPA.RemittanceStyle); err != nil {
		return fmt.Errorf("sepa.remittance_style: %w", err)
	}

	switch config.Store.Type {
	case StoreYAML, StoreSQLite:
	default:
		return fmt.Errorf("invalid store type: %s (must be '%s' or '%s')", config.Store.Type, StoreYAML, StoreSQLite)
	}

	if config.Output.Directory == "" {
		return fmt.Errorf("output.directory must not be empty")
	}

	return nil
}

// ConfigureLoggingFromConfig configures logging based on the Config struct
func ConfigureLoggingFromConfig(config *Config) *logrus.Logger {
	logger := logrus.New()

	logLevel, err := logrus.ParseLevel(strings.ToLower(config.Log.Level))
	if err != nil {
		logger.Warnf("Invalid log level '%s', using 'info'", config.Log.Level)
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	if strings.ToLower(config.Log.Format) == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}

	return logger
}
