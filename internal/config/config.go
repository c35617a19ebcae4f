package config

import (
	"fmt"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config represents the complete application configuration
type Config struct {
	Database DatabaseConfig `yaml:"database" envconfig:"DATABASE"`
	Paths    PathsConfig    `yaml:"paths" envconfig:"PATHS"`
	Logging  LoggingConfig  `yaml:"logging" envconfig:"LOGGING"`
	Report   ReportConfig   `yaml:"report" envconfig:"REPORT"`
}

// DatabaseConfig describes the external SQLite database the reports read.
// The schema is owned elsewhere; the path just has to point at a readable
// database file.
type DatabaseConfig struct {
	Path        string        `yaml:"path" envconfig:"PATH" default:"data/pace.db"`
	BusyTimeout time.Duration `yaml:"busy_timeout" envconfig:"BUSY_TIMEOUT" default:"5s"`
}

// PathsConfig contains file system paths configuration
type PathsConfig struct {
	OutputDir  string `yaml:"output_dir" envconfig:"OUTPUT_DIR" default:"output"`
	ArchiveDir string `yaml:"archive_dir" envconfig:"ARCHIVE_DIR" default:"output/archive"`
	LogsDir    string `yaml:"logs_dir" envconfig:"LOGS_DIR" default:"logs"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" default:"info"`
	Format   string `yaml:"format" envconfig:"FORMAT" default:"json"`
	Output   string `yaml:"output" envconfig:"OUTPUT" default:"console"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH" default:"logs/vendor-performance.log"`
}

// ReportConfig controls optional report outputs.
type ReportConfig struct {
	Workbook     bool   `yaml:"workbook" envconfig:"WORKBOOK" default:"false"`
	WorkbookName string `yaml:"workbook_name" envconfig:"WORKBOOK_NAME" default:"vendor_performance.xlsx"`
}

// DefaultConfigFile is looked up in the working directory when no
// --config flag is given.
const DefaultConfigFile = "config.yaml"

// Load loads configuration from environment variables and an optional
// config file. Environment variables take precedence over file values.
func Load(configFile string) (*Config, error) {
	var cfg Config

	// Load from environment variables first
	if err := envconfig.Process("VP", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if configFile == "" {
		configFile = DefaultConfigFile
	}
	if _, err := os.Stat(configFile); err == nil {
		fileConfig, err := loadFromFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
		cfg = mergeConfigs(*fileConfig, cfg, os.Getenv)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// loadFromFile loads configuration from YAML file
func loadFromFile(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// mergeConfigs merges file config with env config. A file value wins
// whenever the corresponding environment variable is unset, so defaults
// applied by envconfig never mask an explicit file setting.
func mergeConfigs(fileConfig, envConfig Config, getenv func(string) string) Config {
	set := func(key string) bool { return getenv(key) != "" }

	if fileConfig.Database.Path != "" && !set("VP_DATABASE_PATH") {
		envConfig.Database.Path = fileConfig.Database.Path
	}
	if fileConfig.Database.BusyTimeout != 0 && !set("VP_DATABASE_BUSY_TIMEOUT") {
		envConfig.Database.BusyTimeout = fileConfig.Database.BusyTimeout
	}
	if fileConfig.Paths.OutputDir != "" && !set("VP_PATHS_OUTPUT_DIR") {
		envConfig.Paths.OutputDir = fileConfig.Paths.OutputDir
	}
	if fileConfig.Paths.ArchiveDir != "" && !set("VP_PATHS_ARCHIVE_DIR") {
		envConfig.Paths.ArchiveDir = fileConfig.Paths.ArchiveDir
	}
	if fileConfig.Paths.LogsDir != "" && !set("VP_PATHS_LOGS_DIR") {
		envConfig.Paths.LogsDir = fileConfig.Paths.LogsDir
	}
	if fileConfig.Logging.Level != "" && !set("VP_LOGGING_LEVEL") {
		envConfig.Logging.Level = fileConfig.Logging.Level
	}
	if fileConfig.Logging.Format != "" && !set("VP_LOGGING_FORMAT") {
		envConfig.Logging.Format = fileConfig.Logging.Format
	}
	if fileConfig.Logging.Output != "" && !set("VP_LOGGING_OUTPUT") {
		envConfig.Logging.Output = fileConfig.Logging.Output
	}
	if fileConfig.Logging.FilePath != "" && !set("VP_LOGGING_FILE_PATH") {
		envConfig.Logging.FilePath = fileConfig.Logging.FilePath
	}
	if fileConfig.Report.Workbook && !set("VP_REPORT_WORKBOOK") {
		envConfig.Report.Workbook = fileConfig.Report.Workbook
	}
	if fileConfig.Report.WorkbookName != "" && !set("VP_REPORT_WORKBOOK_NAME") {
		envConfig.Report.WorkbookName = fileConfig.Report.WorkbookName
	}

	return envConfig
}

// validate validates the configuration
func (c *Config) validate() error {
	if c.Database.Path == "" {
		return fmt.Errorf("database path must not be empty")
	}

	if c.Database.BusyTimeout < 0 {
		return fmt.Errorf("database busy timeout must not be negative")
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid logging level: %q", c.Logging.Level)
	}

	switch c.Logging.Format {
	case "json", "text":
	default:
		return fmt.Errorf("invalid logging format: %q", c.Logging.Format)
	}

	switch c.Logging.Output {
	case "console", "file", "both":
	default:
		return fmt.Errorf("invalid logging output: %q", c.Logging.Output)
	}

	if c.Logging.Output != "console" && c.Logging.FilePath == "" {
		return fmt.Errorf("logging file path required for output %q", c.Logging.Output)
	}

	if c.Report.Workbook && c.Report.WorkbookName == "" {
		return fmt.Errorf("workbook name must not be empty when workbook output is enabled")
	}

	return nil
}
