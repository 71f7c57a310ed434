package config

import "time"

// Config represents the complete pelotonctl configuration structure
type Config struct {
	Username  string        `mapstructure:"username"`
	Password  string        `mapstructure:"password"`
	BaseURL   string        `mapstructure:"base_url"`
	PageLimit int           `mapstructure:"page_limit"`
	Timeout   time.Duration `mapstructure:"timeout"`
	Export    ExportConfig  `mapstructure:"export"`
	Logging   LoggingConfig `mapstructure:"logging"`
}

// ExportConfig controls the concurrency of the export command
type ExportConfig struct {
	Workers           int     `mapstructure:"workers"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Color  bool   `mapstructure:"color"`
}
