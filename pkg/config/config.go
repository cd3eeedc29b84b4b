package config

import (
	"fmt"
	"strings"

	"github.com/sdejongh/dircmp/internal/platform"
	"github.com/sdejongh/dircmp/pkg/models"
)

// Config represents the application configuration
type Config struct {
	Compare     CompareConfig     `yaml:"compare"`
	Filter      FilterConfig      `yaml:"filter"`
	Performance PerformanceConfig `yaml:"performance"`
	Output      OutputConfig      `yaml:"output"`
	Logging     LoggingConfig     `yaml:"logging"`
}

// CompareConfig holds comparison settings
type CompareConfig struct {
	Method         models.CompareMethod `yaml:"method"`
	HashAlgorithm  string               `yaml:"hash_algorithm"` // "sha256" or "md5"
	Recursive      bool                 `yaml:"recursive"`
	CaseSensitive  bool                 `yaml:"case_sensitive"`
	ExpandUnique   bool                 `yaml:"expand_unique"`
	SingleThreaded bool                 `yaml:"single_threaded"`
	IgnoreEOL      bool                 `yaml:"ignore_eol"`
	IgnoreSpace    bool                 `yaml:"ignore_whitespace"`
	IgnoreCase     bool                 `yaml:"ignore_case"`
	// TimeToleranceMS is the allowed mtime skew for date methods
	TimeToleranceMS int `yaml:"time_tolerance_ms"`
}

// FilterConfig holds glob patterns applied during the tree walk
type FilterConfig struct {
	Exclude   []string `yaml:"exclude"`
	Skip      []string `yaml:"skip"`
	NoRecurse []string `yaml:"no_recurse"`
}

// PerformanceConfig holds performance-related settings
type PerformanceConfig struct {
	BufferSize int `yaml:"buffer_size"`
	// MaxTextSize is the largest file diffed line by line
	MaxTextSize int64 `yaml:"max_text_size"`
	// ReadLimit throttles comparison reads in bytes per second (0 = unlimited)
	ReadLimit int64 `yaml:"read_limit"`
}

// OutputConfig holds output-related settings
type OutputConfig struct {
	Format   string `yaml:"format"`   // "human" or "json"
	Progress bool   `yaml:"progress"` // Show progress bar
	Quiet    bool   `yaml:"quiet"`    // Suppress non-error output
	Tree     bool   `yaml:"tree"`     // Print the whole tree, not only differences
}

// LoggingConfig holds logging-related settings
type LoggingConfig struct {
	Enabled    bool   `yaml:"enabled"`
	Format     string `yaml:"format"` // "json" or "text"
	Level      string `yaml:"level"`  // "debug", "info", "warn", "error"
	File       string `yaml:"file"`   // Log file path (empty = stderr)
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Compress   bool   `yaml:"compress"`
}

// Default returns the default configuration
func Default() *Config {
	return &Config{
		Compare: CompareConfig{
			Method:          models.MethodContent,
			HashAlgorithm:   "sha256",
			Recursive:       true,
			CaseSensitive:   platform.CaseSensitiveNames(),
			TimeToleranceMS: 1000,
		},
		Filter: FilterConfig{
			Exclude: []string{
				".git/",
				"node_modules/",
			},
		},
		Performance: PerformanceConfig{
			BufferSize:  65536,
			MaxTextSize: 16 * 1024 * 1024,
		},
		Output: OutputConfig{
			Format:   "human",
			Progress: true,
		},
		Logging: LoggingConfig{
			Enabled:    false,
			Format:     "text",
			Level:      "info",
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 30,
		},
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if !c.Compare.Method.IsValid() {
		return &models.ValidationError{
			Field:   "compare.method",
			Message: fmt.Sprintf("must be one of %s", methodList()),
		}
	}

	validHashes := map[string]bool{"sha256": true, "md5": true}
	if !validHashes[c.Compare.HashAlgorithm] {
		return &models.ValidationError{
			Field:   "compare.hash_algorithm",
			Message: "must be 'sha256' or 'md5'",
		}
	}

	if c.Compare.TimeToleranceMS < 0 {
		return &models.ValidationError{
			Field:   "compare.time_tolerance_ms",
			Message: "must not be negative",
		}
	}

	if c.Performance.BufferSize < 1024 {
		return &models.ValidationError{
			Field:   "performance.buffer_size",
			Message: "must be at least 1024 bytes",
		}
	}

	if c.Performance.ReadLimit < 0 {
		return &models.ValidationError{
			Field:   "performance.read_limit",
			Message: "must not be negative",
		}
	}

	validFormats := map[string]bool{"human": true, "json": true}
	if !validFormats[c.Output.Format] {
		return &models.ValidationError{
			Field:   "output.format",
			Message: "must be 'human' or 'json'",
		}
	}

	validLogFormats := map[string]bool{"json": true, "text": true}
	if !validLogFormats[c.Logging.Format] {
		return &models.ValidationError{
			Field:   "logging.format",
			Message: "must be 'json' or 'text'",
		}
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.Logging.Level] {
		return &models.ValidationError{
			Field:   "logging.level",
			Message: "must be 'debug', 'info', 'warn', or 'error'",
		}
	}

	return nil
}

func methodList() string {
	names := make([]string, len(models.ValidMethods))
	for i, m := range models.ValidMethods {
		names[i] = string(m)
	}
	return strings.Join(names, ", ")
}
