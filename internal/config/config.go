// Package config provides configuration for the tabular command line tool.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/arkilian/tabular/pkg/table"
)

// Config holds the configuration of a tabular run.
type Config struct {
	// Engine tunes grouping and the group sort
	Engine EngineConfig `json:"engine" yaml:"engine"`

	// Reshape configures stack/unstack column names
	Reshape ReshapeConfig `json:"reshape" yaml:"reshape"`

	// Logging configuration
	Logging LoggingConfig `json:"logging" yaml:"logging"`

	// CSV input/output configuration
	CSV CSVConfig `json:"csv" yaml:"csv"`
}

// EngineConfig holds grouping engine settings.
type EngineConfig struct {
	// MaxCompositeGroups caps multi-column composite codes before hashing
	MaxCompositeGroups int `json:"max_composite_groups" yaml:"max_composite_groups"`

	// HashFallback enables hashing above MaxCompositeGroups
	HashFallback bool `json:"hash_fallback" yaml:"hash_fallback"`

	// ParallelThreshold is the row count from which the group sort is partitioned (0 = never)
	ParallelThreshold int `json:"parallel_threshold" yaml:"parallel_threshold"`

	// Partitions is the number of group sort partitions
	Partitions int `json:"partitions" yaml:"partitions"`
}

// ReshapeConfig holds stack/unstack settings.
type ReshapeConfig struct {
	KeyName   string `json:"key_name" yaml:"key_name"`
	ValueName string `json:"value_name" yaml:"value_name"`
}

// LoggingConfig holds logger settings.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error
	Level string `json:"level" yaml:"level"`

	// Format is text or json
	Format string `json:"format" yaml:"format"`

	// SeqURL enables shipping logs to a Seq server when set
	SeqURL string `json:"seq_url" yaml:"seq_url"`

	// SeqBatchSize is the number of events per Seq request
	SeqBatchSize int `json:"seq_batch_size" yaml:"seq_batch_size"`

	// SeqFlushInterval is the maximum delay before events are sent
	SeqFlushInterval time.Duration `json:"seq_flush_interval" yaml:"seq_flush_interval"`
}

// CSVConfig holds CSV settings.
type CSVConfig struct {
	// Delimiter is the single field separator character
	Delimiter string `json:"delimiter" yaml:"delimiter"`

	// NullToken is written for missing cells and read back as missing
	NullToken string `json:"null_token" yaml:"null_token"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Engine: EngineConfig{
			MaxCompositeGroups: 1 << 24,
			HashFallback:       true,
			ParallelThreshold:  1 << 20,
			Partitions:         runtime.NumCPU(),
		},
		Reshape: ReshapeConfig{
			KeyName:   "key",
			ValueName: "value",
		},
		Logging: LoggingConfig{
			Level:            "info",
			Format:           "text",
			SeqBatchSize:     50,
			SeqFlushInterval: 2 * time.Second,
		},
		CSV: CSVConfig{
			Delimiter: ",",
			NullToken: "",
		},
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Engine.MaxCompositeGroups < 1 {
		return fmt.Errorf("engine.max_composite_groups must be positive, got %d", c.Engine.MaxCompositeGroups)
	}
	if c.Engine.ParallelThreshold < 0 {
		return fmt.Errorf("engine.parallel_threshold must not be negative, got %d", c.Engine.ParallelThreshold)
	}
	if c.Engine.Partitions < 1 {
		return fmt.Errorf("engine.partitions must be at least 1, got %d", c.Engine.Partitions)
	}
	if c.Reshape.KeyName == "" || c.Reshape.ValueName == "" {
		return fmt.Errorf("reshape.key_name and reshape.value_name are required")
	}
	if c.Reshape.KeyName == c.Reshape.ValueName {
		return fmt.Errorf("reshape.key_name and reshape.value_name must differ, both are %q", c.Reshape.KeyName)
	}
	if _, err := ParseLevel(c.Logging.Level); err != nil {
		return err
	}
	if c.Logging.Format != "text" && c.Logging.Format != "json" {
		return fmt.Errorf("invalid logging format: %s (must be text or json)", c.Logging.Format)
	}
	if len([]rune(c.CSV.Delimiter)) != 1 {
		return fmt.Errorf("csv.delimiter must be a single character, got %q", c.CSV.Delimiter)
	}
	return nil
}

// ParseLevel converts a level name to a slog level.
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(name) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("invalid logging level: %s (must be debug, info, warn or error)", name)
}

// TableOptions maps the engine and reshape settings onto library options.
func (c *Config) TableOptions(logger *slog.Logger) []table.Option {
	return []table.Option{
		table.WithMaxCompositeGroups(c.Engine.MaxCompositeGroups),
		table.WithHashFallback(c.Engine.HashFallback),
		table.WithParallelism(c.Engine.ParallelThreshold, c.Engine.Partitions),
		table.WithStackNames(c.Reshape.KeyName, c.Reshape.ValueName),
		table.WithLogger(logger),
	}
}

// LoadFromFile loads configuration from a YAML or JSON file.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()

	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse YAML config: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse JSON config: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config file format: %s", ext)
	}

	return cfg, nil
}

// LoadDotEnv loads variables from .env files into the process
// environment without overriding variables that are already set. Missing
// files are ignored.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("failed to load %s: %w", p, err)
		}
	}
	return nil
}

// LoadFromEnv loads configuration from environment variables.
// Environment variables use the TABULAR_ prefix.
func LoadFromEnv(cfg *Config) {
	// Engine configuration
	if v := os.Getenv("TABULAR_MAX_COMPOSITE_GROUPS"); v != "" {
		fmt.Sscanf(v, "%d", &cfg.Engine.MaxCompositeGroups)
	}
	if v := os.Getenv("TABULAR_HASH_FALLBACK"); v != "" {
		cfg.Engine.HashFallback = v == "true" || v == "1"
	}
	if v := os.Getenv("TABULAR_PARALLEL_THRESHOLD"); v != "" {
		fmt.Sscanf(v, "%d", &cfg.Engine.ParallelThreshold)
	}
	if v := os.Getenv("TABULAR_PARTITIONS"); v != "" {
		fmt.Sscanf(v, "%d", &cfg.Engine.Partitions)
	}

	// Reshape configuration
	if v := os.Getenv("TABULAR_STACK_KEY_NAME"); v != "" {
		cfg.Reshape.KeyName = v
	}
	if v := os.Getenv("TABULAR_STACK_VALUE_NAME"); v != "" {
		cfg.Reshape.ValueName = v
	}

	// Logging configuration
	if v := os.Getenv("TABULAR_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("TABULAR_LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
	if v := os.Getenv("TABULAR_SEQ_URL"); v != "" {
		cfg.Logging.SeqURL = v
	}
	if v := os.Getenv("TABULAR_SEQ_FLUSH_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Logging.SeqFlushInterval = d
		}
	}

	// CSV configuration
	if v := os.Getenv("TABULAR_CSV_DELIMITER"); v != "" {
		cfg.CSV.Delimiter = v
	}
	if v, ok := os.LookupEnv("TABULAR_CSV_NULL"); ok {
		cfg.CSV.NullToken = v
	}
}
