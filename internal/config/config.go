// Package config loads pipeline configuration from environment variables
// and an optional YAML file, with env values taking precedence.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config represents the complete application configuration
type Config struct {
	Logging  LoggingConfig  `yaml:"logging" envconfig:"LOGGING"`
	Paths    PathsConfig    `yaml:"paths" envconfig:"PATHS"`
	Pipeline PipelineConfig `yaml:"pipeline" envconfig:"PIPELINE"`
	FX       FXConfig       `yaml:"fx" envconfig:"FX"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level" envconfig:"LEVEL" default:"info" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" envconfig:"FORMAT" default:"text" validate:"oneof=text json"`
}

// PathsConfig contains file system paths configuration
type PathsConfig struct {
	TransactionsFile string `yaml:"transactions_file" envconfig:"TRANSACTIONS_FILE" default:"data/raw/transactions.xlsx"`
	MarketFile       string `yaml:"market_file" envconfig:"MARKET_FILE" default:"data/raw/market.xlsx"`
	ModelsDir        string `yaml:"models_dir" envconfig:"MODELS_DIR" default:"outputs/models"`
	ReportsDir       string `yaml:"reports_dir" envconfig:"REPORTS_DIR" default:"outputs/reports"`
	PredictionsDir   string `yaml:"predictions_dir" envconfig:"PREDICTIONS_DIR" default:"outputs/predictions"`
}

// PipelineConfig contains feature-engineering and training hyperparameters
type PipelineConfig struct {
	TestSize      float64 `yaml:"test_size" envconfig:"TEST_SIZE" default:"0.2" validate:"gt=0,lt=1"`
	CVFolds       int     `yaml:"cv_folds" envconfig:"CV_FOLDS" default:"5" validate:"min=2"`
	TopProducts   int     `yaml:"top_products" envconfig:"TOP_PRODUCTS" default:"5" validate:"min=1"`
	LongWindow    int     `yaml:"long_window" envconfig:"LONG_WINDOW" default:"30" validate:"min=2"`
	ShortWindow   int     `yaml:"short_window" envconfig:"SHORT_WINDOW" default:"7" validate:"min=1"`
	Rounds        int     `yaml:"rounds" envconfig:"ROUNDS" default:"200" validate:"min=1"`
	MaxDepth      int     `yaml:"max_depth" envconfig:"MAX_DEPTH" default:"6" validate:"min=1"`
	LearningRate  float64 `yaml:"learning_rate" envconfig:"LEARNING_RATE" default:"0.01" validate:"gt=0"`
	Seed          int64   `yaml:"seed" envconfig:"SEED" default:"242"`
	FitConcurrency int    `yaml:"fit_concurrency" envconfig:"FIT_CONCURRENCY" default:"0" validate:"min=0"`
}

// FXConfig contains the currency-rate lookup configuration
type FXConfig struct {
	URL          string        `yaml:"url" envconfig:"URL" default:"https://economia.awesomeapi.com.br/json/last/USD-BRL"`
	Timeout      time.Duration `yaml:"timeout" envconfig:"TIMEOUT" default:"5s"`
	FallbackRate float64       `yaml:"fallback_rate" envconfig:"FALLBACK_RATE" default:"5.0" validate:"gt=0"`
	RPS          float64       `yaml:"rps" envconfig:"RPS" default:"1"`
}

// UnmarshalYAML decodes the FX section, accepting human-readable durations
// ("5s") for the timeout the way the env path already does
func (f *FXConfig) UnmarshalYAML(unmarshal func(interface{}) error) error {
	type rawFXConfig struct {
		URL          string  `yaml:"url"`
		Timeout      string  `yaml:"timeout"`
		FallbackRate float64 `yaml:"fallback_rate"`
		RPS          float64 `yaml:"rps"`
	}
	var raw rawFXConfig
	if err := unmarshal(&raw); err != nil {
		return err
	}

	f.URL = raw.URL
	f.FallbackRate = raw.FallbackRate
	f.RPS = raw.RPS
	if raw.Timeout != "" {
		d, err := time.ParseDuration(raw.Timeout)
		if err != nil {
			return fmt.Errorf("invalid fx timeout %q: %w", raw.Timeout, err)
		}
		f.Timeout = d
	}
	return nil
}

// Load loads configuration with precedence: built-in defaults, then the
// YAML file, then explicitly-set environment variables.
func Load() (*Config, error) {
	var cfg Config

	// Defaults and explicit env values
	if err := envconfig.Process("AGRO", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	// Overlay the config file where no env var was explicitly set
	configFile := getConfigFilePath()
	if _, err := os.Stat(configFile); err == nil {
		fileConfig, err := loadFromFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
		applyFileConfig(&cfg, fileConfig)
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
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

// applyFileConfig overlays file values onto the env-derived config.
// envconfig fills every field from its default tag, so a zero check on the
// env side cannot distinguish a default from an explicit value; instead the
// file value wins unless the corresponding env var was explicitly set.
func applyFileConfig(cfg, file *Config) {
	overlay(&cfg.Logging.Level, file.Logging.Level, "LOGGING_LEVEL")
	overlay(&cfg.Logging.Format, file.Logging.Format, "LOGGING_FORMAT")

	overlay(&cfg.Paths.TransactionsFile, file.Paths.TransactionsFile, "PATHS_TRANSACTIONS_FILE")
	overlay(&cfg.Paths.MarketFile, file.Paths.MarketFile, "PATHS_MARKET_FILE")
	overlay(&cfg.Paths.ModelsDir, file.Paths.ModelsDir, "PATHS_MODELS_DIR")
	overlay(&cfg.Paths.ReportsDir, file.Paths.ReportsDir, "PATHS_REPORTS_DIR")
	overlay(&cfg.Paths.PredictionsDir, file.Paths.PredictionsDir, "PATHS_PREDICTIONS_DIR")

	overlay(&cfg.Pipeline.TestSize, file.Pipeline.TestSize, "PIPELINE_TEST_SIZE")
	overlay(&cfg.Pipeline.CVFolds, file.Pipeline.CVFolds, "PIPELINE_CV_FOLDS")
	overlay(&cfg.Pipeline.TopProducts, file.Pipeline.TopProducts, "PIPELINE_TOP_PRODUCTS")
	overlay(&cfg.Pipeline.LongWindow, file.Pipeline.LongWindow, "PIPELINE_LONG_WINDOW")
	overlay(&cfg.Pipeline.ShortWindow, file.Pipeline.ShortWindow, "PIPELINE_SHORT_WINDOW")
	overlay(&cfg.Pipeline.Rounds, file.Pipeline.Rounds, "PIPELINE_ROUNDS")
	overlay(&cfg.Pipeline.MaxDepth, file.Pipeline.MaxDepth, "PIPELINE_MAX_DEPTH")
	overlay(&cfg.Pipeline.LearningRate, file.Pipeline.LearningRate, "PIPELINE_LEARNING_RATE")
	overlay(&cfg.Pipeline.Seed, file.Pipeline.Seed, "PIPELINE_SEED")
	overlay(&cfg.Pipeline.FitConcurrency, file.Pipeline.FitConcurrency, "PIPELINE_FIT_CONCURRENCY")

	overlay(&cfg.FX.URL, file.FX.URL, "FX_URL")
	overlay(&cfg.FX.Timeout, file.FX.Timeout, "FX_TIMEOUT")
	overlay(&cfg.FX.FallbackRate, file.FX.FallbackRate, "FX_FALLBACK_RATE")
	overlay(&cfg.FX.RPS, file.FX.RPS, "FX_RPS")
}

// overlay replaces dst with the file value unless the file omitted the key
// (zero value in YAML is indistinguishable from absent) or the env var was
// explicitly set
func overlay[T comparable](dst *T, fileValue T, envKey string) {
	var zero T
	if fileValue == zero {
		return
	}
	if _, set := os.LookupEnv("AGRO_" + envKey); set {
		return
	}
	*dst = fileValue
}

// Validate checks the configuration against the struct validation tags
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if c.Pipeline.ShortWindow >= c.Pipeline.LongWindow {
		return fmt.Errorf("short window (%d) must be smaller than long window (%d)",
			c.Pipeline.ShortWindow, c.Pipeline.LongWindow)
	}
	return nil
}

// EnsureDirectories creates the output directories if they do not exist
func (c *Config) EnsureDirectories() error {
	dirs := []string{c.Paths.ModelsDir, c.Paths.ReportsDir, c.Paths.PredictionsDir}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	return nil
}

// getConfigFilePath returns the path to the optional YAML config file
func getConfigFilePath() string {
	if path := os.Getenv("AGRO_CONFIG_FILE"); path != "" {
		return path
	}
	return filepath.Join(".", "config.yaml")
}
