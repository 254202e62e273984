package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("AGRO_CONFIG_FILE", filepath.Join(t.TempDir(), "missing.yaml"))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, 0.2, cfg.Pipeline.TestSize)
	assert.Equal(t, 5, cfg.Pipeline.CVFolds)
	assert.Equal(t, 5, cfg.Pipeline.TopProducts)
	assert.Equal(t, 30, cfg.Pipeline.LongWindow)
	assert.Equal(t, 7, cfg.Pipeline.ShortWindow)
	assert.Equal(t, 200, cfg.Pipeline.Rounds)
	assert.Equal(t, int64(242), cfg.Pipeline.Seed)
	assert.Equal(t, 5.0, cfg.FX.FallbackRate)
	assert.Equal(t, 5*time.Second, cfg.FX.Timeout)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("AGRO_CONFIG_FILE", filepath.Join(t.TempDir(), "missing.yaml"))
	t.Setenv("AGRO_PIPELINE_TEST_SIZE", "0.3")
	t.Setenv("AGRO_PIPELINE_CV_FOLDS", "3")
	t.Setenv("AGRO_LOGGING_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 0.3, cfg.Pipeline.TestSize)
	assert.Equal(t, 3, cfg.Pipeline.CVFolds)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoad_YAMLFile(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	content := `
paths:
  transactions_file: /data/tx.xlsx
pipeline:
  test_size: 0.25
  cv_folds: 4
`
	require.NoError(t, os.WriteFile(configPath, []byte(content), 0644))
	t.Setenv("AGRO_CONFIG_FILE", configPath)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/data/tx.xlsx", cfg.Paths.TransactionsFile)
	assert.Equal(t, 0.25, cfg.Pipeline.TestSize)
	assert.Equal(t, 4, cfg.Pipeline.CVFolds)
	// Env defaults still applied where the file is silent
	assert.Equal(t, 5, cfg.Pipeline.TopProducts)
}

func TestLoad_YAMLCoversAllSections(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	content := `
logging:
  level: warn
paths:
  models_dir: /srv/models
pipeline:
  top_products: 8
  long_window: 45
  rounds: 300
  learning_rate: 0.05
  seed: 7
fx:
  timeout: 10s
  fallback_rate: 4.8
  rps: 2
`
	require.NoError(t, os.WriteFile(configPath, []byte(content), 0644))
	t.Setenv("AGRO_CONFIG_FILE", configPath)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, "/srv/models", cfg.Paths.ModelsDir)
	assert.Equal(t, 8, cfg.Pipeline.TopProducts)
	assert.Equal(t, 45, cfg.Pipeline.LongWindow)
	assert.Equal(t, 300, cfg.Pipeline.Rounds)
	assert.Equal(t, 0.05, cfg.Pipeline.LearningRate)
	assert.Equal(t, int64(7), cfg.Pipeline.Seed)
	assert.Equal(t, 10*time.Second, cfg.FX.Timeout)
	assert.Equal(t, 4.8, cfg.FX.FallbackRate)
	assert.Equal(t, 2.0, cfg.FX.RPS)
}

func TestLoad_EnvBeatsYAML(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	content := `
pipeline:
  test_size: 0.25
  cv_folds: 4
`
	require.NoError(t, os.WriteFile(configPath, []byte(content), 0644))
	t.Setenv("AGRO_CONFIG_FILE", configPath)
	t.Setenv("AGRO_PIPELINE_TEST_SIZE", "0.3")

	cfg, err := Load()
	require.NoError(t, err)

	// Explicit env wins over the file; file wins over the default
	assert.Equal(t, 0.3, cfg.Pipeline.TestSize)
	assert.Equal(t, 4, cfg.Pipeline.CVFolds)
}

func TestValidate_Failures(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"test size too large", func(c *Config) { c.Pipeline.TestSize = 1.5 }},
		{"zero folds", func(c *Config) { c.Pipeline.CVFolds = 1 }},
		{"bad log level", func(c *Config) { c.Logging.Level = "verbose" }},
		{"short window not below long", func(c *Config) { c.Pipeline.ShortWindow = 30 }},
		{"non-positive fallback rate", func(c *Config) { c.FX.FallbackRate = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("AGRO_CONFIG_FILE", filepath.Join(t.TempDir(), "missing.yaml"))
			cfg, err := Load()
			require.NoError(t, err)

			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
