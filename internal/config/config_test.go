package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avisanghavi/clout/internal/llm"
)

func TestLoadConfig_ValidJSON(t *testing.T) {
	content := `{
		"api_key": "key-123",
		"model": "gemini-2.5-pro",
		"temperature": 0.4,
		"concurrency": 8,
		"seed": 42,
		"database_url": "postgres://localhost/clout",
		"verbose": true
	}`

	tmpFile := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(tmpFile, []byte(content), 0644))

	cfg, err := LoadConfig(tmpFile)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "key-123", cfg.APIKey)
	assert.Equal(t, "gemini-2.5-pro", cfg.Model)
	assert.InDelta(t, 0.4, cfg.Temperature, 1e-9)
	assert.Equal(t, 8, cfg.Concurrency)
	require.NotNil(t, cfg.Seed)
	assert.Equal(t, int64(42), *cfg.Seed)
	assert.Equal(t, "postgres://localhost/clout", cfg.DatabaseURL)
	assert.True(t, cfg.Verbose)
}

func TestLoadConfig_InvalidJSON(t *testing.T) {
	tmpFile := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(tmpFile, []byte(`{ invalid json }`), 0644))

	cfg, err := LoadConfig(tmpFile)
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to parse config JSON")
}

func TestLoadConfig_FileNotFound(t *testing.T) {
	cfg, err := LoadConfig("/nonexistent/path/config.json")
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoadConfig_EmptyPath(t *testing.T) {
	cfg, err := LoadConfig("")
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "config path is empty")
}

func TestValidate(t *testing.T) {
	notDir := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(notDir, nil, 0644))

	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{name: "defaults", cfg: Defaults()},
		{name: "empty", cfg: Config{}},
		{name: "negative concurrency", cfg: Config{Concurrency: -1}, wantErr: "concurrency"},
		{name: "huge concurrency", cfg: Config{Concurrency: 1000}, wantErr: "concurrency"},
		{name: "temperature too high", cfg: Config{Temperature: 3}, wantErr: "temperature"},
		{name: "negative timeout", cfg: Config{LLMTimeoutSeconds: -5}, wantErr: "llm_timeout_seconds"},
		{name: "negative rate", cfg: Config{RequestsPerSecond: -1}, wantErr: "requests_per_second"},
		{name: "data dir is a file", cfg: Config{DataDir: notDir}, wantErr: "data_dir"},
		{name: "missing data dir is created later", cfg: Config{DataDir: filepath.Join(t.TempDir(), "new")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		EnvAPIKey:      " env-key ",
		EnvDatabaseURL: "postgres://env/db",
		EnvModel:       "gemini-env",
		EnvTemperature: "0.2",
	}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}

	cfg := Config{APIKey: "file-key"}
	require.NoError(t, cfg.ApplyEnv(lookup))

	assert.Equal(t, "file-key", cfg.APIKey, "explicit values win over the environment")
	assert.Equal(t, "postgres://env/db", cfg.DatabaseURL)
	assert.Equal(t, "gemini-env", cfg.Model)
	assert.InDelta(t, 0.2, cfg.Temperature, 1e-9)
}

func TestApplyEnv_BadTemperature(t *testing.T) {
	cfg := Config{}
	err := cfg.ApplyEnv(func(k string) (string, bool) {
		if k == EnvTemperature {
			return "warm", true
		}
		return "", false
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), EnvTemperature)
}

func TestMergeWithDefaults(t *testing.T) {
	seed := int64(7)
	defaults := Config{
		APIKey:      "default-key",
		Model:       "default-model",
		Temperature: 0.7,
		Concurrency: 4,
		Seed:        &seed,
	}

	partial := Config{
		APIKey:      "custom-key",
		Concurrency: 2,
	}

	merged := partial.MergeWithDefaults(defaults)

	assert.Equal(t, "custom-key", merged.APIKey)
	assert.Equal(t, 2, merged.Concurrency)
	assert.Equal(t, "default-model", merged.Model)
	assert.InDelta(t, 0.7, merged.Temperature, 1e-9)
	assert.Equal(t, &seed, merged.Seed)
}

func TestMergeWithDefaults_EmptyDefaults(t *testing.T) {
	cfg := Config{APIKey: "k", Concurrency: 3}

	merged := cfg.MergeWithDefaults(Config{})

	assert.Equal(t, "k", merged.APIKey)
	assert.Equal(t, 3, merged.Concurrency)
}

func TestLLM(t *testing.T) {
	cfg := Defaults()
	cfg.Model = "gemini-custom"
	cfg.Temperature = 0.3
	cfg.LLMTimeoutSeconds = 12

	llmCfg := cfg.LLM()

	assert.Equal(t, "gemini-custom", llmCfg.GetModel(llm.TierStandard))
	assert.InDelta(t, 0.3, llmCfg.Temperature, 1e-6)
	assert.Equal(t, 12*time.Second, llmCfg.Timeout)
}

func TestLLMTimeout_Default(t *testing.T) {
	cfg := Config{}
	assert.Equal(t, llm.DefaultTimeout, cfg.LLMTimeout())
}
