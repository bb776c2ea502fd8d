// internal/common/config/loader_test.go
package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		GenAI: GenAIConfig{
			Endpoint:   "https://example.openai.azure.com",
			APIKey:     "key",
			Deployment: "gpt-4o",
		},
		Assistant: AssistantConfig{
			BaseURL: "https://assistant.example.com",
			APIKey:  "key",
		},
	}
}

func TestApplyDefaults_PollBudget(t *testing.T) {
	cfg := validConfig()

	applyDefaults(cfg)

	assert.Equal(t, 2000, cfg.Assistant.PollInterval)
	assert.Equal(t, 60, cfg.Assistant.PollMaxAttempts)
	assert.Equal(t, 2*time.Second, cfg.Assistant.PollIntervalDuration())
}

func TestApplyDefaults_ServerOutlivesPollBudget(t *testing.T) {
	cfg := validConfig()

	applyDefaults(cfg)

	pollBudget := time.Duration(cfg.Assistant.PollInterval*cfg.Assistant.PollMaxAttempts) * time.Millisecond
	writeTimeout := time.Duration(cfg.Server.WriteTimeout) * time.Second
	assert.Greater(t, writeTimeout, pollBudget)
}

func TestApplyDefaults_KeepsExplicitValues(t *testing.T) {
	cfg := validConfig()
	cfg.Assistant.PollInterval = 500
	cfg.Assistant.PollMaxAttempts = 10
	cfg.Store.Backend = "redis"

	applyDefaults(cfg)

	assert.Equal(t, 500, cfg.Assistant.PollInterval)
	assert.Equal(t, 10, cfg.Assistant.PollMaxAttempts)
	assert.Equal(t, "redis", cfg.Store.Backend)
}

func TestApplyDefaults_StoreBackend(t *testing.T) {
	cfg := validConfig()

	applyDefaults(cfg)

	assert.Equal(t, "memory", cfg.Store.Backend)
	assert.Equal(t, time.Hour, cfg.Store.ResultTTLDuration())
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "valid",
			mutate: func(*Config) {},
		},
		{
			name:    "missing genai endpoint",
			mutate:  func(c *Config) { c.GenAI.Endpoint = "" },
			wantErr: "genai.endpoint",
		},
		{
			name:    "missing genai key",
			mutate:  func(c *Config) { c.GenAI.APIKey = "" },
			wantErr: "genai.api_key",
		},
		{
			name:    "missing assistant base url",
			mutate:  func(c *Config) { c.Assistant.BaseURL = "" },
			wantErr: "assistant.base_url",
		},
		{
			name:    "redis backend without address",
			mutate:  func(c *Config) { c.Store.Backend = "redis" },
			wantErr: "database.redis.address",
		},
		{
			name: "redis backend with address",
			mutate: func(c *Config) {
				c.Store.Backend = "redis"
				c.Database.Redis.Address = "localhost:6379"
			},
		},
		{
			name:    "history without postgres",
			mutate:  func(c *Config) { c.History.Enabled = true },
			wantErr: "database.postgres.host",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := validateConfig(cfg)

			if tt.wantErr == "" {
				require.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestGetDuration(t *testing.T) {
	assert.Equal(t, 1500*time.Millisecond, GetDuration(1500))
	assert.Equal(t, time.Duration(0), GetDuration(0))
}

func TestPostgresConfig_GetDSN(t *testing.T) {
	dsn := PostgresConfig{
		Host:     "localhost",
		Port:     5432,
		Database: "orchestrator",
		User:     "app",
		Password: "secret",
		SSLMode:  "disable",
	}.GetDSN()

	assert.Equal(t, "host=localhost port=5432 user=app password=secret dbname=orchestrator sslmode=disable", dsn)
}
