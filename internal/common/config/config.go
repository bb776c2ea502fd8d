// internal/common/config/config.go
package config

import (
	"fmt"
	"time"
)

// Config is the main application configuration struct.
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Server    ServerConfig    `mapstructure:"server"`
	GenAI     GenAIConfig     `mapstructure:"genai"`
	Assistant AssistantConfig `mapstructure:"assistant"`
	Store     StoreConfig     `mapstructure:"store"`
	Database  DatabaseConfig  `mapstructure:"database"`
	History   HistoryConfig   `mapstructure:"history"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type ServerConfig struct {
	Port         int `mapstructure:"port"`
	ReadTimeout  int `mapstructure:"read_timeout"`  // seconds
	WriteTimeout int `mapstructure:"write_timeout"` // seconds
}

// GenAIConfig holds settings for the text-generation (chat completions) API.
type GenAIConfig struct {
	Endpoint    string  `mapstructure:"endpoint"`
	APIKey      string  `mapstructure:"api_key"`
	APIVersion  string  `mapstructure:"api_version"`
	Deployment  string  `mapstructure:"deployment"`
	Timeout     int     `mapstructure:"timeout"` // milliseconds
	MaxTokens   int     `mapstructure:"max_tokens"`
	Temperature float64 `mapstructure:"temperature"`
}

// AssistantConfig holds settings for the conversational assistant API,
// including the polling budget used while waiting for answers.
type AssistantConfig struct {
	BaseURL         string `mapstructure:"base_url"`
	APIKey          string `mapstructure:"api_key"`
	Timeout         int    `mapstructure:"timeout"`           // milliseconds, per request
	PollInterval    int    `mapstructure:"poll_interval"`     // milliseconds between polls
	PollMaxAttempts int    `mapstructure:"poll_max_attempts"` // total fetches before soft timeout
}

// PollIntervalDuration returns the wait between message polls.
func (a AssistantConfig) PollIntervalDuration() time.Duration {
	return time.Duration(a.PollInterval) * time.Millisecond
}

// StoreConfig selects where finished orchestration results are kept for
// later lookup. Backend is "memory" or "redis".
type StoreConfig struct {
	Backend   string `mapstructure:"backend"`
	ResultTTL int    `mapstructure:"result_ttl"` // seconds
}

func (s StoreConfig) ResultTTLDuration() time.Duration {
	return time.Duration(s.ResultTTL) * time.Second
}

type DatabaseConfig struct {
	Postgres PostgresConfig `mapstructure:"postgres"`
	Redis    RedisConfig    `mapstructure:"redis"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

// GetDSN returns the PostgreSQL connection string
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// HistoryConfig controls the best-effort orchestration audit trail.
type HistoryConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}
