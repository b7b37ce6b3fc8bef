// ABOUTME: Centralized configuration for the carepath router and journey services
// ABOUTME: Loads .env and environment variables through viper with validation and defaults
package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/harper/carepath/internal/llm"
	"github.com/harper/carepath/internal/storage"
)

// Store backends
const (
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
	StoreNeo4j    = "neo4j"
)

// Config holds all configuration for carepath
type Config struct {
	// Oracle settings
	Oracle      string        `mapstructure:"CAREPATH_ORACLE"`
	OpenAIKey   string        `mapstructure:"OPENAI_API_KEY"`
	OpenAIModel string        `mapstructure:"CAREPATH_OPENAI_MODEL"`
	GeminiKey   string        `mapstructure:"GEMINI_API_KEY"`
	GeminiModel string        `mapstructure:"CAREPATH_GEMINI_MODEL"`
	Timeout     time.Duration `mapstructure:"ORACLE_TIMEOUT"`
	MaxRetries  int           `mapstructure:"ORACLE_MAX_RETRIES"`
	RetryDelay  time.Duration `mapstructure:"ORACLE_RETRY_DELAY"`

	// Store settings
	Store         string `mapstructure:"CAREPATH_STORE"`
	DBPath        string `mapstructure:"CAREPATH_DB_PATH"`
	DatabaseURL   string `mapstructure:"DATABASE_URL"`
	Neo4jURI      string `mapstructure:"NEO4J_URI"`
	Neo4jUser     string `mapstructure:"NEO4J_USER"`
	Neo4jPassword string `mapstructure:"NEO4J_PASSWORD"`
	Neo4jDatabase string `mapstructure:"NEO4J_DATABASE"`

	// Routing and serving
	DefaultPatient string `mapstructure:"CAREPATH_DEFAULT_PATIENT"`
	HTTPAddr       string `mapstructure:"CAREPATH_HTTP_ADDR"`
	LogLevel       string `mapstructure:"CAREPATH_LOG_LEVEL"`
}

var keys = []string{
	"CAREPATH_ORACLE", "OPENAI_API_KEY", "CAREPATH_OPENAI_MODEL", "GEMINI_API_KEY",
	"CAREPATH_GEMINI_MODEL", "ORACLE_TIMEOUT", "ORACLE_MAX_RETRIES", "ORACLE_RETRY_DELAY",
	"CAREPATH_STORE", "CAREPATH_DB_PATH", "DATABASE_URL",
	"NEO4J_URI", "NEO4J_USER", "NEO4J_PASSWORD", "NEO4J_DATABASE",
	"CAREPATH_DEFAULT_PATIENT", "CAREPATH_HTTP_ADDR", "CAREPATH_LOG_LEVEL",
}

// Load reads .env (if present) and the environment
func Load() (*Config, error) {
	// A missing .env is normal outside development
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv reads configuration from the environment only
func FromEnv() (*Config, error) {
	v := viper.New()

	v.SetDefault("CAREPATH_ORACLE", llm.BackendOpenAI)
	v.SetDefault("CAREPATH_OPENAI_MODEL", llm.DefaultChatModel)
	v.SetDefault("CAREPATH_GEMINI_MODEL", llm.DefaultGeminiModel)
	v.SetDefault("ORACLE_TIMEOUT", 30*time.Second)
	v.SetDefault("ORACLE_MAX_RETRIES", 2)
	v.SetDefault("ORACLE_RETRY_DELAY", time.Second)
	v.SetDefault("CAREPATH_STORE", StoreSQLite)
	v.SetDefault("CAREPATH_DB_PATH", storage.DefaultDBPath())
	v.SetDefault("NEO4J_DATABASE", "neo4j")
	v.SetDefault("CAREPATH_DEFAULT_PATIENT", "pat1")
	v.SetDefault("CAREPATH_HTTP_ADDR", ":8000")
	v.SetDefault("CAREPATH_LOG_LEVEL", "info")

	// Bind explicitly so Unmarshal sees env-only keys
	for _, k := range keys {
		if err := v.BindEnv(k); err != nil {
			return nil, fmt.Errorf("bind %s: %w", k, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	return cfg, cfg.Validate()
}

// Validate checks ranges and that the chosen backends have what they need
func (c *Config) Validate() error {
	if c.MaxRetries < 0 || c.MaxRetries > 10 {
		return fmt.Errorf("ORACLE_MAX_RETRIES must be 0-10, got %d", c.MaxRetries)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("ORACLE_TIMEOUT must be positive, got %v", c.Timeout)
	}
	if c.RetryDelay < 0 {
		return fmt.Errorf("ORACLE_RETRY_DELAY must not be negative, got %v", c.RetryDelay)
	}
	switch c.Oracle {
	case llm.BackendOpenAI, llm.BackendGemini:
	default:
		return fmt.Errorf("CAREPATH_ORACLE must be %q or %q, got %q", llm.BackendOpenAI, llm.BackendGemini, c.Oracle)
	}
	switch c.Store {
	case StoreSQLite:
		if c.DBPath == "" {
			return fmt.Errorf("CAREPATH_DB_PATH is required for the sqlite store")
		}
	case StorePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for the postgres store")
		}
	case StoreNeo4j:
		if c.Neo4jURI == "" || c.Neo4jUser == "" || c.Neo4jPassword == "" {
			return fmt.Errorf("NEO4J_URI, NEO4J_USER and NEO4J_PASSWORD are required for the neo4j store")
		}
	default:
		return fmt.Errorf("CAREPATH_STORE must be sqlite, postgres or neo4j, got %q", c.Store)
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("CAREPATH_LOG_LEVEL: %w", err)
	}
	return nil
}

// OracleConfig returns the client settings for the selected oracle backend
func (c *Config) OracleConfig() *llm.ClientConfig {
	cc := &llm.ClientConfig{
		APIKey:     c.OpenAIKey,
		Model:      c.OpenAIModel,
		Timeout:    c.Timeout,
		MaxRetries: c.MaxRetries,
		RetryDelay: c.RetryDelay,
	}
	if c.Oracle == llm.BackendGemini {
		cc.APIKey = c.GeminiKey
		cc.Model = c.GeminiModel
	}
	return cc
}

// HasOracleKey reports whether the selected backend has an API key
func (c *Config) HasOracleKey() bool {
	return c.OracleConfig().APIKey != ""
}

// Level returns the parsed log level
func (c *Config) Level() zerolog.Level {
	lvl, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil {
		return zerolog.InfoLevel
	}
	return lvl
}
