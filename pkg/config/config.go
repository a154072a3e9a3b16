package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds all configuration for the staffing engine.
// Configuration can come from YAML file (config.yaml) or environment variables.
// Environment variables always override YAML values for fields that support both.
// Secrets (API keys, passwords) must only come from environment variables.
type Config struct {
	// Server configuration
	BindAddr string `yaml:"bind_addr" env:"BIND_ADDR" env-default:"127.0.0.1"`
	Port     string `yaml:"port" env:"PORT" env-default:"3480"`
	Env      string `yaml:"env" env:"ENVIRONMENT" env-default:"local"`
	Version  string `yaml:"-"` // Set at load time, not from config

	// Text-completion provider used for re-ranking, headcount suggestions and chat.
	LLM LLMConfig `yaml:"llm"`

	// Allocation engine tuning.
	Allocation AllocationConfig `yaml:"allocation"`

	// Where employees and projects are read from.
	Store StoreConfig `yaml:"store"`

	// Database configuration (PostgreSQL), used when store.backend=postgres
	Database DatabaseConfig `yaml:"database"`

	// Redis configuration, used when allocation.cache_backend=redis
	Redis RedisConfig `yaml:"redis"`

	// MCP tool surface
	MCP MCPConfig `yaml:"mcp"`
}

// LLMConfig configures the completion provider and its failure policy.
type LLMConfig struct {
	// Enabled=false runs the engine on deterministic ranking and default headcounts only.
	Enabled     bool    `yaml:"enabled" env:"LLM_ENABLED" env-default:"true"`
	Provider    string  `yaml:"provider" env:"LLM_PROVIDER" env-default:"openai"`
	BaseURL     string  `yaml:"base_url" env:"LLM_BASE_URL" env-default:"https://api.openai.com/v1"`
	Model       string  `yaml:"model" env:"LLM_MODEL" env-default:"gpt-4o-mini"`
	APIKey      string  `yaml:"-" env:"LLM_API_KEY"` // Secret - not in YAML
	Temperature float64 `yaml:"temperature" env:"LLM_TEMPERATURE" env-default:"0.2"`
	MaxTokens   int     `yaml:"max_tokens" env:"LLM_MAX_TOKENS" env-default:"1024"`

	TimeoutSeconds int `yaml:"timeout_seconds" env:"LLM_TIMEOUT_SECONDS" env-default:"60"`

	// Retries apply only to rate limiting, overload and 5xx responses.
	MaxRetries          int `yaml:"max_retries" env:"LLM_MAX_RETRIES" env-default:"2"`
	RetryInitialDelayMs int `yaml:"retry_initial_delay_ms" env:"LLM_RETRY_INITIAL_DELAY_MS" env-default:"1000"`

	CircuitThreshold    int `yaml:"circuit_threshold" env:"LLM_CIRCUIT_THRESHOLD" env-default:"5"`
	CircuitResetSeconds int `yaml:"circuit_reset_seconds" env:"LLM_CIRCUIT_RESET_SECONDS" env-default:"30"`
}

// Timeout returns the per-call timeout.
func (c *LLMConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// RetryInitialDelay returns the first backoff interval.
func (c *LLMConfig) RetryInitialDelay() time.Duration {
	return time.Duration(c.RetryInitialDelayMs) * time.Millisecond
}

// CircuitReset returns how long an open circuit waits before probing.
func (c *LLMConfig) CircuitReset() time.Duration {
	return time.Duration(c.CircuitResetSeconds) * time.Second
}

// AllocationConfig tunes the proposal cache and chat session state.
type AllocationConfig struct {
	CacheBackend    string `yaml:"cache_backend" env:"ALLOCATION_CACHE_BACKEND" env-default:"memory"`
	CacheTTLSeconds int    `yaml:"cache_ttl_seconds" env:"ALLOCATION_CACHE_TTL_SECONDS" env-default:"120"`
	CacheMaxEntries int    `yaml:"cache_max_entries" env:"ALLOCATION_CACHE_MAX_ENTRIES" env-default:"100"`
	// UndoDepth bounds the per-session undo log.
	UndoDepth int `yaml:"undo_depth" env:"ALLOCATION_UNDO_DEPTH" env-default:"20"`
}

// CacheTTL returns the proposal cache lifetime.
func (c *AllocationConfig) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSeconds) * time.Second
}

// StoreConfig selects the employee/project data source.
type StoreConfig struct {
	Backend        string `yaml:"backend" env:"STORE_BACKEND" env-default:"fixture"`
	FixturePath    string `yaml:"fixture_path" env:"STORE_FIXTURE_PATH" env-default:"data/roster.yaml"`
	MigrationsPath string `yaml:"migrations_path" env:"STORE_MIGRATIONS_PATH" env-default:"migrations"`
}

// DatabaseConfig holds PostgreSQL database configuration.
type DatabaseConfig struct {
	Host           string `yaml:"host" env:"PGHOST" env-default:"localhost"`
	Port           int    `yaml:"port" env:"PGPORT" env-default:"5432"`
	User           string `yaml:"user" env:"PGUSER" env-default:"staffing"`
	Password       string `yaml:"-" env:"PGPASSWORD"` // Secret - not in YAML
	Database       string `yaml:"database" env:"PGDATABASE" env-default:"staffing"`
	MaxConnections int32  `yaml:"max_connections" env:"PGMAX_CONNECTIONS" env-default:"10"`
	SSLMode        string `yaml:"ssl_mode" env:"PGSSLMODE" env-default:"disable"`
}

// RedisConfig holds Redis connection settings for the shared proposal cache.
type RedisConfig struct {
	Host     string `yaml:"host" env:"REDIS_HOST" env-default:""`
	Port     int    `yaml:"port" env:"REDIS_PORT" env-default:"6379"`
	Password string `yaml:"-" env:"REDIS_PASSWORD"` // Secret - not in YAML
	DB       int    `yaml:"db" env:"REDIS_DB" env-default:"0"`
}

// MCPConfig toggles the MCP endpoint.
type MCPConfig struct {
	Enabled bool `yaml:"enabled" env:"MCP_ENABLED" env-default:"true"`
}

// Load reads configuration from config.yaml with environment variable overrides.
// The version parameter is injected at build time and set on the returned Config.
func Load(version string) (*Config, error) {
	return LoadFile("config.yaml", version)
}

// LoadFile is Load with an explicit path.
func LoadFile(path, version string) (*Config, error) {
	cfg := &Config{
		Version: version,
	}

	if err := cleanenv.ReadConfig(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	cfg.resolveHostsForDocker()
	return cfg, nil
}

func (c *Config) validate() error {
	switch strings.ToLower(c.LLM.Provider) {
	case "openai", "anthropic":
	default:
		return fmt.Errorf("llm.provider must be openai or anthropic, got %q", c.LLM.Provider)
	}
	if c.LLM.MaxRetries < 0 {
		return fmt.Errorf("llm.max_retries must not be negative")
	}

	switch c.Allocation.CacheBackend {
	case "memory":
	case "redis":
		if c.Redis.Host == "" {
			return fmt.Errorf("redis.host is required when allocation.cache_backend=redis")
		}
	default:
		return fmt.Errorf("allocation.cache_backend must be memory or redis, got %q", c.Allocation.CacheBackend)
	}
	if c.Allocation.CacheTTLSeconds <= 0 {
		return fmt.Errorf("allocation.cache_ttl_seconds must be positive")
	}

	switch c.Store.Backend {
	case "fixture":
		if c.Store.FixturePath == "" {
			return fmt.Errorf("store.fixture_path is required when store.backend=fixture")
		}
	case "postgres":
	default:
		return fmt.Errorf("store.backend must be fixture or postgres, got %q", c.Store.Backend)
	}

	return nil
}

// ConnectionString returns a PostgreSQL URL suitable for pgx and golang-migrate.
func (c *DatabaseConfig) ConnectionString() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:     "/" + c.Database,
		RawQuery: "sslmode=" + url.QueryEscape(c.SSLMode),
	}
	return u.String()
}

// Addr returns the Redis host:port.
func (c *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
