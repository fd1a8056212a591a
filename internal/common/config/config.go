package config

import "fmt"

// Config is the main application configuration struct.
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Server   ServerConfig   `mapstructure:"server"`
	Catalog  CatalogConfig  `mapstructure:"catalog"`
	Engine   EngineConfig   `mapstructure:"engine"`
	Session  SessionConfig  `mapstructure:"session"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Database DatabaseConfig `mapstructure:"database"`
	AI       AIConfig       `mapstructure:"ai"`
	Camunda  CamundaConfig  `mapstructure:"camunda"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type ServerConfig struct {
	Address         string `mapstructure:"address"`
	ReadTimeout     int    `mapstructure:"read_timeout"`     // milliseconds
	WriteTimeout    int    `mapstructure:"write_timeout"`    // milliseconds
	RequestTimeout  int    `mapstructure:"request_timeout"`  // milliseconds
	ShutdownTimeout int    `mapstructure:"shutdown_timeout"` // milliseconds
	SessionCookie   string `mapstructure:"session_cookie"`
	MaxBodyBytes    int64  `mapstructure:"max_body_bytes"`
}

// Catalog sources.
const (
	CatalogSourceCSV           = "csv"
	CatalogSourcePostgres      = "postgres"
	CatalogSourceElasticsearch = "elasticsearch"
)

type CatalogConfig struct {
	Source           string  `mapstructure:"source"`
	Path             string  `mapstructure:"path"`
	Table            string  `mapstructure:"table"`
	Index            string  `mapstructure:"index"`
	MaxRecords       int     `mapstructure:"max_records"`
	DefaultBaseScore float64 `mapstructure:"default_base_score"`
	LoadTimeout      int     `mapstructure:"load_timeout"` // milliseconds
}

// No-match policies.
const (
	NoMatchApology = "apology"
	NoMatchClosest = "closest"
	NoMatchAI      = "ai"
)

type EngineConfig struct {
	TopK                   int     `mapstructure:"top_k"`
	FuzzyThreshold         float64 `mapstructure:"fuzzy_threshold"`
	UseSessionLocation     bool    `mapstructure:"use_session_location"`
	RememberSearchLocation bool    `mapstructure:"remember_search_location"`
	RequireLocation        bool    `mapstructure:"require_location"`
	NoMatchPolicy          string  `mapstructure:"no_match_policy"`
}

// State backends.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

type SessionConfig struct {
	Backend   string `mapstructure:"backend"`
	KeyPrefix string `mapstructure:"key_prefix"`
	IdleTTL   int    `mapstructure:"idle_ttl"` // milliseconds, 0 keeps sessions forever
}

type CacheConfig struct {
	Backend    string `mapstructure:"backend"`
	TTL        int    `mapstructure:"ttl"` // milliseconds
	KeyPrefix  string `mapstructure:"key_prefix"`
	MaxEntries int    `mapstructure:"max_entries"`
}

type DatabaseConfig struct {
	Postgres      PostgresConfig      `mapstructure:"postgres"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
	Redis         RedisConfig         `mapstructure:"redis"`
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

type ElasticsearchConfig struct {
	Addresses []string `mapstructure:"addresses"`
	Username  string   `mapstructure:"username"`
	Password  string   `mapstructure:"password"`
	URL       string   `mapstructure:"url"`
}

// GetURL returns the first address or the URL field
func (e ElasticsearchConfig) GetURL() string {
	if e.URL != "" {
		return e.URL
	}
	if len(e.Addresses) > 0 {
		return e.Addresses[0]
	}
	return ""
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// AIConfig configures the OpenAI-compatible completion fallback.
type AIConfig struct {
	APIKey      string  `mapstructure:"api_key"`
	BaseURL     string  `mapstructure:"base_url"`
	Model       string  `mapstructure:"model"`
	Timeout     int     `mapstructure:"timeout"` // milliseconds
	MaxTokens   int     `mapstructure:"max_tokens"`
	Temperature float32 `mapstructure:"temperature"`
}

type CamundaConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	BrokerAddress  string `mapstructure:"broker_address"`
	MaxJobsActive  int    `mapstructure:"max_jobs_active"`
	Timeout        int    `mapstructure:"timeout"`         // milliseconds
	RequestTimeout int    `mapstructure:"request_timeout"` // milliseconds
	Plaintext      bool   `mapstructure:"plaintext"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}
