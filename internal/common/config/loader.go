package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Load reads configs/config.yaml, merges config.<APP_ENVIRONMENT>.yaml on top
// and applies environment overrides (engine.top_k -> ENGINE_TOP_K).
func Load() (*Config, error) {
	loadEnvFile()

	v := newViper()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath("../../configs")
	v.AddConfigPath(".")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}
	v.SetConfigName(fmt.Sprintf("config.%s", env))
	_ = v.MergeInConfig()

	return build(v)
}

// LoadFromFile loads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	loadEnvFile()

	v := newViper()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	return build(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	registerDefaults(v)
	return v
}

func build(v *viper.Viper) (*Config, error) {
	expandEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)
	overrideEmptyConfig(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// registerDefaults makes every key known to viper so AutomaticEnv can
// override it, and sets defaults whose zero value is meaningful.
func registerDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "partyplnr")
	v.SetDefault("app.environment", "development")

	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.read_timeout", 5000)
	v.SetDefault("server.write_timeout", 15000)
	v.SetDefault("server.request_timeout", 12000)
	v.SetDefault("server.shutdown_timeout", 10000)
	v.SetDefault("server.session_cookie", "pp_session")
	v.SetDefault("server.max_body_bytes", 16384)

	v.SetDefault("catalog.source", CatalogSourceCSV)
	v.SetDefault("catalog.path", "data/vendors.csv")
	v.SetDefault("catalog.table", "vendors")
	v.SetDefault("catalog.index", "vendors")
	v.SetDefault("catalog.max_records", 10000)
	v.SetDefault("catalog.default_base_score", 1.0)
	v.SetDefault("catalog.load_timeout", 30000)

	v.SetDefault("engine.top_k", 3)
	v.SetDefault("engine.fuzzy_threshold", 0.70)
	v.SetDefault("engine.use_session_location", true)
	v.SetDefault("engine.remember_search_location", true)
	v.SetDefault("engine.require_location", false)
	v.SetDefault("engine.no_match_policy", NoMatchApology)

	v.SetDefault("session.backend", BackendMemory)
	v.SetDefault("session.key_prefix", "partyplnr:session:")
	v.SetDefault("session.idle_ttl", 0)

	v.SetDefault("cache.backend", BackendMemory)
	v.SetDefault("cache.ttl", 120000)
	v.SetDefault("cache.key_prefix", "partyplnr:reply:")
	v.SetDefault("cache.max_entries", 10000)

	v.SetDefault("database.postgres.host", "")
	v.SetDefault("database.postgres.port", 5432)
	v.SetDefault("database.postgres.database", "")
	v.SetDefault("database.postgres.user", "")
	v.SetDefault("database.postgres.password", "")
	v.SetDefault("database.elasticsearch.url", "")
	v.SetDefault("database.elasticsearch.username", "")
	v.SetDefault("database.elasticsearch.password", "")
	v.SetDefault("database.redis.address", "")
	v.SetDefault("database.redis.password", "")
	v.SetDefault("database.redis.db", 0)

	v.SetDefault("ai.api_key", "")
	v.SetDefault("ai.base_url", "")
	v.SetDefault("ai.model", "gpt-4o-mini")
	v.SetDefault("ai.timeout", 8000)
	v.SetDefault("ai.max_tokens", 400)
	v.SetDefault("ai.temperature", 0.4)

	v.SetDefault("camunda.enabled", false)
	v.SetDefault("camunda.broker_address", "")
	v.SetDefault("camunda.max_jobs_active", 10)
	v.SetDefault("camunda.timeout", 30000)
	v.SetDefault("camunda.request_timeout", 30000)
	v.SetDefault("camunda.plaintext", true)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.output", "stdout")
}

// loadEnvFile loads the first .env found walking up to the module root.
func loadEnvFile() string {
	possiblePaths := []string{".env", "../.env", "../../.env"}
	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return path
			}
		}
	}
	return ""
}

func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// expandEnvVars resolves ${VAR} placeholders in string values.
func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		strVal, ok := v.Get(key).(string)
		if !ok {
			continue
		}
		if strings.Contains(strVal, "${") || (strings.HasPrefix(strVal, "$") && len(strVal) > 1) {
			if expanded := os.ExpandEnv(strVal); expanded != strVal {
				v.Set(key, expanded)
			}
		}
	}
}

// overrideEmptyConfig fills secrets from their conventional variable names.
func overrideEmptyConfig(cfg *Config) {
	if cfg.AI.APIKey == "" {
		cfg.AI.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	if cfg.Database.Postgres.User == "" {
		cfg.Database.Postgres.User = os.Getenv("DB_USER")
	}
	if cfg.Database.Postgres.Password == "" {
		cfg.Database.Postgres.Password = os.Getenv("DB_PASSWORD")
	}
	if cfg.Database.Redis.Address == "" {
		cfg.Database.Redis.Address = os.Getenv("REDIS_URL")
	}
}

// applyDefaults guards values that must never be zero after unmarshal.
func applyDefaults(cfg *Config) {
	if cfg.Engine.TopK <= 0 {
		cfg.Engine.TopK = 3
	}
	if cfg.Engine.FuzzyThreshold <= 0 {
		cfg.Engine.FuzzyThreshold = 0.70
	}
	if cfg.Engine.NoMatchPolicy == "" {
		cfg.Engine.NoMatchPolicy = NoMatchApology
	}
	cfg.Engine.NoMatchPolicy = strings.ToLower(cfg.Engine.NoMatchPolicy)
	cfg.Catalog.Source = strings.ToLower(cfg.Catalog.Source)
	if cfg.Catalog.DefaultBaseScore == 0 {
		cfg.Catalog.DefaultBaseScore = 1.0
	}
	if cfg.Cache.TTL <= 0 {
		cfg.Cache.TTL = 120000
	}
	if cfg.AI.Timeout <= 0 {
		cfg.AI.Timeout = 8000
	}

	if cfg.Database.Postgres.MaxConnections == 0 {
		cfg.Database.Postgres.MaxConnections = 10
	}
	if cfg.Database.Postgres.MaxIdle == 0 {
		cfg.Database.Postgres.MaxIdle = 2
	}
	if cfg.Database.Postgres.SSLMode == "" {
		cfg.Database.Postgres.SSLMode = "disable"
	}
	if cfg.Database.Elasticsearch.URL == "" && len(cfg.Database.Elasticsearch.Addresses) > 0 {
		cfg.Database.Elasticsearch.URL = cfg.Database.Elasticsearch.Addresses[0]
	}

	if cfg.Camunda.MaxJobsActive == 0 {
		cfg.Camunda.MaxJobsActive = 10
	}
	if cfg.Camunda.Timeout == 0 {
		cfg.Camunda.Timeout = 30000
	}
	if cfg.Camunda.RequestTimeout == 0 {
		cfg.Camunda.RequestTimeout = 30000
	}
}

// validateConfig validates critical configuration fields.
func validateConfig(cfg *Config) error {
	switch cfg.Catalog.Source {
	case CatalogSourceCSV:
		if cfg.Catalog.Path == "" {
			return fmt.Errorf("catalog.path is required for the csv source")
		}
	case CatalogSourcePostgres:
		if cfg.Database.Postgres.Host == "" || cfg.Database.Postgres.Database == "" {
			return fmt.Errorf("database.postgres.host and database are required for the postgres source")
		}
		if cfg.Catalog.Table == "" {
			return fmt.Errorf("catalog.table is required for the postgres source")
		}
	case CatalogSourceElasticsearch:
		if cfg.Database.Elasticsearch.GetURL() == "" {
			return fmt.Errorf("database.elasticsearch.addresses or url is required for the elasticsearch source")
		}
		if cfg.Catalog.Index == "" {
			return fmt.Errorf("catalog.index is required for the elasticsearch source")
		}
	default:
		return fmt.Errorf("catalog.source %q is not one of csv, postgres, elasticsearch", cfg.Catalog.Source)
	}

	if cfg.Engine.FuzzyThreshold > 1 {
		return fmt.Errorf("engine.fuzzy_threshold must be in (0, 1]")
	}
	switch cfg.Engine.NoMatchPolicy {
	case NoMatchApology, NoMatchClosest:
	case NoMatchAI:
		if cfg.AI.APIKey == "" {
			return fmt.Errorf("ai.api_key is required when engine.no_match_policy is ai")
		}
	default:
		return fmt.Errorf("engine.no_match_policy %q is not one of apology, closest, ai", cfg.Engine.NoMatchPolicy)
	}

	for name, backend := range map[string]string{"session.backend": cfg.Session.Backend, "cache.backend": cfg.Cache.Backend} {
		switch backend {
		case BackendMemory:
		case BackendRedis:
			if cfg.Database.Redis.Address == "" {
				return fmt.Errorf("database.redis.address is required when %s is redis", name)
			}
		default:
			return fmt.Errorf("%s %q is not one of memory, redis", name, backend)
		}
	}

	if cfg.Camunda.Enabled && cfg.Camunda.BrokerAddress == "" {
		return fmt.Errorf("camunda.broker_address is required when camunda is enabled")
	}
	return nil
}

// GetDuration converts milliseconds from config to time.Duration
func GetDuration(milliseconds int) time.Duration {
	return time.Duration(milliseconds) * time.Millisecond
}
