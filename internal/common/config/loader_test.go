package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadFromFile_Defaults(t *testing.T) {
	path := writeConfig(t, `
catalog:
  source: csv
  path: data/vendors.csv
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.Engine.TopK)
	assert.Equal(t, 0.70, cfg.Engine.FuzzyThreshold)
	assert.True(t, cfg.Engine.UseSessionLocation)
	assert.True(t, cfg.Engine.RememberSearchLocation)
	assert.False(t, cfg.Engine.RequireLocation)
	assert.Equal(t, NoMatchApology, cfg.Engine.NoMatchPolicy)
	assert.Equal(t, 120*time.Second, GetDuration(cfg.Cache.TTL))
	assert.Equal(t, 8*time.Second, GetDuration(cfg.AI.Timeout))
	assert.Equal(t, 1.0, cfg.Catalog.DefaultBaseScore)
	assert.Equal(t, BackendMemory, cfg.Session.Backend)
	assert.Equal(t, "pp_session", cfg.Server.SessionCookie)
}

func TestLoadFromFile_FileValues(t *testing.T) {
	path := writeConfig(t, `
catalog:
  source: CSV
  path: /srv/vendors.csv
  default_base_score: 2.5
engine:
  top_k: 5
  fuzzy_threshold: 0.8
  use_session_location: false
  no_match_policy: Closest
cache:
  ttl: 60000
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, CatalogSourceCSV, cfg.Catalog.Source)
	assert.Equal(t, 2.5, cfg.Catalog.DefaultBaseScore)
	assert.Equal(t, 5, cfg.Engine.TopK)
	assert.Equal(t, 0.8, cfg.Engine.FuzzyThreshold)
	assert.False(t, cfg.Engine.UseSessionLocation)
	assert.Equal(t, NoMatchClosest, cfg.Engine.NoMatchPolicy)
	assert.Equal(t, time.Minute, GetDuration(cfg.Cache.TTL))
}

func TestLoadFromFile_EnvOverrides(t *testing.T) {
	t.Setenv("ENGINE_TOP_K", "7")
	t.Setenv("PP_TEST_CATALOG", "/env/vendors.csv")
	t.Setenv("OPENAI_API_KEY", "sk-test")

	path := writeConfig(t, `
catalog:
  path: ${PP_TEST_CATALOG}
engine:
  no_match_policy: ai
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, 7, cfg.Engine.TopK)
	assert.Equal(t, "/env/vendors.csv", cfg.Catalog.Path)
	assert.Equal(t, "sk-test", cfg.AI.APIKey)
}

func TestLoadFromFile_Missing(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidateConfig(t *testing.T) {
	valid := func() *Config {
		cfg := &Config{
			Catalog: CatalogConfig{Source: CatalogSourceCSV, Path: "vendors.csv"},
			Engine:  EngineConfig{FuzzyThreshold: 0.7, NoMatchPolicy: NoMatchApology},
			Session: SessionConfig{Backend: BackendMemory},
			Cache:   CacheConfig{Backend: BackendMemory},
		}
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"unknown source", func(c *Config) { c.Catalog.Source = "xlsx" }, "catalog.source"},
		{"csv without path", func(c *Config) { c.Catalog.Path = "" }, "catalog.path"},
		{"postgres without host", func(c *Config) { c.Catalog.Source = CatalogSourcePostgres }, "database.postgres"},
		{"es without url", func(c *Config) { c.Catalog.Source = CatalogSourceElasticsearch }, "database.elasticsearch"},
		{"threshold above one", func(c *Config) { c.Engine.FuzzyThreshold = 1.5 }, "fuzzy_threshold"},
		{"unknown policy", func(c *Config) { c.Engine.NoMatchPolicy = "shrug" }, "no_match_policy"},
		{"ai without key", func(c *Config) { c.Engine.NoMatchPolicy = NoMatchAI }, "ai.api_key"},
		{"redis session without address", func(c *Config) { c.Session.Backend = BackendRedis }, "database.redis.address"},
		{"unknown cache backend", func(c *Config) { c.Cache.Backend = "memcached" }, "cache.backend"},
		{"camunda without broker", func(c *Config) { c.Camunda.Enabled = true }, "camunda.broker_address"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := validateConfig(cfg)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
