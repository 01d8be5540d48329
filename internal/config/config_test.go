package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/godilite/eloca-metrics/internal/metrics"
)

var configKeys = []string{
	"APP_ENV", "APP_TITLE", "DEBUG_MODE", "ELOCA_URL", "DESKMANAGER_TOKEN", "ELOCA_FILE",
	"OPERATIONAL_SHEET", "CSAT_URL", "CSAT_TOKEN", "CSAT_FILE", "CSAT_SHEET", "FETCH_TIMEOUT",
	"CACHE_TTL", "CACHE_BACKEND", "REDIS_ADDR", "REDIS_PASSWORD", "REDIS_DB", "STAGING_DSN",
	"GRPC_PORT", "GRPC_REFLECTION_ENABLED", "HTTP_ADDR", "EXPECTED_TABLES", "GOALS_FILE",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range configKeys {
		t.Setenv(k, "")
	}
}

func TestLoadFromEnvDefaults(t *testing.T) {
	clearEnv(t)

	cfg := LoadFromEnv()

	assert.Equal(t, "development", cfg.AppEnv)
	assert.Equal(t, "Dashboard Eloca", cfg.AppTitle)
	assert.Equal(t, "Relatório_Chamados_08-04-2024_1", cfg.Operational.Sheet)
	assert.Equal(t, "Pesquisa de Satisfação", cfg.Survey.Sheet)
	assert.Equal(t, 30*time.Second, cfg.FetchTimeout)
	assert.Equal(t, time.Hour, cfg.CacheTTL)
	assert.Equal(t, "memory", cfg.CacheBackend)
	assert.Equal(t, 50051, cfg.GRPCPort)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Nil(t, cfg.ExpectedTables)
	assert.False(t, cfg.GRPCReflectionEnabled)
}

func TestLoadFromEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("ELOCA_URL", "https://eloca.example/report")
	t.Setenv("DESKMANAGER_TOKEN", "tok")
	t.Setenv("CSAT_URL", "https://eloca.example/csat")
	t.Setenv("FETCH_TIMEOUT", "45")
	t.Setenv("CACHE_TTL", "60")
	t.Setenv("CACHE_BACKEND", "Redis")
	t.Setenv("REDIS_DB", "2")
	t.Setenv("GRPC_PORT", "not-a-number")
	t.Setenv("GRPC_REFLECTION_ENABLED", "true")
	t.Setenv("EXPECTED_TABLES", " CSAT, ,Metas Individuais ")

	cfg := LoadFromEnv()

	assert.Equal(t, "tok", cfg.Operational.Token)
	assert.Equal(t, "tok", cfg.Survey.Token, "survey token falls back to the shared one")
	assert.Equal(t, 45*time.Second, cfg.FetchTimeout)
	assert.Equal(t, time.Minute, cfg.CacheTTL)
	assert.Equal(t, "redis", cfg.CacheBackend)
	assert.Equal(t, 2, cfg.RedisDB)
	assert.Equal(t, 50051, cfg.GRPCPort)
	assert.True(t, cfg.GRPCReflectionEnabled)
	assert.Equal(t, []string{"CSAT", "Metas Individuais"}, cfg.ExpectedTables)
	require.NoError(t, cfg.Validate())

	t.Setenv("CSAT_TOKEN", "other")
	t.Setenv("FETCH_TIMEOUT", "1m30s")
	cfg = LoadFromEnv()
	assert.Equal(t, "other", cfg.Survey.Token)
	assert.Equal(t, 90*time.Second, cfg.FetchTimeout)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Operational:  Source{Name: "operational", File: "op.xlsx"},
			Survey:       Source{Name: "csat", URL: "https://x", Token: "t"},
			FetchTimeout: time.Second,
			CacheTTL:     time.Minute,
			CacheBackend: "memory",
		}
	}

	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"valid", func(*Config) {}, ""},
		{"remote source without token", func(c *Config) { c.Survey.Token = "" }, "csat"},
		{"no source location", func(c *Config) { c.Operational = Source{Name: "operational"} }, "operational"},
		{"zero ttl", func(c *Config) { c.CacheTTL = 0 }, "CACHE_TTL"},
		{"negative timeout", func(c *Config) { c.FetchTimeout = -time.Second }, "FETCH_TIMEOUT"},
		{"unknown backend", func(c *Config) { c.CacheBackend = "memcached" }, "CACHE_BACKEND"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.want == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}

	cfg := valid()
	cfg.Survey.URL = ""
	assert.True(t, errors.Is(cfg.Validate(), ErrMissingSource))
}

func TestNewLogger(t *testing.T) {
	for _, cfg := range []*Config{
		{AppEnv: "production"},
		{AppEnv: "production", DebugMode: true},
		{AppEnv: "development"},
	} {
		logger, err := NewLogger(cfg)
		require.NoError(t, err)
		assert.NotNil(t, logger)
	}
}

func TestLoadGoalsFile(t *testing.T) {
	t.Run("empty path", func(t *testing.T) {
		g, err := LoadGoalsFile("")
		require.NoError(t, err)
		assert.Equal(t, metrics.DefaultSettings(), g.Apply(metrics.DefaultSettings()))
	})

	t.Run("partial override", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "goals.yaml")
		body := "goals:\n  csat_percent: 85\nsla_defaults:\n  resolution: 95\nrosters:\n  chart_one: [Ana, Bruno]\n"
		require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

		g, err := LoadGoalsFile(path)
		require.NoError(t, err)

		s := g.Apply(metrics.DefaultSettings())
		assert.Equal(t, 85.0, s.Goals.CSATPercent)
		assert.Equal(t, 30.0, s.Goals.ServiceMinutes)
		assert.Equal(t, 90.0, s.SLAFirstDefault)
		assert.Equal(t, 95.0, s.SLAResolutionDefault)
		assert.Equal(t, []string{"Ana", "Bruno"}, s.ChartOneRoster)
		assert.Equal(t, metrics.DefaultSettings().ChartTwoRoster, s.ChartTwoRoster)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadGoalsFile(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})

	t.Run("malformed yaml", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "goals.yaml")
		require.NoError(t, os.WriteFile(path, []byte("goals: [unterminated"), 0o600))
		_, err := LoadGoalsFile(path)
		assert.Error(t, err)
	})

	t.Run("nil override", func(t *testing.T) {
		var g *GoalsFile
		assert.Equal(t, metrics.DefaultSettings(), g.Apply(metrics.DefaultSettings()))
	})
}
