package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

var ErrMissingSource = errors.New("source needs a url and token, or a local file")

// Source locates one report.
type Source struct {
	Name  string
	URL   string
	Token string
	File  string
	Sheet string
}

// Local reports whether the source is read from disk.
func (s Source) Local() bool {
	return s.File != ""
}

// Config holds all configuration for the application.
type Config struct {
	AppEnv                string
	AppTitle              string
	DebugMode             bool
	Operational           Source
	Survey                Source
	FetchTimeout          time.Duration
	CacheTTL              time.Duration
	CacheBackend          string
	RedisAddr             string
	RedisPassword         string
	RedisDB               int
	StagingDSN            string
	GRPCPort              int
	GRPCReflectionEnabled bool
	HTTPAddr              string
	ExpectedTables        []string
	GoalsFile             string
}

// LoadFromEnv loads configuration from environment variables.
func LoadFromEnv() *Config {
	return &Config{
		AppEnv:    getEnv("APP_ENV", "development"),
		AppTitle:  getEnv("APP_TITLE", "Dashboard Eloca"),
		DebugMode: getBool("DEBUG_MODE", false),
		Operational: Source{
			Name:  "operational",
			URL:   getEnv("ELOCA_URL", ""),
			Token: getEnv("DESKMANAGER_TOKEN", ""),
			File:  getEnv("ELOCA_FILE", ""),
			Sheet: getEnv("OPERATIONAL_SHEET", "Relatório_Chamados_08-04-2024_1"),
		},
		Survey: Source{
			Name:  "csat",
			URL:   getEnv("CSAT_URL", ""),
			Token: getEnv("CSAT_TOKEN", getEnv("DESKMANAGER_TOKEN", "")),
			File:  getEnv("CSAT_FILE", ""),
			Sheet: getEnv("CSAT_SHEET", "Pesquisa de Satisfação"),
		},
		FetchTimeout:          getDuration("FETCH_TIMEOUT", 30*time.Second),
		CacheTTL:              time.Duration(getInt("CACHE_TTL", 3600)) * time.Second,
		CacheBackend:          strings.ToLower(getEnv("CACHE_BACKEND", "memory")),
		RedisAddr:             getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:         getEnv("REDIS_PASSWORD", ""),
		RedisDB:               getInt("REDIS_DB", 0),
		StagingDSN:            getEnv("STAGING_DSN", "file:staging?mode=memory&cache=shared"),
		GRPCPort:              getInt("GRPC_PORT", 50051),
		GRPCReflectionEnabled: getBool("GRPC_REFLECTION_ENABLED", false),
		HTTPAddr:              getEnv("HTTP_ADDR", ":8080"),
		ExpectedTables:        getList("EXPECTED_TABLES"),
		GoalsFile:             getEnv("GOALS_FILE", ""),
	}
}

// Validate refuses configurations the pipeline cannot run with.
func (c *Config) Validate() error {
	for _, src := range []Source{c.Operational, c.Survey} {
		if src.Local() {
			continue
		}
		if src.URL == "" || src.Token == "" {
			return fmt.Errorf("%s: %w", src.Name, ErrMissingSource)
		}
	}
	if c.CacheTTL <= 0 {
		return fmt.Errorf("CACHE_TTL must be positive, got %s", c.CacheTTL)
	}
	if c.FetchTimeout <= 0 {
		return fmt.Errorf("FETCH_TIMEOUT must be positive, got %s", c.FetchTimeout)
	}
	switch c.CacheBackend {
	case "memory", "redis":
	default:
		return fmt.Errorf("unknown CACHE_BACKEND %q", c.CacheBackend)
	}
	return nil
}

// NewLogger creates a new Zap logger based on the config.
func NewLogger(cfg *Config) (*zap.Logger, error) {
	if cfg.AppEnv == "production" && !cfg.DebugMode {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getInt(key string, fallback int) int {
	n, err := strconv.Atoi(getEnv(key, strconv.Itoa(fallback)))
	if err != nil {
		return fallback
	}
	return n
}

func getBool(key string, fallback bool) bool {
	b, err := strconv.ParseBool(getEnv(key, strconv.FormatBool(fallback)))
	if err != nil {
		return fallback
	}
	return b
}

// getDuration accepts Go durations ("45s") or plain seconds ("45").
func getDuration(key string, fallback time.Duration) time.Duration {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(raw); err == nil {
		return time.Duration(secs) * time.Second
	}
	return fallback
}

func getList(key string) []string {
	raw := getEnv(key, "")
	if raw == "" {
		return nil
	}
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
