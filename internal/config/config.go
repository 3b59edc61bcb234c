package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Index drivers.
const (
	DriverMeilisearch = "meilisearch"
	DriverRedis       = "redis"
)

// Config holds the papersearch server configuration.
type Config struct {
	HTTP    HTTPConfig    `yaml:"http"`
	Index   IndexConfig   `yaml:"index"`
	Cache   CacheConfig   `yaml:"cache"`
	Search  SearchConfig  `yaml:"search"`
	Logging LoggingConfig `yaml:"logging"`
	Tracing TracingConfig `yaml:"tracing"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error (default: determined by env)
	Format string `yaml:"format"` // json, console (default: determined by env)
}

// TracingConfig holds OpenTelemetry settings.
type TracingConfig struct {
	Enabled     bool    `yaml:"enabled"`
	ServiceName string  `yaml:"service_name"`
	SampleRatio float64 `yaml:"sample_ratio"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port               int      `yaml:"port"`
	ReadTimeoutSec     int      `yaml:"read_timeout_sec"`
	WriteTimeoutSec    int      `yaml:"write_timeout_sec"`
	ShutdownSec        int      `yaml:"shutdown_timeout_sec"`
	CORSAllowedOrigins []string `yaml:"cors_allowed_origins"`
}

// IndexConfig selects and configures the search index backend.
type IndexConfig struct {
	Driver string `yaml:"driver"` // meilisearch, redis (default: meilisearch)
	Name   string `yaml:"name"`

	// meilisearch
	URL    string `yaml:"url"`
	APIKey string `yaml:"api_key"`

	// redis
	Addrs          []string `yaml:"addrs"`
	Password       string   `yaml:"password"`
	KeyPrefix      string   `yaml:"key_prefix"`
	MaxFacetValues int      `yaml:"max_facet_values"`

	ApplySettings     bool `yaml:"apply_settings"`
	ReadinessTimeout  int  `yaml:"readiness_timeout_sec"`
	RequestTimeoutSec int  `yaml:"request_timeout_sec"`
}

// CacheConfig holds response cache settings.
type CacheConfig struct {
	Addrs            []string `yaml:"addrs"`
	Password         string   `yaml:"password"`
	DB               int      `yaml:"db"`
	TTLSec           int      `yaml:"ttl_sec"`
	WriteTimeoutMs   int      `yaml:"write_timeout_ms"`
	KeyPrefix        string   `yaml:"key_prefix"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// SearchConfig holds orchestrator settings.
type SearchConfig struct {
	BranchTimeoutMs int `yaml:"branch_timeout_ms"`
}

// TTL returns the cache entry lifetime.
func (c CacheConfig) TTL() time.Duration { return time.Duration(c.TTLSec) * time.Second }

// WriteTimeout returns the bound on a background cache write.
func (c CacheConfig) WriteTimeout() time.Duration {
	return time.Duration(c.WriteTimeoutMs) * time.Millisecond
}

// BranchTimeout returns the bound on a single index query.
func (c SearchConfig) BranchTimeout() time.Duration {
	return time.Duration(c.BranchTimeoutMs) * time.Millisecond
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	return Parse(data)
}

// Parse expands env variables in data, decodes it, applies defaults and validates.
func Parse(data []byte) (Config, error) {
	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.Port == 0 {
		c.HTTP.Port = 8080
	}
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 10
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if len(c.HTTP.CORSAllowedOrigins) == 0 {
		c.HTTP.CORSAllowedOrigins = []string{"*"}
	}

	if c.Index.Driver == "" {
		c.Index.Driver = DriverMeilisearch
	}
	if c.Index.Name == "" {
		c.Index.Name = "papers"
	}
	if c.Index.URL == "" && c.Index.Driver == DriverMeilisearch {
		c.Index.URL = "http://localhost:7700"
	}
	if c.Index.KeyPrefix == "" {
		c.Index.KeyPrefix = "paper:"
	}
	if c.Index.MaxFacetValues <= 0 {
		c.Index.MaxFacetValues = 100
	}
	if c.Index.ReadinessTimeout <= 0 {
		c.Index.ReadinessTimeout = 10
	}
	if c.Index.RequestTimeoutSec <= 0 {
		c.Index.RequestTimeoutSec = 30
	}

	if c.Cache.TTLSec <= 0 {
		c.Cache.TTLSec = 3600
	}
	if c.Cache.WriteTimeoutMs <= 0 {
		c.Cache.WriteTimeoutMs = 2000
	}
	if c.Cache.KeyPrefix == "" {
		c.Cache.KeyPrefix = "papersearch:"
	}
	if c.Cache.ReadinessTimeout <= 0 {
		c.Cache.ReadinessTimeout = 10
	}

	if c.Search.BranchTimeoutMs <= 0 {
		c.Search.BranchTimeoutMs = 5000
	}

	if c.Tracing.ServiceName == "" {
		c.Tracing.ServiceName = "papersearch"
	}
	if c.Tracing.SampleRatio <= 0 {
		c.Tracing.SampleRatio = 1
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}

	switch c.Index.Driver {
	case DriverMeilisearch:
		if c.Index.URL == "" {
			return fmt.Errorf("index.url is required for the %s driver", DriverMeilisearch)
		}
		if c.Index.APIKey == "" {
			return fmt.Errorf("index.api_key is required for the %s driver", DriverMeilisearch)
		}
	case DriverRedis:
		if len(c.Index.Addrs) == 0 {
			return fmt.Errorf("index.addrs is required for the %s driver", DriverRedis)
		}
	default:
		return fmt.Errorf("index.driver must be %q or %q, got %q", DriverMeilisearch, DriverRedis, c.Index.Driver)
	}

	if len(c.Cache.Addrs) == 0 {
		return fmt.Errorf("cache.addrs is required")
	}
	if c.Cache.DB < 0 {
		return fmt.Errorf("cache.db must be non-negative, got %d", c.Cache.DB)
	}

	switch c.Logging.Format {
	case "", "json", "console":
		// ok
	default:
		return fmt.Errorf("logging.format must be \"json\" or \"console\", got %q", c.Logging.Format)
	}

	if c.Tracing.SampleRatio > 1 {
		return fmt.Errorf("tracing.sample_ratio must be in (0, 1], got %g", c.Tracing.SampleRatio)
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
