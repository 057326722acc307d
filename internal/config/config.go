package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/kailas-cloud/jsonidx/internal/backoff"
	"github.com/kailas-cloud/jsonidx/internal/db/redis"
	"github.com/kailas-cloud/jsonidx/internal/domain"
)

// Config holds the jsonidx configuration.
type Config struct {
	Redis   RedisConfig   `yaml:"redis"`
	Index   IndexConfig   `yaml:"index"`
	Load    LoadConfig    `yaml:"load"`
	HTTP    HTTPConfig    `yaml:"http"`
	Logging LoggingConfig `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int      `yaml:"port"`
	ReadTimeoutSec  int      `yaml:"read_timeout_sec"`
	WriteTimeoutSec int      `yaml:"write_timeout_sec"`
	ShutdownSec     int      `yaml:"shutdown_timeout_sec"`
	APIKeys         []string `yaml:"api_keys"`
}

// RedisConfig holds connection and pool settings. Credentials are separate
// fields; a composite URI is never accepted.
type RedisConfig struct {
	Host             string        `yaml:"host"`
	Port             int           `yaml:"port"`
	Username         string        `yaml:"username"`
	Password         string        `yaml:"password"`
	DB               int           `yaml:"db"`
	ConnectTimeout   time.Duration `yaml:"connect_timeout"`
	RequestTimeout   time.Duration `yaml:"request_timeout"`
	PoolMinIdle      int           `yaml:"pool_min_idle"`
	PoolMaxIdle      int           `yaml:"pool_max_idle"`
	PoolIdleCleanup  time.Duration `yaml:"pool_idle_cleanup"`
	MaxWait          time.Duration `yaml:"max_wait"`
	ReadinessTimeout time.Duration `yaml:"readiness_timeout"`
}

// Store converts the section into store options.
func (c RedisConfig) Store() redis.Config {
	return redis.Config{
		Host:            c.Host,
		Port:            c.Port,
		Username:        c.Username,
		Password:        c.Password,
		DB:              c.DB,
		ConnectTimeout:  c.ConnectTimeout,
		RequestTimeout:  c.RequestTimeout,
		PoolMinIdle:     c.PoolMinIdle,
		PoolMaxIdle:     c.PoolMaxIdle,
		PoolIdleCleanup: c.PoolIdleCleanup,
		MaxWait:         c.MaxWait,
	}
}

// IndexConfig names the index and how long to wait for it.
type IndexConfig struct {
	Name         string          `yaml:"name"`
	Alias        string          `yaml:"alias"`
	KeyPrefix    string          `yaml:"key_prefix"`
	Dictionary   string          `yaml:"dictionary"`
	ReadyTimeout time.Duration   `yaml:"ready_timeout"`
	Readiness    *backoff.Config `yaml:"readiness"`
}

// LoadConfig holds the workflow defaults. CLI flags override them.
type LoadConfig struct {
	Quantity      int           `yaml:"quantity"`
	BatchSize     int           `yaml:"batch_size"`
	Limit         *int          `yaml:"limit"`
	Dialect       int           `yaml:"dialect"`
	SettleDelay   time.Duration `yaml:"settle_delay"`
	SuggestTrials int           `yaml:"suggest_trials"`
	Seed          uint64        `yaml:"seed"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	return LoadFile(findConfigPath(env))
}

// LoadFile reads configuration from an explicit path.
func LoadFile(path string) (Config, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes, defaults and validates a YAML document.
func Parse(data []byte) (Config, error) {
	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, &domain.ConfigurationError{Field: "yaml", Err: err}
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
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
	if c.Redis.Host == "" {
		c.Redis.Host = "localhost"
	}
	if c.Redis.Port == 0 {
		c.Redis.Port = 6379
	}
	if c.Redis.ReadinessTimeout <= 0 {
		c.Redis.ReadinessTimeout = 10 * time.Second
	}
	if c.Index.Name == "" {
		c.Index.Name = "idx_zew_events"
	}
	if c.Index.Alias == "" {
		c.Index.Alias = "idxa_zew_events"
	}
	if c.Index.KeyPrefix == "" {
		c.Index.KeyPrefix = "zew:activities:"
	}
	if c.Index.Dictionary == "" {
		c.Index.Dictionary = "zew:suggest:names"
	}
	if c.Index.ReadyTimeout <= 0 {
		c.Index.ReadyTimeout = 30 * time.Second
	}
	if c.Load.BatchSize == 0 {
		c.Load.BatchSize = 200
	}
	if c.Load.Limit == nil {
		limit := 3
		c.Load.Limit = &limit
	}
	if c.Load.Dialect == 0 {
		c.Load.Dialect = 2
	}
}

// Validate checks the configuration for correctness. Every failure is a
// *domain.ConfigurationError naming the offending key.
func (c *Config) Validate() error {
	var errs []error
	fail := func(field, format string, args ...any) {
		errs = append(errs, &domain.ConfigurationError{Field: field, Err: fmt.Errorf(format, args...)})
	}

	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		fail("http.port", "must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if strings.Contains(c.Redis.Host, "://") || strings.Contains(c.Redis.Host, "@") {
		fail("redis.host", "must be a bare host name, got %q", c.Redis.Host)
	}
	if c.Redis.Port <= 0 || c.Redis.Port > 65535 {
		fail("redis.port", "must be between 1 and 65535, got %d", c.Redis.Port)
	}
	if c.Redis.DB < 0 {
		fail("redis.db", "must not be negative, got %d", c.Redis.DB)
	}
	if c.Index.Alias == c.Index.Name {
		fail("index.alias", "must differ from the index name %q", c.Index.Name)
	}
	if c.Load.Quantity < 0 {
		fail("load.quantity", "must not be negative, got %d", c.Load.Quantity)
	}
	if c.Load.BatchSize < 1 || c.Load.BatchSize > 200 {
		fail("load.batch_size", "must be between 1 and 200, got %d", c.Load.BatchSize)
	}
	if c.Load.Limit != nil && *c.Load.Limit < 0 {
		fail("load.limit", "must not be negative, got %d", *c.Load.Limit)
	}
	if c.Load.Dialect < 1 || c.Load.Dialect > 3 {
		fail("load.dialect", "must be 1, 2 or 3, got %d", c.Load.Dialect)
	}
	return errors.Join(errs...)
}

// ParseAddress splits a host:port pair. Anything that looks like a URI or
// carries credentials is rejected.
func ParseAddress(addr string) (string, int, error) {
	if strings.Contains(addr, "://") || strings.Contains(addr, "@") {
		return "", 0, &domain.ConfigurationError{Field: "address", Err: errors.New("credentials and schemes are not accepted in an address")}
	}
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return "", 0, &domain.ConfigurationError{Field: "address", Err: err}
	}
	if host == "" {
		return "", 0, &domain.ConfigurationError{Field: "address", Err: errors.New("missing host")}
	}
	port, err := strconv.Atoi(portStr)
	if err != nil || port <= 0 || port > 65535 {
		return "", 0, &domain.ConfigurationError{Field: "address", Err: fmt.Errorf("invalid port %q", portStr)}
	}
	return host, port, nil
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
