package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment" default:"development"`
	Log         struct {
		Level  string `yaml:"level" default:"info"`
		Format string `yaml:"format" default:"json"`
		Output string `yaml:"output" default:"stdout"`
		// Collect ships aggregated error logs to kafka.logs_topic when Kafka is enabled.
		Collect struct {
			Enabled        bool          `yaml:"enabled"`
			Interval       time.Duration `yaml:"interval" default:"30s"`
			CountThreshold int           `yaml:"count_threshold" default:"100"`
		} `yaml:"collect"`
	} `yaml:"log"`
	Server struct {
		Port            int           `yaml:"port" default:"8080"`
		ReadTimeout     time.Duration `yaml:"read_timeout" default:"15s"`
		WriteTimeout    time.Duration `yaml:"write_timeout" default:"30s"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"10s"`
		RateLimit       struct {
			Enabled   bool          `yaml:"enabled"`
			Burst     int           `yaml:"burst" default:"20"`
			PerSecond float64       `yaml:"per_second" default:"5"`
			IdleTTL   time.Duration `yaml:"idle_ttl" default:"10m"`
		} `yaml:"rate_limit"`
	} `yaml:"server"`
	Metrics struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path" default:"/metrics"`
	} `yaml:"metrics"`
	Scanner struct {
		BaseURL   string        `yaml:"base_url" default:"https://scanner.tradingview.com"`
		SearchURL string        `yaml:"search_url" default:"https://symbol-search.tradingview.com/symbol_search"`
		LogoURL   string        `yaml:"logo_url" default:"https://s3-symbol-logo.tradingview.com"`
		Timeout   time.Duration `yaml:"timeout" default:"10s"`
		ProxyURL  string        `yaml:"proxy_url"`
		UserAgent string        `yaml:"user_agent"`
	} `yaml:"scanner"`
	SearchCache struct {
		Backend string        `yaml:"backend" default:"memory"`
		TTL     time.Duration `yaml:"ttl" default:"5m"`
		Redis   struct {
			Addr     string `yaml:"addr" default:"localhost:6379"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
		} `yaml:"redis"`
	} `yaml:"search_cache"`
	Kafka struct {
		Enabled       bool     `yaml:"enabled"`
		Brokers       []string `yaml:"brokers"`
		RequestsTopic string   `yaml:"requests_topic" default:"tascan.analysis.requests"`
		ResultsTopic  string   `yaml:"results_topic" default:"tascan.analysis.results"`
		LogsTopic     string   `yaml:"logs_topic" default:"tascan.logs"`
		RequiredAcks  int      `yaml:"required_acks" default:"-1"`
		Compression   string   `yaml:"compression" default:"snappy"`
		Producer      struct {
			MaxAttempts  int           `yaml:"max_attempts" default:"5"`
			Linger       time.Duration `yaml:"linger" default:"20ms"`
			BatchBytes   int           `yaml:"batch_bytes" default:"1048576"`
			BatchSize    int           `yaml:"batch_size" default:"100"`
			WriteTimeout time.Duration `yaml:"write_timeout" default:"10s"`
			ReadTimeout  time.Duration `yaml:"read_timeout" default:"10s"`
			Async        bool          `yaml:"async"`
		} `yaml:"producer"`
		Consumer struct {
			GroupID    string        `yaml:"group_id" default:"tascan-analyzer"`
			Workers    int           `yaml:"workers" default:"4"`
			BufferSize int           `yaml:"buffer_size" default:"256"`
			RetryMax   int           `yaml:"retry_max" default:"3"`
			BackoffMin time.Duration `yaml:"backoff_min" default:"200ms"`
			BackoffMax time.Duration `yaml:"backoff_max" default:"5s"`
			DLQTopic   string        `yaml:"dlq_topic" default:"tascan.analysis.requests.dlq"`
			MinBytes   int           `yaml:"min_bytes" default:"1"`
			MaxBytes   int           `yaml:"max_bytes" default:"10485760"`
		} `yaml:"consumer"`
	} `yaml:"kafka"`
}

// Default returns a config populated only from defaults.
func Default() (*Config, error) {
	var c Config
	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("config defaults: %w", err)
	}
	return &c, nil
}

// Load reads and parses a YAML configuration file. Unset fields take their defaults.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(b)
}

// Parse decodes YAML bytes, applies defaults and validates.
func Parse(b []byte) (*Config, error) {
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("config defaults: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}
	c.ApplyEnv(os.Getenv)
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

// ApplyEnv overrides fields from the environment lookup.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if v := getenv("SCANNER_BASE_URL"); v != "" {
		c.Scanner.BaseURL = v
	}
	if v := getenv("SCANNER_PROXY_URL"); v != "" {
		c.Scanner.ProxyURL = v
	}
	if v := getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := getenv("SEARCH_CACHE_BACKEND"); v != "" {
		c.SearchCache.Backend = v
	}
	if v := getenv("REDIS_ADDR"); v != "" {
		c.SearchCache.Redis.Addr = v
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if c.Scanner.BaseURL == "" {
		return fmt.Errorf("scanner.base_url is required")
	}
	if c.Scanner.Timeout <= 0 {
		return fmt.Errorf("scanner.timeout must be positive")
	}
	if c.Server.RateLimit.Enabled && c.Server.RateLimit.PerSecond <= 0 {
		return fmt.Errorf("server.rate_limit.per_second must be positive")
	}
	if c.Server.RateLimit.Enabled && c.Server.RateLimit.IdleTTL <= 0 {
		return fmt.Errorf("server.rate_limit.idle_ttl must be positive")
	}
	switch c.SearchCache.Backend {
	case "none", "memory":
	case "redis":
		if c.SearchCache.Redis.Addr == "" {
			return fmt.Errorf("search_cache.redis.addr is required for redis backend")
		}
	default:
		return fmt.Errorf("search_cache.backend must be 'none', 'memory' or 'redis', got '%s'", c.SearchCache.Backend)
	}
	if c.Kafka.Enabled {
		if len(c.Kafka.Brokers) == 0 {
			return fmt.Errorf("kafka.brokers cannot be empty when kafka is enabled")
		}
		if c.Kafka.RequestsTopic == "" || c.Kafka.ResultsTopic == "" {
			return fmt.Errorf("kafka.requests_topic and kafka.results_topic are required")
		}
	}
	return nil
}
