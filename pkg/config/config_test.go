package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAppliesDefaults(t *testing.T) {
	c, err := Parse([]byte("environment: test\n"))
	require.NoError(t, err)

	assert.Equal(t, "test", c.Environment)
	assert.Equal(t, 8080, c.Server.Port)
	assert.Equal(t, 10*time.Second, c.Scanner.Timeout)
	assert.Equal(t, "https://scanner.tradingview.com", c.Scanner.BaseURL)
	assert.Equal(t, "memory", c.SearchCache.Backend)
	assert.Equal(t, 5*time.Minute, c.SearchCache.TTL)
	assert.Equal(t, -1, c.Kafka.RequiredAcks)
	assert.Equal(t, 4, c.Kafka.Consumer.Workers)
	assert.False(t, c.Kafka.Enabled)
}

func TestParseKeepsExplicitValues(t *testing.T) {
	c, err := Parse([]byte(`
environment: prod
scanner:
  base_url: http://scanner.local
  timeout: 3s
search_cache:
  backend: redis
  ttl: 1m
  redis:
    addr: redis:6379
kafka:
  enabled: true
  brokers: [k1:9092, k2:9092]
`))
	require.NoError(t, err)
	assert.Equal(t, "http://scanner.local", c.Scanner.BaseURL)
	assert.Equal(t, 3*time.Second, c.Scanner.Timeout)
	assert.Equal(t, "redis", c.SearchCache.Backend)
	assert.Equal(t, "redis:6379", c.SearchCache.Redis.Addr)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, c.Kafka.Brokers)
	assert.Equal(t, "tascan.analysis.requests", c.Kafka.RequestsTopic)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"unknown cache backend", "search_cache: {backend: disk}", "search_cache.backend"},
		{"kafka without brokers", "kafka: {enabled: true}", "kafka.brokers"},
		{"rate limit negative rate", "server: {rate_limit: {enabled: true, per_second: -1}}", "server.rate_limit.per_second"},
		{"rate limit negative idle ttl", "server: {rate_limit: {enabled: true, idle_ttl: -1m}}", "server.rate_limit.idle_ttl"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestApplyEnv(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	env := map[string]string{
		"SCANNER_BASE_URL":     "http://mirror",
		"SCANNER_PROXY_URL":    "http://proxy:3128",
		"KAFKA_BROKERS":        "a:9092,b:9092",
		"LOG_LEVEL":            "debug",
		"SEARCH_CACHE_BACKEND": "none",
		"REDIS_ADDR":           "cache:6379",
	}
	c.ApplyEnv(func(k string) string { return env[k] })

	assert.Equal(t, "http://mirror", c.Scanner.BaseURL)
	assert.Equal(t, "http://proxy:3128", c.Scanner.ProxyURL)
	assert.Equal(t, []string{"a:9092", "b:9092"}, c.Kafka.Brokers)
	assert.Equal(t, "debug", c.Log.Level)
	assert.Equal(t, "none", c.SearchCache.Backend)
	assert.Equal(t, "cache:6379", c.SearchCache.Redis.Addr)
}

func TestLoadWithEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("environment: test\n"), 0o600))
	t.Setenv("LOG_LEVEL", "warn")

	c, err := LoadWithEnv(path)
	require.NoError(t, err)
	assert.Equal(t, "warn", c.Log.Level)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
