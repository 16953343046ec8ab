package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config contains runtime configuration for the alertboard service.
type Config struct {
	Server     ServerConfig     `yaml:"server" mapstructure:"server"`
	OpenSearch OpenSearchConfig `yaml:"opensearch" mapstructure:"opensearch"`
	APIKey     string           `yaml:"api_key" mapstructure:"api_key"`
	RateLimit  RateLimitConfig  `yaml:"ratelimit" mapstructure:"ratelimit"`
	Retry      RetryConfig      `yaml:"retry" mapstructure:"retry"`
	Stream     StreamConfig     `yaml:"stream" mapstructure:"stream"`
	CORS       CORSConfig       `yaml:"cors" mapstructure:"cors"`
	Logging    LoggingConfig    `yaml:"logging" mapstructure:"logging"`
	NATS       NATSConfig       `yaml:"nats" mapstructure:"nats"`
}

// ServerConfig captures HTTP server settings.
type ServerConfig struct {
	Port               int `yaml:"port" mapstructure:"port"`
	ReadTimeoutSeconds int `yaml:"read_timeout_seconds" mapstructure:"read_timeout_seconds"`
	IdleTimeoutSeconds int `yaml:"idle_timeout_seconds" mapstructure:"idle_timeout_seconds"`
}

// ReadTimeout returns the configured read timeout as a duration.
func (s ServerConfig) ReadTimeout() time.Duration {
	return time.Duration(s.ReadTimeoutSeconds) * time.Second
}

// IdleTimeout returns the configured idle timeout as a duration.
func (s ServerConfig) IdleTimeout() time.Duration {
	return time.Duration(s.IdleTimeoutSeconds) * time.Second
}

// OpenSearchConfig captures OpenSearch connection and index settings.
type OpenSearchConfig struct {
	URL         string `yaml:"url" mapstructure:"url"`
	Username    string `yaml:"username" mapstructure:"username"`
	Password    string `yaml:"password" mapstructure:"password"`
	Insecure    bool   `yaml:"insecure" mapstructure:"insecure"`
	AlertsIndex string `yaml:"alerts_index" mapstructure:"alerts_index"`
	BlockIndex  string `yaml:"block_index" mapstructure:"block_index"`
}

// RateLimitConfig captures the write rate limiter settings.
type RateLimitConfig struct {
	Limit         int  `yaml:"limit" mapstructure:"limit"`
	WindowSeconds int  `yaml:"window_seconds" mapstructure:"window_seconds"`
	Disabled      bool `yaml:"disabled" mapstructure:"disabled"`
}

// Window returns the rate limit window as a duration.
func (r RateLimitConfig) Window() time.Duration {
	return time.Duration(r.WindowSeconds) * time.Second
}

// RetryConfig captures the upstream retry policy.
type RetryConfig struct {
	Attempts int `yaml:"attempts" mapstructure:"attempts"`
	DelayMS  int `yaml:"delay_ms" mapstructure:"delay_ms"`
}

// Delay returns the fixed inter-attempt delay as a duration.
func (r RetryConfig) Delay() time.Duration {
	return time.Duration(r.DelayMS) * time.Millisecond
}

// StreamConfig captures live event stream settings.
type StreamConfig struct {
	RetryHintMS int `yaml:"retry_hint_ms" mapstructure:"retry_hint_ms"`
	Buffer      int `yaml:"buffer" mapstructure:"buffer"`
}

// CORSConfig captures allowed cross-origin settings.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
}

// LoggingConfig captures logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`   // debug, info, warn, error
	Format string `yaml:"format" mapstructure:"format"` // json or text
}

// NATSConfig captures the optional broker-side alert source.
type NATSConfig struct {
	Enabled       bool   `yaml:"enabled" mapstructure:"enabled"`
	URL           string `yaml:"url" mapstructure:"url"`
	Subject       string `yaml:"subject" mapstructure:"subject"`
	MaxReconnects int    `yaml:"max_reconnects" mapstructure:"max_reconnects"`
	ReconnectWait int    `yaml:"reconnect_wait_seconds" mapstructure:"reconnect_wait_seconds"`
}

// ReconnectWaitDuration returns the reconnect wait as a time.Duration.
func (n NATSConfig) ReconnectWaitDuration() time.Duration {
	return time.Duration(n.ReconnectWait) * time.Second
}

// Load reads configuration from the provided path and environment variables.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Set all defaults
	v.SetDefault("server.port", 3001)
	v.SetDefault("server.read_timeout_seconds", 15)
	v.SetDefault("server.idle_timeout_seconds", 60)

	v.SetDefault("opensearch.url", "http://opensearch:9200")
	v.SetDefault("opensearch.username", "")
	v.SetDefault("opensearch.password", "")
	v.SetDefault("opensearch.insecure", false)
	v.SetDefault("opensearch.alerts_index", "suricata-logs")
	v.SetDefault("opensearch.block_index", "blocked-ips")

	v.SetDefault("api_key", "")

	v.SetDefault("ratelimit.limit", 30)
	v.SetDefault("ratelimit.window_seconds", 60)
	v.SetDefault("ratelimit.disabled", false)

	v.SetDefault("retry.attempts", 6)
	v.SetDefault("retry.delay_ms", 800)

	v.SetDefault("stream.retry_hint_ms", 2000)
	v.SetDefault("stream.buffer", 16)

	v.SetDefault("cors.allowed_origins", []string{"*"})

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("nats.enabled", false)
	v.SetDefault("nats.url", "nats://nats:4222")
	v.SetDefault("nats.subject", "alerts.suricata")
	v.SetDefault("nats.max_reconnects", -1) // Infinite reconnects
	v.SetDefault("nats.reconnect_wait_seconds", 2)

	// Read config file
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/alertboard")
	}

	// Environment variables override
	v.SetEnvPrefix("ALERTBOARD")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if errors.As(err, &configFileNotFoundError) {
			// Config file not found; use defaults
		} else {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if cfg.APIKey == "" {
		return nil, errors.New("api_key must be set (ALERTBOARD_API_KEY or config file)")
	}

	return &cfg, nil
}
