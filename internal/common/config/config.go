// internal/common/config/config.go
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config is the main application configuration struct.
type Config struct {
	App         AppConfig         `mapstructure:"app"`
	Engine      EngineConfig      `mapstructure:"engine"`
	Providers   []ProviderConfig  `mapstructure:"providers"`
	Database    DatabaseConfig    `mapstructure:"database"`
	StatusCache StatusCacheConfig `mapstructure:"status_cache"`
	Logging     LoggingConfig     `mapstructure:"logging"`
}

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
}

// EngineConfig holds the operationally tuned engine parameters.
type EngineConfig struct {
	SchedulerTickSeconds int    `mapstructure:"scheduler_tick_seconds"`
	RetryIntervalSeconds int    `mapstructure:"retry_interval_seconds"`
	RetryMaxAttempts     int    `mapstructure:"retry_max_attempts"`
	InterSendDelayMillis int    `mapstructure:"inter_send_delay_millis"`
	MaxMessageLength     int    `mapstructure:"max_message_length"`
	DefaultSenderID      string `mapstructure:"default_sender_id"`
	DegradedQueueDepth   int    `mapstructure:"degraded_queue_depth"`
	TestMode             bool   `mapstructure:"test_mode"`
	TemplateRegistryPath string `mapstructure:"template_registry_path"`
}

func (e EngineConfig) SchedulerTick() time.Duration {
	return time.Duration(e.SchedulerTickSeconds) * time.Second
}

func (e EngineConfig) RetryInterval() time.Duration {
	return time.Duration(e.RetryIntervalSeconds) * time.Second
}

func (e EngineConfig) InterSendDelay() time.Duration {
	return time.Duration(e.InterSendDelayMillis) * time.Millisecond
}

// Provider kinds
const (
	ProviderKindSNS       = "sns"
	ProviderKindHTTP      = "http"
	ProviderKindSimulated = "simulated"
)

// ProviderConfig describes one SMS gateway. Providers are tried in ascending
// Priority order; priority 0 is the active/default provider.
type ProviderConfig struct {
	Name     string `mapstructure:"name"`
	Kind     string `mapstructure:"kind"` // sns, http, simulated
	Priority int    `mapstructure:"priority"`
	Enabled  bool   `mapstructure:"enabled"`

	// sns
	Region string `mapstructure:"region"`

	// http
	URL      string `mapstructure:"url"`
	APIKey   string `mapstructure:"api_key"`
	SenderID string `mapstructure:"sender_id"`
}

type DatabaseConfig struct {
	Postgres PostgresConfig `mapstructure:"postgres"`
	Redis    RedisConfig    `mapstructure:"redis"`
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

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// Status cache backends
const (
	StatusCacheMemory = "memory"
	StatusCacheRedis  = "redis"
)

type StatusCacheConfig struct {
	Backend    string `mapstructure:"backend"` // memory or redis
	MaxEntries int    `mapstructure:"max_entries"`
	TTLSeconds int    `mapstructure:"ttl_seconds"`
}

func (s StatusCacheConfig) TTL() time.Duration {
	return time.Duration(s.TTLSeconds) * time.Second
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Validate checks the configuration the engine cannot run without. A
// validation failure is what the host surfaces as the "down" health state.
func (c *Config) Validate() error {
	var problems []string

	if c.Engine.RetryMaxAttempts <= 0 {
		problems = append(problems, "engine.retry_max_attempts must be > 0")
	}
	if c.Engine.MaxMessageLength <= 0 {
		problems = append(problems, "engine.max_message_length must be > 0")
	}
	if c.Engine.SchedulerTickSeconds <= 0 {
		problems = append(problems, "engine.scheduler_tick_seconds must be > 0")
	}
	if c.Engine.RetryIntervalSeconds <= 0 {
		problems = append(problems, "engine.retry_interval_seconds must be > 0")
	}

	enabled := 0
	for i, p := range c.Providers {
		if !p.Enabled {
			continue
		}
		enabled++
		switch p.Kind {
		case ProviderKindSNS:
			if p.Region == "" {
				problems = append(problems, fmt.Sprintf("providers[%d] (%s): region is required for sns", i, p.Name))
			}
		case ProviderKindHTTP:
			if p.URL == "" {
				problems = append(problems, fmt.Sprintf("providers[%d] (%s): url is required for http", i, p.Name))
			}
			if p.APIKey == "" {
				problems = append(problems, fmt.Sprintf("providers[%d] (%s): api_key is required for http", i, p.Name))
			}
		case ProviderKindSimulated:
			// nothing to check
		default:
			problems = append(problems, fmt.Sprintf("providers[%d] (%s): unknown kind %q", i, p.Name, p.Kind))
		}
	}
	if enabled == 0 && !c.Engine.TestMode {
		problems = append(problems, "at least one enabled provider is required")
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}
