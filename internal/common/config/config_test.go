// internal/common/config/config_test.go
package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Engine: EngineConfig{
			SchedulerTickSeconds: 300,
			RetryIntervalSeconds: 30,
			RetryMaxAttempts:     3,
			InterSendDelayMillis: 250,
			MaxMessageLength:     1600,
		},
		Providers: []ProviderConfig{
			{Name: "sns-primary", Kind: ProviderKindSNS, Enabled: true, Region: "us-east-1"},
		},
	}
}

func TestValidateAcceptsCompleteConfig(t *testing.T) {
	require.NoError(t, validConfig().Validate())
}

func TestValidateCollectsAllProblems(t *testing.T) {
	cfg := validConfig()
	cfg.Engine.RetryMaxAttempts = 0
	cfg.Engine.MaxMessageLength = 0
	cfg.Providers[0].Region = ""

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "retry_max_attempts")
	assert.Contains(t, err.Error(), "max_message_length")
	assert.Contains(t, err.Error(), "region is required")
}

func TestValidateRequiresAnEnabledProvider(t *testing.T) {
	cfg := validConfig()
	cfg.Providers[0].Enabled = false

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least one enabled provider")
}

func TestValidateTestModeNeedsNoProviders(t *testing.T) {
	cfg := validConfig()
	cfg.Providers = nil
	cfg.Engine.TestMode = true

	require.NoError(t, cfg.Validate())
}

func TestValidateRejectsUnknownProviderKind(t *testing.T) {
	cfg := validConfig()
	cfg.Providers = append(cfg.Providers, ProviderConfig{Name: "x", Kind: "smtp", Enabled: true})

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown kind "smtp"`)
}

func TestHTTPProviderRequiresURLAndKey(t *testing.T) {
	cfg := validConfig()
	cfg.Providers = []ProviderConfig{{Name: "backup", Kind: ProviderKindHTTP, Enabled: true}}

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "url is required")
	assert.Contains(t, err.Error(), "api_key is required")
}

func TestDurationHelpers(t *testing.T) {
	cfg := validConfig()
	assert.Equal(t, 5*time.Minute, cfg.Engine.SchedulerTick())
	assert.Equal(t, 30*time.Second, cfg.Engine.RetryInterval())
	assert.Equal(t, 250*time.Millisecond, cfg.Engine.InterSendDelay())
}

func TestGetDSN(t *testing.T) {
	pg := PostgresConfig{
		Host: "db", Port: 5432, Database: "backoffice",
		User: "alerts", Password: "pw", SSLMode: "disable",
	}
	assert.Equal(t, "host=db port=5432 user=alerts password=pw dbname=backoffice sslmode=disable", pg.GetDSN())
}
