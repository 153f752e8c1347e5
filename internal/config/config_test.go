package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"dailynote.app/notes-api/internal/config"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"OPENAI_API_KEY", "OPENAI_API_TOKEN", "GITHUB_TOKEN", "BASE_URL", "MODEL",
		"MOCK_TRANSLATION", "DATABASE_URL", "SQLITE_PATH", "PORT",
		"CONSUL_REGISTER", "SERVICE_NAME", "SERVICE_ADDR",
	} {
		t.Setenv(key, "")
	}
}

func TestFromEnv_Defaults(t *testing.T) {
	clearEnv(t)

	cfg := config.FromEnv()
	assert.Empty(t, cfg.APIKey)
	assert.Empty(t, cfg.GatewayToken)
	assert.False(t, cfg.MockMode)
	assert.Equal(t, config.DefaultSQLitePath, cfg.SQLitePath)
	assert.Equal(t, config.DefaultPort, cfg.Port)
	assert.Equal(t, "notes-api", cfg.ServiceName)
}

func TestFromEnv_APITokenAlias(t *testing.T) {
	clearEnv(t)
	t.Setenv("OPENAI_API_TOKEN", "sk-alias")

	cfg := config.FromEnv()
	assert.Equal(t, "sk-alias", cfg.APIKey)
}

func TestFromEnv_KeyWinsOverAlias(t *testing.T) {
	clearEnv(t)
	t.Setenv("OPENAI_API_KEY", "sk-key")
	t.Setenv("OPENAI_API_TOKEN", "sk-alias")

	cfg := config.FromEnv()
	assert.Equal(t, "sk-key", cfg.APIKey)
}

func TestFromEnv_MockFlagSpellings(t *testing.T) {
	for _, val := range []string{"1", "true", "True"} {
		clearEnv(t)
		t.Setenv("MOCK_TRANSLATION", val)
		assert.True(t, config.FromEnv().MockMode, "value %q", val)
	}

	clearEnv(t)
	t.Setenv("MOCK_TRANSLATION", "yes")
	assert.False(t, config.FromEnv().MockMode)
}

func TestFromEnv_Port(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9090")
	assert.Equal(t, 9090, config.FromEnv().Port)

	clearEnv(t)
	t.Setenv("PORT", "not-a-port")
	assert.Equal(t, config.DefaultPort, config.FromEnv().Port)
}
