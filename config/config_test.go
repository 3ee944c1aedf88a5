package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"SESSION_SECRET", "API_KEYS", "PORT", "RATE_LIMIT_MAX", "RATE_LIMIT_WINDOW", "SESSION_STORE", "RATE_LIMIT_STORE"} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestLoadWithDefaults_Succeeds(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadWithDefaults()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.HTTP.Port)
	assert.NotEmpty(t, cfg.Session.Secret)
	assert.Equal(t, "dev", cfg.Access.Keys["your-api-key"])
	assert.Equal(t, 100, cfg.RateLimit.Max)
	assert.Equal(t, 15*time.Minute, cfg.RateLimit.Window)
	assert.Equal(t, "X-API-Key", cfg.Access.Header)
}

func TestLoad_RequiresSecrets(t *testing.T) {
	clearEnv(t)

	_, err := Load()
	require.Error(t, err)

	t.Setenv("SESSION_SECRET", "s")
	_, err = Load()
	require.Error(t, err, "API_KEYS still missing")

	t.Setenv("API_KEYS", "web:k1, mobile:k2")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"k1": "web", "k2": "mobile"}, cfg.Access.Keys)
}

func TestLoad_RejectsBadValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("SESSION_SECRET", "s")
	t.Setenv("API_KEYS", "k")

	t.Setenv("RATE_LIMIT_WINDOW", "soon")
	_, err := Load()
	require.Error(t, err)

	t.Setenv("RATE_LIMIT_WINDOW", "1m")
	t.Setenv("SESSION_STORE", "mongo")
	_, err = Load()
	require.Error(t, err)
}

func TestParseAPIKeys(t *testing.T) {
	keys, err := ParseAPIKeys("bare, svc:abc")
	require.NoError(t, err)
	assert.Equal(t, "default", keys["bare"])
	assert.Equal(t, "svc", keys["abc"])

	_, err = ParseAPIKeys("svc:")
	require.Error(t, err)

	_, err = ParseAPIKeys("a:k,b:k")
	require.Error(t, err)
}

func TestString_MasksSecrets(t *testing.T) {
	clearEnv(t)
	cfg, err := LoadWithDefaults()
	require.NoError(t, err)
	s := cfg.String()
	assert.NotContains(t, s, cfg.Session.Secret)
	assert.NotContains(t, s, "your-api-key")
}
