package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/boddenberg/contratos-aditivos-bfa-go/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 10*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, 100*time.Millisecond, cfg.InitialBackoff)
	assert.Equal(t, 30*time.Minute, cfg.DraftTTL)
	assert.Equal(t, []string{"http://localhost:5173"}, cfg.CORSAllowedOrigins)
	assert.False(t, cfg.AuthDisabled)
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("CONTRACTS_API_URL", "http://contracts:8080")
	t.Setenv("DRAFT_TTL", "1h")
	t.Setenv("AUTH_DISABLED", "true")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://contratos.saude.gov.br,https://hml.contratos.saude.gov.br")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "http://contracts:8080", cfg.ContractsAPIURL)
	assert.Equal(t, time.Hour, cfg.DraftTTL)
	assert.True(t, cfg.AuthDisabled)
	assert.Equal(t, []string{"https://contratos.saude.gov.br", "https://hml.contratos.saude.gov.br"}, cfg.CORSAllowedOrigins)
}

func TestLoad_Invalid(t *testing.T) {
	t.Setenv("DRAFT_TTL", "0s")
	_, err := config.Load()
	assert.Error(t, err)

	t.Setenv("DRAFT_TTL", "1m")
	t.Setenv("PORT", "not-a-port")
	_, err = config.Load()
	assert.Error(t, err)
}

func TestLoadDotEnv_DoesNotOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("LOG_LEVEL=debug\nAMENDMENTS_API_URL=\"http://from-file\"\n# comment\n"), 0o600))

	t.Setenv("LOG_LEVEL", "warn")
	t.Setenv("AMENDMENTS_API_URL", "")
	require.NoError(t, os.Unsetenv("AMENDMENTS_API_URL"))

	require.NoError(t, config.LoadDotEnv(path))
	assert.Equal(t, "warn", os.Getenv("LOG_LEVEL"))
	assert.Equal(t, "http://from-file", os.Getenv("AMENDMENTS_API_URL"))
}

func TestLoadDotEnv_MissingFile(t *testing.T) {
	assert.NoError(t, config.LoadDotEnv(filepath.Join(t.TempDir(), "nope.env")))
}

func TestUsage_ListsVariables(t *testing.T) {
	assert.Contains(t, config.Usage(), "DRAFT_TTL")
}
