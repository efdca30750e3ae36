package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDefaultsAreValidWithKey(t *testing.T) {
	cfg := Default()
	cfg.LLM.APIKey = "test-key"
	require.NoError(t, cfg.Validate())

	require.Equal(t, "gemini-2.5-pro", cfg.LLM.Model)
	require.Equal(t, 5*time.Minute, cfg.Gathering.TimeoutDuration())
	require.Equal(t, 2*time.Hour, cfg.Jobs.TTLDuration())
	require.Equal(t, 4, cfg.Delivery.MaxAttempts)
}

func TestValidateRequiresAPIKey(t *testing.T) {
	cfg := Default()
	cfg.LLM.APIKey = ""
	require.Error(t, cfg.Validate())
}

func TestLoadMissingFileFallsBackToDefaults(t *testing.T) {
	t.Setenv("DOSSIER_GEMINI_API_KEY", "env-key")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	require.Equal(t, "env-key", cfg.LLM.APIKey)
	require.Equal(t, "dossier", cfg.Name)
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	t.Setenv("DOSSIER_GEMINI_API_KEY", "env-key")

	path := filepath.Join(t.TempDir(), "dossier.yaml")
	data := `
llm:
  model: gemini-2.5-flash
gathering:
  timeout: 90s
jobs:
  ttl: 30m
providers:
  ads:
    enabled: false
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "gemini-2.5-flash", cfg.LLM.Model)
	require.Equal(t, 90*time.Second, cfg.Gathering.TimeoutDuration())
	require.Equal(t, 30*time.Minute, cfg.Jobs.TTLDuration())
	require.False(t, cfg.Providers.Ads.Enabled)
	// Untouched blocks keep their defaults.
	require.True(t, cfg.Providers.Serp.Enabled)
}

func TestEnvOverridesWinOverFile(t *testing.T) {
	t.Setenv("DOSSIER_GEMINI_API_KEY", "env-key")
	t.Setenv("DOSSIER_GEMINI_MODEL", "gemini-env")
	t.Setenv("DOSSIER_WEBHOOK_SECRET", "env-secret")

	path := filepath.Join(t.TempDir(), "dossier.yaml")
	data := `
llm:
  api_key: file-key
  model: gemini-file
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "env-key", cfg.LLM.APIKey)
	require.Equal(t, "gemini-env", cfg.LLM.Model)
	require.Equal(t, "env-secret", cfg.Delivery.SharedSecret)
}

func TestLoadRejectsMalformedDuration(t *testing.T) {
	t.Setenv("DOSSIER_GEMINI_API_KEY", "env-key")

	path := filepath.Join(t.TempDir(), "dossier.yaml")
	require.NoError(t, os.WriteFile(path, []byte("jobs:\n  ttl: soon\n"), 0644))

	_, err := Load(path)
	require.Error(t, err)
}

func TestDurationOrFallsBack(t *testing.T) {
	require.Equal(t, time.Minute, durationOr("", time.Minute))
	require.Equal(t, 10*time.Second, durationOr("10s", time.Minute))
	require.Equal(t, time.Minute, durationOr("bogus", time.Minute))
}
