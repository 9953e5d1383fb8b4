package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("COPILOT_CONFIG_FILE", "")
	t.Setenv("STORAGE_DRIVER", "memory")
	t.Setenv("COPILOT_STEP_INTERVAL", "250")

	cfg := Load()

	assert.Equal(t, "memory", cfg.Database.Driver)
	assert.Equal(t, 250*time.Millisecond, cfg.Copilot.StepInterval)
	assert.Equal(t, []string{"Add Note", "Prep Meeting", "Top Customers", "Create Touchpoint"}, cfg.Copilot.QuickActions)
	assert.Equal(t, "New Session", cfg.Copilot.DefaultTitle)
}

func TestLoad_DefaultStepInterval(t *testing.T) {
	t.Setenv("COPILOT_CONFIG_FILE", "")
	t.Setenv("COPILOT_STEP_INTERVAL", "")
	t.Setenv("CONNECTIVITY_PROBE_INTERVAL", "")

	cfg := Load()

	assert.Equal(t, 500*time.Millisecond, cfg.Copilot.StepInterval)
	assert.Equal(t, 5*time.Second, cfg.Copilot.ProbeInterval)
}

func TestLoad_YamlOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "copilot.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
copilot:
  default_title: Field Visit
  quick_actions: ["Log Call", "Top Customers"]
  step_interval: 400ms
  live_speech: true
`), 0o600))

	t.Setenv("COPILOT_CONFIG_FILE", path)
	t.Setenv("COPILOT_STEP_INTERVAL", "2s")

	cfg := Load()

	assert.Equal(t, "Field Visit", cfg.Copilot.DefaultTitle)
	assert.Equal(t, []string{"Log Call", "Top Customers"}, cfg.Copilot.QuickActions)
	assert.Equal(t, 400*time.Millisecond, cfg.Copilot.StepInterval)
	assert.True(t, cfg.Copilot.LiveSpeechByDefault)
}

func TestApplyOverlay_Errors(t *testing.T) {
	cfg := &Config{}
	assert.Error(t, applyOverlay(cfg, filepath.Join(t.TempDir(), "missing.yaml")))

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("copilot:\n  step_interval: soon\n"), 0o600))
	assert.ErrorContains(t, applyOverlay(cfg, path), "copilot.step_interval")
}

func TestGetEnvHelpers(t *testing.T) {
	t.Setenv("X_BOOL", "true")
	t.Setenv("X_DUR", "nonsense")
	t.Setenv("X_INT", "12")

	assert.True(t, getEnvAsBool("X_BOOL", false))
	assert.False(t, getEnvAsBool("X_MISSING", false))
	assert.Equal(t, time.Second, getEnvAsDuration("X_DUR", time.Second))
	assert.Equal(t, 12, getEnvAsInt("X_INT", 0))
}
