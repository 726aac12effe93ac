package retry

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentry-dev/agentry"
)

const policyYAML = `
model:
  max_attempts: 3
  initial_delay: 2s
  max_delay: 1m
tool:
  max_attempts: 2
  initial_delay: 500ms
  disabled_tools: [send_email]
  overrides:
    search:
      max_attempts: 5
      initial_delay: 2s
`

func TestParseConfig(t *testing.T) {
	cfg, err := ParseConfig([]byte(policyYAML))
	require.NoError(t, err)

	require.NotNil(t, cfg.Model.MaxAttempts)
	assert.Equal(t, 3, *cfg.Model.MaxAttempts)
	assert.Equal(t, 2*time.Second, time.Duration(cfg.Model.InitialDelay))
	assert.Equal(t, time.Minute, time.Duration(cfg.Model.MaxDelay))

	require.NotNil(t, cfg.Tool.MaxAttempts)
	assert.Equal(t, 2, *cfg.Tool.MaxAttempts)
	assert.Equal(t, 500*time.Millisecond, time.Duration(cfg.Tool.InitialDelay))
	assert.Equal(t, []string{"send_email"}, cfg.Tool.DisabledTools)

	override, ok := cfg.Tool.Overrides["search"]
	require.True(t, ok)
	assert.Equal(t, 5, override.MaxAttempts)
	assert.Equal(t, 2*time.Second, time.Duration(override.InitialDelay))
}

func TestParseConfigNumericSeconds(t *testing.T) {
	cfg, err := ParseConfig([]byte("model:\n  initial_delay: 4\n  max_delay: 0.5\n"))
	require.NoError(t, err)
	assert.Equal(t, 4*time.Second, time.Duration(cfg.Model.InitialDelay))
	assert.Equal(t, 500*time.Millisecond, time.Duration(cfg.Model.MaxDelay))
}

func TestParseConfigBadDuration(t *testing.T) {
	_, err := ParseConfig([]byte("model:\n  initial_delay: fast\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid duration")

	// A quoted number is a string and must carry a unit; only bare numeric
	// scalars mean seconds.
	_, err = ParseConfig([]byte("model:\n  initial_delay: \"4\"\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid duration")
}

func TestConfigUnsetFieldsKeepDefaults(t *testing.T) {
	cfg, err := ParseConfig([]byte("tool:\n  max_attempts: 0\n"))
	require.NoError(t, err)

	s, err := NewFromConfig(cfg)
	require.NoError(t, err)

	// Absent model section keeps the defaults; the explicit zero disables
	// tool retry.
	assert.Equal(t, DefaultModelMaxAttempts, s.modelMaxAttempts)
	assert.Equal(t, DefaultModelInitialDelay, s.modelInitialDelay)
	assert.Zero(t, s.toolMaxAttempts)
}

func TestNewFromConfigAppliesSettings(t *testing.T) {
	cfg, err := ParseConfig([]byte(policyYAML))
	require.NoError(t, err)

	s, err := NewFromConfig(cfg)
	require.NoError(t, err)

	assert.Equal(t, 3, s.modelMaxAttempts)
	assert.Equal(t, 2*time.Second, s.modelInitialDelay)
	assert.Equal(t, 2, s.toolMaxAttempts)
	assert.Contains(t, s.disabled, "send_email")
	assert.Equal(t, ToolOverride{
		MaxAttempts:  5,
		InitialDelay: 2 * time.Second,
	}, s.overrides["search"])
}

func TestNewFromConfigFilterConflict(t *testing.T) {
	cfg, err := ParseConfig([]byte(
		"tool:\n  enabled_tools: [a]\n  disabled_tools: [b]\n"))
	require.NoError(t, err)

	_, err = NewFromConfig(cfg)
	require.ErrorIs(t, err, agentry.ErrToolFilterConflict)
}

func TestNewFromConfigExtraOptionsWin(t *testing.T) {
	cfg, err := ParseConfig([]byte(policyYAML))
	require.NoError(t, err)

	s, err := NewFromConfig(cfg, WithModelMaxAttempts(10))
	require.NoError(t, err)
	assert.Equal(t, 10, s.modelMaxAttempts)
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "retry.yaml")
	require.NoError(t, os.WriteFile(path, []byte(policyYAML), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.NotNil(t, cfg.Model.MaxAttempts)
	assert.Equal(t, 3, *cfg.Model.MaxAttempts)

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}
