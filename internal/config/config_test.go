package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envLookup(env map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(envLookup(nil))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.APP_PORT)
	assert.Equal(t, 100000, cfg.EXPORT_TOTAL_ROWS)
	assert.Equal(t, 5, cfg.EXPORT_SHEET_COUNT)
	assert.Equal(t, 100, cfg.EXPORT_WINDOW_SIZE)
	assert.Equal(t, "sheet", cfg.EXPORT_TIMESTAMP_SCOPE)
	assert.Equal(t, "last_sheet", cfg.EXPORT_REMAINDER_POLICY)
	assert.Equal(t, 30*time.Second, cfg.SHUTDOWN_TIMEOUT)
	assert.False(t, cfg.AUTH_ENABLED)
}

func TestLoadEnvOverrides(t *testing.T) {
	cfg, err := Load(envLookup(map[string]string{
		"APP_PORT":                "9090",
		"EXPORT_TOTAL_ROWS":       "10",
		"EXPORT_SHEET_COUNT":      "1",
		"EXPORT_WINDOW_SIZE":      "7",
		"EXPORT_WORKERS":          "2",
		"EXPORT_TIMESTAMP_SCOPE":  "export",
		"EXPORT_REMAINDER_POLICY": "reject",
		"SHUTDOWN_TIMEOUT":        "5s",
		"AUTH_ENABLED":            "true",
		"AUTH_JWT_SECRET":         "secret",
	}))
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.APP_PORT)
	assert.Equal(t, 10, cfg.EXPORT_TOTAL_ROWS)
	assert.Equal(t, 1, cfg.EXPORT_SHEET_COUNT)
	assert.Equal(t, 7, cfg.EXPORT_WINDOW_SIZE)
	assert.Equal(t, 2, cfg.EXPORT_WORKERS)
	assert.Equal(t, "export", cfg.EXPORT_TIMESTAMP_SCOPE)
	assert.Equal(t, "reject", cfg.EXPORT_REMAINDER_POLICY)
	assert.Equal(t, 5*time.Second, cfg.SHUTDOWN_TIMEOUT)
	assert.True(t, cfg.AUTH_ENABLED)
}

func TestLoadTimestampScopeSpacing(t *testing.T) {
	cfg, err := Load(envLookup(map[string]string{"EXPORT_TIMESTAMP_SCOPE": " Export "}))
	require.NoError(t, err)
	assert.Equal(t, " Export ", cfg.EXPORT_TIMESTAMP_SCOPE)
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"Non-numeric rows", map[string]string{"EXPORT_TOTAL_ROWS": "lots"}},
		{"Zero sheets", map[string]string{"EXPORT_SHEET_COUNT": "0"}},
		{"Zero window", map[string]string{"EXPORT_WINDOW_SIZE": "0"}},
		{"Zero workers", map[string]string{"EXPORT_WORKERS": "0"}},
		{"Negative buffer", map[string]string{"EXPORT_BUFFER_SIZE": "-1"}},
		{"Unknown scope", map[string]string{"EXPORT_TIMESTAMP_SCOPE": "day"}},
		{"Unknown policy", map[string]string{"EXPORT_REMAINDER_POLICY": "truncate"}},
		{"Auth without secret", map[string]string{"AUTH_ENABLED": "true"}},
		{"Bad bool", map[string]string{"AUTH_ENABLED": "maybe"}},
		{"Bad duration", map[string]string{"SHUTDOWN_TIMEOUT": "soon"}},
		{"Bad port", map[string]string{"APP_PORT": "http"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(envLookup(tt.env))
			assert.Error(t, err)
		})
	}
}

func TestLoadProfile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "profile.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
export:
  total_rows: 5000
  sheet_count: 2
  window_size: 50
  timestamp_scope: export
`), 0o644))

	t.Run("Profile applied", func(t *testing.T) {
		cfg, err := Load(envLookup(map[string]string{"EXPORT_PROFILE_PATH": path}))
		require.NoError(t, err)
		assert.Equal(t, 5000, cfg.EXPORT_TOTAL_ROWS)
		assert.Equal(t, 2, cfg.EXPORT_SHEET_COUNT)
		assert.Equal(t, 50, cfg.EXPORT_WINDOW_SIZE)
		assert.Equal(t, "export", cfg.EXPORT_TIMESTAMP_SCOPE)
		assert.Equal(t, 4, cfg.EXPORT_WORKERS)
	})

	t.Run("Env wins over profile", func(t *testing.T) {
		cfg, err := Load(envLookup(map[string]string{
			"EXPORT_PROFILE_PATH": path,
			"EXPORT_SHEET_COUNT":  "4",
		}))
		require.NoError(t, err)
		assert.Equal(t, 4, cfg.EXPORT_SHEET_COUNT)
		assert.Equal(t, 5000, cfg.EXPORT_TOTAL_ROWS)
	})

	t.Run("Unknown key", func(t *testing.T) {
		bad := filepath.Join(dir, "bad.yaml")
		require.NoError(t, os.WriteFile(bad, []byte("export:\n  colour: red\n"), 0o644))
		_, err := Load(envLookup(map[string]string{"EXPORT_PROFILE_PATH": bad}))
		assert.Error(t, err)
	})

	t.Run("Missing file", func(t *testing.T) {
		_, err := Load(envLookup(map[string]string{"EXPORT_PROFILE_PATH": filepath.Join(dir, "none.yaml")}))
		assert.Error(t, err)
	})
}

func TestLoadEnvConfig(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("EXPORT_TOTAL_ROWS", "42")
	t.Setenv("EXPORT_SHEET_COUNT", "2")

	require.NoError(t, LoadEnvConfig())
	assert.Equal(t, 42, DefaultEnvConfig.EXPORT_TOTAL_ROWS)
	assert.Equal(t, 2, DefaultEnvConfig.EXPORT_SHEET_COUNT)

	DefaultEnvConfig = Defaults()
}
