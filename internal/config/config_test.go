package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/auralabs/lyra/internal/config"
)

func TestDefaultsWithoutFileOrEnv(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "missing.yml"))
	require.NoError(t, err)

	assert.Equal(t, config.BackendMock, cfg.Backend)
	assert.Equal(t, "Kore", cfg.Persona)
	assert.Equal(t, 5, cfg.CaptionSeconds)
	assert.Equal(t, "us-central1", cfg.GCPLocation)
}

func TestFileThenEnvLayering(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(
		"backend: gemini-api\napi_key: file-key\npersona: Zephyr\ncaption_seconds: 8\n",
	), 0o600))

	t.Setenv("LYRA_PERSONA", "Fenrir")

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, config.BackendGeminiAPI, cfg.Backend)
	assert.Equal(t, "file-key", cfg.APIKey)
	assert.Equal(t, "Fenrir", cfg.Persona, "env wins over file")
	assert.Equal(t, 8, cfg.CaptionSeconds)
}

func TestVertexRequiresProject(t *testing.T) {
	t.Setenv("LYRA_BACKEND", "vertex")

	_, err := config.Load(filepath.Join(t.TempDir(), "missing.yml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gcp_project")
}

func TestGeminiAPIRequiresKey(t *testing.T) {
	t.Setenv("LYRA_BACKEND", "gemini-api")

	_, err := config.Load(filepath.Join(t.TempDir(), "missing.yml"))
	require.Error(t, err)
}

func TestUnknownBackendRejected(t *testing.T) {
	t.Setenv("LYRA_BACKEND", "quantum")

	_, err := config.Load(filepath.Join(t.TempDir(), "missing.yml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown backend")
}

func TestMalformedFileSurfacesError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte("backend: [oops\n"), 0o600))

	_, err := config.Load(path)
	require.Error(t, err)
}
