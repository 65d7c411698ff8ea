package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/localeforge/localeforge/internal/client/workspace"
)

func newTestWorkspace(t *testing.T) *workspace.Workspace {
	t.Helper()
	ws, err := workspace.NewWorkspace(t.TempDir())
	require.NoError(t, err)
	return ws
}

func TestLoadMissing(t *testing.T) {
	ws := newTestWorkspace(t)

	cfg, err := Load(ws)
	require.NoError(t, err)
	assert.Nil(t, cfg)
	assert.False(t, Exists(ws))
}

func TestSaveLoadRoundTrip(t *testing.T) {
	ws := newTestWorkspace(t)

	cfg := &Config{
		ResourceFormat:      "resx",
		DefaultLanguageCode: "en",
		RemoteURL:           "https://cloud.localeforge.dev/acme/webapp",
	}
	require.NoError(t, cfg.Save(ws.ConfigPath))
	assert.True(t, Exists(ws))

	loaded, err := Load(ws)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, "resx", loaded.ResourceFormat)
	assert.Equal(t, "en", loaded.DefaultLanguageCode)
	assert.Equal(t, cfg.RemoteURL, loaded.RemoteURL)
	assert.Equal(t, ws.ConfigPath, loaded.Path)
}

func TestLoadInvalid(t *testing.T) {
	ws := newTestWorkspace(t)
	require.NoError(t, os.WriteFile(ws.ConfigPath, []byte("{not json"), 0o644))

	_, err := Load(ws)
	assert.Error(t, err)
}

func TestRaw(t *testing.T) {
	ws := newTestWorkspace(t)
	content := []byte(`{"format":"json"}`)
	require.NoError(t, os.WriteFile(ws.ConfigPath, content, 0o644))

	cfg, err := Load(ws)
	require.NoError(t, err)

	raw, err := cfg.Raw()
	require.NoError(t, err)
	assert.Equal(t, content, raw)
}

func TestRawWithoutBackingFile(t *testing.T) {
	cfg := &Config{ResourceFormat: "json"}
	_, err := cfg.Raw()
	assert.Error(t, err)
}

func TestProperties(t *testing.T) {
	cfg := &Config{
		ResourceFormat:      "json",
		DefaultLanguageCode: "en",
		RemoteURL:           "https://example.com/acme/app",
	}

	props := cfg.Properties()
	assert.Equal(t, "json", props["format"])
	assert.Equal(t, "en", props["defaultLanguage"])
	assert.Equal(t, cfg.RemoteURL, props["remote"])
}

func TestSaveCreatesIndentedJSON(t *testing.T) {
	ws := newTestWorkspace(t)
	cfg := &Config{ResourceFormat: "json"}
	require.NoError(t, cfg.Save(ws.ConfigPath))

	data, err := os.ReadFile(filepath.Join(ws.Root, "lforge.json"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "\n  \"format\": \"json\"")
}
