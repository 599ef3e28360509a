package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromMissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadFrom(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, DefaultAPIURL, cfg.APIURL)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout)
	assert.True(t, cfg.ConfirmDelete)
	assert.Equal(t, "INFO", cfg.LogLevel)
}

func TestLoadFromFileAndEnvironment(t *testing.T) {
	dir := t.TempDir()
	yamlDoc := "api_url: http://todo.internal:8080\nrequest_timeout: 5s\nlog_level: DEBUG\n"
	require.NoError(t, os.WriteFile(Path(dir), []byte(yamlDoc), 0644))

	t.Setenv("PROTODO_LOG_LEVEL", "ERROR")

	cfg, err := LoadFrom(dir)
	require.NoError(t, err)

	assert.Equal(t, "http://todo.internal:8080", cfg.APIURL)
	assert.Equal(t, 5*time.Second, cfg.RequestTimeout)
	assert.Equal(t, "ERROR", cfg.LogLevel, "environment overrides the file")
}

func TestLoadFromRejectsBrokenYAML(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(Path(dir), []byte("api_url: [unterminated"), 0644))

	_, err := LoadFrom(dir)
	assert.ErrorContains(t, err, "failed to parse config")
}

func TestSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	cfg := DefaultConfig()
	cfg.APIURL = "http://example.test"
	cfg.LogConsole = true
	require.NoError(t, cfg.SaveTo(dir))

	loaded, err := LoadFrom(dir)
	require.NoError(t, err)
	assert.Equal(t, "http://example.test", loaded.APIURL)
	assert.True(t, loaded.LogConsole)
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.APIURL = ""
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.RequestTimeout = -time.Second
	assert.Error(t, cfg.Validate())
}
