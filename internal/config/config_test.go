package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_ValidFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	content := `{
		"database_url": "postgres://localhost/floworx",
		"n8n_base_url": "http://localhost:5678",
		"max_messages_per_run": 25
	}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "postgres://localhost/floworx", cfg.DatabaseURL)
	assert.Equal(t, "http://localhost:5678", cfg.N8NBaseURL)
	assert.Equal(t, 25, cfg.MaxMessagesPerRun)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load("")
	assert.Error(t, err)

	_, err = Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))
	_, err = Load(path)
	assert.Error(t, err)
}

func TestFromEnv_FillsBlanksOnly(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://env/floworx")
	t.Setenv("GEMINI_API_KEY", "env-key")

	cfg := &Config{DatabaseURL: "postgres://file/floworx"}
	cfg.FromEnv()

	// File value wins; env fills the blank.
	assert.Equal(t, "postgres://file/floworx", cfg.DatabaseURL)
	assert.Equal(t, "env-key", cfg.GeminiKey)
}

func TestValidate(t *testing.T) {
	assert.NoError(t, (&Config{}).Validate())
	assert.Error(t, (&Config{MaxMessagesPerRun: -1}).Validate())
	assert.Error(t, (&Config{ProvisionWorkers: -2}).Validate())
}

func TestWithDefaults(t *testing.T) {
	cfg := (&Config{}).WithDefaults()
	assert.Equal(t, 50, cfg.MaxMessagesPerRun)
	assert.Equal(t, 4, cfg.ProvisionWorkers)
	assert.Equal(t, "common", cfg.MicrosoftTenant)

	custom := (&Config{MaxMessagesPerRun: 10, MicrosoftTenant: "contoso"}).WithDefaults()
	assert.Equal(t, 10, custom.MaxMessagesPerRun)
	assert.Equal(t, "contoso", custom.MicrosoftTenant)
}
