package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var envVars = []string{
	"OPENAI_API_KEY", "OPENAI_MODEL", "OPENAI_BASE_URL", "GEMINI_API_KEY", "GEMINI_MODEL",
	"PRIMARY_BACKEND", "HF_TOKEN", "HUGGINGFACE_API_KEY", "GOOGLE_API_KEY",
	"GOOGLE_VISION_API_KEY", "LOG_LEVEL", "PORT", "TRUST_PROXY",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, v := range envVars {
		t.Setenv(v, "")
	}
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 3001, cfg.Server.Port)
	assert.Equal(t, []string{"*"}, cfg.Server.CORSOrigins)
	assert.Equal(t, 60*time.Second, cfg.Providers.Timeout)
	assert.Equal(t, int64(50<<20), cfg.Limits.JSONBodyBytes)
	assert.Equal(t, int64(10<<20), cfg.Limits.UploadBytes)
	assert.Equal(t, BackendOpenAI, cfg.Providers.Primary.Backend)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.False(t, cfg.Server.TrustProxy)
	assert.False(t, cfg.Credentials().Has("openai"))
}

func TestLoad_FileAndEnvOverrides(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: 8080
  apiKeys:
    frontend: abc
providers:
  timeout: 30s
  primary:
    openaiKey: from-file
    model: gpt-4o-mini
  vision:
    apiKey: vision-file
rateLimit:
  rps: 5
log:
  pretty: true
`), 0o600))

	t.Setenv("OPENAI_API_KEY", "from-env")
	t.Setenv("HF_TOKEN", "hf-env")
	t.Setenv("PORT", "9090")
	t.Setenv("TRUST_PROXY", "true")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.True(t, cfg.Server.TrustProxy)
	assert.Equal(t, map[string]string{"frontend": "abc"}, cfg.Server.APIKeys)
	assert.Equal(t, 30*time.Second, cfg.Providers.Timeout)
	assert.Equal(t, "from-env", cfg.Providers.Primary.OpenAIKey)
	assert.Equal(t, "gpt-4o-mini", cfg.Providers.Primary.Model)
	assert.Equal(t, 6, cfg.RateLimit.Burst)
	assert.True(t, cfg.Log.Pretty)

	creds := cfg.Credentials()
	assert.Equal(t, "from-env", creds.OpenAI)
	assert.Equal(t, "hf-env", creds.HuggingFace)
	assert.Equal(t, "vision-file", creds.Vision)
}

func TestLoad_GeminiBecomesPrimaryWithoutOpenAIKey(t *testing.T) {
	clearEnv(t)
	t.Setenv("GEMINI_API_KEY", "g-key")

	cfg, err := Load(filepath.Join(t.TempDir(), "none.yaml"))
	require.NoError(t, err)
	assert.Equal(t, BackendGemini, cfg.Providers.Primary.Backend)

	creds := cfg.Credentials()
	assert.Equal(t, "g-key", creds.Gemini)
	assert.Empty(t, creds.OpenAI)
}

func TestLoad_BadYAML(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [unclosed"), 0o600))
	_, err := Load(path)
	assert.Error(t, err)
}
