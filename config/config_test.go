package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	t.Setenv("SECRETS_DIR", t.TempDir())
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("DB_HOST", "dbhost")
	t.Setenv("S3_BUCKET_NAME", "my-bucket")
	t.Setenv("MAX_IMAGE_SIZE_KB", "150")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://app.example.com, https://beta.example.com")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "test-secret", cfg.JWTSecret)
	assert.Equal(t, "dbhost", cfg.DBHost)
	assert.Equal(t, "my-bucket", cfg.S3Bucket)
	assert.Equal(t, 150, cfg.MaxImageSizeKB)
	assert.Equal(t, []string{"https://app.example.com", "https://beta.example.com"}, cfg.AllowedOrigins)

	// Defaults survive for unset values.
	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, 3600, cfg.AnalyzerURLExpirySec)
	assert.Equal(t, 86400, cfg.ImageURLExpirySec)
	assert.Equal(t, "gpt-4o-mini", cfg.OpenAIModel)
}

func TestLoadConfigRequiresJWTSecret(t *testing.T) {
	t.Setenv("SECRETS_DIR", t.TempDir())
	t.Setenv("JWT_SECRET", "")

	_, err := LoadConfig()
	assert.Error(t, err)
}

func TestSecretFileFallback(t *testing.T) {
	secretsDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(secretsDir, "jwt_secret"), []byte("from-secret-file\n"), 0o600))

	t.Setenv("SECRETS_DIR", secretsDir)
	t.Setenv("JWT_SECRET", "")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "from-secret-file", cfg.JWTSecret)
}

func TestValueFileIndirection(t *testing.T) {
	dir := t.TempDir()
	keyFile := filepath.Join(dir, "openai_key")
	require.NoError(t, os.WriteFile(keyFile, []byte("sk-test\n"), 0o600))

	t.Setenv("SECRETS_DIR", dir)
	t.Setenv("JWT_SECRET", "s")
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("OPENAI_API_KEY_FILE", keyFile)

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "sk-test", cfg.OpenAIAPIKey)
}

func TestGetEnvironment(t *testing.T) {
	t.Setenv("CI", "")
	t.Setenv("ENV", "")
	assert.Equal(t, Development, GetEnvironment())

	t.Setenv("ENV", "production")
	assert.Equal(t, Production, GetEnvironment())

	t.Setenv("CI", "true")
	assert.Equal(t, CI, GetEnvironment())
}
