package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate pins the environment so values from the host or /run/secrets
// do not leak into a test
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("SECRETS_DIR", dir)
	t.Setenv("CI", "false")
	t.Setenv("ENV", "test")
	for _, key := range []string{
		"SERVER_PORT", "DB_DRIVER", "DATABASE_URL", "DB_HOST", "DB_PORT", "DB_USER",
		"DB_PASSWORD", "DB_NAME", "DB_SSL_MODE", "SQLITE_PATH", "REDIS_URL", "REDIS_DB",
		"JWT_SECRET", "AI_MODE", "DEEPSEEK_API_KEY", "DEEPSEEK_API_KEY_FILE", "GEMINI_API_KEY",
		"IMAGE_MODE", "OPENAI_API_KEY", "OPENAI_API_KEY_FILE", "CACHE_VERSION",
		"MAX_GENERATION_ATTEMPTS", "TEMPLATE_MATCH_THRESHOLD", "AI_TIMEOUT", "CORS_ORIGINS",
	} {
		t.Setenv(key, "")
	}
	return dir
}

func TestLoadConfigWithDefaults(t *testing.T) {
	isolate(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, Test, cfg.Env)
	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
	assert.Equal(t, DBDriverPostgres, cfg.DBDriver)
	assert.Equal(t, "mealgen", cfg.DBName)
	assert.Equal(t, AIModeMock, cfg.AIMode)
	assert.Equal(t, ImageModeStatic, cfg.ImageMode)
	assert.Equal(t, "v2-canva", cfg.CacheVersion)
	assert.Equal(t, 3, cfg.MaxGenerationAttempts)
	assert.InDelta(t, 0.6, cfg.TemplateMatchThreshold, 1e-9)
	assert.Equal(t, 45*time.Second, cfg.AITimeout)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr())
}

func TestLoadConfig(t *testing.T) {
	isolate(t)
	t.Setenv("DB_HOST", "db")
	t.Setenv("DB_USER", "meals")
	t.Setenv("DB_PASSWORD", "p@ss")
	t.Setenv("DB_NAME", "mealgen_test")
	t.Setenv("AI_MODE", "DeepSeek")
	t.Setenv("DEEPSEEK_API_KEY", "sk-test")
	t.Setenv("CORS_ORIGINS", "http://localhost:3000, https://app.example.com")
	t.Setenv("AI_TIMEOUT", "10s")
	t.Setenv("MAX_GENERATION_ATTEMPTS", "5")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, AIModeDeepSeek, cfg.AIMode)
	assert.Equal(t, "sk-test", cfg.DeepSeekAPIKey)
	assert.Equal(t, []string{"http://localhost:3000", "https://app.example.com"}, cfg.CORSOrigins)
	assert.Equal(t, 10*time.Second, cfg.AITimeout)
	assert.Equal(t, 5, cfg.MaxGenerationAttempts)
	assert.Equal(t, "postgres://meals:p%40ss@db:5432/mealgen_test?sslmode=disable", cfg.PostgresDSN())
}

func TestLoadConfigReadsSecretFiles(t *testing.T) {
	dir := isolate(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "jwt_secret"), []byte("from-secret\n"), 0o600))

	keyFile := filepath.Join(t.TempDir(), "openai.key")
	require.NoError(t, os.WriteFile(keyFile, []byte(" sk-image "), 0o600))
	t.Setenv("IMAGE_MODE", "openai")
	t.Setenv("OPENAI_API_KEY_FILE", keyFile)

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "from-secret", cfg.JWTSecret)
	assert.Equal(t, "sk-image", cfg.OpenAIAPIKey)
}

func TestLoadConfigRejectsBadValues(t *testing.T) {
	tests := []struct {
		name  string
		env   map[string]string
		field string
	}{
		{"unknown driver", map[string]string{"DB_DRIVER": "mysql"}, "DB_DRIVER"},
		{"gemini without key", map[string]string{"AI_MODE": "gemini"}, "GEMINI_API_KEY"},
		{"deepseek without key", map[string]string{"AI_MODE": "deepseek"}, "DEEPSEEK_API_KEY"},
		{"unknown ai mode", map[string]string{"AI_MODE": "gpt"}, "AI_MODE"},
		{"openai images without key", map[string]string{"IMAGE_MODE": "openai"}, "OPENAI_API_KEY"},
		{"zero attempts", map[string]string{"MAX_GENERATION_ATTEMPTS": "0"}, "MAX_GENERATION_ATTEMPTS"},
		{"threshold above one", map[string]string{"TEMPLATE_MATCH_THRESHOLD": "1.5"}, "TEMPLATE_MATCH_THRESHOLD"},
		{"unparseable attempts", map[string]string{"MAX_GENERATION_ATTEMPTS": "three"}, "MAX_GENERATION_ATTEMPTS"},
		{"pipe in cache version", map[string]string{"CACHE_VERSION": "v|2"}, "CACHE_VERSION"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := LoadConfig()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.field)
		})
	}
}

func TestValidateConfigProduction(t *testing.T) {
	cfg := &Config{
		Env:                    Production,
		ServerPort:             "8080",
		DBDriver:               DBDriverSQLite,
		SQLitePath:             "prod.db",
		AIMode:                 AIModeMock,
		ImageMode:              ImageModeStatic,
		StaticImageBaseURL:     "https://static.example.com",
		CacheVersion:           "v2-canva",
		MaxGenerationAttempts:  3,
		TemplateMatchThreshold: 0.6,
		AIRateLimit:            1,
		AIBurst:                1,
		RateLimitRequests:      10,
		RateLimitWindow:        time.Minute,
	}

	err := ValidateConfig(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
	assert.Contains(t, err.Error(), "mock generation is not allowed")

	cfg.JWTSecret = "secret"
	cfg.AIMode = AIModeGemini
	cfg.GeminiAPIKey = "g-key"
	assert.NoError(t, ValidateConfig(cfg))
}

func TestGetEnvironment(t *testing.T) {
	t.Setenv("CI", "true")
	assert.Equal(t, CI, GetEnvironment())

	t.Setenv("CI", "")
	t.Setenv("ENV", "prod")
	assert.Equal(t, Production, GetEnvironment())
	assert.True(t, IsProduction())

	t.Setenv("ENV", " Test ")
	assert.Equal(t, Test, GetEnvironment())
	assert.False(t, IsProduction())

	t.Setenv("ENV", "")
	assert.Equal(t, Development, GetEnvironment())
}
