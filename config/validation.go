package config

import (
	"fmt"
	"strings"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateConfig checks the loaded configuration for the current environment
// and reports every problem at once
func ValidateConfig(cfg *Config) error {
	var problems []ValidationError
	add := func(field, msg string) {
		problems = append(problems, ValidationError{Field: field, Message: msg})
	}

	if cfg.ServerPort == "" {
		add("SERVER_PORT", "is required")
	}

	switch cfg.DBDriver {
	case DBDriverPostgres:
		if cfg.DatabaseURL == "" && (cfg.DBHost == "" || cfg.DBName == "" || cfg.DBUser == "") {
			add("DATABASE_URL", "or DB_HOST, DB_NAME and DB_USER are required for postgres")
		}
	case DBDriverSQLite:
		if cfg.SQLitePath == "" {
			add("SQLITE_PATH", "is required for sqlite")
		}
	default:
		add("DB_DRIVER", fmt.Sprintf("must be %s or %s, got %q", DBDriverPostgres, DBDriverSQLite, cfg.DBDriver))
	}

	switch cfg.AIMode {
	case AIModeMock:
	case AIModeDeepSeek:
		if cfg.DeepSeekAPIKey == "" {
			add("DEEPSEEK_API_KEY", "is required when AI_MODE=deepseek")
		}
	case AIModeGemini:
		if cfg.GeminiAPIKey == "" {
			add("GEMINI_API_KEY", "is required when AI_MODE=gemini")
		}
	default:
		add("AI_MODE", fmt.Sprintf("must be mock, deepseek or gemini, got %q", cfg.AIMode))
	}

	switch cfg.ImageMode {
	case ImageModeStatic:
	case ImageModeOpenAI:
		if cfg.OpenAIAPIKey == "" {
			add("OPENAI_API_KEY", "is required when IMAGE_MODE=openai")
		}
	default:
		add("IMAGE_MODE", fmt.Sprintf("must be static or openai, got %q", cfg.ImageMode))
	}

	if cfg.StaticImageBaseURL == "" {
		add("STATIC_IMAGE_BASE_URL", "is required")
	}
	if cfg.CacheVersion == "" || strings.Contains(cfg.CacheVersion, "|") {
		add("CACHE_VERSION", "must be non-empty and must not contain '|'")
	}
	if cfg.MaxGenerationAttempts < 1 {
		add("MAX_GENERATION_ATTEMPTS", "must be at least 1")
	}
	if cfg.TemplateMatchThreshold <= 0 || cfg.TemplateMatchThreshold > 1 {
		add("TEMPLATE_MATCH_THRESHOLD", "must be in (0, 1]")
	}
	if cfg.AIRateLimit <= 0 || cfg.AIBurst < 1 {
		add("AI_RATE_LIMIT_RPS", "rate and burst must be positive")
	}
	if cfg.RateLimitRequests < 1 || cfg.RateLimitWindow <= 0 {
		add("RATE_LIMIT_REQUESTS", "limit and window must be positive")
	}

	// Sensitive values are mandatory outside development
	if cfg.Env == Production || cfg.Env == CI {
		if cfg.JWTSecret == "" {
			add("JWT_SECRET", fmt.Sprintf("is required in %s", cfg.Env))
		}
		if cfg.Env == Production && cfg.AIMode == AIModeMock {
			add("AI_MODE", "mock generation is not allowed in production")
		}
	}

	if len(problems) == 0 {
		return nil
	}
	lines := make([]string, 0, len(problems))
	for _, p := range problems {
		lines = append(lines, p.Error())
	}
	return fmt.Errorf("configuration validation failed:\n%s", strings.Join(lines, "\n"))
}
