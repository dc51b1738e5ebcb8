package main

import (
	"log"
	"strings"

	"github.com/pageza/alchemorsel-mealgen/backend/config"
)

func printStartupBanner(cfg *config.Config) {
	log.Println("========== Meal Generation API ==========")
	log.Printf("  env              = %s", cfg.Env)
	log.Printf("  listen           = %s:%s", cfg.ServerHost, cfg.ServerPort)
	log.Printf("  cors_origins     = %s", strings.Join(cfg.CORSOrigins, ","))
	log.Printf("  jwt_secret       = %s", setOrNot(cfg.JWTSecret))

	log.Println("---- database ----")
	log.Printf("  driver           = %s", cfg.DBDriver)
	if cfg.DBDriver == config.DBDriverSQLite {
		log.Printf("  sqlite_path      = %s", cfg.SQLitePath)
	} else {
		log.Printf("  database_url     = %s", setOrNot(cfg.DatabaseURL))
		log.Printf("  host             = %s:%s/%s", cfg.DBHost, cfg.DBPort, cfg.DBName)
		log.Printf("  password         = %s", setOrNot(cfg.DBPassword))
	}

	log.Println("---- redis ----")
	if cfg.RedisURL != "" {
		log.Printf("  redis_url        = set")
	} else {
		log.Printf("  addr             = %s (db %d)", cfg.RedisAddr(), cfg.RedisDB)
	}
	log.Printf("  password         = %s", setOrNot(cfg.RedisPassword))

	log.Println("---- generation ----")
	log.Printf("  ai_mode          = %s", cfg.AIMode)
	switch cfg.AIMode {
	case config.AIModeDeepSeek:
		log.Printf("  deepseek_model   = %s", cfg.DeepSeekModel)
		log.Printf("  deepseek_api_key = %s", setOrNot(cfg.DeepSeekAPIKey))
	case config.AIModeGemini:
		log.Printf("  gemini_model     = %s", cfg.GeminiModel)
		log.Printf("  gemini_api_key   = %s", setOrNot(cfg.GeminiAPIKey))
	}
	log.Printf("  ai_rate_limit    = %.1f rps (burst %d)", cfg.AIRateLimit, cfg.AIBurst)
	log.Printf("  cache_version    = %s", cfg.CacheVersion)
	log.Printf("  max_attempts     = %d", cfg.MaxGenerationAttempts)
	log.Printf("  template_match   = %.2f", cfg.TemplateMatchThreshold)

	log.Println("---- images ----")
	log.Printf("  image_mode       = %s", cfg.ImageMode)
	if cfg.ImageMode == config.ImageModeOpenAI {
		log.Printf("  openai_api_key   = %s", setOrNot(cfg.OpenAIAPIKey))
	}
	log.Printf("  s3_bucket        = %s", nonEmptyOrDash(cfg.S3BucketName))
	log.Printf("  static_base_url  = %s", cfg.StaticImageBaseURL)
	log.Println("=========================================")
}

func setOrNot(v string) string {
	if strings.TrimSpace(v) == "" {
		return "not set"
	}
	return "set"
}

func nonEmptyOrDash(v string) string {
	if strings.TrimSpace(v) == "" {
		return "-"
	}
	return v
}
