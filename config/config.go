package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Environment is the deployment stage the process runs in
type Environment string

const (
	Development Environment = "development"
	Test        Environment = "test"
	CI          Environment = "ci"
	Production  Environment = "production"
)

// GetEnvironment reads ENV. CI=true wins over ENV so pipelines never pick
// up Docker secrets by accident.
func GetEnvironment() Environment {
	if os.Getenv("CI") == "true" {
		return CI
	}
	switch strings.ToLower(strings.TrimSpace(os.Getenv("ENV"))) {
	case "production", "prod":
		return Production
	case "test":
		return Test
	}
	return Development
}

// IsProduction is shorthand for GetEnvironment() == Production
func IsProduction() bool {
	return GetEnvironment() == Production
}

// usesSecrets is false only in CI, which reads plain env vars
func (e Environment) usesSecrets() bool {
	return e != CI
}

// Supported modes
const (
	DBDriverPostgres = "postgres"
	DBDriverSQLite   = "sqlite"

	AIModeMock     = "mock"
	AIModeDeepSeek = "deepseek"
	AIModeGemini   = "gemini"

	ImageModeStatic = "static"
	ImageModeOpenAI = "openai"
)

// Config holds all configuration for the application
type Config struct {
	Env Environment

	// Server configuration
	ServerPort  string
	ServerHost  string
	CORSOrigins []string

	// Database configuration
	DBDriver    string
	DatabaseURL string
	DBHost      string
	DBPort      string
	DBUser      string
	DBPassword  string
	DBName      string
	DBSSLMode   string
	SQLitePath  string

	// Redis configuration
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int
	RedisURL      string

	// JWT configuration
	JWTSecret string

	// Text generation
	AIMode         string
	DeepSeekAPIKey string
	DeepSeekAPIURL string
	DeepSeekModel  string
	GeminiAPIKey   string
	GeminiModel    string
	AIRateLimit    float64
	AIBurst        int
	AITimeout      time.Duration

	// Image generation and storage
	ImageMode          string
	OpenAIAPIKey       string
	OpenAIImagesURL    string
	ImageTimeout       time.Duration
	S3BucketName       string
	AWSRegion          string
	StaticImageBaseURL string

	// Pipeline tuning
	CacheVersion           string
	MaxGenerationAttempts  int
	TemplateMatchThreshold float64

	// Request rate limiting
	RateLimitRequests int
	RateLimitWindow   time.Duration
}

// loader reads values for one environment and remembers parse failures so
// they can be reported together
type loader struct {
	env        Environment
	secretsDir string
	errs       []string
}

func newLoader(env Environment) *loader {
	dir := os.Getenv("SECRETS_DIR")
	if dir == "" {
		dir = "/run/secrets"
	}
	return &loader{env: env, secretsDir: dir}
}

// str returns the environment variable, then the Docker secret of the same
// name in lower case, then def
func (l *loader) str(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	if l.env.usesSecrets() {
		if v := readSecretFrom(l.secretsDir, strings.ToLower(key)); v != "" {
			return v
		}
	}
	return def
}

// secret prefers the Docker secret in production
func (l *loader) secret(key string) string {
	if l.env == Production {
		if v := readSecretFrom(l.secretsDir, strings.ToLower(key)); v != "" {
			return v
		}
	}
	return l.str(key, "")
}

func (l *loader) integer(key string, def int) int {
	raw := l.str(key, "")
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		l.errs = append(l.errs, fmt.Sprintf("%s must be an integer, got %q", key, raw))
		return def
	}
	return v
}

func (l *loader) number(key string, def float64) float64 {
	raw := l.str(key, "")
	if raw == "" {
		return def
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		l.errs = append(l.errs, fmt.Sprintf("%s must be a number, got %q", key, raw))
		return def
	}
	return v
}

func (l *loader) duration(key string, def time.Duration) time.Duration {
	raw := l.str(key, "")
	if raw == "" {
		return def
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		l.errs = append(l.errs, fmt.Sprintf("%s must be a duration like 30s, got %q", key, raw))
		return def
	}
	return v
}

func (l *loader) list(key, def string) []string {
	var out []string
	for _, part := range strings.Split(l.str(key, def), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// LoadConfig creates a new Config instance with values from environment variables or secrets
func LoadConfig() (*Config, error) {
	env := GetEnvironment()
	l := newLoader(env)

	cfg := &Config{
		Env:         env,
		ServerPort:  l.str("SERVER_PORT", "8080"),
		ServerHost:  l.str("SERVER_HOST", "0.0.0.0"),
		CORSOrigins: l.list("CORS_ORIGINS", "*"),

		DBDriver:    strings.ToLower(l.str("DB_DRIVER", DBDriverPostgres)),
		DatabaseURL: l.secret("DATABASE_URL"),
		DBHost:      l.str("DB_HOST", "localhost"),
		DBPort:      l.str("DB_PORT", "5432"),
		DBUser:      l.str("DB_USER", "postgres"),
		DBPassword:  l.secret("DB_PASSWORD"),
		DBName:      l.str("DB_NAME", "mealgen"),
		DBSSLMode:   l.str("DB_SSL_MODE", "disable"),
		SQLitePath:  l.str("SQLITE_PATH", "mealgen.db"),

		RedisHost:     l.str("REDIS_HOST", "localhost"),
		RedisPort:     l.str("REDIS_PORT", "6379"),
		RedisPassword: l.secret("REDIS_PASSWORD"),
		RedisDB:       l.integer("REDIS_DB", 0),
		RedisURL:      l.secret("REDIS_URL"),

		JWTSecret: l.secret("JWT_SECRET"),

		AIMode:         strings.ToLower(l.str("AI_MODE", AIModeMock)),
		DeepSeekAPIKey: l.secret("DEEPSEEK_API_KEY"),
		DeepSeekAPIURL: l.str("DEEPSEEK_API_URL", "https://api.deepseek.com/v1/chat/completions"),
		DeepSeekModel:  l.str("DEEPSEEK_MODEL", "deepseek-chat"),
		GeminiAPIKey:   l.secret("GEMINI_API_KEY"),
		GeminiModel:    l.str("GEMINI_MODEL", "gemini-1.5-flash"),
		AIRateLimit:    l.number("AI_RATE_LIMIT_RPS", 2),
		AIBurst:        l.integer("AI_RATE_LIMIT_BURST", 4),
		AITimeout:      l.duration("AI_TIMEOUT", 45*time.Second),

		ImageMode:          strings.ToLower(l.str("IMAGE_MODE", ImageModeStatic)),
		OpenAIAPIKey:       l.secret("OPENAI_API_KEY"),
		OpenAIImagesURL:    l.str("OPENAI_IMAGES_API_URL", "https://api.openai.com/v1/images/generations"),
		ImageTimeout:       l.duration("IMAGE_TIMEOUT", 60*time.Second),
		S3BucketName:       l.str("S3_BUCKET_NAME", ""),
		AWSRegion:          l.str("AWS_REGION", "us-east-1"),
		StaticImageBaseURL: l.str("STATIC_IMAGE_BASE_URL", "https://static.mealgen.app/meals"),

		CacheVersion:           l.str("CACHE_VERSION", "v2-canva"),
		MaxGenerationAttempts:  l.integer("MAX_GENERATION_ATTEMPTS", 3),
		TemplateMatchThreshold: l.number("TEMPLATE_MATCH_THRESHOLD", 0.6),

		RateLimitRequests: l.integer("RATE_LIMIT_REQUESTS", 20),
		RateLimitWindow:   l.duration("RATE_LIMIT_WINDOW", time.Minute),
	}

	// Allow key files the way the DeepSeek and OpenAI clients always have
	if cfg.DeepSeekAPIKey == "" {
		cfg.DeepSeekAPIKey = readKeyFile(os.Getenv("DEEPSEEK_API_KEY_FILE"))
	}
	if cfg.OpenAIAPIKey == "" {
		cfg.OpenAIAPIKey = readKeyFile(os.Getenv("OPENAI_API_KEY_FILE"))
	}

	if len(l.errs) > 0 {
		return nil, fmt.Errorf("configuration validation failed:\n%s", strings.Join(l.errs, "\n"))
	}
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// PostgresDSN returns DATABASE_URL or a URL assembled from the parts
func (c *Config) PostgresDSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.DBUser, c.DBPassword),
		Host:     c.DBHost + ":" + c.DBPort,
		Path:     c.DBName,
		RawQuery: "sslmode=" + c.DBSSLMode,
	}
	return u.String()
}

// RedisAddr is host:port for the Redis client
func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%s", c.RedisHost, c.RedisPort)
}

// readSecretFrom reads a Docker secret file
func readSecretFrom(dir, name string) string {
	if data, err := os.ReadFile(filepath.Join(dir, name)); err == nil {
		return strings.TrimSpace(string(data))
	}
	return ""
}

func readKeyFile(path string) string {
	if path == "" {
		return ""
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}
