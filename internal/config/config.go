package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Auth      AuthConfig
	LLM       LLMConfig
	Drive     DriveConfig
	Storage   StorageConfig
	Retrieval RetrievalConfig
}

type ServerConfig struct {
	Host string
	Port int
}

type DatabaseConfig struct {
	URL            string
	MaxConns       int
	MinConns       int
	MigrationsPath string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type AuthConfig struct {
	JWTSecret string
}

type LLMConfig struct {
	OpenAIKey        string
	AnthropicKey     string
	OllamaURL        string
	DefaultProvider  string
	DefaultModel     string
	EmbeddingModel   string
	FallbackProvider string
	MaxRetries       int
}

type DriveConfig struct {
	CredentialsJSON string // service-account credentials, raw JSON
	RequestsPerSec  float64
}

type StorageConfig struct {
	SupabaseURL string
	SupabaseKey string
	Bucket      string
}

// RetrievalConfig carries the ranking tunables. The keyword fallback
// threshold and the page-size constant vary by deployment, so they live
// here rather than as package constants.
type RetrievalConfig struct {
	MaxResults           int
	KeywordFallbackBelow int
	KeywordMinScore      float64
	CharsPerPage         int
}

func Load() (*Config, error) {
	port, err := getEnvInt("SERVER_PORT", 8080)
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT: %w", err)
	}

	maxConns, err := getEnvInt("DB_MAX_CONNS", 20)
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MAX_CONNS: %w", err)
	}

	minConns, err := getEnvInt("DB_MIN_CONNS", 5)
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MIN_CONNS: %w", err)
	}

	redisDB, err := getEnvInt("REDIS_DB", 0)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	maxRetries, err := getEnvInt("LLM_MAX_RETRIES", 3)
	if err != nil {
		return nil, fmt.Errorf("invalid LLM_MAX_RETRIES: %w", err)
	}

	maxResults, err := getEnvInt("RETRIEVAL_MAX_RESULTS", 5)
	if err != nil {
		return nil, fmt.Errorf("invalid RETRIEVAL_MAX_RESULTS: %w", err)
	}

	fallbackBelow, err := getEnvInt("RETRIEVAL_KEYWORD_FALLBACK_BELOW", 5)
	if err != nil {
		return nil, fmt.Errorf("invalid RETRIEVAL_KEYWORD_FALLBACK_BELOW: %w", err)
	}

	keywordMinScore, err := getEnvFloat("RETRIEVAL_KEYWORD_MIN_SCORE", 0.15)
	if err != nil {
		return nil, fmt.Errorf("invalid RETRIEVAL_KEYWORD_MIN_SCORE: %w", err)
	}

	charsPerPage, err := getEnvInt("ANSWER_CHARS_PER_PAGE", 2800)
	if err != nil {
		return nil, fmt.Errorf("invalid ANSWER_CHARS_PER_PAGE: %w", err)
	}

	driveRPS, err := getEnvFloat("DRIVE_REQUESTS_PER_SEC", 5)
	if err != nil {
		return nil, fmt.Errorf("invalid DRIVE_REQUESTS_PER_SEC: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: port,
		},
		Database: DatabaseConfig{
			URL:            getEnv("DATABASE_URL", ""),
			MaxConns:       maxConns,
			MinConns:       minConns,
			MigrationsPath: getEnv("MIGRATIONS_PATH", "migrations"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		Auth: AuthConfig{
			JWTSecret: getEnv("JWT_SECRET", ""),
		},
		LLM: LLMConfig{
			OpenAIKey:        getEnv("OPENAI_API_KEY", ""),
			AnthropicKey:     getEnv("ANTHROPIC_API_KEY", ""),
			OllamaURL:        getEnv("OLLAMA_URL", ""),
			DefaultProvider:  getEnv("LLM_DEFAULT_PROVIDER", "openai"),
			DefaultModel:     getEnv("LLM_DEFAULT_MODEL", "gpt-4o-mini"),
			EmbeddingModel:   getEnv("LLM_EMBEDDING_MODEL", "text-embedding-3-small"),
			FallbackProvider: getEnv("LLM_FALLBACK_PROVIDER", ""),
			MaxRetries:       maxRetries,
		},
		Drive: DriveConfig{
			CredentialsJSON: getEnv("DRIVE_CREDENTIALS_JSON", ""),
			RequestsPerSec:  driveRPS,
		},
		Storage: StorageConfig{
			SupabaseURL: getEnv("SUPABASE_URL", ""),
			SupabaseKey: getEnv("SUPABASE_SERVICE_KEY", ""),
			Bucket:      getEnv("STORAGE_BUCKET", "documents"),
		},
		Retrieval: RetrievalConfig{
			MaxResults:           maxResults,
			KeywordFallbackBelow: fallbackBelow,
			KeywordMinScore:      keywordMinScore,
			CharsPerPage:         charsPerPage,
		},
	}

	return cfg, nil
}

func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

func (c *Config) Validate() error {
	var missing []string
	if c.Database.URL == "" {
		missing = append(missing, "DATABASE_URL")
	}
	if c.Auth.JWTSecret == "" {
		missing = append(missing, "JWT_SECRET")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required env vars: %s", strings.Join(missing, ", "))
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	return strconv.Atoi(v)
}

func getEnvFloat(key string, fallback float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	return strconv.ParseFloat(v, 64)
}
