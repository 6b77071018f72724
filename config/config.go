package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Environment represents the current runtime environment
type Environment string

const (
	Development Environment = "development"
	Test        Environment = "test"
	CI          Environment = "ci"
	Production  Environment = "production"
)

// GetEnvironment determines the current environment
func GetEnvironment() Environment {
	if os.Getenv("CI") == "true" {
		return CI
	}

	switch os.Getenv("ENV") {
	case "production":
		return Production
	case "test":
		return Test
	default:
		return Development
	}
}

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	ServerPort string
	ServerHost string

	// Database configuration
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// Redis configuration
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	// JWT configuration
	JWTSecret string

	// CORS configuration
	AllowedOrigins []string

	// OpenAI vision configuration
	OpenAIAPIKey    string
	OpenAIAPIURL    string
	OpenAIModel     string
	OpenAIMaxTokens int

	// Storage configuration
	S3Bucket             string
	AWSRegion            string
	MaxImageSizeKB       int
	AnalyzerURLExpirySec int
	ImageURLExpirySec    int
}

// LoadConfig builds a Config from environment variables, falling back to
// Docker secret files (SECRETS_DIR) for sensitive values.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		ServerPort: getValue("SERVER_PORT", "8080"),
		ServerHost: getValue("SERVER_HOST", "0.0.0.0"),

		DBHost:     getValue("DB_HOST", "localhost"),
		DBPort:     getValue("DB_PORT", "5432"),
		DBUser:     getValue("DB_USER", "postgres"),
		DBPassword: getValue("DB_PASSWORD", ""),
		DBName:     getValue("DB_NAME", "nutritheous"),
		DBSSLMode:  getValue("DB_SSL_MODE", "disable"),

		RedisHost:     getValue("REDIS_HOST", "localhost"),
		RedisPort:     getValue("REDIS_PORT", "6379"),
		RedisPassword: getValue("REDIS_PASSWORD", ""),
		RedisDB:       getIntValue("REDIS_DB", 0),

		JWTSecret: getValue("JWT_SECRET", ""),

		AllowedOrigins: splitList(getValue("CORS_ALLOWED_ORIGINS", "")),

		OpenAIAPIKey:    getValue("OPENAI_API_KEY", ""),
		OpenAIAPIURL:    getValue("OPENAI_API_URL", "https://api.openai.com/v1/chat/completions"),
		OpenAIModel:     getValue("OPENAI_MODEL", "gpt-4o-mini"),
		OpenAIMaxTokens: getIntValue("OPENAI_MAX_TOKENS", 800),

		S3Bucket:             getValue("S3_BUCKET_NAME", "nutritheous-meal-images"),
		AWSRegion:            getValue("AWS_REGION", "us-east-1"),
		MaxImageSizeKB:       getIntValue("MAX_IMAGE_SIZE_KB", 300),
		AnalyzerURLExpirySec: getIntValue("ANALYZER_URL_EXPIRY", 3600),
		ImageURLExpirySec:    getIntValue("IMAGE_URL_EXPIRY", 86400),
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func validate(cfg *Config) error {
	if cfg.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if GetEnvironment() == Production && cfg.OpenAIAPIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY is required in production")
	}
	if cfg.MaxImageSizeKB <= 0 {
		return fmt.Errorf("MAX_IMAGE_SIZE_KB must be positive")
	}
	return nil
}

// getValue resolves a configuration value from the environment, then from a
// <name>_FILE path, then from the Docker secrets directory.
func getValue(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	if path := os.Getenv(name + "_FILE"); path != "" {
		if data, err := os.ReadFile(path); err == nil {
			return strings.TrimSpace(string(data))
		}
	}
	if v := readSecret(strings.ToLower(name)); v != "" {
		return v
	}
	return fallback
}

func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func getIntValue(name string, fallback int) int {
	if v := getValue(name, ""); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

// readSecret reads a Docker secret from the secrets directory
func readSecret(name string) string {
	secretsDir := os.Getenv("SECRETS_DIR")
	if secretsDir == "" {
		secretsDir = "/run/secrets"
	}
	if data, err := os.ReadFile(filepath.Join(secretsDir, name)); err == nil {
		return strings.TrimSpace(string(data))
	}
	return ""
}
