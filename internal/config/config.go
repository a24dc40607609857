// File: internal/config/config.go
package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort   string
	Environment  string
	JWTSecretKey string
	DatabasePath string

	// Completion provider
	AIAPIKey     string
	AIBaseURL    string
	DefaultModel string
	MaxToolSteps int

	AllowedOrigin string
}

// Load reads configuration from environment variables or .env file.
func Load() *Config {
	env := os.Getenv("ENV")
	if strings.ToLower(env) != "production" {
		if err := godotenv.Load(); err != nil {
			log.Println("No .env file found; continuing with environment variables")
		}
	}

	cfg := &Config{
		ServerPort:    getEnv("SERVER_PORT", "8080"),
		Environment:   env,
		JWTSecretKey:  getEnv("JWT_SECRET_KEY", ""),
		DatabasePath:  getEnv("DATABASE_PATH", "coreframe.db"),
		AIAPIKey:      getEnv("AI_API_KEY", ""),
		AIBaseURL:     getEnv("AI_BASE_URL", ""),
		DefaultModel:  getEnv("AI_DEFAULT_MODEL", "gpt-4o-mini"),
		MaxToolSteps:  getEnvAsInt("AI_MAX_TOOL_STEPS", 10),
		AllowedOrigin: getEnv("ALLOWED_ORIGIN", "*"),
	}

	// Validation for production environments
	if strings.ToLower(env) == "production" {
		missing := []string{}
		if cfg.JWTSecretKey == "" {
			missing = append(missing, "JWT_SECRET_KEY")
		}
		if cfg.AIAPIKey == "" {
			missing = append(missing, "AI_API_KEY")
		}
		if len(missing) > 0 {
			log.Fatalf("Missing required production environment variables: %v", missing)
		}
	}

	return cfg
}

// getEnv returns the value of an environment variable or a default.
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvAsInt gets an env var as an integer, with a fallback.
func getEnvAsInt(key string, defaultValue int) int {
	strValue := getEnv(key, "")
	if strValue == "" {
		return defaultValue
	}
	intValue, err := strconv.Atoi(strValue)
	if err != nil {
		log.Printf("Warning: could not parse env var %s as integer. Using default value.", key)
		return defaultValue
	}
	return intValue
}
