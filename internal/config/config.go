package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds runtime configuration sourced from env vars.
type Config struct {
	PostgresURI         string
	RedisURI            string
	JWTSecret           string
	TokenTTL            time.Duration
	Port                string
	AllowedOrigins      []string
	CloudinaryName      string
	CloudinaryAPIKey    string
	CloudinaryAPISecret string
	Environment         string
}

// Load reads configuration from the environment with development defaults.
func Load() *Config {
	ttl := 24 * time.Hour
	if hours, err := strconv.Atoi(getEnv("TOKEN_TTL_HOURS", "24")); err == nil && hours > 0 {
		ttl = time.Duration(hours) * time.Hour
	}

	allowedOrigins := parseOrigins(getEnv("ALLOWED_ORIGINS", ""))
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{getEnv("FRONTEND_URL", "http://localhost:3000")}
	}

	environment := strings.ToLower(strings.TrimSpace(getEnv("ENV", "development")))

	// The dev fallback secret never applies in production; main refuses to
	// start without an explicit JWT_SECRET there.
	jwtSecret := getEnv("JWT_SECRET", "")
	if jwtSecret == "" && environment != "production" {
		jwtSecret = "dev-secret-change-me"
	}

	return &Config{
		PostgresURI:         getEnv("POSTGRES_URI", "postgres://localhost:5432/mercadito?sslmode=disable"),
		RedisURI:            getEnv("REDIS_URI", "redis://localhost:6379/0"),
		JWTSecret:           jwtSecret,
		TokenTTL:            ttl,
		Port:                getEnv("PORT", "8080"),
		AllowedOrigins:      allowedOrigins,
		CloudinaryName:      getEnv("CLOUDINARY_CLOUD_NAME", ""),
		CloudinaryAPIKey:    getEnv("CLOUDINARY_API_KEY", ""),
		CloudinaryAPISecret: getEnv("CLOUDINARY_API_SECRET", ""),
		Environment:         environment,
	}
}

// IsProduction returns true when ENV is set to "production".
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func parseOrigins(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
