package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config is built once at startup and passed by reference to anything that
// needs it. There is no other way to reach process configuration.
type Config struct {
	MongoURI     string
	RedisURI     string
	JWTSecret    string
	JWTExpiresIn int // access token lifetime in seconds
	Port         string
	FrontendURL  string
	// CORS: from ALLOWED_ORIGINS or FRONTEND_URL
	AllowedOrigins      []string
	CloudinaryName      string
	CloudinaryAPIKey    string
	CloudinaryAPISecret string
}

// Load reads configuration from the environment. It does not validate;
// call Validate before using the result.
func Load() *Config {
	expiresIn := 0
	if raw := os.Getenv("JWT_EXPIRES_IN"); raw != "" {
		// Non-numeric values are caught by Validate (expiresIn stays 0)
		expiresIn, _ = strconv.Atoi(raw)
	}

	allowedOrigins := parseOrigins(getEnv("ALLOWED_ORIGINS", ""))
	frontendURL := getEnv("FRONTEND_URL", "http://localhost:3000")
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{frontendURL}
	}

	return &Config{
		MongoURI:            os.Getenv("MONGO_DB"),
		RedisURI:            getEnv("REDIS_URI", ""),
		JWTSecret:           os.Getenv("JWT_SECRET"),
		JWTExpiresIn:        expiresIn,
		Port:                getEnv("PORT", "8080"),
		FrontendURL:         frontendURL,
		AllowedOrigins:      allowedOrigins,
		CloudinaryName:      getEnv("CLOUDINARY_CLOUD_NAME", ""),
		CloudinaryAPIKey:    getEnv("CLOUDINARY_API_KEY", ""),
		CloudinaryAPISecret: getEnv("CLOUDINARY_API_SECRET", ""),
	}
}

// Validate checks the required settings eagerly so the process fails fast
// at startup instead of on the first request.
func (c *Config) Validate() error {
	var missing []string
	if c.MongoURI == "" {
		missing = append(missing, "MONGO_DB")
	}
	if c.JWTSecret == "" {
		missing = append(missing, "JWT_SECRET")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}
	if c.JWTExpiresIn <= 0 {
		return fmt.Errorf("JWT_EXPIRES_IN must be a positive number of seconds")
	}
	return nil
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
