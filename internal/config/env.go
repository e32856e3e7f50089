package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Env struct {
	AppAddr   string
	GinMode   string
	DBDSN     string
	RedisAddr string
	JWTSecret string

	// CacheTTL bounds how long list/detail GET payloads stay cached.
	CacheTTL time.Duration

	// AuthRequired gates the protected API groups behind bearer tokens.
	AuthRequired bool

	// AuditLogBody enables debug logging of (redacted) write-request bodies.
	AuditLogBody bool

	CORSOrigins []string
}

func LoadEnv() Env {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	return Env{
		AppAddr:      getEnv("APP_ADDR", ":8080"),
		GinMode:      strings.TrimSpace(os.Getenv("GIN_MODE")),
		DBDSN:        getEnv("DB_DSN", ""),
		RedisAddr:    strings.TrimSpace(os.Getenv("REDIS_ADDR")),
		JWTSecret:    getEnv("JWT_SECRET", "super-secret-key-change-me"),
		CacheTTL:     getEnvDuration("CACHE_TTL", 60*time.Second),
		AuthRequired: getEnvBool("AUTH_REQUIRED", false),
		AuditLogBody: getEnvBool("AUDIT_LOG_BODY", false),
		CORSOrigins:  getEnvList("CORS_ALLOWED_ORIGINS", defaultCORSOrigins),
	}
}

var defaultCORSOrigins = []string{
	"http://localhost:3000",
	"http://127.0.0.1:3000",
	"http://localhost:5173",
	"http://127.0.0.1:5173",
}

func getEnv(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		log.Printf("invalid bool in %s=%q, using %v", key, value, fallback)
		return fallback
	}
	return parsed
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		log.Printf("invalid duration in %s=%q, using %s", key, value, fallback)
		return fallback
	}
	return parsed
}

func getEnvList(key string, fallback []string) []string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	out := []string{}
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
