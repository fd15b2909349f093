package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"docuscore-backend/internal/shared/telemetry"
)

// Config holds application configuration.
type Config struct {
	Port                     string
	CORSAllowOrigin          []string
	ObjectStoreType          string
	LocalStoreDir            string
	AWSRegion                string
	S3Bucket                 string
	S3Prefix                 string
	SSEKMSKeyID              string
	DatabaseURL              string
	Env                      string
	ConnectivityMode         string
	ConnectivityProbeAddr    string
	ConnectivityProbeTimeout time.Duration
	ConnectivityCacheTTL     time.Duration
	EnhancedDelay            time.Duration
	ExportFormat             string
	RateLimitRPS             float64
	RateLimitBurst           int
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	// Best-effort load of local env files for dev convenience.
	loadEnvFiles(".env", "cmd/.env")

	return Config{
		Port:                     getEnv("PORT", "8080"),
		CORSAllowOrigin:          splitAndTrim(getEnv("CORS_ALLOW_ORIGINS", "http://localhost:5173")),
		ObjectStoreType:          normalizeStoreType(getEnv("OBJECT_STORE", "local")),
		LocalStoreDir:            getEnv("LOCAL_STORE_DIR", "./data"),
		AWSRegion:                getEnv("AWS_REGION", ""),
		S3Bucket:                 getEnv("S3_BUCKET", ""),
		S3Prefix:                 getEnv("S3_PREFIX", ""),
		SSEKMSKeyID:              getEnv("SSE_KMS_KEY_ID", ""),
		DatabaseURL:              os.Getenv("DATABASE_URL"),
		Env:                      normalizeEnv(getEnv("ENV", "dev")),
		ConnectivityMode:         normalizeConnectivityMode(getEnv("CONNECTIVITY_MODE", "auto")),
		ConnectivityProbeAddr:    getEnv("CONNECTIVITY_PROBE_ADDR", "1.1.1.1:443"),
		ConnectivityProbeTimeout: getEnvDuration("CONNECTIVITY_PROBE_TIMEOUT", 2*time.Second),
		ConnectivityCacheTTL:     getEnvDuration("CONNECTIVITY_CACHE_TTL", 30*time.Second),
		EnhancedDelay:            getEnvDuration("ANALYSIS_ENHANCED_DELAY", 0),
		ExportFormat:             normalizeExportFormat(getEnv("EXPORT_FORMAT", "json")),
		RateLimitRPS:             getEnvFloat("RATE_LIMIT_RPS", 5),
		RateLimitBurst:           getEnvInt("RATE_LIMIT_BURST", 20),
	}
}

func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := time.ParseDuration(raw)
	if err != nil {
		warnInvalid(key, "duration", err)
		return def
	}
	return val
}

func getEnvInt(key string, def int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := strconv.Atoi(raw)
	if err != nil {
		warnInvalid(key, "int", err)
		return def
	}
	return val
}

func getEnvFloat(key string, def float64) float64 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		warnInvalid(key, "float", err)
		return def
	}
	return val
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	case "local":
		return "local"
	default:
		return "dev"
	}
}

func normalizeStoreType(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "s3":
		return "s3"
	default:
		return "local"
	}
}

func normalizeConnectivityMode(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "online":
		return "online"
	case "offline":
		return "offline"
	default:
		return "auto"
	}
}

func normalizeExportFormat(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "yaml", "yml":
		return "yaml"
	default:
		return "json"
	}
}

func warnInvalid(key, kind string, err error) {
	telemetry.Warn("config.invalid_env", map[string]any{
		"key":   key,
		"kind":  kind,
		"error": err.Error(),
	})
}
