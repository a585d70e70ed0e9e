package config

import (
	"os"
	"strconv"
	"strings"
)

// Config holds application configuration
type Config struct {
	Port          string
	Env           string
	LogLevel      string
	PublicBaseURL string

	// Reference data
	DataDir     string
	DatabaseURL string // when set, reference tables load from Postgres instead of DataDir

	// Uploads
	UploadDir    string
	UploadBucket string // when set, uploads are archived to S3

	// AWS (only used when UploadBucket is set)
	AWSRegion           string
	AWSEndpointOverride string

	// Session store for order confirmations
	RedisAddr     string
	RedisPassword string
	RedisTLS      bool

	// Pipeline tuning
	ConfidenceThreshold float64
	DefaultLatitude     float64
	DefaultLongitude    float64

	CORSAllowedOrigins []string
}

// Load reads configuration from the environment.
func Load() *Config {
	return &Config{
		Port:          getEnv("PORT", "8080"),
		Env:           getEnv("ENV", "development"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		PublicBaseURL: getEnv("PUBLIC_BASE_URL", ""),

		DataDir:     getEnv("DATA_DIR", "data"),
		DatabaseURL: getEnv("DATABASE_URL", ""),

		UploadDir:    getEnv("UPLOAD_DIR", "tmp/uploads"),
		UploadBucket: getEnv("UPLOAD_BUCKET", ""),

		AWSRegion:           getEnv("AWS_REGION", "us-east-1"),
		AWSEndpointOverride: getEnv("AWS_ENDPOINT_OVERRIDE", ""),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisTLS:      getEnvAsBool("REDIS_TLS", false),

		ConfidenceThreshold: getEnvAsFloat("CONFIDENCE_THRESHOLD", 0.5),
		DefaultLatitude:     getEnvAsFloat("DEFAULT_LATITUDE", 19.12),
		DefaultLongitude:    getEnvAsFloat("DEFAULT_LONGITUDE", 72.84),

		CORSAllowedOrigins: getEnvAsSlice("CORS_ALLOWED_ORIGINS", nil),
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsFloat retrieves an environment variable as a float or returns a default value
func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	parts := strings.Split(valueStr, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
