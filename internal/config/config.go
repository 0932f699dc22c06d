// Package config loads application configuration from environment variables.
package config

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

// DefaultPublicBaseURL is used when PUBLIC_BASE_URL is not set. The bucket is
// served through a CDN domain, so reads never touch the relay.
const DefaultPublicBaseURL = "https://cdn.edtechh.shop"

// Config holds all runtime configuration for the relay.
type Config struct {
	Port   string
	AppEnv string

	// Object storage (S3-compatible: MinIO locally, Cloudflare R2 in production)
	StorageEndpoint  string
	StorageAccessKey string
	StorageSecretKey string
	StorageBucket    string
	StorageUseSSL    bool

	// PublicBaseURL is the browser-accessible base for uploaded objects.
	PublicBaseURL string

	// UploadDir is the transient staging directory for multipart bodies.
	UploadDir string

	// AllowedOrigins are the browser origins permitted to call the relay.
	AllowedOrigins []string

	// PresignExpiry bounds the lifetime of minted upload URLs.
	PresignExpiry time.Duration
}

// Load reads configuration from a .env file (if present) and environment variables.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, reading from environment")
	}

	return &Config{
		Port:   getEnv("PORT", "3000"),
		AppEnv: getEnv("APP_ENV", "development"),

		StorageEndpoint:  getEnv("STORAGE_ENDPOINT", "localhost:9000"),
		StorageAccessKey: getEnv("STORAGE_ACCESS_KEY", "minioadmin"),
		StorageSecretKey: getEnv("STORAGE_SECRET_KEY", "minioadmin"),
		StorageBucket:    getEnv("STORAGE_BUCKET", "media"),
		StorageUseSSL:    getEnv("STORAGE_USE_SSL", "false") == "true",

		PublicBaseURL: getEnv("PUBLIC_BASE_URL", DefaultPublicBaseURL),
		UploadDir:     getEnv("UPLOAD_DIR", "uploads"),

		AllowedOrigins: splitOrigins(getEnv("ALLOWED_ORIGINS",
			"http://localhost:5173,http://localhost:3000,http://127.0.0.1:5173")),

		PresignExpiry: getDuration("PRESIGN_EXPIRY", 15*time.Minute),
	}
}

// IsProduction returns true when the app is running in production mode.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// LogStatus reports which storage settings are present, without printing secrets.
func (c *Config) LogStatus() {
	log.Println("environment variables status:")
	log.Printf("- STORAGE_ENDPOINT: %s", setOrMissing(os.Getenv("STORAGE_ENDPOINT")))
	log.Printf("- STORAGE_ACCESS_KEY: %s", setOrMissing(os.Getenv("STORAGE_ACCESS_KEY")))
	log.Printf("- STORAGE_SECRET_KEY: %s", setOrMissing(os.Getenv("STORAGE_SECRET_KEY")))
	log.Printf("- STORAGE_BUCKET: %s", setOrMissing(os.Getenv("STORAGE_BUCKET")))
	if os.Getenv("PUBLIC_BASE_URL") == "" {
		log.Printf("- PUBLIC_BASE_URL: using fallback %s", DefaultPublicBaseURL)
	} else {
		log.Printf("- PUBLIC_BASE_URL: %s", c.PublicBaseURL)
	}
}

func setOrMissing(v string) string {
	if v == "" {
		return "missing"
	}
	return "set"
}

func splitOrigins(s string) []string {
	parts := strings.Split(s, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			origins = append(origins, p)
		}
	}
	return origins
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Printf("invalid %s %q, using %s", key, v, fallback)
		return fallback
	}
	return d
}
