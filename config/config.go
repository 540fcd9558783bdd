package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	Environment string
	FrontendURL string
	// Storage
	StorageDriver string // "postgres" or "memory"
	DBUrl         string
	// Resume storage
	ResumeStorage  string // "local" or "s3"
	ResumeDir      string
	S3Provider     string
	S3AccessKeyID  string
	S3SecretKey    string
	S3Region       string
	S3Bucket       string
	WasabiEndpoint string
	MaxUploadBytes int64
	// Listing
	DefaultPageSize int
	// Workflow
	StatusPolicy string // "permissive" or "terminal"
	// Admin authentication
	JWTSecret     string
	JWTIssuer     string
	JWTTTLMinutes int
	JWKSUrl       string
	AdminAccounts string // "user:bcrypt-hash[:totp-secret],..."
	// Redis/Upstash Configuration
	UpstashRedisURL      string
	UpstashRedisPassword string
	// Upload rate limiting
	UploadsPerMinute int
	UploadsPerDay    int
}

func LoadConfig() (*Config, error) {
	// .env is optional; production injects real environment variables
	_ = godotenv.Load()

	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("SERVICE_ENV", "development"),
		FrontendURL: strings.TrimRight(getEnv("FRONTEND_URL", "http://localhost:3000"), "/"),
		// Storage
		StorageDriver: strings.ToLower(getEnv("STORAGE_DRIVER", "postgres")),
		DBUrl:         getEnv("DATABASE_URL", ""),
		// Resume storage
		ResumeStorage:  strings.ToLower(getEnv("RESUME_STORAGE", "local")),
		ResumeDir:      getEnv("RESUME_DIR", "./media/resumes"),
		S3Provider:     getEnv("S3_PROVIDER", "aws"),
		S3AccessKeyID:  getEnv("S3_ACCESS_KEY_ID", ""),
		S3SecretKey:    getEnv("S3_SECRET_ACCESS_KEY", ""),
		S3Region:       getEnv("S3_REGION", "us-east-1"),
		S3Bucket:       getEnv("S3_BUCKET", ""),
		WasabiEndpoint: getEnv("WASABI_ENDPOINT", ""),
		MaxUploadBytes: getEnvInt64("MAX_UPLOAD_BYTES", 5*1024*1024), // 5MB
		// Listing
		DefaultPageSize: getEnvInt("DEFAULT_PAGE_SIZE", 10),
		// Workflow
		StatusPolicy: strings.ToLower(getEnv("STATUS_POLICY", "permissive")),
		// Admin authentication
		JWTSecret:     getEnv("JWT_SECRET", ""),
		JWTIssuer:     getEnv("JWT_ISSUER", "hr-tracker"),
		JWTTTLMinutes: getEnvInt("JWT_TTL_MINUTES", 480),
		JWKSUrl:       getEnv("JWKS_URL", ""),
		AdminAccounts: getEnv("ADMIN_ACCOUNTS", ""),
		// Redis/Upstash Configuration
		UpstashRedisURL:      getEnv("UPSTASH_REDIS_URL", ""),
		UpstashRedisPassword: getEnv("UPSTASH_REDIS_PASSWORD", ""),
		// Upload rate limiting
		UploadsPerMinute: getEnvInt("UPLOADS_PER_MINUTE", 10),
		UploadsPerDay:    getEnvInt("UPLOADS_PER_DAY", 50),
	}

	if cfg.StorageDriver == "postgres" && cfg.DBUrl == "" {
		log.Println("WARNING: DATABASE_URL is missing. Application may fail to connect.")
	}

	if cfg.JWTSecret == "" && cfg.JWKSUrl == "" {
		log.Println("WARNING: neither JWT_SECRET nor JWKS_URL is configured. Admin endpoints will reject every request.")
	}

	if cfg.UpstashRedisURL == "" {
		log.Println("WARNING: UPSTASH_REDIS_URL not configured. Upload rate limiting is disabled.")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// getEnvInt returns an integer environment variable or fallback if not set/invalid
func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return fallback
}

func getEnvInt64(key string, fallback int64) int64 {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intVal
		}
	}
	return fallback
}
