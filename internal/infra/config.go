package infra

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv      string
	Port        string
	DatabaseURL string
	DBMaxConns  int
	JWTSecret   string

	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
	RateLimitPerMin  int
	RedisURL         string
	GeoIPDBPath      string
	AllowedOrigins   []string

	// Object storage. Driver "s3" targets any S3-compatible endpoint (R2);
	// "filesystem" keeps assets on local disk for development.
	StorageDriver   string
	StoragePath     string
	S3Endpoint      string
	S3Region        string
	S3Bucket        string
	S3AccessKeyID   string
	S3SecretKey     string
	S3PublicBaseURL string
	UploadKeyPrefix string
	PresignExpiry   time.Duration

	// Vendor credentials. Empty values fall back to the DB-backed
	// credentials store.
	KieAPIKey        string
	KieBaseURL       string
	FalAPIKey        string
	FalBaseURL       string
	BytePlusAPIKey   string
	BytePlusBaseURL  string
	WaveSpeedAPIKey  string
	WaveSpeedBaseURL string
	ElevenLabsAPIKey string
	ElevenLabsBase   string
	GeminiAPIKey     string
	GeminiBaseURL    string
	GeminiModel      string

	// Lifecycle tuning.
	WebhookBaseURL     string
	JobMaxAge          time.Duration
	WorkerPollInterval time.Duration
	FFmpegPath         string
}

// LoadConfig loads configuration from environment variables and applies defaults where needed.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:      getEnv("APP_ENV", "development"),
		Port:        getEnv("PORT", "8080"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		DBMaxConns:  getEnvInt("DB_MAX_CONNS", 10),
		JWTSecret:   os.Getenv("JWT_SECRET"),

		HTTPReadTimeout:  time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout: time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 30)),
		HTTPIdleTimeout:  time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
		RateLimitPerMin:  getEnvInt("RATE_LIMIT_PER_MINUTE", 30),
		RedisURL:         os.Getenv("REDIS_URL"),
		GeoIPDBPath:      os.Getenv("GEOIP_DB_PATH"),
		AllowedOrigins:   splitCSV(os.Getenv("CORS_ALLOWED_ORIGINS")),

		StorageDriver:   getEnv("STORAGE_DRIVER", "filesystem"),
		StoragePath:     getEnv("STORAGE_PATH", "./storage"),
		S3Endpoint:      os.Getenv("S3_ENDPOINT"),
		S3Region:        getEnv("S3_REGION", "auto"),
		S3Bucket:        os.Getenv("S3_BUCKET"),
		S3AccessKeyID:   os.Getenv("S3_ACCESS_KEY_ID"),
		S3SecretKey:     os.Getenv("S3_SECRET_ACCESS_KEY"),
		S3PublicBaseURL: os.Getenv("S3_PUBLIC_BASE_URL"),
		UploadKeyPrefix: getEnv("UPLOAD_KEY_PREFIX", "uploads"),
		PresignExpiry:   time.Minute * time.Duration(getEnvInt("PRESIGN_EXPIRY_MINUTES", 15)),

		KieAPIKey:        os.Getenv("KIE_API_KEY"),
		KieBaseURL:       getEnv("KIE_BASE_URL", "https://api.kie.ai/api/v1"),
		FalAPIKey:        os.Getenv("FAL_API_KEY"),
		FalBaseURL:       getEnv("FAL_BASE_URL", "https://queue.fal.run"),
		BytePlusAPIKey:   os.Getenv("BYTEPLUS_API_KEY"),
		BytePlusBaseURL:  getEnv("BYTEPLUS_BASE_URL", "https://ark.ap-southeast.bytepluses.com/api/v3"),
		WaveSpeedAPIKey:  os.Getenv("WAVESPEED_API_KEY"),
		WaveSpeedBaseURL: getEnv("WAVESPEED_BASE_URL", "https://api.wavespeed.ai/api/v3"),
		ElevenLabsAPIKey: os.Getenv("ELEVENLABS_API_KEY"),
		ElevenLabsBase:   getEnv("ELEVENLABS_BASE_URL", "https://api.elevenlabs.io/v1"),
		GeminiAPIKey:     os.Getenv("GEMINI_API_KEY"),
		GeminiBaseURL:    getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta"),
		GeminiModel:      getEnv("GEMINI_MODEL", "gemini-2.5-flash-image"),

		WebhookBaseURL:     os.Getenv("WEBHOOK_BASE_URL"),
		JobMaxAge:          time.Hour * time.Duration(getEnvInt("JOB_MAX_AGE_HOURS", 24)),
		WorkerPollInterval: time.Second * time.Duration(getEnvInt("WORKER_POLL_INTERVAL_SECONDS", 5)),
		FFmpegPath:         getEnv("FFMPEG_PATH", "ffmpeg"),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	if cfg.StorageDriver == "s3" && cfg.S3Bucket == "" {
		return nil, fmt.Errorf("S3_BUCKET is required when STORAGE_DRIVER=s3")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func splitCSV(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}
