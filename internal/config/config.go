package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env      string
	MongoURI string
	MongoDB  string
	Port     string

	Log     LogConfig
	Cache   CacheConfig
	Storage StorageConfig

	// RateLimitRPS <= 0 desactiva el límite por IP
	RateLimitRPS   float64
	RateLimitBurst int

	// APIBaseURL es a dónde apunta storectl
	APIBaseURL string
}

type LogConfig struct {
	Level    string
	Format   string
	Output   string
	FilePath string
}

type CacheConfig struct {
	TTL           time.Duration
	PriceRangeTTL time.Duration
	PrefsTTL      time.Duration
}

type StorageConfig struct {
	Driver string // "local" | "s3"

	LocalDir       string
	LocalURLPrefix string

	S3Region        string
	S3Bucket        string
	S3Prefix        string
	S3PublicBaseURL string
}

func LoadConfig() *Config {
	// Solo cargar .env en desarrollo local
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			log.Println("⚠️ Error loading .env file:", err)
		} else {
			log.Println("✅ .env file loaded successfully")
		}
	}

	return &Config{
		Env:      getEnv("APP_ENV", "development"),
		MongoURI: getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:  getEnv("MONGO_DB", "storefront"),
		Port:     getEnv("PORT", "8080"),
		Log: LogConfig{
			Level:    getEnv("LOG_LEVEL", "info"),
			Format:   getEnv("LOG_FORMAT", ""),
			Output:   getEnv("LOG_OUTPUT", "stdout"),
			FilePath: getEnv("LOG_FILE", "logs/storefront.log"),
		},
		Cache: CacheConfig{
			TTL:           getDuration("CACHE_TTL", 5*time.Minute),
			PriceRangeTTL: getDuration("PRICE_RANGE_TTL", 2*time.Minute),
			PrefsTTL:      getDuration("PREFS_TTL", 30*24*time.Hour),
		},
		Storage: StorageConfig{
			Driver:          getEnv("STORAGE_DRIVER", "local"),
			LocalDir:        getEnv("LOCAL_UPLOAD_DIR", "uploads"),
			LocalURLPrefix:  getEnv("LOCAL_UPLOAD_URL_PREFIX", "/uploads"),
			S3Region:        getEnv("S3_REGION", ""),
			S3Bucket:        getEnv("S3_BUCKET", ""),
			S3Prefix:        getEnv("S3_PREFIX", "media"),
			S3PublicBaseURL: getEnv("S3_PUBLIC_BASE_URL", ""),
		},
		RateLimitRPS:   getFloat("RATE_LIMIT_RPS", 20),
		RateLimitBurst: getInt("RATE_LIMIT_BURST", 40),
		APIBaseURL:     getEnv("API_BASE_URL", "http://localhost:8080"),
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

// getDuration acepta "90s", "5m" o un número de segundos
func getDuration(key string, fallback time.Duration) time.Duration {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(raw); err == nil {
		return time.Duration(secs) * time.Second
	}
	log.Printf("⚠️ invalid duration for %s=%q, using %s", key, raw, fallback)
	return fallback
}

func getFloat(key string, fallback float64) float64 {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		log.Printf("⚠️ invalid number for %s=%q, using %v", key, raw, fallback)
		return fallback
	}
	return f
}

func getInt(key string, fallback int) int {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		log.Printf("⚠️ invalid integer for %s=%q, using %d", key, raw, fallback)
		return fallback
	}
	return n
}
