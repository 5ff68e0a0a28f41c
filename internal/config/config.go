// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const defaultJWTSecret = "your-secret-key-change-in-production"

type Config struct {
	Environment string
	Server      ServerConfig
	ProductAPI  ProductAPIConfig
	JWT         JWTConfig
	Redis       RedisConfig
	AWS         AWSConfig
	Uploads     UploadConfig
	Drafts      DraftConfig
	RateLimit   RateLimitConfig
	CORS        CORSConfig
	Log         LogConfig
	I18n        I18nConfig
}

type ServerConfig struct {
	Port         string
	Host         string
	ReadTimeout  int
	WriteTimeout int
	IdleTimeout  int
}

// ProductAPIConfig points at the upstream catalog and product service.
type ProductAPIConfig struct {
	BaseURL          string
	AssetBaseURL     string
	Timeout          time.Duration
	CategoriesPath   string
	MeasurementsPath string
	ProductsPath     string
}

type JWTConfig struct {
	SecretKey string
	Issuer    string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	CacheTTL time.Duration
}

// Enabled reports whether a Redis host is configured. Without one the catalog
// cache stays in process.
func (r RedisConfig) Enabled() bool {
	return r.Host != ""
}

func (r RedisConfig) Addr() string {
	return r.Host + ":" + r.Port
}

type AWSConfig struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	S3Bucket        string
	StagingPrefix   string
}

// Enabled reports whether staged uploads go to S3.
func (a AWSConfig) Enabled() bool {
	return a.S3Bucket != ""
}

type UploadConfig struct {
	MaxFileSize  int64
	MaxDimension int
	AllowedTypes []string
}

type DraftConfig struct {
	TTL           time.Duration
	SweepInterval time.Duration
	MaxPerVendor  int
}

type RateLimitConfig struct {
	RequestsPerSecond float64
	Burst             int
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

type I18nConfig struct {
	DefaultLocale string
}

func Load() (*Config, error) {
	// Load .env file if it exists
	godotenv.Load()

	config := &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8080"),
			Host:         getEnv("SERVER_HOST", "localhost"),
			ReadTimeout:  getEnvAsInt("SERVER_READ_TIMEOUT", 15),
			WriteTimeout: getEnvAsInt("SERVER_WRITE_TIMEOUT", 60),
			IdleTimeout:  getEnvAsInt("SERVER_IDLE_TIMEOUT", 60),
		},
		ProductAPI: ProductAPIConfig{
			BaseURL:          strings.TrimRight(getEnv("PRODUCT_API_URL", ""), "/"),
			AssetBaseURL:     getEnv("PRODUCT_ASSET_URL", ""),
			Timeout:          getEnvAsDuration("PRODUCT_API_TIMEOUT", 30*time.Second),
			CategoriesPath:   getEnv("PRODUCT_API_CATEGORIES_PATH", "/categories"),
			MeasurementsPath: getEnv("PRODUCT_API_MEASUREMENTS_PATH", "/measurements"),
			ProductsPath:     getEnv("PRODUCT_API_PRODUCTS_PATH", "/vendor/products"),
		},
		JWT: JWTConfig{
			SecretKey: getEnv("JWT_SECRET", defaultJWTSecret),
			Issuer:    getEnv("JWT_ISSUER", ""),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", ""),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			CacheTTL: getEnvAsDuration("CATALOG_CACHE_TTL", 10*time.Minute),
		},
		AWS: AWSConfig{
			Region:          getEnv("AWS_REGION", "us-east-1"),
			AccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
			S3Bucket:        getEnv("AWS_S3_BUCKET", ""),
			StagingPrefix:   getEnv("AWS_STAGING_PREFIX", "staging"),
		},
		Uploads: UploadConfig{
			MaxFileSize:  int64(getEnvAsInt("UPLOAD_MAX_FILE_SIZE", 10<<20)),
			MaxDimension: getEnvAsInt("UPLOAD_MAX_DIMENSION", 2048),
			AllowedTypes: getEnvAsList("UPLOAD_ALLOWED_TYPES", []string{"image/jpeg", "image/png", "image/gif", "image/webp"}),
		},
		Drafts: DraftConfig{
			TTL:           getEnvAsDuration("DRAFT_TTL", 2*time.Hour),
			SweepInterval: getEnvAsDuration("DRAFT_SWEEP_INTERVAL", 5*time.Minute),
			MaxPerVendor:  getEnvAsInt("DRAFT_MAX_PER_VENDOR", 20),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: getEnvAsFloat("RATE_LIMIT_RPS", 10),
			Burst:             getEnvAsInt("RATE_LIMIT_BURST", 40),
		},
		CORS: CORSConfig{
			AllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", ""),
		},
		I18n: I18nConfig{
			DefaultLocale: getEnv("DEFAULT_LOCALE", "en"),
		},
	}

	return config, config.Validate()
}

func (c *Config) Validate() error {
	if c.ProductAPI.BaseURL == "" {
		return fmt.Errorf("PRODUCT_API_URL is required")
	}

	if c.JWT.SecretKey == defaultJWTSecret && c.IsProduction() {
		return fmt.Errorf("JWT secret key must be changed in production")
	}

	if c.Uploads.MaxFileSize <= 0 {
		return fmt.Errorf("upload max file size must be positive")
	}

	if c.Drafts.TTL <= 0 {
		return fmt.Errorf("draft TTL must be positive")
	}

	return nil
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
