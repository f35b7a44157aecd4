package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type DB struct {
	Driver     string
	URL        string
	DbHOST     string
	DbPORT     string
	DbUSER     string
	DbPASSWORD string
	DbNAME     string
	DbSSLMODE  string
}

// DSN prefers DATABASE_URL and falls back to the discrete settings.
func (d DB) DSN() string {
	if d.URL != "" {
		return d.URL
	}
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.DbHOST, d.DbPORT, d.DbUSER, d.DbPASSWORD, d.DbNAME, d.DbSSLMODE,
	)
}

type MinIO struct {
	Endpoint   string
	AccessKey  string
	SecretKey  string
	BucketName string
	UseSSL     bool
	Region     string
}

type Storage struct {
	Driver    string
	UploadDir string
	MinIO     MinIO
}

type Redis struct {
	Addr     string
	Password string
	DB       int
}

type RateLimit struct {
	Store            string
	RegisterInterval time.Duration
	LoginInterval    time.Duration
	Redis            Redis
}

type Config struct {
	ServerPort            int
	PublicBaseURL         string
	DB                    DB
	Storage               Storage
	RateLimit             RateLimit
	JWTSecretKey          string
	AccessTokenDuration   time.Duration
	MaxUploadSize         int64
	MaxListingsPerAccount int
	CORSOrigin            string
	LogLevel              string
}

func getEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return fallback
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil && intValue > 0 {
			return intValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil && duration > 0 {
			return duration
		}
	}
	return defaultValue
}

func LoadDB() DB {
	return DB{
		Driver:     strings.ToLower(getEnv("DB_DRIVER", "postgres")),
		URL:        getEnv("DATABASE_URL", ""),
		DbHOST:     getEnv("DB_HOST", "localhost"),
		DbPORT:     getEnv("DB_PORT", "5432"),
		DbUSER:     getEnv("DB_USER", "postgres"),
		DbPASSWORD: getEnv("DB_PASSWORD", "password"),
		DbNAME:     getEnv("DB_NAME", "marketplace"),
		DbSSLMODE:  getEnv("DB_SSLMODE", "disable"),
	}
}

func LoadStorage() Storage {
	return Storage{
		Driver:    strings.ToLower(getEnv("STORAGE_DRIVER", "disk")),
		UploadDir: getEnv("UPLOAD_DIR", "./uploads"),
		MinIO: MinIO{
			Endpoint:   getEnv("MINIO_ENDPOINT", "localhost:9000"),
			AccessKey:  getEnv("MINIO_ACCESS_KEY", "minioadmin"),
			SecretKey:  getEnv("MINIO_SECRET_KEY", "minioadmin"),
			BucketName: getEnv("MINIO_BUCKET_NAME", "marketplace"),
			UseSSL:     getEnvBool("MINIO_USE_SSL", false),
			Region:     getEnv("MINIO_REGION", "us-east-1"),
		},
	}
}

func LoadRateLimit() RateLimit {
	return RateLimit{
		Store:            strings.ToLower(getEnv("RATE_LIMIT_STORE", "memory")),
		RegisterInterval: getEnvDuration("REGISTER_INTERVAL", 30*time.Second),
		LoginInterval:    getEnvDuration("LOGIN_INTERVAL", 5*time.Second),
		Redis: Redis{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
	}
}

// LoadConfig reads .env when present, then the process environment.
// The returned bool reports whether a .env file was loaded.
func LoadConfig() (*Config, bool) {
	loaded := godotenv.Load() == nil

	return &Config{
		ServerPort:            getEnvAsInt("SERVER_PORT", 8080),
		PublicBaseURL:         strings.TrimRight(getEnv("SERVER_PUBLIC_URL", "http://localhost:8080"), "/"),
		DB:                    LoadDB(),
		Storage:               LoadStorage(),
		RateLimit:             LoadRateLimit(),
		JWTSecretKey:          getEnv("JWT_SECRET_KEY", ""),
		AccessTokenDuration:   getEnvDuration("ACCESS_TOKEN_DURATION", 24*time.Hour),
		MaxUploadSize:         getEnvAsInt64("MAX_UPLOAD_SIZE", 5<<20),
		MaxListingsPerAccount: getEnvAsInt("MAX_LISTINGS_PER_ACCOUNT", 5),
		CORSOrigin:            getEnv("CORS_ORIGIN", "*"),
		LogLevel:              getEnv("LOG_LEVEL", "info"),
	}, loaded
}

func (c *Config) Validate() error {
	var errs []error

	if c.JWTSecretKey == "" {
		errs = append(errs, errors.New("JWT_SECRET_KEY is required"))
	}
	switch c.DB.Driver {
	case "postgres", "memory":
	default:
		errs = append(errs, fmt.Errorf("DB_DRIVER %q is not one of postgres, memory", c.DB.Driver))
	}
	switch c.Storage.Driver {
	case "disk", "minio":
	default:
		errs = append(errs, fmt.Errorf("STORAGE_DRIVER %q is not one of disk, minio", c.Storage.Driver))
	}
	switch c.RateLimit.Store {
	case "memory", "redis":
	default:
		errs = append(errs, fmt.Errorf("RATE_LIMIT_STORE %q is not one of memory, redis", c.RateLimit.Store))
	}
	if !strings.HasPrefix(c.PublicBaseURL, "http://") && !strings.HasPrefix(c.PublicBaseURL, "https://") {
		errs = append(errs, fmt.Errorf("SERVER_PUBLIC_URL %q must be an http(s) URL", c.PublicBaseURL))
	}

	return errors.Join(errs...)
}
