package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", "secret")
	t.Chdir(t.TempDir())

	cfg, loaded := LoadConfig()

	assert.False(t, loaded)
	assert.Equal(t, 8080, cfg.ServerPort)
	assert.Equal(t, "http://localhost:8080", cfg.PublicBaseURL)
	assert.Equal(t, "postgres", cfg.DB.Driver)
	assert.Equal(t, "disk", cfg.Storage.Driver)
	assert.Equal(t, "./uploads", cfg.Storage.UploadDir)
	assert.Equal(t, "memory", cfg.RateLimit.Store)
	assert.Equal(t, 30*time.Second, cfg.RateLimit.RegisterInterval)
	assert.Equal(t, 5*time.Second, cfg.RateLimit.LoginInterval)
	assert.Equal(t, 24*time.Hour, cfg.AccessTokenDuration)
	assert.Equal(t, int64(5<<20), cfg.MaxUploadSize)
	assert.Equal(t, 5, cfg.MaxListingsPerAccount)
	require.NoError(t, cfg.Validate())
}

func TestLoadConfig_FromEnvironment(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("JWT_SECRET_KEY", "secret")
	t.Setenv("SERVER_PORT", "3000")
	t.Setenv("SERVER_PUBLIC_URL", "https://market.example.com/")
	t.Setenv("DB_DRIVER", "MEMORY")
	t.Setenv("STORAGE_DRIVER", "minio")
	t.Setenv("MINIO_USE_SSL", "true")
	t.Setenv("RATE_LIMIT_STORE", "redis")
	t.Setenv("REDIS_DB", "2")
	t.Setenv("LOGIN_INTERVAL", "10s")
	t.Setenv("ACCESS_TOKEN_DURATION", "not-a-duration")
	t.Setenv("MAX_UPLOAD_SIZE", "-1")

	cfg, _ := LoadConfig()

	assert.Equal(t, 3000, cfg.ServerPort)
	assert.Equal(t, "https://market.example.com", cfg.PublicBaseURL)
	assert.Equal(t, "memory", cfg.DB.Driver)
	assert.Equal(t, "minio", cfg.Storage.Driver)
	assert.True(t, cfg.Storage.MinIO.UseSSL)
	assert.Equal(t, "redis", cfg.RateLimit.Store)
	assert.Equal(t, 2, cfg.RateLimit.Redis.DB)
	assert.Equal(t, 10*time.Second, cfg.RateLimit.LoginInterval)
	assert.Equal(t, 24*time.Hour, cfg.AccessTokenDuration)
	assert.Equal(t, int64(5<<20), cfg.MaxUploadSize)
	require.NoError(t, cfg.Validate())
}

func TestDB_DSN(t *testing.T) {
	db := DB{DbHOST: "db", DbPORT: "5432", DbUSER: "u", DbPASSWORD: "p", DbNAME: "market", DbSSLMODE: "disable"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=market sslmode=disable", db.DSN())

	db.URL = "postgres://u:p@db/market"
	assert.Equal(t, "postgres://u:p@db/market", db.DSN())
}

func TestConfig_Validate(t *testing.T) {
	cfg := &Config{
		PublicBaseURL: "ftp://files",
		DB:            DB{Driver: "mysql"},
		Storage:       Storage{Driver: "s3"},
		RateLimit:     RateLimit{Store: "memcached"},
	}

	err := cfg.Validate()
	require.Error(t, err)
	for _, want := range []string{"JWT_SECRET_KEY", "DB_DRIVER", "STORAGE_DRIVER", "RATE_LIMIT_STORE", "SERVER_PUBLIC_URL"} {
		assert.Contains(t, err.Error(), want)
	}
}
