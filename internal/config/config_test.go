package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad(t *testing.T) {
	t.Setenv("DB_HOST", "test-host")
	t.Setenv("DB_MAX_OPEN_CONNS", "20")
	t.Setenv("MINIO_USE_SSL", "true")
	t.Setenv("AUTH_TOKEN_TTL", "90m")
	t.Setenv("CATALOG_BACKEND", "memory")
	t.Setenv("REDIS_ADDR", "localhost:6379")

	cfg := Load()

	assert.Equal(t, "test-host", cfg.Database.Host)
	assert.Equal(t, 20, cfg.Database.MaxOpenConns)
	assert.True(t, cfg.MinIO.UseSSL)
	assert.Equal(t, 90*time.Minute, cfg.Auth.TokenTTL)
	assert.Equal(t, CatalogBackendMemory, cfg.CatalogBackend)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
}

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"CATALOG_BACKEND", "AUTH_TOKEN_TTL", "AUTH_BCRYPT_COST", "UPLOAD_MAX_IMAGE_BYTES", "MINIO_BUCKET"} {
		t.Setenv(k, "")
	}

	cfg := Load()

	assert.Equal(t, CatalogBackendPostgres, cfg.CatalogBackend)
	assert.Equal(t, 6*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, 10, cfg.Auth.BcryptCost)
	assert.Equal(t, int64(5<<20), cfg.Upload.MaxImageBytes)
	assert.Equal(t, "tarvee", cfg.MinIO.Bucket)
}

func TestValidate(t *testing.T) {
	for _, backend := range []string{CatalogBackendPostgres, CatalogBackendMemory} {
		assert.NoError(t, (&AppConfig{CatalogBackend: backend}).Validate())
	}

	err := (&AppConfig{CatalogBackend: "memroy"}).Validate()
	assert.ErrorContains(t, err, `got "memroy"`)
}

func TestLocation(t *testing.T) {
	cfg := &AppConfig{Timezone: "Asia/Kolkata"}
	loc := cfg.Location()
	assert.Equal(t, "Asia/Kolkata", loc.String())

	cfg.Timezone = "Not/AZone"
	assert.Equal(t, time.UTC, cfg.Location())
}

func TestGetEnv(t *testing.T) {
	key := "TEST_ENV_VAR"
	os.Setenv(key, "value")
	defer os.Unsetenv(key)

	assert.Equal(t, "value", getEnv(key, "default"))
	assert.Equal(t, "default", getEnv("NON_EXISTENT", "default"))
}

func TestGetEnvBool(t *testing.T) {
	key := "TEST_BOOL_VAR"

	os.Setenv(key, "true")
	assert.True(t, getEnvBool(key, false))

	os.Setenv(key, "false")
	assert.False(t, getEnvBool(key, true))

	os.Setenv(key, "invalid")
	assert.True(t, getEnvBool(key, true))

	os.Unsetenv(key)
	assert.True(t, getEnvBool(key, true))
}

func TestGetEnvInt(t *testing.T) {
	key := "TEST_INT_VAR"

	os.Setenv(key, "123")
	assert.Equal(t, 123, getEnvInt(key, 0))

	os.Setenv(key, "invalid")
	assert.Equal(t, 10, getEnvInt(key, 10))

	os.Unsetenv(key)
	assert.Equal(t, 10, getEnvInt(key, 10))
}

func TestGetEnvDuration(t *testing.T) {
	key := "TEST_DURATION_VAR"

	os.Setenv(key, "2s")
	assert.Equal(t, 2*time.Second, getEnvDuration(key, time.Minute))

	os.Setenv(key, "soon")
	assert.Equal(t, time.Minute, getEnvDuration(key, time.Minute))

	os.Unsetenv(key)
	assert.Equal(t, time.Minute, getEnvDuration(key, time.Minute))
}
