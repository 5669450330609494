package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testYAML = `
server:
  port: "8081"
  mode: debug
database:
  driver: sqlite
  path: test.db
jwt:
  secret: unit-test-secret
  expire_hours: 2
video:
  token_ttl: 45s
admin:
  emails:
    - admin@example.com
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(body), 0o644))
	return dir
}

func TestLoadConfigDefaultsAndFile(t *testing.T) {
	dir := writeConfig(t, testYAML)
	t.Setenv("STORAGE_TYPE", "minio")

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, "8081", cfg.Server.Port)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, 2*time.Hour, cfg.JWT.ExpireTime)
	assert.Equal(t, 45*time.Second, cfg.Video.TokenTTL)
	assert.Equal(t, "unit-test-secret", cfg.Video.TokenSecret, "video secret falls back to jwt secret")
	assert.Equal(t, 10*time.Minute, cfg.OTP.TTL)
	assert.Equal(t, 7*24*time.Hour, cfg.Mobile.SessionTTL)
	assert.Equal(t, 30*24*time.Hour, cfg.Mobile.RefreshTTL)
	assert.Equal(t, 10, cfg.Database.MaxOpenConns)
	assert.Equal(t, "minio", cfg.Storage.Type)
	assert.Equal(t, []string{"admin@example.com"}, cfg.Admin.Emails)
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	dir := writeConfig(t, testYAML)
	t.Setenv("JWT_SECRET", "from-env")
	t.Setenv("VIDEO_TOKEN_SECRET", "video-from-env")
	t.Setenv("DATABASE_DRIVER", "postgres")

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.JWT.Secret)
	assert.Equal(t, "video-from-env", cfg.Video.TokenSecret)
	assert.Equal(t, "postgres", cfg.Database.Driver)
}

func TestValidateRejectsWeakReleaseSecret(t *testing.T) {
	dir := writeConfig(t, testYAML)
	t.Setenv("SERVER_MODE", "release")

	_, err := LoadConfig(dir)
	assert.ErrorContains(t, err, "too short")
}
