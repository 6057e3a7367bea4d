package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("RHN_JWT_SECRET", "test-secret")

	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "test-secret", cfg.JWT.Secret)
	assert.Equal(t, 2, cfg.Dashboard.RetryAttempts)
	assert.Equal(t, 200*time.Millisecond, cfg.Dashboard.RetryDelay)
	assert.Equal(t, "", cfg.Redis.URL)
	assert.Equal(t, 10*time.Minute, cfg.Locations.CacheTTL)
	assert.Equal(t, "Asia/Kolkata", cfg.Dashboard.Timezone)
}

func TestLoadConfigFileAndSecrets(t *testing.T) {
	dir := t.TempDir()
	yaml := []byte(`
server:
  port: 9090
database:
  host: db
  password: from-file
jwt:
  secret: file-secret
dashboard:
  retry_attempts: 3
`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), yaml, 0o600))
	t.Setenv("RHN_DB_PASSWORD", "from-env")

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "file-secret", cfg.JWT.Secret)
	assert.Equal(t, "from-env", cfg.Database.Password)
	assert.Equal(t, 3, cfg.Dashboard.RetryAttempts)
	assert.Contains(t, cfg.Database.DSN(), "host=db")
	assert.Contains(t, cfg.Database.DSN(), "password=from-env")
}

func TestLoadConfigRequiresSecret(t *testing.T) {
	t.Setenv("RHN_JWT_SECRET", "")
	_, err := LoadConfig(t.TempDir())
	assert.Error(t, err)
}

func TestLoadConfigRejectsUnknownTimezone(t *testing.T) {
	dir := t.TempDir()
	yaml := []byte(`
jwt:
  secret: file-secret
dashboard:
  timezone: Mars/Olympus_Mons
`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), yaml, 0o600))

	_, err := LoadConfig(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "timezone")
}
