package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

// ==========================
// Defaults and overrides
// ==========================

func TestLoadFromFile_Defaults(t *testing.T) {
	path := writeConfig(t, "app:\n  name: grant-intake\n")

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Address)
	assert.Equal(t, int64(32<<20), cfg.Server.MaxBodyBytes)
	assert.Equal(t, BackendMemory, cfg.Store.Backend)
	assert.Equal(t, "grant-intake", cfg.Store.KeyPrefix)
	assert.Equal(t, 5000, cfg.Notifications.Timeout)
	assert.Equal(t, "https://api.telegram.org", cfg.Notifications.Telegram.APIBaseURL)
	assert.Equal(t, "us-east-1", cfg.Notifications.AWS.Region)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Empty(t, cfg.Admin.Token)
	assert.False(t, cfg.Notifications.TelegramConfigured())
	assert.False(t, cfg.Notifications.AWSEnabled())
}

func TestLoadFromFile_FileValues(t *testing.T) {
	path := writeConfig(t, `
server:
  address: ":9090"
  max_body_bytes: 1024
store:
  backend: redis
  key_prefix: intake-test
database:
  redis:
    address: localhost:6379
notifications:
  timeout: 2500
  email:
    enabled: true
    from_email: grants@example.com
    to: [ops@example.com, review@example.com]
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Address)
	assert.Equal(t, int64(1024), cfg.Server.MaxBodyBytes)
	assert.Equal(t, BackendRedis, cfg.Store.Backend)
	assert.Equal(t, "intake-test", cfg.Store.KeyPrefix)
	assert.Equal(t, "localhost:6379", cfg.Database.Redis.Address)
	assert.Equal(t, 2500*time.Millisecond, GetDuration(cfg.Notifications.Timeout))
	assert.Equal(t, []string{"ops@example.com", "review@example.com"}, cfg.Notifications.Email.To)
	assert.True(t, cfg.Notifications.AWSEnabled())
}

func TestLoadFromFile_EnvironmentOverrides(t *testing.T) {
	t.Setenv("ADMIN_TOKEN", "from-env")
	t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")
	t.Setenv("TELEGRAM_CHAT_ID", "-100200")
	t.Setenv("SERVER_MAX_BODY_BYTES", "2048")
	t.Setenv("PORT", "3001")

	path := writeConfig(t, "app:\n  name: grant-intake\n")

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.Admin.Token)
	assert.Equal(t, "123:abc", cfg.Notifications.Telegram.BotToken)
	assert.Equal(t, "-100200", cfg.Notifications.Telegram.ChatID)
	assert.True(t, cfg.Notifications.TelegramConfigured())
	assert.Equal(t, int64(2048), cfg.Server.MaxBodyBytes)
	assert.Equal(t, ":3001", cfg.Server.Address)
}

func TestLoadFromFile_ServerAddressBeatsPort(t *testing.T) {
	t.Setenv("PORT", "3001")
	t.Setenv("SERVER_ADDRESS", "127.0.0.1:4000")

	cfg, err := LoadFromFile(writeConfig(t, "app:\n  name: grant-intake\n"))
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:4000", cfg.Server.Address)
}

func TestLoadFromFile_ExpandsPlaceholders(t *testing.T) {
	t.Setenv("INTAKE_TEST_DB_HOST", "db.internal")

	path := writeConfig(t, `
store:
  backend: postgres
database:
  postgres:
    host: ${INTAKE_TEST_DB_HOST}
    database: grants
    user: intake
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "db.internal", cfg.Database.Postgres.Host)
	assert.Contains(t, cfg.Database.Postgres.GetDSN(), "host=db.internal")
	assert.Contains(t, cfg.Database.Postgres.GetDSN(), "sslmode=disable")
}

// ==========================
// Validation
// ==========================

func TestLoadFromFile_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{
			name:    "unknown backend",
			body:    "store:\n  backend: mongo\n",
			wantErr: "store.backend",
		},
		{
			name:    "redis without address",
			body:    "store:\n  backend: redis\n",
			wantErr: "database.redis.address",
		},
		{
			name:    "postgres without host",
			body:    "store:\n  backend: postgres\n",
			wantErr: "database.postgres.host",
		},
		{
			name:    "email without sender",
			body:    "notifications:\n  email:\n    enabled: true\n    to: [ops@example.com]\n",
			wantErr: "from_email",
		},
		{
			name:    "sms without numbers",
			body:    "notifications:\n  sms:\n    enabled: true\n",
			wantErr: "phone_numbers",
		},
		{
			name:    "non-positive body limit",
			body:    "server:\n  max_body_bytes: 0\n",
			wantErr: "max_body_bytes",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFromFile(writeConfig(t, tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadFromFile_MissingFile(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}
