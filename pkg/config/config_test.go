package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("STORE_MODE", "memory")
	t.Setenv("JWT_SECRET", "secret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "jwt", cfg.AuthMode)
	assert.Equal(t, "log", cfg.PushMode)
	assert.Equal(t, "memory", cfg.QueueMode)
	assert.Equal(t, 4, cfg.PushWorkers)
	assert.False(t, cfg.UsesFirebase())
}

func TestLoad_FileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cinetrack.yaml")
	yaml := `
port: "9000"
store_mode: postgres
postgres_url: postgres://file/db
jwt_secret: from-file
push_workers: 8
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))

	t.Setenv("CONFIG_FILE", path)
	t.Setenv("PORT", "9100")
	t.Setenv("STORE_MODE", "")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("PUSH_WORKERS", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9100", cfg.Port, "env wins over file")
	assert.Equal(t, "postgres://file/db", cfg.PostgresURL)
	assert.Equal(t, "from-file", cfg.JWTSecret)
	assert.Equal(t, 8, cfg.PushWorkers)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"postgres without url", map[string]string{"STORE_MODE": "postgres", "POSTGRES_URL": "", "JWT_SECRET": "s"}},
		{"jwt without secret", map[string]string{"STORE_MODE": "memory", "JWT_SECRET": ""}},
		{"fcm without credentials", map[string]string{"STORE_MODE": "memory", "JWT_SECRET": "s", "PUSH_MODE": "fcm", "FIREBASE_CREDENTIALS_PATH": ""}},
		{"pubsub without project", map[string]string{"STORE_MODE": "memory", "JWT_SECRET": "s", "QUEUE_MODE": "pubsub", "GCP_PROJECT_ID": ""}},
		{"unknown auth", map[string]string{"STORE_MODE": "memory", "AUTH_MODE": "basic"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("CONFIG_FILE", "")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "nope.yaml"))
	_, err := Load()
	assert.ErrorContains(t, err, "failed to read config file")
}

func TestGetEnvInt(t *testing.T) {
	t.Setenv("N", "12")
	assert.Equal(t, 12, getEnvInt("N", 1))
	t.Setenv("N", "twelve")
	assert.Equal(t, 1, getEnvInt("N", 1))
	t.Setenv("N", "")
	assert.Equal(t, 1, getEnvInt("N", 1))
}
