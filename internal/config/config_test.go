package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campuslink/engage-core/internal/config"
)

func TestDatabaseConfig_DSN(t *testing.T) {
	tests := []struct {
		name     string
		config   config.DatabaseConfig
		expected string
	}{
		{
			name: "full config",
			config: config.DatabaseConfig{
				Host:     "localhost",
				Port:     5432,
				User:     "engage",
				Password: "secret",
				DBName:   "engage_core",
				SSLMode:  "disable",
			},
			expected: "host=localhost port=5432 user=engage password=secret dbname=engage_core sslmode=disable",
		},
		{
			name: "ssl required",
			config: config.DatabaseConfig{
				Host:     "db.internal",
				Port:     5433,
				User:     "svc",
				Password: "pw",
				DBName:   "engage",
				SSLMode:  "require",
			},
			expected: "host=db.internal port=5433 user=svc password=pw dbname=engage sslmode=require",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.config.DSN())
		})
	}
}

func TestLoadAPIConfig_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := config.LoadAPIConfig("", "")
	require.NoError(t, err)

	assert.False(t, cfg.Debug)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "disable", cfg.Database.SSLMode)
	assert.Equal(t, "ENGAGE_EVENTS", cfg.NATS.StreamName)
	assert.Equal(t, 2*time.Second, cfg.NATS.ReconnectWait)
	assert.Equal(t, 1000, cfg.Engine.FeeBasisPoints)
	assert.Equal(t, int64(5), cfg.Engine.DailyLoginXP)
	assert.Equal(t, int64(2), cfg.Engine.LikeRewardXP)
	assert.Equal(t, int64(10), cfg.Engine.PostRewardCoin)
	assert.False(t, cfg.Engine.ClaimedCancelNeedsConsent)
	assert.Equal(t, 10*time.Minute, cfg.Engine.UnfundedOrderGrace)
}

func TestLoadAPIConfig_EnvOverrides(t *testing.T) {
	t.Chdir(t.TempDir())

	t.Setenv("ENGAGE_DEBUG", "true")
	t.Setenv("ENGAGE_SERVER_PORT", "9090")
	t.Setenv("ENGAGE_DATABASE_HOST", "db.example.com")
	t.Setenv("ENGAGE_DATABASE_DBNAME", "engage_test")
	t.Setenv("ENGAGE_NATS_URL", "nats://localhost:4222")
	t.Setenv("ENGAGE_ENGINE_FEE_BASIS_POINTS", "500")
	t.Setenv("ENGAGE_ENGINE_CLAIMED_CANCEL_NEEDS_CONSENT", "true")

	cfg, err := config.LoadAPIConfig("", "")
	require.NoError(t, err)

	assert.True(t, cfg.Debug)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "db.example.com", cfg.Database.Host)
	assert.Equal(t, "engage_test", cfg.Database.DBName)
	assert.Equal(t, "nats://localhost:4222", cfg.NATS.URL)
	assert.Equal(t, 500, cfg.Engine.FeeBasisPoints)
	assert.True(t, cfg.Engine.ClaimedCancelNeedsConsent)
}

func TestLoadAPIConfig_FromFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	configYAML := `
debug: true
server:
  port: 7070
database:
  host: filehost
  dbname: filedb
engine:
  fee_basis_points: 250
`
	configPath := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte(configYAML), 0o600))

	cfg, err := config.LoadAPIConfig(configPath, "")
	require.NoError(t, err)

	assert.True(t, cfg.Debug)
	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, "filehost", cfg.Database.Host)
	assert.Equal(t, 250, cfg.Engine.FeeBasisPoints)
	// Unset keys keep their defaults
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
}

func TestLoadReconcilerConfig_RequiresDatabase(t *testing.T) {
	t.Chdir(t.TempDir())

	_, err := config.LoadReconcilerConfig("", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database.host")

	t.Setenv("ENGAGE_DATABASE_HOST", "localhost")
	_, err = config.LoadReconcilerConfig("", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database.dbname")
}

func TestLoadReconcilerConfig_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	t.Setenv("ENGAGE_DATABASE_HOST", "localhost")
	t.Setenv("ENGAGE_DATABASE_DBNAME", "engage_core")

	cfg, err := config.LoadReconcilerConfig("", "")
	require.NoError(t, err)

	assert.Equal(t, 10*time.Minute, cfg.Sweep.Interval)
	assert.Equal(t, 20, cfg.Sweep.Worker.WorkerPoolSize)
	assert.Equal(t, 1024, cfg.Sweep.Worker.WorkerQueueSize)
	assert.Equal(t, 5, cfg.Database.MaxOpenConns)
	assert.Equal(t, time.Hour, cfg.Database.ConnMaxLifetime)
}

func TestLoadMessengerConfig_RequiresNATS(t *testing.T) {
	t.Chdir(t.TempDir())

	t.Setenv("ENGAGE_DATABASE_HOST", "localhost")
	t.Setenv("ENGAGE_DATABASE_DBNAME", "engage_core")

	_, err := config.LoadMessengerConfig("", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nats.url")
}

func TestLoadMessengerConfig_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	t.Setenv("ENGAGE_DATABASE_HOST", "localhost")
	t.Setenv("ENGAGE_DATABASE_DBNAME", "engage_core")
	t.Setenv("ENGAGE_NATS_URL", "nats://localhost:4222")

	cfg, err := config.LoadMessengerConfig("", "")
	require.NoError(t, err)

	assert.Equal(t, "ENGAGE_EVENTS", cfg.NATS.StreamName)
	assert.Equal(t, "engage-messenger", cfg.NATS.ConsumerName)
	assert.Equal(t, "engage-messenger", cfg.NATS.ConnectionName)
	assert.Equal(t, 30*time.Second, cfg.NATS.AckWait)
	assert.Equal(t, 5, cfg.NATS.MaxDeliver)
	assert.Equal(t, 5, cfg.Database.MaxOpenConns)
}

func TestLoadEnvFiles_LaterFilesOverride(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	envDir := filepath.Join(dir, "config")
	require.NoError(t, os.Mkdir(envDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(envDir, ".env"),
		[]byte("ENGAGE_DATABASE_HOST=base\nENGAGE_DATABASE_DBNAME=engage\n"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(envDir, ".env.local"),
		[]byte("ENGAGE_DATABASE_HOST=local\n"), 0o600))

	// godotenv writes the process environment; restore it after the test
	t.Setenv("ENGAGE_DATABASE_HOST", "")
	t.Setenv("ENGAGE_DATABASE_DBNAME", "")

	cfg, err := config.LoadReconcilerConfig("", envDir)
	require.NoError(t, err)
	assert.Equal(t, "local", cfg.Database.Host)
	assert.Equal(t, "engage", cfg.Database.DBName)
}
