package config_test

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/outcome-co/validates/pkg/config"
	"github.com/outcome-co/validates/pkg/gormstore"
	"github.com/outcome-co/validates/pkg/pg"
)

type fileConfig struct {
	Name   string   `env:"VALIDATES_TEST_NAME"`
	List   []string `env:"VALIDATES_TEST_LIST" envSeparator:","`
	Quoted string   `env:"VALIDATES_TEST_QUOTED"`
}

func TestLoad_Defaults(t *testing.T) {
	config.ResetCache()
	os.Unsetenv("VALIDATES_LOG_LEVEL")
	os.Unsetenv("VALIDATES_TIMEZONE")

	var s config.Settings
	require.NoError(t, config.Load(&s))

	assert.Equal(t, "info", s.LogLevel)
	assert.Equal(t, "json", s.LogFormat)
	assert.Equal(t, "UTC", s.Timezone)
	assert.Empty(t, s.MessagesFile)
	assert.False(t, s.StrictReferences)
}

func TestLoad_Cached(t *testing.T) {
	config.ResetCache()
	t.Setenv("VALIDATES_LOG_LEVEL", "debug")

	var first config.Settings
	require.NoError(t, config.Load(&first))

	t.Setenv("VALIDATES_LOG_LEVEL", "error")

	var second config.Settings
	require.NoError(t, config.Load(&second))
	assert.Equal(t, "debug", second.LogLevel, "second load is served from the cache")

	t.Run("reload replaces the cached value", func(t *testing.T) {
		var reloaded config.Settings
		require.NoError(t, config.Reload(&reloaded))
		assert.Equal(t, "error", reloaded.LogLevel)

		var cached config.Settings
		require.NoError(t, config.Load(&cached))
		assert.Equal(t, "error", cached.LogLevel)
	})
}

func TestLoad_PostgresConfig(t *testing.T) {
	config.ResetCache()
	os.Unsetenv("PG_CONN_URL")

	var cfg pg.Config
	err := config.Load(&cfg)
	require.Error(t, err)
	assert.ErrorIs(t, err, config.ErrParsingConfig)

	t.Run("a failed load can be retried", func(t *testing.T) {
		t.Setenv("PG_CONN_URL", "postgres://localhost:5432/validates")
		t.Setenv("PG_RETRY_INTERVAL", "2s")

		var cfg pg.Config
		require.NoError(t, config.Load(&cfg))
		assert.Equal(t, "postgres://localhost:5432/validates", cfg.ConnectionString)
		assert.Equal(t, "public", cfg.Schema)
		assert.Equal(t, int32(10), cfg.MaxOpenConns)
		assert.Equal(t, 2*time.Second, cfg.RetryInterval)
	})
}

func TestLoad_GormConfig(t *testing.T) {
	config.ResetCache()
	t.Setenv("GORM_LOG_LEVEL", "info")

	var cfg gormstore.Config
	require.NoError(t, config.Load(&cfg))
	assert.Equal(t, "info", cfg.LogLevel)
	assert.True(t, cfg.SingularTable)
	assert.Equal(t, 200*time.Millisecond, cfg.SlowThreshold)
	assert.Equal(t, 10, cfg.MaxOpenConns)
}

func TestLoad_NilPointer(t *testing.T) {
	var s *config.Settings
	assert.ErrorIs(t, config.Load(s), config.ErrNilPointer)
	assert.ErrorIs(t, config.Reload(s), config.ErrNilPointer)
}

func TestMustLoad(t *testing.T) {
	config.ResetCache()
	os.Unsetenv("PG_CONN_URL")

	assert.Panics(t, func() {
		var cfg pg.Config
		config.MustLoad(&cfg)
	})
	assert.NotPanics(t, func() {
		var s config.Settings
		config.MustLoad(&s)
	})
}

func TestLoadEnv(t *testing.T) {
	config.ResetCache()
	os.Unsetenv("VALIDATES_TEST_NAME")
	os.Unsetenv("VALIDATES_TEST_LIST")
	os.Unsetenv("VALIDATES_TEST_QUOTED")
	t.Cleanup(func() {
		os.Unsetenv("VALIDATES_TEST_NAME")
		os.Unsetenv("VALIDATES_TEST_LIST")
		os.Unsetenv("VALIDATES_TEST_QUOTED")
	})

	require.NoError(t, config.LoadEnv("testdata/.env.test"))

	var cfg fileConfig
	require.NoError(t, config.Load(&cfg))
	assert.Equal(t, "from_file", cfg.Name)
	assert.Equal(t, []string{"a", "b", "c"}, cfg.List)
	assert.Equal(t, "quoted value", cfg.Quoted)

	t.Run("missing files fail", func(t *testing.T) {
		err := config.LoadEnv("testdata/missing.env")
		assert.ErrorIs(t, err, config.ErrLoadingEnvFile)
	})
}
