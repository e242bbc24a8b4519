package cli

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"gastos/internal/config"
	"gastos/internal/log"
)

func captureExit(t *testing.T) *int {
	t.Helper()
	code := -1
	prev := exit
	exit = func(c int) { code = c }
	t.Cleanup(func() { exit = prev })
	return &code
}

func quietLogger() *log.Logger {
	return log.New(log.Config{Output: io.Discard})
}

func TestLoadAndValidateConfig_ExitsOnInvalidConfig(t *testing.T) {
	code := captureExit(t)
	t.Setenv("PORT", "not-a-port")

	cfg := LoadAndValidateConfig(quietLogger())

	require.Nil(t, cfg)
	require.Equal(t, ExitConfig, *code)
}

func TestLoadAndValidateConfig_RunsExtraChecks(t *testing.T) {
	code := captureExit(t)
	t.Setenv("PORT", "8080")
	t.Setenv("DATA_BACKEND", "sqlite")
	t.Setenv("AMQP_URL", "")

	cfg := LoadAndValidateConfig(quietLogger(), (*config.Config).ValidateSync)

	require.Nil(t, cfg)
	require.Equal(t, ExitConfig, *code)
}

func TestInitBackend_StoreUnavailableExitCode(t *testing.T) {
	code := captureExit(t)

	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	cfg := &config.Config{
		DataBackend:  config.BackendSQLite,
		SQLiteDBPath: filepath.Join(blocker, "sub", "gastos.db"),
	}

	result := InitBackend(context.Background(), quietLogger(), cfg)

	require.Nil(t, result)
	require.Equal(t, ExitStoreUnavailable, *code)
}

func TestInitBackend_MemoryStore(t *testing.T) {
	code := captureExit(t)

	cfg := &config.Config{
		DataBackend:        config.BackendMemory,
		MemorySnapshotPath: filepath.Join(t.TempDir(), "gastos.json"),
	}

	result := InitBackend(context.Background(), quietLogger(), cfg)
	require.NotNil(t, result)
	t.Cleanup(func() { _ = result.Cleanup() })

	require.Equal(t, -1, *code)
	require.Nil(t, result.Events)
	require.NoError(t, result.Store.Ping(context.Background()))
}

func TestSetupLogger_UnknownLevelFallsBackToInfo(t *testing.T) {
	logger := SetupLogger("verbose")
	require.NotNil(t, logger)
	require.False(t, logger.Enabled(context.Background(), slog.LevelDebug))
}
