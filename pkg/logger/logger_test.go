package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestDefaultsAreUsableBeforeInit(t *testing.T) {
	assert.NotPanics(t, func() {
		ErrorLogger.Error("nothing happens")
		SyncLoggers()
	})
}

func TestInitLoggersWritesCategoryFiles(t *testing.T) {
	prev := []*zap.Logger{ErrorLogger, AuditLogger, RequestLogger, SecurityLogger, SystemLogger}
	t.Cleanup(func() {
		ErrorLogger, AuditLogger, RequestLogger, SecurityLogger, SystemLogger = prev[0], prev[1], prev[2], prev[3], prev[4]
	})

	dir := filepath.Join(t.TempDir(), "logs")
	require.NoError(t, InitLoggers(dir, false))

	AuditLogger.Info("task created", zap.Int64("task_id", 7))
	SecurityLogger.Info("below warn level, dropped")
	SyncLoggers()

	audit, err := os.ReadFile(filepath.Join(dir, "audit.log"))
	require.NoError(t, err)
	assert.Contains(t, string(audit), `"task_id":7`)
	assert.Contains(t, string(audit), `"timestamp"`)

	security, err := os.ReadFile(filepath.Join(dir, "security.log"))
	require.NoError(t, err)
	assert.Empty(t, security)

	for _, name := range []string{"errors.log", "request.log", "system.log"} {
		_, err := os.Stat(filepath.Join(dir, name))
		assert.NoError(t, err, name)
	}
}
