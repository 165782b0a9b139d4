package logger

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger per kategori. Default-nya no-op supaya package lain dan test
// tidak pernah memegang logger nil sebelum InitLoggers dipanggil.
var (
	ErrorLogger    = zap.NewNop()
	AuditLogger    = zap.NewNop()
	RequestLogger  = zap.NewNop()
	SecurityLogger = zap.NewNop()
	SystemLogger   = zap.NewNop()
)

func newLogger(filePath string, level zapcore.Level, console bool) (*zap.Logger, error) {
	file, err := os.OpenFile(filePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, err
	}
	ws := zapcore.AddSync(file)
	if console {
		ws = zapcore.NewMultiWriteSyncer(ws, zapcore.Lock(os.Stdout))
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "timestamp"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderCfg),
		ws,
		level,
	)
	return zap.New(core), nil
}

// InitLoggers opens one JSON log file per category under dir.
// With console set, the system and error streams are mirrored to stdout.
func InitLoggers(dir string, console bool) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create log dir: %w", err)
	}

	specs := []struct {
		target  **zap.Logger
		file    string
		level   zapcore.Level
		console bool
	}{
		{&ErrorLogger, "errors.log", zapcore.ErrorLevel, console},
		{&AuditLogger, "audit.log", zapcore.InfoLevel, false},
		{&RequestLogger, "request.log", zapcore.InfoLevel, false},
		{&SecurityLogger, "security.log", zapcore.WarnLevel, false},
		{&SystemLogger, "system.log", zapcore.InfoLevel, console},
	}
	for _, s := range specs {
		l, err := newLogger(filepath.Join(dir, s.file), s.level, s.console)
		if err != nil {
			return fmt.Errorf("create %s logger: %w", s.file, err)
		}
		*s.target = l
	}
	return nil
}

func SyncLoggers() {
	_ = ErrorLogger.Sync()
	_ = AuditLogger.Sync()
	_ = RequestLogger.Sync()
	_ = SecurityLogger.Sync()
	_ = SystemLogger.Sync()
}
