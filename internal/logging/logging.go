// =============================================================================
// Project Data Cleaner - Logging
// =============================================================================
//
// Builds the zap logger shared by every component.
//
// OUTPUTS:
//   - Console (stderr) at the configured level.
//   - cleaning_warnings.log in the logs directory, warn and above only. Every
//     Failed and Corrected outcome is logged at warn, so this file is the
//     review list of a run.
//
// =============================================================================

package logging

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// WarningsLogName is the file written in the logs directory.
const WarningsLogName = "cleaning_warnings.log"

// Options configures New.
type Options struct {
	// Level is the console level: debug, info, warn or error.
	Level string

	// LogsDir receives the warnings log. Empty disables it.
	LogsDir string
}

// New builds the application logger. The returned close function syncs the
// logger and closes the warnings file.
func New(opts Options) (*zap.Logger, func(), error) {
	level := zapcore.InfoLevel
	if opts.Level != "" {
		parsed, err := zapcore.ParseLevel(opts.Level)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid log level %q: %w", opts.Level, err)
		}
		level = parsed
	}

	consoleCfg := zap.NewDevelopmentEncoderConfig()
	consoleCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewConsoleEncoder(consoleCfg), zapcore.Lock(os.Stderr), level),
	}

	var file *os.File
	if opts.LogsDir != "" {
		if err := os.MkdirAll(opts.LogsDir, 0o755); err != nil {
			return nil, nil, fmt.Errorf("failed to create logs directory: %w", err)
		}
		var err error
		file, err = os.OpenFile(filepath.Join(opts.LogsDir, WarningsLogName), os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open warnings log: %w", err)
		}

		fileCfg := zap.NewProductionEncoderConfig()
		fileCfg.EncodeTime = zapcore.ISO8601TimeEncoder
		fileCfg.EncodeLevel = zapcore.CapitalLevelEncoder
		cores = append(cores, zapcore.NewCore(zapcore.NewConsoleEncoder(fileCfg), zapcore.AddSync(file), zapcore.WarnLevel))
	}

	logger := zap.New(zapcore.NewTee(cores...))
	closeFn := func() {
		_ = logger.Sync()
		if file != nil {
			_ = file.Close()
		}
	}
	return logger, closeFn, nil
}
