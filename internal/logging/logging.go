// Package logging constructs the process-wide zap logger. Components take a
// *zap.Logger by construction and derive named sub-loggers; nothing logs
// through globals.
package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options selects encoder and level.
type Options struct {
	Level    string // debug, info, warn, error
	Format   string // console or json
	ToStderr bool
}

// New builds a logger. The LSP server must keep stdout clean for the
// protocol, so server mode always logs to stderr.
func New(opts Options) (*zap.Logger, error) {
	level := zapcore.InfoLevel
	if opts.Level != "" {
		if err := level.Set(opts.Level); err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", opts.Level, err)
		}
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(level)
	if opts.Format == "console" || opts.Format == "" {
		cfg.Encoding = "console"
		cfg.EncoderConfig = zap.NewDevelopmentEncoderConfig()
	}
	if opts.ToStderr {
		cfg.OutputPaths = []string{"stderr"}
		cfg.ErrorOutputPaths = []string{"stderr"}
	}
	cfg.DisableStacktrace = true
	return cfg.Build()
}
