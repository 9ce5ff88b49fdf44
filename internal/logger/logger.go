// internal/logger/logger.go
//
// Structured JSON logger (Zap + Lumberjack).
//
// Context
// -------
// The API writes lifecycle, request, and error events as JSON to stdout so
// container platforms can ship them.  When LOG_DIR is set the same events
// are teed into one file per day under `<LOG_DIR>/YYYY-MM-DD.log`, with
// rotation, compression, and retention handled by Lumberjack.
//
// Usage
// -----
//
//	log, err := logger.New(logger.Options{Level: cfg.LogLevel, Dir: cfg.LogDir})
//	if err != nil { … }
//	log.Info("database online", zap.String("driver", "postgres"))
//
// Notes
// -----
// • Zap core uses ISO-8601 timestamps and lowercase levels.
// • LOG_LEVEL accepts the names operators already use for the Python
//   services: DEBUG, INFO, WARNING, ERROR, CRITICAL.
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/natefinch/lumberjack"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options selects level, stdout encoding, and the optional file sink.
type Options struct {
	Level  string    // DEBUG, INFO, WARNING, ERROR, CRITICAL
	Format string    // "json" (default) or "console"
	Dir    string    // empty disables the rotating file
	Stdout io.Writer // defaults to os.Stdout; tests inject a buffer
}

// New returns a *zap.Logger and installs it as the process-wide default via
// zap.ReplaceGlobals so zap.L() works in packages that are not handed one.
func New(opts Options) (*zap.Logger, error) {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, err
	}

	out := opts.Stdout
	if out == nil {
		out = os.Stdout
	}

	encCfg := zapcore.EncoderConfig{
		TimeKey:        "ts",
		LevelKey:       "level",
		NameKey:        "logger",
		MessageKey:     "msg",
		CallerKey:      "caller",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeDuration: zapcore.MillisDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}

	var stdoutEnc zapcore.Encoder
	if strings.EqualFold(opts.Format, "console") {
		consoleCfg := encCfg
		consoleCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		stdoutEnc = zapcore.NewConsoleEncoder(consoleCfg)
	} else {
		stdoutEnc = zapcore.NewJSONEncoder(encCfg)
	}

	cores := []zapcore.Core{
		zapcore.NewCore(stdoutEnc, zapcore.AddSync(out), level),
	}

	errOut := zapcore.AddSync(os.Stderr)
	if opts.Dir != "" {
		if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
			return nil, fmt.Errorf("log dir: %w", err)
		}
		fileSink := &lumberjack.Logger{
			Filename:   filepath.Join(opts.Dir, time.Now().Format("2006-01-02")+".log"),
			MaxSize:    50, // MB
			MaxBackups: 7,  // keep last seven files
			MaxAge:     14, // days
			Compress:   true,
		}
		cores = append(cores, zapcore.NewCore(
			zapcore.NewJSONEncoder(encCfg),
			zapcore.AddSync(fileSink),
			level,
		))
		errOut = zapcore.AddSync(fileSink)
	}

	z := zap.New(
		zapcore.NewTee(cores...),
		zap.AddCaller(),
		zap.AddStacktrace(zapcore.ErrorLevel),
		zap.ErrorOutput(errOut),
	)

	zap.ReplaceGlobals(z)

	z.Debug("logger online", zap.String("level", level.String()), zap.Bool("file", opts.Dir != ""))
	return z, nil
}

// ParseLevel maps LOG_LEVEL names onto zap levels.
func ParseLevel(s string) (zapcore.Level, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return zapcore.DebugLevel, nil
	case "", "INFO":
		return zapcore.InfoLevel, nil
	case "WARNING", "WARN":
		return zapcore.WarnLevel, nil
	case "ERROR":
		return zapcore.ErrorLevel, nil
	case "CRITICAL", "FATAL":
		return zapcore.DPanicLevel, nil
	default:
		return zapcore.InfoLevel, fmt.Errorf("unknown log level %q", s)
	}
}
