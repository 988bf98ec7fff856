package logutil

import (
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	logFileName = "bot_activity.log"
	maxSizeMB   = 10
	maxArchives = 3
	maxFieldLen = 120
)

type Options struct {
	Level             string
	EnableFileLogging bool
	// Dir defaults to the executable directory.
	Dir string
}

// Setup builds the process logger: a console core at the configured level
// and, when enabled, a rotating JSON file core (10MB, max 3 archives) that
// always records debug output.
func Setup(opts Options) *zap.Logger {
	level, err := zapcore.ParseLevel(strings.TrimSpace(opts.Level))
	if err != nil {
		level = zapcore.InfoLevel
	}

	consoleCfg := zap.NewDevelopmentEncoderConfig()
	consoleCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	consoleCfg.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewConsoleEncoder(consoleCfg), zapcore.Lock(os.Stderr), level),
	}

	if opts.EnableFileLogging {
		dir := opts.Dir
		if dir == "" {
			dir = executableDir()
		}
		rotator := &lumberjack.Logger{
			Filename:   filepath.Join(dir, logFileName),
			MaxSize:    maxSizeMB,
			MaxBackups: maxArchives,
			LocalTime:  true,
		}
		fileCfg := zap.NewProductionEncoderConfig()
		fileCfg.EncodeTime = zapcore.ISO8601TimeEncoder
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(fileCfg), zapcore.AddSync(rotator), zapcore.DebugLevel))
	}

	return zap.New(zapcore.NewTee(cores...), zap.AddCaller()).Named("csd2")
}

// Nop returns a logger that discards everything.
func Nop() *zap.Logger { return zap.NewNop() }

// Sanitize makes OCR text safe for a single log line: control characters
// are dropped and long values are cut.
func Sanitize(s string) string {
	s = strings.Map(func(r rune) rune {
		if r == '\n' || r == '\r' || r == '\t' {
			return ' '
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
	if r := []rune(s); len(r) > maxFieldLen {
		return string(r[:maxFieldLen]) + "..."
	}
	return s
}

// Steps sanitizes every entry of a step or label list.
func Steps(items []string) []string {
	out := make([]string, len(items))
	for i, s := range items {
		out[i] = Sanitize(s)
	}
	return out
}

func executableDir() string {
	execPath, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(execPath)
}
