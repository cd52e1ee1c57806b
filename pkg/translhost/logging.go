package translhost

import (
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LoggingState tracks the one-shot configuration of the process log sink.
type LoggingState int

const (
	// LoggingUnconfigured means only the default console (stderr) sink is
	// attached.
	LoggingUnconfigured LoggingState = iota
	// LoggingFileConfigured means the requested log file sink is attached.
	LoggingFileConfigured
	// LoggingFallbackConfigured means the sink lives in the system temp
	// directory because no usable path was provided.
	LoggingFallbackConfigured
)

// Logger is the interface components log through. It can be overridden by
// client code; LogService is the default implementation.
type Logger interface {
	Errorf(format string, v ...any)
	Warnf(format string, v ...any)
	Infof(format string, v ...any)
	Debugf(format string, v ...any)
}

// LogService owns the process-wide logging configuration. It starts with a
// console core on stderr (stdout is the wire and must stay clean) and
// transitions at most once, on Configure, to a file sink. It is passed by
// reference into the dispatcher and translation client rather than living
// as ambient global state.
type LogService struct {
	mu    sync.Mutex
	state LoggingState
	level zap.AtomicLevel
	log   *zap.SugaredLogger
}

// NewLogService creates a service logging to stderr at the given level.
func NewLogService(level zapcore.Level) *LogService {
	atomic := zap.NewAtomicLevelAt(level)
	core := zapcore.NewCore(logEncoder(), zapcore.Lock(os.Stderr), atomic)
	return &LogService{
		state: LoggingUnconfigured,
		level: atomic,
		log:   zap.New(core).Sugar(),
	}
}

func logEncoder() zapcore.Encoder {
	cfg := zap.NewDevelopmentEncoderConfig()
	cfg.EncodeLevel = zapcore.CapitalLevelEncoder
	return zapcore.NewConsoleEncoder(cfg)
}

// ParseLogLevel maps a level name to a zap level. Unknown names report
// ok=false and yield the info level.
func ParseLogLevel(name string) (zapcore.Level, bool) {
	switch strings.ToLower(name) {
	case "debug":
		return zapcore.DebugLevel, true
	case "", "info":
		return zapcore.InfoLevel, true
	case "warn", "warning":
		return zapcore.WarnLevel, true
	case "error":
		return zapcore.ErrorLevel, true
	default:
		return zapcore.InfoLevel, false
	}
}

// SetLevel adjusts the level of whichever sink is currently attached.
func (s *LogService) SetLevel(level zapcore.Level) {
	s.level.SetLevel(level)
}

// State reports the current sink configuration.
func (s *LogService) State() LoggingState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Configure attaches the process log file sink, at most once per process
// lifetime. With a non-empty path the file is opened in append mode after
// expanding a leading "~" and creating missing parent directories. With no
// path, or when the file sink cannot be attached, a fallback sink inside the
// system temp directory is used and its entries are tagged accordingly. If
// even the fallback fails, logging stays on the console sink; Configure
// never fails the process. Returns true when this call performed the
// transition; any later call is a no-op returning false.
func (s *LogService) Configure(path string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != LoggingUnconfigured {
		return false
	}

	if path != "" {
		resolved := expandHome(path)
		err := s.attachFile(resolved, LoggingFileConfigured, false)
		if err == nil {
			return true
		}
		s.log.Warnf("logging: cannot attach sink at %s: %v, using fallback", resolved, err)
	}

	fallback := filepath.Join(os.TempDir(), FallbackLogFileName)
	if err := s.attachFile(fallback, LoggingFallbackConfigured, true); err != nil {
		s.log.Errorf("logging: cannot attach fallback sink at %s: %v, keeping console sink", fallback, err)
		return false
	}
	return true
}

// attachFile swaps the active core for a file core. Caller holds s.mu.
func (s *LogService) attachFile(path string, state LoggingState, fallback bool) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}

	core := zapcore.NewCore(logEncoder(), zapcore.Lock(f), s.level)
	logger := zap.New(core)
	if fallback {
		logger = logger.With(zap.String("sink", "fallback"))
	}
	s.log = logger.Sugar()
	s.state = state
	s.log.Infof("log sink attached at %s", path)
	return nil
}

// expandHome resolves a leading "~" against the current user's home
// directory, leaving the path untouched when the home directory is unknown.
func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	return path
}

func (s *LogService) current() *zap.SugaredLogger {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.log
}

func (s *LogService) Errorf(format string, v ...any) { s.current().Errorf(format, v...) }
func (s *LogService) Warnf(format string, v ...any)  { s.current().Warnf(format, v...) }
func (s *LogService) Infof(format string, v ...any)  { s.current().Infof(format, v...) }
func (s *LogService) Debugf(format string, v ...any) { s.current().Debugf(format, v...) }
