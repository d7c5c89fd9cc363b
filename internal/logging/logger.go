// Package logging provides categorized file-based logging for
// MediChain. Logs are written under <dir>/logs with one file per
// category and are disabled entirely unless debug mode is on, so the
// hot path pays nothing in production.
package logging

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
)

// Category represents a log category/system.
type Category string

const (
	CategoryBoot     Category = "boot"     // Startup and seeding
	CategoryAuth     Category = "auth"     // Signup, login, token checks
	CategoryStore    Category = "store"    // User and report persistence
	CategoryTriage   Category = "triage"   // Emergency classification
	CategoryAnalysis Category = "analysis" // LLM requests and validation
	CategoryIntake   Category = "intake"   // Pipeline state transitions
	CategoryHTTP     Category = "http"     // HTTP surface
)

// Log levels.
const (
	LevelDebug = 0
	LevelInfo  = 1
	LevelWarn  = 2
	LevelError = 3
)

// Logger wraps a standard logger bound to one category file.
type Logger struct {
	category Category
	logger   *log.Logger
	file     *os.File
}

var (
	loggers   = make(map[Category]*Logger)
	loggersMu sync.RWMutex
	logsDir   string
	enabled   bool
	logLevel  = LevelInfo
)

// Initialize sets up the logging directory. When debug is false the
// package stays inert and every call below is a no-op.
func Initialize(dir string, debug bool) error {
	loggersMu.Lock()
	defer loggersMu.Unlock()

	enabled = debug
	if !debug {
		return nil
	}
	if dir == "" {
		return fmt.Errorf("logging directory required")
	}
	logsDir = filepath.Join(dir, "logs")
	if err := os.MkdirAll(logsDir, 0o755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}
	logLevel = LevelDebug
	return nil
}

// Enabled reports whether debug logging is active.
func Enabled() bool {
	loggersMu.RLock()
	defer loggersMu.RUnlock()
	return enabled
}

// Get returns the logger for a category, creating it on first use.
func Get(cat Category) *Logger {
	loggersMu.RLock()
	if l, ok := loggers[cat]; ok {
		loggersMu.RUnlock()
		return l
	}
	loggersMu.RUnlock()

	loggersMu.Lock()
	defer loggersMu.Unlock()
	if l, ok := loggers[cat]; ok {
		return l
	}

	l := &Logger{category: cat}
	if enabled && logsDir != "" {
		path := filepath.Join(logsDir, string(cat)+".log")
		f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err == nil {
			l.file = f
			l.logger = log.New(f, "", log.LstdFlags|log.Lmicroseconds)
		}
	}
	loggers[cat] = l
	return l
}

// Close flushes and closes all category files. Safe to call twice.
func Close() {
	loggersMu.Lock()
	defer loggersMu.Unlock()
	for _, l := range loggers {
		if l.file != nil {
			l.file.Close()
			l.file = nil
			l.logger = nil
		}
	}
	loggers = make(map[Category]*Logger)
}

func (l *Logger) write(level int, prefix, format string, args ...interface{}) {
	if l == nil || l.logger == nil || level < logLevel {
		return
	}
	l.logger.Printf(prefix+format, args...)
}

// Debug logs at debug level.
func (l *Logger) Debug(format string, args ...interface{}) {
	l.write(LevelDebug, "[DEBUG] ", format, args...)
}

// Info logs at info level.
func (l *Logger) Info(format string, args ...interface{}) {
	l.write(LevelInfo, "[INFO] ", format, args...)
}

// Warn logs at warn level.
func (l *Logger) Warn(format string, args ...interface{}) {
	l.write(LevelWarn, "[WARN] ", format, args...)
}

// Error logs at error level.
func (l *Logger) Error(format string, args ...interface{}) {
	l.write(LevelError, "[ERROR] ", format, args...)
}

// Per-category helpers, matching call sites throughout the codebase.

func Boot(format string, args ...interface{})     { Get(CategoryBoot).Info(format, args...) }
func Auth(format string, args ...interface{})     { Get(CategoryAuth).Info(format, args...) }
func Store(format string, args ...interface{})    { Get(CategoryStore).Info(format, args...) }
func Triage(format string, args ...interface{})   { Get(CategoryTriage).Info(format, args...) }
func Analysis(format string, args ...interface{}) { Get(CategoryAnalysis).Info(format, args...) }
func Intake(format string, args ...interface{})   { Get(CategoryIntake).Info(format, args...) }
func HTTP(format string, args ...interface{})     { Get(CategoryHTTP).Info(format, args...) }

func AuthDebug(format string, args ...interface{})     { Get(CategoryAuth).Debug(format, args...) }
func StoreDebug(format string, args ...interface{})    { Get(CategoryStore).Debug(format, args...) }
func AnalysisDebug(format string, args ...interface{}) { Get(CategoryAnalysis).Debug(format, args...) }
func IntakeDebug(format string, args ...interface{})   { Get(CategoryIntake).Debug(format, args...) }
