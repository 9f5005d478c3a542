package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"
	"time"
)

// LogLevel represents the logging level
type LogLevel int

const (
	DebugLevel LogLevel = iota
	InfoLevel
	WarnLevel
	ErrorLevel
)

// String returns the string representation of the log level
func (l LogLevel) String() string {
	switch l {
	case DebugLevel:
		return "DEBUG"
	case InfoLevel:
		return "INFO"
	case WarnLevel:
		return "WARN"
	case ErrorLevel:
		return "ERROR"
	default:
		return "INFO"
	}
}

// ParseLogLevel parses a string into a LogLevel
func ParseLogLevel(level string) LogLevel {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "DEBUG":
		return DebugLevel
	case "INFO":
		return InfoLevel
	case "WARN", "WARNING":
		return WarnLevel
	case "ERROR":
		return ErrorLevel
	default:
		return InfoLevel
	}
}

type Logger struct {
	mu     sync.RWMutex
	out    *log.Logger // debug, info and warn
	errOut *log.Logger
	level  LogLevel
	now    func() time.Time
}

var defaultLogger = New(os.Stdout, os.Stderr, ParseLogLevel(os.Getenv("LOG_LEVEL")))

// New creates a logger writing errors to errOut and everything else to out.
func New(out, errOut io.Writer, level LogLevel) *Logger {
	return &Logger{
		out:    log.New(out, "", 0),
		errOut: log.New(errOut, "", 0),
		level:  level,
		now:    time.Now,
	}
}

// Default returns the package-level logger.
func Default() *Logger {
	return defaultLogger
}

// SetLevel changes the minimum level that is written.
func (l *Logger) SetLevel(level LogLevel) {
	l.mu.Lock()
	l.level = level
	l.mu.Unlock()
}

// Level returns the current minimum level.
func (l *Logger) Level() LogLevel {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.level
}

// SetLogLevel sets the log level for the default logger
func SetLogLevel(level LogLevel) {
	defaultLogger.SetLevel(level)
	defaultLogger.Debug("Log level changed to: %s", level.String())
}

// SetLogLevelFromString sets the log level from a string (convenience function)
func SetLogLevelFromString(level string) {
	SetLogLevel(ParseLogLevel(level))
}

// GetLogLevel returns the current log level
func GetLogLevel() LogLevel {
	return defaultLogger.Level()
}

// formatMessage adds UTC timestamp prefix to the message
func (l *Logger) formatMessage(level LogLevel, message string) string {
	timestamp := l.now().UTC().Format("2006-01-02T15:04:05.000Z")
	return fmt.Sprintf("[%s] %s: %s", timestamp, level, message)
}

func (l *Logger) logf(level LogLevel, format string, args ...any) {
	if level < l.Level() {
		return
	}
	target := l.out
	if level == ErrorLevel {
		target = l.errOut
	}
	target.Println(l.formatMessage(level, fmt.Sprintf(format, args...)))
}

// Info logs an info message
func (l *Logger) Info(format string, args ...any) { l.logf(InfoLevel, format, args...) }

// Error logs an error message
func (l *Logger) Error(format string, args ...any) { l.logf(ErrorLevel, format, args...) }

// Debug logs a debug message
func (l *Logger) Debug(format string, args ...any) { l.logf(DebugLevel, format, args...) }

// Warn logs a warning message
func (l *Logger) Warn(format string, args ...any) { l.logf(WarnLevel, format, args...) }

// Package-level convenience functions using the default logger

func Info(format string, args ...any)  { defaultLogger.Info(format, args...) }
func Error(format string, args ...any) { defaultLogger.Error(format, args...) }
func Debug(format string, args ...any) { defaultLogger.Debug(format, args...) }
func Warn(format string, args ...any)  { defaultLogger.Warn(format, args...) }
