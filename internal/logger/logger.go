// Package logger provides leveled logging for the game host and its subsystems.
package logger

import (
	"fmt"
	"io"
	"log"
	"os"
)

// Logger writes prefixed info, warning and error lines.
type Logger struct {
	infoLogger  *log.Logger
	warnLogger  *log.Logger
	errorLogger *log.Logger
}

// New creates a logger writing info/warn to stdout and errors to stderr.
func New(component string) *Logger {
	return NewWithWriters(component, os.Stdout, os.Stderr)
}

// NewWithWriters creates a logger with explicit destinations.
func NewWithWriters(component string, out, errOut io.Writer) *Logger {
	tag := ""
	if component != "" {
		tag = "[" + component + "] "
	}
	flags := log.Ldate | log.Ltime | log.Lmsgprefix
	return &Logger{
		infoLogger:  log.New(out, "INFO  "+tag, flags),
		warnLogger:  log.New(out, "WARN  "+tag, flags),
		errorLogger: log.New(errOut, "ERROR "+tag, flags),
	}
}

// Discard returns a logger that drops everything. Used by tests.
func Discard() *Logger {
	return NewWithWriters("", io.Discard, io.Discard)
}

// Info logs an informational message.
func (l *Logger) Info(format string, args ...any) {
	if l == nil {
		return
	}
	l.infoLogger.Printf(format, args...)
}

// Warn logs a recoverable problem.
func (l *Logger) Warn(format string, args ...any) {
	if l == nil {
		return
	}
	l.warnLogger.Printf(format, args...)
}

// Error logs a failure.
func (l *Logger) Error(format string, args ...any) {
	if l == nil {
		return
	}
	l.errorLogger.Printf(format, args...)
}

// Event logs a named game event with a short detail string.
func (l *Logger) Event(kind, journeyID, details string) {
	if l == nil {
		return
	}
	l.infoLogger.Print(fmt.Sprintf("[EVENT:%s] journey=%s | %s", kind, journeyID, details))
}
