package logger

import (
	"fmt"
	"os"

	"github.com/spf13/viper"
)

// Logger prints user-facing progress. Info, Success, Warning and Error
// always print; Step and Debug only print when debug mode is on.
type Logger struct {
	debug bool
}

// New creates a new logger instance
func New() *Logger {
	return &Logger{
		debug: viper.GetBool("debug"),
	}
}

// SetDebug sets the debug flag
func (l *Logger) SetDebug(debug bool) {
	l.debug = debug
}

// IsDebug returns whether debug logging is enabled
func (l *Logger) IsDebug() bool {
	return l.debug
}

// Info prints an info message
func (l *Logger) Info(format string, args ...interface{}) {
	fmt.Printf(format+"\n", args...)
}

// Success prints a success message
func (l *Logger) Success(format string, args ...interface{}) {
	fmt.Printf("✅ "+format+"\n", args...)
}

// Warning prints a warning message to the diagnostic stream
func (l *Logger) Warning(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "⚠️  Warning: "+format+"\n", args...)
}

// Error prints an error message to the diagnostic stream
func (l *Logger) Error(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "❌ "+format+"\n", args...)
}

// Debug prints a debug message (only in debug mode)
func (l *Logger) Debug(format string, args ...interface{}) {
	if l.debug {
		fmt.Printf(format+"\n", args...)
	}
}

// Step prints a protocol step header (only in debug mode)
func (l *Logger) Step(step int, total int, format string, args ...interface{}) {
	if l.debug {
		fmt.Printf("📋 [%d/%d] "+format+"\n", append([]interface{}{step, total}, args...)...)
	}
}

// Global logger instance
var globalLogger = New()

// GetLogger returns the global logger instance
func GetLogger() *Logger {
	return globalLogger
}

// UpdateDebug updates the global logger's debug setting from viper
func UpdateDebug() {
	globalLogger.debug = viper.GetBool("debug")
}

// Convenience functions for global logger
func Info(format string, args ...interface{}) {
	globalLogger.Info(format, args...)
}

func Success(format string, args ...interface{}) {
	globalLogger.Success(format, args...)
}

func Warning(format string, args ...interface{}) {
	globalLogger.Warning(format, args...)
}

func Error(format string, args ...interface{}) {
	globalLogger.Error(format, args...)
}

func Debug(format string, args ...interface{}) {
	globalLogger.Debug(format, args...)
}

func Step(step int, total int, format string, args ...interface{}) {
	globalLogger.Step(step, total, format, args...)
}

func IsDebug() bool {
	return globalLogger.IsDebug()
}
