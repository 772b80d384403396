package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"
)

var (
	instance *Logger
	once     sync.Once
)

// Logger writes printf-style lines to stderr and, when a log directory is
// configured, to a dated file. stdout is left alone because the stdio MCP
// transport owns it.
type Logger struct {
	infoLogger  *log.Logger
	errorLogger *log.Logger
	logFile     *os.File
	mu          sync.Mutex
}

// Init initializes the global logger instance. An empty logDir logs to
// stderr only.
func Init(logDir string) error {
	var initErr error
	once.Do(func() {
		instance, initErr = newLogger(logDir)
	})
	return initErr
}

func newLogger(logDir string) (*Logger, error) {
	var out io.Writer = os.Stderr
	var logFile *os.File

	if logDir != "" {
		f, err := openLogFile(logDir)
		if err != nil {
			return nil, err
		}
		logFile = f
		out = io.MultiWriter(os.Stderr, logFile)
	}

	return &Logger{
		infoLogger:  log.New(out, "", log.LstdFlags),
		errorLogger: log.New(out, "ERROR: ", log.LstdFlags),
		logFile:     logFile,
	}, nil
}

func openLogFile(logDir string) (*os.File, error) {
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	logFileName := fmt.Sprintf("beehive-mcp-%s.log", time.Now().Format("2006-01-02"))
	logFile, err := os.OpenFile(filepath.Join(logDir, logFileName), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return logFile, nil
}

// Close closes the log file
func Close() error {
	if instance != nil && instance.logFile != nil {
		return instance.logFile.Close()
	}
	return nil
}

// Info logs an informational message
func Info(format string, v ...interface{}) {
	if instance != nil {
		instance.mu.Lock()
		defer instance.mu.Unlock()
		instance.infoLogger.Printf(format, v...)
	}
}

// Error logs an error message
func Error(format string, v ...interface{}) {
	if instance != nil {
		instance.mu.Lock()
		defer instance.mu.Unlock()
		instance.errorLogger.Printf(format, v...)
	}
}

// Fatalf logs a formatted fatal error and exits
func Fatalf(format string, v ...interface{}) {
	if instance != nil {
		instance.mu.Lock()
		instance.errorLogger.Fatalf(format, v...)
		instance.mu.Unlock()
	} else {
		log.Fatalf(format, v...)
	}
}
