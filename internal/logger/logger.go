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

// Level lists supported log severities.
type Level int

const (
	DEBUG Level = iota
	INFO
	WARN
	ERROR
)

var levelNames = map[Level]string{
	DEBUG: "DEBUG",
	INFO:  "INFO",
	WARN:  "WARN",
	ERROR: "ERROR",
}

// ParseLevel converts a flag value such as "debug" into a Level.
func ParseLevel(s string) (Level, error) {
	switch s {
	case "debug":
		return DEBUG, nil
	case "info":
		return INFO, nil
	case "warn":
		return WARN, nil
	case "error":
		return ERROR, nil
	default:
		return 0, fmt.Errorf("unrecognized log level %q", s)
	}
}

// Logger writes to an optional file plus the console.
type Logger struct {
	mu          sync.Mutex
	fileLogger  *log.Logger // nil when no log directory was configured
	consoleLog  *log.Logger
	level       Level
	logFile     *os.File
	logFilePath string
}

var (
	defaultLogger *Logger
	once          sync.Once
)

// Init creates the global logger. logDir may be empty, in which case
// messages go to the console only. prefix names the log file, e.g.
// "redisd".
func Init(logDir string, level Level, prefix string) error {
	var initErr error
	once.Do(func() {
		l := &Logger{
			consoleLog: log.New(os.Stdout, "", 0),
			level:      level,
		}

		if logDir != "" {
			if err := os.MkdirAll(logDir, 0755); err != nil {
				initErr = fmt.Errorf("create log directory: %w", err)
				return
			}
			if prefix == "" {
				prefix = "redisd"
			}
			path := filepath.Join(logDir, prefix+".log")
			f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
			if err != nil {
				initErr = fmt.Errorf("open log file: %w", err)
				return
			}
			l.fileLogger = log.New(f, "", 0)
			l.logFile = f
			l.logFilePath = path
		}

		defaultLogger = l
	})
	return initErr
}

// Close releases the underlying log file, if one is open.
func Close() error {
	if defaultLogger != nil && defaultLogger.logFile != nil {
		return defaultLogger.logFile.Close()
	}
	return nil
}

// GetLogFilePath returns the backing log file path, or "" for console-only
// logging.
func GetLogFilePath() string {
	if defaultLogger != nil {
		return defaultLogger.logFilePath
	}
	return ""
}

func formatMessage(level Level, format string, args ...interface{}) string {
	timestamp := time.Now().Format("2006/01/02 15:04:05")
	return fmt.Sprintf("%s [%s] %s", timestamp, levelNames[level], fmt.Sprintf(format, args...))
}

func logToFile(level Level, format string, args ...interface{}) {
	if defaultLogger == nil || defaultLogger.fileLogger == nil {
		return
	}
	if level < defaultLogger.level {
		return
	}
	defaultLogger.mu.Lock()
	defer defaultLogger.mu.Unlock()
	defaultLogger.fileLogger.Println(formatMessage(level, format, args...))
}

func logToConsole(level Level, format string, args ...interface{}) {
	if defaultLogger == nil {
		fmt.Printf(format+"\n", args...)
		return
	}
	if level < defaultLogger.level {
		return
	}
	defaultLogger.mu.Lock()
	defer defaultLogger.mu.Unlock()
	defaultLogger.consoleLog.Println(formatMessage(level, format, args...))
}

func logToBoth(level Level, format string, args ...interface{}) {
	logToFile(level, format, args...)
	logToConsole(level, format, args...)
}

// Debug logs a debug-level message (file only, when a log file is
// configured).
func Debug(format string, args ...interface{}) { logToFile(DEBUG, format, args...) }

// Info logs an info-level message to both sinks.
func Info(format string, args ...interface{}) { logToBoth(INFO, format, args...) }

// Warn logs a warning to both sinks.
func Warn(format string, args ...interface{}) { logToBoth(WARN, format, args...) }

// Error logs an error to both sinks.
func Error(format string, args ...interface{}) { logToBoth(ERROR, format, args...) }

// Writer returns an io.Writer suitable for handing to the standard log
// package, writing to the configured log file or, absent one, stdout.
func Writer() io.Writer {
	if defaultLogger != nil && defaultLogger.logFile != nil {
		return defaultLogger.logFile
	}
	return os.Stdout
}
