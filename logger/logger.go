// Package logger provides structured logging for the agent. Each
// component gets a named logger; entries go out as JSON by default so
// the websocket log stream can forward them as-is.
package logger

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"runtime"
	"sync"
	"time"
)

// Level represents the severity of a log entry.
type Level int

const (
	DEBUG Level = iota
	INFO
	WARN
	ERROR
	FATAL
)

func (l Level) String() string {
	switch l {
	case DEBUG:
		return "DEBUG"
	case INFO:
		return "INFO"
	case WARN:
		return "WARN"
	case ERROR:
		return "ERROR"
	case FATAL:
		return "FATAL"
	default:
		return "UNKNOWN"
	}
}

// Entry is one structured log record.
type Entry struct {
	Timestamp time.Time              `json:"timestamp"`
	Level     string                 `json:"level"`
	Component string                 `json:"component,omitempty"`
	Message   string                 `json:"message"`
	Fields    map[string]interface{} `json:"fields,omitempty"`
	Caller    string                 `json:"caller,omitempty"`
	SessionID string                 `json:"session_id,omitempty"`
}

// Logger writes leveled, structured entries for one component.
type Logger struct {
	mu            sync.RWMutex
	level         Level
	output        io.Writer
	component     string
	fields        map[string]interface{}
	jsonFormat    bool
	includeCaller bool
}

var (
	globalLogger *Logger
	once         sync.Once

	defaultMu    sync.RWMutex
	defaultLevel = INFO
)

// New creates a logger for the named component at the package default level.
func New(component string) *Logger {
	defaultMu.RLock()
	level := defaultLevel
	defaultMu.RUnlock()
	return &Logger{
		level:      level,
		output:     os.Stdout,
		component:  component,
		fields:     make(map[string]interface{}),
		jsonFormat: true,
	}
}

// Global returns the shared root logger.
func Global() *Logger {
	once.Do(func() {
		globalLogger = New("voxa")
	})
	return globalLogger
}

func (l *Logger) SetLevel(level Level) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
}

func (l *Logger) SetOutput(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.output = w
}

func (l *Logger) SetJSONFormat(enabled bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.jsonFormat = enabled
}

func (l *Logger) SetIncludeCaller(enabled bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.includeCaller = enabled
}

// WithField returns a child logger carrying an additional field.
func (l *Logger) WithField(key string, value interface{}) *Logger {
	return l.WithFields(map[string]interface{}{key: value})
}

// WithFields returns a child logger carrying additional fields.
func (l *Logger) WithFields(fields map[string]interface{}) *Logger {
	l.mu.RLock()
	defer l.mu.RUnlock()

	child := &Logger{
		level:         l.level,
		output:        l.output,
		component:     l.component,
		fields:        make(map[string]interface{}, len(l.fields)+len(fields)),
		jsonFormat:    l.jsonFormat,
		includeCaller: l.includeCaller,
	}
	for k, v := range l.fields {
		child.fields[k] = v
	}
	for k, v := range fields {
		child.fields[k] = v
	}
	return child
}

func (l *Logger) log(level Level, format string, args []interface{}) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if level < l.level {
		return
	}

	msg := format
	if len(args) > 0 {
		msg = fmt.Sprintf(format, args...)
	}

	entry := Entry{
		Timestamp: time.Now(),
		Level:     level.String(),
		Component: l.component,
		Message:   msg,
		Fields:    l.fields,
	}

	if sid, ok := l.fields["session_id"]; ok {
		entry.SessionID = fmt.Sprintf("%v", sid)
	}

	if l.includeCaller {
		if _, file, line, ok := runtime.Caller(2); ok {
			entry.Caller = fmt.Sprintf("%s:%d", file, line)
		}
	}

	if l.jsonFormat {
		l.writeJSON(entry)
	} else {
		l.writeText(entry)
	}

	if level == FATAL {
		os.Exit(1)
	}
}

func (l *Logger) writeJSON(entry Entry) {
	data, err := json.Marshal(entry)
	if err != nil {
		log.Printf("failed to marshal log entry: %v", err)
		return
	}
	fmt.Fprintln(l.output, string(data))
}

func (l *Logger) writeText(entry Entry) {
	out := fmt.Sprintf("[%s] [%s] ", entry.Timestamp.Format("2006-01-02 15:04:05"), entry.Level)
	if entry.Component != "" {
		out += fmt.Sprintf("[%s] ", entry.Component)
	}
	out += entry.Message
	for k, v := range entry.Fields {
		out += fmt.Sprintf(" %s=%v", k, v)
	}
	if entry.Caller != "" {
		out += fmt.Sprintf(" caller=%s", entry.Caller)
	}
	fmt.Fprintln(l.output, out)
}

// Debug logs a debug message. Arguments are formatted Printf-style.
func (l *Logger) Debug(format string, args ...interface{}) {
	l.log(DEBUG, format, args)
}

// Info logs an informational message.
func (l *Logger) Info(format string, args ...interface{}) {
	l.log(INFO, format, args)
}

// Warn logs a warning.
func (l *Logger) Warn(format string, args ...interface{}) {
	l.log(WARN, format, args)
}

// Error logs an error.
func (l *Logger) Error(format string, args ...interface{}) {
	l.log(ERROR, format, args)
}

// Fatal logs the message and exits.
func (l *Logger) Fatal(format string, args ...interface{}) {
	l.log(FATAL, format, args)
}

// SetGlobalLevel sets the shared root logger level and the default level for
// loggers created afterwards.
func SetGlobalLevel(level Level) {
	defaultMu.Lock()
	defaultLevel = level
	defaultMu.Unlock()
	Global().SetLevel(level)
}

// SetGlobalOutput sets the shared root logger output.
func SetGlobalOutput(w io.Writer) {
	Global().SetOutput(w)
}

// ParseLevel parses a string log level.
func ParseLevel(s string) (Level, error) {
	switch s {
	case "DEBUG", "debug":
		return DEBUG, nil
	case "INFO", "info":
		return INFO, nil
	case "WARN", "warn", "WARNING", "warning":
		return WARN, nil
	case "ERROR", "error":
		return ERROR, nil
	case "FATAL", "fatal":
		return FATAL, nil
	default:
		return INFO, fmt.Errorf("unknown log level: %s", s)
	}
}
