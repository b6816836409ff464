package logger

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// Logger wraps zerolog.Logger with engine context.
type Logger struct {
	logger zerolog.Logger
	name   string
}

// New creates a new logger instance with configuration.
func New(cfg *Config, name string) *Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}

	var zl zerolog.Logger
	if strings.ToLower(cfg.Format) == "console" {
		zl = newConsoleLogger(cfg, name)
	} else {
		zl = zerolog.New(outputWriter(cfg.Output))
	}
	zl = zl.Level(level)

	if cfg.Timestamp {
		zl = zl.With().Timestamp().Logger()
	}
	if cfg.Caller {
		zl = zl.With().Caller().Logger()
	}

	return &Logger{logger: zl, name: name}
}

// NewDefault creates a logger with default configuration.
func NewDefault(name string) *Logger {
	cfg := &Config{
		Level:     "info",
		Format:    "console",
		Output:    "stdout",
		Timestamp: true,
	}
	return New(cfg, name)
}

// NewFromEnv creates a logger configured from environment variables.
func NewFromEnv(name string) *Logger {
	cfg := &Config{
		Level:     getEnvOrDefault("PARMAP_LOG_LEVEL", "info"),
		Format:    getEnvOrDefault("PARMAP_LOG_FORMAT", "console"),
		Output:    getEnvOrDefault("PARMAP_LOG_OUTPUT", "stdout"),
		NoColor:   getEnvOrDefault("PARMAP_LOG_NO_COLOR", "false") == "true",
		Timestamp: getEnvOrDefault("PARMAP_LOG_TIMESTAMP", "true") == "true",
	}
	return New(cfg, name)
}

// NewWithWriter creates a JSON logger writing to w at debug level.
func NewWithWriter(w io.Writer, name string) *Logger {
	return &Logger{logger: zerolog.New(w).Level(zerolog.DebugLevel), name: name}
}

// Nop returns a logger that discards everything. Used as the default inside
// the engine when the caller supplies no logger.
func Nop() *Logger {
	return &Logger{logger: zerolog.Nop()}
}

// WithComponent returns a logger tagged with a component name.
func (l *Logger) WithComponent(name string) *Logger {
	return &Logger{
		logger: l.logger.With().Str(FieldComponent, name).Logger(),
		name:   l.name,
	}
}

// WithFields returns a logger with additional fields.
func (l *Logger) WithFields(fields map[string]interface{}) *Logger {
	zc := l.logger.With()
	for k, v := range fields {
		zc = zc.Interface(k, v)
	}
	return &Logger{logger: zc.Logger(), name: l.name}
}

// WithError returns a logger with an error field.
func (l *Logger) WithError(err error) *Logger {
	return &Logger{
		logger: l.logger.With().Err(err).Logger(),
		name:   l.name,
	}
}

// GetLogger returns the underlying zerolog.Logger.
func (l *Logger) GetLogger() zerolog.Logger {
	return l.logger
}

// Debug logs a debug message.
func (l *Logger) Debug(msg string, fields ...map[string]interface{}) {
	event := l.logger.Debug()
	addFields(event, fields...)
	event.Msg(msg)
}

// Info logs an info message.
func (l *Logger) Info(msg string, fields ...map[string]interface{}) {
	event := l.logger.Info()
	addFields(event, fields...)
	event.Msg(msg)
}

// Warn logs a warning message.
func (l *Logger) Warn(msg string, fields ...map[string]interface{}) {
	event := l.logger.Warn()
	addFields(event, fields...)
	event.Msg(msg)
}

// Error logs an error message.
func (l *Logger) Error(msg string, fields ...map[string]interface{}) {
	event := l.logger.Error()
	addFields(event, fields...)
	event.Msg(msg)
}

// --- internal helpers ---

func addFields(event *zerolog.Event, fields ...map[string]interface{}) {
	for _, fm := range fields {
		for k, v := range fm {
			event.Interface(k, v)
		}
	}
}

func outputWriter(output string) io.Writer {
	switch strings.ToLower(output) {
	case "stderr":
		return os.Stderr
	default:
		return os.Stdout
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func newConsoleLogger(cfg *Config, name string) zerolog.Logger {
	return zerolog.New(zerolog.ConsoleWriter{
		Out:        outputWriter(cfg.Output),
		TimeFormat: "15:04:05",
		NoColor:    cfg.NoColor,
		FormatLevel: func(i interface{}) string {
			lvl := strings.ToUpper(fmt.Sprintf("%s", i))
			switch lvl {
			case "TRACE":
				lvl = "[TRC]"
			case "DEBUG":
				lvl = "[DBG]"
			case "INFO":
				lvl = "[INF]"
			case "WARN":
				lvl = "[WRN]"
			case "ERROR":
				lvl = "[ERR]"
			case "FATAL":
				lvl = "[FTL]"
			default:
				lvl = fmt.Sprintf("[%s]", lvl)
			}
			if name != "" && len(name) >= 3 {
				return fmt.Sprintf("[%s]%s", strings.ToUpper(name[:3]), lvl)
			}
			return lvl
		},
		FormatFieldName: func(i interface{}) string {
			return fmt.Sprintf("%s:", i)
		},
	})
}
