// Package logger wraps zerolog behind a process-wide logger.
package logger

import (
	"context"
	"io"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	once   sync.Once
	logger zerolog.Logger
)

// Config controls log output.
type Config struct {
	Level      string `yaml:"level" json:"level"`
	Format     string `yaml:"format" json:"format"` // json/console
	Output     string `yaml:"output" json:"output"` // stdout/stderr/file
	FilePath   string `yaml:"file_path,omitempty" json:"file_path,omitempty"`
	TimeFormat string `yaml:"time_format,omitempty" json:"time_format,omitempty"`
}

// DefaultConfig returns console logging at info level.
func DefaultConfig() Config {
	return Config{
		Level:      "info",
		Format:     "console",
		Output:     "stdout",
		TimeFormat: time.RFC3339,
	}
}

// Init initializes the global logger. Subsequent calls are no-ops.
func Init(cfg Config) {
	once.Do(func() {
		zerolog.SetGlobalLevel(parseLevel(cfg.Level))

		var output io.Writer
		switch cfg.Output {
		case "stderr":
			output = os.Stderr
		case "file":
			output = os.Stdout
			if cfg.FilePath != "" {
				if f, err := os.OpenFile(cfg.FilePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644); err == nil {
					output = f
				}
			}
		default:
			output = os.Stdout
		}

		if cfg.Format == "console" {
			output = zerolog.ConsoleWriter{
				Out:        output,
				TimeFormat: cfg.TimeFormat,
			}
		}

		logger = zerolog.New(output).With().Timestamp().Logger()
	})
}

func parseLevel(level string) zerolog.Level {
	switch level {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "fatal":
		return zerolog.FatalLevel
	default:
		return zerolog.InfoLevel
	}
}

// Get returns the global logger, initializing defaults if needed.
func Get() *zerolog.Logger {
	if logger.GetLevel() == zerolog.Disabled {
		Init(DefaultConfig())
	}
	return &logger
}

// WithContext returns a logger enriched with request-scoped fields.
func WithContext(ctx context.Context) *zerolog.Logger {
	l := Get().With().Logger()

	if reqID, ok := ctx.Value("request_id").(string); ok {
		l = l.With().Str("request_id", reqID).Logger()
	}
	if tenantID, ok := ctx.Value("tenant_id").(string); ok {
		l = l.With().Str("tenant_id", tenantID).Logger()
	}

	return &l
}

// Debug starts a debug-level event.
func Debug() *zerolog.Event {
	return Get().Debug()
}

// Info starts an info-level event.
func Info() *zerolog.Event {
	return Get().Info()
}

// Warn starts a warn-level event.
func Warn() *zerolog.Event {
	return Get().Warn()
}

// Error starts an error-level event.
func Error() *zerolog.Event {
	return Get().Error()
}

// Fatal starts a fatal-level event.
func Fatal() *zerolog.Event {
	return Get().Fatal()
}

// WithError starts an error-level event carrying err.
func WithError(err error) *zerolog.Event {
	return Get().Error().Err(err)
}

// EngineLogger is the component logger for the scheduling engine.
type EngineLogger struct {
	base *zerolog.Logger
}

// NewEngineLogger returns a logger tagged with the engine component.
func NewEngineLogger() *EngineLogger {
	l := Get().With().Str("component", "engine").Logger()
	return &EngineLogger{base: &l}
}

// StartGeneration records the beginning of a generation run.
func (l *EngineLogger) StartGeneration(tenantID string, nuclei, collaborators, days int) {
	l.base.Info().
		Str("tenant_id", tenantID).
		Int("nuclei", nuclei).
		Int("collaborators", collaborators).
		Int("days", days).
		Msg("schedule generation started")
}

// GenerationComplete records the outcome of a generation run.
func (l *EngineLogger) GenerationComplete(tenantID string, duration time.Duration, shifts, assignments, underfilled int) {
	l.base.Info().
		Str("tenant_id", tenantID).
		Dur("duration", duration).
		Int("shifts", shifts).
		Int("assignments", assignments).
		Int("underfilled", underfilled).
		Msg("schedule generation complete")
}

// ValidationOutcome records a preference validation verdict.
func (l *EngineLogger) ValidationOutcome(collaboratorID, date, status string) {
	l.base.Debug().
		Str("collaborator_id", collaboratorID).
		Str("date", date).
		Str("status", status).
		Msg("preference validated")
}

// SlotUnderfilled records a slot the generator could not fully staff.
func (l *EngineLogger) SlotUnderfilled(nucleoID, date string, required, assigned int) {
	l.base.Warn().
		Str("nucleo_id", nucleoID).
		Str("date", date).
		Int("required", required).
		Int("assigned", assigned).
		Msg("slot underfilled")
}
