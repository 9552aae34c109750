package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/nerrad567/gray-logic-connect/internal/infrastructure/config"
)

// serviceName is stamped on every record so aggregated logs from several
// Gray Logic services remain attributable to this one.
const serviceName = "gray-logic-connect"

// Logger is the process-wide structured logger. It embeds slog.Logger, so
// call sites use the standard Debug/Info/Warn/Error methods with key-value
// attributes.
//
// Thread Safety:
//   - All methods are safe for concurrent use from multiple goroutines.
type Logger struct {
	*slog.Logger
}

// New builds a Logger from the logging section of the configuration file.
//
// Format selects line-oriented text for development or JSON for ingestion,
// output selects stdout or stderr, and level sets the filter threshold.
// Every record carries service and version attributes.
//
// Parameters:
//   - cfg: Logging configuration from config.yaml
//   - version: Application version for the default field
//
// Returns:
//   - *Logger: Configured logger ready for use
func New(cfg config.LoggingConfig, version string) *Logger {
	handler := newHandler(destination(cfg.Output), cfg.Format, threshold(cfg.Level))
	handler = handler.WithAttrs([]slog.Attr{
		slog.String("service", serviceName),
		slog.String("version", version),
	})

	return &Logger{Logger: slog.New(handler)}
}

// With returns a derived Logger carrying additional default attributes,
// typically a component name.
//
// Example:
//
//	epLogger := logger.With("component", "endpoint")
//	epLogger.Info("connected") // Includes component=endpoint
func (l *Logger) With(args ...any) *Logger {
	return &Logger{Logger: l.Logger.With(args...)}
}

// Default returns a stdout JSON logger at info level, for use during early
// startup before the configuration file has been read.
func Default() *Logger {
	return New(config.LoggingConfig{
		Level:  "info",
		Format: "json",
		Output: "stdout",
	}, "dev")
}

// destination maps the configured output name to a writer. Anything other
// than stderr means stdout.
func destination(output string) io.Writer {
	if strings.EqualFold(output, "stderr") {
		return os.Stderr
	}
	return os.Stdout
}

// newHandler builds the slog handler for the requested format. JSON is the
// default; text must be asked for explicitly.
func newHandler(w io.Writer, format string, level slog.Level) slog.Handler {
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(format, "text") {
		return slog.NewTextHandler(w, opts)
	}
	return slog.NewJSONHandler(w, opts)
}

// threshold parses the configured level name. Recognised values are debug,
// info, warn, warning and error, in any case; anything else means info.
func threshold(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
