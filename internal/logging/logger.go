package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Format represents logger output format.
type Format string

const (
	// FormatText writes key=value lines, for terminals.
	FormatText Format = "text"
	// FormatJSON writes one JSON object per record, for log collectors.
	FormatJSON Format = "json"
)

type config struct {
	format Format
	output io.Writer
}

// Option configures logger creation.
type Option func(*config)

// WithFormat selects the handler. Unknown formats fall back to text.
func WithFormat(f Format) Option {
	return func(c *config) {
		c.format = f
	}
}

// WithOutput sets the destination. Nil writers are ignored.
func WithOutput(w io.Writer) Option {
	return func(c *config) {
		if w != nil {
			c.output = w
		}
	}
}

// New creates a configured application logger.
// It writes to Stderr by default (to keep Stdout for the REPL and MCP stdio)
// and standardizes the "error" key to "err".
func New(level slog.Level, opts ...Option) *slog.Logger {
	c := &config{format: FormatText, output: os.Stderr}
	for _, opt := range opts {
		opt(c)
	}

	handlerOpts := &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == "error" {
				a.Key = "err"
			}
			return a
		},
	}

	if c.format == FormatJSON {
		return slog.New(slog.NewJSONHandler(c.output, handlerOpts))
	}
	return slog.New(slog.NewTextHandler(c.output, handlerOpts))
}

// NewNop returns a no-op logger.
func NewNop() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// ParseLevel maps "debug", "info", "warn" and "error" (any case) to a level.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
}
