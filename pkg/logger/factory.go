package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Format is the log output encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatText Format = "text"
)

// Option configures New.
type Option func(*config)

type config struct {
	level      slog.Level
	format     Format
	output     io.Writer
	attrs      []slog.Attr
	extractors []ContextExtractor
}

// WithLevel sets the minimum level.
func WithLevel(l slog.Level) Option {
	return func(c *config) { c.level = l }
}

// WithLevelName parses names such as "debug" or "WARN". Unknown names keep
// the current level.
func WithLevelName(name string) Option {
	return func(c *config) {
		var l slog.Level
		if err := l.UnmarshalText([]byte(strings.ToUpper(name))); err == nil {
			c.level = l
		}
	}
}

func WithFormat(f Format) Option {
	return func(c *config) {
		if f == FormatJSON || f == FormatText {
			c.format = f
		}
	}
}

// WithOutput sets the destination writer. Nil is ignored.
func WithOutput(w io.Writer) Option {
	return func(c *config) {
		if w != nil {
			c.output = w
		}
	}
}

// WithAttr adds static attributes to every record.
func WithAttr(attrs ...slog.Attr) Option {
	return func(c *config) { c.attrs = append(c.attrs, attrs...) }
}

// WithContextExtractors registers functions that pull request-scoped
// attributes out of the context at log time.
func WithContextExtractors(extractors ...ContextExtractor) Option {
	return func(c *config) {
		for _, ex := range extractors {
			if ex != nil {
				c.extractors = append(c.extractors, ex)
			}
		}
	}
}

// WithEnvironment applies the defaults for env: readable debug output in
// development, JSON at info level everywhere else.
func WithEnvironment(env, service string) Option {
	return func(c *config) {
		switch env {
		case "production", "prod", "staging", "stage":
			c.level = slog.LevelInfo
			c.format = FormatJSON
		default:
			c.level = slog.LevelDebug
			c.format = FormatText
		}
		if service != "" {
			c.attrs = append(c.attrs, slog.String("service", service))
		}
		c.attrs = append(c.attrs, slog.String("env", env))
	}
}

// New builds a slog.Logger. Without options it writes JSON at info level to
// stdout.
func New(opts ...Option) *slog.Logger {
	cfg := &config{
		level:  slog.LevelInfo,
		format: FormatJSON,
		output: os.Stdout,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	handlerOpts := &slog.HandlerOptions{Level: cfg.level}

	var handler slog.Handler
	if cfg.format == FormatText {
		handler = slog.NewTextHandler(cfg.output, handlerOpts)
	} else {
		handler = slog.NewJSONHandler(cfg.output, handlerOpts)
	}

	if len(cfg.attrs) > 0 {
		handler = handler.WithAttrs(cfg.attrs)
	}

	return slog.New(newContextHandler(handler, cfg.extractors...))
}

// Discard returns a logger that drops everything. Used as the default
// dependency in constructors and tests.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
