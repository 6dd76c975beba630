package log

import (
	"fmt"
	"strings"
)

// Config declaratively describes a logger; it is what the server run
// wiring builds from flags and BYTELOG_LOG_* environment variables.
type Config struct {
	// Level is one of debug|info|warn|error|fatal.
	Level string
	// Format is one of text|json.
	Format string
	// Output is one of console|file|null; empty means console.
	Output string
	// FilePath is required when Output is "file".
	FilePath string
}

// ParseLevel converts a level name to a Level.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return DebugLevel, nil
	case "info":
		return InfoLevel, nil
	case "warn", "warning":
		return WarnLevel, nil
	case "error":
		return ErrorLevel, nil
	case "fatal":
		return FatalLevel, nil
	default:
		return InfoLevel, fmt.Errorf("unknown log level %q", s)
	}
}

// ApplyConfig builds a Logger from cfg. Empty fields fall back to
// info-level text logging on the console.
func ApplyConfig(cfg *Config) (Logger, error) {
	if cfg == nil {
		cfg = &Config{}
	}

	level := InfoLevel
	if cfg.Level != "" {
		l, err := ParseLevel(cfg.Level)
		if err != nil {
			return nil, err
		}
		level = l
	}

	var formatter Formatter
	switch strings.ToLower(cfg.Format) {
	case "", "text":
		formatter = &TextFormatter{}
	case "json":
		formatter = &JSONFormatter{}
	default:
		return nil, fmt.Errorf("unknown log format %q", cfg.Format)
	}

	var output Output
	switch strings.ToLower(cfg.Output) {
	case "", "console":
		output = NewConsoleOutput()
	case "file":
		if cfg.FilePath == "" {
			return nil, fmt.Errorf("log output \"file\" requires a file path")
		}
		fo, err := NewFileOutput(cfg.FilePath)
		if err != nil {
			return nil, err
		}
		output = fo
	case "null":
		output = NewNullOutput()
	default:
		return nil, fmt.Errorf("unknown log output %q", cfg.Output)
	}

	return NewLogger(
		WithLevel(level),
		WithFormatter(formatter),
		WithOutput(output),
	), nil
}
