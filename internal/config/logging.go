package config

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/term"
)

// ParseLogLevel parses a log level string. "off" and "none" disable logging.
func ParseLogLevel(s string) (zerolog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "off", "none":
		return zerolog.Disabled, nil
	case "debug":
		return zerolog.DebugLevel, nil
	case "", "info":
		return zerolog.InfoLevel, nil
	case "warn", "warning":
		return zerolog.WarnLevel, nil
	case "error":
		return zerolog.ErrorLevel, nil
	default:
		return zerolog.InfoLevel, invalid("logging.level", "must be debug, info, warn, error or off")
	}
}

// UseColor decides whether console output to w is colorized.
func UseColor(mode string, w io.Writer) bool {
	switch mode {
	case "always":
		return true
	case "never":
		return false
	}
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd())) //nolint:gosec // G115: fd fits in int
}

// NewLogger builds the process logger: human-readable lines on console
// and, when cfg.File is set, JSON lines appended to that file. The returned
// closer releases the file and is never nil.
func NewLogger(cfg LoggingConfig, console io.Writer) (zerolog.Logger, io.Closer, error) {
	level, err := ParseLogLevel(cfg.Level)
	if err != nil {
		return zerolog.Nop(), nopCloser{}, err
	}

	cw := zerolog.ConsoleWriter{
		Out:        console,
		NoColor:    !UseColor(cfg.Color, console),
		TimeFormat: time.DateTime,
	}

	var closer io.Closer = nopCloser{}
	var out io.Writer = cw
	if cfg.File != "" && level != zerolog.Disabled {
		path := ExpandPath(cfg.File)
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
			return zerolog.Nop(), nopCloser{}, err
		}
		// #nosec G304 -- log file path is from validated config
		f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
		if err != nil {
			return zerolog.Nop(), nopCloser{}, err
		}
		out = zerolog.MultiLevelWriter(cw, f)
		closer = f
	}

	logger := zerolog.New(out).Level(level).With().Timestamp().Logger()
	return logger, closer, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
