// Package logging builds the zerolog logger shared by the commands.
package logging

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

// New returns a logger at level writing to out in the given format. Extra
// writers receive the same events as plain text lines.
func New(level, format string, out io.Writer, extra ...io.Writer) (zerolog.Logger, error) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("log level %q: %w", level, err)
	}
	if lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}

	var main io.Writer
	switch strings.ToLower(format) {
	case "", FormatConsole:
		main = zerolog.ConsoleWriter{Out: out, TimeFormat: time.TimeOnly}
	case FormatJSON:
		main = out
	default:
		return zerolog.Nop(), fmt.Errorf("unknown log format %q", format)
	}

	writers := []io.Writer{main}
	for _, w := range extra {
		writers = append(writers, plain(w))
	}
	var w io.Writer = main
	if len(writers) > 1 {
		w = zerolog.MultiLevelWriter(writers...)
	}
	return zerolog.New(w).Level(lvl).With().Timestamp().Logger(), nil
}

// plain renders events without colour for sinks such as the GUI log window.
func plain(w io.Writer) io.Writer {
	return zerolog.ConsoleWriter{
		Out:        w,
		NoColor:    true,
		TimeFormat: time.TimeOnly,
		FormatLevel: func(i interface{}) string {
			if ll, ok := i.(string); ok {
				return strings.ToUpper(ll)
			}
			return "????"
		},
	}
}
