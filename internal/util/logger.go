package util

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// NewLogger monta o logger raiz a partir de LOG_LEVEL/LOG_FORMAT.
// Nível desconhecido cai para info.
func NewLogger(level, format string, out io.Writer) zerolog.Logger {
	if out == nil {
		out = os.Stdout
	}
	if format != "json" {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}

	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}

	return zerolog.New(out).Level(lvl).With().Timestamp().Logger()
}
