package logging

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

type Logger = zerolog.Logger

// New returns a timestamped JSON logger writing to stderr. Unknown levels fall
// back to info.
func New(level string) *zerolog.Logger {
	return NewWithWriter(os.Stderr, level)
}

func NewWithWriter(w io.Writer, level string) *zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	logger := zerolog.New(w).Level(lvl).With().Timestamp().Logger()
	return &logger
}

// Nop is used when a component is built without a logger.
func Nop() *zerolog.Logger {
	logger := zerolog.Nop()
	return &logger
}
