package observability

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// InitLogger installs a console logger tagged with app as the global logger.
func InitLogger(app string, level zerolog.Level) zerolog.Logger {
	return initLogger(os.Stderr, app, level)
}

func initLogger(out io.Writer, app string, level zerolog.Level) zerolog.Logger {
	output := zerolog.ConsoleWriter{
		Out:        out,
		TimeFormat: time.RFC3339,
	}
	logger := zerolog.New(output).Level(level).With().Timestamp().Str("app", app).Logger()
	log.Logger = logger
	return logger
}

// ParseLevel maps a config/flag value onto a zerolog level, defaulting to info.
func ParseLevel(raw string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(raw)
	if err != nil || raw == "" {
		return zerolog.InfoLevel
	}
	return lvl
}
