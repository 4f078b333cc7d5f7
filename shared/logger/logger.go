package logger

import (
	"io"
	"os"
	"time"

	"busline/config"
	"busline/shared/constant"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const defaultLevel = zerolog.InfoLevel

// New builds the service logger. Development gets a console writer; every other
// environment gets JSON lines tagged with the app name for the log shipper.
func New(out io.Writer, cfg *config.Config) zerolog.Logger {
	if cfg.Server.Env == constant.ServerEnvDevelopment {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}

	ctx := zerolog.New(out).With().Timestamp()
	if cfg.App.Name != "" {
		ctx = ctx.Str("service", cfg.App.Name)
	}

	return ctx.Logger()
}

// Level parses SERVER_LOG_LEVEL and falls back to info.
func Level(cfg *config.Config) zerolog.Level {
	level, err := zerolog.ParseLevel(cfg.Server.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		return defaultLevel
	}

	return level
}

// Init replaces the global logger used through zerolog/log.
func Init(cfg *config.Config) {
	zerolog.TimeFieldFormat = time.RFC3339
	zerolog.SetGlobalLevel(Level(cfg))

	log.Logger = New(os.Stdout, cfg)
	log.Debug().Str("level", zerolog.GlobalLevel().String()).Msg("logger initialized")
}

// ErrorWithStack logs err with the stack of the caller, for repository failures whose
// SQL context would otherwise be lost after wrapping.
func ErrorWithStack(err error) {
	log.Error().Msgf("%+v", errors.WithStack(err))
}
