package logutil

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"cloud.google.com/go/compute/metadata"
)

// ConfigureLogger sets up the global logger: structured JSON with a
// severity field on GCE, human-readable console output everywhere
// else.
func ConfigureLogger() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.With().Str("service", "frametrace").Caller().Stack().Logger()
	if metadata.OnGCE() {
		log.Logger = log.Hook(SeverityHook{})
	} else {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
}

// SeverityHook mirrors the log level into the severity field Google
// Cloud Logging groups entries by.
type SeverityHook struct{}

func (h SeverityHook) Run(e *zerolog.Event, level zerolog.Level, _ string) {
	e.Str("severity", level.String())
}
