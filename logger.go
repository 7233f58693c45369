package main

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

type logger struct {
	lookupLog  zerolog.Logger
	batchLog   zerolog.Logger
	geocodeLog zerolog.Logger
	torrentLog zerolog.Logger
}

// Failures are swallowed by the pipeline, so the log line is their
// only trace. They go out at error level to survive the default
// global level.
func (l *logger) LookupError(addr string, name string, err error) {
	l.lookupLog.Error().Str("provider", name).Str("addr", addr).Err(err).Msg("")
}

func (l *logger) BatchError(name string, err error) {
	l.batchLog.Error().Str("provider", name).Err(err).Msg("")
}

func (l *logger) GeocodeError(city, country string, name string, err error) {
	l.geocodeLog.Error().Str("provider", name).Str("city", city).Str("country", country).Err(err).Msg("")
}

func (l *logger) TorrentError(name string, err error) {
	l.torrentLog.Error().Str("torrent", name).Err(err).Msg("")
}

func newLogger(debug bool) *logger {
	return newLoggerTo(os.Stderr, debug)
}

func newLoggerTo(w io.Writer, debug bool) *logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zerolog.SetGlobalLevel(zerolog.ErrorLevel)

	if debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	base := zerolog.New(w).With().Timestamp().Logger()

	return &logger{
		lookupLog:  base.With().Str("event_name", "lookup").Logger(),
		batchLog:   base.With().Str("event_name", "batch").Logger(),
		geocodeLog: base.With().Str("event_name", "geocode").Logger(),
		torrentLog: base.With().Str("event_name", "torrent").Logger(),
	}
}
