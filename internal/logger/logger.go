// Package logger builds the process-wide zerolog.Logger. Every call site
// elsewhere in the repo follows a "component event key=value" shape:
// log.Error().Str("component", "ingest").Str("stream", label).Err(err).Msg("fetch_page_failed").
package logger

import (
	"os"

	"github.com/rs/zerolog"

	"github.com/atlasindex/atlas/internal/config"
)

// New returns a configured zerolog.Logger. Development mode widens the
// level to Debug and pretty-prints to a terminal; production logs plain
// JSON lines to stderr so they compose with whatever log shipper wraps
// the process.
func New(cfg *config.Config) zerolog.Logger {
	lvl := zerolog.InfoLevel
	if cfg.IsDevelopment() {
		lvl = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(lvl)

	if cfg.IsDevelopment() {
		out := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}
		return zerolog.New(out).With().Timestamp().Logger()
	}
	return zerolog.New(os.Stderr).With().Timestamp().Logger()
}
