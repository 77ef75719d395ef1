package logging

import (
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// LevelEnv names the variable that sets the log level.
const LevelEnv = "SITECRITIC_LOG_LEVEL"

// Init configures the global logger on stderr.
// SITECRITIC_LOG_LEVEL controls the level: debug, info, warn, error (default: warn).
// verbose forces debug.
func Init(verbose bool) {
	InitWithWriter(os.Stderr, os.Getenv(LevelEnv), verbose)
}

func InitWithWriter(w io.Writer, level string, verbose bool) {
	zerolog.SetGlobalLevel(ParseLevel(level, verbose))
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: w, NoColor: !isTerminal(w)})
}

func ParseLevel(level string, verbose bool) zerolog.Level {
	if verbose {
		return zerolog.DebugLevel
	}
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.WarnLevel
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && isatty.IsTerminal(f.Fd())
}
