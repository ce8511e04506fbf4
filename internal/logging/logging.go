package logging

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"browsebot-cli/internal/config"
)

const logFile = "debug.log"

// Setup returns the process logger. Without --debug everything is
// discarded; with it, events go to ~/.browsebot/debug.log so log lines
// never tear the interactive prompt.
func Setup(debug bool) (zerolog.Logger, error) {
	if !debug {
		return zerolog.Nop(), nil
	}

	dir, err := config.Dir()
	if err != nil {
		return zerolog.Nop(), err
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return zerolog.Nop(), fmt.Errorf("creating log directory: %w", err)
	}

	f, err := os.OpenFile(filepath.Join(dir, logFile), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("opening log file: %w", err)
	}

	return zerolog.New(f).Level(zerolog.DebugLevel).With().Timestamp().Logger(), nil
}
