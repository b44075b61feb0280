package app

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

// SetupLogging configures the global logger: a console writer on stderr and,
// when logFile is set, a rotating JSON log file. The returned closer flushes
// the file sink and is never nil.
func SetupLogging(verbose bool, logFile string) (io.Closer, error) {
	zerolog.TimeFieldFormat = time.RFC3339
	console := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	if verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
	if logFile == "" {
		log.Logger = log.Output(console)
		return io.NopCloser(nil), nil
	}
	if err := os.MkdirAll(filepath.Dir(logFile), 0o755); err != nil {
		return io.NopCloser(nil), err
	}
	file := &lumberjack.Logger{
		Filename:   logFile,
		MaxSize:    20, // megabytes
		MaxBackups: 5,
		MaxAge:     28, // days
	}
	log.Logger = zerolog.New(zerolog.MultiLevelWriter(console, file)).With().Timestamp().Logger()
	return file, nil
}
