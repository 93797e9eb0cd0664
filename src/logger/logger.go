package logger

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

const timeFormat = "15:04:05"

var log zerolog.Logger

func init() {
	configure(os.Stdout)
}

func configure(w io.Writer) {
	zerolog.TimeFieldFormat = timeFormat
	zerolog.CallerMarshalFunc = func(_ uintptr, file string, line int) string {
		if lastSlash := strings.LastIndexByte(file, '/'); lastSlash >= 0 {
			file = file[lastSlash+1:]
		}
		return fmt.Sprintf("%s:%d", file, line)
	}

	output := zerolog.ConsoleWriter{Out: w, TimeFormat: timeFormat}
	log = zerolog.New(output).With().Timestamp().Caller().Logger()
}

// Init sets the level of the shared logger. When logPath is set, output goes
// to stdout and to the file; the returned func closes the file.
// Init replaces the logger every package holds, so it must run before any
// goroutine starts logging.
func Init(level, logPath string) (closeLog func() error, err error) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("parse log level %q: %w", level, err)
	}

	closeLog = func() error { return nil }
	var w io.Writer = os.Stdout
	if logPath != "" {
		logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		w = io.MultiWriter(os.Stdout, logFile)
		closeLog = logFile.Close
	}

	configure(w)
	zerolog.SetGlobalLevel(lvl)
	return closeLog, nil
}

// Get returns the shared logger.
func Get() *zerolog.Logger {
	return &log
}
