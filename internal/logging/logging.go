// Package logging configures the process-wide apex/log handler.
package logging

import (
	"io"
	"os"

	"github.com/apex/log"
	"github.com/apex/log/handlers/json"
	"github.com/apex/log/handlers/multi"
	"github.com/apex/log/handlers/text"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options select the level, the output format ("text" or "json") and an
// optional rotating log file.
type Options struct {
	Level  string
	Format string
	File   string
}

// Setup installs the handler described by opts. The returned closer flushes
// the log file, if one was opened.
func Setup(opts Options) (io.Closer, error) {
	level, err := log.ParseLevel(opts.Level)
	if err != nil {
		return nil, err
	}

	handler := newHandler(opts.Format, os.Stderr)
	var closer io.Closer = nopCloser{}

	if opts.File != "" {
		file := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    50,
			MaxBackups: 5,
			MaxAge:     28,
		}
		handler = multi.New(handler, newHandler(opts.Format, file))
		closer = file
	}

	log.SetHandler(handler)
	log.SetLevel(level)
	return closer, nil
}

func newHandler(format string, w io.Writer) log.Handler {
	if format == "json" {
		return json.New(w)
	}
	return text.New(w)
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
