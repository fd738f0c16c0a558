// Package logging builds the process logger.
package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

const permission = 0664

type Build struct {
	writer io.Writer
	path   string
	level  string
	format string
}

// Log is a built logger and the file it writes to, if any.
type Log struct {
	File   *os.File
	Logger zerolog.Logger
}

func New() *Build {
	return &Build{level: "info", format: "console"}
}

func (b *Build) Level(level string) *Build {
	b.level = level
	return b
}

// Format is "console" for human-readable output or "json".
func (b *Build) Format(format string) *Build {
	b.format = format
	return b
}

// ToPath appends to the file at path instead of the writer.
func (b *Build) ToPath(path string) *Build {
	b.path = path
	return b
}

func (b *Build) ToWriter(w io.Writer) *Build {
	b.writer = w
	return b
}

func (b *Build) Make() (*Log, error) {
	level, err := zerolog.ParseLevel(b.level)
	if err != nil {
		return nil, err
	}

	l := &Log{}
	var w io.Writer = os.Stderr
	if b.writer != nil {
		w = b.writer
	}
	if b.path != "" {
		l.File, err = os.OpenFile(b.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, permission)
		if err != nil {
			return nil, err
		}
		w = zerolog.SyncWriter(l.File)
	} else if b.format == "console" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen, NoColor: b.writer != nil}
	}

	l.Logger = zerolog.New(w).Level(level).With().Timestamp().Logger()
	return l, nil
}

// Close closes the log file, if any.
func (l *Log) Close() error {
	if l.File == nil {
		return nil
	}
	return l.File.Close()
}
