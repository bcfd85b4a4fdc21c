// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package logging configures the global zerolog logger.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"
)

// Options controls log output
type Options struct {
	Level   string    // trace, debug, info, warn or error; empty means info
	Verbose bool      // forces debug when Level is coarser
	File    string    // rotating log file; empty disables file output
	Console io.Writer // defaults to os.Stderr
}

var (
	// file output of the last Init, nil without a log file
	fileWriter io.Writer
	fileLevel  = zerolog.InfoLevel
)

// Init replaces log.Logger with a console logger, optionally tee'd to a
// rotating file. The returned closer releases the log file.
func Init(opts Options) (io.Closer, error) {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, err
	}
	if opts.Verbose && level > zerolog.DebugLevel {
		level = zerolog.DebugLevel
	}

	console := opts.Console
	if console == nil {
		console = os.Stderr
	}

	writers := []io.Writer{zerolog.ConsoleWriter{
		Out:        console,
		TimeFormat: "15:04:05.000",
	}}

	var closer io.Closer = nopCloser{}
	fileWriter, fileLevel = nil, level
	if opts.File != "" {
		if err := os.MkdirAll(filepath.Dir(opts.File), 0o750); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		file := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    1,
			MaxBackups: 2,
		}
		writers = append(writers, file)
		closer = file
		fileWriter = file
	}

	zerolog.SetGlobalLevel(level)
	log.Logger = zerolog.New(io.MultiWriter(writers...)).
		Level(level).
		With().Timestamp().Caller().Logger()

	return closer, nil
}

// FileLogger returns a logger that writes only to the log file, for use
// while a full-screen view owns the terminal. Without a log file it
// discards everything.
func FileLogger() zerolog.Logger {
	if fileWriter == nil {
		return zerolog.Nop()
	}
	return zerolog.New(fileWriter).
		Level(fileLevel).
		With().Timestamp().Caller().Logger()
}

// ParseLevel maps a configured level name to a zerolog level
func ParseLevel(name string) (zerolog.Level, error) {
	if name == "" {
		return zerolog.InfoLevel, nil
	}

	level, err := zerolog.ParseLevel(name)
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("invalid log level %q: %w", name, err)
	}
	return level, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
