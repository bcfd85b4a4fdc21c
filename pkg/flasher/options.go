// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package flasher

import (
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Progress is reported on every state change and after every acknowledged page
type Progress struct {
	State        State
	Page         int // pages acknowledged so far
	TotalPages   int
	BytesWritten int // unpadded image bytes acknowledged so far
	TotalBytes   int
	Elapsed      time.Duration
}

// Percentage returns overall completion in the range 0-100.
// Erase and entry count as the first 5%, verify and exit as the last 5%.
func (p Progress) Percentage() float64 {
	switch p.State {
	case StateIdle:
		return 0
	case StateEnteringBootloader:
		return 1
	case StateErasing:
		return 3
	case StateWritingPages:
		if p.TotalPages == 0 {
			return 5
		}
		return 5 + 90*float64(p.Page)/float64(p.TotalPages)
	case StateVerifying:
		return 96
	case StateExitingBootloader:
		return 98
	case StateDone:
		return 100
	default:
		if p.TotalPages == 0 {
			return 0
		}
		return 5 + 90*float64(p.Page)/float64(p.TotalPages)
	}
}

// ProgressFunc receives upload progress. It runs on the uploading goroutine,
// so a slow callback stalls the upload between steps.
type ProgressFunc func(Progress)

// Option configures an Uploader
type Option func(*Uploader)

// WithLogger sets the logger used for step diagnostics
func WithLogger(logger zerolog.Logger) Option {
	return func(u *Uploader) {
		u.logger = logger
	}
}

// WithClock sets the clock used for settle delays and elapsed time
func WithClock(clock clockwork.Clock) Option {
	return func(u *Uploader) {
		u.clock = clock
	}
}

// WithProgress sets a progress callback
func WithProgress(fn ProgressFunc) Option {
	return func(u *Uploader) {
		u.progress = fn
	}
}

func defaultOptions(u *Uploader) {
	u.logger = log.Logger
	u.clock = clockwork.NewRealClock()
}
