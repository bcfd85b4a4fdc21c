// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package transport provides flasher.Channel implementations: a local serial
// port, a WebSocket serial bridge, and a recorder that captures link traffic.
package transport

import "errors"

var (
	// ErrReadTimeout is returned by ReadExact when the requested bytes do not
	// arrive in time. Partial data is discarded.
	ErrReadTimeout = errors.New("read timeout")

	// ErrClosed is returned when using a channel after Close or after the
	// underlying link failed
	ErrClosed = errors.New("channel closed")
)
