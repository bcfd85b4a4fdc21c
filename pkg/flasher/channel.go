// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package flasher

import "time"

// Channel is the duplex byte link to the bootloader.
//
// The engine treats every call as synchronous and blocking. Write must
// accept the whole frame in one call; a short count is a failed write and
// is never retried. ReadExact returns exactly n bytes or an error, never
// partial data. The caller owns the channel and closes it; the engine
// never does.
type Channel interface {
	Write(p []byte) (int, error)
	ReadExact(n int, timeout time.Duration) ([]byte, error)
	IsOpen() bool
}
