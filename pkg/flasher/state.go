// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package flasher

// State is the upload phase. Phases advance strictly in declaration order;
// StateFailed is reachable from every phase before StateDone.
type State int

// Upload states
const (
	StateIdle State = iota
	StateEnteringBootloader
	StateErasing
	StateWritingPages
	StateVerifying
	StateExitingBootloader
	StateDone
	StateFailed
)

// String returns the state name
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateEnteringBootloader:
		return "entering bootloader"
	case StateErasing:
		return "erasing"
	case StateWritingPages:
		return "writing pages"
	case StateVerifying:
		return "verifying"
	case StateExitingBootloader:
		return "exiting bootloader"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further transitions are possible
func (s State) Terminal() bool {
	return s == StateDone || s == StateFailed
}
