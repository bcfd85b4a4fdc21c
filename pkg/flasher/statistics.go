// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package flasher

import (
	"fmt"
	"time"
)

// Statistics tracks link traffic and handshake outcomes for one upload
type Statistics struct {
	StartTime time.Time
	Elapsed   time.Duration

	// Traffic
	FramesSent uint64
	BytesSent  uint64

	// Handshakes
	Acks      uint64
	Nacks     uint64
	Timeouts  uint64
	Malformed uint64

	// Pages
	PagesWritten int
	TotalPages   int
}

func newStatistics(start time.Time) Statistics {
	return Statistics{StartTime: start}
}

// recordResult counts a handshake outcome
func (s *Statistics) recordResult(r Result) {
	switch r {
	case ResultOK:
		s.Acks++
	case ResultNack:
		s.Nacks++
	case ResultTimeout:
		s.Timeouts++
	case ResultMalformed:
		s.Malformed++
	}
}

// recordWrite counts a frame handed to the channel
func (s *Statistics) recordWrite(n int) {
	s.FramesSent++
	if n > 0 {
		s.BytesSent += uint64(n)
	}
}

// Throughput returns bytes sent per second
func (s Statistics) Throughput() float64 {
	if s.Elapsed <= 0 {
		return 0
	}
	return float64(s.BytesSent) / s.Elapsed.Seconds()
}

// String returns a formatted statistics summary
func (s Statistics) String() string {
	result := fmt.Sprintf("=== Upload Statistics (%.1f seconds) ===\n", s.Elapsed.Seconds())
	result += fmt.Sprintf("Pages Written:   %8d / %d\n", s.PagesWritten, s.TotalPages)
	result += fmt.Sprintf("Frames Sent:     %8d\n", s.FramesSent)
	result += fmt.Sprintf("Bytes Sent:      %8d\n", s.BytesSent)
	result += fmt.Sprintf("ACKs:            %8d\n", s.Acks)

	if s.Nacks > 0 {
		result += fmt.Sprintf("NACKs:           %8d\n", s.Nacks)
	}
	if s.Timeouts > 0 {
		result += fmt.Sprintf("Timeouts:        %8d\n", s.Timeouts)
	}
	if s.Malformed > 0 {
		result += fmt.Sprintf("Malformed:       %8d\n", s.Malformed)
	}

	result += fmt.Sprintf("Throughput:      %8.1f bytes/sec\n", s.Throughput())
	result += "=======================================\n"

	return result
}
