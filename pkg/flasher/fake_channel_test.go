// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package flasher

import (
	"errors"
	"os"
	"time"

	"github.com/Thermoquad/makcuflash/pkg/bootproto"
	"github.com/jonboulle/clockwork"
)

var errFakeTimeout = errors.New("fake read timeout")

// reply is one scripted ReadExact result
type reply struct {
	data []byte
	err  error
}

func ack() reply           { return reply{data: []byte{bootproto.Ack}} }
func nack() reply          { return reply{data: []byte{bootproto.Nack}} }
func garbage(b byte) reply { return reply{data: []byte{b}} }
func silence() reply       { return reply{err: errFakeTimeout} }

func acks(n int) []reply {
	r := make([]reply, n)
	for i := range r {
		r[i] = ack()
	}
	return r
}

// fakeChannel records every write and replays scripted replies.
// Reads past the end of the script time out.
type fakeChannel struct {
	closed  bool
	replies []reply
	clock   clockwork.Clock

	writes       [][]byte
	readTimeouts []time.Duration
	readTimes    []time.Time

	// faults injected by write index
	shortWrite map[int]int
	writeErr   map[int]error
}

func newFakeChannel(replies ...reply) *fakeChannel {
	return &fakeChannel{
		replies:    replies,
		shortWrite: map[int]int{},
		writeErr:   map[int]error{},
	}
}

func (f *fakeChannel) Write(p []byte) (int, error) {
	idx := len(f.writes)
	f.writes = append(f.writes, append([]byte(nil), p...))

	if err, ok := f.writeErr[idx]; ok {
		return 0, err
	}
	if n, ok := f.shortWrite[idx]; ok {
		return n, nil
	}
	return len(p), nil
}

func (f *fakeChannel) ReadExact(n int, timeout time.Duration) ([]byte, error) {
	f.readTimeouts = append(f.readTimeouts, timeout)
	if f.clock != nil {
		f.readTimes = append(f.readTimes, f.clock.Now())
	}

	if len(f.replies) == 0 {
		return nil, os.ErrDeadlineExceeded
	}
	r := f.replies[0]
	f.replies = f.replies[1:]
	if r.err != nil {
		return nil, r.err
	}
	if len(r.data) != n {
		return nil, errors.New("fake reply length mismatch")
	}
	return r.data, nil
}

func (f *fakeChannel) IsOpen() bool {
	return !f.closed
}

// writePages returns the WRITE_PAGE frames among the recorded writes
func (f *fakeChannel) writePages() [][]byte {
	var frames [][]byte
	for _, w := range f.writes {
		if len(w) == bootproto.WritePageFrameSize && w[0] == bootproto.CmdWritePage {
			frames = append(frames, w)
		}
	}
	return frames
}

// sentOpcode reports whether a single-byte frame with op was written
func (f *fakeChannel) sentOpcode(op byte) bool {
	for _, w := range f.writes {
		if len(w) == 1 && w[0] == op {
			return true
		}
	}
	return false
}

// sleepClock advances a fake clock on Sleep instead of blocking, and records
// every requested delay.
type sleepClock struct {
	clockwork.Clock
	advance func(time.Duration)
	slept   []time.Duration
}

func newSleepClock() *sleepClock {
	fc := clockwork.NewFakeClock()
	return &sleepClock{Clock: fc, advance: fc.Advance}
}

func (c *sleepClock) Sleep(d time.Duration) {
	c.slept = append(c.slept, d)
	c.advance(d)
}
