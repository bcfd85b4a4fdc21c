// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package transport

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/Thermoquad/makcuflash/pkg/bootproto"
	"github.com/Thermoquad/makcuflash/pkg/flasher"
	"github.com/fxamacker/cbor/v2"
	"github.com/jonboulle/clockwork"
)

// Direction of a captured transfer
type Direction uint8

// Directions
const (
	DirTx Direction = 1 // host to device
	DirRx Direction = 2 // device to host
)

// String returns a short direction marker
func (d Direction) String() string {
	switch d {
	case DirTx:
		return "TX"
	case DirRx:
		return "RX"
	default:
		return "??"
	}
}

// Record is one captured write or read. Capture files are a CBOR sequence of
// records with integer keys.
type Record struct {
	Elapsed   uint64    `cbor:"0,keyasint"`           // microseconds since capture start
	Dir       Direction `cbor:"1,keyasint"`           // DirTx or DirRx
	Data      []byte    `cbor:"2,keyasint,omitempty"` // bytes written or read
	Err       string    `cbor:"3,keyasint,omitempty"` // error returned by the channel
	TimeoutMS uint64    `cbor:"4,keyasint,omitempty"` // read timeout
	Requested uint64    `cbor:"5,keyasint,omitempty"` // bytes requested by a read
}

// Recorder wraps a flasher.Channel and writes every transfer to a capture
// stream. Capture errors never affect the wrapped channel; check Err after
// the upload.
type Recorder struct {
	ch    flasher.Channel
	enc   *cbor.Encoder
	clock clockwork.Clock
	start time.Time
	err   error
}

// NewRecorder starts capturing ch into w
func NewRecorder(ch flasher.Channel, w io.Writer, clock clockwork.Clock) *Recorder {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Recorder{
		ch:    ch,
		enc:   cbor.NewEncoder(w),
		clock: clock,
		start: clock.Now(),
	}
}

// Write forwards to the wrapped channel and records the frame
func (r *Recorder) Write(p []byte) (int, error) {
	n, err := r.ch.Write(p)

	rec := Record{Dir: DirTx, Data: p}
	if n < len(p) {
		rec.Data = p[:max(n, 0)]
	}
	if err != nil {
		rec.Err = err.Error()
	}
	r.record(rec)

	return n, err
}

// ReadExact forwards to the wrapped channel and records the result
func (r *Recorder) ReadExact(n int, timeout time.Duration) ([]byte, error) {
	data, err := r.ch.ReadExact(n, timeout)

	rec := Record{
		Dir:       DirRx,
		Data:      data,
		TimeoutMS: uint64(timeout.Milliseconds()),
		Requested: uint64(n),
	}
	if err != nil {
		rec.Err = err.Error()
	}
	r.record(rec)

	return data, err
}

// IsOpen reports the wrapped channel state
func (r *Recorder) IsOpen() bool {
	return r.ch.IsOpen()
}

// Err returns the first capture encoding error
func (r *Recorder) Err() error {
	return r.err
}

func (r *Recorder) record(rec Record) {
	if r.err != nil {
		return
	}
	rec.Elapsed = uint64(r.clock.Since(r.start).Microseconds())
	if err := r.enc.Encode(rec); err != nil {
		r.err = fmt.Errorf("capture: %w", err)
	}
}

// ReadCapture decodes every record of a capture stream
func ReadCapture(rd io.Reader) ([]Record, error) {
	dec := cbor.NewDecoder(rd)

	var records []Record
	for {
		var rec Record
		err := dec.Decode(&rec)
		if errors.Is(err, io.EOF) {
			return records, nil
		}
		if err != nil {
			return records, fmt.Errorf("decode record %d: %w", len(records), err)
		}
		records = append(records, rec)
	}
}

// FormatRecord formats a captured transfer into a human-readable line
func FormatRecord(rec Record) string {
	elapsed := time.Duration(rec.Elapsed) * time.Microsecond
	prefix := fmt.Sprintf("[%10.3fms] %s", float64(elapsed.Microseconds())/1000.0, rec.Dir)

	var body string
	switch rec.Dir {
	case DirTx:
		body = bootproto.FormatFrame(rec.Data)
	case DirRx:
		if len(rec.Data) > 0 {
			body = bootproto.FormatResponse(rec.Data)
		} else {
			body = fmt.Sprintf("(nothing, wanted %d byte(s) within %dms)", rec.Requested, rec.TimeoutMS)
		}
	default:
		body = bootproto.FormatHex(rec.Data)
	}

	if rec.Err != "" {
		body += " error: " + rec.Err
	}

	return prefix + " " + body
}
