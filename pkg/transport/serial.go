// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package transport

import (
	"errors"
	"fmt"
	"time"

	"github.com/Thermoquad/makcuflash/pkg/bootproto"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
	"go.bug.st/serial"
)

// Port is the subset of serial.Port used by Serial
type Port interface {
	Read(p []byte) (int, error)
	Write(p []byte) (int, error)
	SetReadTimeout(t time.Duration) error
	ResetInputBuffer() error
	Close() error
}

// PortFactory opens a serial port. Tests replace it with a fake.
type PortFactory func(name string, mode *serial.Mode) (Port, error)

// DefaultPortFactory opens a real serial port via go.bug.st/serial
func DefaultPortFactory(name string, mode *serial.Mode) (Port, error) {
	port, err := serial.Open(name, mode)
	if err != nil {
		return nil, err
	}
	return port, nil
}

// BootloaderMode returns the fixed 115200 8N1 line settings of the bootloader.
// Flow control is never enabled by go.bug.st/serial.
func BootloaderMode() *serial.Mode {
	return &serial.Mode{
		BaudRate: bootproto.BaudRate,
		DataBits: bootproto.DataBits,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
}

// SerialOption configures OpenSerial
type SerialOption func(*Serial)

// WithPortFactory overrides how the port is opened
func WithPortFactory(factory PortFactory) SerialOption {
	return func(s *Serial) {
		s.factory = factory
	}
}

// WithSerialClock sets the clock used for read deadlines
func WithSerialClock(clock clockwork.Clock) SerialOption {
	return func(s *Serial) {
		s.clock = clock
	}
}

// Serial is a flasher.Channel over a local serial port
type Serial struct {
	name    string
	port    Port
	factory PortFactory
	clock   clockwork.Clock
	open    bool
}

// OpenSerial opens name at the bootloader line settings.
func OpenSerial(name string, opts ...SerialOption) (*Serial, error) {
	s := &Serial{
		name:    name,
		factory: DefaultPortFactory,
		clock:   clockwork.NewRealClock(),
	}
	for _, opt := range opts {
		opt(s)
	}

	port, err := s.factory(name, BootloaderMode())
	if err != nil {
		return nil, fmt.Errorf("failed to open serial port %s: %w", name, err)
	}
	s.port = port
	s.open = true

	// Drop anything the device sent before we were listening
	if err := port.ResetInputBuffer(); err != nil {
		log.Debug().Err(err).Str("port", name).Msg("failed to reset input buffer")
	}

	return s, nil
}

// Write writes p in a single call. A short count is returned as-is.
func (s *Serial) Write(p []byte) (int, error) {
	if !s.open {
		return 0, ErrClosed
	}
	n, err := s.port.Write(p)
	if err != nil {
		return n, fmt.Errorf("write %s: %w", s.name, err)
	}
	return n, nil
}

// ReadExact collects exactly n bytes before timeout elapses.
func (s *Serial) ReadExact(n int, timeout time.Duration) ([]byte, error) {
	if !s.open {
		return nil, ErrClosed
	}

	buf := make([]byte, n)
	deadline := s.clock.Now().Add(timeout)
	got := 0

	for got < n {
		remaining := deadline.Sub(s.clock.Now())
		if remaining <= 0 {
			return nil, fmt.Errorf("%w after %v (%d of %d bytes)", ErrReadTimeout, timeout, got, n)
		}

		if err := s.port.SetReadTimeout(remaining); err != nil {
			return nil, fmt.Errorf("set read timeout: %w", err)
		}

		// go.bug.st/serial returns 0, nil when the read timeout expires
		m, err := s.port.Read(buf[got:])
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", s.name, err)
		}
		got += m
	}

	return buf, nil
}

// IsOpen reports whether the port is open
func (s *Serial) IsOpen() bool {
	return s.open
}

// Close closes the port. Closing twice is a no-op.
func (s *Serial) Close() error {
	if !s.open {
		return nil
	}
	s.open = false
	return s.port.Close()
}

// String describes the connection for banners
func (s *Serial) String() string {
	return fmt.Sprintf("Serial: %s @ %d baud", s.name, bootproto.BaudRate)
}

// IsPermissionDenied reports whether err came from opening a port the user
// may not access
func IsPermissionDenied(err error) bool {
	var portErr *serial.PortError
	if errors.As(err, &portErr) {
		return portErr.Code() == serial.PermissionDenied
	}
	return false
}
