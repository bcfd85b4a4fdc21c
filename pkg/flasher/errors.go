// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package flasher

import (
	"errors"
	"fmt"
)

// Input and transport errors
var (
	ErrEmptyImage    = errors.New("firmware image is empty")
	ErrChannelClosed = errors.New("channel is not open")
	ErrShortWrite    = errors.New("short write")
)

// HandshakeError reports a reply other than ACK. Byte is only meaningful for
// ResultNack and ResultMalformed; Err is set for ResultTimeout.
type HandshakeError struct {
	Result Result
	Byte   byte
	Err    error
}

func (e *HandshakeError) Error() string {
	switch e.Result {
	case ResultNack:
		return "device sent NACK"
	case ResultMalformed:
		return fmt.Sprintf("unexpected response 0x%02X", e.Byte)
	default:
		if e.Err != nil {
			return fmt.Sprintf("timeout waiting for ACK: %v", e.Err)
		}
		return "timeout waiting for ACK"
	}
}

func (e *HandshakeError) Unwrap() error {
	return e.Err
}

// StepError is returned by Upload when a step fails. Page is the failing page
// index during StateWritingPages and -1 otherwise.
type StepError struct {
	State State
	Page  int
	Err   error
}

func (e *StepError) Error() string {
	if e.Page >= 0 {
		return fmt.Sprintf("%s: page %d: %v", e.State, e.Page, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.State, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// IsProtocolError reports whether err is a device-side rejection (NACK or a
// desynchronized reply) rather than a missing or broken link.
func IsProtocolError(err error) bool {
	var hsErr *HandshakeError
	if !errors.As(err, &hsErr) {
		return false
	}
	return hsErr.Result == ResultNack || hsErr.Result == ResultMalformed
}
