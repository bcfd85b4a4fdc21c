// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package flasher

import (
	"time"

	"github.com/Thermoquad/makcuflash/pkg/bootproto"
)

// Result is the outcome of waiting for a handshake byte
type Result int

// Handshake results
const (
	ResultOK Result = iota
	ResultNack
	ResultTimeout
	ResultMalformed
)

// String returns the result name
func (r Result) String() string {
	switch r {
	case ResultOK:
		return "ok"
	case ResultNack:
		return "nack"
	case ResultTimeout:
		return "timeout"
	case ResultMalformed:
		return "malformed"
	default:
		return "unknown"
	}
}

// AwaitAck reads one reply byte within timeout.
//
// Any read failure, including a transport error, is reported as
// ResultTimeout. Every result other than ResultOK comes with a
// *HandshakeError and is fatal to the upload.
func AwaitAck(ch Channel, timeout time.Duration) (Result, error) {
	data, err := ch.ReadExact(bootproto.ResponseSize, timeout)
	if err != nil {
		return ResultTimeout, &HandshakeError{Result: ResultTimeout, Err: err}
	}
	if len(data) != bootproto.ResponseSize {
		return ResultTimeout, &HandshakeError{Result: ResultTimeout}
	}

	switch bootproto.DecodeResponse(data[0]) {
	case bootproto.ResponseAck:
		return ResultOK, nil
	case bootproto.ResponseNack:
		return ResultNack, &HandshakeError{Result: ResultNack, Byte: data[0]}
	default:
		return ResultMalformed, &HandshakeError{Result: ResultMalformed, Byte: data[0]}
	}
}
