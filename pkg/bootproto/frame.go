// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package bootproto

import (
	"encoding/binary"
	"fmt"
)

// Response is a decoded single-byte bootloader reply
type Response int

// Response values
const (
	ResponseAck Response = iota
	ResponseNack
	ResponseInvalid
)

// String returns the response name
func (r Response) String() string {
	switch r {
	case ResponseAck:
		return "ACK"
	case ResponseNack:
		return "NACK"
	default:
		return "INVALID"
	}
}

// CommandFrame builds a single-opcode frame (enter, erase, verify, exit).
func CommandFrame(op byte) []byte {
	return []byte{op}
}

// WritePageFrame builds a WRITE_PAGE frame for the page at address.
//
// The frame is always WritePageFrameSize bytes: opcode, big-endian address,
// then data padded with PadByte up to PageSize. Data longer than a page is
// rejected rather than truncated.
func WritePageFrame(address uint32, data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("page at 0x%08X has no data", address)
	}
	if len(data) > PageSize {
		return nil, fmt.Errorf("page data too large: %d bytes (max %d)", len(data), PageSize)
	}

	frame := make([]byte, WritePageFrameSize)
	frame[0] = CmdWritePage
	binary.BigEndian.PutUint32(frame[OpcodeSize:OpcodeSize+AddressSize], address)

	payload := frame[OpcodeSize+AddressSize:]
	n := copy(payload, data)
	for i := n; i < PageSize; i++ {
		payload[i] = PadByte
	}

	return frame, nil
}

// ChecksumFrame encodes the image checksum that follows a VERIFY command.
func ChecksumFrame(sum uint32) []byte {
	frame := make([]byte, ChecksumSize)
	binary.BigEndian.PutUint32(frame, sum)
	return frame
}

// DecodeResponse interprets a single reply byte.
func DecodeResponse(b byte) Response {
	switch b {
	case Ack:
		return ResponseAck
	case Nack:
		return ResponseNack
	default:
		return ResponseInvalid
	}
}
