// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package bootproto implements the wire format of the Makcu serial bootloader.
//
// The bootloader speaks a request/response protocol over a 115200 8N1 link.
// Every command is a fixed-layout frame and every reply is a single
// acknowledgment byte. This package builds command frames, splits firmware
// images into flash pages, computes the image checksum and renders frames
// for traces and logs. Sequencing the commands is left to package flasher.
package bootproto

import "time"

// Command opcodes (Host → Bootloader)
const (
	CmdEnterBootloader = 0xA5
	CmdErase           = 0xE0
	CmdWritePage       = 0xD0
	CmdVerify          = 0xC0
	CmdExitBootloader  = 0xF0
)

// Response bytes (Bootloader → Host)
const (
	Ack  = 0x79
	Nack = 0x1F
)

// Flash layout
const (
	PageSize = 128
	PadByte  = 0xFF
)

// Frame sizes
const (
	OpcodeSize         = 1
	AddressSize        = 4
	ChecksumSize       = 4
	ResponseSize       = 1
	WritePageFrameSize = OpcodeSize + AddressSize + PageSize // 133
)

// Link settings. The bootloader does not negotiate these.
const (
	BaudRate = 115200
	DataBits = 8
)

// Per-step handshake timeouts
const (
	EnterTimeout     = 2000 * time.Millisecond
	EraseTimeout     = 5000 * time.Millisecond
	WritePageTimeout = 1000 * time.Millisecond
	VerifyTimeout    = 3000 * time.Millisecond
)

// SettleDelay is the pause after ENTER_BOOTLOADER before the device UART is
// ready, and after EXIT_BOOTLOADER before the caller may close the link.
const SettleDelay = 100 * time.Millisecond
