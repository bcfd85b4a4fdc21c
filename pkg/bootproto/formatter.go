// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package bootproto

import (
	"encoding/binary"
	"fmt"
	"strings"
)

// FormatOpcode returns the human-readable name for a command opcode
func FormatOpcode(op byte) string {
	switch op {
	case CmdEnterBootloader:
		return "ENTER_BOOTLOADER"
	case CmdErase:
		return "ERASE"
	case CmdWritePage:
		return "WRITE_PAGE"
	case CmdVerify:
		return "VERIFY"
	case CmdExitBootloader:
		return "EXIT_BOOTLOADER"
	default:
		return "UNKNOWN"
	}
}

// FormatFrame formats a host-to-device frame into a human-readable string.
// A bare 4-byte frame is the checksum that follows VERIFY.
func FormatFrame(frame []byte) string {
	switch {
	case len(frame) == 0:
		return "(empty frame)"

	case len(frame) == OpcodeSize:
		return fmt.Sprintf("%s (0x%02X)", FormatOpcode(frame[0]), frame[0])

	case len(frame) == WritePageFrameSize && frame[0] == CmdWritePage:
		address := binary.BigEndian.Uint32(frame[OpcodeSize : OpcodeSize+AddressSize])
		payload := frame[OpcodeSize+AddressSize:]
		return fmt.Sprintf("WRITE_PAGE (0x%02X) addr=0x%08X page=%d pad=%d",
			CmdWritePage, address, address/PageSize, countPadding(payload))

	case len(frame) == ChecksumSize:
		return fmt.Sprintf("CHECKSUM 0x%08X", binary.BigEndian.Uint32(frame))
	}

	return "RAW " + FormatHex(frame)
}

// FormatResponse formats bytes read from the device.
func FormatResponse(data []byte) string {
	if len(data) != ResponseSize {
		return "RAW " + FormatHex(data)
	}
	return fmt.Sprintf("%s (0x%02X)", DecodeResponse(data[0]), data[0])
}

// FormatHex renders data as a hex dump, 16 bytes per line
func FormatHex(data []byte) string {
	var s strings.Builder
	for i, b := range data {
		if i > 0 && i%16 == 0 {
			s.WriteString("\n    ")
		} else if i > 0 {
			s.WriteByte(' ')
		}
		fmt.Fprintf(&s, "%02X", b)
	}
	return s.String()
}

// countPadding counts trailing pad bytes. Real data ending in 0xFF is
// indistinguishable from padding, so this is a display hint only.
func countPadding(payload []byte) int {
	n := 0
	for i := len(payload) - 1; i >= 0 && payload[i] == PadByte; i-- {
		n++
	}
	return n
}
