// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package bootproto

// Checksum computes the 32-bit byte sum the bootloader compares against on
// VERIFY. The sum wraps on overflow to match the device accumulator.
// Only the unpadded image is summed.
func Checksum(image []byte) uint32 {
	var sum uint32
	for _, b := range image {
		sum += uint32(b)
	}
	return sum
}
