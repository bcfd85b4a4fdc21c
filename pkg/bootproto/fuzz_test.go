// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package bootproto

import (
	"encoding/binary"
	"fmt"
	"math/rand"
	"os"
	"strconv"
	"strings"
	"testing"
	"time"
)

// getFuzzRounds returns the number of fuzz rounds from FUZZ_ROUNDS env var, default 1000
func getFuzzRounds() int {
	if envRounds := os.Getenv("FUZZ_ROUNDS"); envRounds != "" {
		if rounds, err := strconv.Atoi(envRounds); err == nil && rounds > 0 {
			return rounds
		}
	}
	return 1000
}

// getFuzzSeed returns the seed from FUZZ_SEED env var, or generates one from current time
func getFuzzSeed() int64 {
	if envSeed := os.Getenv("FUZZ_SEED"); envSeed != "" {
		if seed, err := strconv.ParseInt(envSeed, 10, 64); err == nil {
			return seed
		}
	}
	return time.Now().UnixNano()
}

// newFuzzRng creates a new random number generator and logs the seed for reproducibility
func newFuzzRng(t *testing.T) *rand.Rand {
	seed := getFuzzSeed()
	t.Logf("Seed: %d (reproduce with FUZZ_SEED=%d)", seed, seed)
	return rand.New(rand.NewSource(seed))
}

// TestFuzzFormatter_RandomBytes feeds random frames and responses to the
// formatter and verifies it never panics
func TestFuzzFormatter_RandomBytes(t *testing.T) {
	rounds := getFuzzRounds()
	rng := newFuzzRng(t)
	t.Logf("Running %d fuzz rounds", rounds)

	for i := 0; i < rounds; i++ {
		length := rng.Intn(WritePageFrameSize + 8)
		data := make([]byte, length)
		rng.Read(data)

		if out := FormatFrame(data); out == "" {
			t.Errorf("Round %d: empty frame description for % X", i, data)
		}
		if out := FormatResponse(data); out == "" && length > 0 {
			t.Errorf("Round %d: empty response description for % X", i, data)
		}
	}
}

// TestFuzzWritePageFrame_RandomPages builds frames from random page data and
// checks the layout byte by byte
func TestFuzzWritePageFrame_RandomPages(t *testing.T) {
	rounds := getFuzzRounds()
	rng := newFuzzRng(t)
	t.Logf("Running %d fuzz rounds", rounds)

	for i := 0; i < rounds; i++ {
		address := uint32(rng.Intn(1<<16)) * PageSize
		data := make([]byte, rng.Intn(PageSize)+1)
		rng.Read(data)

		frame, err := WritePageFrame(address, data)
		if err != nil {
			t.Errorf("Round %d: unexpected error: %v", i, err)
			continue
		}

		if len(frame) != WritePageFrameSize {
			t.Errorf("Round %d: frame length %d, expected %d", i, len(frame), WritePageFrameSize)
			continue
		}
		if frame[0] != CmdWritePage {
			t.Errorf("Round %d: opcode 0x%02X", i, frame[0])
		}
		if got := binary.BigEndian.Uint32(frame[1:5]); got != address {
			t.Errorf("Round %d: address 0x%08X, expected 0x%08X", i, got, address)
		}

		payload := frame[5:]
		for j := range payload {
			want := byte(PadByte)
			if j < len(data) {
				want = data[j]
			}
			if payload[j] != want {
				t.Errorf("Round %d: payload[%d] = 0x%02X, expected 0x%02X", i, j, payload[j], want)
				break
			}
		}

		prefix := fmt.Sprintf("WRITE_PAGE (0xD0) addr=0x%08X page=%d", address, address/PageSize)
		if out := FormatFrame(frame); !strings.HasPrefix(out, prefix) {
			t.Errorf("Round %d: formatted as %q", i, out)
		}
	}
}

// TestFuzzWritePageFrame_Oversize verifies oversize pages are always rejected
func TestFuzzWritePageFrame_Oversize(t *testing.T) {
	rounds := getFuzzRounds()
	rng := newFuzzRng(t)
	t.Logf("Running %d fuzz rounds", rounds)

	for i := 0; i < rounds; i++ {
		data := make([]byte, PageSize+1+rng.Intn(512))
		if frame, err := WritePageFrame(0, data); err == nil {
			t.Errorf("Round %d: %d bytes accepted into a %d byte frame", i, len(data), len(frame))
		}
	}
}
