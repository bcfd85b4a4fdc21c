// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package flasher

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStateString(t *testing.T) {
	assert.Equal(t, "idle", StateIdle.String())
	assert.Equal(t, "writing pages", StateWritingPages.String())
	assert.Equal(t, "failed", StateFailed.String())
	assert.Equal(t, "unknown", State(99).String())
}

func TestStateTerminal(t *testing.T) {
	for s := StateIdle; s <= StateFailed; s++ {
		assert.Equal(t, s == StateDone || s == StateFailed, s.Terminal(), s.String())
	}
}

func TestProgressPercentage(t *testing.T) {
	assert.InDelta(t, 0.0, Progress{State: StateIdle}.Percentage(), 0.001)
	assert.InDelta(t, 5.0, Progress{State: StateWritingPages, TotalPages: 4}.Percentage(), 0.001)
	assert.InDelta(t, 50.0, Progress{State: StateWritingPages, Page: 2, TotalPages: 4}.Percentage(), 0.001)
	assert.InDelta(t, 100.0, Progress{State: StateDone}.Percentage(), 0.001)
}

func TestStatisticsThroughput(t *testing.T) {
	s := Statistics{BytesSent: 1000, Elapsed: 2 * time.Second}
	assert.InDelta(t, 500.0, s.Throughput(), 0.001)
	assert.Zero(t, Statistics{}.Throughput())
}
