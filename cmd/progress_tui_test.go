// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"errors"
	"testing"
	"time"

	"github.com/Thermoquad/makcuflash/pkg/flasher"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProgressModel_TracksProgress(t *testing.T) {
	var m tea.Model = initialProgressModel()

	m, _ = m.Update(uploadProgressMsg(flasher.Progress{
		State:        flasher.StateWritingPages,
		Page:         3,
		TotalPages:   10,
		BytesWritten: 384,
		TotalBytes:   1200,
		Elapsed:      1500 * time.Millisecond,
	}))

	view := m.View()
	assert.Contains(t, view, "writing pages")
	assert.Contains(t, view, "page 3/10")
	assert.Contains(t, view, "384/1200 bytes")
}

func TestProgressModel_IgnoresInterrupt(t *testing.T) {
	var m tea.Model = initialProgressModel()

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	assert.Nil(t, cmd)
	assert.Contains(t, m.View(), "cannot be interrupted")
}

func TestProgressModel_QuitsWhenDone(t *testing.T) {
	var m tea.Model = initialProgressModel()
	failure := errors.New("verify failed")

	m, cmd := m.Update(uploadDoneMsg{
		stats: flasher.Statistics{PagesWritten: 2, TotalPages: 2},
		err:   failure,
	})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())

	pm, ok := m.(progressModel)
	require.True(t, ok)
	assert.True(t, pm.done)
	assert.ErrorIs(t, pm.err, failure)
	assert.Equal(t, 2, pm.stats.PagesWritten)
}
