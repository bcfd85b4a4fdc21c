// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"strings"

	"github.com/Thermoquad/makcuflash/pkg/flasher"
	"github.com/Thermoquad/makcuflash/pkg/logging"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog/log"
)

// Messages
type uploadProgressMsg flasher.Progress
type uploadDoneMsg struct {
	stats flasher.Statistics
	err   error
}

// progressModel shows a single upload. It cannot be cancelled: the device
// would be left with erased flash.
type progressModel struct {
	bar      progress.Model
	last     flasher.Progress
	done     bool
	err      error
	stats    flasher.Statistics
	warned   bool
	maxWidth int
}

func initialProgressModel() progressModel {
	return progressModel{
		bar:      progress.New(progress.WithDefaultGradient()),
		maxWidth: 60,
	}
}

func (m progressModel) Init() tea.Cmd {
	return nil
}

func (m progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.warned = true
		}

	case tea.WindowSizeMsg:
		m.bar.Width = min(msg.Width-4, m.maxWidth)

	case uploadProgressMsg:
		m.last = flasher.Progress(msg)

	case uploadDoneMsg:
		m.done = true
		m.err = msg.err
		m.stats = msg.stats
		return m, tea.Quit
	}

	return m, nil
}

func (m progressModel) View() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("12"))

	labelStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241"))

	warningStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("11"))

	var s strings.Builder
	s.WriteString(titleStyle.Render("Uploading firmware"))
	s.WriteString("\n\n")
	s.WriteString(m.bar.ViewAs(m.last.Percentage() / 100))
	s.WriteString("\n")
	s.WriteString(labelStyle.Render(fmt.Sprintf("%s | page %d/%d | %d/%d bytes | %.1fs",
		m.last.State, m.last.Page, m.last.TotalPages,
		m.last.BytesWritten, m.last.TotalBytes, m.last.Elapsed.Seconds())))
	s.WriteString("\n")

	if m.warned && !m.done {
		s.WriteString(warningStyle.Render("Upload in progress, it cannot be interrupted safely"))
		s.WriteString("\n")
	}

	return s.String()
}

// newProgressProgram builds the progress view program. Tests replace it.
var newProgressProgram = func(m tea.Model) *tea.Program {
	return tea.NewProgram(m)
}

// uploadWithTUI runs the upload on its own goroutine while the progress view
// owns the terminal. It never returns before the upload does, even when the
// view fails or is interrupted.
func uploadWithTUI(ch flasher.Channel, image []byte, opts ...flasher.Option) (flasher.Statistics, error) {
	p := newProgressProgram(initialProgressModel())

	// Console logs would tear the progress view
	opts = append([]flasher.Option{
		flasher.WithLogger(logging.FileLogger()),
		flasher.WithProgress(func(prog flasher.Progress) {
			p.Send(uploadProgressMsg(prog))
		}),
	}, opts...)
	uploader := flasher.New(ch, opts...)

	done := make(chan uploadDoneMsg, 1)
	go func() {
		err := uploader.Upload(image)
		result := uploadDoneMsg{stats: uploader.Statistics(), err: err}
		done <- result
		p.Send(result)
	}()

	final, err := p.Run()
	if err != nil {
		log.Warn().Err(err).Msg("progress view stopped, waiting for the upload to finish")
		fmt.Println("Upload still running, do not disconnect the device...")
		result := <-done
		return result.stats, result.err
	}

	result := <-done
	if m, ok := final.(progressModel); ok && m.done {
		return m.stats, m.err
	}
	return result.stats, result.err
}
