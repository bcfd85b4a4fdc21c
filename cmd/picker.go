// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/Thermoquad/makcuflash/pkg/firmware"
	"github.com/Thermoquad/makcuflash/pkg/transport"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog/log"
	"golang.org/x/term"
)

// Picker stages
type pickerStage int

const (
	stagePort pickerStage = iota
	stageFirmware
	stagePath
	stageConfirm
)

// pickerModel chooses a serial port and a firmware image
type pickerModel struct {
	stage     pickerStage
	ports     list.Model
	files     list.Model
	pathInput textinput.Model
	hasFiles  bool

	port         string
	firmware     string
	bridge       string
	confirmed    bool
	quitting     bool
	width        int
	height       int
	errorMessage string
}

func newList(title string, items []list.Item) list.Model {
	delegate := list.NewDefaultDelegate()
	delegate.ShowDescription = true
	delegate.SetHeight(2)

	l := list.New(items, delegate, 60, 14)
	l.Title = title
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	return l
}

// initialPickerModel builds the picker. With a bridge URL the port stage is
// skipped.
func initialPickerModel(ports []transport.PortInfo, files []firmware.File, preferredPort, bridge string) pickerModel {
	portItems := make([]list.Item, 0, len(ports))
	selected := 0
	for i, p := range ports {
		portItems = append(portItems, p)
		if p.Name == preferredPort {
			selected = i
		}
	}

	fileItems := make([]list.Item, 0, len(files))
	for _, f := range files {
		fileItems = append(fileItems, f)
	}

	ti := textinput.New()
	ti.Placeholder = "firmware/V3.8.bin"
	ti.CharLimit = 256
	ti.Width = 50

	m := pickerModel{
		ports:     newList("Serial Ports", portItems),
		files:     newList("Firmware Files", fileItems),
		pathInput: ti,
		hasFiles:  len(files) > 0,
		bridge:    bridge,
		width:     80,
		height:    24,
	}
	m.ports.Select(selected)

	if bridge != "" {
		m.stage = m.firmwareStage()
	}
	if m.stage == stagePath {
		m.pathInput.Focus()
	}
	return m
}

// firmwareStage falls back to typing a path when no images were found
func (m pickerModel) firmwareStage() pickerStage {
	if m.hasFiles {
		return stageFirmware
	}
	return stagePath
}

func (m pickerModel) Init() tea.Cmd {
	return nil
}

func (m pickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ports.SetSize(msg.Width-2, msg.Height-6)
		m.files.SetSize(msg.Width-2, msg.Height-6)
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" || (msg.String() == "q" && m.stage != stagePath) {
			m.quitting = true
			return m, tea.Quit
		}
		return m.handleKey(msg)
	}

	return m, nil
}

func (m pickerModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch m.stage {
	case stagePort:
		if msg.String() == "enter" {
			if item, ok := m.ports.SelectedItem().(transport.PortInfo); ok {
				m.port = item.Name
				m.stage = m.firmwareStage()
				if m.stage == stagePath {
					m.pathInput.Focus()
				}
			}
			return m, nil
		}
		m.ports, cmd = m.ports.Update(msg)

	case stageFirmware:
		switch msg.String() {
		case "enter":
			if item, ok := m.files.SelectedItem().(firmware.File); ok {
				m.firmware = item.Path
				m.stage = stageConfirm
			}
			return m, nil
		case "esc":
			return m.back(), nil
		}
		m.files, cmd = m.files.Update(msg)

	case stagePath:
		switch msg.String() {
		case "enter":
			path := strings.TrimSpace(m.pathInput.Value())
			if path == "" {
				m.errorMessage = "Enter a firmware file path"
				return m, nil
			}
			m.errorMessage = ""
			m.firmware = path
			m.pathInput.Blur()
			m.stage = stageConfirm
			return m, nil
		case "esc":
			return m.back(), nil
		}
		m.pathInput, cmd = m.pathInput.Update(msg)

	case stageConfirm:
		switch msg.String() {
		case "y", "Y":
			m.confirmed = true
			return m, tea.Quit
		case "n", "N", "esc":
			return m.back(), nil
		}
	}

	return m, cmd
}

// back returns to the previous stage
func (m pickerModel) back() pickerModel {
	switch m.stage {
	case stageFirmware, stagePath:
		if m.bridge == "" {
			m.pathInput.Blur()
			m.stage = stagePort
		}
	case stageConfirm:
		m.stage = m.firmwareStage()
		if m.stage == stagePath {
			m.pathInput.Focus()
		}
	}
	return m
}

func (m pickerModel) View() string {
	if m.quitting {
		return ""
	}

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("12")).
		Background(lipgloss.Color("235")).
		Padding(0, 1)

	headerStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241"))

	labelStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("12")).
		Bold(true)

	valueStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("10"))

	errorStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("9")).
		Bold(true)

	var s strings.Builder
	s.WriteString(titleStyle.Render("MAKCUFLASH"))
	s.WriteString("\n\n")

	switch m.stage {
	case stagePort:
		s.WriteString(m.ports.View())
		s.WriteString("\n")
		s.WriteString(headerStyle.Render("enter: select | q: quit"))

	case stageFirmware:
		s.WriteString(m.files.View())
		s.WriteString("\n")
		s.WriteString(headerStyle.Render("enter: select | esc: back | q: quit"))

	case stagePath:
		s.WriteString(labelStyle.Render("No firmware files found. Firmware file path:"))
		s.WriteString("\n")
		s.WriteString(m.pathInput.View())
		s.WriteString("\n")
		if m.errorMessage != "" {
			s.WriteString(errorStyle.Render(m.errorMessage))
			s.WriteString("\n")
		}
		s.WriteString(headerStyle.Render("enter: accept | esc: back | ctrl+c: quit"))

	case stageConfirm:
		target := m.port
		if m.bridge != "" {
			target = m.bridge
		}
		s.WriteString(fmt.Sprintf("%s %s\n", labelStyle.Render("Target:  "), valueStyle.Render(target)))
		s.WriteString(fmt.Sprintf("%s %s\n\n", labelStyle.Render("Firmware:"), valueStyle.Render(m.firmware)))
		s.WriteString(headerStyle.Render("Flash this firmware? y: upload | n: back | q: quit"))
	}

	s.WriteString("\n")
	return s.String()
}

// runInteractive picks a port and firmware file, then uploads
func runInteractive() error {
	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		return errors.New("interactive mode needs a terminal; pass PORT and FIRMWARE_FILE")
	}

	var ports []transport.PortInfo
	if wsURL == "" {
		var err error
		ports, err = transport.ListPorts()
		if err != nil {
			return err
		}
		if len(ports) == 0 {
			printNoPortsHint(os.Stderr, runtime.GOOS)
			return errors.New("no serial ports detected")
		}
	}

	files, err := firmware.Find(appFs, cfg.Firmware.SearchPaths)
	if err != nil {
		return err
	}
	log.Debug().Int("ports", len(ports)).Int("files", len(files)).Msg("interactive mode")

	p := tea.NewProgram(initialPickerModel(ports, files, cfg.Serial.Port, wsURL))
	final, err := p.Run()
	if err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	m, ok := final.(pickerModel)
	if !ok || !m.confirmed {
		fmt.Println("No upload performed.")
		return nil
	}

	return runUpload(m.port, m.firmware)
}
