// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package transport

import (
	"fmt"
	"runtime"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"
	"go.bug.st/serial"
	"go.bug.st/serial/enumerator"
)

// PortInfo describes a detected serial port
type PortInfo struct {
	Name         string
	IsUSB        bool
	VID          string
	PID          string
	SerialNumber string
	Product      string
}

// Title implements list.Item for the port picker
func (p PortInfo) Title() string { return p.Name }

// Description implements list.Item for the port picker
func (p PortInfo) Description() string {
	if !p.IsUSB {
		return "serial port"
	}
	desc := fmt.Sprintf("USB %s:%s", p.VID, p.PID)
	if p.Product != "" {
		desc += " " + p.Product
	}
	if p.SerialNumber != "" {
		desc += " (" + p.SerialNumber + ")"
	}
	return desc
}

// FilterValue implements list.Item for the port picker
func (p PortInfo) FilterValue() string { return p.Name }

// ListPorts returns the serial ports a bootloader is likely attached to,
// sorted by name.
func ListPorts() ([]PortInfo, error) {
	ports, err := detectPorts()
	if err != nil {
		return nil, err
	}
	return filterPorts(runtime.GOOS, ports), nil
}

// detectPorts prefers the detailed enumerator and falls back to plain names
func detectPorts() ([]PortInfo, error) {
	details, err := enumerator.GetDetailedPortsList()
	if err == nil {
		ports := make([]PortInfo, 0, len(details))
		for _, d := range details {
			ports = append(ports, PortInfo{
				Name:         d.Name,
				IsUSB:        d.IsUSB,
				VID:          strings.ToLower(d.VID),
				PID:          strings.ToLower(d.PID),
				SerialNumber: d.SerialNumber,
				Product:      d.Product,
			})
		}
		return ports, nil
	}

	log.Debug().Err(err).Msg("detailed port enumeration failed, using plain port list")

	names, err := serial.GetPortsList()
	if err != nil {
		return nil, fmt.Errorf("failed to get serial ports list: %w", err)
	}

	ports := make([]PortInfo, 0, len(names))
	for _, name := range names {
		ports = append(ports, PortInfo{Name: name})
	}
	return ports, nil
}

// filterPorts keeps USB serial adapters and CDC-ACM devices for the given OS
func filterPorts(goos string, ports []PortInfo) []PortInfo {
	var prefixes []string
	switch goos {
	case "linux":
		prefixes = []string{"/dev/ttyUSB", "/dev/ttyACM"}
	case "darwin":
		prefixes = []string{"/dev/cu.usb", "/dev/tty.usb"}
	case "windows":
		prefixes = []string{"COM"}
	}

	filtered := make([]PortInfo, 0, len(ports))
	for _, p := range ports {
		if len(prefixes) == 0 || hasAnyPrefix(p.Name, prefixes) {
			filtered = append(filtered, p)
		}
	}

	sort.Slice(filtered, func(i, j int) bool {
		return filtered[i].Name < filtered[j].Name
	})
	return filtered
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, prefix := range prefixes {
		if strings.HasPrefix(s, prefix) {
			return true
		}
	}
	return false
}
