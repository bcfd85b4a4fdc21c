// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateArgs(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		bridge  string
		wantErr string
	}{
		{name: "interactive", args: nil},
		{name: "port and firmware", args: []string{"/dev/ttyUSB0", "V3.8.bin"}},
		{name: "bridge and firmware", args: []string{"V3.8.bin"}, bridge: "ws://bridge/serial"},
		{name: "interactive over bridge", args: nil, bridge: "ws://bridge/serial"},
		{name: "missing firmware", args: []string{"/dev/ttyUSB0"}, wantErr: "missing FIRMWARE_FILE"},
		{name: "port with bridge", args: []string{"COM3", "V3.8.bin"}, bridge: "ws://bridge/serial", wantErr: "PORT cannot be combined"},
		{name: "too many", args: []string{"a", "b", "c"}, wantErr: "at most 2 args"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateArgs(tt.args, tt.bridge)
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestConnectionTarget(t *testing.T) {
	saved := wsURL
	t.Cleanup(func() { wsURL = saved })

	wsURL = ""
	assert.Equal(t, "COM3", connectionTarget("COM3"))

	wsURL = "wss://bridge/serial"
	assert.Equal(t, "wss://bridge/serial", connectionTarget("COM3"))
}

func TestOpenConnection_NothingSpecified(t *testing.T) {
	saved := wsURL
	t.Cleanup(func() { wsURL = saved })
	wsURL = ""

	_, _, err := OpenConnection("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "either PORT or --url")
}
