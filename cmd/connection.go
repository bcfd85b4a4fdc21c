// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"syscall"

	"github.com/Thermoquad/makcuflash/pkg/flasher"
	"github.com/Thermoquad/makcuflash/pkg/transport"
	"golang.org/x/term"
)

// PasswordEnv names the environment variable holding the bridge password
const PasswordEnv = "MAKCUFLASH_PASSWORD"

// Connection is an open channel to the bootloader, serial or WebSocket
type Connection interface {
	flasher.Channel
	io.Closer
	fmt.Stringer
}

// GetPassword retrieves password from environment or prompts user
func GetPassword() (string, error) {
	// First check environment variable
	if pw := os.Getenv(PasswordEnv); pw != "" {
		return pw, nil
	}

	// Prompt user for password (hide input)
	fmt.Fprint(os.Stderr, "Password: ")

	// Read password without echo
	passwordBytes, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		// Fallback to regular input if terminal functions fail
		reader := bufio.NewReader(os.Stdin)
		password, err := reader.ReadString('\n')
		if err != nil {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		fmt.Fprintln(os.Stderr) // newline after password
		return strings.TrimSpace(password), nil
	}

	fmt.Fprintln(os.Stderr) // newline after password
	return string(passwordBytes), nil
}

// OpenConnection opens the WebSocket bridge when --url is set, otherwise the
// serial port
func OpenConnection(portName string) (Connection, string, error) {
	if wsURL != "" {
		// WebSocket mode
		password := ""
		if wsUsername != "" {
			var err error
			password, err = GetPassword()
			if err != nil {
				return nil, "", err
			}
		}

		conn, err := transport.DialWebSocket(wsURL, wsUsername, password, wsNoSSLVerify)
		if err != nil {
			return nil, "", err
		}

		return conn, conn.String(), nil
	}

	if portName != "" {
		// Serial mode
		conn, err := transport.OpenSerial(portName)
		if err != nil {
			return nil, "", err
		}

		return conn, conn.String(), nil
	}

	return nil, "", errors.New("either PORT or --url must be specified")
}

// connectionTarget describes where an upload goes before anything is opened
func connectionTarget(portName string) string {
	if wsURL != "" {
		return wsURL
	}
	return portName
}
