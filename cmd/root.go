// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"io"

	"github.com/Thermoquad/makcuflash/pkg/config"
	"github.com/Thermoquad/makcuflash/pkg/logging"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

var (
	// WebSocket bridge flags
	wsURL         string
	wsUsername    string
	wsNoSSLVerify bool

	// Output flags
	capturePath string
	logFile     string
	verbose     bool
	noTUI       bool

	configPath string
)

var (
	// appFs backs firmware, config and capture file access
	appFs afero.Fs = afero.NewOsFs()

	// cfg is loaded before any command runs
	cfg = config.Defaults()

	logCloser io.Closer
)

const usage = "makcuflash [PORT] [FIRMWARE_FILE]"

var rootCmd = &cobra.Command{
	Use:   usage,
	Short: "Makcu firmware uploader",
	Long: `makcuflash - Upload firmware to a Makcu device over its serial bootloader.

The upload enters the bootloader, erases flash, writes the image in 128-byte
pages, verifies a checksum and restarts the device. Any NACK or timeout aborts
the upload; nothing is retried.

Usage:
  makcuflash /dev/ttyUSB0 firmware_v3.8.bin
  makcuflash COM3 V3.8.bin
  makcuflash                          interactive port and firmware picker
  makcuflash --url ws://host/serial V3.8.bin

Connection modes:
  Serial:    PORT argument (115200 8N1)
  WebSocket: --url ws://host/path [--username user]

For WebSocket authentication, the password is read from the MAKCUFLASH_PASSWORD
environment variable, or prompted interactively if not set. The --password
flag is intentionally not provided to avoid leaking credentials in shell history.`,
	Version:           "1.0.0",
	Args:              cobra.MaximumNArgs(2),
	PersistentPreRunE: setup,
	RunE:              runRoot,
}

func init() {
	// WebSocket bridge flags
	rootCmd.PersistentFlags().StringVarP(&wsURL, "url", "u", "", "WebSocket serial bridge URL (ws:// or wss://)")
	rootCmd.PersistentFlags().StringVar(&wsUsername, "username", "", "Username for HTTP Basic auth")
	rootCmd.PersistentFlags().BoolVar(&wsNoSSLVerify, "no-ssl-verify", false, "Skip TLS certificate verification (wss:// only)")

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default <user config dir>/makcuflash/config.toml)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Also write logs to a rotating file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Debug logging")

	rootCmd.Flags().StringVar(&capturePath, "capture", "", "Record every channel write and read to a CBOR capture file")
	rootCmd.Flags().BoolVar(&noTUI, "no-tui", false, "Plain progress output even on a terminal")
}

// validateArgs accepts no arguments (interactive mode), PORT and
// FIRMWARE_FILE, or only FIRMWARE_FILE when flashing through --url.
func validateArgs(args []string, bridge string) error {
	switch len(args) {
	case 0:
		return nil
	case 1:
		if bridge != "" {
			return nil
		}
		return fmt.Errorf("missing FIRMWARE_FILE (usage: %s)", usage)
	case 2:
		if bridge != "" {
			return fmt.Errorf("PORT cannot be combined with --url")
		}
		return nil
	default:
		return fmt.Errorf("accepts at most 2 args, received %d", len(args))
	}
}

// setup loads the config file and initializes logging
func setup(cmd *cobra.Command, args []string) error {
	path := configPath
	if path == "" {
		var err error
		path, err = config.DefaultPath()
		if err != nil {
			log.Debug().Err(err).Msg("no user config dir")
		}
	}

	if path != "" {
		vals, err := config.Load(appFs, path)
		if err != nil {
			return err
		}
		cfg = vals
	}

	// Flags override the config file
	file := cfg.Logging.File
	if logFile != "" {
		file = logFile
	}

	closer, err := logging.Init(logging.Options{
		Level:   cfg.Logging.Level,
		Verbose: verbose,
		File:    file,
	})
	if err != nil {
		return err
	}
	logCloser = closer

	// An explicit PORT always means a local serial upload
	if wsURL == "" && len(args) < 2 {
		wsURL = cfg.Bridge.URL
	}
	if wsUsername == "" {
		wsUsername = cfg.Bridge.Username
	}

	return nil
}

func runRoot(cmd *cobra.Command, args []string) error {
	if err := validateArgs(args, wsURL); err != nil {
		return err
	}

	// Usage errors are past; runtime failures don't need the usage text
	cmd.SilenceUsage = true

	switch len(args) {
	case 0:
		return runInteractive()
	case 1:
		return runUpload("", args[0])
	default:
		return runUpload(args[0], args[1])
	}
}

// Execute runs the root command
func Execute() error {
	defer func() {
		if logCloser != nil {
			_ = logCloser.Close()
		}
	}()
	return rootCmd.Execute()
}
