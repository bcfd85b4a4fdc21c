// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"

	"github.com/Thermoquad/makcuflash/pkg/transport"
	"github.com/spf13/cobra"
)

var traceCmd = &cobra.Command{
	Use:   "trace <capture.cbor>",
	Short: "Display a recorded upload capture in human-readable format",
	Long: `Decode a capture file written by --capture and print every frame sent to
the device and every response read back, with timestamps relative to the
start of the capture.`,
	Args: cobra.ExactArgs(1),
	RunE: runTrace,
}

func init() {
	rootCmd.AddCommand(traceCmd)
}

func runTrace(cmd *cobra.Command, args []string) error {
	f, err := appFs.Open(args[0])
	if err != nil {
		return fmt.Errorf("failed to open capture: %w", err)
	}
	defer f.Close()

	records, err := transport.ReadCapture(f)

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Capture: %s\n\n", args[0])
	var tx, rx, failed int
	for _, rec := range records {
		fmt.Fprintln(out, transport.FormatRecord(rec))
		switch rec.Dir {
		case transport.DirTx:
			tx++
		case transport.DirRx:
			rx++
		}
		if rec.Err != "" {
			failed++
		}
	}
	fmt.Fprintf(out, "\n%d records: %d writes, %d reads, %d errors\n", len(records), tx, rx, failed)

	// Records before a corrupt tail are still printed
	return err
}
