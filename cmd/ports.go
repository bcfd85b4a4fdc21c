// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"

	"github.com/Thermoquad/makcuflash/pkg/transport"
	"github.com/spf13/cobra"
)

var portsCmd = &cobra.Command{
	Use:   "ports",
	Short: "List detected serial ports",
	Long: `List serial ports that look like a Makcu device.

USB serial adapters are shown with their VID:PID, product name and serial
number when the platform reports them.`,
	Args: cobra.NoArgs,
	RunE: runPorts,
}

func init() {
	rootCmd.AddCommand(portsCmd)
}

func runPorts(cmd *cobra.Command, args []string) error {
	ports, err := transport.ListPorts()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(ports) == 0 {
		fmt.Fprintln(out, "No serial ports detected.")
		return nil
	}

	fmt.Fprintf(out, "Detected %d serial port(s):\n", len(ports))
	for _, p := range ports {
		fmt.Fprintf(out, "  %-20s %s\n", p.Name, p.Description())
	}
	return nil
}
