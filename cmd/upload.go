// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"

	"github.com/Thermoquad/makcuflash/pkg/firmware"
	"github.com/Thermoquad/makcuflash/pkg/flasher"
	"github.com/Thermoquad/makcuflash/pkg/transport"
	"github.com/rs/zerolog/log"
	"golang.org/x/term"
)

const rule = "=================================================="

func printBanner(target, firmwarePath string) {
	fmt.Println(rule)
	fmt.Println("          MakcuFlasher - Firmware Uploader")
	fmt.Println(rule)
	fmt.Printf("Target:         %s\n", target)
	fmt.Printf("Firmware File:  %s\n", firmwarePath)
	fmt.Println(rule)
	fmt.Println()
}

func printWarning() {
	stars := strings.Repeat("*", len(rule))
	fmt.Println(stars)
	fmt.Println("  WARNING: Do not disconnect the device during")
	fmt.Println("  the firmware upload process!")
	fmt.Println(stars)
	fmt.Println()
}

func printResult(err error) {
	fmt.Println()
	fmt.Println(rule)
	if err == nil {
		fmt.Println("  Firmware upload successful!")
	} else {
		fmt.Println("  Firmware upload failed!")
		fmt.Printf("  %v\n", err)
	}
	fmt.Println(rule)
}

// printPermissionHint explains serial port access on Unix systems
func printPermissionHint(err error) {
	if runtime.GOOS == "windows" {
		return
	}
	if transport.IsPermissionDenied(err) {
		fmt.Fprintln(os.Stderr, "Permission denied opening the serial port.")
	}
	if runtime.GOOS == "linux" {
		fmt.Fprintln(os.Stderr, "On Linux, you may need to:")
		fmt.Fprintln(os.Stderr, "  1. Add your user to the dialout group: sudo usermod -a -G dialout $USER")
		fmt.Fprintln(os.Stderr, "  2. Log out and log back in")
		fmt.Fprintln(os.Stderr, "  3. Or run with sudo (not recommended)")
	}
}

// printNoPortsHint is shown when interactive mode finds no serial port
func printNoPortsHint(w io.Writer, goos string) {
	fmt.Fprintln(w, "No serial ports detected!")
	fmt.Fprintln(w, "Please connect your Makcu device and try again.")
	if goos == "windows" {
		return
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "On Linux, check: ls /dev/ttyUSB* /dev/ttyACM*")
	fmt.Fprintln(w, "You may need permissions: sudo usermod -a -G dialout $USER")
}

func runUpload(portName, firmwarePath string) error {
	printBanner(connectionTarget(portName), firmwarePath)

	image, err := firmware.Load(appFs, firmwarePath)
	if err != nil {
		return err
	}
	fmt.Printf("Loaded %d bytes from %s\n\n", len(image), firmwarePath)

	conn, connInfo, err := OpenConnection(portName)
	if err != nil {
		if wsURL == "" {
			printPermissionHint(err)
		}
		return err
	}
	defer conn.Close()

	fmt.Printf("Connection: %s\n\n", connInfo)

	var ch flasher.Channel = conn
	var recorder *transport.Recorder
	if capturePath != "" {
		f, err := appFs.Create(capturePath)
		if err != nil {
			return fmt.Errorf("failed to create capture file: %w", err)
		}
		defer f.Close()

		recorder = transport.NewRecorder(conn, f, nil)
		ch = recorder
	}

	printWarning()

	var stats flasher.Statistics
	if useTUI() {
		stats, err = uploadWithTUI(ch, image)
	} else {
		stats, err = uploadPlain(os.Stdout, ch, image)
	}

	if recorder != nil {
		if cerr := recorder.Err(); cerr != nil {
			log.Warn().Err(cerr).Str("file", capturePath).Msg("capture incomplete")
		} else {
			fmt.Printf("Capture written to %s\n", capturePath)
		}
	}

	printResult(err)
	fmt.Println()
	fmt.Print(stats.String())

	return err
}

// useTUI reports whether stdout is a terminal that can show the progress bar
func useTUI() bool {
	if noTUI {
		return false
	}
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// uploadPlain prints one progress line per acknowledged page
func uploadPlain(out io.Writer, ch flasher.Channel, image []byte, opts ...flasher.Option) (flasher.Statistics, error) {
	last := -1
	opts = append([]flasher.Option{flasher.WithProgress(func(p flasher.Progress) {
		if p.State != flasher.StateWritingPages || p.Page == last {
			return
		}
		last = p.Page
		fmt.Fprintf(out, "\rProgress: %d/%d pages", p.Page, p.TotalPages)
		if p.Page == p.TotalPages {
			fmt.Fprintln(out)
		}
	})}, opts...)
	uploader := flasher.New(ch, opts...)

	err := uploader.Upload(image)
	if last >= 0 && last < uploader.Statistics().TotalPages {
		fmt.Fprintln(out)
	}
	return uploader.Statistics(), err
}
