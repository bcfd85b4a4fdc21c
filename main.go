// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad
//
// makcuflash - Makcu Firmware Uploader
//
// A CLI tool for uploading firmware images to a Makcu device through its
// serial bootloader.

package main

import (
	"os"

	"github.com/Thermoquad/makcuflash/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
