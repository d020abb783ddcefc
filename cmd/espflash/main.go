// Copyright 2026 The Espflash Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"os"

	"github.com/gvaradarajan/espflash/cmd/espflash/cli"
)

func main() {
	if err := run(); err != nil {
		// Commands that print their own output return an ExitError
		// with the desired exit code. Don't print a redundant
		// "error:" line for those.
		if coder, ok := err.(interface{ ExitCode() int }); ok {
			os.Exit(coder.ExitCode())
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	root := &cli.Command{
		Name:    "espflash",
		Summary: "Serial flasher and monitor for espressif devices",
		Description: "espflash bridges an operator's terminal and a device's UART:\n" +
			"device output is decoded and symbol-annotated on the way out,\n" +
			"keystrokes are translated and forwarded on the way in.",
		Subcommands: []*cli.Command{
			monitorCommand(),
			versionCommand(),
		},
	}
	return root.Execute(os.Args[1:])
}
