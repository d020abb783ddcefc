// Copyright 2026 The Espflash Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"

	"github.com/gvaradarajan/espflash/cmd/espflash/cli"
	"github.com/gvaradarajan/espflash/lib/version"
)

func versionCommand() *cli.Command {
	return &cli.Command{
		Name:    "version",
		Summary: "Print version information",
		Run: func(args []string) error {
			fmt.Printf("espflash %s\n", version.Full())
			return nil
		},
	}
}
