// Copyright 2026 The Espflash Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/spf13/pflag"
)

func TestCommand_Execute_DispatchesToSubcommand(t *testing.T) {
	var called string

	root := &Command{
		Name: "espflash",
		Subcommands: []*Command{
			{
				Name: "version",
				Run: func(args []string) error {
					called = "version"
					return nil
				},
			},
			{
				Name: "monitor",
				Run: func(args []string) error {
					called = "monitor"
					return nil
				},
			},
		},
	}

	if err := root.Execute([]string{"monitor"}); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if called != "monitor" {
		t.Errorf("dispatched to %q, want %q", called, "monitor")
	}
}

func TestCommand_Execute_FlagParsing(t *testing.T) {
	var device string
	var positional string

	command := &Command{
		Name: "monitor",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("monitor", pflag.ContinueOnError)
			flagSet.StringVar(&device, "port", "/dev/ttyUSB0", "serial device")
			return flagSet
		},
		Run: func(args []string) error {
			if len(args) > 0 {
				positional = args[0]
			}
			return nil
		},
	}

	if err := command.Execute([]string{"--port", "/dev/ttyACM1", "extra"}); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if device != "/dev/ttyACM1" {
		t.Errorf("device = %q, want %q", device, "/dev/ttyACM1")
	}
	if positional != "extra" {
		t.Errorf("positional = %q, want %q", positional, "extra")
	}
}

func TestCommand_Execute_UnknownFlagSuggestion(t *testing.T) {
	command := &Command{
		Name: "monitor",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("monitor", pflag.ContinueOnError)
			flagSet.Int("baud", 115200, "line speed")
			flagSet.String("port", "", "serial device")
			return flagSet
		},
		Run: func(args []string) error { return nil },
	}

	err := command.Execute([]string{"--buad=9600"})
	if err == nil {
		t.Fatal("Execute() = nil, want error for unknown flag")
	}
	errStr := err.Error()
	if !strings.Contains(errStr, "did you mean --baud") {
		t.Errorf("error = %q, want suggestion for '--baud'", errStr)
	}
	if !strings.Contains(errStr, "buad") {
		t.Errorf("error = %q, should mention the bad flag", errStr)
	}
	if !strings.Contains(errStr, "--help") {
		t.Errorf("error = %q, should point to --help", errStr)
	}
}

func TestCommand_Execute_UnknownFlagNoSuggestion(t *testing.T) {
	command := &Command{
		Name: "monitor",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("monitor", pflag.ContinueOnError)
			flagSet.String("port", "", "serial device")
			return flagSet
		},
		Run: func(args []string) error { return nil },
	}

	err := command.Execute([]string{"--zzzzzzzzz"})
	if err == nil {
		t.Fatal("Execute() = nil, want error for unknown flag")
	}
	if strings.Contains(err.Error(), "did you mean") {
		t.Errorf("error = %q, should not suggest for distant flag", err.Error())
	}
	if !strings.Contains(err.Error(), "--help") {
		t.Errorf("error = %q, should point to --help", err.Error())
	}
}

func TestCommand_Execute_UnknownSubcommandSuggestion(t *testing.T) {
	root := &Command{
		Name: "espflash",
		Subcommands: []*Command{
			{Name: "monitor"},
			{Name: "version"},
		},
	}

	err := root.Execute([]string{"montor"})
	if err == nil {
		t.Fatal("Execute() = nil, want error for unknown subcommand")
	}
	if !strings.Contains(err.Error(), "did you mean \"monitor\"") {
		t.Errorf("error = %q, want suggestion for 'monitor'", err.Error())
	}
}

func TestCommand_Execute_HelpFlag(t *testing.T) {
	for _, helpArg := range []string{"-h", "--help", "help"} {
		t.Run(helpArg, func(t *testing.T) {
			root := &Command{
				Name:    "espflash",
				Summary: "Serial flasher and monitor",
				Subcommands: []*Command{
					{Name: "monitor", Summary: "Open the serial monitor"},
				},
			}

			if err := root.Execute([]string{helpArg}); err != nil {
				t.Errorf("Execute(%q) error: %v", helpArg, err)
			}
		})
	}
}

func TestCommand_Execute_NoArgsShowsHelp(t *testing.T) {
	root := &Command{
		Name: "espflash",
		Subcommands: []*Command{
			{Name: "monitor", Summary: "Open the serial monitor"},
		},
	}

	err := root.Execute([]string{})
	if err == nil {
		t.Fatal("Execute() = nil, want error for missing subcommand")
	}
	if !strings.Contains(err.Error(), "subcommand required") {
		t.Errorf("error = %q, want 'subcommand required'", err.Error())
	}
}

func TestCommand_PrintHelp(t *testing.T) {
	command := &Command{
		Name:        "espflash",
		Description: "Host-side serial monitor for espressif devices.",
		Subcommands: []*Command{
			{Name: "monitor", Summary: "Open the serial monitor"},
			{Name: "version", Summary: "Print version information"},
		},
		Examples: []Example{
			{
				Description: "Monitor the default port",
				Command:     "espflash monitor --port /dev/ttyUSB0",
			},
		},
	}

	var buffer bytes.Buffer
	command.PrintHelp(&buffer)
	output := buffer.String()

	for _, want := range []string{
		"Host-side serial monitor for espressif devices.",
		"Usage:",
		"espflash <command> [flags]",
		"Commands:",
		"monitor",
		"Open the serial monitor",
		"Examples:",
		"espflash monitor --port /dev/ttyUSB0",
		"Run 'espflash <command> --help'",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("help output missing %q\n\nFull output:\n%s", want, output)
		}
	}
}

func TestCommand_PrintHelp_WithFlags(t *testing.T) {
	command := &Command{
		Name:    "monitor",
		Summary: "Open the serial monitor",
		Usage:   "espflash monitor [flags]",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("monitor", pflag.ContinueOnError)
			flagSet.String("port", "", "serial device")
			flagSet.Int("baud", 115200, "line speed")
			return flagSet
		},
	}

	var buffer bytes.Buffer
	command.PrintHelp(&buffer)
	output := buffer.String()

	for _, want := range []string{
		"espflash monitor [flags]",
		"Flags:",
		"port",
		"baud",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("help output missing %q\n\nFull output:\n%s", want, output)
		}
	}
}

func TestCommand_FullName(t *testing.T) {
	root := &Command{Name: "espflash"}
	monitor := &Command{Name: "monitor", parent: root}

	if got := root.fullName(); got != "espflash" {
		t.Errorf("root.fullName() = %q, want %q", got, "espflash")
	}
	if got := monitor.fullName(); got != "espflash monitor" {
		t.Errorf("monitor.fullName() = %q, want %q", got, "espflash monitor")
	}
}
