// Copyright 2026 The Espflash Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides configuration loading for the espflash
// tools.
//
// Configuration is loaded from a single YAML file specified by:
//   - the --config flag passed to the command, or
//   - the ESPFLASH_CONFIG environment variable.
//
// There are no fallbacks or automatic discovery. This ensures
// deterministic, auditable configuration with no hidden overrides.
// When neither source names a file, Load returns the zero Config and
// command-line flags and built-in defaults apply.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// EnvVar is the environment variable naming the config file.
const EnvVar = "ESPFLASH_CONFIG"

// Config holds the monitor's file-based defaults. Command-line flags
// override every field.
type Config struct {
	// Port is the serial device path (e.g., /dev/ttyUSB0).
	Port string `yaml:"port"`

	// Baud is the monitor baud rate.
	Baud int `yaml:"baud"`

	// LogFormat selects the output decoding: "serial" or "trace".
	LogFormat string `yaml:"log_format"`

	// LogOutput is the session transcript path. Empty disables the
	// transcript.
	LogOutput string `yaml:"log_output"`
}

// Load reads the configuration file named by explicitPath, or by
// ESPFLASH_CONFIG when explicitPath is empty. Returns the zero Config
// when neither names a file. Unknown keys are an error: a typo in a
// config file should fail loudly, not silently apply defaults.
func Load(explicitPath string) (*Config, error) {
	path := explicitPath
	if path == "" {
		path = os.Getenv(EnvVar)
	}
	if path == "" {
		return &Config{}, nil
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening config file: %w", err)
	}
	defer file.Close()

	var cfg Config
	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return &cfg, nil
}
