// Copyright 2026 The Espflash Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "espflash.yaml")
	if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

func TestLoadExplicitPath(t *testing.T) {
	t.Parallel()
	path := writeConfig(t, "port: /dev/ttyUSB0\nbaud: 460800\nlog_format: trace\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "/dev/ttyUSB0" || cfg.Baud != 460800 || cfg.LogFormat != "trace" {
		t.Errorf("Load: got %+v", cfg)
	}
}

func TestLoadMissingFileIsError(t *testing.T) {
	t.Parallel()
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("Load of a missing explicit path succeeded")
	}
}

func TestLoadNoSourcesReturnsZero(t *testing.T) {
	// Not parallel: manipulates the process environment.
	t.Setenv(EnvVar, "")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if *cfg != (Config{}) {
		t.Errorf("Load with no sources: got %+v, want zero config", cfg)
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	path := writeConfig(t, "baud: 74880\n")
	t.Setenv(EnvVar, path)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Baud != 74880 {
		t.Errorf("Baud: got %d, want 74880", cfg.Baud)
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	t.Parallel()
	path := writeConfig(t, "prot: /dev/ttyUSB0\n")

	if _, err := Load(path); err == nil {
		t.Fatal("Load accepted a config with an unknown key")
	}
}
