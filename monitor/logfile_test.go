// Copyright 2026 The Espflash Authors
// SPDX-License-Identifier: Apache-2.0

package monitor

import (
	"bytes"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gvaradarajan/espflash/lib/clock"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestStripStyling(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", "hello world", "hello world"},
		{"color", "\x1b[31mERROR\x1b[0m", "ERROR"},
		{"multi param", "\x1b[1;32;40mok\x1b[m", "ok"},
		{"residual fragment", ";49mboot done", "boot done"},
		{"bare residual", ";machine", "achine"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := string(stripStyling([]byte(tt.input)))
			if got != tt.want {
				t.Errorf("stripStyling(%q) = %q, want %q", tt.input, got, tt.want)
			}

			// Stripping is idempotent.
			if again := string(stripStyling([]byte(got))); again != got {
				t.Errorf("not idempotent: %q then %q", got, again)
			}
		})
	}
}

func TestSessionLogAppend(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "session.log")
	clk := clock.Fake(time.Date(2026, 8, 26, 10, 30, 0, 0, time.UTC))
	log := OpenSessionLog(path, clk, discardLogger())
	if log == nil {
		t.Fatal("OpenSessionLog returned nil for a writable path")
	}

	if err := log.Append([]byte("\x1b[32mboot ok\x1b[0m")); err != nil {
		t.Fatalf("Append: %v", err)
	}
	clk.Advance(time.Second)
	if err := log.Append([]byte("second chunk")); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := log.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	lines := strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines %q, want 2", len(lines), lines)
	}
	if !strings.HasSuffix(lines[0], " - boot ok") {
		t.Errorf("line 0 = %q, want stripped chunk", lines[0])
	}
	if !strings.HasSuffix(lines[1], " - second chunk") {
		t.Errorf("line 1 = %q", lines[1])
	}

	// Every line starts with a parseable timestamp before " - ".
	for _, line := range lines {
		stamp, _, ok := strings.Cut(line, " - ")
		if !ok {
			t.Fatalf("line %q has no separator", line)
		}
		if _, err := time.Parse(sessionTimestampLayout, stamp); err != nil {
			t.Errorf("timestamp %q does not parse: %v", stamp, err)
		}
	}
}

func TestSessionLogTimestampAtAppendTime(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "session.log")
	start := time.Date(2026, 8, 26, 12, 0, 0, 0, time.UTC)
	clk := clock.Fake(start)
	log := OpenSessionLog(path, clk, discardLogger())
	defer log.Close()

	clk.Advance(5 * time.Minute)
	if err := log.Append([]byte("late chunk")); err != nil {
		t.Fatalf("Append: %v", err)
	}
	log.Close()

	data, _ := os.ReadFile(path)
	want := start.Add(5 * time.Minute).Format(sessionTimestampLayout)
	if !bytes.HasPrefix(data, []byte(want)) {
		t.Errorf("log %q does not start with append-time stamp %q", data, want)
	}
}

func TestSessionLogDisabled(t *testing.T) {
	t.Parallel()

	clk := clock.Fake(time.Unix(0, 0))
	if log := OpenSessionLog("", clk, discardLogger()); log != nil {
		t.Error("empty path should disable logging")
	}

	// Unopenable path: reported, not fatal.
	badPath := filepath.Join(t.TempDir(), "missing", "dir", "session.log")
	log := OpenSessionLog(badPath, clk, discardLogger())
	if log != nil {
		t.Error("unopenable path should disable logging")
	}

	// Nil receiver is usable.
	if err := log.Append([]byte("dropped")); err != nil {
		t.Errorf("nil Append: %v", err)
	}
	if err := log.Close(); err != nil {
		t.Errorf("nil Close: %v", err)
	}
}

func TestSessionLogSkipsEmptyChunks(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "session.log")
	log := OpenSessionLog(path, clock.Fake(time.Unix(0, 0)), discardLogger())
	if err := log.Append(nil); err != nil {
		t.Fatalf("Append: %v", err)
	}
	log.Close()

	data, _ := os.ReadFile(path)
	if len(data) != 0 {
		t.Errorf("empty chunk produced output %q", data)
	}
}
