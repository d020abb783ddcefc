// Copyright 2026 The Espflash Authors
// SPDX-License-Identifier: Apache-2.0

package monitor

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"regexp"

	"github.com/gvaradarajan/espflash/lib/clock"
)

const sessionTimestampLayout = "2006-01-02T15:04:05.000Z07:00"

var (
	sgrPattern = regexp.MustCompile(`\x1b\[[0-9;]*m`)

	// SGR sequences split across read chunks leave fragments like
	// ";49m" at the start of a chunk once the opening escape was
	// consumed by the previous append.
	residualPattern = regexp.MustCompile(`;[0-9]*m`)
)

// SessionLog appends timestamped, styling-stripped device output to a
// file. A nil SessionLog is valid and discards everything, so callers
// never branch on whether logging is enabled.
type SessionLog struct {
	file *os.File
	out  *bufio.Writer
	clk  clock.Clock
}

// OpenSessionLog opens path for appending. An empty path disables
// logging. Open failures are reported through the logger and disable
// logging rather than failing the session.
func OpenSessionLog(path string, clk clock.Clock, logger *slog.Logger) *SessionLog {
	if path == "" {
		return nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		logger.Warn("session log disabled", "path", path, "error", err)
		return nil
	}
	return &SessionLog{file: f, out: bufio.NewWriter(f), clk: clk}
}

// Append records one received chunk. Styling escape sequences are
// stripped so the file stays grep-friendly; the chunk is otherwise
// written as received, one timestamped entry per read.
func (l *SessionLog) Append(chunk []byte) error {
	if l == nil || len(chunk) == 0 {
		return nil
	}
	stamp := l.clk.Now().Format(sessionTimestampLayout)
	if _, err := fmt.Fprintf(l.out, "%s - %s\n", stamp, stripStyling(chunk)); err != nil {
		return err
	}
	return l.out.Flush()
}

// Close flushes and closes the underlying file.
func (l *SessionLog) Close() error {
	if l == nil {
		return nil
	}
	if err := l.out.Flush(); err != nil {
		l.file.Close()
		return err
	}
	return l.file.Close()
}

func stripStyling(chunk []byte) []byte {
	out := sgrPattern.ReplaceAll(chunk, nil)
	return residualPattern.ReplaceAll(out, nil)
}
