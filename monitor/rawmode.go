// Copyright 2026 The Espflash Authors
// SPDX-License-Identifier: Apache-2.0

package monitor

import (
	"log/slog"
	"os"
	"sync"

	"golang.org/x/term"
)

// RawModeGuard restores the terminal to its pre-session state.
// Restore is safe to call more than once; only the first call acts,
// so both the normal exit path and deferred cleanup can call it.
type RawModeGuard struct {
	restore func() error
	once    sync.Once
}

// EnterRawMode switches stdin to raw mode so keystrokes arrive
// unbuffered and unechoed.
func EnterRawMode() (*RawModeGuard, error) {
	fd := int(os.Stdin.Fd())
	state, err := term.MakeRaw(fd)
	if err != nil {
		return nil, err
	}
	return &RawModeGuard{restore: func() error {
		return term.Restore(fd, state)
	}}, nil
}

// Restore puts the terminal back. Failures are logged, not returned:
// at this point the session is already ending and there is nothing
// the caller can do about a broken terminal beyond telling the user.
func (g *RawModeGuard) Restore(logger *slog.Logger) {
	g.once.Do(func() {
		if err := g.restore(); err != nil {
			logger.Error("restoring terminal state", "error", err)
		}
	})
}
