// Copyright 2026 The Espflash Authors
// SPDX-License-Identifier: Apache-2.0

package monitor

import (
	"fmt"
	"os"
	"unicode/utf8"

	"golang.org/x/sys/unix"
)

// KeySource yields terminal key events without blocking. Poll returns
// the next available event, or ok=false when no key is pending.
type KeySource interface {
	Poll() (event KeyEvent, ok bool, err error)
}

// StdinKeys returns a KeySource that polls the process's stdin. The
// terminal must be in raw mode for events to arrive unbuffered.
func StdinKeys() *TerminalKeys {
	return &TerminalKeys{fd: int(os.Stdin.Fd())}
}

// TerminalKeys decodes raw-mode stdin bytes into key events. Escape
// sequences split across polls are buffered until complete; a lone ESC
// byte is reported as the Escape key once a follow-up poll finds no
// continuation.
type TerminalKeys struct {
	fd      int
	pending []byte
	queue   []KeyEvent
}

// Poll implements KeySource with a zero-timeout poll(2), so it never
// blocks the session loop.
func (k *TerminalKeys) Poll() (KeyEvent, bool, error) {
	if len(k.queue) > 0 {
		event := k.queue[0]
		k.queue = k.queue[1:]
		return event, true, nil
	}

	descriptors := []unix.PollFd{{Fd: int32(k.fd), Events: unix.POLLIN}}
	ready, err := unix.Poll(descriptors, 0)
	if err != nil {
		if err == unix.EINTR {
			return KeyEvent{}, false, nil
		}
		return KeyEvent{}, false, fmt.Errorf("polling stdin: %w", err)
	}

	sawInput := false
	if ready > 0 && descriptors[0].Revents&unix.POLLIN != 0 {
		buffer := make([]byte, 64)
		n, err := unix.Read(k.fd, buffer)
		if err != nil && err != unix.EAGAIN && err != unix.EINTR {
			return KeyEvent{}, false, fmt.Errorf("reading stdin: %w", err)
		}
		if n > 0 {
			k.pending = append(k.pending, buffer[:n]...)
			sawInput = true
		}
	}

	// Flush ambiguous prefixes (a lone ESC, a partial UTF-8 rune) only
	// when this poll brought no new bytes: the continuation, if any,
	// would have arrived with the sequence.
	k.queue, k.pending = decodeKeyBytes(k.pending, !sawInput)

	if len(k.queue) == 0 {
		return KeyEvent{}, false, nil
	}
	event := k.queue[0]
	k.queue = k.queue[1:]
	return event, true, nil
}

// decodeKeyBytes parses raw terminal input into key events. remaining
// holds an incomplete trailing sequence to retry with more input; when
// flush is true, ambiguous prefixes are resolved immediately (a lone
// ESC becomes the Escape key) instead of being held back.
func decodeKeyBytes(data []byte, flush bool) (events []KeyEvent, remaining []byte) {
	for len(data) > 0 {
		event, consumed, complete := decodeOneKey(data, flush)
		if !complete {
			return events, data
		}
		if consumed == 0 {
			// Defensive: never loop without progress.
			return events, nil
		}
		if event != nil {
			events = append(events, *event)
		}
		data = data[consumed:]
	}
	return events, nil
}

// decodeOneKey decodes the first key in data. A nil event with
// complete=true means the bytes were consumed but produce no key
// (unrecognized CSI sequence).
func decodeOneKey(data []byte, flush bool) (event *KeyEvent, consumed int, complete bool) {
	b := data[0]

	if b == 0x1b {
		return decodeEscape(data, flush)
	}

	// Control bytes below 0x20, and DEL. Enter, Tab, and Backspace are
	// reported as named keys; the rest as Control chords mirroring
	// Translate's encoding.
	switch {
	case b == '\r':
		return &KeyEvent{Key: KeyEnter}, 1, true
	case b == '\t':
		return &KeyEvent{Key: KeyTab}, 1, true
	case b == 0x08 || b == 0x7f:
		return &KeyEvent{Key: KeyBackspace}, 1, true
	case b == 0x00:
		return &KeyEvent{Key: KeyRune, Rune: ' ', Mod: ModCtrl}, 1, true
	case b < 0x1b:
		return &KeyEvent{Key: KeyRune, Rune: rune('a' + b - 1), Mod: ModCtrl}, 1, true
	case b >= 0x1c && b < 0x20:
		return &KeyEvent{Key: KeyRune, Rune: rune('4' + b - 0x1c), Mod: ModCtrl}, 1, true
	}

	r, size := utf8.DecodeRune(data)
	if r == utf8.RuneError && size <= 1 {
		if !utf8.FullRune(data) && !flush {
			return nil, 0, false // partial rune, wait for the rest
		}
		// Invalid byte: swallow it rather than forwarding garbage.
		return nil, 1, true
	}
	return &KeyEvent{Key: KeyRune, Rune: r}, size, true
}

// csiKeys maps CSI final letters (ESC [ X) to keys.
var csiKeys = map[byte]Key{
	'A': KeyUp,
	'B': KeyDown,
	'C': KeyRight,
	'D': KeyLeft,
	'H': KeyHome,
	'F': KeyEnd,
}

// csiTildeKeys maps CSI numeric codes (ESC [ n ~) to keys.
var csiTildeKeys = map[string]Key{
	"1": KeyHome,
	"2": KeyInsert,
	"3": KeyDelete,
	"4": KeyEnd,
	"5": KeyPageUp,
	"6": KeyPageDown,
}

// decodeEscape decodes sequences starting with ESC: CSI (ESC [ ...),
// SS3 (ESC O X), Alt-modified characters, and the bare Escape key.
func decodeEscape(data []byte, flush bool) (*KeyEvent, int, bool) {
	if len(data) == 1 {
		if flush {
			return &KeyEvent{Key: KeyEscape}, 1, true
		}
		return nil, 0, false
	}

	switch data[1] {
	case '[':
		return decodeCSI(data, flush)
	case 'O':
		// SS3: application-mode cursor keys.
		if len(data) < 3 {
			if flush {
				return &KeyEvent{Key: KeyEscape}, 1, true
			}
			return nil, 0, false
		}
		if key, ok := csiKeys[data[2]]; ok {
			return &KeyEvent{Key: key}, 3, true
		}
		return nil, 3, true
	default:
		// ESC plus a printable byte: Alt chord.
		r, size := utf8.DecodeRune(data[1:])
		if r == utf8.RuneError && size <= 1 {
			if !utf8.FullRune(data[1:]) && !flush {
				return nil, 0, false
			}
			return &KeyEvent{Key: KeyEscape}, 1, true
		}
		return &KeyEvent{Key: KeyRune, Rune: r, Mod: ModAlt}, 1 + size, true
	}
}

// decodeCSI decodes ESC [ <parameters> <final>. Parameters are digits
// and semicolons; the final byte is in 0x40..0x7e.
func decodeCSI(data []byte, flush bool) (*KeyEvent, int, bool) {
	for i := 2; i < len(data); i++ {
		b := data[i]
		if b >= '0' && b <= '9' || b == ';' {
			continue
		}
		if b < 0x40 || b > 0x7e {
			// Malformed sequence: drop the introducer and rescan.
			return nil, i, true
		}

		length := i + 1
		if b == '~' {
			if key, ok := csiTildeKeys[string(data[2:i])]; ok {
				return &KeyEvent{Key: key}, length, true
			}
			return nil, length, true
		}
		if key, ok := csiKeys[b]; ok && i == 2 {
			return &KeyEvent{Key: key}, length, true
		}
		return nil, length, true
	}

	if flush {
		// Incomplete CSI with no continuation coming: treat the ESC as
		// the Escape key and let the rest rescan as literal bytes.
		return &KeyEvent{Key: KeyEscape}, 1, true
	}
	return nil, 0, false
}
