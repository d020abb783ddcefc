// Copyright 2026 The Espflash Authors
// SPDX-License-Identifier: Apache-2.0

package monitor

import "unicode/utf8"

// Key identifies a terminal key. KeyRune carries the character in
// KeyEvent.Rune; every other value names a special key.
type Key uint8

const (
	KeyRune Key = iota
	KeyBackspace
	KeyEnter
	KeyTab
	KeyEscape
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeyHome
	KeyEnd
	KeyDelete
	KeyInsert
	KeyPageUp
	KeyPageDown
)

// Modifier is a bit set of held modifier keys.
type Modifier uint8

const (
	ModCtrl Modifier = 1 << iota
	ModAlt
)

// ModNone is the empty modifier set.
const ModNone Modifier = 0

// KeyEvent is one key press. Produced per keyboard poll and consumed
// immediately; never stored.
type KeyEvent struct {
	Key  Key
	Rune rune
	Mod  Modifier
}

// IsCtrl reports whether the event is Control plus the given letter.
func (e KeyEvent) IsCtrl(letter rune) bool {
	return e.Key == KeyRune && e.Mod&ModCtrl != 0 && e.Rune == letter
}

// namedKeySequences maps special keys to the sequences the device's
// line editor expects. These match the MicroPython REPL's input
// handling:
//
//	Up      ESC [A
//	Down    ESC [B
//	Right   ESC [C
//	Left    ESC [D
//	Home    ESC [H  or ESC [1~
//	End     ESC [F  or ESC [4~
//	Del     ESC [3~
//	Insert  ESC [2~
var namedKeySequences = map[Key][]byte{
	KeyBackspace: {0x08},
	KeyEnter:     []byte("\r"),
	KeyTab:       {0x09},
	KeyEscape:    {0x1b},
	KeyUp:        []byte("\x1b[A"),
	KeyDown:      []byte("\x1b[B"),
	KeyRight:     []byte("\x1b[C"),
	KeyLeft:      []byte("\x1b[D"),
	KeyHome:      []byte("\x1b[H"),
	KeyEnd:       []byte("\x1b[F"),
	KeyDelete:    []byte("\x1b[3~"),
	KeyInsert:    []byte("\x1b[2~"),
}

// Translate converts a key event into the bytes to send over the
// serial connection. Returns false for named keys with no device
// binding (PageUp, PageDown). Pure: identical input always yields
// identical output, and the returned slice is the caller's to keep.
func Translate(event KeyEvent) ([]byte, bool) {
	if event.Key != KeyRune {
		sequence, ok := namedKeySequences[event.Key]
		if !ok {
			return nil, false
		}
		out := make([]byte, len(sequence))
		copy(out, sequence)
		return out, true
	}

	r := event.Rune
	if event.Mod&ModCtrl != 0 {
		switch {
		case r >= 'a' && r <= 'z' || r == ' ':
			return []byte{byte(r) & 0x1f}, true
		case r >= '4' && r <= '7':
			// Terminal emulators report Ctrl-4 through Ctrl-7 for the
			// control codes 0x1c through 0x1f: an offset run, not the
			// usual 0x1f mask.
			return []byte{(byte(r) + 8) & 0x1f}, true
		}
	}

	length := utf8.RuneLen(r)
	if length < 0 {
		// Surrogates and out-of-range values have no UTF-8 encoding;
		// never forward garbage to the device.
		return nil, false
	}
	out := make([]byte, length)
	utf8.EncodeRune(out, r)
	return out, true
}
