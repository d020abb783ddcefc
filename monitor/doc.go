// Copyright 2026 The Espflash Authors
// SPDX-License-Identifier: Apache-2.0

// Package monitor implements the interactive serial monitor: the
// bridge between an operator's terminal and a device's UART console.
//
// [Run] owns the session: it puts the terminal into raw mode behind a
// [RawModeGuard], then drives a single-threaded polling loop with two
// bounded suspension points per iteration — a serial read with a short
// timeout and a zero-wait keyboard poll — so neither side can starve
// the other and worst-case latency is bounded by the serial timeout.
// Unlike monitors that buffer until a newline, received bytes are
// displayed immediately.
//
// Device output flows through an [OutputParser] selected by
// [LogFormat]: [LogFormatSerial] passes bytes through unchanged while
// the [ResolvedSink] annotates backtrace addresses on completed lines
// with symbol names from the firmware image, and [LogFormatTrace]
// decodes the compact framed trace records some images emit instead of
// text. The same raw window is appended, styling stripped and
// timestamped, to an optional session transcript ([SessionLog]).
//
// Keyboard input is translated to the byte sequences the device's
// line editor expects ([Translate]), with two chords intercepted:
// Ctrl+C ends the session and Ctrl+R resets the device in place.
package monitor
