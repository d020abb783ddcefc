// Copyright 2026 The Espflash Authors
// SPDX-License-Identifier: Apache-2.0

package monitor

import (
	"errors"
	"fmt"

	"github.com/gvaradarajan/espflash/lib/firmware"
)

// LogFormat selects how device output is decoded. Fixed at session
// start.
type LogFormat string

const (
	// LogFormatSerial passes device bytes through as text, annotating
	// backtrace addresses when symbols are available.
	LogFormatSerial LogFormat = "serial"

	// LogFormatTrace decodes the framed trace records emitted by
	// images built with structured tracing. Requires the firmware
	// image.
	LogFormatTrace LogFormat = "trace"
)

// ErrTraceRequiresImage is returned when the trace format is selected
// without a firmware image to decode against.
var ErrTraceRequiresImage = errors.New("trace log format requires a firmware image")

// ParseLogFormat parses a user-supplied format name.
func ParseLogFormat(name string) (LogFormat, error) {
	switch LogFormat(name) {
	case LogFormatSerial:
		return LogFormatSerial, nil
	case LogFormatTrace:
		return LogFormatTrace, nil
	default:
		return "", fmt.Errorf("unknown log format %q (expected %q or %q)",
			name, LogFormatSerial, LogFormatTrace)
	}
}

// OutputParser consumes raw device bytes and emits resolved text to
// the sink. Feed may be called with arbitrarily split chunks; parsers
// carry partial state across calls so output is identical to feeding
// the concatenated stream once.
type OutputParser interface {
	Feed(chunk []byte, sink *ResolvedSink) error
}

// NewParser constructs the parser for the given format. The image may
// be nil for LogFormatSerial; LogFormatTrace fails without one.
func NewParser(format LogFormat, image *firmware.Image) (OutputParser, error) {
	switch format {
	case LogFormatSerial:
		return serialParser{}, nil
	case LogFormatTrace:
		if image == nil {
			return nil, ErrTraceRequiresImage
		}
		return newTraceParser(image), nil
	default:
		return nil, fmt.Errorf("unknown log format %q", format)
	}
}

// serialParser is the passthrough variant: all decoding state (line
// assembly for annotation) lives in the sink.
type serialParser struct{}

func (serialParser) Feed(chunk []byte, sink *ResolvedSink) error {
	_, err := sink.Write(chunk)
	return err
}
