// Copyright 2026 The Espflash Authors
// SPDX-License-Identifier: Apache-2.0

package monitor

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/fxamacker/cbor/v2"

	"github.com/gvaradarajan/espflash/lib/firmware"
)

// TraceLevel is the severity of a decoded trace record.
type TraceLevel uint8

const (
	LevelTrace TraceLevel = iota
	LevelDebug
	LevelInfo
	LevelWarn
	LevelError
)

func (l TraceLevel) String() string {
	switch l {
	case LevelTrace:
		return "TRACE"
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return fmt.Sprintf("LEVEL(%d)", uint8(l))
	}
}

// traceRecord is the wire form of one trace event: a CBOR map inside
// a COBS frame, frames delimited by zero bytes.
type traceRecord struct {
	Level   uint8  `cbor:"l"`
	Addr    uint64 `cbor:"a"`
	Message string `cbor:"m"`
}

// maxPendingFrame caps the reassembly buffer. Real trace records are
// tens of bytes; a stream that runs this long without a delimiter is
// not framed trace output (a plain-text device, line noise).
const maxPendingFrame = 4096

// traceParser reassembles zero-delimited COBS frames from the serial
// stream and decodes each into a trace record. Corrupt frames are
// dropped and counted rather than aborting the session; the device
// side can truncate a frame at any reset.
type traceParser struct {
	pending []byte
	table   *firmware.SymbolTable
	dropped int

	// overflow marks a frame that outgrew maxPendingFrame and was
	// already counted; its remaining bytes are discarded up to the
	// next delimiter. Tracked so the count is independent of how the
	// stream was chunked.
	overflow bool
}

func newTraceParser(image *firmware.Image) *traceParser {
	return &traceParser{table: image.Symbols()}
}

func (p *traceParser) Feed(chunk []byte, sink *ResolvedSink) error {
	p.pending = append(p.pending, chunk...)
	for {
		idx := bytes.IndexByte(p.pending, 0x00)
		if idx < 0 {
			if len(p.pending) > maxPendingFrame {
				if !p.overflow {
					p.dropped++
					p.overflow = true
				}
				p.pending = p.pending[:0]
			}
			return nil
		}
		frame := p.pending[:idx]
		p.pending = p.pending[idx+1:]
		if p.overflow {
			// Tail of an oversized frame, already counted.
			p.overflow = false
			continue
		}
		if len(frame) > maxPendingFrame {
			p.dropped++
			continue
		}
		if len(frame) == 0 {
			// Empty frames pad the stream around resets.
			continue
		}
		if err := p.emit(frame, sink); err != nil {
			return err
		}
	}
}

func (p *traceParser) emit(frame []byte, sink *ResolvedSink) error {
	payload, err := cobsDecode(frame)
	if err != nil {
		p.dropped++
		return nil
	}
	var rec traceRecord
	if err := cbor.Unmarshal(payload, &rec); err != nil {
		p.dropped++
		return nil
	}
	text := rec.Message
	if rec.Addr != 0 {
		if name, off, ok := p.table.Resolve(rec.Addr); ok {
			text = fmt.Sprintf("%s (%s+%#x)", rec.Message, name, off)
		} else {
			text = fmt.Sprintf("%s (%#x)", rec.Message, rec.Addr)
		}
	}
	return sink.WriteDecoded(TraceLevel(rec.Level), fmt.Sprintf("[%s] %s", TraceLevel(rec.Level), text))
}

// Dropped reports how many frames failed to decode since the session
// started.
func (p *traceParser) Dropped() int {
	return p.dropped
}

var errCOBSMalformed = errors.New("malformed COBS frame")

// cobsDecode reverses consistent-overhead byte stuffing. The input is
// one frame with the trailing zero delimiter already removed.
func cobsDecode(frame []byte) ([]byte, error) {
	out := make([]byte, 0, len(frame))
	for i := 0; i < len(frame); {
		code := int(frame[i])
		if code == 0 || i+code > len(frame) {
			return nil, errCOBSMalformed
		}
		out = append(out, frame[i+1:i+code]...)
		i += code
		if code < 0xff && i < len(frame) {
			out = append(out, 0x00)
		}
	}
	return out, nil
}

// cobsEncode stuffs payload bytes so the frame contains no zeros.
// Used by tests to build device-side frames.
func cobsEncode(payload []byte) []byte {
	out := make([]byte, 0, len(payload)+2)
	codeIdx := 0
	out = append(out, 0)
	code := byte(1)
	for _, b := range payload {
		if b == 0 {
			out[codeIdx] = code
			codeIdx = len(out)
			out = append(out, 0)
			code = 1
			continue
		}
		out = append(out, b)
		code++
		if code == 0xff {
			out[codeIdx] = code
			codeIdx = len(out)
			out = append(out, 0)
			code = 1
		}
	}
	out[codeIdx] = code
	return out
}
