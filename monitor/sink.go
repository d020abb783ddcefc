// Copyright 2026 The Espflash Authors
// SPDX-License-Identifier: Apache-2.0

package monitor

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"regexp"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/muesli/termenv"

	"github.com/gvaradarajan/espflash/lib/firmware"
)

// addressPattern matches candidate code addresses in device output:
// backtraces and panic dumps print them as 0x-prefixed 8-digit hex.
var addressPattern = regexp.MustCompile(`0x[0-9a-fA-F]{8}`)

// maxPendingLine caps the completed-line buffer used for address
// annotation. A device stuck emitting an unterminated line loses
// annotation for that line, never passthrough.
const maxPendingLine = 4096

// ResolvedSink wraps the terminal writer with the optional symbol
// table. Bytes written pass through unchanged; whenever a line
// completes, the stripped line is scanned for code addresses and each
// one that resolves gets an annotation line after it. Output produced
// depends only on the cumulative byte stream, never on how writes were
// chunked.
type ResolvedSink struct {
	writer *bufio.Writer
	table  *firmware.SymbolTable
	line   []byte

	// lineOverflow marks a line that outgrew maxPendingLine; it is
	// passed through but not annotated. Tracked per line so output is
	// independent of write chunking.
	lineOverflow bool

	annotationStyle lipgloss.Style
	errorStyle      lipgloss.Style
	warnStyle       lipgloss.Style
	faintStyle      lipgloss.Style
}

// NewResolvedSink wraps w. The table may be nil, in which case no
// annotations are produced.
func NewResolvedSink(w io.Writer, table *firmware.SymbolTable) *ResolvedSink {
	// The session runs in terminal raw mode, where the renderer's
	// profile query would hang on the real terminal; force plain ANSI.
	renderer := lipgloss.NewRenderer(w, termenv.WithProfile(termenv.ANSI))
	return &ResolvedSink{
		writer:          bufio.NewWriter(w),
		table:           table,
		annotationStyle: renderer.NewStyle().Foreground(lipgloss.Color("3")),
		errorStyle:      renderer.NewStyle().Foreground(lipgloss.Color("1")).Bold(true),
		warnStyle:       renderer.NewStyle().Foreground(lipgloss.Color("3")),
		faintStyle:      renderer.NewStyle().Faint(true),
	}
}

// Write passes p through to the terminal and annotates each completed
// line. Implements io.Writer.
func (s *ResolvedSink) Write(p []byte) (int, error) {
	total := len(p)
	for len(p) > 0 {
		newline := bytes.IndexByte(p, '\n')
		if newline < 0 {
			if _, err := s.writer.Write(p); err != nil {
				return total - len(p), err
			}
			s.bufferLine(p)
			break
		}

		if _, err := s.writer.Write(p[:newline+1]); err != nil {
			return total - len(p), err
		}
		s.bufferLine(p[:newline])
		if err := s.annotateLine(); err != nil {
			return total - len(p), err
		}
		s.line = s.line[:0]
		s.lineOverflow = false
		p = p[newline+1:]
	}
	return total, nil
}

// bufferLine accumulates bytes of the current line for annotation,
// discarding the line once it outgrows the cap.
func (s *ResolvedSink) bufferLine(p []byte) {
	if s.lineOverflow {
		return
	}
	s.line = append(s.line, p...)
	if len(s.line) > maxPendingLine {
		s.line = s.line[:0]
		s.lineOverflow = true
	}
}

// annotateLine resolves code addresses on the just-completed line and
// writes one annotation line per hit.
func (s *ResolvedSink) annotateLine() error {
	if s.table.Len() == 0 || s.lineOverflow {
		return nil
	}

	visible := ansi.Strip(string(bytes.TrimSuffix(s.line, []byte("\r"))))
	for _, match := range addressPattern.FindAllString(visible, -1) {
		addr, err := strconv.ParseUint(match[2:], 16, 64)
		if err != nil {
			continue
		}
		name, offset, ok := s.table.Resolve(addr)
		if !ok {
			continue
		}

		annotation := fmt.Sprintf("%s - %s+%#x", match, name, offset)
		if _, err := s.writer.WriteString(s.annotationStyle.Render(annotation) + "\r\n"); err != nil {
			return err
		}
	}
	return nil
}

// WriteDecoded writes one already-decoded trace record line, styled by
// severity. Decoded lines bypass address annotation: the trace parser
// resolves its own addresses.
func (s *ResolvedSink) WriteDecoded(level TraceLevel, text string) error {
	_, err := s.writer.WriteString(s.styleFor(level).Render(text) + "\r\n")
	return err
}

func (s *ResolvedSink) styleFor(level TraceLevel) lipgloss.Style {
	switch level {
	case LevelError:
		return s.errorStyle
	case LevelWarn:
		return s.warnStyle
	case LevelTrace, LevelDebug:
		return s.faintStyle
	default:
		return lipgloss.NewStyle()
	}
}

// Flush drains buffered output to the terminal.
func (s *ResolvedSink) Flush() error {
	return s.writer.Flush()
}
