// Copyright 2026 The Espflash Authors
// SPDX-License-Identifier: Apache-2.0

package firmware

import (
	"bytes"
	"debug/elf"
	"errors"
	"fmt"
	"os"
)

// TraceMetadataSection is the ELF section that marks an image as
// emitting structured trace frames on its console UART instead of
// plain text. The build embeds it; the monitor only checks for its
// presence.
const TraceMetadataSection = ".espflash.trace"

// Image is a loaded firmware image. Read-only after Load.
type Image struct {
	symbols          *SymbolTable
	hasTraceMetadata bool
}

// NewImage constructs an image directly from a symbol table, for
// callers whose symbols come from somewhere other than an ELF file.
func NewImage(symbols *SymbolTable, hasTraceMetadata bool) *Image {
	return &Image{symbols: symbols, hasTraceMetadata: hasTraceMetadata}
}

// Load parses an ELF firmware image from memory. Images without a
// symbol table load successfully with an empty table; every Resolve
// against it reports not-ok.
func Load(data []byte) (*Image, error) {
	file, err := elf.NewFile(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parsing ELF image: %w", err)
	}
	defer file.Close()

	elfSymbols, err := file.Symbols()
	if err != nil && !errors.Is(err, elf.ErrNoSymbols) {
		return nil, fmt.Errorf("reading symbol table: %w", err)
	}

	symbols := make([]Symbol, 0, len(elfSymbols))
	for _, symbol := range elfSymbols {
		// Only defined function symbols are useful for backtrace
		// resolution; data symbols and undefined imports would produce
		// misleading matches.
		if elf.ST_TYPE(symbol.Info) != elf.STT_FUNC || symbol.Value == 0 {
			continue
		}
		symbols = append(symbols, Symbol{
			Name: symbol.Name,
			Addr: symbol.Value,
			Size: symbol.Size,
		})
	}

	return &Image{
		symbols:          NewSymbolTable(symbols),
		hasTraceMetadata: file.Section(TraceMetadataSection) != nil,
	}, nil
}

// LoadFile reads and parses an ELF firmware image from disk.
func LoadFile(path string) (*Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading firmware image: %w", err)
	}
	return Load(data)
}

// Symbols returns the image's symbol table. Nil-safe: a nil image has
// no symbols.
func (i *Image) Symbols() *SymbolTable {
	if i == nil {
		return nil
	}
	return i.symbols
}

// HasTraceMetadata reports whether the image carries the
// structured-trace metadata section.
func (i *Image) HasTraceMetadata() bool {
	return i != nil && i.hasTraceMetadata
}
