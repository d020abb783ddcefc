// Copyright 2026 The Espflash Authors
// SPDX-License-Identifier: Apache-2.0

package firmware

import "sort"

// Symbol is one function symbol from a firmware image.
type Symbol struct {
	// Name is the symbol name as it appears in the symbol table.
	Name string

	// Addr is the symbol's start address in the device's address space.
	Addr uint64

	// Size is the symbol's extent in bytes. Zero when the image does
	// not record a size; resolution then falls through to the nearest
	// preceding symbol regardless of extent.
	Size uint64
}

// SymbolTable maps device addresses to function symbols. Immutable
// after construction; safe for concurrent Resolve calls.
type SymbolTable struct {
	symbols []Symbol
}

// NewSymbolTable builds a table from the given symbols. The input is
// copied and sorted by address; the caller may reuse its slice.
func NewSymbolTable(symbols []Symbol) *SymbolTable {
	sorted := make([]Symbol, len(symbols))
	copy(sorted, symbols)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Addr < sorted[j].Addr })
	return &SymbolTable{symbols: sorted}
}

// Len returns the number of symbols in the table.
func (t *SymbolTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.symbols)
}

// Resolve returns the nearest symbol at or preceding addr and the
// offset of addr from the symbol's start. ok is false when the table
// is nil or empty, or when addr precedes the lowest known symbol.
func (t *SymbolTable) Resolve(addr uint64) (name string, offset uint64, ok bool) {
	if t == nil || len(t.symbols) == 0 {
		return "", 0, false
	}

	// Index of the first symbol strictly above addr; the candidate is
	// the one before it.
	index := sort.Search(len(t.symbols), func(i int) bool { return t.symbols[i].Addr > addr })
	if index == 0 {
		return "", 0, false
	}

	symbol := t.symbols[index-1]
	return symbol.Name, addr - symbol.Addr, true
}
