// Copyright 2026 The Espflash Authors
// SPDX-License-Identifier: Apache-2.0

package firmware

import (
	"sync"
	"testing"
)

func testTable() *SymbolTable {
	return NewSymbolTable([]Symbol{
		{Name: "app_main", Addr: 0x40080400, Size: 0x100},
		{Name: "vPortYield", Addr: 0x40080100, Size: 0x40},
		{Name: "esp_restart", Addr: 0x400d2000, Size: 0x80},
	})
}

func TestResolveExactAndOffset(t *testing.T) {
	t.Parallel()
	table := testTable()

	tests := []struct {
		name       string
		addr       uint64
		wantName   string
		wantOffset uint64
		wantOK     bool
	}{
		{"symbol start", 0x40080400, "app_main", 0, true},
		{"inside symbol", 0x40080424, "app_main", 0x24, true},
		{"between symbols falls to preceding", 0x40080380, "vPortYield", 0x280, true},
		{"highest symbol", 0x400d2010, "esp_restart", 0x10, true},
		{"beyond highest still resolves", 0x400fffff, "esp_restart", 0x2dfff, true},
		{"below lowest", 0x40080000, "", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			name, offset, ok := table.Resolve(tt.addr)
			if ok != tt.wantOK || name != tt.wantName || offset != tt.wantOffset {
				t.Errorf("Resolve(%#x) = (%q, %#x, %v), want (%q, %#x, %v)",
					tt.addr, name, offset, ok, tt.wantName, tt.wantOffset, tt.wantOK)
			}
		})
	}
}

func TestResolveNilAndEmptyTable(t *testing.T) {
	t.Parallel()

	var nilTable *SymbolTable
	if _, _, ok := nilTable.Resolve(0x40080400); ok {
		t.Error("nil table resolved an address")
	}

	empty := NewSymbolTable(nil)
	if _, _, ok := empty.Resolve(0x40080400); ok {
		t.Error("empty table resolved an address")
	}
}

func TestNewSymbolTableCopiesInput(t *testing.T) {
	t.Parallel()
	input := []Symbol{
		{Name: "b", Addr: 0x2000},
		{Name: "a", Addr: 0x1000},
	}
	table := NewSymbolTable(input)

	// Mutating the caller's slice must not affect the table.
	input[0].Name = "clobbered"
	input[1].Addr = 0x9999

	name, offset, ok := table.Resolve(0x2004)
	if !ok || name != "b" || offset != 4 {
		t.Errorf("Resolve(0x2004) = (%q, %#x, %v), want (\"b\", 0x4, true)", name, offset, ok)
	}
}

func TestResolveConcurrent(t *testing.T) {
	t.Parallel()
	table := testTable()

	var group sync.WaitGroup
	for range 8 {
		group.Add(1)
		go func() {
			defer group.Done()
			for range 1000 {
				if _, _, ok := table.Resolve(0x40080424); !ok {
					t.Error("concurrent Resolve failed")
					return
				}
			}
		}()
	}
	group.Wait()
}
