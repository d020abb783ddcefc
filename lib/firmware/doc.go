// Copyright 2026 The Espflash Authors
// SPDX-License-Identifier: Apache-2.0

// Package firmware loads ELF firmware images for the serial monitor.
//
// The monitor never flashes an image; it only reads two things from
// it. [Image.Symbols] returns the [SymbolTable] used to turn backtrace
// addresses in device output into function names, and
// [Image.HasTraceMetadata] reports whether the image carries the
// structured-trace metadata section that marks it as emitting encoded
// trace frames instead of plain text.
//
// [SymbolTable.Resolve] maps an address to the nearest preceding
// function symbol and the offset from its start. The table is built
// once at load time, sorted by address, and read-only afterwards, so
// it is safe for concurrent lookups.
package firmware
