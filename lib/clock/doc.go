// Copyright 2026 The Espflash Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock provides an injectable time abstraction for testability.
//
// Production code accepts a Clock parameter instead of calling time.Now
// or time.Sleep directly. The monitor uses it for session log
// timestamps; the reset coordinator uses it for the signal-timing
// delays between DTR/RTS transitions. In production, Real() provides
// the standard library behavior. In tests, Fake() provides a
// deterministic clock whose Sleep returns immediately while recording
// the requested delay and advancing the fake time, so reset sequences
// and log timestamps can be asserted without wall-clock waits.
package clock
