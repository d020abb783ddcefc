// Copyright 2026 The Espflash Authors
// SPDX-License-Identifier: Apache-2.0

package clock

import (
	"testing"
	"time"
)

func TestFakeNowIsStable(t *testing.T) {
	t.Parallel()
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c := Fake(start)

	if !c.Now().Equal(start) {
		t.Errorf("Now: got %v, want %v", c.Now(), start)
	}
	if !c.Now().Equal(start) {
		t.Errorf("Now moved without Sleep or Advance: got %v", c.Now())
	}
}

func TestFakeSleepAdvancesAndRecords(t *testing.T) {
	t.Parallel()
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c := Fake(start)

	c.Sleep(100 * time.Millisecond)
	c.Sleep(50 * time.Millisecond)

	want := start.Add(150 * time.Millisecond)
	if !c.Now().Equal(want) {
		t.Errorf("Now after sleeps: got %v, want %v", c.Now(), want)
	}

	sleeps := c.Sleeps()
	if len(sleeps) != 2 || sleeps[0] != 100*time.Millisecond || sleeps[1] != 50*time.Millisecond {
		t.Errorf("Sleeps: got %v, want [100ms 50ms]", sleeps)
	}
}

func TestFakeAdvanceDoesNotRecord(t *testing.T) {
	t.Parallel()
	c := Fake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))

	c.Advance(time.Second)

	if len(c.Sleeps()) != 0 {
		t.Errorf("Advance recorded a sleep: %v", c.Sleeps())
	}
	if got := c.Now().Second(); got != 1 {
		t.Errorf("Now after Advance: second = %d, want 1", got)
	}
}
