package anim

import (
	"testing"
	"time"
)

func TestColonTogglesEachPeriod(t *testing.T) {
	c := NewColon(time.Second)
	t0 := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	if !c.Update(t0) {
		t.Fatal("colon should start visible")
	}
	if !c.Update(t0.Add(999 * time.Millisecond)) {
		t.Fatal("colon toggled before a full period")
	}
	if c.Update(t0.Add(time.Second)) {
		t.Fatal("colon should be hidden after one period")
	}
	if !c.Update(t0.Add(2 * time.Second)) {
		t.Fatal("colon should be visible after two periods")
	}
}

func TestColonCatchesUpAfterGap(t *testing.T) {
	c := NewColon(time.Second)
	t0 := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	c.Update(t0)

	// Three whole periods pass between ticks: odd count flips the state.
	if c.Update(t0.Add(3500 * time.Millisecond)) {
		t.Fatal("Update() = true after 3 periods, want false")
	}
	// The phase is kept: the next flip is at 4s, not 4.5s.
	if !c.Update(t0.Add(4 * time.Second)) {
		t.Fatal("Update() = false at 4s, want true")
	}
}

func TestColonDefaultPeriod(t *testing.T) {
	c := NewColon(0)
	t0 := time.Unix(0, 0)
	c.Update(t0)
	if c.Update(t0.Add(DefaultBlinkPeriod)) {
		t.Fatal("zero period should fall back to DefaultBlinkPeriod")
	}
	if c.Visible() {
		t.Fatal("Visible() disagrees with Update()")
	}
}

func TestColorForCyclesPalette(t *testing.T) {
	seen := map[uint8]bool{}
	for d := 0; d <= 9; d++ {
		c := ColorFor(d)
		if c == ColorNone || c == ColorColon {
			t.Fatalf("ColorFor(%d) = %d, collides with a reserved index", d, c)
		}
		seen[c] = true
	}
	if len(seen) != blockColors {
		t.Fatalf("digits use %d colors, want %d", len(seen), blockColors)
	}
}

func TestAppendColon(t *testing.T) {
	if got := AppendColon(nil, false); len(got) != 0 {
		t.Fatalf("AppendColon(hidden) = %v, want none", got)
	}
	got := AppendColon(nil, true)
	if len(got) != 2 {
		t.Fatalf("AppendColon(visible) = %v, want 2 cells", got)
	}
	for _, c := range got {
		if c.Slot != ColonSlot || c.Kind != CellColon || c.Color != ColorColon {
			t.Fatalf("colon cell = %+v", c)
		}
	}
}
