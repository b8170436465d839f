package glyph

import (
	"errors"
	"testing"
)

func TestForRejectsInvalidDigits(t *testing.T) {
	for _, d := range []int{-1, 10, 42} {
		if _, err := For(d); !errors.Is(err, ErrInvalidDigit) {
			t.Fatalf("For(%d) err = %v, want ErrInvalidDigit", d, err)
		}
	}
}

func TestDigitsAreDistinctAndNonEmpty(t *testing.T) {
	seen := map[Grid]int{}
	for d := 0; d <= 9; d++ {
		g, err := For(d)
		if err != nil {
			t.Fatalf("For(%d): %v", d, err)
		}
		if g.Count() == 0 {
			t.Fatalf("For(%d) is empty", d)
		}
		if prev, ok := seen[g]; ok {
			t.Fatalf("For(%d) duplicates For(%d)", d, prev)
		}
		seen[g] = d
	}
}

func TestGridLayout(t *testing.T) {
	want := "###\n#.#\n###\n#.#\n###"
	if got := Must(8).String(); got != want {
		t.Fatalf("Must(8).String() = %q, want %q", got, want)
	}
	if got := Must(1).Count(); got != 5 {
		t.Fatalf("Must(1).Count() = %d, want 5", got)
	}
	if !Must(7).Filled(2, 4) || Must(7).Filled(0, 4) {
		t.Fatal("Must(7) bottom row should only have the right column")
	}
	if Must(8).Filled(3, 0) || Must(8).Filled(0, -1) {
		t.Fatal("out-of-range cells should be empty")
	}
}

func TestWith(t *testing.T) {
	g := Blank.With(1, 2).With(0, 0)
	if !g.Filled(1, 2) || !g.Filled(0, 0) {
		t.Fatalf("With() did not set cells:\n%s", g)
	}
	if g.Count() != 2 {
		t.Fatalf("Count() = %d, want 2", g.Count())
	}
	if Blank.Count() != 0 {
		t.Fatal("With() mutated Blank")
	}
}

func TestMustPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("Must(10) did not panic")
		}
	}()
	_ = Must(10)
}

func TestColon(t *testing.T) {
	c := Colon()
	if c[0].Row >= c[1].Row {
		t.Fatalf("Colon() rows = %d,%d, want top dot first", c[0].Row, c[1].Row)
	}
	for _, cell := range c {
		if cell.Row < 0 || cell.Row >= Rows {
			t.Fatalf("Colon() row %d out of range", cell.Row)
		}
	}
}
