// Command planview prints the transition plan between two digits and,
// optionally, an ASCII trace of the animation.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/messerjon/TetrisClock/internal/anim"
	"github.com/messerjon/TetrisClock/internal/glyph"
)

const blank = -1

func main() {
	var (
		from  = flag.Int("from", 1, "Starting digit (-1 = blank).")
		to    = flag.Int("to", 8, "Target digit (-1 = blank).")
		trace = flag.Bool("trace", false, "Print the animation frame by frame.")
		every = flag.Int("every", 4, "Print every Nth frame when tracing.")
	)
	flag.Parse()

	w := bufio.NewWriter(os.Stdout)
	defer w.Flush()
	if err := run(w, *from, *to, *trace, *every); err != nil {
		w.Flush()
		fatalf("planview: %v", err)
	}
}

func fatalf(format string, args ...any) {
	_, _ = fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(2)
}

func grid(d int) (glyph.Grid, uint8, error) {
	if d == blank {
		return glyph.Blank, anim.ColorNone, nil
	}
	g, err := glyph.For(d)
	return g, anim.ColorFor(d), err
}

func run(w io.Writer, from, to int, trace bool, every int) error {
	g0, c0, err := grid(from)
	if err != nil {
		return err
	}
	g1, c1, err := grid(to)
	if err != nil {
		return err
	}

	p := anim.Plan(g0, g1)
	adds, removes := p.Counts()
	fmt.Fprintf(w, "%s -> %s: %d adds, %d removes\n", label(from), label(to), adds, removes)
	fmt.Fprintf(w, "from:\n%s\nto:\n%s\n", g0, g1)
	fmt.Fprint(w, p.String())
	if !trace {
		return nil
	}
	if every < 1 {
		every = 1
	}

	e := anim.NewEngine(anim.DefaultOptions())
	if err := e.Enqueue(0, g0, c0); err != nil {
		return err
	}
	if err := settle(e); err != nil {
		return err
	}
	if err := e.Enqueue(0, g1, c1); err != nil {
		return err
	}

	var cells []anim.Cell
	for n := 0; ; n++ {
		e.Step()
		if n%every == 0 || e.Idle() {
			cells = e.AppendCells(cells[:0])
			fmt.Fprintf(w, "\nframe %d (%s)\n", n+1, e.Slot(0).State())
			draw(w, cells)
		}
		if e.Idle() {
			return nil
		}
		if n > maxFrames {
			return fmt.Errorf("animation did not finish in %d frames", maxFrames)
		}
	}
}

const maxFrames = 5000

func settle(e *anim.Engine) error {
	for n := 0; n < maxFrames; n++ {
		e.Step()
		if e.Idle() {
			return nil
		}
	}
	return fmt.Errorf("animation did not finish in %d frames", maxFrames)
}

// draw prints slot 0: '#' landed, '*' falling, '.' clearing.
func draw(w io.Writer, cells []anim.Cell) {
	var buf [glyph.Rows][glyph.Cols]byte
	for r := range buf {
		buf[r] = [glyph.Cols]byte{' ', ' ', ' '}
	}
	for _, c := range cells {
		if c.Slot != 0 || c.Row < 0 || c.Row >= glyph.Rows || c.Col < 0 || c.Col >= glyph.Cols {
			continue
		}
		switch c.Kind {
		case anim.CellLanded:
			buf[c.Row][c.Col] = '#'
		case anim.CellFalling:
			buf[c.Row][c.Col] = '*'
		case anim.CellClearing:
			buf[c.Row][c.Col] = '.'
		}
	}
	fmt.Fprintln(w, "+---+")
	for _, row := range buf {
		fmt.Fprintf(w, "|%s|\n", row[:])
	}
	fmt.Fprintln(w, "+---+")
}

func label(d int) string {
	if d == blank {
		return "blank"
	}
	return fmt.Sprint(d)
}
