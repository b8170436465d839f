// Package tui renders the clock in a terminal with bubbletea.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/messerjon/TetrisClock/hal"
	"github.com/messerjon/TetrisClock/internal/anim"
	"github.com/messerjon/TetrisClock/internal/render"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Grid size in terminal cells. One terminal cell is one panel block, two
// characters wide.
const (
	Cols = hal.PanelWidth / render.CellSize
	Rows = hal.PanelHeight / render.CellSize
)

// Stepper advances the clock one frame.
type Stepper interface {
	Step(now time.Time) (anim.Frame, error)
	StatusLine() string
}

type tickMsg time.Time

var (
	frameStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("240"))
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	alertStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// Model is the bubbletea model for the terminal clock.
type Model struct {
	src    Stepper
	period time.Duration

	cells    []anim.Cell
	meridiem anim.Meridiem
	degraded bool
	status   string
	frames   uint64
	err      error

	styles [len(render.Palette)]lipgloss.Style
	dimmed [len(render.Palette)]lipgloss.Style
}

// NewModel returns a model stepping src every period.
func NewModel(src Stepper, period time.Duration) Model {
	if period <= 0 {
		period = 50 * time.Millisecond
	}
	m := Model{src: src, period: period}
	for i, c := range render.Palette {
		m.styles[i] = lipgloss.NewStyle().Foreground(lipgloss.Color(hex(c.R, c.G, c.B)))
		d := render.Dim(c)
		m.dimmed[i] = lipgloss.NewStyle().Foreground(lipgloss.Color(hex(d.R, d.G, d.B)))
	}
	return m
}

func hex(r, g, b uint8) string { return fmt.Sprintf("#%02X%02X%02X", r, g, b) }

func (m Model) tick() tea.Cmd {
	return tea.Tick(m.period, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m Model) Init() tea.Cmd { return m.tick() }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		fr, err := m.src.Step(time.Time(msg))
		if err != nil {
			m.err = err
			return m, tea.Quit
		}
		m.cells = append(m.cells[:0], fr.Cells...)
		m.meridiem = fr.Meridiem
		m.degraded = fr.Degraded
		m.frames = fr.Seq
		m.status = m.src.StatusLine()
		return m, m.tick()
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m Model) View() string {
	var grid [Rows][Cols]*lipgloss.Style
	for _, c := range m.cells {
		x, y := render.CellOrigin(c)
		col, row := x/render.CellSize, y/render.CellSize
		if col < 0 || col >= Cols || row < 0 || row >= Rows || int(c.Color) >= len(m.styles) {
			continue
		}
		st := &m.styles[c.Color]
		if c.Kind == anim.CellClearing {
			st = &m.dimmed[c.Color]
		}
		grid[row][col] = st
	}

	var b strings.Builder
	for row := range grid {
		if row > 0 {
			b.WriteByte('\n')
		}
		for _, st := range grid[row] {
			if st == nil {
				b.WriteString("  ")
				continue
			}
			b.WriteString(st.Render("██"))
		}
	}

	status := m.status
	if m.meridiem != anim.MeridiemNone {
		status = m.meridiem.String() + "  " + status
	}
	lines := []string{frameStyle.Render(b.String()), statusStyle.Render(status)}
	if m.degraded {
		lines = append(lines, alertStyle.Render("time sync degraded"))
	}
	if m.err != nil {
		lines = append(lines, alertStyle.Render("error: "+m.err.Error()))
	}
	lines = append(lines, helpStyle.Render("q: quit"))
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

// Err returns the error that stopped the model, if any.
func (m Model) Err() error { return m.err }

// Run shows the clock in the terminal until the user quits or ctx is done.
func Run(ctx context.Context, src Stepper, period time.Duration) error {
	p := tea.NewProgram(NewModel(src, period), tea.WithAltScreen(), tea.WithContext(ctx))
	final, err := p.Run()
	if err != nil {
		return err
	}
	if m, ok := final.(Model); ok && m.err != nil {
		return m.err
	}
	return nil
}
