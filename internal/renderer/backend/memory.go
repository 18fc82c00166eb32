package backend

import (
	"strings"

	"github.com/gdamore/tcell/v2"
)

// Memory is an in-memory Backend for tests. It records the painted
// runes and styles without any terminal.
type Memory struct {
	width  int
	height int
	runes  [][]rune
	styles [][]tcell.Style
	shows  int
}

// NewMemory creates a memory backend with the given dimensions.
func NewMemory(width, height int) *Memory {
	m := &Memory{width: width, height: height}
	m.Clear()
	return m
}

func (m *Memory) Init() error { return nil }

func (m *Memory) Fini() {}

func (m *Memory) Size() (int, int) { return m.width, m.height }

func (m *Memory) SetCell(x, y int, r rune, style tcell.Style) {
	if x < 0 || y < 0 || x >= m.width || y >= m.height {
		return
	}
	m.runes[y][x] = r
	m.styles[y][x] = style
}

func (m *Memory) Clear() {
	m.runes = make([][]rune, m.height)
	m.styles = make([][]tcell.Style, m.height)
	for y := range m.runes {
		m.runes[y] = make([]rune, m.width)
		m.styles[y] = make([]tcell.Style, m.width)
		for x := range m.runes[y] {
			m.runes[y][x] = ' '
		}
	}
}

func (m *Memory) Show() { m.shows++ }

func (m *Memory) PollEvent() tcell.Event { return nil }

// Line returns the text content of a row, right-trimmed.
func (m *Memory) Line(y int) string {
	if y < 0 || y >= m.height {
		return ""
	}
	return strings.TrimRight(string(m.runes[y]), " ")
}

// StyleAt returns the style painted at a position.
func (m *Memory) StyleAt(x, y int) tcell.Style {
	if x < 0 || y < 0 || x >= m.width || y >= m.height {
		return tcell.StyleDefault
	}
	return m.styles[y][x]
}

// Shows returns how many times Show was called.
func (m *Memory) Shows() int { return m.shows }

// Ensure Memory implements Backend.
var _ Backend = (*Memory)(nil)
