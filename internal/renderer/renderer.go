// Package renderer paints a document onto a backend surface.
//
// The renderer is demo-host glue: one line per block, list items with
// bullet or number prefixes, alignment as horizontal padding, and a
// status line naming the formats active at the selection. It holds no
// document state; the host calls Render after every change.
package renderer

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/uniseg"

	"github.com/dshills/richdoc/internal/doc"
	"github.com/dshills/richdoc/internal/engine/query"
	"github.com/dshills/richdoc/internal/engine/selection"
	"github.com/dshills/richdoc/internal/renderer/backend"
	"github.com/dshills/richdoc/internal/renderer/style"
)

// Renderer draws documents.
type Renderer struct {
	backend backend.Backend
	theme   *style.Theme
}

// New creates a renderer over a backend with a theme.
func New(b backend.Backend, theme *style.Theme) *Renderer {
	return &Renderer{backend: b, theme: theme}
}

// SetTheme replaces the theme; the next Render uses it.
func (r *Renderer) SetTheme(theme *style.Theme) {
	r.theme = theme
}

// Render paints the whole document and a status line for the
// selection.
func (r *Renderer) Render(d *doc.Document, sel *selection.Range) {
	r.backend.Clear()
	width, height := r.backend.Size()

	y := 0
	for _, n := range d.Root().Children {
		el, ok := n.(*doc.Element)
		if !ok || y >= height-1 {
			continue
		}
		y = r.renderBlock(el, y, width, height-1, 0)
	}

	r.renderStatus(d, sel, width, height-1)
	r.backend.Show()
}

// renderBlock paints an element and returns the next free row.
func (r *Renderer) renderBlock(el *doc.Element, y, width, maxY, depth int) int {
	if y >= maxY {
		return y
	}

	if el.Type.IsList() {
		for i, c := range el.Children {
			item, ok := c.(*doc.Element)
			if !ok {
				continue
			}
			prefix := "• "
			if el.Type == doc.NumberedList {
				prefix = fmt.Sprintf("%d. ", i+1)
			}
			y = r.renderLine(item, y, width, maxY, depth, prefix)
		}
		return y
	}

	if el.IsBlock() {
		prefix := ""
		if el.Type == doc.BlockQuote {
			prefix = "> "
		}
		return r.renderLine(el, y, width, maxY, depth, prefix)
	}

	// Nested wrapper: render its element children one level deeper.
	for _, c := range el.Children {
		child, ok := c.(*doc.Element)
		if !ok {
			continue
		}
		y = r.renderBlock(child, y, width, maxY, depth+1)
	}
	return y
}

// renderLine paints a single block on one row, clipped to the surface
// width.
func (r *Renderer) renderLine(el *doc.Element, y, width, maxY, depth int, prefix string) int {
	if y >= maxY {
		return y
	}

	indent := depth * 2
	x := indent + r.pad(el, width-indent)

	x = r.drawText(x, y, width, prefix, r.theme.Block(el.Type).Tcell())
	for _, c := range el.Children {
		leaf, ok := c.(*doc.Leaf)
		if !ok {
			continue
		}
		st := r.theme.LeafStyle(el.Type, leaf.Marks).Tcell()
		x = r.drawText(x, y, width, leaf.Text, st)
	}
	return y + 1
}

// pad returns the left padding for the element's alignment. Justify is
// rendered flush left; a cell grid has no inter-word stretching worth
// the complexity here.
func (r *Renderer) pad(el *doc.Element, width int) int {
	if el.Align == doc.AlignNone || el.Align == doc.AlignLeft || el.Align == doc.AlignJustify {
		return 0
	}
	tw := textWidth(el.Text())
	if tw >= width {
		return 0
	}
	switch el.Align {
	case doc.AlignCenter:
		return (width - tw) / 2
	case doc.AlignRight:
		return width - tw
	default:
		return 0
	}
}

// drawText paints a string starting at x and returns the next column.
// Grapheme clusters wider than one cell advance by their full width.
func (r *Renderer) drawText(x, y, width int, text string, st tcell.Style) int {
	g := uniseg.NewGraphemes(text)
	for g.Next() {
		if x >= width {
			break
		}
		runes := g.Runes()
		r.backend.SetCell(x, y, runes[0], st)
		x += g.Width()
	}
	return x
}

// renderStatus paints the active-format summary on the bottom row.
func (r *Renderer) renderStatus(d *doc.Document, sel *selection.Range, width, y int) {
	st := tcell.StyleDefault.Reverse(true)
	for x := 0; x < width; x++ {
		r.backend.SetCell(x, y, ' ', st)
	}
	r.drawText(0, y, width, " "+StatusLine(d, sel), st)
}

// StatusLine summarizes the formats active at the selection.
func StatusLine(d *doc.Document, sel *selection.Range) string {
	if sel == nil {
		return "no selection"
	}

	var active []string
	for _, m := range doc.Marks() {
		if query.MarkActive(d, sel, m) {
			active = append(active, m.String())
		}
	}
	for _, t := range []doc.BlockType{
		doc.Paragraph, doc.HeadingOne, doc.HeadingTwo, doc.BlockQuote,
		doc.BulletedList, doc.NumberedList,
	} {
		if query.BlockActive(d, sel, doc.BlockFormat(t)) {
			active = append(active, string(t))
		}
	}
	for _, a := range []doc.Align{doc.AlignLeft, doc.AlignCenter, doc.AlignRight, doc.AlignJustify} {
		if query.BlockActive(d, sel, doc.AlignFormat(a)) {
			active = append(active, string(a))
		}
	}

	if len(active) == 0 {
		return "plain"
	}
	return strings.Join(active, " ")
}

// textWidth returns the display width of a string in cells.
func textWidth(s string) int {
	return uniseg.StringWidth(s)
}
