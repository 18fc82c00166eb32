package renderer

import (
	"strings"
	"testing"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/richdoc/internal/doc"
	"github.com/dshills/richdoc/internal/engine/selection"
	"github.com/dshills/richdoc/internal/renderer/backend"
	"github.com/dshills/richdoc/internal/renderer/style"
)

func testRenderer(width, height int) (*Renderer, *backend.Memory) {
	mem := backend.NewMemory(width, height)
	return New(mem, style.Default()), mem
}

func TestRenderParagraphs(t *testing.T) {
	d := doc.New(
		doc.NewParagraph(doc.NewLeaf("first line")),
		doc.NewParagraph(doc.NewLeaf("second line")),
	)
	r, mem := testRenderer(40, 10)

	r.Render(d, nil)

	if got := mem.Line(0); got != "first line" {
		t.Errorf("row 0 = %q", got)
	}
	if got := mem.Line(1); got != "second line" {
		t.Errorf("row 1 = %q", got)
	}
	if mem.Shows() != 1 {
		t.Errorf("Show called %d times, want 1", mem.Shows())
	}
}

func TestRenderListPrefixes(t *testing.T) {
	d := doc.New(
		doc.NewElement(doc.BulletedList,
			doc.NewElement(doc.ListItem, doc.NewLeaf("apples")),
		),
		doc.NewElement(doc.NumberedList,
			doc.NewElement(doc.ListItem, doc.NewLeaf("one")),
			doc.NewElement(doc.ListItem, doc.NewLeaf("two")),
		),
	)
	r, mem := testRenderer(40, 10)

	r.Render(d, nil)

	if got := mem.Line(0); got != "• apples" {
		t.Errorf("row 0 = %q", got)
	}
	if got := mem.Line(1); got != "1. one" {
		t.Errorf("row 1 = %q", got)
	}
	if got := mem.Line(2); got != "2. two" {
		t.Errorf("row 2 = %q", got)
	}
}

func TestRenderAlignment(t *testing.T) {
	center := doc.NewParagraph(doc.NewLeaf("mid"))
	center.Align = doc.AlignCenter
	right := doc.NewParagraph(doc.NewLeaf("end"))
	right.Align = doc.AlignRight
	d := doc.New(center, right)

	r, mem := testRenderer(11, 10)
	r.Render(d, nil)

	if got := mem.Line(0); got != "    mid" {
		t.Errorf("centered row = %q", got)
	}
	if got := mem.Line(1); got != "        end" {
		t.Errorf("right row = %q", got)
	}
}

func TestRenderBlockQuotePrefix(t *testing.T) {
	d := doc.New(doc.NewElement(doc.BlockQuote, doc.NewLeaf("wise words")))
	r, mem := testRenderer(40, 10)

	r.Render(d, nil)
	if got := mem.Line(0); got != "> wise words" {
		t.Errorf("row 0 = %q", got)
	}
}

func TestRenderMarkStyles(t *testing.T) {
	d := doc.New(doc.NewParagraph(doc.NewLeaf("b", doc.MarkBold), doc.NewLeaf("p")))
	r, mem := testRenderer(40, 10)

	r.Render(d, nil)

	_, _, attrs := mem.StyleAt(0, 0).Decompose()
	if attrs&tcell.AttrBold == 0 {
		t.Error("bold leaf should paint with the bold attribute")
	}
	_, _, attrs = mem.StyleAt(1, 0).Decompose()
	if attrs&tcell.AttrBold != 0 {
		t.Error("plain leaf should not be bold")
	}
}

func TestStatusLine(t *testing.T) {
	d := doc.New(doc.NewParagraph(doc.NewLeaf("hello", doc.MarkBold)))

	if got := StatusLine(d, nil); got != "no selection" {
		t.Errorf("StatusLine(nil) = %q", got)
	}

	sel := selection.NewRange(
		selection.NewPoint(doc.Path{0, 0}, 0),
		selection.NewPoint(doc.Path{0, 0}, 5),
	)
	got := StatusLine(d, &sel)
	if !strings.Contains(got, "bold") {
		t.Errorf("status %q should name the active mark", got)
	}
	if !strings.Contains(got, "paragraph") {
		t.Errorf("status %q should name the active block type", got)
	}
}

func TestRenderClipsToWidth(t *testing.T) {
	d := doc.New(doc.NewParagraph(doc.NewLeaf("abcdefghij")))
	r, mem := testRenderer(4, 5)

	r.Render(d, nil)
	if got := mem.Line(0); got != "abcd" {
		t.Errorf("clipped row = %q", got)
	}
}
