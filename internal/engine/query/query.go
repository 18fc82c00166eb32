// Package query answers read-only questions about a document given the
// current selection: whether a mark or block-level format is active, and
// which nodes a selection touches. Queries never mutate the tree.
package query

import (
	"github.com/dshills/richdoc/internal/doc"
	"github.com/dshills/richdoc/internal/engine/selection"
)

// LeafSpan is a leaf touched by a selection together with the covered
// text interval [From, To) within it.
type LeafSpan struct {
	Leaf *doc.Leaf
	Path doc.Path
	From int
	To   int
}

// Covered reports whether the span covers the whole leaf.
func (s LeafSpan) Covered() bool {
	return s.From == 0 && s.To == len(s.Leaf.Text)
}

// LeavesInRange collects the leaves touched by the range, in document
// order, with per-leaf covered intervals. The range is unhung first, so
// a leaf that contributes no characters to an expanded selection is not
// included. A collapsed range touches exactly the leaf at its point
// (with an empty interval), which is the insertion context for marks.
func LeavesInRange(d *doc.Document, r selection.Range) []LeafSpan {
	r = selection.Unhang(d, r)
	start, end := r.Edges()

	var spans []LeafSpan
	d.Walk(func(n doc.Node, p doc.Path) bool {
		leaf, ok := n.(*doc.Leaf)
		if !ok {
			return true
		}
		if p.Compare(start.Path) < 0 {
			return true
		}
		if p.Compare(end.Path) > 0 {
			return false
		}
		span := LeafSpan{Leaf: leaf, Path: p, From: 0, To: len(leaf.Text)}
		if p.Equals(start.Path) {
			span.From = start.Offset
		}
		if p.Equals(end.Path) {
			span.To = end.Offset
		}
		// The start leaf is only touched if some of it is covered
		// (or the range is collapsed at it).
		if span.From >= span.To && !r.IsCollapsed() {
			return true
		}
		spans = append(spans, span)
		return true
	})
	return spans
}

// BlocksInRange collects the innermost block elements (elements whose
// children are leaves) whose subtree intersects the range, in document
// order. These are the nodes block properties apply to.
func BlocksInRange(d *doc.Document, r selection.Range) []*doc.Element {
	r = selection.Unhang(d, r)
	_, end := r.Edges()

	var blocks []*doc.Element
	d.Walk(func(n doc.Node, p doc.Path) bool {
		el, ok := n.(*doc.Element)
		if !ok || len(p) == 0 {
			return true
		}
		if !selection.SpanContains(r, p) {
			// Everything past the end point is out of range; stop there.
			return p.Compare(end.Path) <= 0
		}
		if el.IsBlock() {
			blocks = append(blocks, el)
		}
		return true
	})
	return blocks
}

// ElementsInRange collects every element (excluding the root) whose
// subtree intersects the range, in document order. Containers come
// before their children.
func ElementsInRange(d *doc.Document, r selection.Range) []*doc.Element {
	r = selection.Unhang(d, r)

	var els []*doc.Element
	d.Walk(func(n doc.Node, p doc.Path) bool {
		el, ok := n.(*doc.Element)
		if !ok || len(p) == 0 {
			return true
		}
		if selection.SpanContains(r, p) {
			els = append(els, el)
		}
		return true
	})
	return els
}

// MarkActive reports whether a mark is active for the selection: the
// marks that would apply to newly inserted text. A nil selection yields
// false.
//
// Merge rule for selections spanning leaves with differing marks: the
// mark is active only if present on every leaf the selection touches.
func MarkActive(d *doc.Document, sel *selection.Range, m doc.Mark) bool {
	if sel == nil {
		return false
	}
	spans := LeavesInRange(d, *sel)
	if len(spans) == 0 {
		return false
	}
	for _, s := range spans {
		if !s.Leaf.Marks.Has(m) {
			return false
		}
	}
	return true
}

// BlockActive reports whether a block-level format is active for the
// selection: at least one element overlapping the (unhung) range
// matches on the format's axis, type for block and list formats and
// alignment for alignment formats. A nil selection yields false.
func BlockActive(d *doc.Document, sel *selection.Range, f doc.Format) bool {
	if sel == nil {
		return false
	}
	for _, el := range ElementsInRange(d, *sel) {
		if f.IsAlign() {
			if el.Align == f.Align() {
				return true
			}
		} else if el.Type == f.Block() {
			return true
		}
	}
	return false
}
