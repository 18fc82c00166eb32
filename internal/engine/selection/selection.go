// Package selection provides the selection model for the richdoc engine.
//
// A selection is a Range between two Points, each addressing an offset
// within a leaf by path. Ranges may be collapsed (anchor == focus) or
// backward (focus precedes anchor in document order). Like paths,
// selections go stale after any mutation that shifts sibling order.
package selection

import (
	"fmt"

	"github.com/dshills/richdoc/internal/doc"
)

// Point addresses a character offset within the leaf at Path.
// Point is an immutable value type.
type Point struct {
	Path   doc.Path
	Offset int
}

// NewPoint creates a point at the given path and offset.
func NewPoint(p doc.Path, offset int) Point {
	return Point{Path: p, Offset: offset}
}

// Compare orders points in document order.
func (p Point) Compare(other Point) int {
	if c := p.Path.Compare(other.Path); c != 0 {
		return c
	}
	switch {
	case p.Offset < other.Offset:
		return -1
	case p.Offset > other.Offset:
		return 1
	default:
		return 0
	}
}

// Equals reports whether two points address the same position.
func (p Point) Equals(other Point) bool {
	return p.Compare(other) == 0
}

// String returns a representation such as [1 0]:3.
func (p Point) String() string {
	return fmt.Sprintf("%v:%d", p.Path, p.Offset)
}

// Range is a pair of points delimiting a span over the tree.
// Anchor is where the selection started; Focus is where it ends (the
// side that moves as the selection is extended). Range is an immutable
// value type.
type Range struct {
	Anchor Point
	Focus  Point
}

// NewRange creates a range from anchor to focus.
func NewRange(anchor, focus Point) Range {
	return Range{Anchor: anchor, Focus: focus}
}

// Collapsed creates a collapsed range at the given point.
func Collapsed(p Point) Range {
	return Range{Anchor: p, Focus: p}
}

// IsCollapsed reports whether anchor and focus coincide.
func (r Range) IsCollapsed() bool {
	return r.Anchor.Equals(r.Focus)
}

// IsBackward reports whether the focus precedes the anchor in document
// order.
func (r Range) IsBackward() bool {
	return r.Focus.Compare(r.Anchor) < 0
}

// Edges returns the start and end points in document order, regardless
// of the range's direction.
func (r Range) Edges() (start, end Point) {
	if r.IsBackward() {
		return r.Focus, r.Anchor
	}
	return r.Anchor, r.Focus
}

// Normalize returns a forward range covering the same span.
func (r Range) Normalize() Range {
	start, end := r.Edges()
	return Range{Anchor: start, Focus: end}
}

// Equals reports whether two ranges have the same anchor and focus.
func (r Range) Equals(other Range) bool {
	return r.Anchor.Equals(other.Anchor) && r.Focus.Equals(other.Focus)
}

// String returns a representation such as [0 0]:1..[1 0 0]:4.
func (r Range) String() string {
	if r.IsCollapsed() {
		return fmt.Sprintf("Cursor(%s)", r.Anchor)
	}
	return fmt.Sprintf("%s..%s", r.Anchor, r.Focus)
}

// Unhang normalizes a "hanging" range: an expanded range whose end sits
// at offset 0 of a leaf spuriously includes that leaf even though no
// character of it is selected. Unhang pulls the end back to the end of
// the previous leaf so boundary selections match only the nodes whose
// text they actually cover.
//
// Collapsed ranges and ranges already ending mid-leaf are returned
// unchanged (normalized to forward order). If no previous leaf exists
// the range is returned as-is.
func Unhang(d *doc.Document, r Range) Range {
	r = r.Normalize()
	if r.IsCollapsed() {
		return r
	}
	start, end := r.Anchor, r.Focus
	if end.Offset != 0 || end.Path.Equals(start.Path) {
		return r
	}
	prevPath, prevLeaf, ok := d.PreviousLeaf(end.Path)
	if !ok {
		return r
	}
	// Never unhang past the start of the range.
	pulled := Point{Path: prevPath, Offset: len(prevLeaf.Text)}
	if pulled.Compare(start) < 0 {
		pulled = start
	}
	return Range{Anchor: start, Focus: pulled}
}

// SpanContains reports whether the subtree rooted at path p intersects
// the span of r. The range is interpreted path-wise: a subtree
// intersects when it is neither entirely before the start nor entirely
// after the end in document order. Ancestors of either edge intersect.
func SpanContains(r Range, p doc.Path) bool {
	start, end := r.Edges()
	if p.Compare(end.Path) > 0 {
		return false
	}
	// Subtree lies entirely before the start unless p is at/after the
	// start or an ancestor of it.
	if p.Compare(start.Path) < 0 && !p.IsAncestorOf(start.Path) {
		return false
	}
	return true
}
