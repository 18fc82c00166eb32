// Package transform provides the primitive tree mutations the command
// engine composes: setting block properties, adding and removing marks
// over a range, and wrapping or unwrapping list containers.
//
// Primitives identify their targets by pointer before mutating, and
// re-derive positions from pointers at apply time, so composed phases
// stay correct even though each mutation invalidates previously
// computed paths. Every primitive leaves the tree structurally valid
// for the phase that follows it; commands are responsible for ending in
// a state that satisfies all invariants.
package transform

import (
	"errors"
	"fmt"

	"github.com/dshills/richdoc/internal/doc"
	"github.com/dshills/richdoc/internal/engine/query"
	"github.com/dshills/richdoc/internal/engine/selection"
)

// ErrDetachedNode is returned when a target node is no longer part of
// the document tree.
var ErrDetachedNode = errors.New("node is not attached to the document")

// Props describes a block property update. Nil fields are left
// untouched. Setting Align to a pointer to AlignNone clears the
// alignment.
type Props struct {
	Type  *doc.BlockType
	Align *doc.Align
}

// TypeProp returns a Props that sets the block type.
func TypeProp(t doc.BlockType) Props {
	return Props{Type: &t}
}

// AlignProp returns a Props that sets (or, with AlignNone, clears) the
// alignment.
func AlignProp(a doc.Align) Props {
	return Props{Align: &a}
}

// SetBlockProps applies a property update to each element. Type and
// alignment are independent axes: an update naming only one never
// touches the other.
func SetBlockProps(blocks []*doc.Element, props Props) {
	for _, el := range blocks {
		if props.Type != nil {
			el.Type = *props.Type
		}
		if props.Align != nil {
			el.Align = *props.Align
		}
	}
}

// AddMark adds a mark to exactly the leaf text covered by the range,
// splitting partially covered leaves at the range boundaries. Leaves
// outside the range keep their marks. Collapsed ranges are a no-op.
func AddMark(d *doc.Document, r selection.Range, m doc.Mark) error {
	return updateMarks(d, r, func(s doc.MarkSet) doc.MarkSet { return s.With(m) })
}

// RemoveMark removes a mark from exactly the leaf text covered by the
// range, splitting partially covered leaves at the range boundaries.
// Collapsed ranges are a no-op.
func RemoveMark(d *doc.Document, r selection.Range, m doc.Mark) error {
	return updateMarks(d, r, func(s doc.MarkSet) doc.MarkSet { return s.Without(m) })
}

func updateMarks(d *doc.Document, r selection.Range, update func(doc.MarkSet) doc.MarkSet) error {
	spans := query.LeavesInRange(d, r)
	for _, span := range spans {
		if span.From >= span.To {
			continue // collapsed: nothing covered
		}
		if span.Covered() {
			span.Leaf.Marks = update(span.Leaf.Marks)
			continue
		}
		if err := splitAndUpdate(d, span, update); err != nil {
			return err
		}
	}
	return nil
}

// splitAndUpdate splits a partially covered leaf into up to three runs
// and applies the mark update to the covered middle run.
func splitAndUpdate(d *doc.Document, span query.LeafSpan, update func(doc.MarkSet) doc.MarkSet) error {
	// Re-derive the position from the pointer: earlier splits in the
	// same parent shift sibling indices.
	p, ok := d.FindPath(span.Leaf)
	if !ok {
		return fmt.Errorf("%w: leaf %q", ErrDetachedNode, span.Leaf.Text)
	}
	parent, err := d.ParentOf(p)
	if err != nil {
		return err
	}
	idx := p[len(p)-1]

	text := span.Leaf.Text
	var runs []doc.Node
	if span.From > 0 {
		runs = append(runs, &doc.Leaf{Text: text[:span.From], Marks: span.Leaf.Marks})
	}
	runs = append(runs, &doc.Leaf{Text: text[span.From:span.To], Marks: update(span.Leaf.Marks)})
	if span.To < len(text) {
		runs = append(runs, &doc.Leaf{Text: text[span.To:], Marks: span.Leaf.Marks})
	}

	parent.Children = spliceNodes(parent.Children, idx, 1, runs)
	return nil
}

// UnwrapLists removes every list container whose subtree intersects the
// range, lifting the selected run of its children up one level. A
// container only partially inside the range is split: unselected
// leading and trailing children stay wrapped in containers of the
// original type, so only the selected portion is affected.
func UnwrapLists(d *doc.Document, r selection.Range) error {
	type target struct {
		parent    *doc.Element
		container *doc.Element
		from, to  int // selected child run [from, to]
	}

	// Collect before mutating; paths are valid only now.
	r = selection.Unhang(d, r)
	var targets []target
	for _, el := range query.ElementsInRange(d, r) {
		if !el.Type.IsList() {
			continue
		}
		p, ok := d.FindPath(el)
		if !ok {
			return fmt.Errorf("%w: %q container", ErrDetachedNode, el.Type)
		}
		parent, err := d.ParentOf(p)
		if err != nil {
			return err
		}
		from, to := selectedChildRun(r, d, el, p)
		if from > to {
			continue
		}
		targets = append(targets, target{parent: parent, container: el, from: from, to: to})
	}

	for _, t := range targets {
		idx := indexOfChild(t.parent, t.container)
		if idx < 0 {
			return fmt.Errorf("%w: %q container", ErrDetachedNode, t.container.Type)
		}

		var replacement []doc.Node
		if t.from > 0 {
			replacement = append(replacement, &doc.Element{
				Type:     t.container.Type,
				Align:    t.container.Align,
				Children: t.container.Children[:t.from],
			})
		}
		replacement = append(replacement, t.container.Children[t.from:t.to+1]...)
		if t.to < len(t.container.Children)-1 {
			replacement = append(replacement, &doc.Element{
				Type:     t.container.Type,
				Align:    t.container.Align,
				Children: t.container.Children[t.to+1:],
			})
		}

		t.parent.Children = spliceNodes(t.parent.Children, idx, 1, replacement)
	}
	return nil
}

// selectedChildRun returns the inclusive index run of container
// children whose subtree intersects the range.
func selectedChildRun(r selection.Range, d *doc.Document, container *doc.Element, containerPath doc.Path) (int, int) {
	from, to := len(container.Children), -1
	for i := range container.Children {
		if selection.SpanContains(r, containerPath.Child(i)) {
			if i < from {
				from = i
			}
			to = i
		}
	}
	return from, to
}

// WrapBlocks wraps the given blocks in new container elements of the
// given type. Blocks are grouped by their current parent; each
// contiguous run of siblings gets one container, inserted at the run's
// position.
func WrapBlocks(d *doc.Document, blocks []*doc.Element, t doc.BlockType) error {
	if len(blocks) == 0 {
		return nil
	}

	selected := make(map[*doc.Element]bool, len(blocks))
	for _, b := range blocks {
		selected[b] = true
	}

	parents, err := parentsOf(d, blocks)
	if err != nil {
		return err
	}

	for _, parent := range parents {
		wrapRuns(parent, selected, t)
	}
	return nil
}

// parentsOf resolves the distinct parents of the blocks, in first-seen
// order.
func parentsOf(d *doc.Document, blocks []*doc.Element) ([]*doc.Element, error) {
	var parents []*doc.Element
	seen := make(map[*doc.Element]bool)
	for _, b := range blocks {
		p, ok := d.FindPath(b)
		if !ok {
			return nil, fmt.Errorf("%w: %q block", ErrDetachedNode, b.Type)
		}
		parent, err := d.ParentOf(p)
		if err != nil {
			return nil, err
		}
		if !seen[parent] {
			seen[parent] = true
			parents = append(parents, parent)
		}
	}
	return parents, nil
}

// wrapRuns replaces each contiguous run of selected children with a
// single container wrapping the run.
func wrapRuns(parent *doc.Element, selected map[*doc.Element]bool, t doc.BlockType) {
	var out []doc.Node
	var run []doc.Node

	flush := func() {
		if len(run) == 0 {
			return
		}
		out = append(out, &doc.Element{Type: t, Children: run})
		run = nil
	}

	for _, c := range parent.Children {
		if el, ok := c.(*doc.Element); ok && selected[el] {
			run = append(run, c)
			continue
		}
		flush()
		out = append(out, c)
	}
	flush()
	parent.Children = out
}

// indexOfChild returns the index of child in parent's children, or -1.
func indexOfChild(parent *doc.Element, child doc.Node) int {
	for i, c := range parent.Children {
		if c == child {
			return i
		}
	}
	return -1
}

// spliceNodes replaces count nodes at idx with the replacement nodes.
func spliceNodes(nodes []doc.Node, idx, count int, replacement []doc.Node) []doc.Node {
	out := make([]doc.Node, 0, len(nodes)-count+len(replacement))
	out = append(out, nodes[:idx]...)
	out = append(out, replacement...)
	out = append(out, nodes[idx+count:]...)
	return out
}
