package doc

import (
	"errors"
	"fmt"
	"slices"
)

// Errors returned by path resolution.
var (
	ErrInvalidPath = errors.New("invalid path")
	ErrNotElement  = errors.New("node is not an element")
	ErrNotLeaf     = errors.New("node is not a leaf")
	ErrNotFound    = errors.New("node not found")
)

// Path is a sequence of child indices from the document root to a node.
// The empty path addresses the root element.
//
// Paths are transient lookup keys. Any mutation that shifts sibling
// order makes previously computed paths stale; re-resolve with FindPath
// before reuse across mutations.
type Path []int

// Equals reports whether two paths address the same position.
func (p Path) Equals(other Path) bool {
	return slices.Equal(p, other)
}

// Compare orders paths in document order: -1 if p precedes other, 1 if
// it follows, 0 if equal. An ancestor precedes its descendants.
func (p Path) Compare(other Path) int {
	n := min(len(p), len(other))
	for i := 0; i < n; i++ {
		if p[i] != other[i] {
			if p[i] < other[i] {
				return -1
			}
			return 1
		}
	}
	switch {
	case len(p) < len(other):
		return -1
	case len(p) > len(other):
		return 1
	default:
		return 0
	}
}

// IsAncestorOf reports whether p is a strict prefix of other.
func (p Path) IsAncestorOf(other Path) bool {
	if len(p) >= len(other) {
		return false
	}
	return slices.Equal(p, other[:len(p)])
}

// Parent returns the path of the node's parent. The root has no parent.
func (p Path) Parent() (Path, bool) {
	if len(p) == 0 {
		return nil, false
	}
	return slices.Clone(p[:len(p)-1]), true
}

// Child returns the path of the i-th child.
func (p Path) Child(i int) Path {
	child := make(Path, len(p)+1)
	copy(child, p)
	child[len(p)] = i
	return child
}

// String returns a compact representation such as [0 2 1].
func (p Path) String() string {
	return fmt.Sprintf("%v", []int(p))
}

// NodeAt resolves the node at the given path.
func (d *Document) NodeAt(p Path) (Node, error) {
	var n Node = d.root
	for depth, idx := range p {
		el, ok := n.(*Element)
		if !ok {
			return nil, fmt.Errorf("%w: %v descends through a leaf at depth %d", ErrInvalidPath, p, depth)
		}
		if idx < 0 || idx >= len(el.Children) {
			return nil, fmt.Errorf("%w: %v index %d out of range at depth %d", ErrInvalidPath, p, idx, depth)
		}
		n = el.Children[idx]
	}
	return n, nil
}

// ElementAt resolves the element at the given path.
func (d *Document) ElementAt(p Path) (*Element, error) {
	n, err := d.NodeAt(p)
	if err != nil {
		return nil, err
	}
	el, ok := n.(*Element)
	if !ok {
		return nil, fmt.Errorf("%w: %v", ErrNotElement, p)
	}
	return el, nil
}

// LeafAt resolves the leaf at the given path.
func (d *Document) LeafAt(p Path) (*Leaf, error) {
	n, err := d.NodeAt(p)
	if err != nil {
		return nil, err
	}
	leaf, ok := n.(*Leaf)
	if !ok {
		return nil, fmt.Errorf("%w: %v", ErrNotLeaf, p)
	}
	return leaf, nil
}

// ParentOf resolves the parent element of the node at the given path.
func (d *Document) ParentOf(p Path) (*Element, error) {
	parent, ok := p.Parent()
	if !ok {
		return nil, fmt.Errorf("%w: root has no parent", ErrInvalidPath)
	}
	return d.ElementAt(parent)
}

// FindPath locates a node by pointer identity and returns its current
// path. This is the supported way to re-derive a node's address after
// mutations have invalidated earlier paths.
func (d *Document) FindPath(target Node) (Path, bool) {
	if target == d.root {
		return Path{}, true
	}
	return findPath(d.root, target, nil)
}

func findPath(e *Element, target Node, prefix Path) (Path, bool) {
	for i, c := range e.Children {
		p := prefix.Child(i)
		if c == target {
			return p, true
		}
		if el, ok := c.(*Element); ok {
			if found, ok := findPath(el, target, p); ok {
				return found, true
			}
		}
	}
	return nil, false
}

// WalkFunc visits a node during traversal. Returning false stops the walk.
type WalkFunc func(n Node, p Path) bool

// Walk visits every node in document order, root first.
func (d *Document) Walk(fn WalkFunc) {
	walk(d.root, Path{}, fn)
}

func walk(n Node, p Path, fn WalkFunc) bool {
	if !fn(n, p) {
		return false
	}
	if el, ok := n.(*Element); ok {
		for i, c := range el.Children {
			if !walk(c, p.Child(i), fn) {
				return false
			}
		}
	}
	return true
}

// FirstLeaf returns the first leaf under the node at p in document order.
func (d *Document) FirstLeaf(p Path) (Path, *Leaf, error) {
	n, err := d.NodeAt(p)
	if err != nil {
		return nil, nil, err
	}
	for {
		switch v := n.(type) {
		case *Leaf:
			return p, v, nil
		case *Element:
			if len(v.Children) == 0 {
				return nil, nil, fmt.Errorf("%w: element at %v has no children", ErrInvalidPath, p)
			}
			p = p.Child(0)
			n = v.Children[0]
		}
	}
}

// LastLeaf returns the last leaf under the node at p in document order.
func (d *Document) LastLeaf(p Path) (Path, *Leaf, error) {
	n, err := d.NodeAt(p)
	if err != nil {
		return nil, nil, err
	}
	for {
		switch v := n.(type) {
		case *Leaf:
			return p, v, nil
		case *Element:
			if len(v.Children) == 0 {
				return nil, nil, fmt.Errorf("%w: element at %v has no children", ErrInvalidPath, p)
			}
			last := len(v.Children) - 1
			p = p.Child(last)
			n = v.Children[last]
		}
	}
}

// PreviousLeaf returns the leaf preceding the leaf at p in document
// order, or false if p addresses the first leaf.
func (d *Document) PreviousLeaf(p Path) (Path, *Leaf, bool) {
	var prevPath Path
	var prevLeaf *Leaf
	found := false
	d.Walk(func(n Node, np Path) bool {
		if np.Equals(p) {
			found = true
			return false
		}
		if leaf, ok := n.(*Leaf); ok {
			prevPath = np
			prevLeaf = leaf
		}
		return true
	})
	if !found || prevLeaf == nil {
		return nil, nil, false
	}
	return prevPath, prevLeaf, true
}
