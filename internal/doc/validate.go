package doc

import (
	"errors"
	"fmt"
)

// ErrInvariantViolation marks a structural fault in the document tree.
// Commands never produce such a state; if validation reports one, the
// host must treat it as a fatal internal-consistency fault and
// re-validate the whole document rather than patch around it.
var ErrInvariantViolation = errors.New("document invariant violation")

// Validate walks the tree and returns the first structural invariant
// violation, or nil when the document is valid.
//
// Checked invariants:
//
//   - the root is an element of type Editor with at least one child
//   - every element has at least one child
//   - every block type and alignment is a member of its closed set
//   - a list-item appears only as a direct child of a list container
//   - a list container holds only list-item children
//   - Editor never appears below the root
func Validate(d *Document) error {
	root := d.Root()
	if root == nil {
		return fmt.Errorf("%w: document has no root", ErrInvariantViolation)
	}
	if root.Type != Editor {
		return fmt.Errorf("%w: root has type %q, want %q", ErrInvariantViolation, root.Type, Editor)
	}
	return validateElement(root, Path{}, nil)
}

func validateElement(e *Element, p Path, parent *Element) error {
	if !e.Type.Valid() {
		return fmt.Errorf("%w: unknown block type %q at %v", ErrInvariantViolation, e.Type, p)
	}
	if len(p) > 0 && e.Type == Editor {
		return fmt.Errorf("%w: editor element below root at %v", ErrInvariantViolation, p)
	}
	if e.Align != AlignNone && !e.Align.Valid() {
		return fmt.Errorf("%w: unknown alignment %q at %v", ErrInvariantViolation, e.Align, p)
	}
	if len(e.Children) == 0 {
		return fmt.Errorf("%w: element at %v has no children", ErrInvariantViolation, p)
	}
	if e.Type == ListItem {
		if parent == nil || !parent.Type.IsList() {
			return fmt.Errorf("%w: list-item at %v outside a list container", ErrInvariantViolation, p)
		}
	}
	for i, c := range e.Children {
		cp := p.Child(i)
		switch n := c.(type) {
		case *Element:
			if e.Type.IsList() && n.Type != ListItem {
				return fmt.Errorf("%w: %q child %q at %v, want %q", ErrInvariantViolation, e.Type, n.Type, cp, ListItem)
			}
			if err := validateElement(n, cp, e); err != nil {
				return err
			}
		case *Leaf:
			if e.Type.IsList() {
				return fmt.Errorf("%w: %q has a leaf child at %v, want %q", ErrInvariantViolation, e.Type, cp, ListItem)
			}
		default:
			return fmt.Errorf("%w: unknown node kind at %v", ErrInvariantViolation, cp)
		}
	}
	return nil
}
